package feishu

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

type staticTokens string

func (s staticTokens) GetToken(context.Context) (string, error) {
	return string(s), nil
}

type tokenFunc func(ctx context.Context) (string, error)

func (f tokenFunc) GetToken(ctx context.Context) (string, error) {
	return f(ctx)
}

type failingTokens struct{ err error }

func (f failingTokens) GetToken(context.Context) (string, error) {
	return "", f.err
}

// recordedRequest captures what the fake server received.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Auth   string
	Body   map[string]any
}

// requestLog is shared between the server goroutine and the test.
type requestLog struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (l *requestLog) add(r recordedRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requests = append(l.requests, r)
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.requests...)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *requestLog) {
	t.Helper()
	requests := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Auth:   r.Header.Get("Authorization"),
		}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
		requests.add(rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(domain.FeishuSettings{
		BaseURL:           srv.URL,
		RequestsPerSecond: 1000,
		Timeout:           5 * time.Second,
	}, staticTokens("tok"))
	return client, requests
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, code int, msg string, data any) {
	t.Helper()
	body := map[string]any{"code": code, "msg": msg}
	if data != nil {
		body["data"] = data
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func textBlockJSON(id string, blockType int, content string) map[string]any {
	b := map[string]any{"block_id": id, "block_type": blockType}
	if key := bodyKey(blockType); key != "" {
		b[key] = map[string]any{
			"elements": []any{map[string]any{"text_run": map[string]any{"content": content}}},
		}
	}
	return b
}
