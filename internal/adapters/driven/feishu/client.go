package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
	"github.com/custodia-labs/noticesync/internal/logger"
)

const (
	// DefaultBaseURL is the public open platform endpoint.
	DefaultBaseURL = "https://open.feishu.cn"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// pageSize is the largest page the list endpoints accept.
	pageSize = 500

	contentTypeJSON = "application/json; charset=utf-8"
)

// Client performs authenticated, rate limited calls to the open platform.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  driven.TokenProvider
	limiter *RateLimiter
}

// NewClient creates a client for the configured endpoint.
func NewClient(cfg domain.FeishuSettings, tokens driven.TokenProvider) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL(cfg.BaseURL),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		limiter: NewRateLimiter(cfg.RequestsPerSecond),
	}
}

func baseURL(raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return DefaultBaseURL
	}
	return raw
}

// authorized returns an HTTP client whose transport sets the bearer token
// obtained for ctx. A token failure stops the request before it is sent.
func (c *Client) authorized(ctx context.Context) *http.Client {
	return &http.Client{
		Timeout: c.http.Timeout,
		Transport: &oauth2.Transport{
			Source: requestTokens{ctx: ctx, tokens: c.tokens},
			Base:   c.http.Transport,
		},
	}
}

// requestTokens adapts a TokenProvider to oauth2.TokenSource for one request.
type requestTokens struct {
	ctx    context.Context
	tokens driven.TokenProvider
}

func (r requestTokens) Token() (*oauth2.Token, error) {
	token, err := r.tokens.GetToken(r.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// do sends one request and decodes the data field of the envelope into out.
// Nothing is retried; a 429 only delays the next request.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("feishu: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("feishu: build %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	logger.Debug("feishu %s %s", method, path)
	resp, err := c.authorized(ctx).Do(req)
	if err != nil {
		return fmt.Errorf("feishu: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("feishu: read %s: %w", path, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRateLimitError(parseRetryAfter(resp.Header.Get("Retry-After")))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Msg: strings.TrimSpace(string(raw)), Path: path}
		}
		return fmt.Errorf("feishu: decode %s: %w", path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || env.Code != 0 {
		if env.Code == codeRateLimited && resp.StatusCode != http.StatusTooManyRequests {
			c.limiter.RecordRateLimitError(parseRetryAfter(resp.Header.Get("Retry-After")))
		}
		return &APIError{Status: resp.StatusCode, Code: env.Code, Msg: env.Msg, Path: path}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("feishu: decode %s data: %w", path, err)
	}
	return nil
}
