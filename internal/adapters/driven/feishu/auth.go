package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
)

// Ensure TenantTokenProvider implements the interface.
var _ driven.TokenProvider = (*TenantTokenProvider)(nil)

const tenantTokenPath = "/open-apis/auth/v3/tenant_access_token/internal"

// expiryMargin renews a token this long before the server expires it.
const expiryMargin = 5 * time.Minute

// TenantTokenProvider exchanges the app credentials for a tenant access
// token and reuses it until shortly before it expires.
type TenantTokenProvider struct {
	endpoint  string
	appID     string
	appSecret string
	http      *http.Client
	now       func() time.Time

	mu      sync.Mutex
	current *oauth2.Token
}

// NewTenantTokenProvider creates a provider for the configured app.
func NewTenantTokenProvider(cfg domain.FeishuSettings) *TenantTokenProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TenantTokenProvider{
		endpoint:  baseURL(cfg.BaseURL) + tenantTokenPath,
		appID:     cfg.AppID,
		appSecret: cfg.AppSecret,
		http:      &http.Client{Timeout: timeout},
		now:       time.Now,
	}
}

// GetToken returns a valid tenant access token. Every failure wraps domain.ErrAuth.
func (p *TenantTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	src := oauth2.ReuseTokenSource(p.current, &tenantTokenSource{ctx: ctx, provider: p})
	tok, err := src.Token()
	if err != nil {
		return "", err
	}
	p.current = tok
	return tok.AccessToken, nil
}

// tenantTokenSource performs one token exchange bound to a request context.
type tenantTokenSource struct {
	ctx      context.Context
	provider *TenantTokenProvider
}

func (s *tenantTokenSource) Token() (*oauth2.Token, error) {
	return s.provider.fetch(s.ctx)
}

func (p *TenantTokenProvider) fetch(ctx context.Context) (*oauth2.Token, error) {
	if strings.TrimSpace(p.appID) == "" || strings.TrimSpace(p.appSecret) == "" {
		return nil, fmt.Errorf("%w: feishu app id and secret are required", domain.ErrAuth)
	}

	payload, err := json.Marshal(tenantTokenRequest{AppID: p.appID, AppSecret: p.appSecret})
	if err != nil {
		return nil, fmt.Errorf("%w: encode token request: %w", domain.ErrAuth, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build token request: %w", domain.ErrAuth, err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request tenant token: %w", domain.ErrAuth, err)
	}
	defer resp.Body.Close()

	var out tenantTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode tenant token (status %d): %w", domain.ErrAuth, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || out.Code != 0 || out.TenantAccessToken == "" {
		return nil, fmt.Errorf("%w: tenant token: status %d code %d: %s",
			domain.ErrAuth, resp.StatusCode, out.Code, out.Msg)
	}

	lifetime := time.Duration(out.Expire) * time.Second
	if lifetime > 2*expiryMargin {
		lifetime -= expiryMargin
	} else {
		lifetime /= 2
	}

	return &oauth2.Token{
		AccessToken: out.TenantAccessToken,
		TokenType:   "Bearer",
		Expiry:      p.now().Add(lifetime),
	}, nil
}
