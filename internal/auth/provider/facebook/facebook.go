package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"link-service/internal/auth"
	"link-service/internal/auth/provider"
	"link-service/internal/logger"

	"golang.org/x/oauth2"
)

const (
	providerName = "facebook"

	defaultGraphVersion  = "v17.0"
	defaultDialogBaseURL = "https://www.facebook.com"
	defaultGraphBaseURL  = "https://graph.facebook.com"
	defaultTimeout       = 30 * time.Second

	maxResponseBodyBytes = 1 << 20 // 1 MiB

	// Graph API error code for an invalid or expired OAuth access token.
	codeInvalidToken = 190
)

type Config struct {
	AppID         string
	AppSecret     string
	GraphVersion  string
	DialogBaseURL string
	GraphBaseURL  string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// Provider implements provider.Client against the Facebook Graph API.
type Provider struct {
	cfg        Config
	endpoint   oauth2.Endpoint
	httpClient *http.Client
}

func New(cfg Config) (*Provider, error) {
	cfg.AppID = strings.TrimSpace(cfg.AppID)
	cfg.AppSecret = strings.TrimSpace(cfg.AppSecret)
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, errors.New("facebook oauth config missing required fields")
	}

	if cfg.GraphVersion == "" {
		cfg.GraphVersion = defaultGraphVersion
	}
	if cfg.DialogBaseURL == "" {
		cfg.DialogBaseURL = defaultDialogBaseURL
	}
	if cfg.GraphBaseURL == "" {
		cfg.GraphBaseURL = defaultGraphBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.DialogBaseURL = strings.TrimRight(cfg.DialogBaseURL, "/")
	cfg.GraphBaseURL = strings.TrimRight(cfg.GraphBaseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Provider{
		cfg: cfg,
		endpoint: oauth2.Endpoint{
			AuthURL:   fmt.Sprintf("%s/%s/dialog/oauth", cfg.DialogBaseURL, cfg.GraphVersion),
			TokenURL:  fmt.Sprintf("%s/%s/oauth/access_token", cfg.GraphBaseURL, cfg.GraphVersion),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// BuildAuthorizationURL builds the OAuth dialog URL. Scopes are
// normalized so the same request always yields the same URL.
func (p *Provider) BuildAuthorizationURL(scopes []string, redirectTarget string) (string, error) {
	normalized := normalizeScopes(scopes)
	if len(normalized) == 0 {
		return "", provider.ErrMissingScopes
	}
	redirectTarget = strings.TrimSpace(redirectTarget)
	if redirectTarget == "" {
		return "", provider.ErrMissingRedirect
	}

	return p.oauthConfig(redirectTarget, normalized).AuthCodeURL(""), nil
}

func (p *Provider) ExchangeCodeForToken(ctx context.Context, code string, redirectTarget string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: authorization code is empty", provider.ErrProviderRejected)
	}

	token, err := p.oauthConfig(redirectTarget, nil).Exchange(p.clientContext(ctx), code)
	if err != nil {
		err = classifyOAuthError(err)
		logger.Warn("facebook code exchange failed", map[string]any{
			"error": err.Error(),
		})
		return "", err
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", provider.ErrProviderRejected)
	}

	return token.AccessToken, nil
}

func (p *Provider) UpgradeToLongLivedToken(ctx context.Context, shortLivedToken string) (string, error) {
	if shortLivedToken == "" {
		return "", fmt.Errorf("%w: short-lived token is empty", provider.ErrProviderRejected)
	}

	// Sent as a form body so the secret and token never appear in a URL.
	form := url.Values{}
	form.Set("grant_type", "fb_exchange_token")
	form.Set("client_id", p.cfg.AppID)
	form.Set("client_secret", p.cfg.AppSecret)
	form.Set("fb_exchange_token", shortLivedToken)

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := p.postFormJSON(ctx, p.httpClient, p.endpoint.TokenURL, form, &payload); err != nil {
		logger.Warn("facebook token upgrade failed", map[string]any{
			"error": err.Error(),
		})
		// A rejected short-lived token is a rejected exchange, not a
		// stale stored credential.
		if errors.Is(err, provider.ErrTokenInvalid) {
			return "", fmt.Errorf("%w: short-lived token not accepted", provider.ErrProviderRejected)
		}
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: long-lived token missing from response", provider.ErrProviderRejected)
	}

	logger.Debug("facebook long-lived token issued", map[string]any{
		"token_type": payload.TokenType,
		"expires_in": payload.ExpiresIn,
	})

	return payload.AccessToken, nil
}

func (p *Provider) FetchProfile(ctx context.Context, token string) (auth.Identity, error) {
	if token == "" {
		return auth.Identity{}, provider.ErrTokenInvalid
	}

	ctx = p.clientContext(ctx)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	client.Timeout = p.httpClient.Timeout

	var profile struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	meURL := fmt.Sprintf("%s/%s/me?fields=id,name", p.cfg.GraphBaseURL, p.cfg.GraphVersion)
	if err := p.getJSON(ctx, client, meURL, &profile); err != nil {
		logger.Warn("facebook profile fetch failed", map[string]any{
			"error": err.Error(),
		})
		return auth.Identity{}, err
	}
	if profile.ID == "" || profile.Name == "" {
		return auth.Identity{}, fmt.Errorf("%w: profile missing id or name", provider.ErrProviderRejected)
	}

	return auth.Identity{
		Provider:       p.Name(),
		ProviderUserID: profile.ID,
		DisplayName:    profile.Name,
	}, nil
}

func (p *Provider) oauthConfig(redirectTarget string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.cfg.AppID,
		ClientSecret: p.cfg.AppSecret,
		Endpoint:     p.endpoint,
		RedirectURL:  redirectTarget,
		Scopes:       scopes,
	}
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

type graphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Subcode int    `json:"error_subcode"`
}

type graphErrorEnvelope struct {
	Error *graphError `json:"error"`
}

// getJSON performs a GET and decodes a successful body into out.
func (p *Provider) getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("facebook: build request: %w", err)
	}
	return doJSON(client, req, out)
}

// postFormJSON posts form as an urlencoded body and decodes a
// successful body into out.
func (p *Provider) postFormJSON(ctx context.Context, client *http.Client, rawURL string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("facebook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return doJSON(client, req, out)
}

// doJSON sends req and maps Graph error bodies to the provider error
// taxonomy.
func doJSON(client *http.Client, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", provider.ErrProviderUnavailable, err)
	}

	var envelope graphErrorEnvelope
	_ = json.Unmarshal(body, &envelope)

	if envelope.Error != nil || resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyGraphError(resp.StatusCode, envelope.Error)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", provider.ErrProviderRejected, err)
	}
	return nil
}

// transportError drops the request URL from err. It can carry
// credentials and ends up in logs and responses.
func transportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return fmt.Errorf("%w: %v", provider.ErrProviderUnavailable, err)
}

func classifyGraphError(status int, gErr *graphError) error {
	if gErr == nil {
		if status == http.StatusUnauthorized {
			return fmt.Errorf("%w: http %d", provider.ErrTokenInvalid, status)
		}
		return fmt.Errorf("%w: http %d", provider.ErrProviderRejected, status)
	}
	if gErr.Code == codeInvalidToken || status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", provider.ErrTokenInvalid, gErr.Message)
	}
	return fmt.Errorf("%w: %s (code %d)", provider.ErrProviderRejected, gErr.Message, gErr.Code)
}

func classifyOAuthError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		msg := retrieveErr.ErrorDescription
		if msg == "" {
			var envelope graphErrorEnvelope
			if json.Unmarshal(retrieveErr.Body, &envelope) == nil && envelope.Error != nil {
				msg = envelope.Error.Message
			}
		}
		if msg == "" && retrieveErr.Response != nil {
			msg = retrieveErr.Response.Status
		}
		return fmt.Errorf("%w: %s", provider.ErrProviderRejected, msg)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return transportError(err)
	}
	return fmt.Errorf("%w: %v", provider.ErrProviderRejected, err)
}

func normalizeScopes(scopes []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		normalized := strings.TrimSpace(strings.ToLower(scope))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	sort.Strings(out)
	return out
}

var _ provider.Client = (*Provider)(nil)
