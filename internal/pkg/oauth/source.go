package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/jwt"
)

// Modes accepted by NewFromMode.
const (
	ModeSFMC              = "sfmc"
	ModeJWTBearer         = "jwt"
	ModeClientCredentials = "client_credentials"
)

const grantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"

var (
	// ErrTokenRequest is returned when the authorization server rejects a request.
	ErrTokenRequest = errors.New("oauth: token request failed")
	// ErrUnsupportedMode is returned by NewFromMode for unknown modes.
	ErrUnsupportedMode = errors.New("oauth: unsupported mode")
)

// Config describes how to reach the authorization server.
type Config struct {
	Mode         string
	TokenURL     string
	ClientID     string
	ClientSecret string
	AccountID    string
	Scopes       []string
	// SigningSecret signs JWT-bearer assertions.
	SigningSecret string
	// Audience of the JWT-bearer assertion; defaults to TokenURL.
	Audience string
	// TokenTTL is used when the server omits expires_in.
	TokenTTL time.Duration
	// RefreshMargin defaults to DefaultRefreshMargin.
	RefreshMargin time.Duration
	// RequestTimeout bounds a single token request.
	RequestTimeout time.Duration
}

// NewFromMode builds the token source for cfg.Mode wrapped in a Cache.
func NewFromMode(ctx context.Context, cfg Config, client *http.Client, clk clock.Clocker) (*Cache, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if clk == nil {
		clk = clock.New()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.TokenURL) == "" {
		return nil, fmt.Errorf("oauth: token url is required")
	}

	var src oauth2.TokenSource
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case ModeSFMC, "":
		src = &jsonCredentialsSource{cfg: cfg, client: client, clock: clk}

	case ModeJWTBearer:
		audience := cfg.Audience
		if audience == "" {
			audience = cfg.TokenURL
		}
		signer, err := jwt.NewHS256(jwt.Config{
			Secret:   []byte(cfg.SigningSecret),
			ClientID: cfg.ClientID,
			Audience: audience,
			Clock:    clk,
		})
		if err != nil {
			return nil, err
		}
		src = &jwtBearerSource{cfg: cfg, client: client, clock: clk, signer: signer}

	case ModeClientCredentials:
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		src = cc.TokenSource(context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, client))

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, cfg.Mode)
	}

	return NewCache(src, cfg.RefreshMargin), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	InstanceURL string `json:"instance_url,omitempty"`
}

// jsonCredentialsSource posts client credentials as a JSON document.
type jsonCredentialsSource struct {
	cfg    Config
	client *http.Client
	clock  clock.Clocker
}

func (s *jsonCredentialsSource) Token() (*oauth2.Token, error) {
	body := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     s.cfg.ClientID,
		"client_secret": s.cfg.ClientSecret,
	}
	if s.cfg.AccountID != "" {
		body["account_id"] = s.cfg.AccountID
	}
	if len(s.cfg.Scopes) > 0 {
		body["scope"] = strings.Join(s.cfg.Scopes, " ")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	return exchange(s.client, s.cfg, s.clock, bytes.NewReader(payload), "application/json")
}

// jwtBearerSource exchanges a signed assertion for an access token.
type jwtBearerSource struct {
	cfg    Config
	client *http.Client
	clock  clock.Clocker
	signer jwt.Signer
}

func (s *jwtBearerSource) Token() (*oauth2.Token, error) {
	assertion, err := s.signer.Sign()
	if err != nil {
		return nil, fmt.Errorf("oauth: sign assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", grantTypeJWTBearer)
	form.Set("assertion", assertion)

	return exchange(s.client, s.cfg, s.clock, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func exchange(client *http.Client, cfg Config, clk clock.Clocker, body io.Reader, contentType string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTokenRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrTokenRequest, resp.StatusCode, truncate(raw, 256))
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrTokenRequest, err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access_token", ErrTokenRequest)
	}

	ttl := time.Duration(tr.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = cfg.TokenTTL
	}

	tok := &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
	}
	if ttl > 0 {
		tok.Expiry = clk.Now().Add(ttl)
	}
	if tr.InstanceURL != "" {
		tok = tok.WithExtra(map[string]any{"instance_url": tr.InstanceURL})
	}

	return tok, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
