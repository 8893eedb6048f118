package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
)

const headerAPIKey = "X-API-Key"

// tokenSource is the cached bearer credential for the provider.
type tokenSource interface {
	AccessToken() (string, error)
	Invalidate()
}

type SalesforceConfig struct {
	URL         string
	APIKeySMS   string
	APIKeyEmail string
	Timeout     time.Duration
}

type salesforceRequest struct {
	ApplicationMobileNumber string `json:"ApplicationMobileNumber,omitempty"`
	ApplicationEmailAddress string `json:"ApplicationEmailAddress,omitempty"`
	ApplicantFirstName      string `json:"ApplicantFirstName"`
	ApplicantLastName       string `json:"ApplicantLastName"`
	Locale                  string `json:"Locale"`
	OTP                     string `json:"OTP"`
	OrigSystem              string `json:"OrigSystem"`
}

// Salesforce posts the code to the provider's OTP endpoint.
type Salesforce struct {
	cfg    SalesforceConfig
	client *http.Client
	tokens tokenSource
	ins    instrument.Instrumentation
}

func NewSalesforce(cfg SalesforceConfig, tokens tokenSource, ins instrument.Instrumentation) *Salesforce {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Salesforce{
		cfg:    cfg,
		tokens: tokens,
		ins:    ins,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (*Salesforce) Name() string {
	return NameSalesforce
}

func (s *Salesforce) Send(ctx context.Context, env entity.Envelope) (err error) {
	ctx, span := startSpan(ctx, s.ins, env)
	defer func() { endSpan(span, err) }()

	payload := salesforceRequest{
		ApplicantFirstName: env.FirstName,
		ApplicantLastName:  env.LastName,
		Locale:             env.Locale,
		OTP:                env.Code,
		OrigSystem:         env.OrigSystem,
	}

	var apiKey string
	switch env.Channel {
	case entity.ChannelSMS:
		payload.ApplicationMobileNumber = env.Identifier
		apiKey = s.cfg.APIKeySMS
	case entity.ChannelEmail:
		payload.ApplicationEmailAddress = env.Identifier
		apiKey = s.cfg.APIKeyEmail
	default:
		return fmt.Errorf("%w: %q", entity.ErrUnsupportedChannel, env.Channel)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	token, err := s.tokens.AccessToken()
	if err != nil {
		return fmt.Errorf("salesforce: acquire token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(headerAPIKey, apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("salesforce: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if resp.StatusCode == http.StatusUnauthorized {
		// next send fetches a fresh token; this one is not retried
		slog.WarnContext(ctx, "provider rejected bearer token, invalidating cache", "correlation_id", env.CorrelationID)
		s.tokens.Invalidate()
	}

	return fmt.Errorf("salesforce: status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
}
