package inbound

import "net/http"

type GenerateRequest struct {
	Identifier string `json:"identifier"`
	Channel    string `json:"channel"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Locale     string `json:"locale"`
}

type GenerateResponse struct {
	Code          string `json:"code,omitempty"`
	CorrelationID string `json:"correlation_id"`
	ExpiresIn     int64  `json:"expires_in"`
}

func (GenerateResponse) Message() string {
	return "Code has been issued and is being delivered."
}

type ResendRequest = GenerateRequest

type VerifyRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type VerifyResponse struct {
	Verified bool `json:"verified"`
}

func (VerifyResponse) Message() string {
	return "Code verified successfully."
}

type SelfTestRequest struct {
	Identifier string `json:"identifier"`
}

type SelfTestStep struct {
	Name       string `json:"name"`
	Passed     bool   `json:"passed"`
	Detail     string `json:"detail,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type SelfTestResponse struct {
	Identifier string         `json:"identifier"`
	Passed     bool           `json:"passed"`
	Steps      []SelfTestStep `json:"steps"`
}

func (r SelfTestResponse) StatusCode() int {
	if r.Passed {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func (r SelfTestResponse) Message() string {
	if r.Passed {
		return "Self-test passed."
	}
	return "Self-test failed."
}
