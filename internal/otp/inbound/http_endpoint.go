package inbound

import (
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the OTP lifecycle.
type HTTPEndpoint struct {
	uc         uc
	exposeCode bool
}

func (h *HTTPEndpoint) toResponse(out *usecase.GenerateOutput) GenerateResponse {
	resp := GenerateResponse{
		CorrelationID: out.CorrelationID,
		ExpiresIn:     int64(out.ExpiresIn.Seconds()),
	}
	if h.exposeCode {
		resp.Code = out.Code
	}
	return resp
}

// Generate issues a new code and dispatches it to the recipient.
// @Summary Generate code
// @Description Issues a numeric code for the identifier, superseding any active one, and dispatches it asynchronously.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Generate payload"
// @Success 200 {object} router.successResponse{data=GenerateResponse} "Code issued"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 503 {object} router.errorResponse "Code store unavailable"
// @Router /api/v1/otp/generate [post]
func (h *HTTPEndpoint) Generate(r *router.Request) (any, error) {
	var req GenerateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.Generate(r.Context(), usecase.GenerateInput{
		Identifier: req.Identifier,
		Channel:    req.Channel,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Locale:     req.Locale,
	})
	if err != nil {
		return nil, err
	}

	return h.toResponse(out), nil
}

// Verify checks a submitted code. A matching code is consumed.
// @Summary Verify code
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Code verified"
// @Failure 400 {object} router.errorResponse "Code does not match"
// @Failure 404 {object} router.errorResponse "No active code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 503 {object} router.errorResponse "Code store unavailable"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Identifier: req.Identifier,
		Code:       req.Code,
	}); err != nil {
		return nil, err
	}

	return VerifyResponse{Verified: true}, nil
}

// Resend issues a replacement code once the cooldown has elapsed.
// @Summary Resend code
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body ResendRequest true "Resend payload"
// @Success 200 {object} router.successResponse{data=GenerateResponse} "Code issued"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Cooldown active" example:{"message":"Please wait before requesting a new code","data":{"remaining_seconds":12}}
// @Failure 503 {object} router.errorResponse "Code store unavailable"
// @Router /api/v1/otp/resend [post]
func (h *HTTPEndpoint) Resend(r *router.Request) (any, error) {
	var req ResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.Resend(r.Context(), usecase.ResendInput{
		Identifier: req.Identifier,
		Channel:    req.Channel,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Locale:     req.Locale,
	})
	if err != nil {
		return nil, err
	}

	return h.toResponse(out), nil
}

// SelfTest runs the lifecycle against the live store without sending anything.
// @Summary Run self-test
// @Tags OTP, Operations
// @Accept json
// @Produce json
// @Param request body SelfTestRequest false "Optional identifier"
// @Success 200 {object} router.successResponse{data=SelfTestResponse} "All steps passed"
// @Failure 503 {object} router.successResponse{data=SelfTestResponse} "At least one step failed"
// @Router /api/v1/otp/self-test [post]
func (h *HTTPEndpoint) SelfTest(r *router.Request) (any, error) {
	var req SelfTestRequest
	if r.ContentLength != 0 {
		if err := r.DecodeBody(&req); err != nil {
			return nil, err
		}
	}

	out, err := h.uc.SelfTest(r.Context(), usecase.SelfTestInput{Identifier: req.Identifier})
	if err != nil {
		return nil, err
	}

	steps := make([]SelfTestStep, 0, len(out.Steps))
	for _, s := range out.Steps {
		steps = append(steps, SelfTestStep{
			Name:       s.Name,
			Passed:     s.Passed,
			Detail:     s.Detail,
			DurationMS: s.Duration.Milliseconds(),
		})
	}

	return SelfTestResponse{Identifier: out.Identifier, Passed: out.Passed, Steps: steps}, nil
}
