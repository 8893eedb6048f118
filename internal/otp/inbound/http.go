package inbound

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

type uc interface {
	Generate(ctx context.Context, in usecase.GenerateInput) (*usecase.GenerateOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) error
	Resend(ctx context.Context, in usecase.ResendInput) (*usecase.GenerateOutput, error)
	SelfTest(ctx context.Context, in usecase.SelfTestInput) (*usecase.SelfTestOutput, error)
}

// RegisterHTTPEndpoint mounts the OTP routes. exposeCode echoes the plaintext
// code in generate/resend responses and must stay off outside test
// environments.
func RegisterHTTPEndpoint(r *router.Router, uc uc, exposeCode bool) {
	end := &HTTPEndpoint{uc: uc, exposeCode: exposeCode}

	r.POST("/api/v1/otp/generate", end.Generate)
	r.POST("/api/v1/otp/verify", end.Verify)
	r.POST("/api/v1/otp/resend", end.Resend)

	r.POST("/api/v1/otp/self-test", end.SelfTest, r.Admin()) // operator only
}
