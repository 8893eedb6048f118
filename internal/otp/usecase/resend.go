package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type ResendInput = GenerateInput

func (s *Usecase) Resend(ctx context.Context, in ResendInput) (*GenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "Resend")
	defer span.End()

	in, err := s.sanitize(in)
	if err != nil {
		return nil, err
	}

	return s.resend(ctx, in, true)
}

func (s *Usecase) resend(ctx context.Context, in ResendInput, dispatch bool) (*GenerateOutput, error) {
	until, found, err := s.repoCode.GetCooldown(ctx, in.Identifier)
	if err != nil {
		s.logStoreError(ctx, "failed to repo get cooldown", in.Identifier, err)
		return nil, storeError(err)
	}

	if now := s.clock.Now(); found && now.Before(until) {
		cd := &entity.CooldownError{Remaining: until.Sub(now)}
		slog.WarnContext(ctx, "resend requested during cooldown", "identifier", in.Identifier, "remaining_seconds", cd.RemainingSeconds())
		return nil, goerror.NewBusinessWrap(cd, "Please wait before requesting a new code", goerror.CodeTooManyRequest)
	}

	return s.issue(ctx, in, dispatch)
}
