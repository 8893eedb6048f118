package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/breaker"
)

// Process makes the single delivery attempt for env through the sender's
// breaker and records PROCESSING then SENT or FAILED. The returned error is
// the recorded failure, for callers that want it; nothing retries.
func (s *Usecase) Process(ctx context.Context, env entity.Envelope) error {
	ctx, span := s.startSpan(ctx, "Process")
	defer span.End()

	s.save(ctx, env.Record(entity.StatusProcessing, s.clock.Now()))

	err := s.breakers.Get(s.sender.Name()).Guard(ctx,
		func(ctx context.Context) error {
			return s.sender.Send(ctx, env)
		},
		fallback,
	)
	if err != nil {
		slog.WarnContext(ctx, "delivery failed", "envelope", env, "error_code", entity.ErrorCode(err), "error", err)
		s.fail(ctx, env, err)
		return err
	}

	slog.InfoContext(ctx, "delivery sent", "envelope", env)
	s.save(ctx, env.Record(entity.StatusSent, s.clock.Now()))

	return nil
}

// fallback tells a rejected call apart from a failed one.
func fallback(_ context.Context, err error) error {
	if breaker.IsNotPermitted(err) {
		return fmt.Errorf("%w: %w", entity.ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%w: %w", entity.ErrDownstreamFailure, err)
}
