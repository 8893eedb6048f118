package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
)

type DispatchInput struct {
	Channel    entity.Channel
	Identifier string
	Code       string
	FirstName  string
	LastName   string
	Locale     string
}

// Dispatch records a new envelope as CREATED and hands it off for delivery.
// It never waits for the outcome and never fails: problems are recorded on
// the envelope status. The returned correlation id is the status lookup key.
func (s *Usecase) Dispatch(ctx context.Context, in DispatchInput) string {
	ctx, span := s.startSpan(ctx, "Dispatch")
	defer span.End()

	locale := strings.TrimSpace(in.Locale)
	if locale == "" {
		locale = s.cfg.GetString("notification.locale.default")
	}

	env := entity.Envelope{
		CorrelationID: s.uuid.Generate(),
		Channel:       in.Channel,
		Identifier:    in.Identifier,
		Code:          in.Code,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Locale:        locale,
		OrigSystem:    s.cfg.GetString("notification.orig_system"),
		CreatedAt:     s.clock.Now(),
	}

	s.save(ctx, env.Record(entity.StatusCreated, env.CreatedAt))

	// the request context ends with the response; delivery outlives it
	dctx := instrument.SetCorrelationID(context.WithoutCancel(ctx), instrument.GetCorrelationID(ctx))

	if s.repoQueue != nil {
		if err := s.repoQueue.PublishEnvelope(dctx, env); err != nil {
			slog.ErrorContext(ctx, "failed to publish envelope", "envelope", env, "error", err)
			s.fail(dctx, env, err)
		}
		return env.CorrelationID
	}

	accepted := s.workers.Submit(dctx, func(c context.Context) error {
		_ = s.Process(c, env)
		return nil
	})
	if !accepted {
		slog.ErrorContext(ctx, "dispatch queue rejected envelope", "envelope", env)
		s.fail(dctx, env, entity.ErrQueueFull)
	}

	return env.CorrelationID
}
