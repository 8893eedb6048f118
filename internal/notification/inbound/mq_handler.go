package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/notification/outbound/mq"
	"github.com/shandysiswandi/gotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
)

type MQHandler struct {
	uc   uc
	idem idempotency.Idempotency
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(mq.KeyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// Envelope makes the single delivery attempt for a queued envelope. Brokers
// redeliver at least once, so the attempt is guarded by the correlation id.
// A failed attempt is final and already on the status record; redelivery is
// only requested when the guard itself could not be taken.
func (h *MQHandler) Envelope(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "Envelope")
	defer span.End()

	var env entity.Envelope
	if err := json.Unmarshal(msg.Body(), &env); err != nil {
		slog.ErrorContext(ctx, "failed to parse envelope message", "message_id", msg.ID(), "error", err)
		return nil
	}
	if env.CorrelationID == "" {
		slog.ErrorContext(ctx, "envelope message has no correlation id", "message_id", msg.ID())
		return nil
	}

	slog.InfoContext(ctx, "consume: envelope", "envelope", env)

	ran := false
	err := h.idem.Exec(ctx, env.CorrelationID, func(ctx context.Context) error {
		ran = true
		return h.uc.Process(ctx, env)
	})
	switch {
	case errors.Is(err, idempotency.ErrAlreadyCompleted),
		errors.Is(err, idempotency.ErrAlreadyFailed),
		errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.InfoContext(ctx, "skip duplicate envelope", "correlation_id", env.CorrelationID, "reason", err.Error())
	case err != nil && !ran:
		slog.ErrorContext(ctx, "failed to acquire envelope guard", "correlation_id", env.CorrelationID, "error", err)
		return err
	}

	return nil
}
