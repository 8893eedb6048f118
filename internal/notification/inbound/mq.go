package inbound

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
)

// ConsumerConfig names the dispatch topic and the consumer group reading it.
type ConsumerConfig struct {
	Topic       string
	Group       string
	Concurrency int
}

// RegisterMQConsumer runs the envelope consumer in the background until ctx
// ends. A broken subscription is re-established with capped exponential
// backoff.
func RegisterMQConsumer(
	ctx context.Context,
	cfg ConsumerConfig,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	idem idempotency.Idempotency,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) bool {
	h := &MQHandler{uc: uc, idem: idem, uuid: uuid, ins: ins}

	return routine.Go(ctx, func(pCtx context.Context) error {
		slog.InfoContext(pCtx, "Running job for handling consumer", "topic", cfg.Topic, "group", cfg.Group)
		return consume(pCtx, cfg, messenger, h.Envelope)
	})
}

func consume(ctx context.Context, cfg ConsumerConfig, messenger messaging.Consumer, handler messaging.Handler) error {
	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := messenger.Consume(ctx, cfg.Topic, handler,
			messaging.WithGroup(cfg.Group),
			messaging.WithConcurrency(cfg.Concurrency),
			messaging.WithAutoAck(true),
		)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, messaging.ErrClosed) {
			slog.InfoContext(ctx, "envelope consumer stopped", "topic", cfg.Topic)
			return nil
		}

		slog.ErrorContext(ctx, "failed to consume envelopes", "topic", cfg.Topic, "error", err)
		return retry.RetryableError(err)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
