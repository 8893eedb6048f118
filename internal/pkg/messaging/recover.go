package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/pkg/stacktrace"
)

// handle runs handler with panic recovery and applies the auto-ack policy.
func handle(ctx context.Context, kind string, handler Handler, msg Message, autoAck bool) error {
	herr := callHandlerWithRecover(ctx, kind, func() error {
		return handler(ctx, msg)
	})
	if herr != nil {
		slog.WarnContext(ctx, "messaging handler failed", "kind", kind, "message_id", msg.ID(), "error", herr)
	}
	if !autoAck {
		return nil
	}
	if herr == nil {
		return msg.Ack(ctx)
	}
	return msg.Nack(ctx)
}

func callHandlerWithRecover(ctx context.Context, kind string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "panic", rvr, "stack", stacktrace.Current())
			err = fmt.Errorf("messaging: panic in %s handler: %v", kind, rvr)
		}
	}()

	return fn()
}
