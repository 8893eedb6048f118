package sender

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Sender names, also used as breaker names.
const (
	NameSalesforce = "salesforce"
	NameSimulation = "simulation"
	NameSMTP       = "smtp"
)

func startSpan(ctx context.Context, ins instrument.Instrumentation, env entity.Envelope) (context.Context, trace.Span) {
	return ins.Tracer("notification.outbound.sender").Start(ctx, "Send", trace.WithAttributes(
		attribute.String("correlation_id", env.CorrelationID),
		attribute.String("channel", env.Channel.String()),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
