package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// KeyOfCorrelationID is the message header carrying the envelope correlation id.
const KeyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	topic  string
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, topic string, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, topic: topic, ins: ins}
}

// PublishEnvelope puts env on the dispatch topic keyed by its correlation id.
func (m *Messaging) PublishEnvelope(ctx context.Context, env entity.Envelope) error {
	ctx, span := m.ins.Tracer("notification.outbound.mq").Start(ctx, "PublishEnvelope")
	defer span.End()

	body, err := json.Marshal(env)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	res, err := m.client.Publish(ctx, m.topic, messaging.OutgoingMessage{
		Key:     []byte(env.CorrelationID),
		Body:    body,
		Headers: map[string]string{KeyOfCorrelationID: env.CorrelationID},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(
		attribute.String("messaging.destination", res.Topic),
		attribute.Int64("messaging.offset", res.Offset),
	)

	return nil
}
