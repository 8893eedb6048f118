package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrClosed is returned by operations on a closed client.
	ErrClosed = errors.New("messaging: client closed")
	// ErrDestinationRequired is returned when the topic or subject is empty.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
)

// Messaging publishes and consumes messages on one broker.
type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

// Publisher publishes messages to a topic or subject.
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a topic or subject. Consume blocks until ctx
// is done or the subscription fails.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	// Key is used by Kafka for partitioning; the correlation id keeps one
	// envelope on one partition.
	Key     []byte
	Body    []byte
	Headers map[string]string
}

// PublishResult carries what the broker reported about a publish.
type PublishResult struct {
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	Key() []byte
	Header(key string) string
	// ID identifies the delivery for logging.
	ID() string
	Timestamp() time.Time

	// Ack marks the message processed.
	Ack(ctx context.Context) error
	// Nack asks for redelivery when the broker supports it.
	Nack(ctx context.Context) error
}
