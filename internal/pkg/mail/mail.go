package mail

import (
	"context"
	"io"
)

// Message is an email payload.
type Message struct {
	// From falls back to the sender's configured default when empty.
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
	// Headers are extra MIME headers such as X-Correlation-ID.
	Headers map[string]string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
