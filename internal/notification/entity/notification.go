package entity

import (
	"log/slog"
	"time"
)

type Channel string

const (
	ChannelSMS   Channel = "SMS"
	ChannelEmail Channel = "EMAIL"
)

func (c Channel) String() string {
	return string(c)
}

type DeliveryStatus string

const (
	StatusCreated    DeliveryStatus = "CREATED"
	StatusProcessing DeliveryStatus = "PROCESSING"
	StatusSent       DeliveryStatus = "SENT"
	StatusFailed     DeliveryStatus = "FAILED"
)

func (s DeliveryStatus) String() string {
	return string(s)
}

// Terminal reports whether no further transition can follow.
func (s DeliveryStatus) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Envelope is one delivery of one code. It lives only while it is being
// processed; the plaintext code is never written to the status sink.
type Envelope struct {
	CorrelationID string    `json:"correlation_id"`
	Channel       Channel   `json:"channel"`
	Identifier    string    `json:"identifier"`
	Code          string    `json:"code"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Locale        string    `json:"locale"`
	OrigSystem    string    `json:"orig_system"`
	CreatedAt     time.Time `json:"created_at"`
}

// LogValue keeps the code out of logs.
func (e Envelope) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("correlation_id", e.CorrelationID),
		slog.String("channel", e.Channel.String()),
		slog.String("identifier", e.Identifier),
		slog.String("locale", e.Locale),
	)
}

// Record builds the status sink entry for e at status.
func (e Envelope) Record(status DeliveryStatus, at time.Time) DeliveryRecord {
	return DeliveryRecord{
		CorrelationID: e.CorrelationID,
		Channel:       e.Channel,
		Identifier:    e.Identifier,
		Status:        status,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     at,
	}
}

// DeliveryRecord is what the status sink keeps per correlation id.
type DeliveryRecord struct {
	CorrelationID string         `json:"correlation_id"`
	Channel       Channel        `json:"channel"`
	Identifier    string         `json:"identifier"`
	Status        DeliveryStatus `json:"status"`
	ErrorCode     string         `json:"error_code,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// SimulationSettings drive the simulated sender.
type SimulationSettings struct {
	Delay       time.Duration
	FailureRate float64
	Timeout     time.Duration
}
