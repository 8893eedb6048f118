package entity

import "errors"

var (
	// ErrServiceUnavailable means the breaker refused the call.
	ErrServiceUnavailable = errors.New("notification: service unavailable")
	// ErrDownstreamFailure means the single delivery attempt failed.
	ErrDownstreamFailure = errors.New("notification: downstream failure")
	// ErrTimeout is raised by the simulated sender when its delay exceeds the timeout.
	ErrTimeout = errors.New("notification: downstream timeout")
	// ErrUnsupportedChannel is raised by a sender that cannot serve the channel.
	ErrUnsupportedChannel = errors.New("notification: unsupported channel")
	// ErrRecordNotFound means the status sink has nothing for the correlation id.
	ErrRecordNotFound = errors.New("notification: delivery record not found")
	// ErrQueueFull means the dispatch queue had no room left for the envelope.
	ErrQueueFull = errors.New("notification: dispatch queue full")
)

// Error codes stored with FAILED records.
const (
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeDownstreamFailure  = "DOWNSTREAM_FAILURE"
	ErrorCodeTimeout            = "TIMEOUT"
	ErrorCodeDispatchRejected   = "DISPATCH_REJECTED"
)

// ErrorCode classifies a dispatch-path error for the status sink.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrServiceUnavailable):
		return ErrorCodeServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return ErrorCodeTimeout
	case errors.Is(err, ErrQueueFull):
		return ErrorCodeDispatchRejected
	default:
		return ErrorCodeDownstreamFailure
	}
}
