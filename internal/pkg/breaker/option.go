package breaker

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
)

// Option customizes a Breaker.
type Option func(b *Breaker)

type hooks struct {
	onStateChange []func(name string, from, to State)
	onCall        []func(name string, failed, slow bool)
	onReject      []func(name string)
}

func (h hooks) stateChange(name string, from, to State) {
	for _, fn := range h.onStateChange {
		fn(name, from, to)
	}
}

func (h hooks) call(name string, failed, slow bool) {
	for _, fn := range h.onCall {
		fn(name, failed, slow)
	}
}

func (h hooks) reject(name string) {
	for _, fn := range h.onReject {
		fn(name)
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clocker) Option {
	return func(b *Breaker) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithIsFailure decides which call errors count as failures. Errors it
// rejects are recorded as successes.
func WithIsFailure(fn func(err error) bool) Option {
	return func(b *Breaker) {
		if fn != nil {
			b.isFailure = func(err error) bool { return err != nil && fn(err) }
		}
	}
}

// OnStateChange registers a hook called after every transition.
func OnStateChange(fn func(name string, from, to State)) Option {
	return func(b *Breaker) { b.hooks.onStateChange = append(b.hooks.onStateChange, fn) }
}

// OnCall registers a hook called after every permitted call.
func OnCall(fn func(name string, failed, slow bool)) Option {
	return func(b *Breaker) { b.hooks.onCall = append(b.hooks.onCall, fn) }
}

// OnReject registers a hook called for every rejected call.
func OnReject(fn func(name string)) Option {
	return func(b *Breaker) { b.hooks.onReject = append(b.hooks.onReject, fn) }
}

// WithMeter records calls, rejections and transitions as OpenTelemetry counters.
func WithMeter(meter metric.Meter) Option {
	return func(b *Breaker) {
		if meter == nil {
			return
		}

		calls, errC := meter.Int64Counter("breaker.calls",
			metric.WithDescription("Calls let through a circuit breaker"))
		rejected, errR := meter.Int64Counter("breaker.rejected",
			metric.WithDescription("Calls rejected by an open circuit breaker"))
		transitions, errT := meter.Int64Counter("breaker.transitions",
			metric.WithDescription("Circuit breaker state transitions"))
		if errC != nil || errR != nil || errT != nil {
			return
		}

		ctx := context.Background()
		OnCall(func(name string, failed, slow bool) {
			calls.Add(ctx, 1, metric.WithAttributes(
				attribute.String("breaker", name),
				attribute.Bool("failed", failed),
				attribute.Bool("slow", slow),
			))
		})(b)
		OnReject(func(name string) {
			rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("breaker", name)))
		})(b)
		OnStateChange(func(name string, from, to State) {
			transitions.Add(ctx, 1, metric.WithAttributes(
				attribute.String("breaker", name),
				attribute.String("from", from.String()),
				attribute.String("to", to.String()),
			))
		})(b)
	}
}
