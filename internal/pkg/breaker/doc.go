// Package breaker guards calls to an unreliable dependency with a count-based
// sliding-window circuit breaker.
//
// A Breaker starts CLOSED and records the outcome of every call it lets
// through as success, failure or slow. Once the window holds at least
// MinimumCalls outcomes, a failure rate (or slow-call rate) at or above its
// threshold opens the circuit. An OPEN breaker rejects calls with
// ErrNotPermitted without running them. After WaitDuration the breaker moves
// to HALF_OPEN and lets PermittedCallsInHalfOpen trial calls through: the
// first successful trial closes the circuit with an empty window, the first
// failed trial opens it again.
//
// A breaker never retries. Guard pairs the call with an explicit fallback:
//
//	err := b.Guard(ctx, send, func(ctx context.Context, err error) error {
//	    if breaker.IsNotPermitted(err) {
//	        return ErrServiceUnavailable
//	    }
//	    return fmt.Errorf("%w: %w", ErrDownstream, err)
//	})
//
// Breakers are shared by name through a Registry constructed at startup.
package breaker
