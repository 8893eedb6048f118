package breaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
)

// ErrNotPermitted is returned, without running the call, while the breaker is
// OPEN or when all HALF_OPEN trial slots are taken.
var ErrNotPermitted = errors.New("breaker: call not permitted")

// IsNotPermitted reports whether err is a rejection by a breaker.
func IsNotPermitted(err error) bool {
	return errors.Is(err, ErrNotPermitted)
}

// State is the breaker position.
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is a point-in-time view of a breaker. Rates are -1 while the
// window holds fewer than MinimumCalls outcomes.
type Snapshot struct {
	Name              string
	State             State
	FailureRate       float64
	SlowCallRate      float64
	BufferedCalls     int
	FailedCalls       int
	SuccessfulCalls   int
	SlowCalls         int
	NotPermittedCalls int64
	Config            Config
}

// Breaker is a single named circuit breaker. It is safe for concurrent use.
type Breaker struct {
	name  string
	cfg   Config
	clock clock.Clocker
	hooks hooks

	isFailure func(error) bool

	mu           sync.Mutex
	state        State
	window       *window
	openedAt     time.Time
	halfOpenUsed int
	generation   uint64
	notPermitted int64
}

type transition struct {
	from, to State
}

// New constructs a CLOSED breaker.
func New(name string, cfg Config, opts ...Option) *Breaker {
	cfg = cfg.normalize()

	b := &Breaker{
		name:      name,
		cfg:       cfg,
		clock:     clock.New(),
		isFailure: func(err error) bool { return err != nil },
		state:     StateClosed,
		window:    newWindow(cfg.WindowSize),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}

// Do runs fn if the breaker permits it and records the outcome. It returns
// ErrNotPermitted when the call was skipped, otherwise whatever fn returned.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	gen, err := b.acquire(ctx)
	if err != nil {
		return err
	}

	start := b.clock.Now()
	callErr := fn(ctx)
	b.record(ctx, gen, callErr, b.clock.Now().Sub(start))

	return callErr
}

// Guard is Do with a fallback. fallback receives every non-nil error,
// ErrNotPermitted included, and its result replaces the call result. A nil
// fallback returns the error unchanged.
func (b *Breaker) Guard(
	ctx context.Context,
	fn func(ctx context.Context) error,
	fallback func(ctx context.Context, err error) error,
) error {
	err := b.Do(ctx, fn)
	if err == nil || fallback == nil {
		return err
	}
	return fallback(ctx, err)
}

// Run is Do for calls that produce a value.
func Run[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := b.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// State returns the current state, applying a due OPEN to HALF_OPEN move.
func (b *Breaker) State() State {
	b.mu.Lock()
	t := b.refreshLocked()
	s := b.state
	b.mu.Unlock()

	b.notify(context.Background(), t)
	return s
}

// Snapshot returns counters for status reporting.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	t := b.refreshLocked()

	s := Snapshot{
		Name:              b.name,
		State:             b.state,
		FailureRate:       -1,
		SlowCallRate:      -1,
		BufferedCalls:     b.window.size,
		FailedCalls:       b.window.failed,
		SuccessfulCalls:   b.window.size - b.window.failed,
		SlowCalls:         b.window.slow,
		NotPermittedCalls: b.notPermitted,
		Config:            b.cfg,
	}
	if b.window.size >= b.cfg.MinimumCalls {
		s.FailureRate = b.window.failureRate()
		s.SlowCallRate = b.window.slowRate()
	}
	b.mu.Unlock()

	b.notify(context.Background(), t)
	return s
}

// Reset forces the breaker CLOSED with an empty window.
func (b *Breaker) Reset() {
	b.mu.Lock()
	t := b.transitionLocked(StateClosed)
	b.notPermitted = 0
	b.mu.Unlock()

	b.notify(context.Background(), t)
}

func (b *Breaker) acquire(ctx context.Context) (uint64, error) {
	b.mu.Lock()
	t := b.refreshLocked()

	var err error
	switch b.state {
	case StateOpen:
		err = ErrNotPermitted
	case StateHalfOpen:
		if b.halfOpenUsed >= b.cfg.PermittedCallsInHalfOpen {
			err = ErrNotPermitted
		} else {
			b.halfOpenUsed++
		}
	}
	if err != nil {
		b.notPermitted++
	}
	gen := b.generation
	b.mu.Unlock()

	b.notify(ctx, t)
	if err != nil {
		b.hooks.reject(b.name)
	}
	return gen, err
}

func (b *Breaker) record(ctx context.Context, gen uint64, err error, elapsed time.Duration) {
	failed := b.isFailure(err)
	slow := elapsed >= b.cfg.SlowCallDuration

	b.mu.Lock()
	// The state moved on while the call was running; its outcome belongs to
	// a window that no longer exists.
	if gen != b.generation {
		b.mu.Unlock()
		b.hooks.call(b.name, failed, slow)
		return
	}

	var t *transition
	switch b.state {
	case StateClosed:
		var o outcome
		if failed {
			o |= outcomeFailed
		}
		if slow {
			o |= outcomeSlow
		}
		b.window.add(o)

		if b.window.size >= b.cfg.MinimumCalls &&
			(b.window.failureRate() >= b.cfg.FailureRateThreshold ||
				b.window.slowRate() >= b.cfg.SlowCallRateThreshold) {
			t = b.transitionLocked(StateOpen)
		}

	case StateHalfOpen:
		if failed {
			t = b.transitionLocked(StateOpen)
		} else {
			t = b.transitionLocked(StateClosed)
		}
	}
	b.mu.Unlock()

	b.hooks.call(b.name, failed, slow)
	b.notify(ctx, t)
}

// refreshLocked moves an OPEN breaker to HALF_OPEN once the wait is over.
func (b *Breaker) refreshLocked() *transition {
	if b.state == StateOpen && b.clock.Now().Sub(b.openedAt) >= b.cfg.WaitDuration {
		return b.transitionLocked(StateHalfOpen)
	}
	return nil
}

func (b *Breaker) transitionLocked(to State) *transition {
	from := b.state
	b.state = to
	b.generation++

	switch to {
	case StateOpen:
		b.openedAt = b.clock.Now()
	case StateHalfOpen:
		b.halfOpenUsed = 0
	case StateClosed:
		b.window.reset()
		b.halfOpenUsed = 0
	}

	if from == to {
		return nil
	}
	return &transition{from: from, to: to}
}

func (b *Breaker) notify(ctx context.Context, t *transition) {
	if t == nil {
		return
	}

	level := slog.LevelInfo
	if t.to == StateOpen {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "circuit breaker state changed",
		"breaker", b.name, "from", t.from.String(), "to", t.to.String())

	b.hooks.stateChange(b.name, t.from, t.to)
}
