// Package idempotency makes sure a keyed operation runs at most once per
// state TTL, across every process sharing the same store.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/kvstore"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrAlreadyFailed     = errors.New("idempotency: operation already failed")
	ErrInvalidState      = errors.New("idempotency: invalid state")
)

type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

func (s State) String() string {
	return string(s)
}

// Idempotency guards an operation by key.
type Idempotency interface {
	Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error)
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 10 * time.Minute
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an in-progress marker survives a crashed worker.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithStateTTL sets how long the final state is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = d }
}

// StateTracker stores operation state in a kvstore.KV.
type StateTracker struct {
	kv     kvstore.KV
	prefix string
}

// New returns a tracker namespacing its keys with prefix.
func New(kv kvstore.KV, prefix string) *StateTracker {
	if prefix == "" {
		prefix = "idempotency:"
	}
	return &StateTracker{kv: kv, prefix: prefix}
}

// Acquire returns StateNone when the caller now owns the operation, or the
// state left by an earlier owner.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	fk := s.prefix + key

	acquired, err := s.kv.SetNX(ctx, fk, StateInProgress.String(), lockDuration)
	if err != nil {
		return "", err
	}
	if acquired {
		return StateNone, nil
	}

	current, err := s.kv.Get(ctx, fk)
	if errors.Is(err, kvstore.ErrNotFound) {
		// expired between SetNX and Get
		if acquired, err = s.kv.SetNX(ctx, fk, StateInProgress.String(), lockDuration); err != nil {
			return "", err
		}
		if acquired {
			return StateNone, nil
		}
		return "", ErrInvalidState
	}
	if err != nil {
		return "", err
	}

	switch State(current) {
	case StateInProgress, StateCompleted, StateFailed:
		return State(current), nil
	default:
		return "", ErrInvalidState
	}
}

// Exec runs fn only if no other caller has run or is running key.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := &execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(o)
	}
	if o.lockDuration <= 0 {
		o.lockDuration = defaultLockDuration
	}
	if o.stateTTL <= 0 {
		o.stateTTL = defaultStateTTL
	}

	state, err := s.Acquire(ctx, key, o.lockDuration)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	}

	final := StateCompleted
	runErr := fn(ctx)
	if runErr != nil {
		final = StateFailed
	}

	if err := s.kv.Set(context.WithoutCancel(ctx), s.prefix+key, final.String(), o.stateTTL); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}
