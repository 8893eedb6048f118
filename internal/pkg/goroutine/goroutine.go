package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/shandysiswandi/gotp/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrPanic is collected when a task panics.
var ErrPanic = errors.New("goroutine: task panicked")

// Manager runs tasks on a bounded set of goroutines.
//
// A task is either accepted immediately or rejected; Go never blocks waiting
// for a free slot. Errors returned by tasks are collected and surfaced by Wait.
type Manager struct {
	mu   sync.Mutex
	errs []error

	wg      sync.WaitGroup
	sema    chan struct{}
	running atomic.Int64

	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go schedules f if the manager is open and has a free slot. It reports
// whether the task was accepted.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager is closed, task rejected")
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "goroutine manager is at capacity, task rejected", "capacity", cap(g.sema))
		return false
	}

	g.running.Add(1)
	g.wg.Go(func() {
		defer func() {
			g.running.Add(-1)
			<-g.sema

			if rvr := recover(); rvr != nil {
				g.collect(errors.Join(ErrPanic, errorFromPanic(rvr)))

				slog.ErrorContext(ctx, "panic occurred in goroutine", "panic", rvr, "stack", stacktrace.Current())
			}
		}()

		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "goroutine canceled before start", "because", err)
			return
		}

		if err := f(ctx); err != nil {
			g.collect(err)
		}
	})

	return true
}

// Running returns the number of tasks currently executing.
func (g *Manager) Running() int {
	if g == nil {
		return 0
	}
	return int(g.running.Load())
}

// Capacity returns the maximum number of concurrent tasks.
func (g *Manager) Capacity() int {
	if g == nil {
		return 0
	}
	return cap(g.sema)
}

// Wait closes the manager to new tasks, blocks until accepted tasks finish and
// returns the collected errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

func (g *Manager) collect(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

func errorFromPanic(rvr any) error {
	if err, ok := rvr.(error); ok {
		return err
	}
	return errors.New(slog.AnyValue(rvr).String())
}
