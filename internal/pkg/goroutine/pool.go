package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shandysiswandi/gotp/internal/pkg/stacktrace"
)

// DefaultQueueFactor sizes the queue when NewPool receives a non-positive
// queue size: workers * DefaultQueueFactor.
const DefaultQueueFactor int = 64

type poolTask struct {
	ctx context.Context
	fn  func(ctx context.Context) error
}

// Pool runs tasks on a fixed set of workers fed by a bounded queue.
//
// Submit waits for nothing: a task is queued while there is room and only
// rejected once the queue itself is full. Workers start in NewPool and stop
// when Close has drained the queue.
type Pool struct {
	queue   chan poolTask
	wg      sync.WaitGroup
	workers int
	running atomic.Int64

	mu   sync.Mutex
	errs []error

	stateMu sync.RWMutex
	closed  bool
}

// NewPool starts workers goroutines draining a queue of queueSize tasks.
func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = workers * DefaultQueueFactor
	}

	p := &Pool{
		queue:   make(chan poolTask, queueSize),
		workers: workers,
	}
	for range workers {
		p.wg.Go(p.work)
	}
	return p
}

// Submit queues f. It reports false when the pool is closed or the queue is
// full.
func (p *Pool) Submit(ctx context.Context, f func(ctx context.Context) error) bool {
	if p == nil {
		return false
	}

	p.stateMu.RLock()
	defer p.stateMu.RUnlock()

	if p.closed {
		slog.WarnContext(ctx, "worker pool is closed, task rejected")
		return false
	}

	select {
	case p.queue <- poolTask{ctx: ctx, fn: f}:
		return true
	default:
		slog.WarnContext(ctx, "worker pool queue is full, task rejected", "queue_size", cap(p.queue))
		return false
	}
}

func (p *Pool) work() {
	for t := range p.queue {
		p.run(t)
	}
}

func (p *Pool) run(t poolTask) {
	p.running.Add(1)
	defer func() {
		p.running.Add(-1)

		if rvr := recover(); rvr != nil {
			p.collect(errors.Join(ErrPanic, errorFromPanic(rvr)))

			slog.ErrorContext(t.ctx, "panic occurred in pool worker", "panic", rvr, "stack", stacktrace.Current())
		}
	}()

	if err := t.ctx.Err(); err != nil {
		slog.WarnContext(t.ctx, "pool task canceled before start", "because", err)
		return
	}

	if err := t.fn(t.ctx); err != nil {
		p.collect(err)
	}
}

// Pending returns the number of queued tasks no worker has picked up yet.
func (p *Pool) Pending() int {
	if p == nil {
		return 0
	}
	return len(p.queue)
}

// Running returns the number of tasks currently executing.
func (p *Pool) Running() int {
	if p == nil {
		return 0
	}
	return int(p.running.Load())
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	if p == nil {
		return 0
	}
	return p.workers
}

// Close stops accepting tasks, lets the workers drain the queue and returns
// the collected errors. It is safe to call more than once.
func (p *Pool) Close() error {
	if p == nil {
		return nil
	}

	p.stateMu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.stateMu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}

func (p *Pool) collect(err error) {
	p.mu.Lock()
	p.errs = append(p.errs, err)
	p.mu.Unlock()
}
