package kvstore

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is an in-process KV. Expired keys are invisible immediately and
// removed by a background sweep.
type Memory struct {
	clock clock.Clocker

	mu   sync.RWMutex
	data map[string]memoryEntry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemory creates a store. A positive sweepInterval starts the sweeper,
// which runs until Close.
func NewMemory(clk clock.Clocker, sweepInterval time.Duration) *Memory {
	if clk == nil {
		clk = clock.New()
	}

	m := &Memory{
		clock: clk,
		data:  map[string]memoryEntry{},
		stop:  make(chan struct{}),
	}

	if sweepInterval > 0 {
		go m.sweepEvery(sweepInterval)
	}

	return m
}

func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	m.data[key] = m.entry(value, ttl)
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateKey(key); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.data[key]; ok && !e.expired(m.clock.Now()) {
		return false, nil
	}
	m.data[key] = m.entry(value, ttl)
	return true, nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()

	if !ok || e.expired(m.clock.Now()) {
		return "", ErrNotFound
	}
	return e.value, nil
}

func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}

func (*Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close stops the sweeper. The data stays readable.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

// Sweep removes expired keys and returns how many were dropped.
func (m *Memory) Sweep() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored keys, expired ones not yet swept included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Memory) entry(value string, ttl time.Duration) memoryEntry {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.clock.Now().Add(ttl)
	}
	return e
}

func (m *Memory) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}
