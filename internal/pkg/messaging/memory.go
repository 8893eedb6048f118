package messaging

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryConfig configures the in-process broker.
type MemoryConfig struct {
	// Buffer is the per-group queue length. Publish blocks while it is full.
	Buffer int
}

// Memory is an in-process broker. Every consumer group subscribed to a topic
// receives each message once; members of a group share it. Messages published
// to a topic with no group are dropped.
type Memory struct {
	buffer int
	seq    atomic.Int64

	mu     sync.RWMutex
	topics map[string]map[string]chan *memoryMessage
	closed bool
	done   chan struct{}
}

// NewMemory constructs an in-process broker.
func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	return &Memory{
		buffer: cfg.Buffer,
		topics: map[string]map[string]chan *memoryMessage{},
		done:   make(chan struct{}),
	}
}

// Close stops every running Consume.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// Publish enqueues msg for each group subscribed to destination.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return PublishResult{}, ErrClosed
	}
	groups := make([]chan *memoryMessage, 0, len(m.topics[destination]))
	for _, ch := range m.topics[destination] {
		groups = append(groups, ch)
	}
	m.mu.RUnlock()

	offset := m.seq.Add(1)
	now := time.Now()
	for _, ch := range groups {
		mm := &memoryMessage{topic: destination, offset: offset, msg: msg, at: now}
		select {
		case ch <- mm:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		case <-m.done:
			return PublishResult{}, ErrClosed
		}
	}

	return PublishResult{Topic: destination, Offset: offset, Timestamp: now}, nil
}

// Consume joins the WithGroup group (the empty group is valid) and blocks
// until ctx is done or the broker is closed.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	co := newConsumeOptions(opts...)

	ch, err := m.subscribe(source, co.group)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case mm := <-ch:
					//nolint:errcheck // memory acks cannot fail
					_ = handle(ctx, "memory", handler, mm, co.autoAck)
				}
			}
		})
	}
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return ErrClosed
}

func (m *Memory) subscribe(topic, group string) (chan *memoryMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	groups, ok := m.topics[topic]
	if !ok {
		groups = map[string]chan *memoryMessage{}
		m.topics[topic] = groups
	}
	ch, ok := groups[group]
	if !ok {
		ch = make(chan *memoryMessage, m.buffer)
		groups[group] = ch
	}
	return ch, nil
}

type memoryMessage struct {
	topic  string
	offset int64
	msg    OutgoingMessage
	at     time.Time
	acked  atomic.Bool
}

func (mm *memoryMessage) Body() []byte             { return mm.msg.Body }
func (mm *memoryMessage) Key() []byte              { return mm.msg.Key }
func (mm *memoryMessage) Header(key string) string { return mm.msg.Headers[key] }
func (mm *memoryMessage) ID() string               { return mm.topic + "/" + strconv.FormatInt(mm.offset, 10) }
func (mm *memoryMessage) Timestamp() time.Time     { return mm.at }

func (mm *memoryMessage) Ack(context.Context) error {
	mm.acked.Store(true)
	return nil
}

func (mm *memoryMessage) Nack(context.Context) error {
	return nil
}
