package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PublishConsume(t *testing.T) {
	broker := NewMemory(MemoryConfig{Buffer: 8})
	t.Cleanup(func() { _ = broker.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	received := make(chan struct{}, 4)

	consumeErr := make(chan error, 1)
	ready := make(chan struct{})
	go func() {
		close(ready)
		consumeErr <- broker.Consume(ctx, "otp.dispatch", func(_ context.Context, msg Message) error {
			mu.Lock()
			got = append(got, string(msg.Body())+":"+msg.Header("X-Correlation-ID"))
			mu.Unlock()
			received <- struct{}{}
			return nil
		}, WithGroup("workers"), WithConcurrency(2), WithAutoAck(true))
	}()
	<-ready
	require.Eventually(t, func() bool {
		broker.mu.RLock()
		defer broker.mu.RUnlock()
		return len(broker.topics["otp.dispatch"]) == 1
	}, time.Second, 5*time.Millisecond)

	for _, id := range []string{"a", "b"} {
		res, err := broker.Publish(ctx, "otp.dispatch", OutgoingMessage{
			Key:     []byte(id),
			Body:    []byte("env-" + id),
			Headers: map[string]string{"X-Correlation-ID": id},
		})
		require.NoError(t, err)
		assert.Equal(t, "otp.dispatch", res.Topic)
	}

	for range 2 {
		select {
		case <-received:
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}

	cancel()
	assert.ErrorIs(t, <-consumeErr, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"env-a:a", "env-b:b"}, got)
}

func TestMemory_NoSubscriberDrops(t *testing.T) {
	broker := NewMemory(MemoryConfig{})
	res, err := broker.Publish(context.Background(), "nobody", OutgoingMessage{Body: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Offset)
}

func TestMemory_Closed(t *testing.T) {
	broker := NewMemory(MemoryConfig{})
	require.NoError(t, broker.Close())
	require.NoError(t, broker.Close())

	_, err := broker.Publish(context.Background(), "t", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, broker.Consume(context.Background(), "t", func(context.Context, Message) error { return nil }), ErrClosed)
}

func TestMemory_Validation(t *testing.T) {
	broker := NewMemory(MemoryConfig{})
	_, err := broker.Publish(context.Background(), "", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrDestinationRequired)
	assert.ErrorIs(t, broker.Consume(context.Background(), "t", nil), ErrHandlerRequired)
}

type fakeMessage struct {
	acked, nacked bool
}

func (f *fakeMessage) Body() []byte         { return nil }
func (f *fakeMessage) Key() []byte          { return nil }
func (f *fakeMessage) Header(string) string { return "" }
func (f *fakeMessage) ID() string           { return "fake" }
func (f *fakeMessage) Timestamp() time.Time { return time.Time{} }

func (f *fakeMessage) Ack(context.Context) error {
	f.acked = true
	return nil
}

func (f *fakeMessage) Nack(context.Context) error {
	f.nacked = true
	return nil
}

func TestHandle_AutoAckAndRecover(t *testing.T) {
	tests := []struct {
		name       string
		handler    Handler
		autoAck    bool
		wantAcked  bool
		wantNacked bool
	}{
		{
			name:      "success acks",
			handler:   func(context.Context, Message) error { return nil },
			autoAck:   true,
			wantAcked: true,
		},
		{
			name:       "failure nacks",
			handler:    func(context.Context, Message) error { return errors.New("nope") },
			autoAck:    true,
			wantNacked: true,
		},
		{
			name:       "panic nacks",
			handler:    func(context.Context, Message) error { panic("boom") },
			autoAck:    true,
			wantNacked: true,
		},
		{
			name:    "manual ack leaves message alone",
			handler: func(context.Context, Message) error { return errors.New("nope") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &fakeMessage{}
			assert.NoError(t, handle(context.Background(), "test", tt.handler, msg, tt.autoAck))
			assert.Equal(t, tt.wantAcked, msg.acked)
			assert.Equal(t, tt.wantNacked, msg.nacked)
		})
	}
}

func TestNewFromDriver(t *testing.T) {
	m, err := NewFromDriver("memory", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, m)

	_, err = NewFromDriver("kafka", FactoryOptions{})
	assert.ErrorIs(t, err, ErrKafkaBrokersRequired)

	_, err = NewFromDriver("nats", FactoryOptions{})
	assert.ErrorIs(t, err, ErrNATSURLRequired)

	_, err = NewFromDriver("nsq", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
