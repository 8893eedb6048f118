package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/notification/outbound/mq"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
)

type fakeMessage struct {
	body    []byte
	headers map[string]string
}

func (m fakeMessage) Body() []byte             { return m.body }
func (fakeMessage) Key() []byte                { return nil }
func (m fakeMessage) Header(key string) string { return m.headers[key] }
func (fakeMessage) ID() string                 { return "otp.dispatch/1" }
func (fakeMessage) Timestamp() time.Time       { return time.Time{} }
func (fakeMessage) Ack(context.Context) error  { return nil }
func (fakeMessage) Nack(context.Context) error { return nil }

type brokenIdempotency struct{}

func (brokenIdempotency) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return "", errors.New("store down")
}

func (brokenIdempotency) Exec(context.Context, string, func(context.Context) error, ...idempotency.Option) error {
	return errors.New("store down")
}

func envelopeMessage(t *testing.T, env entity.Envelope) fakeMessage {
	t.Helper()
	body, err := json.Marshal(env)
	require.NoError(t, err)
	return fakeMessage{body: body, headers: map[string]string{mq.KeyOfCorrelationID: env.CorrelationID}}
}

func newIdempotency(t *testing.T) *idempotency.StateTracker {
	t.Helper()
	kv := kvstore.NewMemory(clock.New(), 0)
	t.Cleanup(func() { _ = kv.Close() })
	return idempotency.New(kv, "DISPATCH:")
}

func TestMQHandler_Envelope(t *testing.T) {
	env := entity.Envelope{CorrelationID: "cid-1", Channel: entity.ChannelSMS, Identifier: "+15550001111", Code: "123456"}

	tests := []struct {
		name          string
		messages      []messaging.Message
		idem          idempotency.Idempotency
		processErr    error
		wantErr       bool
		wantProcessed int
	}{
		{
			name:          "processes once",
			messages:      []messaging.Message{envelopeMessage(t, env)},
			wantProcessed: 1,
		},
		{
			name:          "redelivery is skipped",
			messages:      []messaging.Message{envelopeMessage(t, env), envelopeMessage(t, env)},
			wantProcessed: 1,
		},
		{
			name:          "failed attempt is not redelivered",
			messages:      []messaging.Message{envelopeMessage(t, env), envelopeMessage(t, env)},
			processErr:    entity.ErrDownstreamFailure,
			wantProcessed: 1,
		},
		{
			name:     "malformed body is dropped",
			messages: []messaging.Message{fakeMessage{body: []byte("{")}},
		},
		{
			name:     "missing correlation id is dropped",
			messages: []messaging.Message{fakeMessage{body: []byte(`{"channel":"SMS"}`)}},
		},
		{
			name:     "guard unavailable asks for redelivery",
			messages: []messaging.Message{envelopeMessage(t, env)},
			idem:     brokenIdempotency{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUC{processErr: tt.processErr}
			idem := tt.idem
			if idem == nil {
				idem = newIdempotency(t)
			}
			h := &MQHandler{uc: uc, idem: idem, uuid: fixedID("generated"), ins: instrument.NewNoop()}

			var lastErr error
			for _, msg := range tt.messages {
				lastErr = h.Envelope(context.Background(), msg)
			}

			if tt.wantErr {
				assert.Error(t, lastErr)
			} else {
				assert.NoError(t, lastErr)
			}
			require.Len(t, uc.processed, tt.wantProcessed)
			if tt.wantProcessed > 0 {
				assert.Equal(t, env, uc.processed[0])
			}
		})
	}
}

type flakyConsumer struct {
	calls atomic.Int32
}

func (f *flakyConsumer) Consume(ctx context.Context, _ string, _ messaging.Handler, _ ...messaging.ConsumeOption) error {
	if f.calls.Add(1) < 3 {
		return errors.New("connection refused")
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRegisterMQConsumer_Reconnects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	routine := goroutine.NewManager(1)

	consumer := &flakyConsumer{}
	ok := RegisterMQConsumer(ctx, ConsumerConfig{Topic: "otp.dispatch", Group: "workers", Concurrency: 1},
		routine, consumer, newIdempotency(t), fixedID("cid"), &fakeUC{}, instrument.NewNoop())
	require.True(t, ok)

	require.Eventually(t, func() bool { return consumer.calls.Load() == 3 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, routine.Wait())
}

func TestRegisterMQConsumer_MemoryBroker(t *testing.T) {
	broker := messaging.NewMemory(messaging.MemoryConfig{})
	t.Cleanup(func() { _ = broker.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	routine := goroutine.NewManager(1)

	uc := &fakeUC{}
	require.True(t, RegisterMQConsumer(ctx, ConsumerConfig{Topic: "otp.dispatch", Group: "workers"},
		routine, broker, newIdempotency(t), fixedID("cid"), uc, instrument.NewNoop()))

	pub := mq.NewMessaging(broker, "otp.dispatch", instrument.NewNoop())
	env := entity.Envelope{CorrelationID: "cid-7", Channel: entity.ChannelEmail, Identifier: "a@b.co", Code: "000111"}

	// publishes before the group subscribes are dropped; redeliveries are deduplicated
	require.Eventually(t, func() bool {
		require.NoError(t, pub.PublishEnvelope(ctx, env))
		time.Sleep(10 * time.Millisecond)
		return uc.processedCount() == 1
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, routine.Wait())
	assert.Equal(t, 1, uc.processedCount())
}
