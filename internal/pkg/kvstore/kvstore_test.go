package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
)

// driverCase runs the same contract against every driver. advance moves the
// driver's notion of time forward.
type driverCase struct {
	name    string
	kv      KV
	advance func(d time.Duration)
}

func drivers(t *testing.T) []driverCase {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clk := clock.NewManual(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	mem := NewMemory(clk, 0)
	t.Cleanup(func() { _ = mem.Close() })

	return []driverCase{
		{name: "redis", kv: NewRedis(client), advance: mr.FastForward},
		{name: "memory", kv: mem, advance: clk.Advance},
	}
}

func TestKV_Contract(t *testing.T) {
	for _, d := range drivers(t) {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()

			_, err := d.kv.Get(ctx, "OTP:+15550001111")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, d.kv.Set(ctx, "OTP:+15550001111", "hash-1", time.Minute))
			got, err := d.kv.Get(ctx, "OTP:+15550001111")
			require.NoError(t, err)
			assert.Equal(t, "hash-1", got)

			require.NoError(t, d.kv.Set(ctx, "OTP:+15550001111", "hash-2", time.Minute))
			got, err = d.kv.Get(ctx, "OTP:+15550001111")
			require.NoError(t, err)
			assert.Equal(t, "hash-2", got, "last write wins")

			d.advance(61 * time.Second)
			_, err = d.kv.Get(ctx, "OTP:+15550001111")
			assert.ErrorIs(t, err, ErrNotFound, "expired")

			require.NoError(t, d.kv.Set(ctx, "a", "1", 0))
			require.NoError(t, d.kv.Set(ctx, "b", "2", 0))
			require.NoError(t, d.kv.Delete(ctx, "a", "b", "missing"))
			require.NoError(t, d.kv.Delete(ctx, "a"), "idempotent")
			require.NoError(t, d.kv.Delete(ctx))
			_, err = d.kv.Get(ctx, "a")
			assert.ErrorIs(t, err, ErrNotFound)

			ok, err := d.kv.SetNX(ctx, "lock", "x", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = d.kv.SetNX(ctx, "lock", "y", time.Minute)
			require.NoError(t, err)
			assert.False(t, ok)
			d.advance(2 * time.Minute)
			ok, err = d.kv.SetNX(ctx, "lock", "z", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok, "expired key can be taken again")

			assert.Error(t, d.kv.Set(ctx, "", "v", 0))
			assert.NoError(t, d.kv.Ping(ctx))
		})
	}
}

func TestRedis_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	kv := NewRedis(client)

	mr.Close()

	ctx := context.Background()
	_, err := kv.Get(ctx, "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, kv.Set(ctx, "k", "v", time.Second))
	assert.Error(t, kv.Ping(ctx))
}

func TestMemory_Sweep(t *testing.T) {
	clk := clock.NewManual(time.Now())
	m := NewMemory(clk, 0)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "short", "1", time.Second))
	require.NoError(t, m.Set(ctx, "long", "1", time.Hour))
	require.NoError(t, m.Set(ctx, "forever", "1", 0))

	clk.Advance(time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 2, m.Len())
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

func TestMemory_CanceledContext(t *testing.T) {
	m := NewMemory(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Set(ctx, "k", "v", 0), context.Canceled)
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, m.Ping(ctx), context.Canceled)
}

func TestNewFromDriver(t *testing.T) {
	kv, err := NewFromDriver("memory", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)

	_, err = NewFromDriver("redis", FactoryOptions{})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	kv, err = NewFromDriver("REDIS", FactoryOptions{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})})
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, kv)

	_, err = NewFromDriver("etcd", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
