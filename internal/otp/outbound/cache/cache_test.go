package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/kvstore"
)

var start = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newMemoryCache(t *testing.T) (*Cache, *kvstore.Memory, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(start)
	mem := kvstore.NewMemory(clk, 0)
	t.Cleanup(func() { _ = mem.Close() })
	return New(mem, clk, instrument.NewNoop()), mem, clk
}

func TestCache_PutGet(t *testing.T) {
	c, mem, clk := newMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "+15550001111", "hash-1", 300*time.Second, 30*time.Second))

	raw, err := mem.Get(ctx, "OTP:+15550001111")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", raw)

	got, found, err := c.Get(ctx, "+15550001111")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hash-1", got)

	until, found, err := c.GetCooldown(ctx, "+15550001111")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, until.Equal(start.Add(30*time.Second)))

	clk.Advance(300 * time.Second)
	_, found, err = c.Get(ctx, "+15550001111")
	require.NoError(t, err)
	assert.False(t, found, "code expires with ttl")

	_, found, err = c.GetCooldown(ctx, "+15550001111")
	require.NoError(t, err)
	assert.False(t, found, "cooldown shares the code expiry")
}

func TestCache_PutSupersedes(t *testing.T) {
	c, _, _ := newMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "a@example.com", "first", time.Minute, time.Second))
	require.NoError(t, c.Put(ctx, "a@example.com", "second", time.Minute, time.Second))

	got, _, err := c.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestCache_DeleteIdempotent(t *testing.T) {
	c, _, _ := newMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "+15550001111", "hash", time.Minute, time.Second))
	require.NoError(t, c.Delete(ctx, "+15550001111"))
	require.NoError(t, c.Delete(ctx, "+15550001111"))

	_, found, err := c.Get(ctx, "+15550001111")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = c.GetCooldown(ctx, "+15550001111")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := New(kvstore.NewRedis(client), clock.NewManual(start), instrument.NewNoop())
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "+15550001111", "hash", 300*time.Second, 30*time.Second))
	assert.Equal(t, 300*time.Second, mr.TTL("OTP:+15550001111"))
	assert.Equal(t, 300*time.Second, mr.TTL("RESEND:+15550001111"))

	marker, err := mr.Get("RESEND:+15550001111")
	require.NoError(t, err)
	assert.Equal(t, "1735732830000", marker)

	require.NoError(t, c.Ping(ctx))

	mr.Close()
	_, _, err = c.Get(ctx, "+15550001111")
	assert.ErrorIs(t, err, entity.ErrStoreUnavailable)
	assert.ErrorIs(t, c.Put(ctx, "+15550001111", "hash", time.Minute, time.Second), entity.ErrStoreUnavailable)
	assert.ErrorIs(t, c.Delete(ctx, "+15550001111"), entity.ErrStoreUnavailable)
	assert.ErrorIs(t, c.Ping(ctx), entity.ErrStoreUnavailable)
}

func TestCache_CorruptCooldown(t *testing.T) {
	c, mem, _ := newMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "RESEND:x", "not-a-number", time.Minute))

	_, _, err := c.GetCooldown(ctx, "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, entity.ErrStoreUnavailable))
}
