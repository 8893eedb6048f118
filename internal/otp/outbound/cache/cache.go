package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/kvstore"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	prefixCode     = "OTP:"
	prefixCooldown = "RESEND:"
)

// Cache keeps the active code and its cooldown marker under two keys that
// share the same expiry. Writes to the two keys are not atomic; the last
// writer wins.
type Cache struct {
	kv    kvstore.KV
	clock clock.Clocker
	ins   instrument.Instrumentation
}

func New(kv kvstore.KV, clk clock.Clocker, ins instrument.Instrumentation) *Cache {
	return &Cache{kv: kv, clock: clk, ins: ins}
}

func codeKey(identifier string) string     { return prefixCode + identifier }
func cooldownKey(identifier string) string { return prefixCooldown + identifier }

func (c *Cache) mapError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", entity.ErrStoreUnavailable, err)
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("otp.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Put replaces the active code for identifier.
func (c *Cache) Put(ctx context.Context, identifier, hashedCode string, ttl, cooldown time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "Put")
	defer func() { c.endSpan(span, err) }()

	until := c.clock.Now().Add(cooldown).UnixMilli()

	if err = c.kv.Set(ctx, codeKey(identifier), hashedCode, ttl); err != nil {
		return c.mapError(err)
	}

	err = c.kv.Set(ctx, cooldownKey(identifier), strconv.FormatInt(until, 10), ttl)
	return c.mapError(err)
}

// Get returns the stored hash; found is false when no code is active.
func (c *Cache) Get(ctx context.Context, identifier string) (_ string, _ bool, err error) {
	ctx, span := c.startSpan(ctx, "Get")
	defer func() { c.endSpan(span, err) }()

	val, err := c.kv.Get(ctx, codeKey(identifier))
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, c.mapError(err)
	}

	return val, true, nil
}

// GetCooldown returns when a resend becomes allowed.
func (c *Cache) GetCooldown(ctx context.Context, identifier string) (_ time.Time, _ bool, err error) {
	ctx, span := c.startSpan(ctx, "GetCooldown")
	defer func() { c.endSpan(span, err) }()

	val, err := c.kv.Get(ctx, cooldownKey(identifier))
	if errors.Is(err, kvstore.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, c.mapError(err)
	}

	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("otp: corrupt cooldown marker %q: %w", val, err)
	}

	return time.UnixMilli(ms), true, nil
}

// Delete removes both keys. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, identifier string) (err error) {
	ctx, span := c.startSpan(ctx, "Delete")
	defer func() { c.endSpan(span, err) }()

	err = c.mapError(c.kv.Delete(ctx, codeKey(identifier), cooldownKey(identifier)))
	return err
}

func (c *Cache) Ping(ctx context.Context) (err error) {
	ctx, span := c.startSpan(ctx, "Ping")
	defer func() { c.endSpan(span, err) }()

	err = c.mapError(c.kv.Ping(ctx))
	return err
}
