// Package kvstore is a string key-value store with per-key expiry.
//
// Redis is the production driver. Memory keeps everything in process and is
// meant for local runs and tests; it is not shared between replicas.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Driver names accepted by the factory.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("kvstore: key not found")

// ErrUnsupportedDriver is returned by the factory for unknown driver names.
var ErrUnsupportedDriver = errors.New("kvstore: unsupported driver")

// KV is the storage boundary. A ttl of zero means no expiry.
type KV interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("kvstore: empty key")
	}
	return nil
}
