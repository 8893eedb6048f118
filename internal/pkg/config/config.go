package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving time-based configuration values.
type TimeConfig interface {
	// GetMillisecond reads an integer value as milliseconds.
	GetMillisecond(key string) time.Duration

	// GetSecond reads an integer value as seconds.
	GetSecond(key string) time.Duration

	// GetDuration reads a Go duration string such as "250ms" or "5m".
	// Plain integers are read as nanoseconds, matching time.Duration.
	GetDuration(key string) time.Duration
}

// Config defines the typed lookups the application needs. Missing keys yield
// the zero value unless a default was registered.
type Config interface {
	io.Closer
	TimeConfig

	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetArray splits a comma separated value and drops empty elements.
	GetArray(key string) []string

	// IsSet reports whether key has a value from any source, defaults included.
	IsSet(key string) bool
}
