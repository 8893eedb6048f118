package breaker

import "time"

// Config holds the thresholds of a single breaker. Rates are percentages.
type Config struct {
	WindowSize               int
	MinimumCalls             int
	FailureRateThreshold     float64
	SlowCallRateThreshold    float64
	SlowCallDuration         time.Duration
	WaitDuration             time.Duration
	PermittedCallsInHalfOpen int
}

// DefaultConfig returns the thresholds used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		WindowSize:               10,
		MinimumCalls:             5,
		FailureRateThreshold:     50,
		SlowCallRateThreshold:    100,
		SlowCallDuration:         5 * time.Second,
		WaitDuration:             30 * time.Second,
		PermittedCallsInHalfOpen: 3,
	}
}

// normalize fills zero values from DefaultConfig and clamps inconsistent ones.
func (c Config) normalize() Config {
	def := DefaultConfig()

	if c.WindowSize < 1 {
		c.WindowSize = def.WindowSize
	}
	if c.MinimumCalls < 1 {
		c.MinimumCalls = min(def.MinimumCalls, c.WindowSize)
	}
	if c.MinimumCalls > c.WindowSize {
		c.MinimumCalls = c.WindowSize
	}
	if c.FailureRateThreshold <= 0 || c.FailureRateThreshold > 100 {
		c.FailureRateThreshold = def.FailureRateThreshold
	}
	if c.SlowCallRateThreshold <= 0 || c.SlowCallRateThreshold > 100 {
		c.SlowCallRateThreshold = def.SlowCallRateThreshold
	}
	if c.SlowCallDuration <= 0 {
		c.SlowCallDuration = def.SlowCallDuration
	}
	if c.WaitDuration <= 0 {
		c.WaitDuration = def.WaitDuration
	}
	if c.PermittedCallsInHalfOpen < 1 {
		c.PermittedCallsInHalfOpen = def.PermittedCallsInHalfOpen
	}

	return c
}
