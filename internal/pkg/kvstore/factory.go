package kvstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
)

// FactoryOptions carries what each driver needs.
type FactoryOptions struct {
	Redis         redis.UniversalClient
	Clock         clock.Clocker
	SweepInterval time.Duration
}

// NewFromDriver builds a KV for driver.
func NewFromDriver(driver string, opts FactoryOptions) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("kvstore: redis driver requires a client")
		}
		return NewRedis(opts.Redis), nil
	case DriverMemory, "":
		return NewMemory(opts.Clock, opts.SweepInterval), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}
