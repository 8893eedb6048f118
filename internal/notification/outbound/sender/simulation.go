package sender

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/atomic"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
)

var errSimulatedFailure = errors.New("simulated downstream failure")

// Simulation stands in for the provider. Its settings can be changed while
// it is serving traffic.
type Simulation struct {
	delay       *atomic.Duration
	failureRate *atomic.Float64
	timeout     *atomic.Duration

	roll func() float64
	ins  instrument.Instrumentation
}

func NewSimulation(st entity.SimulationSettings, ins instrument.Instrumentation) *Simulation {
	return &Simulation{
		delay:       atomic.NewDuration(st.Delay),
		failureRate: atomic.NewFloat64(st.FailureRate),
		timeout:     atomic.NewDuration(st.Timeout),
		roll:        rand.Float64,
		ins:         ins,
	}
}

func (*Simulation) Name() string {
	return NameSimulation
}

func (s *Simulation) Settings() entity.SimulationSettings {
	return entity.SimulationSettings{
		Delay:       s.delay.Load(),
		FailureRate: s.failureRate.Load(),
		Timeout:     s.timeout.Load(),
	}
}

func (s *Simulation) Update(st entity.SimulationSettings) {
	s.delay.Store(st.Delay)
	s.failureRate.Store(st.FailureRate)
	s.timeout.Store(st.Timeout)
}

// Send waits for the configured delay, then fails at the configured rate,
// then reports a timeout when the delay exceeded the threshold.
func (s *Simulation) Send(ctx context.Context, env entity.Envelope) (err error) {
	ctx, span := startSpan(ctx, s.ins, env)
	defer func() { endSpan(span, err) }()

	st := s.Settings()

	if st.Delay > 0 {
		t := time.NewTimer(st.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	if st.FailureRate > 0 && s.roll() < st.FailureRate {
		return errSimulatedFailure
	}

	if st.Timeout > 0 && st.Delay > st.Timeout {
		return fmt.Errorf("%w: delay %s exceeds %s", entity.ErrTimeout, st.Delay, st.Timeout)
	}

	return nil
}
