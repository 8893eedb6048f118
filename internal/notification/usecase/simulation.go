package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

var errNoSimulator = goerror.NewBusiness("Simulation sender is not active", goerror.CodeNotFound)

func (s *Usecase) GetSimulation(ctx context.Context) (*entity.SimulationSettings, error) {
	_, span := s.startSpan(ctx, "GetSimulation")
	defer span.End()

	if s.simulator == nil {
		return nil, errNoSimulator
	}

	st := s.simulator.Settings()
	return &st, nil
}

// UpdateSimulationInput changes only the fields that are set.
type UpdateSimulationInput struct {
	DelayMS     *int64   `validate:"omitnil,gte=0,lte=120000"`
	FailureRate *float64 `validate:"omitnil,gte=0,lte=1"`
	TimeoutMS   *int64   `validate:"omitnil,gte=0,lte=120000"`
}

func (s *Usecase) UpdateSimulation(ctx context.Context, in UpdateSimulationInput) (*entity.SimulationSettings, error) {
	ctx, span := s.startSpan(ctx, "UpdateSimulation")
	defer span.End()

	if s.simulator == nil {
		return nil, errNoSimulator
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	st := s.simulator.Settings()
	if in.DelayMS != nil {
		st.Delay = time.Duration(*in.DelayMS) * time.Millisecond
	}
	if in.FailureRate != nil {
		st.FailureRate = *in.FailureRate
	}
	if in.TimeoutMS != nil {
		st.Timeout = time.Duration(*in.TimeoutMS) * time.Millisecond
	}

	s.simulator.Update(st)
	slog.InfoContext(ctx, "simulation settings updated",
		"delay", st.Delay.String(),
		"failure_rate", st.FailureRate,
		"timeout", st.Timeout.String(),
	)

	return &st, nil
}
