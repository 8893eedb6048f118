package inbound

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/notification/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/breaker"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

type uc interface {
	GetStatus(ctx context.Context, in usecase.GetStatusInput) (*entity.DeliveryRecord, error)

	ListBreakers(ctx context.Context) []breaker.Snapshot
	GetBreaker(ctx context.Context, name string) (*breaker.Snapshot, error)
	ResetBreaker(ctx context.Context, name string) (*breaker.Snapshot, error)

	GetSimulation(ctx context.Context) (*entity.SimulationSettings, error)
	UpdateSimulation(ctx context.Context, in usecase.UpdateSimulationInput) (*entity.SimulationSettings, error)

	Process(ctx context.Context, env entity.Envelope) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/notifications/:correlation_id", end.GetStatus)

	r.GET("/api/v1/circuit-breakers", end.ListBreakers)
	r.GET("/api/v1/circuit-breakers/:name", end.GetBreaker)
	r.POST("/api/v1/circuit-breakers/:name/reset", end.ResetBreaker, r.Admin())

	r.GET("/api/v1/simulation", end.GetSimulation)
	r.PUT("/api/v1/simulation", end.UpdateSimulation, r.Admin())
}
