package inbound

import (
	"github.com/shandysiswandi/gotp/internal/notification/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// GetStatus returns the latest recorded delivery status.
// @Summary Delivery status
// @Tags Notification
// @Produce json
// @Param correlation_id path string true "Correlation id returned by generate"
// @Success 200 {object} router.successResponse{data=StatusResponse} "Delivery record"
// @Failure 404 {object} router.errorResponse "Notification not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/notifications/{correlation_id} [get]
func (h *HTTPEndpoint) GetStatus(r *router.Request) (any, error) {
	rec, err := h.uc.GetStatus(r.Context(), usecase.GetStatusInput{
		CorrelationID: r.GetParam("correlation_id"),
	})
	if err != nil {
		return nil, err
	}

	return newStatusResponse(rec), nil
}

// ListBreakers
// @Summary List circuit breakers
// @Tags Circuit Breaker
// @Produce json
// @Success 200 {object} router.successResponse{data=ListBreakersResponse} "Breaker snapshots"
// @Router /api/v1/circuit-breakers [get]
func (h *HTTPEndpoint) ListBreakers(r *router.Request) (any, error) {
	return newListBreakersResponse(h.uc.ListBreakers(r.Context())), nil
}

// GetBreaker
// @Summary Circuit breaker detail
// @Tags Circuit Breaker
// @Produce json
// @Param name path string true "Breaker name"
// @Success 200 {object} router.successResponse{data=BreakerResponse} "Breaker snapshot"
// @Failure 404 {object} router.errorResponse "Circuit breaker not found"
// @Router /api/v1/circuit-breakers/{name} [get]
func (h *HTTPEndpoint) GetBreaker(r *router.Request) (any, error) {
	snap, err := h.uc.GetBreaker(r.Context(), r.GetParam("name"))
	if err != nil {
		return nil, err
	}

	return newBreakerResponse(*snap), nil
}

// ResetBreaker forces a breaker CLOSED.
// @Summary Reset circuit breaker
// @Tags Circuit Breaker
// @Produce json
// @Security AdminKey
// @Param name path string true "Breaker name"
// @Success 200 {object} router.successResponse{data=BreakerResponse} "Breaker snapshot after reset"
// @Failure 401 {object} router.errorResponse "Missing admin key"
// @Failure 404 {object} router.errorResponse "Circuit breaker not found"
// @Router /api/v1/circuit-breakers/{name}/reset [post]
func (h *HTTPEndpoint) ResetBreaker(r *router.Request) (any, error) {
	snap, err := h.uc.ResetBreaker(r.Context(), r.GetParam("name"))
	if err != nil {
		return nil, err
	}

	return ResetBreakerResponse{BreakerResponse: newBreakerResponse(*snap)}, nil
}

// GetSimulation
// @Summary Simulation settings
// @Tags Simulation
// @Produce json
// @Success 200 {object} router.successResponse{data=SimulationResponse} "Current settings"
// @Failure 404 {object} router.errorResponse "Simulation sender is not active"
// @Router /api/v1/simulation [get]
func (h *HTTPEndpoint) GetSimulation(r *router.Request) (any, error) {
	st, err := h.uc.GetSimulation(r.Context())
	if err != nil {
		return nil, err
	}

	return newSimulationResponse(st), nil
}

// UpdateSimulation changes the simulated sender behaviour at runtime.
// @Summary Update simulation settings
// @Tags Simulation
// @Accept json
// @Produce json
// @Security AdminKey
// @Param request body UpdateSimulationRequest true "Fields to change"
// @Success 200 {object} router.successResponse{data=SimulationResponse} "Updated settings"
// @Failure 404 {object} router.errorResponse "Simulation sender is not active"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/simulation [put]
func (h *HTTPEndpoint) UpdateSimulation(r *router.Request) (any, error) {
	var req UpdateSimulationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	st, err := h.uc.UpdateSimulation(r.Context(), usecase.UpdateSimulationInput{
		DelayMS:     req.DelayMS,
		FailureRate: req.FailureRate,
		TimeoutMS:   req.TimeoutMS,
	})
	if err != nil {
		return nil, err
	}

	return newSimulationResponse(st), nil
}
