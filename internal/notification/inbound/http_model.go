package inbound

import (
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/breaker"
)

type StatusResponse struct {
	CorrelationID string    `json:"correlation_id"`
	Channel       string    `json:"channel"`
	Identifier    string    `json:"identifier"`
	Status        string    `json:"status"`
	ErrorCode     string    `json:"error_code,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newStatusResponse(rec *entity.DeliveryRecord) StatusResponse {
	return StatusResponse{
		CorrelationID: rec.CorrelationID,
		Channel:       rec.Channel.String(),
		Identifier:    rec.Identifier,
		Status:        rec.Status.String(),
		ErrorCode:     rec.ErrorCode,
		Reason:        rec.Reason,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

type BreakerConfigResponse struct {
	WindowSize               int     `json:"window_size"`
	MinimumCalls             int     `json:"minimum_calls"`
	FailureRateThreshold     float64 `json:"failure_rate_threshold"`
	SlowCallRateThreshold    float64 `json:"slow_call_rate_threshold"`
	SlowCallDurationMS       int64   `json:"slow_call_duration_ms"`
	WaitDurationMS           int64   `json:"wait_duration_ms"`
	PermittedCallsInHalfOpen int     `json:"permitted_calls_in_half_open"`
}

type BreakerResponse struct {
	Name              string                `json:"name"`
	State             string                `json:"state"`
	FailureRate       float64               `json:"failure_rate"`
	SlowCallRate      float64               `json:"slow_call_rate"`
	BufferedCalls     int                   `json:"buffered_calls"`
	FailedCalls       int                   `json:"failed_calls"`
	SuccessfulCalls   int                   `json:"successful_calls"`
	SlowCalls         int                   `json:"slow_calls"`
	NotPermittedCalls int64                 `json:"not_permitted_calls"`
	Config            BreakerConfigResponse `json:"config"`
}

func newBreakerResponse(s breaker.Snapshot) BreakerResponse {
	return BreakerResponse{
		Name:              s.Name,
		State:             s.State.String(),
		FailureRate:       s.FailureRate,
		SlowCallRate:      s.SlowCallRate,
		BufferedCalls:     s.BufferedCalls,
		FailedCalls:       s.FailedCalls,
		SuccessfulCalls:   s.SuccessfulCalls,
		SlowCalls:         s.SlowCalls,
		NotPermittedCalls: s.NotPermittedCalls,
		Config: BreakerConfigResponse{
			WindowSize:               s.Config.WindowSize,
			MinimumCalls:             s.Config.MinimumCalls,
			FailureRateThreshold:     s.Config.FailureRateThreshold,
			SlowCallRateThreshold:    s.Config.SlowCallRateThreshold,
			SlowCallDurationMS:       s.Config.SlowCallDuration.Milliseconds(),
			WaitDurationMS:           s.Config.WaitDuration.Milliseconds(),
			PermittedCallsInHalfOpen: s.Config.PermittedCallsInHalfOpen,
		},
	}
}

type ListBreakersResponse struct {
	Breakers []BreakerResponse `json:"breakers"`
}

func newListBreakersResponse(snaps []breaker.Snapshot) ListBreakersResponse {
	return ListBreakersResponse{
		Breakers: lo.Map(snaps, func(s breaker.Snapshot, _ int) BreakerResponse {
			return newBreakerResponse(s)
		}),
	}
}

type ResetBreakerResponse struct {
	BreakerResponse
}

func (ResetBreakerResponse) Message() string {
	return "Circuit breaker has been reset."
}

type UpdateSimulationRequest struct {
	DelayMS     *int64   `json:"delay_ms"`
	FailureRate *float64 `json:"failure_rate"`
	TimeoutMS   *int64   `json:"timeout_ms"`
}

type SimulationResponse struct {
	DelayMS     int64   `json:"delay_ms"`
	FailureRate float64 `json:"failure_rate"`
	TimeoutMS   int64   `json:"timeout_ms"`
}

func newSimulationResponse(st *entity.SimulationSettings) SimulationResponse {
	return SimulationResponse{
		DelayMS:     st.Delay.Milliseconds(),
		FailureRate: st.FailureRate,
		TimeoutMS:   st.Timeout.Milliseconds(),
	}
}
