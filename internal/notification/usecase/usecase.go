package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/breaker"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// deliverer performs one delivery attempt. Name identifies the downstream
// target and doubles as its breaker name.
type deliverer interface {
	Name() string
	Send(ctx context.Context, env entity.Envelope) error
}

type repoStatus interface {
	Save(ctx context.Context, rec entity.DeliveryRecord) error
	Get(ctx context.Context, correlationID string) (*entity.DeliveryRecord, error)
}

// repoQueue is set when envelopes travel through a broker instead of the
// local worker pool.
type repoQueue interface {
	PublishEnvelope(ctx context.Context, env entity.Envelope) error
}

type simulator interface {
	Settings() entity.SimulationSettings
	Update(s entity.SimulationSettings)
}

type Usecase struct {
	sender     deliverer
	repoStatus repoStatus
	repoQueue  repoQueue
	simulator  simulator
	breakers   *breaker.Registry
	workers    *goroutine.Pool
	validator  validator.Validator
	cfg        config.Config
	uuid       uid.StringID
	clock      clock.Clocker
	ins        instrument.Instrumentation

	outcomes metric.Int64Counter
}

type Dependency struct {
	Sender     deliverer
	RepoStatus repoStatus
	RepoQueue  repoQueue
	Simulator  simulator
	Breakers   *breaker.Registry
	Workers    *goroutine.Pool
	Validator  validator.Validator
	Config     config.Config
	UUID       uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		sender:     dep.Sender,
		repoStatus: dep.RepoStatus,
		repoQueue:  dep.RepoQueue,
		simulator:  dep.Simulator,
		breakers:   dep.Breakers,
		workers:    dep.Workers,
		validator:  dep.Validator,
		cfg:        dep.Config,
		uuid:       dep.UUID,
		clock:      dep.Clock,
		ins:        dep.Instrument,
	}

	counter, err := dep.Instrument.Meter("notification.usecase").Int64Counter(
		"otp.dispatch.outcomes",
		metric.WithDescription("Delivery outcomes by channel, sender and status"),
	)
	if err != nil {
		slog.Warn("failed to create dispatch outcome counter", "error", err)
	}
	uc.outcomes = counter

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

// save writes a status transition. Sink failures are logged and swallowed:
// they must not change the delivery outcome.
func (s *Usecase) save(ctx context.Context, rec entity.DeliveryRecord) {
	if err := s.repoStatus.Save(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo save delivery status",
			"correlation_id", rec.CorrelationID,
			"status", rec.Status.String(),
			"error", err,
		)
	}

	if rec.Status.Terminal() && s.outcomes != nil {
		s.outcomes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("channel", rec.Channel.String()),
			attribute.String("sender", s.sender.Name()),
			attribute.String("status", rec.Status.String()),
			attribute.String("error_code", rec.ErrorCode),
		))
	}
}

func (s *Usecase) fail(ctx context.Context, env entity.Envelope, err error) {
	rec := env.Record(entity.StatusFailed, s.clock.Now())
	rec.ErrorCode = entity.ErrorCode(err)
	rec.Reason = err.Error()
	s.save(ctx, rec)
}
