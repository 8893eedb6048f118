package notification

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/notification/inbound"
	"github.com/shandysiswandi/gotp/internal/notification/outbound/mq"
	"github.com/shandysiswandi/gotp/internal/notification/outbound/sender"
	"github.com/shandysiswandi/gotp/internal/notification/outbound/status"
	"github.com/shandysiswandi/gotp/internal/notification/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/breaker"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/gotp/internal/pkg/mail"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/oauth"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Dispatch transports.
const (
	TransportLocal = "local"
)

type Dependency struct {
	// Ctx scopes the background consumer; nil disables it.
	Ctx context.Context

	// StatusKV backs the memory and redis status drivers.
	StatusKV kvstore.KV
	// DBConn backs the postgres status driver.
	DBConn *pgxpool.Pool
	// Messaging carries envelopes when the transport is not local.
	Messaging messaging.Messaging
	// Idempotency guards queued envelopes against redelivery.
	Idempotency idempotency.Idempotency
	// Mail backs the smtp sender.
	Mail mail.Mail

	Breakers   *breaker.Registry          `validate:"required"`
	Dispatcher *goroutine.Pool            `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// New wires the dispatcher and returns it so other modules can hand codes
// over for delivery.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	snd, sim, err := newSender(dep)
	if err != nil {
		return nil, err
	}

	repoStatus, err := newStatus(dep)
	if err != nil {
		return nil, err
	}

	ucDep := usecase.Dependency{
		Sender:     snd,
		RepoStatus: repoStatus,
		Breakers:   dep.Breakers,
		Workers:    dep.Dispatcher,
		Validator:  dep.Validator,
		Config:     dep.Config,
		UUID:       dep.UUID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	}
	if sim != nil {
		ucDep.Simulator = sim
	}

	transport := strings.ToLower(strings.TrimSpace(dep.Config.GetString("notification.dispatch.transport")))
	queued := transport != "" && transport != TransportLocal
	consumerCfg := inbound.ConsumerConfig{
		Topic:       dep.Config.GetString("notification.dispatch.topic"),
		Group:       dep.Config.GetString("notification.dispatch.group"),
		Concurrency: dep.Config.GetInt("notification.dispatch.concurrency"),
	}
	if queued {
		if dep.Messaging == nil || dep.Idempotency == nil {
			return nil, fmt.Errorf("notification: transport %q requires messaging and idempotency", transport)
		}
		ucDep.RepoQueue = mq.NewMessaging(dep.Messaging, consumerCfg.Topic, dep.Instrument)
	}

	uc := usecase.New(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if queued && dep.Ctx != nil {
		if !inbound.RegisterMQConsumer(dep.Ctx, consumerCfg, dep.Goroutine, dep.Messaging, dep.Idempotency, dep.UUID, uc, dep.Instrument) {
			return nil, fmt.Errorf("notification: no goroutine slot for the envelope consumer")
		}
	}

	return uc, nil
}

// SenderName resolves notification.sender.driver. The sender's breaker is
// registered under the same name; an empty driver means simulation.
func SenderName(cfg config.Config) string {
	name := strings.ToLower(strings.TrimSpace(cfg.GetString("notification.sender.driver")))
	if name == "" {
		return sender.NameSimulation
	}
	return name
}

type deliverer interface {
	Name() string
	Send(ctx context.Context, env entity.Envelope) error
}

type simulator interface {
	Settings() entity.SimulationSettings
	Update(s entity.SimulationSettings)
}

type statusSink interface {
	Save(ctx context.Context, rec entity.DeliveryRecord) error
	Get(ctx context.Context, correlationID string) (*entity.DeliveryRecord, error)
}

func newSender(dep Dependency) (deliverer, simulator, error) {
	cfg := dep.Config
	ctx := dep.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	switch driver := SenderName(cfg); driver {
	case sender.NameSimulation:
		sim := sender.NewSimulation(entity.SimulationSettings{
			Delay:       cfg.GetMillisecond("notification.sender.simulation.delay_ms"),
			FailureRate: cfg.GetFloat64("notification.sender.simulation.failure_rate"),
			Timeout:     cfg.GetMillisecond("notification.sender.simulation.timeout_ms"),
		}, dep.Instrument)
		return sim, sim, nil

	case sender.NameSalesforce:
		tokens, err := oauth.NewFromMode(ctx, oauth.Config{
			Mode:           cfg.GetString("notification.auth.mode"),
			TokenURL:       cfg.GetString("notification.auth.token_url"),
			ClientID:       cfg.GetString("notification.auth.client_id"),
			ClientSecret:   cfg.GetString("notification.auth.client_secret"),
			AccountID:      cfg.GetString("notification.auth.account_id"),
			Scopes:         cfg.GetArray("notification.auth.scopes"),
			SigningSecret:  cfg.GetString("notification.auth.signing_secret"),
			Audience:       cfg.GetString("notification.auth.audience"),
			TokenTTL:       cfg.GetSecond("notification.auth.token_ttl_seconds"),
			RefreshMargin:  cfg.GetSecond("notification.auth.refresh_margin_seconds"),
			RequestTimeout: cfg.GetSecond("notification.auth.timeout_seconds"),
		}, &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}, dep.Clock)
		if err != nil {
			return nil, nil, fmt.Errorf("notification: auth: %w", err)
		}

		return sender.NewSalesforce(sender.SalesforceConfig{
			URL:         cfg.GetString("notification.sender.salesforce.url"),
			APIKeySMS:   cfg.GetString("notification.sender.salesforce.api_key.sms"),
			APIKeyEmail: cfg.GetString("notification.sender.salesforce.api_key.email"),
			Timeout:     cfg.GetSecond("notification.sender.salesforce.timeout_seconds"),
		}, tokens, dep.Instrument), nil, nil

	case sender.NameSMTP:
		if dep.Mail == nil {
			return nil, nil, fmt.Errorf("notification: smtp sender requires mail")
		}
		return sender.NewSMTP(dep.Mail, cfg.GetString("notification.sender.smtp.subject"), dep.Instrument), nil, nil

	default:
		return nil, nil, fmt.Errorf("notification: unknown sender driver %q", driver)
	}
}

func newStatus(dep Dependency) (statusSink, error) {
	switch driver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("notification.status.driver"))); driver {
	case status.DriverMemory, status.DriverRedis, "":
		if dep.StatusKV == nil {
			return nil, fmt.Errorf("notification: status driver %q requires a kv store", driver)
		}
		ttl := dep.Config.GetSecond("notification.status.ttl_seconds")
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		return status.NewKV(dep.StatusKV, ttl, dep.Instrument), nil

	case status.DriverPostgres:
		if dep.DBConn == nil {
			return nil, fmt.Errorf("notification: postgres status driver requires a database")
		}
		pg := status.NewPostgres(dep.DBConn, dep.UID, dep.Instrument)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("notification: migrate status table: %w", err)
		}
		return pg, nil

	default:
		return nil, fmt.Errorf("notification: unknown status driver %q", driver)
	}
}
