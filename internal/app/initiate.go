package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/gotp/internal/notification"
	"github.com/shandysiswandi/gotp/internal/notification/outbound/status"
	"github.com/shandysiswandi/gotp/internal/pkg/breaker"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/gotp/internal/pkg/mail"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path, config.WithDefaults(defaults), config.WithEnvPrefix("GOTP"))
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.code = otp.NewNumeric()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.dispatcher = goroutine.NewPool(
		a.config.GetInt("notification.dispatch.workers"),
		a.config.GetInt("notification.dispatch.queue_size"),
	)

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake(a.config.GetInt64("uid.snowflake.node"))
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow

	h, err := hash.New(
		a.config.GetBool("otp.hash.enabled"),
		a.config.GetString("otp.hash.algorithm"),
		a.config.GetString("otp.hash.secret"),
	)
	if err != nil {
		slog.Error("failed to init code hash", "error", err)
		os.Exit(1)
	}
	a.hash = h
}

// breakerConfig reads breaker.<name>.* falling back to fallback per key.
func breakerConfig(cfg config.Config, name string, fallback breaker.Config) breaker.Config {
	key := func(k string) (string, bool) {
		full := "breaker." + name + "." + k
		return full, cfg.IsSet(full)
	}

	out := fallback
	if k, ok := key("window_size"); ok {
		out.WindowSize = cfg.GetInt(k)
	}
	if k, ok := key("minimum_calls"); ok {
		out.MinimumCalls = cfg.GetInt(k)
	}
	if k, ok := key("failure_rate_threshold"); ok {
		out.FailureRateThreshold = cfg.GetFloat64(k)
	}
	if k, ok := key("slow_call_rate_threshold"); ok {
		out.SlowCallRateThreshold = cfg.GetFloat64(k)
	}
	if k, ok := key("slow_call_duration_ms"); ok {
		out.SlowCallDuration = cfg.GetMillisecond(k)
	}
	if k, ok := key("wait_duration_ms"); ok {
		out.WaitDuration = cfg.GetMillisecond(k)
	}
	if k, ok := key("permitted_calls_in_half_open"); ok {
		out.PermittedCallsInHalfOpen = cfg.GetInt(k)
	}
	return out
}

func (a *App) initBreakers() {
	defaults := breakerConfig(a.config, "default", breaker.DefaultConfig())

	a.breakers = breaker.NewRegistry(defaults,
		breaker.WithClock(a.clock),
		breaker.WithMeter(a.ins.Meter("breaker")),
		// shutdown cancels in-flight deliveries; that says nothing about downstream health
		breaker.WithIsFailure(func(err error) bool { return !errors.Is(err, context.Canceled) }),
	)

	// the downstream sender names its breaker after itself; creating it now
	// makes it visible to operators before the first delivery
	name := notification.SenderName(a.config)
	a.breakers.Configure(name, breakerConfig(a.config, name, defaults))
	a.breakers.Get(name)
}

func (a *App) initDatabase() {
	if a.config.GetString("notification.status.driver") != status.DriverPostgres {
		return
	}

	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = int32(a.config.GetInt("database.pool.max_conns")) //nolint:gosec // small config value
	config.MinConns = int32(a.config.GetInt("database.pool.min_conns")) //nolint:gosec // small config value
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

func (a *App) initCache() {
	storeDriver := a.config.GetString("store.driver")
	statusDriver := a.config.GetString("notification.status.driver")

	if storeDriver == kvstore.DriverRedis || statusDriver == status.DriverRedis {
		opt, err := redis.ParseURL(a.config.GetString("redis.url"))
		if err != nil {
			slog.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}

		rdb := redis.NewClient(opt)

		pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			slog.Error("failed to init redis", "error", err)
			os.Exit(1)
		}

		a.cacheConn = rdb
	}

	kvOpts := kvstore.FactoryOptions{
		Clock:         a.clock,
		SweepInterval: a.config.GetSecond("store.sweep_interval_seconds"),
	}
	if a.cacheConn != nil {
		kvOpts.Redis = a.cacheConn
	}

	kv, err := kvstore.NewFromDriver(storeDriver, kvOpts)
	if err != nil {
		slog.Error("failed to init code store", "error", err, "driver", storeDriver)
		os.Exit(1)
	}
	a.kv = kv
	a.idemp = idempotency.New(a.kv, "DISPATCH:")

	switch statusDriver {
	case status.DriverMemory, "":
		a.statusKV = kvstore.NewMemory(a.clock, kvOpts.SweepInterval)
	case status.DriverRedis:
		a.statusKV = kvstore.NewRedis(a.cacheConn)
	}
}

func (a *App) initMail() {
	if strings.TrimSpace(a.config.GetString("mail.host")) == "" {
		return
	}

	mail, err := mail.NewSMTP(mail.SMTPConfig{
		Host:               a.config.GetString("mail.host"),
		Port:               a.config.GetInt("mail.port"),
		Username:           a.config.GetString("mail.username"),
		Password:           a.config.GetString("mail.password"),
		From:               a.config.GetString("mail.from"),
		Timeout:            a.config.GetSecond("mail.timeout_seconds"),
		InsecureSkipVerify: a.config.GetBool("mail.insecure_skip_verify"),
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err)
		os.Exit(1)
	}

	a.mail = mail
}

func (a *App) initMessaging() {
	driver := strings.ToLower(strings.TrimSpace(a.config.GetString("notification.dispatch.transport")))
	if driver == "" || driver == notification.TransportLocal {
		return
	}

	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NATS: messaging.NATSConfig{
			URL:  a.config.GetString("messaging.nats.url"),
			Name: a.config.GetString("messaging.nats.name"),
			Options: []nats.Option{
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.PingInterval(a.config.GetSecond("messaging.nats.ping_interval_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers:      a.config.GetArray("messaging.kafka.brokers"),
			BatchTimeout: a.config.GetMillisecond("messaging.kafka.batch_timeout_ms"),
		},
		Memory: messaging.MemoryConfig{
			Buffer: a.config.GetInt("messaging.memory.buffer"),
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	a.router.GET("/health", a.health)

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Messaging",
			fn: func(context.Context) error {
				if a.messaging == nil {
					return nil
				}
				return a.messaging.Close()
			},
		},
		{
			name: "StatusStore",
			fn: func(context.Context) error {
				if a.statusKV == nil {
					return nil
				}
				return a.statusKV.Close()
			},
		},
		{
			name: "CodeStore",
			fn: func(context.Context) error {
				return a.kv.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				if a.dbConn != nil {
					a.dbConn.Close()
				}

				return nil
			},
		},
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
