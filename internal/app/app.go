package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
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

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine  *goroutine.Manager
	dispatcher *goroutine.Pool
	validator  validator.Validator
	clock      clock.Clocker
	hash       hash.Hash
	code       otp.Generator
	uid        uid.NumberID
	uuid       uid.StringID
	breakers   *breaker.Registry

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	kv        kvstore.KV
	statusKV  kvstore.KV
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initBreakers()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
