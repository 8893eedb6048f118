package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gotp/internal/notification"
	"github.com/shandysiswandi/gotp/internal/otp"
)

func (a *App) initModules() {
	dispatcher, err := notification.New(notification.Dependency{
		Ctx:         a.ctx,
		StatusKV:    a.statusKV,
		DBConn:      a.dbConn,
		Messaging:   a.messaging,
		Idempotency: a.idemp,
		Mail:        a.mail,
		Breakers:    a.breakers,
		Dispatcher:  a.dispatcher,
		Goroutine:   a.goroutine,
		Router:      a.router,
		Config:      a.config,
		Instrument:  a.ins,
		UID:         a.uid,
		UUID:        a.uuid,
		Clock:       a.clock,
		Validator:   a.validator,
	})
	if err != nil {
		slog.Error("failed to init module notification", "error", err)
		os.Exit(1)
	}

	if err := otp.New(otp.Dependency{
		KV:         a.kv,
		Dispatcher: dispatcher,
		Router:     a.router,
		Config:     a.config,
		Instrument: a.ins,
		Hash:       a.hash,
		Code:       a.code,
		Clock:      a.clock,
		Validator:  a.validator,
	}); err != nil {
		slog.Error("failed to init module otp", "error", err)
		os.Exit(1)
	}
}
