package otp

import (
	"context"

	nusecase "github.com/shandysiswandi/gotp/internal/notification/usecase"
	"github.com/shandysiswandi/gotp/internal/otp/inbound"
	"github.com/shandysiswandi/gotp/internal/otp/outbound/cache"
	"github.com/shandysiswandi/gotp/internal/otp/outbound/notifier"
	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

// Dispatcher accepts a code for delivery and returns its correlation id.
type Dispatcher interface {
	Dispatch(ctx context.Context, in nusecase.DispatchInput) string
}

type Dependency struct {
	KV         kvstore.KV                 `validate:"required"`
	Dispatcher Dispatcher                 `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Hash       hash.Hash                  `validate:"required"`
	Code       otp.Generator              `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoCode:     cache.New(dep.KV, dep.Clock, dep.Instrument),
		RepoNotifier: notifier.New(dep.Dispatcher),
		Validator:    dep.Validator,
		Config:       dep.Config,
		Hash:         dep.Hash,
		Code:         dep.Code,
		Clock:        dep.Clock,
		Instrument:   dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetBool("otp.expose_code"))

	return nil
}
