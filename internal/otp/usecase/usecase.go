package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoCode interface {
	Put(ctx context.Context, identifier, hashedCode string, ttl, cooldown time.Duration) error
	Get(ctx context.Context, identifier string) (string, bool, error)
	GetCooldown(ctx context.Context, identifier string) (time.Time, bool, error)
	Delete(ctx context.Context, identifier string) error
	Ping(ctx context.Context) error
}

// repoNotifier hands a delivery to the dispatcher and returns its
// correlation id without waiting for the outcome.
type repoNotifier interface {
	Notify(ctx context.Context, d entity.Delivery) string
}

type Usecase struct {
	repoCode     repoCode
	repoNotifier repoNotifier
	validator    validator.Validator
	cfg          config.Config
	hash         hash.Hash
	code         otp.Generator
	clock        clock.Clocker
	ins          instrument.Instrumentation
}

type Dependency struct {
	RepoCode     repoCode
	RepoNotifier repoNotifier
	Validator    validator.Validator
	Config       config.Config
	Hash         hash.Hash
	Code         otp.Generator
	Clock        clock.Clocker
	Instrument   instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoCode:     dep.RepoCode,
		repoNotifier: dep.RepoNotifier,
		validator:    dep.Validator,
		cfg:          dep.Config,
		hash:         dep.Hash,
		code:         dep.Code,
		clock:        dep.Clock,
		ins:          dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func (s *Usecase) codeLength() int {
	return s.cfg.GetInt("otp.length")
}

func (s *Usecase) expiry() time.Duration {
	return s.cfg.GetSecond("otp.expiry_seconds")
}

func (s *Usecase) cooldown() time.Duration {
	return s.cfg.GetSecond("otp.cooldown_seconds")
}

func storeError(err error) error {
	if errors.Is(err, entity.ErrStoreUnavailable) {
		return goerror.NewServerWrap(err, "Code store is unavailable, please try again later", goerror.CodeServiceUnavailable)
	}
	return goerror.NewServer(err)
}

type smsTarget struct {
	Identifier string `validate:"phone"`
}

type emailTarget struct {
	Identifier string `validate:"email"`
}

// validateTarget checks the identifier against the channel it will be sent on.
func (s *Usecase) validateTarget(ch entity.Channel, identifier string) error {
	switch ch {
	case entity.ChannelSMS:
		return s.validator.Validate(smsTarget{Identifier: identifier})
	case entity.ChannelEmail:
		return s.validator.Validate(emailTarget{Identifier: identifier})
	}
	return nil
}

func normalizeIdentifier(ch entity.Channel, identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if ch == entity.ChannelEmail {
		return strings.ToLower(identifier)
	}
	return identifier
}

func (s *Usecase) logStoreError(ctx context.Context, msg, identifier string, err error) {
	slog.ErrorContext(ctx, msg, "identifier", identifier, "error", err)
}
