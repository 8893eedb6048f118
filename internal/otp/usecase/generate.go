package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type GenerateInput struct {
	Identifier string `validate:"required,max=254"`
	Channel    string `validate:"required,oneof=SMS EMAIL"`
	FirstName  string `validate:"required,max=50,personname"`
	LastName   string `validate:"required,max=50,personname"`
	Locale     string `validate:"omitempty,locale"`
}

type GenerateOutput struct {
	Code          string
	CorrelationID string
	ExpiresIn     time.Duration
}

func (s *Usecase) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "Generate")
	defer span.End()

	in, err := s.sanitize(in)
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, in, true)
}

func (s *Usecase) sanitize(in GenerateInput) (GenerateInput, error) {
	ch := entity.ParseChannel(in.Channel)
	in.Channel = ch.String()
	in.Identifier = normalizeIdentifier(ch, in.Identifier)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Locale = strings.TrimSpace(in.Locale)
	if in.Locale == "" {
		in.Locale = s.cfg.GetString("notification.locale.default")
	}

	if err := s.validator.Validate(in); err != nil {
		return in, goerror.NewInvalidInput(err)
	}

	if err := s.validateTarget(ch, in.Identifier); err != nil {
		return in, goerror.NewInvalidInput(err)
	}

	return in, nil
}

// issue stores a fresh code for in.Identifier, superseding any active one.
// When dispatch is false the code is stored but nothing is sent.
func (s *Usecase) issue(ctx context.Context, in GenerateInput, dispatch bool) (*GenerateOutput, error) {
	code, err := s.code.Generate(s.codeLength())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "length", s.codeLength(), "error", err)
		return nil, goerror.NewServer(err)
	}

	hashed, err := s.hash.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash code", "error", err)
		return nil, goerror.NewServer(err)
	}

	expiry := s.expiry()
	if err := s.repoCode.Put(ctx, in.Identifier, string(hashed), expiry, s.cooldown()); err != nil {
		s.logStoreError(ctx, "failed to repo put code", in.Identifier, err)
		return nil, storeError(err)
	}

	out := &GenerateOutput{Code: code, ExpiresIn: expiry}
	if !dispatch {
		return out, nil
	}

	out.CorrelationID = s.repoNotifier.Notify(ctx, entity.Delivery{
		Identifier: in.Identifier,
		Code:       code,
		Recipient: entity.RecipientInfo{
			Channel:   entity.Channel(in.Channel),
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Locale:    in.Locale,
		},
	})

	slog.InfoContext(ctx, "code issued", "identifier", in.Identifier, "channel", in.Channel, "correlation_id", out.CorrelationID)

	return out, nil
}
