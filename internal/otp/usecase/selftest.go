package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

// selfTestPrefix scopes self-test records. Real identifiers are phone numbers
// or email addresses and can never carry it.
const selfTestPrefix = "self-test:"

type SelfTestInput struct {
	Identifier string `validate:"omitempty,max=254"`
}

type SelfTestStep struct {
	Name     string
	Passed   bool
	Detail   string
	Duration time.Duration
}

type SelfTestOutput struct {
	Identifier string
	Passed     bool
	Steps      []SelfTestStep
}

// SelfTest runs the whole lifecycle against the live store without sending
// anything. A failing step does not stop the run; cleanup always happens.
// The identifier is always scoped under selfTestPrefix so a run never touches
// a real recipient's code or cooldown.
func (s *Usecase) SelfTest(ctx context.Context, in SelfTestInput) (*SelfTestOutput, error) {
	ctx, span := s.startSpan(ctx, "SelfTest")
	defer span.End()

	in.Identifier = strings.TrimSpace(in.Identifier)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if in.Identifier == "" {
		in.Identifier = strconv.FormatInt(s.clock.Now().UnixNano(), 10)
	}
	if !strings.HasPrefix(in.Identifier, selfTestPrefix) {
		in.Identifier = selfTestPrefix + in.Identifier
	}

	out := &SelfTestOutput{Identifier: in.Identifier, Passed: true}
	run := func(name string, fn func() error) {
		started := s.clock.Now()
		err := fn()
		step := SelfTestStep{Name: name, Passed: err == nil, Duration: s.clock.Now().Sub(started)}
		if err != nil {
			step.Detail = err.Error()
			out.Passed = false
		}
		out.Steps = append(out.Steps, step)
	}

	gen := GenerateInput{
		Identifier: in.Identifier,
		Channel:    entity.ChannelSMS.String(),
		FirstName:  "Self",
		LastName:   "Test",
		Locale:     s.cfg.GetString("notification.locale.default"),
	}

	var code string
	run("store_ping", func() error {
		return s.repoCode.Ping(ctx)
	})
	run("generate", func() error {
		res, err := s.issue(ctx, gen, false)
		if err != nil {
			return err
		}
		code = res.Code
		return nil
	})
	run("verify_wrong_code", func() error {
		return expect(s.verify(ctx, VerifyInput{Identifier: in.Identifier, Code: wrongCode(code)}), entity.ErrInvalid)
	})
	run("verify", func() error {
		return s.verify(ctx, VerifyInput{Identifier: in.Identifier, Code: code})
	})
	run("verify_reused_code", func() error {
		return expect(s.verify(ctx, VerifyInput{Identifier: in.Identifier, Code: code}), entity.ErrNotFound)
	})
	run("resend_during_cooldown", func() error {
		if _, err := s.issue(ctx, gen, false); err != nil {
			return err
		}
		_, err := s.resend(ctx, gen, false)
		return expect(err, entity.ErrCooldownActive)
	})
	run("resend_after_cooldown", func() error {
		if err := s.repoCode.Delete(ctx, in.Identifier); err != nil {
			return err
		}
		_, err := s.resend(ctx, gen, false)
		return err
	})
	run("cleanup", func() error {
		return s.repoCode.Delete(ctx, in.Identifier)
	})

	slog.InfoContext(ctx, "self-test finished", "identifier", in.Identifier, "passed", out.Passed)

	return out, nil
}

func expect(err, want error) error {
	if err == nil {
		return fmt.Errorf("expected %v, got success", want)
	}
	if !errors.Is(err, want) {
		return fmt.Errorf("expected %v, got %w", want, err)
	}
	return nil
}

// wrongCode returns a code of the same length that differs from code.
func wrongCode(code string) string {
	if code == "" {
		return "0"
	}
	b := []byte(code)
	last := len(b) - 1
	b[last] = '0' + (b[last]-'0'+1)%10
	return string(b)
}
