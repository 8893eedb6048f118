package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type VerifyInput struct {
	Identifier string `validate:"required,max=254"`
	Code       string `validate:"required,digits"`
}

func (s *Usecase) Verify(ctx context.Context, in VerifyInput) error {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Identifier = strings.TrimSpace(in.Identifier)
	if strings.Contains(in.Identifier, "@") {
		in.Identifier = strings.ToLower(in.Identifier)
	}
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if n := s.codeLength(); len(in.Code) != n {
		return goerror.NewInvalidInput(nil, "code", fmt.Sprintf("code must be exactly %d digits", n))
	}

	return s.verify(ctx, in)
}

func (s *Usecase) verify(ctx context.Context, in VerifyInput) error {
	stored, found, err := s.repoCode.Get(ctx, in.Identifier)
	if err != nil {
		s.logStoreError(ctx, "failed to repo get code", in.Identifier, err)
		return storeError(err)
	}

	if !found {
		slog.WarnContext(ctx, "no active code for identifier", "identifier", in.Identifier)
		return goerror.NewBusinessWrap(entity.ErrNotFound, "No active code for this identifier", goerror.CodeNotFound)
	}

	if !s.hash.Verify(stored, in.Code) {
		slog.WarnContext(ctx, "submitted code does not match", "identifier", in.Identifier)
		return goerror.NewBusinessWrap(entity.ErrInvalid, "Invalid code", goerror.CodeMismatch)
	}

	if err := s.repoCode.Delete(ctx, in.Identifier); err != nil {
		s.logStoreError(ctx, "failed to repo delete code", in.Identifier, err)
		return storeError(err)
	}

	slog.InfoContext(ctx, "code verified", "identifier", in.Identifier)

	return nil
}
