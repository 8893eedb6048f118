package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type GetStatusInput struct {
	CorrelationID string `validate:"required,uuid"`
}

func (s *Usecase) GetStatus(ctx context.Context, in GetStatusInput) (*entity.DeliveryRecord, error) {
	ctx, span := s.startSpan(ctx, "GetStatus")
	defer span.End()

	in.CorrelationID = strings.TrimSpace(in.CorrelationID)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	rec, err := s.repoStatus.Get(ctx, in.CorrelationID)
	if errors.Is(err, entity.ErrRecordNotFound) {
		return nil, goerror.NewBusinessWrap(err, "Notification not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get delivery status", "correlation_id", in.CorrelationID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return rec, nil
}
