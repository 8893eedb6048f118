package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/pkg/breaker"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

func (s *Usecase) ListBreakers(ctx context.Context) []breaker.Snapshot {
	_, span := s.startSpan(ctx, "ListBreakers")
	defer span.End()

	return lo.Map(s.breakers.All(), func(b *breaker.Breaker, _ int) breaker.Snapshot {
		return b.Snapshot()
	})
}

func (s *Usecase) GetBreaker(ctx context.Context, name string) (*breaker.Snapshot, error) {
	_, span := s.startSpan(ctx, "GetBreaker")
	defer span.End()

	b, ok := s.breakers.Find(strings.TrimSpace(name))
	if !ok {
		return nil, goerror.NewBusiness("Circuit breaker not found", goerror.CodeNotFound)
	}

	snap := b.Snapshot()
	return &snap, nil
}

// ResetBreaker forces the breaker CLOSED with an empty window.
func (s *Usecase) ResetBreaker(ctx context.Context, name string) (*breaker.Snapshot, error) {
	ctx, span := s.startSpan(ctx, "ResetBreaker")
	defer span.End()

	b, ok := s.breakers.Find(strings.TrimSpace(name))
	if !ok {
		return nil, goerror.NewBusiness("Circuit breaker not found", goerror.CodeNotFound)
	}

	from := b.State()
	b.Reset()
	slog.InfoContext(ctx, "circuit breaker reset by operator", "breaker", b.Name(), "from", from.String())

	snap := b.Snapshot()
	return &snap, nil
}
