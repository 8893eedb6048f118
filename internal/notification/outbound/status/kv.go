package status

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/kvstore"
)

const keyPrefix = "NOTIFICATION:"

// KV keeps each record as JSON in a kvstore. It backs both the memory and
// the redis drivers; records expire after ttl.
type KV struct {
	kv  kvstore.KV
	ttl time.Duration
	ins instrument.Instrumentation
}

func NewKV(kv kvstore.KV, ttl time.Duration, ins instrument.Instrumentation) *KV {
	return &KV{kv: kv, ttl: ttl, ins: ins}
}

func (s *KV) Save(ctx context.Context, rec entity.DeliveryRecord) (err error) {
	ctx, span := startSpan(ctx, s.ins, "Save")
	defer func() { endSpan(span, err) }()

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	err = s.kv.Set(ctx, keyPrefix+rec.CorrelationID, string(raw), s.ttl)
	return err
}

func (s *KV) Get(ctx context.Context, correlationID string) (_ *entity.DeliveryRecord, err error) {
	ctx, span := startSpan(ctx, s.ins, "Get")
	defer func() { endSpan(span, err) }()

	raw, err := s.kv.Get(ctx, keyPrefix+correlationID)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, entity.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec entity.DeliveryRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}
