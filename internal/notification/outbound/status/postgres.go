package status

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/gotp/internal/notification/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
)

// pgxConn is satisfied by *pgxpool.Pool and by pgxmock.
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	queryMigrate = `CREATE TABLE IF NOT EXISTS otp_delivery_logs (
	id             BIGINT PRIMARY KEY,
	correlation_id TEXT NOT NULL UNIQUE,
	channel        TEXT NOT NULL,
	identifier     TEXT NOT NULL,
	status         TEXT NOT NULL,
	error_code     TEXT NOT NULL DEFAULT '',
	reason         TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
)`

	queryUpsert = `INSERT INTO otp_delivery_logs
	(id, correlation_id, channel, identifier, status, error_code, reason, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (correlation_id) DO UPDATE SET
	status = EXCLUDED.status,
	error_code = EXCLUDED.error_code,
	reason = EXCLUDED.reason,
	updated_at = EXCLUDED.updated_at`

	queryGet = `SELECT correlation_id, channel, identifier, status, error_code, reason, created_at, updated_at
FROM otp_delivery_logs WHERE correlation_id = $1`
)

// Postgres keeps every record permanently in otp_delivery_logs.
type Postgres struct {
	conn pgxConn
	uid  uid.NumberID
	ins  instrument.Instrumentation
}

func NewPostgres(conn pgxConn, id uid.NumberID, ins instrument.Instrumentation) *Postgres {
	return &Postgres{conn: conn, uid: id, ins: ins}
}

// Migrate creates the table when it is missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, queryMigrate)
	return err
}

func (s *Postgres) Save(ctx context.Context, rec entity.DeliveryRecord) (err error) {
	ctx, span := startSpan(ctx, s.ins, "Save")
	defer func() { endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryUpsert,
		s.uid.Generate(),
		rec.CorrelationID,
		rec.Channel.String(),
		rec.Identifier,
		rec.Status.String(),
		rec.ErrorCode,
		rec.Reason,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (s *Postgres) Get(ctx context.Context, correlationID string) (_ *entity.DeliveryRecord, err error) {
	ctx, span := startSpan(ctx, s.ins, "Get")
	defer func() { endSpan(span, err) }()

	var (
		rec     entity.DeliveryRecord
		channel string
		status  string
	)
	err = s.conn.QueryRow(ctx, queryGet, correlationID).Scan(
		&rec.CorrelationID,
		&channel,
		&rec.Identifier,
		&status,
		&rec.ErrorCode,
		&rec.Reason,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.Channel = entity.Channel(channel)
	rec.Status = entity.DeliveryStatus(status)

	return &rec, nil
}
