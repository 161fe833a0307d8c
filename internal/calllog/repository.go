package calllog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// NOTE: This repository assumes the following table exists:
//
//   call_logs (
//     id, provider, external_call_id, external_assistant_id,
//     caller_phone_number, started_at, ended_at, duration_seconds,
//     status, audio_url, transcript, raw_payload, created_at, updated_at
//   )
//
// with UNIQUE (provider, external_call_id). That constraint is what makes
// concurrent webhook deliveries and overlapping sync runs converge on a
// single row instead of duplicating it; the service layer does no locking.

var ErrNotFound = errors.New("calllog: not found")

// Repository is the persistence contract for call records.
type Repository interface {
	FindByProviderAndExternalCallID(ctx context.Context, provider Provider, externalCallID string) (CallRecord, bool, error)
	Upsert(ctx context.Context, rec CallRecord) (CallRecord, error)
	GetByID(ctx context.Context, id string) (CallRecord, bool, error)
	List(ctx context.Context, filter ListFilter) ([]CallRecord, error)
}

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	Provider            Provider
	ExternalAssistantID string
	Limit               int
}

type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

const callRecordColumns = `
id, provider, external_call_id, external_assistant_id, caller_phone_number,
started_at, ended_at, duration_seconds, status, audio_url, transcript, raw_payload,
created_at, updated_at`

func (r *PostgresRepo) FindByProviderAndExternalCallID(ctx context.Context, provider Provider, externalCallID string) (CallRecord, bool, error) {
	const q = `
SELECT` + callRecordColumns + `
FROM call_logs
WHERE provider = $1 AND external_call_id = $2
`
	rec, err := scanCallRecord(r.db.QueryRowContext(ctx, q, provider, externalCallID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallRecord{}, false, nil
		}
		return CallRecord{}, false, err
	}
	return rec, true, nil
}

// Upsert inserts or updates by the (provider, external_call_id) natural key.
// The row id and created_at survive updates; updated_at always advances.
func (r *PostgresRepo) Upsert(ctx context.Context, rec CallRecord) (CallRecord, error) {
	now := r.clock().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = CallStatusUnknown
	}

	const q = `
INSERT INTO call_logs (
  id, provider, external_call_id, external_assistant_id, caller_phone_number,
  started_at, ended_at, duration_seconds, status, audio_url, transcript, raw_payload,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
ON CONFLICT (provider, external_call_id)
DO UPDATE SET external_assistant_id = EXCLUDED.external_assistant_id,
              caller_phone_number   = EXCLUDED.caller_phone_number,
              started_at            = EXCLUDED.started_at,
              ended_at              = EXCLUDED.ended_at,
              duration_seconds      = EXCLUDED.duration_seconds,
              status                = EXCLUDED.status,
              audio_url             = EXCLUDED.audio_url,
              transcript            = EXCLUDED.transcript,
              raw_payload           = EXCLUDED.raw_payload,
              updated_at            = EXCLUDED.updated_at
RETURNING` + callRecordColumns + `
`
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.Provider,
		rec.ExternalCallID,
		nullString(rec.ExternalAssistantID),
		nullString(rec.CallerPhoneNumber),
		nullTime(rec.StartedAt),
		nullTime(rec.EndedAt),
		rec.DurationSeconds,
		rec.Status,
		nullString(rec.AudioURL),
		nullString(rec.Transcript),
		rec.RawPayload,
		now,
	)
	return scanCallRecord(row)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (CallRecord, bool, error) {
	const q = `
SELECT` + callRecordColumns + `
FROM call_logs
WHERE id = $1
`
	rec, err := scanCallRecord(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallRecord{}, false, nil
		}
		return CallRecord{}, false, err
	}
	return rec, true, nil
}

func (r *PostgresRepo) List(ctx context.Context, filter ListFilter) ([]CallRecord, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	const q = `
SELECT` + callRecordColumns + `
FROM call_logs
WHERE ($1 = '' OR provider = $1)
  AND ($2 = '' OR external_assistant_id = $2)
ORDER BY started_at DESC NULLS LAST, created_at DESC
LIMIT $3
`
	rows, err := r.db.QueryContext(ctx, q, string(filter.Provider), filter.ExternalAssistantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		rec, err := scanCallRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCallRecord(row rowScanner) (CallRecord, error) {
	var rec CallRecord
	var assistantID, phone, audio, transcript sql.NullString
	var started, ended sql.NullTime
	var duration sql.NullInt64

	err := row.Scan(
		&rec.ID,
		&rec.Provider,
		&rec.ExternalCallID,
		&assistantID,
		&phone,
		&started,
		&ended,
		&duration,
		&rec.Status,
		&audio,
		&transcript,
		&rec.RawPayload,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return CallRecord{}, err
	}

	rec.ExternalAssistantID = assistantID.String
	rec.CallerPhoneNumber = phone.String
	rec.AudioURL = audio.String
	rec.Transcript = transcript.String
	if started.Valid {
		rec.StartedAt = started.Time.UTC()
	}
	if ended.Valid {
		rec.EndedAt = ended.Time.UTC()
	}
	rec.DurationSeconds = int(duration.Int64)
	return rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
