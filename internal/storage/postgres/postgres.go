package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/internal/storage"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS prospects (
	id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	validation TEXT NOT NULL,
	platform_detected BOOLEAN NOT NULL,
	indicator TEXT,
	confidence TEXT,
	verdict_error TEXT,
	contact JSONB,
	error TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, record *prospect.Record) error {
	var indicator, confidence, verdictError string
	if record.Verdict != nil {
		indicator = record.Verdict.Indicator
		confidence = string(record.Verdict.Confidence)
		verdictError = record.Verdict.Error
	}

	var contactJSON []byte
	if record.Contact != nil {
		var err error
		contactJSON, err = json.Marshal(record.Contact)
		if err != nil {
			return fmt.Errorf("failed to encode contact record: %w", err)
		}
	}

	query := `
	INSERT INTO prospects (
		id, url, validation, platform_detected, indicator, confidence, verdict_error, contact, error, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		validation = EXCLUDED.validation,
		platform_detected = EXCLUDED.platform_detected,
		indicator = EXCLUDED.indicator,
		confidence = EXCLUDED.confidence,
		verdict_error = EXCLUDED.verdict_error,
		contact = EXCLUDED.contact,
		error = EXCLUDED.error
	`

	_, err := b.pool.Exec(ctx, query,
		record.ID,
		record.URL,
		string(record.Validation),
		record.PlatformDetected(),
		indicator,
		confidence,
		verdictError,
		contactJSON,
		record.Error,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save prospect: %w", err)
	}

	return nil
}

// SaveBatch persists each record individually and keeps going past failures,
// returning the last error seen.
func (b *postgresBackend) SaveBatch(ctx context.Context, records []prospect.Record) error {
	var lastErr error
	for i := range records {
		if err := b.Save(ctx, &records[i]); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*prospect.Record, error) {
	query := `SELECT id, url, validation, platform_detected, indicator, confidence, verdict_error, contact, error, created_at FROM prospects WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.URL != "" {
		query += fmt.Sprintf(` AND url = $%d`, paramCount)
		args = append(args, filter.URL)
		paramCount++
	}
	if filter.PlatformDetected != nil {
		query += fmt.Sprintf(` AND platform_detected = $%d`, paramCount)
		args = append(args, *filter.PlatformDetected)
		paramCount++
	}
	if filter.Validation != "" {
		query += fmt.Sprintf(` AND validation = $%d`, paramCount)
		args = append(args, filter.Validation)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
		paramCount++
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prospects: %w", err)
	}
	defer rows.Close()

	var records []*prospect.Record
	for rows.Next() {
		var r prospect.Record
		var detected bool
		var validation, indicator, confidence, verdictError string
		var contactJSON []byte

		err := rows.Scan(
			&r.ID, &r.URL, &validation, &detected, &indicator, &confidence,
			&verdictError, &contactJSON, &r.Error, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prospect row: %w", err)
		}

		r.Validation = prospect.ValidationStatus(validation)
		if indicator != "" || confidence != "" || verdictError != "" {
			r.Verdict = &prospect.Verdict{
				URL:        r.URL,
				IsPlatform: detected,
				Indicator:  indicator,
				Confidence: prospect.Confidence(confidence),
				Error:      verdictError,
			}
		}
		if len(contactJSON) > 0 {
			var contact prospect.ContactRecord
			if err := json.Unmarshal(contactJSON, &contact); err != nil {
				return nil, fmt.Errorf("failed to decode contact record: %w", err)
			}
			r.Contact = &contact
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prospects: %w", err)
	}

	return records, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
