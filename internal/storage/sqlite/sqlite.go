package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/internal/storage"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
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
	contact TEXT,
	error TEXT,
	created_at DATETIME NOT NULL
);
`

// New creates a new SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, record *prospect.Record) error {
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
	INSERT OR REPLACE INTO prospects (
		id, url, validation, platform_detected, indicator, confidence, verdict_error, contact, error, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := b.db.ExecContext(ctx, query,
		record.ID,
		record.URL,
		string(record.Validation),
		record.PlatformDetected(),
		indicator,
		confidence,
		verdictError,
		string(contactJSON),
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
func (b *sqliteBackend) SaveBatch(ctx context.Context, records []prospect.Record) error {
	var lastErr error
	for i := range records {
		if err := b.Save(ctx, &records[i]); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*prospect.Record, error) {
	query := `SELECT id, url, validation, platform_detected, indicator, confidence, verdict_error, contact, error, created_at FROM prospects WHERE 1=1`
	args := []any{}

	if filter.URL != "" {
		query += ` AND url = ?`
		args = append(args, filter.URL)
	}
	if filter.PlatformDetected != nil {
		query += ` AND platform_detected = ?`
		args = append(args, *filter.PlatformDetected)
	}
	if filter.Validation != "" {
		query += ` AND validation = ?`
		args = append(args, filter.Validation)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prospects: %w", err)
	}
	defer rows.Close()

	var records []*prospect.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prospects: %w", err)
	}

	return records, nil
}

func scanRecord(rows *sql.Rows) (*prospect.Record, error) {
	var r prospect.Record
	var detected bool
	var validation, indicator, confidence, verdictError, contactJSON string

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
	if contactJSON != "" {
		var contact prospect.ContactRecord
		if err := json.Unmarshal([]byte(contactJSON), &contact); err != nil {
			return nil, fmt.Errorf("failed to decode contact record: %w", err)
		}
		r.Contact = &contact
	}

	return &r, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
