package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/internal/storage"
)

func TestPostgresBackend(t *testing.T) {
	// Only run this test if HUNTER_TEST_PG_DSN is set
	dsn := os.Getenv("HUNTER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres backend test: HUNTER_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	b, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create Postgres backend: %v", err)
	}
	defer b.Close()

	now := time.Now().UTC()

	rec := &prospect.Record{
		ID:         "testpg1234",
		URL:        "https://example-pg.com",
		Validation: prospect.ValidationConfirmed,
		Verdict: &prospect.Verdict{
			URL:        "https://example-pg.com",
			IsPlatform: true,
			Indicator:  "rest_api",
			Confidence: prospect.ConfidenceHigh,
		},
		Contact: &prospect.ContactRecord{
			URL:         "https://example-pg.com",
			Emails:      []string{"sales@example-pg.com"},
			ExtractedAt: now,
		},
		CreatedAt: now,
	}

	if err := b.Save(ctx, rec); err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}

	results, err := b.Query(ctx, storage.Filter{URL: "https://example-pg.com"})
	if err != nil {
		t.Fatalf("Failed to query records: %v", err)
	}
	if len(results) < 1 {
		t.Fatalf("Expected at least 1 record, got %d", len(results))
	}

	got := results[0]
	if got.ID != rec.ID {
		t.Errorf("Expected ID %s, got %s", rec.ID, got.ID)
	}
	if !got.PlatformDetected() {
		t.Errorf("Expected platform detected after round trip")
	}
	if got.Contact == nil || len(got.Contact.Emails) != 1 {
		t.Errorf("Expected contact emails to survive, got %+v", got.Contact)
	}
	if got.CreatedAt.Unix() != rec.CreatedAt.Unix() {
		t.Errorf("Expected CreatedAt %v, got %v", rec.CreatedAt, got.CreatedAt)
	}

	// Saving the same ID again upserts.
	rec.Validation = prospect.ValidationRejected
	if err := b.Save(ctx, rec); err != nil {
		t.Fatalf("Failed to upsert record: %v", err)
	}
	results, err = b.Query(ctx, storage.Filter{URL: "https://example-pg.com", Validation: string(prospect.ValidationRejected)})
	if err != nil {
		t.Fatalf("Failed to query upserted record: %v", err)
	}
	if len(results) < 1 {
		t.Errorf("Expected upserted record to be queryable")
	}
}
