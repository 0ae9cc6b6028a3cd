package storage

import (
	"context"
	"time"

	"github.com/itsikram/client-hunter/internal/prospect"
)

// Filter narrows a prospect query.
type Filter struct {
	URL              string
	PlatformDetected *bool
	Validation       string
	Since            *time.Time
	Limit            int
	Offset           int
}

// Backend persists and queries prospect records.
type Backend interface {
	Save(ctx context.Context, record *prospect.Record) error
	SaveBatch(ctx context.Context, records []prospect.Record) error
	Query(ctx context.Context, filter Filter) ([]*prospect.Record, error)
	Close() error
}
