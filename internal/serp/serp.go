// Package serp discovers candidate prospect sites by scraping search engine
// result pages. The target markup is not stable; parsing is best-effort and
// an unrecognized page simply yields no results.
package serp

import (
	"context"
	"time"

	"github.com/itsikram/client-hunter/internal/prospect"
)

// Provider abstracts a search engine that returns result records for a query.
// Implementations paginate internally: pages is the number of result pages to
// walk, perPage the requested results per page, and delay the pause between
// page fetches. A page failure ends pagination and returns what accumulated.
type Provider interface {
	Search(ctx context.Context, query string, pages, perPage int, delay time.Duration) ([]prospect.SearchResult, error)
}
