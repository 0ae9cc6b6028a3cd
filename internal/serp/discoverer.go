package serp

import (
	"context"
	"log/slog"
	"time"

	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/pkg/ratelimit"
)

// DiscoverOptions controls a discovery pass.
type DiscoverOptions struct {
	// Industry selects an extra query template set. Empty means generic only.
	Industry string
	// CustomQueries are run verbatim after the built-in battery.
	CustomQueries []string
	// MaxResults caps the aggregate. Zero means unlimited.
	MaxResults int
	// Pages and PerPage control pagination per query.
	Pages   int
	PerPage int
	// QueryDelay is the pause between consecutive queries.
	QueryDelay time.Duration
	// PageDelay is passed through to the provider between result pages.
	PageDelay time.Duration
}

// Discoverer aggregates search results across a battery of queries.
type Discoverer struct {
	provider Provider
	logger   *slog.Logger
}

func NewDiscoverer(provider Provider, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{provider: provider, logger: logger}
}

// FindPlatformSites runs the generic discovery battery, plus the industry
// set and any custom queries, pausing between queries. Individual query
// failures are logged and skipped. The aggregate is deduplicated and capped.
func (d *Discoverer) FindPlatformSites(ctx context.Context, opts DiscoverOptions) ([]prospect.SearchResult, error) {
	queries := make([]string, 0, len(platformQueries)+4)
	queries = append(queries, platformQueries...)
	if opts.Industry != "" {
		if set, ok := industryQueries[opts.Industry]; ok {
			queries = append(queries, set...)
		} else {
			d.logger.Warn("unknown industry, using generic queries only", "industry", opts.Industry)
		}
	}
	queries = append(queries, opts.CustomQueries...)

	return d.run(ctx, queries, opts)
}

// SearchByKeywords builds one platform query per keyword and aggregates the
// results the same way FindPlatformSites does.
func (d *Discoverer) SearchByKeywords(ctx context.Context, keywords []string, opts DiscoverOptions) ([]prospect.SearchResult, error) {
	queries := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		queries = append(queries, keywordQuery(kw))
	}
	return d.run(ctx, queries, opts)
}

func (d *Discoverer) run(ctx context.Context, queries []string, opts DiscoverOptions) ([]prospect.SearchResult, error) {
	pages := opts.Pages
	if pages <= 0 {
		pages = 1
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 10
	}

	var aggregate []prospect.SearchResult
	for i, q := range queries {
		if i > 0 && opts.QueryDelay > 0 {
			if err := ratelimit.Pause(ctx, opts.QueryDelay); err != nil {
				return Dedupe(aggregate), err
			}
		}
		results, err := d.provider.Search(ctx, q, pages, perPage, opts.PageDelay)
		if err != nil {
			d.logger.Warn("query failed", "query", q, "error", err)
			continue
		}
		d.logger.Info("query complete", "query", q, "results", len(results))
		aggregate = append(aggregate, results...)

		if opts.MaxResults > 0 && len(Dedupe(aggregate)) >= opts.MaxResults {
			break
		}
	}

	deduped := Dedupe(aggregate)
	if opts.MaxResults > 0 && len(deduped) > opts.MaxResults {
		deduped = deduped[:opts.MaxResults]
	}
	return deduped, nil
}
