// Package pipeline orchestrates a prospecting run: discover candidate sites,
// validate each one against the platform heuristics, extract contact data,
// summarize, export. The middle stages are optional; the flow is linear and
// strictly sequential, one fetch at a time.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/itsikram/client-hunter/internal/detector"
	"github.com/itsikram/client-hunter/internal/extractor"
	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/internal/serp"
	"github.com/itsikram/client-hunter/internal/storage"
	"github.com/itsikram/client-hunter/pkg/ratelimit"
)

// Exporter writes the final record set to report files. Implementations must
// not mutate the records.
type Exporter interface {
	ExportTabular(records []*prospect.Record) (string, error)
	ExportStructured(records []*prospect.Record) (string, error)
	ExportFlatList(records []*prospect.Record) (string, error)
	ExportNarrative(records []*prospect.Record) (string, error)
}

// Options controls which stages run. The zero value runs everything.
type Options struct {
	SkipValidation bool
	SkipExtraction bool
	// PlatformOnly drops records without a confirmed platform verdict from
	// the final result. It has no effect when validation is skipped.
	PlatformOnly bool
	// Delay is the pause between consecutive sites.
	Delay time.Duration
	// SkipExport leaves the result in memory only.
	SkipExport bool
}

// Pipeline wires the stage components together. Discoverer may be nil when
// only ProcessURLs is used; Detector and Extractor may be nil when the
// corresponding stage is always skipped. Store is optional.
type Pipeline struct {
	Discoverer *serp.Discoverer
	Detector   *detector.Detector
	Extractor  *extractor.Extractor
	Exporter   Exporter
	Store      storage.Backend
	Logger     *slog.Logger
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Run discovers sites with the given options and processes every discovered
// URL. Setup failures (no discoverer, discovery returning nothing usable)
// are fatal; per-site failures are not.
func (p *Pipeline) Run(ctx context.Context, discover serp.DiscoverOptions, opts Options) (*prospect.Result, error) {
	if p.Discoverer == nil {
		return nil, fmt.Errorf("pipeline has no discoverer")
	}

	started := time.Now()
	searchResults, err := p.Discoverer.FindPlatformSites(ctx, discover)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	p.logger().Info("discovery complete", "results", len(searchResults))

	urls := make([]string, 0, len(searchResults))
	for _, r := range searchResults {
		urls = append(urls, r.URL)
	}

	result, err := p.process(ctx, urls, opts)
	if err != nil {
		return nil, err
	}
	result.SearchResults = searchResults
	result.StartedAt = started
	result.Summary = prospect.Summarize(result.SearchResults, result.Prospects)
	return result, p.finish(ctx, result, opts)
}

// ProcessURLs runs the validate/extract stages over a caller-supplied URL
// list, then summarizes and exports. Every input URL yields exactly one
// record; failures are tagged on the record, never dropped.
func (p *Pipeline) ProcessURLs(ctx context.Context, urls []string, opts Options) (*prospect.Result, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs to process")
	}

	started := time.Now()
	result, err := p.process(ctx, urls, opts)
	if err != nil {
		return nil, err
	}
	result.StartedAt = started
	result.Summary = prospect.Summarize(result.SearchResults, result.Prospects)
	return result, p.finish(ctx, result, opts)
}

func (p *Pipeline) process(ctx context.Context, urls []string, opts Options) (*prospect.Result, error) {
	if !opts.SkipValidation && p.Detector == nil {
		return nil, fmt.Errorf("pipeline has no detector")
	}
	if !opts.SkipExtraction && p.Extractor == nil {
		return nil, fmt.Errorf("pipeline has no extractor")
	}

	log := p.logger()
	records := make([]*prospect.Record, 0, len(urls))

	for i, rawURL := range urls {
		if i > 0 && opts.Delay > 0 {
			if err := ratelimit.Pause(ctx, opts.Delay); err != nil {
				log.Warn("run interrupted", "processed", i, "total", len(urls))
				break
			}
		}

		rec := p.processSite(ctx, rawURL, opts)
		records = append(records, rec)
		log.Info("site processed",
			"url", rec.URL,
			"validation", rec.Validation,
			"detected", rec.PlatformDetected(),
			"error", rec.Error)
	}

	if opts.PlatformOnly && !opts.SkipValidation {
		filtered := records[:0]
		for _, rec := range records {
			if rec.PlatformDetected() {
				filtered = append(filtered, rec)
			}
		}
		log.Info("platform-only filter applied", "kept", len(filtered), "dropped", len(records)-len(filtered))
		records = filtered
	}

	return &prospect.Result{Prospects: records}, nil
}

// processSite runs validation and extraction for a single URL. All failures
// end up on the record.
func (p *Pipeline) processSite(ctx context.Context, rawURL string, opts Options) *prospect.Record {
	rec := &prospect.Record{
		ID:         uuid.NewString(),
		URL:        rawURL,
		Validation: prospect.ValidationSkipped,
		CreatedAt:  time.Now(),
	}

	if !opts.SkipValidation {
		verdict, err := p.Detector.Detect(ctx, rawURL)
		if err != nil {
			rec.Validation = prospect.ValidationRejected
			rec.Error = err.Error()
			rec.Verdict = &prospect.Verdict{
				URL:        rawURL,
				Confidence: prospect.ConfidenceUnknown,
				Error:      err.Error(),
			}
			return rec
		}
		rec.Verdict = &verdict
		if verdict.IsPlatform {
			rec.Validation = prospect.ValidationConfirmed
		} else {
			rec.Validation = prospect.ValidationRejected
		}
	}

	if opts.SkipExtraction {
		return rec
	}
	// Extraction runs for skipped-validation records too; only a confirmed
	// negative verdict combined with the platform-only filter makes contact
	// data useless, and that filtering happens after the loop.
	contact, err := p.Extractor.Extract(ctx, rec.URL)
	if err != nil {
		if rec.Error == "" {
			rec.Error = err.Error()
		}
		return rec
	}
	rec.Contact = contact
	return rec
}

// finish persists and exports a completed result.
func (p *Pipeline) finish(ctx context.Context, result *prospect.Result, opts Options) error {
	result.FinishedAt = time.Now()

	if p.Store != nil {
		for _, rec := range result.Prospects {
			if err := p.Store.Save(ctx, rec); err != nil {
				p.logger().Warn("failed to persist record", "url", rec.URL, "error", err)
			}
		}
	}

	if opts.SkipExport || p.Exporter == nil {
		return nil
	}

	// Exporters that can write all formats in one call get to do so.
	if all, ok := p.Exporter.(interface {
		ExportAll(records []*prospect.Record) ([]string, error)
	}); ok {
		paths, err := all.ExportAll(result.Prospects)
		for _, path := range paths {
			p.logger().Info("report written", "path", path)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return nil
	}

	for _, export := range []func([]*prospect.Record) (string, error){
		p.Exporter.ExportTabular,
		p.Exporter.ExportStructured,
		p.Exporter.ExportFlatList,
		p.Exporter.ExportNarrative,
	} {
		path, err := export(result.Prospects)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		p.logger().Info("report written", "path", path)
	}
	return nil
}
