// Package extractor harvests publicly visible contact data (emails, phones,
// social links, contact forms) from a fixed set of likely sub-pages per site.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/itsikram/client-hunter/internal/metrics"
	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/internal/scraper"
	"github.com/itsikram/client-hunter/pkg/ratelimit"
)

// ValidationError reports a base URL too degenerate to extract from.
type ValidationError struct {
	Input string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid base url %q: %s", e.Input, e.Msg)
}

// subPagePaths is the fixed candidate list probed on every site, root first.
var subPagePaths = []string{
	"",
	"/contact",
	"/contact-us",
	"/about",
	"/about-us",
	"/team",
	"/staff",
	"/privacy",
	"/privacy-policy",
	"/terms",
	"/legal",
	"/imprint",
	"/impressum",
}

// sitemapPathHints mark sitemap URLs worth adding to the candidate list.
var sitemapPathHints = []string{"contact", "about", "team", "imprint", "impressum", "legal"}

// Config configures an Extractor.
type Config struct {
	Fetcher *scraper.Fetcher
	// Delay is the pause between sub-page fetches.
	Delay  time.Duration
	Logger *slog.Logger
	// Robots, when set, is consulted before each sub-page fetch. Disallowed
	// pages are skipped.
	Robots    *scraper.RobotsAuditor
	UserAgent string
	// Sitemaps, when set together with SitemapPages > 0, extends the
	// candidate list with contact-looking URLs from the site's sitemap.
	Sitemaps     *scraper.SitemapFetcher
	SitemapPages int
}

// Extractor fetches candidate sub-pages sequentially and accumulates contact
// data across them.
type Extractor struct {
	cfg Config
}

// New creates an Extractor.
func New(cfg Config) (*Extractor, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("extractor requires a fetcher")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Extractor{cfg: cfg}, nil
}

// Extract harvests contact data for the site at baseURL. Individual sub-page
// failures are logged and skipped; only a degenerate base URL raises.
func (e *Extractor) Extract(ctx context.Context, baseURL string) (*prospect.ContactRecord, error) {
	base, err := normalizeBase(baseURL)
	if err != nil {
		return nil, err
	}

	acc := newAccumulator()
	pages := e.candidatePages(ctx, base)

	for i, pageURL := range pages {
		if i > 0 {
			if err := ratelimit.Pause(ctx, e.cfg.Delay); err != nil {
				e.cfg.Logger.Warn("extraction interrupted", "url", base, "visited", i)
				break
			}
		}

		if e.cfg.Robots != nil {
			allowed, robotsErr := e.cfg.Robots.IsAllowed(ctx, pageURL, e.cfg.UserAgent)
			if robotsErr == nil && !allowed {
				e.cfg.Logger.Debug("page disallowed by robots.txt", "url", pageURL)
				continue
			}
		}

		result, fetchErr := e.cfg.Fetcher.Fetch(ctx, pageURL)
		if fetchErr != nil || !result.OK() {
			msg := ""
			if fetchErr != nil {
				msg = fetchErr.Error()
			} else if result.Error != "" {
				msg = result.Error
			} else {
				msg = fmt.Sprintf("status %d", result.StatusCode)
			}
			e.cfg.Logger.Debug("sub-page fetch failed", "url", pageURL, "err", msg)
			continue
		}

		doc, docErr := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
		if docErr != nil {
			e.cfg.Logger.Debug("sub-page parse failed", "url", pageURL, "err", docErr)
			continue
		}

		harvestPage(acc, pageURL, doc)
	}

	record := acc.record(base)
	record.Emails = filterNoise(record.Emails)
	for range record.Emails {
		metrics.EmailsFoundTotal.Inc()
	}
	return record, nil
}

// candidatePages builds the ordered sub-page list for base, optionally
// extended with contact-looking sitemap URLs.
func (e *Extractor) candidatePages(ctx context.Context, base string) []string {
	pages := make([]string, 0, len(subPagePaths))
	seen := make(map[string]struct{}, len(subPagePaths))
	for _, p := range subPagePaths {
		u := base + p
		if _, dup := seen[strings.ToLower(u)]; dup {
			continue
		}
		seen[strings.ToLower(u)] = struct{}{}
		pages = append(pages, u)
	}

	if e.cfg.Sitemaps == nil || e.cfg.SitemapPages <= 0 {
		return pages
	}

	urls, err := e.cfg.Sitemaps.Fetch(ctx, base+"/sitemap.xml")
	if err != nil {
		e.cfg.Logger.Debug("sitemap unavailable", "base", base, "err", err)
		return pages
	}

	added := 0
	for _, raw := range urls {
		if added >= e.cfg.SitemapPages {
			break
		}
		u, parseErr := url.Parse(raw)
		if parseErr != nil {
			continue
		}
		path := strings.ToLower(u.Path)
		for _, hint := range sitemapPathHints {
			if strings.Contains(path, hint) {
				if _, dup := seen[strings.ToLower(raw)]; !dup {
					seen[strings.ToLower(raw)] = struct{}{}
					pages = append(pages, raw)
					added++
				}
				break
			}
		}
	}
	return pages
}

// normalizeBase prefixes https:// when no scheme is present and strips any
// trailing slash so path joins stay clean.
func normalizeBase(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ValidationError{Input: raw, Msg: "empty"}
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", &ValidationError{Input: raw, Msg: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &ValidationError{Input: raw, Msg: "unsupported scheme " + u.Scheme}
	}
	if u.Host == "" {
		return "", &ValidationError{Input: raw, Msg: "missing host"}
	}
	return strings.TrimSuffix(u.Scheme+"://"+u.Host+u.Path, "/"), nil
}
