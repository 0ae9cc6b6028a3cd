// Package detector decides whether a site runs WordPress by applying an
// ordered chain of heuristics with tiered confidence.
package detector

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

// FetchError is returned by Detect when the primary page fetch itself fails.
// Sub-checks such as the REST probe never surface it.
type FetchError struct {
	URL string
	Msg string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Msg)
}

// indicatorStrings are the raw-body substrings checked first, in priority
// order. Any hit is a high-confidence positive.
var indicatorStrings = []string{
	"/wp-content/",
	"/wp-includes/",
	"wp-json",
	"wp-emoji-release.min.js",
	"wp-block-library",
}

// check is one heuristic in the chain. It returns the fired indicator and
// confidence, or ok=false to fall through to the next check.
type check struct {
	name string
	fn   func(ctx context.Context, d *Detector, pageURL string, body []byte, doc *goquery.Document) (indicator string, conf prospect.Confidence, ok bool)
}

// Config configures a Detector.
type Config struct {
	// Fetcher performs the primary page fetch.
	Fetcher *scraper.Fetcher
	// ProbeTimeout bounds the REST API probe. It should be shorter than the
	// primary fetch timeout; defaults to 5s.
	ProbeTimeout time.Duration
	// Delay is the pause between URLs in DetectBatch.
	Delay time.Duration
	Logger *slog.Logger
}

// Detector applies the heuristic chain to URLs.
type Detector struct {
	fetcher      *scraper.Fetcher
	probeFetcher *scraper.Fetcher
	probeTimeout time.Duration
	delay        time.Duration
	logger       *slog.Logger
	checks       []check
}

// New creates a Detector. The REST probe uses its own fetcher with the
// shorter probe timeout.
func New(cfg Config) (*Detector, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("detector requires a fetcher")
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	probeFetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:      cfg.ProbeTimeout,
		MaxRedirects: 3,
		Component:    "detect-probe",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create probe fetcher: %w", err)
	}

	d := &Detector{
		fetcher:      cfg.Fetcher,
		probeFetcher: probeFetcher,
		probeTimeout: cfg.ProbeTimeout,
		delay:        cfg.Delay,
		logger:       cfg.Logger,
	}
	d.checks = []check{
		{name: "indicator-strings", fn: checkIndicatorStrings},
		{name: "meta-generator", fn: checkMetaGenerator},
		{name: "rest-api", fn: checkRESTAPI},
		{name: "asset-paths", fn: checkAssetPaths},
		{name: "body-class", fn: checkBodyClass},
	}
	return d, nil
}

// Detect fetches pageURL and runs the heuristic chain. The first matching
// check wins. It returns a FetchError only when the primary fetch fails;
// everything downstream degrades silently.
func (d *Detector) Detect(ctx context.Context, pageURL string) (prospect.Verdict, error) {
	pageURL = normalizeURL(pageURL)

	result, err := d.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return prospect.Verdict{}, &FetchError{URL: pageURL, Msg: err.Error()}
	}
	if result.Error != "" {
		return prospect.Verdict{}, &FetchError{URL: pageURL, Msg: result.Error}
	}
	if result.StatusCode < 200 || result.StatusCode >= 400 {
		return prospect.Verdict{}, &FetchError{URL: pageURL, Msg: fmt.Sprintf("status %d", result.StatusCode)}
	}

	// Parse once; checks that only need the raw body ignore the document.
	doc, docErr := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if docErr != nil {
		d.logger.Debug("html parse failed, string checks only", "url", pageURL, "err", docErr)
		doc = nil
	}

	verdict := prospect.Verdict{URL: pageURL}
	for _, c := range d.checks {
		if doc == nil && c.name != "indicator-strings" && c.name != "rest-api" {
			continue
		}
		if indicator, conf, ok := c.fn(ctx, d, pageURL, result.Body, doc); ok {
			verdict.IsPlatform = true
			verdict.Indicator = indicator
			verdict.Confidence = conf
			metrics.RecordDetection(indicator, string(conf))
			return verdict, nil
		}
	}

	// Every signal came back negative: high confidence of absence.
	verdict.IsPlatform = false
	verdict.Confidence = prospect.ConfidenceHigh
	metrics.RecordDetection("", string(prospect.ConfidenceHigh))
	return verdict, nil
}

// DetectBatch runs Detect over urls strictly sequentially with the configured
// delay between requests. Fetch failures become unknown-confidence verdicts
// carrying the error; the batch never aborts on a single bad URL.
func (d *Detector) DetectBatch(ctx context.Context, urls []string) []prospect.Verdict {
	verdicts := make([]prospect.Verdict, 0, len(urls))
	for i, u := range urls {
		verdict, err := d.Detect(ctx, u)
		if err != nil {
			verdict = prospect.Verdict{
				URL:        normalizeURL(u),
				Confidence: prospect.ConfidenceUnknown,
				Error:      err.Error(),
			}
			d.logger.Warn("detection failed", "url", u, "err", err)
		}
		verdicts = append(verdicts, verdict)

		if i < len(urls)-1 {
			if err := ratelimit.Pause(ctx, d.delay); err != nil {
				d.logger.Warn("batch detection interrupted", "remaining", len(urls)-i-1)
				return verdicts
			}
		}
	}
	return verdicts
}

func checkIndicatorStrings(_ context.Context, _ *Detector, _ string, body []byte, _ *goquery.Document) (string, prospect.Confidence, bool) {
	lower := bytes.ToLower(body)
	for _, s := range indicatorStrings {
		if bytes.Contains(lower, []byte(s)) {
			return s, prospect.ConfidenceHigh, true
		}
	}
	return "", "", false
}

func checkMetaGenerator(_ context.Context, _ *Detector, _ string, _ []byte, doc *goquery.Document) (string, prospect.Confidence, bool) {
	found := false
	doc.Find(`meta[name="generator"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if content, ok := s.Attr("content"); ok &&
			strings.Contains(strings.ToLower(content), "wordpress") {
			found = true
			return false
		}
		return true
	})
	if found {
		return "meta generator tag", prospect.ConfidenceHigh, true
	}
	return "", "", false
}

// checkRESTAPI probes <base>/wp-json/ with the short probe timeout. Any
// failure is swallowed; the probe must never abort detection.
func checkRESTAPI(ctx context.Context, d *Detector, pageURL string, _ []byte, _ *goquery.Document) (string, prospect.Confidence, bool) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", "", false
	}
	probeURL := base.Scheme + "://" + base.Host + "/wp-json/"

	probeCtx, cancel := context.WithTimeout(ctx, d.probeTimeout)
	defer cancel()

	result, err := d.probeFetcher.Fetch(probeCtx, probeURL)
	if err != nil || result.Error != "" {
		return "", "", false
	}
	if result.StatusCode == 200 {
		return "REST API", prospect.ConfidenceHigh, true
	}
	return "", "", false
}

func checkAssetPaths(_ context.Context, _ *Detector, _ string, _ []byte, doc *goquery.Document) (string, prospect.Confidence, bool) {
	found := false
	doc.Find("link[href], script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		ref, ok := s.Attr("href")
		if !ok {
			ref, _ = s.Attr("src")
		}
		ref = strings.ToLower(ref)
		if strings.Contains(ref, "/wp-content/") || strings.Contains(ref, "/wp-includes/") {
			found = true
			return false
		}
		return true
	})
	if found {
		return "asset path", prospect.ConfidenceMedium, true
	}
	return "", "", false
}

func checkBodyClass(_ context.Context, _ *Detector, _ string, _ []byte, doc *goquery.Document) (string, prospect.Confidence, bool) {
	classes, ok := doc.Find("body").Attr("class")
	if !ok {
		return "", "", false
	}
	for _, token := range strings.Fields(classes) {
		token = strings.ToLower(token)
		if token == "wordpress" || strings.HasPrefix(token, "wp-") {
			return "body class", prospect.ConfidenceMedium, true
		}
	}
	return "", "", false
}

// normalizeURL prefixes https:// when no scheme is present.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "://") {
		return "https://" + raw
	}
	return raw
}
