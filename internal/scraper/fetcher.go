package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/itsikram/client-hunter/internal/fingerprint"
	"github.com/itsikram/client-hunter/internal/metrics"
	"github.com/itsikram/client-hunter/pkg/httpclient"
	"github.com/itsikram/client-hunter/pkg/proxy"
	"github.com/itsikram/client-hunter/pkg/ratelimit"
	"github.com/itsikram/client-hunter/pkg/useragent"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// FetchResult captures the outcome of a single page fetch. Network failures
// are reported through the Error field rather than a Go error, so batch loops
// always receive a record per attempted URL.
type FetchResult struct {
	ID          string
	URL         string
	StatusCode  int
	Headers     http.Header
	Body        []byte
	Duration    time.Duration
	Blocked     bool
	BlockSource string
	FetchedAt   time.Time
	Error       string
}

// OK reports whether the fetch produced a usable 2xx response.
func (r *FetchResult) OK() bool {
	return r.Error == "" && r.StatusCode >= 200 && r.StatusCode < 300
}

// FetchStatus satisfies metrics.FetchOutcome.
func (r *FetchResult) FetchStatus() (int, bool, bool, time.Duration) {
	return r.StatusCode, r.Blocked, r.Error != "", r.Duration
}

// FetchConfig configures a Fetcher.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UseCookieJar bool
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
	Limiter      *ratelimit.Limiter
	// Component tags metrics emitted by this fetcher (search, detect, extract).
	Component string
}

// Fetcher performs single URL fetches with browser-like headers, UA rotation
// and optional proxy rotation. A single underlying client is held for the
// fetcher's lifetime so cookies and connections persist across requests.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a Fetcher with the given configuration.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.Component == "" {
		cfg.Component = "fetch"
	}

	// The proxy function reads the active proxy from the request context so a
	// single shared transport supports per-request proxy rotation.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		if req.URL.Hostname() == "127.0.0.1" || req.URL.Hostname() == "localhost" {
			return nil, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to set up transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Fetcher{config: cfg, client: client}, nil
}

// Timeout returns the fetcher's per-request timeout.
func (f *Fetcher) Timeout() time.Duration {
	return f.config.Timeout
}

// Fetch executes a GET against targetURL. The returned error is always nil;
// failures are recorded in the result so callers decide their own policy.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*FetchResult, error) {
	return f.fetch(ctx, targetURL, nil)
}

// FetchWithHeaders is Fetch with additional request headers, used by the
// search scrape to present a full browser header set.
func (f *Fetcher) FetchWithHeaders(ctx context.Context, targetURL string, headers map[string]string) (*FetchResult, error) {
	return f.fetch(ctx, targetURL, headers)
}

func (f *Fetcher) fetch(ctx context.Context, targetURL string, extra map[string]string) (*FetchResult, error) {
	start := time.Now()
	result := &FetchResult{
		ID:        uuid.New().String(),
		URL:       targetURL,
		FetchedAt: start.UTC(),
	}

	if f.config.Limiter != nil {
		if err := f.config.Limiter.Wait(ctx); err != nil {
			result.Error = fmt.Sprintf("rate limiter interrupted: %v", err)
			return result, nil
		}
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		activeProxy = f.config.ProxyPool.Next()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		result.Duration = time.Since(start)
		return result, nil
	}

	if activeProxy != nil {
		req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
	}

	req.Header.Set("User-Agent", f.config.UAPool.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
		}
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Duration = time.Since(start)
		metrics.RecordFetch(f.config.Component, result)
		return result, nil
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read body: %v", err)
	}

	result.StatusCode = resp.StatusCode
	result.Headers = resp.Header
	result.Body = body
	result.Duration = time.Since(start)

	// Flag challenge pages so callers can stop hammering a blocked host.
	Analyze(result, DefaultBlockDetectors())
	metrics.RecordFetch(f.config.Component, result)

	return result, nil
}
