package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsAuditor fetches and caches robots.txt per host and answers whether a
// given URL may be fetched.
type RobotsAuditor struct {
	fetcher *Fetcher
	logger  *slog.Logger
	mu      sync.RWMutex
	cache   map[string]*robotstxt.RobotsData
}

// NewRobotsAuditor creates a new auditor using the given fetcher.
func NewRobotsAuditor(fetcher *Fetcher, logger *slog.Logger) *RobotsAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsAuditor{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
}

// IsAllowed reports whether targetURL is fetchable for the given User-Agent.
// Unfetchable or unparseable robots.txt fails open.
func (r *RobotsAuditor) IsAllowed(ctx context.Context, targetURL, userAgent string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("invalid url: %w", err)
	}
	if userAgent == "" {
		userAgent = "*"
	}

	host := u.Scheme + "://" + u.Host
	data, err := r.getOrFetch(ctx, host)
	if err != nil {
		r.logger.Debug("robots.txt unavailable, allowing", "host", host, "err", err)
		return true, nil
	}
	if data == nil {
		return true, nil
	}

	return data.FindGroup(userAgent).Test(u.Path), nil
}

func (r *RobotsAuditor) getOrFetch(ctx context.Context, host string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, cached := r.cache[host]
	r.mu.RUnlock()
	if cached {
		return data, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if data, cached = r.cache[host]; cached {
		return data, nil
	}

	result, err := r.fetcher.Fetch(ctx, host+"/robots.txt")
	if err != nil || result.Error != "" {
		r.cache[host] = nil
		if err == nil {
			err = fmt.Errorf("fetch error: %s", result.Error)
		}
		return nil, err
	}
	if result.StatusCode >= 400 {
		// No robots.txt: everything is allowed.
		r.cache[host] = nil
		return nil, nil
	}

	parsed, err := robotstxt.FromBytes(result.Body)
	if err != nil {
		r.cache[host] = nil
		return nil, fmt.Errorf("robots.txt parse error: %w", err)
	}

	r.cache[host] = parsed
	return parsed, nil
}

// Sitemaps returns sitemap URLs declared in the host's robots.txt.
func (r *RobotsAuditor) Sitemaps(ctx context.Context, host string) []string {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	data, err := r.getOrFetch(ctx, host)
	if err != nil || data == nil {
		return nil
	}
	return data.Sitemaps
}
