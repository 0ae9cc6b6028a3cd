package serp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/itsikram/client-hunter/internal/scraper"
)

const serpPage = `<html><body>
<div class="g">
  <a href="https://acme-plumbing.com/?utm_source=serp"><h3>Acme Plumbing</h3></a>
  <div class="VwiC3b">Family owned plumbing since 1985.</div>
</div>
<div class="g">
  <a href="/url?q=https://smile-dental.example.net/contact/&sa=U"><h3>Smile Dental</h3></a>
  <div class="VwiC3b">Book an appointment today.</div>
</div>
<div class="g">
  <a href="https://www.google.com/maps"><h3>Maps</h3></a>
</div>
</body></html>`

func newSearchFetcher(t *testing.T) *scraper.Fetcher {
	t.Helper()
	f, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:   5 * time.Second,
		Component: "search",
	})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return f
}

func TestGoogleScrapeSearch(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, serpPage)
	}))
	defer srv.Close()

	g := NewGoogleScrape(newSearchFetcher(t), nil)
	g.baseURL = srv.URL

	results, err := g.Search(context.Background(), "plumber", 1, 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected 1 page fetch, got %d", hits)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}

	if results[0].URL != "https://acme-plumbing.com/" {
		t.Errorf("first URL = %q, want cleaned root", results[0].URL)
	}
	if results[0].Title != "Acme Plumbing" || results[0].Description == "" {
		t.Errorf("first result missing title or description: %+v", results[0])
	}
	if results[0].SourceQuery != "plumber" {
		t.Errorf("SourceQuery = %q, want %q", results[0].SourceQuery, "plumber")
	}

	// Redirect wrapper unwrapped, tracking-free, trailing slash stripped.
	if results[1].URL != "https://smile-dental.example.net/contact" {
		t.Errorf("second URL = %q, want unwrapped clean URL", results[1].URL)
	}
}

func TestGoogleScrapeStopsOnBadStatus(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			fmt.Fprint(w, serpPage)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogleScrape(newSearchFetcher(t), nil)
	g.baseURL = srv.URL

	results, err := g.Search(context.Background(), "plumber", 3, 10, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits != 2 {
		t.Errorf("expected pagination to stop after failure, got %d fetches", hits)
	}
	if len(results) != 2 {
		t.Errorf("expected partial results from first page, got %d", len(results))
	}
}

func TestParseResultsFallback(t *testing.T) {
	// No known result container, only the bare anchor+h3 shape.
	body := []byte(`<html><body>
	  <a href="https://fallback-site.com/about/"><h3>Fallback Site</h3></a>
	</body></html>`)
	results := parseResults(body, "q")
	if len(results) != 1 {
		t.Fatalf("expected 1 result from fallback parse, got %d", len(results))
	}
	if results[0].URL != "https://fallback-site.com/about" {
		t.Errorf("URL = %q", results[0].URL)
	}
}

func TestUnwrapRedirect(t *testing.T) {
	if got := unwrapRedirect("/url?q=https://target.com/page&sa=U"); got != "https://target.com/page" {
		t.Errorf("unwrapRedirect = %q", got)
	}
	if got := unwrapRedirect("https://direct.com"); got != "https://direct.com" {
		t.Errorf("direct link should pass through, got %q", got)
	}
}
