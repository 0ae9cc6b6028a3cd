package serp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/itsikram/client-hunter/internal/prospect"
)

// fakeProvider records queries and serves canned results per query.
type fakeProvider struct {
	queries []string
	results map[string][]prospect.SearchResult
	failOn  string
	perHit  int
}

func (f *fakeProvider) Search(ctx context.Context, query string, pages, perPage int, delay time.Duration) ([]prospect.SearchResult, error) {
	f.queries = append(f.queries, query)
	if query == f.failOn {
		return nil, errors.New("blocked")
	}
	if r, ok := f.results[query]; ok {
		return r, nil
	}
	out := make([]prospect.SearchResult, 0, f.perHit)
	for i := 0; i < f.perHit; i++ {
		out = append(out, prospect.SearchResult{
			URL:         fmt.Sprintf("https://site-%d-%d.com", len(f.queries), i),
			SourceQuery: query,
		})
	}
	return out, nil
}

func TestFindPlatformSitesRunsBattery(t *testing.T) {
	p := &fakeProvider{perHit: 1}
	d := NewDiscoverer(p, nil)

	results, err := d.FindPlatformSites(context.Background(), DiscoverOptions{
		CustomQueries: []string{`site:example.com "contact"`},
	})
	if err != nil {
		t.Fatalf("FindPlatformSites: %v", err)
	}

	wantQueries := len(platformQueries) + 1
	if len(p.queries) != wantQueries {
		t.Errorf("expected %d queries, got %d", wantQueries, len(p.queries))
	}
	if p.queries[len(p.queries)-1] != `site:example.com "contact"` {
		t.Errorf("custom query should run last, got %q", p.queries[len(p.queries)-1])
	}
	if len(results) != wantQueries {
		t.Errorf("expected %d results, got %d", wantQueries, len(results))
	}
}

func TestFindPlatformSitesIndustryExtension(t *testing.T) {
	p := &fakeProvider{perHit: 1}
	d := NewDiscoverer(p, nil)

	_, err := d.FindPlatformSites(context.Background(), DiscoverOptions{Industry: "dental"})
	if err != nil {
		t.Fatalf("FindPlatformSites: %v", err)
	}
	want := len(platformQueries) + len(industryQueries["dental"])
	if len(p.queries) != want {
		t.Errorf("expected %d queries with industry set, got %d", want, len(p.queries))
	}
}

func TestFindPlatformSitesSurvivesQueryFailure(t *testing.T) {
	p := &fakeProvider{perHit: 1, failOn: platformQueries[0]}
	d := NewDiscoverer(p, nil)

	results, err := d.FindPlatformSites(context.Background(), DiscoverOptions{})
	if err != nil {
		t.Fatalf("FindPlatformSites: %v", err)
	}
	if len(results) != len(platformQueries)-1 {
		t.Errorf("expected remaining queries to contribute, got %d results", len(results))
	}
}

func TestFindPlatformSitesMaxResultsCap(t *testing.T) {
	p := &fakeProvider{perHit: 3}
	d := NewDiscoverer(p, nil)

	results, err := d.FindPlatformSites(context.Background(), DiscoverOptions{MaxResults: 4})
	if err != nil {
		t.Fatalf("FindPlatformSites: %v", err)
	}
	if len(results) != 4 {
		t.Errorf("expected cap of 4, got %d", len(results))
	}
	if len(p.queries) >= len(platformQueries) {
		t.Errorf("expected early stop once cap reached, ran %d queries", len(p.queries))
	}
}

func TestFindPlatformSitesDedupesAcrossQueries(t *testing.T) {
	dup := []prospect.SearchResult{{URL: "https://same.com", Title: "dup"}}
	p := &fakeProvider{results: map[string][]prospect.SearchResult{}}
	for _, q := range platformQueries {
		p.results[q] = dup
	}
	d := NewDiscoverer(p, nil)

	results, err := d.FindPlatformSites(context.Background(), DiscoverOptions{})
	if err != nil {
		t.Fatalf("FindPlatformSites: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected cross-query dedupe to 1, got %d", len(results))
	}
}

func TestSearchByKeywords(t *testing.T) {
	p := &fakeProvider{perHit: 1}
	d := NewDiscoverer(p, nil)

	_, err := d.SearchByKeywords(context.Background(), []string{"plumber chicago", "", "florist"}, DiscoverOptions{})
	if err != nil {
		t.Fatalf("SearchByKeywords: %v", err)
	}
	if len(p.queries) != 2 {
		t.Fatalf("expected 2 queries (blank skipped), got %d", len(p.queries))
	}
	for _, q := range p.queries {
		if !strings.Contains(q, `"powered by wordpress"`) {
			t.Errorf("keyword query %q missing platform phrase", q)
		}
	}
}
