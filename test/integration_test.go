//go:build integration

package test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/itsikram/client-hunter/internal/config"
	"github.com/itsikram/client-hunter/internal/detector"
	"github.com/itsikram/client-hunter/internal/export"
	"github.com/itsikram/client-hunter/internal/extractor"
	"github.com/itsikram/client-hunter/internal/pipeline"
	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/internal/scraper"
	"github.com/itsikram/client-hunter/internal/storage"
)

// mockBackend is an in-memory storage.Backend for verifying persistence.
type mockBackend struct {
	mu      sync.Mutex
	records []*prospect.Record
}

func (m *mockBackend) Save(ctx context.Context, rec *prospect.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}
func (m *mockBackend) SaveBatch(ctx context.Context, recs []prospect.Record) error {
	for i := range recs {
		_ = m.Save(ctx, &recs[i])
	}
	return nil
}
func (m *mockBackend) Query(ctx context.Context, filter storage.Filter) ([]*prospect.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records, nil
}
func (m *mockBackend) Close() error { return nil }

func newWordPressServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Real Company</title></head><body>
			<script src="/wp-content/themes/biz/app.js"></script>
			<a href="mailto:info@realcompany.com">Email us</a>
		</body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newPlainServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Plain Site</title></head><body>
			<p>Static brochure page with no platform markers and no contacts.</p>
		</body></html>`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestPipeline(t *testing.T, store storage.Backend, outputDir string) *pipeline.Pipeline {
	t.Helper()
	logger := slog.Default()

	fetcher, err := scraper.NewFetcher(scraper.FetchConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	det, err := detector.New(detector.Config{Fetcher: fetcher, ProbeTimeout: 2 * time.Second, Logger: logger})
	if err != nil {
		t.Fatalf("detector.New: %v", err)
	}
	ext, err := extractor.New(extractor.Config{Fetcher: fetcher, Logger: logger})
	if err != nil {
		t.Fatalf("extractor.New: %v", err)
	}

	return &pipeline.Pipeline{
		Detector:  det,
		Extractor: ext,
		Exporter:  export.New(outputDir, "e2e", logger),
		Store:     store,
		Logger:    logger,
	}
}

// TestIntegration_DomainFileToReports drives the whole flow: a domain file
// with two sites, one WordPress-style with a real contact email and one
// plain, through validation, extraction and export.
func TestIntegration_DomainFileToReports(t *testing.T) {
	wp := newWordPressServer(t)
	plain := newPlainServer(t)

	domainFile := filepath.Join(t.TempDir(), "domains.txt")
	content := fmt.Sprintf("# test targets\n\n%s\n%s\n", wp.URL, plain.URL)
	if err := os.WriteFile(domainFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	urls, err := config.ReadDomainFile(domainFile)
	if err != nil {
		t.Fatalf("ReadDomainFile: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 domains from file, got %d", len(urls))
	}

	store := &mockBackend{}
	outputDir := t.TempDir()
	p := newTestPipeline(t, store, outputDir)

	result, err := p.ProcessURLs(context.Background(), urls, pipeline.Options{})
	if err != nil {
		t.Fatalf("ProcessURLs: %v", err)
	}

	if len(result.Prospects) != 2 {
		t.Fatalf("expected exactly 2 records, got %d", len(result.Prospects))
	}

	first, second := result.Prospects[0], result.Prospects[1]
	if first.Verdict == nil || !first.Verdict.IsPlatform {
		t.Errorf("first record should be platform-positive: %+v", first.Verdict)
	}
	if first.Verdict.Confidence != prospect.ConfidenceHigh {
		t.Errorf("indicator-string hit should be high confidence, got %s", first.Verdict.Confidence)
	}
	if first.Contact == nil || len(first.Contact.Emails) != 1 || first.Contact.Emails[0] != "info@realcompany.com" {
		t.Errorf("first record emails = %+v, want [info@realcompany.com]", first.Contact)
	}

	if second.Verdict == nil || second.Verdict.IsPlatform {
		t.Errorf("second record should be platform-negative: %+v", second.Verdict)
	}
	if second.Contact != nil && len(second.Contact.Emails) != 0 {
		t.Errorf("second record should have no emails: %+v", second.Contact.Emails)
	}

	// Every record persisted.
	saved, _ := store.Query(context.Background(), storage.Filter{})
	if len(saved) != 2 {
		t.Errorf("expected 2 persisted records, got %d", len(saved))
	}

	// All four report files on disk.
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected 4 report files, got %v", names)
	}
}

// TestIntegration_UnreachableURLInBatch checks that a dead URL among live
// ones still yields a full-size record set.
func TestIntegration_UnreachableURLInBatch(t *testing.T) {
	wp := newWordPressServer(t)
	plain := newPlainServer(t)

	p := newTestPipeline(t, nil, t.TempDir())
	urls := []string{wp.URL, "http://127.0.0.1:1/", plain.URL}

	result, err := p.ProcessURLs(context.Background(), urls, pipeline.Options{})
	if err != nil {
		t.Fatalf("ProcessURLs: %v", err)
	}
	if len(result.Prospects) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Prospects))
	}

	var failed, succeeded int
	for _, rec := range result.Prospects {
		if rec.Error != "" {
			failed++
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Errorf("expected 2 successful + 1 error-tagged, got %d/%d", succeeded, failed)
	}
}
