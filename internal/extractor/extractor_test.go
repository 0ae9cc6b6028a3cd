package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/itsikram/client-hunter/internal/fingerprint"
	"github.com/itsikram/client-hunter/internal/scraper"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	fetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:      5 * time.Second,
		MaxRedirects: 3,
		Fingerprint:  fingerprint.ProfileGo,
		Component:    "extract",
	})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	e, err := New(Config{Fetcher: fetcher})
	if err != nil {
		t.Fatalf("failed to create extractor: %v", err)
	}
	return e
}

// siteServer serves pages from a path->html map; everything else is 404.
func siteServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, html)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestExtract_MailtoAndTextEmails(t *testing.T) {
	ts := siteServer(t, map[string]string{
		"/": `<html><body>
			<a href="mailto:sales@widgets.io?subject=Hi">Email us</a>
			<p>Or reach bob@widgets.io directly.</p>
		</body></html>`,
	})

	e := newTestExtractor(t)
	rec, err := e.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]bool{"sales@widgets.io": true, "bob@widgets.io": true}
	if len(rec.Emails) != 2 {
		t.Fatalf("emails = %v, want 2 entries", rec.Emails)
	}
	for _, e := range rec.Emails {
		if !want[e] {
			t.Errorf("unexpected email %q", e)
		}
	}
}

func TestExtract_DenylistedMailtoExcluded(t *testing.T) {
	ts := siteServer(t, map[string]string{
		"/": `<html><body><a href="mailto:user@example.com">mail</a></body></html>`,
	})

	e := newTestExtractor(t)
	rec, err := e.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Emails) != 0 {
		t.Errorf("example-domain address must be filtered, got %v", rec.Emails)
	}
}

func TestExtract_DataAttributeAndDeobfuscation(t *testing.T) {
	ts := siteServer(t, map[string]string{
		"/": `<html><body>
			<span data-email="hidden@widgets.io">contact</span>
			<p>write to jane [at] widgets [dot] io</p>
		</body></html>`,
	})

	e := newTestExtractor(t)
	rec, err := e.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := strings.Join(rec.Emails, ",")
	if !strings.Contains(got, "hidden@widgets.io") {
		t.Errorf("data-email attribute not extracted: %v", rec.Emails)
	}
	if !strings.Contains(got, "jane@widgets.io") {
		t.Errorf("obfuscated address not recovered: %v", rec.Emails)
	}
}

func TestExtract_PhoneLengthRule(t *testing.T) {
	ts := siteServer(t, map[string]string{
		"/": `<html><body>
			<p>Call +1 (555) 123-4567 today.</p>
			<p>Short code: 12-34-56</p>
		</body></html>`,
	})

	e := newTestExtractor(t)
	rec, err := e.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.Phones) != 1 {
		t.Fatalf("phones = %v, want exactly the 10-digit number", rec.Phones)
	}
	if !strings.Contains(rec.Phones[0], "555") {
		t.Errorf("unexpected phone %q", rec.Phones[0])
	}
}

func TestExtract_SocialLastLinkWins(t *testing.T) {
	ts := siteServer(t, map[string]string{
		"/": `<html><body>
			<a href="https://facebook.com/old-page">fb old</a>
			<a href="https://instagram.com/widgets">ig</a>
			<a href="https://facebook.com/new-page">fb new</a>
		</body></html>`,
	})

	e := newTestExtractor(t)
	rec, err := e.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rec.SocialMedia["facebook"]; got != "https://facebook.com/new-page" {
		t.Errorf("facebook = %q, want the later anchor", got)
	}
	if got := rec.SocialMedia["instagram"]; got != "https://instagram.com/widgets" {
		t.Errorf("instagram = %q", got)
	}
}

func TestExtract_ContactFormRequiresBothFields(t *testing.T) {
	ts := siteServer(t, map[string]string{
		"/contact": `<html><body>
			<form action="/send" method="post">
				<input type="email" name="from">
				<textarea name="body"></textarea>
			</form>
			<form action="/newsletter">
				<input type="email" name="subscriber">
			</form>
		</body></html>`,
		"/": `<html><body></body></html>`,
	})

	e := newTestExtractor(t)
	rec, err := e.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.ContactForms) != 1 {
		t.Fatalf("contact forms = %+v, want exactly 1", rec.ContactForms)
	}
	form := rec.ContactForms[0]
	if form.Action != "/send" || form.Method != "POST" {
		t.Errorf("form = %+v", form)
	}
}

func TestExtract_FormMethodDefaultsToPost(t *testing.T) {
	ts := siteServer(t, map[string]string{
		"/": `<html><body>
			<form action="/msg">
				<input name="email">
				<input name="message">
			</form>
		</body></html>`,
	})

	e := newTestExtractor(t)
	rec, err := e.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.ContactForms) != 1 || rec.ContactForms[0].Method != "POST" {
		t.Errorf("contact forms = %+v, want one POST form", rec.ContactForms)
	}
}

func TestExtract_SubPageFailureDoesNotAbort(t *testing.T) {
	// Only the contact page exists; every other candidate 404s.
	ts := siteServer(t, map[string]string{
		"/contact": `<html><body><a href="mailto:team@widgets.io">mail</a></body></html>`,
	})

	e := newTestExtractor(t)
	rec, err := e.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Emails) != 1 || rec.Emails[0] != "team@widgets.io" {
		t.Errorf("emails = %v, want [team@widgets.io]", rec.Emails)
	}
}

func TestExtract_DegenerateBaseURL(t *testing.T) {
	e := newTestExtractor(t)
	for _, bad := range []string{"", "   ", "ftp://host/x"} {
		if _, err := e.Extract(context.Background(), bad); err == nil {
			t.Errorf("expected validation error for %q", bad)
		}
	}
}

func TestExtract_TimestampSet(t *testing.T) {
	ts := siteServer(t, map[string]string{"/": `<html><body></body></html>`})
	e := newTestExtractor(t)

	before := time.Now().UTC().Add(-time.Second)
	rec, err := e.Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ExtractedAt.Before(before) {
		t.Errorf("extraction timestamp %v predates the run", rec.ExtractedAt)
	}
}
