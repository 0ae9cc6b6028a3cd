package prospect

import "time"

// Confidence qualifies how strongly a detection verdict is supported.
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

// ValidationStatus records whether a discovered site went through platform
// validation. A skipped validation is distinct from a negative verdict.
type ValidationStatus string

const (
	ValidationConfirmed ValidationStatus = "confirmed"
	ValidationRejected  ValidationStatus = "rejected"
	ValidationSkipped   ValidationStatus = "skipped"
)

// SearchResult is a single deduplicated hit from the search discoverer.
// The URL is normalized: tracking parameters stripped, fragment and query
// dropped, single trailing slash removed.
type SearchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SourceQuery string `json:"source_query"`
}

// Verdict is the outcome of one platform detection pass over a URL.
type Verdict struct {
	URL        string     `json:"url"`
	IsPlatform bool       `json:"is_platform"`
	Indicator  string     `json:"indicator,omitempty"`
	Confidence Confidence `json:"confidence"`
	Error      string     `json:"error,omitempty"`
}

// ContactForm describes a qualifying contact form found on a sub-page.
// A form qualifies only if it exposes both an email-like and a message-like field.
type ContactForm struct {
	PageURL string `json:"page_url"`
	Action  string `json:"action"`
	Method  string `json:"method"`
}

// ContactRecord aggregates everything harvested from one site's sub-pages.
// Emails and phones keep insertion order; SocialMedia keeps at most one link
// per platform with later finds overwriting earlier ones.
type ContactRecord struct {
	URL          string            `json:"url"`
	Emails       []string          `json:"emails"`
	Phones       []string          `json:"phones"`
	SocialMedia  map[string]string `json:"social_media"`
	ContactForms []ContactForm     `json:"contact_forms"`
	ExtractedAt  time.Time         `json:"extracted_at"`
}

// HasContactForm reports whether at least one qualifying form was recorded.
func (c *ContactRecord) HasContactForm() bool {
	return len(c.ContactForms) > 0
}

// Record is a full prospect: a site, its detection verdict, and its contacts.
type Record struct {
	ID         string           `json:"id"`
	URL        string           `json:"url"`
	Validation ValidationStatus `json:"validation"`
	Verdict    *Verdict         `json:"verdict,omitempty"`
	Contact    *ContactRecord   `json:"contact,omitempty"`
	Error      string           `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// PlatformDetected reports a confirmed platform verdict. A skipped validation
// is never treated as detected.
func (r *Record) PlatformDetected() bool {
	return r.Validation == ValidationConfirmed && r.Verdict != nil && r.Verdict.IsPlatform
}

// DetectionMethod returns the indicator that fired, or empty.
func (r *Record) DetectionMethod() string {
	if r.Verdict == nil {
		return ""
	}
	return r.Verdict.Indicator
}

// Result is the accumulated output of one pipeline run. It is built stage by
// stage by the orchestrating pipeline and is read-only once the run finishes.
type Result struct {
	SearchResults []SearchResult `json:"search_results"`
	Prospects     []*Record      `json:"prospects"`
	Summary       Summary        `json:"summary"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
}
