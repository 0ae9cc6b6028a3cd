package export

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/itsikram/client-hunter/internal/prospect"
)

type freqEntry struct {
	Name  string
	Count int
}

type narrativeData struct {
	GeneratedAt     string
	TotalSites      int
	Validated       int
	Confirmed       int
	DetectionRate   float64
	SitesWithEmails int
	EmailRate       float64
	TotalEmails     int
	ContactForms    int
	Indicators      []freqEntry
	TLDs            []freqEntry
	Social          []freqEntry
}

const narrativeTmpl = `Prospecting Report
==================
Generated:          {{.GeneratedAt}}

Sites processed:    {{.TotalSites}}
Sites validated:    {{.Validated}}
Platform confirmed: {{.Confirmed}} ({{printf "%.1f" .DetectionRate}}% of validated)
Sites with emails:  {{.SitesWithEmails}} ({{printf "%.1f" .EmailRate}}% of processed)
Total emails:       {{.TotalEmails}}
Contact forms:      {{.ContactForms}}

Detection indicators:
{{- range .Indicators}}
  {{.Name}}: {{.Count}}
{{- else}}
  None
{{- end}}

Top domains (TLD):
{{- range .TLDs}}
  .{{.Name}}: {{.Count}}
{{- else}}
  None
{{- end}}

Social presence:
{{- range .Social}}
  {{.Name}}: {{.Count}}
{{- else}}
  None
{{- end}}
`

// ExportNarrative writes a plain-text summary report: totals, percentages,
// indicator frequency, the ten most common top-level domains, and per-platform
// social-presence counts.
func (e *FileExporter) ExportNarrative(records []*prospect.Record) (string, error) {
	path, err := e.path("report", "txt")
	if err != nil {
		return "", err
	}

	data := buildNarrative(records, e.now())

	t, err := template.New("narrative").Parse(narrativeTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := t.Execute(f, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	e.Logger.Info("narrative report written", "path", path)
	return path, nil
}

func buildNarrative(records []*prospect.Record, now time.Time) narrativeData {
	data := narrativeData{
		GeneratedAt: now.Format("2006-01-02 15:04:05"),
		TotalSites:  len(records),
	}

	indicators := make(map[string]int)
	tlds := make(map[string]int)
	social := make(map[string]int)

	for _, r := range records {
		if r.Validation != prospect.ValidationSkipped {
			data.Validated++
		}
		if r.PlatformDetected() {
			data.Confirmed++
			if m := r.DetectionMethod(); m != "" {
				indicators[m]++
			}
		}
		if tld := topLevelDomain(r.URL); tld != "" {
			tlds[tld]++
		}
		if r.Contact != nil {
			if len(r.Contact.Emails) > 0 {
				data.SitesWithEmails++
				data.TotalEmails += len(r.Contact.Emails)
			}
			data.ContactForms += len(r.Contact.ContactForms)
			for platform := range r.Contact.SocialMedia {
				social[platform]++
			}
		}
	}

	if data.Validated > 0 {
		data.DetectionRate = float64(data.Confirmed) / float64(data.Validated) * 100
	}
	if data.TotalSites > 0 {
		data.EmailRate = float64(data.SitesWithEmails) / float64(data.TotalSites) * 100
	}

	data.Indicators = sortedFreq(indicators, 0)
	data.TLDs = sortedFreq(tlds, 10)
	data.Social = sortedFreq(social, 0)
	return data
}

func topLevelDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	idx := strings.LastIndex(host, ".")
	if idx < 0 || idx == len(host)-1 {
		return ""
	}
	return strings.ToLower(host[idx+1:])
}

// sortedFreq orders by count descending, then name, and truncates to limit
// when limit is positive.
func sortedFreq(m map[string]int, limit int) []freqEntry {
	entries := make([]freqEntry, 0, len(m))
	for name, count := range m {
		entries = append(entries, freqEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
