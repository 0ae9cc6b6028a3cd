package prospect

// Summary holds the derived metrics for a pipeline run. It is a pure function
// of the accumulated records: recomputing over the same input yields the same
// values.
type Summary struct {
	TotalSearchResults int     `json:"total_search_results"`
	SitesValidated     int     `json:"sites_validated"`
	PlatformConfirmed  int     `json:"platform_confirmed"`
	DetectionRate      float64 `json:"detection_rate"`
	SitesWithEmails    int     `json:"sites_with_emails"`
	TotalEmails        int     `json:"total_emails"`
	UniqueEmails       int     `json:"unique_emails"`
	AvgEmailsPerSite   float64 `json:"avg_emails_per_site"`
}

// Summarize computes run metrics from search results and prospect records.
// Division-by-zero cases (no validated sites, no sites with emails) yield 0.
func Summarize(searchResults []SearchResult, records []*Record) Summary {
	s := Summary{
		TotalSearchResults: len(searchResults),
	}

	unique := make(map[string]struct{})
	for _, r := range records {
		if r.Validation != ValidationSkipped {
			s.SitesValidated++
		}
		if r.PlatformDetected() {
			s.PlatformConfirmed++
		}
		if r.Contact == nil {
			continue
		}
		if len(r.Contact.Emails) > 0 {
			s.SitesWithEmails++
		}
		s.TotalEmails += len(r.Contact.Emails)
		for _, e := range r.Contact.Emails {
			unique[e] = struct{}{}
		}
	}
	s.UniqueEmails = len(unique)

	if s.SitesValidated > 0 {
		s.DetectionRate = float64(s.PlatformConfirmed) / float64(s.SitesValidated) * 100
	}
	if s.SitesWithEmails > 0 {
		s.AvgEmailsPerSite = float64(s.TotalEmails) / float64(s.SitesWithEmails)
	}
	return s
}
