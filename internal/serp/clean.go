package serp

import (
	"net/url"
	"strings"

	"github.com/itsikram/client-hunter/internal/prospect"
)

// trackingParams are stripped from result URLs before reduction.
var trackingParams = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
	"gclid",
}

// excludedDomains are large platforms that are never realistic outreach
// prospects. A host matching any entry by equality, suffix or substring is
// rejected.
var excludedDomains = []string{
	"google.com",
	"youtube.com",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"pinterest.com",
	"reddit.com",
	"tiktok.com",
	"wikipedia.org",
	"amazon.com",
	"ebay.com",
	"etsy.com",
	"apple.com",
	"microsoft.com",
	"wordpress.com",
	"wordpress.org",
	"yelp.com",
	"tripadvisor.com",
}

// CleanURL normalizes a result URL: tracking parameters are dropped, the URL
// is reduced to scheme+host+path, and a single trailing slash is stripped
// unless the path is the root. Cleaning is idempotent. Unparseable input is
// returned unchanged.
func CleanURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()

	// Reduction drops whatever query survived plus the fragment.
	cleaned := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.Path
	if u.Path != "/" {
		cleaned = strings.TrimSuffix(cleaned, "/")
	}
	return cleaned
}

// ValidProspectURL reports whether a cleaned URL is worth keeping: http(s)
// scheme, a dotted host that is not localhost, and not one of the excluded
// platform domains.
func ValidProspectURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" || host == "localhost" || !strings.Contains(host, ".") {
		return false
	}

	for _, d := range excludedDomains {
		if host == d || strings.HasSuffix(host, "."+d) || strings.Contains(host, d) {
			return false
		}
	}
	return true
}

// Dedupe removes results whose cleaned URL was already seen, comparing
// case-insensitively. The first occurrence wins. Deduplication is idempotent.
func Dedupe(results []prospect.SearchResult) []prospect.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]prospect.SearchResult, 0, len(results))
	for _, r := range results {
		key := strings.ToLower(r.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
