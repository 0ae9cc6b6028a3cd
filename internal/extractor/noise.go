package extractor

import "strings"

// noiseRule rejects one class of generic or placeholder email. Rules run in
// order with explicit short-circuit so the priority is testable in isolation.
type noiseRule struct {
	name string
	fn   func(local, domain string) bool
}

var noiseRules = []noiseRule{
	{
		name: "no-reply",
		fn: func(local, _ string) bool {
			for _, p := range []string{"noreply", "no-reply", "no_reply", "donotreply", "do-not-reply"} {
				if strings.HasPrefix(local, p) {
					return true
				}
			}
			return false
		},
	},
	{
		name: "support-desk",
		fn: func(local, _ string) bool {
			return local == "support" || local == "help"
		},
	},
	{
		// Placeholder addresses where the local part repeats as the domain
		// label (admin@admin.com, info@info.net). A real info@company.com
		// address is kept.
		name: "placeholder",
		fn: func(local, domain string) bool {
			switch local {
			case "admin", "info", "test", "example", "webmaster":
			default:
				return false
			}
			label, _, _ := strings.Cut(domain, ".")
			return label == local
		},
	},
	{
		name: "example-domain",
		fn: func(_, domain string) bool {
			label, _, _ := strings.Cut(domain, ".")
			return label == "example" || strings.HasSuffix(domain, ".example")
		},
	},
}

// isNoise reports whether email matches any denylist rule, and which.
func isNoise(email string) (bool, string) {
	local, domain, ok := strings.Cut(strings.ToLower(email), "@")
	if !ok {
		return true, "malformed"
	}
	for _, r := range noiseRules {
		if r.fn(local, domain) {
			return true, r.name
		}
	}
	return false, ""
}

// filterNoise drops denylisted emails, preserving order of the rest.
func filterNoise(emails []string) []string {
	kept := make([]string, 0, len(emails))
	for _, e := range emails {
		if noisy, _ := isNoise(e); !noisy {
			kept = append(kept, e)
		}
	}
	return kept
}
