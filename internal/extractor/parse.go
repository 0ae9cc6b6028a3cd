package extractor

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/itsikram/client-hunter/internal/prospect"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// emailExactRe validates a full candidate string as an email address.
	emailExactRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// phoneRe is a permissive international-leaning pattern; matches are kept
	// only when at least 7 digits remain after stripping punctuation.
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-().\/]{4,}\d`)

	// deobfuscation of the common "name [at] host [dot] tld" pattern.
	atTokenRe  = regexp.MustCompile(`(?i)\s*\[\s*at\s*\]\s*`)
	dotTokenRe = regexp.MustCompile(`(?i)\s*\[\s*dot\s*\]\s*`)

	emailFieldRe   = regexp.MustCompile(`(?i)e[-_]?mail`)
	messageFieldRe = regexp.MustCompile(`(?i)message|comment|inquiry|enquiry`)
)

// socialDomains maps the tracked platforms to their domain substrings.
// Order is fixed so the report columns are stable.
var socialDomains = []struct {
	platform string
	hosts    []string
}{
	{"facebook", []string{"facebook.com"}},
	{"instagram", []string{"instagram.com"}},
	{"linkedin", []string{"linkedin.com"}},
	{"twitter", []string{"twitter.com", "x.com"}},
}

// accumulator collects contact data across sub-pages. Emails and phones keep
// first-seen insertion order; social links keep the last find per platform.
type accumulator struct {
	emails     []string
	emailSeen  map[string]struct{}
	phones     []string
	phoneSeen  map[string]struct{}
	social     map[string]string
	forms      []prospect.ContactForm
	formSeen   map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		emailSeen: make(map[string]struct{}),
		phoneSeen: make(map[string]struct{}),
		social:    make(map[string]string),
		formSeen:  make(map[string]struct{}),
	}
}

func (a *accumulator) addEmail(raw string) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailExactRe.MatchString(email) {
		return
	}
	if _, dup := a.emailSeen[email]; dup {
		return
	}
	a.emailSeen[email] = struct{}{}
	a.emails = append(a.emails, email)
}

func (a *accumulator) addPhone(raw string) {
	phone := strings.TrimSpace(raw)
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 7 {
		return
	}
	if _, dup := a.phoneSeen[phone]; dup {
		return
	}
	a.phoneSeen[phone] = struct{}{}
	a.phones = append(a.phones, phone)
}

func (a *accumulator) record(baseURL string) *prospect.ContactRecord {
	return &prospect.ContactRecord{
		URL:          baseURL,
		Emails:       a.emails,
		Phones:       a.phones,
		SocialMedia:  a.social,
		ContactForms: a.forms,
		ExtractedAt:  time.Now().UTC(),
	}
}

// harvestPage extracts every contact signal from one parsed sub-page into acc.
func harvestPage(acc *accumulator, pageURL string, doc *goquery.Document) {
	text := doc.Text()

	// Visible text emails.
	for _, m := range emailRe.FindAllString(text, -1) {
		acc.addEmail(m)
	}

	// mailto: targets, with any ?subject= style suffix stripped.
	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		acc.addEmail(addr)
	})

	// Explicit data attributes.
	doc.Find("[data-email]").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("data-email"); ok {
			acc.addEmail(v)
		}
	})

	// De-obfuscate "[at]"/"[dot]" patterns and rescan.
	if atTokenRe.MatchString(text) {
		plain := atTokenRe.ReplaceAllString(text, "@")
		plain = dotTokenRe.ReplaceAllString(plain, ".")
		for _, m := range emailRe.FindAllString(plain, -1) {
			acc.addEmail(m)
		}
	}

	// Phone numbers in visible text, kept in their original formatting.
	for _, m := range phoneRe.FindAllString(text, -1) {
		acc.addPhone(m)
	}

	// Social links: scan anchors in document order, last match per platform wins.
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)
		for _, sd := range socialDomains {
			for _, host := range sd.hosts {
				if strings.Contains(lower, host) {
					acc.social[sd.platform] = href
				}
			}
		}
	})

	// Contact forms: require both an email-like and a message-like field.
	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		if !hasEmailField(form) || !hasMessageField(form) {
			return
		}
		action, _ := form.Attr("action")
		method, _ := form.Attr("method")
		if method == "" {
			method = "POST"
		}
		cf := prospect.ContactForm{
			PageURL: pageURL,
			Action:  action,
			Method:  strings.ToUpper(method),
		}
		key := cf.PageURL + "|" + cf.Action + "|" + cf.Method
		if _, dup := acc.formSeen[key]; dup {
			return
		}
		acc.formSeen[key] = struct{}{}
		acc.forms = append(acc.forms, cf)
	})
}

func hasEmailField(form *goquery.Selection) bool {
	found := false
	form.Find("input").EachWithBreak(func(_ int, in *goquery.Selection) bool {
		if t, _ := in.Attr("type"); strings.EqualFold(t, "email") {
			found = true
			return false
		}
		if name, _ := in.Attr("name"); emailFieldRe.MatchString(name) {
			found = true
			return false
		}
		return true
	})
	return found
}

func hasMessageField(form *goquery.Selection) bool {
	if form.Find("textarea").Length() > 0 {
		return true
	}
	found := false
	form.Find("input").EachWithBreak(func(_ int, in *goquery.Selection) bool {
		if name, _ := in.Attr("name"); messageFieldRe.MatchString(name) {
			found = true
			return false
		}
		return true
	})
	return found
}
