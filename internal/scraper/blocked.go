package scraper

import (
	"bytes"
	"net/http"
	"strings"
)

// BlockDetector inspects a fetch result for signs that an anti-automation
// system challenged or blocked the request.
type BlockDetector func(res *FetchResult) (blocked bool, source string)

// DefaultBlockDetectors returns the standard detector chain. Detectors run in
// order; the first hit wins.
func DefaultBlockDetectors() []BlockDetector {
	return []BlockDetector{
		detectSearchCaptcha,
		detectCloudflare,
		detectGenericDenial,
	}
}

// Analyze runs the result through the detectors and marks it in place.
func Analyze(res *FetchResult, detectors []BlockDetector) bool {
	if res == nil {
		return false
	}
	for _, d := range detectors {
		if blocked, source := d(res); blocked {
			res.Blocked = true
			res.BlockSource = source
			return true
		}
	}
	res.Blocked = false
	res.BlockSource = ""
	return false
}

// detectSearchCaptcha recognizes the interstitial Google serves when it
// suspects automated queries.
func detectSearchCaptcha(res *FetchResult) (bool, string) {
	if res.StatusCode == http.StatusTooManyRequests {
		return true, "search-captcha"
	}
	if res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusOK {
		if bytes.Contains(res.Body, []byte("/sorry/index")) ||
			bytes.Contains(res.Body, []byte("detected unusual traffic")) ||
			bytes.Contains(res.Body, []byte("g-recaptcha")) {
			return true, "search-captcha"
		}
	}
	return false, ""
}

func detectCloudflare(res *FetchResult) (bool, string) {
	if res.StatusCode != http.StatusForbidden && res.StatusCode != http.StatusServiceUnavailable {
		return false, ""
	}
	server := strings.ToLower(res.Headers.Get("Server"))
	if strings.Contains(server, "cloudflare") {
		return true, "cloudflare"
	}
	if bytes.Contains(res.Body, []byte("cf-browser-verification")) ||
		bytes.Contains(res.Body, []byte("cf-turnstile")) ||
		bytes.Contains(res.Body, []byte("Attention Required! | Cloudflare")) {
		return true, "cloudflare"
	}
	return false, ""
}

func detectGenericDenial(res *FetchResult) (bool, string) {
	if res.StatusCode == http.StatusForbidden &&
		bytes.Contains(res.Body, []byte("Access Denied")) {
		return true, "generic"
	}
	return false, ""
}
