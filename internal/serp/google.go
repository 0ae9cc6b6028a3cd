package serp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/itsikram/client-hunter/internal/metrics"
	"github.com/itsikram/client-hunter/internal/prospect"
	"github.com/itsikram/client-hunter/internal/scraper"
	"github.com/itsikram/client-hunter/pkg/ratelimit"
)

// resultSelectors are tried in order against a result page. Google reshuffles
// its markup regularly; the last entries are older layouts kept as fallbacks.
var resultSelectors = []string{
	"div.tF2Cxc",
	"div.g",
	"div[data-sokoban-container]",
	"div.yuRUbf",
}

// descriptionSelectors locate the snippet inside a result block.
var descriptionSelectors = []string{
	"div.VwiC3b",
	"div.IsZvec",
	"span.aCOpRe",
	"span.st",
}

// GoogleScrape implements Provider by scraping Google's HTML result pages.
type GoogleScrape struct {
	fetcher *scraper.Fetcher
	logger  *slog.Logger
	baseURL string
}

// NewGoogleScrape creates a Google provider using the given fetcher.
func NewGoogleScrape(fetcher *scraper.Fetcher, logger *slog.Logger) *GoogleScrape {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleScrape{
		fetcher: fetcher,
		logger:  logger,
		baseURL: "https://www.google.com/search",
	}
}

// Search walks result pages for query, parsing each into SearchResult records.
// A page failure (network, block interstitial, bad status) stops pagination
// and returns the results accumulated so far without an error.
func (g *GoogleScrape) Search(ctx context.Context, query string, pages, perPage int, delay time.Duration) ([]prospect.SearchResult, error) {
	if pages <= 0 {
		pages = 1
	}
	if perPage <= 0 {
		perPage = 10
	}

	var results []prospect.SearchResult
	for page := 0; page < pages; page++ {
		if page > 0 {
			if err := ratelimit.Pause(ctx, delay); err != nil {
				g.logger.Warn("search interrupted", "query", query, "page", page)
				break
			}
		}

		pageURL := fmt.Sprintf("%s?q=%s&num=%d&start=%d&hl=en",
			g.baseURL, url.QueryEscape(query), perPage, page*perPage)

		result, err := g.fetcher.FetchWithHeaders(ctx, pageURL, map[string]string{
			"Referer":                   "https://www.google.com/",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Upgrade-Insecure-Requests": "1",
		})
		if err != nil || result.Error != "" || result.Blocked || result.StatusCode != 200 {
			reason := "fetch error"
			switch {
			case err != nil:
				reason = err.Error()
			case result.Error != "":
				reason = result.Error
			case result.Blocked:
				reason = "blocked: " + result.BlockSource
			default:
				reason = fmt.Sprintf("status %d", result.StatusCode)
			}
			g.logger.Warn("search page failed, stopping pagination",
				"query", query, "page", page, "reason", reason)
			break
		}

		parsed := parseResults(result.Body, query)
		if len(parsed) == 0 {
			// Either no more results or the markup changed; both end pagination.
			g.logger.Debug("no results parsed", "query", query, "page", page)
			break
		}
		results = append(results, parsed...)
	}

	results = Dedupe(results)
	for range results {
		metrics.SearchResultsTotal.Inc()
	}
	return results, nil
}

// parseResults extracts (url, title, description) records from a result page
// body, tolerating absent or changed markup by returning fewer (or zero)
// results rather than failing.
func parseResults(body []byte, query string) []prospect.SearchResult {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var results []prospect.SearchResult
	appendResult := func(href, title, desc string) {
		target := unwrapRedirect(href)
		cleaned := CleanURL(target)
		if !ValidProspectURL(cleaned) {
			return
		}
		results = append(results, prospect.SearchResult{
			URL:         cleaned,
			Title:       strings.TrimSpace(title),
			Description: strings.TrimSpace(desc),
			SourceQuery: query,
		})
	}

	for _, sel := range resultSelectors {
		doc.Find(sel).Each(func(_ int, block *goquery.Selection) {
			href, ok := block.Find("a[href]").First().Attr("href")
			if !ok {
				return
			}
			title := block.Find("h3").First().Text()
			desc := ""
			for _, ds := range descriptionSelectors {
				if d := block.Find(ds).First(); d.Length() > 0 {
					desc = d.Text()
					break
				}
			}
			appendResult(href, title, desc)
		})
		if len(results) > 0 {
			return results
		}
	}

	// Last resort: any h3 wrapped in an anchor, the shape every layout so far
	// has kept.
	doc.Find("h3").Each(func(_ int, h *goquery.Selection) {
		anchor := h.ParentsFiltered("a").First()
		href, ok := anchor.Attr("href")
		if !ok {
			return
		}
		appendResult(href, h.Text(), "")
	})
	return results
}

// unwrapRedirect follows Google's internal /url?q=<target> wrapper links.
func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if q := u.Query().Get("q"); q != "" {
		return q
	}
	return href
}
