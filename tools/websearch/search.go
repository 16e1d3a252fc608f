// Package websearch scrapes the DuckDuckGo HTML endpoint for search results.
// No API key, no SDK; just a GET and a parse.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

const (
	searchEndpoint = "https://html.duckduckgo.com/html/"
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
)

// Result is one scraped search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Client performs web searches over plain HTTP.
type Client struct {
	http *http.Client
}

// NewClient builds a search client with a bounded request timeout.
func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Search returns up to max results for the query. Blocking: offload via the
// worker pool when called from the request path.
func (c *Client) Search(ctx context.Context, query string, max int) ([]Result, error) {
	if max <= 0 {
		max = 3
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		searchEndpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	results := parseResults(doc, max)
	logrus.Debugf("[WEBSEARCH] %q -> %d results", query, len(results))
	return results, nil
}

// parseResults extracts title/link/snippet triples from the result page.
func parseResults(doc *goquery.Document, max int) []Result {
	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find(".result__title a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())

		if title == "" {
			return true
		}
		results = append(results, Result{Title: title, URL: href, Snippet: snippet})
		return len(results) < max
	})
	return results
}

// Format renders results as a plain-text block the brain can ground on.
func Format(results []Result) string {
	if len(results) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Title)
		if r.Snippet != "" {
			sb.WriteString("   ")
			sb.WriteString(r.Snippet)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
