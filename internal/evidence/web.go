package evidence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const maxWebSnippets = 8

// WebFetcher scrapes DuckDuckGo HTML search results for a ticker. No API
// key needed; the HTML endpoint is parsed directly.
type WebFetcher struct {
	client    *http.Client
	searchURL string
	userAgent string
	limiter   *rate.Limiter
}

// NewWebFetcher creates a web search fetcher.
func NewWebFetcher(searchURL, userAgent string, timeout time.Duration) *WebFetcher {
	return &WebFetcher{
		client:    &http.Client{Timeout: timeout},
		searchURL: searchURL,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Snippets runs multiple searches with different query angles and returns
// deduplicated title+snippet strings. A single query often skews results if
// the top hits happen to be all bullish or all bearish.
func (f *WebFetcher) Snippets(ctx context.Context, ticker, companyName string) []string {
	name := companyName
	if name == "" {
		name = ticker
	}
	year := time.Now().Year()

	queries := []string{
		fmt.Sprintf("%s %s stock analyst outlook forecast %d", name, ticker, year),
		fmt.Sprintf("%s %s stock news sentiment risks %d", name, ticker, year),
	}

	perQuery := maxWebSnippets / len(queries)
	seen := make(map[string]bool)
	var all []string

	for _, query := range queries {
		snippets, err := f.search(ctx, query, perQuery+2)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("web search failed")
			continue
		}
		for _, s := range snippets {
			if !seen[s] {
				seen[s] = true
				all = append(all, s)
			}
		}
	}

	if len(all) > maxWebSnippets {
		all = all[:maxWebSnippets]
	}
	return all
}

// search runs one DuckDuckGo HTML search.
func (f *WebFetcher) search(ctx context.Context, query string, maxResults int) ([]string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?q=%s", f.searchURL, url.QueryEscape(query)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var snippets []string
	doc.Find("div.result__body").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxResults {
			return false
		}
		title := strings.TrimSpace(sel.Find("a.result__a").Text())
		snippet := strings.TrimSpace(sel.Find("a.result__snippet").Text())
		if combined := strings.Trim(title+": "+snippet, ": "); combined != "" {
			snippets = append(snippets, combined)
		}
		return true
	})
	return snippets, nil
}
