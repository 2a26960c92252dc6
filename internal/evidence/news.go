package evidence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	maxFinvizHeadlines = 10
	maxYahooHeadlines  = 5
)

// NewsFetcher combines headlines from the Finviz quote page and the Yahoo
// Finance per-ticker RSS feed. Either source failing is tolerated; the
// result is simply thinner.
type NewsFetcher struct {
	client        *http.Client
	parser        *gofeed.Parser
	finvizBaseURL string
	yahooBaseURL  string
	userAgent     string
	limiter       *rate.Limiter
}

// NewNewsFetcher creates a news fetcher.
func NewNewsFetcher(finvizBaseURL, yahooBaseURL, userAgent string, timeout time.Duration) *NewsFetcher {
	return &NewsFetcher{
		client:        &http.Client{Timeout: timeout},
		parser:        gofeed.NewParser(),
		finvizBaseURL: finvizBaseURL,
		yahooBaseURL:  yahooBaseURL,
		userAgent:     userAgent,
		limiter:       rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Headlines returns recent headlines for the ticker, combined across both
// sources and deduplicated. An empty slice with a nil error means no news
// was found; that is not a failure.
func (f *NewsFetcher) Headlines(ctx context.Context, ticker string) ([]string, error) {
	finviz, err := f.fetchFinviz(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("finviz fetch failed")
	}

	yahoo, err := f.fetchYahoo(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("yahoo finance fetch failed")
	}

	seen := make(map[string]bool)
	var unique []string
	for _, h := range append(finviz, yahoo...) {
		if h != "" && !seen[h] {
			seen[h] = true
			unique = append(unique, h)
		}
	}
	return unique, nil
}

// fetchFinviz scrapes the news table on the Finviz quote page.
func (f *NewsFetcher) fetchFinviz(ctx context.Context, ticker string) ([]string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	pageURL := fmt.Sprintf("%s/quote.ashx?t=%s", f.finvizBaseURL, url.QueryEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finviz returned status %d for %s", resp.StatusCode, ticker)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var headlines []string
	doc.Find("table#news-table tr").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxFinvizHeadlines {
			return false
		}
		if title := strings.TrimSpace(sel.Find("a").First().Text()); title != "" {
			headlines = append(headlines, title)
		}
		return true
	})
	return headlines, nil
}

// fetchYahoo reads the Yahoo Finance RSS feed for the ticker.
func (f *NewsFetcher) fetchYahoo(ctx context.Context, ticker string) ([]string, error) {
	feedURL := fmt.Sprintf("%s?s=%s&region=US&lang=en-US", f.yahooBaseURL, url.QueryEscape(ticker))
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var headlines []string
	for _, item := range feed.Items {
		if len(headlines) >= maxYahooHeadlines {
			break
		}
		if title := strings.TrimSpace(item.Title); title != "" {
			headlines = append(headlines, title)
		}
	}
	return headlines, nil
}
