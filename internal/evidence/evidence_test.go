package evidence

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

const finvizPage = `<html><body>
<table id="news-table">
<tr><td>Aug-28-25</td><td><a href="#">Apple beats earnings estimates</a></td></tr>
<tr><td>Aug-28-25</td><td><a href="#">iPhone demand surges in China</a></td></tr>
<tr><td>Aug-27-25</td><td><a href="#">Apple beats earnings estimates</a></td></tr>
</table>
</body></html>`

const yahooFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Yahoo Finance: AAPL News</title>
<item><title>Apple beats earnings estimates</title><link>https://example.com/1</link></item>
<item><title>Analysts raise Apple price targets</title><link>https://example.com/2</link></item>
</channel></rss>`

func TestNewsFetcher_CombinesAndDeduplicates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote.ashx", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("t"))
		fmt.Fprint(w, finvizPage)
	})
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("s"))
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, yahooFeed)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	f := NewNewsFetcher(ts.URL, ts.URL+"/rss", "test-agent", testTimeout)

	headlines, err := f.Headlines(context.Background(), "AAPL")

	require.NoError(t, err)
	// the duplicate headline appears once, across both sources
	assert.Equal(t, []string{
		"Apple beats earnings estimates",
		"iPhone demand surges in China",
		"Analysts raise Apple price targets",
	}, headlines)
}

func TestNewsFetcher_OneSourceFailingIsTolerated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote.ashx", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	})
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, yahooFeed)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	f := NewNewsFetcher(ts.URL, ts.URL+"/rss", "test-agent", testTimeout)

	headlines, err := f.Headlines(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Len(t, headlines, 2)
}

func TestNewsFetcher_BothSourcesFailingYieldsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	f := NewNewsFetcher(ts.URL, ts.URL+"/rss", "test-agent", testTimeout)

	headlines, err := f.Headlines(context.Background(), "AAPL")

	require.NoError(t, err, "no news is not a failure")
	assert.Empty(t, headlines)
}

const apeWisdomJSON = `{"results": [
	{"ticker": "GME", "mentions": 1200, "upvotes": 5400, "rank": 1, "rank_24h_ago": 4},
	{"ticker": "AAPL", "mentions": 300, "upvotes": 900, "rank": 7, "rank_24h_ago": 5}
]}`

func TestSocialFetcher_FindsListedTicker(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/filter/all-stocks/page/1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, apeWisdomJSON)
	}))
	defer ts.Close()

	f := NewSocialFetcher(ts.URL, testTimeout)

	stats := f.Mentions(context.Background(), "gme")

	assert.Equal(t, "GME", stats.Ticker)
	assert.Equal(t, 1200, stats.Mentions)
	assert.Equal(t, 5400, stats.Upvotes)
	assert.Equal(t, 1, stats.Rank)
	assert.Equal(t, 3, stats.RankChange, "climbed from rank 4 to rank 1")
}

func TestSocialFetcher_UnlistedTickerYieldsSentinels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, apeWisdomJSON)
	}))
	defer ts.Close()

	f := NewSocialFetcher(ts.URL, testTimeout)

	stats := f.Mentions(context.Background(), "XOM")

	assert.Zero(t, stats.Mentions)
	assert.Equal(t, notRanked, stats.Rank)
}

func TestSocialFetcher_APIFailureYieldsSentinels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer ts.Close()

	f := NewSocialFetcher(ts.URL, testTimeout)

	stats := f.Mentions(context.Background(), "AAPL")

	assert.Zero(t, stats.Mentions)
	assert.Equal(t, notRanked, stats.Rank)
	assert.Equal(t, notRanked, stats.Rank24hAgo)
}

func finnhubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/recommendation", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		fmt.Fprint(w, `[{"buy": 20, "hold": 8, "sell": 2, "strongBuy": 12, "strongSell": 1, "period": "2025-08-01"}]`)
	})
	mux.HandleFunc("/stock/price-target", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"targetMean": 245.3, "targetHigh": 310.0, "targetLow": 180.0}`)
	})
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"c": 228.5}`)
	})
	mux.HandleFunc("/stock/upgrade-downgrade", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"company": "Morgan Stanley", "fromGrade": "Equal-Weight", "toGrade": "Overweight", "action": "up"},
			{"company": "Citi", "fromGrade": "Buy", "toGrade": "Neutral", "action": "down"}
		]`)
	})
	mux.HandleFunc("/stock/profile2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": "Apple Inc"}`)
	})
	return httptest.NewServer(mux)
}

func TestAnalystFetcher_FetchesAllEndpoints(t *testing.T) {
	ts := finnhubServer(t)
	defer ts.Close()

	f := NewAnalystFetcher(ts.URL, "test-key", testTimeout)

	data := f.Fetch(context.Background(), "aapl")

	assert.Equal(t, "AAPL", data.Ticker)
	assert.Equal(t, "buy", data.Consensus)
	assert.Equal(t, 43, data.AnalystCount)
	assert.InDelta(t, 245.3, data.TargetMean, 1e-9)
	assert.InDelta(t, 228.5, data.CurrentPrice, 1e-9)
	require.Len(t, data.RecentActions, 2)
	assert.Equal(t, "Morgan Stanley", data.RecentActions[0].Firm)
	assert.Equal(t, "Overweight", data.RecentActions[0].ToGrade)
	assert.False(t, data.Empty())
}

func TestAnalystFetcher_MissingKeySkipsFetch(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()

	f := NewAnalystFetcher(ts.URL, "", testTimeout)

	data := f.Fetch(context.Background(), "AAPL")

	assert.True(t, data.Empty())
	assert.Zero(t, calls)
	assert.Empty(t, f.CompanyName(context.Background(), "AAPL"))
}

func TestAnalystFetcher_PartialFailureDegrades(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/recommendation", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "limit", http.StatusTooManyRequests)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			fmt.Fprint(w, `{"c": 228.5}`)
		case "/stock/price-target":
			fmt.Fprint(w, `{"targetMean": 245.3}`)
		case "/stock/upgrade-downgrade":
			fmt.Fprint(w, `[{"company": "UBS", "toGrade": "Buy", "action": "up"}]`)
		default:
			http.NotFound(w, r)
		}
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	f := NewAnalystFetcher(ts.URL, "test-key", testTimeout)

	data := f.Fetch(context.Background(), "AAPL")

	assert.Equal(t, "none", data.Consensus)
	assert.InDelta(t, 228.5, data.CurrentPrice, 1e-9)
	require.Len(t, data.RecentActions, 1)
	assert.False(t, data.Empty(), "rating actions alone are usable data")
}

func TestAnalystFetcher_CompanyName(t *testing.T) {
	ts := finnhubServer(t)
	defer ts.Close()

	f := NewAnalystFetcher(ts.URL, "test-key", testTimeout)

	assert.Equal(t, "Apple Inc", f.CompanyName(context.Background(), "AAPL"))
}

func TestConsensusFromTrend(t *testing.T) {
	tests := []struct {
		name string
		rec  finnhubRecommendation
		want string
	}{
		{"bullish majority", finnhubRecommendation{StrongBuy: 10, Buy: 15, Hold: 8, Sell: 2}, "buy"},
		{"bearish majority", finnhubRecommendation{Sell: 12, StrongSell: 4, Hold: 6, Buy: 2}, "sell"},
		{"hold majority", finnhubRecommendation{Hold: 20, Buy: 5, Sell: 5}, "hold"},
		{"no analysts", finnhubRecommendation{}, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, consensusFromTrend(tt.rec))
		})
	}
}

const ddgPage = `<html><body>
<div class="result__body">
	<a class="result__a" href="#">AAPL stock forecast</a>
	<a class="result__snippet" href="#">Analysts see upside into year end.</a>
</div>
<div class="result__body">
	<a class="result__a" href="#">Apple risks</a>
	<a class="result__snippet" href="#">China exposure remains a concern.</a>
</div>
</body></html>`

func TestWebFetcher_ParsesResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		fmt.Fprint(w, ddgPage)
	}))
	defer ts.Close()

	f := NewWebFetcher(ts.URL, "test-agent", testTimeout)

	snippets, err := f.search(context.Background(), "AAPL stock outlook", 5)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"AAPL stock forecast: Analysts see upside into year end.",
		"Apple risks: China exposure remains a concern.",
	}, snippets)
}

func TestWebFetcher_SearchFailureYieldsEmptySnippets(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer ts.Close()

	f := NewWebFetcher(ts.URL, "test-agent", testTimeout)
	// burst the limiter so the second query doesn't slow the test down
	f.limiter.SetLimit(1000)

	snippets := f.Snippets(context.Background(), "AAPL", "Apple Inc")

	assert.Empty(t, snippets)
}

func TestWebFetcher_SnippetsDeduplicatesAcrossQueries(t *testing.T) {
	queries := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries++
		fmt.Fprint(w, ddgPage)
	}))
	defer ts.Close()

	f := NewWebFetcher(ts.URL, "test-agent", testTimeout)
	f.limiter.SetLimit(1000)

	snippets := f.Snippets(context.Background(), "AAPL", "Apple Inc")

	assert.Equal(t, 2, queries, "both query angles hit the search endpoint")
	// identical results from both queries collapse to one set
	assert.Len(t, snippets, 2)
}
