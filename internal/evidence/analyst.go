package evidence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const maxRecentActions = 10

// RatingAction is one analyst upgrade/downgrade record.
type RatingAction struct {
	Firm      string `json:"firm"`
	FromGrade string `json:"from_grade"`
	ToGrade   string `json:"to_grade"`
	Action    string `json:"action"`
}

// AnalystData holds Wall Street analyst consensus, price targets, and
// recent rating changes for a ticker.
type AnalystData struct {
	Ticker        string
	Consensus     string // buy, hold, sell, or "none" when unavailable
	AnalystCount  int
	TargetMean    float64
	TargetHigh    float64
	TargetLow     float64
	CurrentPrice  float64
	RecentActions []RatingAction
}

// Empty reports whether no usable analyst data came back.
func (d AnalystData) Empty() bool {
	return (d.Consensus == "" || d.Consensus == "none") && len(d.RecentActions) == 0
}

// AnalystFetcher pulls recommendations, price targets, and rating changes
// from the Finnhub API.
type AnalystFetcher struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewAnalystFetcher creates an analyst data fetcher.
func NewAnalystFetcher(baseURL, apiKey string, timeout time.Duration) *AnalystFetcher {
	return &AnalystFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type finnhubRecommendation struct {
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongBuy  int    `json:"strongBuy"`
	StrongSell int    `json:"strongSell"`
	Period     string `json:"period"`
}

type finnhubPriceTarget struct {
	TargetMean float64 `json:"targetMean"`
	TargetHigh float64 `json:"targetHigh"`
	TargetLow  float64 `json:"targetLow"`
}

type finnhubQuote struct {
	Current float64 `json:"c"`
}

type finnhubGrade struct {
	Company   string `json:"company"`
	FromGrade string `json:"fromGrade"`
	ToGrade   string `json:"toGrade"`
	Action    string `json:"action"`
}

type finnhubProfile struct {
	Name string `json:"name"`
}

// Fetch gathers analyst consensus, price targets, and recent rating actions.
// Each endpoint degrades independently; a fully failed fetch yields an
// AnalystData for which Empty() is true.
func (f *AnalystFetcher) Fetch(ctx context.Context, ticker string) AnalystData {
	ticker = strings.ToUpper(ticker)
	data := AnalystData{Ticker: ticker, Consensus: "none"}

	if f.apiKey == "" {
		log.Warn().Str("ticker", ticker).Msg("finnhub api key not configured, skipping analyst fetch")
		return data
	}

	var recs []finnhubRecommendation
	if err := doJSON(ctx, f.client, f.endpoint("/stock/recommendation", ticker), "", &recs); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("finnhub recommendation fetch failed")
	} else if len(recs) > 0 {
		// first entry is the latest period
		latest := recs[0]
		data.Consensus = consensusFromTrend(latest)
		data.AnalystCount = latest.StrongBuy + latest.Buy + latest.Hold + latest.Sell + latest.StrongSell
	}

	var target finnhubPriceTarget
	if err := doJSON(ctx, f.client, f.endpoint("/stock/price-target", ticker), "", &target); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("finnhub price target fetch failed")
	} else {
		data.TargetMean = target.TargetMean
		data.TargetHigh = target.TargetHigh
		data.TargetLow = target.TargetLow
	}

	var quote finnhubQuote
	if err := doJSON(ctx, f.client, f.endpoint("/quote", ticker), "", &quote); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("finnhub quote fetch failed")
	} else {
		data.CurrentPrice = quote.Current
	}

	var grades []finnhubGrade
	if err := doJSON(ctx, f.client, f.endpoint("/stock/upgrade-downgrade", ticker), "", &grades); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("finnhub upgrade/downgrade fetch failed")
	} else {
		for _, g := range grades {
			if len(data.RecentActions) >= maxRecentActions {
				break
			}
			data.RecentActions = append(data.RecentActions, RatingAction{
				Firm:      g.Company,
				FromGrade: g.FromGrade,
				ToGrade:   g.ToGrade,
				Action:    g.Action,
			})
		}
	}

	return data
}

// CompanyName looks up the company name for a ticker, used to sharpen web
// search queries. Best effort: returns "" on any failure.
func (f *AnalystFetcher) CompanyName(ctx context.Context, ticker string) string {
	if f.apiKey == "" {
		return ""
	}
	var profile finnhubProfile
	if err := doJSON(ctx, f.client, f.endpoint("/stock/profile2", ticker), "", &profile); err != nil {
		log.Debug().Err(err).Str("ticker", ticker).Msg("finnhub profile fetch failed")
		return ""
	}
	return profile.Name
}

func (f *AnalystFetcher) endpoint(path, ticker string) string {
	return fmt.Sprintf("%s%s?symbol=%s&token=%s", f.baseURL, path, url.QueryEscape(strings.ToUpper(ticker)), url.QueryEscape(f.apiKey))
}

// consensusFromTrend reduces a recommendation trend row to one of
// buy/hold/sell, or "none" when no analysts are counted.
func consensusFromTrend(r finnhubRecommendation) string {
	bullish := r.StrongBuy + r.Buy
	bearish := r.StrongSell + r.Sell
	if bullish+r.Hold+bearish == 0 {
		return "none"
	}
	switch {
	case bullish >= r.Hold && bullish >= bearish:
		return "buy"
	case bearish > r.Hold && bearish > bullish:
		return "sell"
	default:
		return "hold"
	}
}
