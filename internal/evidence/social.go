package evidence

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// notRanked is the sentinel rank for tickers absent from the trending list.
const notRanked = 999

// SocialStats holds Reddit mention data aggregated by ApeWisdom.
type SocialStats struct {
	Ticker     string
	Mentions   int
	Upvotes    int
	Rank       int
	Rank24hAgo int
	RankChange int
}

// SocialFetcher looks up Reddit mention counts via the ApeWisdom API.
// ApeWisdom aggregates mentions across r/wallstreetbets, r/stocks, etc. and
// requires no authentication.
type SocialFetcher struct {
	client  *http.Client
	baseURL string
}

// NewSocialFetcher creates a social mention fetcher.
func NewSocialFetcher(baseURL string, timeout time.Duration) *SocialFetcher {
	return &SocialFetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type apeWisdomResponse struct {
	Results []struct {
		Ticker     string `json:"ticker"`
		Mentions   int    `json:"mentions"`
		Upvotes    int    `json:"upvotes"`
		Rank       int    `json:"rank"`
		Rank24hAgo int    `json:"rank_24h_ago"`
	} `json:"results"`
}

// Mentions looks up the ticker in ApeWisdom's trending list. Tickers not
// popular enough to be listed, and API failures, both yield zeroed stats —
// the caller cannot tell the difference and does not need to.
func (f *SocialFetcher) Mentions(ctx context.Context, ticker string) SocialStats {
	ticker = strings.ToUpper(ticker)
	zeroes := SocialStats{Ticker: ticker, Rank: notRanked, Rank24hAgo: notRanked}

	url := fmt.Sprintf("%s/filter/all-stocks/page/1", f.baseURL)
	var data apeWisdomResponse
	if err := doJSON(ctx, f.client, url, "", &data); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("apewisdom fetch failed")
		return zeroes
	}

	for _, item := range data.Results {
		if strings.ToUpper(item.Ticker) == ticker {
			return SocialStats{
				Ticker:     ticker,
				Mentions:   item.Mentions,
				Upvotes:    item.Upvotes,
				Rank:       item.Rank,
				Rank24hAgo: item.Rank24hAgo,
				RankChange: item.Rank24hAgo - item.Rank,
			}
		}
	}

	log.Debug().Str("ticker", ticker).Msg("ticker not in apewisdom top results")
	return zeroes
}
