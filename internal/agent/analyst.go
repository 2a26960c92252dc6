package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/user/ticker-sentiment/internal/evidence"
	"github.com/user/ticker-sentiment/internal/llm"
)

// AnalystFetcher supplies Wall Street analyst data for a ticker.
type AnalystFetcher interface {
	Fetch(ctx context.Context, ticker string) evidence.AnalystData
}

// Rating grade vocabularies used to tally recent analyst actions into
// bullish/neutral/bearish buckets. Matching is substring-based on the
// lowercased target grade.
var (
	bullishGrades = []string{"buy", "outperform", "overweight", "strong buy"}
	neutralGrades = []string{"hold", "neutral", "market perform", "equal"}
	bearishGrades = []string{"sell", "underperform", "underweight"}
)

// AnalystAgent scores sentiment from analyst consensus, price targets, and
// recent upgrade/downgrade actions.
type AnalystAgent struct {
	llm     llm.Client
	analyst AnalystFetcher

	// cooldown is slept before fetching: the news stage's provider shares
	// an upstream rate limiter that needs time to clear.
	cooldown time.Duration
}

// NewAnalystAgent creates an analyst buzz agent.
func NewAnalystAgent(client llm.Client, analyst AnalystFetcher, cooldown time.Duration) *AnalystAgent {
	return &AnalystAgent{llm: client, analyst: analyst, cooldown: cooldown}
}

// Name returns the agent's source identifier.
func (a *AnalystAgent) Name() Source {
	return SourceAnalyst
}

// analystSummary is what gets embedded in the prompt so the LLM has
// something readable.
type analystSummary struct {
	Consensus          string                  `json:"consensus"`
	AnalystCount       int                     `json:"analyst_count"`
	PriceTargetMean    float64                 `json:"price_target_mean"`
	PriceTargetHigh    float64                 `json:"price_target_high"`
	PriceTargetLow     float64                 `json:"price_target_low"`
	CurrentPrice       float64                 `json:"current_price"`
	RecentUpgrades     int                     `json:"recent_upgrades"`
	RecentHolds        int                     `json:"recent_holds"`
	RecentDowngrades   int                     `json:"recent_downgrades"`
	RecentActionSample []evidence.RatingAction `json:"recent_actions_sample"`
}

// Run fetches analyst data, tallies recent rating actions, and asks the LLM
// to score the overall analyst sentiment.
func (a *AnalystAgent) Run(ctx context.Context, ticker string) (Opinion, error) {
	if a.cooldown > 0 {
		log.Info().Dur("cooldown", a.cooldown).Msg("waiting for upstream rate limit cooldown")
		select {
		case <-time.After(a.cooldown):
		case <-ctx.Done():
			return Opinion{}, ctx.Err()
		}
	}

	data := a.analyst.Fetch(ctx, ticker)

	if data.Empty() {
		return Opinion{
			Score:     0.0,
			Label:     LabelNeutral,
			Reasoning: "No analyst data available.",
			Fields: map[string]interface{}{
				"buy_count":  0,
				"hold_count": 0,
				"sell_count": 0,
			},
		}, nil
	}

	buyCount := countGrades(data.RecentActions, bullishGrades)
	holdCount := countGrades(data.RecentActions, neutralGrades)
	sellCount := countGrades(data.RecentActions, bearishGrades)

	sample := data.RecentActions
	if len(sample) > 5 {
		sample = sample[:5]
	}
	summary, err := json.MarshalIndent(analystSummary{
		Consensus:          data.Consensus,
		AnalystCount:       data.AnalystCount,
		PriceTargetMean:    data.TargetMean,
		PriceTargetHigh:    data.TargetHigh,
		PriceTargetLow:     data.TargetLow,
		CurrentPrice:       data.CurrentPrice,
		RecentUpgrades:     buyCount,
		RecentHolds:        holdCount,
		RecentDowngrades:   sellCount,
		RecentActionSample: sample,
	}, "", "  ")
	if err != nil {
		return Opinion{}, fmt.Errorf("failed to marshal analyst summary: %w", err)
	}

	var res opinionResponse
	if err := llm.GenerateJSON(ctx, a.llm, buildAnalystPrompt(ticker, string(summary)), &res); err != nil {
		return Opinion{}, fmt.Errorf("analyst sentiment generation failed: %w", err)
	}

	return Opinion{
		Score:     clampScore(res.Score),
		Label:     normalizeLabel(res.Label),
		Reasoning: res.Reasoning,
		Fields: map[string]interface{}{
			"buy_count":  buyCount,
			"hold_count": holdCount,
			"sell_count": sellCount,
			"consensus":  data.Consensus,
		},
	}, nil
}

// countGrades counts rating actions whose target grade matches any word in
// the vocabulary.
func countGrades(actions []evidence.RatingAction, vocabulary []string) int {
	count := 0
	for _, action := range actions {
		grade := strings.ToLower(action.ToGrade)
		for _, word := range vocabulary {
			if strings.Contains(grade, word) {
				count++
				break
			}
		}
	}
	return count
}
