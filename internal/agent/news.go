package agent

import (
	"context"
	"fmt"

	"github.com/user/ticker-sentiment/internal/llm"
)

// HeadlineFetcher supplies recent news headlines for a ticker.
type HeadlineFetcher interface {
	Headlines(ctx context.Context, ticker string) ([]string, error)
}

// NewsAgent scores the sentiment of recent news headlines.
type NewsAgent struct {
	llm  llm.Client
	news HeadlineFetcher
}

// NewNewsAgent creates a news sentiment agent.
func NewNewsAgent(client llm.Client, news HeadlineFetcher) *NewsAgent {
	return &NewsAgent{llm: client, news: news}
}

// Name returns the agent's source identifier.
func (a *NewsAgent) Name() Source {
	return SourceNews
}

// Run fetches headlines and asks the LLM to score their overall sentiment.
// No headlines is a fast path to a neutral Opinion, not a failure.
func (a *NewsAgent) Run(ctx context.Context, ticker string) (Opinion, error) {
	headlines, err := a.news.Headlines(ctx, ticker)
	if err != nil {
		return Opinion{}, fmt.Errorf("failed to fetch headlines: %w", err)
	}

	if len(headlines) == 0 {
		return Opinion{
			Score:     0.0,
			Label:     LabelNeutral,
			Reasoning: "No headlines found.",
			Fields:    map[string]interface{}{"sources": 0},
		}, nil
	}

	var res opinionResponse
	if err := llm.GenerateJSON(ctx, a.llm, buildNewsPrompt(ticker, headlines), &res); err != nil {
		return Opinion{}, fmt.Errorf("news sentiment generation failed: %w", err)
	}

	return Opinion{
		Score:     clampScore(res.Score),
		Label:     normalizeLabel(res.Label),
		Reasoning: res.Reasoning,
		Fields: map[string]interface{}{
			"sources":    len(headlines),
			"key_themes": res.KeyThemes,
		},
	}, nil
}
