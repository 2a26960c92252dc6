package agent

import (
	"context"
	"fmt"

	"github.com/user/ticker-sentiment/internal/evidence"
	"github.com/user/ticker-sentiment/internal/llm"
)

// SocialFetcher supplies Reddit mention statistics for a ticker.
type SocialFetcher interface {
	Mentions(ctx context.Context, ticker string) evidence.SocialStats
}

// SocialAgent scores retail investor sentiment from aggregated Reddit
// mention data. The agent always consults the LLM, even with zeroed stats:
// the absence of retail buzz is itself a signal the prompt knows how to
// interpret.
type SocialAgent struct {
	llm    llm.Client
	social SocialFetcher
}

// NewSocialAgent creates a social sentiment agent.
func NewSocialAgent(client llm.Client, social SocialFetcher) *SocialAgent {
	return &SocialAgent{llm: client, social: social}
}

// Name returns the agent's source identifier.
func (a *SocialAgent) Name() Source {
	return SourceSocial
}

// Run fetches mention stats and asks the LLM to score the social signal.
func (a *SocialAgent) Run(ctx context.Context, ticker string) (Opinion, error) {
	stats := a.social.Mentions(ctx, ticker)

	prompt := buildSocialPrompt(ticker, stats.Mentions, stats.Upvotes, stats.Rank, stats.RankChange)

	var res opinionResponse
	if err := llm.GenerateJSON(ctx, a.llm, prompt, &res); err != nil {
		return Opinion{}, fmt.Errorf("social sentiment generation failed: %w", err)
	}

	return Opinion{
		Score:     clampScore(res.Score),
		Label:     normalizeLabel(res.Label),
		Reasoning: res.Reasoning,
		Fields: map[string]interface{}{
			"mentions": stats.Mentions,
			"upvotes":  stats.Upvotes,
			"rank":     stats.Rank,
		},
	}, nil
}
