package agent

import (
	"context"
	"fmt"

	"github.com/user/ticker-sentiment/internal/llm"
)

// SnippetFetcher supplies web search snippets for a ticker.
type SnippetFetcher interface {
	Snippets(ctx context.Context, ticker, companyName string) []string
}

// CompanyNamer resolves a ticker to a company name, used to sharpen search
// queries. Best effort; implementations return "" when unknown.
type CompanyNamer interface {
	CompanyName(ctx context.Context, ticker string) string
}

// WebAgent scores sentiment from general web search results.
type WebAgent struct {
	llm   llm.Client
	web   SnippetFetcher
	namer CompanyNamer // may be nil
}

// NewWebAgent creates a web search sentiment agent.
func NewWebAgent(client llm.Client, web SnippetFetcher, namer CompanyNamer) *WebAgent {
	return &WebAgent{llm: client, web: web, namer: namer}
}

// Name returns the agent's source identifier.
func (a *WebAgent) Name() Source {
	return SourceWeb
}

// Run searches the web for the ticker and asks the LLM to score the overall
// tone. No results is a fast path to a neutral Opinion, not a failure.
func (a *WebAgent) Run(ctx context.Context, ticker string) (Opinion, error) {
	companyName := ""
	if a.namer != nil {
		companyName = a.namer.CompanyName(ctx, ticker)
	}

	snippets := a.web.Snippets(ctx, ticker, companyName)

	if len(snippets) == 0 {
		return Opinion{
			Score:     0.0,
			Label:     LabelNeutral,
			Reasoning: "No web search results found.",
			Fields:    map[string]interface{}{"snippets_analyzed": 0},
		}, nil
	}

	var res opinionResponse
	if err := llm.GenerateJSON(ctx, a.llm, buildWebPrompt(ticker, snippets), &res); err != nil {
		return Opinion{}, fmt.Errorf("web sentiment generation failed: %w", err)
	}

	return Opinion{
		Score:     clampScore(res.Score),
		Label:     normalizeLabel(res.Label),
		Reasoning: res.Reasoning,
		Fields:    map[string]interface{}{"snippets_analyzed": len(snippets)},
	}, nil
}
