package agent

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/user/ticker-sentiment/internal/llm"
)

// summaryFallback is returned when summary generation fails; the stage
// degrades silently rather than aborting the pipeline.
const summaryFallback = "Summary unavailable."

// Summarizer produces the final natural-language summary of the fused
// result, as free text rather than structured output.
type Summarizer struct {
	llm llm.Client
}

// NewSummarizer creates a summary stage.
func NewSummarizer(client llm.Client) *Summarizer {
	return &Summarizer{llm: client}
}

// Run generates a short narrative for the composite verdict. Never fails.
func (s *Summarizer) Run(ctx context.Context, ticker string, score float64, label string, confidence float64, resolution string) string {
	prompt := buildSummaryPrompt(ticker, score, label, confidence, resolution)

	summary, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("summary generation failed")
		return summaryFallback
	}
	if summary == "" {
		return summaryFallback
	}
	return summary
}
