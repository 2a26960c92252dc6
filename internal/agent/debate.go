package agent

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/user/ticker-sentiment/internal/llm"
)

// DebateResult is the structured output of the bull vs bear debate.
type DebateResult struct {
	BullCase   string   `json:"bull_case"`
	BearCase   string   `json:"bear_case"`
	Resolution string   `json:"resolution"`
	KeyDrivers []string `json:"key_drivers"`
}

// Debater runs a bull vs bear debate over all agent opinions once they are
// known. Having the LLM adjudicate conflicting signals produces a better
// synthesis than averaging scores blindly.
type Debater struct {
	llm llm.Client
}

// NewDebater creates a debate stage.
func NewDebater(client llm.Client) *Debater {
	return &Debater{llm: client}
}

// condensedOpinion strips an Opinion down to what the debate prompt needs;
// auxiliary fields are excluded.
type condensedOpinion struct {
	Score     float64 `json:"score"`
	Label     string  `json:"label"`
	Reasoning string  `json:"reasoning"`
}

// Run produces the debate synthesis. The debate is nice-to-have, not
// critical: on any failure it returns a fixed neutral fallback and never
// aborts the pipeline.
func (d *Debater) Run(ctx context.Context, ticker string, opinions map[Source]Opinion) DebateResult {
	condensed := make(map[Source]condensedOpinion, len(opinions))
	for src, op := range opinions {
		condensed[src] = condensedOpinion{
			Score:     op.Score,
			Label:     op.Label,
			Reasoning: op.Reasoning,
		}
	}

	summary, err := json.MarshalIndent(condensed, "", "  ")
	if err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("debate summary marshal failed")
		return fallbackDebate()
	}

	var result DebateResult
	if err := llm.GenerateJSON(ctx, d.llm, buildDebatePrompt(ticker, string(summary)), &result); err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("debate generation failed")
		return fallbackDebate()
	}
	return result
}

func fallbackDebate() DebateResult {
	return DebateResult{
		BullCase:   "Positive signals from multiple sources.",
		BearCase:   "Some uncertainty remains.",
		Resolution: "Debate unavailable.",
		KeyDrivers: []string{},
	}
}
