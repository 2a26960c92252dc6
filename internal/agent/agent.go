// Package agent implements the sentiment stages of the pipeline. Each
// Opinion agent turns one evidence source into a normalized Opinion; the
// debate and summary stages synthesize across them.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Source identifies one evidence source / Opinion agent.
type Source string

const (
	SourceNews    Source = "news_sentiment"
	SourceSocial  Source = "social_sentiment"
	SourceAnalyst Source = "analyst_buzz"
	SourceWeb     Source = "web_search"
)

// Sources returns all Opinion sources in pipeline execution order. The
// order is a correctness invariant, not a presentation detail: it is the
// order the controller runs the agents in.
func Sources() []Source {
	return []Source{SourceNews, SourceSocial, SourceAnalyst, SourceWeb}
}

// Opinion labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Opinion is the normalized output of one sentiment agent.
type Opinion struct {
	Source    Source
	Score     float64 // always within [-1, 1]
	Label     string
	Reasoning string
	Fields    map[string]interface{} // source-specific auxiliary data
	Err       string                 // populated only when the agent fell back after a failure
}

// Agent is the common shape of the four Opinion stages.
type Agent interface {
	// Name returns the agent's source identifier.
	Name() Source

	// Run produces an Opinion for the ticker. It may fail; callers that
	// need isolation use SafeRun.
	Run(ctx context.Context, ticker string) (Opinion, error)
}

// SafeRun wraps Run so one failing agent never takes down the pipeline: any
// error (or panic) becomes a neutral fallback Opinion with Err populated.
func SafeRun(ctx context.Context, a Agent, ticker string) (op Opinion) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("agent", string(a.Name())).Str("ticker", ticker).
				Interface("panic", r).Msg("agent panicked")
			op = fallbackOpinion(a.Name(), fmt.Errorf("panic: %v", r))
		}
	}()

	op, err := a.Run(ctx, ticker)
	if err != nil {
		log.Error().Err(err).Str("agent", string(a.Name())).Str("ticker", ticker).
			Msg("agent failed")
		return fallbackOpinion(a.Name(), err)
	}
	op.Source = a.Name()
	return op
}

func fallbackOpinion(src Source, err error) Opinion {
	return Opinion{
		Source:    src,
		Score:     0.0,
		Label:     LabelNeutral,
		Reasoning: fmt.Sprintf("Agent failed: %v", err),
		Err:       err.Error(),
	}
}

// clampScore forces a score into [-1, 1], defending against the LLM
// violating its contract.
func clampScore(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	if s < -1.0 {
		return -1.0
	}
	return s
}

// normalizeLabel lowercases a model-returned label and defaults anything
// unrecognized to neutral.
func normalizeLabel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case LabelPositive:
		return LabelPositive
	case LabelNegative:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// opinionResponse is the structured result every Opinion prompt asks for.
type opinionResponse struct {
	Score     float64  `json:"score"`
	Label     string   `json:"label"`
	Reasoning string   `json:"reasoning"`
	KeyThemes []string `json:"key_themes,omitempty"`
}
