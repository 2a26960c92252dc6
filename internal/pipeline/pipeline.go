// Package pipeline sequences the sentiment stages and assembles the final
// report. The flow is strictly linear:
//
//	news → social → analyst → web → debate → aggregate → summary → report
//
// Each stage makes at most one LLM call before handing the state to the
// next, so calls to the rate-limited service never burst. All resilience
// lives inside the stages; the controller only sequences and assembles.
package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/user/ticker-sentiment/internal/agent"
	"github.com/user/ticker-sentiment/internal/aggregator"
	"github.com/user/ticker-sentiment/internal/report"
)

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// Pipeline runs the full sentiment analysis for one ticker.
type Pipeline struct {
	agents     []agent.Agent // fixed execution order
	debater    *agent.Debater
	aggregator *aggregator.Aggregator
	summarizer *agent.Summarizer
}

// New creates a pipeline. The agents slice must be in execution order; use
// Assemble for the standard wiring.
func New(agents []agent.Agent, debater *agent.Debater, agg *aggregator.Aggregator, summarizer *agent.Summarizer) *Pipeline {
	return &Pipeline{
		agents:     agents,
		debater:    debater,
		aggregator: agg,
		summarizer: summarizer,
	}
}

// Run executes all stages in order and returns the assembled report. The
// only error it can return is an unusable ticker; every downstream failure
// is contained in its stage and surfaces as degraded report content.
func (p *Pipeline) Run(ctx context.Context, ticker string) (*report.Report, error) {
	ticker, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	log.Info().Str("ticker", ticker).Msg("starting sentiment pipeline")
	st := &State{Ticker: ticker}

	for _, ag := range p.agents {
		op := agent.SafeRun(ctx, ag, ticker)
		st.setOpinion(ag.Name(), op)
		log.Info().
			Str("stage", string(ag.Name())).
			Float64("score", op.Score).
			Str("label", op.Label).
			Bool("degraded", op.Err != "").
			Msg("stage complete")
	}

	opinions := st.opinions()

	debate := p.debater.Run(ctx, ticker, opinions)
	st.Debate = &debate
	log.Info().Str("stage", "debate").Str("resolution", truncate(debate.Resolution, 80)).Msg("stage complete")

	agg := p.aggregator.Run(opinions)
	st.Aggregation = &agg
	log.Info().
		Str("stage", "aggregate").
		Float64("score", agg.Score).
		Str("label", agg.Label).
		Float64("confidence", agg.Confidence).
		Msg("stage complete")

	st.Summary = p.summarizer.Run(ctx, ticker, agg.Score, agg.Label, agg.Confidence, debate.Resolution)

	st.Report = report.Build(ticker, opinions, agg, debate, st.Summary, p.aggregator.Weights())

	log.Info().
		Str("ticker", ticker).
		Str("label", agg.Label).
		Float64("score", agg.Score).
		Float64("confidence", agg.Confidence).
		Msg("pipeline complete")
	return st.Report, nil
}

// NormalizeTicker uppercases and trims a ticker symbol, rejecting empty or
// malformed identifiers before they enter the pipeline.
func NormalizeTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if !tickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("invalid ticker symbol: %q", ticker)
	}
	return ticker, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
