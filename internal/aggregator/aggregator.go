// Package aggregator fuses the per-source sentiment opinions into one
// composite score, label, and confidence. Purely arithmetic — no I/O, no
// LLM calls, deterministic for identical inputs.
package aggregator

import (
	"math"

	"github.com/user/ticker-sentiment/internal/agent"
)

// Composite label thresholds.
const (
	positiveThreshold = 0.15
	negativeThreshold = -0.15
)

// Composite sentiment labels.
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
)

// Weights holds the per-source weights. They need not sum to 1.0; Run
// normalizes by the weight total.
type Weights struct {
	News    float64 `json:"news_sentiment"`
	Social  float64 `json:"social_sentiment"`
	Analyst float64 `json:"analyst_buzz"`
	Web     float64 `json:"web_search"`
}

// DefaultWeights returns the standard source weighting.
func DefaultWeights() Weights {
	return Weights{News: 0.30, Social: 0.15, Analyst: 0.35, Web: 0.20}
}

// For returns the weight configured for a source.
func (w Weights) For(src agent.Source) float64 {
	switch src {
	case agent.SourceNews:
		return w.News
	case agent.SourceSocial:
		return w.Social
	case agent.SourceAnalyst:
		return w.Analyst
	case agent.SourceWeb:
		return w.Web
	default:
		return 0.0
	}
}

// SourceBreakdown is the per-source record kept for transparency.
type SourceBreakdown struct {
	Score     float64 `json:"score"`
	Label     string  `json:"label"`
	Weight    float64 `json:"weight"`
	Reasoning string  `json:"reasoning"`
}

// Aggregation is the fused verdict.
type Aggregation struct {
	Score      float64                          `json:"sentiment_score"`
	Label      string                           `json:"sentiment_label"`
	Confidence float64                          `json:"confidence"`
	Breakdown  map[agent.Source]SourceBreakdown `json:"sources"`
}

// Aggregator computes weighted score fusion over agent opinions.
type Aggregator struct {
	weights Weights
}

// New creates an aggregator with the given weights.
func New(weights Weights) *Aggregator {
	return &Aggregator{weights: weights}
}

// Weights returns the configured weights.
func (a *Aggregator) Weights() Weights {
	return a.weights
}

// Run fuses the opinions into one Aggregation. A source absent from the
// map still consumes its full configured weight at score 0.0 — missing
// means neutral, not excluded.
func (a *Aggregator) Run(opinions map[agent.Source]agent.Opinion) Aggregation {
	composite := 0.0
	totalWeight := 0.0
	breakdown := make(map[agent.Source]SourceBreakdown, 4)

	for _, src := range agent.Sources() {
		weight := a.weights.For(src)
		op := opinions[src]

		composite += op.Score * weight
		totalWeight += weight

		label := op.Label
		if label == "" {
			label = agent.LabelNeutral
		}
		breakdown[src] = SourceBreakdown{
			Score:     round4(op.Score),
			Label:     label,
			Weight:    weight,
			Reasoning: op.Reasoning,
		}
	}

	// normalize in case the weights don't sum to 1
	if totalWeight > 0 {
		composite /= totalWeight
	}
	composite = round4(clamp(composite))

	return Aggregation{
		Score:      composite,
		Label:      scoreToLabel(composite),
		Confidence: confidence(composite, opinions),
		Breakdown:  breakdown,
	}
}

// confidence combines two independent signals:
//  1. signal strength — a stronger composite is more trustworthy
//  2. agent agreement — if all sources point the same way, confidence goes
//     up; if they're all over the place, it goes down
//
// The 0.3 floor keeps confidence above zero even for weak, disagreeing
// signals: there is always irreducible baseline uncertainty.
func confidence(composite float64, opinions map[agent.Source]agent.Opinion) float64 {
	var scores []float64
	for _, op := range opinions {
		scores = append(scores, op.Score)
	}

	agreement := 0.5
	if len(scores) > 1 {
		mean := 0.0
		for _, s := range scores {
			mean += s
		}
		mean /= float64(len(scores))

		variance := 0.0
		for _, s := range scores {
			variance += (s - mean) * (s - mean)
		}
		spread := math.Sqrt(variance / float64(len(scores)))

		// spread ranges from 0 (perfect agreement) to ~1 (total
		// disagreement); agreement is 1.0 at spread 0 and floors at 0.3
		agreement = math.Max(0.3, 1.0-spread*0.7)
	}

	signalStrength := math.Min(math.Abs(composite)*1.2, 1.0)
	return round4(math.Min((0.3+signalStrength*0.7)*agreement, 1.0))
}

// scoreToLabel maps a composite score to its label via fixed thresholds.
func scoreToLabel(score float64) string {
	switch {
	case score >= positiveThreshold:
		return LabelPositive
	case score <= negativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

func clamp(s float64) float64 {
	return math.Max(-1.0, math.Min(1.0, s))
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
