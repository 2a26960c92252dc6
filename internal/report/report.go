// Package report assembles and writes the final sentiment report. This is
// just packaging — no LLM calls happen here.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/ticker-sentiment/internal/agent"
	"github.com/user/ticker-sentiment/internal/aggregator"
)

// Report is the flat, serializable projection of a completed pipeline run.
type Report struct {
	Ticker         string                            `json:"ticker"`
	Timestamp      time.Time                         `json:"timestamp"`
	SentimentLabel string                            `json:"sentiment_label"`
	SentimentScore float64                           `json:"sentiment_score"`
	Confidence     float64                           `json:"confidence"`
	Sources        map[string]map[string]interface{} `json:"sources"`
	Weights        map[string]float64                `json:"weights"`
	Debate         agent.DebateResult                `json:"debate"`
	Summary        string                            `json:"summary"`
}

// Build assembles the report from the pipeline's pieces. Every named source
// appears in the sources section even when its agent produced nothing, with
// neutral defaults.
func Build(ticker string, opinions map[agent.Source]agent.Opinion, agg aggregator.Aggregation, debate agent.DebateResult, summary string, weights aggregator.Weights) *Report {
	sources := make(map[string]map[string]interface{}, 4)
	weightMap := make(map[string]float64, 4)

	for _, src := range agent.Sources() {
		op, ok := opinions[src]
		entry := map[string]interface{}{
			"score":     0.0,
			"label":     agent.LabelNeutral,
			"reasoning": "",
		}
		if ok {
			entry["score"] = op.Score
			entry["label"] = op.Label
			entry["reasoning"] = op.Reasoning
			// include extra fields like mentions, buy_count, etc.
			for k, v := range op.Fields {
				entry[k] = v
			}
		}
		sources[string(src)] = entry
		weightMap[string(src)] = weights.For(src)
	}

	return &Report{
		Ticker:         ticker,
		Timestamp:      time.Now().UTC(),
		SentimentLabel: agg.Label,
		SentimentScore: agg.Score,
		Confidence:     agg.Confidence,
		Sources:        sources,
		Weights:        weightMap,
		Debate:         debate,
		Summary:        summary,
	}
}

// WriteFile saves the report as indented JSON under dir and returns the
// full path written.
func (r *Report) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := strings.NewReplacer(":", "-", "+", "_").Replace(r.Timestamp.Format(time.RFC3339))
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", r.Ticker, stamp))

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
