package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ticker-sentiment/internal/agent"
	"github.com/user/ticker-sentiment/internal/aggregator"
)

func sampleAggregation() aggregator.Aggregation {
	return aggregator.Aggregation{
		Score:      0.545,
		Label:      aggregator.LabelPositive,
		Confidence: 0.6739,
	}
}

func sampleDebate() agent.DebateResult {
	return agent.DebateResult{
		BullCase:   "Earnings momentum.",
		BearCase:   "Valuation stretch.",
		Resolution: "Bulls edge it.",
		KeyDrivers: []string{"earnings"},
	}
}

func TestBuild_AllSourcesPresentWithDefaults(t *testing.T) {
	// only two of the four agents produced opinions
	opinions := map[agent.Source]agent.Opinion{
		agent.SourceNews: {
			Source:    agent.SourceNews,
			Score:     0.7,
			Label:     agent.LabelPositive,
			Reasoning: "good press",
			Fields:    map[string]interface{}{"sources": 5, "key_themes": []string{"earnings"}},
		},
		agent.SourceAnalyst: {
			Source:    agent.SourceAnalyst,
			Score:     0.6,
			Label:     agent.LabelPositive,
			Reasoning: "upgrades",
			Fields:    map[string]interface{}{"buy_count": 3, "hold_count": 1, "sell_count": 0},
		},
	}

	rep := Build("AAPL", opinions, sampleAggregation(), sampleDebate(), "Looks good.", aggregator.DefaultWeights())

	assert.Equal(t, "AAPL", rep.Ticker)
	assert.Equal(t, "POSITIVE", rep.SentimentLabel)
	assert.InDelta(t, 0.545, rep.SentimentScore, 1e-9)
	assert.InDelta(t, 0.6739, rep.Confidence, 1e-9)
	assert.Equal(t, "Looks good.", rep.Summary)
	assert.False(t, rep.Timestamp.IsZero())

	require.Len(t, rep.Sources, 4)

	// populated sources carry opinion plus auxiliary fields
	news := rep.Sources["news_sentiment"]
	assert.Equal(t, 0.7, news["score"])
	assert.Equal(t, "good press", news["reasoning"])
	assert.Equal(t, 5, news["sources"])

	analyst := rep.Sources["analyst_buzz"]
	assert.Equal(t, 3, analyst["buy_count"])

	// absent sources default to neutral
	social := rep.Sources["social_sentiment"]
	assert.Equal(t, 0.0, social["score"])
	assert.Equal(t, agent.LabelNeutral, social["label"])
	assert.Equal(t, "", social["reasoning"])

	// weights recorded for every source
	require.Len(t, rep.Weights, 4)
	assert.InDelta(t, 0.35, rep.Weights["analyst_buzz"], 1e-9)
	assert.InDelta(t, 0.20, rep.Weights["web_search"], 1e-9)
}

func TestWriteFile(t *testing.T) {
	rep := Build("AAPL", nil, sampleAggregation(), sampleDebate(), "Summary.", aggregator.DefaultWeights())

	dir := filepath.Join(t.TempDir(), "reports")
	path, err := rep.WriteFile(dir)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "AAPL_"))
	assert.True(t, strings.HasSuffix(path, ".json"))
	// timestamps must be filename-safe
	assert.NotContains(t, filepath.Base(path), ":")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "AAPL", decoded.Ticker)
	assert.Equal(t, "POSITIVE", decoded.SentimentLabel)
	assert.Len(t, decoded.Sources, 4)
}
