package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ticker-sentiment/internal/report"
	"github.com/user/ticker-sentiment/pkg/config"
)

// stubRunner stands in for the pipeline.
type stubRunner struct {
	report *report.Report
	err    error
	ticker string
}

func (s *stubRunner) Run(_ context.Context, ticker string) (*report.Report, error) {
	s.ticker = ticker
	return s.report, s.err
}

func newTestServer(runner *stubRunner) *Server {
	return NewServer(runner, &config.Config{})
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&stubRunner{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var res HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "healthy", res.Status)
	assert.NotEmpty(t, res.Timestamp)
}

func TestHandleAnalyze(t *testing.T) {
	runner := &stubRunner{report: &report.Report{
		Ticker:         "AAPL",
		Timestamp:      time.Now().UTC(),
		SentimentLabel: "POSITIVE",
		SentimentScore: 0.545,
		Confidence:     0.6739,
	}}
	s := newTestServer(runner)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"ticker": "AAPL"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AAPL", runner.ticker)

	var res report.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "POSITIVE", res.SentimentLabel)
	assert.InDelta(t, 0.545, res.SentimentScore, 1e-9)
}

func TestHandleAnalyze_MissingTicker(t *testing.T) {
	s := newTestServer(&stubRunner{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ticker is required")
}

func TestHandleAnalyze_PipelineError(t *testing.T) {
	s := newTestServer(&stubRunner{err: errors.New(`invalid ticker symbol: "123"`)})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"ticker": "123"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid ticker symbol")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&stubRunner{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze", nil)
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
