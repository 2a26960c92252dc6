package pipeline

import (
	"github.com/user/ticker-sentiment/internal/agent"
	"github.com/user/ticker-sentiment/internal/aggregator"
	"github.com/user/ticker-sentiment/internal/report"
)

// State is the single carrier threaded through the pipeline. Fields are
// only ever populated, never retracted, each by exactly one stage; no stage
// reads a field before its producing stage has run.
type State struct {
	Ticker string

	News    *agent.Opinion
	Social  *agent.Opinion
	Analyst *agent.Opinion
	Web     *agent.Opinion

	Debate      *agent.DebateResult
	Aggregation *aggregator.Aggregation
	Summary     string
	Report      *report.Report
}

// setOpinion stores the opinion produced for a source.
func (s *State) setOpinion(src agent.Source, op agent.Opinion) {
	switch src {
	case agent.SourceNews:
		s.News = &op
	case agent.SourceSocial:
		s.Social = &op
	case agent.SourceAnalyst:
		s.Analyst = &op
	case agent.SourceWeb:
		s.Web = &op
	}
}

// opinions returns the opinions populated so far, keyed by source.
func (s *State) opinions() map[agent.Source]agent.Opinion {
	out := make(map[agent.Source]agent.Opinion, 4)
	for src, op := range map[agent.Source]*agent.Opinion{
		agent.SourceNews:    s.News,
		agent.SourceSocial:  s.Social,
		agent.SourceAnalyst: s.Analyst,
		agent.SourceWeb:     s.Web,
	} {
		if op != nil {
			out[src] = *op
		}
	}
	return out
}
