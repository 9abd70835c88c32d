package stage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/internal/util"
	"github.com/researchpilot/researchpilot/logging"
	"github.com/researchpilot/researchpilot/memory"
)

// responseExcerptLen bounds the stored response excerpt in a session record.
const responseExcerptLen = 150

// MemoryRetrievalOptions configures the MemoryRetrieval stage.
type MemoryRetrievalOptions struct {
	// Limit caps the number of prior records loaded into the run state.
	Limit  int
	Logger logging.Logger
}

// MemoryRetrieval loads relevant prior session records into the run state. It
// only runs when the routing decision asked for memory; read failures degrade
// to an empty context with a diagnostic rather than failing the run.
type MemoryRetrieval struct {
	*core.LoggerAdapter
	store core.MemoryStore
	opts  MemoryRetrievalOptions
}

// NewMemoryRetrieval constructs the memory retrieval stage.
func NewMemoryRetrieval(store core.MemoryStore, optFns ...func(o *MemoryRetrievalOptions)) *MemoryRetrieval {
	opts := MemoryRetrievalOptions{
		Limit: memory.DefaultRetrievalLimit,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MemoryRetrieval{
		LoggerAdapter: core.NewLoggerAdapter(opts.Logger),
		store:         store,
		opts:          opts,
	}
}

// ID returns the canonical stage identifier.
func (s *MemoryRetrieval) ID() core.StageID { return core.StageMemoryRetrieval }

// Run retrieves prior records for the session and stores them as memory
// context. An unreadable store never aborts the run.
func (s *MemoryRetrieval) Run(ctx context.Context, state *core.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records, err := s.store.RetrieveRelevant(state.SessionID, state.Query, s.opts.Limit)
	if err != nil {
		s.LogWarn("memory retrieval failed, continuing without context", "error", err)
		state.AddDiagnostic("memory retrieval failed: %v", err)
		state.SetMemoryContext(nil)
		return nil
	}
	s.LogDebug("memory retrieved", "session", state.SessionID, "records", len(records))
	state.SetMemoryContext(records)
	return nil
}

// MemoryUpdateOptions configures the MemoryUpdate stage.
type MemoryUpdateOptions struct {
	Logger logging.Logger
	// Now supplies record timestamps; overridable in tests.
	Now func() time.Time
}

// MemoryUpdate appends a summary record of the completed run to the session
// memory. It is the terminal stage of every uncancelled run.
type MemoryUpdate struct {
	*core.LoggerAdapter
	store core.MemoryStore
	now   func() time.Time
}

// NewMemoryUpdate constructs the memory update stage.
func NewMemoryUpdate(store core.MemoryStore, optFns ...func(o *MemoryUpdateOptions)) *MemoryUpdate {
	opts := MemoryUpdateOptions{
		Now: func() time.Time { return time.Now().UTC() },
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MemoryUpdate{
		LoggerAdapter: core.NewLoggerAdapter(opts.Logger),
		store:         store,
		now:           opts.Now,
	}
}

// ID returns the canonical stage identifier.
func (s *MemoryUpdate) ID() core.StageID { return core.StageMemoryUpdate }

// Run builds the session record for this run and appends it to the store.
// A write failure is returned so the caller can surface it as a diagnostic;
// the synthesized response is unaffected either way.
func (s *MemoryUpdate) Run(ctx context.Context, state *core.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record := core.Record{
		ID:        util.NewID(),
		SessionID: state.SessionID,
		Timestamp: s.now(),
		Query:     state.Query,
		Response:  util.Truncate(state.Response(), responseExcerptLen),
		Artifacts: buildArtifacts(state),
	}
	if err := s.store.Append(record); err != nil {
		s.LogError("memory update failed", "session", state.SessionID, "error", err)
		return err
	}
	s.LogDebug("memory updated", "session", state.SessionID, "record", record.ID)
	return nil
}

// buildArtifacts collects which stages produced output and the key findings
// worth carrying into future runs.
func buildArtifacts(state *core.State) map[string][]string {
	artifacts := map[string][]string{}

	var stages []string
	for _, id := range state.OutputOrder() {
		stages = append(stages, string(id))
	}
	if len(stages) > 0 {
		artifacts["stages"] = stages
	}

	findings := extractFindings(state)
	if len(findings) > 0 {
		artifacts["findings"] = findings
	}
	return artifacts
}

// extractFindings derives one compact line per substantive stage output.
func extractFindings(state *core.State) []string {
	var findings []string
	if report, ok := state.ResearchReport(); ok {
		if len(report.Trends.Trends) > 0 {
			n := len(report.Trends.Trends)
			if n > 3 {
				n = 3
			}
			findings = append(findings, "Trends: "+strings.Join(report.Trends.Trends[:n], "; "))
		}
		if len(report.Gaps.Opportunities) > 0 {
			findings = append(findings, "Opportunity: "+util.Truncate(report.Gaps.Opportunities[0], 120))
		}
	}
	if hypothesis, ok := state.Hypothesis(); ok && hypothesis.Statement != "" {
		findings = append(findings, "Hypothesis: "+util.Truncate(hypothesis.Statement, 120))
	}
	if plan, ok := state.ExperimentPlan(); ok {
		findings = append(findings, fmt.Sprintf("Experiment: %d steps, %s feasibility", len(plan.Steps), plan.Feasibility))
	}
	return findings
}
