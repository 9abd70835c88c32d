package core

import (
	"fmt"
	"sync"
	"time"
)

// State is the mutable aggregate threaded through a single pipeline run. A
// State is created fresh per query and owned by exactly one run; it is never
// shared across sessions. It is nevertheless safe for concurrent access so
// stages are free to fan work out internally.
//
// Contract:
//   - The routing decision is set exactly once
//   - Stage output keys, once written, are never overwritten
//   - Output iteration order equals execution order
//   - Accessors return defensive copies to avoid external mutation
type State struct {
	SessionID string
	RunID     string
	Query     string
	Started   time.Time

	mu          sync.RWMutex
	decision    *RoutingDecision
	memory      []Record
	outputs     map[StageID]any
	outputOrder []StageID
	response    string
	diagnostics []string
}

// NewState constructs the run state for a query. It is the only fatal entry
// point: an empty query is rejected before any state exists.
func NewState(sessionID, runID, query string) (*State, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	return &State{
		SessionID: sessionID,
		RunID:     runID,
		Query:     query,
		Started:   time.Now().UTC(),
		outputs:   map[StageID]any{},
	}, nil
}

// SetDecision records the routing decision. It may be called exactly once.
// The stored decision does not alias the caller's target-stage slice.
func (s *State) SetDecision(d RoutingDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decision != nil {
		return fmt.Errorf("routing decision already set")
	}
	if d.TargetStages != nil {
		d.TargetStages = append([]string(nil), d.TargetStages...)
	}
	s.decision = &d
	return nil
}

// Decision returns the routing decision and whether one has been set.
func (s *State) Decision() (RoutingDecision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.decision == nil {
		return RoutingDecision{}, false
	}
	d := *s.decision
	if d.TargetStages != nil {
		d.TargetStages = append([]string(nil), d.TargetStages...)
	}
	return d, true
}

// SetMemoryContext replaces the retrieved prior records (most recent last).
func (s *State) SetMemoryContext(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = make([]Record, len(records))
	copy(s.memory, records)
}

// MemoryContext returns a copy of the retrieved prior records.
func (s *State) MemoryContext() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]Record, len(s.memory))
	copy(records, s.memory)
	return records
}

// SetOutput stores a stage's output under its canonical identifier. Writing
// the same key twice within a run is rejected.
func (s *State) SetOutput(id StageID, output any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.outputs[id]; exists {
		return fmt.Errorf("output for stage %s already set", id)
	}
	s.outputs[id] = output
	s.outputOrder = append(s.outputOrder, id)
	return nil
}

// Output returns the stored output for a stage and whether it exists.
func (s *State) Output(id StageID) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.outputs[id]
	return v, ok
}

// OutputOrder returns the stage identifiers in execution order.
func (s *State) OutputOrder() []StageID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order := make([]StageID, len(s.outputOrder))
	copy(order, s.outputOrder)
	return order
}

// SetResponse records the final synthesized response.
func (s *State) SetResponse(response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response = response
}

// Response returns the final synthesized response (empty until synthesis).
func (s *State) Response() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.response
}

// AddDiagnostic appends a non-fatal degradation note (fallback taken, stage
// skipped). Diagnostics are surfaced to the caller alongside the response.
func (s *State) AddDiagnostic(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagnostics = append(s.diagnostics, fmt.Sprintf(format, args...))
}

// Diagnostics returns a copy of the recorded diagnostic notes.
func (s *State) Diagnostics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	notes := make([]string, len(s.diagnostics))
	copy(notes, s.diagnostics)
	return notes
}

// ResearchReport returns the typed ResearchAnalyst output if present.
func (s *State) ResearchReport() (ResearchReport, bool) {
	v, ok := s.Output(StageResearchAnalyst)
	if !ok {
		return ResearchReport{}, false
	}
	r, ok := v.(ResearchReport)
	return r, ok
}

// Hypothesis returns the typed HypothesisGenerator output if present.
func (s *State) Hypothesis() (Hypothesis, bool) {
	v, ok := s.Output(StageHypothesisGenerator)
	if !ok {
		return Hypothesis{}, false
	}
	h, ok := v.(Hypothesis)
	return h, ok
}

// ExperimentPlan returns the typed ExperimentDesigner output if present.
func (s *State) ExperimentPlan() (ExperimentPlan, bool) {
	v, ok := s.Output(StageExperimentDesigner)
	if !ok {
		return ExperimentPlan{}, false
	}
	p, ok := v.(ExperimentPlan)
	return p, ok
}
