package core

import "context"

// StageID is the canonical identifier of a pipeline stage. Routing tables and
// stage registries are defined exclusively over StageID values; free-text
// names from upstream components must be mapped through a resolver before
// they reach dispatch.
type StageID string

const (
	// StageMemoryRetrieval loads prior session records into the run state.
	StageMemoryRetrieval StageID = "memory_retrieval"
	// StageResearchAnalyst performs literature search plus trend/gap analysis.
	StageResearchAnalyst StageID = "research_analyst"
	// StageHypothesisGenerator formulates a hypothesis and scores its novelty.
	StageHypothesisGenerator StageID = "hypothesis_generator"
	// StageExperimentDesigner plans an experiment and scores feasibility.
	StageExperimentDesigner StageID = "experiment_designer"
	// StageSynthesizer merges stage outputs into the final response.
	StageSynthesizer StageID = "synthesizer"
	// StageMemoryUpdate persists the completed interaction.
	StageMemoryUpdate StageID = "memory_update"
)

// StageIDs lists every canonical stage identifier.
func StageIDs() []StageID {
	return []StageID{
		StageMemoryRetrieval,
		StageResearchAnalyst,
		StageHypothesisGenerator,
		StageExperimentDesigner,
		StageSynthesizer,
		StageMemoryUpdate,
	}
}

// String returns the canonical name.
func (id StageID) String() string { return string(id) }

// Valid reports whether the value is one of the canonical identifiers.
func (id StageID) Valid() bool {
	switch id {
	case StageMemoryRetrieval, StageResearchAnalyst, StageHypothesisGenerator,
		StageExperimentDesigner, StageSynthesizer, StageMemoryUpdate:
		return true
	}
	return false
}

// Stage is a single specialist processing step. Implementations read from and
// write to the supplied State and must respect context cancellation on any
// blocking call. A returned error marks the stage invocation as failed; the
// dispatcher decides whether to retry or skip, so implementations should not
// attempt their own retry loops.
type Stage interface {
	ID() StageID
	Run(ctx context.Context, state *State) error
}
