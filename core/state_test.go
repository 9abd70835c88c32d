package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateRejectsEmptyQuery(t *testing.T) {
	_, err := NewState("s", "r", "")
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestStateDecisionSetOnce(t *testing.T) {
	state, err := NewState("s", "r", "q")
	require.NoError(t, err)

	_, ok := state.Decision()
	assert.False(t, ok)

	require.NoError(t, state.SetDecision(RoutingDecision{Category: CategoryDesign}))
	require.Error(t, state.SetDecision(RoutingDecision{Category: CategoryPlanning}))

	decision, ok := state.Decision()
	require.True(t, ok)
	assert.Equal(t, CategoryDesign, decision.Category)
}

func TestStateDecisionDoesNotAliasTargetStages(t *testing.T) {
	state, err := NewState("s", "r", "q")
	require.NoError(t, err)

	targets := []string{"research_analyst"}
	require.NoError(t, state.SetDecision(RoutingDecision{
		Category:     CategoryConceptual,
		TargetStages: targets,
	}))

	// Rewriting the caller's slice after the decision is stored must not
	// change the stored decision.
	targets[0] = "mutated"
	decision, ok := state.Decision()
	require.True(t, ok)
	assert.Equal(t, []string{"research_analyst"}, decision.TargetStages)

	// Nor does mutating the returned copy.
	decision.TargetStages[0] = "mutated again"
	decision, _ = state.Decision()
	assert.Equal(t, []string{"research_analyst"}, decision.TargetStages)
}

func TestStateOutputsKeepInsertionOrder(t *testing.T) {
	state, err := NewState("s", "r", "q")
	require.NoError(t, err)

	require.NoError(t, state.SetOutput(StageResearchAnalyst, "a"))
	require.NoError(t, state.SetOutput(StageSynthesizer, "b"))
	require.Error(t, state.SetOutput(StageResearchAnalyst, "again"), "keys are write-once")

	assert.Equal(t, []StageID{StageResearchAnalyst, StageSynthesizer}, state.OutputOrder())

	v, ok := state.Output(StageResearchAnalyst)
	require.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestStateMemoryContextIsCopied(t *testing.T) {
	state, err := NewState("s", "r", "q")
	require.NoError(t, err)

	records := []Record{{ID: "1"}}
	state.SetMemoryContext(records)
	records[0].ID = "mutated"

	got := state.MemoryContext()
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got[0].ID = "mutated again"
	assert.Equal(t, "1", state.MemoryContext()[0].ID)
}

func TestStateTypedAccessors(t *testing.T) {
	state, err := NewState("s", "r", "q")
	require.NoError(t, err)

	_, ok := state.Hypothesis()
	assert.False(t, ok)

	require.NoError(t, state.SetOutput(StageHypothesisGenerator, Hypothesis{Statement: "h"}))
	h, ok := state.Hypothesis()
	require.True(t, ok)
	assert.Equal(t, "h", h.Statement)
}

func TestStateConcurrentAccess(t *testing.T) {
	state, err := NewState("s", "r", "q")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state.AddDiagnostic("note")
			_ = state.Diagnostics()
			_ = state.OutputOrder()
		}()
	}
	wg.Wait()
	assert.Len(t, state.Diagnostics(), 16)
}
