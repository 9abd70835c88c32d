package researchpilot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/dispatch"
	"github.com/researchpilot/researchpilot/model"
)

type noSearcher struct{}

func (noSearcher) Search(context.Context, string, int) (core.LiteratureSummary, error) {
	return core.LiteratureSummary{}, nil
}

func newTestPlanner(t *testing.T, m model.Model) *Planner {
	t.Helper()
	p, err := New(m, func(o *Options) {
		o.Searcher = noSearcher{}
		o.DispatchOptions = []func(o *dispatch.Options){func(o *dispatch.Options) {
			o.MaxRetries = 0
			o.InitialBackoff = time.Millisecond
		}}
	})
	require.NoError(t, err)
	return p
}

func TestPlannerRunImplementationQuery(t *testing.T) {
	m := model.NewMockModel("planner")
	m.AddResponse("Classify this research query",
		`{"query_type": "implementation", "confidence": "high", "reasoning": "how-to", "needs_memory": false, "is_followup": false, "target_stages": ["experiment_designer"]}`)
	m.AddResponse("Design an experiment",
		`{"feasibility": "high", "steps": ["set up environment", "run benchmark", "analyze results"], "resources": ["laptop"], "duration": "2 weeks", "challenges": []}`)
	m.AddResponse("cohesive answer", "Here is how to benchmark it.")

	p := newTestPlanner(t, m)

	result, err := p.Run(context.Background(), "", "How do I benchmark attention kernels?")
	require.NoError(t, err)

	assert.Equal(t, core.CategoryImplementation, result.Category)
	assert.Equal(t, "Here is how to benchmark it.", result.Response)
	assert.Equal(t,
		[]core.StageID{core.StageExperimentDesigner, core.StageSynthesizer, core.StageMemoryUpdate},
		result.Executed)
	assert.NotEmpty(t, result.SessionID, "empty session id is replaced")

	records, err := p.Memory().RetrieveRelevant(result.SessionID, "benchmark", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPlannerSessionCarriesMemory(t *testing.T) {
	m := model.NewMockModel("planner")
	m.AddResponse("Classify this research query",
		`{"query_type": "conceptual", "confidence": "high", "reasoning": "theory", "needs_memory": true, "is_followup": true, "target_stages": []}`)
	m.AddResponse("cohesive answer", "Answer.")

	p := newTestPlanner(t, m)
	session := NewSessionID()

	first, err := p.Run(context.Background(), session, "What is contrastive learning?")
	require.NoError(t, err)
	require.Equal(t, session, first.SessionID)

	second, err := p.Run(context.Background(), session, "Tell me more about what we discussed earlier")
	require.NoError(t, err)
	assert.Contains(t, second.Executed, core.StageMemoryRetrieval)

	records, err := p.Memory().RetrieveRelevant(session, "contrastive", 10)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
