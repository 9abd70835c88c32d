package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/model"
)

func TestClassifyParsesDecision(t *testing.T) {
	m := model.NewMockModel("router")
	m.AddResponse("Classify this research query",
		`{"query_type": "planning", "confidence": "high", "reasoning": "wants a full plan", "needs_memory": false, "is_followup": false, "target_stages": ["research_analyst", "synthesizer"]}`)

	c := New(m, nil)
	decision, err := c.Classify(context.Background(), "Plan my PhD research on diffusion models", nil)
	require.NoError(t, err)

	assert.Equal(t, core.CategoryPlanning, decision.Category)
	assert.Equal(t, core.ConfidenceHigh, decision.Confidence)
	assert.False(t, decision.NeedsMemory)
	assert.Equal(t, []string{"research_analyst", "synthesizer"}, decision.TargetStages)
}

// captureLogger records debug calls so the key/value discipline of log sites
// can be asserted.
type captureLogger struct {
	msgs []string
	args [][]any
}

func (c *captureLogger) Debug(msg string, args ...any) {
	c.msgs = append(c.msgs, msg)
	c.args = append(c.args, args)
}
func (c *captureLogger) Info(string, ...any)  {}
func (c *captureLogger) Warn(string, ...any)  {}
func (c *captureLogger) Error(string, ...any) {}

func TestClassifyLogsKeyValuePairs(t *testing.T) {
	m := model.NewMockModel("router")
	m.AddResponse("Classify this research query",
		`{"query_type": "design", "confidence": "high", "reasoning": "", "needs_memory": false, "is_followup": false, "target_stages": []}`)

	logger := &captureLogger{}
	c := New(m, logger)
	_, err := c.Classify(context.Background(), "How should I structure the study?", nil)
	require.NoError(t, err)

	require.NotEmpty(t, logger.msgs)
	last := len(logger.msgs) - 1
	assert.NotContains(t, logger.msgs[last], "%")
	assert.Contains(t, logger.args[last], "category")
	assert.Contains(t, logger.args[last], core.CategoryDesign)
}

func TestClassifyStripsMarkdownFences(t *testing.T) {
	m := model.NewMockModel("router")
	m.AddResponse("Classify this research query",
		"```json\n{\"query_type\": \"design\", \"confidence\": \"medium\", \"reasoning\": \"\", \"needs_memory\": false, \"is_followup\": false, \"target_stages\": []}\n```")

	c := New(m, nil)
	decision, err := c.Classify(context.Background(), "How should I structure the study?", nil)
	require.NoError(t, err)
	assert.Equal(t, core.CategoryDesign, decision.Category)
}

func TestClassifyUndecodableOutputIsAmbiguous(t *testing.T) {
	m := model.NewMockModel("router")
	m.AddResponse("Classify this research query", "I think this is about science.")

	c := New(m, nil)
	_, err := c.Classify(context.Background(), "foobar123", nil)
	require.ErrorIs(t, err, core.ErrClassificationAmbiguous)
}

func TestClassifyModelFailureIsExternal(t *testing.T) {
	m := model.NewMockModel("router")
	m.FailWith(errors.New("502 bad gateway"))

	c := New(m, nil)
	_, err := c.Classify(context.Background(), "anything", nil)

	var extErr *core.ExternalCallError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "classify", extErr.Op)
}

func TestClassifyInvalidConfidenceDefaultsToMedium(t *testing.T) {
	m := model.NewMockModel("router")
	m.AddResponse("Classify this research query",
		`{"query_type": "conceptual", "confidence": "very sure", "reasoning": "", "needs_memory": false, "is_followup": false, "target_stages": []}`)

	c := New(m, nil)
	decision, err := c.Classify(context.Background(), "What is attention?", nil)
	require.NoError(t, err)
	assert.Equal(t, core.ConfidenceMedium, decision.Confidence)
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want core.Category
	}{
		{"conceptual", core.CategoryConceptual},
		{" Planning ", core.CategoryPlanning},
		{"DESIGN", core.CategoryDesign},
		{"a design question", core.CategoryDesign},
		{"theoretical", core.CategoryConceptual},
		{"code question", core.CategoryImplementation},
		{"research roadmap", core.CategoryPlanning},
	}
	for _, tt := range tests {
		got, err := NormalizeCategory(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	_, err := NormalizeCategory("foobar123")
	require.ErrorIs(t, err, core.ErrClassificationAmbiguous)
}

func TestNeedsMemory(t *testing.T) {
	history := []core.Record{{ID: "1", Timestamp: time.Now()}}

	tests := []struct {
		name       string
		query      string
		memory     []core.Record
		saysMemory bool
		saysFollow bool
		want       bool
	}{
		{"indicator in query", "refine it based on what we discussed earlier", nil, false, false, true},
		{"model wants memory", "new question", history, true, false, true},
		{"followup with history", "and then?", history, false, true, true},
		{"followup without history", "and then?", nil, false, true, false},
		{"plain query", "what is a transformer?", history, false, false, false},
		{"model wants memory without history", "new question", nil, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsMemory(tt.query, tt.memory, tt.saysMemory, tt.saysFollow))
		})
	}
}
