package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/internal/util"
	"github.com/researchpilot/researchpilot/logging"
	"github.com/researchpilot/researchpilot/model"
	"github.com/researchpilot/researchpilot/scoring"
)

const designerInstructions = "You are an experiment designer. You turn hypotheses into concrete, " +
	"feasible experiment plans with steps, resources and a duration. Always answer with a single " +
	"JSON object and nothing else."

// ExperimentDesignerOptions configures the ExperimentDesigner stage.
type ExperimentDesignerOptions struct {
	Logger logging.Logger
}

// ExperimentDesigner turns the current hypothesis (or, absent one, the raw
// query) into an experiment plan, then grades its feasibility and fills in a
// duration estimate when the model omitted one.
type ExperimentDesigner struct {
	*core.LoggerAdapter
	model model.Model
}

// NewExperimentDesigner constructs the experiment designer stage.
func NewExperimentDesigner(m model.Model, optFns ...func(o *ExperimentDesignerOptions)) *ExperimentDesigner {
	opts := ExperimentDesignerOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ExperimentDesigner{
		LoggerAdapter: core.NewLoggerAdapter(opts.Logger),
		model:         m,
	}
}

// ID returns the canonical stage identifier.
func (s *ExperimentDesigner) ID() core.StageID { return core.StageExperimentDesigner }

// Run produces the ExperimentPlan output.
func (s *ExperimentDesigner) Run(ctx context.Context, state *core.State) error {
	subject := "Investigate: " + state.Query
	if hypothesis, ok := state.Hypothesis(); ok && hypothesis.Statement != "" {
		subject = hypothesis.Statement
	}

	prompt := fmt.Sprintf(`Design an experiment to test this hypothesis.

Hypothesis: %s

Respond with JSON:
{"feasibility": "high|medium|low", "steps": ["step1"], "resources": ["resource1"], "duration": "X months", "challenges": ["challenge1"]}`,
		subject)

	resp, err := s.model.Generate(ctx, model.Request{Instructions: designerInstructions, Prompt: prompt})
	if err != nil {
		return core.NewExternalCallError(s.ID(), "experiment design", err)
	}

	var plan core.ExperimentPlan
	if err := json.Unmarshal([]byte(util.CleanJSONResponse(resp.Text)), &plan); err != nil || len(plan.Steps) == 0 {
		state.AddDiagnostic("experiment design unparseable, using template plan")
		plan = fallbackPlan(subject)
	}

	if plan.Duration == "" {
		plan.Duration = scoring.EstimateDuration(plan.Steps).Duration
	}
	plan.Score = scoring.Feasibility(plan)
	// The model's self-assessment yields to the computed grade.
	plan.Feasibility = plan.Score.Category
	s.LogInfo("experiment designed", "steps", len(plan.Steps), "feasibility", plan.Feasibility, "duration", plan.Duration)

	return state.SetOutput(s.ID(), plan)
}

// fallbackPlan is the deterministic minimal protocol used when the model
// output is unusable.
func fallbackPlan(subject string) core.ExperimentPlan {
	return core.ExperimentPlan{
		Steps: []string{
			"Conduct a literature review of prior work on: " + util.Truncate(subject, 100),
			"Define measurable success criteria and select baselines",
			"Implement the proposed approach as a prototype",
			"Run a controlled evaluation against the baselines",
			"Analyze results and document conclusions",
		},
		Resources:  []string{"compute budget", "benchmark datasets", "one researcher"},
		Challenges: []string{"reproducing published baselines"},
	}
}
