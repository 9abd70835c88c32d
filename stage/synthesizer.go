package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/internal/util"
	"github.com/researchpilot/researchpilot/logging"
	"github.com/researchpilot/researchpilot/model"
)

const synthesizerInstructions = "You are a research writing assistant. You combine analysis " +
	"results into one clear, well-structured answer for the researcher. Answer in plain prose " +
	"with short sections; do not emit JSON."

// SynthesizerOptions configures the Synthesizer stage.
type SynthesizerOptions struct {
	Logger logging.Logger
}

// Synthesizer assembles whatever the earlier stages produced into the final
// response. It always yields a usable answer: when the model is unreachable
// the structured digest of the collected parts becomes the response itself.
type Synthesizer struct {
	*core.LoggerAdapter
	model model.Model
}

// NewSynthesizer constructs the synthesizer stage.
func NewSynthesizer(m model.Model, optFns ...func(o *SynthesizerOptions)) *Synthesizer {
	opts := SynthesizerOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Synthesizer{
		LoggerAdapter: core.NewLoggerAdapter(opts.Logger),
		model:         m,
	}
}

// ID returns the canonical stage identifier.
func (s *Synthesizer) ID() core.StageID { return core.StageSynthesizer }

// Run writes the final response into the state. It never fails the run on a
// model error; the digest fallback keeps the pipeline's output guarantee.
func (s *Synthesizer) Run(ctx context.Context, state *core.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	digest := buildDigest(state)

	prompt := fmt.Sprintf(`Write a cohesive answer to the researcher's question using the collected results.

Question: %s

Collected results:
%s`, state.Query, digest)

	response := digest
	resp, err := s.model.Generate(ctx, model.Request{Instructions: synthesizerInstructions, Prompt: prompt})
	if err != nil {
		s.LogWarn("synthesis model call failed, returning digest", "error", err)
		state.AddDiagnostic("synthesis fell back to the structured digest: %v", err)
	} else if text := strings.TrimSpace(resp.Text); text != "" {
		response = text
	}

	state.SetResponse(response)
	return state.SetOutput(s.ID(), response)
}

// buildDigest renders every available stage result as a titled section. The
// digest doubles as the model prompt material and the fallback response.
func buildDigest(state *core.State) string {
	var sections []string

	if decision, ok := state.Decision(); ok {
		sections = append(sections, fmt.Sprintf("Query type: %s (confidence %s)", decision.Category, decision.Confidence))
	}

	if records := state.MemoryContext(); len(records) > 0 {
		lines := make([]string, 0, len(records))
		for _, r := range records {
			lines = append(lines, fmt.Sprintf("- Previously asked %q: %s", util.Truncate(r.Query, 60), util.Truncate(r.Response, 100)))
		}
		sections = append(sections, "Prior session context:\n"+strings.Join(lines, "\n"))
	}

	if report, ok := state.ResearchReport(); ok {
		var b strings.Builder
		fmt.Fprintf(&b, "Literature: %d papers found.", report.Literature.PapersFound)
		if len(report.Trends.Trends) > 0 {
			fmt.Fprintf(&b, "\nTrends: %s.", strings.Join(report.Trends.Trends, "; "))
		}
		if len(report.Trends.EmergingDirections) > 0 {
			fmt.Fprintf(&b, "\nEmerging directions: %s.", strings.Join(report.Trends.EmergingDirections, "; "))
		}
		if len(report.Gaps.Opportunities) > 0 {
			fmt.Fprintf(&b, "\nOpportunities: %s.", strings.Join(report.Gaps.Opportunities, "; "))
		}
		sections = append(sections, b.String())
	}

	if hypothesis, ok := state.Hypothesis(); ok {
		var b strings.Builder
		fmt.Fprintf(&b, "Hypothesis: %s", hypothesis.Statement)
		if len(hypothesis.TRIZPrinciples) > 0 {
			fmt.Fprintf(&b, "\nInventive principles applied: %s.", strings.Join(hypothesis.TRIZPrinciples, "; "))
		}
		fmt.Fprintf(&b, "\nNovelty score: %d/10.", hypothesis.NoveltyScore)
		sections = append(sections, b.String())
	}

	if plan, ok := state.ExperimentPlan(); ok {
		var b strings.Builder
		fmt.Fprintf(&b, "Experiment plan (%s feasibility, %s):", plan.Feasibility, plan.Duration)
		for i, step := range plan.Steps {
			fmt.Fprintf(&b, "\n%d. %s", i+1, step)
		}
		if len(plan.Resources) > 0 {
			fmt.Fprintf(&b, "\nResources: %s.", strings.Join(plan.Resources, "; "))
		}
		sections = append(sections, b.String())
	}

	if notes := state.Diagnostics(); len(notes) > 0 {
		sections = append(sections, "Notes:\n- "+strings.Join(notes, "\n- "))
	}

	if len(sections) == 0 {
		return "No analysis results were produced for this query."
	}
	return strings.Join(sections, "\n\n")
}
