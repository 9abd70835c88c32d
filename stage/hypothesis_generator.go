package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/internal/util"
	"github.com/researchpilot/researchpilot/logging"
	"github.com/researchpilot/researchpilot/model"
	"github.com/researchpilot/researchpilot/scoring"
)

const generatorInstructions = "You are a hypothesis generator. You craft novel, testable research " +
	"hypotheses using TRIZ inventive principles. Always answer with a single JSON object and " +
	"nothing else."

// trizPrinciples are the inventive principles offered to the model as
// creative levers for hypothesis construction.
var trizPrinciples = []string{
	"Segmentation: divide the system into independent parts",
	"Taking out: separate the interfering part or property",
	"Asymmetry: replace a symmetric form with an asymmetric one",
	"Merging: combine identical or similar operations in space or time",
	"Universality: make one part perform multiple functions",
	"Nested doll: place one system inside another",
	"Preliminary action: perform required changes before they are needed",
	"The other way round: invert the action or process",
	"Dynamics: allow characteristics to change for optimal operation",
	"Parameter changes: change the physical or informational state",
}

// HypothesisGeneratorOptions configures the HypothesisGenerator stage.
type HypothesisGeneratorOptions struct {
	Logger logging.Logger
}

// HypothesisGenerator turns the analyst's trend and gap findings into a
// testable hypothesis and grades its novelty against the retrieved papers.
type HypothesisGenerator struct {
	*core.LoggerAdapter
	model model.Model
}

// NewHypothesisGenerator constructs the hypothesis generator stage.
func NewHypothesisGenerator(m model.Model, optFns ...func(o *HypothesisGeneratorOptions)) *HypothesisGenerator {
	opts := HypothesisGeneratorOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &HypothesisGenerator{
		LoggerAdapter: core.NewLoggerAdapter(opts.Logger),
		model:         m,
	}
}

// ID returns the canonical stage identifier.
func (s *HypothesisGenerator) ID() core.StageID { return core.StageHypothesisGenerator }

// Run produces the Hypothesis output. It works without an analyst report by
// falling back to the raw query as its grounding material.
func (s *HypothesisGenerator) Run(ctx context.Context, state *core.State) error {
	trends := []string{"No trend data available"}
	opportunities := []string{"Open question: " + util.Truncate(state.Query, 120)}
	var papers []core.Paper
	if report, ok := state.ResearchReport(); ok {
		if len(report.Trends.Trends) > 0 {
			trends = report.Trends.Trends
		}
		if len(report.Gaps.Opportunities) > 0 {
			opportunities = report.Gaps.Opportunities
		}
		papers = report.Literature.Papers
	}

	prompt := fmt.Sprintf(`Generate one novel, testable research hypothesis.

Research question: %s

Observed trends:
%s

Opportunities:
%s

Consider these TRIZ inventive principles:
%s

Respond with JSON: {"statement": "...", "triz_principles": ["principle name"], "rationale": "..."}`,
		state.Query,
		bulleted(trends),
		bulleted(opportunities),
		bulleted(trizPrinciples))

	resp, err := s.model.Generate(ctx, model.Request{Instructions: generatorInstructions, Prompt: prompt})
	if err != nil {
		return core.NewExternalCallError(s.ID(), "hypothesis generation", err)
	}

	var hypothesis core.Hypothesis
	if err := json.Unmarshal([]byte(util.CleanJSONResponse(resp.Text)), &hypothesis); err != nil || hypothesis.Statement == "" {
		state.AddDiagnostic("hypothesis generation unparseable, using template hypothesis")
		hypothesis = fallbackHypothesis(state.Query, trends)
	}

	hypothesis.Novelty = scoring.Novelty(hypothesis.Statement, papers)
	hypothesis.NoveltyScore = hypothesis.Novelty.Score
	s.LogInfo("hypothesis generated", "novelty", hypothesis.NoveltyScore, "principles", len(hypothesis.TRIZPrinciples))

	return state.SetOutput(s.ID(), hypothesis)
}

// fallbackHypothesis is a deterministic hypothesis built from the strongest
// trend when the model output is unusable.
func fallbackHypothesis(query string, trends []string) core.Hypothesis {
	subject := util.Truncate(query, 100)
	statement := fmt.Sprintf("Combining %s with established methods will yield measurable improvements over current baselines.", subject)
	if len(trends) > 0 && trends[0] != "No trend data available" {
		statement = fmt.Sprintf("Applying %s to %s will yield measurable improvements over current baselines.",
			strings.ToLower(util.Truncate(trends[0], 80)), subject)
	}
	return core.Hypothesis{
		Statement:      statement,
		TRIZPrinciples: []string{"Merging"},
		Rationale:      "Constructed from the leading observed trend after generation failed to parse.",
	}
}

func bulleted(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
