package dispatch

import "github.com/researchpilot/researchpilot/core"

// categoryStages is the fixed routing table: the exact specialist sequence
// executed for each query category. The dispatcher never deviates from it;
// classifier-suggested stage names are resolved for telemetry only.
var categoryStages = map[core.Category][]core.StageID{
	core.CategoryConceptual: {
		core.StageResearchAnalyst,
		core.StageSynthesizer,
	},
	core.CategoryDesign: {
		core.StageResearchAnalyst,
		core.StageHypothesisGenerator,
		core.StageSynthesizer,
	},
	core.CategoryImplementation: {
		core.StageExperimentDesigner,
		core.StageSynthesizer,
	},
	core.CategoryPlanning: {
		core.StageResearchAnalyst,
		core.StageHypothesisGenerator,
		core.StageExperimentDesigner,
		core.StageSynthesizer,
	},
}

// StagesFor returns the specialist sequence for a category (a copy). Unknown
// categories get the conceptual sequence.
func StagesFor(category core.Category) []core.StageID {
	stages, ok := categoryStages[category]
	if !ok {
		stages = categoryStages[core.CategoryConceptual]
	}
	out := make([]core.StageID, len(stages))
	copy(out, stages)
	return out
}

// Plan expands a routing decision into the full run sequence: memory
// retrieval first when the decision asks for it, the category's specialists,
// and the memory update terminal stage.
func Plan(decision core.RoutingDecision) []core.StageID {
	specialists := StagesFor(decision.Category)
	plan := make([]core.StageID, 0, len(specialists)+2)
	if decision.NeedsMemory {
		plan = append(plan, core.StageMemoryRetrieval)
	}
	plan = append(plan, specialists...)
	plan = append(plan, core.StageMemoryUpdate)
	return plan
}
