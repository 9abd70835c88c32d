// Package resolve maps free-form stage names to canonical identifiers. The
// upstream reasoning step routinely invents names that are close to, but not
// exactly, the registered ones; the pipeline survives those by funneling
// every externally supplied name through a Resolver before dispatch.
package resolve

import (
	"strings"

	"github.com/researchpilot/researchpilot/core"
)

// defaultAliases maps normalized known synonyms, misspellings and model
// inventions to canonical stages. Normalization lowercases and strips
// spaces, underscores and hyphens, so one entry covers several spellings.
var defaultAliases = map[string]core.StageID{
	// research-related
	"research":              core.StageResearchAnalyst,
	"researcher":            core.StageResearchAnalyst,
	"researchanalyst":       core.StageResearchAnalyst,
	"researchassistant":     core.StageResearchAnalyst,
	"theoryagent":           core.StageResearchAnalyst,
	"literature":            core.StageResearchAnalyst,
	"literaturereview":      core.StageResearchAnalyst,
	"literatureagent":       core.StageResearchAnalyst,
	"analyst":               core.StageResearchAnalyst,
	"researchagent":         core.StageResearchAnalyst,
	"theoryanalysis":        core.StageResearchAnalyst,
	"researchdesign":        core.StageResearchAnalyst,
	"researchplanningagent": core.StageResearchAnalyst,

	// hypothesis-related
	"hypothesis":                core.StageHypothesisGenerator,
	"hypothesisgenerator":       core.StageHypothesisGenerator,
	"hypothesisdesignagent":     core.StageHypothesisGenerator,
	"design":                    core.StageHypothesisGenerator,
	"designer":                  core.StageHypothesisGenerator,
	"systemarchitecture":        core.StageHypothesisGenerator,
	"systemdesignagent":         core.StageHypothesisGenerator,
	"architectureagent":         core.StageHypothesisGenerator,
	"trizagent":                 core.StageHypothesisGenerator,
	"trizexperts":               core.StageHypothesisGenerator,
	"multiagentarchitect":       core.StageHypothesisGenerator,
	"multiagentsystemsagent":    core.StageHypothesisGenerator,
	"multiagentsystemarchitect": core.StageHypothesisGenerator,

	// experiment-related
	"experiment":          core.StageExperimentDesigner,
	"experimentdesigner":  core.StageExperimentDesigner,
	"implementation":      core.StageExperimentDesigner,
	"implementationagent": core.StageExperimentDesigner,
	"planner":             core.StageExperimentDesigner,
	"researchplanner":     core.StageExperimentDesigner,
	"codeagent":           core.StageExperimentDesigner,
	"developeragent":      core.StageExperimentDesigner,
	"practicalagent":      core.StageExperimentDesigner,

	// internal stages occasionally echoed back by the model
	"memory":          core.StageMemoryRetrieval,
	"memoryretrieval": core.StageMemoryRetrieval,
	"memorymanager":   core.StageMemoryRetrieval,
	"memoryupdate":    core.StageMemoryUpdate,
	"synthesizer":     core.StageSynthesizer,
	"synthesis":       core.StageSynthesizer,
}

// defaultStageByCategory selects the fallback stage when a name cannot be
// resolved at all: the first stage of the category's routing sequence.
var defaultStageByCategory = map[core.Category]core.StageID{
	core.CategoryConceptual:     core.StageResearchAnalyst,
	core.CategoryDesign:         core.StageResearchAnalyst,
	core.CategoryImplementation: core.StageExperimentDesigner,
	core.CategoryPlanning:       core.StageResearchAnalyst,
}

// minFuzzyToken is the shortest token considered significant for the fuzzy
// containment match. Shorter tokens ("the", "ai") collide too easily.
const minFuzzyToken = 4

// Options configures a Resolver.
type Options struct {
	// Aliases maps normalized free-form names to canonical stages. Defaults
	// to the built-in table; entries merge over it.
	Aliases map[string]core.StageID
	// DefaultStages selects the per-category fallback stage.
	DefaultStages map[core.Category]core.StageID
}

// fuzzyToken pairs a significant canonical-name token with its owning stage.
type fuzzyToken struct {
	token string
	id    core.StageID
}

// Resolver maps an arbitrary, possibly unreliable stage-name string to a
// canonical StageID with a deterministic fallback. Resolve never fails:
// an unmatchable name yields the category default and resolved=false so the
// caller can record a diagnostic.
type Resolver struct {
	aliases     map[string]core.StageID
	defaults    map[core.Category]core.StageID
	fuzzyTokens []fuzzyToken
}

// New constructs a Resolver with the built-in alias and default tables,
// optionally extended via Options.
func New(optFns ...func(o *Options)) *Resolver {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	aliases := make(map[string]core.StageID, len(defaultAliases)+len(opts.Aliases))
	for k, v := range defaultAliases {
		aliases[normalize(k)] = v
	}
	for k, v := range opts.Aliases {
		aliases[normalize(k)] = v
	}

	defaults := make(map[core.Category]core.StageID, len(defaultStageByCategory))
	for k, v := range defaultStageByCategory {
		defaults[k] = v
	}
	for k, v := range opts.DefaultStages {
		defaults[k] = v
	}

	return &Resolver{
		aliases:     aliases,
		defaults:    defaults,
		fuzzyTokens: buildFuzzyTokens(),
	}
}

// Resolve maps rawName to a canonical StageID. The second return value
// reports whether a confident match was found; when false the returned stage
// is the configured default for category.
//
// Matching order: exact canonical (case-insensitive), alias table, fuzzy
// token containment, category default.
func (r *Resolver) Resolve(rawName string, category core.Category) (core.StageID, bool) {
	norm := normalize(rawName)
	if norm == "" {
		return r.Default(category), false
	}

	for _, id := range core.StageIDs() {
		if norm == normalize(id.String()) {
			return id, true
		}
	}

	if id, ok := r.aliases[norm]; ok {
		return id, true
	}

	if id, ok := r.fuzzyMatch(norm); ok {
		return id, true
	}

	return r.Default(category), false
}

// Default returns the fallback stage for a category.
func (r *Resolver) Default(category core.Category) core.StageID {
	if id, ok := r.defaults[category]; ok {
		return id
	}
	return core.StageResearchAnalyst
}

// fuzzyMatch checks whether the normalized name shares a significant token
// with a canonical stage name, in either containment direction. Tokens are
// tried in canonical stage order so matches are deterministic.
func (r *Resolver) fuzzyMatch(norm string) (core.StageID, bool) {
	for _, ft := range r.fuzzyTokens {
		if strings.Contains(norm, ft.token) {
			return ft.id, true
		}
		if len(norm) >= minFuzzyToken && strings.Contains(ft.token, norm) {
			return ft.id, true
		}
	}
	return "", false
}

// buildFuzzyTokens derives significant tokens from the canonical stage names.
// Ambiguous tokens (appearing in more than one stage name) are dropped.
func buildFuzzyTokens() []fuzzyToken {
	owners := map[string]int{}
	for _, id := range core.StageIDs() {
		for _, token := range strings.Split(id.String(), "_") {
			if len(token) >= minFuzzyToken {
				owners[token]++
			}
		}
	}
	var tokens []fuzzyToken
	for _, id := range core.StageIDs() {
		for _, token := range strings.Split(id.String(), "_") {
			if len(token) >= minFuzzyToken && owners[token] == 1 {
				tokens = append(tokens, fuzzyToken{token: token, id: id})
			}
		}
	}
	return tokens
}

// normalize lowercases and strips separators so spelling variants collapse to
// a single key.
func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}
