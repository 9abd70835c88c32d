// Package router classifies incoming queries into the canonical categories
// that drive stage selection. The classifier consumes the reasoning engine
// through the minimal model.Model interface and normalizes whatever free text
// comes back into a valid RoutingDecision, or fails with
// core.ErrClassificationAmbiguous so the dispatcher can substitute the
// configured default.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/internal/util"
	"github.com/researchpilot/researchpilot/logging"
	"github.com/researchpilot/researchpilot/model"
)

const systemPrompt = `You are the router of a multi-stage research assistant.
Classify the user's research query so it can be routed to specialist stages.

Query types:
- conceptual: theory questions, concepts, comparisons
- design: architecture, hypothesis design, methodology
- implementation: code, practical how-to, technical details
- planning: full research workflow, complete plans

Respond with valid JSON only, matching:
{"query_type": "conceptual|design|implementation|planning",
 "confidence": "high|medium|low",
 "reasoning": "...",
 "needs_memory": false,
 "is_followup": false,
 "target_stages": ["research_analyst", ...]}`

// categoryAliases maps normalized fragments of classifier free text to
// canonical categories, applied in order when the output is not an exact
// category. Slice form keeps matching deterministic.
var categoryAliases = []struct {
	alias    string
	category core.Category
}{
	{"concept", core.CategoryConceptual},
	{"theoretical", core.CategoryConceptual},
	{"theory", core.CategoryConceptual},
	{"comparison", core.CategoryConceptual},
	{"architecture", core.CategoryDesign},
	{"methodology", core.CategoryDesign},
	{"code", core.CategoryImplementation},
	{"technical", core.CategoryImplementation},
	{"practical", core.CategoryImplementation},
	{"workflow", core.CategoryPlanning},
	{"roadmap", core.CategoryPlanning},
	{"plan", core.CategoryPlanning},
}

// followUpIndicators are query fragments that signal continuation of an
// earlier interaction regardless of what the reasoning step reports.
var followUpIndicators = []string{
	"previous", "earlier", "last time", "before", "again",
	"follow up", "follow-up", "as discussed", "we discussed",
	"that hypothesis", "that experiment", "refine it", "continue",
}

// decisionWire is the JSON shape the reasoning step is asked to produce.
type decisionWire struct {
	QueryType    string   `json:"query_type"`
	Confidence   string   `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	NeedsMemory  bool     `json:"needs_memory"`
	IsFollowUp   bool     `json:"is_followup"`
	TargetStages []string `json:"target_stages"`
}

// Classifier produces exactly one RoutingDecision per query.
type Classifier struct {
	*core.LoggerAdapter
	model model.Model
}

// New constructs a Classifier backed by the given model.
func New(m model.Model, logger logging.Logger) *Classifier {
	return &Classifier{LoggerAdapter: core.NewLoggerAdapter(logger), model: m}
}

// Classify asks the reasoning step to categorize the query and normalizes the
// result. The memory argument is the retrieved prior context (possibly empty)
// used both in the prompt and in the needs-memory heuristic.
//
// Errors: a failed model call is returned as an ExternalCallError (retryable
// by the caller); output that cannot be normalized to a canonical category is
// returned as core.ErrClassificationAmbiguous.
func (c *Classifier) Classify(ctx context.Context, query string, memory []core.Record) (core.RoutingDecision, error) {
	resp, err := c.model.Generate(ctx, model.Request{
		Instructions: systemPrompt,
		Prompt:       c.buildPrompt(query, memory),
	})
	if err != nil {
		return core.RoutingDecision{}, core.NewExternalCallError(core.StageID("router"), "classify", err)
	}

	var wire decisionWire
	if err := json.Unmarshal([]byte(util.CleanJSONResponse(resp.Text)), &wire); err != nil {
		return core.RoutingDecision{}, fmt.Errorf("%w: undecodable classifier output: %v", core.ErrClassificationAmbiguous, err)
	}

	category, err := NormalizeCategory(wire.QueryType)
	if err != nil {
		return core.RoutingDecision{}, err
	}

	confidence := core.Confidence(strings.ToLower(wire.Confidence))
	switch confidence {
	case core.ConfidenceHigh, core.ConfidenceMedium, core.ConfidenceLow:
	default:
		confidence = core.ConfidenceMedium
	}

	decision := core.RoutingDecision{
		Category:     category,
		NeedsMemory:  NeedsMemory(query, memory, wire.NeedsMemory, wire.IsFollowUp),
		IsFollowUp:   wire.IsFollowUp,
		Confidence:   confidence,
		Reasoning:    wire.Reasoning,
		TargetStages: wire.TargetStages,
	}

	c.LogDebug("query classified",
		"category", decision.Category, "needs_memory", decision.NeedsMemory, "confidence", decision.Confidence)

	return decision, nil
}

func (c *Classifier) buildPrompt(query string, memory []core.Record) string {
	var sb strings.Builder
	sb.WriteString("Classify this research query.\n\nQuery: ")
	sb.WriteString(query)
	sb.WriteString("\n\n")
	if len(memory) == 0 {
		sb.WriteString("No previous context.")
	} else {
		sb.WriteString("Previous context:\n")
		for _, r := range memory {
			fmt.Fprintf(&sb, "Q: %s -> R: %s\n", util.Truncate(r.Query, 60), util.Truncate(r.Response, 80))
		}
	}
	return sb.String()
}

// NormalizeCategory maps free classifier text to a canonical category:
// exact case-insensitive match first, then alias/substring matching. Output
// matching nothing fails with core.ErrClassificationAmbiguous.
func NormalizeCategory(raw string) (core.Category, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	if c := core.Category(norm); c.Valid() {
		return c, nil
	}
	for _, c := range core.Categories() {
		if strings.Contains(norm, c.String()) {
			return c, nil
		}
	}
	for _, a := range categoryAliases {
		if strings.Contains(norm, a.alias) {
			return a.category, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrClassificationAmbiguous, raw)
}

// NeedsMemory implements the memory heuristic: true when the query itself
// contains a follow-up indicator, or when prior context exists and the
// reasoning step signals continuation.
func NeedsMemory(query string, memory []core.Record, modelSaysMemory, modelSaysFollowUp bool) bool {
	lower := strings.ToLower(query)
	for _, indicator := range followUpIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	if len(memory) > 0 && (modelSaysMemory || modelSaysFollowUp) {
		return true
	}
	return modelSaysMemory
}
