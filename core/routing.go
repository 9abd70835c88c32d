package core

// Category classifies a query and selects which stage sequence runs.
type Category string

const (
	// CategoryConceptual covers theory questions, concepts and comparisons.
	CategoryConceptual Category = "conceptual"
	// CategoryDesign covers architecture, hypothesis design and methodology.
	CategoryDesign Category = "design"
	// CategoryImplementation covers code, practical how-to and technical detail.
	CategoryImplementation Category = "implementation"
	// CategoryPlanning covers full research workflow requests.
	CategoryPlanning Category = "planning"
)

// Categories lists every canonical category.
func Categories() []Category {
	return []Category{CategoryConceptual, CategoryDesign, CategoryImplementation, CategoryPlanning}
}

// String returns the canonical name.
func (c Category) String() string { return string(c) }

// Valid reports whether the value is one of the canonical categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryConceptual, CategoryDesign, CategoryImplementation, CategoryPlanning:
		return true
	}
	return false
}

// Confidence grades how certain the classifier is about its verdict.
type Confidence string

const (
	// ConfidenceHigh marks a confident classification.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium marks a plausible classification.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow marks a guess, typically a fallback.
	ConfidenceLow Confidence = "low"
)

// RoutingDecision is the classifier's verdict for a query. It is produced
// exactly once per run and treated as immutable after creation.
type RoutingDecision struct {
	// Category selects the stage sequence in the routing table.
	Category Category `json:"category"`
	// NeedsMemory requests a MemoryRetrieval stage ahead of the sequence.
	NeedsMemory bool `json:"needs_memory"`
	// IsFollowUp signals the query continues an earlier interaction.
	IsFollowUp bool `json:"is_followup"`
	// Confidence grades the classification.
	Confidence Confidence `json:"confidence"`
	// Reasoning is the classifier's free-text justification.
	Reasoning string `json:"reasoning,omitempty"`
	// TargetStages carries free-text stage names suggested by the underlying
	// reasoning step. They may be hallucinated; consumers must resolve them
	// to canonical StageIDs and must never dispatch on the raw strings.
	TargetStages []string `json:"target_stages,omitempty"`
}
