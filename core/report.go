package core

// Paper is an individual literature search result.
type Paper struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`
	Year     int    `json:"year,omitempty"`
	Source   string `json:"source,omitempty"`
	URL      string `json:"url,omitempty"`
}

// LiteratureSummary aggregates one literature search pass.
type LiteratureSummary struct {
	PapersFound   int      `json:"papers_found"`
	KeyTopics     []string `json:"key_topics,omitempty"`
	RecentMethods []string `json:"recent_methods,omitempty"`
	Papers        []Paper  `json:"papers,omitempty"`
}

// TrendAnalysis captures trend findings extracted from the literature.
type TrendAnalysis struct {
	Trends             []string   `json:"trends"`
	EmergingDirections []string   `json:"emerging_directions"`
	Confidence         Confidence `json:"confidence"`
}

// GapAnalysis captures contradictions, open problems and opportunities found
// in the literature.
type GapAnalysis struct {
	Contradictions   []string `json:"contradictions"`
	UnsolvedProblems []string `json:"unsolved_problems"`
	Opportunities    []string `json:"opportunities"`
}

// ResearchReport is the ResearchAnalyst stage output.
type ResearchReport struct {
	Literature LiteratureSummary `json:"literature"`
	Trends     TrendAnalysis     `json:"trends"`
	Gaps       GapAnalysis       `json:"gaps"`
}

// Hypothesis is the HypothesisGenerator stage output.
type Hypothesis struct {
	Statement      string       `json:"statement"`
	TRIZPrinciples []string     `json:"triz_principles"`
	Rationale      string       `json:"rationale"`
	NoveltyScore   int          `json:"novelty_score"`
	Novelty        NoveltyScore `json:"novelty"`
}

// NoveltyScore grades hypothesis originality against retrieved papers.
type NoveltyScore struct {
	Score          int     `json:"score"` // 1..10
	Method         string  `json:"method"`
	AvgOverlap     float64 `json:"avg_overlap,omitempty"`
	PapersCompared int     `json:"papers_compared,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

// ExperimentPlan is the ExperimentDesigner stage output.
type ExperimentPlan struct {
	Feasibility string           `json:"feasibility"` // high | medium | low
	Steps       []string         `json:"steps"`
	Resources   []string         `json:"resources"`
	Duration    string           `json:"duration"`
	Challenges  []string         `json:"challenges"`
	Score       FeasibilityScore `json:"score"`
}

// FeasibilityScore grades an experiment plan on resources, duration and
// complexity.
type FeasibilityScore struct {
	Category string   `json:"category"` // high | medium | low
	Score    int      `json:"score"`    // 1..10
	Details  []string `json:"details,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}
