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
)

// Searcher is the literature lookup contract the analyst depends on.
// literature.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (core.LiteratureSummary, error)
}

const (
	analystInstructions = "You are a research analyst. You extract search keywords, identify " +
		"research trends and find gaps in the literature. Always answer with a single JSON " +
		"object and nothing else."

	defaultSearchResults = 10
	maxSearchKeywords    = 3
)

// ResearchAnalystOptions configures the ResearchAnalyst stage.
type ResearchAnalystOptions struct {
	// MaxResults caps the number of papers fetched per search.
	MaxResults int
	Logger     logging.Logger
}

// ResearchAnalyst surveys the literature for a query: it extracts search
// keywords, fetches papers, then derives a trend analysis and a gap analysis.
// Model or search transport failures are returned as core.ExternalCallError;
// malformed model output falls back to deterministic defaults.
type ResearchAnalyst struct {
	*core.LoggerAdapter
	model    model.Model
	searcher Searcher
	opts     ResearchAnalystOptions
}

// NewResearchAnalyst constructs the research analyst stage.
func NewResearchAnalyst(m model.Model, searcher Searcher, optFns ...func(o *ResearchAnalystOptions)) *ResearchAnalyst {
	opts := ResearchAnalystOptions{
		MaxResults: defaultSearchResults,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ResearchAnalyst{
		LoggerAdapter: core.NewLoggerAdapter(opts.Logger),
		model:         m,
		searcher:      searcher,
		opts:          opts,
	}
}

// ID returns the canonical stage identifier.
func (s *ResearchAnalyst) ID() core.StageID { return core.StageResearchAnalyst }

// Run produces the ResearchReport output for the current query.
func (s *ResearchAnalyst) Run(ctx context.Context, state *core.State) error {
	keywords, err := s.extractKeywords(ctx, state)
	if err != nil {
		return err
	}

	searchQuery := strings.Join(keywords, " ")
	literature, err := s.searcher.Search(ctx, searchQuery, s.opts.MaxResults)
	if err != nil {
		return core.NewExternalCallError(s.ID(), "literature search", err)
	}
	s.LogInfo("literature searched", "query", searchQuery, "papers", literature.PapersFound)

	trends, err := s.analyzeTrends(ctx, state, literature)
	if err != nil {
		return err
	}
	gaps, err := s.findGaps(ctx, state, trends)
	if err != nil {
		return err
	}

	return state.SetOutput(s.ID(), core.ResearchReport{
		Literature: literature,
		Trends:     trends,
		Gaps:       gaps,
	})
}

// extractKeywords asks the model for search keywords and keeps the first few.
// Unparseable output falls back to the leading words of the query itself.
func (s *ResearchAnalyst) extractKeywords(ctx context.Context, state *core.State) ([]string, error) {
	prompt := fmt.Sprintf(`Extract the %d most important search keywords from this research question.

Question: %s

Respond with JSON: {"keywords": ["keyword1", "keyword2", "keyword3"]}`, maxSearchKeywords, state.Query)

	resp, err := s.model.Generate(ctx, model.Request{Instructions: analystInstructions, Prompt: prompt})
	if err != nil {
		return nil, core.NewExternalCallError(s.ID(), "keyword extraction", err)
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(util.CleanJSONResponse(resp.Text)), &parsed); err != nil || len(parsed.Keywords) == 0 {
		state.AddDiagnostic("keyword extraction returned no usable keywords, using query words")
		return fallbackKeywords(state.Query), nil
	}
	if len(parsed.Keywords) > maxSearchKeywords {
		parsed.Keywords = parsed.Keywords[:maxSearchKeywords]
	}
	return parsed.Keywords, nil
}

// analyzeTrends derives the trend analysis from paper titles. Unparseable
// model output degrades to a low-confidence summary of the key topics.
func (s *ResearchAnalyst) analyzeTrends(ctx context.Context, state *core.State, lit core.LiteratureSummary) (core.TrendAnalysis, error) {
	titles := make([]string, 0, len(lit.Papers))
	for _, p := range lit.Papers {
		titles = append(titles, "- "+p.Title)
	}
	prompt := fmt.Sprintf(`Based on these recent paper titles, identify research trends.

Papers:
%s

Respond with JSON: {"trends": ["trend1", "trend2"], "emerging_directions": ["direction1"], "confidence": "high"}`,
		strings.Join(titles, "\n"))

	resp, err := s.model.Generate(ctx, model.Request{Instructions: analystInstructions, Prompt: prompt})
	if err != nil {
		return core.TrendAnalysis{}, core.NewExternalCallError(s.ID(), "trend analysis", err)
	}

	var trends core.TrendAnalysis
	if err := json.Unmarshal([]byte(util.CleanJSONResponse(resp.Text)), &trends); err != nil || len(trends.Trends) == 0 {
		state.AddDiagnostic("trend analysis unparseable, derived from key topics")
		return fallbackTrends(lit), nil
	}
	return trends, nil
}

// findGaps derives the gap analysis from the trend findings. Unparseable
// model output degrades to a single generic opportunity.
func (s *ResearchAnalyst) findGaps(ctx context.Context, state *core.State, trends core.TrendAnalysis) (core.GapAnalysis, error) {
	prompt := fmt.Sprintf(`Given these research trends, identify contradictions, unsolved problems and opportunities.

Trends: %s
Emerging directions: %s

Respond with JSON: {"contradictions": [], "unsolved_problems": [], "opportunities": []}`,
		strings.Join(trends.Trends, "; "), strings.Join(trends.EmergingDirections, "; "))

	resp, err := s.model.Generate(ctx, model.Request{Instructions: analystInstructions, Prompt: prompt})
	if err != nil {
		return core.GapAnalysis{}, core.NewExternalCallError(s.ID(), "gap analysis", err)
	}

	var gaps core.GapAnalysis
	if err := json.Unmarshal([]byte(util.CleanJSONResponse(resp.Text)), &gaps); err != nil {
		state.AddDiagnostic("gap analysis unparseable, using generic opportunity")
		return core.GapAnalysis{
			Opportunities: []string{"Further exploration of " + util.Truncate(state.Query, 80)},
		}, nil
	}
	return gaps, nil
}

func fallbackKeywords(query string) []string {
	words := strings.Fields(util.CleanText(query))
	keywords := make([]string, 0, maxSearchKeywords)
	for _, w := range words {
		if len(w) < 4 {
			continue
		}
		keywords = append(keywords, strings.ToLower(strings.Trim(w, ".,;:?!")))
		if len(keywords) == maxSearchKeywords {
			break
		}
	}
	if len(keywords) == 0 {
		keywords = append(keywords, strings.ToLower(query))
	}
	return keywords
}

func fallbackTrends(lit core.LiteratureSummary) core.TrendAnalysis {
	return core.TrendAnalysis{
		Trends:             lit.KeyTopics,
		EmergingDirections: lit.RecentMethods,
		Confidence:         core.ConfidenceLow,
	}
}
