// Package scoring holds the deterministic grading heuristics used by the
// hypothesis and experiment stages: keyword-overlap novelty, rule-based
// feasibility and PERT-style duration estimation. All functions are pure and
// side-effect free.
package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/researchpilot/researchpilot/core"
)

var noveltyWordRe = regexp.MustCompile(`\b\w{4,}\b`)

// Novelty grades a hypothesis statement against retrieved papers by keyword
// overlap: the less a statement's vocabulary overlaps with existing
// abstracts, the higher the score. With nothing to compare against, moderate
// novelty is assumed.
func Novelty(statement string, papers []core.Paper) core.NoveltyScore {
	if len(papers) == 0 {
		return core.NoveltyScore{
			Score:  7,
			Method: "default",
			Reason: "no papers to compare - assuming moderate novelty",
		}
	}

	stmtWords := wordSet(statement)

	var overlaps []float64
	for i, paper := range papers {
		if i == 10 {
			break
		}
		paperWords := wordSet(paper.Title + " " + paper.Abstract)
		if len(stmtWords) == 0 || len(paperWords) == 0 {
			continue
		}
		shared := 0
		for w := range stmtWords {
			if paperWords[w] {
				shared++
			}
		}
		overlaps = append(overlaps, float64(shared)/float64(len(stmtWords)))
	}

	if len(overlaps) == 0 {
		return core.NoveltyScore{
			Score:  7,
			Method: "default",
			Reason: "could not calculate overlap",
		}
	}

	sum := 0.0
	for _, o := range overlaps {
		sum += o
	}
	avg := sum / float64(len(overlaps))

	score := int((1 - avg) * 10)
	score = clamp(score, 1, 10)

	return core.NoveltyScore{
		Score:          score,
		Method:         "keyword_overlap",
		AvgOverlap:     math.Round(avg*100) / 100,
		PapersCompared: len(overlaps),
		Reason:         fmt.Sprintf("average keyword overlap with %d papers: %.1f%%", len(overlaps), avg*100),
	}
}

func wordSet(text string) map[string]bool {
	words := map[string]bool{}
	for _, w := range noveltyWordRe.FindAllString(strings.ToLower(text), -1) {
		words[w] = true
	}
	return words
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
