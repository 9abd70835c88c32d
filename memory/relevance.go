package memory

import (
	"regexp"
	"strings"

	"github.com/researchpilot/researchpilot/core"
)

// DefaultRetrievalLimit is how many prior records a retrieval loads unless
// the caller asks for more.
const DefaultRetrievalLimit = 3

var wordRe = regexp.MustCompile(`[a-zA-Z0-9]{4,}`)

// SelectRelevant picks up to limit records for a query, preferring records
// sharing significant tokens with the query and breaking ties by recency.
// The result preserves chronological order (newest last) so callers can feed
// it straight into prompts. Shared helper for all store implementations.
func SelectRelevant(records []core.Record, query string, limit int) []core.Record {
	if limit <= 0 || len(records) == 0 {
		return []core.Record{}
	}

	queryTokens := tokenize(query)

	type scored struct {
		idx   int
		score int
	}
	ranked := make([]scored, 0, len(records))
	for i, r := range records {
		ranked = append(ranked, scored{idx: i, score: overlap(queryTokens, tokenize(r.Query+" "+r.Response))})
	}

	// Stable selection: walk newest to oldest, first taking records with
	// token overlap, then backfilling with the most recent remainder.
	taken := make(map[int]bool, limit)
	for pass := 0; pass < 2 && len(taken) < limit; pass++ {
		for i := len(ranked) - 1; i >= 0 && len(taken) < limit; i-- {
			if taken[ranked[i].idx] {
				continue
			}
			if pass == 0 && ranked[i].score == 0 {
				continue
			}
			taken[ranked[i].idx] = true
		}
	}

	out := make([]core.Record, 0, len(taken))
	for i, r := range records {
		if taken[i] {
			out = append(out, r)
		}
	}
	return out
}

func tokenize(text string) map[string]bool {
	tokens := map[string]bool{}
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		tokens[w] = true
	}
	return tokens
}

func overlap(a, b map[string]bool) int {
	n := 0
	for t := range a {
		if b[t] {
			n++
		}
	}
	return n
}
