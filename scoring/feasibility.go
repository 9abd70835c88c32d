package scoring

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/researchpilot/researchpilot/core"
)

// expensiveResources flag equipment that pushes an experiment beyond
// commodity budgets.
var expensiveResources = []string{
	"mri", "fmri", "supercomputer", "quantum computer",
	"gene sequencing", "particle accelerator", "satellite",
	"a100", "h100", "cluster",
}

var leadingNumberRe = regexp.MustCompile(`\d+`)

// Feasibility grades an experiment plan on resource cost, duration and
// complexity, starting from a perfect score and subtracting penalties.
func Feasibility(plan core.ExperimentPlan) core.FeasibilityScore {
	score := 10
	var details []string

	resourcesText := strings.ToLower(strings.Join(plan.Resources, " "))
	expensive := 0
	for _, r := range expensiveResources {
		if strings.Contains(resourcesText, r) {
			expensive++
		}
	}
	if expensive > 0 {
		score -= expensive * 2
		details = append(details, fmt.Sprintf("Expensive resources: -%d", expensive*2))
	}

	duration := strings.ToLower(plan.Duration)
	if strings.Contains(duration, "year") {
		if years, ok := leadingNumber(duration); ok {
			switch {
			case years > 2:
				score -= 3
				details = append(details, fmt.Sprintf("Long duration (%d years): -3", years))
			case years > 1:
				score--
				details = append(details, fmt.Sprintf("Moderate duration (%d years): -1", years))
			}
		}
	} else if strings.Contains(duration, "month") {
		if months, ok := leadingNumber(duration); ok && months > 6 {
			score -= 2
			details = append(details, fmt.Sprintf("Extended duration (%d months): -2", months))
		}
	}

	if len(plan.Steps) > 7 {
		score--
		details = append(details, fmt.Sprintf("Many steps (%d): -1", len(plan.Steps)))
	}
	if len(plan.Challenges) > 4 {
		score--
		details = append(details, fmt.Sprintf("Many challenges (%d): -1", len(plan.Challenges)))
	}

	score = clamp(score, 1, 10)

	category := "low"
	switch {
	case score >= 7:
		category = "high"
	case score >= 4:
		category = "medium"
	}

	return core.FeasibilityScore{
		Category: category,
		Score:    score,
		Details:  details,
		Reason:   fmt.Sprintf("Feasibility score: %d/10 based on resources, duration, and complexity", score),
	}
}

func leadingNumber(s string) (int, bool) {
	m := leadingNumberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
