package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// taskPattern carries PERT estimates (optimistic, likely, pessimistic weeks)
// for a class of experiment steps recognized by keyword.
type taskPattern struct {
	re                    *regexp.Regexp
	opt, likely, pessimal float64
}

var taskPatterns = []taskPattern{
	{regexp.MustCompile(`recruit|participant|subject`), 2, 4, 8},
	{regexp.MustCompile(`setup|install|configure|calibrate`), 1, 2, 4},
	{regexp.MustCompile(`collect|gather|measure|record|observe`), 4, 8, 16},
	{regexp.MustCompile(`analyze|process|evaluate|assess`), 2, 4, 8},
	{regexp.MustCompile(`write|document|report|publish`), 2, 3, 6},
	{regexp.MustCompile(`train|learn|practice|fine-tune`), 1, 2, 4},
	{regexp.MustCompile(`test|trial|experiment|run`), 3, 6, 12},
	{regexp.MustCompile(`develop|create|build|design|implement`), 2, 4, 8},
}

// unmatchedStepWeeks is charged for steps no pattern recognizes.
const unmatchedStepWeeks = 2.0

// DurationEstimate is the PERT-style duration breakdown for a step list.
type DurationEstimate struct {
	Duration        string  `json:"duration"`
	BaseWeeks       float64 `json:"base_weeks"`
	WithBufferWeeks float64 `json:"with_buffer_weeks"`
	Method          string  `json:"method"`
}

// EstimateDuration sums per-step PERT expectations ((opt + 4*likely + pess)/6)
// over the plan's steps, adds a 20% buffer, and renders a human-readable
// range in weeks or months.
func EstimateDuration(steps []string) DurationEstimate {
	total := 0.0
	for _, step := range steps {
		lower := strings.ToLower(step)
		matched := false
		for _, tp := range taskPatterns {
			if tp.re.MatchString(lower) {
				total += (tp.opt + 4*tp.likely + tp.pessimal) / 6
				matched = true
				break
			}
		}
		if !matched {
			total += unmatchedStepWeeks
		}
	}

	buffered := total * 1.2

	var duration string
	if buffered > 12 {
		duration = fmt.Sprintf("%d-%d months", int(buffered/4), int(buffered/4*1.3))
	} else {
		duration = fmt.Sprintf("%d-%d weeks", int(total), int(buffered))
	}

	return DurationEstimate{
		Duration:        duration,
		BaseWeeks:       math.Round(total*10) / 10,
		WithBufferWeeks: math.Round(buffered*10) / 10,
		Method:          "PERT analysis with 20% buffer",
	}
}
