package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"adaptgrant/pkg/types"
)

// totals are compared with a small tolerance because weights are fractional
const totalTolerance = 0.01

// ValidationError collects every problem found with a configuration or score,
// keyed by field path.
type ValidationError struct {
	Problems map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Problems))
	for k := range e.Problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Problems[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, problem string) {
	if e.Problems == nil {
		e.Problems = make(map[string]string)
	}
	e.Problems[field] = problem
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// ValidateConfiguration checks a rubric is internally consistent before it
// is stored or activated.
func ValidateConfiguration(config *types.ScoringConfiguration) error {
	verr := new(ValidationError)

	if config == nil {
		verr.add("configuration", "is required")
		return verr
	}

	if strings.TrimSpace(config.Name) == "" {
		verr.add("name", "is required")
	}
	if config.TotalMaxScore <= 0 {
		verr.add("totalMaxScore", "must be greater than zero")
	}
	if config.PassThreshold < 0 || config.PassThreshold > config.TotalMaxScore {
		verr.add("passThreshold", "must be between zero and totalMaxScore")
	}
	if len(config.Criteria) == 0 {
		verr.add("criteria", "at least one criterion is required")
		return verr
	}

	var weightedMax float64
	for i, c := range config.Criteria {
		field := fmt.Sprintf("criteria[%d]", i)
		if c == nil {
			verr.add(field, "is required")
			continue
		}

		if strings.TrimSpace(c.Name) == "" {
			verr.add(field+".name", "is required")
		}
		if !c.Category.Valid() {
			verr.add(field+".category", fmt.Sprintf("unknown category %q", c.Category))
		}
		if !c.EvaluationType.Valid() {
			verr.add(field+".evaluationType", fmt.Sprintf("unknown evaluation type %q", c.EvaluationType))
		}
		if c.MaxPoints <= 0 {
			verr.add(field+".maxPoints", "must be greater than zero")
		}
		if c.Weight <= 0 {
			verr.add(field+".weight", "must be greater than zero")
		}

		if c.EvaluationType == types.EvaluationTypeLevels {
			if len(c.ScoringLevels) == 0 {
				verr.add(field+".scoringLevels", "levels criteria need at least one level")
			}
			for j, level := range c.ScoringLevels {
				if level.Points < 0 || level.Points > c.MaxPoints {
					verr.add(fmt.Sprintf("%s.scoringLevels[%d].points", field, j), "must be between zero and maxPoints")
				}
			}
		}

		weightedMax += c.MaxPoints * c.Weight
	}

	if config.TotalMaxScore > 0 && math.Abs(weightedMax-config.TotalMaxScore) > totalTolerance {
		verr.add("totalMaxScore", fmt.Sprintf("criteria add up to %.2f, not %.2f", weightedMax, config.TotalMaxScore))
	}

	return verr.orNil()
}

// ValidateScore checks a submitted score against its criterion's evaluation type.
func ValidateScore(criterion *types.ScoringCriterion, score float64) error {
	verr := new(ValidationError)

	if math.IsNaN(score) || math.IsInf(score, 0) {
		verr.add("score", "must be a number")
		return verr
	}

	switch criterion.EvaluationType {
	case types.EvaluationTypeBoolean:
		if score != 0 && score != criterion.MaxPoints {
			verr.add("score", fmt.Sprintf("must be 0 or %g", criterion.MaxPoints))
		}
	case types.EvaluationTypeLevels:
		allowed := make([]string, 0, len(criterion.ScoringLevels))
		matched := false
		for _, level := range criterion.ScoringLevels {
			allowed = append(allowed, fmt.Sprintf("%g", level.Points))
			if level.Points == score {
				matched = true
			}
		}
		if !matched {
			verr.add("score", "must be one of "+strings.Join(allowed, ", "))
		}
	default:
		if score < 0 || score > criterion.MaxPoints {
			verr.add("score", fmt.Sprintf("must be between 0 and %g", criterion.MaxPoints))
		}
	}

	return verr.orNil()
}
