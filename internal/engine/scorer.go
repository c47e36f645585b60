package engine

import (
	"sort"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// Score aggregates per-constraint results into the feasibility flag
// and the weighted quality score. A schedule is feasible when every
// hard constraint is satisfied; the overall score is the
// weight-averaged soft score, defined only when feasible.
func Score(set models.ConstraintSet, results []models.ConstraintResult) (feasible bool, overall float64) {
	byID := make(map[string]models.Constraint, len(set.Constraints))
	for _, c := range set.Constraints {
		byID[c.ID] = c
	}

	feasible = true
	for _, r := range results {
		c, ok := byID[r.ConstraintID]
		if !ok {
			continue
		}
		if c.IsHard() && !r.Satisfied {
			feasible = false
		}
	}
	if !feasible {
		return false, 0
	}

	var weighted, totalWeight float64
	for _, r := range results {
		c, ok := byID[r.ConstraintID]
		if !ok || c.IsHard() {
			continue
		}
		weighted += r.Score * float64(c.Weight)
		totalWeight += float64(c.Weight)
	}
	if totalWeight == 0 {
		return true, 1
	}
	return true, weighted / totalWeight
}

// MostSevere ranks the result's violations and returns the worst
// one, or nil when the schedule is clean. Ties break by hardness
// (hard before soft), then constraint id lexical order, then
// earliest affected date.
func MostSevere(result *models.EvaluationResult) *models.Violation {
	violations := result.Violations()
	if len(violations) == 0 {
		return nil
	}
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Severity != b.Severity {
			return a.Severity == models.Hard
		}
		if a.ConstraintID != b.ConstraintID {
			return a.ConstraintID < b.ConstraintID
		}
		return a.Date.Before(b.Date)
	})
	return &violations[0]
}
