package models

import (
	"sort"
	"time"
)

// Hardness splits constraints into feasibility gates and weighted
// quality contributors.
type Hardness string

const (
	Hard Hardness = "hard"
	Soft Hardness = "soft"
)

// Constraint source labels, used by conflict analysis.
const (
	SourceSportDefault = "sport_default"
	SourceCustom       = "custom"
)

// Constraint is a serializable constraint definition. The evaluator
// is resolved by ID through a registry, never by code pointer, so
// constraint sets round-trip through storage and the API unchanged.
type Constraint struct {
	ID       string         `json:"id"`
	Sport    string         `json:"sport"`
	Hardness Hardness       `json:"hardness"`
	Weight   int            `json:"weight"` // soft only, 0-100
	Params   map[string]any `json:"params,omitempty"`
	Source   string         `json:"source"`
}

// IsHard reports whether the constraint gates feasibility.
func (c Constraint) IsHard() bool { return c.Hardness == Hard }

// ParamInt reads an integer parameter with a fallback. Callers supply
// params over JSON, so numbers arrive as float64 as often as int.
func (c Constraint) ParamInt(key string, fallback int) int {
	switch v := c.Params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// ParamString reads a string parameter with a fallback.
func (c Constraint) ParamString(key, fallback string) string {
	if v, ok := c.Params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// ParamFloat reads a float parameter with a fallback.
func (c Constraint) ParamFloat(key string, fallback float64) float64 {
	switch v := c.Params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

// ParamStrings reads a string-list parameter.
func (c Constraint) ParamStrings(key string) []string {
	switch v := c.Params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ConstraintSet is the merged, ordered constraint configuration for
// one sport. Constraints are sorted by id; the set is never mutated
// during evaluation.
type ConstraintSet struct {
	Sport       string       `json:"sport"`
	Constraints []Constraint `json:"constraints"`
}

// Sort orders constraints by id. Catalog output and resolver output
// both go through here so identical inputs produce identical sets.
func (cs *ConstraintSet) Sort() {
	sort.Slice(cs.Constraints, func(i, j int) bool {
		return cs.Constraints[i].ID < cs.Constraints[j].ID
	})
}

// Hard returns the hard constraints in set order.
func (cs *ConstraintSet) Hard() []Constraint {
	var out []Constraint
	for _, c := range cs.Constraints {
		if c.IsHard() {
			out = append(out, c)
		}
	}
	return out
}

// Soft returns the soft constraints in set order.
func (cs *ConstraintSet) Soft() []Constraint {
	var out []Constraint
	for _, c := range cs.Constraints {
		if !c.IsHard() {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the constraint with the given id, if present.
func (cs *ConstraintSet) Find(id string) (Constraint, bool) {
	for _, c := range cs.Constraints {
		if c.ID == id {
			return c, true
		}
	}
	return Constraint{}, false
}

// Violation localizes one constraint failure to the entities it
// affects. Unused entity fields are left empty.
type Violation struct {
	ConstraintID string    `json:"constraint_id"`
	TeamID       string    `json:"team_id,omitempty"`
	SeriesID     string    `json:"series_id,omitempty"`
	VenueID      string    `json:"venue_id,omitempty"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	Severity     Hardness  `json:"severity"`
}

// ConstraintResult is the outcome of one constraint's evaluation.
// Score and Satisfied are independent: a soft constraint may be
// unsatisfied yet carry a partial score.
type ConstraintResult struct {
	ConstraintID string      `json:"constraint_id"`
	Satisfied    bool        `json:"satisfied"`
	Score        float64     `json:"score"` // 0..1
	Violations   []Violation `json:"violations,omitempty"`
}

// EvaluationResult aggregates all constraint results for a schedule.
// OverallScore is defined only when Feasible; otherwise it is 0.
// MostSevere is the worst-ranked violation, nil on a clean schedule.
type EvaluationResult struct {
	ScheduleID   string             `json:"schedule_id"`
	Feasible     bool               `json:"feasible"`
	OverallScore float64            `json:"overall_score"`
	Results      []ConstraintResult `json:"results"`
	MostSevere   *Violation         `json:"most_severe,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// Violations flattens all per-constraint violations in result order.
func (r *EvaluationResult) Violations() []Violation {
	var out []Violation
	for _, cr := range r.Results {
		out = append(out, cr.Violations...)
	}
	return out
}

// ValidationResult is the outcome of an incremental single-move
// validation. Warnings carry soft-constraint failures; Suggestions
// offer concrete follow-up edits.
type ValidationResult struct {
	Valid       bool        `json:"valid"`
	Violations  []Violation `json:"violations,omitempty"`
	Warnings    []Violation `json:"warnings,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
	Evaluated   []string    `json:"evaluated_constraints"`
}

// Conflict kinds detected between constraint definitions.
const (
	ConflictWindowOvercommit       = "window_overcommit"
	ConflictExclusiveDayClaim      = "exclusive_day_claim"
	ConflictVenuePriorityInversion = "venue_priority_inversion"
	ConflictDuplicateDefinition    = "duplicate_definition"
)

// Resolution strategies, tried in order by the resolver.
const (
	StrategyWeightRebalance = "weight_rebalance"
	StrategyPriorityReorder = "priority_reorder"
	StrategyManualReview    = "manual_review"
)

// ConflictRecord describes a structural conflict between two
// constraint definitions, independent of any schedule. Strategy and
// Delta are filled in by the resolver.
type ConflictRecord struct {
	ConstraintA string `json:"constraint_a"`
	ConstraintB string `json:"constraint_b"`
	Kind        string `json:"kind"`
	Explanation string `json:"explanation"`
	Strategy    string `json:"strategy,omitempty"`
	Delta       string `json:"delta,omitempty"`
}

// ResolutionResult is the resolver's output: a new constraint set,
// the resolutions applied, and the conflicts it could not settle.
type ResolutionResult struct {
	Constraints ConstraintSet    `json:"constraints"`
	Resolutions []ConflictRecord `json:"resolutions"`
	Unresolved  []ConflictRecord `json:"unresolved"`
}

// AlgorithmSelection is the solver hint returned by the decision
// table. It carries no feasibility guarantee.
type AlgorithmSelection struct {
	AlgorithmID   string         `json:"algorithm_id"`
	Configuration map[string]any `json:"configuration"`
	Rationale     string         `json:"rationale"`
}

// ConstraintProfile summarizes a constraint set for solver selection.
type ConstraintProfile struct {
	TeamCount        int      `json:"team_count"`
	ConstraintIDs    []string `json:"constraint_ids"`
	TravelPriority   bool     `json:"travel_priority"`
	DivisionalPlay   bool     `json:"divisional_play"`
	UnbalancedRounds bool     `json:"unbalanced_rounds"`
	MultiObjective   bool     `json:"multi_objective"`
}
