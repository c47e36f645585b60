package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// EvalFunc is a pure per-constraint evaluator. It receives an
// immutable schedule snapshot and must not retain or mutate it.
type EvalFunc func(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult

var (
	registryMu sync.RWMutex
	registry   = map[string]EvalFunc{
		models.KindRoundRobin:         evalRoundRobin,
		models.KindPlayAllOpponents:   evalPlayAllOpponents,
		models.KindByeWeek:            evalByeWeek,
		models.KindSeriesVenue:        evalSeriesVenue,
		models.KindMaxConsecutiveRoad: evalMaxConsecutiveRoad,
		models.KindHolidayWeekend:     evalHolidayWeekend,
		models.KindTeamDayBan:         evalTeamDayBan,
		models.KindFirstWindowBalance: evalFirstWindowBalance,
		models.KindLastWindowBalance:  evalLastWindowBalance,
		models.KindWeekendBalance:     evalWeekendBalance,
		models.KindRoadClustering:     evalRoadClustering,
		models.KindRematchSpacing:     evalRematchSpacing,
		models.KindExamPeriod:         evalExamPeriod,
		models.KindTravelDistance:     evalTravelDistance,
		models.KindVenueSharing:       evalVenueSharing,
		models.KindVenuePriority:      evalVenuePriority,
	}
)

// Register installs an evaluator for a constraint identifier,
// replacing any existing one. Intended for league-specific extension
// constraints.
func Register(id string, fn EvalFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = fn
}

// Lookup resolves an evaluator by constraint identifier.
func Lookup(id string) (EvalFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[id]
	return fn, ok
}

// Evaluator runs a constraint set against schedule snapshots.
// Per-constraint evaluators execute across a bounded worker pool; the
// merged output order never depends on completion order.
type Evaluator struct {
	env     *Env
	workers int
	logger  *logrus.Logger
}

// New creates an evaluator. workers <= 0 falls back to serial
// execution.
func New(env *Env, workers int, logger *logrus.Logger) *Evaluator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if workers < 1 {
		workers = 1
	}
	return &Evaluator{env: env, workers: workers, logger: logger}
}

// Evaluate validates the schedule against every constraint in the
// set and aggregates the results. Malformed schedules return a
// ValidationError; failures inside individual evaluators are isolated
// to their constraint.
func (e *Evaluator) Evaluate(schedule *models.Schedule, set models.ConstraintSet) (*models.EvaluationResult, error) {
	if err := schedule.Normalize(); err != nil {
		return nil, err
	}

	results := make([]models.ConstraintResult, len(set.Constraints))
	warnings := make([]string, len(set.Constraints))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], warnings[i] = e.evalOne(schedule, set.Constraints[i])
			}
		}()
	}
	for i := range set.Constraints {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Deterministic output: sort after merge, never rely on
	// completion order.
	sort.Slice(results, func(i, j int) bool {
		return results[i].ConstraintID < results[j].ConstraintID
	})
	for i := range results {
		sortViolations(results[i].Violations)
	}

	result := &models.EvaluationResult{
		ScheduleID: schedule.ID,
		Results:    results,
	}
	for _, w := range warnings {
		if w != "" {
			result.Warnings = append(result.Warnings, w)
		}
	}
	sort.Strings(result.Warnings)

	result.Feasible, result.OverallScore = Score(set, results)
	result.MostSevere = MostSevere(result)
	return result, nil
}

// evalOne dispatches a single constraint, converting a panic inside
// the evaluator into one evaluation_error violation for that
// constraint only.
func (e *Evaluator) evalOne(schedule *models.Schedule, c models.Constraint) (result models.ConstraintResult, warning string) {
	fn, ok := Lookup(c.ID)
	if !ok {
		e.logger.WithFields(logrus.Fields{
			"constraint": c.ID,
			"sport":      c.Sport,
		}).Warn("Unknown constraint identifier, defaulting to satisfied")
		return models.ConstraintResult{
			ConstraintID: c.ID,
			Satisfied:    true,
			Score:        1.0,
		}, fmt.Sprintf("unknown constraint %q: defaulted to satisfied", c.ID)
	}

	defer func() {
		if r := recover(); r != nil {
			evalErr := &models.EvaluationError{ConstraintID: c.ID, Cause: r}
			e.logger.WithField("constraint", c.ID).Errorf("Evaluator panicked: %v", r)
			result = models.ConstraintResult{
				ConstraintID: c.ID,
				Satisfied:    false,
				Score:        0,
				Violations: []models.Violation{{
					ConstraintID: c.ID,
					Description:  fmt.Sprintf("evaluation_error: %s", evalErr.Error()),
					Severity:     c.Hardness,
				}},
			}
			warning = evalErr.Error()
		}
	}()

	return fn(schedule, c, e.env), ""
}

// sortViolations orders violations by date, then team, series, venue
// and description, so identical inputs render identical reports.
func sortViolations(vs []models.Violation) {
	sort.Slice(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.TeamID != b.TeamID {
			return a.TeamID < b.TeamID
		}
		if a.SeriesID != b.SeriesID {
			return a.SeriesID < b.SeriesID
		}
		if a.VenueID != b.VenueID {
			return a.VenueID < b.VenueID
		}
		return a.Description < b.Description
	})
}
