package validator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jmcallister-dev/league-scheduler/internal/engine"
	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// VersionSource reads the current version of a stored schedule so a
// long-running validation can detect a concurrent accepted edit.
type VersionSource interface {
	ScheduleVersion(ctx context.Context, scheduleID string) (int64, error)
}

// Validator revalidates a single proposed game change against only
// the constraints whose scope intersects the change. It reuses the
// engine's per-constraint evaluators against a snapshot with the
// modification tentatively applied, so its cost is proportional to
// the scope-relevant constraints, not the full set.
type Validator struct {
	env      *engine.Env
	workers  int
	logger   *logrus.Logger
	versions VersionSource
}

// New creates a modification validator. versions may be nil when the
// schedule is not store-backed; the optimistic re-check is then
// limited to the version carried on the modification.
func New(env *engine.Env, workers int, logger *logrus.Logger, versions VersionSource) *Validator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Validator{env: env, workers: workers, logger: logger, versions: versions}
}

// Validate checks the modification against the scope-relevant subset
// of the constraint set. Valid is false exactly when a scope-relevant
// hard constraint fails on the schedule with the modification
// applied; soft failures surface as warnings.
func (v *Validator) Validate(ctx context.Context, mod models.Modification, set models.ConstraintSet, schedule *models.Schedule) (*models.ValidationResult, error) {
	startVersion := schedule.Version
	if mod.ScheduleVersion != startVersion {
		return nil, &models.VersionConflictError{Expected: mod.ScheduleVersion, Actual: startVersion}
	}

	applied, err := schedule.Apply(mod)
	if err != nil {
		return nil, err
	}

	scope := engine.ScopeOfModification(schedule, mod)
	subset := models.ConstraintSet{Sport: set.Sport}
	for _, c := range set.Constraints {
		if scope.Intersects(c, v.env) {
			subset.Constraints = append(subset.Constraints, c)
		}
	}

	eval := engine.New(v.env, v.workers, v.logger)
	result, err := eval.Evaluate(applied, subset)
	if err != nil {
		return nil, err
	}

	out := &models.ValidationResult{Valid: result.Feasible}
	for _, c := range subset.Constraints {
		out.Evaluated = append(out.Evaluated, c.ID)
	}
	for _, cr := range result.Results {
		c, ok := subset.Find(cr.ConstraintID)
		if !ok || cr.Satisfied {
			continue
		}
		if c.IsHard() {
			out.Violations = append(out.Violations, cr.Violations...)
		} else {
			out.Warnings = append(out.Warnings, cr.Violations...)
		}
		if s := suggestionFor(c.ID); s != "" {
			out.Suggestions = appendUnique(out.Suggestions, s)
		}
	}

	// Optimistic concurrency: the result only stands if no edit was
	// accepted while we evaluated.
	if v.versions != nil {
		current, err := v.versions.ScheduleVersion(ctx, schedule.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read schedule version: %w", err)
		}
		if current != startVersion {
			return nil, &models.VersionConflictError{Expected: startVersion, Actual: current}
		}
	}

	return out, nil
}

// suggestionFor maps a failed constraint kind to a concrete
// follow-up edit.
func suggestionFor(kind string) string {
	switch kind {
	case models.KindMaxConsecutiveRoad, models.KindRoadClustering:
		return "insert a home game to break up the road stretch"
	case models.KindVenueSharing, models.KindVenuePriority:
		return "move the game to an alternate venue or date"
	case models.KindRematchSpacing:
		return "push the rematch further out in the calendar"
	case models.KindSeriesVenue:
		return "keep every game of the series at one venue"
	case models.KindHolidayWeekend:
		return "reschedule holiday-window games onto the allowed weekdays"
	case models.KindByeWeek:
		return "adjust the week so each team keeps exactly one bye"
	case models.KindTeamDayBan:
		return "avoid the team's restricted weekday"
	}
	return ""
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
