package validator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcallister-dev/league-scheduler/internal/engine"
	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

func day(n int) time.Time {
	return time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func game(id, home, away string, date time.Time) models.Game {
	return models.Game{
		ID:           id,
		HomeTeamID:   home,
		AwayTeamID:   away,
		VenueID:      home + "-arena",
		Date:         date,
		IsConference: true,
	}
}

// fixedVersions is a VersionSource returning a canned version per
// schedule id.
type fixedVersions map[string]int64

func (f fixedVersions) ScheduleVersion(ctx context.Context, scheduleID string) (int64, error) {
	return f[scheduleID], nil
}

func testSchedule() *models.Schedule {
	return &models.Schedule{
		ID:      "sched-1",
		Season:  "2025-26",
		Sport:   "basketball",
		Version: 3,
		Games: []models.Game{
			game("g1", "a", "b", day(0)),
			game("g2", "b", "a", day(3)),
			game("g3", "c", "a", day(6)),
			game("g4", "a", "d", day(9)),
			game("g5", "c", "d", day(9)),
		},
	}
}

func testSet() models.ConstraintSet {
	cs := models.ConstraintSet{Sport: "basketball", Constraints: []models.Constraint{
		{ID: models.KindMaxConsecutiveRoad, Sport: "basketball", Hardness: models.Hard,
			Params: map[string]any{"maxConsecutive": 2}, Source: models.SourceSportDefault},
		{ID: models.KindSeriesVenue, Sport: "basketball", Hardness: models.Hard, Source: models.SourceSportDefault},
		{ID: models.KindRematchSpacing, Sport: "basketball", Hardness: models.Soft, Weight: 60,
			Params: map[string]any{"minDays": 14, "minGames": 3}, Source: models.SourceSportDefault},
	}}
	cs.Sort()
	return cs
}

func TestValidateAcceptsHarmlessMove(t *testing.T) {
	v := New(nil, 2, nil, fixedVersions{"sched-1": 3})
	s := testSchedule()

	newDate := day(12)
	mod := models.Modification{ScheduleVersion: 3, GameID: "g5", NewDate: &newDate}

	result, err := v.Validate(context.Background(), mod, testSet(), s)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Violations)
}

func TestValidateRejectsHardViolation(t *testing.T) {
	v := New(nil, 2, nil, fixedVersions{"sched-1": 3})
	s := testSchedule()

	// Flip g4 so team a closes with three straight road games.
	newHome := "d"
	newAway := "a"
	mod := models.Modification{ScheduleVersion: 3, GameID: "g4", NewHomeTeamID: &newHome, NewAwayTeamID: &newAway}

	result, err := v.Validate(context.Background(), mod, testSet(), s)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Violations)
	assert.Equal(t, models.KindMaxConsecutiveRoad, result.Violations[0].ConstraintID)
	assert.Contains(t, result.Suggestions, "insert a home game to break up the road stretch")
}

func TestValidateSoftFailureIsWarningOnly(t *testing.T) {
	v := New(nil, 2, nil, fixedVersions{"sched-1": 3})
	s := testSchedule()

	// Pull the a-b rematch in tight: 2 days and no games between.
	newDate := day(2)
	mod := models.Modification{ScheduleVersion: 3, GameID: "g2", NewDate: &newDate}

	result, err := v.Validate(context.Background(), mod, testSet(), s)
	require.NoError(t, err)
	assert.True(t, result.Valid, "soft failures never invalidate: %v", result.Violations)
	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, models.KindRematchSpacing, result.Warnings[0].ConstraintID)
}

func TestValidateSkipsOutOfScopeConstraints(t *testing.T) {
	v := New(nil, 2, nil, fixedVersions{"sched-1": 3})
	s := testSchedule()

	newDate := day(12)
	mod := models.Modification{ScheduleVersion: 3, GameID: "g5", NewDate: &newDate}

	result, err := v.Validate(context.Background(), mod, testSet(), s)
	require.NoError(t, err)

	assert.Contains(t, result.Evaluated, models.KindMaxConsecutiveRoad)
	assert.Contains(t, result.Evaluated, models.KindRematchSpacing)
	assert.NotContains(t, result.Evaluated, models.KindSeriesVenue,
		"series-scoped constraint skipped for a series-less game")
}

func TestValidateMatchesFullEvaluationOnScope(t *testing.T) {
	// The incremental verdict must agree with a full evaluation of the
	// applied schedule restricted to the same scope-relevant subset.
	v := New(nil, 2, nil, nil)
	s := testSchedule()
	cs := testSet()

	newHome := "d"
	newAway := "a"
	mod := models.Modification{ScheduleVersion: 3, GameID: "g4", NewHomeTeamID: &newHome, NewAwayTeamID: &newAway}

	incremental, err := v.Validate(context.Background(), mod, cs, s)
	require.NoError(t, err)

	applied, err := s.Apply(mod)
	require.NoError(t, err)
	scope := engine.ScopeOfModification(s, mod)
	subset := models.ConstraintSet{Sport: cs.Sport}
	for _, c := range cs.Constraints {
		if scope.Intersects(c, nil) {
			subset.Constraints = append(subset.Constraints, c)
		}
	}
	full, err := engine.New(nil, 2, nil).Evaluate(applied, subset)
	require.NoError(t, err)

	assert.Equal(t, full.Feasible, incremental.Valid)

	var fullHard []models.Violation
	for _, cr := range full.Results {
		if c, ok := subset.Find(cr.ConstraintID); ok && c.IsHard() {
			fullHard = append(fullHard, cr.Violations...)
		}
	}
	assert.Equal(t, fullHard, incremental.Violations)
}

func TestValidateStaleModificationVersion(t *testing.T) {
	v := New(nil, 2, nil, nil)
	s := testSchedule()

	newDate := day(12)
	mod := models.Modification{ScheduleVersion: 1, GameID: "g5", NewDate: &newDate}

	_, err := v.Validate(context.Background(), mod, testSet(), s)
	var conflict *models.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.Expected)
	assert.Equal(t, int64(3), conflict.Actual)
}

func TestValidateConcurrentEditDetected(t *testing.T) {
	// The store moves to v4 while validation runs.
	v := New(nil, 2, nil, fixedVersions{"sched-1": 4})
	s := testSchedule()

	newDate := day(12)
	mod := models.Modification{ScheduleVersion: 3, GameID: "g5", NewDate: &newDate}

	_, err := v.Validate(context.Background(), mod, testSet(), s)
	var conflict *models.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(4), conflict.Actual)
}

func TestValidateUnknownGame(t *testing.T) {
	v := New(nil, 2, nil, nil)
	s := testSchedule()

	mod := models.Modification{ScheduleVersion: 3, GameID: "nope"}

	_, err := v.Validate(context.Background(), mod, testSet(), s)
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
}
