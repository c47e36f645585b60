package engine

import (
	"fmt"
	"time"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// Balance-window constraints check home/away counts inside a fixed
// window of each team's conference games. Score is 1 minus the share
// of violating teams.

func evalFirstWindowBalance(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	return windowBalance(s, c, true)
}

func evalLastWindowBalance(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	return windowBalance(s, c, false)
}

func windowBalance(s *models.Schedule, c models.Constraint, first bool) models.ConstraintResult {
	windowSize := c.ParamInt("windowSize", 6)
	minHome := c.ParamInt("minHome", 2)
	minAway := c.ParamInt("minAway", 2)

	byTeam := s.GamesByTeam()
	teams := s.TeamIDs()

	var violations []models.Violation
	for _, team := range teams {
		var conference []models.Game
		for _, g := range byTeam[team] {
			if g.IsConference {
				conference = append(conference, g)
			}
		}
		if len(conference) < windowSize {
			// Not enough conference games to form the window.
			continue
		}

		window := conference[:windowSize]
		label := "first"
		if !first {
			window = conference[len(conference)-windowSize:]
			label = "last"
		}

		home, away := 0, 0
		for _, g := range window {
			if g.HomeTeamID == team {
				home++
			} else {
				away++
			}
		}
		if home < minHome || away < minAway {
			violations = append(violations, models.Violation{
				ConstraintID: c.ID,
				TeamID:       team,
				Date:         window[0].Date,
				Description: fmt.Sprintf("team %s has %d home / %d away in %s %d conference games (need >=%d home, >=%d away)",
					team, home, away, label, windowSize, minHome, minAway),
				Severity: c.Hardness,
			})
		}
	}

	return teamRatioResult(c, violations, len(teams))
}

func evalWeekendBalance(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	minHome := c.ParamInt("minHome", 2)
	minAway := c.ParamInt("minAway", 2)

	byTeam := s.GamesByTeam()
	teams := s.TeamIDs()

	var violations []models.Violation
	for _, team := range teams {
		home, away := 0, 0
		var firstWeekend time.Time
		for _, g := range byTeam[team] {
			if !isWeekend(g.Date) {
				continue
			}
			if firstWeekend.IsZero() {
				firstWeekend = g.Date
			}
			if g.HomeTeamID == team {
				home++
			} else {
				away++
			}
		}
		if home < minHome || away < minAway {
			violations = append(violations, models.Violation{
				ConstraintID: c.ID,
				TeamID:       team,
				Date:         firstWeekend,
				Description: fmt.Sprintf("team %s has %d home / %d away weekend games (need >=%d home, >=%d away)",
					team, home, away, minHome, minAway),
				Severity: c.Hardness,
			})
		}
	}

	return teamRatioResult(c, violations, len(teams))
}

func isWeekend(t time.Time) bool {
	switch t.Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return true
	}
	return false
}

// teamRatioResult builds the standard "violating teams over total
// teams" scoring shape shared by the balance constraints.
func teamRatioResult(c models.Constraint, violations []models.Violation, totalTeams int) models.ConstraintResult {
	score := 1.0
	if totalTeams > 0 {
		score = 1.0 - float64(len(violations))/float64(totalTeams)
	}
	if score < 0 {
		score = 0
	}
	return models.ConstraintResult{
		ConstraintID: c.ID,
		Satisfied:    len(violations) == 0,
		Score:        score,
		Violations:   violations,
	}
}
