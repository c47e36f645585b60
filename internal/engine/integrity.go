package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// Integrity constraints partition the schedule by pair, series, or
// ISO week and check structural completeness.

// evalRoundRobin requires every unordered team pair to meet exactly
// once. Missing pairs and repeated pairs are both violations.
func evalRoundRobin(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	teams := s.TeamIDs()
	sort.Strings(teams)

	meetings := make(map[string][]models.Game)
	for _, g := range s.Games {
		key := models.PairKey(g.HomeTeamID, g.AwayTeamID)
		meetings[key] = append(meetings[key], g)
	}

	var violations []models.Violation
	totalPairs := 0
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			totalPairs++
			key := models.PairKey(teams[i], teams[j])
			games := meetings[key]
			switch {
			case len(games) == 0:
				violations = append(violations, models.Violation{
					ConstraintID: c.ID,
					TeamID:       teams[i],
					Description:  fmt.Sprintf("teams %s and %s never meet", teams[i], teams[j]),
					Severity:     c.Hardness,
				})
			case len(games) > 1:
				models.SortGamesByDate(games)
				violations = append(violations, models.Violation{
					ConstraintID: c.ID,
					TeamID:       teams[i],
					Date:         games[1].Date,
					Description:  fmt.Sprintf("teams %s and %s meet %d times (expected exactly once)", teams[i], teams[j], len(games)),
					Severity:     c.Hardness,
				})
			}
		}
	}

	return pairRatioResult(c, violations, totalPairs)
}

// evalPlayAllOpponents requires every unordered pair to meet at
// least once.
func evalPlayAllOpponents(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	teams := s.TeamIDs()
	sort.Strings(teams)

	met := make(map[string]bool)
	for _, g := range s.Games {
		met[models.PairKey(g.HomeTeamID, g.AwayTeamID)] = true
	}

	var violations []models.Violation
	totalPairs := 0
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			totalPairs++
			if !met[models.PairKey(teams[i], teams[j])] {
				violations = append(violations, models.Violation{
					ConstraintID: c.ID,
					TeamID:       teams[i],
					Description:  fmt.Sprintf("teams %s and %s never meet", teams[i], teams[j]),
					Severity:     c.Hardness,
				})
			}
		}
	}

	return pairRatioResult(c, violations, totalPairs)
}

// evalByeWeek requires exactly one ISO week with zero games per team
// across the season span. Weeks are Thursday-anchored ISO weeks.
func evalByeWeek(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	teams := s.TeamIDs()
	if len(s.Games) == 0 {
		return models.ConstraintResult{ConstraintID: c.ID, Satisfied: true, Score: 1.0}
	}

	weeks := seasonWeeks(s.Games)

	gamesByTeamWeek := make(map[string]map[string]int)
	for _, g := range s.Games {
		week := models.WeekOf(g.Date)
		for _, team := range []string{g.HomeTeamID, g.AwayTeamID} {
			if gamesByTeamWeek[team] == nil {
				gamesByTeamWeek[team] = make(map[string]int)
			}
			gamesByTeamWeek[team][week]++
		}
	}

	var violations []models.Violation
	for _, team := range teams {
		byes := 0
		var firstBye string
		for _, week := range weeks {
			if gamesByTeamWeek[team][week] == 0 {
				byes++
				if firstBye == "" {
					firstBye = week
				}
			}
		}
		if byes != 1 {
			violations = append(violations, models.Violation{
				ConstraintID: c.ID,
				TeamID:       team,
				Description:  fmt.Sprintf("team %s: byeWeekCount=%d (expected exactly 1)", team, byes),
				Severity:     c.Hardness,
			})
		}
	}

	return teamRatioResult(c, violations, len(teams))
}

// evalSeriesVenue requires every game of a series to share one
// venue.
func evalSeriesVenue(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	bySeries := s.GamesBySeries()

	ids := make([]string, 0, len(bySeries))
	for id := range bySeries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var violations []models.Violation
	for _, id := range ids {
		games := bySeries[id]
		venues := make(map[string]bool)
		for _, g := range games {
			venues[g.VenueID] = true
		}
		if len(venues) > 1 {
			names := make([]string, 0, len(venues))
			for v := range venues {
				names = append(names, v)
			}
			sort.Strings(names)
			violations = append(violations, models.Violation{
				ConstraintID: c.ID,
				SeriesID:     id,
				VenueID:      names[0],
				Date:         games[0].Date,
				Description:  fmt.Sprintf("series %s spans venues %s (expected one venue)", id, strings.Join(names, ", ")),
				Severity:     c.Hardness,
			})
		}
	}

	score := 1.0
	if len(bySeries) > 0 {
		score = 1.0 - float64(len(violations))/float64(len(bySeries))
	}
	return models.ConstraintResult{
		ConstraintID: c.ID,
		Satisfied:    len(violations) == 0,
		Score:        score,
		Violations:   violations,
	}
}

// seasonWeeks enumerates the ISO week keys spanned by the games,
// earliest to latest, inclusive.
func seasonWeeks(games []models.Game) []string {
	first, last := games[0].Date, games[0].Date
	for _, g := range games {
		if g.Date.Before(first) {
			first = g.Date
		}
		if g.Date.After(last) {
			last = g.Date
		}
	}

	var weeks []string
	seen := make(map[string]bool)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 7) {
		week := models.WeekOf(d)
		if !seen[week] {
			seen[week] = true
			weeks = append(weeks, week)
		}
	}
	if lastWeek := models.WeekOf(last); !seen[lastWeek] {
		weeks = append(weeks, lastWeek)
	}
	return weeks
}

func pairRatioResult(c models.Constraint, violations []models.Violation, totalPairs int) models.ConstraintResult {
	score := 1.0
	if totalPairs > 0 {
		score = 1.0 - float64(len(violations))/float64(totalPairs)
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
