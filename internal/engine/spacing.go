package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// evalRematchSpacing groups games into unordered matchups and checks
// the gap between consecutive meetings of the same pair. A rematch
// violates only when BOTH the elapsed days fall short of minDays AND
// the elapsed games fall short of minGames; either sufficient gap on
// its own is enough separation.
func evalRematchSpacing(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	minDays := c.ParamInt("minDays", 14)
	minGames := c.ParamInt("minGames", 3)

	byPair := make(map[string][]models.Game)
	for _, g := range s.Games {
		key := models.PairKey(g.HomeTeamID, g.AwayTeamID)
		byPair[key] = append(byPair[key], g)
	}
	byTeam := s.GamesByTeam()

	pairs := make([]string, 0, len(byPair))
	for key := range byPair {
		pairs = append(pairs, key)
	}
	sort.Strings(pairs)

	var violations []models.Violation
	rematches, violating := 0, 0

	for _, key := range pairs {
		games := byPair[key]
		if len(games) < 2 {
			continue
		}
		models.SortGamesByDate(games)
		teams := strings.SplitN(key, "|", 2)

		for i := 1; i < len(games); i++ {
			rematches++
			prev, next := games[i-1], games[i]
			days := int(next.Date.Sub(prev.Date).Hours() / 24)
			gamesBetween := gamesApart(byTeam, teams, prev, next)

			if days < minDays && gamesBetween < minGames {
				violating++
				violations = append(violations, models.Violation{
					ConstraintID: c.ID,
					TeamID:       teams[0],
					Date:         next.Date,
					Description: fmt.Sprintf("rematch %s vs %s after %d days and %d games (need >=%d days or >=%d games)",
						teams[0], teams[1], days, gamesBetween, minDays, minGames),
					Severity: c.Hardness,
				})
			}
		}
	}

	score := 1.0
	if rematches > 0 {
		score = 1.0 - float64(violating)/float64(rematches)
	}
	return models.ConstraintResult{
		ConstraintID: c.ID,
		Satisfied:    violating == 0,
		Score:        score,
		Violations:   violations,
	}
}

// gamesApart counts how many games separate two meetings of a pair,
// taking the smaller of the two teams' intervening game counts.
func gamesApart(byTeam map[string][]models.Game, teams []string, prev, next models.Game) int {
	apart := -1
	for _, team := range teams {
		count := 0
		for _, g := range byTeam[team] {
			if g.Date.After(prev.Date) && g.Date.Before(next.Date) {
				count++
			}
		}
		if apart < 0 || count < apart {
			apart = count
		}
	}
	if apart < 0 {
		return 0
	}
	return apart
}
