package engine

import (
	"fmt"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// Consecutive-run constraints scan each team's date-ordered games
// once, left to right.

func evalMaxConsecutiveRoad(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	maxConsecutive := c.ParamInt("maxConsecutive", 2)

	byTeam := s.GamesByTeam()
	teams := s.TeamIDs()

	var violations []models.Violation
	for _, team := range teams {
		run := 0
		longest := 0
		var runStart models.Game
		var longestStart models.Game
		for _, g := range byTeam[team] {
			if !g.IsConference {
				continue
			}
			if g.AwayTeamID == team {
				if run == 0 {
					runStart = g
				}
				run++
				if run > longest {
					longest = run
					longestStart = runStart
				}
			} else {
				run = 0
			}
		}
		if longest > maxConsecutive {
			violations = append(violations, models.Violation{
				ConstraintID: c.ID,
				TeamID:       team,
				Date:         longestStart.Date,
				Description: fmt.Sprintf("team %s: maxConsecutiveRoadGames=%d exceeds limit %d",
					team, longest, maxConsecutive),
				Severity: c.Hardness,
			})
		}
	}

	return teamRatioResult(c, violations, len(teams))
}

// evalRoadClustering slides a fixed-size window over each team's
// games and flags windows with too many road games. Window size, the
// away-game threshold, and the optional first/last edge-window check
// are all parameters; the defaults mirror the 5-game window with a
// 4-away threshold. Offending windows are reported in scan order.
func evalRoadClustering(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	windowSize := c.ParamInt("windowSize", 5)
	maxAway := c.ParamInt("maxAwayInWindow", 3)
	edgeWindow := c.ParamInt("edgeWindowSize", 0)

	byTeam := s.GamesByTeam()
	teams := s.TeamIDs()

	var violations []models.Violation
	violatingTeams := make(map[string]bool)

	for _, team := range teams {
		games := byTeam[team]
		for start := 0; start+windowSize <= len(games); start++ {
			away := 0
			for _, g := range games[start : start+windowSize] {
				if g.AwayTeamID == team {
					away++
				}
			}
			if away > maxAway {
				violatingTeams[team] = true
				violations = append(violations, models.Violation{
					ConstraintID: c.ID,
					TeamID:       team,
					Date:         games[start].Date,
					Description: fmt.Sprintf("team %s: %d of %d games away in window starting at game index %d",
						team, away, windowSize, start),
					Severity: c.Hardness,
				})
			}
		}

		if edgeWindow > 0 && len(games) >= edgeWindow && edgeWindow != windowSize {
			for _, edge := range []struct {
				label string
				span  []models.Game
				start int
			}{
				{"first", games[:edgeWindow], 0},
				{"last", games[len(games)-edgeWindow:], len(games) - edgeWindow},
			} {
				away := 0
				for _, g := range edge.span {
					if g.AwayTeamID == team {
						away++
					}
				}
				if away > maxAway {
					violatingTeams[team] = true
					violations = append(violations, models.Violation{
						ConstraintID: c.ID,
						TeamID:       team,
						Date:         edge.span[0].Date,
						Description: fmt.Sprintf("team %s: %d of %s %d games away (max %d)",
							team, away, edge.label, edgeWindow, maxAway),
						Severity: c.Hardness,
					})
				}
			}
		}
	}

	// A team can offend in several windows; score on teams, not
	// window count.
	score := 1.0
	if len(teams) > 0 {
		score = 1.0 - float64(len(violatingTeams))/float64(len(teams))
	}
	return models.ConstraintResult{
		ConstraintID: c.ID,
		Satisfied:    len(violations) == 0,
		Score:        score,
		Violations:   violations,
	}
}
