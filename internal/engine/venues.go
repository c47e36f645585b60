package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// Cross-entity constraints consult the external venue rule table,
// the per-team day-ban table, and the named exception table.

// evalTeamDayBan enforces team-wide weekday bans (category-specific
// legal restrictions). Bans come from the env's day-ban table plus an
// optional constraint-level bannedDays/teams parameter pair. The
// exception table is consulted before flagging.
func evalTeamDayBan(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	paramDays := parseWeekdays(c.ParamStrings("bannedDays"))
	paramTeams := c.ParamStrings("teams")

	banned := func(team string, day time.Weekday) bool {
		for _, d := range env.BannedDays(team) {
			if d == day {
				return true
			}
		}
		if len(paramDays) == 0 {
			return false
		}
		if len(paramTeams) > 0 {
			applies := false
			for _, t := range paramTeams {
				if t == team {
					applies = true
					break
				}
			}
			if !applies {
				return false
			}
		}
		for _, d := range paramDays {
			if d == day {
				return true
			}
		}
		return false
	}

	var violations []models.Violation
	violatingTeams := make(map[string]bool)
	for _, g := range s.Games {
		for _, team := range []string{g.HomeTeamID, g.AwayTeamID} {
			if !banned(team, g.Date.Weekday()) {
				continue
			}
			if env.Exempt(team, c.ID) {
				continue
			}
			violatingTeams[team] = true
			violations = append(violations, models.Violation{
				ConstraintID: c.ID,
				TeamID:       team,
				VenueID:      g.VenueID,
				Date:         g.Date,
				Description:  fmt.Sprintf("team %s is scheduled on a banned day (%s, game %s)", team, g.Date.Weekday(), g.ID),
				Severity:     c.Hardness,
			})
		}
	}

	return teamRatioResult(c, violations, len(s.TeamIDs()))
}

// evalVenueSharing flags double-bookings: two games at the same
// venue on the same date, within this schedule or against the paired
// other-gender schedule.
func evalVenueSharing(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	type slot struct {
		venue string
		date  string
	}
	occupied := make(map[slot][]models.Game)
	for _, g := range s.Games {
		key := slot{g.VenueID, g.Date.Format("2006-01-02")}
		occupied[key] = append(occupied[key], g)
	}

	slots := make([]slot, 0, len(occupied))
	for k := range occupied {
		slots = append(slots, k)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].venue != slots[j].venue {
			return slots[i].venue < slots[j].venue
		}
		return slots[i].date < slots[j].date
	})

	var violations []models.Violation
	checked := 0
	for _, key := range slots {
		games := occupied[key]
		checked++
		if len(games) > 1 {
			models.SortGamesByDate(games)
			if env.Exempt(games[0].HomeTeamID, c.ID) {
				continue
			}
			violations = append(violations, models.Violation{
				ConstraintID: c.ID,
				TeamID:       games[0].HomeTeamID,
				VenueID:      key.venue,
				Date:         games[0].Date,
				Description:  fmt.Sprintf("venue %s hosts %d games on %s", key.venue, len(games), key.date),
				Severity:     c.Hardness,
			})
			continue
		}
		// Cross-schedule check against the paired program.
		if other := s.OtherGender; other != nil {
			for _, og := range other.Games {
				if og.VenueID == key.venue && og.Date.Format("2006-01-02") == key.date {
					if env.Exempt(games[0].HomeTeamID, c.ID) {
						break
					}
					violations = append(violations, models.Violation{
						ConstraintID: c.ID,
						TeamID:       games[0].HomeTeamID,
						VenueID:      key.venue,
						Date:         games[0].Date,
						Description:  fmt.Sprintf("venue %s is claimed by the paired program's schedule on %s", key.venue, key.date),
						Severity:     c.Hardness,
					})
					break
				}
			}
		}
	}

	score := 1.0
	if checked > 0 {
		score = 1.0 - float64(len(violations))/float64(checked)
	}
	return models.ConstraintResult{
		ConstraintID: c.ID,
		Satisfied:    len(violations) == 0,
		Score:        score,
		Violations:   violations,
	}
}

// evalVenuePriority enforces the venue rule table's priority
// hierarchy: a sport that is not the venue's primary tenant may not
// occupy it on the primary sport's blackout days.
func evalVenuePriority(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	var violations []models.Violation
	ruled := 0
	for _, g := range s.Games {
		rule, ok := env.VenueRule(g.VenueID)
		if !ok {
			continue
		}
		ruled++
		if rule.PrimarySport == "" || rule.PrimarySport == s.Sport {
			continue
		}
		for _, day := range rule.BlackoutDays {
			if g.Date.Weekday() != day {
				continue
			}
			if env.Exempt(g.HomeTeamID, c.ID) {
				break
			}
			violations = append(violations, models.Violation{
				ConstraintID: c.ID,
				TeamID:       g.HomeTeamID,
				VenueID:      g.VenueID,
				Date:         g.Date,
				Description: fmt.Sprintf("venue %s is reserved for %s on %s (game %s)",
					g.VenueID, rule.PrimarySport, day, g.ID),
				Severity: c.Hardness,
			})
			break
		}
	}

	score := 1.0
	if ruled > 0 {
		score = 1.0 - float64(len(violations))/float64(ruled)
	}
	return models.ConstraintResult{
		ConstraintID: c.ID,
		Satisfied:    len(violations) == 0,
		Score:        score,
		Violations:   violations,
	}
}

// evalTravelDistance scores consecutive-trip legs per team against a
// soft mileage budget using the great-circle distance between venue
// coordinates. Venues without coordinates are skipped; with no
// locatable legs the constraint is trivially satisfied.
func evalTravelDistance(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	maxTrip := c.ParamFloat("maxTripMiles", 1200)

	byTeam := s.GamesByTeam()
	teams := s.TeamIDs()

	var violations []models.Violation
	legs, overLegs := 0, 0
	for _, team := range teams {
		games := byTeam[team]
		for i := 1; i < len(games); i++ {
			from, okFrom := env.Locate(games[i-1].VenueID)
			to, okTo := env.Locate(games[i].VenueID)
			if !okFrom || !okTo {
				continue
			}
			legs++
			miles := env.distance(from, to)
			if miles > maxTrip {
				overLegs++
				violations = append(violations, models.Violation{
					ConstraintID: c.ID,
					TeamID:       team,
					VenueID:      games[i].VenueID,
					Date:         games[i].Date,
					Description: fmt.Sprintf("team %s travels %.0f miles from %s to %s (budget %.0f)",
						team, miles, games[i-1].VenueID, games[i].VenueID, maxTrip),
					Severity: c.Hardness,
				})
			}
		}
	}

	score := 1.0
	if legs > 0 {
		score = 1.0 - float64(overLegs)/float64(legs)
	}
	return models.ConstraintResult{
		ConstraintID: c.ID,
		Satisfied:    overLegs == 0,
		Score:        score,
		Violations:   violations,
	}
}
