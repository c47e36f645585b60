package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// Windowed special-date constraints consult the season calendar's
// named windows.

// evalHolidayWeekend is the hard window variant: any series that
// overlaps the named window must play its in-window games only on
// the window's allowed weekdays. One violation per offending series,
// naming the series.
func evalHolidayWeekend(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	windowName := c.ParamString("window", "holiday_break")
	window, ok := env.Window(windowName)
	if !ok {
		// No such window for this season; nothing to restrict.
		return models.ConstraintResult{ConstraintID: c.ID, Satisfied: true, Score: 1.0}
	}
	if days := c.ParamStrings("allowedDays"); len(days) > 0 {
		window.AllowedDays = parseWeekdays(days)
	}

	bySeries := s.GamesBySeries()
	ids := make([]string, 0, len(bySeries))
	for id := range bySeries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var violations []models.Violation
	overlapping := 0
	for _, id := range ids {
		games := bySeries[id]
		inWindow := false
		var badDays []string
		var firstBad time.Time
		for _, g := range games {
			if !window.Contains(g.Date) {
				continue
			}
			inWindow = true
			if !window.AllowsDay(g.Date.Weekday()) {
				if firstBad.IsZero() {
					firstBad = g.Date
				}
				badDays = append(badDays, g.Date.Weekday().String())
			}
		}
		if !inWindow {
			continue
		}
		overlapping++
		if len(badDays) > 0 {
			violations = append(violations, models.Violation{
				ConstraintID: c.ID,
				SeriesID:     id,
				Date:         firstBad,
				Description: fmt.Sprintf("series %s overlaps %s but is scheduled on %s (allowed: %s)",
					id, window.Name, strings.Join(badDays, ", "), weekdayNames(window.AllowedDays)),
				Severity: c.Hardness,
			})
		}
	}

	score := 1.0
	if overlapping > 0 {
		score = 1.0 - float64(len(violations))/float64(overlapping)
	}
	return models.ConstraintResult{
		ConstraintID: c.ID,
		Satisfied:    len(violations) == 0,
		Score:        score,
		Violations:   violations,
	}
}

// evalExamPeriod is the soft window variant: the score drops in
// proportion to the count of games falling inside the window. It
// never gates feasibility.
func evalExamPeriod(s *models.Schedule, c models.Constraint, env *Env) models.ConstraintResult {
	windowName := c.ParamString("window", "exam_period")
	window, ok := env.Window(windowName)
	if !ok || len(s.Games) == 0 {
		return models.ConstraintResult{ConstraintID: c.ID, Satisfied: true, Score: 1.0}
	}

	var violations []models.Violation
	inWindow := 0
	for _, g := range s.Games {
		if window.Contains(g.Date) {
			inWindow++
			violations = append(violations, models.Violation{
				ConstraintID: c.ID,
				TeamID:       g.HomeTeamID,
				VenueID:      g.VenueID,
				Date:         g.Date,
				Description:  fmt.Sprintf("game %s falls inside %s (%s)", g.ID, window.Name, g.Date.Format("2006-01-02")),
				Severity:     c.Hardness,
			})
		}
	}

	return models.ConstraintResult{
		ConstraintID: c.ID,
		Satisfied:    inWindow == 0,
		Score:        1.0 - float64(inWindow)/float64(len(s.Games)),
		Violations:   violations,
	}
}

var weekdaysByName = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

func parseWeekdays(names []string) []time.Weekday {
	var out []time.Weekday
	for _, name := range names {
		if d, ok := weekdaysByName[name]; ok {
			out = append(out, d)
		}
	}
	return out
}

func weekdayNames(days []time.Weekday) string {
	if len(days) == 0 {
		return "any day"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return strings.Join(names, ", ")
}
