package models

import "time"

// DateWindow is a named special-date span supplied by the season
// calendar (holiday breaks, exam periods). AllowedDays is consulted
// only by hard window constraints; empty means no weekday
// restriction.
type DateWindow struct {
	Name        string         `json:"name"`
	Season      string         `json:"season"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	AllowedDays []time.Weekday `json:"allowed_days,omitempty"`
}

// Contains reports whether the date falls inside the window,
// boundaries inclusive.
func (w DateWindow) Contains(t time.Time) bool {
	day := t.Truncate(24 * time.Hour)
	return !day.Before(w.Start.Truncate(24*time.Hour)) && !day.After(w.End.Truncate(24*time.Hour))
}

// AllowsDay reports whether games inside the window may fall on the
// given weekday.
func (w DateWindow) AllowsDay(d time.Weekday) bool {
	if len(w.AllowedDays) == 0 {
		return true
	}
	for _, allowed := range w.AllowedDays {
		if allowed == d {
			return true
		}
	}
	return false
}

// VenueRule is one row of the external per-venue rule table consumed
// by venue-sharing and venue-priority constraints.
type VenueRule struct {
	VenueID      string         `json:"venue_id"`
	PrimarySport string         `json:"primary_sport"`
	SharedSports []string       `json:"shared_sports,omitempty"`
	BlackoutDays []time.Weekday `json:"blackout_days,omitempty"`
}
