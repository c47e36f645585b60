package engine

import (
	"time"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
	"github.com/jmcallister-dev/league-scheduler/pkg/geo"
)

// Env carries the external rule tables an evaluation needs: season
// calendar windows, venue rules, legal day bans, the exemption table,
// and venue coordinates for travel scoring. All fields are read-only
// during evaluation; a nil Env behaves like an empty one.
type Env struct {
	// Windows maps window name to the named date window for the
	// schedule's season, as supplied by the season calendar.
	Windows map[string]models.DateWindow

	// VenueRules maps venue id to its sharing/priority rule row.
	VenueRules map[string]models.VenueRule

	// DayBans maps team id to weekdays the team may not play,
	// typically category-specific legal restrictions.
	DayBans map[string][]time.Weekday

	// Exceptions is the named exemption table, keyed by
	// "teamID|constraintID". Consulted before flagging a violation.
	Exceptions map[string]bool

	// Coordinates maps venue id to its location for travel-distance
	// scoring. Venues without coordinates are skipped.
	Coordinates map[string]geo.Coordinate

	// Distance is the great-circle distance function. Defaults to
	// geo.Distance when nil.
	Distance func(a, b geo.Coordinate) float64
}

// Window looks up a named window; ok is false when the calendar has
// no such window for this season.
func (e *Env) Window(name string) (models.DateWindow, bool) {
	if e == nil || e.Windows == nil {
		return models.DateWindow{}, false
	}
	w, ok := e.Windows[name]
	return w, ok
}

// VenueRule looks up the rule row for a venue.
func (e *Env) VenueRule(venueID string) (models.VenueRule, bool) {
	if e == nil || e.VenueRules == nil {
		return models.VenueRule{}, false
	}
	r, ok := e.VenueRules[venueID]
	return r, ok
}

// Exempt reports whether the team holds a named exemption from the
// given constraint.
func (e *Env) Exempt(teamID, constraintID string) bool {
	if e == nil || e.Exceptions == nil {
		return false
	}
	return e.Exceptions[teamID+"|"+constraintID]
}

// BannedDays returns the weekdays the team may not play on.
func (e *Env) BannedDays(teamID string) []time.Weekday {
	if e == nil || e.DayBans == nil {
		return nil
	}
	return e.DayBans[teamID]
}

// Locate returns the coordinates of a venue if known.
func (e *Env) Locate(venueID string) (geo.Coordinate, bool) {
	if e == nil || e.Coordinates == nil {
		return geo.Coordinate{}, false
	}
	c, ok := e.Coordinates[venueID]
	return c, ok
}

func (e *Env) distance(a, b geo.Coordinate) float64 {
	if e != nil && e.Distance != nil {
		return e.Distance(a, b)
	}
	return geo.Distance(a, b)
}
