package engine

import (
	"time"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// ScopeClass declares which slice of a schedule a constraint kind
// reads. Incremental validation uses it to skip constraints whose
// scope a modification cannot touch.
type ScopeClass int

const (
	// ScopeSchedule constraints read the whole schedule; any edit
	// intersects them.
	ScopeSchedule ScopeClass = iota
	// ScopeTeam constraints group by team.
	ScopeTeam
	// ScopeSeries constraints group by series id.
	ScopeSeries
	// ScopeVenueDate constraints group by venue and date.
	ScopeVenueDate
	// ScopeWindow constraints read only games near named calendar
	// windows.
	ScopeWindow
)

var scopeByKind = map[string]ScopeClass{
	models.KindRoundRobin:         ScopeSchedule,
	models.KindPlayAllOpponents:   ScopeSchedule,
	models.KindByeWeek:            ScopeSchedule,
	models.KindSeriesVenue:        ScopeSeries,
	models.KindMaxConsecutiveRoad: ScopeTeam,
	models.KindHolidayWeekend:     ScopeWindow,
	models.KindTeamDayBan:         ScopeTeam,
	models.KindFirstWindowBalance: ScopeTeam,
	models.KindLastWindowBalance:  ScopeTeam,
	models.KindWeekendBalance:     ScopeTeam,
	models.KindRoadClustering:     ScopeTeam,
	models.KindRematchSpacing:     ScopeTeam,
	models.KindExamPeriod:         ScopeWindow,
	models.KindTravelDistance:     ScopeTeam,
	models.KindVenueSharing:       ScopeVenueDate,
	models.KindVenuePriority:      ScopeVenueDate,
}

// ScopeOf returns the scope class for a constraint kind. Unknown
// kinds are schedule-wide, the conservative answer.
func ScopeOf(kind string) ScopeClass {
	if s, ok := scopeByKind[kind]; ok {
		return s
	}
	return ScopeSchedule
}

// ModificationScope is the set of entities a single-game edit
// touches: the teams on the game before and after the edit, the
// series, the venues, and the dates involved.
type ModificationScope struct {
	Teams  map[string]bool
	Series map[string]bool
	Venues map[string]bool
	Dates  []time.Time
}

// ScopeOfModification computes the affected scope of a modification
// against the current schedule.
func ScopeOfModification(s *models.Schedule, mod models.Modification) ModificationScope {
	scope := ModificationScope{
		Teams:  make(map[string]bool),
		Series: make(map[string]bool),
		Venues: make(map[string]bool),
	}
	for _, g := range s.Games {
		if g.ID != mod.GameID {
			continue
		}
		scope.Teams[g.HomeTeamID] = true
		scope.Teams[g.AwayTeamID] = true
		if g.SeriesID != "" {
			scope.Series[g.SeriesID] = true
		}
		scope.Venues[g.VenueID] = true
		scope.Dates = append(scope.Dates, g.Date)
		break
	}
	if mod.NewHomeTeamID != nil {
		scope.Teams[*mod.NewHomeTeamID] = true
	}
	if mod.NewAwayTeamID != nil {
		scope.Teams[*mod.NewAwayTeamID] = true
	}
	if mod.NewVenueID != nil {
		scope.Venues[*mod.NewVenueID] = true
	}
	if mod.NewDate != nil {
		scope.Dates = append(scope.Dates, *mod.NewDate)
	}
	return scope
}

// Intersects reports whether a constraint's scope can overlap the
// modification's affected scope. Env windows are consulted for
// window-scoped constraints.
func (ms ModificationScope) Intersects(c models.Constraint, env *Env) bool {
	switch ScopeOf(c.ID) {
	case ScopeSchedule:
		return true
	case ScopeTeam:
		return len(ms.Teams) > 0
	case ScopeSeries:
		return len(ms.Series) > 0
	case ScopeVenueDate:
		return len(ms.Venues) > 0
	case ScopeWindow:
		window, ok := env.Window(windowNameFor(c))
		if !ok {
			return false
		}
		for _, d := range ms.Dates {
			if window.Contains(d) {
				return true
			}
		}
		return false
	}
	return true
}

func windowNameFor(c models.Constraint) string {
	fallback := "holiday_break"
	if c.ID == models.KindExamPeriod {
		fallback = "exam_period"
	}
	return c.ParamString("window", fallback)
}
