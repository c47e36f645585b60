package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Game is a single scheduled matchup. Games are immutable for the
// duration of an evaluation pass; edits go through a Modification.
type Game struct {
	ID           string    `json:"id"`
	HomeTeamID   string    `json:"home_team_id"`
	AwayTeamID   string    `json:"away_team_id"`
	VenueID      string    `json:"venue_id"`
	Date         time.Time `json:"date"`
	GameTime     string    `json:"game_time,omitempty"`
	IsConference bool      `json:"is_conference"`
	SeriesID     string    `json:"series_id,omitempty"`
}

// Schedule is a candidate season schedule supplied by the caller.
// Version increases on every accepted mutation and backs the
// optimistic-concurrency check in modification validation.
type Schedule struct {
	ID      string `json:"id"`
	Season  string `json:"season"`
	Sport   string `json:"sport"`
	Games   []Game `json:"games"`
	Version int64  `json:"version"`

	// OtherGender is a read-only reference to the paired program's
	// schedule, consulted only by cross-schedule venue-sharing
	// constraints. Never mutated here.
	OtherGender *Schedule `json:"-"`
}

// Modification is a proposed single-game edit. Nil pointer fields are
// left unchanged on the target game.
type Modification struct {
	ScheduleVersion int64      `json:"schedule_version"`
	GameID          string     `json:"game_id"`
	NewDate         *time.Time `json:"new_date,omitempty"`
	NewVenueID      *string    `json:"new_venue_id,omitempty"`
	NewHomeTeamID   *string    `json:"new_home_team_id,omitempty"`
	NewAwayTeamID   *string    `json:"new_away_team_id,omitempty"`
}

// Normalize assigns ids where missing and validates structural
// integrity of the schedule. Returns a ValidationError on malformed
// input; the request should be aborted in that case.
func (s *Schedule) Normalize() error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	seen := make(map[string]bool, len(s.Games))
	for i := range s.Games {
		g := &s.Games[i]
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		if seen[g.ID] {
			return NewValidationError(fmt.Sprintf("duplicate game id %s", g.ID))
		}
		seen[g.ID] = true
		if g.HomeTeamID == "" || g.AwayTeamID == "" {
			return NewValidationError(fmt.Sprintf("game %s is missing a team reference", g.ID))
		}
		if g.HomeTeamID == g.AwayTeamID {
			return NewValidationError(fmt.Sprintf("game %s has identical home and away teams (%s)", g.ID, g.HomeTeamID))
		}
		if g.Date.IsZero() {
			return NewValidationError(fmt.Sprintf("game %s has no date", g.ID))
		}
	}
	return nil
}

// TeamIDs returns the distinct team ids appearing in the schedule,
// in first-appearance order.
func (s *Schedule) TeamIDs() []string {
	var teams []string
	seen := make(map[string]bool)
	for _, g := range s.Games {
		for _, id := range []string{g.HomeTeamID, g.AwayTeamID} {
			if !seen[id] {
				seen[id] = true
				teams = append(teams, id)
			}
		}
	}
	return teams
}

// GamesByTeam groups games per participating team, each list sorted
// by date. The grouping copies game values; callers may not mutate
// the schedule through it.
func (s *Schedule) GamesByTeam() map[string][]Game {
	byTeam := make(map[string][]Game)
	for _, g := range s.Games {
		byTeam[g.HomeTeamID] = append(byTeam[g.HomeTeamID], g)
		byTeam[g.AwayTeamID] = append(byTeam[g.AwayTeamID], g)
	}
	for team := range byTeam {
		SortGamesByDate(byTeam[team])
	}
	return byTeam
}

// GamesBySeries groups games by series id, skipping games that are
// not part of a series.
func (s *Schedule) GamesBySeries() map[string][]Game {
	bySeries := make(map[string][]Game)
	for _, g := range s.Games {
		if g.SeriesID == "" {
			continue
		}
		bySeries[g.SeriesID] = append(bySeries[g.SeriesID], g)
	}
	for id := range bySeries {
		SortGamesByDate(bySeries[id])
	}
	return bySeries
}

// Clone returns a deep copy of the schedule safe for tentative edits.
// The other-gender reference is carried over as-is (read-only).
func (s *Schedule) Clone() *Schedule {
	games := make([]Game, len(s.Games))
	copy(games, s.Games)
	return &Schedule{
		ID:          s.ID,
		Season:      s.Season,
		Sport:       s.Sport,
		Games:       games,
		Version:     s.Version,
		OtherGender: s.OtherGender,
	}
}

// Apply returns a copy of the schedule with the modification applied
// to its target game. The receiver is not mutated.
func (s *Schedule) Apply(mod Modification) (*Schedule, error) {
	next := s.Clone()
	for i := range next.Games {
		if next.Games[i].ID != mod.GameID {
			continue
		}
		g := &next.Games[i]
		if mod.NewDate != nil {
			g.Date = *mod.NewDate
		}
		if mod.NewVenueID != nil {
			g.VenueID = *mod.NewVenueID
		}
		if mod.NewHomeTeamID != nil {
			g.HomeTeamID = *mod.NewHomeTeamID
		}
		if mod.NewAwayTeamID != nil {
			g.AwayTeamID = *mod.NewAwayTeamID
		}
		if g.HomeTeamID == g.AwayTeamID {
			return nil, NewValidationError(fmt.Sprintf("modification makes game %s self-paired (%s)", g.ID, g.HomeTeamID))
		}
		return next, nil
	}
	return nil, NewValidationError(fmt.Sprintf("game %s not found in schedule %s", mod.GameID, s.ID))
}

// WeekOf returns the ISO week key ("2025-W47") for a date. ISO weeks
// are Thursday-anchored, matching the league's week-numbering
// convention.
func WeekOf(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// PairKey returns the order-independent key for a matchup.
func PairKey(teamA, teamB string) string {
	if teamA < teamB {
		return teamA + "|" + teamB
	}
	return teamB + "|" + teamA
}

// SortGamesByDate orders games by date, breaking ties by game id so
// identical inputs always produce identical orderings.
func SortGamesByDate(games []Game) {
	sort.Slice(games, func(i, j int) bool {
		if !games[i].Date.Equal(games[j].Date) {
			return games[i].Date.Before(games[j].Date)
		}
		return games[i].ID < games[j].ID
	})
}
