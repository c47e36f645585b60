package conflicts

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// Detect analyzes a constraint set for structurally incompatible
// definitions. It runs against the set itself, independent of any
// schedule, and is meant to be called once before evaluation.
func Detect(set models.ConstraintSet) []models.ConflictRecord {
	var records []models.ConflictRecord

	records = append(records, detectDuplicates(set)...)
	records = append(records, detectWindowOvercommit(set)...)
	records = append(records, detectExclusiveDayClaims(set)...)
	records = append(records, detectVenuePriorityInversions(set)...)

	return records
}

// detectDuplicates flags the same identifier appearing twice with
// diverging definitions. Catalog-built sets cannot contain these,
// but hand-assembled sets arriving over the API can.
func detectDuplicates(set models.ConstraintSet) []models.ConflictRecord {
	var records []models.ConflictRecord
	seen := make(map[string]models.Constraint)
	for _, c := range set.Constraints {
		prev, ok := seen[c.ID]
		if !ok {
			seen[c.ID] = c
			continue
		}
		if prev.Hardness != c.Hardness || prev.Weight != c.Weight {
			records = append(records, models.ConflictRecord{
				ConstraintA: prev.ID,
				ConstraintB: c.ID,
				Kind:        models.ConflictDuplicateDefinition,
				Explanation: fmt.Sprintf("constraint %s is defined twice with diverging hardness/weight (%s/%d vs %s/%d)",
					c.ID, prev.Hardness, prev.Weight, c.Hardness, c.Weight),
			})
		}
	}
	return records
}

// detectWindowOvercommit flags balance constraints whose combined
// home and away minimums cannot fit inside their own window.
func detectWindowOvercommit(set models.ConstraintSet) []models.ConflictRecord {
	var records []models.ConflictRecord
	for _, c := range set.Constraints {
		switch c.ID {
		case models.KindFirstWindowBalance, models.KindLastWindowBalance:
		default:
			continue
		}
		windowSize := c.ParamInt("windowSize", 6)
		minHome := c.ParamInt("minHome", 2)
		minAway := c.ParamInt("minAway", 2)
		if minHome+minAway > windowSize {
			records = append(records, models.ConflictRecord{
				ConstraintA: c.ID,
				ConstraintB: c.ID,
				Kind:        models.ConflictWindowOvercommit,
				Explanation: fmt.Sprintf("%s requires %d home + %d away inside a %d-game window, which no schedule can satisfy",
					c.ID, minHome, minAway, windowSize),
			})
		}
	}
	return records
}

// detectExclusiveDayClaims flags day-ban constraints that erase every
// weekday another constraint depends on: a ban covering all allowed
// holiday-window days, or a ban covering the whole weekend while a
// weekend-balance minimum is in force.
func detectExclusiveDayClaims(set models.ConstraintSet) []models.ConflictRecord {
	ban, hasBan := set.Find(models.KindTeamDayBan)
	if !hasBan {
		return nil
	}
	bannedDays := weekdaySet(ban.ParamStrings("bannedDays"))
	if len(bannedDays) == 0 {
		return nil
	}
	// A ban limited to named teams cannot claim a day exclusively.
	if len(ban.ParamStrings("teams")) > 0 {
		return nil
	}

	var records []models.ConflictRecord

	if holiday, ok := set.Find(models.KindHolidayWeekend); ok {
		allowed := holiday.ParamStrings("allowedDays")
		if len(allowed) == 0 {
			allowed = []string{"Thursday", "Friday", "Saturday"}
		}
		remaining := 0
		for _, day := range allowed {
			if !bannedDays[day] {
				remaining++
			}
		}
		if remaining == 0 {
			records = append(records, models.ConflictRecord{
				ConstraintA: holiday.ID,
				ConstraintB: ban.ID,
				Kind:        models.ConflictExclusiveDayClaim,
				Explanation: fmt.Sprintf("%s bans every weekday %s allows inside its window; no in-window game can be legal",
					ban.ID, holiday.ID),
			})
		}
	}

	if weekend, ok := set.Find(models.KindWeekendBalance); ok {
		minHome := weekend.ParamInt("minHome", 2)
		minAway := weekend.ParamInt("minAway", 2)
		if minHome+minAway > 0 && bannedDays["Friday"] && bannedDays["Saturday"] && bannedDays["Sunday"] {
			records = append(records, models.ConflictRecord{
				ConstraintA: weekend.ID,
				ConstraintB: ban.ID,
				Kind:        models.ConflictExclusiveDayClaim,
				Explanation: fmt.Sprintf("%s bans the entire weekend while %s requires weekend minimums", ban.ID, weekend.ID),
			})
		}
	}

	return records
}

// detectVenuePriorityInversions flags a venue-priority constraint
// whose preferred days on a venue are exclusively claimed by a
// lower-weight constraint on the same venue.
func detectVenuePriorityInversions(set models.ConstraintSet) []models.ConflictRecord {
	priority, ok := set.Find(models.KindVenuePriority)
	if !ok {
		return nil
	}
	venue := priority.ParamString("venueId", "")
	preferred := priority.ParamStrings("preferredDays")
	if venue == "" || len(preferred) == 0 {
		return nil
	}

	var records []models.ConflictRecord
	for _, other := range set.Constraints {
		if other.ID == priority.ID {
			continue
		}
		if other.ParamString("venueId", "") != venue {
			continue
		}
		reserved := weekdaySet(other.ParamStrings("reservedDays"))
		if len(reserved) == 0 {
			continue
		}
		claimedAll := true
		for _, day := range preferred {
			if !reserved[day] {
				claimedAll = false
				break
			}
		}
		if claimedAll && other.Weight < priority.Weight {
			records = append(records, models.ConflictRecord{
				ConstraintA: priority.ID,
				ConstraintB: other.ID,
				Kind:        models.ConflictVenuePriorityInversion,
				Explanation: fmt.Sprintf("%s (weight %d) exclusively claims venue %s on %s, the days preferred by %s (weight %d)",
					other.ID, other.Weight, venue, strings.Join(preferred, ", "), priority.ID, priority.Weight),
			})
		}
	}
	return records
}

func weekdaySet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := validWeekdays[n]; ok {
			out[n] = true
		}
	}
	return out
}

var validWeekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}
