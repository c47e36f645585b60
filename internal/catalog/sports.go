package catalog

import "github.com/jmcallister-dev/league-scheduler/internal/models"

// defaultConstraint is one row of a sport's default table. Weight is
// ignored for hard constraints.
type defaultConstraint struct {
	id       string
	hardness models.Hardness
	weight   int
	params   map[string]any
}

// sportDefaults holds the built-in hard/soft constraint tables per
// sport. Unknown sports fall back to genericDefaults.
var sportDefaults = map[string][]defaultConstraint{
	"basketball": {
		{id: models.KindPlayAllOpponents, hardness: models.Hard},
		{id: models.KindMaxConsecutiveRoad, hardness: models.Hard, params: map[string]any{"maxConsecutive": 2}},
		{id: models.KindHolidayWeekend, hardness: models.Hard, params: map[string]any{"window": "holiday_break", "allowedDays": []string{"Thursday", "Friday", "Saturday"}}},
		{id: models.KindFirstWindowBalance, hardness: models.Soft, weight: 70, params: map[string]any{"windowSize": 6, "minHome": 2, "minAway": 2}},
		{id: models.KindLastWindowBalance, hardness: models.Soft, weight: 70, params: map[string]any{"windowSize": 6, "minHome": 2, "minAway": 2}},
		{id: models.KindWeekendBalance, hardness: models.Soft, weight: 65, params: map[string]any{"minHome": 2, "minAway": 2}},
		{id: models.KindRematchSpacing, hardness: models.Soft, weight: 60, params: map[string]any{"minDays": 14, "minGames": 4}},
		{id: models.KindRoadClustering, hardness: models.Soft, weight: 50, params: map[string]any{"windowSize": 5, "maxAwayInWindow": 3, "edgeWindowSize": 6}},
		{id: models.KindVenueSharing, hardness: models.Soft, weight: 55},
		{id: models.KindTravelDistance, hardness: models.Soft, weight: 40, params: map[string]any{"maxTripMiles": 1200.0}},
	},
	"football": {
		{id: models.KindRoundRobin, hardness: models.Hard},
		{id: models.KindByeWeek, hardness: models.Hard},
		{id: models.KindMaxConsecutiveRoad, hardness: models.Hard, params: map[string]any{"maxConsecutive": 2}},
		{id: models.KindWeekendBalance, hardness: models.Soft, weight: 60, params: map[string]any{"minHome": 2, "minAway": 2}},
		{id: models.KindVenuePriority, hardness: models.Soft, weight: 45},
		{id: models.KindTravelDistance, hardness: models.Soft, weight: 50, params: map[string]any{"maxTripMiles": 900.0}},
	},
	"baseball": {
		{id: models.KindSeriesVenue, hardness: models.Hard},
		{id: models.KindPlayAllOpponents, hardness: models.Hard},
		{id: models.KindTeamDayBan, hardness: models.Hard, params: map[string]any{"bannedDays": []string{"Sunday"}}},
		{id: models.KindWeekendBalance, hardness: models.Soft, weight: 65, params: map[string]any{"minHome": 3, "minAway": 3}},
		{id: models.KindExamPeriod, hardness: models.Soft, weight: 40, params: map[string]any{"window": "exam_period"}},
		{id: models.KindTravelDistance, hardness: models.Soft, weight: 45, params: map[string]any{"maxTripMiles": 1500.0}},
	},
	"hockey": {
		{id: models.KindPlayAllOpponents, hardness: models.Hard},
		{id: models.KindSeriesVenue, hardness: models.Hard},
		{id: models.KindWeekendBalance, hardness: models.Soft, weight: 70, params: map[string]any{"minHome": 2, "minAway": 2}},
		{id: models.KindRoadClustering, hardness: models.Soft, weight: 55, params: map[string]any{"windowSize": 5, "maxAwayInWindow": 3}},
		{id: models.KindRematchSpacing, hardness: models.Soft, weight: 50, params: map[string]any{"minDays": 10, "minGames": 3}},
	},
	"volleyball": {
		{id: models.KindRoundRobin, hardness: models.Hard},
		{id: models.KindByeWeek, hardness: models.Hard},
		{id: models.KindExamPeriod, hardness: models.Soft, weight: 60, params: map[string]any{"window": "exam_period"}},
		{id: models.KindWeekendBalance, hardness: models.Soft, weight: 55, params: map[string]any{"minHome": 2, "minAway": 2}},
		{id: models.KindVenueSharing, hardness: models.Soft, weight: 70},
	},
	"soccer": {
		{id: models.KindPlayAllOpponents, hardness: models.Hard},
		{id: models.KindMaxConsecutiveRoad, hardness: models.Hard, params: map[string]any{"maxConsecutive": 3}},
		{id: models.KindRematchSpacing, hardness: models.Soft, weight: 60, params: map[string]any{"minDays": 21, "minGames": 5}},
		{id: models.KindExamPeriod, hardness: models.Soft, weight: 40, params: map[string]any{"window": "exam_period"}},
		{id: models.KindTravelDistance, hardness: models.Soft, weight: 50, params: map[string]any{"maxTripMiles": 1000.0}},
	},
}

// genericDefaults covers sports without a dedicated table.
var genericDefaults = []defaultConstraint{
	{id: models.KindPlayAllOpponents, hardness: models.Hard},
	{id: models.KindWeekendBalance, hardness: models.Soft, weight: 50, params: map[string]any{"minHome": 2, "minAway": 2}},
	{id: models.KindRematchSpacing, hardness: models.Soft, weight: 50, params: map[string]any{"minDays": 14, "minGames": 3}},
}

// VenuePriorityHierarchy ranks sports for shared-venue disputes;
// lower index wins. Used by the conflict resolver's priority-reorder
// strategy.
var VenuePriorityHierarchy = []string{
	"basketball",
	"volleyball",
	"hockey",
	"football",
	"soccer",
	"baseball",
}

// HierarchyRank returns the sport's rank in the venue hierarchy;
// unlisted sports rank last.
func HierarchyRank(sport string) int {
	for i, s := range VenuePriorityHierarchy {
		if s == sport {
			return i
		}
	}
	return len(VenuePriorityHierarchy)
}
