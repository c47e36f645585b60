package models

// Constraint kind identifiers. The evaluator registry and the sport
// default tables are both keyed by these; unknown identifiers route
// to the unknown-constraint warning path.
const (
	KindRoundRobin         = "round_robin"
	KindPlayAllOpponents   = "play_all_opponents"
	KindByeWeek            = "bye_week"
	KindSeriesVenue        = "series_venue"
	KindMaxConsecutiveRoad = "max_consecutive_road"
	KindHolidayWeekend     = "holiday_weekend"
	KindTeamDayBan         = "team_day_ban"

	KindFirstWindowBalance = "first_window_balance"
	KindLastWindowBalance  = "last_window_balance"
	KindWeekendBalance     = "weekend_balance"
	KindRoadClustering     = "road_clustering"
	KindRematchSpacing     = "rematch_spacing"
	KindExamPeriod         = "exam_period"
	KindTravelDistance     = "travel_distance"
	KindVenueSharing       = "venue_sharing"
	KindVenuePriority      = "venue_priority"
	KindBroadcastWindows   = "broadcast_windows"
)
