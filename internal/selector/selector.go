package selector

import (
	"strings"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// Solver identifiers understood by the external schedule generator.
const (
	AlgorithmTravelingTournament = "traveling_tournament"
	AlgorithmConstraintProgram   = "constraint_programming"
	AlgorithmSimulatedAnnealing  = "simulated_annealing"
	AlgorithmPartialRoundRobin   = "partial_round_robin"
	AlgorithmGenetic             = "genetic_algorithm"
	AlgorithmRoundRobin          = "round_robin"
)

// Preferences are caller hints that feed the decision table.
type Preferences struct {
	TravelPriority bool `json:"travel_priority"`
	MultiObjective bool `json:"multi_objective"`
}

const largeLeagueTeams = 12

// Select picks a solver identifier and configuration hint for the
// external generator. The decision table is evaluated in priority
// order, first match wins; the result carries no feasibility
// guarantee.
func Select(sport string, profile models.ConstraintProfile, prefs Preferences) models.AlgorithmSelection {
	travel := prefs.TravelPriority || profile.TravelPriority
	complex := isComplex(profile)
	large := profile.TeamCount > largeLeagueTeams
	multi := prefs.MultiObjective || profile.MultiObjective

	switch {
	case travel && complex:
		return selection(AlgorithmTravelingTournament, sport, profile,
			"travel priority with a complex constraint profile favors a traveling-tournament solver")

	case complex:
		return selection(AlgorithmConstraintProgram, sport, profile,
			"complex constraint profile without travel priority favors constraint programming")

	case large && travel:
		return selection(AlgorithmSimulatedAnnealing, sport, profile,
			"large league with travel priority favors simulated annealing")

	case profile.DivisionalPlay || profile.UnbalancedRounds:
		return selection(AlgorithmPartialRoundRobin, sport, profile,
			"divisional or unbalanced play calls for a partial round-robin generator")

	case multi:
		return selection(AlgorithmGenetic, sport, profile,
			"multiple objectives favor a genetic-algorithm solver")

	default:
		return selection(AlgorithmRoundRobin, sport, profile,
			"no special requirements: standard round-robin generator")
	}
}

// isComplex reports a complex constraint profile: more than three
// constraints, or any broadcast/venue-limitation identifier.
func isComplex(profile models.ConstraintProfile) bool {
	if len(profile.ConstraintIDs) > 3 {
		return true
	}
	for _, id := range profile.ConstraintIDs {
		if id == models.KindBroadcastWindows || strings.Contains(id, "broadcast") || strings.Contains(id, "venue") {
			return true
		}
	}
	return false
}

func selection(algorithm, sport string, profile models.ConstraintProfile, rationale string) models.AlgorithmSelection {
	cfg := map[string]any{
		"sport":      sport,
		"team_count": profile.TeamCount,
	}
	switch algorithm {
	case AlgorithmSimulatedAnnealing:
		cfg["initial_temperature"] = 1000.0
		cfg["cooling_rate"] = 0.995
	case AlgorithmGenetic:
		cfg["population_size"] = 200
		cfg["generations"] = 500
	case AlgorithmTravelingTournament:
		cfg["max_trip_length"] = 3
	case AlgorithmPartialRoundRobin:
		cfg["rounds"] = 1
	}
	return models.AlgorithmSelection{
		AlgorithmID:   algorithm,
		Configuration: cfg,
		Rationale:     rationale,
	}
}
