package conflicts

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jmcallister-dev/league-scheduler/internal/catalog"
	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// Options tunes the resolver. RebalanceFactor scales down the
// lower-weight side of a soft-soft conflict; 0 means the default of
// one half.
type Options struct {
	RebalanceFactor float64 `json:"rebalance_factor"`
}

// Resolve applies resolution strategies to detected conflicts, in
// order: weight rebalancing for soft-soft conflicts, priority
// reordering via the sport venue hierarchy for shared-venue
// disputes, and manual review for hard-hard conflicts. The input set
// is never mutated; a hard constraint is never dropped.
func Resolve(records []models.ConflictRecord, set models.ConstraintSet, opts Options) models.ResolutionResult {
	factor := opts.RebalanceFactor
	if factor <= 0 || factor >= 1 {
		factor = 0.5
	}

	next := cloneSet(set)
	result := models.ResolutionResult{}

	for _, record := range records {
		a, okA := next.Find(record.ConstraintA)
		b, okB := next.Find(record.ConstraintB)
		if !okA || !okB {
			record.Strategy = models.StrategyManualReview
			record.Delta = "constraint no longer present in set"
			result.Unresolved = append(result.Unresolved, record)
			continue
		}

		switch {
		case record.Kind == models.ConflictVenuePriorityInversion:
			record = reorderPriority(&next, record, a, b)
			result.Resolutions = append(result.Resolutions, record)

		case !a.IsHard() && !b.IsHard():
			record = rebalanceWeights(&next, record, a, b, factor)
			result.Resolutions = append(result.Resolutions, record)

		case a.IsHard() && b.IsHard():
			record.Strategy = models.StrategyManualReview
			record.Delta = "hard-hard conflict: no automatic resolution, flagged for manual review"
			logrus.WithFields(logrus.Fields{
				"constraint_a": record.ConstraintA,
				"constraint_b": record.ConstraintB,
				"kind":         record.Kind,
			}).Warn("Unresolvable hard constraint conflict")
			result.Unresolved = append(result.Unresolved, record)

		default:
			// Hard-soft: the hard constraint stands; the soft side
			// is down-weighted so scoring stops fighting it.
			soft := a
			if a.IsHard() {
				soft = b
			}
			record = rebalanceWeights(&next, record, soft, soft, factor)
			result.Resolutions = append(result.Resolutions, record)
		}
	}

	next.Sort()
	result.Constraints = next
	return result
}

// rebalanceWeights scales down the lower-weight soft side of a
// conflict so the pair stops pulling the score in both directions.
func rebalanceWeights(set *models.ConstraintSet, record models.ConflictRecord, a, b models.Constraint, factor float64) models.ConflictRecord {
	target := a
	if b.Weight < a.Weight {
		target = b
	}
	oldWeight := target.Weight
	newWeight := int(float64(oldWeight) * factor)
	setWeight(set, target.ID, newWeight)

	record.Strategy = models.StrategyWeightRebalance
	record.Delta = fmt.Sprintf("constraint %s weight %d -> %d", target.ID, oldWeight, newWeight)
	return record
}

// reorderPriority settles a shared-venue dispute with the fixed
// sport hierarchy: the higher-ranked sport's constraint is lifted
// above the claimant.
func reorderPriority(set *models.ConstraintSet, record models.ConflictRecord, priority, claimant models.Constraint) models.ConflictRecord {
	sportA := priority.ParamString("sport", priority.Sport)
	sportB := claimant.ParamString("sport", claimant.Sport)

	winner, loser := priority, claimant
	if catalog.HierarchyRank(sportB) < catalog.HierarchyRank(sportA) {
		winner, loser = claimant, priority
	}

	if winner.Weight <= loser.Weight {
		oldWeight := winner.Weight
		newWeight := loser.Weight + 10
		if newWeight > 100 {
			newWeight = 100
		}
		setWeight(set, winner.ID, newWeight)
		record.Strategy = models.StrategyPriorityReorder
		record.Delta = fmt.Sprintf("hierarchy places %s first: constraint %s weight %d -> %d (above %s)",
			winnerSport(sportA, sportB, winner, priority), winner.ID, oldWeight, newWeight, loser.ID)
		return record
	}

	record.Strategy = models.StrategyPriorityReorder
	record.Delta = fmt.Sprintf("hierarchy already favors %s; no weight change", winner.ID)
	return record
}

func winnerSport(sportA, sportB string, winner, priority models.Constraint) string {
	if winner.ID == priority.ID {
		return sportA
	}
	return sportB
}

func setWeight(set *models.ConstraintSet, id string, weight int) {
	for i := range set.Constraints {
		if set.Constraints[i].ID == id {
			set.Constraints[i].Weight = weight
			return
		}
	}
}

func cloneSet(set models.ConstraintSet) models.ConstraintSet {
	out := models.ConstraintSet{Sport: set.Sport}
	out.Constraints = make([]models.Constraint, len(set.Constraints))
	copy(out.Constraints, set.Constraints)
	return out
}
