package catalog

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

// Custom is a caller-supplied constraint addition or override as it
// arrives over the wire. Weight accepts either the canonical 0-100
// scale or the legacy 0-1 scale; NormalizeWeight settles both.
type Custom struct {
	ID       string          `json:"id" binding:"required"`
	Hardness models.Hardness `json:"hardness"`
	Weight   float64         `json:"weight"`
	Params   map[string]any  `json:"params"`
}

// NormalizeWeight converts a caller-supplied weight to the 0-100
// integer scale. Legacy 0-1 weights are scaled by 100; everything is
// clamped to [0, 100].
func NormalizeWeight(w float64) int {
	if w > 0 && w <= 1 {
		w *= 100
	}
	n := int(math.Round(w))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// BuildConfiguration merges a sport's default constraint table with
// caller-supplied customs. Custom weights and params override the
// default for the same identifier; unknown identifiers are retained
// with weight 50 and Source=custom so conflict analysis can see
// them. Output is deterministic: stable contents, sorted by id.
func BuildConfiguration(sport string, customs []Custom) models.ConstraintSet {
	defaults, ok := sportDefaults[sport]
	if !ok {
		logrus.WithField("sport", sport).Debug("no default constraint table, using generic defaults")
		defaults = genericDefaults
	}

	byID := make(map[string]models.Constraint, len(defaults)+len(customs))
	for _, d := range defaults {
		byID[d.id] = models.Constraint{
			ID:       d.id,
			Sport:    sport,
			Hardness: d.hardness,
			Weight:   d.weight,
			Params:   cloneParams(d.params),
			Source:   models.SourceSportDefault,
		}
	}

	for _, custom := range customs {
		c := models.Constraint{
			ID:       custom.ID,
			Sport:    sport,
			Hardness: custom.Hardness,
			Weight:   NormalizeWeight(custom.Weight),
			Params:   cloneParams(custom.Params),
			Source:   models.SourceCustom,
		}
		if c.Hardness == "" {
			c.Hardness = models.Soft
		}
		if existing, ok := byID[custom.ID]; ok {
			// Override: keep the default's hardness unless the
			// caller set one, merge params custom-over-default.
			if custom.Hardness == "" {
				c.Hardness = existing.Hardness
			}
			if custom.Weight == 0 {
				c.Weight = existing.Weight
			}
			c.Params = mergeParams(existing.Params, custom.Params)
		} else if custom.Weight == 0 && c.Hardness == models.Soft {
			// Unknown identifier with no weight given.
			c.Weight = 50
		}
		byID[custom.ID] = c
	}

	set := models.ConstraintSet{Sport: sport}
	for _, c := range byID {
		set.Constraints = append(set.Constraints, c)
	}
	set.Sort()
	return set
}

func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

func mergeParams(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	out := cloneParams(base)
	if out == nil {
		out = make(map[string]any, len(override))
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
