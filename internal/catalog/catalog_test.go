package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
)

func TestNormalizeWeight(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int
	}{
		{"canonical scale passes through", 65, 65},
		{"legacy fraction scales up", 0.65, 65},
		{"exactly one is legacy full weight", 1, 100},
		{"zero stays zero", 0, 0},
		{"negative clamps to zero", -5, 0},
		{"over-range clamps to hundred", 150, 100},
		{"legacy rounds half up", 0.125, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWeight(tt.in))
		})
	}
}

func TestBuildConfigurationDefaultsOnly(t *testing.T) {
	set := BuildConfiguration("basketball", nil)

	require.NotEmpty(t, set.Constraints)
	assert.Equal(t, "basketball", set.Sport)

	// Sorted by id.
	for i := 1; i < len(set.Constraints); i++ {
		assert.Less(t, set.Constraints[i-1].ID, set.Constraints[i].ID)
	}

	c, ok := set.Find(models.KindMaxConsecutiveRoad)
	require.True(t, ok)
	assert.Equal(t, models.Hard, c.Hardness)
	assert.Equal(t, models.SourceSportDefault, c.Source)
	assert.Equal(t, 2, c.ParamInt("maxConsecutive", 0))
}

func TestBuildConfigurationDeterministic(t *testing.T) {
	customs := []Custom{
		{ID: models.KindRematchSpacing, Weight: 0.8},
		{ID: "league_special", Hardness: models.Soft, Weight: 30},
	}

	first := BuildConfiguration("basketball", customs)
	second := BuildConfiguration("basketball", customs)
	assert.Equal(t, first, second)
}

func TestBuildConfigurationOverrideKeepsDefaults(t *testing.T) {
	// Override the rematch weight only; hardness and untouched params
	// come from the default row.
	set := BuildConfiguration("basketball", []Custom{
		{ID: models.KindRematchSpacing, Weight: 0.9, Params: map[string]any{"minDays": 21}},
	})

	c, ok := set.Find(models.KindRematchSpacing)
	require.True(t, ok)
	assert.Equal(t, models.Soft, c.Hardness)
	assert.Equal(t, 90, c.Weight, "legacy 0.9 scales to 90")
	assert.Equal(t, models.SourceCustom, c.Source)
	assert.Equal(t, 21, c.ParamInt("minDays", 0), "custom param wins")
	assert.Equal(t, 4, c.ParamInt("minGames", 0), "default param survives the merge")
}

func TestBuildConfigurationOverrideWithoutWeightKeepsDefault(t *testing.T) {
	set := BuildConfiguration("basketball", []Custom{
		{ID: models.KindWeekendBalance, Params: map[string]any{"minHome": 3}},
	})

	c, ok := set.Find(models.KindWeekendBalance)
	require.True(t, ok)
	assert.Equal(t, 65, c.Weight, "unset weight falls back to the default row")
	assert.Equal(t, 3, c.ParamInt("minHome", 0))
	assert.Equal(t, 2, c.ParamInt("minAway", 0))
}

func TestBuildConfigurationPromoteToHard(t *testing.T) {
	set := BuildConfiguration("basketball", []Custom{
		{ID: models.KindVenueSharing, Hardness: models.Hard},
	})

	c, ok := set.Find(models.KindVenueSharing)
	require.True(t, ok)
	assert.Equal(t, models.Hard, c.Hardness, "caller-supplied hardness overrides")
}

func TestBuildConfigurationUnknownIDRetained(t *testing.T) {
	set := BuildConfiguration("basketball", []Custom{
		{ID: "regional_tv_slot"},
	})

	c, ok := set.Find("regional_tv_slot")
	require.True(t, ok)
	assert.Equal(t, models.SourceCustom, c.Source)
	assert.Equal(t, models.Soft, c.Hardness, "unknown ids default soft")
	assert.Equal(t, 50, c.Weight, "unknown ids with no weight get the midpoint")
}

func TestBuildConfigurationUnknownSportFallsBack(t *testing.T) {
	set := BuildConfiguration("curling", nil)

	require.NotEmpty(t, set.Constraints)
	_, ok := set.Find(models.KindPlayAllOpponents)
	assert.True(t, ok, "generic defaults apply to unlisted sports")
	assert.Equal(t, "curling", set.Sport)
}

func TestBuildConfigurationInputNotAliased(t *testing.T) {
	params := map[string]any{"minDays": 10}
	customs := []Custom{{ID: models.KindRematchSpacing, Weight: 50, Params: params}}

	set := BuildConfiguration("basketball", customs)
	c, _ := set.Find(models.KindRematchSpacing)
	c.Params["minDays"] = 99

	assert.Equal(t, 10, params["minDays"], "caller params are copied, not shared")
}

func TestHierarchyRank(t *testing.T) {
	assert.Less(t, HierarchyRank("basketball"), HierarchyRank("volleyball"))
	assert.Less(t, HierarchyRank("volleyball"), HierarchyRank("baseball"))
	assert.Equal(t, len(VenuePriorityHierarchy), HierarchyRank("cricket"))
}

func TestSportDefaultTablesWellFormed(t *testing.T) {
	for sport, rows := range sportDefaults {
		seen := make(map[string]bool)
		for _, row := range rows {
			assert.False(t, seen[row.id], "%s lists %s twice", sport, row.id)
			seen[row.id] = true
			if row.hardness == models.Soft {
				assert.Greater(t, row.weight, 0, "%s/%s: soft row needs a weight", sport, row.id)
				assert.LessOrEqual(t, row.weight, 100, "%s/%s", sport, row.id)
			}
		}
	}
}
