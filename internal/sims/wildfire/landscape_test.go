package wildfire

import (
	"testing"

	"firefront/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLandscapeIsSeeded(t *testing.T) {
	g := core.NewGrid(64, 48, 10)
	p := DefaultConfig().Landscape
	fuels := DefaultFuelTable()

	a := GenerateLandscape(g, p, fuels, 5)
	b := GenerateLandscape(g, p, fuels, 5)
	c := GenerateLandscape(g, p, fuels, 6)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Elevation, c.Elevation)

	require.Len(t, a.FuelIDs, g.Len())
	require.Len(t, a.Elevation, g.Len())
	for _, id := range a.FuelIDs {
		require.Less(t, int(id), len(fuels))
	}
}

func TestGenerateLandscapeValleyLowersTerrain(t *testing.T) {
	g := core.NewGrid(40, 40, 10)
	p := DefaultConfig().Landscape
	p.Hills = 0
	p.FuelPatches = 0

	land := GenerateLandscape(g, p, DefaultFuelTable(), 3)
	lowest := land.Elevation[0]
	for _, z := range land.Elevation {
		lowest = min(lowest, z)
		require.LessOrEqual(t, z, 200.0)
	}
	assert.Less(t, lowest, 200-p.ValleyDepth/2)
	for _, id := range land.FuelIDs {
		require.Equal(t, p.BaseFuel, id)
	}

	terrain, err := NewTerrain(g, land.Elevation)
	require.NoError(t, err)
	valleys := AnalyzeValleys(core.SerialExecutor{}, terrain, DefaultConfig().Params.Effects)
	inValley := 0
	for _, v := range valleys {
		if v.InValley {
			inValley++
		}
	}
	assert.Positive(t, inValley)
}
