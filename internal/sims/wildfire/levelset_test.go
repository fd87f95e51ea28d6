package wildfire

import (
	"math"
	"testing"

	"firefront/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLevelSet() LevelSetParams {
	p := DefaultConfig().Params.LevelSet
	p.CurvatureCoeff = 0
	p.NoiseAmplitude = 0
	return p
}

func TestLevelSetSingleSeedStaysCompact(t *testing.T) {
	g := core.NewGrid(10, 10, 5)
	phi := make([]float64, g.Len())
	for i := range phi {
		phi[i] = 50
	}
	phi[g.Index(5, 5)] = -2.5
	rate := make([]float64, g.Len())
	for i := range rate {
		rate[i] = 0.1
	}
	next := make([]float64, g.Len())
	p := quietLevelSet()
	for tick := 0; tick < 10; tick++ {
		LevelSetPass(core.SerialExecutor{}, g, phi, rate, nil, tick, 1, p, next)
		phi, next = next, phi
	}

	// After 10 s at 0.1 m/s the front has moved about a metre, well inside
	// the seed cell's neighbours.
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			v := phi[g.Index(x, y)]
			if x == 5 && y == 5 {
				assert.Equal(t, -2.5, v)
				continue
			}
			assert.Greater(t, v, 0.0, "cell (%d,%d)", x, y)
		}
	}
	east := phi[g.Index(6, 5)]
	assert.InDelta(t, east, phi[g.Index(4, 5)], 1e-9)
	assert.InDelta(t, east, phi[g.Index(5, 6)], 1e-9)
	assert.InDelta(t, east, phi[g.Index(5, 4)], 1e-9)
	assert.Less(t, east, 50.0)
	assert.Greater(t, east, 35.0)
}

func TestLevelSetSignedDistanceFrontMovesAtRate(t *testing.T) {
	g := core.NewGrid(31, 31, 2)
	phi := conePhi(g, 15, 15, 6)
	rate := make([]float64, g.Len())
	for i := range rate {
		rate[i] = 0.5
	}
	next := make([]float64, g.Len())
	LevelSetPass(core.NewParallelExecutor(4), g, phi, rate, nil, 0, 2, quietLevelSet(), next)

	// |∇φ| = 1 along the axis, so φ drops by R·dt.
	idx := g.Index(22, 15)
	assert.InDelta(t, phi[idx]-1, next[idx], 1e-9)
	assert.Equal(t, phi[g.Index(0, 15)], next[g.Index(0, 15)], "boundary")
}

func TestLevelSetPassesThroughWithoutRate(t *testing.T) {
	g := core.NewGrid(8, 8, 1)
	phi := conePhi(g, 4, 4, 1)
	rate := make([]float64, g.Len())
	rate[g.Index(2, 2)] = -3
	next := make([]float64, g.Len())
	LevelSetPass(core.SerialExecutor{}, g, phi, rate, nil, 3, 1, DefaultConfig().Params.LevelSet, next)
	assert.Equal(t, phi, next)
}

func TestTerrainSlopeFactorFavoursUphill(t *testing.T) {
	g := core.NewGrid(21, 21, 1)
	n := g.Len()
	slope := make([]float64, n)
	aspect := make([]float64, n)
	for i := range slope {
		slope[i] = 20
		aspect[i] = 270 // faces -x, so uphill is +x
	}
	ter, err := NewTerrainWithSlope(g, make([]float64, n), slope, aspect)
	require.NoError(t, err)

	p := DefaultConfig().Params.LevelSet
	phi := conePhi(g, 10, 10, 3)
	uphill := terrainSlopeFactor(g, phi, ter, 15, 10, p)
	downhill := terrainSlopeFactor(g, phi, ter, 5, 10, p)
	across := terrainSlopeFactor(g, phi, ter, 10, 15, p)

	assert.InDelta(t, math.Exp(p.SlopeGain*20), uphill, 1e-6)
	assert.Equal(t, p.SlopeFloor, downhill)
	assert.InDelta(t, 1, across, 1e-6)

	assert.Equal(t, 1.0, terrainSlopeFactor(g, phi, FlatTerrain(g, 0), 15, 10, p))
}

func TestHashNoiseRange(t *testing.T) {
	for x := 0; x < 50; x++ {
		for _, tm := range []float64{0, 1.5, 100, 1e4} {
			v := hashNoise(float64(x), float64(2*x+1), tm)
			require.GreaterOrEqual(t, v, -1.0)
			require.LessOrEqual(t, v, 1.0)
		}
	}
	assert.Equal(t, hashNoise(3, 4, 5), hashNoise(3, 4, 5))
}

func TestIgnitionSyncSeedsHotDryNeighbours(t *testing.T) {
	g := core.NewGrid(7, 7, 4)
	fuels := DefaultFuelTable()
	ids, load, moist := uniformFuel(g, FuelShortGrass, fuels)
	temp := make([]float64, g.Len())
	phi := make([]float64, g.Len())
	for i := range phi {
		phi[i] = 10
		temp[i] = 300
	}
	phi[g.Index(3, 3)] = -2

	hotDry := g.Index(4, 3)
	hotWet := g.Index(2, 3)
	coldDry := g.Index(3, 4)
	hotIsolated := g.Index(5, 5)
	for _, i := range []int{hotDry, hotWet, hotIsolated} {
		temp[i] = 650
	}
	moist[hotWet] = 0.5

	dst := make([]float64, g.Len())
	p := DefaultConfig().Params.Ignition
	IgnitionSyncPass(core.SerialExecutor{}, g, IgnitionInputs{
		Phi:         phi,
		Temperature: temp,
		Moisture:    moist,
		FuelIDs:     ids,
		Fuel:        load,
		Fuels:       fuels,
	}, p, dst)

	assert.Equal(t, -0.5*g.CellSize, dst[hotDry])
	assert.Equal(t, 10.0, dst[hotWet])
	assert.Equal(t, 10.0, dst[coldDry])
	assert.Equal(t, 10.0, dst[hotIsolated])
	assert.Equal(t, -2.0, dst[g.Index(3, 3)])

	ids[hotDry] = FuelNone
	IgnitionSyncPass(core.SerialExecutor{}, g, IgnitionInputs{
		Phi: phi, Temperature: temp, Moisture: moist, FuelIDs: ids, Fuel: load, Fuels: fuels,
	}, p, dst)
	assert.Equal(t, 10.0, dst[hotDry], "non-burnable fuel never ignites")
}
