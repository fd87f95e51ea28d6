package wildfire

import (
	"math"
	"testing"

	"firefront/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortGrass(t *testing.T) FuelModel {
	t.Helper()
	m, ok := DefaultFuelTable().Lookup(FuelShortGrass)
	require.True(t, ok)
	return m
}

func TestRothermelRateIncreasesWithWind(t *testing.T) {
	fuel := shortGrass(t)
	p := DefaultConfig().Params.Spread
	prev := -1.0
	for _, u := range []float64{0, 0.5, 1, 2, 5, 10, 20} {
		r := rothermelRate(fuel, fuel.Load, 0.06, u, 0, p)
		require.Greater(t, r, prev, "wind %v", u)
		prev = r
	}
}

func TestRothermelRateMagnitude(t *testing.T) {
	fuel := shortGrass(t)
	p := DefaultConfig().Params.Spread
	calm := rothermelRate(fuel, fuel.Load, 0.06, 0, 0, p)
	windy := rothermelRate(fuel, fuel.Load, 0.06, 4, 0, p)
	// Short grass spreads centimetres per second in calm air and on the
	// order of a metre per second in a moderate breeze.
	assert.Greater(t, calm, 0.001)
	assert.Less(t, calm, 0.2)
	assert.Greater(t, windy, 0.2)
	assert.Less(t, windy, 5.0)
}

func TestRothermelRateSlopeAndMoisture(t *testing.T) {
	fuel := shortGrass(t)
	p := DefaultConfig().Params.Spread
	flat := rothermelRate(fuel, fuel.Load, 0.06, 0, 0, p)
	steep := rothermelRate(fuel, fuel.Load, 0.06, 0, math.Tan(30*math.Pi/180), p)
	assert.Greater(t, steep, flat)

	wet := rothermelRate(fuel, fuel.Load, 0.10, 0, 0, p)
	assert.Less(t, wet, flat)
	assert.Zero(t, rothermelRate(fuel, fuel.Load, fuel.MoistureExtinction, 0, 0, p))
	assert.Zero(t, rothermelRate(fuel, 0, 0.06, 5, 0, p))
}

func TestBackingRateStaysAboveFloor(t *testing.T) {
	fuel := shortGrass(t)
	p := DefaultConfig().Params.Spread
	calm := rothermelRate(fuel, fuel.Load, 0.06, 0, 0, p)
	prev := calm
	for _, u := range []float64{1, 5, 20, 100} {
		r := rothermelRate(fuel, fuel.Load, 0.06, -u, 0, p)
		assert.Less(t, r, prev, "opposing wind %v", u)
		assert.GreaterOrEqual(t, r, p.BackingFloor*calm)
		prev = r
	}
	assert.InDelta(t, 1, backingFactor(0, p.BackingFloor, p.BackingWindRef), 1e-12)
	assert.InDelta(t, 0.625, backingFactor(5, 0.25, 5), 1e-12)
}

func TestCurvatureAndVorticityFactors(t *testing.T) {
	assert.Equal(t, 1.0, curvatureFactor(0.25, 0))
	assert.Equal(t, 2.0, curvatureFactor(0.25, 100))
	assert.Equal(t, 0.5, curvatureFactor(0.25, -100))

	assert.Equal(t, 1.0, vorticityBoost(0.1, 0.2))
	assert.Equal(t, 1.0, vorticityBoost(0.2, 0.2))
	assert.Greater(t, vorticityBoost(0.4, 0.2), 1.0)
	assert.Less(t, vorticityBoost(1e6, 0.2), 2.0)
	assert.Greater(t, vorticityBoost(1e6, 0.2), 1.99)
}

// conePhi returns a signed distance field around cell (cx, cy).
func conePhi(g core.Grid, cx, cy, radius float64) []float64 {
	phi := make([]float64, g.Len())
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			phi[g.Index(x, y)] = math.Hypot(float64(x)-cx, float64(y)-cy)*g.CellSize - radius
		}
	}
	return phi
}

func uniformFuel(g core.Grid, id uint8, fuels FuelTable) (ids []uint8, load, moist []float64) {
	n := g.Len()
	ids = make([]uint8, n)
	load = make([]float64, n)
	moist = make([]float64, n)
	m := fuels[id]
	for i := range ids {
		ids[i] = id
		load[i] = m.Load
		moist[i] = m.InitialMoisture
	}
	return ids, load, moist
}

func TestSpreadRatePassHeadFireOutrunsBackingFire(t *testing.T) {
	g := core.NewGrid(21, 21, 5)
	fuels := DefaultFuelTable()
	ids, load, moist := uniformFuel(g, FuelShortGrass, fuels)
	in := SpreadInputs{
		Phi:      conePhi(g, 10, 10, 20),
		FuelIDs:  ids,
		Fuel:     load,
		Moisture: moist,
		Fuels:    fuels,
		Terrain:  FlatTerrain(g, 0),
		Wind:     UniformWind(g, 5, 90), // toward +x
	}
	dst := make([]float64, g.Len())
	SpreadRatePass(core.SerialExecutor{}, g, in, DefaultConfig().Params.Spread, dst)

	head := dst[g.Index(16, 10)]
	flank := dst[g.Index(10, 16)]
	back := dst[g.Index(4, 10)]
	assert.Greater(t, head, flank)
	assert.Greater(t, flank, back)
	assert.Greater(t, back, 0.0)
}

func TestSpreadRatePassInvalidFuelIsZero(t *testing.T) {
	g := core.NewGrid(5, 5, 10)
	fuels := DefaultFuelTable()
	ids, load, moist := uniformFuel(g, FuelShortGrass, fuels)
	ids[g.Index(2, 2)] = FuelNone
	ids[g.Index(1, 2)] = 200
	in := SpreadInputs{
		Phi:      conePhi(g, 2, 2, 5),
		FuelIDs:  ids,
		Fuel:     load,
		Moisture: moist,
		Fuels:    fuels,
		Terrain:  FlatTerrain(g, 0),
		Wind:     UniformWind(g, 3, 0),
	}
	dst := make([]float64, g.Len())
	SpreadRatePass(core.NewParallelExecutor(2), g, in, DefaultConfig().Params.Spread, dst)
	assert.Zero(t, dst[g.Index(2, 2)])
	assert.Zero(t, dst[g.Index(1, 2)])
	for i, r := range dst {
		assert.GreaterOrEqual(t, r, 0.0, "cell %d", i)
	}
	assert.Greater(t, dst[g.Index(3, 3)], 0.0)
}

func TestSpreadDirectionPointsIntoUnburnedFuel(t *testing.T) {
	g := core.NewGrid(11, 11, 1)
	phi := conePhi(g, 5, 5, 2)
	nx, ny, ok := spreadDirection(g, phi, 8, 5)
	require.True(t, ok)
	assert.InDelta(t, 1, nx, 1e-9)
	assert.InDelta(t, 0, ny, 1e-9)

	nx, ny, ok = spreadDirection(g, phi, 5, 2)
	require.True(t, ok)
	assert.InDelta(t, 0, nx, 1e-9)
	assert.InDelta(t, -1, ny, 1e-9)

	_, _, ok = spreadDirection(g, phi, 0, 5)
	assert.False(t, ok)
}

func TestFrontCurvatureOfCircle(t *testing.T) {
	g := core.NewGrid(41, 41, 1)
	phi := conePhi(g, 20, 20, 10)
	// κ of a circle of radius r is 1/r.
	assert.InDelta(t, 0.1, frontCurvature(g, phi, 30, 20), 0.01)
	assert.InDelta(t, 1.0/19, frontCurvature(g, phi, 39, 20), 0.01)

	flat := make([]float64, g.Len())
	assert.Zero(t, frontCurvature(g, flat, 20, 20))
}
