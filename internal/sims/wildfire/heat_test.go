package wildfire

import (
	"testing"

	"firefront/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsorbHeatEvaporatesMoistureFirst(t *testing.T) {
	const mass, cp = 2.0, 1500.0
	water := 0.1 * mass * LatentHeatVapor

	m, temp := AbsorbHeat(water/2, mass, 0.1, 300, cp)
	assert.InDelta(t, 0.05, m, 1e-12)
	assert.Equal(t, 300.0, temp, "no temperature rise while water remains")

	m, temp = AbsorbHeat(water+3000, mass, 0.1, 300, cp)
	assert.Zero(t, m)
	assert.InDelta(t, 301, temp, 1e-9)

	m, temp = AbsorbHeat(0, mass, 0.1, 300, cp)
	assert.Equal(t, 0.1, m)
	assert.Equal(t, 300.0, temp)
}

func TestDrierFuelReachesIgnitionFirst(t *testing.T) {
	const mass, cp, q = 1.0, 1500.0, 50e3
	ignition := DefaultConfig().Params.Ignition.Temperature
	ticksToIgnite := func(moisture float64) int {
		temp := 303.15
		for tick := 1; tick <= 1000; tick++ {
			moisture, temp = AbsorbHeat(q, mass, moisture, temp, cp)
			if temp >= ignition {
				return tick
			}
		}
		return -1
	}
	dry := ticksToIgnite(0.05)
	wet := ticksToIgnite(0.25)
	require.Positive(t, dry)
	require.Positive(t, wet)
	assert.Less(t, dry, wet)
}

// heatCellGrid is a 3x3 grid whose single interior cell carries fuel.
func heatCellGrid(moisture float64) (core.Grid, HeatInputs) {
	g := core.NewGrid(3, 3, 1)
	n := g.Len()
	in := HeatInputs{
		Temperature: make([]float64, n),
		Moisture:    make([]float64, n),
		Fuel:        make([]float64, n),
		Phi:         make([]float64, n),
		HeatSource:  make([]float64, n),
		FuelIDs:     make([]uint8, n),
		Fuels:       DefaultFuelTable(),
		Wind:        UniformWind(g, 0, 0),
		Ambient:     303.15,
	}
	for i := 0; i < n; i++ {
		in.Temperature[i] = in.Ambient
		in.Phi[i] = 10
		in.FuelIDs[i] = FuelShortGrass
	}
	c := g.Index(1, 1)
	in.Fuel[c] = 1
	in.Moisture[c] = moisture
	in.HeatSource[c] = 50e3
	return g, in
}

func TestHeatPassDrierCellCrossesIgnitionEarlier(t *testing.T) {
	p := DefaultConfig().Params.Heat
	ignition := DefaultConfig().Params.Ignition.Temperature
	crossing := func(moisture float64) int {
		g, in := heatCellGrid(moisture)
		c := g.Index(1, 1)
		temp := make([]float64, g.Len())
		moist := make([]float64, g.Len())
		for tick := 1; tick <= 200; tick++ {
			HeatPass(core.SerialExecutor{}, g, in, p, 1, temp, moist)
			in.Temperature, temp = temp, in.Temperature
			in.Moisture, moist = moist, in.Moisture
			if in.Temperature[c] >= ignition {
				return tick
			}
		}
		return -1
	}
	dry := crossing(0.05)
	wet := crossing(0.25)
	require.Positive(t, dry)
	require.Positive(t, wet)
	assert.Less(t, dry, wet)
}

func TestHeatPassRadiatesToNeighbours(t *testing.T) {
	g := core.NewGrid(5, 5, 2)
	n := g.Len()
	fuels := DefaultFuelTable()
	ids, load, moist := uniformFuel(g, FuelTimberGrass, fuels)
	in := HeatInputs{
		Temperature: make([]float64, n),
		Moisture:    moist,
		Fuel:        load,
		Phi:         make([]float64, n),
		FuelIDs:     ids,
		Fuels:       fuels,
		Wind:        UniformWind(g, 0, 0),
		Ambient:     300,
	}
	for i := range in.Temperature {
		in.Temperature[i] = 300
		in.Phi[i] = 5
	}
	center := g.Index(2, 2)
	in.Temperature[center] = 1200
	in.Phi[center] = -1
	bare := g.Index(3, 3)
	in.Fuel[bare] = 0

	temp := make([]float64, n)
	dstMoist := make([]float64, n)
	HeatPass(core.NewParallelExecutor(2), g, in, DefaultConfig().Params.Heat, 1, temp, dstMoist)

	assert.Greater(t, temp[g.Index(1, 2)], 300.0)
	assert.Greater(t, temp[g.Index(2, 1)], 300.0)
	assert.Less(t, temp[center], 1200.0)
	assert.Equal(t, 300.0, temp[bare], "cells without fuel sit at ambient")
	assert.Equal(t, 300.0, temp[g.Index(0, 2)], "boundary is ambient")
	for i := range temp {
		assert.LessOrEqual(t, temp[i], maxTemperatureK)
		assert.GreaterOrEqual(t, temp[i], 300-ambientFloorDelta)
		assert.GreaterOrEqual(t, dstMoist[i], 0.0)
	}
}

func TestHeatPassAdvectsDownwind(t *testing.T) {
	g := core.NewGrid(7, 3, 10)
	n := g.Len()
	fuels := DefaultFuelTable()
	ids, load, moist := uniformFuel(g, FuelChaparral, fuels)
	mk := func(wind float64) []float64 {
		in := HeatInputs{
			Temperature: make([]float64, n),
			Moisture:    moist,
			Fuel:        load,
			Phi:         make([]float64, n),
			FuelIDs:     ids,
			Fuels:       fuels,
			Wind:        UniformWind(g, wind, 90),
			Ambient:     300,
		}
		for i := range in.Temperature {
			in.Temperature[i] = 300
			in.Phi[i] = 1
		}
		in.Temperature[g.Index(3, 1)] = 800
		out := make([]float64, n)
		HeatPass(core.SerialExecutor{}, g, in, DefaultConfig().Params.Heat, 1, out, make([]float64, n))
		return out
	}
	calm := mk(0)
	windy := mk(3)
	assert.Greater(t, windy[g.Index(4, 1)], calm[g.Index(4, 1)])
	assert.InDelta(t, calm[g.Index(2, 1)], windy[g.Index(2, 1)], 1e-9)
}

func TestHeatPassWithoutFuelModelsKeepsAmbient(t *testing.T) {
	g := core.NewGrid(3, 3, 10)
	n := g.Len()
	in := HeatInputs{
		Temperature: make([]float64, n),
		Moisture:    make([]float64, n),
		Fuel:        make([]float64, n),
		Phi:         make([]float64, n),
		FuelIDs:     make([]uint8, n),
		Wind:        UniformWind(g, 2, 0),
		Ambient:     300,
	}
	for i := 0; i < n; i++ {
		in.Temperature[i] = 600
		in.Fuel[i] = 0.5
		in.Moisture[i] = 0.1
	}
	temp, moist := make([]float64, n), make([]float64, n)
	require.NotPanics(t, func() {
		HeatPass(core.SerialExecutor{}, g, in, DefaultConfig().Params.Heat, 1, temp, moist)
	})
	assert.Equal(t, 300.0, temp[g.Index(1, 1)])
	assert.Equal(t, 0.1, moist[g.Index(1, 1)])
}
