package wildfire

import (
	"testing"

	"firefront/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type combustionCase struct {
	grid core.Grid
	in   CombustionInputs
	out  CombustionOutputs
}

func newCombustionCase(phi, temp, moisture float64) *combustionCase {
	g := core.NewGrid(1, 1, 5)
	fuels := DefaultFuelTable()
	return &combustionCase{
		grid: g,
		in: CombustionInputs{
			Phi:         []float64{phi},
			Temperature: []float64{temp},
			Moisture:    []float64{moisture},
			Fuel:        []float64{fuels[FuelTimberGrass].Load},
			Oxygen:      []float64{1},
			FuelIDs:     []uint8{FuelTimberGrass},
			Fuels:       fuels,
			Weather:     DefaultWeather(),
		},
		out: CombustionOutputs{
			Moisture:   make([]float64, 1),
			Fuel:       make([]float64, 1),
			Oxygen:     make([]float64, 1),
			HeatSource: make([]float64, 1),
		},
	}
}

func (c *combustionCase) step(p Params) {
	CombustionPass(core.SerialExecutor{}, c.grid, c.in, p, 1, c.out)
	copy(c.in.Moisture, c.out.Moisture)
	copy(c.in.Fuel, c.out.Fuel)
	copy(c.in.Oxygen, c.out.Oxygen)
}

func TestCombustionConsumesFuelMonotonically(t *testing.T) {
	p := DefaultConfig().Params
	c := newCombustionCase(-1, 900, 0.02)
	prev := c.in.Fuel[0]
	var released float64
	for tick := 0; tick < 20; tick++ {
		c.step(p)
		require.LessOrEqual(t, c.in.Fuel[0], prev, "tick %d", tick)
		require.GreaterOrEqual(t, c.in.Fuel[0], 0.0)
		require.GreaterOrEqual(t, c.out.HeatSource[0], 0.0)
		released += c.out.HeatSource[0]
		prev = c.in.Fuel[0]
	}
	assert.Less(t, c.in.Fuel[0], DefaultFuelTable()[FuelTimberGrass].Load)
	assert.Greater(t, released, 0.0)
	assert.Less(t, c.in.Oxygen[0], 1.0)
}

func TestCombustionEvaporatesBeforeBurning(t *testing.T) {
	p := DefaultConfig().Params
	c := newCombustionCase(-1, 600, 0.4)
	load := c.in.Fuel[0]
	c.step(p)
	assert.Less(t, c.out.Moisture[0], 0.4)
	assert.Equal(t, load, c.out.Fuel[0])
	assert.Zero(t, c.out.HeatSource[0])
}

func TestCombustionNeedsIgnitionTemperature(t *testing.T) {
	p := DefaultConfig().Params
	c := newCombustionCase(-1, 450, 0.02)
	load := c.in.Fuel[0]
	c.step(p)
	assert.Equal(t, load, c.out.Fuel[0])
	assert.Zero(t, c.out.HeatSource[0])
}

func TestCombustionLimitedByOxygen(t *testing.T) {
	p := DefaultConfig().Params
	c := newCombustionCase(-1, 1000, 0)
	c.in.Oxygen[0] = 0
	p.Combustion.OxygenReplenish = 0
	load := c.in.Fuel[0]
	c.step(p)
	assert.Equal(t, load, c.out.Fuel[0])
	assert.Zero(t, c.out.HeatSource[0])
}

func TestUnburnedFuelRelaxesToEquilibrium(t *testing.T) {
	p := DefaultConfig().Params
	p.Moisture.TimeConstant = 10
	w := DefaultWeather()

	wet := newCombustionCase(5, w.AmbientTemperature, 0.30)
	wet.step(p)
	assert.Less(t, wet.out.Moisture[0], 0.30)
	assert.Greater(t, wet.out.Moisture[0], EquilibriumMoisture(w.AmbientTemperature, w.RelativeHumidity, false))

	dry := newCombustionCase(5, w.AmbientTemperature, 0.01)
	dry.step(p)
	assert.Greater(t, dry.out.Moisture[0], 0.01)

	// A heated cell never takes on water.
	heated := newCombustionCase(5, w.AmbientTemperature+40, 0.01)
	heated.step(p)
	assert.Equal(t, 0.01, heated.out.Moisture[0])

	p.Moisture.Enabled = false
	off := newCombustionCase(5, w.AmbientTemperature, 0.30)
	off.step(p)
	assert.Equal(t, 0.30, off.out.Moisture[0])
}

func TestEquilibriumMoisture(t *testing.T) {
	assert.Equal(t, 0.01, EquilibriumMoisture(303, 0, false))
	mid := EquilibriumMoisture(293.15, 0.5, false)
	assert.Greater(t, mid, 0.01)
	assert.Less(t, mid, 0.40)
	assert.Less(t, EquilibriumMoisture(293.15, 0.5, true), mid, "adsorption sits below desorption")
	assert.Greater(t, EquilibriumMoisture(293.15, 0.8, false), mid)
}

func TestReplenishOxygen(t *testing.T) {
	assert.InDelta(t, 0.525, replenishOxygen(0.5, 0.05, 1), 1e-12)
	assert.Equal(t, 0.5, replenishOxygen(0.5, 0, 1))
	assert.InDelta(t, 1.0, replenishOxygen(0.2, 2, 1), 1e-12)
}
