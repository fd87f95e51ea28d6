package wildfire

import (
	"testing"

	"firefront/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func behaviourInputs(g core.Grid, rate float64, wind float64) BehaviourInputs {
	n := g.Len()
	in := BehaviourInputs{
		Rate:     make([]float64, n),
		Crown:    make([]CrownState, n),
		Regime:   make([]FireRegime, n),
		Moisture: make([]float64, n),
		Wind:     UniformWind(g, wind, 0),
	}
	for i := range in.Rate {
		in.Rate[i] = rate
		in.Moisture[i] = 0.08
	}
	return in
}

func TestFireBehaviourActiveCrownRunsAtCruzRate(t *testing.T) {
	g := core.NewGrid(3, 3, 10)
	in := behaviourInputs(g, 0.01, 10)
	in.Crown[g.Index(1, 1)] = CrownActive
	dst := make([]float64, g.Len())

	FireBehaviourPass(core.SerialExecutor{}, g, in, DefaultCanopy(), DefaultConfig().Params.LevelSet, 0, dst)

	want := CruzCrownRate(10, 0.08)
	require.Greater(t, want, 0.01)
	for i, r := range dst {
		assert.InDelta(t, want, r, 1e-12, "cell %d", i)
	}
}

func TestFireBehaviourPassiveCrownReachesNeighboursOnly(t *testing.T) {
	g := core.NewGrid(5, 1, 10)
	in := behaviourInputs(g, 0.2, 4)
	in.Crown[0] = CrownPassive
	canopy := DefaultCanopy()
	dst := make([]float64, g.Len())

	FireBehaviourPass(core.ParallelExecutor{Workers: 2, Chunk: 2}, g, in, canopy, DefaultConfig().Params.LevelSet, 0, dst)

	boosted := 0.2 * (1 + 0.5*canopy.CoverFraction)
	assert.InDelta(t, boosted, dst[0], 1e-12)
	assert.InDelta(t, boosted, dst[1], 1e-12)
	assert.Equal(t, 0.2, dst[2])
	assert.Equal(t, 0.2, dst[4])
}

func TestFireBehaviourKeepsZeroRates(t *testing.T) {
	g := core.NewGrid(3, 3, 10)
	in := behaviourInputs(g, 0, 10)
	for i := range in.Crown {
		in.Crown[i] = CrownActive
		in.Regime[i] = RegimePlumeDominated
	}
	dst := make([]float64, g.Len())
	FireBehaviourPass(core.SerialExecutor{}, g, in, DefaultCanopy(), DefaultConfig().Params.LevelSet, 3, dst)
	for _, r := range dst {
		assert.Zero(t, r)
	}
}

func TestFireBehaviourRegimeVariation(t *testing.T) {
	g := core.NewGrid(16, 16, 10)
	p := DefaultConfig().Params.LevelSet
	require.Positive(t, p.RegimeVariation)

	in := behaviourInputs(g, 0.5, 4)
	for i := range in.Regime {
		in.Regime[i] = RegimeWindDriven
	}
	dst := make([]float64, g.Len())
	FireBehaviourPass(core.SerialExecutor{}, g, in, DefaultCanopy(), p, 7, dst)
	for _, r := range dst {
		require.Equal(t, 0.5, r, "a wind-driven fire is fully predictable")
	}

	for i := range in.Regime {
		in.Regime[i] = RegimePlumeDominated
	}
	FireBehaviourPass(core.SerialExecutor{}, g, in, DefaultCanopy(), p, 7, dst)
	spread := (1 - RegimePlumeDominated.Predictability()) * p.RegimeVariation * 0.5
	varied := 0
	for _, r := range dst {
		require.InDelta(t, 0.5, r, spread+1e-12)
		if r != 0.5 {
			varied++
		}
	}
	assert.Greater(t, varied, g.Len()/2)

	again := make([]float64, g.Len())
	FireBehaviourPass(core.ParallelExecutor{Workers: 3, Chunk: 17}, g, in, DefaultCanopy(), p, 7, again)
	assert.Equal(t, dst, again)
}
