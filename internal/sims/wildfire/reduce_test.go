package wildfire

import (
	"math"
	"testing"

	"firefront/internal/core"
	rng "firefront/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomFire(g core.Grid, seed int64) (phi, intensity []float64) {
	r := rng.NewRNG(seed)
	phi = make([]float64, g.Len())
	intensity = make([]float64, g.Len())
	for i := range phi {
		phi[i] = r.Range(-5, 5)
		if r.Float64() < 0.8 {
			intensity[i] = r.Range(0, 5000)
		}
	}
	return phi, intensity
}

func TestAccumulateMatchesSerialSum(t *testing.T) {
	g := core.NewGrid(53, 41, 2)
	phi, intensity := randomFire(g, 11)

	var total, sx, sy, peak float64
	count := 0
	for i := range phi {
		if phi[i] >= 0 || intensity[i] <= 0 {
			continue
		}
		x, y := g.Coords(i)
		total += intensity[i]
		sx += intensity[i] * float64(x)
		sy += intensity[i] * float64(y)
		peak = math.Max(peak, intensity[i])
		count++
	}

	var acc Accumulator
	acc.Clear()
	require.NoError(t, acc.Accumulate(core.SerialExecutor{}, g, phi, intensity))
	got := acc.Snapshot(g.CellSize)

	assert.Equal(t, count, got.BurningCells)
	assert.InDelta(t, total, got.TotalIntensity, float64(count)/ReductionScale)
	assert.InDelta(t, peak, got.MaxIntensity, 1.0/ReductionScale)
	assert.InDelta(t, (sx/total+0.5)*g.CellSize, got.Centroid.X(), 1e-3)
	assert.InDelta(t, (sy/total+0.5)*g.CellSize, got.Centroid.Y(), 1e-3)
}

func TestAccumulateIsExecutorIndependent(t *testing.T) {
	g := core.NewGrid(97, 61, 5)
	phi, intensity := randomFire(g, 29)

	var serial, parallel Accumulator
	serial.Clear()
	require.NoError(t, serial.Accumulate(core.SerialExecutor{}, g, phi, intensity))
	parallel.Clear()
	require.NoError(t, parallel.Accumulate(core.ParallelExecutor{Workers: 8, Chunk: 1}, g, phi, intensity))

	assert.Equal(t, serial.Snapshot(g.CellSize), parallel.Snapshot(g.CellSize))
}

func TestAccumulateRequiresClear(t *testing.T) {
	g := core.NewGrid(4, 4, 1)
	phi := make([]float64, g.Len())
	intensity := make([]float64, g.Len())
	phi[5] = -1
	intensity[5] = 10

	var acc Accumulator
	assert.ErrorIs(t, acc.Accumulate(core.SerialExecutor{}, g, phi, intensity), ErrStaleAccumulator)

	acc.Clear()
	require.NoError(t, acc.Accumulate(core.SerialExecutor{}, g, phi, intensity))
	assert.ErrorIs(t, acc.Accumulate(core.SerialExecutor{}, g, phi, intensity), ErrStaleAccumulator)

	snap := acc.Snapshot(g.CellSize)
	assert.Equal(t, 1, snap.BurningCells, "the rejected dispatch added nothing")
	assert.Equal(t, 10.0, snap.TotalIntensity)
	assert.InDelta(t, 1.5, snap.Centroid.X(), 1e-12)
	assert.InDelta(t, 1.5, snap.Centroid.Y(), 1e-12)
}

func TestSnapshotOfEmptyAccumulator(t *testing.T) {
	var acc Accumulator
	acc.Clear()
	snap := acc.Snapshot(10)
	assert.Zero(t, snap.BurningCells)
	assert.Zero(t, snap.TotalIntensity)
	assert.Zero(t, snap.Centroid.Len())
}
