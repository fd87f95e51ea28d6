package wildfire

import (
	"math"
	"testing"

	"firefront/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradientStats measures ||∇φ| − 1| with central differences over interior
// cells with |φ| < band.
func gradientStats(g core.Grid, phi []float64, band float64) (maxDev, meanDev float64, n int) {
	for y := 1; y < g.H-1; y++ {
		for x := 1; x < g.W-1; x++ {
			idx := g.Index(x, y)
			if math.Abs(phi[idx]) >= band {
				continue
			}
			gx := (phi[idx+1] - phi[idx-1]) / (2 * g.CellSize)
			gy := (phi[idx+g.W] - phi[idx-g.W]) / (2 * g.CellSize)
			dev := math.Abs(math.Hypot(gx, gy) - 1)
			maxDev = math.Max(maxDev, dev)
			meanDev += dev
			n++
		}
	}
	if n > 0 {
		meanDev /= float64(n)
	}
	return maxDev, meanDev, n
}

func TestReinitializeRestoresSignedDistance(t *testing.T) {
	for _, tc := range []struct {
		name  string
		scale float64
		exec  core.Executor
	}{
		{"flattened", 0.5, core.SerialExecutor{}},
		{"steepened", 3, core.ParallelExecutor{Workers: 3, Chunk: 97}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g := core.NewGrid(40, 40, 1)
			phi := conePhi(g, 20, 20, 10)
			for i := range phi {
				phi[i] *= tc.scale
			}
			before := append([]float64(nil), phi...)

			Reinitialize(tc.exec, g, phi, make([]float64, g.Len()), make([]float64, g.Len()), 20)

			maxDev, meanDev, n := gradientStats(g, phi, 2*g.CellSize)
			require.Greater(t, n, 100)
			assert.Less(t, maxDev, 0.15)
			assert.Less(t, meanDev, 0.05)
			for i := range phi {
				require.False(t, phi[i]*before[i] < 0, "cell %d changed sign", i)
			}
			assert.Equal(t, 0.0, phi[g.Index(30, 20)], "cells on the front stay on it")
			assert.InDelta(t, 1, phi[g.Index(31, 20)], 0.05)
		})
	}
}

func TestReinitializeKeepsInterfaceInPlace(t *testing.T) {
	g := core.NewGrid(40, 40, 1)
	phi := make([]float64, g.Len())
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			phi[g.Index(x, y)] = 3 * (float64(x) - 19.7)
		}
	}
	Reinitialize(core.SerialExecutor{}, g, phi, make([]float64, g.Len()), make([]float64, g.Len()), 20)

	a, b := phi[g.Index(19, 20)], phi[g.Index(20, 20)]
	require.Less(t, a, 0.0)
	require.Greater(t, b, 0.0)
	zero := 19 + a/(a-b)
	assert.InDelta(t, 19.7, zero, 0.01)
	assert.InDelta(t, 0.3, b, 0.01)
}

func TestReinitializeBoundaryAndNoop(t *testing.T) {
	g := core.NewGrid(12, 12, 2)
	phi := conePhi(g, 6, 6, 4)
	for i := range phi {
		phi[i] *= 2
	}
	orig := append([]float64(nil), phi...)

	Reinitialize(core.SerialExecutor{}, g, phi, make([]float64, g.Len()), make([]float64, g.Len()), 0)
	assert.Equal(t, orig, phi)

	Reinitialize(core.SerialExecutor{}, g, phi, make([]float64, g.Len()), make([]float64, g.Len()), 3)
	for x := 0; x < g.W; x++ {
		assert.Equal(t, orig[g.Index(x, 0)], phi[g.Index(x, 0)])
		assert.Equal(t, orig[g.Index(x, g.H-1)], phi[g.Index(x, g.H-1)])
	}
}
