package wildfire

import (
	"math"

	"firefront/internal/core"
)

// LevelSetPass advances φ by one step of ∂φ/∂t + R|∇φ| = 0 with a Godunov
// upwind gradient. rate is the modulated spread rate; boundary cells are
// copied through.
func LevelSetPass(exec core.Executor, grid core.Grid, phi, rate []float64, terrain *Terrain, tick int, dt float64, p LevelSetParams, dst []float64) {
	t := float64(tick) * dt
	exec.For(grid.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			x, y := grid.Coords(idx)
			if grid.Boundary(x, y) {
				dst[idx] = phi[idx]
				continue
			}
			r := rate[idx]
			if r <= 0 {
				dst[idx] = phi[idx]
				continue
			}
			grad := godunovGradient(grid, phi, x, y)
			if grad <= 0 {
				dst[idx] = phi[idx]
				continue
			}
			r *= curvatureFactor(p.CurvatureCoeff, frontCurvature(grid, phi, x, y))
			if terrain != nil {
				r *= terrainSlopeFactor(grid, phi, terrain, x, y, p)
			}
			if p.NoiseAmplitude != 0 {
				r *= 1 + p.NoiseAmplitude*hashNoise(float64(x), float64(y), t)
			}
			dst[idx] = phi[idx] - math.Max(r, 0)*grad*dt
		}
	})
}

// godunovGradient returns the entropy-satisfying |∇φ| for an outward moving
// front: per axis max(max(D⁻,0), −min(D⁺,0)).
func godunovGradient(grid core.Grid, phi []float64, x, y int) float64 {
	dx := grid.CellSize
	c := phi[grid.Index(x, y)]
	dxm := (c - phi[grid.Index(x-1, y)]) / dx
	dxp := (phi[grid.Index(x+1, y)] - c) / dx
	dym := (c - phi[grid.Index(x, y-1)]) / dx
	dyp := (phi[grid.Index(x, y+1)] - c) / dx

	gx := math.Max(math.Max(dxm, 0), -math.Min(dxp, 0))
	gy := math.Max(math.Max(dym, 0), -math.Min(dyp, 0))
	return math.Sqrt(gx*gx + gy*gy)
}

// terrainSlopeFactor boosts spread aligned with the upslope direction and
// damps downhill spread, never below p.SlopeFloor.
func terrainSlopeFactor(grid core.Grid, phi []float64, t *Terrain, x, y int, p LevelSetParams) float64 {
	idx := grid.Index(x, y)
	slope := t.Slope[idx]
	if slope <= 0 {
		return 1
	}
	nx, ny, ok := spreadDirection(grid, phi, x, y)
	if !ok {
		return 1
	}
	up := t.Upslope(idx)
	effective := slope * (nx*up.X() + ny*up.Y())
	return math.Max(p.SlopeFloor, math.Exp(p.SlopeGain*effective))
}

// hashNoise is a cheap deterministic value in [-1, 1] that varies smoothly
// in time.
func hashNoise(x, y, t float64) float64 {
	sx := x*0.05 + t*0.1
	sy := y*0.05 + t*0.1
	v := math.Sin(sx*12.9898)*43758.5453 + math.Sin(sy*78.233)*43758.5453
	return (v-math.Floor(v))*2 - 1
}
