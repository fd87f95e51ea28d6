package wildfire

import (
	"math"

	"firefront/internal/core"
)

// Reinitialize restores |∇φ| ≈ 1 by iterating ∂φ/∂τ = S(φ₀)(1 − |∇φ|) in
// pseudo-time. phi is updated in place; scratch and phi0 must have the same
// length and are overwritten. Cells next to the interface use the
// Russo–Smereka subcell fix so the zero level set stays put, and no update
// may change the sign of a cell.
func Reinitialize(exec core.Executor, grid core.Grid, phi, scratch, phi0 []float64, iterations int) {
	if iterations <= 0 {
		return
	}
	copy(phi0, phi)
	copy(scratch, phi)
	src, dst := phi, scratch
	for it := 0; it < iterations; it++ {
		reinitStep(exec, grid, phi0, src, dst)
		src, dst = dst, src
	}
	if &src[0] != &phi[0] {
		copy(phi, src)
	}
}

func reinitStep(exec core.Executor, grid core.Grid, phi0, src, dst []float64) {
	dx := grid.CellSize
	dtau := 0.5 * dx
	exec.For(grid.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			x, y := grid.Coords(idx)
			cur := src[idx]
			dst[idx] = cur
			if grid.Boundary(x, y) {
				continue
			}
			p0 := phi0[idx]
			if p0 == 0 {
				continue
			}

			var next float64
			if nearInterface(grid, phi0, idx) {
				next = subcellUpdate(grid, phi0, cur, idx, dtau)
			} else {
				s := p0 / math.Sqrt(p0*p0+dx*dx)
				next = cur - dtau*s*(upwindGradient(grid, src, idx, p0 > 0)-1)
			}
			if next*cur < 0 || (next == 0 && cur != 0) {
				continue
			}
			dst[idx] = next
		}
	})
}

func nearInterface(grid core.Grid, phi0 []float64, idx int) bool {
	c := phi0[idx]
	for _, n := range [4]int{idx - 1, idx + 1, idx - grid.W, idx + grid.W} {
		if c*phi0[n] <= 0 {
			return true
		}
	}
	return false
}

// subcellUpdate relaxes a cell adjacent to the front toward its estimated
// distance D = dx·φ₀/Δφ₀.
func subcellUpdate(grid core.Grid, phi0 []float64, cur float64, idx int, dtau float64) float64 {
	dx := grid.CellSize
	c := phi0[idx]
	l, r := phi0[idx-1], phi0[idx+1]
	d, u := phi0[idx-grid.W], phi0[idx+grid.W]

	delta := math.Hypot((r-l)/2, (u-d)/2)
	for _, v := range [4]float64{r - c, c - l, u - c, c - d} {
		delta = math.Max(delta, math.Abs(v))
	}
	if delta < divisionEpsilon {
		return cur
	}
	dist := dx * c / delta
	sign := 1.0
	if c < 0 {
		sign = -1
	}
	return cur - dtau/dx*(sign*math.Abs(cur)-dist)
}

// upwindGradient is the Godunov |∇φ| for a front moving away from the
// interface on the side given by positive.
func upwindGradient(grid core.Grid, phi []float64, idx int, positive bool) float64 {
	dx := grid.CellSize
	c := phi[idx]
	a := (c - phi[idx-1]) / dx
	b := (phi[idx+1] - c) / dx
	cm := (c - phi[idx-grid.W]) / dx
	dp := (phi[idx+grid.W] - c) / dx

	var gx2, gy2 float64
	if positive {
		gx2 = math.Max(sq(math.Max(a, 0)), sq(math.Min(b, 0)))
		gy2 = math.Max(sq(math.Max(cm, 0)), sq(math.Min(dp, 0)))
	} else {
		gx2 = math.Max(sq(math.Min(a, 0)), sq(math.Max(b, 0)))
		gy2 = math.Max(sq(math.Min(cm, 0)), sq(math.Max(dp, 0)))
	}
	return math.Sqrt(gx2 + gy2)
}

func sq(v float64) float64 { return v * v }
