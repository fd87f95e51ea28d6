package wildfire

import (
	"firefront/internal/core"
	"firefront/pkg/fixed"
)

// fixedReinitialize is Reinitialize in integer arithmetic. It alternates
// between phi and scratch and returns the slice holding the result first.
func fixedReinitialize(exec core.Executor, g core.Grid, phi, scratch, phi0 []fixed.Q, iterations int) (cur, spare []fixed.Q) {
	copy(phi0, phi)
	dxQ := fixed.FromFloat(g.CellSize)
	for it := 0; it < iterations; it++ {
		src, dst := phi, scratch
		exec.For(g.Len(), func(lo, hi int) {
			for idx := lo; idx < hi; idx++ {
				dst[idx] = fixedReinitCell(g, phi0, src, dxQ, idx)
			}
		})
		phi, scratch = scratch, phi
	}
	return phi, scratch
}

// fixedReinitCell is one pseudo-time step of Reinitialize for cell idx in
// integer arithmetic. It never changes the sign of a cell.
func fixedReinitCell(g core.Grid, phi0, phi []fixed.Q, dxQ fixed.Q, idx int) fixed.Q {
	x, y := g.Coords(idx)
	cur := phi[idx]
	p0 := phi0[idx]
	if g.Boundary(x, y) || p0 == 0 {
		return cur
	}

	var next fixed.Q
	if fixedNearInterface(g, phi0, idx) {
		dist, ok := fixedSubcellDistance(g, phi0, dxQ, idx)
		if !ok {
			return cur
		}
		// dτ = dx/2, so the relaxation moves halfway to the distance.
		next = cur - (cur-dist)/2
	} else {
		sign := fixed.Div(p0, fixed.Sqrt(fixed.Mul(p0, p0)+fixed.Mul(dxQ, dxQ)))
		dtau := dxQ / 2
		next = cur - fixed.Mul(fixed.Mul(dtau, sign), fixedUpwindGradient(g, phi, dxQ, idx, p0 > 0)-fixed.One)
	}
	if (next < 0 && cur > 0) || (next > 0 && cur < 0) || (next == 0 && cur != 0) {
		return cur
	}
	return next
}

func fixedNearInterface(g core.Grid, phi0 []fixed.Q, idx int) bool {
	c := phi0[idx]
	for _, n := range [4]int{idx - 1, idx + 1, idx - g.W, idx + g.W} {
		v := phi0[n]
		if c == 0 || v == 0 || (c < 0) != (v < 0) {
			return true
		}
	}
	return false
}

// fixedSubcellDistance estimates the signed distance dx·φ₀/Δφ₀ to the front.
func fixedSubcellDistance(g core.Grid, phi0 []fixed.Q, dxQ fixed.Q, idx int) (fixed.Q, bool) {
	c := phi0[idx]
	l, r := phi0[idx-1], phi0[idx+1]
	d, u := phi0[idx-g.W], phi0[idx+g.W]

	cx, cy := (r-l)/2, (u-d)/2
	delta := fixed.Sqrt(fixed.Mul(cx, cx) + fixed.Mul(cy, cy))
	for _, v := range [4]fixed.Q{r - c, c - l, u - c, c - d} {
		delta = fixed.Max(delta, fixed.Abs(v))
	}
	if delta <= 0 {
		return 0, false
	}
	return fixed.Div(fixed.Mul(dxQ, c), delta), true
}

// fixedUpwindGradient is the Godunov |∇φ| in integers.
func fixedUpwindGradient(g core.Grid, phi []fixed.Q, dxQ fixed.Q, idx int, positive bool) fixed.Q {
	c := phi[idx]
	a := fixed.Div(c-phi[idx-1], dxQ)
	b := fixed.Div(phi[idx+1]-c, dxQ)
	cm := fixed.Div(c-phi[idx-g.W], dxQ)
	dp := fixed.Div(phi[idx+g.W]-c, dxQ)

	var gx2, gy2 fixed.Q
	if positive {
		gx2 = fixed.Max(sqQ(fixed.Max(a, 0)), sqQ(fixed.Min(b, 0)))
		gy2 = fixed.Max(sqQ(fixed.Max(cm, 0)), sqQ(fixed.Min(dp, 0)))
	} else {
		gx2 = fixed.Max(sqQ(fixed.Min(a, 0)), sqQ(fixed.Max(b, 0)))
		gy2 = fixed.Max(sqQ(fixed.Min(cm, 0)), sqQ(fixed.Max(dp, 0)))
	}
	return fixed.Sqrt(gx2 + gy2)
}

func sqQ(v fixed.Q) fixed.Q { return fixed.Mul(v, v) }
