package wildfire

import (
	"math"

	"firefront/internal/core"
)

// ValleyGeometry summarizes the terrain around a cell. It depends only on
// elevation, so it is computed once per terrain.
type ValleyGeometry struct {
	InValley         bool
	Depth            float64 // m, mean ridge elevation above the centre
	Width            float64 // m
	DistanceFromHead float64 // m
}

// AnalyzeValleys samples eight compass directions at p.ValleyRadius around
// every cell. Width and distance from the valley head are approximations:
// width is a fixed fraction of the sampling radius and head distance scales
// with depth.
func AnalyzeValleys(exec core.Executor, t *Terrain, p EffectsParams) []ValleyGeometry {
	g := t.Grid
	out := make([]ValleyGeometry, g.Len())
	exec.For(g.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			out[idx] = valleyAt(t, p, idx)
		}
	})
	return out
}

func valleyAt(t *Terrain, p EffectsParams, idx int) ValleyGeometry {
	g := t.Grid
	x, y := g.Coords(idx)
	cx := (float64(x) + 0.5) * g.CellSize
	cy := (float64(y) + 0.5) * g.CellSize
	center := t.Elevation[idx]

	higher := 0
	sum := 0.0
	for k := 0; k < 8; k++ {
		dir := headingVec(float64(k) * 45)
		e := t.ElevationAt(cx+dir.X()*p.ValleyRadius, cy+dir.Y()*p.ValleyRadius)
		sum += e
		if e > center+p.ValleyRidgeMargin {
			higher++
		}
	}
	if higher < p.ValleyMinHigher {
		return ValleyGeometry{}
	}
	depth := math.Max(0, sum/8-center)
	return ValleyGeometry{
		InValley:         true,
		Depth:            depth,
		Width:            p.ValleyRadius * p.ValleyWidthFactor,
		DistanceFromHead: depth * p.ValleyHeadFactor,
	}
}

// EffectsInputs are the fields read by the advanced-effects pass.
type EffectsInputs struct {
	Terrain     *Terrain
	Valleys     []ValleyGeometry
	Wind        *WindField
	Temperature []float64
	Ambient     float64 // K
}

// EffectsPass multiplies the spread rate by the lee-slope lateral spread and
// valley channeling factors wherever R > 0.
func EffectsPass(exec core.Executor, grid core.Grid, in EffectsInputs, p EffectsParams, rate, dst []float64) {
	exec.For(grid.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			r := rate[idx]
			if r > 0 {
				r *= effectsFactor(in, p, idx)
			}
			dst[idx] = r
		}
	})
}

// effectsFactor is the combined VLS and valley multiplier for one cell.
func effectsFactor(in EffectsInputs, p EffectsParams, idx int) float64 {
	f := vlsMultiplier(in.Terrain.Slope[idx], in.Terrain.Aspect[idx], in.Wind.Speed(idx), in.Wind.Heading(idx), p)
	var dT float64
	if in.Temperature != nil {
		dT = in.Temperature[idx] - in.Ambient
	}
	if in.Valleys != nil {
		f *= valleyMultiplier(in.Valleys[idx], dT, in.Ambient, p)
	}
	return f
}

// vlsMultiplier returns the vorticity-driven lateral spread factor in
// [1, VLSMaxMultiplier]. heading is the direction the wind blows toward.
func vlsMultiplier(slope, aspect, speed, heading float64, p EffectsParams) float64 {
	if slope < p.VLSMinSlope || speed < p.VLSMinWind || p.VLSMinWind <= 0 {
		return 1
	}
	// Lee slopes face away from the wind source.
	if angleDiff(aspect, heading+180) < 120 {
		return 1
	}
	chi := math.Tan(slope*math.Pi/180) *
		math.Abs(math.Sin((aspect-heading)*math.Pi/180)) *
		(speed / p.VLSMinWind)
	if chi <= p.VLSThreshold {
		return 1
	}
	span := 2 - p.VLSThreshold
	if span <= divisionEpsilon {
		return p.VLSMaxMultiplier
	}
	frac := math.Min(1, (chi-p.VLSThreshold)/span)
	return 1 + (p.VLSMaxMultiplier-1)*frac
}

// valleyMultiplier returns the channeling wind factor times the chimney
// updraft factor for a cell. dT is the local excess temperature.
func valleyMultiplier(v ValleyGeometry, dT, ambient float64, p EffectsParams) float64 {
	return valleyChannelFactor(v, p) * chimneyFactor(v, dT, ambient, p)
}

func valleyChannelFactor(v ValleyGeometry, p EffectsParams) float64 {
	if !v.InValley || v.Width <= divisionEpsilon {
		return 1
	}
	return math.Min(math.Max(math.Sqrt(p.ValleyRefWidth/v.Width), 1), p.ValleyMaxFactor)
}

// chimneyApplies reports whether a cell sits close enough to a valley head
// for the chimney updraft.
func chimneyApplies(v ValleyGeometry, ambient float64, p EffectsParams) bool {
	return v.InValley && v.DistanceFromHead <= p.ChimneyHeadDistance && ambient > divisionEpsilon && p.ChimneyMaxUpdraft > 0
}

// chimneyFactor boosts spread with the buoyant updraft √(2g·depth·ΔT/T).
func chimneyFactor(v ValleyGeometry, dT, ambient float64, p EffectsParams) float64 {
	if dT <= 0 || !chimneyApplies(v, ambient, p) {
		return 1
	}
	updraft := math.Sqrt(2 * Gravity * v.Depth * dT / ambient)
	return 1 + p.ChimneyMaxBoost*math.Min(updraft, p.ChimneyMaxUpdraft)/p.ChimneyMaxUpdraft
}
