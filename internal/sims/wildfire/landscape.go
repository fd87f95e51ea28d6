package wildfire

import (
	"math"

	"firefront/internal/core"
	rng "firefront/pkg/core"
)

// Landscape is a generated set of static inputs.
type Landscape struct {
	Elevation []float64
	FuelIDs   []uint8
}

// GenerateLandscape builds rolling terrain with a valley trough and a
// patchwork of fuel types. The same seed always yields the same landscape.
func GenerateLandscape(grid core.Grid, p LandscapeParams, fuels FuelTable, seed int64) Landscape {
	r := rng.NewRNG(seed)
	n := grid.Len()
	elev := make([]float64, n)
	ids := make([]uint8, n)

	base := 200.0
	for i := range elev {
		elev[i] = base
	}

	type hill struct{ x, y, h, rad float64 }
	hills := make([]hill, p.Hills)
	for i := range hills {
		hills[i] = hill{
			x:   r.Range(0, float64(grid.W)),
			y:   r.Range(0, float64(grid.H)),
			h:   r.Jitter(p.HillHeight, 0.5),
			rad: math.Max(1, r.Jitter(p.HillRadius, 0.4)),
		}
	}

	// Trough through a random point at a random heading.
	vx := r.Range(0.3, 0.7) * float64(grid.W)
	vy := r.Range(0.3, 0.7) * float64(grid.H)
	vdir := headingVec(r.Range(0, 180))
	vwidth := math.Max(2, float64(min(grid.W, grid.H))/10)

	for y := 0; y < grid.H; y++ {
		for x := 0; x < grid.W; x++ {
			idx := grid.Index(x, y)
			fx, fy := float64(x)+0.5, float64(y)+0.5
			for _, h := range hills {
				d2 := (fx-h.x)*(fx-h.x) + (fy-h.y)*(fy-h.y)
				elev[idx] += h.h * math.Exp(-d2/(2*h.rad*h.rad))
			}
			if p.ValleyDepth > 0 {
				// distance to the trough line
				dx, dy := fx-vx, fy-vy
				d := math.Abs(dx*vdir.Y() - dy*vdir.X())
				elev[idx] -= p.ValleyDepth * math.Exp(-d*d/(2*vwidth*vwidth))
			}
			ids[idx] = p.BaseFuel
		}
	}

	burnable := make([]uint8, 0, len(fuels))
	for _, f := range fuels {
		if f.Burnable() {
			burnable = append(burnable, f.ID)
		}
	}
	for i := 0; i < p.FuelPatches && len(burnable) > 0; i++ {
		cx := r.Range(0, float64(grid.W))
		cy := r.Range(0, float64(grid.H))
		rad := math.Max(1, r.Jitter(p.PatchRadius, 0.5))
		id := burnable[r.IntN(len(burnable))]
		if r.Float64() < 0.08 {
			id = FuelNone
		}
		x0, x1 := max(0, int(cx-rad)), min(grid.W-1, int(cx+rad))
		y0, y1 := max(0, int(cy-rad)), min(grid.H-1, int(cy+rad))
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				fx, fy := float64(x)+0.5, float64(y)+0.5
				if (fx-cx)*(fx-cx)+(fy-cy)*(fy-cy) <= rad*rad {
					ids[grid.Index(x, y)] = id
				}
			}
		}
	}
	return Landscape{Elevation: elev, FuelIDs: ids}
}
