package wildfire

import (
	"errors"
	"math"
	"sync/atomic"

	"firefront/internal/core"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrStaleAccumulator reports an Accumulate call that was not preceded by
// Clear.
var ErrStaleAccumulator = errors.New("wildfire: accumulator not cleared before accumulate")

const (
	// ReductionScale is the fixed-point scale of the atomic accumulators.
	ReductionScale = 1000
	// WorkgroupSize is the number of cells reduced locally before one atomic
	// combine.
	WorkgroupSize = 256
)

// Reduction is the aggregated fire state for one tick.
type Reduction struct {
	TotalIntensity float64    // kW/m summed over burning cells
	Centroid       mgl64.Vec2 // intensity-weighted, metres
	BurningCells   int
	MaxIntensity   float64 // kW/m
}

// Accumulator holds global fixed-point totals combined atomically across
// workgroups. The protocol per tick is Clear, then Accumulate once.
type Accumulator struct {
	total   atomic.Int64
	sumX    atomic.Int64
	sumY    atomic.Int64
	count   atomic.Int64
	max     atomic.Int64
	cleared atomic.Bool
}

// Clear resets the accumulators for a new dispatch.
func (a *Accumulator) Clear() {
	a.total.Store(0)
	a.sumX.Store(0)
	a.sumY.Store(0)
	a.count.Store(0)
	a.max.Store(0)
	a.cleared.Store(true)
}

type partial struct {
	total, sumX, sumY, count, max int64
}

func (p partial) combine(o partial) partial {
	return partial{
		total: p.total + o.total,
		sumX:  p.sumX + o.sumX,
		sumY:  p.sumY + o.sumY,
		count: p.count + o.count,
		max:   max(p.max, o.max),
	}
}

// Accumulate reduces burning cells with positive intensity. Each workgroup
// of WorkgroupSize cells is tree-reduced locally and then added into the
// global totals.
func (a *Accumulator) Accumulate(exec core.Executor, grid core.Grid, phi, intensity []float64) error {
	if !a.cleared.CompareAndSwap(true, false) {
		return ErrStaleAccumulator
	}
	n := grid.Len()
	groups := (n + WorkgroupSize - 1) / WorkgroupSize
	exec.For(groups, func(lo, hi int) {
		var local [WorkgroupSize]partial
		for g := lo; g < hi; g++ {
			base := g * WorkgroupSize
			for i := range local {
				local[i] = partial{}
				idx := base + i
				if idx >= n || phi[idx] >= 0 || !(intensity[idx] > 0) {
					continue
				}
				x, y := grid.Coords(idx)
				v := toReduction(intensity[idx])
				local[i] = partial{
					total: v,
					sumX:  toReduction(intensity[idx] * float64(x)),
					sumY:  toReduction(intensity[idx] * float64(y)),
					count: 1,
					max:   v,
				}
			}
			for stride := WorkgroupSize / 2; stride > 0; stride /= 2 {
				for i := 0; i < stride; i++ {
					local[i] = local[i].combine(local[i+stride])
				}
			}
			a.add(local[0])
		}
	})
	return nil
}

func (a *Accumulator) add(p partial) {
	if p.count == 0 {
		return
	}
	a.total.Add(p.total)
	a.sumX.Add(p.sumX)
	a.sumY.Add(p.sumY)
	a.count.Add(p.count)
	for {
		cur := a.max.Load()
		if p.max <= cur || a.max.CompareAndSwap(cur, p.max) {
			return
		}
	}
}

// Snapshot converts the accumulators to physical units. Cell centres are at
// (i + 0.5)·cellSize.
func (a *Accumulator) Snapshot(cellSize float64) Reduction {
	total := a.total.Load()
	r := Reduction{
		TotalIntensity: float64(total) / ReductionScale,
		BurningCells:   int(a.count.Load()),
		MaxIntensity:   float64(a.max.Load()) / ReductionScale,
	}
	if total > 0 {
		cx := float64(a.sumX.Load()) / float64(total)
		cy := float64(a.sumY.Load()) / float64(total)
		r.Centroid = mgl64.Vec2{(cx + 0.5) * cellSize, (cy + 0.5) * cellSize}
	}
	return r
}

func toReduction(v float64) int64 {
	return int64(math.Round(v * ReductionScale))
}
