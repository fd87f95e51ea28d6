package wildfire

import (
	"math"

	"firefront/internal/core"
)

// BehaviourInputs are the fields read by the fire behaviour pass. Crown and
// Regime hold the classification of the previous tick.
type BehaviourInputs struct {
	Rate     []float64 // modulated surface rate, m/s
	Crown    []CrownState
	Regime   []FireRegime
	Moisture []float64
	Wind     *WindField
}

// FireBehaviourPass turns the surface rate into the rate the front advances
// with. The strongest crown state and least predictable regime in the 3x3
// neighbourhood apply, so a crowning or plume-driven fire carries into the
// unburned cells ahead of it. An active crown runs at least at the Cruz rate,
// a passive crown gets the torching boost, and unpredictable regimes vary the
// rate by up to ±RegimeVariation.
func FireBehaviourPass(exec core.Executor, grid core.Grid, in BehaviourInputs, canopy CanopyProperties, p LevelSetParams, t float64, dst []float64) {
	exec.For(grid.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			r := in.Rate[idx]
			dst[idx] = r
			if r <= 0 {
				continue
			}
			x, y := grid.Coords(idx)
			crown, regime := neighbourhoodBehaviour(grid, in.Crown, in.Regime, x, y)
			switch crown {
			case CrownActive:
				r = math.Max(r, CruzCrownRate(in.Wind.Speed(idx), in.Moisture[idx]))
			case CrownPassive:
				r *= passiveCrownFactor(canopy)
			}
			if v := (1 - regime.Predictability()) * p.RegimeVariation; v > 0 {
				r *= 1 + v*hashNoise(float64(y), float64(x), t)
			}
			dst[idx] = math.Max(r, 0)
		}
	})
}

// neighbourhoodBehaviour returns the highest crown state and regime around
// (x, y). Both enums are ordered by severity.
func neighbourhoodBehaviour(grid core.Grid, crown []CrownState, regime []FireRegime, x, y int) (CrownState, FireRegime) {
	var c CrownState
	var r FireRegime
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if !grid.InBounds(x+dx, y+dy) {
				continue
			}
			n := grid.Index(x+dx, y+dy)
			if crown != nil {
				c = max(c, crown[n])
			}
			if regime != nil {
				r = max(r, regime[n])
			}
		}
	}
	return c, r
}
