package wildfire

import (
	"math"

	"firefront/internal/core"
)

// CrownState classifies the crown fire regime of a burning cell.
type CrownState uint8

const (
	CrownSurface CrownState = iota
	CrownPassive
	CrownActive
)

func (s CrownState) String() string {
	switch s {
	case CrownPassive:
		return "passive"
	case CrownActive:
		return "active"
	default:
		return "surface"
	}
}

// CrownInputs are the fields read by the crown fire pass.
type CrownInputs struct {
	Phi      []float64
	Rate     []float64 // surface spread rate, m/s
	Fuel     []float64
	Moisture []float64
	FuelIDs  []uint8
	Fuels    FuelTable
	Wind     *WindField
	Ambient  float64 // K
}

// CrownOutputs are the buffers written by the crown fire pass.
type CrownOutputs struct {
	Rate      []float64 // effective spread rate, m/s
	Intensity []float64 // kW/m
	State     []CrownState
	Regime    []FireRegime // optional
}

// CrownPass classifies each burning cell and revises its spread rate and
// fireline intensity, then classifies its fire regime from the total
// intensity. Unburned cells get their surface rate, zero intensity, the
// surface state and no regime.
func CrownPass(exec core.Executor, grid core.Grid, in CrownInputs, canopy CanopyProperties, out CrownOutputs) {
	exec.For(grid.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			r := in.Rate[idx]
			out.Rate[idx] = r
			out.Intensity[idx] = 0
			out.State[idx] = CrownSurface
			if out.Regime != nil {
				out.Regime[idx] = RegimeNone
			}
			if in.Phi[idx] >= 0 {
				continue
			}
			fuel, ok := in.Fuels.Lookup(in.FuelIDs[idx])
			if !ok {
				continue
			}
			wind := in.Wind.Speed(idx)
			surface := fuel.HeatContent * in.Fuel[idx] * r
			res := classifyCrown(surface, r, wind, in.Moisture[idx], canopy)
			out.Rate[idx] = res.Rate
			out.Intensity[idx] = res.Intensity
			out.State[idx] = res.State
			if out.Regime != nil && r > 0 {
				out.Regime[idx] = ClassifyRegime(res.Intensity, wind, in.Ambient)
			}
		}
	})
}

// CrownResult is the outcome of classifying one cell.
type CrownResult struct {
	State     CrownState
	Rate      float64 // m/s
	Intensity float64 // kW/m
}

// CriticalIntensity is Van Wagner's initiation threshold in kW/m.
func CriticalIntensity(c CanopyProperties) float64 {
	return math.Pow(0.010*c.BaseHeight*(460+25.9*c.FoliarMoisture), 1.5)
}

// CriticalCrownRate is the active crowning threshold in m/min. A canopy
// without bulk density can never sustain an active crown fire.
func CriticalCrownRate(c CanopyProperties) float64 {
	if c.BulkDensity <= 0 {
		return math.Inf(1)
	}
	return 3.0 / c.BulkDensity
}

// CruzCrownRate is the Cruz et al. (2005) active crown spread rate in m/s.
// wind is in m/s and moisture is a fraction.
func CruzCrownRate(wind, moisture float64) float64 {
	return cruzWindTerm(wind) * cruzMoistureTerm(moisture)
}

// cruzWindTerm is the wind part of the Cruz rate in m/s.
func cruzWindTerm(wind float64) float64 {
	kmh := math.Max(wind, 0) * 3.6
	return 11.02 * math.Pow(kmh, 0.90) / 60
}

func cruzMoistureTerm(moisture float64) float64 {
	pct := math.Max(moisture, 0) * 100
	return 1 - 0.95*math.Exp(-0.17*pct)
}

func classifyCrown(surfaceIntensity, surfaceRate, wind, moisture float64, c CanopyProperties) CrownResult {
	res := CrownResult{State: CrownSurface, Rate: surfaceRate, Intensity: surfaceIntensity}
	if surfaceIntensity < CriticalIntensity(c) {
		return res
	}
	if surfaceRate*60 >= CriticalCrownRate(c) {
		res.State = CrownActive
		res.Rate = math.Max(surfaceRate, CruzCrownRate(wind, moisture))
		res.Intensity = surfaceIntensity + c.HeatContent*c.FuelLoad*res.Rate
		return res
	}
	res.State = CrownPassive
	res.Rate = surfaceRate * passiveCrownFactor(c)
	return res
}

// passiveCrownFactor is the torching boost of a passive crown fire.
func passiveCrownFactor(c CanopyProperties) float64 {
	return 1 + 0.5*math.Max(c.CoverFraction, 0)
}
