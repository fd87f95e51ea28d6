package wildfire

import "math"

// FireRegime classifies a burning cell by its Byram convection number.
type FireRegime uint8

const (
	RegimeNone FireRegime = iota // not burning
	RegimeWindDriven
	RegimeTransitional
	RegimePlumeDominated
)

func (r FireRegime) String() string {
	switch r {
	case RegimeWindDriven:
		return "wind-driven"
	case RegimeTransitional:
		return "transitional"
	case RegimePlumeDominated:
		return "plume-dominated"
	default:
		return "none"
	}
}

// Air properties for the Byram number.
const (
	airSpecificHeat = 1005.0 // J/(kg·K)
	calmWind        = 0.5    // m/s
)

// ByramNumber is N_c = 2gI / (ρ·c_p·T·U³) with intensity in kW/m, wind in
// m/s and ambient temperature in K. Below calm wind the plume always wins
// and the result is +Inf.
func ByramNumber(intensity, wind, ambientK float64) float64 {
	if wind < calmWind {
		return math.Inf(1)
	}
	if ambientK <= 0 {
		return 0
	}
	return 2 * Gravity * intensity * 1000 / (AirDensity * airSpecificHeat * ambientK * wind * wind * wind)
}

// ClassifyRegime maps the Byram number to a regime: below 1 the wind
// controls the fire, above 10 the plume does.
func ClassifyRegime(intensity, wind, ambientK float64) FireRegime {
	nc := ByramNumber(intensity, wind, ambientK)
	switch {
	case nc < 1:
		return RegimeWindDriven
	case nc > 10:
		return RegimePlumeDominated
	default:
		return RegimeTransitional
	}
}

// Uncertainty is the expected spread-direction uncertainty in degrees.
func (r FireRegime) Uncertainty() int {
	switch r {
	case RegimeWindDriven:
		return 15
	case RegimeTransitional:
		return 60
	case RegimePlumeDominated:
		return 180
	default:
		return 0
	}
}

// Predictability is 1 for a fully predictable spread rate and falls toward
// 0 as the plume takes over.
func (r FireRegime) Predictability() float64 {
	switch r {
	case RegimeTransitional:
		return 0.5
	case RegimePlumeDominated:
		return 0.2
	default:
		return 1
	}
}

// Direction uncertainty range mapped onto the level-set noise amplitude.
const (
	minUncertainty  = 15
	uncertaintySpan = 165
)

// regimeUncertainty sums the direction uncertainty over classified cells.
func regimeUncertainty(regimes []FireRegime) (total, count int) {
	for _, r := range regimes {
		if r != RegimeNone {
			total += r.Uncertainty()
			count++
		}
	}
	return total, count
}

// regimeNoiseAmplitude scales the base noise amplitude by the mean regime
// of the burning cells: wind-driven fires keep the base amplitude and a
// fully plume-dominated fire gets base·(1+RegimeNoiseScale).
func regimeNoiseAmplitude(regimes []FireRegime, p LevelSetParams) float64 {
	total, count := regimeUncertainty(regimes)
	if count == 0 || p.NoiseAmplitude == 0 {
		return p.NoiseAmplitude
	}
	frac := float64(total-minUncertainty*count) / float64(uncertaintySpan*count)
	frac = math.Min(math.Max(frac, 0), 1)
	return p.NoiseAmplitude * (1 + p.RegimeNoiseScale*frac)
}
