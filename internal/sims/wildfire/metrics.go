package wildfire

import (
	"gonum.org/v1/gonum/floats"
)

// Metrics is the per-tick summary published to observers.
type Metrics struct {
	RunID          string             `json:"run_id"`
	Tick           int                `json:"tick"`
	Time           float64            `json:"time"`
	BurningCells   int                `json:"burning_cells"`
	TotalIntensity float64            `json:"total_intensity"`
	MaxIntensity   float64            `json:"max_intensity"`
	CentroidX      float64            `json:"centroid_x"`
	CentroidY      float64            `json:"centroid_y"`
	PassiveCrown   int                `json:"passive_crown"`
	ActiveCrown    int                `json:"active_crown"`
	Transitional   int                `json:"transitional"`
	PlumeDominated int                `json:"plume_dominated"`
	NoiseAmplitude float64            `json:"noise_amplitude"`
	BurnedArea     float64            `json:"burned_area"`    // m²
	FuelRemaining  float64            `json:"fuel_remaining"` // kg
	MaxTemperature float64            `json:"max_temperature"`
	Deterministic  bool               `json:"deterministic"`
	Front          string             `json:"front"`
	Weather        Weather            `json:"weather"`
	Timings        [passCount]float64 `json:"pass_ms"`
}

// Metrics computes the summary of the current state.
func (w *World) Metrics() Metrics {
	m := Metrics{
		RunID:          w.runID,
		Tick:           w.tick,
		Time:           w.simTime,
		BurningCells:   w.last.BurningCells,
		TotalIntensity: w.last.TotalIntensity,
		MaxIntensity:   w.last.MaxIntensity,
		CentroidX:      w.last.Centroid.X(),
		CentroidY:      w.last.Centroid.Y(),
		Deterministic:  w.cfg.Deterministic,
		Front:          w.front.Name(),
		Weather:        w.cfg.Weather,
	}
	for _, s := range w.crown {
		switch s {
		case CrownPassive:
			m.PassiveCrown++
		case CrownActive:
			m.ActiveCrown++
		}
	}
	for _, r := range w.regime {
		switch r {
		case RegimeTransitional:
			m.Transitional++
		case RegimePlumeDominated:
			m.PlumeDominated++
		}
	}
	m.NoiseAmplitude = regimeNoiseAmplitude(w.regime, w.cfg.Params.LevelSet)
	burned := 0
	for _, v := range w.phi.Cur {
		if v < 0 {
			burned++
		}
	}
	m.BurnedArea = float64(burned) * w.grid.CellArea()
	m.FuelRemaining = floats.Sum(w.fuel.Cur) * w.grid.CellArea()
	if len(w.temp.Cur) > 0 {
		m.MaxTemperature = floats.Max(w.temp.Cur)
	}
	for i, d := range w.timings {
		m.Timings[i] = float64(d.Microseconds()) / 1000
	}
	return m
}

// MetricsFrame satisfies core.MetricsProvider.
func (w *World) MetricsFrame() any { return w.Metrics() }
