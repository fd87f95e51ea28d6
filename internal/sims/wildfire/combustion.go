package wildfire

import (
	"math"

	"firefront/internal/core"
)

// CombustionInputs are the fields read by the combustion pass.
type CombustionInputs struct {
	Phi         []float64
	Temperature []float64
	Moisture    []float64
	Fuel        []float64
	Oxygen      []float64
	FuelIDs     []uint8
	Fuels       FuelTable
	Weather     Weather
}

// CombustionOutputs are the buffers written by the combustion pass.
type CombustionOutputs struct {
	Moisture   []float64
	Fuel       []float64
	Oxygen     []float64
	HeatSource []float64 // J released per cell this tick
}

// CombustionPass evaporates moisture, consumes fuel and oxygen in burning
// cells and records the retained heat for the next heat transfer pass.
// Unburned cells relax toward equilibrium moisture.
func CombustionPass(exec core.Executor, grid core.Grid, in CombustionInputs, p Params, dt float64, out CombustionOutputs) {
	area := grid.CellArea()
	exec.For(grid.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			o2 := replenishOxygen(in.Oxygen[idx], p.Combustion.OxygenReplenish, dt)
			m := in.Moisture[idx]
			fuel := in.Fuel[idx]
			heat := 0.0

			model, burnable := in.Fuels.Lookup(in.FuelIDs[idx])
			if burnable && in.Phi[idx] < 0 && fuel > minFuelLoad {
				c := burnCell{
					fuel:     fuel,
					moisture: m,
					oxygen:   o2,
					temp:     in.Temperature[idx],
				}
				c.burn(model, p.Combustion, in.Weather.AmbientTemperature, area, dt)
				m, fuel, o2, heat = c.moisture, c.fuel, c.oxygen, c.heat
			} else if burnable && p.Moisture.Enabled && in.Phi[idx] >= 0 {
				m = relaxMoisture(m, in.Temperature[idx], in.Weather, p.Moisture, dt)
			}

			out.Moisture[idx] = math.Max(m, 0)
			out.Fuel[idx] = math.Max(fuel, 0)
			out.Oxygen[idx] = math.Min(math.Max(o2, 0), 1)
			out.HeatSource[idx] = heat
		}
	})
}

type burnCell struct {
	fuel     float64 // kg/m²
	moisture float64
	oxygen   float64
	temp     float64
	heat     float64 // J
}

func (c *burnCell) burn(model FuelModel, p CombustionParams, ambient, area, dt float64) {
	mass := c.fuel * area
	cp := model.SpecificHeat * 1000

	// Moisture goes first.
	water := math.Max(c.moisture, 0) * mass
	if water > 0 && c.temp > ambient {
		available := mass * cp * (c.temp - ambient) * p.EvaporationRate * dt
		evap := math.Min(available, water*LatentHeatVapor)
		water -= evap / LatentHeatVapor
		c.moisture = math.Max(water/mass, 0)
	}

	mx := model.MoistureExtinction
	if c.moisture >= mx || c.temp <= p.IgnitionTemperature {
		return
	}
	sat := p.TemperatureSaturation
	if sat <= 0 {
		sat = 1
	}
	rate := p.BurnCoefficient * (1 - c.moisture/mx) * math.Min(1, (c.temp-p.IgnitionTemperature)/sat)
	consumed := math.Min(c.fuel*rate*dt, c.fuel)

	o2Capacity := O2MassFraction * AirDensity * area * p.MixingHeight // kg at o2 = 1
	if o2Capacity > 0 {
		limit := c.oxygen * o2Capacity / StoichiometricO2 / area
		consumed = math.Min(consumed, limit)
		c.oxygen -= consumed * area * StoichiometricO2 / o2Capacity
	} else {
		consumed = 0
	}
	if consumed <= 0 {
		return
	}
	c.fuel -= consumed
	c.heat = consumed * area * model.HeatContent * 1000 * p.SelfHeating
}

func replenishOxygen(o2, rate, dt float64) float64 {
	if rate <= 0 {
		return o2
	}
	return o2 + (1-o2)*math.Min(1, rate*dt)
}

// Simard (1968) equilibrium moisture coefficients: humidity in percent,
// temperature in °C.
var (
	emcAdsorb = [3]float64{0.00253, -0.000116, -0.0000158}
	emcDesorb = [3]float64{0.00282, -0.000176, -0.0000201}
)

const boilingK = 373.15

// EquilibriumMoisture returns the Simard equilibrium moisture content,
// clamped to [0.01, 0.40].
func EquilibriumMoisture(tempK, humidity float64, adsorbing bool) float64 {
	k := emcDesorb
	if adsorbing {
		k = emcAdsorb
	}
	h := humidity * 100
	t := tempK - KelvinOffset
	emc := k[0]*h + k[1]*t + k[2]*h*t
	return math.Min(math.Max(emc, 0.01), 0.40)
}

// relaxMoisture moves an unburned cell's moisture toward equilibrium. Heated
// cells only dry, and faster above boiling.
func relaxMoisture(m, tempK float64, w Weather, p MoistureParams, dt float64) float64 {
	if p.TimeConstant <= 0 {
		return m
	}
	emc := EquilibriumMoisture(tempK, w.RelativeHumidity, false)
	if m < emc {
		emc = EquilibriumMoisture(tempK, w.RelativeHumidity, true)
	}
	heated := tempK > w.AmbientTemperature+p.HeatedDelta
	if heated && emc >= m {
		return m
	}
	rate := 1.0
	if tempK > boilingK {
		rate = math.Min(10, 1+(tempK-boilingK)/100)
	}
	k := 1 - math.Exp(-dt*rate/p.TimeConstant)
	return m + (emc-m)*k
}
