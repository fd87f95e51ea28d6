package wildfire

import (
	"math"

	"firefront/internal/core"
)

// HeatInputs are the fields read by the heat transfer pass.
type HeatInputs struct {
	Temperature []float64
	Moisture    []float64
	Fuel        []float64
	Phi         []float64
	HeatSource  []float64 // J per cell released by the previous combustion pass
	FuelIDs     []uint8
	Fuels       FuelTable
	Wind        *WindField
	Ambient     float64 // K
}

// neighbour offsets with their squared distance in cells.
var radiationStencil = [8]struct{ dx, dy, d2 int }{
	{-1, 0, 1}, {1, 0, 1}, {0, -1, 1}, {0, 1, 1},
	{-1, -1, 2}, {1, -1, 2}, {-1, 1, 2}, {1, 1, 2},
}

// HeatPass updates temperature by diffusion, radiative exchange, radiative
// loss and upwind advection, then applies the combustion heat source with
// moisture evaporating first. It writes temperature and moisture.
func HeatPass(exec core.Executor, grid core.Grid, in HeatInputs, p HeatParams, dt float64, dstTemp, dstMoist []float64) {
	lo := in.Ambient - ambientFloorDelta
	exec.For(grid.Len(), func(start, end int) {
		for idx := start; idx < end; idx++ {
			x, y := grid.Coords(idx)
			if grid.Boundary(x, y) {
				dstTemp[idx] = in.Ambient
				dstMoist[idx] = in.Moisture[idx]
				continue
			}
			t, m := heatCell(grid, in, p, dt, x, y, idx)
			dstTemp[idx] = math.Min(math.Max(t, lo), maxTemperatureK)
			dstMoist[idx] = math.Max(m, 0)
		}
	})
}

func heatCell(grid core.Grid, in HeatInputs, p HeatParams, dt float64, x, y, idx int) (float64, float64) {
	area := grid.CellArea()
	mass := in.Fuel[idx] * area
	if mass < minFuelLoad {
		return in.Ambient, in.Moisture[idx]
	}
	fuel, ok := in.Fuels.Lookup(in.FuelIDs[idx])
	if !ok {
		return in.Ambient, in.Moisture[idx]
	}
	cp := fuel.SpecificHeat * 1000
	if cp <= 0 {
		return in.Ambient, in.Moisture[idx]
	}

	T := in.Temperature[idx]
	dx := grid.CellSize
	tl := in.Temperature[idx-1]
	tr := in.Temperature[idx+1]
	td := in.Temperature[idx-grid.W]
	tu := in.Temperature[idx+grid.W]

	next := T
	next += dt * fuel.ThermalDiffusivity * (tl + tr + td + tu - 4*T) / (dx * dx)

	wind := in.Wind.V[idx]
	var adv float64
	if u := wind.X(); u > 0 {
		adv += u * (T - tl) / dx
	} else {
		adv += u * (tr - T) / dx
	}
	if v := wind.Y(); v > 0 {
		adv += v * (T - td) / dx
	} else {
		adv += v * (tu - T) / dx
	}
	next -= dt * adv

	eps := p.EmissivityUnburned
	if in.Phi[idx] < 0 {
		eps = p.EmissivityBurning
	}
	t4 := T * T * T * T
	var gain float64
	for _, s := range radiationStencil {
		tn := in.Temperature[grid.Index(x+s.dx, y+s.dy)]
		view := 1 / (math.Pi * float64(s.d2))
		gain += eps * StefanBoltzmann * (tn*tn*tn*tn - t4) * area * view
	}
	amb4 := in.Ambient * in.Ambient * in.Ambient * in.Ambient
	loss := eps * StefanBoltzmann * (t4 - amb4) * area
	next += dt * (gain - loss) / (mass * cp)

	m := in.Moisture[idx]
	if in.HeatSource != nil {
		m, next = AbsorbHeat(in.HeatSource[idx], mass, m, next, cp)
	}
	return next, m
}

// AbsorbHeat applies q joules to a fuel mass holding the given moisture
// fraction. Water evaporates first; only the remainder raises temperature.
// specificHeat is in J/(kg·K).
func AbsorbHeat(q, mass, moisture, temp, specificHeat float64) (float64, float64) {
	if q <= 0 || mass < minFuelLoad {
		return moisture, temp
	}
	water := math.Max(moisture, 0) * mass
	evap := water * LatentHeatVapor
	if q <= evap {
		return (water - q/LatentHeatVapor) / mass, temp
	}
	if specificHeat <= 0 {
		return 0, temp
	}
	return 0, temp + (q-evap)/(mass*specificHeat)
}
