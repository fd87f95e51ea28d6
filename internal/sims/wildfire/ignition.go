package wildfire

import "firefront/internal/core"

// IgnitionInputs are the fields read by the ignition sync pass.
type IgnitionInputs struct {
	Phi         []float64
	Temperature []float64
	Moisture    []float64
	FuelIDs     []uint8
	Fuel        []float64
	Fuels       FuelTable
}

// IgnitionSyncPass force-ignites unburned interior cells that are hot and dry
// enough and touch a burning 4-neighbour, so thermal ignition and the
// propagated front agree.
func IgnitionSyncPass(exec core.Executor, grid core.Grid, in IgnitionInputs, p IgnitionParams, dst []float64) {
	seed := -0.5 * grid.CellSize
	exec.For(grid.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			phi := in.Phi[idx]
			dst[idx] = phi
			if phi <= 0 {
				continue
			}
			x, y := grid.Coords(idx)
			if grid.Boundary(x, y) {
				continue
			}
			if !thermallyIgnitable(in, p, idx) {
				continue
			}
			if in.Phi[idx-1] < 0 || in.Phi[idx+1] < 0 || in.Phi[idx-grid.W] < 0 || in.Phi[idx+grid.W] < 0 {
				dst[idx] = seed
			}
		}
	})
}

func thermallyIgnitable(in IgnitionInputs, p IgnitionParams, idx int) bool {
	fuel, ok := in.Fuels.Lookup(in.FuelIDs[idx])
	if !ok || in.Fuel[idx] < minFuelLoad {
		return false
	}
	return in.Temperature[idx] >= p.Temperature && in.Moisture[idx] < fuel.MoistureExtinction
}
