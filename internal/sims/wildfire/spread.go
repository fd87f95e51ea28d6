package wildfire

import (
	"math"

	"firefront/internal/core"
)

// Rothermel (1972) is formulated in imperial units; inputs are converted on
// the way in and the rate is converted back to m/s.
const (
	ftPerM             = 1 / 0.3048
	lbPerFt2PerKgPerM2 = 0.204816
	btuPerLbPerKJPerKg = 0.429923
	ftMinPerMs         = 196.85
	msPerFtMin         = 0.00508
	lbFt3PerKgM3       = 0.062428

	particleDensity  = 32.0   // lb/ft³
	mineralTotal     = 0.0555 // S_T
	mineralEffective = 0.010  // S_e
)

// SpreadInputs are the fields read by the spread-rate pass.
type SpreadInputs struct {
	Phi      []float64
	FuelIDs  []uint8
	Fuel     []float64
	Moisture []float64
	Fuels    FuelTable
	Terrain  *Terrain
	Wind     *WindField
}

// SpreadRatePass writes the potential spread rate R (m/s) for every cell.
func SpreadRatePass(exec core.Executor, grid core.Grid, in SpreadInputs, p SpreadParams, dst []float64) {
	beds := buildFuelBeds(in.Fuels)
	exec.For(grid.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			dst[idx] = spreadRateCell(grid, in, beds, p, idx)
		}
	})
}

func spreadRateCell(grid core.Grid, in SpreadInputs, beds []*fuelBed, p SpreadParams, idx int) float64 {
	id := int(in.FuelIDs[idx])
	if id >= len(beds) || beds[id] == nil {
		return 0
	}
	x, y := grid.Coords(idx)

	nx, ny, hasDir := spreadDirection(grid, in.Phi, x, y)
	wind := in.Wind.V[idx]
	windAlong := wind.Len()
	if hasDir {
		windAlong = wind.X()*nx + wind.Y()*ny
	}

	r := beds[id].rate(in.Fuel[idx], in.Moisture[idx], windAlong, in.Terrain.TanSlope(idx), p)
	if r <= 0 {
		return 0
	}
	r *= curvatureFactor(p.CurvatureCoeff, frontCurvature(grid, in.Phi, x, y))
	r *= vorticityBoost(math.Abs(in.Wind.Vorticity(x, y)), p.VorticityThreshold)
	return math.Max(r, 0)
}

func buildFuelBeds(t FuelTable) []*fuelBed {
	beds := make([]*fuelBed, len(t))
	for i, f := range t {
		if bed, ok := newFuelBed(f); ok {
			beds[i] = &bed
		}
	}
	return beds
}

// fuelBed holds the moisture- and wind-independent Rothermel terms of a fuel
// model, in imperial units.
type fuelBed struct {
	sigma    float64 // 1/ft
	bulk     float64 // lb/ft³
	beta     float64
	ratio    float64 // β/βop
	reaction float64 // reaction intensity per lb/ft² of net load, dry
	xi       float64
	eps      float64
	mx       float64
}

func newFuelBed(fuel FuelModel) (fuelBed, bool) {
	if !fuel.Burnable() || fuel.MoistureExtinction <= 0 {
		return fuelBed{}, false
	}
	sigma := fuel.SurfaceAreaToVolume / ftPerM
	heat := fuel.HeatContent * btuPerLbPerKJPerKg
	bulk := fuel.Load / fuel.BedDepth * lbFt3PerKgM3

	beta := bulk / particleDensity
	betaOpt := 3.348 * math.Pow(sigma, -0.8189)
	ratio := beta / betaOpt

	s15 := math.Pow(sigma, 1.5)
	gammaMax := s15 / (495 + 0.0594*s15)
	a := 133 * math.Pow(sigma, -0.7913)
	gamma := gammaMax * math.Pow(ratio, a) * math.Exp(a*(1-ratio))
	etaS := 0.174 * math.Pow(mineralEffective, -0.19)

	return fuelBed{
		sigma:    sigma,
		bulk:     bulk,
		beta:     beta,
		ratio:    ratio,
		reaction: gamma * heat * etaS,
		xi:       math.Exp((0.792+0.681*math.Sqrt(sigma))*(beta+0.1)) / (192 + 0.2595*sigma),
		eps:      math.Exp(-138 / sigma),
		mx:       fuel.MoistureExtinction,
	}, true
}

// noWindRate is the spread rate in ft/min without wind or slope.
func (b fuelBed) noWindRate(load, moisture float64) float64 {
	if load < minFuelLoad || moisture >= b.mx {
		return 0
	}
	moisture = math.Max(moisture, 0)
	netLoad := load * lbPerFt2PerKgPerM2 * (1 - mineralTotal)
	sink := b.bulk * b.eps * (250 + 1116*moisture)
	if sink <= divisionEpsilon {
		return 0
	}
	return b.reaction * netLoad * moistureDamping(moisture/b.mx) * b.xi / sink
}

// windCoeff is φw for a wind speed in m/s along the spread direction.
func (b fuelBed) windCoeff(u float64) float64 {
	if u <= 0 {
		return 0
	}
	c := 7.47 * math.Exp(-0.133*math.Pow(b.sigma, 0.55))
	e := 0.02526 * math.Pow(b.sigma, 0.54)
	k := 0.715 * math.Exp(-3.59e-4*b.sigma)
	return c * math.Pow(u*ftMinPerMs, e) * math.Pow(b.ratio, -k)
}

// slopeCoeff is φs per unit tan²θ.
func (b fuelBed) slopeCoeff() float64 { return 5.275 * math.Pow(b.beta, -0.3) }

// rate evaluates the Rothermel surface spread rate in m/s. windAlong is the
// wind component along the spread direction; negative values are backing
// wind.
func (b fuelBed) rate(load, moisture, windAlong, tanSlope float64, p SpreadParams) float64 {
	r0 := b.noWindRate(load, moisture)
	if r0 <= 0 {
		return 0
	}
	phiS := b.slopeCoeff() * tanSlope * tanSlope
	if windAlong <= 0 {
		return r0 * (1 + phiS) * backingFactor(-windAlong, p.BackingFloor, p.BackingWindRef) * msPerFtMin
	}
	return r0 * (1 + b.windCoeff(windAlong) + phiS) * msPerFtMin
}

// rothermelRate is rate for a single fuel model.
func rothermelRate(fuel FuelModel, load, moisture, windAlong, tanSlope float64, p SpreadParams) float64 {
	bed, ok := newFuelBed(fuel)
	if !ok {
		return 0
	}
	return bed.rate(load, moisture, windAlong, tanSlope, p)
}

// moistureDamping is the Rothermel cubic in the moisture ratio, clamped to
// [0, 1].
func moistureDamping(rm float64) float64 {
	eta := 1 - 2.59*rm + 5.11*rm*rm - 3.52*rm*rm*rm
	return math.Min(math.Max(eta, 0), 1)
}

// backingFactor scales the no-wind rate under opposing wind. It is 1 at
// zero wind and decreases strictly toward floor.
func backingFactor(opposing, floor, ref float64) float64 {
	if ref <= 0 {
		return floor
	}
	return floor + (1-floor)/(1+math.Abs(opposing)/ref)
}

// curvatureFactor maps κ to 1+coeff·κ clamped to [0.5, 2].
func curvatureFactor(coeff, kappa float64) float64 {
	return math.Min(math.Max(1+coeff*kappa, 0.5), 2)
}

// vorticityBoost is 1 up to the threshold and approaches 2 as |ζ| grows.
func vorticityBoost(absZeta, threshold float64) float64 {
	if absZeta <= threshold || absZeta <= 0 {
		return 1
	}
	return 1 + (absZeta-threshold)/absZeta
}

// spreadDirection returns the outward front normal ∇φ/|∇φ| from central
// differences. φ grows into unburned fuel, so this is the direction the front
// advances. ok is false on boundary cells or where the gradient vanishes.
func spreadDirection(grid core.Grid, phi []float64, x, y int) (float64, float64, bool) {
	if grid.Boundary(x, y) {
		return 0, 0, false
	}
	h := 2 * grid.CellSize
	gx := (phi[grid.Index(x+1, y)] - phi[grid.Index(x-1, y)]) / h
	gy := (phi[grid.Index(x, y+1)] - phi[grid.Index(x, y-1)]) / h
	mag := math.Hypot(gx, gy)
	if mag*mag < gradientEpsilon {
		return 0, 0, false
	}
	return gx / mag, gy / mag, true
}

// frontCurvature computes κ = (φxx φy² − 2 φx φy φxy + φyy φx²)/|∇φ|³ with
// central differences. Near-zero gradients yield zero.
func frontCurvature(grid core.Grid, phi []float64, x, y int) float64 {
	if grid.Boundary(x, y) {
		return 0
	}
	dx := grid.CellSize
	c := phi[grid.Index(x, y)]
	l, r := phi[grid.Index(x-1, y)], phi[grid.Index(x+1, y)]
	d, u := phi[grid.Index(x, y-1)], phi[grid.Index(x, y+1)]

	px := (r - l) / (2 * dx)
	py := (u - d) / (2 * dx)
	pxx := (r - 2*c + l) / (dx * dx)
	pyy := (u - 2*c + d) / (dx * dx)
	pxy := (phi[grid.Index(x+1, y+1)] - phi[grid.Index(x+1, y-1)] -
		phi[grid.Index(x-1, y+1)] + phi[grid.Index(x-1, y-1)]) / (4 * dx * dx)

	g2 := px*px + py*py
	if g2 < gradientEpsilon {
		return 0
	}
	return (pxx*py*py - 2*px*py*pxy + pyy*px*px) / math.Pow(g2, 1.5)
}
