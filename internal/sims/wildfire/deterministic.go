package wildfire

import (
	"math"

	"firefront/internal/core"
	"firefront/pkg/fixed"
)

// FrontStage owns the level set. It computes the spread rate, advances φ and
// applies every other change of φ: ignition seeds, the thermal ignition sync
// and reinitialization. The float stage is the default; the fixed-point stage
// keeps an integer φ that is bit-identical on any executor or platform given
// identical inputs, and publishes it to the float field after each change.
type FrontStage interface {
	Name() string
	Spread(w *World)
	Evolve(w *World)
	Ignite(w *World, x, y int)
	Sync(w *World)
	Reinit(w *World)
}

func newFrontStage(deterministic bool) FrontStage {
	if deterministic {
		return &fixedFront{}
	}
	return floatFront{}
}

type floatFront struct{}

func (floatFront) Name() string { return "float" }

func (floatFront) Spread(w *World) {
	SpreadRatePass(w.exec, w.grid, w.spreadInputs(), w.cfg.Params.Spread, w.rate)
	EffectsPass(w.exec, w.grid, w.effectsInputs(), w.cfg.Params.Effects, w.rate, w.modRate)
	FireBehaviourPass(w.exec, w.grid, w.behaviourInputs(w.modRate), w.cfg.Canopy, w.cfg.Params.LevelSet, w.simTime, w.evolveRate)
}

func (floatFront) Evolve(w *World) {
	lp := w.cfg.Params.LevelSet
	lp.NoiseAmplitude = regimeNoiseAmplitude(w.regime, lp)
	LevelSetPass(w.exec, w.grid, w.phi.Cur, w.evolveRate, w.terrain, w.tick, w.cfg.Dt, lp, w.phi.Next)
	w.phi.Swap()
}

func (floatFront) Ignite(w *World, x, y int) {
	g := w.grid
	half := 0.5 * g.CellSize
	for yy := 0; yy < g.H; yy++ {
		for xx := 0; xx < g.W; xx++ {
			d := math.Hypot(float64(xx-x), float64(yy-y))*g.CellSize - half
			idx := g.Index(xx, yy)
			if d < w.phi.Cur[idx] {
				w.phi.Cur[idx] = d
			}
		}
	}
}

func (floatFront) Sync(w *World) {
	IgnitionSyncPass(w.exec, w.grid, w.ignitionInputs(), w.cfg.Params.Ignition, w.phi.Next)
	w.phi.Swap()
}

func (floatFront) Reinit(w *World) {
	Reinitialize(w.exec, w.grid, w.phi.Cur, w.phi.Next, w.phi0, w.cfg.ReinitIterations)
}

// Wind table resolution for the fixed stage: one entry per whole m/s.
const fixedWindSteps = 40

// Slope-factor table covers aligned slopes from -90 to 90 degrees.
const fixedSlopeSpan = 90

// Cruz moisture table: one entry per whole percent.
const fixedCruzSteps = 100

// Salt separating the rate-variation noise from the level-set noise.
const regimeNoiseSalt = 0x9e3779b9

// FixedFuel holds the frozen integer coefficients of one fuel model.
type FixedFuel struct {
	Burnable     bool
	DryRate      fixed.Q // m/s per kg/m² at zero moisture, wind and slope
	MoistExt     fixed.Q
	SlopeCoeff   fixed.Q
	WindCoeff    [fixedWindSteps + 1]fixed.Q
	BackingFloor fixed.Q
	BackingRef   fixed.Q
}

// NewFixedFuelTable quantizes the float fuel model once. The result is an
// input to the fixed stage and is never recomputed from floats per tick.
func NewFixedFuelTable(t FuelTable, p SpreadParams) []FixedFuel {
	out := make([]FixedFuel, len(t))
	for i, f := range t {
		bed, ok := newFuelBed(f)
		if !ok {
			continue
		}
		ff := FixedFuel{
			Burnable:     true,
			DryRate:      fixed.FromFloat(bed.noWindRate(1, 0) * msPerFtMin),
			MoistExt:     fixed.FromFloat(f.MoistureExtinction),
			SlopeCoeff:   fixed.FromFloat(bed.slopeCoeff()),
			BackingFloor: fixed.FromFloat(p.BackingFloor),
			BackingRef:   fixed.FromFloat(p.BackingWindRef),
		}
		for u := range ff.WindCoeff {
			ff.WindCoeff[u] = fixed.FromFloat(bed.windCoeff(float64(u)))
		}
		out[i] = ff
	}
	return out
}

// windCoeff interpolates the wind table linearly.
func (f *FixedFuel) windCoeff(u fixed.Q) fixed.Q {
	if u <= 0 {
		return 0
	}
	i := int64(u) >> fixed.Shift
	if i >= fixedWindSteps {
		return f.WindCoeff[fixedWindSteps]
	}
	frac := u - fixed.Q(i<<fixed.Shift)
	a, b := f.WindCoeff[i], f.WindCoeff[i+1]
	return a + fixed.Mul(b-a, frac)
}

// fixedDamping is the Rothermel moisture damping cubic in integers.
func fixedDamping(rm fixed.Q) fixed.Q {
	rm2 := fixed.Mul(rm, rm)
	rm3 := fixed.Mul(rm2, rm)
	eta := fixed.One -
		fixed.Mul(fixed.FromFloat(2.59), rm) +
		fixed.Mul(fixed.FromFloat(5.11), rm2) -
		fixed.Mul(fixed.FromFloat(3.52), rm3)
	return fixed.Clamp(eta, 0, fixed.One)
}

// fixedRate evaluates the integer spread rate for one cell.
func (f *FixedFuel) rate(load, moisture, windAlong, tanSq fixed.Q) fixed.Q {
	if !f.Burnable || load <= 0 || moisture >= f.MoistExt {
		return 0
	}
	moisture = fixed.Max(moisture, 0)
	eta := fixedDamping(fixed.Div(moisture, f.MoistExt))
	qig := fixed.Div(fixed.FromInt(250), fixed.FromInt(250)+fixed.Mul(fixed.FromInt(1116), moisture))
	r0 := fixed.Mul(fixed.Mul(fixed.Mul(f.DryRate, load), eta), qig)
	if r0 <= 0 {
		return 0
	}
	phiS := fixed.Mul(f.SlopeCoeff, tanSq)
	if windAlong <= 0 {
		back := f.BackingFloor
		if f.BackingRef > 0 {
			back += fixed.Div(fixed.Mul(fixed.One-f.BackingFloor, f.BackingRef), f.BackingRef-windAlong)
		}
		return fixed.Mul(fixed.Mul(r0, fixed.One+phiS), back)
	}
	return fixed.Mul(r0, fixed.One+f.windCoeff(windAlong)+phiS)
}

type fixedFront struct {
	phi     []fixed.Q // authoritative level set
	phiNext []fixed.Q
	phi0    []fixed.Q
	rate    []fixed.Q // R after terrain and valley effects
	evolve  []fixed.Q // R after crown and regime revision

	wind     [][2]fixed.Q
	tanSq    []fixed.Q
	slope    []fixed.Q
	upward   [][2]fixed.Q
	effect   []fixed.Q // VLS times valley channeling
	chimney  []fixed.Q // 2g·depth/ambient where the chimney applies, else 0
	cruzWind []fixed.Q
	fuels    []FixedFuel

	slopeTable [2*fixedSlopeSpan + 1]fixed.Q
	cruzTable  [fixedCruzSteps + 1]fixed.Q
	tables     bool

	terrain  *Terrain
	windSrc  *WindField
	spreadP  SpreadParams
	slopeKey [2]float64
	effectsP EffectsParams
	ambient  float64
	effects  bool
}

func (*fixedFront) Name() string { return "fixed" }

// ensure allocates the integer state. φ is quantized from the float field
// only here; afterwards the integer field is the source of truth.
func (s *fixedFront) ensure(w *World) {
	n := w.grid.Len()
	if len(s.phi) == n {
		return
	}
	s.phi = make([]fixed.Q, n)
	for i, v := range w.phi.Cur {
		s.phi[i] = fixed.FromFloat(v)
	}
	s.phiNext = make([]fixed.Q, n)
	s.phi0 = make([]fixed.Q, n)
	s.rate = make([]fixed.Q, n)
	s.evolve = make([]fixed.Q, n)
	s.terrain = nil
	s.windSrc = nil
	s.fuels = nil
	s.effects = false
	s.publish(w)
}

func (s *fixedFront) publish(w *World) {
	for i, v := range s.phi {
		w.phi.Cur[i] = v.Float()
	}
}

// prepare quantizes the static inputs when they change.
func (s *fixedFront) prepare(w *World) {
	s.ensure(w)
	n := w.grid.Len()
	p := w.cfg.Params
	if !s.tables {
		for i := range s.cruzTable {
			s.cruzTable[i] = fixed.FromFloat(cruzMoistureTerm(float64(i) / 100))
		}
	}
	if s.fuels == nil || len(s.fuels) != len(w.fuels) || s.spreadP != p.Spread {
		s.fuels = NewFixedFuelTable(w.fuels, p.Spread)
		s.spreadP = p.Spread
	}
	if key := [2]float64{p.LevelSet.SlopeGain, p.LevelSet.SlopeFloor}; !s.tables || key != s.slopeKey {
		s.slopeKey = key
		for i := range s.slopeTable {
			eff := float64(i - fixedSlopeSpan)
			s.slopeTable[i] = fixed.FromFloat(math.Max(key[1], math.Exp(key[0]*eff)))
		}
		s.tables = true
	}
	if s.terrain != w.terrain {
		s.terrain = w.terrain
		s.tanSq = make([]fixed.Q, n)
		s.slope = make([]fixed.Q, n)
		s.upward = make([][2]fixed.Q, n)
		for i := 0; i < n; i++ {
			tan := w.terrain.TanSlope(i)
			s.tanSq[i] = fixed.FromFloat(tan * tan)
			s.slope[i] = fixed.FromFloat(w.terrain.Slope[i])
			up := w.terrain.Upslope(i)
			s.upward[i] = [2]fixed.Q{fixed.FromFloat(up.X()), fixed.FromFloat(up.Y())}
		}
		s.effects = false
	}
	if s.windSrc != w.wind {
		s.windSrc = w.wind
		s.wind = make([][2]fixed.Q, n)
		s.cruzWind = make([]fixed.Q, n)
		for i, v := range w.wind.V {
			s.wind[i] = [2]fixed.Q{fixed.FromFloat(v.X()), fixed.FromFloat(v.Y())}
			s.cruzWind[i] = fixed.FromFloat(cruzWindTerm(w.wind.Speed(i)))
		}
		s.effects = false
	}
	amb := w.cfg.Weather.AmbientTemperature
	if !s.effects || s.effectsP != p.Effects || s.ambient != amb {
		s.effectsP = p.Effects
		s.ambient = amb
		s.prepareEffects(w)
		s.effects = true
	}
}

// prepareEffects quantizes the static VLS and valley factors. Only the
// chimney updraft depends on temperature and is evaluated per tick.
func (s *fixedFront) prepareEffects(w *World) {
	n := w.grid.Len()
	p := s.effectsP
	s.effect = make([]fixed.Q, n)
	s.chimney = make([]fixed.Q, n)
	for i := 0; i < n; i++ {
		f := vlsMultiplier(w.terrain.Slope[i], w.terrain.Aspect[i], w.wind.Speed(i), w.wind.Heading(i), p)
		if w.valleys != nil {
			v := w.valleys[i]
			f *= valleyChannelFactor(v, p)
			if chimneyApplies(v, s.ambient, p) {
				s.chimney[i] = fixed.FromFloat(2 * Gravity * v.Depth / s.ambient)
			}
		}
		s.effect[i] = fixed.FromFloat(f)
	}
}

// fixedTick holds the per-tick constants of the integer spread.
type fixedTick struct {
	dx        fixed.Q
	threshold fixed.Q
	curvature fixed.Q
	ambient   fixed.Q
	boost     fixed.Q
	maxUp     fixed.Q
	passive   fixed.Q
	variation fixed.Q
	tick      uint32

	unpredictable [RegimePlumeDominated + 1]fixed.Q
}

func (s *fixedFront) tickConstants(w *World) fixedTick {
	p := w.cfg.Params
	k := fixedTick{
		dx:        fixed.FromFloat(w.grid.CellSize),
		threshold: fixed.FromFloat(p.Spread.VorticityThreshold),
		curvature: fixed.FromFloat(p.Spread.CurvatureCoeff),
		ambient:   fixed.FromFloat(s.ambient),
		boost:     fixed.FromFloat(p.Effects.ChimneyMaxBoost),
		maxUp:     fixed.FromFloat(p.Effects.ChimneyMaxUpdraft),
		passive:   fixed.One + fixed.Mul(fixed.One/2, fixed.FromFloat(math.Max(w.cfg.Canopy.CoverFraction, 0))),
		variation: fixed.FromFloat(p.LevelSet.RegimeVariation),
		tick:      uint32(w.tick),
	}
	for r := range k.unpredictable {
		k.unpredictable[r] = fixed.FromFloat(1 - FireRegime(r).Predictability())
	}
	return k
}

// Spread computes the integer spread rate, applies the quantized effects
// factors and revises the result by the previous tick's crown state and
// regime.
func (s *fixedFront) Spread(w *World) {
	s.prepare(w)
	g := w.grid
	k := s.tickConstants(w)

	w.exec.For(g.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			r := s.rateCell(w, idx, k.dx, k.threshold, k.curvature)
			w.rate[idx] = r.Float()
			if r > 0 {
				r = fixed.Mul(r, fixed.Mul(s.effect[idx], s.chimneyFactor(w, idx, k)))
			}
			s.rate[idx] = r
			e := s.behaviour(w, idx, r, k)
			s.evolve[idx] = e
			w.modRate[idx] = r.Float()
			w.evolveRate[idx] = e.Float()
		}
	})
}

func (s *fixedFront) chimneyFactor(w *World, idx int, k fixedTick) fixed.Q {
	return fixedChimneyFactor(s.chimney[idx], fixed.FromFloat(w.temp.Cur[idx])-k.ambient, k.boost, k.maxUp)
}

// fixedChimneyFactor is chimneyFactor with the static part c = 2g·depth/T
// already quantized.
func fixedChimneyFactor(c, dT, boost, maxUp fixed.Q) fixed.Q {
	if c <= 0 || dT <= 0 || maxUp <= 0 {
		return fixed.One
	}
	up := fixed.Min(fixed.Sqrt(fixed.Mul(c, dT)), maxUp)
	return fixed.One + fixed.Div(fixed.Mul(boost, up), maxUp)
}

// behaviour is the integer form of FireBehaviourPass for one cell.
func (s *fixedFront) behaviour(w *World, idx int, r fixed.Q, k fixedTick) fixed.Q {
	if r <= 0 {
		return 0
	}
	x, y := w.grid.Coords(idx)
	crown, regime := neighbourhoodBehaviour(w.grid, w.crown, w.regime, x, y)
	switch crown {
	case CrownActive:
		r = fixed.Max(r, fixed.Mul(s.cruzWind[idx], s.cruzMoisture(fixed.FromFloat(w.moist.Cur[idx]))))
	case CrownPassive:
		r = fixed.Mul(r, k.passive)
	}
	if v := fixed.Mul(k.unpredictable[regime], k.variation); v > 0 {
		r += fixed.Mul(r, fixed.Mul(v, fixedNoise(y, x, k.tick^regimeNoiseSalt)))
	}
	return fixed.Max(r, 0)
}

// cruzMoisture interpolates the Cruz moisture term at moisture fraction m.
func (s *fixedFront) cruzMoisture(m fixed.Q) fixed.Q {
	pct := fixed.Mul(m, fixed.FromInt(100))
	if pct <= 0 {
		return s.cruzTable[0]
	}
	i := int64(pct) >> fixed.Shift
	if i >= fixedCruzSteps {
		return s.cruzTable[fixedCruzSteps]
	}
	frac := pct - fixed.Q(i<<fixed.Shift)
	a, b := s.cruzTable[i], s.cruzTable[i+1]
	return a + fixed.Mul(b-a, frac)
}

func (s *fixedFront) rateCell(w *World, idx int, dxQ, thQ, ccQ fixed.Q) fixed.Q {
	id := int(w.fuelIDs[idx])
	if id >= len(s.fuels) || !s.fuels[id].Burnable {
		return 0
	}
	g := w.grid
	x, y := g.Coords(idx)
	u := s.wind[idx]
	windMag := fixed.Sqrt(fixed.Mul(u[0], u[0]) + fixed.Mul(u[1], u[1]))
	along := windMag
	if nx, ny, ok := fixedSpreadDir(g, s.phi, x, y); ok {
		along = fixed.Mul(u[0], nx) + fixed.Mul(u[1], ny)
	}
	r := s.fuels[id].rate(
		fixed.FromFloat(w.fuel.Cur[idx]),
		fixed.FromFloat(w.moist.Cur[idx]),
		along,
		s.tanSq[idx],
	)
	if r <= 0 {
		return 0
	}
	r = fixed.Mul(r, fixedCurvatureFactor(ccQ, fixedCurvature(g, s.phi, dxQ, x, y)))
	r = fixed.Mul(r, fixedVorticityBoost(fixedVorticity(g, s.wind, dxQ, x, y), thQ))
	return fixed.Max(r, 0)
}

// noiseAmplitude is the integer form of regimeNoiseAmplitude.
func (s *fixedFront) noiseAmplitude(w *World) fixed.Q {
	lp := w.cfg.Params.LevelSet
	amp := fixed.FromFloat(lp.NoiseAmplitude)
	total, count := regimeUncertainty(w.regime)
	if count == 0 || amp == 0 {
		return amp
	}
	frac := fixed.Div(fixed.FromInt(total-minUncertainty*count), fixed.FromInt(uncertaintySpan*count))
	frac = fixed.Clamp(frac, 0, fixed.One)
	return fixed.Mul(amp, fixed.One+fixed.Mul(fixed.FromFloat(lp.RegimeNoiseScale), frac))
}

// Evolve advances the integer φ with the max-abs one-sided gradient and
// publishes it to the float field.
func (s *fixedFront) Evolve(w *World) {
	s.ensure(w)
	g := w.grid
	lp := w.cfg.Params.LevelSet
	dxQ := fixed.FromFloat(g.CellSize)
	dtQ := fixed.FromFloat(w.cfg.Dt)
	ccQ := fixed.FromFloat(lp.CurvatureCoeff)
	ampQ := s.noiseAmplitude(w)
	tick := uint32(w.tick)

	w.exec.For(g.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			x, y := g.Coords(idx)
			cur := s.phi[idx]
			s.phiNext[idx] = cur
			r := s.evolve[idx]
			if g.Boundary(x, y) || r <= 0 {
				continue
			}
			grad := fixedGradient(g, s.phi, dxQ, x, y)
			if grad <= 0 {
				continue
			}
			r = fixed.Mul(r, fixedCurvatureFactor(ccQ, fixedCurvature(g, s.phi, dxQ, x, y)))
			r = fixed.Mul(r, s.slopeFactor(g, x, y))
			if ampQ != 0 {
				r += fixed.Mul(r, fixed.Mul(ampQ, fixedNoise(x, y, tick)))
			}
			s.phiNext[idx] = cur - fixed.Mul(dtQ, fixed.Mul(fixed.Max(r, 0), grad))
		}
	})
	s.phi, s.phiNext = s.phiNext, s.phi
	s.publish(w)
}

// Ignite lowers φ to the integer signed distance of a half-cell disc around
// (x, y).
func (s *fixedFront) Ignite(w *World, x, y int) {
	s.ensure(w)
	g := w.grid
	cell := fixed.FromFloat(g.CellSize)
	half := cell / 2
	for yy := 0; yy < g.H; yy++ {
		for xx := 0; xx < g.W; xx++ {
			dx, dy := xx-x, yy-y
			d := fixed.Mul(fixed.Sqrt(fixed.FromInt(dx*dx+dy*dy)), cell) - half
			idx := g.Index(xx, yy)
			if d < s.phi[idx] {
				s.phi[idx] = d
			}
		}
	}
	s.publish(w)
}

// Sync seeds unburned cells that are thermally ignitable and touch the
// integer front.
func (s *fixedFront) Sync(w *World) {
	s.ensure(w)
	g := w.grid
	in := w.ignitionInputs()
	p := w.cfg.Params.Ignition
	seed := -(fixed.FromFloat(g.CellSize) / 2)
	w.exec.For(g.Len(), func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			cur := s.phi[idx]
			s.phiNext[idx] = cur
			if cur <= 0 {
				continue
			}
			x, y := g.Coords(idx)
			if g.Boundary(x, y) || !thermallyIgnitable(in, p, idx) {
				continue
			}
			if s.phi[idx-1] < 0 || s.phi[idx+1] < 0 || s.phi[idx-g.W] < 0 || s.phi[idx+g.W] < 0 {
				s.phiNext[idx] = seed
			}
		}
	})
	s.phi, s.phiNext = s.phiNext, s.phi
	s.publish(w)
}

// Reinit runs the reinitialization iterations on the integer φ.
func (s *fixedFront) Reinit(w *World) {
	s.ensure(w)
	if w.cfg.ReinitIterations <= 0 {
		return
	}
	s.phi, s.phiNext = fixedReinitialize(w.exec, w.grid, s.phi, s.phiNext, s.phi0, w.cfg.ReinitIterations)
	s.publish(w)
}

func (s *fixedFront) slopeFactor(g core.Grid, x, y int) fixed.Q {
	idx := g.Index(x, y)
	if s.slope[idx] <= 0 {
		return fixed.One
	}
	nx, ny, ok := fixedSpreadDir(g, s.phi, x, y)
	if !ok {
		return fixed.One
	}
	up := s.upward[idx]
	eff := fixed.Mul(s.slope[idx], fixed.Mul(nx, up[0])+fixed.Mul(ny, up[1]))
	eff = fixed.Clamp(eff, fixed.FromInt(-fixedSlopeSpan), fixed.FromInt(fixedSlopeSpan))
	pos := eff + fixed.FromInt(fixedSlopeSpan)
	i := int64(pos) >> fixed.Shift
	if i >= 2*fixedSlopeSpan {
		return s.slopeTable[2*fixedSlopeSpan]
	}
	frac := pos - fixed.Q(i<<fixed.Shift)
	a, b := s.slopeTable[i], s.slopeTable[i+1]
	return a + fixed.Mul(b-a, frac)
}

// fixedGradient is |∇φ| from the one-sided difference of larger magnitude
// per axis. Unlike composing one-sided max terms, it stays non-zero on both
// sides of a step discontinuity.
func fixedGradient(g core.Grid, phi []fixed.Q, dxQ fixed.Q, x, y int) fixed.Q {
	c := phi[g.Index(x, y)]
	dxm := c - phi[g.Index(x-1, y)]
	dxp := phi[g.Index(x+1, y)] - c
	dym := c - phi[g.Index(x, y-1)]
	dyp := phi[g.Index(x, y+1)] - c

	gx := dxp
	if fixed.Abs(dxm) > fixed.Abs(dxp) {
		gx = dxm
	}
	gy := dyp
	if fixed.Abs(dym) > fixed.Abs(dyp) {
		gy = dym
	}
	return fixed.Div(fixed.Sqrt(fixed.Mul(gx, gx)+fixed.Mul(gy, gy)), dxQ)
}

func fixedSpreadDir(g core.Grid, phi []fixed.Q, x, y int) (fixed.Q, fixed.Q, bool) {
	if g.Boundary(x, y) {
		return 0, 0, false
	}
	gx := phi[g.Index(x+1, y)] - phi[g.Index(x-1, y)]
	gy := phi[g.Index(x, y+1)] - phi[g.Index(x, y-1)]
	mag := fixed.Sqrt(fixed.Mul(gx, gx) + fixed.Mul(gy, gy))
	if mag <= 0 {
		return 0, 0, false
	}
	return fixed.Div(gx, mag), fixed.Div(gy, mag), true
}

func fixedCurvature(g core.Grid, phi []fixed.Q, dxQ fixed.Q, x, y int) fixed.Q {
	if g.Boundary(x, y) {
		return 0
	}
	c := phi[g.Index(x, y)]
	l, r := phi[g.Index(x-1, y)], phi[g.Index(x+1, y)]
	d, u := phi[g.Index(x, y-1)], phi[g.Index(x, y+1)]
	dx2 := fixed.Mul(dxQ, dxQ)

	px := fixed.Div(r-l, 2*dxQ)
	py := fixed.Div(u-d, 2*dxQ)
	pxx := fixed.Div(r-2*c+l, dx2)
	pyy := fixed.Div(u-2*c+d, dx2)
	pxy := fixed.Div(phi[g.Index(x+1, y+1)]-phi[g.Index(x+1, y-1)]-
		phi[g.Index(x-1, y+1)]+phi[g.Index(x-1, y-1)], 4*dx2)

	px2 := fixed.Mul(px, px)
	py2 := fixed.Mul(py, py)
	g2 := px2 + py2
	if g2 <= 0 {
		return 0
	}
	g3 := fixed.Mul(g2, fixed.Sqrt(g2))
	if g3 <= 0 {
		return 0
	}
	num := fixed.Mul(pxx, py2) - 2*fixed.Mul(fixed.Mul(px, py), pxy) + fixed.Mul(pyy, px2)
	return fixed.Div(num, g3)
}

func fixedCurvatureFactor(coeff, kappa fixed.Q) fixed.Q {
	return fixed.Clamp(fixed.One+fixed.Mul(coeff, kappa), fixed.One/2, 2*fixed.One)
}

func fixedVorticity(g core.Grid, wind [][2]fixed.Q, dxQ fixed.Q, x, y int) fixed.Q {
	if g.Boundary(x, y) {
		return 0
	}
	dvdx := fixed.Div(wind[g.Index(x+1, y)][1]-wind[g.Index(x-1, y)][1], 2*dxQ)
	dudy := fixed.Div(wind[g.Index(x, y+1)][0]-wind[g.Index(x, y-1)][0], 2*dxQ)
	return dvdx - dudy
}

func fixedVorticityBoost(zeta, threshold fixed.Q) fixed.Q {
	a := fixed.Abs(zeta)
	if a <= threshold || a <= 0 {
		return fixed.One
	}
	return fixed.One + fixed.Div(a-threshold, a)
}

// fixedNoise is an integer hash mapped to [-1, 1] in fixed point.
func fixedNoise(x, y int, tick uint32) fixed.Q {
	h := uint32(x)*73856093 ^ uint32(y)*19349663 ^ tick*83492791
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	h *= 0x846ca68b
	h ^= h >> 16
	return fixed.Q(int64(h%(2*fixed.Scale+1)) - fixed.Scale)
}

// FixedPhi exposes the integer level set of the deterministic stage, or nil
// when the float stage is active.
func (w *World) FixedPhi() []fixed.Q {
	if s, ok := w.front.(*fixedFront); ok {
		return s.phi
	}
	return nil
}

// FixedRate exposes the integer spread rate of the deterministic stage, or
// nil when the float stage is active.
func (w *World) FixedRate() []fixed.Q {
	if s, ok := w.front.(*fixedFront); ok {
		return s.rate
	}
	return nil
}
