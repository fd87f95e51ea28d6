package wildfire

import (
	"fmt"
	"math"
	"time"

	"firefront/internal/core"

	"github.com/google/uuid"
)

// World couples the level-set fire front to the per-cell heat, combustion
// and crown fire fields. Every pass reads one generation of its fields and
// writes the next.
type World struct {
	cfg   Config
	grid  core.Grid
	exec  core.Executor
	log   core.Logger
	runID string
	front FrontStage

	fuels   FuelTable
	terrain *Terrain
	wind    *WindField
	valleys []ValleyGeometry
	fuelIDs []uint8

	externalTerrain bool
	externalWind    bool
	externalFuel    bool

	phi     core.Field
	phi0    []float64
	rate    []float64
	modRate []float64
	effRate []float64
	// evolveRate is modRate revised by the previous tick's crown state and
	// fire regime; the front advances with it.
	evolveRate []float64

	temp  core.Field
	moist core.Field
	fuel  core.Field
	o2    core.Field
	heat  core.Field

	intensity []float64
	crown     []CrownState
	regime    []FireRegime
	arrival   []float64

	acc     Accumulator
	last    Reduction
	timings [passCount]time.Duration

	tick    int
	simTime float64
	display *core.ByteGrid
}

// New constructs a World with the default configuration and the given size.
func New(w, h int) *World {
	cfg := DefaultConfig()
	if w >= 3 {
		cfg.Width = w
	}
	if h >= 3 {
		cfg.Height = h
	}
	return NewWithConfig(cfg)
}

// NewWithConfig constructs a World from cfg. Invalid dimensions fall back
// to the defaults.
func NewWithConfig(cfg Config) *World {
	def := DefaultConfig()
	if cfg.Width < 3 {
		cfg.Width = def.Width
	}
	if cfg.Height < 3 {
		cfg.Height = def.Height
	}
	if !(cfg.CellSize > 0) {
		cfg.CellSize = def.CellSize
	}
	if !(cfg.Dt > 0) {
		cfg.Dt = def.Dt
	}
	w := &World{
		cfg:   cfg,
		grid:  core.NewGrid(cfg.Width, cfg.Height, cfg.CellSize),
		exec:  core.NewExecutor(cfg.Workers),
		log:   core.NopLogger(),
		fuels: DefaultFuelTable(),
	}
	w.Reset(cfg.Seed)
	return w
}

func init() {
	core.Register("wildfire", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
}

// Name returns the registry key.
func (w *World) Name() string { return "wildfire" }

// Size returns the grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.grid.W, H: w.grid.H} }

// Grid returns the grid geometry.
func (w *World) Grid() core.Grid { return w.grid }

// Config returns the active configuration.
func (w *World) Config() Config { return w.cfg }

// RunID identifies the current run; it changes on every Reset.
func (w *World) RunID() string { return w.runID }

// SetLogger installs a logger. A nil logger disables logging.
func (w *World) SetLogger(l core.Logger) {
	if l == nil {
		l = core.NopLogger()
	}
	w.log = l
}

// SetExecutor replaces the pass executor.
func (w *World) SetExecutor(e core.Executor) {
	if e == nil {
		e = core.SerialExecutor{}
	}
	w.exec = e
}

// SetFuelTable replaces the fuel table. Cells keep their fuel ids.
func (w *World) SetFuelTable(t FuelTable) {
	if len(t) == 0 {
		return
	}
	w.fuels = t
	if s, ok := w.front.(*fixedFront); ok {
		s.fuels = nil
	}
}

// Reset reallocates every field and regenerates whatever inputs were not
// supplied externally.
func (w *World) Reset(seed int64) {
	w.cfg.Seed = seed
	w.runID = uuid.NewString()
	n := w.grid.Len()
	amb := w.cfg.Weather.AmbientTemperature

	if !w.externalTerrain || !w.externalFuel {
		land := GenerateLandscape(w.grid, w.cfg.Landscape, w.fuels, seed)
		if !w.externalTerrain {
			t, err := NewTerrain(w.grid, land.Elevation)
			if err != nil {
				w.log.Warnf("generated terrain rejected: %v", err)
				t = FlatTerrain(w.grid, 0)
			}
			w.setTerrain(t)
		}
		if !w.externalFuel {
			w.fuelIDs = land.FuelIDs
		}
	}
	if !w.externalWind {
		w.wind = UniformWind(w.grid, w.cfg.Weather.WindSpeed, w.cfg.Weather.WindHeading)
	}

	far := float64(w.grid.W+w.grid.H) * w.grid.CellSize
	w.phi = core.NewField(n, far)
	w.phi0 = make([]float64, n)
	w.rate = make([]float64, n)
	w.modRate = make([]float64, n)
	w.effRate = make([]float64, n)
	w.evolveRate = make([]float64, n)
	w.temp = core.NewField(n, amb)
	w.moist = core.NewField(n, 0)
	w.fuel = core.NewField(n, 0)
	w.o2 = core.NewField(n, 1)
	w.heat = core.NewField(n, 0)
	w.intensity = make([]float64, n)
	w.crown = make([]CrownState, n)
	w.regime = make([]FireRegime, n)
	w.arrival = make([]float64, n)
	for i := range w.arrival {
		w.arrival[i] = math.Inf(1)
	}
	w.resetFuel()

	w.front = newFrontStage(w.cfg.Deterministic)
	w.acc.Clear()
	w.last = Reduction{}
	w.tick = 0
	w.simTime = 0
	w.display = core.NewByteGrid(w.grid.W, w.grid.H)

	if w.cfg.Landscape.IgnitionSeed {
		_ = w.Ignite(w.grid.W/2, w.grid.H/2)
	}
	w.refreshDisplay()
	w.log.Infof("reset run=%s seed=%d grid=%dx%d cell=%.1fm front=%s exec=%s",
		w.runID, seed, w.grid.W, w.grid.H, w.grid.CellSize, w.front.Name(), w.exec.Name())
}

func (w *World) resetFuel() {
	for i, id := range w.fuelIDs {
		m, ok := w.fuels.Lookup(id)
		if !ok {
			w.fuel.Cur[i], w.fuel.Next[i] = 0, 0
			w.moist.Cur[i], w.moist.Next[i] = 0, 0
			continue
		}
		w.fuel.Cur[i], w.fuel.Next[i] = m.Load, m.Load
		w.moist.Cur[i], w.moist.Next[i] = m.InitialMoisture, m.InitialMoisture
	}
}

func (w *World) setTerrain(t *Terrain) {
	w.terrain = t
	w.valleys = AnalyzeValleys(w.exec, t, w.cfg.Params.Effects)
}

// SetTerrain installs external terrain. It takes effect immediately and
// survives Reset.
func (w *World) SetTerrain(t *Terrain) error {
	if t == nil {
		return fmt.Errorf("set terrain: nil terrain: %w", ErrGridMismatch)
	}
	if t.Grid.W != w.grid.W || t.Grid.H != w.grid.H {
		return fmt.Errorf("set terrain %dx%d on %dx%d world: %w", t.Grid.W, t.Grid.H, w.grid.W, w.grid.H, ErrGridMismatch)
	}
	w.externalTerrain = true
	w.setTerrain(t)
	return nil
}

// SetWind installs an external wind field. It survives Reset.
func (w *World) SetWind(f *WindField) error {
	if f == nil || len(f.V) != w.grid.Len() {
		return fmt.Errorf("set wind: %w", ErrGridMismatch)
	}
	if f.Grid.W != w.grid.W || f.Grid.H != w.grid.H {
		return fmt.Errorf("set wind %dx%d on %dx%d world: %w", f.Grid.W, f.Grid.H, w.grid.W, w.grid.H, ErrGridMismatch)
	}
	w.externalWind = true
	w.wind = f
	return nil
}

// SetFuelIDs installs an external fuel map and reloads fuel and moisture.
func (w *World) SetFuelIDs(ids []uint8) error {
	if err := checkGrid(w.grid, len(ids), "fuel ids"); err != nil {
		return err
	}
	for i, id := range ids {
		if int(id) >= len(w.fuels) {
			return fmt.Errorf("cell %d fuel id %d: %w", i, id, ErrUnknownFuel)
		}
	}
	w.externalFuel = true
	w.fuelIDs = append(w.fuelIDs[:0:0], ids...)
	w.resetFuel()
	return nil
}

// SetUniformMoisture overrides moisture everywhere, e.g. for sweeps.
func (w *World) SetUniformMoisture(m float64) {
	m = math.Max(m, 0)
	for i := range w.moist.Cur {
		if w.fuel.Cur[i] > 0 {
			w.moist.Cur[i], w.moist.Next[i] = m, m
		}
	}
}

// Ignite seeds the fire at cell (x, y). φ becomes the signed distance to a
// half-cell disc around the seed wherever that is smaller than the current
// value.
func (w *World) Ignite(x, y int) error {
	if !w.grid.InBounds(x, y) {
		return fmt.Errorf("ignite (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	w.igniteCell(x, y)
	w.log.Infof("ignition at (%d,%d) tick=%d", x, y, w.tick)
	return nil
}

func (w *World) igniteCell(x, y int) {
	w.front.Ignite(w, x, y)
	for idx, v := range w.phi.Cur {
		if v < 0 && math.IsInf(w.arrival[idx], 1) {
			w.markArrival(idx, w.simTime)
		}
	}
}

// ApplyHeat raises temperature around (x, y) with a Gaussian profile of the
// given radius in cells, keeping the hotter of old and new values. Dry,
// fuelled cells that reach ignition temperature are ignited.
func (w *World) ApplyHeat(x, y int, tempK, radius float64) error {
	if !w.grid.InBounds(x, y) {
		return fmt.Errorf("apply heat (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	radius = math.Max(radius, 0.5)
	amb := w.cfg.Weather.AmbientTemperature
	reach := int(math.Ceil(3 * radius))
	g := w.grid
	ignited := 0
	for yy := max(0, y-reach); yy <= min(g.H-1, y+reach); yy++ {
		for xx := max(0, x-reach); xx <= min(g.W-1, x+reach); xx++ {
			d2 := float64((xx-x)*(xx-x) + (yy-y)*(yy-y))
			t := amb + (tempK-amb)*math.Exp(-d2/(2*radius*radius))
			idx := g.Index(xx, yy)
			if t > w.temp.Cur[idx] {
				w.temp.Cur[idx] = math.Min(t, maxTemperatureK)
			}
			m, ok := w.fuels.Lookup(w.fuelIDs[idx])
			if !ok || w.fuel.Cur[idx] < minFuelLoad || w.phi.Cur[idx] < 0 {
				continue
			}
			if w.temp.Cur[idx] >= w.cfg.Params.Ignition.Temperature && w.moist.Cur[idx] < m.MoistureExtinction {
				w.igniteCell(xx, yy)
				ignited++
			}
		}
	}
	w.log.Infof("heat %.0fK r=%.1f at (%d,%d) ignited %d cells", tempK, radius, x, y, ignited)
	return nil
}

// Step advances the simulation by one tick.
func (w *World) Step() {
	if err := w.StepErr(); err != nil {
		w.log.Errorf("tick %d: %v", w.tick, err)
	}
}

// Pass indices for timing diagnostics.
const (
	passSpread = iota
	passEvolve
	passIgnition
	passHeat
	passCombustion
	passCrown
	passReinit
	passReduce
	passCount
)

var passNames = [passCount]string{"spread", "evolve", "ignition", "heat", "combustion", "crown", "reinit", "reduce"}

// StepErr runs every pass in order. A tick that returns an error has still
// advanced the fields up to the failing pass but not the tick counter.
func (w *World) StepErr() error {
	dt := w.cfg.Dt
	p := w.cfg.Params
	timed := func(pass int, fn func()) {
		start := time.Now()
		fn()
		w.timings[pass] = time.Since(start)
	}

	timed(passSpread, func() { w.front.Spread(w) })
	timed(passEvolve, func() { w.front.Evolve(w) })
	timed(passIgnition, func() { w.front.Sync(w) })
	timed(passHeat, func() {
		HeatPass(w.exec, w.grid, HeatInputs{
			Temperature: w.temp.Cur,
			Moisture:    w.moist.Cur,
			Fuel:        w.fuel.Cur,
			Phi:         w.phi.Cur,
			HeatSource:  w.heat.Cur,
			FuelIDs:     w.fuelIDs,
			Fuels:       w.fuels,
			Wind:        w.wind,
			Ambient:     w.cfg.Weather.AmbientTemperature,
		}, p.Heat, dt, w.temp.Next, w.moist.Next)
		w.temp.Swap()
		w.moist.Swap()
	})
	timed(passCombustion, func() {
		CombustionPass(w.exec, w.grid, CombustionInputs{
			Phi:         w.phi.Cur,
			Temperature: w.temp.Cur,
			Moisture:    w.moist.Cur,
			Fuel:        w.fuel.Cur,
			Oxygen:      w.o2.Cur,
			FuelIDs:     w.fuelIDs,
			Fuels:       w.fuels,
			Weather:     w.cfg.Weather,
		}, p, dt, CombustionOutputs{
			Moisture:   w.moist.Next,
			Fuel:       w.fuel.Next,
			Oxygen:     w.o2.Next,
			HeatSource: w.heat.Next,
		})
		w.moist.Swap()
		w.fuel.Swap()
		w.o2.Swap()
		w.heat.Swap()
	})
	timed(passCrown, func() {
		CrownPass(w.exec, w.grid, CrownInputs{
			Phi:      w.phi.Cur,
			Rate:     w.modRate,
			Fuel:     w.fuel.Cur,
			Moisture: w.moist.Cur,
			FuelIDs:  w.fuelIDs,
			Fuels:    w.fuels,
			Wind:     w.wind,
			Ambient:  w.cfg.Weather.AmbientTemperature,
		}, w.cfg.Canopy, CrownOutputs{
			Rate:      w.effRate,
			Intensity: w.intensity,
			State:     w.crown,
			Regime:    w.regime,
		})
	})
	w.timings[passReinit] = 0
	if w.cfg.ReinitInterval > 0 && (w.tick+1)%w.cfg.ReinitInterval == 0 {
		timed(passReinit, func() { w.front.Reinit(w) })
	}

	end := w.simTime + dt
	w.updateArrival(end)

	var reduceErr error
	timed(passReduce, func() {
		w.acc.Clear()
		reduceErr = w.acc.Accumulate(w.exec, w.grid, w.phi.Cur, w.intensity)
	})
	if reduceErr != nil {
		return fmt.Errorf("reduce: %w", reduceErr)
	}
	w.last = w.acc.Snapshot(w.grid.CellSize)

	w.tick++
	w.simTime = end
	w.refreshDisplay()

	if w.log.DebugEnabled() {
		w.log.Debugf("tick=%d burning=%d total=%.1fkW/m max=%.1fkW/m %s",
			w.tick, w.last.BurningCells, w.last.TotalIntensity, w.last.MaxIntensity, w.timingSummary())
	}
	return nil
}

// updateArrival stamps cells the front reached this tick.
func (w *World) updateArrival(t float64) {
	phi := w.phi.Cur
	w.exec.For(w.grid.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if phi[i] < 0 && math.IsInf(w.arrival[i], 1) {
				w.markArrival(i, t)
			}
		}
	})
}

// markArrival records the arrival time of cell i and delivers the energy
// that would raise its fuel to full burning temperature. The energy goes
// through AbsorbHeat, so a wet cell spends it on evaporation first.
func (w *World) markArrival(i int, t float64) {
	w.arrival[i] = t
	cp := w.cfg.Params.Combustion
	flame := math.Min(cp.IgnitionTemperature+cp.TemperatureSaturation, maxTemperatureK)
	load := w.fuel.Cur[i]
	if load <= minFuelLoad || w.temp.Cur[i] >= flame {
		return
	}
	m, ok := w.fuels.Lookup(w.fuelIDs[i])
	if !ok {
		return
	}
	mass := load * w.grid.CellArea()
	heatCap := m.SpecificHeat * 1000
	q := mass * heatCap * (flame - w.temp.Cur[i])
	w.moist.Cur[i], w.temp.Cur[i] = AbsorbHeat(q, mass, w.moist.Cur[i], w.temp.Cur[i], heatCap)
}

func (w *World) timingSummary() string {
	s := ""
	for i, d := range w.timings {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%s", passNames[i], d.Round(time.Microsecond))
	}
	return s
}

func (w *World) spreadInputs() SpreadInputs {
	return SpreadInputs{
		Phi:      w.phi.Cur,
		FuelIDs:  w.fuelIDs,
		Fuel:     w.fuel.Cur,
		Moisture: w.moist.Cur,
		Fuels:    w.fuels,
		Terrain:  w.terrain,
		Wind:     w.wind,
	}
}

func (w *World) ignitionInputs() IgnitionInputs {
	return IgnitionInputs{
		Phi:         w.phi.Cur,
		Temperature: w.temp.Cur,
		Moisture:    w.moist.Cur,
		FuelIDs:     w.fuelIDs,
		Fuel:        w.fuel.Cur,
		Fuels:       w.fuels,
	}
}

func (w *World) behaviourInputs(rate []float64) BehaviourInputs {
	return BehaviourInputs{
		Rate:     rate,
		Crown:    w.crown,
		Regime:   w.regime,
		Moisture: w.moist.Cur,
		Wind:     w.wind,
	}
}

func (w *World) effectsInputs() EffectsInputs {
	return EffectsInputs{
		Terrain:     w.terrain,
		Valleys:     w.valleys,
		Wind:        w.wind,
		Temperature: w.temp.Cur,
		Ambient:     w.cfg.Weather.AmbientTemperature,
	}
}

// Tick returns the number of completed ticks.
func (w *World) Tick() int { return w.tick }

// Time returns the simulated time in seconds.
func (w *World) Time() float64 { return w.simTime }

// Phi exposes the level set. φ < 0 is burning or burned.
func (w *World) Phi() []float64 { return w.phi.Cur }

// SpreadRate exposes the modulated spread rate of the last tick.
func (w *World) SpreadRate() []float64 { return w.modRate }

// EffectiveRate exposes the crown-revised spread rate of the last tick.
func (w *World) EffectiveRate() []float64 { return w.effRate }

// EvolveRate exposes the rate the front advanced with in the last tick.
func (w *World) EvolveRate() []float64 { return w.evolveRate }

// Temperature exposes the temperature field in K.
func (w *World) Temperature() []float64 { return w.temp.Cur }

// FuelLoad exposes the remaining fuel load in kg/m².
func (w *World) FuelLoad() []float64 { return w.fuel.Cur }

// Moisture exposes the fuel moisture fraction.
func (w *World) Moisture() []float64 { return w.moist.Cur }

// Oxygen exposes the oxygen fraction of atmospheric.
func (w *World) Oxygen() []float64 { return w.o2.Cur }

// Intensity exposes the fireline intensity in kW/m.
func (w *World) Intensity() []float64 { return w.intensity }

// CrownStates exposes the crown classification of the last tick.
func (w *World) CrownStates() []CrownState { return w.crown }

// Regimes exposes the fire regime classification of the last tick.
func (w *World) Regimes() []FireRegime { return w.regime }

// ArrivalTime exposes the time each cell first burned, +Inf if never.
func (w *World) ArrivalTime() []float64 { return w.arrival }

// FuelIDs exposes the per-cell fuel model ids.
func (w *World) FuelIDs() []uint8 { return w.fuelIDs }

// Terrain returns the active terrain.
func (w *World) Terrain() *Terrain { return w.terrain }

// Reduction returns the aggregates of the last tick.
func (w *World) Reduction() Reduction { return w.last }
