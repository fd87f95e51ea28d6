//go:build ebiten

package app

import (
	"image/color"
	"time"

	"firefront/internal/core"
	"firefront/internal/render"
	"firefront/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type paletteProvider interface {
	Palette() []color.RGBA
}

type igniter interface {
	Ignite(x, y int) error
}

type heater interface {
	ApplyHeat(x, y int, tempK, radius float64) error
}

// Heat torch applied with the right mouse button.
const (
	torchTemperature = 1200.0 // K
	torchRadius      = 2.0    // cells
)

// Game adapts a simulation to the ebiten.Game interface. The simulation
// advances at its own tick rate, independent of the frame rate.
type Game struct {
	sim     core.Sim
	log     core.Logger
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	palette []color.RGBA
	clock   *core.FixedStep

	scale    int
	hudWidth int
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, cfg *Config, log core.Logger) *Game {
	if log == nil {
		log = core.NopLogger()
	}
	size := sim.Size()
	scale := max(cfg.Scale, 1)
	g := &Game{
		sim:      sim,
		log:      log,
		painter:  render.NewGridPainter(size.W, size.H),
		overlay:  ui.NewOverlay(sim, scale),
		hud:      ui.NewHUD(sim, cfg.HUDWidth),
		clock:    core.NewFixedStep(cfg.TPS),
		scale:    scale,
		hudWidth: max(cfg.HUDWidth, 0),
		seed:     cfg.Seed,
	}
	if p, ok := sim.(paletteProvider); ok {
		g.palette = p.Palette()
	} else {
		g.palette = []color.RGBA{{A: 255}, {R: 255, G: 255, B: 255, A: 255}}
	}
	return g
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.overlay.Invalidate()
	g.tickOnce = false
}

// Update handles input and advances the simulation by the ticks due.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.clock.SetTPS(g.clock.TPS() * 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.clock.SetTPS(max(g.clock.TPS()/2, 1))
	}
	g.handleMouse()
	g.overlay.Update()
	g.hud.Update(g.mapWidth())

	due := g.clock.Due()
	if g.paused {
		due = 0
	}
	if g.tickOnce {
		due, g.tickOnce = 1, false
	}
	for i := 0; i < due; i++ {
		g.sim.Step()
	}
	return nil
}

func (g *Game) handleMouse() {
	left := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	right := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	if !left && !right {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx >= g.mapWidth() {
		return
	}
	x, y := mx/g.scale, my/g.scale
	switch {
	case left:
		if s, ok := g.sim.(igniter); ok {
			if err := s.Ignite(x, y); err != nil {
				g.log.Warnf("ignite: %v", err)
			}
		}
	case right:
		if s, ok := g.sim.(heater); ok {
			if err := s.ApplyHeat(x, y, torchTemperature, torchRadius); err != nil {
				g.log.Warnf("heat: %v", err)
			}
		}
	}
}

// Draw renders the fuel map, overlays and HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.BlitPalette(screen, g.sim.Cells(), g.palette, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.mapWidth(), g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return g.mapWidth() + g.hudWidth, s.H * g.scale
}

func (g *Game) mapWidth() int { return g.sim.Size().W * g.scale }
