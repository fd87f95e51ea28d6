//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"firefront/internal/core"
	"firefront/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type windFieldProvider interface {
	WindVectorAt(x, y float64) (float64, float64)
}

type elevationFieldProvider interface {
	ElevationField() []float64
}

type arrivalProvider interface {
	ArrivalTime() []float64
}

type temperatureProvider interface {
	Temperature() []float64
}

// Isochrone spacing and heat-map range.
const (
	isochroneInterval = 60.0 // s
	heatFloor         = 320.0
	heatCeiling       = 1400.0
)

// Overlay draws optional layers on top of the fuel map. Keys 1-4 toggle
// wind arrows, elevation shading, arrival isochrones and temperature.
type Overlay struct {
	sim   core.Sim
	scale int

	showWind  bool
	showElev  bool
	showIso   bool
	showHeat  bool
	elevDirty bool

	elev  *render.GridPainter
	iso   *render.GridPainter
	heat  *render.GridPainter
	pixel *ebiten.Image

	windSamples    []windSample
	windCacheW     int
	windCacheH     int
	windCacheScale int
	windPixelSpan  float64
}

type windSample struct {
	cx, cy float64
	sx, sy float64
}

// NewOverlay constructs an overlay with isochrones enabled.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	size := sim.Size()
	o := &Overlay{
		sim:       sim,
		scale:     max(scale, 1),
		showIso:   true,
		elevDirty: true,
		elev:      render.NewGridPainter(size.W, size.H),
		iso:       render.NewGridPainter(size.W, size.H),
		heat:      render.NewGridPainter(size.W, size.H),
	}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Invalidate marks static layers for rebuild after a reset.
func (o *Overlay) Invalidate() { o.elevDirty = true }

// Update toggles layers from the keyboard.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showWind = !o.showWind
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showElev = !o.showElev
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showIso = !o.showIso
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit4) {
		o.showHeat = !o.showHeat
	}
}

// Draw renders the enabled layers onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	if o.showElev {
		if p, ok := o.sim.(elevationFieldProvider); ok {
			if o.elevDirty {
				render.FillElevation(o.elev.Buffer(), p.ElevationField(), size.W, size.H)
				o.elevDirty = false
			}
			o.elev.Blit(screen, o.scale)
		}
	}
	if o.showHeat {
		if p, ok := o.sim.(temperatureProvider); ok {
			render.FillRamp(o.heat.Buffer(), p.Temperature(), heatFloor, heatCeiling, render.HeatColor)
			o.heat.Blit(screen, o.scale)
		}
	}
	if o.showIso {
		if p, ok := o.sim.(arrivalProvider); ok {
			render.FillIsochrones(o.iso.Buffer(), p.ArrivalTime(), size.W, size.H, isochroneInterval,
				color.RGBA{R: 250, G: 240, B: 200, A: 170})
			o.iso.Blit(screen, o.scale)
		}
	}
	if o.showWind {
		if p, ok := o.sim.(windFieldProvider); ok {
			o.drawWindField(screen, p, size)
		}
	}
}

func (o *Overlay) drawWindField(screen *ebiten.Image, provider windFieldProvider, size core.Size) {
	if !o.ensureWindSamples(size) {
		return
	}
	const (
		calmThreshold    = 0.2 // m/s
		maxSpeedEstimate = 15.0
		headAngle        = math.Pi / 6
	)
	scale := float64(o.scale)
	minLength := o.windPixelSpan * 0.35
	maxLength := o.windPixelSpan * 0.7
	calmDot := math.Max(o.windPixelSpan*0.18, scale*0.75)

	for _, s := range o.windSamples {
		vx, vy := provider.WindVectorAt(s.cx, s.cy)
		speed := math.Hypot(vx, vy)
		if speed < calmThreshold {
			o.drawPoint(screen, s.sx, s.sy, calmDot, color.RGBA{R: 90, G: 130, B: 170, A: 120})
			continue
		}
		nx, ny := vx/speed, vy/speed
		norm := math.Min(speed/maxSpeedEstimate, 1)
		length := minLength + (maxLength-minLength)*math.Sqrt(norm)
		headLength := math.Min(length*0.3, scale*4.5)
		tail := length * 0.4
		tipX, tipY := s.sx+nx*(length-tail), s.sy+ny*(length-tail)
		thickness := math.Max(1, scale*(0.65+0.4*norm))
		col := render.Lerp(color.RGBA{R: 80, G: 170, B: 230, A: 150}, color.RGBA{R: 150, G: 240, B: 250, A: 240}, norm)

		o.drawLine(screen, s.sx-nx*tail, s.sy-ny*tail, tipX-nx*headLength, tipY-ny*headLength, thickness, col)
		angle := math.Atan2(ny, nx)
		o.drawLine(screen, tipX, tipY, tipX-math.Cos(angle+headAngle)*headLength, tipY-math.Sin(angle+headAngle)*headLength, thickness*0.85, col)
		o.drawLine(screen, tipX, tipY, tipX-math.Cos(angle-headAngle)*headLength, tipY-math.Sin(angle-headAngle)*headLength, thickness*0.85, col)
	}
}

// ensureWindSamples lays out roughly 360 arrow anchors, cached per size.
func (o *Overlay) ensureWindSamples(size core.Size) bool {
	if o.windCacheW == size.W && o.windCacheH == size.H && o.windCacheScale == o.scale && len(o.windSamples) > 0 {
		return true
	}
	spacing := int(math.Sqrt(float64(size.W*size.H) / 360))
	spacing = min(max(spacing, 6), 20)
	countX := (size.W + spacing - 1) / spacing
	countY := (size.H + spacing - 1) / spacing
	startX := max((size.W-1-(countX-1)*spacing)/2, 0)
	startY := max((size.H-1-(countY-1)*spacing)/2, 0)

	o.windSamples = o.windSamples[:0]
	for yi := 0; yi < countY; yi++ {
		cy := float64(min(startY+yi*spacing, size.H-1)) + 0.5
		for xi := 0; xi < countX; xi++ {
			cx := float64(min(startX+xi*spacing, size.W-1)) + 0.5
			o.windSamples = append(o.windSamples, windSample{
				cx: cx, cy: cy,
				sx: cx * float64(o.scale), sy: cy * float64(o.scale),
			})
		}
	}
	o.windCacheW, o.windCacheH, o.windCacheScale = size.W, size.H, o.scale
	o.windPixelSpan = float64(spacing * o.scale)
	return len(o.windSamples) > 0
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 || thickness <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
