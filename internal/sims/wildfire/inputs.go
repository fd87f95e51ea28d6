package wildfire

import (
	"errors"
	"fmt"
	"math"

	"firefront/internal/core"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrGridMismatch reports an input whose length does not match the grid.
	ErrGridMismatch = errors.New("wildfire: input size does not match grid")
	// ErrInvalidCellSize reports a non-positive or non-finite cell size.
	ErrInvalidCellSize = errors.New("wildfire: cell size must be positive")
	// ErrUnknownFuel reports a fuel id missing from the fuel table.
	ErrUnknownFuel = errors.New("wildfire: unknown fuel id")
	// ErrOutOfBounds reports coordinates outside the grid.
	ErrOutOfBounds = errors.New("wildfire: coordinates out of bounds")
)

// Angles follow compass convention on the grid: an angle θ in degrees points
// along the vector (sin θ, cos θ) in (x, y) cell coordinates.

// headingVec converts a compass angle to a unit vector.
func headingVec(deg float64) mgl64.Vec2 {
	r := mgl64.DegToRad(deg)
	return mgl64.Vec2{math.Sin(r), math.Cos(r)}
}

// vecHeading converts a vector to a compass angle in [0, 360).
func vecHeading(v mgl64.Vec2) float64 {
	return normalizeDeg(mgl64.RadToDeg(math.Atan2(v.X(), v.Y())))
}

func normalizeDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// angleDiff returns the absolute angular difference in [0, 180].
func angleDiff(a, b float64) float64 {
	d := math.Abs(normalizeDeg(a) - normalizeDeg(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Terrain carries elevation and the derived slope and aspect grids.
type Terrain struct {
	Grid      core.Grid
	Elevation []float64 // m
	Slope     []float64 // degrees
	Aspect    []float64 // degrees, direction the slope faces (downhill)

	tanSlope []float64
	upslope  []mgl64.Vec2
}

// NewTerrain derives slope and aspect from elevation using central
// differences, one-sided at the edges.
func NewTerrain(grid core.Grid, elevation []float64) (*Terrain, error) {
	if err := checkGrid(grid, len(elevation), "elevation"); err != nil {
		return nil, err
	}
	n := grid.Len()
	slope := make([]float64, n)
	aspect := make([]float64, n)
	for y := 0; y < grid.H; y++ {
		for x := 0; x < grid.W; x++ {
			dzdx, dzdy := elevationGradient(grid, elevation, x, y)
			idx := grid.Index(x, y)
			slope[idx] = mgl64.RadToDeg(math.Atan(math.Hypot(dzdx, dzdy)))
			if dzdx == 0 && dzdy == 0 {
				aspect[idx] = 0
				continue
			}
			aspect[idx] = vecHeading(mgl64.Vec2{-dzdx, -dzdy})
		}
	}
	return NewTerrainWithSlope(grid, elevation, slope, aspect)
}

// NewTerrainWithSlope accepts externally derived slope and aspect grids.
func NewTerrainWithSlope(grid core.Grid, elevation, slope, aspect []float64) (*Terrain, error) {
	if grid.CellSize <= 0 || math.IsNaN(grid.CellSize) || math.IsInf(grid.CellSize, 0) {
		return nil, ErrInvalidCellSize
	}
	for name, s := range map[string][]float64{"elevation": elevation, "slope": slope, "aspect": aspect} {
		if err := checkGrid(grid, len(s), name); err != nil {
			return nil, err
		}
	}
	t := &Terrain{
		Grid:      grid,
		Elevation: elevation,
		Slope:     slope,
		Aspect:    aspect,
		tanSlope:  make([]float64, grid.Len()),
		upslope:   make([]mgl64.Vec2, grid.Len()),
	}
	for i := range slope {
		t.tanSlope[i] = math.Tan(mgl64.DegToRad(math.Min(math.Max(slope[i], 0), 89)))
		if slope[i] > 0 {
			t.upslope[i] = headingVec(aspect[i] + 180)
		}
	}
	return t, nil
}

// FlatTerrain returns a terrain at constant elevation.
func FlatTerrain(grid core.Grid, elevation float64) *Terrain {
	n := grid.Len()
	elev := make([]float64, n)
	for i := range elev {
		elev[i] = elevation
	}
	t, err := NewTerrainWithSlope(grid, elev, make([]float64, n), make([]float64, n))
	if err != nil {
		// Only reachable with an invalid cell size; fall back to 1 m cells.
		grid.CellSize = 1
		t, _ = NewTerrainWithSlope(grid, elev, make([]float64, n), make([]float64, n))
	}
	return t
}

// TanSlope returns tan(slope) at idx.
func (t *Terrain) TanSlope(idx int) float64 { return t.tanSlope[idx] }

// Upslope returns the unit upslope direction at idx, zero on flat cells.
func (t *Terrain) Upslope(idx int) mgl64.Vec2 { return t.upslope[idx] }

// ElevationAt samples elevation bilinearly at a position in metres, clamped
// to the grid.
func (t *Terrain) ElevationAt(px, py float64) float64 {
	g := t.Grid
	fx := px/g.CellSize - 0.5
	fy := py/g.CellSize - 0.5
	fx = math.Min(math.Max(fx, 0), float64(g.W-1))
	fy = math.Min(math.Max(fy, 0), float64(g.H-1))
	x0, y0 := int(fx), int(fy)
	x1, y1 := min(x0+1, g.W-1), min(y0+1, g.H-1)
	tx, ty := fx-float64(x0), fy-float64(y0)
	e00 := t.Elevation[g.Index(x0, y0)]
	e10 := t.Elevation[g.Index(x1, y0)]
	e01 := t.Elevation[g.Index(x0, y1)]
	e11 := t.Elevation[g.Index(x1, y1)]
	top := e00 + (e10-e00)*tx
	bottom := e01 + (e11-e01)*tx
	return top + (bottom-top)*ty
}

func elevationGradient(g core.Grid, z []float64, x, y int) (float64, float64) {
	xl, xr := max(x-1, 0), min(x+1, g.W-1)
	yl, yr := max(y-1, 0), min(y+1, g.H-1)
	var dzdx, dzdy float64
	if xr > xl {
		dzdx = (z[g.Index(xr, y)] - z[g.Index(xl, y)]) / (float64(xr-xl) * g.CellSize)
	}
	if yr > yl {
		dzdy = (z[g.Index(x, yr)] - z[g.Index(x, yl)]) / (float64(yr-yl) * g.CellSize)
	}
	return dzdx, dzdy
}

// WindField stores the surface wind vector per cell in m/s.
type WindField struct {
	Grid core.Grid
	V    []mgl64.Vec2
}

// NewWindField wraps per-cell wind vectors.
func NewWindField(grid core.Grid, v []mgl64.Vec2) (*WindField, error) {
	if err := checkGrid(grid, len(v), "wind"); err != nil {
		return nil, err
	}
	return &WindField{Grid: grid, V: v}, nil
}

// UniformWind returns a field blowing toward heading deg at speed m/s.
func UniformWind(grid core.Grid, speed, deg float64) *WindField {
	v := make([]mgl64.Vec2, grid.Len())
	w := headingVec(deg).Mul(speed)
	for i := range v {
		v[i] = w
	}
	return &WindField{Grid: grid, V: v}
}

// Speed returns the wind speed at idx.
func (w *WindField) Speed(idx int) float64 { return w.V[idx].Len() }

// Heading returns the direction the wind blows toward at idx.
func (w *WindField) Heading(idx int) float64 { return vecHeading(w.V[idx]) }

// Vorticity returns ∂v/∂x − ∂u/∂y at an interior cell using central
// differences. Boundary cells report zero.
func (w *WindField) Vorticity(x, y int) float64 {
	g := w.Grid
	if g.Boundary(x, y) || g.CellSize <= 0 {
		return 0
	}
	dvdx := (w.V[g.Index(x+1, y)].Y() - w.V[g.Index(x-1, y)].Y()) / (2 * g.CellSize)
	dudy := (w.V[g.Index(x, y+1)].X() - w.V[g.Index(x, y-1)].X()) / (2 * g.CellSize)
	return dvdx - dudy
}

// Weather holds the ambient conditions for the tick.
type Weather struct {
	AmbientTemperature float64 `json:"ambient_temperature_k"`
	RelativeHumidity   float64 `json:"relative_humidity"`
	WindSpeed          float64 `json:"wind_speed"`
	WindHeading        float64 `json:"wind_heading"`
}

// DefaultWeather returns a warm, dry afternoon with a moderate breeze.
func DefaultWeather() Weather {
	return Weather{
		AmbientTemperature: 303.15,
		RelativeHumidity:   0.25,
		WindSpeed:          4,
		WindHeading:        45,
	}
}

func checkGrid(grid core.Grid, n int, name string) error {
	if n != grid.Len() {
		return fmt.Errorf("%s has %d cells, grid %dx%d needs %d: %w", name, n, grid.W, grid.H, grid.Len(), ErrGridMismatch)
	}
	return nil
}
