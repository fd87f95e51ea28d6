package wildfire

import (
	"fmt"
	"math"
)

// WindVectorAt returns the wind at a point in cell units, nearest cell.
// Components follow the grid axes.
func (w *World) WindVectorAt(x, y float64) (float64, float64) {
	g := w.grid
	cx := min(max(int(math.Floor(x)), 0), g.W-1)
	cy := min(max(int(math.Floor(y)), 0), g.H-1)
	v := w.wind.V[g.Index(cx, cy)]
	return v.X(), v.Y()
}

// ElevationField returns the terrain elevation in metres.
func (w *World) ElevationField() []float64 { return w.terrain.Elevation }

// StatusLines summarizes the last tick for the viewer.
func (w *World) StatusLines() []string {
	m := w.Metrics()
	lines := []string{
		fmt.Sprintf("t=%.0fs tick %d (%s)", m.Time, m.Tick, m.Front),
		fmt.Sprintf("burning %d  burned %.2f ha", m.BurningCells, m.BurnedArea/1e4),
		fmt.Sprintf("I %.0f kW/m  peak %.0f", m.TotalIntensity, m.MaxIntensity),
		fmt.Sprintf("crown passive %d active %d", m.PassiveCrown, m.ActiveCrown),
		fmt.Sprintf("wind %.1f m/s @ %.0f°", m.Weather.WindSpeed, m.Weather.WindHeading),
	}
	if m.BurningCells > 0 {
		lines = append(lines, fmt.Sprintf("centroid %.0f, %.0f m", m.CentroidX, m.CentroidY))
	}
	return lines
}
