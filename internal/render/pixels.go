// Package render converts simulation fields into RGBA pixel buffers.
package render

import (
	"image/color"
	"math"
)

// FillPalette converts cell values into RGBA pixels using a palette. Values
// past the end of the palette use its last entry. When the palette is empty
// the buffer is cleared to transparent black.
func FillPalette(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}
	last := len(palette) - 1
	for i, c := range cells {
		idx := min(int(c), last)
		col := palette[idx]
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// FillRamp maps values in [lo, hi] through ramp. Non-finite values and
// values below lo are left transparent.
func FillRamp(buf []byte, values []float64, lo, hi float64, ramp func(t float64) color.RGBA) {
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	for i, v := range values {
		base := i * 4
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lo {
			buf[base+0], buf[base+1], buf[base+2], buf[base+3] = 0, 0, 0, 0
			continue
		}
		col := ramp(clamp01((v - lo) / span))
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// FillElevation shades an elevation field with a hypsometric ramp whose
// alpha grows with the steepest neighbour difference.
func FillElevation(buf []byte, field []float64, w, h int) {
	if len(field) != w*h || len(field) == 0 {
		return
	}
	lo, hi := field[0], field[0]
	for _, v := range field {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			col := ElevationColor((field[idx] - lo) / span)
			steepest := 0.0
			if x > 0 {
				steepest = math.Max(steepest, math.Abs(field[idx]-field[idx-1]))
			}
			if x+1 < w {
				steepest = math.Max(steepest, math.Abs(field[idx]-field[idx+1]))
			}
			if y > 0 {
				steepest = math.Max(steepest, math.Abs(field[idx]-field[idx-w]))
			}
			if y+1 < h {
				steepest = math.Max(steepest, math.Abs(field[idx]-field[idx+w]))
			}
			alpha := float64(col.A)
			if hi > lo {
				alpha *= 0.55 + 0.45*clamp01(steepest/span*8)
			}
			base := idx * 4
			buf[base+0] = col.R
			buf[base+1] = col.G
			buf[base+2] = col.B
			buf[base+3] = uint8(math.Round(clamp(alpha, 0, 255)))
		}
	}
}

// FillIsochrones draws arrival-time contour lines every interval seconds:
// a cell is on a line when its band differs from its right or lower
// neighbour. Cells not yet reached are transparent.
func FillIsochrones(buf []byte, arrival []float64, w, h int, interval float64, line color.RGBA) {
	if len(arrival) != w*h {
		return
	}
	clear(buf[:4*len(arrival)])
	if interval <= 0 {
		return
	}
	band := func(t float64) int64 {
		if math.IsInf(t, 1) || math.IsNaN(t) {
			return -1
		}
		return int64(math.Floor(t / interval))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			b := band(arrival[idx])
			if b < 0 {
				continue
			}
			edge := false
			if x+1 < w && band(arrival[idx+1]) != b {
				edge = true
			}
			if y+1 < h && band(arrival[idx+w]) != b {
				edge = true
			}
			if !edge {
				continue
			}
			base := idx * 4
			buf[base+0] = line.R
			buf[base+1] = line.G
			buf[base+2] = line.B
			buf[base+3] = line.A
		}
	}
}

// HeatColor runs from transparent dark red through orange to pale yellow.
func HeatColor(t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: uint8(math.Round(120 + 135*math.Sqrt(t))),
		G: uint8(math.Round(230 * t * t)),
		B: uint8(math.Round(160 * t * t * t)),
		A: uint8(math.Round(40 + 180*t)),
	}
}

// ElevationColor is a blue-green-tan-white hypsometric ramp.
func ElevationColor(t float64) color.RGBA {
	stops := []struct {
		t   float64
		col color.RGBA
	}{
		{0.0, color.RGBA{R: 40, G: 60, B: 120, A: 150}},
		{0.25, color.RGBA{R: 70, G: 105, B: 160, A: 165}},
		{0.5, color.RGBA{R: 90, G: 150, B: 100, A: 185}},
		{0.75, color.RGBA{R: 190, G: 160, B: 80, A: 205}},
		{1.0, color.RGBA{R: 240, G: 235, B: 215, A: 215}},
	}
	t = clamp01(t)
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].t {
			prev := stops[i-1]
			return Lerp(prev.col, stops[i].col, (t-prev.t)/(stops[i].t-prev.t))
		}
	}
	return stops[len(stops)-1].col
}

// Lerp interpolates two colors component-wise.
func Lerp(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
