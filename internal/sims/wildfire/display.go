package wildfire

import (
	"image/color"
	"math"

	"github.com/crazy3lf/colorconv"
)

const (
	displayFuelBase    = 0  // + fuel id, unburned
	displayFlameBase   = 8  // + temperature bucket, burning
	displayFlameLevels = 32 // buckets between ignition and max temperature
	displayBurned      = displayFlameBase + displayFlameLevels
	displayPassive     = displayBurned + 1
	displayActive      = displayBurned + 2
	displayLevels      = displayActive + 1
)

var wildfirePalette = buildWildfirePalette()

// Palette exposes the color palette used for rendering the fire front.
func (w *World) Palette() []color.RGBA {
	return wildfirePalette
}

func buildWildfirePalette() []color.RGBA {
	palette := make([]color.RGBA, displayLevels)
	fuelColors := []color.RGBA{
		FuelNone:           {R: 120, G: 116, B: 110, A: 255},
		FuelShortGrass:     {R: 196, G: 190, B: 96, A: 255},
		FuelTimberGrass:    {R: 150, G: 160, B: 70, A: 255},
		FuelTallGrass:      {R: 170, G: 150, B: 60, A: 255},
		FuelChaparral:      {R: 90, G: 110, B: 50, A: 255},
		FuelBrush:          {R: 110, G: 130, B: 60, A: 255},
		FuelTimberLitter:   {R: 50, G: 90, B: 45, A: 255},
		FuelHardwoodLitter: {R: 70, G: 100, B: 40, A: 255},
	}
	copy(palette[displayFuelBase:], fuelColors)

	// Flames run from deep red at ignition to pale yellow at the hottest.
	for i := 0; i < displayFlameLevels; i++ {
		f := float64(i) / float64(displayFlameLevels-1)
		r, g, b, err := colorconv.HSVToRGB(5+50*f, 1-0.6*f, 0.65+0.35*f)
		if err != nil {
			r, g, b = 255, 80, 0
		}
		palette[displayFlameBase+i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	palette[displayBurned] = color.RGBA{R: 40, G: 36, B: 34, A: 255}
	palette[displayPassive] = color.RGBA{R: 255, G: 60, B: 150, A: 255}
	palette[displayActive] = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	return palette
}

func encodeDisplayValue(fuelID uint8, phi, temp, fuel, ignition float64, crown CrownState) uint8 {
	if phi >= 0 {
		if int(fuelID) >= displayFlameBase {
			return displayFuelBase
		}
		return displayFuelBase + fuelID
	}
	switch crown {
	case CrownActive:
		return displayActive
	case CrownPassive:
		return displayPassive
	}
	if fuel < minFuelLoad || temp < ignition {
		return displayBurned
	}
	f := (temp - ignition) / math.Max(maxTemperatureK-ignition, 1)
	level := int(math.Min(f, 1) * float64(displayFlameLevels-1))
	return uint8(displayFlameBase + level)
}

func (w *World) refreshDisplay() {
	cells := w.display.Cells()
	ig := w.cfg.Params.Ignition.Temperature
	for i := range cells {
		cells[i] = encodeDisplayValue(w.fuelIDs[i], w.phi.Cur[i], w.temp.Cur[i], w.fuel.Cur[i], ig, w.crown[i])
	}
}

// Cells returns the palette-indexed display buffer.
func (w *World) Cells() []uint8 { return w.display.Cells() }
