package wildfire

import (
	"strconv"

	"firefront/internal/core"
)

func (w *World) Parameters() core.ParameterSnapshot {
	cfg := w.cfg
	p := cfg.Params
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", cfg.Width, "cells"),
				intParam("h", "Height", cfg.Height, "cells"),
				floatParam("cell_size", "Cell size", cfg.CellSize, "m"),
				floatParam("dt", "Time step", cfg.Dt, "s"),
				int64Param("seed", "Seed", cfg.Seed),
				boolParam("deterministic", "Deterministic front", cfg.Deterministic),
				intParam("reinit_interval", "Reinit interval", cfg.ReinitInterval, "ticks"),
				intParam("reinit_iterations", "Reinit iterations", cfg.ReinitIterations, ""),
			},
		},
		{
			Name: "Weather",
			Params: []core.Parameter{
				floatParam("ambient_temp", "Ambient temperature", cfg.Weather.AmbientTemperature, "K"),
				floatParam("humidity", "Relative humidity", cfg.Weather.RelativeHumidity, ""),
				floatParam("wind_speed", "Wind speed", cfg.Weather.WindSpeed, "m/s"),
				floatParam("wind_heading", "Wind heading", cfg.Weather.WindHeading, "deg"),
			},
		},
		{
			Name: "Spread",
			Params: []core.Parameter{
				floatParam("curvature_coeff", "Curvature coefficient", p.Spread.CurvatureCoeff, ""),
				floatParam("vorticity_threshold", "Vorticity threshold", p.Spread.VorticityThreshold, "1/s"),
				floatParam("backing_floor", "Backing floor", p.Spread.BackingFloor, ""),
				floatParam("noise_amplitude", "Front noise", p.LevelSet.NoiseAmplitude, ""),
				floatParam("regime_variation", "Regime rate variation", p.LevelSet.RegimeVariation, ""),
			},
		},
		{
			Name: "Combustion",
			Params: []core.Parameter{
				floatParam("ignition_temp", "Ignition temperature", p.Ignition.Temperature, "K"),
				floatParam("burn_coeff", "Burn coefficient", p.Combustion.BurnCoefficient, "1/s"),
				floatParam("evaporation_rate", "Evaporation rate", p.Combustion.EvaporationRate, "1/s"),
			},
		},
		{
			Name: "Canopy",
			Params: []core.Parameter{
				floatParam("canopy_base_height", "Canopy base height", cfg.Canopy.BaseHeight, "m"),
				floatParam("canopy_bulk_density", "Canopy bulk density", cfg.Canopy.BulkDensity, "kg/m3"),
				floatParam("foliar_moisture", "Foliar moisture", cfg.Canopy.FoliarMoisture, "%"),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the values adjustable while running.
func (w *World) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "wind_speed", Label: "Wind speed", Type: core.ParamTypeFloat, Step: 0.5, Min: 0, Max: 40},
		{Key: "wind_heading", Label: "Wind heading", Type: core.ParamTypeFloat, Step: 15, Min: 0, Max: 345},
		{Key: "humidity", Label: "Humidity", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1},
		{Key: "noise_amplitude", Label: "Front noise", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 0.5},
		{Key: "regime_variation", Label: "Regime variation", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1},
		{Key: "canopy_bulk_density", Label: "Canopy CBD", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 0.5},
		{Key: "reinit_interval", Label: "Reinit interval", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: 100},
	}
}

// SetFloatParameter updates a runtime float parameter. Wind changes rebuild
// the uniform wind field unless an external field was installed.
func (w *World) SetFloatParameter(key string, value float64) bool {
	switch key {
	case "wind_speed":
		if value < 0 {
			return false
		}
		w.cfg.Weather.WindSpeed = value
		w.refreshWind()
	case "wind_heading":
		w.cfg.Weather.WindHeading = normalizeDeg(value)
		w.refreshWind()
	case "humidity":
		if value < 0 || value > 1 {
			return false
		}
		w.cfg.Weather.RelativeHumidity = value
	case "noise_amplitude":
		if value < 0 {
			return false
		}
		w.cfg.Params.LevelSet.NoiseAmplitude = value
	case "regime_variation":
		if value < 0 {
			return false
		}
		w.cfg.Params.LevelSet.RegimeVariation = value
	case "canopy_bulk_density":
		if value < 0 {
			return false
		}
		w.cfg.Canopy.BulkDensity = value
	default:
		return false
	}
	w.log.Debugf("param %s=%g", key, value)
	return true
}

// SetIntParameter updates a runtime integer parameter.
func (w *World) SetIntParameter(key string, value int) bool {
	switch key {
	case "reinit_interval":
		if value < 0 {
			return false
		}
		w.cfg.ReinitInterval = value
	case "reinit_iterations":
		if value < 0 {
			return false
		}
		w.cfg.ReinitIterations = value
	default:
		return false
	}
	w.log.Debugf("param %s=%d", key, value)
	return true
}

func (w *World) refreshWind() {
	if w.externalWind {
		return
	}
	w.wind = UniformWind(w.grid, w.cfg.Weather.WindSpeed, w.cfg.Weather.WindHeading)
}

func intParam(key, label string, value int, unit string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
		Unit:  unit,
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64, unit string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
		Unit:  unit,
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
