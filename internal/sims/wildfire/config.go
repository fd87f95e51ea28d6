package wildfire

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// SpreadParams tunes the surface spread-rate pass.
type SpreadParams struct {
	CurvatureCoeff     float64 `json:"curvature_coeff"`
	VorticityThreshold float64 `json:"vorticity_threshold"` // 1/s
	BackingFloor       float64 `json:"backing_floor"`       // fraction of the no-wind rate
	BackingWindRef     float64 `json:"backing_wind_ref"`    // m/s
}

// EffectsParams tunes lee-slope lateral spread and valley channeling.
type EffectsParams struct {
	VLSMinSlope      float64 `json:"vls_min_slope"` // degrees
	VLSMinWind       float64 `json:"vls_min_wind"`  // m/s
	VLSThreshold     float64 `json:"vls_threshold"`
	VLSMaxMultiplier float64 `json:"vls_max_multiplier"`

	ValleyRadius        float64 `json:"valley_radius"`      // m
	ValleyRidgeMargin   float64 `json:"valley_ridge_margin"` // m above centre to count as higher
	ValleyMinHigher     int     `json:"valley_min_higher"`
	ValleyRefWidth      float64 `json:"valley_ref_width"` // m
	ValleyMaxFactor     float64 `json:"valley_max_factor"`
	ValleyWidthFactor   float64 `json:"valley_width_factor"` // width ≈ radius × factor
	ValleyHeadFactor    float64 `json:"valley_head_factor"`  // distance from head ≈ depth × factor
	ChimneyHeadDistance float64 `json:"chimney_head_distance"`
	ChimneyMaxUpdraft   float64 `json:"chimney_max_updraft"` // m/s
	ChimneyMaxBoost     float64 `json:"chimney_max_boost"`
}

// LevelSetParams tunes front evolution.
type LevelSetParams struct {
	CurvatureCoeff float64 `json:"curvature_coeff"`
	SlopeGain      float64 `json:"slope_gain"` // per degree of aligned slope
	SlopeFloor     float64 `json:"slope_floor"`
	NoiseAmplitude float64 `json:"noise_amplitude"` // for a wind-driven fire

	// RegimeNoiseScale raises the noise amplitude up to
	// NoiseAmplitude·(1+RegimeNoiseScale) as the burning cells turn
	// plume-dominated. RegimeVariation is the spread-rate variation of a
	// fully unpredictable regime.
	RegimeNoiseScale float64 `json:"regime_noise_scale"`
	RegimeVariation  float64 `json:"regime_variation"`
}

// IgnitionParams tunes thermal ignition.
type IgnitionParams struct {
	Temperature float64 `json:"temperature"` // K
}

// HeatParams tunes the temperature field.
type HeatParams struct {
	EmissivityBurning  float64 `json:"emissivity_burning"`
	EmissivityUnburned float64 `json:"emissivity_unburned"`
}

// CombustionParams tunes fuel consumption.
type CombustionParams struct {
	IgnitionTemperature   float64 `json:"ignition_temperature"` // K
	BurnCoefficient       float64 `json:"burn_coefficient"`     // 1/s
	TemperatureSaturation float64 `json:"temperature_saturation"`
	SelfHeating           float64 `json:"self_heating"`
	EvaporationRate       float64 `json:"evaporation_rate"` // 1/s
	MixingHeight          float64 `json:"mixing_height"`    // m
	OxygenReplenish       float64 `json:"oxygen_replenish"` // 1/s
}

// MoistureParams tunes equilibrium relaxation of unburned fuel.
type MoistureParams struct {
	Enabled      bool    `json:"enabled"`
	TimeConstant float64 `json:"time_constant"` // s
	HeatedDelta  float64 `json:"heated_delta"`  // K above ambient treated as heated
}

// Params groups the per-pass parameter blocks. Each pass receives its block
// by value at the start of a tick.
type Params struct {
	Spread     SpreadParams     `json:"spread"`
	Effects    EffectsParams    `json:"effects"`
	LevelSet   LevelSetParams   `json:"level_set"`
	Ignition   IgnitionParams   `json:"ignition"`
	Heat       HeatParams       `json:"heat"`
	Combustion CombustionParams `json:"combustion"`
	Moisture   MoistureParams   `json:"moisture"`
}

// LandscapeParams drives the synthetic terrain and fuel generator.
type LandscapeParams struct {
	Hills        int     `json:"hills"`
	HillHeight   float64 `json:"hill_height"`
	HillRadius   float64 `json:"hill_radius"` // cells
	ValleyDepth  float64 `json:"valley_depth"`
	FuelPatches  int     `json:"fuel_patches"`
	PatchRadius  float64 `json:"patch_radius"` // cells
	BaseFuel     uint8   `json:"base_fuel"`
	IgnitionSeed bool    `json:"ignition_seed"` // ignite the centre on reset
}

// Config controls the wildfire simulation.
type Config struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	CellSize float64 `json:"cell_size"` // m
	Dt       float64 `json:"dt"`        // s

	Seed          int64 `json:"seed"`
	Deterministic bool  `json:"deterministic"`
	Workers       int   `json:"workers"`

	ReinitInterval   int `json:"reinit_interval"`
	ReinitIterations int `json:"reinit_iterations"`

	Weather   Weather          `json:"weather"`
	Canopy    CanopyProperties `json:"canopy"`
	Landscape LandscapeParams  `json:"landscape"`
	Params    Params           `json:"params"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:            128,
		Height:           128,
		CellSize:         10,
		Dt:               1,
		Seed:             1337,
		Workers:          0,
		ReinitInterval:   10,
		ReinitIterations: 5,
		Weather:          DefaultWeather(),
		Canopy:           DefaultCanopy(),
		Landscape: LandscapeParams{
			Hills:        6,
			HillHeight:   60,
			HillRadius:   18,
			ValleyDepth:  40,
			FuelPatches:  14,
			PatchRadius:  10,
			BaseFuel:     FuelTimberGrass,
			IgnitionSeed: true,
		},
		Params: Params{
			Spread: SpreadParams{
				CurvatureCoeff:     0.25,
				VorticityThreshold: 0.2,
				BackingFloor:       0.25,
				BackingWindRef:     5,
			},
			Effects: EffectsParams{
				VLSMinSlope:         20,
				VLSMinWind:          5,
				VLSThreshold:        0.6,
				VLSMaxMultiplier:    3,
				ValleyRadius:        100,
				ValleyRidgeMargin:   5,
				ValleyMinHigher:     3,
				ValleyRefWidth:      200,
				ValleyMaxFactor:     2.5,
				ValleyWidthFactor:   0.5,
				ValleyHeadFactor:    10,
				ChimneyHeadDistance: 100,
				ChimneyMaxUpdraft:   50,
				ChimneyMaxBoost:     0.2,
			},
			LevelSet: LevelSetParams{
				CurvatureCoeff:   0,
				SlopeGain:        0.069,
				SlopeFloor:       0.3,
				NoiseAmplitude:   0.03,
				RegimeNoiseScale: 4,
				RegimeVariation:  0.15,
			},
			Ignition: IgnitionParams{Temperature: 501.15},
			Heat: HeatParams{
				EmissivityBurning:  0.9,
				EmissivityUnburned: 0.7,
			},
			Combustion: CombustionParams{
				IgnitionTemperature:   501.15,
				BurnCoefficient:       0.08,
				TemperatureSaturation: 500,
				SelfHeating:           0.4,
				EvaporationRate:       0.1,
				MixingHeight:          10,
				OxygenReplenish:       0.05,
			},
			Moisture: MoistureParams{
				Enabled:      true,
				TimeConstant: 3600,
				HeatedDelta:  1,
			},
		},
	}
}

// Validate reports every configuration value that cannot run.
func (c Config) Validate() error {
	var errs []error
	if c.Width < 3 || c.Height < 3 {
		errs = append(errs, fmt.Errorf("grid %dx%d must be at least 3x3", c.Width, c.Height))
	}
	if !(c.CellSize > 0) {
		errs = append(errs, fmt.Errorf("cell_size %v: %w", c.CellSize, ErrInvalidCellSize))
	}
	if !(c.Dt > 0) {
		errs = append(errs, fmt.Errorf("dt %v must be positive", c.Dt))
	}
	if c.ReinitInterval < 0 || c.ReinitIterations < 0 {
		errs = append(errs, errors.New("reinit interval and iterations must be non-negative"))
	}
	if c.Weather.AmbientTemperature <= 0 {
		errs = append(errs, fmt.Errorf("ambient temperature %v K must be positive", c.Weather.AmbientTemperature))
	}
	return errors.Join(errs...)
}

// LoadConfig decodes JSON over DefaultConfig and validates the result.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode wildfire config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid wildfire config: %w", err)
	}
	return cfg, nil
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 3 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 3 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.Workers = parsed
		}
	}
	if v, ok := cfg["deterministic"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Deterministic = parsed
		}
	}
	if v, ok := cfg["reinit_interval"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.ReinitInterval = parsed
		}
	}
	if v, ok := cfg["reinit_iterations"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.ReinitIterations = parsed
		}
	}
	positive := map[string]*float64{
		"cell_size":    &c.CellSize,
		"dt":           &c.Dt,
		"ambient_temp": &c.Weather.AmbientTemperature,
	}
	for key, dst := range positive {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
				*dst = parsed
			}
		}
	}
	nonNegative := map[string]*float64{
		"wind_speed":       &c.Weather.WindSpeed,
		"humidity":         &c.Weather.RelativeHumidity,
		"curvature_coeff":  &c.Params.Spread.CurvatureCoeff,
		"noise_amplitude":  &c.Params.LevelSet.NoiseAmplitude,
		"regime_variation": &c.Params.LevelSet.RegimeVariation,
		"burn_coeff":       &c.Params.Combustion.BurnCoefficient,
	}
	for key, dst := range nonNegative {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
				*dst = parsed
			}
		}
	}
	if v, ok := cfg["wind_heading"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Weather.WindHeading = normalizeDeg(parsed)
		}
	}
	if c.Weather.RelativeHumidity > 1 {
		c.Weather.RelativeHumidity = 1
	}
	return c
}
