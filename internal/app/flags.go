package app

import "flag"

// Config represents the command-line parameters for the viewer.
type Config struct {
	Scale         int
	TPS           int
	Seed          int64
	HUDWidth      int
	Workers       int
	ConfigPath    string
	Deterministic bool
	Debug         bool
}

// NewConfig returns a Config populated with the viewer defaults.
func NewConfig() *Config {
	return &Config{Scale: 5, TPS: 10, Seed: 1337, HUDWidth: 260}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "simulation ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for landscape and reset")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "HUD panel width in pixels, 0 hides it")
	fs.IntVar(&c.Workers, "workers", c.Workers, "pass workers, 0 uses GOMAXPROCS, 1 runs serially")
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "JSON world configuration")
	fs.BoolVar(&c.Deterministic, "deterministic", c.Deterministic, "use the fixed-point front")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "log per-tick pass timings")
}
