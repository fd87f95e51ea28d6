//go:build ebiten

package main

import (
	"errors"
	"flag"
	"os"

	"firefront/internal/app"
	"firefront/internal/core"
	"firefront/internal/sims/wildfire"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	log := core.NewLogger("fireview", cfg.Debug)

	worldCfg := wildfire.DefaultConfig()
	if cfg.ConfigPath != "" {
		f, err := os.Open(cfg.ConfigPath)
		if err != nil {
			log.Errorf("open config: %v", err)
			os.Exit(1)
		}
		worldCfg, err = wildfire.LoadConfig(f)
		f.Close()
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
	}
	worldCfg.Seed = cfg.Seed
	worldCfg.Workers = cfg.Workers
	worldCfg.Deterministic = worldCfg.Deterministic || cfg.Deterministic

	world := wildfire.NewWithConfig(worldCfg)
	world.SetLogger(log)

	game := app.New(world, cfg, log)
	size := world.Size()

	ebiten.SetWindowTitle("firefront: " + world.Name())
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.HUDWidth, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
