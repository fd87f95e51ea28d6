// Command firesim runs the wildfire model headless, logging per-tick
// metrics and optionally streaming them over a websocket.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"firefront/internal/core"
	"firefront/internal/sims/wildfire"
	"firefront/internal/stream"
)

type options struct {
	configPath    string
	width         int
	height        int
	steps         int
	seed          int64
	workers       int
	deterministic bool
	debug         bool
	every         int
	serve         string
	tps           int
	ignite        string
	ndjson        bool
}

func main() {
	var opt options
	flag.StringVar(&opt.configPath, "config", "", "JSON world configuration")
	flag.IntVar(&opt.width, "w", 0, "grid width, overrides the config")
	flag.IntVar(&opt.height, "h", 0, "grid height, overrides the config")
	flag.IntVar(&opt.steps, "steps", 600, "ticks to run")
	flag.Int64Var(&opt.seed, "seed", 0, "landscape seed, 0 keeps the config seed")
	flag.IntVar(&opt.workers, "workers", -1, "pass workers, -1 keeps the config value")
	flag.BoolVar(&opt.deterministic, "deterministic", false, "use the fixed-point front")
	flag.BoolVar(&opt.debug, "debug", false, "log per-tick pass timings")
	flag.IntVar(&opt.every, "every", 30, "log metrics every N ticks")
	flag.StringVar(&opt.serve, "serve", "", "serve the metrics stream on this address, e.g. :8080")
	flag.IntVar(&opt.tps, "tps", 0, "pace ticks per second, 0 runs flat out")
	flag.StringVar(&opt.ignite, "ignite", "", "extra ignition cells as x,y;x,y")
	flag.BoolVar(&opt.ndjson, "ndjson", false, "print every metrics frame as a JSON line on stdout")
	flag.Parse()

	log := core.NewLogger("firesim", opt.debug)
	if opt.ndjson {
		log = core.NewLoggerTo(os.Stderr, os.Stderr, "firesim", opt.debug)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opt, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func loadConfig(opt options) (wildfire.Config, error) {
	cfg := wildfire.DefaultConfig()
	if opt.configPath != "" {
		f, err := os.Open(opt.configPath)
		if err != nil {
			return cfg, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if cfg, err = wildfire.LoadConfig(f); err != nil {
			return cfg, err
		}
	}
	if opt.width > 0 {
		cfg.Width = opt.width
	}
	if opt.height > 0 {
		cfg.Height = opt.height
	}
	if opt.seed != 0 {
		cfg.Seed = opt.seed
	}
	if opt.workers >= 0 {
		cfg.Workers = opt.workers
	}
	if opt.deterministic {
		cfg.Deterministic = true
	}
	return cfg, cfg.Validate()
}

func parseCells(s string) ([][2]int, error) {
	var out [][2]int
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("cell %q: want x,y", pair)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xs))
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", pair, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(ys))
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", pair, err)
		}
		out = append(out, [2]int{x, y})
	}
	return out, nil
}

func run(ctx context.Context, opt options, log *core.StdLogger) error {
	cfg, err := loadConfig(opt)
	if err != nil {
		return err
	}
	cells, err := parseCells(opt.ignite)
	if err != nil {
		return err
	}

	world := wildfire.NewWithConfig(cfg)
	log.SetPrefix("firesim " + world.RunID()[:8])
	world.SetLogger(log)
	for _, c := range cells {
		if err := world.Ignite(c[0], c[1]); err != nil {
			return err
		}
	}

	var hub *stream.Hub
	if opt.serve != "" {
		hub = stream.NewHub(log)
		srv := newServer(opt.serve, hub, world)
		go func() {
			log.Infof("streaming metrics on ws://%s/ws", opt.serve)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("serve: %v", err)
			}
		}()
		defer func() {
			hub.Close()
			shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdown)
		}()
	}

	var pace <-chan time.Time
	if opt.tps > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(opt.tps))
		defer ticker.Stop()
		pace = ticker.C
	}

	enc := json.NewEncoder(os.Stdout)
	start := time.Now()
	for tick := 0; tick < opt.steps; tick++ {
		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := world.StepErr(); err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		m := world.Metrics()
		if hub != nil {
			hub.Publish(m)
		}
		if opt.ndjson {
			if err := enc.Encode(m); err != nil {
				return fmt.Errorf("encode metrics: %w", err)
			}
		}
		if opt.every > 0 && (tick+1)%opt.every == 0 {
			log.Infof("t=%.0fs burning=%d burned=%.2fha I=%.0fkW/m crown=%d/%d",
				m.Time, m.BurningCells, m.BurnedArea/1e4, m.TotalIntensity, m.PassiveCrown, m.ActiveCrown)
		}
	}
	m := world.Metrics()
	log.Infof("done: %d ticks in %s, burned %.2f ha, fuel left %.0f kg",
		m.Tick, time.Since(start).Round(time.Millisecond), m.BurnedArea/1e4, m.FuelRemaining)
	return nil
}

func newServer(addr string, hub *stream.Hub, world *wildfire.World) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(world.Config())
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
