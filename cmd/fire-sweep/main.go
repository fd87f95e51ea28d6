// Command fire-sweep runs the wildfire model over a grid of wind speeds and
// fuel moistures and reports how far each fire got.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"firefront/internal/core"
	"firefront/internal/sims/wildfire"

	"golang.org/x/sync/errgroup"
)

type scenario struct {
	WindSpeed float64 `json:"wind_speed"`
	Moisture  float64 `json:"moisture"`
}

type scenarioResult struct {
	scenario
	BurnedArea    float64 `json:"burned_area_ha"`
	PeakIntensity float64 `json:"peak_intensity"`
	PeakBurning   int     `json:"peak_burning"`
	ActiveCrown   int     `json:"active_crown"`
	HeadRun       float64 `json:"head_run_m"`
	Elapsed       string  `json:"elapsed"`
}

func main() {
	steps := flag.Int("steps", 300, "ticks to simulate per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "concurrent scenarios")
	size := flag.Int("size", 96, "grid width and height in cells")
	seed := flag.Int64("seed", 1337, "landscape seed shared by every scenario")
	winds := flag.String("winds", "0,2,4,8,12", "comma separated wind speeds in m/s")
	moistures := flag.String("moistures", "0.03,0.06,0.09,0.12", "comma separated fuel moisture fractions")
	deterministic := flag.Bool("deterministic", false, "use the fixed-point front")
	asJSON := flag.Bool("json", false, "print results as JSON")
	flag.Parse()

	log := core.NewLogger("fire-sweep", false)

	ws, err := parseList(*winds)
	if err != nil {
		log.Errorf("winds: %v", err)
		os.Exit(2)
	}
	ms, err := parseList(*moistures)
	if err != nil {
		log.Errorf("moistures: %v", err)
		os.Exit(2)
	}

	base := wildfire.DefaultConfig()
	base.Width, base.Height = *size, *size
	base.Seed = *seed
	base.Workers = 1
	base.Deterministic = *deterministic

	scenarios := crossProduct(ws, ms)
	log.Infof("sweeping %d scenarios (%d workers, %d steps)", len(scenarios), *workers, *steps)

	start := time.Now()
	results, err := sweep(context.Background(), base, scenarios, *steps, *workers)
	if err != nil {
		log.Errorf("sweep: %v", err)
		os.Exit(1)
	}
	log.Infof("sweep finished in %s", time.Since(start).Round(time.Millisecond))

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Errorf("encode: %v", err)
			os.Exit(1)
		}
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "wind m/s\tmoisture\tburned ha\thead run m\tpeak kW/m\tpeak cells\tactive crown\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%.1f\t%.2f\t%.2f\t%.0f\t%.0f\t%d\t%d\t\n",
			r.WindSpeed, r.Moisture, r.BurnedArea, r.HeadRun, r.PeakIntensity, r.PeakBurning, r.ActiveCrown)
	}
	tw.Flush()
}

func parseList(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("negative value %v", v)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", s)
	}
	return out, nil
}

func crossProduct(winds, moistures []float64) []scenario {
	out := make([]scenario, 0, len(winds)*len(moistures))
	for _, w := range winds {
		for _, m := range moistures {
			out = append(out, scenario{WindSpeed: w, Moisture: m})
		}
	}
	return out
}

// sweep runs every scenario with at most workers in flight. Results are
// ordered by burned area, largest first.
func sweep(ctx context.Context, base wildfire.Config, scenarios []scenario, steps, workers int) ([]scenarioResult, error) {
	results := make([]scenarioResult, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, sc := range scenarios {
		g.Go(func() error {
			res, err := runScenario(ctx, base, sc, steps)
			if err != nil {
				return fmt.Errorf("wind %.1f moisture %.2f: %w", sc.WindSpeed, sc.Moisture, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].BurnedArea > results[j].BurnedArea })
	return results, nil
}

func runScenario(ctx context.Context, base wildfire.Config, sc scenario, steps int) (scenarioResult, error) {
	start := time.Now()
	cfg := base
	cfg.Weather.WindSpeed = sc.WindSpeed
	world := wildfire.NewWithConfig(cfg)
	world.SetUniformMoisture(sc.Moisture)

	res := scenarioResult{scenario: sc}
	for tick := 0; tick < steps; tick++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := world.StepErr(); err != nil {
			return res, err
		}
		m := world.Metrics()
		res.PeakIntensity = max(res.PeakIntensity, m.MaxIntensity)
		res.PeakBurning = max(res.PeakBurning, m.BurningCells)
		res.ActiveCrown = max(res.ActiveCrown, m.ActiveCrown)
	}
	m := world.Metrics()
	res.BurnedArea = m.BurnedArea / 1e4
	res.HeadRun = headRun(world)
	res.Elapsed = time.Since(start).Round(time.Millisecond).String()
	return res, nil
}

// headRun is the farthest burned cell from the ignition point in metres.
func headRun(w *wildfire.World) float64 {
	g := w.Grid()
	cx, cy := g.W/2, g.H/2
	best := 0.0
	for i, v := range w.Phi() {
		if v >= 0 {
			continue
		}
		x, y := g.Coords(i)
		dx, dy := float64(x-cx), float64(y-cy)
		best = max(best, dx*dx+dy*dy)
	}
	return math.Sqrt(best) * g.CellSize
}
