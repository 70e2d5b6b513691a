package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/throng/config"
	"github.com/pthm-cable/throng/scenario"
	"github.com/pthm-cable/throng/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	scenarioPath := flag.String("scenario", "", "Path to scenario JSON (empty = built-in concourse)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Base directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	scn := scenario.Default()
	if *scenarioPath != "" {
		loaded, err := scenario.Load(*scenarioPath)
		if err != nil {
			slog.Error("failed to load scenario", "error", err)
			os.Exit(1)
		}
		scn = loaded
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := sim.Options{
		Config:    cfg,
		Scenario:  scn,
		Seed:      rngSeed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	}

	if *headless {
		runHeadless(opts, rngSeed, *maxTicks, *stepsPerUpdate)
		return
	}
	runWindowed(cfg, opts, *maxTicks)
}

// runHeadless drives the simulation without graphics.
func runHeadless(opts sim.Options, rngSeed int64, maxTicks, stepsPerUpdate int) {
	s, err := sim.New(opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	slog.Info("starting headless simulation",
		"scenario", opts.Scenario.Name,
		"seed", rngSeed,
		"max_ticks", maxTicks,
		"steps_per_update", stepsPerUpdate,
	)

	for {
		for i := 0; i < stepsPerUpdate; i++ {
			s.Step()
		}

		if maxTicks > 0 && int(s.Tick()) >= maxTicks {
			slog.Info("max ticks reached",
				"tick", s.Tick(),
				"arrivals", s.TotalArrivals(),
				"mean_travel_sec", s.MeanTravelSec(),
			)
			return
		}
	}
}

// runWindowed drives the simulation with a raylib window.
func runWindowed(cfg *config.Config, opts sim.Options, maxTicks int) {
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Throng")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	app, err := NewApp(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	for !rl.WindowShouldClose() {
		app.Update()
		app.Draw()

		if maxTicks > 0 && int(app.Tick()) >= maxTicks {
			break
		}
	}
}
