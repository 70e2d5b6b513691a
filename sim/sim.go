// Package sim wires the flow field, the crowd, and telemetry into a
// fixed-timestep simulation. It has no rendering dependencies so the
// same loop drives both the windowed app and headless runs.
package sim

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/throng/config"
	"github.com/pthm-cable/throng/crowd"
	"github.com/pthm-cable/throng/flowfield"
	"github.com/pthm-cable/throng/scenario"
	"github.com/pthm-cable/throng/telemetry"
)

// Options configures a new simulation.
type Options struct {
	Config   *config.Config
	Scenario scenario.Scenario
	Seed     int64

	// OutputDir enables CSV output when non-empty; each run writes
	// into its own subdirectory.
	OutputDir string

	// LogStats enables periodic stats logging to the console.
	LogStats bool

	// StatsCallback receives each flushed window, if set.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation holds the complete simulation state.
type Simulation struct {
	cfg *config.Config
	scn scenario.Scenario

	field *flowfield.Field
	crowd *crowd.Manager

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	// Scratch buffer for the per-tick position gather
	positions []flowfield.Vec2

	goal      flowfield.GoalArea
	obstacles []flowfield.Obstacle

	tick int32

	// Cumulative counters across the whole run
	totalArrivals  int
	totalTravelSec float64
}

// New creates a simulation from options.
func New(opts Options) (*Simulation, error) {
	cfg := opts.Config
	scn := opts.Scenario

	cellSize := scn.CellSize
	if cellSize <= 0 {
		cellSize = float32(cfg.Field.CellSize)
	}
	field, err := flowfield.New(scn.WorldSize(), cellSize, cfg.FieldParams())
	if err != nil {
		return nil, fmt.Errorf("creating flow field: %w", err)
	}

	outputManager, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		field.Close()
		return nil, err
	}
	if outputManager != nil {
		if err := outputManager.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
		slog.Info("output enabled", "dir", outputManager.Dir())
	}

	s := &Simulation{
		cfg:           cfg,
		scn:           scn,
		field:         field,
		crowd:         crowd.NewManager(scn, opts.Seed, float32(cfg.Crowd.ArrivalMargin), cfg.Crowd.Respawn),
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT32),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager: outputManager,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
		positions:     make([]flowfield.Vec2, 0, scn.AgentCount),
		goal:          scn.GoalArea(),
		obstacles:     scn.FieldObstacles(),
	}

	return s, nil
}

// Step runs a single tick of the simulation.
func (s *Simulation) Step() {
	dt := s.cfg.Derived.DT32
	s.perfCollector.StartTick()

	// 1. Gather agent positions for the congestion pass
	s.perfCollector.StartPhase(telemetry.PhaseGather)
	s.positions = s.crowd.GatherPositions(s.positions[:0])

	// 2. Recalculate the flow field
	s.perfCollector.StartPhase(telemetry.PhaseField)
	s.field.Recalculate(s.positions, s.goal, s.obstacles)

	// 3. Steer and integrate agents
	s.perfCollector.StartPhase(telemetry.PhaseMove)
	s.crowd.Steer(s.field, dt)

	// 4. Handle arrivals and respawns
	s.perfCollector.StartPhase(telemetry.PhaseArrivals)
	for _, ev := range s.crowd.CollectArrivals(s.tick) {
		s.collector.RecordArrival(ev.TravelTicks)
		s.totalArrivals++
		s.totalTravelSec += float64(ev.TravelTicks) * float64(dt)
		if s.cfg.Crowd.Respawn {
			s.collector.RecordSpawn()
		}
	}

	// 5. Flush telemetry window if due
	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perfCollector.EndTick()
	s.tick++
}

// UpdateHeadless runs the simulation for maxTicks without rendering.
func (s *Simulation) UpdateHeadless(maxTicks int32) {
	for s.tick < maxTicks {
		s.Step()
	}
}

// flushTelemetry checks if the stats window should be flushed.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.crowd.Count(), s.sampleField())
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// sampleField computes mean and peak congestion magnitude over the grid.
func (s *Simulation) sampleField() telemetry.FieldSample {
	w, h := s.field.Width(), s.field.Height()
	var sum, max float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := s.field.CellCongestion(x, y)
			mag := float64(c.Len())
			sum += mag
			if mag > max {
				max = mag
			}
		}
	}
	return telemetry.FieldSample{
		MeanCongestion: sum / float64(w*h),
		MaxCongestion:  max,
		StaticRebuilds: s.field.StaticRebuilds(),
	}
}

// RecordFrame forwards frame timing to the perf collector.
func (s *Simulation) RecordFrame() {
	s.perfCollector.RecordFrame()
}

// PerfStats returns current performance statistics.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	return s.perfCollector.Stats()
}

// Tick returns the current simulation tick.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// Field returns the flow field.
func (s *Simulation) Field() *flowfield.Field {
	return s.field
}

// Crowd returns the crowd manager.
func (s *Simulation) Crowd() *crowd.Manager {
	return s.crowd
}

// Scenario returns the loaded scenario.
func (s *Simulation) Scenario() scenario.Scenario {
	return s.scn
}

// TotalArrivals returns the cumulative arrival count for the run.
func (s *Simulation) TotalArrivals() int {
	return s.totalArrivals
}

// MeanTravelSec returns the mean travel time over all arrivals so far,
// in simulation seconds. Zero before the first arrival.
func (s *Simulation) MeanTravelSec() float64 {
	if s.totalArrivals == 0 {
		return 0
	}
	return s.totalTravelSec / float64(s.totalArrivals)
}

// MeanCongestion samples the current mean congestion magnitude.
func (s *Simulation) MeanCongestion() float64 {
	return s.sampleField().MeanCongestion
}

// Close releases the field's worker pool and closes output files.
func (s *Simulation) Close() error {
	s.field.Close()
	return s.outputManager.Close()
}
