package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	AgentCount int `csv:"agents"`

	// Events during window
	Spawns   int `csv:"spawns"`
	Arrivals int `csv:"arrivals"`

	// Travel time of agents that arrived during the window, in
	// simulation seconds
	TravelMean float64 `csv:"travel_mean"`
	TravelP50  float64 `csv:"travel_p50"`
	TravelP90  float64 `csv:"travel_p90"`

	// Arrival throughput in agents per simulation second
	ArrivalRate float64 `csv:"arrival_rate"`

	// Field state sampled at window end
	MeanCongestion float64 `csv:"mean_congestion"`
	MaxCongestion  float64 `csv:"max_congestion"`

	// Static layer rebuilds during the window; nonzero means goal or
	// obstacles changed
	StaticRebuilds int `csv:"static_rebuilds"`
}

// ComputeTravelStats calculates mean and percentiles from travel time
// samples. The input slice is sorted in place.
func ComputeTravelStats(samples []float64) (mean, p50, p90 float64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	sort.Float64s(samples)
	mean = stat.Mean(samples, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, samples, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, samples, nil)
	return mean, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.AgentCount),
		slog.Int("spawns", s.Spawns),
		slog.Int("arrivals", s.Arrivals),
		slog.Float64("travel_mean", s.TravelMean),
		slog.Float64("travel_p50", s.TravelP50),
		slog.Float64("travel_p90", s.TravelP90),
		slog.Float64("arrival_rate", s.ArrivalRate),
		slog.Float64("mean_congestion", s.MeanCongestion),
		slog.Float64("max_congestion", s.MaxCongestion),
		slog.Int("static_rebuilds", s.StaticRebuilds),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"agents", s.AgentCount,
		"spawns", s.Spawns,
		"arrivals", s.Arrivals,
		"travel_mean", s.TravelMean,
		"travel_p50", s.TravelP50,
		"travel_p90", s.TravelP90,
		"arrival_rate", s.ArrivalRate,
		"mean_congestion", s.MeanCongestion,
		"max_congestion", s.MaxCongestion,
		"static_rebuilds", s.StaticRebuilds,
	)
}
