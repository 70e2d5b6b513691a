package telemetry

import "math"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	// Event counters for current window
	spawns        int
	arrivals      int
	travelSamples []float64

	lastStaticRebuilds int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	// Round, don't truncate: float32 dt makes 0.5/dt land just under 30.
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
	}
}

// RecordSpawn records one agent entering the world.
func (c *Collector) RecordSpawn() {
	c.spawns++
}

// RecordArrival records one agent reaching the goal, with its travel
// time measured in ticks.
func (c *Collector) RecordArrival(travelTicks int32) {
	c.arrivals++
	c.travelSamples = append(c.travelSamples, float64(travelTicks)*float64(c.dt))
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// FieldSample holds field-layer observations taken at window end.
type FieldSample struct {
	MeanCongestion float64
	MaxCongestion  float64
	StaticRebuilds int // cumulative rebuild count from the field
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, agentCount int, field FieldSample) WindowStats {
	travelMean, travelP50, travelP90 := ComputeTravelStats(c.travelSamples)

	windowSec := float64(currentTick-c.windowStartTick) * float64(c.dt)
	var arrivalRate float64
	if windowSec > 0 {
		arrivalRate = float64(c.arrivals) / windowSec
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		AgentCount: agentCount,

		Spawns:   c.spawns,
		Arrivals: c.arrivals,

		TravelMean: travelMean,
		TravelP50:  travelP50,
		TravelP90:  travelP90,

		ArrivalRate: arrivalRate,

		MeanCongestion: field.MeanCongestion,
		MaxCongestion:  field.MaxCongestion,

		StaticRebuilds: field.StaticRebuilds - c.lastStaticRebuilds,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawns = 0
	c.arrivals = 0
	c.travelSamples = c.travelSamples[:0]
	c.lastStaticRebuilds = field.StaticRebuilds

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
