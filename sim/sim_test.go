package sim

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/throng/config"
	"github.com/pthm-cable/throng/flowfield"
	"github.com/pthm-cable/throng/scenario"
	"github.com/pthm-cable/throng/telemetry"
)

func newTestSim(t *testing.T, seed int64) *Simulation {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	scn := scenario.Default()
	scn.AgentCount = 50

	s, err := New(Options{Config: cfg, Scenario: scn, Seed: seed})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHeadlessRunIsDeterministic(t *testing.T) {
	a := newTestSim(t, 42)
	b := newTestSim(t, 42)

	a.UpdateHeadless(120)
	b.UpdateHeadless(120)

	pa := a.Crowd().GatherPositions(nil)
	pb := b.Crowd().GatherPositions(nil)

	if diff := cmp.Diff(pa, pb); diff != "" {
		t.Errorf("same seed diverged after 120 ticks (-a +b):\n%s", diff)
	}
	if a.TotalArrivals() != b.TotalArrivals() {
		t.Errorf("arrival counts diverged: %d vs %d", a.TotalArrivals(), b.TotalArrivals())
	}
}

func TestStaticLayerBuiltOncePerRun(t *testing.T) {
	s := newTestSim(t, 1)
	s.UpdateHeadless(60)

	// Goal and obstacles never change mid-run, so the static layer
	// must have been built exactly once.
	if got := s.Field().StaticRebuilds(); got != 1 {
		t.Errorf("static rebuilds = %d, want 1", got)
	}
}

func TestAgentsEventuallyArrive(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}

	s := newTestSim(t, 7)

	// Worst case: slowest agent (60 u/s) crossing the full 1920-unit
	// world takes 32s = 1920 ticks. Leave headroom for detours.
	s.UpdateHeadless(3600)

	if s.TotalArrivals() == 0 {
		t.Fatal("no agents arrived after 60 simulated seconds")
	}
	if s.MeanTravelSec() <= 0 {
		t.Errorf("mean travel time = %v, want positive", s.MeanTravelSec())
	}
}

func TestStatsCallbackReceivesWindows(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Telemetry.StatsWindow = 0.5

	scn := scenario.Default()
	scn.AgentCount = 20

	var windows []telemetry.WindowStats
	s, err := New(Options{
		Config:   cfg,
		Scenario: scn,
		Seed:     3,
		StatsCallback: func(ws telemetry.WindowStats) {
			windows = append(windows, ws)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// 0.5s windows at 60Hz flush every 30 ticks, starting at tick 30.
	s.UpdateHeadless(150)

	if len(windows) != 4 {
		t.Fatalf("got %d windows over 150 ticks, want 4", len(windows))
	}
	for i, ws := range windows {
		if ws.AgentCount != 20 {
			t.Errorf("window %d agent count = %d, want 20", i, ws.AgentCount)
		}
	}
}

func TestFlowSampleStaysUnitLength(t *testing.T) {
	s := newTestSim(t, 11)
	s.UpdateHeadless(30)

	scn := s.Scenario()
	for _, p := range []flowfield.Vec2{
		{X: 100, Y: 100},
		{X: scn.WorldWidth / 2, Y: scn.WorldHeight / 2},
		{X: scn.WorldWidth - 1, Y: scn.WorldHeight - 1},
	} {
		v := s.Field().FlowVector(p)
		if l := v.Len(); l < 0.999 || l > 1.001 {
			t.Errorf("flow at %v has length %v, want 1", p, l)
		}
	}
}
