package crowd

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/throng/flowfield"
	"github.com/pthm-cable/throng/scenario"
)

func testScenario() scenario.Scenario {
	scn := scenario.Default()
	scn.AgentCount = 32
	return scn
}

func TestSpawnDeterministicForSeed(t *testing.T) {
	a := NewManager(testScenario(), 42, 24, true)
	b := NewManager(testScenario(), 42, 24, true)

	pa := a.GatherPositions(nil)
	pb := b.GatherPositions(nil)

	if diff := cmp.Diff(pa, pb); diff != "" {
		t.Errorf("same seed produced different spawns (-a +b):\n%s", diff)
	}

	c := NewManager(testScenario(), 43, 24, true)
	pc := c.GatherPositions(nil)
	if cmp.Equal(pa, pc) {
		t.Error("different seeds produced identical spawn layouts")
	}
}

func TestSpawnInsideBand(t *testing.T) {
	scn := testScenario()
	m := NewManager(scn, 7, 24, true)

	for _, p := range m.GatherPositions(nil) {
		if p.X < scn.SpawnBand.MinX || p.X > scn.SpawnBand.MaxX {
			t.Errorf("agent spawned at x=%v outside band [%v, %v]",
				p.X, scn.SpawnBand.MinX, scn.SpawnBand.MaxX)
		}
		if p.Y < 0 || p.Y > scn.WorldHeight {
			t.Errorf("agent spawned at y=%v outside world", p.Y)
		}
	}
}

func TestSteerMovesTowardGoal(t *testing.T) {
	scn := testScenario()
	scn.Obstacles = nil
	m := NewManager(scn, 1, 24, true)

	field, err := flowfield.New(
		flowfield.Vec2{X: scn.WorldWidth, Y: scn.WorldHeight},
		scn.CellSize, flowfield.DefaultParams(),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer field.Close()
	field.Recalculate(nil, scn.GoalArea(), nil)

	before := m.GatherPositions(nil)
	m.Steer(field, 1.0/60)
	after := m.GatherPositions(nil)

	// Goal is on the right edge; every agent should have moved right.
	for i := range before {
		if after[i].X <= before[i].X {
			t.Errorf("agent %d did not advance toward goal: %v -> %v",
				i, before[i].X, after[i].X)
		}
	}
}

func TestObstacleSlideKeepsAgentsOut(t *testing.T) {
	scn := testScenario()
	m := NewManager(scn, 3, 24, true)

	field, err := flowfield.New(
		flowfield.Vec2{X: scn.WorldWidth, Y: scn.WorldHeight},
		scn.CellSize, flowfield.DefaultParams(),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer field.Close()
	field.Recalculate(nil, scn.GoalArea(), scn.FieldObstacles())

	ob := scn.Obstacles[0]
	for tick := 0; tick < 240; tick++ {
		m.Steer(field, 1.0/60)
	}
	for _, p := range m.GatherPositions(nil) {
		if p.X > ob.X && p.X < ob.X+ob.W && p.Y > ob.Y && p.Y < ob.Y+ob.H {
			t.Fatalf("agent center %v ended up inside obstacle", p)
		}
	}
}

func TestArrivalsDespawnAndRespawn(t *testing.T) {
	scn := testScenario()
	m := NewManager(scn, 5, 24, true)

	// Teleport everyone onto the goal segment by steering through a
	// field with an enormous dt substitute: instead, check the capture
	// rectangle directly.
	if !m.atGoal(scn.Goal.X-10, (scn.Goal.MinY+scn.Goal.MaxY)/2) {
		t.Fatal("point just inside the margin not counted as arrived")
	}
	if m.atGoal(scn.Goal.X-100, (scn.Goal.MinY+scn.Goal.MaxY)/2) {
		t.Fatal("point far from goal counted as arrived")
	}
	if m.atGoal(scn.Goal.X, scn.Goal.MaxY+100) {
		t.Fatal("point beyond segment ends counted as arrived")
	}

	events := m.CollectArrivals(10)
	if len(events) != 0 {
		t.Fatalf("fresh spawn-band population reported %d arrivals", len(events))
	}
	if m.Count() != scn.AgentCount {
		t.Fatalf("population changed without arrivals: %d", m.Count())
	}
}

func TestRespawnKeepsPopulationConstant(t *testing.T) {
	scn := testScenario()
	// Degenerate spawn band sitting on the goal: every agent arrives
	// on the first check, and each respawn arrives again next check.
	scn.SpawnBand = scenario.Band{MinX: scn.Goal.X - 1, MaxX: scn.Goal.X}
	m := NewManager(scn, 9, scn.WorldHeight, true)

	events := m.CollectArrivals(100)
	if len(events) != scn.AgentCount {
		t.Fatalf("expected %d arrivals, got %d", scn.AgentCount, len(events))
	}
	if m.Count() != scn.AgentCount {
		t.Fatalf("respawn did not hold population: %d", m.Count())
	}
	for _, ev := range events {
		if ev.TravelTicks != 100 {
			t.Errorf("travel ticks = %d, want 100", ev.TravelTicks)
		}
	}

	noRespawn := NewManager(scn, 9, scn.WorldHeight, false)
	noRespawn.CollectArrivals(50)
	if noRespawn.Count() != 0 {
		t.Fatalf("respawn disabled but %d agents remain", noRespawn.Count())
	}
}
