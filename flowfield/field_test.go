package flowfield

import (
	"math"
	"testing"
)

func testGoal() GoalArea {
	return GoalArea{X: 1920, MinY: 490, MaxY: 590}
}

func newTestField(t testing.TB, cellSize float32) *Field {
	t.Helper()
	f, err := New(Vec2{X: 1920, Y: 1080}, cellSize, DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(f.Close)
	return f
}

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero repulsion radius", func(p *Params) { p.RepulsionRadius = 0 }},
		{"negative repulsion strength", func(p *Params) { p.RepulsionStrength = -1 }},
		{"zero obstacle radius", func(p *Params) { p.ObstacleRepulsionRadius = 0 }},
		{"negative obstacle strength", func(p *Params) { p.ObstacleRepulsionStrength = -0.1 }},
		{"negative front multiplier", func(p *Params) { p.FrontMultiplier = -1 }},
		{"negative goal weight", func(p *Params) { p.GoalWeight = -0.5 }},
		{"negative min distance", func(p *Params) { p.MinRepulsionDistance = -1 }},
		{"min distance above repulsion radius", func(p *Params) { p.MinRepulsionDistance = p.RepulsionRadius }},
		{"min distance above obstacle radius", func(p *Params) {
			p.ObstacleRepulsionRadius = 10
			p.MinRepulsionDistance = 10
		}},
		{"smoothing factor at one", func(p *Params) { p.SmoothingFactor = 1 }},
		{"negative smoothing factor", func(p *Params) { p.SmoothingFactor = -0.1 }},
	}

	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params should validate, got %v", err)
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestNewRejectsBadDimensions(t *testing.T) {
	if _, err := New(Vec2{X: 0, Y: 1080}, 60, DefaultParams()); err == nil {
		t.Error("expected error for zero world width")
	}
	if _, err := New(Vec2{X: 1920, Y: 1080}, 0, DefaultParams()); err == nil {
		t.Error("expected error for zero cell size")
	}
	if _, err := New(Vec2{X: 1920, Y: 1080}, 60, Params{}); err == nil {
		t.Error("expected error for zero params")
	}
}

func TestGridCoversWorldWithMargin(t *testing.T) {
	f := newTestField(t, 60)

	// ceil(1920/60)+1 and ceil(1080/60)+1.
	if f.Width() != 33 || f.Height() != 19 {
		t.Errorf("expected 33x19 grid, got %dx%d", f.Width(), f.Height())
	}

	// The far world corner must sit inside the interpolable area.
	last := f.CellCenter(f.Width()-1, f.Height()-1)
	if last.X < 1920-60 || last.Y < 1080-60 {
		t.Errorf("grid does not cover world edge, last center (%f, %f)", last.X, last.Y)
	}
}

func TestEmptyWorldFlowsTowardGoal(t *testing.T) {
	f := newTestField(t, 64)
	f.Recalculate(nil, testGoal(), nil)

	// Level with the goal segment the direction is rightward.
	v := f.FlowVector(Vec2{X: 0, Y: 540})
	if math.Abs(float64(v.X-1)) > 0.01 || math.Abs(float64(v.Y)) > 0.01 {
		t.Errorf("expected (1, 0) toward goal, got (%f, %f)", v.X, v.Y)
	}

	// Above the segment the flow bends down toward it.
	v = f.FlowVector(Vec2{X: 200, Y: 100})
	if v.X <= 0 || v.Y <= 0 {
		t.Errorf("expected down-right flow above goal, got (%f, %f)", v.X, v.Y)
	}

	// Below the segment it bends up.
	v = f.FlowVector(Vec2{X: 200, Y: 1000})
	if v.X <= 0 || v.Y >= 0 {
		t.Errorf("expected up-right flow below goal, got (%f, %f)", v.X, v.Y)
	}
}

func TestObstacleDeflectsApproachingFlow(t *testing.T) {
	f := newTestField(t, 30)
	obstacles := []Obstacle{
		{Pos: Vec2{X: 860, Y: 390}, Size: Vec2{X: 300, Y: 300}},
	}
	f.Recalculate(nil, testGoal(), obstacles)

	// Approaching the front face above the box centerline the flow
	// gains an upward component instead of driving into the face.
	v := f.FlowVector(Vec2{X: 730, Y: 500})
	if v.Y >= 0 {
		t.Errorf("expected upward deflection in front of obstacle, got (%f, %f)", v.X, v.Y)
	}

	// Below the centerline the deflection flips downward.
	v = f.FlowVector(Vec2{X: 730, Y: 580})
	if v.Y <= 0 {
		t.Errorf("expected downward deflection in front of obstacle, got (%f, %f)", v.X, v.Y)
	}

	// Far from the obstacle the field is untouched goal flow.
	v = f.FlowVector(Vec2{X: 100, Y: 540})
	if math.Abs(float64(v.X-1)) > 1e-4 || math.Abs(float64(v.Y)) > 1e-4 {
		t.Errorf("expected (1, 0) far from obstacle, got (%f, %f)", v.X, v.Y)
	}
}

func TestStaticLayerRebuildsOnlyOnChange(t *testing.T) {
	f := newTestField(t, 60)
	goal := testGoal()
	obstacles := []Obstacle{
		{Pos: Vec2{X: 800, Y: 400}, Size: Vec2{X: 200, Y: 200}},
	}

	for i := 0; i < 5; i++ {
		f.Recalculate(nil, goal, obstacles)
	}
	if got := f.StaticRebuilds(); got != 1 {
		t.Errorf("expected 1 static rebuild for stable inputs, got %d", got)
	}

	// Moving an obstacle invalidates the cache once.
	obstacles[0].Pos.X = 900
	f.Recalculate(nil, goal, obstacles)
	f.Recalculate(nil, goal, obstacles)
	if got := f.StaticRebuilds(); got != 2 {
		t.Errorf("expected 2 static rebuilds after obstacle move, got %d", got)
	}

	// So does changing the goal.
	goal.MinY = 400
	f.Recalculate(nil, goal, obstacles)
	if got := f.StaticRebuilds(); got != 3 {
		t.Errorf("expected 3 static rebuilds after goal change, got %d", got)
	}

	// And a parameter update, on the next recalculation.
	p := f.Params()
	p.ObstacleRepulsionStrength = 3
	if err := f.SetParams(p); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	f.Recalculate(nil, goal, obstacles)
	if got := f.StaticRebuilds(); got != 4 {
		t.Errorf("expected 4 static rebuilds after param change, got %d", got)
	}
}

func TestCacheCopiesObstacleSlice(t *testing.T) {
	f := newTestField(t, 60)
	obstacles := []Obstacle{
		{Pos: Vec2{X: 800, Y: 400}, Size: Vec2{X: 200, Y: 200}},
	}
	f.Recalculate(nil, testGoal(), obstacles)

	// Mutating the caller's slice must still be detected as a change.
	obstacles[0].Pos.Y = 500
	f.Recalculate(nil, testGoal(), obstacles)
	if got := f.StaticRebuilds(); got != 2 {
		t.Errorf("expected rebuild after in-place obstacle mutation, got %d rebuilds", got)
	}
}

// gridAgents fills the central region with a deterministic agent
// layout, enough to cross the gather threshold.
func gridAgents(n int) []Vec2 {
	agents := make([]Vec2, n)
	for i := range agents {
		agents[i] = Vec2{
			X: 400 + float32(i%10)*25,
			Y: 300 + float32(i/10)*25,
		}
	}
	return agents
}

func TestRecalculateIsDeterministic(t *testing.T) {
	// Fine grid so the row chunks actually spread across workers.
	a := newTestField(t, 16)
	b := newTestField(t, 16)

	goal := testGoal()
	obstacles := []Obstacle{
		{Pos: Vec2{X: 860, Y: 390}, Size: Vec2{X: 300, Y: 300}},
	}
	agents := gridAgents(64)

	for tick := 0; tick < 10; tick++ {
		a.Recalculate(agents, goal, obstacles)
		b.Recalculate(agents, goal, obstacles)
	}

	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			if a.CellFlow(x, y) != b.CellFlow(x, y) {
				t.Fatalf("flow diverged at cell (%d, %d): %v vs %v",
					x, y, a.CellFlow(x, y), b.CellFlow(x, y))
			}
			if a.CellCongestion(x, y) != b.CellCongestion(x, y) {
				t.Fatalf("congestion diverged at cell (%d, %d): %v vs %v",
					x, y, a.CellCongestion(x, y), b.CellCongestion(x, y))
			}
		}
	}
}

func TestCellAccessorsOutOfRange(t *testing.T) {
	f := newTestField(t, 60)
	f.Recalculate(nil, testGoal(), nil)

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {f.Width(), 0}, {0, f.Height()}} {
		if v := f.CellFlow(c[0], c[1]); !v.IsZero() {
			t.Errorf("CellFlow(%d, %d) should be zero, got %v", c[0], c[1], v)
		}
		if v := f.CellStatic(c[0], c[1]); !v.IsZero() {
			t.Errorf("CellStatic(%d, %d) should be zero, got %v", c[0], c[1], v)
		}
	}
}

func TestCombinedCellsStayUnitLength(t *testing.T) {
	f := newTestField(t, 30)
	obstacles := []Obstacle{
		{Pos: Vec2{X: 860, Y: 390}, Size: Vec2{X: 300, Y: 300}},
	}

	for tick := 0; tick < 5; tick++ {
		f.Recalculate(gridAgents(80), testGoal(), obstacles)
	}

	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			l := f.CellFlow(x, y).Len()
			if math.Abs(float64(l-1)) > 1e-4 {
				t.Fatalf("cell (%d, %d) flow length %f, want 1", x, y, l)
			}
		}
	}
}

func BenchmarkRecalculate(b *testing.B) {
	f := newTestField(b, 30)
	goal := testGoal()
	obstacles := []Obstacle{
		{Pos: Vec2{X: 860, Y: 390}, Size: Vec2{X: 300, Y: 300}},
	}
	agents := gridAgents(200)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Recalculate(agents, goal, obstacles)
	}
}
