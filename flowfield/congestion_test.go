package flowfield

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestCongestionPushesAwayFromAgent(t *testing.T) {
	f := newTestField(t, 60)
	agent := Vec2{X: 630, Y: 570} // the center of cell (10, 9)
	f.Recalculate([]Vec2{agent}, testGoal(), nil)

	right := f.CellCongestion(11, 9)
	if right.X <= 0 || absf(right.Y) > 1e-4 {
		t.Errorf("cell right of agent should push +x, got (%f, %f)", right.X, right.Y)
	}
	left := f.CellCongestion(9, 9)
	if left.X >= 0 || absf(left.Y) > 1e-4 {
		t.Errorf("cell left of agent should push -x, got (%f, %f)", left.X, left.Y)
	}
	above := f.CellCongestion(10, 8)
	if above.Y >= 0 {
		t.Errorf("cell above agent should push -y, got (%f, %f)", above.X, above.Y)
	}

	// Beyond the repulsion radius there is nothing.
	if far := f.CellCongestion(20, 9); !far.IsZero() {
		t.Errorf("cell outside repulsion radius should be zero, got (%f, %f)", far.X, far.Y)
	}
}

func TestCongestionFalloffWithDistance(t *testing.T) {
	p := DefaultParams()
	p.RepulsionRadius = 200
	p.SmoothingFactor = 0
	f, err := New(Vec2{X: 1920, Y: 1080}, 60, p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer f.Close()

	agent := Vec2{X: 630, Y: 570}
	f.Recalculate([]Vec2{agent}, testGoal(), nil)

	near := f.CellCongestion(11, 9).Len()
	mid := f.CellCongestion(12, 9).Len()
	far := f.CellCongestion(13, 9).Len()
	if !(near > mid && mid > far && far > 0) {
		t.Errorf("repulsion should weaken with distance, got %f, %f, %f", near, mid, far)
	}
}

func TestCongestionSuperposition(t *testing.T) {
	one := newTestField(t, 60)
	two := newTestField(t, 60)

	a := Vec2{X: 630, Y: 570}
	b := Vec2{X: 640, Y: 560}
	one.Recalculate([]Vec2{a}, testGoal(), nil)
	two.Recalculate([]Vec2{a, b}, testGoal(), nil)

	// Both agents push the probe cell the same general way, so the pair
	// must crowd it strictly harder than either alone.
	single := one.CellCongestion(11, 9).Len()
	pair := two.CellCongestion(11, 9).Len()
	if pair <= single {
		t.Errorf("two agents should outweigh one: pair %f, single %f", pair, single)
	}
}

func TestCongestionCancelsBetweenSymmetricAgents(t *testing.T) {
	f := newTestField(t, 60)
	center := f.CellCenter(10, 9)
	agents := []Vec2{
		{X: center.X - 50, Y: center.Y},
		{X: center.X + 50, Y: center.Y},
	}
	f.Recalculate(agents, testGoal(), nil)

	mid := f.CellCongestion(10, 9)
	if mid.Len() > 1e-4 {
		t.Errorf("opposing pushes should cancel at the midpoint, got (%f, %f)", mid.X, mid.Y)
	}
}

func TestScatterAndGatherAgree(t *testing.T) {
	a := newTestField(t, 60)
	b := newTestField(t, 60)
	agents := gridAgents(40)

	// Drive both accumulation paths directly on raw buffers.
	a.index.rebuild(agents)
	a.runRows(a.gatherChunk)
	b.scatterCongestion(agents)

	opt := cmpopts.EquateApprox(0, 1e-3)
	if diff := cmp.Diff(a.congestion, b.congestion, opt); diff != "" {
		t.Errorf("gather and scatter paths disagree (-gather +scatter):\n%s", diff)
	}
}

func TestCongestionDecaysAfterAgentsLeave(t *testing.T) {
	f := newTestField(t, 60)
	agent := Vec2{X: 630, Y: 570}

	// Build up congestion, then run empty frames.
	for i := 0; i < 10; i++ {
		f.Recalculate([]Vec2{agent}, testGoal(), nil)
	}
	before := f.CellCongestion(11, 9).Len()
	if before == 0 {
		t.Fatal("expected congestion near agent before decay")
	}

	f.Recalculate(nil, testGoal(), nil)
	after := f.CellCongestion(11, 9).Len()

	// With no new contribution each frame retains SmoothingFactor of
	// the previous value.
	want := before * f.Params().SmoothingFactor
	if math.Abs(float64(after-want)) > 1e-4 {
		t.Errorf("expected decay to %f, got %f", want, after)
	}

	for i := 0; i < 60; i++ {
		f.Recalculate(nil, testGoal(), nil)
	}
	if residual := f.CellCongestion(11, 9).Len(); residual > 1e-6 {
		t.Errorf("congestion should decay to nothing, got %f", residual)
	}
}

func TestParallelGatherMatchesSerial(t *testing.T) {
	// Grid large enough that Recalculate takes the worker-pool path.
	par := newTestField(t, 16)
	ser := newTestField(t, 16)
	agents := gridAgents(64)

	p := par.Params()
	p.SmoothingFactor = 0
	if err := par.SetParams(p); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	par.Recalculate(agents, testGoal(), nil)

	ser.index.rebuild(agents)
	ser.gatherChunk(0, 0, ser.Height())

	for y := 0; y < par.Height(); y++ {
		for x := 0; x < par.Width(); x++ {
			if par.CellCongestion(x, y) != ser.congestion[ser.idx(x, y)] {
				t.Fatalf("parallel and serial gather differ at cell (%d, %d)", x, y)
			}
		}
	}
}

func TestCombinedSmoothingConvergesMonotonically(t *testing.T) {
	f := newTestField(t, 60)
	goalA := testGoal()
	goalB := GoalArea{X: 1920, MinY: 1000, MaxY: 1080}

	// Settle on the first goal, then switch and watch one cell turn.
	for i := 0; i < 40; i++ {
		f.Recalculate(nil, goalA, nil)
	}
	target := goalDirection(f.CellCenter(5, 5), goalB)

	prev := f.CellFlow(5, 5).Y
	for i := 0; i < 40; i++ {
		f.Recalculate(nil, goalB, nil)
		y := f.CellFlow(5, 5).Y
		if y < prev-1e-5 {
			t.Fatalf("tick %d: y component moved away from target (%f -> %f)", i, prev, y)
		}
		if y > target.Y+1e-4 {
			t.Fatalf("tick %d: y component overshot target %f, got %f", i, target.Y, y)
		}
		prev = y
	}
	if math.Abs(float64(prev-target.Y)) > 1e-3 {
		t.Errorf("flow did not converge to target: want y %f, got %f", target.Y, prev)
	}
}

func TestCrowdedCellOverridesGoalPull(t *testing.T) {
	p := DefaultParams()
	p.SmoothingFactor = 0
	f, err := New(Vec2{X: 1920, Y: 1080}, 60, p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer f.Close()

	// A dense cluster just right of the probe cell pushes its flow
	// leftward against the goal direction.
	center := f.CellCenter(10, 9)
	var agents []Vec2
	for i := 0; i < 12; i++ {
		agents = append(agents, Vec2{X: center.X + 40, Y: center.Y + float32(i-6)})
	}
	f.Recalculate(agents, testGoal(), nil)

	if cong := f.CellCongestion(10, 9); cong.LenSq() <= congestionDominanceSq {
		t.Fatalf("cluster should push congestion past dominance, got %f", cong.Len())
	}
	if v := f.CellFlow(10, 9); v.X >= 0 {
		t.Errorf("crowded cell flow should turn against the goal, got (%f, %f)", v.X, v.Y)
	}
}
