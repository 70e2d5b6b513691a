// Package flowfield implements a grid-based crowd navigation field.
// Each cell carries a unit direction vector blending cached goal and
// obstacle guidance with per-frame crowd congestion; agents steer by
// sampling the field at their position.
package flowfield

import "fmt"

// GoalArea is a vertical segment agents converge on, at world
// x-coordinate X spanning [MinY, MaxY].
type GoalArea struct {
	X    float32
	MinY float32
	MaxY float32
}

// Obstacle is an axis-aligned box. Pos is the top-left corner.
type Obstacle struct {
	Pos  Vec2
	Size Vec2
}

func (o Obstacle) center() Vec2 {
	return Vec2{X: o.Pos.X + o.Size.X*0.5, Y: o.Pos.Y + o.Size.Y*0.5}
}

// Params holds the tunable field parameters. Zero values are not
// usable; start from DefaultParams.
type Params struct {
	// Congestion repulsion between agents.
	RepulsionRadius   float32
	RepulsionStrength float32

	// Obstacle repulsion in the static layer.
	ObstacleRepulsionRadius   float32
	ObstacleRepulsionStrength float32

	// Side-dependent obstacle scaling. Front faces the approach
	// direction (negative x of the box), top/bottom are the band above
	// and below, back is the far side.
	FrontMultiplier     float32
	TopBottomMultiplier float32
	BackMultiplier      float32

	// GoalWeight balances goal attraction against repulsion.
	GoalWeight float32

	// MinRepulsionDistance is the dead zone below which repulsion
	// contributions are skipped, guarding near-zero distances.
	MinRepulsionDistance float32

	// SmoothingFactor in [0,1) is the per-tick retention of the
	// previous frame. 0 disables temporal smoothing.
	SmoothingFactor float32
}

// DefaultParams returns parameters tuned for human-scale agents on a
// grid with cells around 1.5-2x the agent radius.
func DefaultParams() Params {
	return Params{
		RepulsionRadius:           80,
		RepulsionStrength:         1.2,
		ObstacleRepulsionRadius:   150,
		ObstacleRepulsionStrength: 2.0,
		FrontMultiplier:           1.5,
		TopBottomMultiplier:       0.8,
		BackMultiplier:            0.3,
		GoalWeight:                1.0,
		MinRepulsionDistance:      4,
		SmoothingFactor:           0.3,
	}
}

// Validate checks parameter ranges. Returns an error naming the first
// offending field.
func (p Params) Validate() error {
	if p.RepulsionRadius <= 0 {
		return fmt.Errorf("repulsion_radius must be positive, got %v", p.RepulsionRadius)
	}
	if p.RepulsionStrength < 0 {
		return fmt.Errorf("repulsion_strength must be non-negative, got %v", p.RepulsionStrength)
	}
	if p.ObstacleRepulsionRadius <= 0 {
		return fmt.Errorf("obstacle_repulsion_radius must be positive, got %v", p.ObstacleRepulsionRadius)
	}
	if p.ObstacleRepulsionStrength < 0 {
		return fmt.Errorf("obstacle_repulsion_strength must be non-negative, got %v", p.ObstacleRepulsionStrength)
	}
	if p.FrontMultiplier < 0 || p.TopBottomMultiplier < 0 || p.BackMultiplier < 0 {
		return fmt.Errorf("repulsion multipliers must be non-negative, got front=%v top_bottom=%v back=%v",
			p.FrontMultiplier, p.TopBottomMultiplier, p.BackMultiplier)
	}
	if p.GoalWeight < 0 {
		return fmt.Errorf("goal_weight must be non-negative, got %v", p.GoalWeight)
	}
	if p.MinRepulsionDistance < 0 {
		return fmt.Errorf("min_repulsion_distance must be non-negative, got %v", p.MinRepulsionDistance)
	}
	if p.MinRepulsionDistance >= p.RepulsionRadius {
		return fmt.Errorf("min_repulsion_distance %v must be below repulsion_radius %v",
			p.MinRepulsionDistance, p.RepulsionRadius)
	}
	if p.MinRepulsionDistance >= p.ObstacleRepulsionRadius {
		return fmt.Errorf("min_repulsion_distance %v must be below obstacle_repulsion_radius %v",
			p.MinRepulsionDistance, p.ObstacleRepulsionRadius)
	}
	if p.SmoothingFactor < 0 || p.SmoothingFactor >= 1 {
		return fmt.Errorf("smoothing_factor must be in [0,1), got %v", p.SmoothingFactor)
	}
	return nil
}

// Field is a crowd flow field over a fixed grid. One writer per tick:
// Recalculate must not run concurrently with itself or with sampling.
// Between recalculations any number of readers may sample.
type Field struct {
	width     int
	height    int
	cellSize  float32
	worldSize Vec2
	params    Params

	// Per-cell layers, indexed x + y*width.
	static         []Vec2
	congestion     []Vec2
	prevCongestion []Vec2
	combined       []Vec2
	prevCombined   []Vec2

	index *agentIndex
	pool  *workerPool

	// Static-layer change detection.
	cachedGoal      GoalArea
	cachedObstacles []Obstacle
	staticValid     bool
	staticRebuilds  int
}

// New creates a field covering worldSize with square cells of
// cellSize world units. The grid gains one extra cell per axis so the
// far edge stays inside the sampled area.
func New(worldSize Vec2, cellSize float32, params Params) (*Field, error) {
	if worldSize.X <= 0 || worldSize.Y <= 0 {
		return nil, fmt.Errorf("world size must be positive, got %vx%v", worldSize.X, worldSize.Y)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell_size must be positive, got %v", cellSize)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	f := &Field{
		width:     gridDim(worldSize.X, cellSize),
		height:    gridDim(worldSize.Y, cellSize),
		cellSize:  cellSize,
		worldSize: worldSize,
		params:    params,
	}

	n := f.width * f.height
	f.static = make([]Vec2, n)
	f.congestion = make([]Vec2, n)
	f.prevCongestion = make([]Vec2, n)
	f.combined = make([]Vec2, n)
	f.prevCombined = make([]Vec2, n)

	// Rightward defaults keep the unit-output contract before the
	// first recalculation.
	right := Vec2{X: 1}
	for i := 0; i < n; i++ {
		f.static[i] = right
		f.combined[i] = right
		f.prevCombined[i] = right
	}

	f.index = newAgentIndex(worldSize, params.RepulsionRadius)
	f.pool = newWorkerPool(f.height)

	return f, nil
}

// Recalculate runs one field update: refresh the static layer when the
// goal or obstacles changed, rebuild the agent index, accumulate and
// smooth congestion, and combine the layers. The inputs are treated as
// an immutable snapshot; the caller must not mutate them mid-call.
func (f *Field) Recalculate(agents []Vec2, goal GoalArea, obstacles []Obstacle) {
	if f.staticInputsChanged(goal, obstacles) {
		f.rebuildStatic(goal, obstacles)
		f.rememberStaticInputs(goal, obstacles)
	}
	f.index.rebuild(agents)
	f.updateCongestion(agents)
	f.updateCombined()
}

// Params returns the current parameters.
func (f *Field) Params() Params {
	return f.params
}

// SetParams replaces the parameters. The static layer rebuilds on the
// next Recalculate since the obstacle shaping depends on them.
func (f *Field) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	f.params = params
	f.staticValid = false
	f.index.setBucketSize(params.RepulsionRadius)
	return nil
}

// Width returns the grid width in cells.
func (f *Field) Width() int { return f.width }

// Height returns the grid height in cells.
func (f *Field) Height() int { return f.height }

// CellSize returns the cell edge length in world units.
func (f *Field) CellSize() float32 { return f.cellSize }

// WorldSize returns the covered world extent.
func (f *Field) WorldSize() Vec2 { return f.worldSize }

// CellFlow returns the combined flow vector of a cell, or zero when
// the indices are out of range.
func (f *Field) CellFlow(x, y int) Vec2 {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return Vec2{}
	}
	return f.combined[f.idx(x, y)]
}

// CellStatic returns the static-layer vector of a cell, or zero when
// the indices are out of range.
func (f *Field) CellStatic(x, y int) Vec2 {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return Vec2{}
	}
	return f.static[f.idx(x, y)]
}

// CellCongestion returns the smoothed congestion vector of a cell, or
// zero when the indices are out of range. Unlike flow vectors its
// magnitude is meaningful: it carries crowding intensity.
func (f *Field) CellCongestion(x, y int) Vec2 {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return Vec2{}
	}
	return f.congestion[f.idx(x, y)]
}

// StaticRebuilds returns how many times the static layer has been
// recomputed. Unchanged goal and obstacle inputs must not raise it.
func (f *Field) StaticRebuilds() int {
	return f.staticRebuilds
}

// Close stops the worker pool. The field must not be used afterwards.
func (f *Field) Close() {
	f.pool.stop()
}
