package flowfield

// obstacleDominanceSq is the squared repulsion-sum magnitude past
// which obstacles locally outweigh goal attraction.
const obstacleDominanceSq = 1.0

// staticInputsChanged reports whether the goal area or obstacle list
// differs from the inputs of the last rebuild.
func (f *Field) staticInputsChanged(goal GoalArea, obstacles []Obstacle) bool {
	if !f.staticValid {
		return true
	}
	if goal != f.cachedGoal {
		return true
	}
	if len(obstacles) != len(f.cachedObstacles) {
		return true
	}
	for i := range obstacles {
		if obstacles[i] != f.cachedObstacles[i] {
			return true
		}
	}
	return false
}

// rememberStaticInputs caches a copy of the inputs for change
// detection. The copy decouples the cache from caller-owned slices.
func (f *Field) rememberStaticInputs(goal GoalArea, obstacles []Obstacle) {
	f.cachedGoal = goal
	f.cachedObstacles = append(f.cachedObstacles[:0], obstacles...)
	f.staticValid = true
}

// rebuildStatic recomputes the full static layer.
func (f *Field) rebuildStatic(goal GoalArea, obstacles []Obstacle) {
	f.staticRebuilds++
	f.runRows(func(_, y0, y1 int) {
		f.staticChunk(goal, obstacles, y0, y1)
	})
}

// staticChunk computes rows [y0,y1) of the static layer. Cells write
// only their own slot.
func (f *Field) staticChunk(goal GoalArea, obstacles []Obstacle, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < f.width; x++ {
			c := f.CellCenter(x, y)
			f.static[f.idx(x, y)] = f.staticCell(c, goal, obstacles)
		}
	}
}

// staticCell blends goal attraction with summed obstacle repulsion for
// one cell center.
func (f *Field) staticCell(c Vec2, goal GoalArea, obstacles []Obstacle) Vec2 {
	goalDir := goalDirection(c, goal)

	var repulsion Vec2
	for i := range obstacles {
		repulsion = repulsion.Add(f.obstacleRepulsion(c, obstacles[i]))
	}

	weight := f.params.GoalWeight
	if repulsion.LenSq() > obstacleDominanceSq {
		// Obstacles dominate steering near themselves.
		weight *= 0.5
	}

	combined := goalDir.Scale(weight).Add(repulsion).Normalize()
	if combined.IsZero() {
		return goalDir
	}
	return combined
}

// goalDirection points from a cell center to the closest point on the
// goal segment. A cell sitting on the segment falls back to rightward.
func goalDirection(c Vec2, goal GoalArea) Vec2 {
	closest := Vec2{X: goal.X, Y: clampFloat(c.Y, goal.MinY, goal.MaxY)}
	dir := closest.Sub(c).Normalize()
	if dir.IsZero() {
		return Vec2{X: 1}
	}
	return dir
}

// obstacleRepulsion computes a single obstacle's contribution at cell
// center c.
func (f *Field) obstacleRepulsion(c Vec2, ob Obstacle) Vec2 {
	p := &f.params
	left := ob.Pos.X
	top := ob.Pos.Y
	right := left + ob.Size.X
	bottom := top + ob.Size.Y

	if c.X >= left && c.X <= right && c.Y >= top && c.Y <= bottom {
		// Inside the box: push straight out from the center, hard.
		dir := c.Sub(ob.center()).Normalize()
		if dir.IsZero() {
			dir = Vec2{X: 1}
		}
		return dir.Scale(2 * p.ObstacleRepulsionStrength)
	}

	closest := Vec2{
		X: clampFloat(c.X, left, right),
		Y: clampFloat(c.Y, top, bottom),
	}
	delta := c.Sub(closest)
	d := delta.Len()
	if d > p.ObstacleRepulsionRadius || d < p.MinRepulsionDistance {
		return Vec2{}
	}

	// Strongest at the surface, zero at the radius, cubed for a sharp
	// near-surface response.
	falloff := 1 - clamp01((d-p.MinRepulsionDistance)/(p.ObstacleRepulsionRadius-p.MinRepulsionDistance))
	force := falloff * falloff * falloff

	// Top/bottom band first: its x range stretches 20% of the box
	// width past both edges, so diagonal cells take the vertical push
	// over the front redirect.
	margin := ob.Size.X * 0.2
	if (c.Y < top || c.Y > bottom) && c.X >= left-margin && c.X <= right+margin {
		return delta.Normalize().Scale(p.ObstacleRepulsionStrength * force * p.TopBottomMultiplier)
	}

	if c.X < left {
		return f.frontRedirect(c, ob, force)
	}

	// Behind: plain radial push, weakest side.
	return delta.Normalize().Scale(p.ObstacleRepulsionStrength * force * p.BackMultiplier)
}

// frontRedirect steers cells approaching the obstacle face around it
// instead of pushing them backward into oncoming flow. Up or down
// follows the cell's side of the box center; ties go up.
func (f *Field) frontRedirect(c Vec2, ob Obstacle, force float32) Vec2 {
	center := ob.center()
	vy := float32(1)
	if c.Y <= center.Y {
		vy = -1
	}
	dir := Vec2{X: 0.3, Y: vy}.Normalize()

	// The push doubles toward the vertical center of the face, where
	// flow would otherwise hit the box head on.
	var proximity float32
	if halfH := ob.Size.Y * 0.5; halfH > 0 {
		proximity = clamp01(1 - absf(c.Y-center.Y)/halfH)
	}

	return dir.Scale(f.params.ObstacleRepulsionStrength * force * f.params.FrontMultiplier * (1 + proximity))
}
