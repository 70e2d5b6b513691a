package flowfield

import "math"

// gatherAgentThreshold is the agent count at which the congestion pass
// switches from the per-agent scatter loop to the indexed per-cell
// gather loop. The two produce equal results within float tolerance;
// picking the mode by input size alone keeps runs reproducible across
// instances.
const gatherAgentThreshold = 32

// updateCongestion rebuilds the congestion layer from agent positions
// and smooths it against the previous frame.
func (f *Field) updateCongestion(agents []Vec2) {
	// Snapshot: the previous frame moves aside, the raw buffer zeroes.
	f.congestion, f.prevCongestion = f.prevCongestion, f.congestion
	clear(f.congestion)

	if len(agents) >= gatherAgentThreshold {
		f.runRows(f.gatherChunk)
	} else {
		f.scatterCongestion(agents)
	}

	if f.params.SmoothingFactor > 0 {
		f.runRows(f.smoothCongestionChunk)
	}
}

// scatterCongestion adds each agent's contribution to the band of
// cells within its repulsion radius. Bands of nearby agents overlap,
// so this loop stays single threaded.
func (f *Field) scatterCongestion(agents []Vec2) {
	band := int(math.Ceil(float64(f.params.RepulsionRadius / f.cellSize)))

	for _, a := range agents {
		ax, ay := f.worldToGrid(a)
		x0 := f.clampCellX(ax - band)
		x1 := f.clampCellX(ax + band)
		y0 := f.clampCellY(ay - band)
		y1 := f.clampCellY(ay + band)

		for y := y0; y <= y1; y++ {
			row := y * f.width
			for x := x0; x <= x1; x++ {
				contrib := f.agentContribution(f.CellCenter(x, y), a)
				if contrib.IsZero() {
					continue
				}
				f.congestion[row+x] = f.congestion[row+x].Add(contrib)
			}
		}
	}
}

// gatherChunk computes raw congestion for rows [y0,y1) from the bucket
// index. Cells write only their own slot, so row ranges parallelize.
func (f *Field) gatherChunk(worker, y0, y1 int) {
	scratch := &f.pool.scratches[worker]
	radius := f.params.RepulsionRadius

	for y := y0; y < y1; y++ {
		row := y * f.width
		for x := 0; x < f.width; x++ {
			c := f.CellCenter(x, y)
			scratch.neighbors = f.index.queryInto(scratch.neighbors[:0], c, radius)

			var sum Vec2
			for _, a := range scratch.neighbors {
				sum = sum.Add(f.agentContribution(c, a))
			}
			f.congestion[row+x] = sum
		}
	}
}

// agentContribution is the repulsion one agent adds to a cell center:
// radially outward, strongest at MinRepulsionDistance, zero at
// RepulsionRadius, squared falloff. Distances outside that range
// contribute nothing.
func (f *Field) agentContribution(c, agent Vec2) Vec2 {
	p := &f.params
	delta := c.Sub(agent)
	d := delta.Len()
	if d > p.RepulsionRadius || d < p.MinRepulsionDistance {
		return Vec2{}
	}

	falloff := 1 - clamp01((d-p.MinRepulsionDistance)/(p.RepulsionRadius-p.MinRepulsionDistance))
	return delta.Normalize().Scale(p.RepulsionStrength * falloff * falloff)
}

// smoothCongestionChunk lerps rows [y0,y1) from the previous frame
// toward the raw accumulation. Congestion keeps its magnitude; it is
// never normalized.
func (f *Field) smoothCongestionChunk(_, y0, y1 int) {
	k := 1 - f.params.SmoothingFactor

	for y := y0; y < y1; y++ {
		row := y * f.width
		for x := 0; x < f.width; x++ {
			i := row + x
			f.congestion[i] = f.prevCongestion[i].Lerp(f.congestion[i], k)
		}
	}
}
