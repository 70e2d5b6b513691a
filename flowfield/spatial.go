package flowfield

import "math"

// minBucketSize floors the bucket edge length so a tiny repulsion
// radius cannot explode the bucket count.
const minBucketSize = 1.0

// agentIndex buckets agent positions for radius queries during the
// gather congestion pass. The bucket size tracks the repulsion radius
// and is independent of the grid cell size. Rebuilt from scratch every
// tick; buckets keep their capacity across rebuilds.
type agentIndex struct {
	worldSize  Vec2
	bucketSize float32
	cols       int
	rows       int
	buckets    [][]Vec2
}

func newAgentIndex(worldSize Vec2, bucketSize float32) *agentIndex {
	idx := &agentIndex{worldSize: worldSize}
	idx.setBucketSize(bucketSize)
	return idx
}

// setBucketSize resizes the bucket grid. Contents are discarded; the
// next rebuild repopulates.
func (idx *agentIndex) setBucketSize(size float32) {
	if size < minBucketSize {
		size = minBucketSize
	}
	idx.bucketSize = size
	idx.cols = int(math.Ceil(float64(idx.worldSize.X / size)))
	if idx.cols < 1 {
		idx.cols = 1
	}
	idx.rows = int(math.Ceil(float64(idx.worldSize.Y / size)))
	if idx.rows < 1 {
		idx.rows = 1
	}
	idx.buckets = make([][]Vec2, idx.cols*idx.rows)
}

// bucketCoords maps a position to bucket coordinates, clamped so
// positions outside the world land in edge buckets.
func (idx *agentIndex) bucketCoords(p Vec2) (int, int) {
	bx := int(p.X / idx.bucketSize)
	if bx < 0 {
		bx = 0
	} else if bx >= idx.cols {
		bx = idx.cols - 1
	}
	by := int(p.Y / idx.bucketSize)
	if by < 0 {
		by = 0
	} else if by >= idx.rows {
		by = idx.rows - 1
	}
	return bx, by
}

// rebuild clears all buckets and inserts the agent positions in input
// order.
func (idx *agentIndex) rebuild(agents []Vec2) {
	for i := range idx.buckets {
		idx.buckets[i] = idx.buckets[i][:0]
	}
	for _, a := range agents {
		bx, by := idx.bucketCoords(a)
		i := bx + by*idx.cols
		idx.buckets[i] = append(idx.buckets[i], a)
	}
}

// queryInto appends the contents of every bucket overlapping the
// radius around center. This is a broad phase: callers apply the exact
// distance check. Buckets are visited in row-major order and agents in
// insertion order, keeping accumulation deterministic.
func (idx *agentIndex) queryInto(dst []Vec2, center Vec2, radius float32) []Vec2 {
	bucketRadius := int(radius/idx.bucketSize) + 1
	cx, cy := idx.bucketCoords(center)

	x0 := cx - bucketRadius
	if x0 < 0 {
		x0 = 0
	}
	x1 := cx + bucketRadius
	if x1 >= idx.cols {
		x1 = idx.cols - 1
	}
	y0 := cy - bucketRadius
	if y0 < 0 {
		y0 = 0
	}
	y1 := cy + bucketRadius
	if y1 >= idx.rows {
		y1 = idx.rows - 1
	}

	for by := y0; by <= y1; by++ {
		row := by * idx.cols
		for bx := x0; bx <= x1; bx++ {
			dst = append(dst, idx.buckets[row+bx]...)
		}
	}
	return dst
}
