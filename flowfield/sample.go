package flowfield

// FlowVector samples the combined field at a world position with
// bilinear interpolation and returns a unit direction. Out-of-range
// positions clamp to the world rectangle; a degenerate interpolation
// falls back to rightward. Pure read: safe for concurrent callers
// between recalculations.
func (f *Field) FlowVector(pos Vec2) Vec2 {
	gx := clampFloat(pos.X, 0, f.worldSize.X) / f.cellSize
	gy := clampFloat(pos.Y, 0, f.worldSize.Y) / f.cellSize

	// Base cell, kept one short of the edge so the +1 neighbor always
	// exists. Edge queries replicate the last row/column through the
	// fractional offset saturating at 1.
	x0 := int(gx)
	if x0 > f.width-2 {
		x0 = f.width - 2
	}
	y0 := int(gy)
	if y0 > f.height-2 {
		y0 = f.height - 2
	}

	fx := clamp01(gx - float32(x0))
	fy := clamp01(gy - float32(y0))

	i := f.idx(x0, y0)
	v00 := f.combined[i]
	v10 := f.combined[i+1]
	v01 := f.combined[i+f.width]
	v11 := f.combined[i+f.width+1]

	top := v00.Lerp(v10, fx)
	bottom := v01.Lerp(v11, fx)
	dir := top.Lerp(bottom, fy).Normalize()
	if dir.IsZero() {
		return Vec2{X: 1}
	}
	return dir
}
