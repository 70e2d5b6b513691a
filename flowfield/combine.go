package flowfield

// congestionDominanceSq is the squared congestion magnitude past which
// crowding locally overrides static guidance.
const congestionDominanceSq = 1.0

// updateCombined rebuilds the combined layer from static and
// congestion, then smooths it against the previous frame.
func (f *Field) updateCombined() {
	// The previous frame's output becomes the smoothing reference.
	f.combined, f.prevCombined = f.prevCombined, f.combined
	f.runRows(f.combineChunk)
}

// combineChunk computes rows [y0,y1) of the combined layer. Cells
// write only their own slot.
func (f *Field) combineChunk(_, y0, y1 int) {
	k := 1 - f.params.SmoothingFactor

	for y := y0; y < y1; y++ {
		row := y * f.width
		for x := 0; x < f.width; x++ {
			i := row + x
			st := f.static[i]
			cong := f.congestion[i]

			weight := f.params.GoalWeight
			if cong.LenSq() > congestionDominanceSq {
				weight *= 0.7
			}

			combined := st.Scale(weight).Add(cong).Normalize()
			if combined.IsZero() {
				combined = st
			}

			// Smooth, then restore unit length: the lerp of two unit
			// vectors is sub-unit, and sampling expects unit cells.
			smoothed := f.prevCombined[i].Lerp(combined, k).Normalize()
			if smoothed.IsZero() {
				// Opposed vectors cancel mid-lerp; snap to the target.
				smoothed = combined
			}
			f.combined[i] = smoothed
		}
	}
}
