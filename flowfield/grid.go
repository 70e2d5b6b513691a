package flowfield

import "math"

// gridDim returns the cell count covering a world extent. The extra
// cell keeps the far world edge inside the grid so edge samples
// interpolate instead of extrapolating.
func gridDim(extent, cellSize float32) int {
	return int(math.Ceil(float64(extent/cellSize))) + 1
}

// idx maps cell coordinates to the flat array index.
func (f *Field) idx(x, y int) int {
	return x + y*f.width
}

// worldToGrid floors a world position to its containing cell.
// No clamping: callers that may receive out-of-bounds positions clamp
// the resulting indices themselves.
func (f *Field) worldToGrid(p Vec2) (int, int) {
	return int(math.Floor(float64(p.X / f.cellSize))),
		int(math.Floor(float64(p.Y / f.cellSize)))
}

// gridToWorld returns the top-left corner of a cell.
func (f *Field) gridToWorld(x, y int) Vec2 {
	return Vec2{X: float32(x) * f.cellSize, Y: float32(y) * f.cellSize}
}

// CellCenter returns the world-space center of a cell.
func (f *Field) CellCenter(x, y int) Vec2 {
	half := f.cellSize * 0.5
	return Vec2{
		X: float32(x)*f.cellSize + half,
		Y: float32(y)*f.cellSize + half,
	}
}

// clampCellX limits a cell x-coordinate to the grid.
func (f *Field) clampCellX(x int) int {
	if x < 0 {
		return 0
	}
	if x >= f.width {
		return f.width - 1
	}
	return x
}

// clampCellY limits a cell y-coordinate to the grid.
func (f *Field) clampCellY(y int) int {
	if y < 0 {
		return 0
	}
	if y >= f.height {
		return f.height - 1
	}
	return y
}
