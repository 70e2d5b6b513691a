// Package renderer provides rendering utilities.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/throng/camera"
	"github.com/pthm-cable/throng/flowfield"
	"github.com/pthm-cable/throng/scenario"
)

// minArrowSpacing is the smallest on-screen cell size, in pixels,
// drawn without skipping cells. Below it arrows would overlap.
const minArrowSpacing = 12

// FieldRenderer draws the flow field layers, the scenario geometry,
// and the agents. All drawing goes through the camera transform.
type FieldRenderer struct {
	cam *camera.Camera
}

// NewFieldRenderer creates a renderer bound to the given camera.
func NewFieldRenderer(cam *camera.Camera) *FieldRenderer {
	return &FieldRenderer{cam: cam}
}

// DrawFlowVectors draws one arrow per visible cell showing the
// combined flow direction.
func (r *FieldRenderer) DrawFlowVectors(field *flowfield.Field) {
	r.drawCellVectors(field, field.CellFlow, rl.Color{R: 120, G: 200, B: 255, A: 180})
}

// DrawStaticVectors draws the cached goal-and-obstacle layer.
func (r *FieldRenderer) DrawStaticVectors(field *flowfield.Field) {
	r.drawCellVectors(field, field.CellStatic, rl.Color{R: 140, G: 255, B: 160, A: 160})
}

func (r *FieldRenderer) drawCellVectors(field *flowfield.Field, cell func(x, y int) flowfield.Vec2, color rl.Color) {
	cellSize := field.CellSize()
	x0, y0, x1, y1 := r.visibleCells(field)

	// Skip cells when zoomed out so arrows stay readable.
	stride := 1
	for cellSize*r.cam.Zoom*float32(stride) < minArrowSpacing {
		stride *= 2
	}

	arrowLen := cellSize * 0.4 * r.cam.Zoom * float32(stride)

	for gy := y0; gy <= y1; gy += stride {
		for gx := x0; gx <= x1; gx += stride {
			v := cell(gx, gy)
			center := flowfield.Vec2{
				X: (float32(gx) + 0.5) * cellSize,
				Y: (float32(gy) + 0.5) * cellSize,
			}
			sx, sy := r.cam.WorldToScreen(center.X, center.Y)
			drawArrow(sx, sy, v.X, v.Y, arrowLen, color)
		}
	}
}

// DrawCongestionHeatmap tints cells by congestion magnitude. Cells
// with no crowd pressure stay transparent.
func (r *FieldRenderer) DrawCongestionHeatmap(field *flowfield.Field) {
	cellSize := field.CellSize()
	x0, y0, x1, y1 := r.visibleCells(field)

	screenCell := cellSize * r.cam.Zoom

	for gy := y0; gy <= y1; gy++ {
		for gx := x0; gx <= x1; gx++ {
			mag := field.CellCongestion(gx, gy).Len()
			if mag < 0.05 {
				continue
			}

			// Saturate around magnitude 2 (strong avoidance pressure)
			heat := mag / 2
			if heat > 1 {
				heat = 1
			}

			sx, sy := r.cam.WorldToScreen(float32(gx)*cellSize, float32(gy)*cellSize)
			color := rl.Color{
				R: 255,
				G: uint8(180 * (1 - heat)),
				B: 40,
				A: uint8(30 + heat*90),
			}
			rl.DrawRectangle(int32(sx), int32(sy), int32(screenCell)+1, int32(screenCell)+1, color)
		}
	}
}

// DrawGridLines draws cell boundaries over the visible area.
func (r *FieldRenderer) DrawGridLines(field *flowfield.Field) {
	cellSize := field.CellSize()
	world := field.WorldSize()
	color := rl.Color{R: 255, G: 255, B: 255, A: 24}

	for x := float32(0); x <= world.X; x += cellSize {
		sx0, sy0 := r.cam.WorldToScreen(x, 0)
		_, sy1 := r.cam.WorldToScreen(x, world.Y)
		rl.DrawLineV(rl.Vector2{X: sx0, Y: sy0}, rl.Vector2{X: sx0, Y: sy1}, color)
	}
	for y := float32(0); y <= world.Y; y += cellSize {
		sx0, sy0 := r.cam.WorldToScreen(0, y)
		sx1, _ := r.cam.WorldToScreen(world.X, y)
		rl.DrawLineV(rl.Vector2{X: sx0, Y: sy0}, rl.Vector2{X: sx1, Y: sy0}, color)
	}
}

// DrawScenario draws the obstacle boxes and the goal segment.
func (r *FieldRenderer) DrawScenario(scn scenario.Scenario) {
	for _, ob := range scn.Obstacles {
		sx, sy := r.cam.WorldToScreen(ob.X, ob.Y)
		w := ob.W * r.cam.Zoom
		h := ob.H * r.cam.Zoom
		rl.DrawRectangle(int32(sx), int32(sy), int32(w), int32(h), rl.Color{R: 90, G: 90, B: 110, A: 255})
		rl.DrawRectangleLines(int32(sx), int32(sy), int32(w), int32(h), rl.Color{R: 160, G: 160, B: 190, A: 255})
	}

	gx0, gy0 := r.cam.WorldToScreen(scn.Goal.X, scn.Goal.MinY)
	gx1, gy1 := r.cam.WorldToScreen(scn.Goal.X, scn.Goal.MaxY)
	rl.DrawLineEx(
		rl.Vector2{X: gx0, Y: gy0},
		rl.Vector2{X: gx1, Y: gy1},
		4,
		rl.Color{R: 80, G: 255, B: 120, A: 255},
	)
}

// DrawAgents draws every walker as a triangle oriented along its
// velocity, culled against the camera view.
func (r *FieldRenderer) DrawAgents(each func(fn func(x, y, vx, vy, radius float32))) {
	each(func(x, y, vx, vy, radius float32) {
		if !r.cam.IsVisible(x, y, radius*2) {
			return
		}

		heading := float32(math.Atan2(float64(vy), float64(vx)))
		sx, sy := r.cam.WorldToScreen(x, y)
		drawOrientedTriangle(sx, sy, heading, radius*r.cam.Zoom, rl.Color{R: 255, G: 220, B: 120, A: 230})
	})
}

// visibleCells returns the inclusive cell range covered by the camera
// view, clamped to the grid.
func (r *FieldRenderer) visibleCells(field *flowfield.Field) (x0, y0, x1, y1 int) {
	minX, minY, maxX, maxY := r.cam.VisibleWorldBounds()
	cellSize := field.CellSize()

	x0 = clampInt(int(minX/cellSize), 0, field.Width()-1)
	y0 = clampInt(int(minY/cellSize), 0, field.Height()-1)
	x1 = clampInt(int(maxX/cellSize), 0, field.Width()-1)
	y1 = clampInt(int(maxY/cellSize), 0, field.Height()-1)
	return
}

// drawArrow draws a line with a small head, centered on (sx, sy),
// pointing along (dx, dy).
func drawArrow(sx, sy, dx, dy, length float32, color rl.Color) {
	tipX := sx + dx*length/2
	tipY := sy + dy*length/2
	tailX := sx - dx*length/2
	tailY := sy - dy*length/2

	rl.DrawLineV(rl.Vector2{X: tailX, Y: tailY}, rl.Vector2{X: tipX, Y: tipY}, color)

	// Head: two short lines angled back from the tip
	heading := math.Atan2(float64(dy), float64(dx))
	headLen := float64(length) * 0.3
	for _, a := range [2]float64{heading + math.Pi*0.8, heading - math.Pi*0.8} {
		hx := tipX + float32(math.Cos(a)*headLen)
		hy := tipY + float32(math.Sin(a)*headLen)
		rl.DrawLineV(rl.Vector2{X: tipX, Y: tipY}, rl.Vector2{X: hx, Y: hy}, color)
	}
}

// drawOrientedTriangle draws a triangle pointing in the heading direction.
func drawOrientedTriangle(x, y, heading, radius float32, color rl.Color) {
	cos := float32(math.Cos(float64(heading)))
	sin := float32(math.Sin(float64(heading)))

	// Front point
	frontX := x + cos*radius*1.5
	frontY := y + sin*radius*1.5

	// Back left
	backAngle := heading + math.Pi*0.8
	backLeftX := x + float32(math.Cos(float64(backAngle)))*radius
	backLeftY := y + float32(math.Sin(float64(backAngle)))*radius

	// Back right
	backAngle = heading - math.Pi*0.8
	backRightX := x + float32(math.Cos(float64(backAngle)))*radius
	backRightY := y + float32(math.Sin(float64(backAngle)))*radius

	v1 := rl.Vector2{X: frontX, Y: frontY}
	v2 := rl.Vector2{X: backLeftX, Y: backLeftY}
	v3 := rl.Vector2{X: backRightX, Y: backRightY}

	// DrawTriangle requires counter-clockwise winding (v1, v3, v2)
	rl.DrawTriangle(v1, v3, v2, color)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
