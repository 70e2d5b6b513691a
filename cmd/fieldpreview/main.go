// Static layer preview tool - interactive visualization with sliders.
//
// Left-click places an obstacle, right-click removes the obstacle under
// the cursor. Sliders adjust the obstacle repulsion parameters and the
// arrows update immediately.
//
// Usage: go run ./cmd/fieldpreview
package main

import (
	"fmt"
	"log"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/throng/flowfield"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30

	worldSize    = float32(1024)
	cellSize     = float32(32)
	obstacleSize = float32(128)
)

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Static Layer Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := flowfield.DefaultParams()

	goal := flowfield.GoalArea{X: worldSize, MinY: worldSize * 0.375, MaxY: worldSize * 0.625}
	obstacles := []flowfield.Obstacle{
		{
			Pos:  flowfield.Vec2{X: worldSize*0.5 - obstacleSize*0.5, Y: worldSize*0.5 - obstacleSize*0.5},
			Size: flowfield.Vec2{X: obstacleSize, Y: obstacleSize},
		},
	}

	field, err := flowfield.New(flowfield.Vec2{X: worldSize, Y: worldSize}, cellSize, params)
	if err != nil {
		log.Fatalf("failed to create field: %v", err)
	}
	defer field.Close()
	field.Recalculate(nil, goal, obstacles)

	needsRegen := false

	for !rl.WindowShouldClose() {
		// Mouse obstacle placement inside the preview area
		mouse := rl.GetMousePosition()
		if mouse.X >= 10 && mouse.X < 10+previewSize && mouse.Y >= 10 && mouse.Y < 10+previewSize {
			wx := (mouse.X - 10) / previewSize * worldSize
			wy := (mouse.Y - 10) / previewSize * worldSize
			if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
				obstacles = append(obstacles, flowfield.Obstacle{
					Pos:  flowfield.Vec2{X: wx - obstacleSize*0.5, Y: wy - obstacleSize*0.5},
					Size: flowfield.Vec2{X: obstacleSize, Y: obstacleSize},
				})
				needsRegen = true
			}
			if rl.IsMouseButtonPressed(rl.MouseRightButton) {
				for i, ob := range obstacles {
					if wx >= ob.Pos.X && wx <= ob.Pos.X+ob.Size.X &&
						wy >= ob.Pos.Y && wy <= ob.Pos.Y+ob.Size.Y {
						obstacles = append(obstacles[:i], obstacles[i+1:]...)
						needsRegen = true
						break
					}
				}
			}
		}

		if needsRegen {
			if err := field.SetParams(params); err == nil {
				field.Recalculate(nil, goal, obstacles)
			}
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		drawPreview(field, goal, obstacles)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Grid: %dx%d  Cell: %.0f  Obstacles: %d",
			field.Width(), field.Height(), field.CellSize(), len(obstacles)), 15, statsY, 16, rl.DarkGray)
		rl.DrawText("LMB: place obstacle  RMB: remove obstacle", 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Static Layer Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		params.ObstacleRepulsionRadius = paramSlider(&panelY, panelX, "Obstacle repulsion radius",
			params.ObstacleRepulsionRadius, 50, 400, "%.0f", &needsRegen)
		params.ObstacleRepulsionStrength = paramSlider(&panelY, panelX, "Obstacle repulsion strength",
			params.ObstacleRepulsionStrength, 0.5, 6, "%.2f", &needsRegen)
		params.FrontMultiplier = paramSlider(&panelY, panelX, "Front multiplier",
			params.FrontMultiplier, 0.5, 3, "%.2f", &needsRegen)
		params.TopBottomMultiplier = paramSlider(&panelY, panelX, "Top/bottom multiplier",
			params.TopBottomMultiplier, 0.2, 2, "%.2f", &needsRegen)
		params.BackMultiplier = paramSlider(&panelY, panelX, "Back multiplier",
			params.BackMultiplier, 0.05, 1, "%.2f", &needsRegen)
		params.GoalWeight = paramSlider(&panelY, panelX, "Goal weight",
			params.GoalWeight, 0.3, 3, "%.2f", &needsRegen)

		panelY += 10
		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Clear Obstacles") {
			obstacles = obstacles[:0]
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = flowfield.DefaultParams()
			needsRegen = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := paramsYAML(params)
		for _, line := range splitLines(yaml) {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// paramSlider draws a labeled slider row and advances panelY.
func paramSlider(panelY *float32, panelX float32, label string, value, min, max float32, valueFmt string, changed *bool) float32 {
	rl.DrawText(label, int32(panelX), int32(*panelY), 14, rl.Gray)
	*panelY += 18
	newValue := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: *panelY, Width: float32(panelWidth - 80), Height: 20},
		fmt.Sprintf(valueFmt, min), fmt.Sprintf(valueFmt, max),
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf(valueFmt, value), int32(panelX+float32(panelWidth-70)), int32(*panelY+2), 16, rl.DarkGray)
	*panelY += 35
	if newValue != value {
		*changed = true
	}
	return newValue
}

func paramsYAML(p flowfield.Params) string {
	return fmt.Sprintf(`field:
  obstacle_repulsion_radius: %.0f
  obstacle_repulsion_strength: %.2f
  front_multiplier: %.2f
  top_bottom_multiplier: %.2f
  back_multiplier: %.2f
  goal_weight: %.2f`,
		p.ObstacleRepulsionRadius, p.ObstacleRepulsionStrength,
		p.FrontMultiplier, p.TopBottomMultiplier, p.BackMultiplier, p.GoalWeight)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

// drawPreview renders the static layer arrows, obstacles and goal into
// the preview rectangle.
func drawPreview(field *flowfield.Field, goal flowfield.GoalArea, obstacles []flowfield.Obstacle) {
	scale := float32(previewSize) / worldSize
	origin := rl.Vector2{X: 10, Y: 10}

	rl.DrawRectangle(10, 10, previewSize, previewSize, rl.NewColor(24, 26, 32, 255))

	// Obstacles
	for _, ob := range obstacles {
		rl.DrawRectangle(
			int32(origin.X+ob.Pos.X*scale), int32(origin.Y+ob.Pos.Y*scale),
			int32(ob.Size.X*scale), int32(ob.Size.Y*scale),
			rl.NewColor(90, 90, 100, 255))
	}

	// Goal segment on the right edge
	rl.DrawLineEx(
		rl.Vector2{X: origin.X + goal.X*scale - 2, Y: origin.Y + goal.MinY*scale},
		rl.Vector2{X: origin.X + goal.X*scale - 2, Y: origin.Y + goal.MaxY*scale},
		3, rl.Green)

	// Static vectors, one arrow per cell
	cell := field.CellSize()
	arrowLen := cell * scale * 0.4
	for cy := 0; cy < field.Height(); cy++ {
		for cx := 0; cx < field.Width(); cx++ {
			v := field.CellStatic(cx, cy)
			if v.IsZero() {
				continue
			}
			center := rl.Vector2{
				X: origin.X + (float32(cx)+0.5)*cell*scale,
				Y: origin.Y + (float32(cy)+0.5)*cell*scale,
			}
			drawArrow(center, v, arrowLen)
		}
	}

	rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)
}

func drawArrow(center rl.Vector2, dir flowfield.Vec2, length float32) {
	heading := float32(math.Atan2(float64(dir.Y), float64(dir.X)))
	tip := rl.Vector2{
		X: center.X + float32(math.Cos(float64(heading)))*length,
		Y: center.Y + float32(math.Sin(float64(heading)))*length,
	}
	tail := rl.Vector2{
		X: center.X - float32(math.Cos(float64(heading)))*length,
		Y: center.Y - float32(math.Sin(float64(heading)))*length,
	}
	rl.DrawLineV(tail, tip, rl.NewColor(120, 180, 255, 220))
	for _, side := range []float32{heading + 0.8*math.Pi, heading - 0.8*math.Pi} {
		head := rl.Vector2{
			X: tip.X + float32(math.Cos(float64(side)))*length*0.4,
			Y: tip.Y + float32(math.Sin(float64(side)))*length*0.4,
		}
		rl.DrawLineV(tip, head, rl.NewColor(120, 180, 255, 220))
	}
}
