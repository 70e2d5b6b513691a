package main

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/throng/camera"
	"github.com/pthm-cable/throng/components"
	"github.com/pthm-cable/throng/config"
	"github.com/pthm-cable/throng/renderer"
	"github.com/pthm-cable/throng/sim"
	"github.com/pthm-cable/throng/ui"
)

// App owns the windowed front end: input, camera, and drawing on top
// of a headless simulation.
type App struct {
	sim *sim.Simulation
	cfg *config.Config

	cam      *camera.Camera
	field    *renderer.FieldRenderer
	hud      *ui.HUD
	perf     *ui.PerfPanel
	controls *ui.ControlsPanel
	overlays *ui.OverlayRegistry

	paused bool
	speed  int // simulation steps per frame (1-10)
}

// NewApp creates the windowed application around a fresh simulation.
func NewApp(cfg *config.Config, opts sim.Options) (*App, error) {
	s, err := sim.New(opts)
	if err != nil {
		return nil, err
	}

	scn := s.Scenario()
	cam := camera.New(
		cfg.Derived.ScreenW32, cfg.Derived.ScreenH32,
		scn.WorldWidth, scn.WorldHeight,
	)

	return &App{
		sim:      s,
		cfg:      cfg,
		cam:      cam,
		field:    renderer.NewFieldRenderer(cam),
		hud:      ui.NewHUD(),
		perf:     ui.NewPerfPanel(int32(cfg.Screen.Width)-260, 10, 250),
		controls: ui.NewControlsPanel(10, 110, 230),
		overlays: ui.NewOverlayRegistry(),
	}, nil
}

// Update handles input and advances the simulation.
func (a *App) Update() {
	a.handleInput()

	if a.paused {
		return
	}

	for i := 0; i < a.speedSteps(); i++ {
		a.sim.Step()
	}
}

func (a *App) speedSteps() int {
	if a.speed < 1 {
		return 1
	}
	return a.speed
}

// handleInput processes keyboard and mouse input.
func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}

	// Speed control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && a.speed > 1 {
		a.speed--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && a.speed < 10 {
		a.speed++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		a.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.cam.Reset()
	}

	// Overlay toggles
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		a.overlays.HandleKeyPress(key)
	}

	// Pan with arrow keys or right mouse drag
	panSpeed := float32(8.0) / a.cam.Zoom
	if rl.IsKeyDown(rl.KeyRight) {
		a.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		a.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		a.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		a.cam.Pan(0, -panSpeed)
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		a.cam.Pan(-delta.X, -delta.Y)
	}

	// Zoom toward cursor with the wheel
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		factor := float32(1.0) + wheel*0.1
		a.cam.ZoomAt(factor, mouse.X, mouse.Y)
	}

	// Window resize
	if rl.IsWindowResized() {
		a.cam.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	}
}

// Draw renders the frame.
func (a *App) Draw() {
	a.sim.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})

	field := a.sim.Field()

	if a.overlays.IsEnabled(ui.OverlayCongestion) {
		a.field.DrawCongestionHeatmap(field)
	}
	if a.overlays.IsEnabled(ui.OverlayGridLines) {
		a.field.DrawGridLines(field)
	}
	if a.overlays.IsEnabled(ui.OverlayFlowVectors) {
		a.field.DrawFlowVectors(field)
	}
	if a.overlays.IsEnabled(ui.OverlayStaticLayer) {
		a.field.DrawStaticVectors(field)
	}

	a.field.DrawScenario(a.sim.Scenario())
	a.drawAgents()

	// HUD and panels
	a.hud.Draw(ui.HUDData{
		Title:        "Throng",
		AgentCount:   a.sim.Crowd().Count(),
		Arrivals:     a.sim.TotalArrivals(),
		Tick:         a.sim.Tick(),
		SimTimeSec:   float64(a.sim.Tick()) * a.cfg.Physics.DT,
		Speed:        a.speedSteps(),
		FPS:          rl.GetFPS(),
		Paused:       a.paused,
		ScreenWidth:  int32(rl.GetScreenWidth()),
		ScreenHeight: int32(rl.GetScreenHeight()),
	})
	a.hud.DrawControls(
		int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()),
		"[Space] pause  [</>] speed  [Tab] overlays  [R] reset view  [RMB] pan  [Wheel] zoom",
	)

	a.controls.Draw(a.overlays)

	if a.overlays.IsEnabled(ui.OverlayPerfPanel) {
		a.perf.SetPosition(int32(rl.GetScreenWidth())-260, 10)
		a.perf.Draw(a.sim.PerfStats())
	}

	rl.EndDrawing()
}

// drawAgents adapts the crowd iterator to the renderer callback.
func (a *App) drawAgents() {
	crowd := a.sim.Crowd()
	a.field.DrawAgents(func(fn func(x, y, vx, vy, radius float32)) {
		crowd.Each(func(pos components.Position, vel components.Velocity, body components.Body) {
			fn(pos.X, pos.Y, vel.X, vel.Y, body.Radius)
		})
	})
}

// Tick returns the current simulation tick.
func (a *App) Tick() int32 {
	return a.sim.Tick()
}

// Close releases simulation resources.
func (a *App) Close() {
	a.sim.Close()
}
