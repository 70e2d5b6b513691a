package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/throng/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	AgentCount   int
	Arrivals     int
	Tick         int32
	SimTimeSec   float64
	Speed        int
	FPS          int32
	Paused       bool
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	// Title
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	// Population and arrivals
	rl.DrawText(
		fmt.Sprintf("Agents: %d | Arrivals: %d", data.AgentCount, data.Arrivals),
		10, 35, 16, rl.LightGray,
	)

	// Simulation info
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Time: %.1fs | Speed: %dx | FPS: %d",
			data.Tick, data.SimTimeSec, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	// Status
	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel from aggregated perf stats.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	phases := []string{
		telemetry.PhaseField,
		telemetry.PhaseGather,
		telemetry.PhaseMove,
		telemetry.PhaseArrivals,
		telemetry.PhaseTelemetry,
	}

	panelHeight := int32(2*len(phases)+3)*lineHeight + padding*2
	r.DrawPanel(p.x, p.y, p.width, panelHeight)

	x := p.x + padding
	y := p.y + padding
	innerWidth := p.width - padding*2

	y = r.DrawSectionHeader(x, y, "Performance")
	y = r.DrawLabelValue(x, y, "Tick",
		fmt.Sprintf("%s (%.0f/s)",
			stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		innerWidth)
	y = r.DrawSpacer(y, 4)

	for _, phase := range phases {
		avg := stats.PhaseAvg[phase]
		pct := stats.PhasePct[phase]
		y = r.DrawLabelValue(x, y, phase,
			fmt.Sprintf("%s  %.1f%%", avg.Round(time.Microsecond), pct), innerWidth)
		y = r.DrawBar(x, y, "", float32(pct/100), innerWidth)
	}
}
