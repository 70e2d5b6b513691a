package camera

import (
	"math"
	"testing"
)

const epsilon = 1e-3

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func TestNewCentersOnWorld(t *testing.T) {
	c := New(1280, 720, 1920, 1080)

	if !approxEqual(c.X, 960) || !approxEqual(c.Y, 540) {
		t.Errorf("camera center = (%v, %v), want (960, 540)", c.X, c.Y)
	}
	if c.Zoom != 1.0 {
		t.Errorf("initial zoom = %v, want 1.0", c.Zoom)
	}
}

func TestWorldScreenRoundTrip(t *testing.T) {
	c := New(1280, 720, 1920, 1080)
	c.SetZoom(2.0)
	c.Pan(100, 50)

	wx, wy := float32(800), float32(450)
	sx, sy := c.WorldToScreen(wx, wy)
	gx, gy := c.ScreenToWorld(sx, sy)

	if !approxEqual(gx, wx) || !approxEqual(gy, wy) {
		t.Errorf("round trip (%v, %v) -> (%v, %v)", wx, wy, gx, gy)
	}
}

func TestPanClampsToWorldEdge(t *testing.T) {
	c := New(1280, 720, 1920, 1080)

	// Pan far past the right edge; the viewport must stop at the
	// world boundary instead of showing space beyond it.
	c.Pan(1e6, 1e6)

	_, _, maxX, maxY := c.VisibleWorldBounds()
	if maxX > 1920+epsilon {
		t.Errorf("visible maxX = %v, beyond world width", maxX)
	}
	if maxY > 1080+epsilon {
		t.Errorf("visible maxY = %v, beyond world height", maxY)
	}

	c.Pan(-1e6, -1e6)
	minX, minY, _, _ := c.VisibleWorldBounds()
	if minX < -epsilon || minY < -epsilon {
		t.Errorf("visible min = (%v, %v), before world origin", minX, minY)
	}
}

func TestMinZoomKeepsViewInsideWorld(t *testing.T) {
	c := New(1280, 720, 1920, 1080)

	c.SetZoom(0.01)
	if c.Zoom < c.MinZoom {
		t.Errorf("zoom %v fell below minimum %v", c.Zoom, c.MinZoom)
	}

	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	if minX < -epsilon || minY < -epsilon || maxX > 1920+epsilon || maxY > 1080+epsilon {
		t.Errorf("view (%v,%v)-(%v,%v) exceeds world at min zoom", minX, minY, maxX, maxY)
	}
}

func TestZoomAtKeepsCursorPointFixed(t *testing.T) {
	c := New(1280, 720, 1920, 1080)
	c.SetZoom(2.0)

	sx, sy := float32(300), float32(200)
	wx, wy := c.ScreenToWorld(sx, sy)

	c.ZoomAt(1.5, sx, sy)

	gx, gy := c.ScreenToWorld(sx, sy)
	if !approxEqual(gx, wx) || !approxEqual(gy, wy) {
		t.Errorf("point under cursor moved: (%v, %v) -> (%v, %v)", wx, wy, gx, gy)
	}
}

func TestZoomClampedToMax(t *testing.T) {
	c := New(1280, 720, 1920, 1080)
	c.ZoomBy(100)
	if c.Zoom != c.MaxZoom {
		t.Errorf("zoom = %v, want clamped to %v", c.Zoom, c.MaxZoom)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	c := New(1280, 720, 1920, 1080)
	c.Pan(500, 300)
	c.ZoomBy(3)
	c.Reset()

	if !approxEqual(c.X, 960) || !approxEqual(c.Y, 540) {
		t.Errorf("reset center = (%v, %v), want (960, 540)", c.X, c.Y)
	}
	if c.Zoom != 1.0 {
		t.Errorf("reset zoom = %v, want 1.0", c.Zoom)
	}
}

func TestIsVisibleCulling(t *testing.T) {
	c := New(1280, 720, 1920, 1080)
	c.SetZoom(2.0) // visible area is 640x360 around center

	if !c.IsVisible(c.X, c.Y, 10) {
		t.Error("center not visible")
	}
	if c.IsVisible(c.X+400, c.Y, 10) {
		t.Error("point well outside view reported visible")
	}
	// Just off the edge but radius overlaps
	if !c.IsVisible(c.X+325, c.Y, 10) {
		t.Error("circle overlapping view edge reported hidden")
	}
}
