package flowfield

import (
	"math"
	"testing"
)

func TestVecNormalize(t *testing.T) {
	v := Vec2{X: 3, Y: 4}.Normalize()
	if math.Abs(float64(v.Len()-1)) > 1e-5 {
		t.Errorf("expected unit length, got %f", v.Len())
	}
	if math.Abs(float64(v.X-0.6)) > 1e-5 || math.Abs(float64(v.Y-0.8)) > 1e-5 {
		t.Errorf("expected (0.6, 0.8), got (%f, %f)", v.X, v.Y)
	}
}

func TestVecNormalizeZeroFallsBackToZero(t *testing.T) {
	v := Vec2{}.Normalize()
	if !v.IsZero() {
		t.Errorf("expected zero vector, got (%f, %f)", v.X, v.Y)
	}

	// Sub-epsilon vectors also collapse to zero instead of blowing up.
	tiny := Vec2{X: 1e-8, Y: -1e-8}.Normalize()
	if !tiny.IsZero() {
		t.Errorf("expected zero vector for tiny input, got (%f, %f)", tiny.X, tiny.Y)
	}
}

func TestVecLerp(t *testing.T) {
	a := Vec2{X: 0, Y: 0}
	b := Vec2{X: 10, Y: -6}

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("t=0 should return start, got (%f, %f)", got.X, got.Y)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("t=1 should return end, got (%f, %f)", got.X, got.Y)
	}

	mid := a.Lerp(b, 0.5)
	if mid.X != 5 || mid.Y != -3 {
		t.Errorf("expected midpoint (5, -3), got (%f, %f)", mid.X, mid.Y)
	}
}

func TestVecOps(t *testing.T) {
	a := Vec2{X: 2, Y: -1}
	b := Vec2{X: 1, Y: 3}

	if got := a.Add(b); got != (Vec2{X: 3, Y: 2}) {
		t.Errorf("Add: got (%f, %f)", got.X, got.Y)
	}
	if got := a.Sub(b); got != (Vec2{X: 1, Y: -4}) {
		t.Errorf("Sub: got (%f, %f)", got.X, got.Y)
	}
	if got := a.Scale(2); got != (Vec2{X: 4, Y: -2}) {
		t.Errorf("Scale: got (%f, %f)", got.X, got.Y)
	}
	if got := a.Dot(b); got != -1 {
		t.Errorf("Dot: expected -1, got %f", got)
	}
	if got := a.LenSq(); got != 5 {
		t.Errorf("LenSq: expected 5, got %f", got)
	}
}
