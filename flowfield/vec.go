package flowfield

import "math"

// Vec2 is a 2D vector in world units. All field math runs in float32.
type Vec2 struct {
	X float32
	Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

// LenSq returns the squared length of v.
func (v Vec2) LenSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Len returns the length of v.
func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// normEpsilon guards Normalize against near-zero vectors. Lengths below
// this are treated as zero.
const normEpsilon = 1e-6

// Normalize returns v scaled to unit length. A near-zero vector
// normalizes to the zero vector; callers that need a direction apply
// their own fallback.
func (v Vec2) Normalize() Vec2 {
	lsq := v.X*v.X + v.Y*v.Y
	if lsq < normEpsilon*normEpsilon {
		return Vec2{}
	}
	inv := 1 / float32(math.Sqrt(float64(lsq)))
	return Vec2{v.X * inv, v.Y * inv}
}

// IsZero reports whether v is the zero vector within the normalize
// epsilon.
func (v Vec2) IsZero() bool {
	return v.X*v.X+v.Y*v.Y < normEpsilon*normEpsilon
}

// Lerp returns v interpolated toward o by t (t=0 returns v, t=1
// returns o).
func (v Vec2) Lerp(o Vec2, t float32) Vec2 {
	return Vec2{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
	}
}

// absf returns the absolute value of v.
func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// clampFloat limits v to [min, max].
func clampFloat(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp01 limits v to [0, 1].
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
