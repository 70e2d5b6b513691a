package crowd

import (
	"math"

	"github.com/pthm-cable/throng/components"
	"github.com/pthm-cable/throng/flowfield"
)

// Steer samples the field at each agent's position and sets its
// velocity to the flow direction scaled by its walking speed, then
// integrates positions by dt with obstacle slide and world clamping.
func (m *Manager) Steer(field *flowfield.Field, dt float32) {
	query := m.filter.Query()
	for query.Next() {
		pos, vel, body, walker := query.Get()

		flow := field.FlowVector(flowfield.Vec2{X: pos.X, Y: pos.Y})
		vel.X = flow.X * walker.Speed
		vel.Y = flow.Y * walker.Speed

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		m.resolveObstacles(pos, body.Radius)
		m.clampToWorld(pos, body.Radius)
	}
}

// resolveObstacles pushes the agent circle out of any obstacle box it
// overlaps, along the shortest separating axis. The tangential
// component of the motion survives, so agents slide along walls
// instead of sticking to them.
func (m *Manager) resolveObstacles(pos *components.Position, radius float32) {
	for _, ob := range m.obstacles {
		cx := clampf(pos.X, ob.Pos.X, ob.Pos.X+ob.Size.X)
		cy := clampf(pos.Y, ob.Pos.Y, ob.Pos.Y+ob.Size.Y)

		dx := pos.X - cx
		dy := pos.Y - cy
		distSq := dx*dx + dy*dy

		if distSq >= radius*radius {
			continue
		}

		if distSq > 1e-9 {
			// Center outside the box: push out along the contact normal.
			dist := float32(math.Sqrt(float64(distSq)))
			push := radius - dist
			pos.X += dx / dist * push
			pos.Y += dy / dist * push
			continue
		}

		// Center inside the box: eject through the nearest face.
		left := pos.X - ob.Pos.X
		right := ob.Pos.X + ob.Size.X - pos.X
		top := pos.Y - ob.Pos.Y
		bottom := ob.Pos.Y + ob.Size.Y - pos.Y

		switch minOf4(left, right, top, bottom) {
		case left:
			pos.X = ob.Pos.X - radius
		case right:
			pos.X = ob.Pos.X + ob.Size.X + radius
		case top:
			pos.Y = ob.Pos.Y - radius
		default:
			pos.Y = ob.Pos.Y + ob.Size.Y + radius
		}
	}
}

func (m *Manager) clampToWorld(pos *components.Position, radius float32) {
	pos.X = clampf(pos.X, radius, m.scn.WorldWidth-radius)
	pos.Y = clampf(pos.Y, radius, m.scn.WorldHeight-radius)
}

func minOf4(a, b, c, d float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	if d < m {
		m = d
	}
	return m
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
