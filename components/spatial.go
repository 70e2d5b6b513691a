// Package components defines ECS components for the crowd simulation.
package components

// Position represents an agent's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an agent's velocity in world units per second.
type Velocity struct {
	X, Y float32
}
