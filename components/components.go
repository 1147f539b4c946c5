// Package components defines ECS components for the benchmark workload.
package components

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	X, Y float32
}

// Lifetime tracks how long a particle has existed.
type Lifetime struct {
	Age float32 // seconds
	Max float32 // seconds before respawn
}

// Expired reports whether the particle has outlived its lifetime.
func (l Lifetime) Expired() bool {
	return l.Age >= l.Max
}
