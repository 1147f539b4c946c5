package game

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/benchmarker/components"
)

// Bounds is the world rectangle particles live in.
type Bounds struct {
	Width, Height float32
}

// IntegrateSystem advances positions by velocity using a filter query.
type IntegrateSystem struct {
	filter ecs.Filter2[components.Position, components.Velocity]
}

// NewIntegrateSystem creates a new integrate system.
func NewIntegrateSystem(w *ecs.World) *IntegrateSystem {
	return &IntegrateSystem{
		filter: *ecs.NewFilter2[components.Position, components.Velocity](w),
	}
}

// Update moves every particle by vel*dt.
func (s *IntegrateSystem) Update(dt float32) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel := query.Get()
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
	}
}

// IntegrateMappedSystem does the same work as IntegrateSystem through
// per-entity mapper lookups.
type IntegrateMappedSystem struct {
	posMap *ecs.Map1[components.Position]
	velMap *ecs.Map1[components.Velocity]
}

// NewIntegrateMappedSystem creates a new mapped integrate system.
func NewIntegrateMappedSystem(w *ecs.World) *IntegrateMappedSystem {
	return &IntegrateMappedSystem{
		posMap: ecs.NewMap1[components.Position](w),
		velMap: ecs.NewMap1[components.Velocity](w),
	}
}

// Update moves each of entities by vel*dt.
func (s *IntegrateMappedSystem) Update(entities []ecs.Entity, dt float32) {
	for _, e := range entities {
		pos := s.posMap.Get(e)
		vel := s.velMap.Get(e)
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
	}
}

// BoundsSystem keeps particles inside the world by reflecting them at the edges.
type BoundsSystem struct {
	filter ecs.Filter2[components.Position, components.Velocity]
	bounds Bounds
}

// NewBoundsSystem creates a new bounds system.
func NewBoundsSystem(w *ecs.World, bounds Bounds) *BoundsSystem {
	return &BoundsSystem{
		filter: *ecs.NewFilter2[components.Position, components.Velocity](w),
		bounds: bounds,
	}
}

// Update reflects particles that left the world.
func (s *BoundsSystem) Update() {
	query := s.filter.Query()
	for query.Next() {
		pos, vel := query.Get()
		var flip bool
		if pos.X, flip = reflect(pos.X, s.bounds.Width); flip {
			vel.X = -vel.X
		}
		if pos.Y, flip = reflect(pos.Y, s.bounds.Height); flip {
			vel.Y = -vel.Y
		}
		// Particles faster than the world is wide can still escape.
		pos.X = mod(pos.X, s.bounds.Width)
		pos.Y = mod(pos.Y, s.bounds.Height)
	}
}

// AgeSystem ages particles and respawns expired ones in place.
type AgeSystem struct {
	filter   ecs.Filter3[components.Position, components.Velocity, components.Lifetime]
	bounds   Bounds
	maxSpeed float32
	rng      *rand.Rand
}

// NewAgeSystem creates a new age system.
func NewAgeSystem(w *ecs.World, bounds Bounds, maxSpeed float32, rng *rand.Rand) *AgeSystem {
	return &AgeSystem{
		filter:   *ecs.NewFilter3[components.Position, components.Velocity, components.Lifetime](w),
		bounds:   bounds,
		maxSpeed: maxSpeed,
		rng:      rng,
	}
}

// Update advances every lifetime by dt and returns the number of respawns.
func (s *AgeSystem) Update(dt float32) int {
	respawned := 0
	query := s.filter.Query()
	for query.Next() {
		pos, vel, life := query.Get()
		life.Age += dt
		if !life.Expired() {
			continue
		}
		s.spawn(pos, vel, life)
		respawned++
	}
	return respawned
}

// spawn places a particle at a random position with a random heading.
func (s *AgeSystem) spawn(pos *components.Position, vel *components.Velocity, life *components.Lifetime) {
	pos.X = s.rng.Float32() * s.bounds.Width
	pos.Y = s.rng.Float32() * s.bounds.Height

	heading := s.rng.Float64() * 2 * math.Pi
	speed := s.maxSpeed * (0.25 + 0.75*s.rng.Float32())
	vel.X = float32(math.Cos(heading)) * speed
	vel.Y = float32(math.Sin(heading)) * speed

	life.Age = 0
}
