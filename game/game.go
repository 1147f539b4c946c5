// Package game hosts the particle workload whose ECS systems are benchmarked.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/benchmarker/bench"
	"github.com/pthm-cable/benchmarker/components"
	"github.com/pthm-cable/benchmarker/telemetry"
)

// Options configures a Game.
type Options struct {
	Seed      int64
	Particles int
	MaxSpeed  float32 // world units per second
	Lifetime  float32 // mean seconds before respawn
	Width     float32
	Height    float32
	// PerfWindow is the number of frames averaged by Perf.
	PerfWindow int
}

// Game holds the ECS world and the instrumented systems.
type Game struct {
	world    *ecs.World
	rng      *rand.Rand
	recorder *bench.Recorder
	perf     *telemetry.PerfCollector

	particleMapper *ecs.Map3[components.Position, components.Velocity, components.Lifetime]
	entities       []ecs.Entity

	integrate       *IntegrateSystem
	integrateMapped *IntegrateMappedSystem
	bounds          *BoundsSystem
	age             *AgeSystem

	bnds      Bounds
	tick      int32
	respawned int
}

// NewGame creates a world with opts.Particles particles. Systems report to rec.
func NewGame(rec *bench.Recorder, opts Options) *Game {
	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))
	bounds := Bounds{Width: opts.Width, Height: opts.Height}

	g := &Game{
		world:           world,
		rng:             rng,
		recorder:        rec,
		perf:            telemetry.NewPerfCollector(opts.PerfWindow),
		particleMapper:  ecs.NewMap3[components.Position, components.Velocity, components.Lifetime](world),
		integrate:       NewIntegrateSystem(world),
		integrateMapped: NewIntegrateMappedSystem(world),
		bounds:          NewBoundsSystem(world, bounds),
		age:             NewAgeSystem(world, bounds, opts.MaxSpeed, rng),
		bnds:            bounds,
	}

	g.spawnParticles(opts.Particles, opts.Lifetime)
	slog.Debug("world created", "particles", len(g.entities), "width", opts.Width, "height", opts.Height)
	return g
}

// spawnParticles creates n particles with staggered ages so respawns spread
// across frames.
func (g *Game) spawnParticles(n int, lifetime float32) {
	g.entities = make([]ecs.Entity, 0, n)
	for i := 0; i < n; i++ {
		var pos components.Position
		var vel components.Velocity
		life := components.Lifetime{Max: lifetime * (0.5 + g.rng.Float32())}
		g.age.spawn(&pos, &vel, &life)
		life.Age = g.rng.Float32() * life.Max

		g.entities = append(g.entities, g.particleMapper.NewEntity(&pos, &vel, &life))
	}
}

// Update runs every system once without advancing the recorder's frame.
func (g *Game) Update(dt float32) {
	// The two integrators share the step so particles move vel*dt per frame.
	half := dt / 2

	span := g.recorder.Begin(MethodIntegrate)
	g.integrate.Update(half)
	span.End()

	span = g.recorder.Begin(MethodIntegrateMapped)
	g.integrateMapped.Update(g.entities, half)
	span.End()

	span = g.recorder.Begin(MethodBounds)
	g.bounds.Update()
	span.End()

	span = g.recorder.Begin(MethodAge)
	g.respawned += g.age.Update(dt)
	span.End()

	g.tick++
}

// Step runs one frame and marks the frame boundary on the recorder.
func (g *Game) Step(dt float32) {
	g.perf.StartFrame()
	g.Update(dt)
	g.perf.EndFrame()
	g.recorder.NextFrame()
}

// Tick returns the number of updates run.
func (g *Game) Tick() int32 {
	return g.tick
}

// Respawned returns the total number of particles respawned by the age system.
func (g *Game) Respawned() int {
	return g.respawned
}

// ParticleCount returns the number of particles in the world.
func (g *Game) ParticleCount() int {
	return len(g.entities)
}

// Perf returns frame timing over the recent window.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perf.Stats()
}

// Recorder returns the recorder the systems report to.
func (g *Game) Recorder() *bench.Recorder {
	return g.recorder
}

// Positions calls fn with every particle position.
func (g *Game) Positions(fn func(components.Position)) {
	query := g.integrate.filter.Query()
	for query.Next() {
		pos, _ := query.Get()
		fn(*pos)
	}
}
