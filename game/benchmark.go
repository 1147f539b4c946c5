package game

import (
	"fmt"

	"github.com/pthm-cable/benchmarker/bench"
)

// WorldBenchmark runs the particle systems as a suite benchmark. Each Run is
// one Update of a freshly built world.
type WorldBenchmark struct {
	Recorder *bench.Recorder
	Options  Options
	DT       float32

	game *Game
}

// Setup builds the world.
func (b *WorldBenchmark) Setup() error {
	if b.Options.Particles <= 0 {
		return fmt.Errorf("world benchmark needs particles, got %d", b.Options.Particles)
	}
	b.game = NewGame(b.Recorder, b.Options)
	return nil
}

// Run updates the world once.
func (b *WorldBenchmark) Run() {
	b.game.Update(b.DT)
}

// Teardown drops the world.
func (b *WorldBenchmark) Teardown() {
	b.game = nil
}

// Game returns the world built by Setup, or nil outside a run.
func (b *WorldBenchmark) Game() *Game {
	return b.game
}
