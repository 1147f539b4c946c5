package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/benchmarker/bench"
)

// Benchmark is a workload executed frame by frame by a Suite.
type Benchmark interface {
	// Setup prepares state before warmup.
	Setup() error
	// Run executes one iteration. It is called Iterations times per frame.
	Run()
	// Teardown releases state after measuring.
	Teardown()
}

// Suite runs a benchmark for a number of unrecorded warmup frames, then
// records RunCount frames.
type Suite struct {
	WarmupCount int
	RunCount    int
	Iterations  int
}

// Execute runs b through warmup and measurement. Recording ends after
// RunCount frames; the runner's end observer handles reporting. Cancelling
// ctx stops between frames and ends the session early.
func (s Suite) Execute(ctx context.Context, r *Runner, b Benchmark) error {
	if s.RunCount <= 0 {
		return fmt.Errorf("suite run count must be positive, got %d: %w", s.RunCount, bench.ErrInvalidFrameCount)
	}
	iterations := max(s.Iterations, 1)

	if err := b.Setup(); err != nil {
		return fmt.Errorf("benchmark setup: %w", err)
	}
	defer b.Teardown()

	frame := func() {
		for range iterations {
			b.Run()
		}
	}

	for i := 0; i < s.WarmupCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame()
	}
	slog.Debug("warmup complete", "frames", s.WarmupCount, "iterations", iterations)

	err := r.Start(bench.Options{
		FrameCount: s.RunCount,
		AutoEnd:    true,
	})
	if err != nil {
		return fmt.Errorf("starting measurement: %w", err)
	}

	rec := r.Recorder()
	for rec.IsRecording() {
		if err := ctx.Err(); err != nil {
			rec.EndRecording()
			return err
		}
		frame()
		rec.NextFrame()
	}
	return nil
}
