package game

import (
	"context"
	"log/slog"
)

// HeadlessOptions configures RunHeadless.
type HeadlessOptions struct {
	DT float32
	// MaxFrames stops the loop early and ends the session. 0 is unlimited.
	MaxFrames int
	// LogEvery logs frame timing every N frames. 0 disables it.
	LogEvery int
}

// RunHeadless steps the game while a recording session is open. It returns
// the number of frames run. Reaching MaxFrames or cancelling ctx ends the
// session so its results are still reported.
func (g *Game) RunHeadless(ctx context.Context, opts HeadlessOptions) int {
	frames := 0
	for g.recorder.IsRecording() {
		if ctx.Err() != nil {
			slog.Info("headless run cancelled", "frames", frames)
			g.recorder.EndRecording()
			break
		}
		if opts.MaxFrames > 0 && frames >= opts.MaxFrames {
			slog.Info("max frames reached", "frames", frames)
			g.recorder.EndRecording()
			break
		}

		g.Step(opts.DT)
		frames++

		if opts.LogEvery > 0 && frames%opts.LogEvery == 0 {
			slog.Info("perf",
				"frame", frames,
				"state", g.recorder.State().String(),
				"frame_index", g.recorder.FrameIndex(),
				"stats", g.Perf(),
			)
		}
	}
	return frames
}
