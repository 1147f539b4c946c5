package game

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/benchmarker/bench"
	"github.com/pthm-cable/benchmarker/components"
	"github.com/pthm-cable/benchmarker/runner"
)

// Controls is the recording panel drawn over the world in graphical mode.
type Controls struct {
	Runner  *runner.Runner
	Session bench.Options
}

// HandleInput processes keyboard shortcuts: Space pauses, E ends and S starts
// a session.
func (c *Controls) HandleInput() {
	rec := c.Runner.Recorder()
	if rl.IsKeyPressed(rl.KeySpace) {
		c.togglePause()
	}
	if rl.IsKeyPressed(rl.KeyE) {
		rec.EndRecording()
	}
	if rl.IsKeyPressed(rl.KeyS) && !rec.IsRecording() {
		c.start()
	}
}

func (c *Controls) togglePause() {
	rec := c.Runner.Recorder()
	rec.PauseRecording(rec.State() != bench.Paused)
}

func (c *Controls) start() {
	if err := c.Runner.Start(c.Session); err != nil {
		slog.Error("failed to start recording", "error", err)
	}
}

// Draw renders the session state and the recording buttons.
func (c *Controls) Draw(x, y float32) {
	rec := c.Runner.Recorder()
	state := rec.State()

	color := rl.Gray
	switch state {
	case bench.Recording:
		color = rl.Red
	case bench.Paused, bench.AwaitingFirstFrame:
		color = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("Recording: %s", state), int32(x), int32(y), 20, color)
	rl.DrawText(fmt.Sprintf("Frame: %d / %d", rec.FrameIndex(), rec.FrameCount()), int32(x), int32(y+25), 20, rl.White)
	y += 55

	if !rec.IsRecording() {
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: 120, Height: 30}, "Start") {
			c.start()
		}
		return
	}

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 120, Height: 30}, toggleText(state == bench.Paused, "Resume", "Pause")) {
		c.togglePause()
	}
	if gui.Button(rl.Rectangle{X: x + 130, Y: y, Width: 120, Height: 30}, "End") {
		rec.EndRecording()
	}
}

// Draw renders particles and the HUD.
func (g *Game) Draw(c *Controls) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.Positions(func(p components.Position) {
		rl.DrawPixel(int32(p.X), int32(p.Y), rl.SkyBlue)
	})

	perf := g.Perf()
	rl.DrawText(fmt.Sprintf("Tick: %d", g.tick), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Particles: %d  Respawned: %d", len(g.entities), g.respawned), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Update: %.2f ms (p95 %.2f ms)  FPS: %d",
		float64(perf.AvgFrame.Microseconds())/1000,
		float64(perf.P95Frame.Microseconds())/1000,
		rl.GetFPS(),
	), 10, 60, 20, rl.White)

	if c != nil {
		c.Draw(10, 95)
	}

	rl.EndDrawing()
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
