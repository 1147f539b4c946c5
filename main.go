package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/benchmarker/bench"
	"github.com/pthm-cable/benchmarker/config"
	"github.com/pthm-cable/benchmarker/game"
	"github.com/pthm-cable/benchmarker/runner"
	"github.com/pthm-cable/benchmarker/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	suite := flag.Bool("suite", false, "Run the warmup/measure suite instead of the frame loop (implies -headless)")
	frames := flag.Int("frames", 0, "Frames to record (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for reports (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	logEvery := flag.Int("log-every", 0, "Log frame timing every N headless frames (0 = off)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *frames > 0 {
		cfg.Recording.FrameCount = *frames
		cfg.Suite.RunCount = *frames
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	cfg.RecomputeDerived()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	mode := "graphical"
	switch {
	case *suite:
		mode = "suite"
	case *headless:
		mode = "headless"
	}

	reg := bench.NewRegistry()
	if err := game.RegisterMethods(reg); err != nil {
		slog.Error("failed to register methods", "error", err)
		os.Exit(1)
	}
	rec := bench.NewRecorder(reg, bench.MonotonicClock{})

	out, err := telemetry.NewOutputManager(cfg.Output.Dir, cfg.Derived.Formats)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	r := runner.New(rec, out, runner.Options{
		AutoLog:  cfg.Output.AutoLog,
		Name:     cfg.Output.Name,
		Mode:     mode,
		Metadata: append([]string{"Mode:" + mode}, cfg.Output.Metadata...),
	})
	defer r.Close()

	gameOpts := game.Options{
		Seed:       rngSeed,
		Particles:  cfg.World.Particles,
		MaxSpeed:   float32(cfg.World.MaxSpeed),
		Lifetime:   float32(cfg.World.Lifetime),
		Width:      cfg.Derived.ScreenW32,
		Height:     cfg.Derived.ScreenH32,
		PerfWindow: cfg.Screen.TargetFPS,
	}
	session := bench.Options{
		FrameCount:        cfg.Recording.FrameCount,
		AutoEnd:           cfg.Recording.AutoEnd,
		WaitForFirstFrame: cfg.Recording.WaitForFirstFrame,
		ClearOnWrap:       cfg.Recording.ClearOnWrap,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting benchmark",
		"mode", mode,
		"seed", rngSeed,
		"particles", cfg.World.Particles,
		"frame_count", session.FrameCount,
		"output_dir", out.Dir(),
	)

	switch mode {
	case "suite":
		b := &game.WorldBenchmark{Recorder: rec, Options: gameOpts, DT: cfg.Derived.DT32}
		s := runner.Suite{
			WarmupCount: cfg.Suite.WarmupCount,
			RunCount:    cfg.Suite.RunCount,
			Iterations:  cfg.Suite.Iterations,
		}
		if err := s.Execute(ctx, r, b); err != nil {
			slog.Error("suite failed", "error", err)
			os.Exit(1)
		}

	case "headless":
		// Headless mode - no raylib needed
		g := game.NewGame(rec, gameOpts)
		if err := r.Start(session); err != nil {
			slog.Error("failed to start recording", "error", err)
			os.Exit(1)
		}
		n := g.RunHeadless(ctx, game.HeadlessOptions{
			DT:        cfg.Derived.DT32,
			MaxFrames: *maxFrames,
			LogEvery:  *logEvery,
		})
		slog.Info("headless run finished", "frames", n, "respawned", g.Respawned(), "perf", g.Perf())

	default:
		// Graphical mode
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Frame Benchmark")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		g := game.NewGame(rec, gameOpts)
		controls := &game.Controls{Runner: r, Session: session}
		if err := r.Start(session); err != nil {
			slog.Error("failed to start recording", "error", err)
			os.Exit(1)
		}

		for !rl.WindowShouldClose() && ctx.Err() == nil {
			controls.HandleInput()
			g.Step(rl.GetFrameTime())
			g.Draw(controls)

			if *maxFrames > 0 && int(g.Tick()) >= *maxFrames {
				break
			}
		}
		rec.EndRecording()
	}
}
