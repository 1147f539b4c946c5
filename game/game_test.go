package game

import (
	"context"
	"testing"

	"github.com/pthm-cable/benchmarker/bench"
	"github.com/pthm-cable/benchmarker/components"
	"github.com/pthm-cable/benchmarker/runner"
)

func testOptions() Options {
	return Options{
		Seed:       1,
		Particles:  200,
		MaxSpeed:   50,
		Lifetime:   0.5,
		Width:      320,
		Height:     200,
		PerfWindow: 10,
	}
}

func newTestGame(t *testing.T) (*Game, *bench.Recorder) {
	t.Helper()
	reg := bench.NewRegistry()
	if err := RegisterMethods(reg); err != nil {
		t.Fatalf("RegisterMethods: %v", err)
	}
	rec := bench.NewRecorder(reg, nil)
	return NewGame(rec, testOptions()), rec
}

func TestRegisterMethods_Twice(t *testing.T) {
	reg := bench.NewRegistry()
	if err := RegisterMethods(reg); err != nil {
		t.Fatal(err)
	}
	if err := RegisterMethods(reg); err != nil {
		t.Fatalf("re-registration should replace metadata: %v", err)
	}
	if reg.Len() != len(Methods()) {
		t.Errorf("registry has %d methods, want %d", reg.Len(), len(Methods()))
	}
}

func TestGame_ParticlesStayInBounds(t *testing.T) {
	g, _ := newTestGame(t)
	if g.ParticleCount() != 200 {
		t.Fatalf("particles = %d, want 200", g.ParticleCount())
	}

	for range 120 {
		g.Step(1.0 / 60)
	}

	opts := testOptions()
	count := 0
	g.Positions(func(p components.Position) {
		count++
		if p.X < 0 || p.X > opts.Width || p.Y < 0 || p.Y > opts.Height {
			t.Errorf("particle escaped: %+v", p)
		}
	})
	if count != 200 {
		t.Errorf("iterated %d particles, want 200", count)
	}
	if g.Respawned() == 0 {
		t.Error("expected respawns with a 0.5s lifetime over 2s")
	}
	if g.Tick() != 120 {
		t.Errorf("tick = %d, want 120", g.Tick())
	}
}

func TestGame_RecordsEverySystem(t *testing.T) {
	g, rec := newTestGame(t)
	if err := rec.StartRecording(10, true, false); err != nil {
		t.Fatal(err)
	}

	frames := g.RunHeadless(context.Background(), HeadlessOptions{DT: 1.0 / 60})
	if frames != 10 {
		t.Errorf("ran %d frames, want 10", frames)
	}
	if rec.IsRecording() {
		t.Fatal("session should auto-end")
	}

	results := rec.Results()
	if len(results) != len(Methods()) {
		t.Fatalf("got %d results, want %d", len(results), len(Methods()))
	}
	for _, r := range results {
		for i, f := range r.Frames {
			if f.Count != 1 {
				t.Errorf("%s frame %d count = %d, want 1", r.Metadata.Name(), i, f.Count)
			}
		}
	}

	groups := bench.Analyse(results)
	names := make([]string, len(groups))
	for i, grp := range groups {
		names[i] = grp.Name
	}
	want := []string{CategoryMovement, CategoryWorld, CategoryLifetime}
	if len(names) != len(want) {
		t.Fatalf("categories = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("categories = %v, want %v", names, want)
			break
		}
	}
}

func TestRunHeadless_MaxFramesEndsSession(t *testing.T) {
	g, rec := newTestGame(t)
	if err := rec.StartRecording(100, false, false); err != nil {
		t.Fatal(err)
	}

	ended := 0
	cancel := rec.OnEnd(func(bench.Session) { ended++ })
	defer cancel()

	frames := g.RunHeadless(context.Background(), HeadlessOptions{DT: 1.0 / 60, MaxFrames: 7})
	if frames != 7 {
		t.Errorf("ran %d frames, want 7", frames)
	}
	if rec.IsRecording() || ended != 1 {
		t.Errorf("recording=%v ended=%d, want ended once", rec.IsRecording(), ended)
	}
}

func TestRunHeadless_Cancel(t *testing.T) {
	g, rec := newTestGame(t)
	if err := rec.StartRecording(100, false, false); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if frames := g.RunHeadless(ctx, HeadlessOptions{DT: 1.0 / 60}); frames != 0 {
		t.Errorf("ran %d frames after cancel, want 0", frames)
	}
	if rec.IsRecording() {
		t.Error("cancel should end the session")
	}
}

func TestWorldBenchmark_Suite(t *testing.T) {
	reg := bench.NewRegistry()
	if err := RegisterMethods(reg); err != nil {
		t.Fatal(err)
	}
	rec := bench.NewRecorder(reg, nil)
	r := runner.New(rec, nil, runner.Options{Mode: "suite"})
	defer r.Close()

	b := &WorldBenchmark{Recorder: rec, Options: testOptions(), DT: 1.0 / 60}
	s := runner.Suite{WarmupCount: 2, RunCount: 5, Iterations: 3}
	if err := s.Execute(context.Background(), r, b); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if b.Game() != nil {
		t.Error("teardown should drop the world")
	}

	for _, res := range rec.Results() {
		if len(res.Frames) != 5 {
			t.Errorf("%s: %d frames, want 5", res.Metadata.Name(), len(res.Frames))
		}
		for _, f := range res.Frames {
			if f.Count != 3 {
				t.Errorf("%s: count %d, want 3", res.Metadata.Name(), f.Count)
			}
		}
	}
}
