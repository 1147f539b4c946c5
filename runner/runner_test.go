package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/benchmarker/bench"
	"github.com/pthm-cable/benchmarker/config"
	"github.com/pthm-cable/benchmarker/telemetry"
)

// stepClock advances by one tick on every reading.
type stepClock struct{ now int64 }

func (c *stepClock) Now() int64 {
	c.now++
	return c.now
}

func (c *stepClock) Frequency() int64 { return 1000 }

var fixedTime = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestRunner(t *testing.T, opts Options) (*Runner, bench.MethodID, string) {
	t.Helper()
	reg := bench.NewRegistry()
	id := bench.IDFor("Work")
	err := reg.Register(bench.MethodMetadata{ID: id, FullName: "Work", Categories: []string{"work"}, Baseline: true})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	out, err := telemetry.NewOutputManager(dir, map[string]bool{config.FormatJSON: true, config.FormatMarkdown: true})
	if err != nil {
		t.Fatal(err)
	}

	r := New(bench.NewRecorder(reg, &stepClock{}), out, opts)
	r.now = func() time.Time { return fixedTime }
	t.Cleanup(r.Close)
	return r, id, dir
}

func TestRunner_ResultName(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{Options{Mode: "headless"}, "Results-headless_2026-03-04_05-06-07"},
		{Options{Name: "particles", Mode: "headless"}, "particles_2026-03-04_05-06-07"},
	}
	for _, tt := range tests {
		r, _, _ := newTestRunner(t, tt.opts)
		if got := r.ResultName(); got != tt.want {
			t.Errorf("ResultName() = %q, want %q", got, tt.want)
		}
	}
}

func TestRunner_AutoLogOnEnd(t *testing.T) {
	r, id, dir := newTestRunner(t, Options{AutoLog: true, Mode: "test", Metadata: []string{"Host:ci"}})

	if err := r.Start(bench.Options{FrameCount: 2, AutoEnd: true}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rec := r.Recorder()
	for range 2 {
		rec.Begin(id).End()
		rec.NextFrame()
	}
	if rec.IsRecording() {
		t.Fatal("session should have auto-ended")
	}

	paths, err := r.LastPaths()
	if err != nil {
		t.Fatalf("auto log failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("wrote %v, want markdown and json", paths)
	}

	report, err := telemetry.ReadReport(filepath.Join(dir, "Results-test_2026-03-04_05-06-07.json"))
	if err != nil {
		t.Fatalf("ReadReport: %v", err)
	}
	if report.FrameCount() != 2 {
		t.Errorf("FrameCount = %d, want 2", report.FrameCount())
	}
	if !slices.Contains(report.MetaData, "RunID:"+r.RunID()) {
		t.Errorf("metadata %v missing run id", report.MetaData)
	}
	if report.MetaData[len(report.MetaData)-1] != "Host:ci" {
		t.Errorf("extra metadata should come last, got %v", report.MetaData)
	}
	if len(report.Categories) != 1 || report.Categories[0].Processed[0].Count.Mean != 1 {
		t.Errorf("unexpected categories: %+v", report.Categories)
	}
}

func TestRunner_NoAutoLog(t *testing.T) {
	r, id, dir := newTestRunner(t, Options{Mode: "test"})

	if err := r.Start(bench.Options{FrameCount: 1, AutoEnd: true}); err != nil {
		t.Fatal(err)
	}
	r.Recorder().Begin(id).End()
	r.Recorder().NextFrame()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no output without auto log, got %d files", len(entries))
	}

	paths, err := r.LogResults("manual")
	if err != nil {
		t.Fatalf("LogResults: %v", err)
	}
	if len(paths) != 2 || !strings.HasSuffix(paths[0], "manual.md") {
		t.Errorf("paths = %v", paths)
	}
}

func TestRunner_RunIDChangesPerSession(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{})
	if r.RunID() != "" {
		t.Error("run id should be empty before the first session")
	}

	if err := r.Start(bench.Options{FrameCount: 1}); err != nil {
		t.Fatal(err)
	}
	first := r.RunID()
	r.Recorder().EndRecording()

	if err := r.Start(bench.Options{FrameCount: 1}); err != nil {
		t.Fatal(err)
	}
	if r.RunID() == first {
		t.Error("expected a new run id for the second session")
	}
	r.Recorder().EndRecording()
}

// countingBenchmark records one span per Run.
type countingBenchmark struct {
	rec      *bench.Recorder
	id       bench.MethodID
	runs     int
	setup    bool
	tornDown bool
	onRun    func()
}

func (b *countingBenchmark) Setup() error {
	b.setup = true
	return nil
}

func (b *countingBenchmark) Run() {
	b.runs++
	b.rec.Begin(b.id).End()
	if b.onRun != nil {
		b.onRun()
	}
}

func (b *countingBenchmark) Teardown() { b.tornDown = true }

func TestSuite_Execute(t *testing.T) {
	r, id, _ := newTestRunner(t, Options{})
	b := &countingBenchmark{rec: r.Recorder(), id: id}

	s := Suite{WarmupCount: 3, RunCount: 4, Iterations: 5}
	if err := s.Execute(context.Background(), r, b); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !b.setup || !b.tornDown {
		t.Error("expected setup and teardown")
	}
	if b.runs != (3+4)*5 {
		t.Errorf("runs = %d, want %d", b.runs, (3+4)*5)
	}
	if r.Recorder().IsRecording() {
		t.Error("recording should have ended")
	}

	results := r.Recorder().Results()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	frames := results[0].Frames
	if len(frames) != 4 {
		t.Fatalf("got %d frames, want 4", len(frames))
	}
	for i, f := range frames {
		if f.Count != 5 {
			t.Errorf("frame %d count = %d, want 5 (warmup must not be recorded)", i, f.Count)
		}
	}
}

func TestSuite_Cancel(t *testing.T) {
	r, id, _ := newTestRunner(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := &countingBenchmark{rec: r.Recorder(), id: id}
	b.onRun = func() {
		if r.Recorder().IsRecording() {
			cancel()
		}
	}

	err := Suite{RunCount: 100, Iterations: 1}.Execute(ctx, r, b)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if r.Recorder().IsRecording() {
		t.Error("cancel should end the session")
	}
	if !b.tornDown {
		t.Error("teardown should run on cancel")
	}
}

func TestSuite_InvalidRunCount(t *testing.T) {
	r, id, _ := newTestRunner(t, Options{})
	b := &countingBenchmark{rec: r.Recorder(), id: id}

	err := Suite{RunCount: 0}.Execute(context.Background(), r, b)
	if !errors.Is(err, bench.ErrInvalidFrameCount) {
		t.Fatalf("err = %v, want ErrInvalidFrameCount", err)
	}
	if b.setup {
		t.Error("setup should not run for an invalid suite")
	}
}
