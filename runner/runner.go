// Package runner drives recording sessions: it starts them, and writes
// analysed reports when they end.
package runner

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/benchmarker/bench"
	"github.com/pthm-cable/benchmarker/telemetry"
)

// TimestampLayout is appended to result names so repeated runs do not collide.
const TimestampLayout = "2006-01-02_15-04-05"

// Options configures a Runner.
type Options struct {
	// AutoLog writes reports whenever a session ends.
	AutoLog bool
	// Name prefixes result files. Empty uses "Results-<Mode>".
	Name string
	// Mode names the host configuration, e.g. "headless" or "graphical".
	Mode string
	// Metadata lines are added to every report after FrameCount and RunID.
	Metadata []string
}

// Runner ties a recorder to an output manager.
type Runner struct {
	recorder *bench.Recorder
	output   *telemetry.OutputManager
	opts     Options
	now      func() time.Time

	mu        sync.Mutex
	runID     uuid.UUID
	lastPaths []string
	lastErr   error
	cancel    func()
}

// New creates a runner and subscribes it to the recorder's session end.
// out may be nil, in which case nothing is written.
func New(rec *bench.Recorder, out *telemetry.OutputManager, opts Options) *Runner {
	r := &Runner{
		recorder: rec,
		output:   out,
		opts:     opts,
		now:      time.Now,
	}
	r.cancel = rec.OnEnd(r.onEnd)
	return r
}

// Recorder returns the recorder the runner drives.
func (r *Runner) Recorder() *bench.Recorder {
	return r.recorder
}

// Start opens a new session with a fresh run id.
func (r *Runner) Start(opts bench.Options) error {
	if err := r.recorder.Start(opts); err != nil {
		return err
	}
	r.mu.Lock()
	r.runID = uuid.New()
	r.mu.Unlock()

	slog.Info("benchmark recording started",
		"run_id", r.RunID(),
		"frame_count", opts.FrameCount,
		"auto_end", opts.AutoEnd,
	)
	return nil
}

// RunID identifies the current or most recent session.
func (r *Runner) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runID == uuid.Nil {
		return ""
	}
	return r.runID.String()
}

func (r *Runner) onEnd(s bench.Session) {
	slog.Info("benchmark recording ended",
		"run_id", r.RunID(),
		"frames", s.Frames,
		"frame_index", s.FrameIndex,
	)
	if !r.opts.AutoLog {
		return
	}
	paths, err := r.LogResults(r.ResultName())
	r.mu.Lock()
	r.lastPaths, r.lastErr = paths, err
	r.mu.Unlock()
	if err != nil {
		slog.Error("failed to write benchmark results", "error", err)
	}
}

// ResultName returns the timestamped base name for the next report.
func (r *Runner) ResultName() string {
	name := r.opts.Name
	if name == "" {
		name = "Results-" + r.opts.Mode
	}
	return name + "_" + r.now().Format(TimestampLayout)
}

// Metadata returns the report metadata lines for the most recent session.
func (r *Runner) Metadata() []string {
	meta := []string{bench.FrameCountKey + strconv.Itoa(r.recorder.FrameCount())}
	if id := r.RunID(); id != "" {
		meta = append(meta, "RunID:"+id)
	}
	return append(meta, r.opts.Metadata...)
}

// LogResults analyses the most recent session and writes it under name in
// every enabled format. It returns the written paths.
func (r *Runner) LogResults(name string) ([]string, error) {
	raw := r.recorder.Results()
	groups := bench.Analyse(raw)
	for _, g := range groups {
		for _, p := range g.Processed {
			slog.Debug("benchmark result", "category", g.Name, "result", p)
		}
	}

	paths, err := r.output.WriteResults(name, groups, r.Metadata())
	if err != nil {
		return paths, fmt.Errorf("logging results %s: %w", name, err)
	}
	return paths, nil
}

// LastPaths returns the files written by the most recent automatic log and
// its error, if any.
func (r *Runner) LastPaths() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPaths, r.lastErr
}

// Close unsubscribes the runner from the recorder.
func (r *Runner) Close() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
