package bench

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// State is the recorder's session state.
type State int32

const (
	Idle State = iota
	AwaitingFirstFrame
	Recording
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingFirstFrame:
		return "awaiting_first_frame"
	case Recording:
		return "recording"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Options configures a recording session.
type Options struct {
	// FrameCount is the ring length in frames. Must be positive.
	FrameCount int
	// AutoEnd ends the session once FrameCount frames have elapsed,
	// otherwise the cursor wraps to the start of the ring.
	AutoEnd bool
	// WaitForFirstFrame defers accumulation until the first NextFrame call.
	WaitForFirstFrame bool
	// ClearOnWrap zeroes each slot as the cursor re-enters it after a wrap,
	// instead of accumulating on top of the previous lap.
	ClearOnWrap bool
}

// Session describes the current or most recent session.
type Session struct {
	Options
	State      State
	FrameIndex int
	// Frames is the number of completed frame advances.
	Frames int
}

// EndFunc is notified when a session ends.
type EndFunc func(Session)

// Recorder owns the recording session and its sample store.
//
// EndMethod may be called from any goroutine. Start, Pause, NextFrame and End
// are serialised internally; NextFrame is expected to come from a single frame
// driver.
type Recorder struct {
	registry *Registry
	clock    Clock

	// hot-path state
	state atomic.Int32
	frame atomic.Int32
	store atomic.Pointer[sampleStore]

	mu        sync.Mutex
	opts      Options
	frames    int
	wrapped   bool
	observers []observer
	nextObs   int

	dropped  atomic.Uint64
	reported sync.Map // MethodID -> struct{}
}

type observer struct {
	id int
	fn EndFunc
}

// NewRecorder creates an idle recorder over reg. A nil clock uses MonotonicClock.
func NewRecorder(reg *Registry, clock Clock) *Recorder {
	if reg == nil {
		reg = NewRegistry()
	}
	if clock == nil {
		clock = MonotonicClock{}
	}
	return &Recorder{registry: reg, clock: clock}
}

// Registry returns the recorder's method registry.
func (r *Recorder) Registry() *Registry {
	return r.registry
}

// StartRecording begins a session over every currently registered method.
func (r *Recorder) StartRecording(frameCount int, autoEnd, waitForFirstFrame bool) error {
	return r.Start(Options{
		FrameCount:        frameCount,
		AutoEnd:           autoEnd,
		WaitForFirstFrame: waitForFirstFrame,
	})
}

// Start begins a session with opts. On error the recorder is left unchanged.
func (r *Recorder) Start(opts Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State() != Idle {
		return ErrSessionActive
	}
	store, err := allocate(opts.FrameCount, r.registry.lockAndIDs())
	if err != nil {
		r.registry.setLocked(false)
		return fmt.Errorf("starting recording with %d frames: %w", opts.FrameCount, err)
	}

	r.opts = opts
	r.frames = 0
	r.wrapped = false
	r.dropped.Store(0)
	r.reported.Clear()

	r.store.Store(store)
	r.frame.Store(0)
	if opts.WaitForFirstFrame {
		r.state.Store(int32(AwaitingFirstFrame))
	} else {
		r.state.Store(int32(Recording))
	}

	slog.Debug("recording started",
		"frame_count", opts.FrameCount,
		"auto_end", opts.AutoEnd,
		"wait_for_first_frame", opts.WaitForFirstFrame,
		"methods", len(store.buffers),
	)
	return nil
}

// GetTimestamp returns the current clock reading, to be passed to EndMethod.
func (r *Recorder) GetTimestamp() int64 {
	return r.clock.Now()
}

// EndMethod records one call of id that started at start.
// It is a no-op unless the recorder is recording.
func (r *Recorder) EndMethod(id MethodID, start int64) {
	// The store is captured before the state check so a call that straddles
	// EndRecording and a new Start lands in its own session's store.
	store := r.store.Load()
	if State(r.state.Load()) != Recording || store == nil {
		return
	}
	idx := int(r.frame.Load())
	end := r.clock.Now()

	if idx >= store.frameCount {
		return
	}
	if !store.accumulate(id, idx, end-start) {
		r.unknownMethod(id)
	}
}

// unknownMethod drops an event for an unregistered id and logs the id once.
func (r *Recorder) unknownMethod(id MethodID) {
	r.dropped.Add(1)
	if _, seen := r.reported.LoadOrStore(id, struct{}{}); !seen {
		slog.Warn("timing event for unregistered method dropped", "method_id", uint32(id))
	}
}

// Span is an in-flight timing of one method call.
type Span struct {
	r     *Recorder
	id    MethodID
	start int64
}

// Begin starts timing id. Call End on the returned span at every exit path.
func (r *Recorder) Begin(id MethodID) Span {
	return Span{r: r, id: id, start: r.clock.Now()}
}

// End records the span.
func (s Span) End() {
	s.r.EndMethod(s.id, s.start)
}

// NextFrame marks a frame boundary.
func (r *Recorder) NextFrame() {
	state := State(r.state.Load())
	if state == Idle {
		return
	}

	r.mu.Lock()
	ended, session := r.advanceLocked()
	r.mu.Unlock()

	if ended {
		r.notify(session)
	}
}

func (r *Recorder) advanceLocked() (bool, Session) {
	switch State(r.state.Load()) {
	case AwaitingFirstFrame:
		r.state.Store(int32(Recording))
		return false, Session{}
	case Recording, Paused:
	default:
		return false, Session{}
	}

	r.frames++
	next := int(r.frame.Load()) + 1
	if next >= r.opts.FrameCount {
		if r.opts.AutoEnd {
			return r.endLocked()
		}
		next = 0
		r.wrapped = true
	}
	if r.wrapped && r.opts.ClearOnWrap {
		r.store.Load().clear(next)
	}
	r.frame.Store(int32(next))
	return false, Session{}
}

// PauseRecording suspends or resumes accumulation. Frame advancement is
// unaffected. It has no effect outside an open session.
func (r *Recorder) PauseRecording(pause bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch State(r.state.Load()) {
	case Recording:
		if pause {
			r.state.Store(int32(Paused))
		}
	case Paused:
		if !pause {
			r.state.Store(int32(Recording))
		}
	}
}

// EndRecording closes the session and notifies end observers. Calling it while
// idle does nothing.
func (r *Recorder) EndRecording() {
	r.mu.Lock()
	ended, session := r.endLocked()
	r.mu.Unlock()

	if ended {
		r.notify(session)
	}
}

func (r *Recorder) endLocked() (bool, Session) {
	if State(r.state.Load()) == Idle {
		return false, Session{}
	}
	r.state.Store(int32(Idle))
	r.registry.setLocked(false)

	session := r.sessionLocked()
	if n := r.dropped.Load(); n > 0 {
		slog.Warn("recording ended with dropped events", "dropped", n)
	}
	slog.Debug("recording ended", "frames", r.frames, "frame_index", session.FrameIndex)
	return true, session
}

func (r *Recorder) notify(session Session) {
	r.mu.Lock()
	obs := make([]observer, len(r.observers))
	copy(obs, r.observers)
	r.mu.Unlock()

	for _, o := range obs {
		o.fn(session)
	}
}

// OnEnd registers fn to be called after each session ends. The returned
// function removes the registration.
func (r *Recorder) OnEnd(fn EndFunc) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextObs
	r.nextObs++
	r.observers = append(r.observers, observer{id: id, fn: fn})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, o := range r.observers {
			if o.id == id {
				r.observers = append(r.observers[:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// State returns the current session state.
func (r *Recorder) State() State {
	return State(r.state.Load())
}

// IsRecording reports whether a session is open, paused or not.
func (r *Recorder) IsRecording() bool {
	return r.State() != Idle
}

// FrameIndex returns the current frame cursor.
func (r *Recorder) FrameIndex() int {
	return int(r.frame.Load())
}

// FrameCount returns the ring length of the current or most recent session.
func (r *Recorder) FrameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts.FrameCount
}

// Dropped returns the number of events dropped for unregistered methods in the
// current or last session.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Session returns a description of the current or most recent session.
func (r *Recorder) Session() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionLocked()
}

func (r *Recorder) sessionLocked() Session {
	return Session{
		Options:    r.opts,
		State:      State(r.state.Load()),
		FrameIndex: int(r.frame.Load()),
		Frames:     r.frames,
	}
}

// Results extracts the samples of the current or most recent session. Read
// after EndRecording for a quiescent snapshot; while recording the copy may
// straddle in-flight updates.
func (r *Recorder) Results() []RawResult {
	store := r.store.Load()
	if store == nil {
		return nil
	}
	return Extract(r.registry.All(), store.snapshot(), r.clock.Frequency())
}
