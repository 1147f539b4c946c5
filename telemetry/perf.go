package telemetry

import (
	"log/slog"
	"slices"
	"time"
)

// PerfCollector tracks whole-frame durations of the host loop over a rolling
// window. It is independent of the recorder and runs whether or not a
// session is active.
type PerfCollector struct {
	windowSize  int
	samples     []time.Duration
	writeIndex  int
	sampleCount int
	frameStart  time.Time
	now         func() time.Time
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]time.Duration, windowSize),
		now:        time.Now,
	}
}

// StartFrame begins timing a frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = p.now()
}

// EndFrame finishes timing the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	if p.frameStart.IsZero() {
		return
	}
	p.Record(p.now().Sub(p.frameStart))
	p.frameStart = time.Time{}
}

// Record adds a frame duration measured elsewhere.
func (p *PerfCollector) Record(d time.Duration) {
	p.samples[p.writeIndex] = d
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated frame statistics.
type PerfStats struct {
	Frames       int
	AvgFrame     time.Duration
	MinFrame     time.Duration
	MaxFrame     time.Duration
	P50Frame     time.Duration
	P95Frame     time.Duration
	FramesPerSec float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{}
	}

	sorted := make([]float64, p.sampleCount)
	var total time.Duration
	for i, d := range p.samples[:p.sampleCount] {
		total += d
		sorted[i] = float64(d)
	}
	slices.Sort(sorted)

	avg := total / time.Duration(p.sampleCount)
	s := PerfStats{
		Frames:   p.sampleCount,
		AvgFrame: avg,
		MinFrame: time.Duration(sorted[0]),
		MaxFrame: time.Duration(sorted[len(sorted)-1]),
		P50Frame: time.Duration(Percentile(sorted, 0.5)),
		P95Frame: time.Duration(Percentile(sorted, 0.95)),
	}
	if avg > 0 {
		s.FramesPerSec = float64(time.Second) / float64(avg)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frames", s.Frames),
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
		slog.Int64("p50_frame_us", s.P50Frame.Microseconds()),
		slog.Int64("p95_frame_us", s.P95Frame.Microseconds()),
		slog.Float64("fps", s.FramesPerSec),
	)
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
