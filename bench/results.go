package bench

// RawResult is the sampled frame data of one method for one session.
type RawResult struct {
	Metadata MethodMetadata
	Frames   []Frame
	// Frequency is the clock frequency the frame times were measured in.
	Frequency int64
	// Failed marks a result without a sample buffer.
	Failed bool
}

// NewRawResult builds a result, marking it failed when frames is nil.
func NewRawResult(meta MethodMetadata, frames []Frame, frequency int64) RawResult {
	return RawResult{
		Metadata:  meta,
		Frames:    frames,
		Frequency: frequency,
		Failed:    frames == nil,
	}
}

// Extract pairs registered metadata with sampled frames in registration order.
// Methods without a buffer or without a single call are dropped.
func Extract(methods []MethodMetadata, frames map[MethodID][]Frame, frequency int64) []RawResult {
	results := make([]RawResult, 0, len(methods))
	for _, meta := range methods {
		f, ok := frames[meta.ID]
		if !ok || !observed(f) {
			continue
		}
		results = append(results, NewRawResult(meta, f, frequency))
	}
	return results
}

func observed(frames []Frame) bool {
	for _, f := range frames {
		if f.Count != 0 {
			return true
		}
	}
	return false
}

// Series is a sequence of values with optional frequency weights.
// A nil Weights slice means every value has weight 1.
type Series struct {
	Values  []float64
	Weights []float64
}

// Len returns the number of observations the series represents.
func (s Series) Len() float64 {
	if s.Weights == nil {
		return float64(len(s.Values))
	}
	var n float64
	for _, w := range s.Weights {
		n += w
	}
	return n
}

func (r RawResult) seconds(ticks float64) float64 {
	return ticks / float64(r.Frequency)
}

// ElapsedPerMethod returns the per-call time in seconds of every frame with
// calls, weighted by that frame's call count.
func (r RawResult) ElapsedPerMethod() Series {
	s := Series{
		Values:  make([]float64, 0, len(r.Frames)),
		Weights: make([]float64, 0, len(r.Frames)),
	}
	for _, f := range r.Frames {
		if f.Count == 0 {
			continue
		}
		s.Values = append(s.Values, r.seconds(float64(f.Time)/float64(f.Count)))
		s.Weights = append(s.Weights, float64(f.Count))
	}
	return s
}

// ElapsedPerFrame returns the total time in seconds spent in the method per frame.
func (r RawResult) ElapsedPerFrame() Series {
	values := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		values[i] = r.seconds(float64(f.Time))
	}
	return Series{Values: values}
}

// CallCounts returns the number of calls per frame.
func (r RawResult) CallCounts() Series {
	values := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		values[i] = float64(f.Count)
	}
	return Series{Values: values}
}
