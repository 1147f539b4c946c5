// Package bench records per-frame timing samples for instrumented methods and
// turns them into grouped, baseline-relative statistics.
//
// Instrumented code brackets a method body with GetTimestamp and EndMethod (or
// Begin and Span.End); the host calls NextFrame once per frame. Both calls are
// cheap no-ops when no session is recording, so instrumentation can stay in
// place permanently.
package bench

import "time"

// Clock supplies monotonic timestamps in ticks.
type Clock interface {
	Now() int64
	// Frequency is the number of ticks per second.
	Frequency() int64
}

// epoch anchors MonotonicClock so readings use Go's monotonic clock.
var epoch = time.Now()

// MonotonicClock counts nanoseconds since process start.
type MonotonicClock struct{}

// Now returns nanoseconds elapsed since the process started.
func (MonotonicClock) Now() int64 {
	return int64(time.Since(epoch))
}

// Frequency returns 1e9 ticks per second.
func (MonotonicClock) Frequency() int64 {
	return int64(time.Second)
}
