package bench

import "sync/atomic"

// Frame holds every observation of one method within one frame slot.
type Frame struct {
	Count uint32 `json:"count"`
	Time  int64  `json:"time"` // clock ticks
}

// slot is the concurrently updated form of Frame.
type slot struct {
	count atomic.Uint32
	time  atomic.Int64
}

// sampleStore maps each method id to its ring of frame slots.
// The map is built once in allocate and only read afterwards, so lookups need
// no locking; slot updates are atomic.
type sampleStore struct {
	frameCount int
	buffers    map[MethodID][]slot
}

// allocate creates one zeroed buffer of frameCount slots per id.
func allocate(frameCount int, ids []MethodID) (*sampleStore, error) {
	if frameCount <= 0 {
		return nil, ErrInvalidFrameCount
	}
	s := &sampleStore{
		frameCount: frameCount,
		buffers:    make(map[MethodID][]slot, len(ids)),
	}
	for _, id := range ids {
		s.buffers[id] = make([]slot, frameCount)
	}
	return s, nil
}

// accumulate adds one call of elapsed ticks to id's slot at frameIndex.
// It reports false when id has no buffer.
func (s *sampleStore) accumulate(id MethodID, frameIndex int, elapsed int64) bool {
	buf, ok := s.buffers[id]
	if !ok {
		return false
	}
	sl := &buf[frameIndex]
	// count before time, mirrored in snapshot, so a reader never sees time
	// without its call
	sl.count.Add(1)
	sl.time.Add(elapsed)
	return true
}

// clear zeroes the slot at frameIndex for every method.
func (s *sampleStore) clear(frameIndex int) {
	for _, buf := range s.buffers {
		buf[frameIndex].count.Store(0)
		buf[frameIndex].time.Store(0)
	}
}

// snapshot copies every buffer into plain frames. Taken while calls are in
// flight, a frame may count a call whose time is not yet added, never the
// reverse. It is exact once the session has ended and in-flight calls returned.
func (s *sampleStore) snapshot() map[MethodID][]Frame {
	out := make(map[MethodID][]Frame, len(s.buffers))
	for id, buf := range s.buffers {
		frames := make([]Frame, len(buf))
		for i := range buf {
			t := buf[i].time.Load()
			frames[i] = Frame{
				Count: buf[i].count.Load(),
				Time:  t,
			}
		}
		out[id] = frames
	}
	return out
}
