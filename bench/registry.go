package bench

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
)

var (
	// ErrInvalidFrameCount is returned when a session is started with frameCount <= 0.
	ErrInvalidFrameCount = errors.New("frame count must be positive")

	// ErrSessionActive is returned when an operation requires the recorder to be idle.
	ErrSessionActive = errors.New("recording session already active")

	// ErrDuplicateMethod is returned when two different methods claim the same id.
	ErrDuplicateMethod = errors.New("method id already registered to another method")
)

// MethodID identifies an instrumented method. It must be unique across all
// registered methods.
type MethodID uint32

// IDFor derives a stable MethodID from a fully qualified method name.
func IDFor(fullName string) MethodID {
	h := fnv.New32a()
	h.Write([]byte(fullName))
	return MethodID(h.Sum32())
}

// MethodMetadata describes an instrumented method for reporting.
type MethodMetadata struct {
	ID          MethodID `json:"id"`
	FullName    string   `json:"full_name"`
	DisplayName string   `json:"display_name,omitempty"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Baseline    bool     `json:"baseline"`
}

// Name returns the display name if set, otherwise the full name.
func (m MethodMetadata) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.FullName
}

// Registry holds method metadata in registration order. It is append-only
// while idle and read-only while a session is recording.
type Registry struct {
	mu      sync.RWMutex
	methods []MethodMetadata
	index   map[MethodID]int
	locked  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[MethodID]int)}
}

// Register adds or replaces the metadata for meta.ID.
// Re-registering the same id with the same full name replaces the previous
// metadata; an id owned by a different full name is rejected.
func (r *Registry) Register(meta MethodMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		return fmt.Errorf("registering %q: %w", meta.FullName, ErrSessionActive)
	}

	meta.Categories = append([]string(nil), meta.Categories...)

	if i, ok := r.index[meta.ID]; ok {
		if r.methods[i].FullName != meta.FullName {
			return fmt.Errorf("registering %q as %d (owned by %q): %w",
				meta.FullName, meta.ID, r.methods[i].FullName, ErrDuplicateMethod)
		}
		r.methods[i] = meta
		return nil
	}

	r.index[meta.ID] = len(r.methods)
	r.methods = append(r.methods, meta)
	return nil
}

// RegisterMethod registers a method with only an id and a name hint.
func (r *Registry) RegisterMethod(id MethodID, displayNameHint string) error {
	return r.Register(MethodMetadata{ID: id, FullName: displayNameHint})
}

// lookup returns the metadata for id.
func (r *Registry) lookup(id MethodID) (MethodMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return MethodMetadata{}, false
	}
	return r.methods[i], true
}

// All returns a copy of every registered method in registration order.
func (r *Registry) All() []MethodMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MethodMetadata, len(r.methods))
	copy(out, r.methods)
	return out
}

// lockAndIDs makes the registry read-only and returns every registered id in
// registration order.
func (r *Registry) lockAndIDs() []MethodID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = true
	ids := make([]MethodID, len(r.methods))
	for i, m := range r.methods {
		ids[i] = m.ID
	}
	return ids
}

// Len returns the number of registered methods.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.methods)
}

func (r *Registry) setLocked(locked bool) {
	r.mu.Lock()
	r.locked = locked
	r.mu.Unlock()
}
