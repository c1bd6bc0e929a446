package registry

import (
	"fmt"
	"sync"

	"github.com/reversesingularity/phobetron-orbital/model"
)

// EventType indicates what kind of change happened in the registry.
type EventType int

const (
	EventStateUpdated EventType = iota
	EventElementsReloaded
)

// Event is emitted to subscribers when a body changes. The selection/camera
// layer uses state events to retarget a locked body every frame.
type Event struct {
	Type EventType
	Body model.Body
}

// Registry is an in-memory, thread-safe store of tracked bodies keyed by
// their opaque ID. It is owned by the consumer and read-only to the
// propagation kernel, which only ever receives one element set per call.
type Registry struct {
	mu     sync.RWMutex
	bodies map[string]*model.Body

	subs []func(Event)
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		bodies: make(map[string]*model.Body),
	}
}

// Add adds a new body. It returns an error if the ID already exists or if a
// declared parent body is missing, so moons can never dangle.
func (r *Registry) Add(b *model.Body) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bodies[b.ID]; exists {
		return fmt.Errorf("body with ID %q already exists", b.ID)
	}
	if b.ParentID != "" {
		if _, ok := r.bodies[b.ParentID]; !ok {
			return fmt.Errorf("parent body %q not found for %q", b.ParentID, b.ID)
		}
	}
	// store pointer so the ephemeris engine can update state in place
	r.bodies[b.ID] = b
	return nil
}

// Get returns the body with the given ID, or nil if not found.
func (r *Registry) Get(id string) *model.Body {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bodies[id]
}

// List returns a snapshot slice of all bodies.
func (r *Registry) List() []*model.Body {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*model.Body, 0, len(r.bodies))
	for _, b := range r.bodies {
		res = append(res, b)
	}
	return res
}

// Len returns the number of tracked bodies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bodies)
}

// UpdateState records a freshly propagated state for a body and notifies
// subscribers.
func (r *Registry) UpdateState(id string, st model.PropagatedState) error {
	r.mu.Lock()
	b, ok := r.bodies[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("body with ID %q not found", id)
	}
	b.State = st
	event := Event{
		Type: EventStateUpdated,
		Body: *b, // copy for safety
	}
	subs := append([]func(Event){}, r.subs...)
	r.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// ReloadElements swaps in an updated element set for an existing body, e.g.
// after a newly refined orbit solution is published for a recent discovery.
// The last propagated state is cleared so stale positions are not served
// against the new elements.
func (r *Registry) ReloadElements(id string, el model.OrbitalElements) error {
	r.mu.Lock()
	b, ok := r.bodies[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("body with ID %q not found", id)
	}
	b.Elements = el
	b.State = model.PropagatedState{}
	event := Event{
		Type: EventElementsReloaded,
		Body: *b,
	}
	subs := append([]func(Event){}, r.subs...)
	r.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Subscribe registers a callback for registry events. It returns an
// unsubscribe function.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
	idx := len(r.subs) - 1

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if idx < 0 || idx >= len(r.subs) {
			return
		}
		r.subs = append(r.subs[:idx], r.subs[idx+1:]...)
		idx = -1
	}
}
