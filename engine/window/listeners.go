package window

import (
	"slices"
	"sync"
)

// ListenerID identifies one listener registration. IDs are never reused within a process,
// so removing by ID removes exactly the registration that produced it.
type ListenerID uint64

// PointerMoveListener receives the cursor position in logical pixels relative to the
// top-left corner of the surface.
type PointerMoveListener func(x, y float32)

// ResizeListener receives the new logical size of the surface.
type ResizeListener func(width, height int)

// DragListener receives the cursor movement in logical pixels since the previous event
// while the primary button is held.
type DragListener func(dx, dy float32)

// KeyListener receives the key code of a pressed key.
type KeyListener func(keyCode uint32)

type listenerKind int

const (
	listenerPointerMove listenerKind = iota
	listenerResize
	listenerKey
	listenerDrag
)

type listenerEntry struct {
	id      ListenerID
	kind    listenerKind
	pointer PointerMoveListener
	resize  ResizeListener
	key     KeyListener
	drag    DragListener
}

// listenerRegistry keeps registrations in insertion order so dispatch is deterministic.
type listenerRegistry struct {
	mu      *sync.Mutex
	nextID  ListenerID
	entries []listenerEntry
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{mu: &sync.Mutex{}}
}

func (r *listenerRegistry) add(e listenerEntry) ListenerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.id = r.nextID
	r.entries = append(r.entries, e)
	return e.id
}

func (r *listenerRegistry) remove(id ListenerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := slices.IndexFunc(r.entries, func(e listenerEntry) bool { return e.id == id })
	if idx < 0 {
		return false
	}
	r.entries = slices.Delete(r.entries, idx, idx+1)
	return true
}

func (r *listenerRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// snapshot copies the entries of one kind so listeners may add or remove registrations
// while being dispatched.
func (r *listenerRegistry) snapshot(kind listenerKind) []listenerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]listenerEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *listenerRegistry) has(id ListenerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.entries, func(e listenerEntry) bool { return e.id == id })
}

// A listener removed by an earlier listener in the same dispatch is skipped.
func (r *listenerRegistry) dispatchPointerMove(x, y float32) {
	for _, e := range r.snapshot(listenerPointerMove) {
		if r.has(e.id) {
			e.pointer(x, y)
		}
	}
}

func (r *listenerRegistry) dispatchResize(width, height int) {
	for _, e := range r.snapshot(listenerResize) {
		if r.has(e.id) {
			e.resize(width, height)
		}
	}
}

func (r *listenerRegistry) dispatchKey(keyCode uint32) {
	for _, e := range r.snapshot(listenerKey) {
		if r.has(e.id) {
			e.key(keyCode)
		}
	}
}

func (r *listenerRegistry) dispatchDrag(dx, dy float32) {
	for _, e := range r.snapshot(listenerDrag) {
		if r.has(e.id) {
			e.drag(dx, dy)
		}
	}
}
