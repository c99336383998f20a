package schedule

import "sync"

// IntentKind names a change applied to a Board.
type IntentKind string

const (
	IntentAddEvent    IntentKind = "add_event"
	IntentUpdateEvent IntentKind = "update_event"
	IntentDeleteEvent IntentKind = "delete_event"
	IntentAddResource IntentKind = "add_resource"
)

// Intent describes one applied change. Applied is false when the change
// matched nothing (updating or deleting an unknown event).
type Intent struct {
	Kind    IntentKind
	ID      string
	Applied bool
}

// Board owns the canonical event and resource collections.
//
// Every change builds a new slice and swaps it in, so a slice handed out by
// Events or Resources is never modified afterwards.
type Board struct {
	mu        sync.RWMutex
	events    []Event
	resources []Resource
	observer  func(Intent)
}

// NewBoard creates a board with the given resources and no events.
func NewBoard(resources ...Resource) *Board {
	return &Board{resources: append([]Resource(nil), resources...)}
}

// Observe registers fn to be called after every change. Passing nil removes it.
func (b *Board) Observe(fn func(Intent)) {
	b.mu.Lock()
	b.observer = fn
	b.mu.Unlock()
}

// Events returns the current event collection.
func (b *Board) Events() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.events
}

// Resources returns the current resources in row order.
func (b *Board) Resources() []Resource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.resources
}

// Event looks up an event by id.
func (b *Board) Event(id string) (Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ev := range b.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return Event{}, false
}

// Resource looks up a resource by id.
func (b *Board) Resource(id string) (Resource, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, res := range b.resources {
		if res.ID == id {
			return res, true
		}
	}
	return Resource{}, false
}

// Orphans returns events whose resource no longer exists. They stay stored
// but are never rendered.
func (b *Board) Orphans() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	known := make(map[string]struct{}, len(b.resources))
	for _, res := range b.resources {
		known[res.ID] = struct{}{}
	}
	var orphans []Event
	for _, ev := range b.events {
		if _, ok := known[ev.ResourceID]; !ok {
			orphans = append(orphans, ev)
		}
	}
	return orphans
}

// AddEvent appends ev.
func (b *Board) AddEvent(ev Event) {
	b.mu.Lock()
	next := make([]Event, 0, len(b.events)+1)
	next = append(next, b.events...)
	b.events = append(next, ev)
	b.mu.Unlock()

	b.notify(Intent{Kind: IntentAddEvent, ID: ev.ID, Applied: true})
}

// UpdateEvent replaces the event with ev's id. Unknown ids are ignored.
func (b *Board) UpdateEvent(ev Event) {
	b.mu.Lock()
	applied := false
	next := make([]Event, len(b.events))
	for i, cur := range b.events {
		if cur.ID == ev.ID {
			next[i] = ev
			applied = true
			continue
		}
		next[i] = cur
	}
	b.events = next
	b.mu.Unlock()

	b.notify(Intent{Kind: IntentUpdateEvent, ID: ev.ID, Applied: applied})
}

// DeleteEvent removes the event with the given id. Unknown ids are ignored.
func (b *Board) DeleteEvent(id string) {
	b.mu.Lock()
	next := make([]Event, 0, len(b.events))
	for _, cur := range b.events {
		if cur.ID != id {
			next = append(next, cur)
		}
	}
	applied := len(next) != len(b.events)
	b.events = next
	b.mu.Unlock()

	b.notify(Intent{Kind: IntentDeleteEvent, ID: id, Applied: applied})
}

// AddResource appends res as the last row.
func (b *Board) AddResource(res Resource) {
	b.mu.Lock()
	next := make([]Resource, 0, len(b.resources)+1)
	next = append(next, b.resources...)
	b.resources = append(next, res)
	b.mu.Unlock()

	b.notify(Intent{Kind: IntentAddResource, ID: res.ID, Applied: true})
}

func (b *Board) notify(in Intent) {
	b.mu.RLock()
	fn := b.observer
	b.mu.RUnlock()
	if fn != nil {
		fn(in)
	}
}
