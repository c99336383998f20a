package calendar

import "sync"

// PointerListener receives pointer notifications for an active gesture.
type PointerListener interface {
	PointerMove(x float64)
	PointerUp()
}

// PointerSource delivers pointer notifications from the whole page, not only
// from the element the gesture started on.
type PointerSource interface {
	// Subscribe attaches l until the returned function is called.
	Subscribe(l PointerListener) (unsubscribe func())
}

// Window is a PointerSource fed by the host: Move and Up fan out to the
// listeners attached at the time of the call, in subscription order.
type Window struct {
	mu        sync.Mutex
	next      uint64
	listeners []windowListener
}

type windowListener struct {
	id uint64
	l  PointerListener
}

// NewWindow returns a Window with no listeners.
func NewWindow() *Window {
	return &Window{}
}

func (w *Window) Subscribe(l PointerListener) func() {
	w.mu.Lock()
	w.next++
	id := w.next
	w.listeners = append(w.listeners, windowListener{id: id, l: l})
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { w.remove(id) })
	}
}

func (w *Window) remove(id uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, wl := range w.listeners {
		if wl.id == id {
			w.listeners = append(w.listeners[:i:i], w.listeners[i+1:]...)
			return
		}
	}
}

// Move reports the pointer's horizontal position.
func (w *Window) Move(x float64) {
	for _, l := range w.snapshot() {
		l.PointerMove(x)
	}
}

// Up reports that the pointer was released.
func (w *Window) Up() {
	for _, l := range w.snapshot() {
		l.PointerUp()
	}
}

// Listeners reports how many listeners are attached.
func (w *Window) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}

// snapshot copies the listeners so callbacks may unsubscribe without deadlocking.
func (w *Window) snapshot() []PointerListener {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]PointerListener, len(w.listeners))
	for i, wl := range w.listeners {
		out[i] = wl.l
	}
	return out
}
