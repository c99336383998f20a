package calendar

import "testing"

type recordingListener struct {
	name  string
	log   *[]string
	unsub func()
}

func (l *recordingListener) PointerMove(x float64) { *l.log = append(*l.log, l.name+":move") }

func (l *recordingListener) PointerUp() {
	*l.log = append(*l.log, l.name+":up")
	if l.unsub != nil {
		l.unsub()
	}
}

func TestWindowDeliversInOrder(t *testing.T) {
	w := NewWindow()
	var log []string

	a := &recordingListener{name: "a", log: &log}
	b := &recordingListener{name: "b", log: &log}
	a.unsub = w.Subscribe(a)
	b.unsub = w.Subscribe(b)

	w.Move(1)
	w.Up()
	w.Move(2)

	want := []string{"a:move", "b:move", "a:up", "b:up"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
	if w.Listeners() != 0 {
		t.Errorf("Listeners() = %d after unsubscribing in PointerUp", w.Listeners())
	}
}

func TestWindowUnsubscribeIsIdempotent(t *testing.T) {
	w := NewWindow()
	var log []string
	unsub := w.Subscribe(&recordingListener{name: "a", log: &log})
	keep := w.Subscribe(&recordingListener{name: "b", log: &log})
	defer keep()

	unsub()
	unsub()

	if w.Listeners() != 1 {
		t.Errorf("Listeners() = %d, want 1", w.Listeners())
	}
}

func TestColumnWidthFallback(t *testing.T) {
	testCases := []struct {
		name string
		m    LayoutMetrics
		want float64
	}{
		{name: "nil", m: nil, want: DefaultDayColumnWidth},
		{name: "zero", m: FixedWidth(0), want: DefaultDayColumnWidth},
		{name: "negative", m: FixedWidth(-5), want: DefaultDayColumnWidth},
		{name: "measured", m: FixedWidth(42.5), want: 42.5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := columnWidth(tc.m); got != tc.want {
				t.Errorf("columnWidth() = %v, want %v", got, tc.want)
			}
		})
	}
}
