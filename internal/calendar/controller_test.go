package calendar

import (
	"fmt"
	"testing"
	"time"

	"gitea.jw6.us/james/rescal/internal/schedule"
)

// recordingOwner applies intents to a board and keeps a log of them.
type recordingOwner struct {
	*schedule.Board
	added     []schedule.Event
	updated   []schedule.Event
	deleted   []string
	resources []schedule.Resource
}

func (o *recordingOwner) AddEvent(ev schedule.Event) {
	o.added = append(o.added, ev)
	o.Board.AddEvent(ev)
}

func (o *recordingOwner) UpdateEvent(ev schedule.Event) {
	o.updated = append(o.updated, ev)
	o.Board.UpdateEvent(ev)
}

func (o *recordingOwner) DeleteEvent(id string) {
	o.deleted = append(o.deleted, id)
	o.Board.DeleteEvent(id)
}

func (o *recordingOwner) AddResource(res schedule.Resource) {
	o.resources = append(o.resources, res)
	o.Board.AddResource(res)
}

var fixedNow = time.Date(2026, time.October, 18, 15, 30, 0, 0, time.UTC)

func sequentialIDs() schedule.IDGenerator {
	n := 0
	return schedule.IDFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func newTestController(t *testing.T, width float64) (*Controller, *recordingOwner, *Window) {
	t.Helper()
	owner := &recordingOwner{Board: schedule.NewBoard(schedule.DefaultResources()...)}
	win := NewWindow()
	c := New(owner, owner, Options{
		Metrics:  FixedWidth(width),
		IDs:      sequentialIDs(),
		Colors:   schedule.ColorFunc(func() string { return "#ADD8E6" }),
		Now:      func() time.Time { return fixedNow },
		Pointer:  win,
		Location: time.UTC,
	})
	return c, owner, win
}

func oct(d int) time.Time {
	return time.Date(2026, time.October, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthNavigation(t *testing.T) {
	c, _, _ := newTestController(t, 100)

	if got := c.CurrentMonth(); !got.Equal(oct(1)) {
		t.Fatalf("CurrentMonth() = %v, want %v", got, oct(1))
	}

	c.NextMonth()
	if got := c.CurrentMonth(); got.Month() != time.November || got.Year() != 2026 {
		t.Errorf("after NextMonth = %v", got)
	}
	c.PrevMonth()
	if got := c.CurrentMonth(); !got.Equal(oct(1)) {
		t.Errorf("next then prev = %v, want %v", got, oct(1))
	}

	c.SetMonth(time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC))
	c.PrevMonth()
	if got := c.CurrentMonth(); got.Year() != 2025 || got.Month() != time.December {
		t.Errorf("January minus one month = %v, want December 2025", got)
	}
	c.NextMonth()
	c.NextMonth()
	if got := c.CurrentMonth(); got.Month() != time.February {
		t.Errorf("month overflowed past February: %v", got)
	}

	c.Today()
	if got := c.CurrentMonth(); !got.Equal(oct(1)) {
		t.Errorf("Today() = %v, want %v", got, oct(1))
	}
}

func TestNavigationRegeneratesDays(t *testing.T) {
	c, _, _ := newTestController(t, 100)
	c.SetMonth(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC))
	if got := len(c.Render().Columns); got != 29 {
		t.Fatalf("February 2024 has %d columns, want 29", got)
	}
	c.NextMonth()
	if got := len(c.Render().Columns); got != 31 {
		t.Fatalf("March 2024 has %d columns, want 31", got)
	}
}

func TestClickCellCreatesEvent(t *testing.T) {
	c, owner, _ := newTestController(t, 100)

	ev, ok := c.ClickCell(Interaction{Origin: OriginCell, Date: time.Date(2026, time.October, 5, 14, 0, 0, 0, time.UTC), ResourceID: "2"})
	if !ok {
		t.Fatal("expected an event to be created")
	}
	if len(owner.added) != 1 {
		t.Fatalf("got %d add intents, want 1", len(owner.added))
	}
	want := schedule.Event{
		ID:         "id-1",
		Title:      "New Event",
		StartDate:  oct(5),
		EndDate:    oct(6),
		ResourceID: "2",
		Color:      "#ADD8E6",
	}
	if ev != want || owner.added[0] != want {
		t.Errorf("created %+v, want %+v", ev, want)
	}
}

func TestClickCellSuppressed(t *testing.T) {
	testCases := []struct {
		name string
		in   Interaction
	}{
		{name: "marker origin", in: Interaction{Origin: OriginMarker, Date: oct(5), ResourceID: "1", EventID: "x"}},
		{name: "unknown resource", in: Interaction{Origin: OriginCell, Date: oct(5), ResourceID: "nope"}},
		{name: "empty resource", in: Interaction{Origin: OriginCell, Date: oct(5)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, owner, _ := newTestController(t, 100)
			if _, ok := c.ClickCell(tc.in); ok {
				t.Error("expected no event")
			}
			if len(owner.Events()) != 0 {
				t.Errorf("board changed: %+v", owner.Events())
			}
		})
	}
}

func TestClickOnMarkerDoesNotDuplicate(t *testing.T) {
	c, owner, _ := newTestController(t, 100)
	ev, _ := c.ClickCell(Interaction{Origin: OriginCell, Date: oct(5), ResourceID: "1"})

	c.ClickCell(Interaction{Origin: OriginMarker, Date: oct(5), ResourceID: "1", EventID: ev.ID})

	cell := c.Render().Rows[0].Cells[4]
	if len(cell.Events) != 1 {
		t.Fatalf("cell holds %d events, want 1", len(cell.Events))
	}
	if len(owner.added) != 1 {
		t.Errorf("got %d add intents, want 1", len(owner.added))
	}
}

func TestDragShiftsFromOriginalDates(t *testing.T) {
	c, owner, win := newTestController(t, 80)
	ev, _ := c.ClickCell(Interaction{Origin: OriginCell, Date: oct(10), ResourceID: "1"})

	if !c.PointerDown(Interaction{Origin: OriginMarker, EventID: ev.ID}, 200) {
		t.Fatal("expected drag to start")
	}
	if win.Listeners() != 1 {
		t.Fatalf("window has %d listeners, want 1", win.Listeners())
	}

	// 30px is under half a column: no change yet.
	win.Move(230)
	if len(owner.updated) != 0 {
		t.Fatalf("got %d updates before crossing half a column", len(owner.updated))
	}

	win.Move(280) // +1 day
	win.Move(290) // still +1
	win.Move(360) // +2 days
	win.Move(120) // -1 day

	if len(owner.updated) != 3 {
		t.Fatalf("got %d updates, want 3", len(owner.updated))
	}
	wantStarts := []int{11, 12, 9}
	for i, d := range wantStarts {
		got := owner.updated[i]
		if !got.StartDate.Equal(oct(d)) || !got.EndDate.Equal(oct(d+1)) {
			t.Errorf("update %d = %v..%v, want Oct %d..%d", i, got.StartDate, got.EndDate, d, d+1)
		}
	}

	win.Up()
	if c.Dragging() {
		t.Error("still dragging after release")
	}
	if c.Drag() != (DragState{}) {
		t.Errorf("drag state not reset: %+v", c.Drag())
	}
	if win.Listeners() != 0 {
		t.Errorf("window still has %d listeners after release", win.Listeners())
	}
	if len(owner.updated) != 3 {
		t.Errorf("release emitted an update")
	}

	win.Move(900)
	if len(owner.updated) != 3 {
		t.Errorf("move after release emitted an update")
	}

	final, _ := owner.Event(ev.ID)
	if !final.StartDate.Equal(oct(9)) {
		t.Errorf("final start = %v, want Oct 9", final.StartDate)
	}
}

func TestDragByExactColumns(t *testing.T) {
	for n := -3; n <= 3; n++ {
		t.Run(fmt.Sprintf("%d columns", n), func(t *testing.T) {
			c, owner, win := newTestController(t, 64)
			ev, _ := c.ClickCell(Interaction{Origin: OriginCell, Date: oct(15), ResourceID: "3"})

			c.PointerDown(Interaction{Origin: OriginMarker, EventID: ev.ID}, 500)
			win.Move(500 + float64(n)*64)
			win.Up()

			wantUpdates := 1
			if n == 0 {
				wantUpdates = 0
			}
			if len(owner.updated) != wantUpdates {
				t.Fatalf("got %d updates, want %d", len(owner.updated), wantUpdates)
			}
			final, _ := owner.Event(ev.ID)
			if !final.StartDate.Equal(oct(15+n)) || !final.EndDate.Equal(oct(16+n)) {
				t.Errorf("final dates %v..%v, want shift of %d days", final.StartDate, final.EndDate, n)
			}
		})
	}
}

func TestDragFallsBackToDefaultWidth(t *testing.T) {
	c, owner, win := newTestController(t, 0)
	ev, _ := c.ClickCell(Interaction{Origin: OriginCell, Date: oct(1), ResourceID: "1"})

	c.PointerDown(Interaction{Origin: OriginMarker, EventID: ev.ID}, 0)
	win.Move(2 * DefaultDayColumnWidth)
	win.Up()

	final, _ := owner.Event(ev.ID)
	if !final.StartDate.Equal(oct(3)) {
		t.Errorf("start = %v, want Oct 3 with default column width", final.StartDate)
	}
}

func TestPointerDownRejected(t *testing.T) {
	c, _, win := newTestController(t, 100)
	ev, _ := c.ClickCell(Interaction{Origin: OriginCell, Date: oct(1), ResourceID: "1"})

	if c.PointerDown(Interaction{Origin: OriginCell, EventID: ev.ID}, 0) {
		t.Error("drag started from a cell origin")
	}
	if c.PointerDown(Interaction{Origin: OriginMarker, EventID: "missing"}, 0) {
		t.Error("drag started for an unknown event")
	}
	if !c.PointerDown(Interaction{Origin: OriginMarker, EventID: ev.ID}, 0) {
		t.Fatal("expected drag to start")
	}
	if c.PointerDown(Interaction{Origin: OriginMarker, EventID: ev.ID}, 50) {
		t.Error("second gesture started while one is active")
	}
	if win.Listeners() != 1 {
		t.Errorf("window has %d listeners, want 1", win.Listeners())
	}
	if _, ok := c.ClickCell(Interaction{Origin: OriginCell, Date: oct(2), ResourceID: "1"}); ok {
		t.Error("cell click during a drag created an event")
	}
}

func TestCloseReleasesSubscription(t *testing.T) {
	c, _, win := newTestController(t, 100)
	ev, _ := c.ClickCell(Interaction{Origin: OriginCell, Date: oct(1), ResourceID: "1"})
	c.PointerDown(Interaction{Origin: OriginMarker, EventID: ev.ID}, 0)

	c.Close()
	if win.Listeners() != 0 {
		t.Errorf("window has %d listeners after Close", win.Listeners())
	}
	if c.Dragging() {
		t.Error("still dragging after Close")
	}
}

func TestRequestDelete(t *testing.T) {
	c, owner, _ := newTestController(t, 100)
	a, _ := c.ClickCell(Interaction{Origin: OriginCell, Date: oct(1), ResourceID: "1"})
	b, _ := c.ClickCell(Interaction{Origin: OriginCell, Date: oct(1), ResourceID: "1"})

	var asked string
	decline := ConfirmFunc(func(msg string) bool { asked = msg; return false })
	accept := ConfirmFunc(func(string) bool { return true })

	if c.RequestDelete(Interaction{Origin: OriginMarker, EventID: a.ID}, decline) {
		t.Error("delete happened without confirmation")
	}
	if asked == "" {
		t.Error("confirmation was not requested")
	}
	if len(owner.Events()) != 2 || len(owner.deleted) != 0 {
		t.Fatalf("declined delete changed the board: %+v", owner.Events())
	}

	if c.RequestDelete(Interaction{Origin: OriginCell, EventID: a.ID}, accept) {
		t.Error("delete accepted from a cell origin")
	}

	if !c.RequestDelete(Interaction{Origin: OriginMarker, EventID: a.ID}, accept) {
		t.Fatal("confirmed delete did not happen")
	}
	events := owner.Events()
	if len(events) != 1 || events[0].ID != b.ID {
		t.Errorf("remaining events = %+v, want only %s", events, b.ID)
	}
	if len(owner.deleted) != 1 || owner.deleted[0] != a.ID {
		t.Errorf("delete intents = %v", owner.deleted)
	}
}

func TestAddResource(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		ok     bool
		wantOK bool
	}{
		{name: "named", text: "Room 42", ok: true, wantOK: true},
		{name: "trimmed", text: "  Van  ", ok: true, wantOK: true},
		{name: "cancelled", text: "ignored", ok: false},
		{name: "empty", text: "", ok: true},
		{name: "blank", text: "   ", ok: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, owner, _ := newTestController(t, 100)
			res, ok := c.AddResource(PromptFunc(func(string) (string, bool) { return tc.text, tc.ok }))
			if ok != tc.wantOK {
				t.Fatalf("AddResource() ok = %v, want %v", ok, tc.wantOK)
			}
			wantCount := 3
			if tc.wantOK {
				wantCount = 4
			}
			all := owner.Resources()
			if len(all) != wantCount {
				t.Fatalf("got %d resources, want %d", len(all), wantCount)
			}
			if tc.wantOK {
				last := all[len(all)-1]
				if last != res || res.ID == "" || res.Name == "" || res.Name != last.Name {
					t.Errorf("appended %+v, returned %+v", last, res)
				}
				for _, other := range all[:len(all)-1] {
					if other.ID == res.ID {
						t.Errorf("resource id %q is not unique", res.ID)
					}
				}
			}
		})
	}
}

func TestParseOrigin(t *testing.T) {
	if ParseOrigin("marker") != OriginMarker || ParseOrigin(" Marker ") != OriginMarker {
		t.Error("expected marker origin")
	}
	if ParseOrigin("cell") != OriginCell || ParseOrigin("") != OriginCell {
		t.Error("expected cell origin")
	}
	if OriginMarker.String() != "marker" || OriginCell.String() != "cell" {
		t.Error("unexpected origin names")
	}
}
