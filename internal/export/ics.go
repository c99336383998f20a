package export

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"gitea.jw6.us/james/rescal/internal/schedule"
)

const productID = "-//rescal//board//EN"

// Board is the read side of a schedule board.
type Board interface {
	Events() []schedule.Event
	Resources() []schedule.Resource
}

// BuildCalendar turns a board into an iCalendar document with one all-day
// VEVENT per event. Events of unknown resources are skipped, matching what
// the grid shows.
func BuildCalendar(b Board, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	names := make(map[string]string)
	for _, res := range b.Resources() {
		names[res.ID] = res.Name
	}

	for _, ev := range b.Events() {
		name, ok := names[ev.ResourceID]
		if !ok {
			continue
		}
		end := ev.EndDate
		if !end.After(ev.StartDate) {
			end = schedule.AddDays(ev.StartDate, 1)
		}

		vev := cal.AddEvent(ev.ID)
		vev.SetDtStampTime(now.UTC())
		vev.SetSummary(ev.Title)
		vev.SetAllDayStartAt(ev.StartDate)
		vev.SetAllDayEndAt(end)
		vev.SetProperty(ical.ComponentProperty("RESOURCES"), name)
		if ev.Color != "" {
			vev.SetProperty(ical.ComponentProperty("COLOR"), ev.Color)
		}
	}
	return cal
}

// WriteICS serialises the board to w.
func WriteICS(w io.Writer, b Board, now time.Time) error {
	if _, err := io.WriteString(w, BuildCalendar(b, now).Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}
