package schedule

import "time"

// DefaultEventTitle is the placeholder title given to events created from a cell click.
const DefaultEventTitle = "New Event"

// Event is a day-granular block assigned to one resource.
//
// EndDate is kept for callers that need it but plays no part in rendering;
// an event is drawn in the cell of its StartDate only.
type Event struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	ResourceID string    `json:"resourceId"`
	Color      string    `json:"color"`
}

// Shifted returns a copy of e with both dates moved by days.
func (e Event) Shifted(days int) Event {
	e.StartDate = AddDays(e.StartDate, days)
	e.EndDate = AddDays(e.EndDate, days)
	return e
}

// Resource is a grid row: a person, room or machine events are assigned to.
type Resource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultResources returns the rows a new board starts with.
func DefaultResources() []Resource {
	return []Resource{
		{ID: "1", Name: "Resource A"},
		{ID: "2", Name: "Resource B"},
		{ID: "3", Name: "Resource C"},
	}
}
