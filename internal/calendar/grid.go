package calendar

import (
	"time"

	"gitea.jw6.us/james/rescal/internal/schedule"
)

// DateLayout is the wire format of a grid day.
const DateLayout = "2006-01-02"

// MonthLayout is the wire format of a month reference.
const MonthLayout = "2006-01"

// Column is one day of the visible month.
type Column struct {
	Date    time.Time
	Key     string
	Day     int
	Weekday string
	Today   bool
}

// Cell is the intersection of a resource row and a day column.
type Cell struct {
	Date       time.Time
	Key        string
	ResourceID string
	Today      bool
	Events     []schedule.Event
}

// Row is one resource and its cells, one per day.
type Row struct {
	Resource schedule.Resource
	Cells    []Cell
}

// Grid is the rendered view of one month.
type Grid struct {
	Title   string
	Month   time.Time
	Prev    time.Time
	Next    time.Time
	Columns []Column
	Rows    []Row
}

// Render builds the grid for the visible month. Events are placed in the cell
// whose resource matches and whose day equals the event's start day; several
// events in one cell are kept in collection order. Events of unknown resources
// are left out.
func (c *Controller) Render() Grid {
	today := c.now().In(c.loc)
	dates := schedule.DatesForMonth(c.month)

	columns := make([]Column, len(dates))
	for i, d := range dates {
		columns[i] = Column{
			Date:    d,
			Key:     d.Format(DateLayout),
			Day:     d.Day(),
			Weekday: d.Format("Mon"),
			Today:   schedule.SameDay(d, today),
		}
	}

	placed := make(map[string][]schedule.Event)
	for _, ev := range c.source.Events() {
		key := cellKey(ev.ResourceID, ev.StartDate.In(c.loc).Format(DateLayout))
		placed[key] = append(placed[key], ev)
	}

	resources := c.source.Resources()
	rows := make([]Row, len(resources))
	for i, res := range resources {
		cells := make([]Cell, len(columns))
		for j, col := range columns {
			cells[j] = Cell{
				Date:       col.Date,
				Key:        col.Key,
				ResourceID: res.ID,
				Today:      col.Today,
				Events:     placed[cellKey(res.ID, col.Key)],
			}
		}
		rows[i] = Row{Resource: res, Cells: cells}
	}

	return Grid{
		Title:   c.month.Format("January 2006"),
		Month:   c.month,
		Prev:    c.month.AddDate(0, -1, 0),
		Next:    c.month.AddDate(0, 1, 0),
		Columns: columns,
		Rows:    rows,
	}
}

func cellKey(resourceID, day string) string {
	return resourceID + "|" + day
}

// ParseDate parses a DateLayout day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// ParseMonth parses a MonthLayout month in loc.
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(MonthLayout, s, loc)
}
