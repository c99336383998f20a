package calendar

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitea.jw6.us/james/rescal/internal/schedule"
)

const (
	deletePrompt   = "Delete this event?"
	resourcePrompt = "Enter resource name:"
)

// Origin tags where a pointer interaction started.
type Origin int

const (
	// OriginCell is an interaction on the empty area of a grid cell.
	OriginCell Origin = iota
	// OriginMarker is an interaction on a rendered event marker.
	OriginMarker
)

func (o Origin) String() string {
	if o == OriginMarker {
		return "marker"
	}
	return "cell"
}

// ParseOrigin maps "marker" to OriginMarker and anything else to OriginCell.
func ParseOrigin(s string) Origin {
	if strings.EqualFold(strings.TrimSpace(s), "marker") {
		return OriginMarker
	}
	return OriginCell
}

// Interaction identifies what the user activated.
type Interaction struct {
	Origin     Origin
	Date       time.Time
	ResourceID string
	EventID    string
}

// DragState is the transient state of a drag gesture.
type DragState struct {
	Dragging bool
	EventID  string
	OriginX  float64
	Offset   int
}

// Options carries the controller's injected capabilities. Zero values fall
// back to real implementations.
type Options struct {
	Metrics  LayoutMetrics
	IDs      schedule.IDGenerator
	Colors   schedule.ColorPicker
	Now      func() time.Time
	Pointer  PointerSource
	Location *time.Location
	Logger   *zap.Logger
}

// Controller is the calendar widget's interaction model. It reads events and
// resources from a Source and expresses every change as an intent to its Owner.
//
// A Controller is not safe for concurrent use; callers serialise access the
// way a UI event loop would.
type Controller struct {
	source  Source
	owner   Owner
	metrics LayoutMetrics
	ids     schedule.IDGenerator
	colors  schedule.ColorPicker
	now     func() time.Time
	pointer PointerSource
	loc     *time.Location
	log     *zap.Logger

	month time.Time

	drag        DragState
	original    schedule.Event
	unsubscribe func()
}

// New creates a controller showing the current month.
func New(source Source, owner Owner, opts Options) *Controller {
	c := &Controller{
		source:  source,
		owner:   owner,
		metrics: opts.Metrics,
		ids:     opts.IDs,
		colors:  opts.Colors,
		now:     opts.Now,
		pointer: opts.Pointer,
		loc:     opts.Location,
		log:     opts.Logger,
	}
	if c.ids == nil {
		c.ids = schedule.UUIDs
	}
	if c.colors == nil {
		c.colors = schedule.RandomColors
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.pointer == nil {
		c.pointer = NewWindow()
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.month = schedule.FirstOfMonth(c.now().In(c.loc))
	return c
}

// CurrentMonth returns midnight on the first day of the visible month.
func (c *Controller) CurrentMonth() time.Time { return c.month }

// PrevMonth shows the previous month.
func (c *Controller) PrevMonth() { c.month = c.month.AddDate(0, -1, 0) }

// NextMonth shows the next month.
func (c *Controller) NextMonth() { c.month = c.month.AddDate(0, 1, 0) }

// Today shows the month containing the current date.
func (c *Controller) Today() { c.month = schedule.FirstOfMonth(c.now().In(c.loc)) }

// SetMonth shows the month containing t.
func (c *Controller) SetMonth(t time.Time) {
	y, m, _ := t.Date()
	c.month = time.Date(y, m, 1, 0, 0, 0, 0, c.loc)
}

// ClickCell creates an event on the clicked day for the clicked resource.
// Clicks that started on an event marker, clicks during a drag and clicks on
// unknown resources create nothing.
func (c *Controller) ClickCell(in Interaction) (schedule.Event, bool) {
	if in.Origin == OriginMarker || c.drag.Dragging {
		return schedule.Event{}, false
	}
	if !c.hasResource(in.ResourceID) {
		c.log.Debug("cell click on unknown resource", zap.String("resource_id", in.ResourceID))
		return schedule.Event{}, false
	}

	start := c.day(in.Date)
	ev := schedule.Event{
		ID:         c.ids.NewID(),
		Title:      schedule.DefaultEventTitle,
		StartDate:  start,
		EndDate:    schedule.AddDays(start, 1),
		ResourceID: in.ResourceID,
		Color:      c.colors.PickColor(),
	}
	c.owner.AddEvent(ev)
	c.log.Debug("event added",
		zap.String("event_id", ev.ID),
		zap.String("resource_id", ev.ResourceID),
		zap.Time("start", ev.StartDate),
	)
	return ev, true
}

// PointerDown starts dragging the marker's event from horizontal position x.
// It reports whether a gesture started.
func (c *Controller) PointerDown(in Interaction, x float64) bool {
	if c.drag.Dragging || in.Origin != OriginMarker || in.EventID == "" {
		return false
	}
	ev, ok := c.findEvent(in.EventID)
	if !ok {
		return false
	}

	c.original = ev
	c.drag = DragState{Dragging: true, EventID: ev.ID, OriginX: x}
	c.unsubscribe = c.pointer.Subscribe(c)
	c.log.Debug("drag started", zap.String("event_id", ev.ID), zap.Float64("x", x))
	return true
}

// PointerMove converts the distance from the gesture origin into whole days
// and moves the event whenever that number changes. The shift is always
// applied to the event as it was when the gesture started.
func (c *Controller) PointerMove(x float64) {
	if !c.drag.Dragging {
		return
	}
	width := columnWidth(c.metrics)
	offset := int(math.Round((x - c.drag.OriginX) / width))
	if offset == c.drag.Offset {
		return
	}
	c.drag.Offset = offset
	c.owner.UpdateEvent(c.original.Shifted(offset))
	c.log.Debug("drag moved", zap.String("event_id", c.drag.EventID), zap.Int("offset", offset))
}

// PointerUp ends the gesture. Nothing is emitted; moves already did the work.
func (c *Controller) PointerUp() {
	if !c.drag.Dragging {
		return
	}
	c.log.Debug("drag ended", zap.String("event_id", c.drag.EventID), zap.Int("offset", c.drag.Offset))
	c.release()
}

// Dragging reports whether a gesture is active.
func (c *Controller) Dragging() bool { return c.drag.Dragging }

// Drag returns the current gesture state.
func (c *Controller) Drag() DragState { return c.drag }

// RequestDelete asks for confirmation and deletes the marker's event if given.
func (c *Controller) RequestDelete(in Interaction, confirm Confirmer) bool {
	if in.Origin != OriginMarker || in.EventID == "" || confirm == nil {
		return false
	}
	if _, ok := c.findEvent(in.EventID); !ok {
		return false
	}
	if !confirm.Confirm(deletePrompt) {
		return false
	}
	c.owner.DeleteEvent(in.EventID)
	c.log.Debug("event deleted", zap.String("event_id", in.EventID))
	return true
}

// AddResource prompts for a name and appends a resource with it.
// A cancelled prompt or a blank name adds nothing.
func (c *Controller) AddResource(prompt Prompter) (schedule.Resource, bool) {
	if prompt == nil {
		return schedule.Resource{}, false
	}
	name, ok := prompt.Prompt(resourcePrompt)
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return schedule.Resource{}, false
	}
	res := schedule.Resource{ID: c.ids.NewID(), Name: name}
	c.owner.AddResource(res)
	c.log.Debug("resource added", zap.String("resource_id", res.ID), zap.String("name", res.Name))
	return res, true
}

// Close releases the pointer subscription of an unfinished gesture.
func (c *Controller) Close() {
	c.release()
}

func (c *Controller) release() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.drag = DragState{}
	c.original = schedule.Event{}
}

func (c *Controller) day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

func (c *Controller) hasResource(id string) bool {
	if id == "" {
		return false
	}
	for _, res := range c.source.Resources() {
		if res.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) findEvent(id string) (schedule.Event, bool) {
	for _, ev := range c.source.Events() {
		if ev.ID == id {
			return ev, true
		}
	}
	return schedule.Event{}, false
}
