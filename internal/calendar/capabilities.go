package calendar

import (
	"math"

	"gitea.jw6.us/james/rescal/internal/schedule"
)

// Source supplies the collections the controller renders.
type Source interface {
	Events() []schedule.Event
	Resources() []schedule.Resource
}

// Owner receives the controller's change intents and applies them to the
// canonical collections. The controller never changes data itself.
type Owner interface {
	AddEvent(ev schedule.Event)
	UpdateEvent(ev schedule.Event)
	DeleteEvent(id string)
	AddResource(res schedule.Resource)
}

// DefaultDayColumnWidth is used when the layout has not reported a usable width.
const DefaultDayColumnWidth = 100.0

// LayoutMetrics reports the rendered width, in pixels, of one day column.
// ok is false when nothing has been measured yet.
type LayoutMetrics interface {
	DayColumnWidth() (width float64, ok bool)
}

// FixedWidth is a LayoutMetrics that always reports the same width.
type FixedWidth float64

func (f FixedWidth) DayColumnWidth() (float64, bool) { return float64(f), f > 0 }

// columnWidth resolves m to a finite positive width.
func columnWidth(m LayoutMetrics) float64 {
	if m == nil {
		return DefaultDayColumnWidth
	}
	w, ok := m.DayColumnWidth()
	if !ok || w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return DefaultDayColumnWidth
	}
	return w
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// Prompter asks the user for a line of text. ok is false when the prompt was cancelled.
type Prompter interface {
	Prompt(message string) (text string, ok bool)
}

// PromptFunc adapts a plain function to Prompter.
type PromptFunc func(message string) (string, bool)

func (f PromptFunc) Prompt(message string) (string, bool) { return f(message) }
