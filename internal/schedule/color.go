package schedule

import "math/rand"

// Palette holds the pastel tones new events are colored with.
var Palette = [...]string{
	"#FFB6C1", // light pink
	"#98FB98", // pale green
	"#87CEFA", // light sky blue
	"#DDA0DD", // plum
	"#F0E68C", // khaki
	"#E6E6FA", // lavender
	"#FFA07A", // light salmon
	"#90EE90", // light green
	"#ADD8E6", // light blue
	"#F08080", // light coral
}

// RandomColor returns a palette entry chosen uniformly at random.
func RandomColor() string {
	return Palette[rand.Intn(len(Palette))]
}

// ColorPicker chooses the color of a new event.
type ColorPicker interface {
	PickColor() string
}

// ColorFunc adapts a plain function to ColorPicker.
type ColorFunc func() string

func (f ColorFunc) PickColor() string { return f() }

// RandomColors picks from Palette.
var RandomColors ColorPicker = ColorFunc(RandomColor)
