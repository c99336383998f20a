package ui

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"gitea.jw6.us/james/rescal/internal/calendar"
)

//go:embed templates/*
var templateFS embed.FS

var templates = mustParseTemplates()

var flashMessages = map[string]string{
	"created":          "Event created.",
	"deleted":          "Event deleted.",
	"resource_added":   "Resource added.",
	"cell_unavailable": "No event was created: the row no longer exists or an event is being dragged.",
	"name_required":    "Resource name cannot be empty.",
	"event_missing":    "That event no longer exists.",
}

var funcMap = template.FuncMap{
	"monthParam": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(calendar.MonthLayout)
	},
	"dateKey": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(calendar.DateLayout)
	},
	// Unknown codes render nothing so query strings cannot inject page text.
	"flashText": func(code string) string {
		return flashMessages[code]
	},
}

func mustParseTemplates() map[string]*template.Template {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}

	base := template.Must(template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html"))

	sets := make(map[string]*template.Template)
	for _, file := range files {
		if file == "templates/base.html" {
			continue
		}

		set := template.Must(base.Clone())
		template.Must(set.ParseFS(templateFS, file))
		sets[file[len("templates/"):]] = set
	}

	return sets
}
