package ui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gitea.jw6.us/james/rescal/internal/calendar"
	"gitea.jw6.us/james/rescal/internal/export"
	"gitea.jw6.us/james/rescal/internal/http/errors"
	"gitea.jw6.us/james/rescal/internal/schedule"
	"gitea.jw6.us/james/rescal/internal/session"
)

// ViewCalendar renders the grid for the visible month. ?month=YYYY-MM jumps
// to another month first.
func (h *Handler) ViewCalendar(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var (
		grid    calendar.Grid
		orphans int
	)
	s.Do(func(s *session.Session) {
		if m := strings.TrimSpace(r.URL.Query().Get("month")); m != "" {
			if month, err := calendar.ParseMonth(m, h.cfg.Location()); err == nil {
				s.Controller.SetMonth(month)
			}
		}
		grid = s.Controller.Render()
		orphans = len(s.Board.Orphans())
	})

	data := h.withFlash(r, map[string]any{
		"Title":          grid.Title,
		"Grid":           grid,
		"OrphanCount":    orphans,
		"DayColumnWidth": h.cfg.Grid.DayColumnWidth,
	})
	h.render(w, r, "calendar.html", data)
}

// Navigate moves the visible month: prev, next or today.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	direction := chi.URLParam(r, "direction")
	switch direction {
	case "prev":
		s.Do(func(s *session.Session) { s.Controller.PrevMonth() })
	case "next":
		s.Do(func(s *session.Session) { s.Controller.NextMonth() })
	case "today":
		s.Do(func(s *session.Session) { s.Controller.Today() })
	default:
		http.Error(w, "unknown direction", http.StatusNotFound)
		return
	}
	h.redirect(w, r, "/", nil)
}

// ClickCell creates an event from a click on a grid cell.
func (h *Handler) ClickCell(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errors.BadRequestError(w, r, err, "invalid form")
		return
	}
	day, err := calendar.ParseDate(strings.TrimSpace(r.FormValue("date")), h.cfg.Location())
	if err != nil {
		errors.BadRequestError(w, r, err, "invalid date")
		return
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	in := calendar.Interaction{
		Origin:     calendar.ParseOrigin(r.FormValue("origin")),
		Date:       day,
		ResourceID: strings.TrimSpace(r.FormValue("resource_id")),
		EventID:    strings.TrimSpace(r.FormValue("event_id")),
	}
	var created bool
	s.Do(func(s *session.Session) {
		_, created = s.Controller.ClickCell(in)
	})

	switch {
	case created:
		h.redirect(w, r, "/", map[string]string{"status": "created"})
	case in.Origin == calendar.OriginMarker:
		// Clicks on a marker are not cell clicks.
		h.redirect(w, r, "/", nil)
	default:
		h.redirect(w, r, "/", map[string]string{"error": "cell_unavailable"})
	}
}

// AddResource appends a resource named by the page's prompt. A cancelled
// prompt (cancelled=1) or a blank name adds nothing.
func (h *Handler) AddResource(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errors.BadRequestError(w, r, err, "invalid form")
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	name := r.FormValue("name")
	cancelled := r.FormValue("cancelled") != ""
	prompt := calendar.PromptFunc(func(string) (string, bool) { return name, !cancelled })

	var (
		res   schedule.Resource
		added bool
	)
	s.Do(func(s *session.Session) {
		res, added = s.Controller.AddResource(prompt)
	})

	switch {
	case added:
		errors.LogInfo(r, "resource added", zap.String("session", s.ID), zap.String("resource_id", res.ID))
		h.redirect(w, r, "/", map[string]string{"status": "resource_added"})
	case cancelled:
		h.redirect(w, r, "/", nil)
	default:
		h.redirect(w, r, "/", map[string]string{"error": "name_required"})
	}
}

// DeleteEvent deletes an event once the page has confirmed it (confirm=yes).
// A DELETE request counts as confirmed.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errors.BadRequestError(w, r, err, "invalid form")
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	confirmed := r.Method == http.MethodDelete || isYes(r.FormValue("confirm"))
	in := calendar.Interaction{Origin: calendar.OriginMarker, EventID: chi.URLParam(r, "id")}

	var deleted bool
	s.Do(func(s *session.Session) {
		deleted = s.Controller.RequestDelete(in, calendar.ConfirmFunc(func(string) bool { return confirmed }))
	})

	switch {
	case deleted:
		errors.LogInfo(r, "event deleted", zap.String("session", s.ID), zap.String("event_id", in.EventID))
		h.redirect(w, r, "/", map[string]string{"status": "deleted"})
	case confirmed:
		h.redirect(w, r, "/", map[string]string{"error": "event_missing"})
	default:
		h.redirect(w, r, "/", nil)
	}
}

// ExportICS downloads the session's board as an iCalendar file.
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "rescal.ics"))
	if err := export.WriteICS(w, s.Board, h.now()); err != nil {
		errors.LogError(r, "ics export failed", err)
	}
}

func isYes(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
