package ui

import (
	"net/http"

	"gitea.jw6.us/james/rescal/internal/calendar"
	"gitea.jw6.us/james/rescal/internal/http/errors"
	"gitea.jw6.us/james/rescal/internal/metrics"
	"gitea.jw6.us/james/rescal/internal/schedule"
	"gitea.jw6.us/james/rescal/internal/session"
)

type dragStartRequest struct {
	EventID     string  `json:"eventId"`
	X           float64 `json:"x"`
	ColumnWidth float64 `json:"columnWidth"`
}

type dragMoveRequest struct {
	X float64 `json:"x"`
}

type dragResponse struct {
	Dragging bool            `json:"dragging"`
	EventID  string          `json:"eventId,omitempty"`
	Offset   int             `json:"offset"`
	Day      string          `json:"day,omitempty"`
	Event    *schedule.Event `json:"event,omitempty"`
}

type boardResponse struct {
	Month     string              `json:"month"`
	Events    []schedule.Event    `json:"events"`
	Resources []schedule.Resource `json:"resources"`
	Dragging  bool                `json:"dragging"`
}

// DragStart begins dragging an event marker.
func (h *Handler) DragStart(w http.ResponseWriter, r *http.Request) {
	var req dragStartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errors.BadRequestError(w, r, err, "invalid request body")
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var resp dragResponse
	s.Do(func(s *session.Session) {
		s.Layout.Report(req.ColumnWidth)
		if s.Controller.PointerDown(calendar.Interaction{Origin: calendar.OriginMarker, EventID: req.EventID}, req.X) {
			metrics.DragStarted()
		}
		resp = dragState(s)
	})
	writeJSON(w, r, http.StatusOK, resp)
}

// DragMove forwards a pointer move to the session's window.
func (h *Handler) DragMove(w http.ResponseWriter, r *http.Request) {
	var req dragMoveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errors.BadRequestError(w, r, err, "invalid request body")
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var resp dragResponse
	s.Do(func(s *session.Session) {
		s.Window.Move(req.X)
		resp = dragState(s)
	})
	writeJSON(w, r, http.StatusOK, resp)
}

// DragEnd forwards a pointer release to the session's window.
func (h *Handler) DragEnd(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var resp dragResponse
	s.Do(func(s *session.Session) {
		s.Window.Up()
		resp = dragState(s)
	})
	writeJSON(w, r, http.StatusOK, resp)
}

// BoardJSON returns the session's events and resources.
func (h *Handler) BoardJSON(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var resp boardResponse
	s.Do(func(s *session.Session) {
		resp = boardResponse{
			Month:     s.Controller.CurrentMonth().Format(calendar.MonthLayout),
			Events:    s.Board.Events(),
			Resources: s.Board.Resources(),
			Dragging:  s.Controller.Dragging(),
		}
	})
	if resp.Events == nil {
		resp.Events = []schedule.Event{}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func dragState(s *session.Session) dragResponse {
	d := s.Controller.Drag()
	resp := dragResponse{Dragging: d.Dragging, EventID: d.EventID, Offset: d.Offset}
	if d.Dragging {
		if ev, ok := s.Board.Event(d.EventID); ok {
			resp.Event = &ev
			resp.Day = ev.StartDate.Format(calendar.DateLayout)
		}
	}
	return resp
}
