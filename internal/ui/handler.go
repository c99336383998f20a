package ui

import (
	"html/template"
	"net/http"
	"time"

	"gitea.jw6.us/james/rescal/internal/config"
	"gitea.jw6.us/james/rescal/internal/http/errors"
	"gitea.jw6.us/james/rescal/internal/session"
)

// Handler serves the calendar page and the API its script talks to.
type Handler struct {
	cfg       *config.Config
	templates map[string]*template.Template
	now       func() time.Time
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg, templates: templates, now: time.Now}
}

// session returns the caller's session or answers 500 when the session
// middleware did not run.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		errors.InternalError(w, r, session.ErrNoSession, "session middleware missing")
		return nil, false
	}
	return s, true
}
