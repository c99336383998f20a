package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"gitea.jw6.us/james/rescal/internal/calendar"
	"gitea.jw6.us/james/rescal/internal/config"
	"gitea.jw6.us/james/rescal/internal/metrics"
	"gitea.jw6.us/james/rescal/internal/schedule"
)

const cookieName = "rescal_session"

// DefaultMaxSessions caps the live sessions when the config leaves it unset.
const DefaultMaxSessions = 10000

var (
	// ErrNoSession is returned when a request carries no loaded session.
	ErrNoSession = errors.New("no session in request context")

	errTokenUnavailable = errors.New("csrf token generation failed")
)

// Session is one browser's board and calendar widget. Its data lives only as
// long as the session does.
type Session struct {
	ID         string
	// CSRFToken must accompany every state-changing request of this session.
	CSRFToken  string
	Board      *schedule.Board
	Controller *calendar.Controller
	Window     *calendar.Window
	Layout     *ReportedMetrics

	mu       sync.Mutex
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session, so handlers for one
// browser run one at a time and to completion.
func (s *Session) Do(fn func(s *Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// ReportedMetrics holds the day column width measured by the page.
type ReportedMetrics struct {
	mu       sync.Mutex
	width    float64
	fallback float64
}

// Report stores a measured width. Non-finite or non-positive values are ignored.
func (m *ReportedMetrics) Report(width float64) {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return
	}
	m.mu.Lock()
	m.width = width
	m.mu.Unlock()
}

// DayColumnWidth implements calendar.LayoutMetrics.
func (m *ReportedMetrics) DayColumnWidth() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.width > 0 {
		return m.width, true
	}
	return m.fallback, m.fallback > 0
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock replaces time.Now for idle tracking and the calendar's today marker.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDs sets the id generator handed to new controllers.
func WithIDs(ids schedule.IDGenerator) Option {
	return func(m *Manager) { m.ids = ids }
}

// WithColors sets the color picker handed to new controllers.
func WithColors(colors schedule.ColorPicker) Option {
	return func(m *Manager) { m.colors = colors }
}

// Manager keeps the live sessions in memory.
type Manager struct {
	cfg    *config.Config
	log    *zap.Logger
	codec  *securecookie.SecureCookie
	secure bool
	now    func() time.Time
	ids    schedule.IDGenerator
	colors schedule.ColorPicker

	mu       sync.Mutex
	sessions map[string]*Session
	limit    int
}

// NewManager creates an empty session registry. Idleness is tracked per
// session by the last request, so the cookie itself carries no expiry.
func NewManager(cfg *config.Config, logger *zap.Logger, opts ...Option) *Manager {
	codec := securecookie.New(deriveKey(cfg.Session.Secret, "rescal session hash"), deriveKey(cfg.Session.Secret, "rescal session block"))
	codec.MaxAge(0)

	limit := cfg.Session.MaxSessions
	if limit <= 0 {
		limit = DefaultMaxSessions
	}

	secure := true
	if base, err := url.Parse(cfg.BaseURL); err == nil && base.Scheme != "https" {
		secure = false
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		cfg:      cfg,
		log:      logger,
		codec:    codec,
		secure:   secure,
		now:      time.Now,
		sessions: make(map[string]*Session),
		limit:    limit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns the session named by the request cookie, creating a new one
// (and issuing its cookie) when the cookie is missing, invalid or expired.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if c, err := r.Cookie(cookieName); err == nil {
		var id string
		if err := m.codec.Decode(cookieName, c.Value, &id); err == nil {
			if s, ok := m.touch(id); ok {
				return s, nil
			}
		}
	}

	s, err := m.create(uuid.NewString())
	if err != nil {
		return nil, err
	}
	encoded, err := m.codec.Encode(cookieName, s.ID)
	if err != nil {
		m.remove(s.ID)
		return nil, fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Get looks a live session up by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the configured timeout and
// tears down their controllers. It returns how many were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.Session.IdleTimeout)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range stale {
		s.Do(func(s *Session) { s.Controller.Close() })
	}
	metrics.SetSessions(n)
	if len(stale) > 0 {
		m.log.Info("swept idle sessions", zap.Int("removed", len(stale)), zap.Int("remaining", n))
	}
	return len(stale)
}

// Start schedules Sweep on the configured cron spec until ctx is done.
func (m *Manager) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(m.cfg.Session.Sweep, func() { m.Sweep() }); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", m.cfg.Session.Sweep, err)
	}
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}

// touch marks the session as used now. A session idle past the timeout is
// treated as gone even if the sweeper has not run yet.
func (m *Manager) touch(id string) (*Session, bool) {
	now := m.now()
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok && now.Sub(s.lastSeen) > m.cfg.Session.IdleTimeout {
		delete(m.sessions, id)
		n := len(m.sessions)
		m.mu.Unlock()
		m.discard(s, n)
		return nil, false
	}
	if ok {
		s.lastSeen = now
	}
	m.mu.Unlock()
	return s, ok
}

// discard tears down a session already removed from the registry.
func (m *Manager) discard(s *Session, remaining int) {
	s.Do(func(s *Session) { s.Controller.Close() })
	metrics.SetSessions(remaining)
}

// evictOldest drops the least recently used session. m.mu must be held.
func (m *Manager) evictOldest() *Session {
	var oldest *Session
	for _, s := range m.sessions {
		if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(m.sessions, oldest.ID)
	}
	return oldest
}

func (m *Manager) create(id string) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	logger := m.log.With(zap.String("session", id))

	board := schedule.NewBoard(schedule.DefaultResources()...)
	board.Observe(func(in schedule.Intent) {
		metrics.ObserveIntent(in)
		logger.Debug("intent applied", zap.String("kind", string(in.Kind)), zap.String("id", in.ID), zap.Bool("applied", in.Applied))
	})

	win := calendar.NewWindow()
	layout := &ReportedMetrics{fallback: m.cfg.Grid.DayColumnWidth}
	s := &Session{
		ID:        id,
		CSRFToken: token,
		Board:     board,
		Window:    win,
		Layout:    layout,
		Controller: calendar.New(board, board, calendar.Options{
			Metrics:  layout,
			IDs:      m.ids,
			Colors:   m.colors,
			Now:      m.now,
			Pointer:  win,
			Location: m.cfg.Location(),
			Logger:   logger,
		}),
		lastSeen: m.now(),
	}

	m.mu.Lock()
	var evicted *Session
	if len(m.sessions) >= m.limit {
		evicted = m.evictOldest()
	}
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	if evicted != nil {
		m.discard(evicted, n)
		m.log.Warn("session limit reached, evicted least recently used", zap.String("evicted", evicted.ID), zap.Int("limit", m.limit))
	}
	metrics.SetSessions(n)
	logger.Debug("session created")
	return s, nil
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	metrics.SetSessions(n)
}

func deriveKey(secret, label string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(label))
	return mac.Sum(nil)
}

func newToken() (string, error) {
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return "", errTokenUnavailable
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}
