package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"gitea.jw6.us/james/rescal/internal/config"
	"gitea.jw6.us/james/rescal/internal/http/csrf"
	"gitea.jw6.us/james/rescal/internal/http/ratelimit"
	"gitea.jw6.us/james/rescal/internal/metrics"
	"gitea.jw6.us/james/rescal/internal/session"
	"gitea.jw6.us/james/rescal/internal/ui"
)

// NewRouter wires the calendar page, its form posts and the drag API.
func NewRouter(cfg *config.Config, sessions *session.Manager, apiLimiter *ratelimit.Limiter, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(overrideMethod)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	uiHandler := ui.NewHandler(cfg)

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware())
		r.Use(csrf.Middleware())

		r.Get("/", uiHandler.ViewCalendar)
		r.Get("/export.ics", uiHandler.ExportICS)

		r.Post("/nav/{direction}", uiHandler.Navigate)
		r.Post("/cells", uiHandler.ClickCell)
		r.Post("/resources", uiHandler.AddResource)
		r.Delete("/events/{id}", uiHandler.DeleteEvent)
		r.Post("/events/{id}/delete", uiHandler.DeleteEvent) // HTML form fallback

		r.Route("/api", func(r chi.Router) {
			if apiLimiter != nil {
				r.Use(apiLimiter.Middleware())
			}
			r.Get("/board", uiHandler.BoardJSON)
			r.Post("/drag/start", uiHandler.DragStart)
			r.Post("/drag/move", uiHandler.DragMove)
			r.Post("/drag/end", uiHandler.DragEnd)
		})
	})

	return r
}

// SessionKey charges rate limits to the caller's session.
func SessionKey(r *http.Request) string {
	if s, ok := session.FromContext(r.Context()); ok {
		return s.ID
	}
	return ""
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("request", fields...)
			case strings.HasPrefix(r.URL.Path, "/api/drag/"):
				// Pointer moves arrive at frame rate.
				logger.Debug("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}

func overrideMethod(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.Method
		if r.Method == http.MethodPost {
			if m := strings.TrimSpace(r.PostFormValue("_method")); m != "" {
				method = m
			} else if m := strings.TrimSpace(r.URL.Query().Get("_method")); m != "" {
				method = m
			}
		}
		switch strings.ToUpper(method) {
		case http.MethodPut, http.MethodDelete:
			r.Method = strings.ToUpper(method)
		}
		next.ServeHTTP(w, r)
	})
}
