package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitea.jw6.us/james/rescal/internal/schedule"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescal_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route"})

	httpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescal_http_errors_total",
		Help: "Total number of HTTP requests resulting in server errors.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rescal_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	intentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rescal_intents_total",
		Help: "Changes applied to schedule boards, by kind and whether they matched anything.",
	}, []string{"kind", "applied"})

	dragGesturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rescal_drag_gestures_total",
		Help: "Drag gestures started on event markers.",
	})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rescal_sessions_active",
		Help: "Browser sessions currently held in memory.",
	})
)

// Middleware records request metrics.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// The route pattern is only complete once chi has finished routing.
			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			statusCode := strconv.Itoa(status)

			httpRequestsTotal.WithLabelValues(r.Method, route).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route, statusCode).Observe(time.Since(start).Seconds())
			if status >= http.StatusInternalServerError {
				httpErrorsTotal.WithLabelValues(r.Method, route, statusCode).Inc()
			}
		})
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveIntent counts a change applied to a board.
func ObserveIntent(in schedule.Intent) {
	intentsTotal.WithLabelValues(string(in.Kind), strconv.FormatBool(in.Applied)).Inc()
}

// DragStarted counts a started drag gesture.
func DragStarted() {
	dragGesturesTotal.Inc()
}

// SetSessions records the number of live sessions.
func SetSessions(n int) {
	sessionsActive.Set(float64(n))
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
