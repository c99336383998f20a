package csrf

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"

	apperrors "gitea.jw6.us/james/rescal/internal/http/errors"
	"gitea.jw6.us/james/rescal/internal/session"
)

const (
	// HeaderName carries the token on requests from the page script.
	HeaderName = "X-CSRF-Token"
	// FormField carries the token on form posts.
	FormField = "_csrf"
)

// Middleware rejects state-changing requests whose token does not match the
// one issued to the caller's session. It must run after the session middleware.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok {
				apperrors.InternalError(w, r, session.ErrNoSession, "csrf check without session")
				return
			}
			if isStateChanging(r.Method) && !Valid(s, provided(r)) {
				apperrors.LogInfo(r, "csrf token rejected", zap.String("session", s.ID), zap.String("method", r.Method))
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Valid reports whether token matches the session's token.
func Valid(s *session.Session, token string) bool {
	if s == nil || s.CSRFToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.CSRFToken)) == 1
}

func provided(r *http.Request) string {
	if token := r.Header.Get(HeaderName); token != "" {
		return token
	}
	return r.FormValue(FormField)
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
