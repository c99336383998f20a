package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// requestLogger returns the global logger tagged with the request id, if any.
func requestLogger(r *http.Request) *zap.Logger {
	logger := zap.L()
	if requestID := middleware.GetReqID(r.Context()); requestID != "" {
		logger = logger.With(zap.String("request_id", requestID))
	}
	return logger
}

// InternalError logs err and answers with a generic 500.
func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	requestLogger(r).Error(message, zap.Error(err), zap.String("path", r.URL.Path))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// BadRequestError logs err and answers 400 with clientMessage.
func BadRequestError(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	requestLogger(r).Warn("bad request", zap.Error(err), zap.String("path", r.URL.Path))
	http.Error(w, clientMessage, http.StatusBadRequest)
}

func LogError(r *http.Request, message string, err error) {
	requestLogger(r).Error(message, zap.Error(err))
}

func LogInfo(r *http.Request, message string, fields ...zap.Field) {
	requestLogger(r).Info(message, fields...)
}
