// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/system/flash"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and then tells the user.
// The Log* methods render a full error page; the HTMX* methods answer an
// HTMX request with a toast and no body, so the current page stays put.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

func (l *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		fs = append(fs, zap.String("request_id", id))
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}

// LogServerError logs at error level and renders the 500 page.
func (l *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	l.log.Error(msg, l.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs at warn level and renders the 400 page.
func (l *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	l.log.Warn(msg, l.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs at warn level and renders the 403 page.
func (l *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string, userMsg, backURL string) {
	l.log.Warn(msg, l.fields(r, nil)...)
	RenderForbidden(w, r, userMsg, backURL)
}

// HTMXLogServerError logs at error level and answers with an error toast.
func (l *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	l.log.Error(msg, l.fields(r, err)...)
	htmxToast(w, http.StatusInternalServerError, userMsg)
}

// HTMXLogBadRequest logs at warn level and answers with an error toast.
func (l *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	l.log.Warn(msg, l.fields(r, err)...)
	htmxToast(w, http.StatusBadRequest, userMsg)
}

// HTMXLogForbidden logs at warn level and answers with an error toast.
func (l *ErrorLogger) HTMXLogForbidden(w http.ResponseWriter, r *http.Request, msg string, userMsg string) {
	l.log.Warn(msg, l.fields(r, nil)...)
	htmxToast(w, http.StatusForbidden, userMsg)
}

// htmxToast answers with the toast event and no swap. HTMX skips swaps
// for 4xx/5xx by default but still fires HX-Trigger events.
func htmxToast(w http.ResponseWriter, status int, msg string) {
	flash.Trigger(w, flash.Toast{Kind: flash.Error, Message: msg})
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(status)
}
