// internal/app/features/errors/errors.go
package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	reportstore "github.com/dalemusser/runtracker/internal/app/store/reports"
	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and answers them with problem+json.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// LogServerError logs err with msg and request details, then sends a
// 500 whose detail is the user-facing userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	problem.Write(w, r, http.StatusInternalServerError, userMsg)
}

// Respond maps err to a status. Invalid input is 400, a missing
// document 404, an unavailable or slow store 503; anything else is
// logged as a server error.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch status := StatusOf(err); status {
	case http.StatusInternalServerError:
		e.LogServerError(w, r, msg, err, "Something went wrong. Please try again.")
	case http.StatusServiceUnavailable:
		e.Log.Warn(msg, zap.Error(err), zap.String("path", r.URL.Path))
		problem.Write(w, r, status, "The data store is temporarily unavailable.")
	default:
		problem.Write(w, r, status, err.Error())
	}
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	switch {
	case stderrors.Is(err, streaksync.ErrInvalidInput),
		stderrors.Is(err, reportstore.ErrActionItemRange):
		return http.StatusBadRequest
	case stderrors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, docstore.ErrExists):
		return http.StatusConflict
	case docstore.IsTransient(err), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
