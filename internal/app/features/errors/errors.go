// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/whoseturn/internal/app/system/auth"
	"go.uber.org/zap"
)

// Body is the JSON shape of every error response.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON encodes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a Body with status. code is a stable machine-readable
// token such as "not_your_turn"; message is for people.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, Body{Error: code, Message: message})
}

// ErrorLogger logs handler failures with request context and answers the
// client with a generic message.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// LogServerError logs err at error level and writes a 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg, append(requestFields(r), zap.Error(err))...)
	WriteError(w, http.StatusInternalServerError, "internal", userMsg)
}

// LogBadRequest logs err at info level and writes a 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Info(msg, append(requestFields(r), zap.Error(err))...)
	WriteError(w, http.StatusBadRequest, "bad_request", userMsg)
}

func requestFields(r *http.Request) []zap.Field {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fields = append(fields, zap.String("user_id", u.ID))
	}
	return fields
}
