// Package response writes the JSON envelope every endpoint answers with:
//
//	{"status": 200, "message": "...", "data": {...}, "errors": {...}}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/diybuddy/projectbuddy/pkg/logger"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// JSON writes v as the body. Headers are already sent when encoding fails,
// so the failure is only logged.
func JSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("response: encode failed", "status", status, "error", err)
	}
}

func Write(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Status: status, Message: message, Data: data})
}

func Success(w http.ResponseWriter, data any) { Write(w, http.StatusOK, "", data) }

func Created(w http.ResponseWriter, data any) { Write(w, http.StatusCreated, "", data) }

// Error sends an envelope with only a status and message.
func Error(w http.ResponseWriter, status int, message string) { Write(w, status, message, nil) }

// ValidationError answers 422 with a field → message map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func NotFound(w http.ResponseWriter) { Error(w, http.StatusNotFound, "Not found") }
