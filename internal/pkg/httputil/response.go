package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/ignite/newsletter/internal/pkg/logger"
)

// JSON writes a JSON response with the given status code. If encoding
// fails the error is logged; the status line has already been sent.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("httputil: JSON encode error", "error", err)
	}
}

// Empty writes a status line with no body.
func Empty(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(status)
}

// OK writes a 200 response with an empty body.
func OK(w http.ResponseWriter) {
	Empty(w, http.StatusOK)
}

// BadRequest writes an empty 400. The reason is logged by the caller.
func BadRequest(w http.ResponseWriter) {
	Empty(w, http.StatusBadRequest)
}

// TooManyRequests writes an empty 429.
func TooManyRequests(w http.ResponseWriter) {
	Empty(w, http.StatusTooManyRequests)
}

// InternalError logs the real error against the request and writes an
// empty 500 (never leak internals).
func InternalError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error, fields ...interface{}) {
	log.ErrorContext(r.Context(), "internal error", append(fields, "error", err)...)
	Empty(w, http.StatusInternalServerError)
}
