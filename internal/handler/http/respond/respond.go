// Package respond writes the API's JSON responses. Every error body has the
// shape {"error": "<message>"}.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v with status code. A nil v sends headers only.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	// The status is already on the wire, so an encoding failure can only be logged.
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encode response", slog.Int("status", code), slog.Any("error", err))
	}
}

// Message writes {"error": msg} with the given status code.
func Message(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg})
}

// Rejection is a prebuilt refusal produced by an admission check.
//
// A zero Message means the response has no body (CORS preflight refusals).
type Rejection struct {
	Status  int
	Message string
	Header  http.Header
}

// Reject builds a Rejection with a JSON error body.
func Reject(status int, msg string) *Rejection {
	return &Rejection{Status: status, Message: msg}
}

// Write sends the rejection.
func (r *Rejection) Write(w http.ResponseWriter) {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if r.Message == "" {
		w.WriteHeader(r.Status)
		return
	}
	Message(w, r.Status, r.Message)
}

// SafeError answers with {"error": msg} and logs err, sanitized, so that
// driver messages and DSNs never reach the client. A nil err writes nothing.
func SafeError(w http.ResponseWriter, code int, msg string, err error) {
	if err == nil {
		return
	}
	slog.Default().Error("request failed",
		slog.Int("status", code),
		slog.String("message", msg),
		slog.String("error", SanitizeError(err)))
	Message(w, code, msg)
}
