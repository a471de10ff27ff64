package web

// errors.go provides unified error response handling for the web layer.
//
// Every error goes through respondError, which maps it with core.MapError,
// derives the HTTP status from the message code, logs the technical error
// with the request id and answers in the format the client asked for:
// an alert partial for HTMX, JSON for API clients, plain text otherwise.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/showdesk/internal/core"
	"github.com/JonMunkholm/showdesk/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Code    string   `json:"code"`
	Errors  []string `json:"errors,omitempty"` // row errors of a rejected import or form
}

// statusByCode overrides the per-category default status.
var statusByCode = map[string]int{
	"VAL001":  http.StatusUnprocessableEntity,
	"VAL004":  http.StatusNotFound,
	"VAL009":  http.StatusUnprocessableEntity,
	"FILE001": http.StatusRequestEntityTooLarge,
	"FILE003": http.StatusRequestEntityTooLarge,
	"IMP001":  http.StatusNotFound,
	"IMP006":  http.StatusServiceUnavailable,
	"API002":  http.StatusServiceUnavailable,
	"API003":  http.StatusServiceUnavailable,
	"API004":  http.StatusNotFound,
	"API005":  http.StatusConflict,
	"API008":  http.StatusBadRequest,
	"REQ002":  http.StatusGatewayTimeout,
}

// statusByPrefix is the default status for each code category.
var statusByPrefix = []struct {
	prefix string
	status int
}{
	{"VAL", http.StatusBadRequest},
	{"FILE", http.StatusBadRequest},
	{"IMP", http.StatusConflict},
	{"DUP", http.StatusBadGateway},
	{"API", http.StatusBadGateway},
	{"REQ", http.StatusBadRequest},
	{"RATE", http.StatusTooManyRequests},
}

// statusFor picks the HTTP status for a mapped error code.
func statusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	for _, p := range statusByPrefix {
		if strings.HasPrefix(code, p.prefix) {
			return p.status
		}
	}
	return http.StatusInternalServerError
}

// respondError handles error responses with user-friendly messages.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusFor(userMsg.Code)

	var rowErrs []string
	var verr *core.ValidationErrors
	if errors.As(err, &verr) {
		rowErrs = verr.Errors
	}

	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	switch {
	case isHTMX(r):
		renderPartial(w, r, status, alertPartial(userMsg, rowErrs))
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, rowErrs, status)
	default:
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, rowErrs []string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Errors:  rowErrs,
	})
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
