package core

// error_messages.go maps technical errors to user-facing messages with codes.
//
// When users hit an error they see a short message, a suggested action and a
// code they can quote to support. Codes are grouped by category:
//
//	VAL  - row and form values, actions and request input
//	FILE - the uploaded file itself
//	IMP  - import sessions (expired, discarded, already committed, busy)
//	DUP  - duplicate checks against the show API
//	API  - the show API (commit failures, outages, HTTP status errors)
//	REQ  - request cancellation and timeouts
//	RATE - request throttling
//	ERR000 - fallback; check the logs for the technical error
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so wrapping errors ("duplicate check failed: ...")
// must be listed before the transport errors they wrap.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Validation
	{"validation failed", UserMessage{
		Message: "The file has rows with invalid values",
		Action:  "Fix the listed rows and upload the file again",
		Code:    "VAL001",
	}},
	{"invalid show:", UserMessage{
		Message: "The show has invalid values",
		Action:  "Correct the listed fields and save again",
		Code:    "VAL009",
	}},
	{"invalid action", UserMessage{
		Message: "That action is not available",
		Action:  "Choose create, update, or skip",
		Code:    "VAL002",
	}},
	{"update requires an existing show", UserMessage{
		Message: "Update is only available for rows that match an existing show",
		Action:  "Choose create or skip for this row",
		Code:    "VAL003",
	}},
	{"row not found in import", UserMessage{
		Message: "That row is not part of this import",
		Action:  "Refresh the preview and try again",
		Code:    "VAL004",
	}},
	{"unknown column", UserMessage{
		Message: "Column not recognized",
		Action:  "Use a column name from the import template",
		Code:    "VAL005",
	}},
	{"no show ids provided", UserMessage{
		Message: "No shows were selected",
		Action:  "Select at least one show",
		Code:    "VAL006",
	}},
	{"invalid session id", UserMessage{
		Message: "The import id is not valid",
		Action:  "Start a new import",
		Code:    "VAL007",
	}},
	{"invalid request body", UserMessage{
		Message: "The request could not be read",
		Action:  "Check the submitted data and try again",
		Code:    "VAL008",
	}},

	// File
	{"file too large", UserMessage{
		Message: "File exceeds the maximum import size",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}},
	{"invalid csv", UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Check for unbalanced quotes and save the file as comma-separated UTF-8",
		Code:    "FILE002",
	}},
	{"too many rows", UserMessage{
		Message: "File has more rows than one import allows",
		Action:  "Split the file into smaller files",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to import",
		Code:    "FILE004",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a CSV file with a header row and data rows",
		Code:    "FILE005",
	}},
	{"no data rows", UserMessage{
		Message: "The file has a header row but no shows",
		Action:  "Add at least one show below the header row",
		Code:    "FILE006",
	}},

	// Import sessions
	{"import session not found", UserMessage{
		Message: "Import preview not found",
		Action:  "The preview may have expired. Please upload the file again",
		Code:    "IMP001",
	}},
	{"import session discarded", UserMessage{
		Message: "The import was cancelled",
		Action:  "Upload the file again when ready",
		Code:    "IMP002",
	}},
	{"import already committed", UserMessage{
		Message: "This import was already committed",
		Action:  "Refresh the show list to see the result",
		Code:    "IMP003",
	}},
	{"import commit in progress", UserMessage{
		Message: "This import is being committed",
		Action:  "Wait for the commit to finish",
		Code:    "IMP004",
	}},
	{"import session is not ready", UserMessage{
		Message: "The import preview is still being prepared",
		Action:  "Please wait a moment and try again",
		Code:    "IMP005",
	}},
	{"too many concurrent imports", UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP006",
	}},
	{"import session id already in use", UserMessage{
		Message: "An import with this id is already open",
		Action:  "Start a new import",
		Code:    "IMP007",
	}},

	// Duplicate checks
	{"duplicate check failed", UserMessage{
		Message: "Could not check for existing shows",
		Action:  "Please try again. Nothing was imported",
		Code:    "DUP001",
	}},

	// Show API
	{"commit failed", UserMessage{
		Message: "The import could not be saved",
		Action:  "Check the show list before trying again",
		Code:    "API001",
	}},
	{"circuit breaker open", UserMessage{
		Message: "The show service is temporarily unavailable",
		Action:  "Please try again in a few moments",
		Code:    "API002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to reach the show service",
		Action:  "Please try again in a few moments",
		Code:    "API003",
	}},
	{"show api: status 404", UserMessage{
		Message: "Show not found",
		Action:  "The show may have been deleted. Refresh the list",
		Code:    "API004",
	}},
	{"show api: status 409", UserMessage{
		Message: "A show with this title already exists",
		Action:  "Edit the existing show instead",
		Code:    "API005",
	}},
	{"show api: status 401", UserMessage{
		Message: "The show service rejected our credentials",
		Action:  "Contact support",
		Code:    "API006",
	}},
	{"show api: status 403", UserMessage{
		Message: "The show service rejected our credentials",
		Action:  "Contact support",
		Code:    "API006",
	}},
	{"show api: status 5", UserMessage{
		Message: "The show service returned an error",
		Action:  "Please try again in a few moments",
		Code:    "API007",
	}},
	{"show api: status 4", UserMessage{
		Message: "The show service rejected the request",
		Action:  "Check the submitted data and try again",
		Code:    "API008",
	}},

	// Requests
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "REQ002",
	}},
	{"timeout", UserMessage{
		Message: "Request timed out",
		Action:  "Please try again",
		Code:    "REQ002",
	}},

	// Rate limiting
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, a generic fallback message with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
