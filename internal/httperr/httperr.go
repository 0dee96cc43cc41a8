// Package httperr defines the error taxonomy shared by every handler.  All
// failures funnel into one wire shape, {"message": ..., "data": ...}, emitted
// by the central Handler installed on the Echo instance.  Handlers only ever
// return errors; none of them writes an error response directly.
package httperr

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Issue describes a single field-level validation problem.  A slice of these
// travels under data.issues on 400 validation responses.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the application error type.  Status picks the HTTP code, Message
// is the client-facing reason (often a machine-readable code such as
// NAME_ALREADY_USED), and Data optionally carries structured detail.
type Error struct {
	Status  int
	Message string
	Data    map[string]any
}

func (e *Error) Error() string { return e.Message }

// Validation reports a malformed request body with field-level issues.
func Validation(issues []Issue) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Invalid request", Data: map[string]any{"issues": issues}}
}

// BadRequest reports a failed precondition.  It is also the deliberate shape
// for authorization denials on posts: "does not exist" and "exists but you
// may not touch it" are indistinguishable to the caller.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized reports a missing or invalid token, or bad login credentials.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// NotFound reports an unmatched route.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Internal hides an unexpected failure behind a generic message.  The cause
// is logged server-side and never reaches the client.
func Internal(err error) *Error {
	if err != nil {
		log.Printf("internal error: %v", err)
	}
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error"}
}

// wire is the single JSON shape every error serializes to.
type wire struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Handler returns the centralized Echo error handler.  It translates *Error
// values as-is, maps Echo's own routing errors (404/405) onto the same wire
// shape, and downgrades anything unrecognized to a generic 500 so no stack or
// driver detail ever leaks.
func Handler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var status int
		var body wire

		switch e := err.(type) {
		case *Error:
			status = e.Status
			body = wire{Message: e.Message, Data: e.Data}
		case *echo.HTTPError:
			status = e.Code
			switch status {
			case http.StatusNotFound:
				body = wire{Message: "Route not found"}
			case http.StatusMethodNotAllowed:
				body = wire{Message: "Method not allowed"}
			default:
				log.Printf("unhandled echo error: %v", err)
				status = http.StatusInternalServerError
				body = wire{Message: "Internal server error"}
			}
		default:
			log.Printf("unhandled error: %v", err)
			status = http.StatusInternalServerError
			body = wire{Message: "Internal server error"}
		}

		if jerr := c.JSON(status, body); jerr != nil {
			log.Printf("write error response: %v", jerr)
		}
	}
}
