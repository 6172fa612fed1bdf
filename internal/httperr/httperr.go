// Package httperr defines the error taxonomy the handlers speak and the Echo
// error handler that renders it. All failure responses are JSON objects with a
// human-readable message; validation failures additionally carry a per-field
// breakdown.
package httperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/newsphere/backend/internal/logging"
)

type Error struct {
	Code    int                 `json:"-"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors,omitempty"`
	Err     error               `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(fields map[string][]string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: "Validation failed", Fields: fields}
}

func BadRequest(msg string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: http.StatusConflict, Message: msg}
}

func Auth(msg string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: http.StatusForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: http.StatusNotFound, Message: msg}
}

// Internal wraps an unexpected store or signing failure. The cause is logged
// but never leaks to the client.
func Internal(err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// Handler renders the taxonomy as JSON. Unknown errors and echo's own
// HTTPErrors are normalized into the same shape.
func Handler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *Error
		if errors.As(err, &appErr) {
			if appErr.Err != nil {
				logging.FromContext(c.Request().Context()).Error("request failed",
					"status", appErr.Code, "error", appErr.Err.Error())
			}
			_ = c.JSON(appErr.Code, appErr)
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			msg, ok := httpErr.Message.(string)
			if !ok {
				msg = http.StatusText(httpErr.Code)
			}
			_ = c.JSON(httpErr.Code, map[string]string{"message": msg})
			return
		}

		logging.FromContext(c.Request().Context()).Error("request failed", "error", err.Error())
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
}
