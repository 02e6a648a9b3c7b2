// Package httperr defines the classified errors the API can surface and the
// single reporting boundary that turns them into HTTP responses. Every
// component failure is forwarded here unmodified; nothing retries or
// swallows errors on the way.
package httperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StatusTokenMissing is returned when the authorization gate runs without a
// prior authentication payload.
const StatusTokenMissing = 498

// Error pairs an HTTP status with a short label and a human readable detail.
type Error struct {
	Status int
	Label  string
	Detail string
}

func (e *Error) Error() string { return e.Label + ": " + e.Detail }

// New builds a classified error.
func New(status int, label, detail string) *Error {
	return &Error{Status: status, Label: label, Detail: detail}
}

// NotFound covers id-based lookups, updates and deletes that target a
// nonexistent entity.
func NotFound(detail string) *Error {
	return New(http.StatusNotFound, "Not found", detail)
}

// Unauthorized covers a missing or malformed Authorization header, an
// invalid bearer token and ownership mismatches.
func Unauthorized(detail string) *Error {
	return New(http.StatusUnauthorized, "Not authorized", detail)
}

// TokenMissing signals that the ownership gate ran without a verified
// authentication payload in the request context.
func TokenMissing(detail string) *Error {
	return New(StatusTokenMissing, "Token not found", detail)
}

// NotAcceptable signals that a route expected an uploaded file and none was
// supplied.
func NotAcceptable(detail string) *Error {
	return New(http.StatusNotAcceptable, "Not acceptable", detail)
}

// BadRequest covers malformed bodies, unsupported filter keys and mutations
// attempted without an authenticated user id in the request context.
func BadRequest(detail string) *Error {
	return New(http.StatusBadRequest, "Validation error", detail)
}

// Conflict covers uniqueness violations such as a duplicate email or title.
func Conflict(detail string) *Error {
	return New(http.StatusConflict, "Conflict", detail)
}

// Handler is installed as echo's HTTPErrorHandler and acts as the single
// error-reporting boundary: classified errors keep their status and label,
// echo's own errors pass through, and anything else becomes a generic 500
// without leaking internal detail.
func Handler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ce *Error
	if errors.As(err, &ce) {
		_ = c.JSON(ce.Status, echo.Map{"error": ce.Label, "message": ce.Detail})
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, echo.Map{"error": http.StatusText(he.Code), "message": fmt.Sprint(he.Message)})
		return
	}

	c.Logger().Error(err)
	_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error", "message": "unexpected error"})
}
