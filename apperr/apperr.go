// apperr.go - Error kinds surfaced by the HTTP API and their JSON rendering

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Kind classifies an error and decides its HTTP status.
type Kind string

const (
	KindValidation   Kind = "invalid"
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "not_authenticated"
	KindNotFound     Kind = "not_found"
	KindInternal     Kind = "internal_error"
)

// FieldErrors maps a request field to its messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Error is an application error with an HTTP status.
type Error struct {
	Kind   Kind
	Status int
	Detail string
	Code   string // machine readable code, e.g. token_not_valid
	Fields FieldErrors
	Err    error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Sprintf("validation failed: %v", keys)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a 400 carrying field-scoped messages.
func Validation(fields FieldErrors) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Detail: "invalid input", Fields: fields}
}

// Field is a shorthand for a validation error on one field.
func Field(field, msg string) *Error {
	return Validation(FieldErrors{field: {msg}})
}

// BadRequest is a 400 for bodies that could not be parsed at all.
func BadRequest(detail string, err error) *Error {
	return &Error{Kind: KindBadRequest, Status: http.StatusBadRequest, Detail: detail, Err: err}
}

// Unauthorized is a 401. code may be empty.
func Unauthorized(detail, code string) *Error {
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Detail: detail, Code: code}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Detail: resource + " not found"}
}

// Internal wraps an unexpected error. The cause is logged, never returned to the client.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Detail: "internal server error", Err: err}
}

// Respond writes err as the response and aborts the gin chain.
// Validation errors render as the bare field map; everything else as {"detail", "code"}.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}

	if appErr.Status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(appErr.Err).Str("kind", string(appErr.Kind)).Msg("request failed")
	}

	if appErr.Kind == KindValidation {
		c.AbortWithStatusJSON(appErr.Status, appErr.Fields)
		return
	}

	body := gin.H{"detail": appErr.Detail}
	if appErr.Code != "" {
		body["code"] = appErr.Code
	}
	c.AbortWithStatusJSON(appErr.Status, body)
}
