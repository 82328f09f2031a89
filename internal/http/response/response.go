// Package response builds the JSON envelopes returned by every handler and
// maps domain errors to HTTP status codes.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/finsave/internal/models"
)

// Response is the envelope of every JSON body.
type Response struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Data    any                 `json:"data,omitempty"`
}

// ErrorResponse documents failures in the OpenAPI annotations.
type ErrorResponse struct {
	Status  string              `json:"status" example:"Error"`
	Message string              `json:"message" example:"The given data was invalid."`
	Errors  map[string][]string `json:"errors,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

const invalidData = "The given data was invalid."

// StatusOKWithData returns a successful Response carrying data.
func StatusOKWithData(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// OKMessage returns a successful Response with only a message.
func OKMessage(msg string) Response {
	return Response{Status: StatusOK, Message: msg}
}

// Error returns a failed Response with msg.
func Error(msg string) Response {
	return Response{Status: StatusError, Message: msg}
}

// ValidationError turns tag validation failures into per-field messages.
// Field names are the JSON names when the validator was built by the
// request package.
func ValidationError(errs validator.ValidationErrors) Response {
	fields := make(map[string][]string, len(errs))
	for _, err := range errs {
		name := err.Field()
		label := strings.ReplaceAll(name, "_", " ")
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = fmt.Sprintf("The %s field is required.", label)
		case "email":
			msg = fmt.Sprintf("The %s field must be a valid email address.", label)
		case "max":
			msg = fmt.Sprintf("The %s field must not be greater than %s characters.", label, err.Param())
		case "min":
			msg = fmt.Sprintf("The %s field must be at least %s characters.", label, err.Param())
		case "gt":
			msg = fmt.Sprintf("The %s field must be greater than %s.", label, err.Param())
		case "eqfield":
			msg = fmt.Sprintf("The %s field confirmation does not match.", strings.ReplaceAll(strings.TrimSuffix(name, "_confirmation"), "_", " "))
		case "oneof":
			msg = fmt.Sprintf("The selected %s is invalid.", label)
		default:
			msg = fmt.Sprintf("The %s field is invalid.", label)
		}
		fields[name] = append(fields[name], msg)
	}
	return Response{Status: StatusError, Message: invalidData, Errors: fields}
}

var conflicts = []error{
	models.ErrDuplicateParticipant,
	models.ErrOverAllocation,
	models.ErrEmailTaken,
	models.ErrCategoryExists,
	models.ErrSelfDelete,
}

func sentence(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r) + "."
}

// FromError maps err to a status code and an error body. Internal details
// of unexpected errors are never exposed.
func FromError(err error) (int, Response) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, Response{Status: StatusError, Message: invalidData, Errors: verr.Fields}
	}
	for _, c := range conflicts {
		if errors.Is(err, c) {
			return http.StatusUnprocessableEntity, Error(sentence(c.Error()))
		}
	}
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error("Invalid credentials.")
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized, Error("Unauthenticated.")
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, Error("This action is unauthorized.")
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, Error("Resource not found.")
	default:
		return http.StatusInternalServerError, Error("Internal server error.")
	}
}

// Fail renders err with the status FromError picks.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, body)
}
