package playground

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/formkit/pkg/form"
)

var (
	ErrUnknownForm     = errors.New("unknown form")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidIndex    = errors.New("invalid element index")
	ErrInvalidSignals  = errors.New("invalid datastar signals")
	ErrNoSession       = errors.New("no playground session")
	ErrNoSubmissions   = errors.New("submissions are not stored")
	ErrFailedToCompile = errors.New("failed to compile form")
	ErrFailedToOpen    = errors.New("failed to open form")
	ErrFailedToRender  = errors.New("failed to render view")
)

// statusOf maps an error to the HTTP status it is answered with.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrUnknownForm),
		errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrNoSubmissions),
		errors.Is(err, form.ErrUnknownField),
		errors.Is(err, form.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidIndex),
		errors.Is(err, ErrInvalidSignals),
		errors.Is(err, ErrNoSession),
		errors.Is(err, form.ErrNotArray),
		errors.Is(err, form.ErrIsArray):
		return http.StatusBadRequest
	case errors.Is(err, form.ErrSubmitInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
