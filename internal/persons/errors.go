package persons

import (
	"errors"
	"net/http"
)

// Domain errors for person operations.
var (
	ErrNotFound       = errors.New("person not found")
	ErrDuplicate      = errors.New("person already exists")
	ErrInvalidRequest = errors.New("invalid person request")
	ErrNoIdentity     = errors.New("person has no phone, national id, or name")
)

// MapHTTPStatus maps person domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrNoIdentity):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
