package applications

import (
	"errors"
	"net/http"
)

// Domain errors for application operations.
var (
	ErrNotFound       = errors.New("application not found")
	ErrDuplicate      = errors.New("application already exists")
	ErrInvalidStatus  = errors.New("invalid application status")
	ErrInvalidRequest = errors.New("invalid application request")
	ErrEmpty          = errors.New("no applications provided")
)

// MapHTTPStatus maps application domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrEmpty):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
