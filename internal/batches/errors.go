package batches

import (
	"errors"
	"net/http"
)

// Domain errors for batch operations.
var (
	ErrNotFound       = errors.New("batch not found")
	ErrDuplicate      = errors.New("batch already exists")
	ErrInvalidRequest = errors.New("invalid batch request")
)

// MapHTTPStatus maps batch domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
