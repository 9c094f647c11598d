package issuances

import (
	"errors"
	"net/http"
)

// Domain errors for issuance operations.
var (
	ErrNotFound        = errors.New("issuance not found")
	ErrDuplicate       = errors.New("issuance already exists")
	ErrInvalidRequest  = errors.New("invalid issuance request")
	ErrInvalidLanguage = errors.New("language not allowed")
	ErrMissingIssuer   = errors.New("issued_by is required")
)

// MapHTTPStatus maps issuance domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidLanguage),
		errors.Is(err, ErrMissingIssuer):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
