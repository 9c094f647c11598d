package screening

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/batches"
	"github.com/JaimeStill/worldmap/internal/intake"
	"github.com/JaimeStill/worldmap/internal/issuances"
)

var (
	ErrNoSources      = errors.New("no sources uploaded")
	ErrNoRows         = errors.New("no rows could be read from the uploaded sources")
	ErrInvalidRequest = errors.New("invalid request")
	ErrMissingBatch   = errors.New("checked batch has no batch id")
	ErrOverrideReason = errors.New("override requires a reason")
	ErrNothingHeld    = errors.New("no rows to override")
	ErrFileTooLarge   = errors.New("upload exceeds maximum size")
	ErrForeignRow     = errors.New("row does not belong to the batch")
	ErrNotOverridable = errors.New("row cannot be overridden")
)

// MapHTTPStatus maps pipeline and registry errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNoSources),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrMissingBatch),
		errors.Is(err, ErrOverrideReason),
		errors.Is(err, ErrNothingHeld),
		errors.Is(err, ErrForeignRow),
		errors.Is(err, ErrNotOverridable):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoRows),
		errors.Is(err, intake.ErrMissingColumns),
		errors.Is(err, intake.ErrUnreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, issuances.ErrInvalidLanguage),
		errors.Is(err, issuances.ErrMissingIssuer),
		errors.Is(err, issuances.ErrInvalidRequest),
		errors.Is(err, batches.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, applications.ErrDuplicate),
		errors.Is(err, batches.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
