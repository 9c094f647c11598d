package reports

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/persons"
	"github.com/JaimeStill/worldmap/pkg/handlers"
	"github.com/JaimeStill/worldmap/pkg/routes"
	"github.com/JaimeStill/worldmap/pkg/spreadsheet"
)

// Handler provides HTTP endpoints for registry reports.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "reports"),
	}
}

// Routes returns the route group definition for report endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/reports",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/filtered", Handler: h.FilteredQuery},
			{Method: "POST", Pattern: "/filtered", Handler: h.Filtered},
		},
	}
}

// FilteredQuery renders the filtered workbook from query parameters. The
// country parameter filters both views.
func (h *Handler) FilteredQuery(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	var req Request
	if s := values.Get("search"); s != "" {
		req.Search = &s
	}
	req.Applications = applications.FiltersFromQuery(values)
	req.People = persons.FiltersFromQuery(values)

	h.respond(w, r, req)
}

// Filtered renders the filtered workbook from a JSON Request body.
func (h *Handler) Filtered(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	h.respond(w, r, req)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, req Request) {
	data, err := h.sys.Filtered(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondAttachment(w, Filename, spreadsheet.ContentType, data)
}
