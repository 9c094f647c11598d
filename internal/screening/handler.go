package screening

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/worldmap/internal/intake"
	"github.com/JaimeStill/worldmap/internal/issuances"
	"github.com/JaimeStill/worldmap/pkg/handlers"
	"github.com/JaimeStill/worldmap/pkg/routes"
	"github.com/JaimeStill/worldmap/pkg/spreadsheet"
)

// Handler provides HTTP endpoints for the screening pipeline.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "screening"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for screening endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/screening",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/check", Handler: h.Check},
			{Method: "POST", Pattern: "/check/export", Handler: h.ExportChecked},
			{Method: "POST", Pattern: "/recheck", Handler: h.Recheck},
			{Method: "POST", Pattern: "/recheck/export", Handler: h.ExportRecheck},
			{Method: "POST", Pattern: "/commit", Handler: h.Commit},
			{Method: "POST", Pattern: "/override", Handler: h.Override},
			{Method: "POST", Pattern: "/issue", Handler: h.Issue},
		},
	}
}

// Check accepts a multipart form with one or more "files" and an optional
// "label" and returns the checked batch.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoSources)
		return
	}

	sources := make([]intake.Source, 0, len(headers))
	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
			return
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
			return
		}

		sources = append(sources, intake.Source{Name: fh.Filename, Data: data})
	}

	batch, err := h.sys.Check(r.Context(), CheckCommand{
		Sources: sources,
		Label:   r.FormValue("label"),
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, batch)
}

// ExportChecked renders a checked batch body as an xlsx attachment.
func (h *Handler) ExportChecked(w http.ResponseWriter, r *http.Request) {
	var batch CheckedBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	data, err := h.sys.ExportChecked(r.Context(), batch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondAttachment(w, fmt.Sprintf("worldmap_checked_%s.xlsx", batch.BatchID), spreadsheet.ContentType, data)
}

// Recheck runs the second pass for a checked batch body.
func (h *Handler) Recheck(w http.ResponseWriter, r *http.Request) {
	var batch CheckedBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	second, err := h.sys.Recheck(r.Context(), batch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, second)
}

// ExportRecheck runs the second pass and returns held rows and matched
// registry records as an xlsx attachment.
func (h *Handler) ExportRecheck(w http.ResponseWriter, r *http.Request) {
	var batch CheckedBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	data, err := h.sys.ExportRecheck(r.Context(), batch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondAttachment(w, fmt.Sprintf("worldmap_second_check_%s.xlsx", batch.BatchID), spreadsheet.ContentType, data)
}

// Commit commits the rows of a checked batch that stay clean on the second pass.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var cmd CommitCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result, err := h.sys.Commit(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Override force-commits held rows with an administrator reason.
func (h *Handler) Override(w http.ResponseWriter, r *http.Request) {
	var cmd OverrideCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result, err := h.sys.Override(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Issue runs the bulk issue step over committed applications.
func (h *Handler) Issue(w http.ResponseWriter, r *http.Request) {
	var cmd issuances.IssueCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result, err := h.sys.Issue(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
