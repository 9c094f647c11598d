package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/worldmap/internal/screening"
	"github.com/JaimeStill/worldmap/pkg/handlers"
	"github.com/JaimeStill/worldmap/pkg/routes"
	"github.com/JaimeStill/worldmap/pkg/storage"
)

var errUnknownKind = errors.New("archive kind must be intake or exports")

// archiveKinds maps the public kind segment to its key prefix.
var archiveKinds = map[string]string{
	"intake":  screening.IntakePrefix,
	"exports": screening.ExportPrefix,
}

type archiveHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newArchiveHandler(
	store storage.System,
	logger *slog.Logger,
	maxListSize int32,
) *archiveHandler {
	return &archiveHandler{
		store:       store,
		logger:      logger.With("handler", "archive"),
		maxListSize: maxListSize,
	}
}

func (h *archiveHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/archive",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{batch}/{kind}", Handler: h.list},
			{Method: "GET", Pattern: "/{batch}/{kind}/{name}", Handler: h.download},
		},
	}
}

// list returns the archived intake workbooks or exports of one batch.
func (h *archiveHandler) list(w http.ResponseWriter, r *http.Request) {
	prefix, ok := archiveKinds[r.PathValue("kind")]
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errUnknownKind)
		return
	}

	maxResults, err := storage.ParseMaxResults(
		r.URL.Query().Get("max_results"),
		h.maxListSize,
	)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	result, err := h.store.List(
		r.Context(),
		storage.Key(prefix, r.PathValue("batch"))+"/",
		r.URL.Query().Get("marker"),
		maxResults,
	)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *archiveHandler) download(w http.ResponseWriter, r *http.Request) {
	prefix, ok := archiveKinds[r.PathValue("kind")]
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errUnknownKind)
		return
	}

	key := storage.Key(prefix, r.PathValue("batch"), r.PathValue("name"))

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.Warn("archive download interrupted", "key", key, "error", err)
	}
}
