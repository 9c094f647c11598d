package api

import (
	"net/http"

	"github.com/JaimeStill/worldmap/internal/config"
	"github.com/JaimeStill/worldmap/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	archive := newArchiveHandler(runtime.Storage, runtime.Logger, cfg.Storage.MaxListSize)

	routes.Register(
		mux,
		domain.Applications.Handler().Routes(),
		domain.Persons.Handler().Routes(),
		domain.Issuances.Handler().Routes(),
		domain.Batches.Handler().Routes(),
		domain.Reports.Handler().Routes(),
		domain.Screening.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		archive.routes(),
	)
}
