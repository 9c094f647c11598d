package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/worldmap/internal/api"
	"github.com/JaimeStill/worldmap/internal/config"
	"github.com/JaimeStill/worldmap/internal/infrastructure"
	"github.com/JaimeStill/worldmap/pkg/lifecycle"
	"github.com/JaimeStill/worldmap/pkg/module"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", readiness(infra.Lifecycle))

	metrics := promhttp.HandlerFor(infra.Metrics, promhttp.HandlerOpts{})
	router.HandleNative("GET /metrics", metrics.ServeHTTP)

	return router
}

// readiness reports each subsystem check; 503 until the registry database
// and the archive container both answer.
func readiness(lc *lifecycle.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := lc.Status(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !status.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	}
}
