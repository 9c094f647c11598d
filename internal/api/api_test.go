package api_test

import (
	"slices"
	"testing"

	"github.com/JaimeStill/worldmap/internal/api"
	"github.com/JaimeStill/worldmap/internal/config"
	"github.com/JaimeStill/worldmap/internal/infrastructure"
	"github.com/JaimeStill/worldmap/pkg/database"
	"github.com/JaimeStill/worldmap/pkg/middleware"
	"github.com/JaimeStill/worldmap/pkg/pagination"
	"github.com/JaimeStill/worldmap/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=worldmapstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/worldmapstore;"

func ptr[T any](v T) *T { return &v }

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "worldmap",
			User:            "worldmap",
			Password:        "worldmap",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "intake",
			ConnectionString: azuriteConnString,
			MaxListSize:      50,
		},
		API: config.APIConfig{
			BasePath:      "/api",
			MaxUploadSize: "50MB",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		Screening: config.ScreeningConfig{
			NameThreshold:   ptr(88),
			FallbackPool:    800,
			MaxCandidates:   3,
			BookName:        "Shepherd Staff",
			DefaultLanguage: "KISWAHILI",
			IssueRetries:    3,
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewModuleInvalidScreening(t *testing.T) {
	cfg := validConfig()
	cfg.Screening.MaxCandidates = 0
	infra := setupInfra(t)

	if _, err := api.NewModule(cfg, infra); err == nil {
		t.Fatal("expected error for invalid match options")
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if *runtime.Screening.NameThreshold != 88 {
		t.Errorf("name threshold: got %d, want 88", *runtime.Screening.NameThreshold)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Database == nil {
		t.Error("runtime database is nil")
	}
	if runtime.Storage == nil {
		t.Error("runtime storage is nil")
	}
	if runtime.Metrics == nil {
		t.Error("runtime metrics is nil")
	}
	if runtime.Lifecycle == nil {
		t.Error("runtime lifecycle is nil")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)
	runtime := api.NewRuntime(cfg, infra)

	domain, err := api.NewDomain(runtime)
	if err != nil {
		t.Fatalf("NewDomain() error = %v", err)
	}
	if domain.Screening == nil || domain.Applications == nil || domain.Batches == nil || domain.Reports == nil {
		t.Fatalf("NewDomain() left systems unset: %+v", domain)
	}
}

func TestScreeningRouteTable(t *testing.T) {
	cfg := validConfig()
	domain, err := api.NewDomain(api.NewRuntime(cfg, setupInfra(t)))
	if err != nil {
		t.Fatalf("NewDomain() error = %v", err)
	}

	got := domain.Screening.Handler(cfg.API.MaxUploadSizeBytes()).Routes().Patterns()
	for _, want := range []string{
		"POST /screening/check",
		"POST /screening/recheck",
		"POST /screening/commit",
		"POST /screening/override",
	} {
		if !slices.Contains(got, want) {
			t.Errorf("screening routes %v missing %s", got, want)
		}
	}
}
