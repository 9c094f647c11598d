package middleware_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/worldmap/pkg/middleware"
)

const console = "https://screening.example.org"

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestApplyOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	mw := middleware.New()
	mw.Use(tag("cors"))
	mw.Use(tag("logger"))
	mw.Use(tag("recover"))

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/screening/check", nil))

	want := []string{"cors", "logger", "recover", "handler"}
	if !slices.Equal(order, want) {
		t.Errorf("order: got %v, want %v", order, want)
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{Enabled: true, Origins: []string{console}}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name        string
		cfg         *middleware.CORSConfig
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantMethods string
		wantExpose  string
	}{
		{
			name:       "disabled passes through",
			cfg:        &middleware.CORSConfig{Origins: []string{console}},
			method:     "GET",
			origin:     console,
			wantStatus: http.StatusOK,
		},
		{
			name:       "export download exposes filename",
			cfg:        cfg,
			method:     "GET",
			origin:     console,
			wantStatus: http.StatusOK,
			wantOrigin: console,
			wantExpose: "Content-Disposition",
		},
		{
			name:       "unknown origin gets no headers",
			cfg:        cfg,
			method:     "POST",
			origin:     "https://elsewhere.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:        "preflight from console",
			cfg:         cfg,
			method:      "OPTIONS",
			origin:      console,
			preflight:   true,
			wantStatus:  http.StatusNoContent,
			wantOrigin:  console,
			wantMethods: "GET, POST, PUT, OPTIONS",
			wantExpose:  "Content-Disposition",
		},
		{
			name:       "preflight from unknown origin refused",
			cfg:        cfg,
			method:     "OPTIONS",
			origin:     "https://elsewhere.example.com",
			preflight:  true,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "wildcard echoes origin",
			cfg:        &middleware.CORSConfig{Enabled: true, Origins: []string{"*"}},
			method:     "GET",
			origin:     "http://localhost:5173",
			wantStatus: http.StatusOK,
			wantOrigin: "http://localhost:5173",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(tt.cfg)(http.HandlerFunc(ok))

			req := httptest.NewRequest(tt.method, "/screening/check/export", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin: got %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Errorf("allow-methods: got %q, want %q", got, tt.wantMethods)
			}
			if got := rec.Header().Get("Access-Control-Expose-Headers"); got != tt.wantExpose {
				t.Errorf("expose-headers: got %q, want %q", got, tt.wantExpose)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("sheet index out of range")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/screening/check", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Errorf("body: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "sheet index out of range") {
		t.Errorf("log should record the panic: %s", buf.String())
	}
}

func TestRecoverAbortHandler(t *testing.T) {
	handler := middleware.Recover(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if recover() != http.ErrAbortHandler {
			t.Error("ErrAbortHandler should propagate")
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/archive/ab12cd34/intake", nil))
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantLevel string
	}{
		{"ok", http.StatusOK, "ready", "level=INFO"},
		{"implicit ok", 0, "ready", "level=INFO"},
		{"client error", http.StatusUnprocessableEntity, "", "level=WARN"},
		{"server error", http.StatusInternalServerError, "", "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			var handlerCalled bool
			handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/screening/check", nil)
			handler.ServeHTTP(rec, req)

			if !handlerCalled {
				t.Error("inner handler should have been called")
			}

			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			if rec.Code != want {
				t.Errorf("status: got %d, want %d", rec.Code, want)
			}

			line := buf.String()
			if !strings.Contains(line, tt.wantLevel) {
				t.Errorf("log level: %q does not contain %s", line, tt.wantLevel)
			}
			if !strings.Contains(line, fmt.Sprintf("status=%d", want)) {
				t.Errorf("log status: %q", line)
			}
			if !strings.Contains(line, fmt.Sprintf("bytes=%d", len(tt.body))) {
				t.Errorf("log bytes: %q", line)
			}
		})
	}
}

func TestCORSConfigFinalize(t *testing.T) {
	t.Setenv("WORLDMAP_CORS_ENABLED", "true")
	t.Setenv("WORLDMAP_CORS_ORIGINS", console+", http://localhost:5173")
	t.Setenv("WORLDMAP_CORS_ALLOW_CREDENTIALS", "true")

	env := &middleware.CORSEnv{
		Enabled:          "WORLDMAP_CORS_ENABLED",
		Origins:          "WORLDMAP_CORS_ORIGINS",
		AllowCredentials: "WORLDMAP_CORS_ALLOW_CREDENTIALS",
		MaxAge:           "WORLDMAP_CORS_MAX_AGE",
	}

	cfg := middleware.CORSConfig{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !cfg.Enabled || !cfg.AllowCredentials {
		t.Errorf("enabled/credentials: got %v/%v", cfg.Enabled, cfg.AllowCredentials)
	}
	if !slices.Equal(cfg.Origins, []string{console, "http://localhost:5173"}) {
		t.Errorf("origins: got %v", cfg.Origins)
	}
	if !slices.Equal(cfg.ExposedHeaders, []string{"Content-Disposition"}) {
		t.Errorf("exposed_headers: got %v", cfg.ExposedHeaders)
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("max_age: got %d, want 3600", cfg.MaxAge)
	}
}

func TestCORSConfigFinalizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		cfg     middleware.CORSConfig
		wantErr string
	}{
		{
			name:    "malformed boolean",
			env:     map[string]string{"WORLDMAP_CORS_ENABLED": "yes please"},
			wantErr: "WORLDMAP_CORS_ENABLED",
		},
		{
			name:    "malformed max age",
			env:     map[string]string{"WORLDMAP_CORS_MAX_AGE": "1h"},
			wantErr: "WORLDMAP_CORS_MAX_AGE",
		},
		{
			name:    "credentials with wildcard",
			cfg:     middleware.CORSConfig{Origins: []string{"*"}, AllowCredentials: true},
			wantErr: "allow_credentials",
		},
	}

	env := &middleware.CORSEnv{
		Enabled: "WORLDMAP_CORS_ENABLED",
		MaxAge:  "WORLDMAP_CORS_MAX_AGE",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := tt.cfg.Finalize(env)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCORSConfigMerge(t *testing.T) {
	base := middleware.CORSConfig{
		Origins:        []string{console},
		AllowedMethods: []string{"GET"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         3600,
	}

	base.Merge(&middleware.CORSConfig{Enabled: true, MaxAge: 600})

	if !base.Enabled {
		t.Error("enabled should follow the overlay")
	}
	if !slices.Equal(base.Origins, []string{console}) || !slices.Equal(base.ExposedHeaders, []string{"Content-Disposition"}) {
		t.Errorf("unset overlay lists should not overwrite: %+v", base)
	}
	if base.MaxAge != 600 {
		t.Errorf("max_age: got %d, want 600", base.MaxAge)
	}
}
