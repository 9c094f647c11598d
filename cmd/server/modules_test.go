package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/worldmap/pkg/lifecycle"
)

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		storage    error
		startup    bool
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "startup pending",
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"startup": "pending"},
		},
		{
			name:       "registry and archive up",
			startup:    true,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"database": "ok", "storage": "ok"},
		},
		{
			name:       "archive container gone",
			startup:    true,
			storage:    errors.New("container worldmap: blob not found"),
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"database": "ok", "storage": "container worldmap: blob not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := lifecycle.New()
			lc.AddCheck("database", func(context.Context) error { return nil })
			lc.AddCheck("storage", func(context.Context) error { return tt.storage })
			if tt.startup {
				if err := lc.WaitForStartup(); err != nil {
					t.Fatalf("startup failed: %v", err)
				}
			}

			rec := httptest.NewRecorder()
			readiness(lc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}

			var body lifecycle.Status
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for name, want := range tt.wantChecks {
				if got := body.Checks[name]; got != want {
					t.Errorf("%s: got %q, want %q", name, got, want)
				}
			}
		})
	}
}
