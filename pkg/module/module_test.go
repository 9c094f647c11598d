package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/worldmap/pkg/module"
)

func apiMux(received *string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /screening/check", func(w http.ResponseWriter, r *http.Request) {
		*received = r.URL.Path
		w.Write([]byte("check"))
	})
	mux.HandleFunc("GET /archive/{batch}/{kind}", func(w http.ResponseWriter, r *http.Request) {
		*received = r.URL.Path
		w.Write([]byte(r.PathValue("batch")))
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		*received = r.URL.Path
		w.Write([]byte("root"))
	})
	return mux
}

func TestNewInvalidPrefixPanics(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"no leading slash", "api"},
		{"nested path", "/api/screening"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic for invalid prefix")
				}
			}()
			module.New(tt.prefix, http.NewServeMux())
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	var received string
	api := module.New("/api", apiMux(&received))

	var calls int
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(api)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	tests := []struct {
		name         string
		method       string
		path         string
		wantStatus   int
		wantBody     string
		wantReceived string
		wantCalls    int
	}{
		{"screening route", "POST", "/api/screening/check", http.StatusOK, "check", "/screening/check", 1},
		{"trailing slash trimmed", "POST", "/api/screening/check/", http.StatusOK, "check", "/screening/check", 1},
		{"archive path values", "GET", "/api/archive/ab12cd34/intake", http.StatusOK, "ab12cd34", "/archive/ab12cd34/intake", 1},
		{"module root", "GET", "/api", http.StatusOK, "root", "/", 1},
		{"native endpoint skips module", "GET", "/healthz", http.StatusOK, "ok", "", 0},
		{"lookalike prefix is not the module", "GET", "/apix/screening", http.StatusNotFound, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			received, calls = "", 0

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if received != tt.wantReceived {
				t.Errorf("inner path: got %q, want %q", received, tt.wantReceived)
			}
			if calls != tt.wantCalls {
				t.Errorf("middleware calls: got %d, want %d", calls, tt.wantCalls)
			}
			if req.URL.Path != tt.path {
				t.Errorf("caller request mutated: %s", req.URL.Path)
			}
		})
	}
}

func TestRouterMountTwicePanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NewServeMux()))

	defer func() {
		if recover() == nil {
			t.Error("mounting /api twice should panic")
		}
	}()
	router.Mount(module.New("/api", http.NewServeMux()))
}
