package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/worldmap/pkg/lifecycle"
	"github.com/JaimeStill/worldmap/pkg/routes"
	"github.com/JaimeStill/worldmap/pkg/storage"
)

type fakeStore struct {
	blobs      map[string]string
	listPrefix string
	listMax    int32
}

func (f *fakeStore) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.blobs[key] = string(data)
	return nil
}

func (f *fakeStore) Download(_ context.Context, key string) (*storage.Blob, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(strings.NewReader(data)),
		ContentType:   "application/octet-stream",
		ContentLength: int64(len(data)),
	}, nil
}

func (f *fakeStore) Find(_ context.Context, key string) (*storage.BlobMeta, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.BlobMeta{Key: key, ContentLength: int64(len(data))}, nil
}

func (f *fakeStore) List(_ context.Context, prefix, _ string, maxResults int32) (*storage.BlobList, error) {
	f.listPrefix, f.listMax = prefix, maxResults
	list := &storage.BlobList{Blobs: []storage.BlobMeta{}}
	for key, data := range f.blobs {
		if strings.HasPrefix(key, prefix) {
			list.Blobs = append(list.Blobs, storage.BlobMeta{Key: key, ContentLength: int64(len(data))})
		}
	}
	return list, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.blobs, key)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.blobs[key]
	return ok, nil
}

func setupArchive(store *fakeStore) *http.ServeMux {
	h := newArchiveHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)), 50)
	mux := http.NewServeMux()
	routes.Register(mux, h.routes())
	return mux
}

func newStore() *fakeStore {
	return &fakeStore{blobs: map[string]string{
		"intake/ab12cd34/nairobi.xlsx":  "intake bytes",
		"exports/ab12cd34/checked.xlsx": "export bytes",
		"intake/ff00ff00/kisumu.xlsx":   "other batch",
	}}
}

func TestArchiveList(t *testing.T) {
	store := newStore()
	mux := setupArchive(store)

	req := httptest.NewRequest(http.MethodGet, "/archive/ab12cd34/intake?max_results=10", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if store.listPrefix != "intake/ab12cd34/" {
		t.Errorf("prefix: got %q, want intake/ab12cd34/", store.listPrefix)
	}
	if store.listMax != 10 {
		t.Errorf("max results: got %d, want 10", store.listMax)
	}

	var list storage.BlobList
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Blobs) != 1 || list.Blobs[0].Key != "intake/ab12cd34/nairobi.xlsx" {
		t.Errorf("blobs: got %+v", list.Blobs)
	}
}

func TestArchiveListUnknownKind(t *testing.T) {
	mux := setupArchive(newStore())

	req := httptest.NewRequest(http.MethodGet, "/archive/ab12cd34/documents", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestArchiveDownload(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"export", "/archive/ab12cd34/exports/checked.xlsx", http.StatusOK, "export bytes"},
		{"intake", "/archive/ab12cd34/intake/nairobi.xlsx", http.StatusOK, "intake bytes"},
		{"missing", "/archive/ab12cd34/exports/second_check.xlsx", http.StatusNotFound, ""},
		{"unknown kind", "/archive/ab12cd34/other/checked.xlsx", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupArchive(newStore())

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody == "" {
				return
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Errorf("body: got %q, want %q", got, tt.wantBody)
			}
			if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
				t.Errorf("Content-Disposition: got %q", cd)
			}
		})
	}
}
