package screening_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/worldmap/internal/issuances"
	"github.com/JaimeStill/worldmap/internal/screening"
	"github.com/JaimeStill/worldmap/pkg/spreadsheet"
)

type mockSystem struct {
	checkFn         func(ctx context.Context, cmd screening.CheckCommand) (*screening.CheckedBatch, error)
	recheckFn       func(ctx context.Context, batch screening.CheckedBatch) (*screening.SecondCheck, error)
	commitFn        func(ctx context.Context, cmd screening.CommitCommand) (*screening.CommitResult, error)
	overrideFn      func(ctx context.Context, cmd screening.OverrideCommand) (*screening.CommitResult, error)
	issueFn         func(ctx context.Context, cmd issuances.IssueCommand) (*issuances.IssueResult, error)
	exportCheckedFn func(ctx context.Context, batch screening.CheckedBatch) ([]byte, error)
	exportRecheckFn func(ctx context.Context, batch screening.CheckedBatch) ([]byte, error)
}

func (m *mockSystem) Handler(maxUploadSize int64) *screening.Handler {
	return screening.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)), maxUploadSize)
}

func (m *mockSystem) Check(ctx context.Context, cmd screening.CheckCommand) (*screening.CheckedBatch, error) {
	return m.checkFn(ctx, cmd)
}

func (m *mockSystem) Recheck(ctx context.Context, batch screening.CheckedBatch) (*screening.SecondCheck, error) {
	return m.recheckFn(ctx, batch)
}

func (m *mockSystem) Commit(ctx context.Context, cmd screening.CommitCommand) (*screening.CommitResult, error) {
	return m.commitFn(ctx, cmd)
}

func (m *mockSystem) Override(ctx context.Context, cmd screening.OverrideCommand) (*screening.CommitResult, error) {
	return m.overrideFn(ctx, cmd)
}

func (m *mockSystem) Issue(ctx context.Context, cmd issuances.IssueCommand) (*issuances.IssueResult, error) {
	return m.issueFn(ctx, cmd)
}

func (m *mockSystem) ExportChecked(ctx context.Context, batch screening.CheckedBatch) ([]byte, error) {
	return m.exportCheckedFn(ctx, batch)
}

func (m *mockSystem) ExportRecheck(ctx context.Context, batch screening.CheckedBatch) ([]byte, error) {
	return m.exportRecheckFn(ctx, batch)
}

func setupMux(h *screening.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func multipartBody(t *testing.T, label string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if label != "" {
		if err := mw.WriteField("label", label); err != nil {
			t.Fatal(err)
		}
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHandlerCheck(t *testing.T) {
	var captured screening.CheckCommand
	sys := &mockSystem{
		checkFn: func(_ context.Context, cmd screening.CheckCommand) (*screening.CheckedBatch, error) {
			captured = cmd
			return &screening.CheckedBatch{BatchID: "ab12cd34"}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	body, contentType := multipartBody(t, "Nairobi", map[string]string{"nairobi.xlsx": "data"})
	req := httptest.NewRequest("POST", "/screening/check", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if captured.Label != "Nairobi" {
		t.Errorf("Label = %q", captured.Label)
	}
	if len(captured.Sources) != 1 || captured.Sources[0].Name != "nairobi.xlsx" || string(captured.Sources[0].Data) != "data" {
		t.Errorf("Sources = %+v", captured.Sources)
	}

	var got screening.CheckedBatch
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.BatchID != "ab12cd34" {
		t.Errorf("BatchID = %q", got.BatchID)
	}
}

func TestHandlerCheckNoFiles(t *testing.T) {
	mux := setupMux((&mockSystem{}).Handler(1 << 20))

	body, contentType := multipartBody(t, "Nairobi", nil)
	req := httptest.NewRequest("POST", "/screening/check", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerCommit(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"committed", `{"batch":{"batch_id":"ab12cd34"}}`, nil, http.StatusOK},
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"missing batch", `{"batch":{}}`, screening.ErrMissingBatch, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				commitFn: func(_ context.Context, cmd screening.CommitCommand) (*screening.CommitResult, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &screening.CommitResult{}, nil
				},
			}
			mux := setupMux(sys.Handler(1 << 20))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/screening/commit", strings.NewReader(tt.body))
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandlerOverride(t *testing.T) {
	sys := &mockSystem{
		overrideFn: func(_ context.Context, cmd screening.OverrideCommand) (*screening.CommitResult, error) {
			if cmd.Reason == "" {
				return nil, screening.ErrOverrideReason
			}
			return &screening.CommitResult{}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/screening/override", strings.NewReader(`{"batch_id":"ab12cd34"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing reason status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/screening/override", strings.NewReader(`{"batch_id":"ab12cd34","reason":"known"}`)))
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestHandlerIssue(t *testing.T) {
	var captured issuances.IssueCommand
	sys := &mockSystem{
		issueFn: func(_ context.Context, cmd issuances.IssueCommand) (*issuances.IssueResult, error) {
			captured = cmd
			if cmd.IssuedBy == "" {
				return nil, issuances.ErrMissingIssuer
			}
			return &issuances.IssueResult{Issued: 2}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	rec := httptest.NewRecorder()
	body := `{"issued_by":"grace","use_requested_language":true,"language":"ENGLISH"}`
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/screening/issue", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !captured.UseRequestedLanguage || captured.Language != "ENGLISH" {
		t.Errorf("command = %+v", captured)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/screening/issue", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing issuer status = %d, want 400", rec.Code)
	}
}

func TestHandlerExports(t *testing.T) {
	sys := &mockSystem{
		exportCheckedFn: func(context.Context, screening.CheckedBatch) ([]byte, error) {
			return []byte("checked"), nil
		},
		exportRecheckFn: func(context.Context, screening.CheckedBatch) ([]byte, error) {
			return []byte("held"), nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	tests := []struct {
		path         string
		wantFilename string
		wantBody     string
	}{
		{"/screening/check/export", "worldmap_checked_ab12cd34.xlsx", "checked"},
		{"/screening/recheck/export", "worldmap_second_check_ab12cd34.xlsx", "held"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", tt.path, strings.NewReader(`{"batch_id":"ab12cd34"}`)))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != spreadsheet.ContentType {
				t.Errorf("Content-Type = %q", ct)
			}
			if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, tt.wantFilename) {
				t.Errorf("Content-Disposition = %q, want filename %s", cd, tt.wantFilename)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestHandlerRecheck(t *testing.T) {
	sys := &mockSystem{
		recheckFn: func(_ context.Context, batch screening.CheckedBatch) (*screening.SecondCheck, error) {
			return &screening.SecondCheck{BatchID: batch.BatchID}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/screening/recheck", strings.NewReader(`{"batch_id":"ab12cd34"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got screening.SecondCheck
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.BatchID != "ab12cd34" {
		t.Errorf("BatchID = %q", got.BatchID)
	}
}

func TestHandlerRoutes(t *testing.T) {
	group := (&mockSystem{}).Handler(1).Routes()
	if group.Prefix != "/screening" {
		t.Errorf("Prefix = %q", group.Prefix)
	}
	if len(group.Routes) != 7 {
		t.Errorf("len(Routes) = %d, want 7", len(group.Routes))
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{screening.ErrOverrideReason, http.StatusBadRequest},
		{screening.ErrNoSources, http.StatusBadRequest},
		{screening.ErrNoRows, http.StatusUnprocessableEntity},
		{screening.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{issuances.ErrInvalidLanguage, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := screening.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
