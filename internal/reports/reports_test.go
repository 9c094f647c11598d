package reports_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/persons"
	"github.com/JaimeStill/worldmap/internal/reports"
	"github.com/JaimeStill/worldmap/pkg/pagination"
)

func ptr[T any](v T) *T { return &v }

// paged serves rows in pages of the requested size and records each request.
type paged[T any] struct {
	rows     []T
	err      error
	requests []pagination.PageRequest
}

func (p *paged[T]) list(page pagination.PageRequest) (*pagination.PageResult[T], error) {
	p.requests = append(p.requests, page)
	if p.err != nil {
		return nil, p.err
	}

	start := min(page.Offset(), len(p.rows))
	end := min(start+page.PageSize, len(p.rows))
	result := pagination.NewPageResult(p.rows[start:end], len(p.rows), page.Page, page.PageSize)
	return &result, nil
}

type fakeApps struct {
	applications.System
	paged[applications.Application]
	filters applications.Filters
}

func (f *fakeApps) List(_ context.Context, page pagination.PageRequest, filters applications.Filters) (*pagination.PageResult[applications.Application], error) {
	f.filters = filters
	return f.list(page)
}

type fakePeople struct {
	persons.System
	paged[persons.Summary]
	filters persons.Filters
}

func (f *fakePeople) List(_ context.Context, page pagination.PageRequest, filters persons.Filters) (*pagination.PageResult[persons.Summary], error) {
	f.filters = filters
	return f.list(page)
}

func newReports(apps *fakeApps, people *fakePeople) reports.System {
	return reports.New(apps, people, slog.New(slog.NewTextHandler(io.Discard, nil)), pagination.Config{DefaultPageSize: 2, MaxPageSize: 2})
}

func application(id int64, name string) applications.Application {
	a := applications.Prepare(applications.Raw{Name: name, Country: "Kenya", Title: "Pastor", CongregationSize: "30", RequestedLanguage: "English"})
	a.ID = id
	a.BatchID = "ab12cd34"
	a.Status = applications.StatusApprovedReady
	return a
}

func openSheets(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb
}

func TestFiltered(t *testing.T) {
	issued := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	apps := &fakeApps{paged: paged[applications.Application]{rows: []applications.Application{
		application(3, "Ann Njeri"),
		application(2, "Mary Wanjiku"),
		application(1, "John Otieno"),
	}}}
	people := &fakePeople{paged: paged[persons.Summary]{rows: []persons.Summary{
		{
			Person:           persons.Person{ID: 9, FullNameNormalized: "JOHN OTIENO", Country: "KENYA", CreatedAt: issued, UpdatedAt: issued},
			LatestIssuanceID: ptr(int64(4)),
			LatestIssuedAt:   &issued,
			LatestLanguage:   ptr("ENGLISH"),
			LatestBookName:   ptr("Shepherd Staff"),
		},
	}}}

	req := reports.Request{
		Search:       ptr("o"),
		Applications: applications.Filters{Status: ptr("APPROVED_READY")},
		People:       persons.Filters{Issued: ptr(true)},
	}
	data, err := newReports(apps, people).Filtered(context.Background(), req)
	require.NoError(t, err)

	// Three applications at two per page.
	require.Len(t, apps.requests, 2)
	assert.Equal(t, []int{1, 2}, []int{apps.requests[0].Page, apps.requests[1].Page})
	assert.Equal(t, "SubmittedAt", apps.requests[0].Sort[0].Field)
	assert.True(t, apps.requests[0].Sort[0].Descending)
	assert.Equal(t, "o", *apps.requests[0].Search)
	assert.Equal(t, req.Applications, apps.filters)

	require.Len(t, people.requests, 1)
	assert.Equal(t, "LatestIssuedAt", people.requests[0].Sort[0].Field)
	assert.Equal(t, req.People, people.filters)

	wb := openSheets(t, data)
	assert.Equal(t, []string{reports.SheetApplications, reports.SheetPeople}, wb.GetSheetList())

	appRows, err := wb.GetRows(reports.SheetApplications)
	require.NoError(t, err)
	require.Len(t, appRows, 4)
	assert.Equal(t, applications.Columns, appRows[0])
	assert.Equal(t, "3", appRows[1][0])
	assert.Equal(t, "1", appRows[3][0])

	peopleRows, err := wb.GetRows(reports.SheetPeople)
	require.NoError(t, err)
	require.Len(t, peopleRows, 2)
	assert.Equal(t, persons.SummaryColumns, peopleRows[0])
	latest := peopleRows[1][len(persons.Columns):]
	assert.Equal(t, []string{"4", "ENGLISH", "Shepherd Staff"}, []string{latest[0], latest[2], latest[3]})
}

func TestFilteredEmpty(t *testing.T) {
	data, err := newReports(&fakeApps{}, &fakePeople{}).Filtered(context.Background(), reports.Request{})
	require.NoError(t, err)

	wb := openSheets(t, data)
	rows, err := wb.GetRows(reports.SheetPeople)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"info"}, {"No people match the filters."}}, rows)
}

func TestFilteredListFailure(t *testing.T) {
	people := &fakePeople{paged: paged[persons.Summary]{err: errors.New("connection reset")}}

	_, err := newReports(&fakeApps{}, people).Filtered(context.Background(), reports.Request{})
	assert.ErrorContains(t, err, "collect people: connection reset")
}

type mockSystem struct {
	reports.System
	filteredFn func(ctx context.Context, req reports.Request) ([]byte, error)
}

func (m *mockSystem) Filtered(ctx context.Context, req reports.Request) ([]byte, error) {
	return m.filteredFn(ctx, req)
}

func setupMux(sys reports.System) *http.ServeMux {
	h := reports.NewHandler(sys, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func TestHandler(t *testing.T) {
	var got reports.Request
	sys := &mockSystem{
		filteredFn: func(_ context.Context, req reports.Request) ([]byte, error) {
			got = req
			return []byte("PK\x03\x04"), nil
		},
	}
	mux := setupMux(sys)

	t.Run("query parameters", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/reports/filtered?country=KENYA&status=APPROVED&issued=false&search=otieno", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="worldmap_filtered_export.xlsx"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "otieno", *got.Search)
		assert.Equal(t, "KENYA", *got.Applications.Country)
		assert.Equal(t, "KENYA", *got.People.Country)
		assert.Equal(t, "APPROVED", *got.Applications.Status)
		assert.False(t, *got.People.Issued)
	})

	t.Run("json body", func(t *testing.T) {
		body := `{"applications": {"batch_id": "ab12cd34"}, "people": {"latest_language": "ENGLISH"}}`
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/reports/filtered", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ab12cd34", *got.Applications.BatchID)
		assert.Equal(t, "ENGLISH", *got.People.Language)
		assert.Nil(t, got.Search)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/reports/filtered", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("system failure", func(t *testing.T) {
		sys.filteredFn = func(context.Context, reports.Request) ([]byte, error) {
			return nil, errors.New("database down")
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/reports/filtered", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
