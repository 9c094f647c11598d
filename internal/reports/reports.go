// Package reports renders filtered registry views as downloadable workbooks.
package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/persons"
	"github.com/JaimeStill/worldmap/pkg/pagination"
	"github.com/JaimeStill/worldmap/pkg/spreadsheet"
)

// Sheet names of the filtered workbook.
const (
	SheetApplications = "Applications_Filtered"
	SheetPeople       = "People_Filtered"
)

// Filename is the attachment name of the filtered workbook.
const Filename = "worldmap_filtered_export.xlsx"

var ErrInvalidRequest = errors.New("invalid report request")

// MapHTTPStatus maps report errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, applications.ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Request selects the applications and people of a filtered report. Search
// applies to both views; Country in either filter applies to that view only.
type Request struct {
	Search       *string              `json:"search,omitempty"`
	Applications applications.Filters `json:"applications"`
	People       persons.Filters      `json:"people"`
}

// System defines the public contract for registry reports.
type System interface {
	Handler() *Handler

	// Filtered renders every application and person matching req, newest
	// first, as a two-sheet workbook.
	Filtered(ctx context.Context, req Request) ([]byte, error)
}

type reporter struct {
	apps       applications.System
	people     persons.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a report system reading through the application and person systems.
func New(apps applications.System, people persons.System, logger *slog.Logger, pagination pagination.Config) System {
	return &reporter{
		apps:       apps,
		people:     people,
		logger:     logger.With("system", "reports"),
		pagination: pagination,
	}
}

func (r *reporter) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *reporter) Filtered(ctx context.Context, req Request) ([]byte, error) {
	apps, err := collect(ctx, r.pageRequest(req.Search, "SubmittedAt"),
		func(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[applications.Application], error) {
			return r.apps.List(ctx, page, req.Applications)
		})
	if err != nil {
		return nil, fmt.Errorf("collect applications: %w", err)
	}

	people, err := collect(ctx, r.pageRequest(req.Search, "LatestIssuedAt"),
		func(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[persons.Summary], error) {
			return r.people.List(ctx, page, req.People)
		})
	if err != nil {
		return nil, fmt.Errorf("collect people: %w", err)
	}

	appRows := make([][]any, len(apps))
	for i, a := range apps {
		appRows[i] = a.Cells()
	}
	peopleRows := make([][]any, len(people))
	for i, p := range people {
		peopleRows[i] = p.Cells()
	}

	data, err := spreadsheet.NewWorkbook().
		Add(spreadsheet.Sheet{
			Name:        SheetApplications,
			Header:      applications.Columns,
			Rows:        appRows,
			Placeholder: "No applications match the filters.",
		}).
		Add(spreadsheet.Sheet{
			Name:        SheetPeople,
			Header:      persons.SummaryColumns,
			Rows:        peopleRows,
			Placeholder: "No people match the filters.",
		}).
		Bytes()
	if err != nil {
		return nil, fmt.Errorf("render filtered report: %w", err)
	}

	r.logger.Info("filtered report rendered", "applications", len(apps), "people", len(people))
	return data, nil
}

func (r *reporter) pageRequest(search *string, newestField string) pagination.PageRequest {
	return pagination.PageRequest{
		Page:     1,
		PageSize: r.pagination.MaxPageSize,
		Search:   search,
		Sort:     pagination.SortFields{{Field: newestField, Descending: true}},
	}
}

// collect walks every page of list starting at page.
func collect[T any](
	ctx context.Context,
	page pagination.PageRequest,
	list func(context.Context, pagination.PageRequest) (*pagination.PageResult[T], error),
) ([]T, error) {
	var out []T
	for {
		result, err := list(ctx, page)
		if err != nil {
			return nil, err
		}
		out = append(out, result.Data...)

		if !result.HasMore() {
			return out, nil
		}
		page.Page++
	}
}
