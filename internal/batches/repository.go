package batches

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/issuances"
	"github.com/JaimeStill/worldmap/internal/persons"
	"github.com/JaimeStill/worldmap/pkg/pagination"
	"github.com/JaimeStill/worldmap/pkg/query"
	"github.com/JaimeStill/worldmap/pkg/repository"
	"github.com/JaimeStill/worldmap/pkg/spreadsheet"
)

type repo struct {
	db         *sql.DB
	apps       applications.System
	people     persons.System
	issued     issuances.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a batch repository implementing the System interface.
func New(
	db *sql.DB,
	apps applications.System,
	people persons.System,
	issued issuances.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		apps:       apps,
		people:     people,
		issued:     issued,
		logger:     logger.With("system", "batches"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Batch], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ID", "SourceLabel", "SourceFiles", "Notes")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count batches: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanBatch)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Batch, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	b, err := repository.QueryOne(ctx, r.db, q, args, scanBatch)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &b, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Batch, error) {
	b, err := CreateWith(ctx, r.db, cmd)
	if err != nil {
		return nil, err
	}

	r.logger.Info("batch recorded", "batch_id", b.ID, "label", b.SourceLabel)
	return &b, nil
}

func (r *repo) Export(ctx context.Context, id string) ([]byte, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	apps, err := r.apps.ByBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	issued, err := r.issued.ByBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var personIDs []int64
	for _, i := range issued {
		if !seen[i.PersonID] {
			seen[i.PersonID] = true
			personIDs = append(personIDs, i.PersonID)
		}
	}

	people, err := r.people.ByIDs(ctx, personIDs)
	if err != nil {
		return nil, err
	}

	appRows := make([][]any, len(apps))
	for i, a := range apps {
		appRows[i] = a.Cells()
	}
	issuedRows := make([][]any, len(issued))
	for i, is := range issued {
		issuedRows[i] = is.Cells()
	}
	peopleRows := make([][]any, len(people))
	for i, p := range people {
		peopleRows[i] = p.Cells()
	}

	data, err := spreadsheet.NewWorkbook().
		Add(spreadsheet.Sheet{Name: "Batch_Applications", Header: applications.Columns, Rows: appRows}).
		Add(spreadsheet.Sheet{Name: "Batch_Issuances", Header: issuances.Columns, Rows: issuedRows}).
		Add(spreadsheet.Sheet{Name: "Batch_People", Header: persons.Columns, Rows: peopleRows}).
		Bytes()
	if err != nil {
		return nil, fmt.Errorf("export batch %s: %w", id, err)
	}
	return data, nil
}

const createBatch = `
	WITH ins AS (
		INSERT INTO batches (batch_id, source_label, source_files, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (batch_id) DO NOTHING
		RETURNING batch_id, created_at, source_label, source_files, notes
	)
	SELECT batch_id, created_at, source_label, source_files, notes FROM ins
	UNION ALL
	SELECT batch_id, created_at, source_label, source_files, notes FROM batches WHERE batch_id = $1
	LIMIT 1`

// CreateWith records a batch using q, which may be a transaction. An existing
// batch with the same ID is returned unchanged.
func CreateWith(ctx context.Context, q repository.Querier, cmd CreateCommand) (Batch, error) {
	if cmd.ID == "" {
		return Batch{}, fmt.Errorf("%w: missing batch_id", ErrInvalidRequest)
	}

	b, err := repository.QueryOne(ctx, q, createBatch,
		[]any{cmd.ID, cmd.SourceLabel, joinFiles(cmd.SourceFiles), cmd.Notes},
		scanBatch,
	)
	if err != nil {
		return Batch{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return b, nil
}
