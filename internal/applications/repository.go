package applications

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/worldmap/pkg/pagination"
	"github.com/JaimeStill/worldmap/pkg/query"
	"github.com/JaimeStill/worldmap/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an application repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "applications"),
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
) (*pagination.PageResult[Application], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, searchFields...)

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	apps, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanApplication)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}

	result := pagination.NewPageResult(apps, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Application, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanApplication)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) ByStatus(ctx context.Context, statuses ...Status) ([]Application, error) {
	values := make([]any, 0, len(statuses))
	for _, s := range statuses {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, s)
		}
		values = append(values, string(s))
	}
	if len(values) == 0 {
		return []Application{}, nil
	}

	q, args := query.
		NewBuilder(projection, query.SortField{Field: "ID"}).
		WhereIn("Status", values).
		Build()

	apps, err := repository.QueryMany(ctx, r.db, q, args, scanApplication)
	if err != nil {
		return nil, fmt.Errorf("query applications by status: %w", err)
	}
	return apps, nil
}

func (r *repo) ByBatch(ctx context.Context, batchID string) ([]Application, error) {
	q, args := query.
		NewBuilder(projection, query.SortField{Field: "ID"}).
		WhereEquals("BatchID", batchID).
		Build()

	apps, err := repository.QueryMany(ctx, r.db, q, args, scanApplication)
	if err != nil {
		return nil, fmt.Errorf("query batch %s applications: %w", batchID, err)
	}
	return apps, nil
}

func (r *repo) Insert(ctx context.Context, rows []Application) ([]Application, error) {
	inserted, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Application, error) {
		return InsertWith(ctx, tx, rows)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("applications inserted", "count", len(inserted))
	return inserted, nil
}

func (r *repo) SetStatus(ctx context.Context, id int64, cmd StatusCommand) (*Application, error) {
	a, err := SetStatusWith(ctx, r.db, id, cmd)
	if err != nil {
		return nil, err
	}

	r.logger.Info("application status set", "id", id, "status", cmd.Status)
	return &a, nil
}

func (r *repo) BulkSetStatus(ctx context.Context, cmd BulkStatusCommand) (int, error) {
	if !cmd.Status.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidStatus, cmd.Status)
	}
	if len(cmd.IDs) == 0 {
		return 0, ErrEmpty
	}

	placeholders := make([]string, len(cmd.IDs))
	args := make([]any, 0, len(cmd.IDs)+2)
	args = append(args, string(cmd.Status), cmd.Note)
	for i, id := range cmd.IDs {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, id)
	}

	q := fmt.Sprintf(`
		UPDATE applications
		SET status = $1, admin_notes = $2, updated_at = NOW()
		WHERE application_id IN (%s)`,
		strings.Join(placeholders, ", "),
	)

	n, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int, error) {
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, err
		}
		affected, err := res.RowsAffected()
		return int(affected), err
	})
	if err != nil {
		return 0, fmt.Errorf("bulk set status: %w", err)
	}

	r.logger.Info("application statuses set", "count", n, "status", cmd.Status)
	return n, nil
}

func (r *repo) Correct(ctx context.Context, corrections []Correction) ([]Application, error) {
	if len(corrections) == 0 {
		return nil, ErrEmpty
	}

	selectQ, _ := query.NewBuilder(projection).BuildSingle("ID", 0)
	selectQ += " FOR UPDATE"

	updateQ := `
		UPDATE applications SET
			full_name_original = $2, phone_original = $3, national_id_original = $4,
			country = $5, church_name = $6, title = $7,
			congregation_size = $8, congregation_size_valid = $9, requested_language = $10,
			received_before = $11, received_before_reason = $12,
			full_name_normalized = $13, name_key = $14, phone_normalized = $15, national_id_normalized = $16,
			is_disqualified = $17, disqualify_reason = $18, needs_review = $19, system_flags = $20,
			updated_at = NOW()
		WHERE application_id = $1
		RETURNING ` + returningColumns()

	corrected, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Application, error) {
		out := make([]Application, 0, len(corrections))
		for _, c := range corrections {
			if c.ID <= 0 {
				return nil, fmt.Errorf("%w: missing application_id", ErrInvalidRequest)
			}

			current, err := repository.QueryOne(ctx, tx, selectQ, []any{c.ID}, scanApplication)
			if err != nil {
				return nil, err
			}

			a := c.Apply(current)
			updated, err := repository.QueryOne(ctx, tx, updateQ, []any{
				a.ID,
				a.FullNameOriginal, a.PhoneOriginal, a.NationalIDOriginal,
				a.Country, a.ChurchName, a.Title,
				a.CongregationSize, a.CongregationSizeValid, a.RequestedLanguage,
				a.ReceivedBefore, a.ReceivedBeforeReason,
				a.FullNameNormalized, a.NameKey, a.PhoneNormalized, a.NationalIDNormalized,
				a.IsDisqualified, a.DisqualifyReason, a.NeedsReview, a.SystemFlags,
			}, scanApplication)
			if err != nil {
				return nil, err
			}
			out = append(out, updated)
		}
		return out, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("applications corrected", "count", len(corrected))
	return corrected, nil
}

// InsertWith writes rows using tx and returns them with their assigned
// identifiers and timestamps. A row ID already committed under the same batch
// fails with ErrDuplicate. Callers composing a larger transaction use it
// directly; Insert wraps it in its own transaction.
func InsertWith(ctx context.Context, tx *sql.Tx, rows []Application) ([]Application, error) {
	if len(rows) == 0 {
		return []Application{}, nil
	}

	placeholders := make([]string, insertColumnCount)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	q := fmt.Sprintf(
		"INSERT INTO applications (%s) VALUES (%s) RETURNING %s",
		insertColumns,
		strings.Join(placeholders, ", "),
		returningColumns(),
	)

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("prepare application insert: %w", err)
	}
	defer stmt.Close()

	out := make([]Application, 0, len(rows))
	for _, row := range rows {
		if !row.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, row.Status)
		}

		a, err := scanApplication(stmt.QueryRowContext(ctx, insertArgs(row)...))
		if err != nil {
			return nil, fmt.Errorf(
				"insert application %q (row %s): %w",
				row.FullNameOriginal, row.RowID, repository.MapError(err, ErrNotFound, ErrDuplicate),
			)
		}
		a.MissingRequired = row.MissingRequired
		out = append(out, a)
	}

	return out, nil
}

// SetStatusWith updates status, admin note, and (when non-nil) matched person
// using q, which may be a transaction.
func SetStatusWith(ctx context.Context, q repository.Querier, id int64, cmd StatusCommand) (Application, error) {
	if !cmd.Status.Valid() {
		return Application{}, fmt.Errorf("%w: %q", ErrInvalidStatus, cmd.Status)
	}

	stmt := `
		UPDATE applications
		SET status = $2, admin_notes = $3,
			matched_person_id = COALESCE($4, matched_person_id),
			updated_at = NOW()
		WHERE application_id = $1
		RETURNING ` + returningColumns()

	a, err := repository.QueryOne(ctx, q, stmt, []any{id, string(cmd.Status), cmd.Note, cmd.MatchedPersonID}, scanApplication)
	if err != nil {
		return Application{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return a, nil
}

// returningColumns lists the projection's columns unqualified, for RETURNING clauses.
func returningColumns() string {
	cols := projection.ColumnList()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.TrimPrefix(c, projection.Alias()+".")
	}
	return strings.Join(out, ", ")
}
