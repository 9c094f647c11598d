package issuances

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/eligibility"
	"github.com/JaimeStill/worldmap/internal/persons"
	"github.com/JaimeStill/worldmap/pkg/pagination"
	"github.com/JaimeStill/worldmap/pkg/query"
	"github.com/JaimeStill/worldmap/pkg/repository"
)

type repo struct {
	db         *sql.DB
	apps       applications.System
	logger     *slog.Logger
	pagination pagination.Config
	opts       Options
}

// New creates an issuance repository implementing the System interface.
func New(
	db *sql.DB,
	apps applications.System,
	logger *slog.Logger,
	pagination pagination.Config,
	opts Options,
) System {
	return &repo{
		db:         db,
		apps:       apps,
		logger:     logger.With("system", "issuances"),
		pagination: pagination,
		opts:       opts,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Issuance], error) {
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
		return nil, fmt.Errorf("count issuances: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanIssuance)
	if err != nil {
		return nil, fmt.Errorf("query issuances: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Snapshot(ctx context.Context) ([]Issuance, error) {
	q, args := query.NewBuilder(projection, snapshotSort...).Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanIssuance)
	if err != nil {
		return nil, fmt.Errorf("snapshot issuances: %w", err)
	}

	r.logger.Debug("issuances snapshot", "count", len(items))
	return items, nil
}

func (r *repo) ListByPersons(ctx context.Context, personIDs []int64) ([]Issuance, error) {
	if len(personIDs) == 0 {
		return []Issuance{}, nil
	}

	values := make([]any, len(personIDs))
	for i, id := range personIDs {
		values[i] = id
	}

	q, args := query.NewBuilder(projection, snapshotSort...).WhereIn("PersonID", values).Build()
	items, err := repository.QueryMany(ctx, r.db, q, args, scanIssuance)
	if err != nil {
		return nil, fmt.Errorf("query issuances by person: %w", err)
	}
	return items, nil
}

func (r *repo) ByBatch(ctx context.Context, batchID string) ([]Issuance, error) {
	q, args := query.NewBuilder(projection, snapshotSort...).WhereEquals("BatchID", batchID).Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanIssuance)
	if err != nil {
		return nil, fmt.Errorf("query batch %s issuances: %w", batchID, err)
	}
	return items, nil
}

func (r *repo) Issue(ctx context.Context, cmd IssueCommand) (*IssueResult, error) {
	if cmd.IssuedBy == "" {
		return nil, ErrMissingIssuer
	}
	if cmd.Language != "" && !eligibility.LanguageAllowed(cmd.Language) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLanguage, cmd.Language)
	}

	issuedAt := time.Now().UTC()
	if cmd.IssuedAt != nil {
		issuedAt = cmd.IssuedAt.UTC()
	}

	statuses := []applications.Status{applications.StatusApprovedReady}
	if cmd.IncludeExceptions {
		statuses = append(statuses, applications.StatusApprovedException)
	}

	ready, err := r.apps.ByStatus(ctx, statuses...)
	if err != nil {
		return nil, fmt.Errorf("load issuable applications: %w", err)
	}

	result := &IssueResult{Outcomes: make([]Outcome, 0, len(ready))}

	for _, app := range ready {
		outcome, err := repository.WithSerializableRetry(ctx, r.db, r.opts.Retries, func(tx *sql.Tx) (Outcome, error) {
			return r.issueOne(ctx, tx, app, statuses, cmd, issuedAt)
		})
		if err != nil {
			r.logger.Error("bulk issue aborted", "application_id", app.ID, "issued", result.Issued, "error", err)
			return result, fmt.Errorf("issue application %d: %w", app.ID, err)
		}

		if outcome.Issued() {
			result.Issued++
		} else {
			result.Skipped++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	r.logger.Info("bulk issue complete", "issued", result.Issued, "skipped", result.Skipped)
	return result, nil
}

const (
	lockApplication = `SELECT status FROM applications WHERE application_id = $1 FOR UPDATE`
	priorIssuance   = `SELECT EXISTS (SELECT 1 FROM issuances WHERE person_id = $1)`
	insertIssuance  = `
		INSERT INTO issuances (
			person_id, application_id, issued_at, book_name, language, issued_by,
			notes, is_exception, exception_type, exception_reason, batch_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING issuance_id`
)

func (r *repo) issueOne(
	ctx context.Context,
	tx *sql.Tx,
	app applications.Application,
	statuses []applications.Status,
	cmd IssueCommand,
	issuedAt time.Time,
) (Outcome, error) {
	out := Outcome{ApplicationID: app.ID}

	var current applications.Status
	if err := tx.QueryRowContext(ctx, lockApplication, app.ID).Scan(&current); err != nil {
		return out, fmt.Errorf("lock application: %w", err)
	}
	if !slices.Contains(statuses, current) {
		out.Status = current
		out.Note = "status changed before issue"
		return out, nil
	}

	setStatus := func(status applications.Status, note string, personID *int64) (Outcome, error) {
		if _, err := applications.SetStatusWith(ctx, tx, app.ID, applications.StatusCommand{
			Status:          status,
			Note:            note,
			MatchedPersonID: personID,
		}); err != nil {
			return out, err
		}
		out.Status, out.Note, out.PersonID = status, note, personID
		return out, nil
	}

	if note := Safeguard(app); note != "" {
		return setStatus(applications.StatusRejected, note, nil)
	}

	personID, err := persons.Upsert(ctx, tx, persons.Identity{
		FullNameOriginal:     app.FullNameOriginal,
		FullNameNormalized:   app.FullNameNormalized,
		PhoneOriginal:        app.PhoneOriginal,
		PhoneNormalized:      app.PhoneNormalized,
		NationalIDOriginal:   app.NationalIDOriginal,
		NationalIDNormalized: app.NationalIDNormalized,
		Country:              app.Country,
		ChurchName:           app.ChurchName,
	})
	if err != nil {
		return out, err
	}

	exception := current == applications.StatusApprovedException

	if !exception {
		var prior bool
		if err := tx.QueryRowContext(ctx, priorIssuance, personID).Scan(&prior); err != nil {
			return out, fmt.Errorf("check prior issuance: %w", err)
		}
		if prior {
			return setStatus(applications.StatusNeedsReview, NotePriorIssuance, &personID)
		}
	}

	issuance := Issuance{
		PersonID:      personID,
		ApplicationID: &app.ID,
		IssuedAt:      issuedAt,
		BookName:      r.opts.BookName,
		Language:      IssueLanguage(app, cmd, r.opts.DefaultLanguage),
		IssuedBy:      cmd.IssuedBy,
		Notes:         "Bulk issue from " + string(current),
		BatchID:       app.BatchID,
	}
	if exception {
		issuance.IsException = true
		issuance.ExceptionType = string(eligibility.AdminOverride)
		issuance.ExceptionReason = app.AdminNotes
	}

	var issuanceID int64
	err = tx.QueryRowContext(ctx, insertIssuance,
		issuance.PersonID, issuance.ApplicationID, issuance.IssuedAt, issuance.BookName,
		issuance.Language, issuance.IssuedBy, issuance.Notes, issuance.IsException,
		issuance.ExceptionType, issuance.ExceptionReason, issuance.BatchID,
	).Scan(&issuanceID)
	if err != nil {
		return out, fmt.Errorf("insert issuance: %w", err)
	}

	out, err = setStatus(applications.StatusApproved, NoteIssued, &personID)
	if err != nil {
		return out, err
	}
	out.IssuanceID = &issuanceID
	return out, nil
}
