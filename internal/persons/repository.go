package persons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/worldmap/pkg/pagination"
	"github.com/JaimeStill/worldmap/pkg/query"
	"github.com/JaimeStill/worldmap/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a person repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "persons"),
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
) (*pagination.PageResult[Summary], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(summaryProjection, defaultSort).
		WhereSearch(page.Search, searchFields...)

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count persons: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	people, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query persons: %w", err)
	}

	result := pagination.NewPageResult(people, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Summary, error) {
	q, args := query.NewBuilder(summaryProjection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanSummary)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) ByIDs(ctx context.Context, ids []int64) ([]Person, error) {
	if len(ids) == 0 {
		return []Person{}, nil
	}

	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	q, args := query.NewBuilder(projection, defaultSort).WhereIn("ID", values).Build()
	people, err := repository.QueryMany(ctx, r.db, q, args, scanPerson)
	if err != nil {
		return nil, fmt.Errorf("query persons by id: %w", err)
	}
	return people, nil
}

func (r *repo) Snapshot(ctx context.Context) ([]Person, error) {
	q, args := query.NewBuilder(projection, defaultSort).Build()

	people, err := repository.QueryMany(ctx, r.db, q, args, scanPerson)
	if err != nil {
		return nil, fmt.Errorf("snapshot persons: %w", err)
	}

	r.logger.Debug("persons snapshot", "count", len(people))
	return people, nil
}

const (
	lookupByPhone = `SELECT person_id FROM persons WHERE phone_normalized = $1 ORDER BY person_id LIMIT 1`
	lookupByID    = `SELECT person_id FROM persons WHERE national_id_normalized = $1 ORDER BY person_id LIMIT 1`

	// Names and identifiers are filled only where blank; country and church
	// take the newest non-blank value.
	updatePerson = `
		UPDATE persons SET
			first_name = COALESCE(NULLIF(first_name, ''), $2),
			middle_name = COALESCE(NULLIF(middle_name, ''), $3),
			last_name = COALESCE(NULLIF(last_name, ''), $4),
			full_name_original = COALESCE(NULLIF(full_name_original, ''), $5),
			full_name_normalized = COALESCE(NULLIF(full_name_normalized, ''), $6),
			name_key = COALESCE(NULLIF(name_key, ''), $7),
			phone_original = COALESCE(NULLIF(phone_original, ''), $8),
			phone_normalized = COALESCE(NULLIF(phone_normalized, ''), $9),
			national_id_original = COALESCE(NULLIF(national_id_original, ''), $10),
			national_id_normalized = COALESCE(NULLIF(national_id_normalized, ''), $11),
			country = COALESCE(NULLIF($12, ''), country),
			church_name = COALESCE(NULLIF($13, ''), church_name),
			updated_at = NOW()
		WHERE person_id = $1
		RETURNING person_id`

	insertPerson = `
		INSERT INTO persons (
			first_name, middle_name, last_name,
			full_name_original, full_name_normalized, name_key,
			phone_original, phone_normalized,
			national_id_original, national_id_normalized,
			country, church_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING person_id`
)

// Upsert finds the person matching id by normalized phone, then by normalized
// national ID, and enriches it; otherwise it inserts a new person. It returns
// the person's ID. Run it inside the transaction that records the issuance.
func Upsert(ctx context.Context, q repository.Querier, id Identity) (int64, error) {
	if id.PhoneNormalized == "" && id.NationalIDNormalized == "" && id.FullNameNormalized == "" {
		return 0, ErrNoIdentity
	}

	existing, err := lookup(ctx, q, id)
	if err != nil {
		return 0, fmt.Errorf("lookup person: %w", err)
	}

	first, middle, last, key := id.NameParts()

	if existing != 0 {
		var personID int64
		err := q.QueryRowContext(ctx, updatePerson,
			existing,
			first, middle, last,
			id.FullNameOriginal, id.FullNameNormalized, key,
			id.PhoneOriginal, id.PhoneNormalized,
			id.NationalIDOriginal, id.NationalIDNormalized,
			id.Country, id.ChurchName,
		).Scan(&personID)
		if err != nil {
			return 0, fmt.Errorf("update person %d: %w", existing, err)
		}
		return personID, nil
	}

	var personID int64
	err = q.QueryRowContext(ctx, insertPerson,
		first, middle, last,
		id.FullNameOriginal, id.FullNameNormalized, key,
		id.PhoneOriginal, id.PhoneNormalized,
		id.NationalIDOriginal, id.NationalIDNormalized,
		id.Country, id.ChurchName,
	).Scan(&personID)
	if err != nil {
		return 0, fmt.Errorf("insert person: %w", err)
	}
	return personID, nil
}

func lookup(ctx context.Context, q repository.Querier, id Identity) (int64, error) {
	probes := []struct {
		stmt  string
		value string
	}{
		{lookupByPhone, id.PhoneNormalized},
		{lookupByID, id.NationalIDNormalized},
	}

	for _, p := range probes {
		if p.value == "" {
			continue
		}

		var personID int64
		err := q.QueryRowContext(ctx, p.stmt, p.value).Scan(&personID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return personID, nil
	}

	return 0, nil
}
