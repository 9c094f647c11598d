package screening

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/batches"
	"github.com/JaimeStill/worldmap/internal/issuances"
	"github.com/JaimeStill/worldmap/internal/matching"
	"github.com/JaimeStill/worldmap/internal/persons"
	"github.com/JaimeStill/worldmap/pkg/repository"
)

// Registry is the slice of the registry the pipeline reads and writes.
type Registry interface {
	// Snapshot reads every person and issuance at one point in time.
	Snapshot(ctx context.Context) (matching.Snapshot, error)
	// Related returns the persons with the given IDs and their issuances.
	Related(ctx context.Context, personIDs []int64) ([]persons.Person, []issuances.Issuance, error)
	// Commit records the batch and inserts rows in one transaction.
	Commit(ctx context.Context, cmd batches.CreateCommand, rows []applications.Application) (batches.Batch, []applications.Application, error)
}

// Issuer runs the bulk issue step.
type Issuer interface {
	Issue(ctx context.Context, cmd issuances.IssueCommand) (*issuances.IssueResult, error)
}

// Archive stores copies of uploaded sources and generated workbooks.
type Archive interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
}

type registry struct {
	db     *sql.DB
	people persons.System
	issued issuances.System
}

// NewRegistry adapts the registry domain systems to Registry.
func NewRegistry(db *sql.DB, people persons.System, issued issuances.System) Registry {
	return &registry{db: db, people: people, issued: issued}
}

func (r *registry) Snapshot(ctx context.Context) (matching.Snapshot, error) {
	people, err := r.people.Snapshot(ctx)
	if err != nil {
		return matching.Snapshot{}, fmt.Errorf("snapshot persons: %w", err)
	}

	issued, err := r.issued.Snapshot(ctx)
	if err != nil {
		return matching.Snapshot{}, fmt.Errorf("snapshot issuances: %w", err)
	}

	return matching.Snapshot{Persons: people, Issuances: issued}, nil
}

func (r *registry) Related(ctx context.Context, personIDs []int64) ([]persons.Person, []issuances.Issuance, error) {
	if len(personIDs) == 0 {
		return []persons.Person{}, []issuances.Issuance{}, nil
	}

	people, err := r.people.ByIDs(ctx, personIDs)
	if err != nil {
		return nil, nil, err
	}

	issued, err := r.issued.ListByPersons(ctx, personIDs)
	if err != nil {
		return nil, nil, err
	}

	return people, issued, nil
}

type committed struct {
	batch batches.Batch
	rows  []applications.Application
}

func (r *registry) Commit(
	ctx context.Context,
	cmd batches.CreateCommand,
	rows []applications.Application,
) (batches.Batch, []applications.Application, error) {
	out, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (committed, error) {
		b, err := batches.CreateWith(ctx, tx, cmd)
		if err != nil {
			return committed{}, err
		}

		inserted, err := applications.InsertWith(ctx, tx, rows)
		if err != nil {
			return committed{}, err
		}

		return committed{batch: b, rows: inserted}, nil
	})
	if err != nil {
		return batches.Batch{}, nil, fmt.Errorf("commit batch %s: %w", cmd.ID, err)
	}
	return out.batch, out.rows, nil
}
