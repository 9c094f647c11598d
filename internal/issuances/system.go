package issuances

import (
	"context"

	"github.com/JaimeStill/worldmap/pkg/pagination"
)

// System defines the public contract for issuance operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Issuance], error)

	// Snapshot reads every issuance, grouped by person with the newest first.
	Snapshot(ctx context.Context) ([]Issuance, error)
	ListByPersons(ctx context.Context, personIDs []int64) ([]Issuance, error)
	ByBatch(ctx context.Context, batchID string) ([]Issuance, error)

	// Issue hands out books for committed applications. Each application is
	// processed in its own serializable transaction.
	Issue(ctx context.Context, cmd IssueCommand) (*IssueResult, error)
}

// Options configures the bulk issue step.
type Options struct {
	BookName        string
	DefaultLanguage string
	// Retries bounds attempts per application on serialization conflicts.
	Retries int
}
