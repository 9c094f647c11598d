package batches

import (
	"context"

	"github.com/JaimeStill/worldmap/pkg/pagination"
)

// System defines the public contract for batch operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Batch], error)

	Find(ctx context.Context, id string) (*Batch, error)

	// Create records a batch. Creating an existing batch ID returns the
	// existing record unchanged.
	Create(ctx context.Context, cmd CreateCommand) (*Batch, error)

	// Export renders the batch's applications, issuances, and issued people
	// as an xlsx workbook.
	Export(ctx context.Context, id string) ([]byte, error)
}
