package persons

import (
	"context"

	"github.com/JaimeStill/worldmap/pkg/pagination"
)

// System defines the public contract for person registry operations.
// Writes happen only through Upsert, inside the issuing transaction.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Summary], error)

	Find(ctx context.Context, id int64) (*Summary, error)
	ByIDs(ctx context.Context, ids []int64) ([]Person, error)

	// Snapshot reads every person, ordered by ID.
	Snapshot(ctx context.Context) ([]Person, error)
}
