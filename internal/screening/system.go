package screening

import (
	"context"

	"github.com/JaimeStill/worldmap/internal/issuances"
)

// System defines the public contract for the screening pipeline.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Check ingests sources under a new batch ID, matches every row against
	// a registry snapshot, and decides a status per row. Sources that fail
	// header validation are reported in CheckedBatch.Errors.
	Check(ctx context.Context, cmd CheckCommand) (*CheckedBatch, error)

	// Recheck matches the batch's APPROVED_READY rows against a fresh
	// snapshot. Any row with a duplicate, prior issuance, or fuzzy candidate
	// is held.
	Recheck(ctx context.Context, batch CheckedBatch) (*SecondCheck, error)

	// Commit rechecks the batch and commits only the rows that stay clean.
	Commit(ctx context.Context, cmd CommitCommand) (*CommitResult, error)

	// Override commits held rows as APPROVED_EXCEPTION with an audit flag.
	Override(ctx context.Context, cmd OverrideCommand) (*CommitResult, error)

	Issue(ctx context.Context, cmd issuances.IssueCommand) (*issuances.IssueResult, error)

	// ExportChecked renders the first-pass workbook.
	ExportChecked(ctx context.Context, batch CheckedBatch) ([]byte, error)

	// ExportRecheck rechecks the batch and renders the held rows together
	// with the registry records they matched.
	ExportRecheck(ctx context.Context, batch CheckedBatch) ([]byte, error)
}
