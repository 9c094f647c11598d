package applications

import (
	"context"

	"github.com/JaimeStill/worldmap/pkg/pagination"
)

// System defines the public contract for application registry operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Application], error)

	Find(ctx context.Context, id int64) (*Application, error)

	// ByStatus returns every application in any of the given statuses, oldest first.
	ByStatus(ctx context.Context, statuses ...Status) ([]Application, error)

	// ByBatch returns every application committed under batchID, oldest first.
	ByBatch(ctx context.Context, batchID string) ([]Application, error)

	// Insert writes rows in a single transaction and returns them with
	// their assigned identifiers.
	Insert(ctx context.Context, rows []Application) ([]Application, error)

	SetStatus(ctx context.Context, id int64, cmd StatusCommand) (*Application, error)
	BulkSetStatus(ctx context.Context, cmd BulkStatusCommand) (int, error)

	// Correct applies field corrections, re-normalizes, and re-applies the
	// eligibility rules. Status is left unchanged.
	Correct(ctx context.Context, corrections []Correction) ([]Application, error)
}

// StatusCommand sets an application's status, admin note, and matched person.
// A nil MatchedPersonID keeps the current value.
type StatusCommand struct {
	Status          Status `json:"status"`
	Note            string `json:"note"`
	MatchedPersonID *int64 `json:"matched_person_id,omitempty"`
}

// BulkStatusCommand sets the same status and note on several applications.
type BulkStatusCommand struct {
	IDs    []int64 `json:"ids"`
	Status Status  `json:"status"`
	Note   string  `json:"note"`
}

// Correction overrides submitted fields of a committed application.
// Nil fields keep their current value.
type Correction struct {
	ID                   int64   `json:"application_id"`
	Name                 *string `json:"name,omitempty"`
	Phone                *string `json:"phone,omitempty"`
	NationalID           *string `json:"national_id,omitempty"`
	Country              *string `json:"country,omitempty"`
	ChurchName           *string `json:"church_name,omitempty"`
	Title                *string `json:"title,omitempty"`
	CongregationSize     *string `json:"congregation_size,omitempty"`
	RequestedLanguage    *string `json:"requested_language,omitempty"`
	ReceivedBefore       *string `json:"received_before,omitempty"`
	ReceivedBeforeReason *string `json:"received_before_reason,omitempty"`
}

// Apply returns a with the correction's fields re-normalized in. Identity,
// batch, status, and review bookkeeping are carried over unchanged.
func (c Correction) Apply(a Application) Application {
	raw := a.Raw()
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}

	set(&raw.Name, c.Name)
	set(&raw.Phone, c.Phone)
	set(&raw.NationalID, c.NationalID)
	set(&raw.Country, c.Country)
	set(&raw.ChurchName, c.ChurchName)
	set(&raw.Title, c.Title)
	set(&raw.CongregationSize, c.CongregationSize)
	set(&raw.RequestedLanguage, c.RequestedLanguage)
	set(&raw.ReceivedBefore, c.ReceivedBefore)
	set(&raw.ReceivedBeforeReason, c.ReceivedBeforeReason)

	out := Prepare(raw)
	out.ID = a.ID
	out.SourceFile = a.SourceFile
	out.BatchID = a.BatchID
	out.RowID = a.RowID
	out.Status = a.Status
	out.AdminNotes = a.AdminNotes
	out.MatchedPersonID = a.MatchedPersonID
	out.SubmittedAt = a.SubmittedAt
	out.UpdatedAt = a.UpdatedAt
	return out
}
