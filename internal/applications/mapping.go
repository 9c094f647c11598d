package applications

import (
	"net/url"

	"github.com/JaimeStill/worldmap/pkg/query"
	"github.com/JaimeStill/worldmap/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "applications", "a").
	Project("application_id", "ID").
	Project("source_file", "SourceFile").
	Project("batch_id", "BatchID").
	Project("row_id", "RowID").
	Project("full_name_original", "FullNameOriginal").
	Project("phone_original", "PhoneOriginal").
	Project("national_id_original", "NationalIDOriginal").
	Project("country", "Country").
	Project("church_name", "ChurchName").
	Project("title", "Title").
	Project("congregation_size", "CongregationSize").
	Project("congregation_size_valid", "CongregationSizeValid").
	Project("requested_language", "RequestedLanguage").
	Project("received_before", "ReceivedBefore").
	Project("received_before_reason", "ReceivedBeforeReason").
	Project("full_name_normalized", "FullNameNormalized").
	Project("name_key", "NameKey").
	Project("phone_normalized", "PhoneNormalized").
	Project("national_id_normalized", "NationalIDNormalized").
	Project("is_disqualified", "IsDisqualified").
	Project("disqualify_reason", "DisqualifyReason").
	Project("needs_review", "NeedsReview").
	Project("system_flags", "SystemFlags").
	Project("status", "Status").
	Project("admin_notes", "AdminNotes").
	Project("matched_person_id", "MatchedPersonID").
	Project("submitted_at", "SubmittedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "ID",
	Descending: true,
}

// insertColumns are written by Insert in this order; see insertArgs.
const insertColumns = `source_file, batch_id, row_id, full_name_original, phone_original, national_id_original,
	country, church_name, title, congregation_size, congregation_size_valid, requested_language,
	received_before, received_before_reason, full_name_normalized, name_key, phone_normalized,
	national_id_normalized, is_disqualified, disqualify_reason, needs_review, system_flags,
	status, admin_notes, matched_person_id`

const insertColumnCount = 25

func insertArgs(a Application) []any {
	return []any{
		a.SourceFile,
		a.BatchID,
		a.RowID,
		a.FullNameOriginal,
		a.PhoneOriginal,
		a.NationalIDOriginal,
		a.Country,
		a.ChurchName,
		a.Title,
		a.CongregationSize,
		a.CongregationSizeValid,
		a.RequestedLanguage,
		a.ReceivedBefore,
		a.ReceivedBeforeReason,
		a.FullNameNormalized,
		a.NameKey,
		a.PhoneNormalized,
		a.NationalIDNormalized,
		a.IsDisqualified,
		a.DisqualifyReason,
		a.NeedsReview,
		a.SystemFlags,
		string(a.Status),
		a.AdminNotes,
		a.MatchedPersonID,
	}
}

// Filters contains optional filtering criteria for application queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	BatchID    *string `json:"batch_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Country    *string `json:"country,omitempty"`
	SourceFile *string `json:"source_file,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("BatchID", f.BatchID).
		WhereEquals("Status", f.Status).
		WhereEquals("Country", f.Country).
		WhereEquals("SourceFile", f.SourceFile)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if b := values.Get("batch_id"); b != "" {
		f.BatchID = &b
	}
	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if c := values.Get("country"); c != "" {
		f.Country = &c
	}
	if sf := values.Get("source_file"); sf != "" {
		f.SourceFile = &sf
	}

	return f
}

var searchFields = []string{
	"FullNameNormalized",
	"PhoneNormalized",
	"NationalIDNormalized",
	"ChurchName",
}

func scanApplication(s repository.Scanner) (Application, error) {
	var a Application
	err := s.Scan(
		&a.ID,
		&a.SourceFile,
		&a.BatchID,
		&a.RowID,
		&a.FullNameOriginal,
		&a.PhoneOriginal,
		&a.NationalIDOriginal,
		&a.Country,
		&a.ChurchName,
		&a.Title,
		&a.CongregationSize,
		&a.CongregationSizeValid,
		&a.RequestedLanguage,
		&a.ReceivedBefore,
		&a.ReceivedBeforeReason,
		&a.FullNameNormalized,
		&a.NameKey,
		&a.PhoneNormalized,
		&a.NationalIDNormalized,
		&a.IsDisqualified,
		&a.DisqualifyReason,
		&a.NeedsReview,
		&a.SystemFlags,
		&a.Status,
		&a.AdminNotes,
		&a.MatchedPersonID,
		&a.SubmittedAt,
		&a.UpdatedAt,
	)
	return a, err
}
