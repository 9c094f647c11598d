package issuances

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/worldmap/pkg/query"
	"github.com/JaimeStill/worldmap/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "issuances", "i").
	Project("issuance_id", "ID").
	Project("person_id", "PersonID").
	Project("application_id", "ApplicationID").
	Project("issued_at", "IssuedAt").
	Project("book_name", "BookName").
	Project("language", "Language").
	Project("issued_by", "IssuedBy").
	Project("notes", "Notes").
	Project("is_exception", "IsException").
	Project("exception_type", "ExceptionType").
	Project("exception_reason", "ExceptionReason").
	Project("batch_id", "BatchID")

var defaultSort = query.SortField{
	Field:      "IssuedAt",
	Descending: true,
}

// snapshotSort orders a full read deterministically.
var snapshotSort = []query.SortField{
	{Field: "PersonID"},
	{Field: "IssuedAt", Descending: true},
	{Field: "ID", Descending: true},
}

// Filters contains optional filtering criteria for issuance queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	PersonID    *int64  `json:"person_id,omitempty"`
	BatchID     *string `json:"batch_id,omitempty"`
	Language    *string `json:"language,omitempty"`
	IssuedBy    *string `json:"issued_by,omitempty"`
	IsException *bool   `json:"is_exception,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("PersonID", f.PersonID).
		WhereEquals("BatchID", f.BatchID).
		WhereEquals("Language", f.Language).
		WhereEquals("IssuedBy", f.IssuedBy).
		WhereEquals("IsException", f.IsException)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if p := values.Get("person_id"); p != "" {
		if v, err := strconv.ParseInt(p, 10, 64); err == nil {
			f.PersonID = &v
		}
	}
	if b := values.Get("batch_id"); b != "" {
		f.BatchID = &b
	}
	if l := values.Get("language"); l != "" {
		f.Language = &l
	}
	if by := values.Get("issued_by"); by != "" {
		f.IssuedBy = &by
	}
	if e := values.Get("is_exception"); e != "" {
		if v, err := strconv.ParseBool(e); err == nil {
			f.IsException = &v
		}
	}

	return f
}

var searchFields = []string{
	"IssuedBy",
	"Notes",
	"ExceptionReason",
}

func scanIssuance(s repository.Scanner) (Issuance, error) {
	var i Issuance
	err := s.Scan(
		&i.ID,
		&i.PersonID,
		&i.ApplicationID,
		&i.IssuedAt,
		&i.BookName,
		&i.Language,
		&i.IssuedBy,
		&i.Notes,
		&i.IsException,
		&i.ExceptionType,
		&i.ExceptionReason,
		&i.BatchID,
	)
	return i, err
}
