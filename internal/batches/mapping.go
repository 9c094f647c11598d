package batches

import (
	"net/url"

	"github.com/JaimeStill/worldmap/pkg/query"
	"github.com/JaimeStill/worldmap/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "batches", "b").
	Project("batch_id", "ID").
	Project("created_at", "CreatedAt").
	Project("source_label", "SourceLabel").
	Project("source_files", "SourceFiles").
	Project("notes", "Notes")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for batch queries.
type Filters struct {
	SourceLabel *string `json:"source_label,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereContains("SourceLabel", f.SourceLabel)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if l := values.Get("source_label"); l != "" {
		f.SourceLabel = &l
	}
	return f
}

func scanBatch(s repository.Scanner) (Batch, error) {
	var b Batch
	err := s.Scan(&b.ID, &b.CreatedAt, &b.SourceLabel, &b.SourceFiles, &b.Notes)
	return b, err
}
