// Package intake turns uploaded spreadsheets into normalized, eligibility
// flagged applications.
package intake

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/pkg/spreadsheet"
)

// Required header names, matched exactly.
const (
	ColumnName                 = "Name"
	ColumnPhone                = "Phone"
	ColumnNationalID           = "National ID"
	ColumnCountry              = "Country"
	ColumnChurchName           = "Church Name"
	ColumnTitle                = "Title"
	ColumnCongregationSize     = "Congregation Size"
	ColumnRequestedLanguage    = "Requested Language"
	ColumnReceivedBefore       = "Have you received before?"
	ColumnReceivedBeforeReason = "If yes, reason"
)

// RequiredColumns lists every header a source must carry, in template order.
var RequiredColumns = []string{
	ColumnName,
	ColumnPhone,
	ColumnNationalID,
	ColumnCountry,
	ColumnChurchName,
	ColumnTitle,
	ColumnCongregationSize,
	ColumnRequestedLanguage,
	ColumnReceivedBefore,
	ColumnReceivedBeforeReason,
}

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrUnreadable     = errors.New("source is not a readable xlsx workbook")
)

// Source is one uploaded file.
type Source struct {
	Name string
	Data []byte
}

// Prepare reads src and returns its non-blank rows as applications stamped
// with the source name and batchID. A source missing any required header
// fails as a whole.
func Prepare(src Source, batchID string) ([]applications.Application, error) {
	table, err := spreadsheet.Read(bytes.NewReader(src.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return FromTable(table, src.Name, batchID)
}

// FromTable converts an already-read table. See Prepare.
func FromTable(table *spreadsheet.Table, source, batchID string) ([]applications.Application, error) {
	if missing := table.Missing(RequiredColumns); len(missing) > 0 {
		return nil, fmt.Errorf(
			"%w: %s (required: %s)",
			ErrMissingColumns,
			strings.Join(missing, ", "),
			strings.Join(RequiredColumns, ", "),
		)
	}

	index := make(map[string]int, len(RequiredColumns))
	for _, c := range RequiredColumns {
		index[c] = table.Column(c)
	}

	apps := make([]applications.Application, 0, len(table.Rows))
	for _, row := range table.Rows {
		if blank(row) {
			continue
		}

		get := func(col string) string { return row[index[col]] }

		a := applications.Prepare(applications.Raw{
			Name:                 get(ColumnName),
			Phone:                get(ColumnPhone),
			NationalID:           get(ColumnNationalID),
			Country:              get(ColumnCountry),
			ChurchName:           get(ColumnChurchName),
			Title:                get(ColumnTitle),
			CongregationSize:     get(ColumnCongregationSize),
			RequestedLanguage:    get(ColumnRequestedLanguage),
			ReceivedBefore:       get(ColumnReceivedBefore),
			ReceivedBeforeReason: get(ColumnReceivedBeforeReason),
		})
		a.SourceFile = source
		a.BatchID = batchID
		apps = append(apps, a)
	}

	return apps, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
