package screening

import (
	"fmt"
	"slices"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/decision"
	"github.com/JaimeStill/worldmap/internal/intake"
	"github.com/JaimeStill/worldmap/internal/issuances"
	"github.com/JaimeStill/worldmap/internal/persons"
	"github.com/JaimeStill/worldmap/pkg/spreadsheet"
)

// Worksheet names of the exported workbooks.
const (
	SheetAllChecked       = "AllChecked"
	SheetAutoRejected     = "AutoRejected"
	SheetNeedsFollowUp    = "NeedsFollowUp"
	SheetNeedsReview      = "NeedsReview"
	SheetApprovedReady    = "ApprovedReady"
	SheetReviewGrouped    = "Review_Grouped"
	SheetCorrections      = "Corrections_Template"
	SheetHeld             = "Held_NewRows"
	SheetMatchedPersons   = "Matched_DB_Persons"
	SheetMatchedIssuances = "Matched_DB_Issuances"
)

// Review_Grouped row roles.
const (
	RolePrimary = "PRIMARY"
	RoleMatch   = "MATCH"
)

const (
	ColumnRowID     = "RowID"
	ColumnTopMatch1 = "TopMatch1"

	fillPrimary       = "FFC7CE"
	fillMatch         = "FFEB9C"
	maxTopMatches     = 3
	placeholderFormat = "No rows for %s"
)

// CheckedColumns names the worksheet columns written for a checked row.
var CheckedColumns = slices.Concat(
	[]string{ColumnRowID},
	applications.Columns,
	[]string{
		"missing_required_fields",
		"DuplicatePhone", "DuplicateID", "MatchedPersonID", "PriorIssuanceLatest",
		ColumnTopMatch1, "TopMatch2", "TopMatch3",
		"AutoStatus", "AutoReason",
	},
)

// GroupedColumns names the Review_Grouped worksheet columns.
var GroupedColumns = slices.Concat(
	[]string{"GroupID", "RowRole", "MatchReason"},
	CheckedColumns,
)

// Cells renders r as one worksheet row in CheckedColumns order.
func (r CheckedRow) Cells() []any {
	var matched any = ""
	if r.Match.MatchedPersonID != nil {
		matched = *r.Match.MatchedPersonID
	}

	var prior any = ""
	if r.Match.PriorIssuanceLatest != nil {
		prior = *r.Match.PriorIssuanceLatest
	}

	top := make([]any, maxTopMatches)
	for i := range top {
		top[i] = ""
		if i < len(r.Match.Candidates) {
			top[i] = r.Match.Candidates[i].String()
		}
	}

	cells := make([]any, 0, len(CheckedColumns))
	cells = append(cells, r.RowID)
	cells = append(cells, r.Application.Cells()...)
	cells = append(cells,
		r.Application.MissingRequired,
		r.Match.DuplicatePhone, r.Match.DuplicateID, matched, prior,
	)
	cells = append(cells, top...)
	cells = append(cells, string(r.Decision.Status), r.Decision.Reason)
	return cells
}

func checkedWorkbook(batch CheckedBatch) *spreadsheet.Workbook {
	wb := spreadsheet.NewWorkbook().Add(rowSheet(SheetAllChecked, batch.Rows))

	for _, s := range []struct {
		name   string
		status applications.Status
	}{
		{SheetAutoRejected, applications.StatusRejected},
		{SheetNeedsFollowUp, applications.StatusNeedsFollowUp},
		{SheetNeedsReview, applications.StatusNeedsReview},
		{SheetApprovedReady, applications.StatusApprovedReady},
	} {
		wb.Add(rowSheet(s.name, batch.ByStatus(s.status)))
	}

	if len(batch.Groups) > 0 {
		wb.Add(groupedSheet(batch.Rows, batch.Groups))
	}

	return wb.Add(correctionsSheet(batch.ByStatus(applications.StatusNeedsFollowUp)))
}

func recheckWorkbook(second SecondCheck) *spreadsheet.Workbook {
	people := make([][]any, len(second.Persons))
	for i, p := range second.Persons {
		people[i] = p.Cells()
	}

	issued := make([][]any, len(second.Issuances))
	for i, is := range second.Issuances {
		issued[i] = is.Cells()
	}

	return spreadsheet.NewWorkbook().
		Add(rowSheet(SheetHeld, second.Held)).
		Add(spreadsheet.Sheet{Name: SheetMatchedPersons, Header: persons.Columns, Rows: people}).
		Add(spreadsheet.Sheet{Name: SheetMatchedIssuances, Header: issuances.Columns, Rows: issued})
}

func rowSheet(name string, rows []CheckedRow) spreadsheet.Sheet {
	cells := make([][]any, len(rows))
	for i, r := range rows {
		cells[i] = r.Cells()
	}
	return spreadsheet.Sheet{
		Name:        name,
		Header:      CheckedColumns,
		Rows:        cells,
		Placeholder: fmt.Sprintf(placeholderFormat, name),
	}
}

// groupedSheet lays out each review group as its primary row, one row per
// candidate, and a blank separator row.
func groupedSheet(rows []CheckedRow, groups []decision.Group) spreadsheet.Sheet {
	topMatch := slices.Index(GroupedColumns, ColumnTopMatch1)

	var cells [][]any
	var fills []string
	for _, g := range groups {
		primary := slices.Concat(
			[]any{g.ID, RolePrimary, g.Reason},
			rows[g.Index].Cells(),
		)
		cells = append(cells, primary)
		fills = append(fills, fillPrimary)

		for _, c := range g.Candidates {
			match := make([]any, len(GroupedColumns))
			for i := range match {
				match[i] = ""
			}
			match[0], match[1], match[2] = g.ID, RoleMatch, decision.ReviewMatchCandidate
			match[topMatch] = c.String()

			cells = append(cells, match)
			fills = append(fills, fillMatch)
		}

		cells = append(cells, []any{})
		fills = append(fills, "")
	}

	return spreadsheet.Sheet{
		Name:   SheetReviewGrouped,
		Header: GroupedColumns,
		Rows:   cells,
		Fills:  fills,
	}
}

// correctionsSheet lists follow-up rows in the intake template layout so
// field officers can fill in what was missing.
func correctionsSheet(rows []CheckedRow) spreadsheet.Sheet {
	if len(rows) == 0 {
		return spreadsheet.Sheet{Name: SheetCorrections, Header: []string{ColumnRowID}}
	}

	cells := make([][]any, len(rows))
	for i, r := range rows {
		raw := r.Application.Raw()
		cells[i] = []any{
			r.RowID,
			raw.Name, raw.Phone, raw.NationalID, raw.Country, raw.ChurchName,
			raw.Title, raw.CongregationSize, raw.RequestedLanguage,
			raw.ReceivedBefore, raw.ReceivedBeforeReason,
		}
	}

	return spreadsheet.Sheet{
		Name:   SheetCorrections,
		Header: slices.Concat([]string{ColumnRowID}, intake.RequiredColumns),
		Rows:   cells,
	}
}
