package intake_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/intake"
	"github.com/JaimeStill/worldmap/pkg/spreadsheet"
)

func workbook(t *testing.T, header []string, rows ...[]any) []byte {
	t.Helper()
	data, err := spreadsheet.NewWorkbook().
		Add(spreadsheet.Sheet{Name: "Sheet1", Header: header, Rows: rows}).
		Bytes()
	require.NoError(t, err)
	return data
}

func TestPrepare(t *testing.T) {
	data := workbook(t, intake.RequiredColumns,
		[]any{"Peter Ochieng", "0722 000 111", "", "Kenya", "Hope Church", "Pastor.", 20, "Kiswahili", "No", ""},
		[]any{"", "", "", "", "", "", "", "", "", ""},
		[]any{"Grace Akinyi", "", "A-778", "Kenya", "", "Deacon", "9", "English", "yes", "lost it"},
	)

	apps, err := intake.Prepare(intake.Source{Name: "kisumu.xlsx", Data: data}, "ab12cd34")
	require.NoError(t, err)
	require.Len(t, apps, 2, "blank rows are skipped")

	first := apps[0]
	assert.Equal(t, "PETER OCHIENG", first.FullNameNormalized)
	assert.Equal(t, "+254722000111", first.PhoneNormalized)
	assert.Equal(t, "PASTOR", first.Title)
	assert.Equal(t, 20, first.CongregationSize)
	assert.Equal(t, "kisumu.xlsx", first.SourceFile)
	assert.Equal(t, "ab12cd34", first.BatchID)
	assert.Equal(t, applications.StatusPending, first.Status)
	assert.False(t, first.NeedsReview)

	second := apps[1]
	assert.Equal(t, "A778", second.NationalIDNormalized)
	assert.True(t, second.IsDisqualified)
	assert.Equal(t, "CONGREGATION_LT_15;TITLE_NOT_ALLOWED;SELF_REPORTED_PRIOR_RECEIPT", second.SystemFlags)
	assert.Equal(t, "lost it", second.ReceivedBeforeReason)
}

func TestPrepareExtraColumnsAndOrder(t *testing.T) {
	header := append([]string{"RowID"}, intake.RequiredColumns...)
	header[1], header[2] = header[2], header[1]

	data := workbook(t, header,
		[]any{"x-1", "0711000000", "Samuel Kiprono", "", "Kenya", "", "Bishop", 30, "French", "", ""},
	)

	apps, err := intake.Prepare(intake.Source{Name: "corrections.xlsx", Data: data}, "ff00ff00")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "SAMUEL KIPRONO", apps[0].FullNameNormalized)
	assert.Equal(t, "+254711000000", apps[0].PhoneNormalized)
}

func TestPrepareMissingColumns(t *testing.T) {
	data := workbook(t, []string{"Name", "Phone", "Country", "Title"})

	_, err := intake.Prepare(intake.Source{Name: "bad.xlsx", Data: data}, "ab12cd34")
	require.Error(t, err)
	assert.True(t, errors.Is(err, intake.ErrMissingColumns))
	assert.Contains(t, err.Error(), "National ID, Church Name, Congregation Size")
	assert.Contains(t, err.Error(), "required: "+strings.Join(intake.RequiredColumns, ", "))
}

func TestPrepareUnreadable(t *testing.T) {
	_, err := intake.Prepare(intake.Source{Name: "notes.txt", Data: []byte("hello")}, "ab12cd34")
	assert.ErrorIs(t, err, intake.ErrUnreadable)
}
