// Package spreadsheet reads the first worksheet of an xlsx workbook as a table
// and writes multi-sheet workbooks with optional row shading.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxSheetName is the longest worksheet name Excel accepts.
const maxSheetName = 31

var (
	ErrNoSheets   = errors.New("workbook has no worksheets")
	ErrNoHeader   = errors.New("worksheet has no header row")
	ErrDuplicated = errors.New("duplicate worksheet name")
)

// Table is a worksheet read as a header row followed by data rows.
// Every row has exactly len(Header) cells.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

// Read parses the first worksheet of an xlsx workbook.
func Read(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	t := &Table{
		Sheet:  sheets[0],
		Header: header,
		Rows:   make([][]string, 0, len(rows)-1),
	}

	for _, row := range rows[1:] {
		cells := make([]string, len(header))
		copy(cells, row)
		t.Rows = append(t.Rows, cells)
	}

	return t, nil
}

// Column returns the index of the named header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Missing returns the names in required that are not headers of t, in order.
func (t *Table) Missing(required []string) []string {
	var missing []string
	for _, name := range required {
		if t.Column(name) < 0 {
			missing = append(missing, name)
		}
	}
	return missing
}

// Sheet describes one worksheet to write.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
	// Fills holds an optional background color (hex RRGGBB) per data row.
	Fills []string
	// Placeholder, when set, is written as a single info row if Rows is empty.
	Placeholder string
}

// Workbook accumulates worksheets and renders them as xlsx.
type Workbook struct {
	sheets []Sheet
}

// NewWorkbook creates an empty Workbook.
func NewWorkbook() *Workbook {
	return &Workbook{}
}

// Add appends a worksheet. Names longer than Excel allows are truncated.
func (w *Workbook) Add(s Sheet) *Workbook {
	if len(s.Name) > maxSheetName {
		s.Name = s.Name[:maxSheetName]
	}
	w.sheets = append(w.sheets, s)
	return w
}

// Bytes renders the workbook.
func (w *Workbook) Bytes() ([]byte, error) {
	if len(w.sheets) == 0 {
		return nil, ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	fills := make(map[string]int)
	seen := make(map[string]bool)

	for i, s := range w.sheets {
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicated, s.Name)
		}
		seen[s.Name] = true

		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				return nil, fmt.Errorf("rename sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", s.Name, err)
		}

		if err := writeSheet(f, s, headerStyle, fills); err != nil {
			return nil, fmt.Errorf("write sheet %s: %w", s.Name, err)
		}
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s Sheet, headerStyle int, fills map[string]int) error {
	header, rows := s.Header, s.Rows
	if len(rows) == 0 && s.Placeholder != "" {
		header = []string{"info"}
		rows = [][]any{{s.Placeholder}}
	}

	if len(header) > 0 {
		cells := make([]any, len(header))
		for i, h := range header {
			cells[i] = h
		}
		if err := f.SetSheetRow(s.Name, "A1", &cells); err != nil {
			return err
		}

		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(s.Name, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	width := len(header)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
			return err
		}
		width = max(width, len(row))

		if i >= len(s.Fills) || s.Fills[i] == "" || width == 0 {
			continue
		}

		style, err := fillStyle(f, fills, s.Fills[i])
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(width, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(s.Name, cell, last, style); err != nil {
			return err
		}
	}

	return nil
}

func fillStyle(f *excelize.File, cache map[string]int, color string) (int, error) {
	if id, ok := cache[color]; ok {
		return id, nil
	}

	id, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
	if err != nil {
		return 0, err
	}
	cache[color] = id
	return id, nil
}
