// Package table models delimited spreadsheet data: parsing CSV and XLSX
// files, resolving column mappings against the header, and re-serializing
// completed tables for export.
package table

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table holds an in-memory tabular file: a header row plus data rows.
// Rows are padded to the header width so cell access is always in range.
type Table struct {
	Header    []string
	Rows      [][]string
	Delimiter rune
}

// ColumnIndex returns the 0-based index of the named column, matching
// case-sensitively on the trimmed header cell.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, col := range t.Header {
		if strings.TrimSpace(col) == name {
			return i, true
		}
	}
	return 0, false
}

// Get returns the trimmed cell value at (row, col).
func (t *Table) Get(row, col int) string {
	return strings.TrimSpace(t.Rows[row][col])
}

// Set writes a cell value at (row, col).
func (t *Table) Set(row, col int, value string) {
	t.Rows[row][col] = value
}

// pad extends row to width with empty cells.
func pad(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

// Read parses path as CSV or XLSX based on its extension.
func Read(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path)
	case ".csv", ".txt", "":
		return ReadCSV(path)
	default:
		return nil, eris.Errorf("table: unsupported file extension %q", filepath.Ext(path))
	}
}

// Write serializes the table to path as CSV or XLSX based on its extension.
func Write(path string, t *Table) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, t)
	default:
		return WriteCSV(path, t)
	}
}
