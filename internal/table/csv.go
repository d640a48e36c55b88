package table

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DetectDelimiter inspects the first line and picks ',' or ';', whichever
// occurs more often outside quoted sections. Ties fall back to ','.
func DetectDelimiter(firstLine string) rune {
	commas, semis := 0, 0
	inQuotes := false
	for _, ch := range firstLine {
		switch ch {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				commas++
			}
		case ';':
			if !inQuotes {
				semis++
			}
		}
	}
	if semis > commas {
		return ';'
	}
	return ','
}

// ReadCSV parses a delimited text file with delimiter auto-detection and
// UTF-8 BOM tolerance. The first row is the header; data rows are padded
// to the header width.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "table: open csv")
	}
	defer f.Close() //nolint:errcheck

	// Excel exports frequently carry a BOM; strip it before parsing.
	data, err := io.ReadAll(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	if err != nil {
		return nil, eris.Wrap(err, "table: read csv")
	}

	firstLine, _, _ := strings.Cut(string(data), "\n")
	delim := DetectDelimiter(firstLine)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields, padded below

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "table: parse csv")
	}
	if len(records) == 0 {
		return nil, eris.New("table: csv is empty")
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, pad(rec, len(header)))
	}

	return &Table{Header: header, Rows: rows, Delimiter: delim}, nil
}

// WriteCSV serializes the table with its detected delimiter and a UTF-8 BOM,
// matching the encoding spreadsheet tools expect on import.
func WriteCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "table: create csv")
	}

	bw := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(bw)
	if t.Delimiter != 0 {
		w.Comma = t.Delimiter
	}

	if err := w.Write(t.Header); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "table: write header")
	}
	if err := w.WriteAll(t.Rows); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "table: write rows")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "table: flush csv")
	}
	if err := bw.Close(); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "table: finish encoding")
	}
	return eris.Wrap(f.Close(), "table: close csv")
}
