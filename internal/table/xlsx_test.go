package table

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXLSX_RoundTrip(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Header: []string{"sku", "name", "ean"},
		Rows: [][]string{
			{"A1", "Widget", "4006381333931"},
			{"B2", "Gadget", ""},
		},
		Delimiter: ',',
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, tbl))

	got, err := ReadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Header, got.Header)
	assert.Equal(t, tbl.Rows, got.Rows)
}

func TestReadXLSX_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
