package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Header: []string{"SKU", "Denumire", "EAN"},
		Rows:   [][]string{{"A1", "Widget", ""}},
	}
}

func TestMappingResolve(t *testing.T) {
	t.Parallel()

	m := Mapping{SKU: "SKU", Name: "Denumire", Target: "EAN"}
	r, err := m.Resolve(sampleTable())
	require.NoError(t, err)
	assert.Equal(t, 0, r.SKU)
	assert.Equal(t, 1, r.Name)
	assert.Equal(t, 2, r.Target)
}

func TestMappingResolve_SKUOnly(t *testing.T) {
	t.Parallel()

	m := Mapping{SKU: "SKU", Target: "EAN"}
	r, err := m.Resolve(sampleTable())
	require.NoError(t, err)
	assert.Equal(t, 0, r.SKU)
	assert.Equal(t, -1, r.Name)
}

func TestMappingResolve_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    Mapping
	}{
		{"no target", Mapping{SKU: "SKU"}},
		{"target missing from header", Mapping{SKU: "SKU", Target: "Barcode"}},
		{"sku missing from header", Mapping{SKU: "Article", Target: "EAN"}},
		{"name missing from header", Mapping{Name: "Title", Target: "EAN"}},
		{"neither sku nor name", Mapping{Target: "EAN"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.m.Resolve(sampleTable())
			assert.Error(t, err)
		})
	}
}

func TestLoadMapping(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sku: SKU\nname: Denumire\ntarget: EAN\n"), 0o644))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, Mapping{SKU: "SKU", Name: "Denumire", Target: "EAN"}, m)
}

func TestLoadMapping_BadFile(t *testing.T) {
	t.Parallel()

	_, err := LoadMapping(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sku: [unclosed"), 0o644))
	_, err = LoadMapping(path)
	assert.Error(t, err)
}
