package table

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Mapping names the columns a fill run reads from and writes to. SKU and
// Name are the lookup keys (at least one must be mapped, depending on the
// search mode); Target is where found codes are written.
type Mapping struct {
	SKU    string `yaml:"sku"`
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
}

// ResolvedMapping holds column indexes validated against an actual header.
// An index of -1 means the column was not mapped.
type ResolvedMapping struct {
	SKU    int
	Name   int
	Target int
}

// LoadMapping reads a column mapping profile from a YAML file.
func LoadMapping(path string) (Mapping, error) {
	var m Mapping
	data, err := os.ReadFile(path)
	if err != nil {
		return m, eris.Wrap(err, "table: read mapping file")
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, eris.Wrap(err, "table: parse mapping file")
	}
	return m, nil
}

// Resolve validates the mapping against the table header once, before any
// processing, and returns column indexes. Target is always required; SKU
// and Name are each validated only when named.
func (m Mapping) Resolve(t *Table) (ResolvedMapping, error) {
	r := ResolvedMapping{SKU: -1, Name: -1, Target: -1}

	if m.Target == "" {
		return r, eris.New("table: mapping has no target column")
	}
	idx, ok := t.ColumnIndex(m.Target)
	if !ok {
		return r, eris.Errorf("table: target column %q not found in header", m.Target)
	}
	r.Target = idx

	if m.SKU != "" {
		idx, ok := t.ColumnIndex(m.SKU)
		if !ok {
			return r, eris.Errorf("table: sku column %q not found in header", m.SKU)
		}
		r.SKU = idx
	}
	if m.Name != "" {
		idx, ok := t.ColumnIndex(m.Name)
		if !ok {
			return r, eris.Errorf("table: name column %q not found in header", m.Name)
		}
		r.Name = idx
	}

	if r.SKU == -1 && r.Name == -1 {
		return r, eris.New("table: mapping needs a sku or name column")
	}
	return r, nil
}
