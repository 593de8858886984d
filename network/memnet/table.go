package memnet

import (
	"fmt"
	"strings"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network"
)

// Table is an attribute table with typed columns.
type Table struct {
	columns map[string]network.Column
	order   []string
	rows    map[network.SUID]map[string]any
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		columns: make(map[string]network.Column),
		rows:    make(map[network.SUID]map[string]any),
	}
}

// Column implements network.Table.
func (t *Table) Column(name string) (network.Column, bool) {
	c, ok := t.columns[name]
	return c, ok
}

// Columns implements network.Table.
func (t *Table) Columns() []network.Column {
	out := make([]network.Column, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.columns[name])
	}
	return out
}

// ColumnsInNamespace implements network.Table.
func (t *Table) ColumnsInNamespace(ns string) []network.Column {
	prefix := ns + network.NamespaceSeparator
	var out []network.Column
	for _, name := range t.order {
		if strings.HasPrefix(name, prefix) {
			out = append(out, t.columns[name])
		}
	}
	return out
}

// CreateColumn implements network.Table.
func (t *Table) CreateColumn(name string, typ network.ColumnType, def any) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Table", "CreateColumn", "column name check")
	}
	if existing, ok := t.columns[name]; ok {
		if existing.Type != typ {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %q is %s, not %s", errors.ErrColumnType, name, existing.Type, typ),
				"Table", "CreateColumn", "column type check")
		}
		return nil
	}
	d, err := network.Coerce(typ, def)
	if err != nil {
		return errors.WrapInvalid(err, "Table", "CreateColumn", "default conversion")
	}
	t.columns[name] = network.Column{Name: name, Type: typ, Default: d}
	t.order = append(t.order, name)
	return nil
}

// Get implements network.Table.
func (t *Table) Get(row network.SUID, column string) (any, bool) {
	col, ok := t.columns[column]
	if !ok {
		return nil, false
	}
	if v, ok := t.rows[row][column]; ok {
		if l, isList := v.([]string); isList {
			return append([]string(nil), l...), true
		}
		return v, true
	}
	if col.Default != nil {
		return col.Default, true
	}
	return nil, false
}

// Set implements network.Table.
func (t *Table) Set(row network.SUID, column string, value any) error {
	col, ok := t.columns[column]
	if !ok {
		return errors.Wrap(fmt.Errorf("%w: %q", errors.ErrColumnMissing, column), "Table", "Set", "column lookup")
	}
	v, err := network.Coerce(col.Type, value)
	if err != nil {
		return errors.WrapInvalid(fmt.Errorf("column %q: %w", column, err), "Table", "Set", "value conversion")
	}
	if v == nil {
		delete(t.rows[row], column)
		return nil
	}
	r, ok := t.rows[row]
	if !ok {
		r = make(map[string]any)
		t.rows[row] = r
	}
	r[column] = v
	return nil
}

// HasRow reports whether any cell of row is set.
func (t *Table) HasRow(row network.SUID) bool {
	return len(t.rows[row]) > 0
}
