package network

import (
	"fmt"
	"math"
	"strings"

	"github.com/atanasg/ProteoVisualizer/errors"
)

// Reserved columns are owned by the substrate and never copied between rows.
const (
	SUIDColumn     = "SUID"
	SelectedColumn = "selected"
)

// NamespaceSeparator separates a column namespace from the column name, as in
// "stringdb::score".
const NamespaceSeparator = "::"

// ColumnType is the value type of a column.
type ColumnType int

const (
	// StringColumn holds string values.
	StringColumn ColumnType = iota
	// NumberColumn holds float64 values.
	NumberColumn
	// BoolColumn holds bool values.
	BoolColumn
	// StringListColumn holds []string values.
	StringListColumn
)

func (t ColumnType) String() string {
	switch t {
	case StringColumn:
		return "string"
	case NumberColumn:
		return "number"
	case BoolColumn:
		return "boolean"
	case StringListColumn:
		return "list"
	default:
		return "unknown"
	}
}

// ParseColumnType converts the textual form produced by ColumnType.String.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(s) {
	case "string":
		return StringColumn, nil
	case "number", "double", "integer", "long":
		return NumberColumn, nil
	case "boolean", "bool":
		return BoolColumn, nil
	case "list", "stringlist":
		return StringListColumn, nil
	default:
		return 0, fmt.Errorf("%w: column type %q", errors.ErrColumnType, s)
	}
}

// Column describes a table column.
type Column struct {
	Name    string
	Type    ColumnType
	Default any
}

// Namespace returns the part of the column name before "::", or "" when there is none.
func (c Column) Namespace() string {
	ns, _, ok := strings.Cut(c.Name, NamespaceSeparator)
	if !ok {
		return ""
	}
	return ns
}

// Table stores attribute rows keyed by element SUID.
type Table interface {
	Column(name string) (Column, bool)
	Columns() []Column
	// ColumnsInNamespace returns the columns named "<ns>::<name>".
	ColumnsInNamespace(ns string) []Column
	// CreateColumn adds a column. Creating an existing column of the same type is a no-op;
	// a different type is an ErrColumnType error.
	CreateColumn(name string, typ ColumnType, def any) error
	// Get returns the value of a cell, falling back to the column default.
	// The boolean is false for unknown columns and unset cells without default.
	Get(row SUID, column string) (any, bool)
	// Set writes a value after converting it to the column type. A nil value clears the cell.
	Set(row SUID, column string, value any) error
}

// Coerce converts v to the Go representation of typ.
func Coerce(typ ColumnType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case StringColumn:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case NumberColumn:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case BoolColumn:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case StringListColumn:
		switch l := v.(type) {
		case []string:
			out := make([]string, len(l))
			copy(out, l)
			return out, nil
		case []any:
			out := make([]string, 0, len(l))
			for _, item := range l {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: list item %T is not a string", errors.ErrColumnType, item)
				}
				out = append(out, s)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %T is not a %s", errors.ErrColumnType, v, typ)
}

// CreateColumnIfNeeded creates the column unless a column with that name exists,
// whatever its type.
func CreateColumnIfNeeded(t Table, name string, typ ColumnType, def any) error {
	if _, ok := t.Column(name); ok {
		return nil
	}
	return t.CreateColumn(name, typ, def)
}

// HasColumn reports whether the table has a column with the given name.
func HasColumn(t Table, name string) bool {
	_, ok := t.Column(name)
	return ok
}

// GetString returns a string cell.
func GetString(t Table, row SUID, column string) (string, bool) {
	v, ok := t.Get(row, column)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetNumber returns a number cell. NaN cells are reported as unset.
func GetNumber(t Table, row SUID, column string) (float64, bool) {
	v, ok := t.Get(row, column)
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// GetBool returns a boolean cell.
func GetBool(t Table, row SUID, column string) (bool, bool) {
	v, ok := t.Get(row, column)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetStringList returns a list cell.
func GetStringList(t Table, row SUID, column string) ([]string, bool) {
	v, ok := t.Get(row, column)
	if !ok {
		return nil, false
	}
	l, ok := v.([]string)
	return l, ok
}
