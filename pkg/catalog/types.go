// Package catalog holds the table and column metadata the resolver binds
// identifiers against. It is a pure in-memory registry: on-disk persistence,
// MVCC, and storage access are the physical engine's concern, not this
// core's.
package catalog

import (
	"strings"
)

// DataType is the catalog's notion of a column's declared type. It maps
// onto sqlvalue.Type at resolution time (see pkg/sqlvalue).
type DataType int

const (
	TypeUnknown DataType = iota
	TypeInt
	TypeFloat
	TypeText
	TypeBool
	TypeDate
)

// String returns the SQL name of the type.
func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeText:
		return "CHARS"
	case TypeBool:
		return "BOOL"
	case TypeDate:
		return "DATE"
	default:
		return "UNKNOWN"
	}
}

// ParseDataType converts a SQL type name to a DataType.
func ParseDataType(s string) DataType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INT", "INTEGER":
		return TypeInt
	case "FLOAT", "DOUBLE", "REAL":
		return TypeFloat
	case "TEXT", "CHAR", "CHARS", "VARCHAR", "STRING":
		return TypeText
	case "BOOL", "BOOLEAN":
		return TypeBool
	case "DATE", "DATETIME", "TIMESTAMP":
		return TypeDate
	default:
		return TypeUnknown
	}
}

// Column is a single column's metadata within a Table's schema. It is the
// "column-meta" half of spec's Field type.
type Column struct {
	ID      int
	Name    string
	Type    DataType
	NotNull bool
	// System marks columns that wildcard expansion (`*`) must skip, e.g.
	// internal row-id bookkeeping columns.
	System bool
}

// Table is a resolved table-handle: non-owning metadata the resolver and
// plan generator reference by pointer. Tables live in the Catalog and
// outlive any statement or plan referencing them.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnByName finds a column by case-insensitive name.
func (t *Table) ColumnByName(name string) (*Column, int) {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i], i
		}
	}
	return nil, -1
}

// VisibleColumns returns the non-system columns, in declaration order —
// what `SELECT *` expands to.
func (t *Table) VisibleColumns() []Column {
	out := make([]Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !c.System {
			out = append(out, c)
		}
	}
	return out
}
