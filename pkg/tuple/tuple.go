// Package tuple defines the seam between the expression tree and whatever
// physical operator produced the current row. It is intentionally tiny:
// the physical executor is an external collaborator (spec section 1), and
// this is the entire contract it must satisfy.
package tuple

import "github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"

// CellSpec identifies a cell within a Tuple by (table, column) name pair,
// the TupleCellSpec of the glossary.
type CellSpec struct {
	Table  string
	Column string
}

// Tuple is one row as presented by a physical operator.
type Tuple interface {
	// CellAt returns the i'th cell in this tuple's schema order.
	CellAt(i int) (sqlvalue.Value, error)
	// Find resolves a (table, column) pair to its cell value.
	Find(spec CellSpec) (sqlvalue.Value, error)
	// CellCount reports how many cells this tuple carries.
	CellCount() int
}
