// Package field implements the resolved column reference described in
// spec section 3: a table-handle, column metadata, and the optional
// decorations (alias, aggregate tag, scalar-function tag, constant
// override) that projection/group-by/order-by lists carry.
package field

import (
	"fmt"

	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
)

// AggrFunc is the aggregate-function tag a Field may carry.
type AggrFunc int

const (
	AggrNone AggrFunc = iota
	AggrCount
	AggrSum
	AggrAvg
	AggrMin
	AggrMax
)

func (a AggrFunc) String() string {
	switch a {
	case AggrCount:
		return "COUNT"
	case AggrSum:
		return "SUM"
	case AggrAvg:
		return "AVG"
	case AggrMin:
		return "MIN"
	case AggrMax:
		return "MAX"
	default:
		return ""
	}
}

// ParseAggrFunc converts a SQL aggregate function name to an AggrFunc.
func ParseAggrFunc(name string) (AggrFunc, bool) {
	switch name {
	case "COUNT":
		return AggrCount, true
	case "SUM":
		return AggrSum, true
	case "AVG":
		return AggrAvg, true
	case "MIN":
		return AggrMin, true
	case "MAX":
		return AggrMax, true
	default:
		return AggrNone, false
	}
}

// Field is a resolved column reference. Table is nil exactly when Field
// represents a pure constant or COUNT(*) (spec section 3 invariant).
type Field struct {
	Table     *catalog.Table
	Column    *catalog.Column
	Alias     string
	Aggr      AggrFunc
	FuncName  string // scalar-function tag; rewriting only, no evaluation (spec section 6)
	IsStar    bool   // true for COUNT(*) / table.* expansion placeholder
	Const     *sqlvalue.Value
	// UsedAlias records whether the query qualified this reference through
	// a table alias (e.g. "o.id" where o is an AS-alias for orders), as
	// opposed to the table's real name or no qualifier at all. It governs
	// CanonicalAlias's unwrapped table.col/col choice (spec section 4.3).
	UsedAlias bool
}

// IsConstant reports whether this field is a literal with no table binding.
func (f *Field) IsConstant() bool {
	return f.Table == nil && !f.IsStar && f.Const != nil
}

// QualifiedName renders "table.column", or just "column"/"*" when there is
// no table qualifier or column (constants, COUNT(*)).
func (f *Field) QualifiedName() string {
	switch {
	case f.IsStar:
		if f.Table != nil {
			return f.Table.Name + ".*"
		}
		return "*"
	case f.Column == nil:
		return "?"
	case f.Table != nil:
		return f.Table.Name + "." + f.Column.Name
	default:
		return f.Column.Name
	}
}

// CanonicalAlias computes the default alias a projection field gets when
// no explicit AS was given (spec section 4.3): func(table.col) when
// wrapped in an aggregate/scalar function; else table.col when the query
// referenced this column through a table alias; else the bare column
// name.
func (f *Field) CanonicalAlias() string {
	if f.Alias != "" {
		return f.Alias
	}
	if f.Aggr != AggrNone {
		return fmt.Sprintf("%s(%s)", f.Aggr, f.QualifiedName())
	}
	if f.FuncName != "" {
		return fmt.Sprintf("%s(%s)", f.FuncName, f.QualifiedName())
	}
	switch {
	case f.IsStar:
		return f.QualifiedName()
	case f.Column == nil:
		return "?"
	case f.UsedAlias:
		return f.Table.Name + "." + f.Column.Name
	default:
		return f.Column.Name
	}
}

// String renders the field for EXPLAIN / diagnostics.
func (f *Field) String() string {
	return f.CanonicalAlias()
}
