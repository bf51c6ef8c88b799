package resolver

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/expr"
	"github.com/JayabrataBasu/VeridicalDB/pkg/field"
)

// Direction is an ORDER BY column's sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Statement is the resolved sum type (spec section 3): Calc | Select |
// Insert | Update | Delete | Explain(child).
type Statement interface {
	isStatement()
}

// Select is a fully resolved SELECT statement. It owns its filter objects
// and references tables by pointer into the catalog (spec section 5).
type Select struct {
	Tables []*catalog.Table

	// Projection is the SELECT list after wildcard expansion, in the
	// order it will be projected.
	Projection []*field.Field

	// AggregateFields is the subset of Projection (by value, not index)
	// that carries a non-NONE aggregate tag.
	AggregateFields []*field.Field

	// AggrToProjection maps an index into AggregateFields to the index in
	// Projection it was sourced from.
	AggrToProjection map[int]int

	GroupBy           []*field.Field
	OrderBy           []*field.Field
	OrderByDirections []Direction

	Where  *expr.ConjunctionExpr
	Having *expr.ConjunctionExpr

	IsSubSelect bool
}

func (*Select) isStatement() {}

// SetClause is one resolved UPDATE SET assignment. When the right-hand
// side was a nested SELECT, Value is a *SubSelectExpr placeholder that
// pkg/subq replaces before execution.
type SetClause struct {
	Column *catalog.Column
	Value  expr.Expression
}

// Insert is a resolved INSERT statement.
type Insert struct {
	Table *catalog.Table
	Rows  [][]expr.Expression
}

func (*Insert) isStatement() {}

// Update is a resolved UPDATE statement.
type Update struct {
	Table      *catalog.Table
	SetClauses []SetClause
	Where      *expr.ConjunctionExpr
}

func (*Update) isStatement() {}

// Delete is a resolved DELETE statement.
type Delete struct {
	Table *catalog.Table
	Where *expr.ConjunctionExpr
}

func (*Delete) isStatement() {}

// Calc is a resolved CALC statement: expressions with no FROM clause.
type Calc struct {
	Expressions []expr.Expression
}

func (*Calc) isStatement() {}

// Explain wraps another resolved statement.
type Explain struct {
	Child Statement
}

func (*Explain) isStatement() {}
