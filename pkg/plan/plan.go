// Package plan implements the logical-plan generator — component 4 of the
// query core (spec section 3/4.4). It produces a left-deep tree of logical
// operators from a resolved statement; the physical-plan generator that
// turns this tree into something runnable is an external collaborator.
package plan

import (
	"fmt"
	"strings"

	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/expr"
	"github.com/JayabrataBasu/VeridicalDB/pkg/field"
)

// Node is the sum type every logical operator implements. Logical-plan
// nodes own their children exclusively (spec section 5).
type Node interface {
	// Children returns this node's child operators, in evaluation order.
	Children() []Node
	// Explain renders this node (and, recursively, its children) as an
	// indented EXPLAIN tree.
	Explain(indent int) string
}

func pad(indent int) string { return strings.Repeat("  ", indent) }

// TableGet scans a single table, optionally read-only.
type TableGet struct {
	Table    *catalog.Table
	Fields   []catalog.Column
	ReadOnly bool
}

func (n *TableGet) Children() []Node { return nil }
func (n *TableGet) Explain(indent int) string {
	mode := "rw"
	if n.ReadOnly {
		mode = "ro"
	}
	return fmt.Sprintf("%sTableGet(%s, %s)\n", pad(indent), n.Table.Name, mode)
}

// Predicate filters its child's rows by a boolean Conjunction.
type Predicate struct {
	Filter *expr.ConjunctionExpr
	Child  Node
}

func (n *Predicate) Children() []Node { return []Node{n.Child} }
func (n *Predicate) Explain(indent int) string {
	s := fmt.Sprintf("%sPredicate(%s)\n", pad(indent), n.Filter.String())
	return s + n.Child.Explain(indent+1)
}

// Project narrows its child's rows to Fields.
type Project struct {
	Fields []*field.Field
	Child  Node
}

func (n *Project) Children() []Node { return []Node{n.Child} }
func (n *Project) Explain(indent int) string {
	names := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		names[i] = f.CanonicalAlias()
	}
	s := fmt.Sprintf("%sProject(%s)\n", pad(indent), strings.Join(names, ", "))
	return s + n.Child.Explain(indent+1)
}

// Join is a left-deep nested-loop join of Left and Right: Right is
// re-scanned for every row Left produces.
type Join struct {
	Left, Right Node
}

func (n *Join) Children() []Node { return []Node{n.Left, n.Right} }
func (n *Join) Explain(indent int) string {
	s := fmt.Sprintf("%sJoin\n", pad(indent))
	s += n.Left.Explain(indent + 1)
	s += n.Right.Explain(indent + 1)
	return s
}

// GroupBy partitions its child's rows by Fields ahead of Aggregate.
type GroupBy struct {
	Fields []*field.Field
	Child  Node
}

func (n *GroupBy) Children() []Node { return []Node{n.Child} }
func (n *GroupBy) Explain(indent int) string {
	names := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		names[i] = f.CanonicalAlias()
	}
	s := fmt.Sprintf("%sGroupBy(%s)\n", pad(indent), strings.Join(names, ", "))
	return s + n.Child.Explain(indent+1)
}

// SortDirection is the OrderBy column direction tag.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// OrderBy sorts its child's rows by Fields/Directions.
type OrderBy struct {
	Fields     []*field.Field
	Directions []SortDirection
	Child      Node
}

func (n *OrderBy) Children() []Node { return []Node{n.Child} }
func (n *OrderBy) Explain(indent int) string {
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		parts[i] = fmt.Sprintf("%s %s", f.CanonicalAlias(), n.Directions[i])
	}
	s := fmt.Sprintf("%sOrderBy(%s)\n", pad(indent), strings.Join(parts, ", "))
	return s + n.Child.Explain(indent+1)
}

// Aggregate computes aggregate Fields over its child's (already grouped)
// rows, maps each aggregate result to its projection-list position via
// Mapping, and filters groups through HavingPredicate.
type Aggregate struct {
	Fields          []*field.Field
	Mapping         map[int]int
	HavingPredicate *expr.ConjunctionExpr
	Child           Node
}

func (n *Aggregate) Children() []Node { return []Node{n.Child} }
func (n *Aggregate) Explain(indent int) string {
	names := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		names[i] = f.CanonicalAlias()
	}
	having := ""
	if n.HavingPredicate != nil && len(n.HavingPredicate.Children) > 0 {
		having = fmt.Sprintf(" having=%s", n.HavingPredicate.String())
	}
	s := fmt.Sprintf("%sAggregate(%s)%s\n", pad(indent), strings.Join(names, ", "), having)
	return s + n.Child.Explain(indent+1)
}

// Row is a single literal row of scalar expressions, as INSERT carries.
type Row []expr.Expression

// Insert appends Rows to Table. It has no source child.
type Insert struct {
	Table *catalog.Table
	Rows  []Row
}

func (n *Insert) Children() []Node { return nil }
func (n *Insert) Explain(indent int) string {
	return fmt.Sprintf("%sInsert(%s, %d row(s))\n", pad(indent), n.Table.Name, len(n.Rows))
}

// SetClause is a single SET column = value assignment. When the right-hand
// side was a sub-select, Value carries it as an unmaterialized placeholder
// until pkg/subq replaces it with a live sub-query driver (spec section
// 4.4/4.5).
type SetClause struct {
	Column *catalog.Column
	Value  expr.Expression
}

// Update modifies Table's matching rows (after Child's Predicate/TableGet)
// by applying SetClauses.
type Update struct {
	Table      *catalog.Table
	SetClauses []SetClause
	Child      Node
}

func (n *Update) Children() []Node { return []Node{n.Child} }
func (n *Update) Explain(indent int) string {
	names := make([]string, len(n.SetClauses))
	for i, sc := range n.SetClauses {
		names[i] = sc.Column.Name
	}
	s := fmt.Sprintf("%sUpdate(%s, set=%s)\n", pad(indent), n.Table.Name, strings.Join(names, ", "))
	return s + n.Child.Explain(indent+1)
}

// Delete removes Child's matching rows from Table.
type Delete struct {
	Table *catalog.Table
	Child Node
}

func (n *Delete) Children() []Node { return []Node{n.Child} }
func (n *Delete) Explain(indent int) string {
	s := fmt.Sprintf("%sDelete(%s)\n", pad(indent), n.Table.Name)
	return s + n.Child.Explain(indent+1)
}

// Explain wraps Child, printing its logical tree instead of running it.
type Explain struct {
	Child Node
}

func (n *Explain) Children() []Node { return []Node{n.Child} }
func (n *Explain) Explain(indent int) string {
	return fmt.Sprintf("%sExplain\n", pad(indent)) + n.Child.Explain(indent+1)
}

// Calc evaluates a list of constant-foldable expressions with no FROM
// clause (spec section 3/6, supplemented per SPEC_FULL.md section 9).
type Calc struct {
	Expressions []expr.Expression
}

func (n *Calc) Children() []Node { return nil }
func (n *Calc) Explain(indent int) string {
	parts := make([]string, len(n.Expressions))
	for i, e := range n.Expressions {
		parts[i] = e.String()
	}
	return fmt.Sprintf("%sCalc(%s)\n", pad(indent), strings.Join(parts, ", "))
}
