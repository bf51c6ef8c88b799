package plan

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/resolver"
)

// Generate builds a logical plan tree from a resolved statement (spec
// section 4.4). It is the sole entry point the REPL and EXPLAIN command
// drive; a resolved statement never reaches a physical planner without
// passing through here first.
func Generate(stmt resolver.Statement) (Node, error) {
	switch s := stmt.(type) {
	case *resolver.Select:
		return generateSelect(s)
	case *resolver.Insert:
		return generateInsert(s), nil
	case *resolver.Update:
		return generateUpdate(s)
	case *resolver.Delete:
		return generateDelete(s)
	case *resolver.Calc:
		return &Calc{Expressions: s.Expressions}, nil
	case *resolver.Explain:
		child, err := Generate(s.Child)
		if err != nil {
			return nil, err
		}
		return &Explain{Child: child}, nil
	default:
		return nil, rc.New(rc.INTERNAL, "unknown resolved statement type")
	}
}

func sortDirection(d resolver.Direction) SortDirection {
	if d == resolver.Descending {
		return Descending
	}
	return Ascending
}

// scanTree folds a resolved SELECT's table list into a left-deep join
// chain. Each table gets its own TableGet leaf. A correlated sub-select
// referenced from WHERE or the projection list is not a table in this
// list at all — pkg/resolver leaves it as a resolver.SubSelectExpr
// placeholder in the expression tree, and pkg/subq plans and re-opens it
// against each outer row independently of this join chain (see
// DESIGN.md's Open Questions for why this, not a correlated Join, is the
// running mechanism).
func scanTree(tables []*catalog.Table) Node {
	var node Node
	for i, t := range tables {
		leaf := &TableGet{Table: t, Fields: t.VisibleColumns(), ReadOnly: true}
		if i == 0 {
			node = leaf
			continue
		}
		node = &Join{Left: node, Right: leaf}
	}
	return node
}

func generateSelect(s *resolver.Select) (Node, error) {
	if len(s.Tables) == 0 {
		return nil, rc.New(rc.SQL_SYNTAX, "SELECT requires at least one table")
	}
	node := scanTree(s.Tables)

	if s.Where != nil && len(s.Where.Children) > 0 {
		node = &Predicate{Filter: s.Where, Child: node}
	}

	// Project wraps the predicate-or-source first (spec section 4.4 step 3);
	// GroupBy and OrderBy then wrap the current root in turn (steps 4-5);
	// Aggregate is spliced above everything last (step 6), matching scenario
	// S2's worked plan shape: Aggregate -> GroupBy -> Project -> TableGet.
	node = &Project{Fields: s.Projection, Child: node}

	if len(s.GroupBy) > 0 {
		node = &GroupBy{Fields: s.GroupBy, Child: node}
	}

	if len(s.OrderBy) > 0 {
		directions := make([]SortDirection, len(s.OrderByDirections))
		for i, d := range s.OrderByDirections {
			directions[i] = sortDirection(d)
		}
		node = &OrderBy{Fields: s.OrderBy, Directions: directions, Child: node}
	}

	if len(s.AggregateFields) > 0 {
		node = &Aggregate{
			Fields:          s.AggregateFields,
			Mapping:         s.AggrToProjection,
			HavingPredicate: s.Having,
			Child:           node,
		}
	}

	return node, nil
}

func generateInsert(s *resolver.Insert) *Insert {
	rows := make([]Row, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = Row(row)
	}
	return &Insert{Table: s.Table, Rows: rows}
}

func generateUpdate(s *resolver.Update) (*Update, error) {
	var node Node = &TableGet{Table: s.Table, Fields: s.Table.VisibleColumns(), ReadOnly: false}
	if s.Where != nil && len(s.Where.Children) > 0 {
		node = &Predicate{Filter: s.Where, Child: node}
	}

	// A SET value's sub-select, if any, rides inside Value as a
	// resolver.SubSelectExpr placeholder; pkg/subq replaces it with a
	// materialized sub-query driver (which builds and owns its own
	// logical plan) rather than this generator building a second,
	// redundant SubPlan tree.
	clauses := make([]SetClause, len(s.SetClauses))
	for i, sc := range s.SetClauses {
		clauses[i] = SetClause{Column: sc.Column, Value: sc.Value}
	}

	return &Update{Table: s.Table, SetClauses: clauses, Child: node}, nil
}

func generateDelete(s *resolver.Delete) (*Delete, error) {
	var node Node = &TableGet{Table: s.Table, Fields: s.Table.VisibleColumns(), ReadOnly: false}
	if s.Where != nil && len(s.Where.Children) > 0 {
		node = &Predicate{Filter: s.Where, Child: node}
	}
	return &Delete{Table: s.Table, Child: node}, nil
}
