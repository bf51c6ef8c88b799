// Package resolver implements the statement resolver — component 3 of the
// query core (spec section 3/4.3). It turns a parser-produced ast.StmtSqlNode
// into a fully bound Statement: every identifier is a catalog pointer, every
// operand is an expr.Expression, and the SELECT list/GROUP BY/aggregate
// mixing rules have already been checked.
package resolver

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/ast"
	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/expr"
	"github.com/JayabrataBasu/VeridicalDB/pkg/field"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
)

// Resolver binds parsed statements against a Catalog.
type Resolver struct {
	Catalog *catalog.Catalog
}

// New creates a Resolver bound to cat.
func New(cat *catalog.Catalog) *Resolver {
	return &Resolver{Catalog: cat}
}

// Resolve dispatches a top-level parsed statement to its resolver.
func (r *Resolver) Resolve(n *ast.StmtSqlNode) (Statement, error) {
	switch {
	case n.Select != nil:
		return r.resolveSelect(n.Select, false, nil)
	case n.Insert != nil:
		return r.resolveInsert(n.Insert)
	case n.Update != nil:
		return r.resolveUpdate(n.Update)
	case n.Delete != nil:
		return r.resolveDelete(n.Delete)
	case n.Calc != nil:
		return r.resolveCalc(n.Calc)
	case n.Explain != nil:
		return r.resolveExplain(n.Explain)
	default:
		return nil, rc.New(rc.SQL_SYNTAX, "empty statement")
	}
}

// resolveSelect resolves a SELECT statement. When isSubSelect is true, outer
// is the enclosing statement's scope, used as a fallback for attribute
// references this select's own FROM list cannot bind (correlation, spec
// section 4.5).
func (r *Resolver) resolveSelect(n *ast.SelectSqlNode, isSubSelect bool, outer *Scope) (*Select, error) {
	local, ons, err := r.resolveFrom(n.Relations)
	if err != nil {
		return nil, err
	}

	conditions := append(append([]ast.ConditionSqlNode{}, n.Conditions...), ons...)

	where, err := r.resolveConditionList(conditions, local, outer, false)
	if err != nil {
		return nil, err
	}

	projection, err := r.resolveProjection(n.Attributes, local)
	if err != nil {
		return nil, err
	}

	groupBy, err := r.resolveAttrList(n.GroupByAttributes, local, outer)
	if err != nil {
		return nil, err
	}

	if err := validateAggregateMixing(projection, groupBy); err != nil {
		return nil, err
	}

	aggregates, mapping := splitAggregates(projection)

	var having *expr.ConjunctionExpr
	if len(n.HavingConditions) > 0 {
		having, err = r.resolveConditionList(n.HavingConditions, local, outer, true)
		if err != nil {
			return nil, err
		}
		if err := validateHavingMixing(having, groupBy); err != nil {
			return nil, err
		}
	} else {
		having = expr.NewConjunction(expr.And)
	}

	flatOrder := make([]ast.RelAttrSqlNode, len(n.OrderBySqlNodes))
	directions := make([]Direction, len(n.OrderBySqlNodes))
	for i, ob := range n.OrderBySqlNodes {
		flatOrder[i] = ob.Attr
		if ob.Desc {
			directions[i] = Descending
		} else {
			directions[i] = Ascending
		}
	}
	orderBy, err := r.resolveAttrList(flatOrder, local, outer)
	if err != nil {
		return nil, err
	}

	return &Select{
		Tables:            local.tables,
		Projection:        projection,
		AggregateFields:   aggregates,
		AggrToProjection:  mapping,
		GroupBy:           groupBy,
		OrderBy:           orderBy,
		OrderByDirections: directions,
		Where:             where,
		Having:            having,
		IsSubSelect:       isSubSelect,
	}, nil
}

// validateHavingMixing enforces on the HAVING clause the same rule
// validateAggregateMixing enforces on the projection list: a bare column
// reference that isn't aggregate-wrapped must appear in GROUP BY. Checking
// this at resolve time means a bad HAVING reference fails with the clean
// AGGR_FUNC_NOT_VALID validation error up front, rather than surfacing as
// whatever error the Aggregate operator's row lookup happens to produce.
func validateHavingMixing(having *expr.ConjunctionExpr, groupBy []*field.Field) error {
	grouped := make(map[*catalog.Column]bool, len(groupBy))
	for _, f := range groupBy {
		grouped[f.Column] = true
	}
	for _, f := range collectHavingFields(having) {
		if f.Aggr != field.AggrNone || f.IsConstant() || f.Column == nil {
			continue
		}
		if !grouped[f.Column] {
			return rc.New(rc.AGGR_FUNC_NOT_VALID, "HAVING references "+f.QualifiedName()+" which is neither aggregated nor grouped")
		}
	}
	return nil
}

// collectHavingFields walks a resolved HAVING expression tree and returns
// every field.Field leaf it references.
func collectHavingFields(e expr.Expression) []*field.Field {
	switch n := e.(type) {
	case *expr.ConjunctionExpr:
		var out []*field.Field
		for _, c := range n.Children {
			out = append(out, collectHavingFields(c)...)
		}
		return out
	case *expr.ComparisonExpr:
		return append(collectHavingFields(n.Left), collectHavingFields(n.Right)...)
	case *expr.ArithmeticExpr:
		if n.Right == nil {
			return collectHavingFields(n.Left)
		}
		return append(collectHavingFields(n.Left), collectHavingFields(n.Right)...)
	case *expr.ListExpr:
		var out []*field.Field
		for _, c := range n.Children {
			out = append(out, collectHavingFields(c)...)
		}
		return out
	case *expr.FieldExpr:
		return []*field.Field{n.Field}
	default:
		return nil
	}
}

func (r *Resolver) resolveInsert(n *ast.InsertSqlNode) (*Insert, error) {
	table, err := r.Catalog.GetTable(n.RelationName)
	if err != nil {
		return nil, rc.New(rc.SCHEMA_TABLE_NOT_EXIST, "no such table: "+n.RelationName)
	}
	if len(n.Values) == 0 {
		return nil, rc.New(rc.EXPRESSION_LIST_NULL, "INSERT requires at least one row")
	}

	visible := table.VisibleColumns()
	empty := newScope()
	rows := make([][]expr.Expression, 0, len(n.Values))
	for i := range n.Values {
		row := n.Values[i]
		if row.List == nil {
			return nil, rc.New(rc.SQL_SYNTAX, "INSERT value must be a row of column values")
		}
		if len(row.List) != len(visible) {
			return nil, rc.New(rc.SQL_SYNTAX, "value count does not match column count")
		}
		values := make([]expr.Expression, 0, len(row.List))
		for j := range row.List {
			v, err := r.resolveExprNode(&row.List[j], empty, nil, false)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		rows = append(rows, values)
	}

	return &Insert{Table: table, Rows: rows}, nil
}

func (r *Resolver) resolveUpdate(n *ast.UpdateSqlNode) (*Update, error) {
	table, err := r.Catalog.GetTable(n.RelationName)
	if err != nil {
		return nil, rc.New(rc.SCHEMA_TABLE_NOT_EXIST, "no such table: "+n.RelationName)
	}
	local := newScope()
	if err := local.bind(n.RelationName, table, false); err != nil {
		return nil, err
	}
	local.tables = append(local.tables, table)

	if len(n.SetClauses) == 0 {
		return nil, rc.New(rc.SQL_SYNTAX, "UPDATE requires at least one SET assignment")
	}

	sets := make([]SetClause, 0, len(n.SetClauses))
	for i := range n.SetClauses {
		sc := &n.SetClauses[i]
		col, _ := table.ColumnByName(sc.Attribute)
		if col == nil {
			return nil, rc.New(rc.SCHEMA_FIELD_MISSING, "no such column: "+sc.Attribute)
		}
		val, err := r.resolveExprNode(&sc.Value, local, nil, false)
		if err != nil {
			return nil, err
		}
		sets = append(sets, SetClause{Column: col, Value: val})
	}

	where, err := r.resolveConditionList(n.Conditions, local, nil, false)
	if err != nil {
		return nil, err
	}

	return &Update{Table: table, SetClauses: sets, Where: where}, nil
}

func (r *Resolver) resolveDelete(n *ast.DeleteSqlNode) (*Delete, error) {
	table, err := r.Catalog.GetTable(n.RelationName)
	if err != nil {
		return nil, rc.New(rc.SCHEMA_TABLE_NOT_EXIST, "no such table: "+n.RelationName)
	}
	local := newScope()
	if err := local.bind(n.RelationName, table, false); err != nil {
		return nil, err
	}
	local.tables = append(local.tables, table)

	where, err := r.resolveConditionList(n.Conditions, local, nil, false)
	if err != nil {
		return nil, err
	}
	return &Delete{Table: table, Where: where}, nil
}

func (r *Resolver) resolveCalc(n *ast.CalcSqlNode) (*Calc, error) {
	if len(n.Expressions) == 0 {
		return nil, rc.New(rc.EXPRESSION_LIST_NULL, "CALC requires at least one expression")
	}
	empty := newScope()
	exprs := make([]expr.Expression, 0, len(n.Expressions))
	for i := range n.Expressions {
		e, err := r.resolveExprNode(&n.Expressions[i], empty, nil, false)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return &Calc{Expressions: exprs}, nil
}

func (r *Resolver) resolveExplain(n *ast.ExplainSqlNode) (*Explain, error) {
	var child Statement
	var err error
	switch {
	case n.Select != nil:
		child, err = r.resolveSelect(n.Select, false, nil)
	case n.Insert != nil:
		child, err = r.resolveInsert(n.Insert)
	case n.Update != nil:
		child, err = r.resolveUpdate(n.Update)
	case n.Delete != nil:
		child, err = r.resolveDelete(n.Delete)
	default:
		return nil, rc.New(rc.SQL_SYNTAX, "EXPLAIN requires a statement")
	}
	if err != nil {
		return nil, err
	}
	return &Explain{Child: child}, nil
}
