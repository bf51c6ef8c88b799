package physmem

import (
	"context"
	"sort"
	"strings"

	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/expr"
	"github.com/JayabrataBasu/VeridicalDB/pkg/field"
	"github.com/JayabrataBasu/VeridicalDB/pkg/plan"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// stripAggr rebuilds e, replacing every FieldExpr leaf carrying an
// aggregate tag with a plain lookup by the field's canonical alias. An
// aggregate FieldExpr's GetValue always errors by design (pkg/expr's
// FieldExpr); this lets HAVING reference an already-computed aggregate
// column the way aggregateNode's output row presents it, instead of
// re-deriving the aggregate itself.
func stripAggr(e expr.Expression) expr.Expression {
	switch n := e.(type) {
	case *expr.FieldExpr:
		if n.Field.Aggr == field.AggrNone {
			return n
		}
		return expr.NewField(&field.Field{
			Column: &catalog.Column{Name: n.Field.CanonicalAlias()},
		})
	case *expr.ComparisonExpr:
		return expr.NewComparison(n.Op, stripAggr(n.Left), stripAggr(n.Right))
	case *expr.ConjunctionExpr:
		children := make([]expr.Expression, len(n.Children))
		for i, c := range n.Children {
			children[i] = stripAggr(c)
		}
		return expr.NewConjunction(n.Kind, children...)
	case *expr.ArithmeticExpr:
		if n.Op == expr.OpNeg {
			return expr.NewNegate(stripAggr(n.Left))
		}
		return expr.NewArithmetic(n.Op, stripAggr(n.Left), stripAggr(n.Right))
	case *expr.CastExpr:
		return expr.NewCast(stripAggr(n.Child), n.Target)
	case *expr.ListExpr:
		children := make([]expr.Expression, len(n.Children))
		for i, c := range n.Children {
			children[i] = stripAggr(c)
		}
		return expr.NewList(children...)
	default:
		return e
	}
}

// aggregateNode drains its child, buckets rows by GroupBy, computes Fields
// per bucket, filters through Having, and replays the result as a
// materialized row set. It owns its own drain because aggregation needs
// every row of a group before it can emit one, unlike the streaming nodes.
type aggregateNode struct {
	child   physical
	groupBy []*field.Field
	fields  []*field.Field
	having  *expr.ConjunctionExpr
	outer   tuple.Tuple

	out *materializedNode
}

func (n *aggregateNode) BindOuter(outer tuple.Tuple) {
	n.outer = outer
	if ob, ok := n.child.(interface{ BindOuter(tuple.Tuple) }); ok {
		ob.BindOuter(outer)
	}
}

func (n *aggregateNode) Open(ctx context.Context) error {
	rows, err := drain(n.child, n.outer)
	if err != nil {
		return err
	}

	buckets, order, err := n.bucket(rows)
	if err != nil {
		return err
	}

	out := make([]*Row, 0, len(order))
	for _, key := range order {
		members := buckets[key]
		row, err := n.buildGroupRow(members)
		if err != nil {
			return err
		}
		if n.having != nil {
			v, err := stripAggr(n.having).GetValue(row)
			if err != nil {
				return err
			}
			if v.IsNull() || !v.AsBool() {
				continue
			}
		}
		out = append(out, row)
	}

	n.out = &materializedNode{rows: out}
	return n.out.Open(ctx)
}

func (n *aggregateNode) bucket(rows []*Row) (map[string][]*Row, []string, error) {
	buckets := make(map[string][]*Row)
	var order []string
	for _, row := range rows {
		var keyParts []string
		for _, f := range n.groupBy {
			v, err := expr.NewField(f).GetValue(row)
			if err != nil {
				return nil, nil, err
			}
			keyParts = append(keyParts, v.Type().String()+":"+v.String())
		}
		key := strings.Join(keyParts, "\x1f")
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], row)
	}
	if len(rows) == 0 && len(n.groupBy) == 0 {
		// a global aggregate over zero rows still produces one group
		// (e.g. COUNT(*) = 0), per the usual SQL aggregate convention.
		buckets[""] = nil
		order = []string{""}
	}
	sort.Strings(order)
	return buckets, order, nil
}

func (n *aggregateNode) buildGroupRow(members []*Row) (*Row, error) {
	schema := make([]tuple.CellSpec, 0, len(n.groupBy)+len(n.fields))
	values := make([]sqlvalue.Value, 0, len(n.groupBy)+len(n.fields))

	for _, f := range n.groupBy {
		var v sqlvalue.Value
		if len(members) > 0 {
			var err error
			v, err = expr.NewField(f).GetValue(members[0])
			if err != nil {
				return nil, err
			}
		}
		tableName := ""
		if f.Table != nil {
			tableName = f.Table.Name
		}
		colName := ""
		if f.Column != nil {
			colName = f.Column.Name
		}
		schema = append(schema, tuple.CellSpec{Table: tableName, Column: colName})
		values = append(values, v)
	}

	for _, f := range n.fields {
		v, err := n.computeAggr(f, members)
		if err != nil {
			return nil, err
		}
		schema = append(schema, tuple.CellSpec{Column: f.CanonicalAlias()})
		values = append(values, v)
	}

	return &Row{Schema: schema, Values: values}, nil
}

func (n *aggregateNode) computeAggr(f *field.Field, members []*Row) (sqlvalue.Value, error) {
	if f.Aggr == field.AggrCount && f.IsStar {
		return sqlvalue.Int(int64(len(members))), nil
	}

	var vals []sqlvalue.Value
	for _, m := range members {
		v, err := expr.NewField(&field.Field{Table: f.Table, Column: f.Column}).GetValue(m)
		if err != nil {
			return sqlvalue.Value{}, err
		}
		if !v.IsNull() {
			vals = append(vals, v)
		}
	}

	switch f.Aggr {
	case field.AggrCount:
		return sqlvalue.Int(int64(len(vals))), nil
	case field.AggrSum:
		if len(vals) == 0 {
			return sqlvalue.Null(), nil
		}
		sum := sqlvalue.Int(0)
		for _, v := range vals {
			sum = sqlvalue.Add(sum, v)
		}
		return sum, nil
	case field.AggrAvg:
		if len(vals) == 0 {
			return sqlvalue.Null(), nil
		}
		sum := sqlvalue.Int(0)
		for _, v := range vals {
			sum = sqlvalue.Add(sum, v)
		}
		return sqlvalue.Div(sum, sqlvalue.Int(int64(len(vals)))), nil
	case field.AggrMin, field.AggrMax:
		if len(vals) == 0 {
			return sqlvalue.Null(), nil
		}
		best := vals[0]
		for _, v := range vals[1:] {
			ord, ok := v.Compare(best)
			if !ok {
				continue
			}
			if (f.Aggr == field.AggrMin && ord == sqlvalue.Less) ||
				(f.Aggr == field.AggrMax && ord == sqlvalue.Greater) {
				best = v
			}
		}
		return best, nil
	default:
		return sqlvalue.Value{}, rc.New(rc.INTERNAL, "non-aggregate field reached computeAggr")
	}
}

func (n *aggregateNode) Next() error                    { return n.out.Next() }
func (n *aggregateNode) Current() (tuple.Tuple, error) { return n.out.Current() }
// Close is a no-op: Open already drained and closed the child via drain().
func (n *aggregateNode) Close() error { return nil }

// orderByNode drains its child, sorts by Fields/Directions, and replays.
type orderByNode struct {
	child      physical
	fields     []*field.Field
	directions []plan.SortDirection
	outer      tuple.Tuple

	out *materializedNode
}

func (n *orderByNode) BindOuter(outer tuple.Tuple) {
	n.outer = outer
	if ob, ok := n.child.(interface{ BindOuter(tuple.Tuple) }); ok {
		ob.BindOuter(outer)
	}
}

func (n *orderByNode) Open(ctx context.Context) error {
	rows, err := drain(n.child, n.outer)
	if err != nil {
		return err
	}
	sortRows(rows, func(a, b *Row) bool {
		for i, f := range n.fields {
			av, _ := orderFieldValue(f, a)
			bv, _ := orderFieldValue(f, b)
			ord, ok := av.Compare(bv)
			if !ok || ord == sqlvalue.Equal {
				continue
			}
			if n.directions[i] == plan.Descending {
				return ord == sqlvalue.Greater
			}
			return ord == sqlvalue.Less
		}
		return false
	})
	n.out = &materializedNode{rows: rows}
	return n.out.Open(ctx)
}

// orderFieldValue looks f up by its canonical alias rather than by raw
// table/column: orderByNode's child is always a projectNode (plan.Generate
// only ever places OrderBy directly above Project, or above the
// aggregate-Project combo physmem's planner builds for an Aggregate node),
// and projectNode's output rows carry cells keyed by canonical alias, not
// by the original table/column pair (field.Field.CanonicalAlias, mirroring
// stripAggr's post-aggregate column lookup).
func orderFieldValue(f *field.Field, t tuple.Tuple) (sqlvalue.Value, error) {
	return t.Find(tuple.CellSpec{Column: f.CanonicalAlias()})
}

func (n *orderByNode) Next() error                    { return n.out.Next() }
func (n *orderByNode) Current() (tuple.Tuple, error) { return n.out.Current() }
// Close is a no-op: Open already drained and closed the child via drain().
func (n *orderByNode) Close() error { return nil }
