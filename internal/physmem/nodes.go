package physmem

import (
	"context"

	"github.com/JayabrataBasu/VeridicalDB/pkg/expr"
	"github.com/JayabrataBasu/VeridicalDB/pkg/field"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// physical is the local alias for pkg/physical.Node, used so this
// package's node types can reference each other before physical.Node is
// imported by name in planner.go.
type physical interface {
	Open(context.Context) error
	Next() error
	Current() (tuple.Tuple, error)
	Close() error
}

// withOuter splices a bound outer row onto cur so expressions referencing
// the enclosing query's table resolve against it (correlated sub-select
// evaluation), falling back to cur alone when no outer row is bound.
func withOuter(cur tuple.Tuple, outer tuple.Tuple) tuple.Tuple {
	if outer == nil {
		return cur
	}
	return &combinedTuple{primary: cur, secondary: outer}
}

// scanNode iterates a table's rows as a snapshot taken at Open time.
type scanNode struct {
	store *Store
	table string
	outer tuple.Tuple
	rows  []*Row
	idx   int
}

func (n *scanNode) BindOuter(outer tuple.Tuple) { n.outer = outer }

func (n *scanNode) Open(ctx context.Context) error {
	n.rows = n.store.Scan(n.table)
	n.idx = -1
	return nil
}

func (n *scanNode) Next() error {
	n.idx++
	if n.idx >= len(n.rows) {
		return rc.ErrRecordEOF
	}
	return nil
}

func (n *scanNode) Current() (tuple.Tuple, error) {
	if n.idx < 0 || n.idx >= len(n.rows) {
		return nil, rc.New(rc.INTERNAL, "Current called outside an open iteration")
	}
	return n.rows[n.idx], nil
}

func (n *scanNode) Close() error { n.rows = nil; return nil }

// filterNode evaluates Filter against each child row, skipping rows whose
// result is not true (NULL and FALSE are both rejected per the
// three-valued-logic boundary the WHERE clause imposes).
type filterNode struct {
	child  physical
	filter *expr.ConjunctionExpr
	outer  tuple.Tuple
}

func (n *filterNode) BindOuter(outer tuple.Tuple) {
	n.outer = outer
	if ob, ok := n.child.(interface{ BindOuter(tuple.Tuple) }); ok {
		ob.BindOuter(outer)
	}
}

func (n *filterNode) Open(ctx context.Context) error { return n.child.Open(ctx) }
func (n *filterNode) Close() error                   { return n.child.Close() }

func (n *filterNode) Next() error {
	for {
		if err := n.child.Next(); err != nil {
			return err
		}
		cur, err := n.child.Current()
		if err != nil {
			return err
		}
		v, err := n.filter.GetValue(withOuter(cur, n.outer))
		if err != nil {
			return err
		}
		if !v.IsNull() && v.AsBool() {
			return nil
		}
	}
}

func (n *filterNode) Current() (tuple.Tuple, error) { return n.child.Current() }

// joinNode is a nested-loop join: Right is re-opened and rescanned fully
// for every row Left produces. BindOuter forwards an enclosing query's
// current row down through Left, in case Left itself is a correlated
// sub-select's plan.
type joinNode struct {
	left, right physical
	outer       tuple.Tuple

	leftCur   tuple.Tuple
	rightOpen bool
}

func (n *joinNode) BindOuter(outer tuple.Tuple) {
	n.outer = outer
	if ob, ok := n.left.(interface{ BindOuter(tuple.Tuple) }); ok {
		ob.BindOuter(outer)
	}
}

func (n *joinNode) Open(ctx context.Context) error {
	if err := n.left.Open(ctx); err != nil {
		return err
	}
	n.rightOpen = false
	return nil
}

func (n *joinNode) reopenRight(ctx context.Context) error {
	if n.rightOpen {
		if err := n.right.Close(); err != nil {
			return err
		}
	}
	if err := n.right.Open(ctx); err != nil {
		return err
	}
	n.rightOpen = true
	return nil
}

func (n *joinNode) Next() error {
	for {
		if !n.rightOpen {
			if err := n.left.Next(); err != nil {
				return err
			}
			cur, err := n.left.Current()
			if err != nil {
				return err
			}
			n.leftCur = cur
			if err := n.reopenRight(context.Background()); err != nil {
				return err
			}
		}
		err := n.right.Next()
		if err == nil {
			return nil
		}
		if err != rc.ErrRecordEOF {
			return err
		}
		n.rightOpen = false
	}
}

func (n *joinNode) Current() (tuple.Tuple, error) {
	rightCur, err := n.right.Current()
	if err != nil {
		return nil, err
	}
	return &combinedTuple{primary: n.leftCur, secondary: rightCur}, nil
}

func (n *joinNode) Close() error {
	if n.rightOpen {
		_ = n.right.Close()
	}
	return n.left.Close()
}

// projectNode evaluates Fields against each child row, producing a row
// whose schema is the projection list's canonical aliases.
type projectNode struct {
	child  physical
	fields []*field.Field
	outer  tuple.Tuple
}

func (n *projectNode) BindOuter(outer tuple.Tuple) {
	n.outer = outer
	if ob, ok := n.child.(interface{ BindOuter(tuple.Tuple) }); ok {
		ob.BindOuter(outer)
	}
}

func (n *projectNode) Open(ctx context.Context) error { return n.child.Open(ctx) }
func (n *projectNode) Next() error                    { return n.child.Next() }
func (n *projectNode) Close() error                    { return n.child.Close() }

func (n *projectNode) Current() (tuple.Tuple, error) {
	cur, err := n.child.Current()
	if err != nil {
		return nil, err
	}
	ev := withOuter(cur, n.outer)
	row := &Row{Schema: make([]tuple.CellSpec, len(n.fields)), Values: make([]sqlvalue.Value, len(n.fields))}
	for i, f := range n.fields {
		v, err := n.fieldValue(f, ev)
		if err != nil {
			return nil, err
		}
		row.Values[i] = v
		row.Schema[i] = tuple.CellSpec{Column: f.CanonicalAlias()}
	}
	return row, nil
}

// fieldValue evaluates f against ev. An aggregate-tagged field is looked up
// by its canonical alias instead of going through FieldExpr: this Project
// sits above an Aggregate, so ev is already a bucketed row carrying the
// aggregate's computed value under that alias, the same lookup HAVING's
// stripAggr performs (spec section 4.4's "Project wraps ... aggregate").
func (n *projectNode) fieldValue(f *field.Field, ev tuple.Tuple) (sqlvalue.Value, error) {
	if f.Aggr != field.AggrNone {
		return ev.Find(tuple.CellSpec{Column: f.CanonicalAlias()})
	}
	return expr.NewField(f).GetValue(ev)
}

// materializedNode replays a precomputed row slice; GroupBy/Aggregate and
// OrderBy both need every child row before producing their first output
// row, so they drain into one of these rather than streaming.
type materializedNode struct {
	rows []*Row
	idx  int
}

func (n *materializedNode) Open(ctx context.Context) error { n.idx = -1; return nil }
func (n *materializedNode) Next() error {
	n.idx++
	if n.idx >= len(n.rows) {
		return rc.ErrRecordEOF
	}
	return nil
}
func (n *materializedNode) Current() (tuple.Tuple, error) {
	if n.idx < 0 || n.idx >= len(n.rows) {
		return nil, rc.New(rc.INTERNAL, "Current called outside an open iteration")
	}
	return n.rows[n.idx], nil
}
func (n *materializedNode) Close() error { return nil }

func drain(n physical, outer tuple.Tuple) ([]*Row, error) {
	if ob, ok := n.(interface{ BindOuter(tuple.Tuple) }); ok && outer != nil {
		ob.BindOuter(outer)
	}
	if err := n.Open(context.Background()); err != nil {
		return nil, err
	}
	defer n.Close()

	var rows []*Row
	for {
		if err := n.Next(); err != nil {
			if err == rc.ErrRecordEOF {
				break
			}
			return nil, err
		}
		cur, err := n.Current()
		if err != nil {
			return nil, err
		}
		if r, ok := cur.(*Row); ok {
			rows = append(rows, r.clone())
			continue
		}
		vals := make([]sqlvalue.Value, cur.CellCount())
		for i := range vals {
			v, err := cur.CellAt(i)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		rows = append(rows, &Row{Values: vals})
	}
	return rows, nil
}
