package physmem

import (
	"context"

	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/expr"
	"github.com/JayabrataBasu/VeridicalDB/pkg/field"
	pkgphysical "github.com/JayabrataBasu/VeridicalDB/pkg/physical"
	"github.com/JayabrataBasu/VeridicalDB/pkg/plan"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// Planner turns a logical plan into a physmem node tree backed by store.
// It implements pkg/physical.Planner.
type Planner struct {
	store *Store
}

// NewPlanner creates a Planner backed by store.
func NewPlanner(store *Store) *Planner {
	return &Planner{store: store}
}

// Create builds the physical node for root. It implements
// pkg/physical.Planner so pkg/subq and the REPL can drive a logical plan
// without depending on this package directly.
func (p *Planner) Create(root plan.Node) (pkgphysical.Node, error) {
	return p.create(root)
}

func (p *Planner) create(n plan.Node) (physical, error) {
	switch v := n.(type) {
	case *plan.TableGet:
		return &scanNode{store: p.store, table: v.Table.Name}, nil

	case *plan.Predicate:
		child, err := p.create(v.Child)
		if err != nil {
			return nil, err
		}
		return &filterNode{child: child, filter: v.Filter}, nil

	case *plan.Join:
		left, err := p.create(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := p.create(v.Right)
		if err != nil {
			return nil, err
		}
		return &joinNode{left: left, right: right}, nil

	case *plan.GroupBy:
		// Aggregate always consumes a GroupBy child directly; reaching one
		// here bare means there is no aggregation above it, so it is a
		// pass-through.
		return p.create(v.Child)

	case *plan.Aggregate:
		// The logical tree nests Aggregate -> [OrderBy] -> GroupBy -> Project
		// -> source (spec section 4.4/8 scenario S2). aggregateNode needs raw
		// source rows — Project's field list includes aggregate-tagged
		// entries that cannot be evaluated against an unaggregated tuple —
		// so this drills past any OrderBy/GroupBy/Project down to the
		// source, computes the bucketed rows, re-applies Project's field
		// list on top via the aggregate-aware projectNode, then re-applies
		// any ORDER BY over the now-aggregated rows, since an aggregate
		// query can only be sorted after its groups are collapsed.
		orderFields, orderDirs, groupByChild := unwrapOrderBy(v.Child)
		groupBy, projFields, rawChild, err := unwrapAggregateChild(groupByChild)
		if err != nil {
			return nil, err
		}
		raw, err := p.create(rawChild)
		if err != nil {
			return nil, err
		}
		agg := &aggregateNode{child: raw, groupBy: groupBy, fields: v.Fields, having: v.HavingPredicate}
		var result physical = &projectNode{child: agg, fields: projFields}
		if orderFields != nil {
			result = &orderByNode{child: result, fields: orderFields, directions: orderDirs}
		}
		return result, nil

	case *plan.Project:
		child, err := p.create(v.Child)
		if err != nil {
			return nil, err
		}
		return &projectNode{child: child, fields: v.Fields}, nil

	case *plan.OrderBy:
		child, err := p.create(v.Child)
		if err != nil {
			return nil, err
		}
		return &orderByNode{child: child, fields: v.Fields, directions: v.Directions}, nil

	case *plan.Insert:
		return &insertNode{store: p.store, table: v.Table, rows: v.Rows}, nil

	case *plan.Update:
		return &updateNode{store: p.store, table: v.Table.Name, setClauses: v.SetClauses, filter: predicateOf(v.Child)}, nil

	case *plan.Delete:
		return &deleteNode{store: p.store, table: v.Table.Name, filter: predicateOf(v.Child)}, nil

	case *plan.Calc:
		return &calcNode{expressions: v.Expressions}, nil

	case *plan.Explain:
		return p.create(v.Child)

	default:
		return nil, rc.New(rc.UNIMPLEMENT, "physmem cannot execute this logical node")
	}
}

// unwrapOrderBy peels a bare OrderBy off of n, returning its sort spec and
// the node beneath it; if n is not an OrderBy it is returned unchanged with
// a nil sort spec.
func unwrapOrderBy(n plan.Node) ([]*field.Field, []plan.SortDirection, plan.Node) {
	ob, ok := n.(*plan.OrderBy)
	if !ok {
		return nil, nil, n
	}
	return ob.Fields, ob.Directions, ob.Child
}

// unwrapAggregateChild descends an Aggregate node's child chain (an
// optional GroupBy, then the Project the plan generator always places
// directly above the scan tree) to recover the GROUP BY field list, the
// final projection field list, and the raw scan/predicate tree beneath.
func unwrapAggregateChild(n plan.Node) (groupBy []*field.Field, proj []*field.Field, raw plan.Node, err error) {
	if gb, ok := n.(*plan.GroupBy); ok {
		groupBy = gb.Fields
		n = gb.Child
	}
	pr, ok := n.(*plan.Project)
	if !ok {
		return nil, nil, nil, rc.New(rc.INTERNAL, "Aggregate must wrap a Project (optionally via GroupBy)")
	}
	return groupBy, pr.Fields, pr.Child, nil
}

// predicateOf extracts an UPDATE/DELETE's WHERE filter from its logical
// scan child, which is always either a bare TableGet or a Predicate
// wrapping one (pkg/plan's generateUpdate/generateDelete).
func predicateOf(n plan.Node) *expr.ConjunctionExpr {
	if p, ok := n.(*plan.Predicate); ok {
		return p.Filter
	}
	return nil
}

// insertNode appends Rows, evaluated against an empty tuple (INSERT
// values are constant-foldable), to Table. Each appended Row carries
// Table's column schema so later scans can find cells by name.
type insertNode struct {
	store *Store
	table *catalog.Table
	rows  []plan.Row
	done  bool
}

func (n *insertNode) Open(ctx context.Context) error { n.done = false; return nil }

func (n *insertNode) schema() []tuple.CellSpec {
	cols := n.table.VisibleColumns()
	schema := make([]tuple.CellSpec, len(cols))
	for i, c := range cols {
		schema[i] = tuple.CellSpec{Table: n.table.Name, Column: c.Name}
	}
	return schema
}

func (n *insertNode) Next() error {
	if n.done {
		return rc.ErrRecordEOF
	}
	n.done = true

	schema := n.schema()
	appended := make([]*Row, 0, len(n.rows))
	for _, row := range n.rows {
		vals := make([]sqlvalue.Value, len(row))
		for i, e := range row {
			v, err := e.GetValue(emptyTuple{})
			if err != nil {
				return err
			}
			vals[i] = v
		}
		appended = append(appended, &Row{Schema: schema, Values: vals})
	}
	n.store.Append(n.table.Name, appended...)
	return nil
}

func (n *insertNode) Current() (tuple.Tuple, error) {
	return &Row{Values: []sqlvalue.Value{sqlvalue.Int(int64(len(n.rows)))}}, nil
}
func (n *insertNode) Close() error { return nil }

func rowMatches(r *Row, filter *expr.ConjunctionExpr) (bool, error) {
	if filter == nil {
		return true, nil
	}
	v, err := filter.GetValue(r)
	if err != nil {
		return false, err
	}
	return !v.IsNull() && v.AsBool(), nil
}

// updateNode applies SetClauses to every row of Table matching Filter,
// then replaces Table's row set in a single scan-modify-replace pass.
type updateNode struct {
	store      *Store
	table      string
	setClauses []plan.SetClause
	filter     *expr.ConjunctionExpr
	matched    int
	done       bool
}

func (n *updateNode) Open(ctx context.Context) error { n.done = false; n.matched = 0; return nil }

func (n *updateNode) Next() error {
	if n.done {
		return rc.ErrRecordEOF
	}
	n.done = true

	rows := n.store.Scan(n.table)
	for _, r := range rows {
		ok, err := rowMatches(r, n.filter)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		n.matched++
		for _, sc := range n.setClauses {
			v, err := sc.Value.GetValue(r)
			if err != nil {
				return err
			}
			if err := setColumn(r, sc.Column.Name, v); err != nil {
				return err
			}
		}
	}
	n.store.Replace(n.table, rows)
	return nil
}

func setColumn(r *Row, column string, v sqlvalue.Value) error {
	for i, s := range r.Schema {
		if s.Column == column {
			r.Values[i] = v
			return nil
		}
	}
	return rc.New(rc.SCHEMA_FIELD_MISSING, "no such column: "+column)
}

func (n *updateNode) Current() (tuple.Tuple, error) {
	return &Row{Values: []sqlvalue.Value{sqlvalue.Int(int64(n.matched))}}, nil
}
func (n *updateNode) Close() error { return nil }

// deleteNode removes every row of Table matching Filter.
type deleteNode struct {
	store   *Store
	table   string
	filter  *expr.ConjunctionExpr
	matched int
	done    bool
}

func (n *deleteNode) Open(ctx context.Context) error { n.done = false; n.matched = 0; return nil }

func (n *deleteNode) Next() error {
	if n.done {
		return rc.ErrRecordEOF
	}
	n.done = true

	rows := n.store.Scan(n.table)
	remaining := make([]*Row, 0, len(rows))
	for _, r := range rows {
		ok, err := rowMatches(r, n.filter)
		if err != nil {
			return err
		}
		if ok {
			n.matched++
			continue
		}
		remaining = append(remaining, r)
	}
	n.store.Replace(n.table, remaining)
	return nil
}

func (n *deleteNode) Current() (tuple.Tuple, error) {
	return &Row{Values: []sqlvalue.Value{sqlvalue.Int(int64(n.matched))}}, nil
}
func (n *deleteNode) Close() error { return nil }

// calcNode evaluates Expressions with no FROM clause, against an empty
// tuple, producing exactly one output row.
type calcNode struct {
	expressions []expr.Expression
	done        bool
}

func (n *calcNode) Open(ctx context.Context) error { n.done = false; return nil }

func (n *calcNode) Next() error {
	if n.done {
		return rc.ErrRecordEOF
	}
	n.done = true
	return nil
}

func (n *calcNode) Current() (tuple.Tuple, error) {
	vals := make([]sqlvalue.Value, len(n.expressions))
	for i, e := range n.expressions {
		v, err := e.GetValue(emptyTuple{})
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return &Row{Values: vals}, nil
}
func (n *calcNode) Close() error { return nil }

// emptyTuple is a zero-cell tuple for CALC/INSERT-value expressions, which
// reference no table.
type emptyTuple struct{}

func (emptyTuple) CellAt(i int) (sqlvalue.Value, error) {
	return sqlvalue.Value{}, rc.New(rc.INTERNAL, "empty tuple has no cells")
}
func (emptyTuple) Find(spec tuple.CellSpec) (sqlvalue.Value, error) {
	return sqlvalue.Value{}, rc.New(rc.SCHEMA_FIELD_MISSING, "no such cell: "+spec.Table+"."+spec.Column)
}
func (emptyTuple) CellCount() int { return 0 }
