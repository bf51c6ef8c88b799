package subq

import (
	"context"
	"reflect"
	"testing"

	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/parsesql"
	"github.com/JayabrataBasu/VeridicalDB/pkg/physical"
	"github.com/JayabrataBasu/VeridicalDB/pkg/plan"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/resolver"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// rowTuple is the smallest possible tuple.Tuple: a flat slice of values
// with no table qualification, enough to drive Subquery's CellAt(0) reads.
type rowTuple struct {
	vals []sqlvalue.Value
}

func (r rowTuple) CellAt(i int) (sqlvalue.Value, error) { return r.vals[i], nil }
func (r rowTuple) CellCount() int                       { return len(r.vals) }
func (r rowTuple) Find(spec tuple.CellSpec) (sqlvalue.Value, error) {
	return sqlvalue.Value{}, rc.New(rc.SCHEMA_FIELD_MISSING, "rowTuple has no named cells")
}

// fakeNode replays a fixed row set and records how many times it has been
// opened and (optionally) the last outer tuple it was bound to, so tests
// can assert on Subquery's reopen-per-call contract.
type fakeNode struct {
	rows      []rowTuple
	pos       int
	opens     int
	closes    int
	lastOuter tuple.Tuple
}

func (n *fakeNode) Open(ctx context.Context) error { n.opens++; n.pos = -1; return nil }
func (n *fakeNode) Next() error {
	n.pos++
	if n.pos >= len(n.rows) {
		return rc.ErrRecordEOF
	}
	return nil
}
func (n *fakeNode) Current() (tuple.Tuple, error) { return n.rows[n.pos], nil }
func (n *fakeNode) Close() error                  { n.closes++; return nil }
func (n *fakeNode) BindOuter(outer tuple.Tuple)   { n.lastOuter = outer }

// fakePlanner hands out a single fakeNode for every Create call, so a test
// can reach into it after driving a Subquery through GetValue/GetValueList.
type fakePlanner struct {
	node *fakeNode
}

func (p *fakePlanner) Create(root plan.Node) (physical.Node, error) { return p.node, nil }

func innerSelect(t *testing.T, sql string) *resolver.Select {
	t.Helper()
	cat := catalog.New()
	if _, err := cat.CreateTable("orders", []catalog.Column{
		{ID: 0, Name: "id", Type: catalog.TypeInt},
		{ID: 1, Name: "cust_id", Type: catalog.TypeInt},
	}); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	stmt, err := parsesql.Parse(sql)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", sql, err)
	}
	resolved, err := resolver.New(cat).Resolve(stmt)
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", sql, err)
	}
	sel, ok := resolved.(*resolver.Select)
	if !ok {
		t.Fatalf("resolved statement = %T, want *resolver.Select", resolved)
	}
	return sel
}

func TestSubqueryGetValueSingleRow(t *testing.T) {
	inner := innerSelect(t, "SELECT cust_id FROM orders WHERE id = 1")
	node := &fakeNode{rows: []rowTuple{{vals: []sqlvalue.Value{sqlvalue.Int(7)}}}}
	sq := New(inner, &fakePlanner{node: node})

	v, err := sq.GetValue(rowTuple{})
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if v.AsInt() != 7 {
		t.Errorf("GetValue() = %v, want 7", v)
	}
	if sq.state != closed {
		t.Errorf("state after GetValue = %v, want closed", sq.state)
	}
}

func TestSubqueryGetValueZeroRowsIsNull(t *testing.T) {
	inner := innerSelect(t, "SELECT cust_id FROM orders WHERE id = 1")
	node := &fakeNode{rows: nil}
	sq := New(inner, &fakePlanner{node: node})

	v, err := sq.GetValue(rowTuple{})
	if err != nil {
		t.Fatalf("GetValue on an empty result should not error: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("GetValue() on zero rows = %v, want NULL", v)
	}
}

func TestSubqueryGetValueMultiColumnErrors(t *testing.T) {
	inner := innerSelect(t, "SELECT cust_id FROM orders WHERE id = 1")
	node := &fakeNode{rows: []rowTuple{{vals: []sqlvalue.Value{sqlvalue.Int(1), sqlvalue.Int(2)}}}}
	sq := New(inner, &fakePlanner{node: node})

	if _, err := sq.GetValue(rowTuple{}); err == nil {
		t.Error("a scalar sub-query result with more than one column should error")
	}
}

func TestSubqueryGetValueList(t *testing.T) {
	inner := innerSelect(t, "SELECT cust_id FROM orders")
	node := &fakeNode{rows: []rowTuple{
		{vals: []sqlvalue.Value{sqlvalue.Int(1)}},
		{vals: []sqlvalue.Value{sqlvalue.Int(2)}},
		{vals: []sqlvalue.Value{sqlvalue.Int(3)}},
	}}
	sq := New(inner, &fakePlanner{node: node})

	vals, err := sq.GetValueList(rowTuple{})
	if err != nil {
		t.Fatalf("GetValueList failed: %v", err)
	}
	if len(vals) != 3 {
		t.Fatalf("GetValueList() = %v, want 3 values", vals)
	}
	for i, want := range []int64{1, 2, 3} {
		if vals[i].AsInt() != want {
			t.Errorf("vals[%d] = %v, want %d", i, vals[i], want)
		}
	}
}

func TestSubqueryGetValueListEmptyIsEmptySliceNotError(t *testing.T) {
	inner := innerSelect(t, "SELECT cust_id FROM orders")
	node := &fakeNode{rows: nil}
	sq := New(inner, &fakePlanner{node: node})

	vals, err := sq.GetValueList(rowTuple{})
	if err != nil {
		t.Fatalf("GetValueList on an empty result should not error: %v", err)
	}
	if len(vals) != 0 {
		t.Errorf("GetValueList() = %v, want empty", vals)
	}
}

func TestSubqueryReopensPerCall(t *testing.T) {
	inner := innerSelect(t, "SELECT cust_id FROM orders")
	node := &fakeNode{rows: []rowTuple{{vals: []sqlvalue.Value{sqlvalue.Int(1)}}}}
	sq := New(inner, &fakePlanner{node: node})

	outer1 := rowTuple{vals: []sqlvalue.Value{sqlvalue.Int(10)}}
	outer2 := rowTuple{vals: []sqlvalue.Value{sqlvalue.Int(20)}}

	if _, err := sq.GetValue(outer1); err != nil {
		t.Fatalf("first GetValue failed: %v", err)
	}
	if _, err := sq.GetValue(outer2); err != nil {
		t.Fatalf("second GetValue failed: %v", err)
	}
	if node.opens != 2 {
		t.Errorf("opens = %d, want 2 (one per GetValue call)", node.opens)
	}
	if node.closes != 2 {
		t.Errorf("closes = %d, want 2", node.closes)
	}
	if !reflect.DeepEqual(node.lastOuter, outer2) {
		t.Errorf("lastOuter = %v, want the most recent outer tuple", node.lastOuter)
	}
}

func TestSubqueryClosePriorOpenBeforeReopening(t *testing.T) {
	inner := innerSelect(t, "SELECT cust_id FROM orders")
	node := &fakeNode{rows: []rowTuple{
		{vals: []sqlvalue.Value{sqlvalue.Int(1)}},
		{vals: []sqlvalue.Value{sqlvalue.Int(2)}},
	}}
	sq := New(inner, &fakePlanner{node: node})

	if err := sq.reopen(rowTuple{}); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if sq.state != open {
		t.Fatalf("state after reopen = %v, want open", sq.state)
	}
	if err := sq.reopen(rowTuple{}); err != nil {
		t.Fatalf("second reopen failed: %v", err)
	}
	if node.closes != 1 {
		t.Errorf("closes = %d, want 1 (the stale open scan closed before reopening)", node.closes)
	}
}

func TestSubqueryCloseIsIdempotent(t *testing.T) {
	inner := innerSelect(t, "SELECT cust_id FROM orders")
	node := &fakeNode{}
	sq := New(inner, &fakePlanner{node: node})

	if err := sq.Close(); err != nil {
		t.Fatalf("Close on a never-opened Subquery should be a no-op: %v", err)
	}
	if err := sq.reopen(rowTuple{}); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := sq.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := sq.Close(); err != nil {
		t.Fatalf("Close called twice should still be a no-op: %v", err)
	}
	if node.closes != 1 {
		t.Errorf("closes = %d, want 1 (second Close must not re-close)", node.closes)
	}
}

func TestSubqueryTryGetValueAlwaysFails(t *testing.T) {
	inner := innerSelect(t, "SELECT cust_id FROM orders")
	sq := New(inner, &fakePlanner{node: &fakeNode{}})
	if _, ok := sq.TryGetValue(); ok {
		t.Error("TryGetValue should never succeed for a sub-query")
	}
}

func TestSubqueryEnsurePlannedIsIdempotent(t *testing.T) {
	inner := innerSelect(t, "SELECT cust_id FROM orders")
	sq := New(inner, &fakePlanner{node: &fakeNode{}})

	if err := sq.ensurePlanned(); err != nil {
		t.Fatalf("ensurePlanned failed: %v", err)
	}
	logical := sq.logical
	if err := sq.ensurePlanned(); err != nil {
		t.Fatalf("second ensurePlanned failed: %v", err)
	}
	if sq.logical != logical {
		t.Error("ensurePlanned should not re-plan an already-planned Subquery")
	}
}
