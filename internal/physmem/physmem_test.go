package physmem

import (
	"context"
	"testing"

	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/parsesql"
	pkgphysical "github.com/JayabrataBasu/VeridicalDB/pkg/physical"
	"github.com/JayabrataBasu/VeridicalDB/pkg/plan"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/resolver"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/subq"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// harness wires a catalog, a Store, and a Planner together so tests can run
// SQL text end to end the way the REPL does (spec section 8's testable
// properties), without depending on internal/cli.
type harness struct {
	t       *testing.T
	cat     *catalog.Catalog
	store   *Store
	planner *Planner
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := NewStore()
	return &harness{t: t, cat: catalog.New(), store: store, planner: NewPlanner(store)}
}

func (h *harness) createTable(name string, cols []catalog.Column) *catalog.Table {
	h.t.Helper()
	tbl, err := h.cat.CreateTable(name, cols)
	if err != nil {
		h.t.Fatalf("CreateTable(%q) failed: %v", name, err)
	}
	return tbl
}

// insertRaw appends rows directly to the store, bypassing INSERT parsing,
// so SELECT/UPDATE/DELETE/sub-query tests can seed fixture data concisely.
func (h *harness) insertRaw(table *catalog.Table, rows ...[]sqlvalue.Value) {
	h.t.Helper()
	cols := table.VisibleColumns()
	schema := make([]tuple.CellSpec, len(cols))
	for i, c := range cols {
		schema[i] = tuple.CellSpec{Table: table.Name, Column: c.Name}
	}
	out := make([]*Row, 0, len(rows))
	for _, vals := range rows {
		out = append(out, &Row{Schema: schema, Values: vals})
	}
	h.store.Append(table.Name, out...)
}

// run resolves, plans, materializes sub-queries, and drains sql against h,
// returning every output row's cell values.
func (h *harness) run(sql string) [][]sqlvalue.Value {
	h.t.Helper()
	stmt, err := parsesql.Parse(sql)
	if err != nil {
		h.t.Fatalf("Parse(%q) failed: %v", sql, err)
	}
	resolved, err := resolver.New(h.cat).Resolve(stmt)
	if err != nil {
		h.t.Fatalf("Resolve(%q) failed: %v", sql, err)
	}
	logical, err := plan.Generate(resolved)
	if err != nil {
		h.t.Fatalf("Generate(%q) failed: %v", sql, err)
	}
	logical, err = subq.Materialize(logical, h.planner)
	if err != nil {
		h.t.Fatalf("Materialize(%q) failed: %v", sql, err)
	}
	node, err := h.planner.Create(logical)
	if err != nil {
		h.t.Fatalf("Create(%q) failed: %v", sql, err)
	}
	return h.drain(node)
}

func (h *harness) drain(n pkgphysical.Node) [][]sqlvalue.Value {
	h.t.Helper()
	if err := n.Open(context.Background()); err != nil {
		h.t.Fatalf("Open failed: %v", err)
	}
	defer n.Close()

	var out [][]sqlvalue.Value
	for {
		if err := n.Next(); err != nil {
			if rc.Of(err) == rc.RECORD_EOF {
				break
			}
			h.t.Fatalf("Next failed: %v", err)
		}
		cur, err := n.Current()
		if err != nil {
			h.t.Fatalf("Current failed: %v", err)
		}
		row := make([]sqlvalue.Value, cur.CellCount())
		for i := range row {
			v, err := cur.CellAt(i)
			if err != nil {
				h.t.Fatalf("CellAt failed: %v", err)
			}
			row[i] = v
		}
		out = append(out, row)
	}
	return out
}

func TestSelectWithWhere(t *testing.T) {
	h := newHarness(t)
	tbl := h.createTable("t", []catalog.Column{
		{ID: 0, Name: "id", Type: catalog.TypeInt},
		{ID: 1, Name: "name", Type: catalog.TypeText},
	})
	h.insertRaw(tbl,
		[]sqlvalue.Value{sqlvalue.Int(1), sqlvalue.Chars("alice")},
		[]sqlvalue.Value{sqlvalue.Int(2), sqlvalue.Chars("bob")},
	)

	rows := h.run("SELECT id, name FROM t WHERE id = 2")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0][1] != sqlvalue.Chars("bob") {
		t.Errorf("row = %v, want bob", rows[0])
	}
}

func TestInnerJoin(t *testing.T) {
	h := newHarness(t)
	customers := h.createTable("customers", []catalog.Column{
		{ID: 0, Name: "id", Type: catalog.TypeInt},
		{ID: 1, Name: "name", Type: catalog.TypeText},
	})
	orders := h.createTable("orders", []catalog.Column{
		{ID: 0, Name: "id", Type: catalog.TypeInt},
		{ID: 1, Name: "cust_id", Type: catalog.TypeInt},
		{ID: 2, Name: "amount", Type: catalog.TypeFloat},
	})
	h.insertRaw(customers,
		[]sqlvalue.Value{sqlvalue.Int(1), sqlvalue.Chars("alice")},
		[]sqlvalue.Value{sqlvalue.Int(2), sqlvalue.Chars("bob")},
	)
	h.insertRaw(orders,
		[]sqlvalue.Value{sqlvalue.Int(100), sqlvalue.Int(1), sqlvalue.Float(9.5)},
		[]sqlvalue.Value{sqlvalue.Int(101), sqlvalue.Int(2), sqlvalue.Float(3.0)},
	)

	rows := h.run("SELECT customers.name, orders.amount FROM customers INNER JOIN orders ON customers.id = orders.cust_id ORDER BY customers.name")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != sqlvalue.Chars("alice") || rows[1][0] != sqlvalue.Chars("bob") {
		t.Errorf("rows = %v, want alice then bob", rows)
	}
}

func TestAggregateGroupByHaving(t *testing.T) {
	h := newHarness(t)
	orders := h.createTable("orders", []catalog.Column{
		{ID: 0, Name: "cust_id", Type: catalog.TypeInt},
		{ID: 1, Name: "amount", Type: catalog.TypeFloat},
	})
	h.insertRaw(orders,
		[]sqlvalue.Value{sqlvalue.Int(1), sqlvalue.Float(10)},
		[]sqlvalue.Value{sqlvalue.Int(1), sqlvalue.Float(20)},
		[]sqlvalue.Value{sqlvalue.Int(2), sqlvalue.Float(5)},
	)

	rows := h.run("SELECT cust_id, SUM(amount) FROM orders GROUP BY cust_id HAVING SUM(amount) > 15 ORDER BY cust_id")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (only cust_id=1 clears the HAVING bar)", len(rows))
	}
	if rows[0][0] != sqlvalue.Int(1) {
		t.Errorf("row = %v, want cust_id 1", rows[0])
	}
	if got := rows[0][1]; got.Type() != sqlvalue.FLOAT || got.AsFloat() != 30 {
		t.Errorf("SUM(amount) = %v, want FLOAT(30)", got)
	}
}

func TestUncorrelatedInSubquery(t *testing.T) {
	h := newHarness(t)
	customers := h.createTable("customers", []catalog.Column{
		{ID: 0, Name: "id", Type: catalog.TypeInt},
		{ID: 1, Name: "name", Type: catalog.TypeText},
	})
	orders := h.createTable("orders", []catalog.Column{
		{ID: 0, Name: "cust_id", Type: catalog.TypeInt},
	})
	h.insertRaw(customers,
		[]sqlvalue.Value{sqlvalue.Int(1), sqlvalue.Chars("alice")},
		[]sqlvalue.Value{sqlvalue.Int(2), sqlvalue.Chars("bob")},
	)
	h.insertRaw(orders, []sqlvalue.Value{sqlvalue.Int(2)})

	rows := h.run("SELECT name FROM customers WHERE id IN (SELECT cust_id FROM orders)")
	if len(rows) != 1 || rows[0][0] != sqlvalue.Chars("bob") {
		t.Errorf("rows = %v, want exactly [bob]", rows)
	}
}

func TestCorrelatedSubquery(t *testing.T) {
	h := newHarness(t)
	customers := h.createTable("customers", []catalog.Column{
		{ID: 0, Name: "id", Type: catalog.TypeInt},
		{ID: 1, Name: "name", Type: catalog.TypeText},
	})
	orders := h.createTable("orders", []catalog.Column{
		{ID: 0, Name: "cust_id", Type: catalog.TypeInt},
		{ID: 1, Name: "amount", Type: catalog.TypeFloat},
	})
	h.insertRaw(customers,
		[]sqlvalue.Value{sqlvalue.Int(1), sqlvalue.Chars("alice")},
		[]sqlvalue.Value{sqlvalue.Int(2), sqlvalue.Chars("bob")},
	)
	h.insertRaw(orders,
		[]sqlvalue.Value{sqlvalue.Int(1), sqlvalue.Float(50)},
	)

	rows := h.run(`SELECT name FROM customers WHERE id IN (SELECT cust_id FROM orders WHERE orders.cust_id = customers.id)`)
	if len(rows) != 1 || rows[0][0] != sqlvalue.Chars("alice") {
		t.Errorf("rows = %v, want exactly [alice] (only alice has a matching correlated order)", rows)
	}
}

func TestInsertUpdateDelete(t *testing.T) {
	h := newHarness(t)
	tbl := h.createTable("t", []catalog.Column{
		{ID: 0, Name: "id", Type: catalog.TypeInt},
		{ID: 1, Name: "name", Type: catalog.TypeText},
	})

	h.run("INSERT INTO t VALUES (1, 'alice')")
	h.run("INSERT INTO t VALUES (2, 'bob')")

	rows := h.run("SELECT id, name FROM t ORDER BY id")
	if len(rows) != 2 {
		t.Fatalf("got %d rows after inserts, want 2", len(rows))
	}

	h.run("UPDATE t SET name = 'robert' WHERE id = 2")
	rows = h.run("SELECT name FROM t WHERE id = 2")
	if len(rows) != 1 || rows[0][0] != sqlvalue.Chars("robert") {
		t.Errorf("rows after UPDATE = %v, want [robert]", rows)
	}

	h.run("DELETE FROM t WHERE id = 1")
	rows = h.run("SELECT id FROM t")
	if len(rows) != 1 || rows[0][0] != sqlvalue.Int(2) {
		t.Errorf("rows after DELETE = %v, want only id 2", rows)
	}
	_ = tbl
}

func TestCalcNoFromClause(t *testing.T) {
	h := newHarness(t)
	rows := h.run("CALC 1 + 2, 10 / 4")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0][0] != sqlvalue.Int(3) {
		t.Errorf("1+2 = %v, want Int(3)", rows[0][0])
	}
	if got := rows[0][1]; got.Type() != sqlvalue.FLOAT || got.AsFloat() != 2.5 {
		t.Errorf("10/4 = %v, want FLOAT(2.5)", got)
	}
}

func TestOrderByDescending(t *testing.T) {
	h := newHarness(t)
	tbl := h.createTable("t", []catalog.Column{{ID: 0, Name: "n", Type: catalog.TypeInt}})
	h.insertRaw(tbl,
		[]sqlvalue.Value{sqlvalue.Int(3)},
		[]sqlvalue.Value{sqlvalue.Int(1)},
		[]sqlvalue.Value{sqlvalue.Int(2)},
	)
	rows := h.run("SELECT n FROM t ORDER BY n DESC")
	want := []int64{3, 2, 1}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, w := range want {
		if rows[i][0] != sqlvalue.Int(w) {
			t.Errorf("row[%d] = %v, want Int(%d)", i, rows[i][0], w)
		}
	}
}
