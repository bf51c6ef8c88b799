// Package physmem is a minimal in-memory reference implementation of
// pkg/physical's Planner/Node contract: a Volcano-style iterator tree over
// rows held in a process-local table store. It exists purely so the REPL
// and tests can run a logical plan end to end without a real storage
// engine attached (spec section 1/9's physical planner is an external
// collaborator); it carries no query-rewriting or cost-based optimization
// of its own.
package physmem

import (
	"sort"
	"strings"
	"sync"

	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// Row is a physmem-owned tuple: a fixed schema of (table, column) cell
// specs alongside their values.
type Row struct {
	Schema []tuple.CellSpec
	Values []sqlvalue.Value
}

func (r *Row) CellAt(i int) (sqlvalue.Value, error) {
	if i < 0 || i >= len(r.Values) {
		return sqlvalue.Value{}, rc.New(rc.INVALID_ARGUMENT, "cell index out of range")
	}
	return r.Values[i], nil
}

func (r *Row) Find(spec tuple.CellSpec) (sqlvalue.Value, error) {
	for i, s := range r.Schema {
		if !strings.EqualFold(s.Column, spec.Column) {
			continue
		}
		if spec.Table != "" && s.Table != "" && !strings.EqualFold(s.Table, spec.Table) {
			continue
		}
		return r.Values[i], nil
	}
	return sqlvalue.Value{}, rc.New(rc.SCHEMA_FIELD_MISSING, "no such cell: "+spec.Table+"."+spec.Column)
}

func (r *Row) CellCount() int { return len(r.Values) }

// clone makes an independent copy, so mutating one copy (UPDATE) never
// touches another reader's in-flight scan.
func (r *Row) clone() *Row {
	vals := make([]sqlvalue.Value, len(r.Values))
	copy(vals, r.Values)
	return &Row{Schema: r.Schema, Values: vals}
}

// combinedTuple concatenates two tuples, checking primary first. It is
// used both for join output and to splice a bound outer row into a
// correlated sub-query's evaluation context (pkg/physical.OuterBinder).
type combinedTuple struct {
	primary, secondary tuple.Tuple
}

func (c *combinedTuple) CellAt(i int) (sqlvalue.Value, error) {
	n := c.primary.CellCount()
	if i < n {
		return c.primary.CellAt(i)
	}
	return c.secondary.CellAt(i - n)
}

func (c *combinedTuple) Find(spec tuple.CellSpec) (sqlvalue.Value, error) {
	if v, err := c.primary.Find(spec); err == nil {
		return v, nil
	}
	return c.secondary.Find(spec)
}

func (c *combinedTuple) CellCount() int {
	return c.primary.CellCount() + c.secondary.CellCount()
}

// Store holds every table's rows, keyed by table name.
type Store struct {
	mu   sync.RWMutex
	data map[string][]*Row
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: make(map[string][]*Row)}
}

// Scan returns a snapshot copy of table's rows.
func (s *Store) Scan(table string) []*Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.data[table]
	out := make([]*Row, len(rows))
	for i, r := range rows {
		out[i] = r.clone()
	}
	return out
}

// Append adds rows to table.
func (s *Store) Append(table string, rows ...*Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[table] = append(s.data[table], rows...)
}

// Replace atomically swaps table's row set, used by UPDATE/DELETE once
// their matching set has been computed.
func (s *Store) Replace(table string, rows []*Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[table] = rows
}

func sortRows(rows []*Row, less func(a, b *Row) bool) {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}
