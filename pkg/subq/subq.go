// Package subq implements the sub-query driver — component 5 of the query
// core (spec section 3/4.5). A Subquery wraps a resolved, un-correlated or
// correlated nested SELECT and drives it through the external physical
// planner behind the lifecycle {unplanned -> planned -> open -> exhausted
// -> closed}, presenting the result as either a scalar expr.Expression or a
// value list for IN.
package subq

import (
	"context"

	"github.com/JayabrataBasu/VeridicalDB/pkg/expr"
	"github.com/JayabrataBasu/VeridicalDB/pkg/physical"
	"github.com/JayabrataBasu/VeridicalDB/pkg/plan"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/resolver"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

type state int

const (
	unplanned state = iota
	planned
	open
	exhausted
	closed
)

// Subquery is a nested SELECT materialized into a live physical driver. It
// satisfies expr.Expression and, via GetValueList, the expr package's
// private value-list-feeder interface, so a Comparison's IN/NOT IN can
// drive it without pkg/expr ever importing this package.
type Subquery struct {
	inner   *resolver.Select
	planner physical.Planner

	logical  plan.Node
	phys     physical.Node
	state    state
}

// New builds a Subquery around a resolved inner SELECT. Construction alone
// does nothing observable: planning happens lazily on first use.
func New(inner *resolver.Select, planner physical.Planner) *Subquery {
	return &Subquery{inner: inner, planner: planner}
}

func (s *Subquery) ensurePlanned() error {
	if s.state != unplanned {
		return nil
	}
	node, err := plan.Generate(s.inner)
	if err != nil {
		return err
	}
	if err := rewriteNode(node, s.planner); err != nil {
		return err
	}
	s.logical = node
	s.state = planned
	return nil
}

// reopen ensures a fresh open physical node bound to outer, closing any
// previously open one first. Every GetValue/GetValueList call reopens so a
// correlated sub-select always sees the current outer row (spec section
// 4.4/9); an un-correlated sub-select pays the same cost, trading a cheap
// re-scan for a much simpler driver.
func (s *Subquery) reopen(outer tuple.Tuple) error {
	if err := s.ensurePlanned(); err != nil {
		return err
	}
	if s.state == open {
		if err := s.Close(); err != nil {
			return err
		}
	}
	if s.phys == nil {
		p, err := s.planner.Create(s.logical)
		if err != nil {
			return err
		}
		s.phys = p
	}
	if binder, ok := s.phys.(physical.OuterBinder); ok {
		binder.BindOuter(outer)
	}
	if err := s.phys.Open(context.Background()); err != nil {
		return err
	}
	s.state = open
	return nil
}

// Close ends the current scan if one is open; it is safe to call on an
// already-closed or never-opened Subquery (spec section 4.5's open/close
// pairing invariant requires Close to be idempotent).
func (s *Subquery) Close() error {
	if s.state != open && s.state != exhausted {
		return nil
	}
	err := s.phys.Close()
	s.state = closed
	return err
}

func (s *Subquery) ValueType() expr.AttrType {
	if len(s.inner.Projection) == 0 {
		return sqlvalue.NULL
	}
	f := s.inner.Projection[0]
	if f.IsConstant() {
		return f.Const.Type()
	}
	return sqlvalue.NULL
}

// GetValue drives the sub-select as a scalar operand: zero rows is NULL
// (ordinary SQL scalar-subquery semantics), one row must carry exactly one
// column (spec section 4.5) or evaluation fails with
// SELECT_EXPR_INVALID_ARGUMENT.
func (s *Subquery) GetValue(t tuple.Tuple) (sqlvalue.Value, error) {
	if err := s.reopen(t); err != nil {
		return sqlvalue.Value{}, err
	}
	defer s.Close()

	if err := s.phys.Next(); err != nil {
		if rc.Of(err) == rc.RECORD_EOF {
			s.state = exhausted
			return sqlvalue.Null(), nil
		}
		return sqlvalue.Value{}, err
	}
	row, err := s.phys.Current()
	if err != nil {
		return sqlvalue.Value{}, err
	}
	if row.CellCount() != 1 {
		return sqlvalue.Value{}, rc.New(rc.SELECT_EXPR_INVALID_ARGUMENT, "scalar sub-query must yield exactly one column")
	}
	return row.CellAt(0)
}

// GetValueList drains every row's first column, for IN/NOT IN (spec
// section 4.2/4.5). An empty result is a valid, non-error empty slice.
func (s *Subquery) GetValueList(t tuple.Tuple) ([]sqlvalue.Value, error) {
	if err := s.reopen(t); err != nil {
		return nil, err
	}
	defer s.Close()

	var out []sqlvalue.Value
	for {
		err := s.phys.Next()
		if err != nil {
			if rc.Of(err) == rc.RECORD_EOF {
				s.state = exhausted
				break
			}
			return nil, err
		}
		row, err := s.phys.Current()
		if err != nil {
			return nil, err
		}
		v, err := row.CellAt(0)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// TryGetValue never succeeds: a sub-select requires a live tuple source
// and so is never purely constant-foldable.
func (s *Subquery) TryGetValue() (sqlvalue.Value, bool) { return sqlvalue.Value{}, false }

func (s *Subquery) String() string { return "(SELECT ...)" }
