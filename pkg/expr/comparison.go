package expr

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// CompOp is the Comparison expression's operator tag.
type CompOp int

const (
	OpEq CompOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpIs
	OpIsNot
	OpLike
	OpNotLike
	OpIn
	OpNotIn
)

func (op CompOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpIs:
		return "IS"
	case OpIsNot:
		return "IS NOT"
	case OpLike:
		return "LIKE"
	case OpNotLike:
		return "NOT LIKE"
	case OpIn:
		return "IN"
	case OpNotIn:
		return "NOT IN"
	default:
		return "?"
	}
}

// ComparisonExpr implements every comparator named in spec section 3/4.2.
// Its result type is always BOOL.
type ComparisonExpr struct {
	Op          CompOp
	Left, Right Expression
}

// NewComparison builds a Comparison expression.
func NewComparison(op CompOp, left, right Expression) *ComparisonExpr {
	return &ComparisonExpr{Op: op, Left: left, Right: right}
}

func (e *ComparisonExpr) ValueType() AttrType { return sqlvalue.BOOL }

func (e *ComparisonExpr) GetValue(t tuple.Tuple) (sqlvalue.Value, error) {
	lv, err := e.Left.GetValue(t)
	if err != nil {
		return sqlvalue.Value{}, err
	}

	switch e.Op {
	case OpIn, OpNotIn:
		return e.evalIn(t, lv)
	case OpIs, OpIsNot:
		rv, err := e.Right.GetValue(t)
		if err != nil {
			return sqlvalue.Value{}, err
		}
		identical := lv.IsIdentical(rv)
		if e.Op == OpIsNot {
			identical = !identical
		}
		return sqlvalue.Bool(identical), nil
	case OpLike, OpNotLike:
		rv, err := e.Right.GetValue(t)
		if err != nil {
			return sqlvalue.Value{}, err
		}
		if lv.IsNull() || rv.IsNull() {
			return sqlvalue.Bool(false), nil
		}
		matched := sqlvalue.Like(lv.AsString(), rv.AsString())
		if e.Op == OpNotLike {
			matched = !matched
		}
		return sqlvalue.Bool(matched), nil
	default:
		rv, err := e.rightOrderedValue(t)
		if err != nil {
			return sqlvalue.Value{}, err
		}
		return sqlvalue.Bool(e.compareOrdered(lv, rv)), nil
	}
}

// rightOrderedValue evaluates the right operand of an ordered comparator
// (=, <>, <, <=, >, >=). A scalar sub-query on the right is driven through
// GetValueList rather than GetValue, per spec section 4.5: the result must
// carry exactly one row or evaluation fails with SELECT_EXPR_INVALID_ARGUMENT.
func (e *ComparisonExpr) rightOrderedValue(t tuple.Tuple) (sqlvalue.Value, error) {
	feeder, ok := e.Right.(valueListFeeder)
	if !ok {
		return e.Right.GetValue(t)
	}
	values, err := feeder.GetValueList(t)
	if err != nil {
		return sqlvalue.Value{}, err
	}
	if len(values) != 1 {
		return sqlvalue.Value{}, errInvalidSelectExpr("scalar sub-query must return exactly one row")
	}
	return values[0], nil
}

// compareOrdered implements =, <>, <, <=, >, >=: any NULL participant, or
// an incomparable type pairing, collapses to FALSE (spec section 4.2/4.7).
func (e *ComparisonExpr) compareOrdered(l, r sqlvalue.Value) bool {
	ord, ok := l.Compare(r)
	if !ok {
		return false
	}
	switch e.Op {
	case OpEq:
		return ord == sqlvalue.Equal
	case OpNe:
		return ord != sqlvalue.Equal
	case OpLt:
		return ord == sqlvalue.Less
	case OpLe:
		return ord != sqlvalue.Greater
	case OpGt:
		return ord == sqlvalue.Greater
	case OpGe:
		return ord != sqlvalue.Less
	default:
		return false
	}
}

// evalIn implements IN/NOT IN: a List on the right is iterated in order
// with a short-circuit on first match; anything else satisfying
// valueListFeeder (a Subquery) is opened, drained for matches, and closed
// on every exit path, whether matched or exhausted (spec section 4.2/4.5).
func (e *ComparisonExpr) evalIn(t tuple.Tuple, lv sqlvalue.Value) (sqlvalue.Value, error) {
	if list, ok := e.Right.(*ListExpr); ok {
		matched := false
		for _, child := range list.Children {
			rv, err := child.GetValue(t)
			if err != nil {
				return sqlvalue.Value{}, err
			}
			if ord, ok := lv.Compare(rv); ok && ord == sqlvalue.Equal {
				matched = true
				break
			}
		}
		if e.Op == OpNotIn {
			matched = !matched
		}
		return sqlvalue.Bool(matched), nil
	}

	feeder, ok := e.Right.(valueListFeeder)
	if !ok {
		return sqlvalue.Value{}, errInvalidArg("IN requires a value list or sub-query on the right")
	}
	values, err := feeder.GetValueList(t)
	if err != nil {
		return sqlvalue.Value{}, err
	}
	matched := false
	for _, rv := range values {
		if ord, ok := lv.Compare(rv); ok && ord == sqlvalue.Equal {
			matched = true
			break
		}
	}
	// empty subquery result: IN is FALSE, NOT IN is TRUE (spec section 4.2/8.6)
	if e.Op == OpNotIn {
		matched = !matched
	}
	return sqlvalue.Bool(matched), nil
}

// TryGetValue succeeds only when both sides (and, for IN, every list
// element) are purely constant.
func (e *ComparisonExpr) TryGetValue() (sqlvalue.Value, bool) {
	lv, ok := e.Left.TryGetValue()
	if !ok {
		return sqlvalue.Value{}, false
	}
	switch e.Op {
	case OpIn, OpNotIn:
		list, ok := e.Right.(*ListExpr)
		if !ok {
			return sqlvalue.Value{}, false
		}
		matched := false
		for _, child := range list.Children {
			rv, ok := child.TryGetValue()
			if !ok {
				return sqlvalue.Value{}, false
			}
			if ord, ok := lv.Compare(rv); ok && ord == sqlvalue.Equal {
				matched = true
				break
			}
		}
		if e.Op == OpNotIn {
			matched = !matched
		}
		return sqlvalue.Bool(matched), true
	case OpIs, OpIsNot:
		rv, ok := e.Right.TryGetValue()
		if !ok {
			return sqlvalue.Value{}, false
		}
		identical := lv.IsIdentical(rv)
		if e.Op == OpIsNot {
			identical = !identical
		}
		return sqlvalue.Bool(identical), true
	case OpLike, OpNotLike:
		rv, ok := e.Right.TryGetValue()
		if !ok {
			return sqlvalue.Value{}, false
		}
		if lv.IsNull() || rv.IsNull() {
			return sqlvalue.Bool(false), true
		}
		matched := sqlvalue.Like(lv.AsString(), rv.AsString())
		if e.Op == OpNotLike {
			matched = !matched
		}
		return sqlvalue.Bool(matched), true
	default:
		rv, ok := e.Right.TryGetValue()
		if !ok {
			return sqlvalue.Value{}, false
		}
		return sqlvalue.Bool(e.compareOrdered(lv, rv)), true
	}
}

func (e *ComparisonExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}
