package expr

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// ValueExpr is the leaf expression that evaluates to a constant.
type ValueExpr struct {
	Val sqlvalue.Value
}

// NewValue wraps v as a constant leaf expression.
func NewValue(v sqlvalue.Value) *ValueExpr { return &ValueExpr{Val: v} }

func (e *ValueExpr) ValueType() AttrType { return e.Val.Type() }

func (e *ValueExpr) GetValue(tuple.Tuple) (sqlvalue.Value, error) { return e.Val, nil }

func (e *ValueExpr) TryGetValue() (sqlvalue.Value, bool) { return e.Val, true }

func (e *ValueExpr) String() string { return e.Val.String() }
