package expr

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// ListExpr is an ordered sequence of scalar expressions, used as the
// right-hand side of IN (spec section 3). Comparison special-cases it via
// a type assertion rather than calling GetValue/GetValueList on it.
type ListExpr struct {
	Children []Expression
}

// NewList builds a List expression over children.
func NewList(children ...Expression) *ListExpr { return &ListExpr{Children: children} }

func (e *ListExpr) ValueType() AttrType {
	if len(e.Children) == 0 {
		return sqlvalue.NULL
	}
	return e.Children[0].ValueType()
}

// GetValue is not how Comparison drives a List (it iterates Children
// directly); called directly, an empty list evaluates to NULL rather than
// indexing a non-existent element zero — resolving the ambiguity left
// open in spec section 9.
func (e *ListExpr) GetValue(t tuple.Tuple) (sqlvalue.Value, error) {
	if len(e.Children) == 0 {
		return sqlvalue.Null(), nil
	}
	return e.Children[0].GetValue(t)
}

func (e *ListExpr) TryGetValue() (sqlvalue.Value, bool) {
	if len(e.Children) == 0 {
		return sqlvalue.Null(), true
	}
	return e.Children[0].TryGetValue()
}

// GetValueList evaluates every child in order. IN/NOT IN do not call it
// (they iterate Children directly); an ordered comparator (=, <, ...) with
// a List on its right drives the List through this method.
func (e *ListExpr) GetValueList(t tuple.Tuple) ([]sqlvalue.Value, error) {
	out := make([]sqlvalue.Value, 0, len(e.Children))
	for _, c := range e.Children {
		v, err := c.GetValue(t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *ListExpr) String() string {
	s := "("
	for i, c := range e.Children {
		if i > 0 {
			s += ", "
		}
		s += c.String()
	}
	return s + ")"
}
