// Package expr implements the scalar expression tree and its evaluation
// protocol — component 2 of the query core (spec section 3/4.2). The
// variant set is closed and small, so it is dispatched as a tagged sum
// type rather than the teacher's virtual-dispatch class hierarchy: each
// variant is its own Go type implementing the Expression interface.
package expr

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// AttrType mirrors the glossary's AttrType; it is sqlvalue.Type under a
// name that matches spec vocabulary at the public boundary.
type AttrType = sqlvalue.Type

// Expression is the sum type every scalar-expression variant implements.
// Expression nodes own their children exclusively (spec section 5).
type Expression interface {
	// ValueType computes the result type without evaluating anything.
	ValueType() AttrType
	// GetValue evaluates the expression against the current tuple.
	GetValue(t tuple.Tuple) (sqlvalue.Value, error)
	// TryGetValue evaluates without a tuple; it only succeeds if the
	// sub-tree is purely constant.
	TryGetValue() (sqlvalue.Value, bool)
	// String renders the expression for EXPLAIN / diagnostics.
	String() string
}

// valueListFeeder is the narrow interface Comparison's IN/NOT IN branch
// uses to drive either a List literal or a Subquery without importing
// pkg/subq (which would create a cycle: subq depends on resolver and plan,
// which depend on expr). Any Expression that also implements this
// interface can stand on the right of IN.
type valueListFeeder interface {
	GetValueList(t tuple.Tuple) ([]sqlvalue.Value, error)
}

func errInvalidArg(msg string) error {
	return rc.New(rc.INVALID_ARGUMENT, msg)
}

func errInvalidSelectExpr(msg string) error {
	return rc.New(rc.SELECT_EXPR_INVALID_ARGUMENT, msg)
}
