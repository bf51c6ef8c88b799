package expr

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// ConjKind selects AND or OR for a Conjunction.
type ConjKind int

const (
	And ConjKind = iota
	Or
)

func (k ConjKind) String() string {
	if k == Or {
		return "OR"
	}
	return "AND"
}

// ConjunctionExpr evaluates its children left-to-right with short-circuit
// semantics (spec section 4.2/8.4). An empty child list is TRUE for AND,
// FALSE for OR.
type ConjunctionExpr struct {
	Kind     ConjKind
	Children []Expression
}

// NewConjunction builds a Conjunction over children.
func NewConjunction(kind ConjKind, children ...Expression) *ConjunctionExpr {
	return &ConjunctionExpr{Kind: kind, Children: children}
}

func (e *ConjunctionExpr) ValueType() AttrType { return sqlvalue.BOOL }

func (e *ConjunctionExpr) GetValue(t tuple.Tuple) (sqlvalue.Value, error) {
	if len(e.Children) == 0 {
		return sqlvalue.Bool(e.Kind == And), nil
	}
	shortCircuit := false // AND short-circuits on FALSE, OR on TRUE
	if e.Kind == Or {
		shortCircuit = true
	}
	for _, child := range e.Children {
		v, err := child.GetValue(t)
		if err != nil {
			return sqlvalue.Value{}, err
		}
		if v.AsBool() == shortCircuit {
			return sqlvalue.Bool(shortCircuit), nil
		}
	}
	return sqlvalue.Bool(!shortCircuit), nil
}

func (e *ConjunctionExpr) TryGetValue() (sqlvalue.Value, bool) {
	if len(e.Children) == 0 {
		return sqlvalue.Bool(e.Kind == And), true
	}
	shortCircuit := e.Kind == Or
	for _, child := range e.Children {
		v, ok := child.TryGetValue()
		if !ok {
			return sqlvalue.Value{}, false
		}
		if v.AsBool() == shortCircuit {
			return sqlvalue.Bool(shortCircuit), true
		}
	}
	return sqlvalue.Bool(!shortCircuit), true
}

func (e *ConjunctionExpr) String() string {
	if len(e.Children) == 0 {
		if e.Kind == And {
			return "TRUE"
		}
		return "FALSE"
	}
	s := "(" + e.Children[0].String()
	for _, c := range e.Children[1:] {
		s += " " + e.Kind.String() + " " + c.String()
	}
	return s + ")"
}
