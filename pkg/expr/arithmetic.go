package expr

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// ArithOp is the Arithmetic expression's operator tag.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpNeg:
		return "-"
	default:
		return "?"
	}
}

// ArithmeticExpr implements +, -, *, /, unary - (NEGATIVE) and %. Right is
// nil exactly for OpNeg, per spec section 3.
type ArithmeticExpr struct {
	Op          ArithOp
	Left, Right Expression
}

// NewArithmetic builds a binary arithmetic expression.
func NewArithmetic(op ArithOp, left, right Expression) *ArithmeticExpr {
	return &ArithmeticExpr{Op: op, Left: left, Right: right}
}

// NewNegate builds the unary negation expression.
func NewNegate(left Expression) *ArithmeticExpr {
	return &ArithmeticExpr{Op: OpNeg, Left: left}
}

// ValueType follows spec section 3: INT+INT stays INT except for division,
// which is always FLOAT; any FLOAT operand widens to FLOAT. Modulus stays
// INT. Unary negation reports the left child's type.
func (e *ArithmeticExpr) ValueType() AttrType {
	if e.Op == OpNeg {
		return e.Left.ValueType()
	}
	if e.Op == OpDiv {
		if e.Left.ValueType() == sqlvalue.NULL || e.Right.ValueType() == sqlvalue.NULL {
			return sqlvalue.NULL
		}
		return sqlvalue.FLOAT
	}
	return sqlvalue.Widen(e.Left.ValueType(), e.Right.ValueType())
}

func (e *ArithmeticExpr) GetValue(t tuple.Tuple) (sqlvalue.Value, error) {
	l, err := e.Left.GetValue(t)
	if err != nil {
		return sqlvalue.Value{}, err
	}
	if e.Op == OpNeg {
		return sqlvalue.Neg(l), nil
	}
	r, err := e.Right.GetValue(t)
	if err != nil {
		return sqlvalue.Value{}, err
	}
	return e.apply(l, r), nil
}

func (e *ArithmeticExpr) TryGetValue() (sqlvalue.Value, bool) {
	l, ok := e.Left.TryGetValue()
	if !ok {
		return sqlvalue.Value{}, false
	}
	if e.Op == OpNeg {
		return sqlvalue.Neg(l), true
	}
	r, ok := e.Right.TryGetValue()
	if !ok {
		return sqlvalue.Value{}, false
	}
	return e.apply(l, r), true
}

func (e *ArithmeticExpr) apply(l, r sqlvalue.Value) sqlvalue.Value {
	switch e.Op {
	case OpAdd:
		return sqlvalue.Add(l, r)
	case OpSub:
		return sqlvalue.Sub(l, r)
	case OpMul:
		return sqlvalue.Mul(l, r)
	case OpDiv:
		return sqlvalue.Div(l, r)
	case OpMod:
		return sqlvalue.Mod(l, r)
	default:
		return sqlvalue.Null()
	}
}

func (e *ArithmeticExpr) String() string {
	if e.Op == OpNeg {
		return "-" + e.Left.String()
	}
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}
