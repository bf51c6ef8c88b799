package expr

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// CastExpr narrows or widens its child to Target. The only target type
// currently specified is BOOL (spec section 3).
type CastExpr struct {
	Child  Expression
	Target AttrType
}

// NewCast builds a Cast expression converting child to target. Only a BOOL
// target changes the value; any other target passes the value through.
func NewCast(child Expression, target AttrType) *CastExpr {
	return &CastExpr{Child: child, Target: target}
}

func (e *CastExpr) ValueType() AttrType { return e.Target }

func (e *CastExpr) GetValue(t tuple.Tuple) (sqlvalue.Value, error) {
	v, err := e.Child.GetValue(t)
	if err != nil {
		return sqlvalue.Value{}, err
	}
	return e.cast(v), nil
}

func (e *CastExpr) TryGetValue() (sqlvalue.Value, bool) {
	v, ok := e.Child.TryGetValue()
	if !ok {
		return sqlvalue.Value{}, false
	}
	return e.cast(v), true
}

func (e *CastExpr) cast(v sqlvalue.Value) sqlvalue.Value {
	if v.IsNull() {
		return v
	}
	switch e.Target {
	case sqlvalue.BOOL:
		return sqlvalue.Bool(v.AsBool())
	default:
		return v
	}
}

func (e *CastExpr) String() string { return "CAST(" + e.Child.String() + " AS " + e.Target.String() + ")" }
