package resolver

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/expr"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// SubSelectExpr is a resolved-but-unmaterialized nested SELECT sitting in
// an expression tree (a condition operand, IN's right-hand side, or a SET
// value). It satisfies expr.Expression only so it can occupy a slot in the
// tree; evaluating it directly is a programming error because pkg/subq is
// responsible for replacing every SubSelectExpr with a live sub-query
// driver before a statement reaches a physical planner (spec section 4.5).
type SubSelectExpr struct {
	Inner *Select
}

// ValueType is necessarily approximate: the real type is only known once
// pkg/subq materializes this into a live sub-query driver.
func (e *SubSelectExpr) ValueType() expr.AttrType { return sqlvalue.NULL }

func (e *SubSelectExpr) GetValue(tuple.Tuple) (sqlvalue.Value, error) {
	return sqlvalue.Value{}, rc.New(rc.INTERNAL, "unmaterialized sub-query reached evaluation")
}

func (e *SubSelectExpr) TryGetValue() (sqlvalue.Value, bool) { return sqlvalue.Value{}, false }

func (e *SubSelectExpr) String() string { return "(SELECT ...)" }
