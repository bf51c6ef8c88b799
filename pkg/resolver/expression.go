package resolver

import (
	"time"

	"github.com/JayabrataBasu/VeridicalDB/pkg/ast"
	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/expr"
	"github.com/JayabrataBasu/VeridicalDB/pkg/field"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
)

// astValueToSqlValue converts a parser literal into the Value & Type
// layer's runtime representation.
func astValueToSqlValue(v ast.Value) (sqlvalue.Value, error) {
	switch v.Type {
	case ast.ValInt:
		return sqlvalue.Int(v.Int), nil
	case ast.ValFloat:
		return sqlvalue.Float(v.Float), nil
	case ast.ValBool:
		return sqlvalue.Bool(v.Bool), nil
	case ast.ValChars:
		return sqlvalue.Chars(v.Chars), nil
	case ast.ValDate:
		d, err := time.Parse("2006-01-02", v.Chars)
		if err != nil {
			return sqlvalue.Value{}, rc.New(rc.INVALID_ARGUMENT, "malformed date literal: "+v.Chars)
		}
		return sqlvalue.Date(d), nil
	case ast.ValNull:
		return sqlvalue.Null(), nil
	default:
		return sqlvalue.Value{}, rc.New(rc.INTERNAL, "unknown literal type")
	}
}

func astAggrToFieldAggr(a ast.AggrFuncType) field.AggrFunc {
	switch a {
	case ast.AggrCount:
		return field.AggrCount
	case ast.AggrSum:
		return field.AggrSum
	case ast.AggrAvg:
		return field.AggrAvg
	case ast.AggrMin:
		return field.AggrMin
	case ast.AggrMax:
		return field.AggrMax
	default:
		return field.AggrNone
	}
}

func astCompToExprOp(c ast.CompOp) expr.CompOp {
	switch c {
	case ast.CompEq:
		return expr.OpEq
	case ast.CompNe:
		return expr.OpNe
	case ast.CompLt:
		return expr.OpLt
	case ast.CompLe:
		return expr.OpLe
	case ast.CompGt:
		return expr.OpGt
	case ast.CompGe:
		return expr.OpGe
	case ast.CompIs:
		return expr.OpIs
	case ast.CompIsNot:
		return expr.OpIsNot
	case ast.CompLike:
		return expr.OpLike
	case ast.CompNotLike:
		return expr.OpNotLike
	case ast.CompIn:
		return expr.OpIn
	case ast.CompNotIn:
		return expr.OpNotIn
	default:
		return expr.OpEq
	}
}

func astArithToExprOp(op string) (expr.ArithOp, bool) {
	switch op {
	case "+":
		return expr.OpAdd, true
	case "-":
		return expr.OpSub, true
	case "*":
		return expr.OpMul, true
	case "/":
		return expr.OpDiv, true
	case "%":
		return expr.OpMod, true
	case "NEG":
		return expr.OpNeg, true
	default:
		return 0, false
	}
}

// resolveAttr binds a single attribute reference to a catalog column (or a
// literal/COUNT(*) marker) against local, and — for a correlated
// sub-select — outer, scope.
func (r *Resolver) resolveAttr(a *ast.RelAttrSqlNode, local, outer *Scope, allowAggr bool) (*field.Field, error) {
	aggr := astAggrToFieldAggr(a.AggrFuncType)
	if aggr != field.AggrNone && !allowAggr {
		return nil, rc.New(rc.AGGR_FUNC_NOT_VALID, "aggregate function not allowed here")
	}

	if a.IsConstantValue {
		v, err := astValueToSqlValue(a.ConstantValue)
		if err != nil {
			return nil, err
		}
		return &field.Field{Alias: a.Alias, Aggr: aggr, FuncName: a.FunctionType, Const: &v}, nil
	}

	if a.AttributeName == "*" {
		if aggr != field.AggrCount {
			return nil, rc.New(rc.SQL_SYNTAX, "* may only appear bare or inside COUNT()")
		}
		return &field.Field{Alias: a.Alias, Aggr: aggr, IsStar: true}, nil
	}

	var table *catalog.Table
	var col *catalog.Column
	var err error
	var usedAlias bool

	if a.RelationName != "" {
		var ok bool
		table, ok = local.lookup(a.RelationName)
		if !ok && outer != nil {
			table, ok = outer.lookup(a.RelationName)
		}
		if !ok {
			return nil, rc.New(rc.SCHEMA_TABLE_NOT_EXIST, "unknown relation or alias: "+a.RelationName)
		}
		col, _ = table.ColumnByName(a.AttributeName)
		if col == nil {
			return nil, rc.New(rc.SCHEMA_FIELD_MISSING, "no such column: "+a.RelationName+"."+a.AttributeName)
		}
		usedAlias = a.RelationName != table.Name
	} else {
		table, col, err = local.findColumn(a.AttributeName, outer)
		if err != nil {
			return nil, err
		}
	}

	return &field.Field{
		Table:     table,
		Column:    col,
		Alias:     a.Alias,
		Aggr:      aggr,
		FuncName:  a.FunctionType,
		UsedAlias: usedAlias,
	}, nil
}

// resolveExprNode resolves any scalar operand shape: attribute, literal,
// value list, nested SELECT, or arithmetic.
func (r *Resolver) resolveExprNode(n *ast.ExprSqlNode, local, outer *Scope, allowAggr bool) (expr.Expression, error) {
	switch {
	case n.Attr != nil:
		f, err := r.resolveAttr(n.Attr, local, outer, allowAggr)
		if err != nil {
			return nil, err
		}
		if f.Const != nil {
			return expr.NewValue(*f.Const), nil
		}
		return expr.NewField(f), nil

	case n.Value != nil:
		v, err := astValueToSqlValue(*n.Value)
		if err != nil {
			return nil, err
		}
		return expr.NewValue(v), nil

	case n.List != nil:
		children := make([]expr.Expression, 0, len(n.List))
		for i := range n.List {
			c, err := r.resolveExprNode(&n.List[i], local, outer, false)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		return expr.NewList(children...), nil

	case n.Sub != nil:
		inner, err := r.resolveSelect(n.Sub, true, local)
		if err != nil {
			return nil, err
		}
		return &SubSelectExpr{Inner: inner}, nil

	case n.ArithOp != "":
		op, ok := astArithToExprOp(n.ArithOp)
		if !ok {
			return nil, rc.New(rc.SQL_SYNTAX, "unknown arithmetic operator: "+n.ArithOp)
		}
		if op == expr.OpNeg {
			left, err := r.resolveExprNode(n.Left, local, outer, allowAggr)
			if err != nil {
				return nil, err
			}
			return expr.NewNegate(left), nil
		}
		left, err := r.resolveExprNode(n.Left, local, outer, allowAggr)
		if err != nil {
			return nil, err
		}
		right, err := r.resolveExprNode(n.Right, local, outer, allowAggr)
		if err != nil {
			return nil, err
		}
		return expr.NewArithmetic(op, left, right), nil

	default:
		return nil, rc.New(rc.INTERNAL, "empty expression node")
	}
}

// resolveOperand resolves one side of a ConditionSqlNode, which is either a
// bare attribute or a general expression node.
func (r *Resolver) resolveOperand(isAttr bool, attr ast.RelAttrSqlNode, expr_ *ast.ExprSqlNode, local, outer *Scope, allowAggr bool) (expr.Expression, error) {
	if isAttr {
		f, err := r.resolveAttr(&attr, local, outer, allowAggr)
		if err != nil {
			return nil, err
		}
		if f.Const != nil {
			return expr.NewValue(*f.Const), nil
		}
		return expr.NewField(f), nil
	}
	return r.resolveExprNode(expr_, local, outer, allowAggr)
}

// resolveCondition turns one parsed condition into a Comparison expression.
func (r *Resolver) resolveCondition(c *ast.ConditionSqlNode, local, outer *Scope, allowAggr bool) (*expr.ComparisonExpr, error) {
	left, err := r.resolveOperand(c.LeftIsAttr, c.LeftAttr, c.LeftExpr, local, outer, allowAggr)
	if err != nil {
		return nil, err
	}
	right, err := r.resolveOperand(c.RightIsAttr, c.RightAttr, c.RightExpr, local, outer, allowAggr)
	if err != nil {
		return nil, err
	}
	return expr.NewComparison(astCompToExprOp(c.Comp), left, right), nil
}

// resolveConditionList resolves a flat AND-list of conditions into a single
// Conjunction (an empty list is the vacuous TRUE filter).
func (r *Resolver) resolveConditionList(conds []ast.ConditionSqlNode, local, outer *Scope, allowAggr bool) (*expr.ConjunctionExpr, error) {
	children := make([]expr.Expression, 0, len(conds))
	for i := range conds {
		c, err := r.resolveCondition(&conds[i], local, outer, allowAggr)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return expr.NewConjunction(expr.And, children...), nil
}
