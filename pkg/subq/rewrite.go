package subq

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/expr"
	"github.com/JayabrataBasu/VeridicalDB/pkg/physical"
	"github.com/JayabrataBasu/VeridicalDB/pkg/plan"
	"github.com/JayabrataBasu/VeridicalDB/pkg/resolver"
)

// rewriteExpr replaces every resolver.SubSelectExpr placeholder reachable
// from e with a materialized *Subquery, rebuilding the immutable expr
// nodes around it. Leaves (FieldExpr, ValueExpr) and already-materialized
// Subqueries pass through unchanged.
func rewriteExpr(e expr.Expression, planner physical.Planner) (expr.Expression, error) {
	switch v := e.(type) {
	case *resolver.SubSelectExpr:
		sq := New(v.Inner, planner)
		if err := sq.ensurePlanned(); err != nil {
			return nil, err
		}
		return sq, nil

	case *expr.ComparisonExpr:
		left, err := rewriteExpr(v.Left, planner)
		if err != nil {
			return nil, err
		}
		right, err := rewriteExpr(v.Right, planner)
		if err != nil {
			return nil, err
		}
		return expr.NewComparison(v.Op, left, right), nil

	case *expr.ConjunctionExpr:
		children := make([]expr.Expression, len(v.Children))
		for i, c := range v.Children {
			nc, err := rewriteExpr(c, planner)
			if err != nil {
				return nil, err
			}
			children[i] = nc
		}
		return expr.NewConjunction(v.Kind, children...), nil

	case *expr.ArithmeticExpr:
		left, err := rewriteExpr(v.Left, planner)
		if err != nil {
			return nil, err
		}
		if v.Right == nil {
			return expr.NewNegate(left), nil
		}
		right, err := rewriteExpr(v.Right, planner)
		if err != nil {
			return nil, err
		}
		return expr.NewArithmetic(v.Op, left, right), nil

	case *expr.ListExpr:
		children := make([]expr.Expression, len(v.Children))
		for i, c := range v.Children {
			nc, err := rewriteExpr(c, planner)
			if err != nil {
				return nil, err
			}
			children[i] = nc
		}
		return expr.NewList(children...), nil

	case *expr.CastExpr:
		child, err := rewriteExpr(v.Child, planner)
		if err != nil {
			return nil, err
		}
		return expr.NewCast(child, v.Target), nil

	default:
		// FieldExpr, ValueExpr, and already-materialized Subqueries carry
		// no nested sub-selects.
		return e, nil
	}
}

// rewriteNode walks a logical plan tree in place, replacing every
// resolver.SubSelectExpr its operators' expressions reference with a
// materialized Subquery (spec section 4.4/4.5). It must run once, after
// plan.Generate and before the result is handed to a physical.Planner.
func rewriteNode(n plan.Node, planner physical.Planner) error {
	switch v := n.(type) {
	case *plan.Predicate:
		nf, err := rewriteExpr(v.Filter, planner)
		if err != nil {
			return err
		}
		v.Filter = nf.(*expr.ConjunctionExpr)

	case *plan.Aggregate:
		if v.HavingPredicate != nil {
			nh, err := rewriteExpr(v.HavingPredicate, planner)
			if err != nil {
				return err
			}
			v.HavingPredicate = nh.(*expr.ConjunctionExpr)
		}

	case *plan.Update:
		for i := range v.SetClauses {
			nv, err := rewriteExpr(v.SetClauses[i].Value, planner)
			if err != nil {
				return err
			}
			v.SetClauses[i].Value = nv
		}

	case *plan.Insert:
		for i := range v.Rows {
			for j := range v.Rows[i] {
				nv, err := rewriteExpr(v.Rows[i][j], planner)
				if err != nil {
					return err
				}
				v.Rows[i][j] = nv
			}
		}

	case *plan.Calc:
		for i := range v.Expressions {
			nv, err := rewriteExpr(v.Expressions[i], planner)
			if err != nil {
				return err
			}
			v.Expressions[i] = nv
		}
	}

	for _, child := range n.Children() {
		if child == nil {
			continue
		}
		if err := rewriteNode(child, planner); err != nil {
			return err
		}
	}
	return nil
}

// Materialize is the public entry point: it runs rewriteNode over root and
// returns it (the tree is mutated in place; the return value is for call
// sites that prefer an expression-oriented style).
func Materialize(root plan.Node, planner physical.Planner) (plan.Node, error) {
	if err := rewriteNode(root, planner); err != nil {
		return nil, err
	}
	return root, nil
}
