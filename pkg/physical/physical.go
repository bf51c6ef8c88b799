// Package physical declares the external collaborator's contract: the
// physical-plan generator and the node it produces are a black box from
// this core's point of view (spec section 1/6). This package carries only
// the interfaces the logical-plan generator's output is eventually handed
// to, and that pkg/subq drives for sub-query expressions.
package physical

import (
	"context"

	"github.com/JayabrataBasu/VeridicalDB/pkg/plan"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// Node is a physical operator: a lazy, restartable, finite sequence of
// tuples (spec section 9). Next returns rc.ErrRecordEOF on exhaustion.
type Node interface {
	Open(ctx context.Context) error
	Next() error
	Current() (tuple.Tuple, error)
	Close() error
}

// Planner turns a logical plan into an executable physical tree. The real
// implementation (cost-based operator selection, index usage, join
// algorithms) lives entirely outside this core; pkg/subq and the REPL
// depend only on this interface.
type Planner interface {
	Create(root plan.Node) (Node, error)
}

// OuterBinder is implemented by a physical node whose evaluation depends
// on the row currently active in an enclosing query. pkg/subq calls
// BindOuter with that row before every re-open of a correlated
// sub-select's plan, so the re-opened scan sees the new outer value.
type OuterBinder interface {
	BindOuter(outer tuple.Tuple)
}
