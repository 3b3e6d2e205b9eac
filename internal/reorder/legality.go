package reorder

import (
	"go.uber.org/zap"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// Checker runs the legality checks of spec.md §4.3.1 against one BDD. It
// holds the Oracle handle every check needs (Design Notes: pass the
// Oracle explicitly rather than reach for a global).
type Checker struct {
	bdd *bddgraph.BDD
	o   *expr.Oracle
	log *zap.SugaredLogger
}

// NewChecker builds a Checker over bdd using oracle o. A nil logger
// disables diagnostics.
func NewChecker(bdd *bddgraph.BDD, o *expr.Oracle, log *zap.SugaredLogger) *Checker {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Checker{bdd: bdd, o: o, log: log}
}

// anchorNext returns the node id that (A,dir) currently points to.
func (c *Checker) anchorNext(a Anchor) (bddgraph.NodeID, bool) {
	n, ok := c.bdd.GetNodeByID(a.Node)
	if !ok {
		return 0, false
	}
	if n.Kind == bddgraph.KindBranch {
		if a.Direction {
			return n.OnTrue, n.OnTrue != 0
		}
		return n.OnFalse, n.OnFalse != 0
	}
	id, ok := n.NextID()
	return id, ok
}

// reachable reports whether target is reachable from start (inclusive).
func (c *Checker) reachable(start, target bddgraph.NodeID) bool {
	found := false
	c.bdd.VisitNodes(start, func(n *bddgraph.Node, cookie interface{}) (bddgraph.Action, interface{}) {
		if n.ID == target {
			found = true
			return bddgraph.Stop, cookie
		}
		return bddgraph.VisitChildren, cookie
	}, nil)
	return found
}

// between returns, in visit order, every node strictly between start
// (exclusive) and target (exclusive) along the unique path the BDD takes
// to reach it — the "nodes between A and X" of spec.md §4.3.1 check 5/6
// when start is the anchor. The BDD is a tree, so the path from start to
// target is unique: we follow Next for Call nodes and the single child
// whose subtree contains target for Branch nodes.
func (c *Checker) between(start, target bddgraph.NodeID) []*bddgraph.Node {
	var out []*bddgraph.Node
	id := start
	for id != 0 && id != target {
		n, ok := c.bdd.GetNodeByID(id)
		if !ok {
			break
		}
		if n.ID != start {
			out = append(out, n)
		}
		switch n.Kind {
		case bddgraph.KindBranch:
			if c.reachable(n.OnTrue, target) {
				id = n.OnTrue
			} else {
				id = n.OnFalse
			}
		case bddgraph.KindCall:
			id = n.Next
		default:
			return out
		}
	}
	return out
}

// Check runs the full ordered sequence of legality checks for candidate
// against anchor and, on success, records the discovered sibling set.
func (c *Checker) Check(anchor Anchor, candidate bddgraph.NodeID, allowShapeAltering bool) Verdict {
	next, ok := c.anchorNext(anchor)
	if !ok {
		return Verdict{Status: UnreachableCandidate}
	}
	// 1. Reachability
	if !c.reachable(next, candidate) {
		return Verdict{Status: UnreachableCandidate}
	}
	// 2. Not-already-next
	if next == candidate {
		return Verdict{Status: CandidateFollowsAnchor}
	}
	x := c.bdd.MustGet(candidate)

	// 3. IO check
	if !c.ioCheckPasses(anchor.Node, x) {
		return Verdict{Status: IOCheckFailed}
	}

	// 4. Policy list
	if x.Kind == bddgraph.KindCall && bddgraph.IsNonReorderable(x.Call.Function) {
		return Verdict{Status: NotAllowed}
	}

	// 5. RW check, accumulating any guard expressions produced along the way.
	betweenNodes := c.between(anchor.Node, candidate)
	var guards []*expr.Expr
	if bddNeedsSideEffectCheck(x) {
		for _, b := range betweenNodes {
			if b.Kind == bddgraph.KindBranch {
				return Verdict{Status: RWCheckFailed}
			}
			g, status := rwRule(c.o, b, x, b.Constraint, x.Constraint)
			if status != Valid {
				return Verdict{Status: status}
			}
			if g != nil {
				guards = append(guards, dedupeGuard(c.o, guards, g, b.Constraint)...)
			}
		}
	}
	guard := conjoinGuards(guards)

	// 6. Condition check
	if guard != nil {
		for _, b := range betweenNodes {
			if b.Constraint == nil {
				continue
			}
			if c.o.AlwaysFalse(b.Constraint, guard) {
				return Verdict{Status: ImpossibleCondition}
			}
			if c.o.AlwaysFalse(b.Constraint, expr.BoolNot(guard)) {
				return Verdict{Status: ImpossibleCondition}
			}
		}
	}

	// 7. Routing compatibility
	if x.Kind == bddgraph.KindRoute {
		if !c.allPathsReachMatchingRoute(next, x.Route, map[bddgraph.NodeID]bool{}) {
			return Verdict{Status: ConflictingRouting}
		}
	}

	if !allowShapeAltering {
		if x.Kind == bddgraph.KindBranch && !c.isNextBranchOnPrimaryPath(next, candidate) {
			return Verdict{Status: NotAllowed}
		}
		if guard != nil {
			return Verdict{Status: NotAllowed}
		}
	}

	siblings := FindSiblings(c.bdd, c.o, next, x)
	return Verdict{Status: Valid, Guard: guard, Siblings: siblings}
}

// bddNeedsSideEffectCheck reports whether X requires the RW check at all
// (spec.md §4.3.1 check 5: "if X has no side effects, skip").
func bddNeedsSideEffectCheck(x *bddgraph.Node) bool {
	if x.Kind != bddgraph.KindCall {
		return false
	}
	return bddgraph.HasSideEffects(x.Call.Function)
}

// isNextBranchOnPrimaryPath reports whether candidate is the very next
// Branch encountered walking forward from next — used to reject
// shape-altering candidates when allow_shape_altering_ops is false
// (spec.md §4.3.5).
func (c *Checker) isNextBranchOnPrimaryPath(next, candidate bddgraph.NodeID) bool {
	id := next
	for id != 0 {
		n, ok := c.bdd.GetNodeByID(id)
		if !ok {
			return false
		}
		if n.Kind == bddgraph.KindBranch {
			return n.ID == candidate
		}
		nid, ok := n.NextID()
		if !ok {
			return false
		}
		id = nid
	}
	return false
}

// allPathsReachMatchingRoute implements spec.md §4.3.1 check 7: every
// path from start must eventually reach a Route matching want's operation
// (and destination, for FWD).
func (c *Checker) allPathsReachMatchingRoute(start bddgraph.NodeID, want bddgraph.Route, visiting map[bddgraph.NodeID]bool) bool {
	if start == 0 {
		return false
	}
	if visiting[start] {
		// A cycle with no escape to a matching route; BDDs are trees in
		// this model so this should not occur, but guard against
		// non-termination rather than assume it.
		return false
	}
	n, ok := c.bdd.GetNodeByID(start)
	if !ok {
		return false
	}
	switch n.Kind {
	case bddgraph.KindRoute:
		if n.Route.Op != want.Op {
			return false
		}
		if want.Op == bddgraph.RouteFWD && n.Route.DstPort != want.DstPort {
			return false
		}
		return true
	case bddgraph.KindCall:
		visiting[start] = true
		return c.allPathsReachMatchingRoute(n.Next, want, visiting)
	case bddgraph.KindBranch:
		visiting[start] = true
		return c.allPathsReachMatchingRoute(n.OnTrue, want, visiting) &&
			c.allPathsReachMatchingRoute(n.OnFalse, want, visiting)
	}
	return false
}

func conjoinGuards(guards []*expr.Expr) *expr.Expr {
	if len(guards) == 0 {
		return nil
	}
	acc := guards[0]
	for _, g := range guards[1:] {
		acc = expr.BoolAnd(acc, g)
	}
	return acc
}

// dedupeGuard appends g to existing unless it is already present
// (spec.md §4.3.1: "de-duplicated by always_equal").
func dedupeGuard(o *expr.Oracle, existing []*expr.Expr, g *expr.Expr, c *expr.ConstraintSet) []*expr.Expr {
	for _, e := range existing {
		if o.AlwaysEqual(e, g, c, c) {
			return nil
		}
	}
	return []*expr.Expr{g}
}
