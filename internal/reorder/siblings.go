package reorder

import (
	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// FindSiblings implements spec.md §4.3.2: starting from start, walk
// forward collecting every node of the same kind as x that compares
// equal to it (condition for Branch, call record for Call, operation+
// destination for Route). x itself counts as a match when the walk
// reaches it. Traversal does not descend below a matched sibling.
//
// Open Question (spec.md §9, preserved verbatim): it is unclear whether
// siblings below a matched sibling on the same path are meant to be
// ignored (redundant-merge avoidance) or an oversight. We preserve the
// source behaviour — stop descent at the first match on each path — and
// flag it here rather than silently "fixing" it.
func FindSiblings(bdd *bddgraph.BDD, o *expr.Oracle, start bddgraph.NodeID, x *bddgraph.Node) []bddgraph.NodeID {
	var out []bddgraph.NodeID
	var walk func(id bddgraph.NodeID)
	walk = func(id bddgraph.NodeID) {
		if id == 0 {
			return
		}
		if id == x.ID {
			out = append(out, id)
			return
		}
		n, ok := bdd.GetNodeByID(id)
		if !ok {
			return
		}
		if isSibling(o, n, x) {
			out = append(out, id)
			return // do not descend below a matched sibling
		}
		switch n.Kind {
		case bddgraph.KindBranch:
			walk(n.OnTrue)
			walk(n.OnFalse)
		case bddgraph.KindCall:
			walk(n.Next)
		}
	}
	walk(start)
	return out
}

func isSibling(o *expr.Oracle, n, x *bddgraph.Node) bool {
	if n.Kind != x.Kind {
		return false
	}
	switch x.Kind {
	case bddgraph.KindBranch:
		return o.AlwaysEqual(n.Condition, x.Condition, n.Constraint, x.Constraint)
	case bddgraph.KindCall:
		return bddgraph.CallsEqual(o, n.Call, x.Call, n.Constraint, x.Constraint)
	case bddgraph.KindRoute:
		if n.Route.Op != x.Route.Op {
			return false
		}
		if x.Route.Op == bddgraph.RouteFWD {
			return n.Route.DstPort == x.Route.DstPort
		}
		return true
	}
	return false
}

// FindSiblingsInAllBranches implements the Route-case "find_in_all_
// branches" sibling requirement of spec.md §4.3.2: every branch of the
// BDD reachable from start must eventually find a matching sibling; if
// any branch ends (reaches a non-matching Route with no further
// children) without one, sibling discovery fails and ok is false.
func FindSiblingsInAllBranches(bdd *bddgraph.BDD, o *expr.Oracle, start bddgraph.NodeID, x *bddgraph.Node) (siblings []bddgraph.NodeID, ok bool) {
	ok = true
	var walk func(id bddgraph.NodeID)
	walk = func(id bddgraph.NodeID) {
		if id == 0 || id == x.ID {
			return
		}
		n, found := bdd.GetNodeByID(id)
		if !found {
			ok = false
			return
		}
		if isSibling(o, n, x) {
			siblings = append(siblings, id)
			return
		}
		switch n.Kind {
		case bddgraph.KindBranch:
			walk(n.OnTrue)
			walk(n.OnFalse)
		case bddgraph.KindCall:
			walk(n.Next)
		case bddgraph.KindRoute:
			ok = false
		}
	}
	walk(start)
	return siblings, ok
}
