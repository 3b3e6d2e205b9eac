package bddgraph

import (
	"fmt"
	"hash/fnv"
)

// Hash computes a stable fingerprint over the nodes reachable from start,
// in visit order (spec.md §4.2), combining each node's id and kind with
// its branch condition, call function or route op/port. recursive is
// kept for parity with CountChildren/the source API and does not change
// the result.
func (b *BDD) Hash(start NodeID, recursive bool) uint64 {
	h := fnv.New64a()
	b.VisitNodes(start, func(n *Node, cookie interface{}) (Action, interface{}) {
		fmt.Fprintf(h, "%d:%d;", n.ID, n.Kind)
		switch n.Kind {
		case KindBranch:
			fmt.Fprintf(h, "%s;", n.Condition)
		case KindCall:
			fmt.Fprintf(h, "%s;", n.Call.Function)
		case KindRoute:
			fmt.Fprintf(h, "%d:%d;", n.Route.Op, n.Route.DstPort)
		}
		return VisitChildren, cookie
	}, nil)
	return h.Sum64()
}
