package reorder

import (
	"go.uber.org/zap"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// EstimateReorder counts the number of BDDs reachable by recursively
// applying Reorder, memoised on each reached BDD's hash from its root, capped by
// cap, logging progress at Info level (spec.md §4.3.6: "capped by
// throughput logging to stderr" — generalized here to the shared zap
// logger rather than a bare stderr print, per SPEC_FULL.md's ambient
// logging section). Purely advisory: no caller depends on its result for
// correctness.
//
// Open Question (spec.md §9, preserved verbatim): memoisation keys on
// Hash, not a collision-free canonical form, so two structurally distinct
// but hash-equal BDDs are treated as the same already-counted state.
// Collisions are possible and go undetected; we deliberately do not
// upgrade to a canonical key, since estimate_reorder's output is advisory
// and the source's own documented behaviour is what this function
// reproduces.
func EstimateReorder(bdd *bddgraph.BDD, o *expr.Oracle, cap int, log *zap.SugaredLogger) int {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	seen := map[uint64]bool{}
	count := 0
	var walk func(b *bddgraph.BDD, depth int)
	walk = func(b *bddgraph.BDD, depth int) {
		if count >= cap {
			return
		}
		h := b.Hash(b.Root(), true)
		if seen[h] {
			return
		}
		seen[h] = true
		count++
		if count%1000 == 0 {
			log.Infow("estimate_reorder progress", "count", count, "cap", cap)
		}
		var anchors []bddgraph.NodeID
		b.VisitNodes(b.Root(), func(n *bddgraph.Node, cookie interface{}) (bddgraph.Action, interface{}) {
			anchors = append(anchors, n.ID)
			return bddgraph.VisitChildren, cookie
		}, nil)
		for _, a := range anchors {
			if count >= cap {
				return
			}
			for _, next := range Reorder(b, o, a, log) {
				walk(next, depth+1)
			}
		}
	}
	walk(bdd, 0)
	return count
}
