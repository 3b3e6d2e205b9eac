package reorder

import (
	"go.uber.org/zap"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// Candidate pairs a candidate node id with the Verdict that found it
// legal, returned by GetReorderOps (spec.md §4.3.5).
type Candidate struct {
	Node   bddgraph.NodeID
	Verdict Verdict
}

// GetReorderOps returns every valid candidate reachable from anchor
// (spec.md §4.3.5). When allowShapeAltering is false, shape-altering
// candidates (a new Branch not next along the primary path, or any
// candidate requiring a guard) are excluded.
func GetReorderOps(bdd *bddgraph.BDD, o *expr.Oracle, anchor Anchor, allowShapeAltering bool) []Candidate {
	checker := NewChecker(bdd, o, nil)
	next, ok := checker.anchorNext(anchor)
	if !ok {
		return nil
	}
	var out []Candidate
	bdd.VisitNodes(next, func(n *bddgraph.Node, cookie interface{}) (bddgraph.Action, interface{}) {
		if n.ID == next {
			return bddgraph.VisitChildren, cookie
		}
		v := checker.Check(anchor, n.ID, allowShapeAltering)
		if v.Status == Valid {
			out = append(out, Candidate{Node: n.ID, Verdict: v})
			return bddgraph.SkipChildren, cookie // do not also propose nodes already absorbed as siblings
		}
		return bddgraph.VisitChildren, cookie
	}, nil)
	return out
}

// Reorder returns every resulting BDD obtained by applying one valid
// candidate at anchor's node (spec.md §4.3.5). When the anchor itself is
// a Branch, every combination of (true-side pick, false-side pick,
// both-together) is enumerated.
func Reorder(bdd *bddgraph.BDD, o *expr.Oracle, anchorNode bddgraph.NodeID, log *zap.SugaredLogger) []*bddgraph.BDD {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	n, ok := bdd.GetNodeByID(anchorNode)
	if !ok {
		return nil
	}
	var out []*bddgraph.BDD
	applyAll := func(dir bool) []*bddgraph.BDD {
		var res []*bddgraph.BDD
		anchor := Anchor{Node: anchorNode, Direction: dir}
		for _, c := range GetReorderOps(bdd, o, anchor, true) {
			rewritten, err := Rewrite(bdd, o, anchor, c.Node, c.Verdict)
			if err != nil {
				log.Debugw("reorder: rewrite failed", "node", c.Node, "error", err)
				continue
			}
			res = append(res, rewritten)
		}
		return res
	}
	if n.Kind != bddgraph.KindBranch {
		return applyAll(true)
	}
	trueResults := applyAll(true)
	falseResults := applyAll(false)
	out = append(out, trueResults...)
	out = append(out, falseResults...)
	// Combining two per-direction picks: apply a false-side rewrite on
	// top of each already-true-rewritten BDD (spec.md §4.3.5: "Combining
	// two per-direction picks is also enumerated"). Rewrite renumbers every
	// node through a recursive Clone from the root, so the anchor's id in
	// each true-side result is the id that same Clone assigns it.
	_, cloneIDs := bdd.Clone(bdd.Root(), true)
	falseAnchor := Anchor{Node: cloneIDs[anchorNode], Direction: false}
	for _, t := range trueResults {
		for _, c := range GetReorderOps(t, o, falseAnchor, true) {
			rewritten, err := Rewrite(t, o, falseAnchor, c.Node, c.Verdict)
			if err != nil {
				continue
			}
			out = append(out, rewritten)
		}
	}
	return out
}
