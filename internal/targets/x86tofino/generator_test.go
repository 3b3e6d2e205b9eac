package x86tofino

import (
	"testing"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/placement"
	"github.com/synapse-nf/synbdd/internal/planner"
)

//********************************************************************************************

func TestForwardThroughTofinoCrossesTarget(t *testing.T) {
	bl := bddgraph.NewBuilder()
	route := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteFWD, DstPort: 2}, nil)
	bl.BDD().SetRoot(route)

	ep := planner.NewEP(0, bl.BDD(), placement.NewContext())
	gen := ForwardThroughTofino()
	leaf, _ := ep.ActiveLeaf()
	cands := gen.Generate(ep, leaf.NextBDDNode)
	if len(cands) != 1 {
		t.Fatalf("ForwardThroughTofino.Generate on a Route: expected 1 candidate, actual %d", len(cands))
	}
	if cands[0].Module.Module.NextTargetTag != "tofino" {
		t.Errorf("NextTargetTag: expected tofino, actual %s", cands[0].Module.Module.NextTargetTag)
	}
}

func TestIgnoreOnlyMatchesListedNames(t *testing.T) {
	bl := bddgraph.NewBuilder()
	route := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteDrop}, nil)
	call := bl.AddCall(bddgraph.CallRecord{Function: "hash_obj"}, nil, route, nil)
	bl.BDD().SetRoot(call)

	ep := planner.NewEP(0, bl.BDD(), placement.NewContext())
	gen := Ignore("x86", "hash_obj")
	leaf, _ := ep.ActiveLeaf()
	if cands := gen.Generate(ep, leaf.NextBDDNode); len(cands) != 1 {
		t.Errorf("Ignore.Generate on a listed name: expected 1 candidate, actual %d", len(cands))
	}

	gen2 := Ignore("x86", "some_other_call")
	if cands := gen2.Generate(ep, leaf.NextBDDNode); cands != nil {
		t.Errorf("Ignore.Generate on an unlisted name: expected no candidates, actual %d", len(cands))
	}
}
