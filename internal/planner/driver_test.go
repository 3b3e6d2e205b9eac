package planner

import (
	"testing"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/placement"
)

//********************************************************************************************

// routeOnlyGen is a trivial generator: it emits one module per BDD node
// and declares every leaf terminal once it reaches a Route, used to
// exercise Driver.Run's loop without depending on any real target
// package.
type routeOnlyGen struct {
	target string
	calls  int
}

func (g *routeOnlyGen) Target() string { return g.target }

func (g *routeOnlyGen) Generate(ep *EP, next bddgraph.NodeID) []Candidate {
	g.calls++
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok {
		return nil
	}
	m := &EPNode{Module: Module{TypeTag: "route", TargetTag: g.target, NextTargetTag: g.target, BoundNode: next}}
	var leaves []Leaf
	if n.Kind == bddgraph.KindRoute {
		leaves = []Leaf{TerminalLeaf(0)}
	} else {
		leaves = []Leaf{PendingLeaf(0, n.Next)}
	}
	return []Candidate{{Module: m, NewLeaves: leaves}}
}

func (g *routeOnlyGen) Speculate(ep *EP, next bddgraph.NodeID) (float64, bool) {
	return 0, false
}

func buildLinearBDD() *bddgraph.BDD {
	bl := bddgraph.NewBuilder()
	route := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteDrop}, nil)
	call := bl.AddCall(bddgraph.CallRecord{Function: "drop"}, nil, route, nil)
	bl.BDD().SetRoot(call)
	return bl.BDD()
}

func TestDriverRunReachesTerminalEP(t *testing.T) {
	bdd := buildLinearBDD()
	ctx := placement.NewContext()
	ep := NewEP(0, bdd, ctx)

	gen := &routeOnlyGen{target: "x86"}
	driver := NewDriver([]Target{{Name: "x86", Generators: []ModuleGenerator{gen}}}, "x86", nil)

	best := driver.Run(ep)
	if best == nil {
		t.Fatalf("Driver.Run over a two-node linear BDD: expected a completed EP, actual nil")
	}
	if !best.Done() {
		t.Errorf("Driver.Run's result: expected Done()==true, actual false")
	}
	if gen.calls == 0 {
		t.Errorf("Driver.Run: expected the generator to be invoked, actual 0 calls")
	}
}

//********************************************************************************************

func TestEPProcessLeafFrontBack(t *testing.T) {
	bdd := buildLinearBDD()
	ctx := placement.NewContext()
	ep := NewEP(0, bdd, ctx)

	leaf, _ := ep.ActiveLeaf()
	sameTargetModule := &EPNode{Module: Module{TargetTag: "x86", NextTargetTag: "x86"}}
	ep.ProcessLeaf(leaf, sameTargetModule, []Leaf{PendingLeaf(0, 1), PendingLeaf(0, 2)}, nil)

	leaves := ep.Leaves()
	if len(leaves) != 2 {
		t.Fatalf("Leaves() after processing a same-target module: expected 2, actual %d", len(leaves))
	}

	crossTargetLeaf := leaves[0]
	crossModule := &EPNode{Module: Module{TargetTag: "x86", NextTargetTag: "tofino"}}
	ep.ProcessLeaf(crossTargetLeaf, crossModule, []Leaf{PendingLeaf(0, 3)}, nil)

	after := ep.Leaves()
	// the cross-target leaf must have been pushed to the back, leaving the
	// other same-target leaf from the first ProcessLeaf call at the front.
	if after[0].NextBDDNode != 2 {
		t.Errorf("front of frontier after a cross-target ProcessLeaf: expected node 2, actual %v", after[0].NextBDDNode)
	}
}
