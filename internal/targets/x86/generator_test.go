package x86

import (
	"testing"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
	"github.com/synapse-nf/synbdd/internal/placement"
	"github.com/synapse-nf/synbdd/internal/planner"
)

//********************************************************************************************

func buildSketchTouchBDD() *bddgraph.BDD {
	bl := bddgraph.NewBuilder()
	route := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteDrop}, nil)
	call := bl.AddCall(bddgraph.CallRecord{
		Function: "sketch_touch_buckets",
		Args: map[string]bddgraph.ArgSlot{
			"sketch": {Expr: expr.Const(3, 64)},
		},
	}, nil, route, nil)
	bl.BDD().SetRoot(call)
	return bl.BDD()
}

func TestPassthroughAddsCyclesAndPlacesObject(t *testing.T) {
	bdd := buildSketchTouchBDD()
	ctx := placement.NewContext()
	ep := planner.NewEP(0, bdd, ctx)

	gen := Passthrough()
	leaf, _ := ep.ActiveLeaf()
	cands := gen.Generate(ep, leaf.NextBDDNode)
	if len(cands) != 1 {
		t.Fatalf("Passthrough.Generate on sketch_touch_buckets: expected 1 candidate, actual %d", len(cands))
	}
	ep.ProcessLeaf(leaf, cands[0].Module, cands[0].NewLeaves, nil)

	d, ok := ctx.PlacementOf(placement.ObjectAddr("3"))
	if !ok || d.Kind != "host_sketch" {
		t.Errorf("placement of sketch 3 after Passthrough: expected host_sketch, actual %v (ok=%v)", d, ok)
	}
	tc, ok := ctx.TargetCtxOf("x86")
	if !ok || tc.(*Ctx).CyclesPerPacket != approxCyclesFor["sketch_touch_buckets"] {
		t.Errorf("CyclesPerPacket after one passthrough call: expected %d, actual %v (ok=%v)", approxCyclesFor["sketch_touch_buckets"], tc, ok)
	}
}

//********************************************************************************************

func TestCtxEstimateThroughputDecreasesWithCycles(t *testing.T) {
	c := NewCtx()
	base := c.EstimateThroughputPPS()
	loaded := c.AddCycles(100)
	if loaded.EstimateThroughputPPS() >= base {
		t.Errorf("EstimateThroughputPPS after adding cycles: expected lower than %v, actual %v", base, loaded.EstimateThroughputPPS())
	}
}
