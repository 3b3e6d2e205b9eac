package tofino

import (
	"testing"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
	"github.com/synapse-nf/synbdd/internal/placement"
	"github.com/synapse-nf/synbdd/internal/planner"
)

//********************************************************************************************

func buildMapGetBDD() *bddgraph.BDD {
	bl := bddgraph.NewBuilder()
	route := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteFWD, DstPort: 1}, nil)
	call := bl.AddCall(bddgraph.CallRecord{
		Function: "map_get",
		Args: map[string]bddgraph.ArgSlot{
			"map": {Expr: expr.Const(7, 64)},
		},
	}, nil, route, nil)
	bl.BDD().SetRoot(call)
	return bl.BDD()
}

func TestMapLookupPlacesObjectAndConsumesStage(t *testing.T) {
	bdd := buildMapGetBDD()
	ctx := placement.NewContext()
	ep := planner.NewEP(0, bdd, ctx)

	gen := MapLookup()
	leaf, _ := ep.ActiveLeaf()
	cands := gen.Generate(ep, leaf.NextBDDNode)
	if len(cands) != 1 {
		t.Fatalf("MapLookup.Generate on a map_get call: expected 1 candidate, actual %d", len(cands))
	}

	ep.ProcessLeaf(leaf, cands[0].Module, cands[0].NewLeaves, nil)

	d, ok := ctx.PlacementOf(placement.ObjectAddr("7"))
	if !ok || d.Kind != "simple_table" {
		t.Errorf("placement of map 7 after MapLookup: expected simple_table, actual %v (ok=%v)", d, ok)
	}
	tc, ok := ctx.TargetCtxOf("tofino")
	if !ok {
		t.Fatalf("tofino target ctx: expected it to be installed, actual none")
	}
	if tc.(*Ctx).StagesUsed != 1 {
		t.Errorf("StagesUsed after one table: expected 1, actual %d", tc.(*Ctx).StagesUsed)
	}
}

func TestMapLookupRefusesSecondConflictingPlacement(t *testing.T) {
	bdd := buildMapGetBDD()
	ctx := placement.NewContext()
	ctx.Place(placement.ObjectAddr("7"), placement.Decision{Target: "x86", Kind: "host_map"})
	ep := planner.NewEP(0, bdd, ctx)

	gen := MapLookup()
	leaf, _ := ep.ActiveLeaf()
	if cands := gen.Generate(ep, leaf.NextBDDNode); cands != nil {
		t.Errorf("MapLookup.Generate on an object already placed on x86: expected no candidates, actual %d", len(cands))
	}
}

//********************************************************************************************

func TestCtxEstimateThroughputDegradesWithStages(t *testing.T) {
	c := NewCtx()
	base := c.EstimateThroughputPPS()
	used, ok := c.AddTable(1024)
	if !ok {
		t.Fatalf("AddTable within budget: expected ok, actual false")
	}
	if used.EstimateThroughputPPS() >= base {
		t.Errorf("EstimateThroughputPPS after consuming a stage: expected lower than %v, actual %v", base, used.EstimateThroughputPPS())
	}
}

func TestCtxAddTableRejectsOverCapacity(t *testing.T) {
	c := NewCtx()
	for i := 0; i < c.StagesTotal; i++ {
		next, ok := c.AddTable(1)
		if !ok {
			t.Fatalf("AddTable %d within stage budget: expected ok, actual false", i)
		}
		c = next
	}
	if _, ok := c.AddTable(1); ok {
		t.Errorf("AddTable past the stage budget: expected ok=false, actual true")
	}
}
