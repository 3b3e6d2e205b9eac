package placement

import "testing"

//********************************************************************************************

func TestPlaceIdempotent(t *testing.T) {
	ctx := NewContext()
	d := Decision{Target: "tofino", Kind: "simple_table"}
	ctx.Place("map0", d)
	ctx.Place("map0", d) // same decision again: must not panic

	got, ok := ctx.PlacementOf("map0")
	if !ok || got != d {
		t.Errorf("PlacementOf(map0): expected %v, actual %v (ok=%v)", d, got, ok)
	}
}

func TestPlaceConflictPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Place with a conflicting decision: expected panic, actual none")
		}
	}()
	ctx := NewContext()
	ctx.Place("map0", Decision{Target: "tofino", Kind: "simple_table"})
	ctx.Place("map0", Decision{Target: "x86", Kind: "host_map"})
}

//********************************************************************************************

func TestCanPlace(t *testing.T) {
	ctx := NewContext()
	d := Decision{Target: "tofino", Kind: "simple_table"}
	if !ctx.CanPlace("map0", d) {
		t.Errorf("CanPlace on an unplaced object: expected true, actual false")
	}
	ctx.Place("map0", d)
	if !ctx.CanPlace("map0", d) {
		t.Errorf("CanPlace with the same decision: expected true, actual false")
	}
	other := Decision{Target: "x86", Kind: "host_map"}
	if ctx.CanPlace("map0", other) {
		t.Errorf("CanPlace with a conflicting decision: expected false, actual true")
	}
}

//********************************************************************************************

func TestAllPlaced(t *testing.T) {
	ctx := NewContext()
	ctx.Place("map0", Decision{Target: "tofino", Kind: "simple_table"})
	if ctx.AllPlaced([]ObjectAddr{"map0", "map1"}) {
		t.Errorf("AllPlaced with one unplaced object: expected false, actual true")
	}
	ctx.Place("map1", Decision{Target: "x86", Kind: "host_map"})
	if !ctx.AllPlaced([]ObjectAddr{"map0", "map1"}) {
		t.Errorf("AllPlaced with every object placed: expected true, actual false")
	}
}

//********************************************************************************************

func TestUpdateTrafficFractionsSaturates(t *testing.T) {
	ctx := NewContext()
	ctx.UpdateTrafficFractions("", "tofino", 0.7)
	ctx.UpdateTrafficFractions("", "tofino", 0.7) // would overshoot to 1.4 unsaturated
	if got := ctx.TrafficFraction("tofino"); got != 1.0 {
		t.Errorf("TrafficFraction(tofino) after saturating updates: expected 1, actual %v", got)
	}
	ctx.UpdateTrafficFractions("tofino", "x86", 0.3)
	if got := ctx.TrafficFraction("tofino"); got != 0.7 {
		t.Errorf("TrafficFraction(tofino) after move to x86: expected 0.7, actual %v", got)
	}
	if got := ctx.TrafficFraction("x86"); got != 0.3 {
		t.Errorf("TrafficFraction(x86) after move from tofino: expected 0.3, actual %v", got)
	}
}

func TestUpdateTrafficFractionsNeverNegative(t *testing.T) {
	ctx := NewContext()
	ctx.UpdateTrafficFractions("tofino", "", 0.3) // nothing to subtract from yet
	if got := ctx.TrafficFraction("tofino"); got != 0 {
		t.Errorf("TrafficFraction(tofino) after subtracting past zero: expected 0, actual %v", got)
	}
}

//********************************************************************************************

func TestGetNodeConstraintsWalksAncestors(t *testing.T) {
	ctx := NewContext()
	cs := ctx.constraintsPerNode // peek to build an expected nil baseline
	_ = cs
	ctx.UpdateConstraintsPerNode(1, nil)
	parents := map[uint64]uint64{3: 2, 2: 1}
	ancestorsOf := func(id uint64) (uint64, bool) {
		p, ok := parents[id]
		return p, ok
	}
	if got := ctx.GetNodeConstraints(3, ancestorsOf); got != nil {
		t.Errorf("GetNodeConstraints(3): expected the nil entry stored at node 1, actual %v", got)
	}
	if got := ctx.GetNodeConstraints(99, ancestorsOf); got != nil {
		t.Errorf("GetNodeConstraints(99) with no stored ancestor: expected nil, actual %v", got)
	}
}

//********************************************************************************************

type fakeTargetCtx struct {
	name string
	pps  float64
}

func (f fakeTargetCtx) Name() string                  { return f.name }
func (f fakeTargetCtx) EstimateThroughputPPS() float64 { return f.pps }

func TestUpdateThroughputEstimates(t *testing.T) {
	ctx := NewContext()
	ctx.SetTargetCtx(fakeTargetCtx{name: "tofino", pps: 1000})
	ctx.SetTargetCtx(fakeTargetCtx{name: "x86", pps: 100})
	ctx.UpdateTrafficFractions("", "tofino", 0.8)
	ctx.UpdateTrafficFractions("", "x86", 0.2)
	ctx.UpdateThroughputEstimates()
	want := 1000*0.8 + 100*0.2
	if got := ctx.EstimatePPS(); got != want {
		t.Errorf("EstimatePPS: expected %v, actual %v", want, got)
	}
}

//********************************************************************************************

func TestCloneIsIndependent(t *testing.T) {
	ctx := NewContext()
	ctx.Place("map0", Decision{Target: "tofino", Kind: "simple_table"})
	clone := ctx.Clone()
	clone.Place("map1", Decision{Target: "x86", Kind: "host_map"})
	if ctx.AllPlaced([]ObjectAddr{"map1"}) {
		t.Errorf("mutating a clone: expected the original to be unaffected, actual it was placed")
	}
	if !clone.AllPlaced([]ObjectAddr{"map0", "map1"}) {
		t.Errorf("clone: expected both the inherited and the new placement, actual missing one")
	}
}
