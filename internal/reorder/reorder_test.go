package reorder

import (
	"testing"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

func newOracle() *expr.Oracle {
	return expr.New(expr.NewSyntacticBackend(), nil)
}

// buildKeyedChain builds:
//
//	generator(hash_obj) -> branch(cond) -true-> filler(hash32) -> between(map_get map=M key=bKey) -> candidate(map_put map=M key=xKey) -> route(FWD,1)
//	                                   -false-> route(Drop)
//
// With branch as the anchor, the RW check's window (every node strictly
// between the anchor and candidate, see Checker.between) holds filler and
// the map_get, so the map_get participates in the RW check against
// candidate. Returns the bdd plus the
// branch/filler/candidate ids (filler is what CandidateFollowsAnchor tests
// pass as "already next").
func buildKeyedChain(bKey, xKey *expr.Expr) (*bddgraph.BDD, bddgraph.NodeID, bddgraph.NodeID, bddgraph.NodeID) {
	bl := bddgraph.NewBuilder()
	route := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteFWD, DstPort: 1}, expr.NewConstraintSet())
	mapConst := expr.Const(1, 32)
	candidate := bl.AddCall(bddgraph.CallRecord{
		Function: "map_put",
		Args: map[string]bddgraph.ArgSlot{
			"map": {Expr: mapConst},
			"key": {In: xKey},
		},
	}, nil, route, expr.NewConstraintSet())
	between := bl.AddCall(bddgraph.CallRecord{
		Function: "map_get",
		Args: map[string]bddgraph.ArgSlot{
			"map": {Expr: mapConst},
			"key": {In: bKey},
		},
	}, nil, candidate, expr.NewConstraintSet())
	filler := bl.AddCall(bddgraph.CallRecord{Function: "hash32"}, nil, between, expr.NewConstraintSet())
	falseRoute := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteDrop}, expr.NewConstraintSet())
	branch := bl.AddBranch(expr.Const(1, 1), filler, falseRoute, expr.NewConstraintSet())

	// A generator call upstream of branch makes key_source available to the
	// IO check regardless of whether bKey/xKey actually read from it.
	keySourceArr := expr.NewArray("key_source", 4, 2, 32)
	sym := expr.Symbol{BaseTag: "key_source", Array: keySourceArr, Read: expr.Read(keySourceArr, expr.Const(0, 2))}
	generator := bl.AddCall(bddgraph.CallRecord{Function: "hash_obj"}, []expr.Symbol{sym}, branch, expr.NewConstraintSet())

	bdd := bl.BDD()
	bdd.SetRoot(generator)
	return bdd, branch, filler, candidate
}

func TestStatusOKOnlyForValid(t *testing.T) {
	if !Valid.OK() {
		t.Error("Valid.OK() should be true")
	}
	for _, s := range []Status{UnreachableCandidate, CandidateFollowsAnchor, IOCheckFailed, NotAllowed, RWCheckFailed, ImpossibleCondition, ConflictingRouting} {
		if s.OK() {
			t.Errorf("%v.OK() should be false", s)
		}
		if s.String() == "UNKNOWN_STATUS" {
			t.Errorf("status %d missing a String() case", s)
		}
	}
}

func TestCheckRejectsUnreachableCandidate(t *testing.T) {
	bdd, branch, _, _ := buildKeyedChain(expr.Const(5, 32), expr.Const(5, 32))
	checker := NewChecker(bdd, newOracle(), nil)
	v := checker.Check(Anchor{Node: branch, Direction: true}, bddgraph.NodeID(9999), true)
	if v.Status != UnreachableCandidate {
		t.Errorf("Check on a nonexistent node = %v, want UnreachableCandidate", v.Status)
	}
}

func TestCheckRejectsCandidateAlreadyNext(t *testing.T) {
	bdd, branch, between, _ := buildKeyedChain(expr.Const(5, 32), expr.Const(5, 32))
	checker := NewChecker(bdd, newOracle(), nil)
	v := checker.Check(Anchor{Node: branch, Direction: true}, between, true)
	if v.Status != CandidateFollowsAnchor {
		t.Errorf("Check(candidate==anchorNext) = %v, want CandidateFollowsAnchor", v.Status)
	}
}

func TestCheckRejectsNonReorderablePolicy(t *testing.T) {
	bl := bddgraph.NewBuilder()
	route := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteFWD, DstPort: 1}, expr.NewConstraintSet())
	candidate := bl.AddCall(bddgraph.CallRecord{Function: "packet_return_chunk"}, nil, route, expr.NewConstraintSet())
	between := bl.AddCall(bddgraph.CallRecord{Function: "hash32"}, nil, candidate, expr.NewConstraintSet())
	anchorCall := bl.AddCall(bddgraph.CallRecord{Function: "hash_obj"}, nil, between, expr.NewConstraintSet())
	bdd := bl.BDD()
	bdd.SetRoot(anchorCall)

	checker := NewChecker(bdd, newOracle(), nil)
	v := checker.Check(Anchor{Node: anchorCall, Direction: true}, candidate, true)
	if v.Status != NotAllowed {
		t.Errorf("Check(packet_return_chunk) = %v, want NotAllowed", v.Status)
	}
}

func TestCheckRWFailsOnSameObjectSameKey(t *testing.T) {
	k := expr.Const(5, 32)
	bdd, branch, _, candidate := buildKeyedChain(k, k)
	checker := NewChecker(bdd, newOracle(), nil)
	v := checker.Check(Anchor{Node: branch, Direction: true}, candidate, true)
	if v.Status != RWCheckFailed {
		t.Errorf("Check(same map, same key) = %v, want RWCheckFailed", v.Status)
	}
}

func TestCheckCommutesOnDifferentKey(t *testing.T) {
	bdd, branch, _, candidate := buildKeyedChain(expr.Const(5, 32), expr.Const(9, 32))
	checker := NewChecker(bdd, newOracle(), nil)
	v := checker.Check(Anchor{Node: branch, Direction: true}, candidate, true)
	if v.Status != Valid {
		t.Fatalf("Check(different constant keys) = %v, want Valid", v.Status)
	}
	if v.Guard != nil {
		t.Error("provably-different keys should commute unconditionally, no guard")
	}
}

func TestCheckProducesGuardOnUndecidableKey(t *testing.T) {
	arr := expr.NewArray("key_source", 4, 2, 32)
	bKey := expr.Read(arr, expr.Const(0, 2))
	xKey := expr.Read(arr, expr.Const(1, 2))
	bdd, branch, _, candidate := buildKeyedChain(bKey, xKey)
	checker := NewChecker(bdd, newOracle(), nil)
	v := checker.Check(Anchor{Node: branch, Direction: true}, candidate, true)
	if v.Status != Valid {
		t.Fatalf("Check(undecidable keys) = %v, want Valid", v.Status)
	}
	if v.Guard == nil {
		t.Error("undecidable same-object keys should produce a non-nil guard")
	}
}

func TestCheckIOFailsOnUnavailableSymbol(t *testing.T) {
	arr := expr.NewArray("not_yet_generated", 4, 2, 8)
	bl := bddgraph.NewBuilder()
	route := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteFWD, DstPort: 1}, expr.NewConstraintSet())
	candidate := bl.AddBranch(expr.Eq(expr.Read(arr, expr.Const(0, 2)), expr.Const(1, 8)), route, route, expr.NewConstraintSet())
	between := bl.AddCall(bddgraph.CallRecord{Function: "hash32"}, nil, candidate, expr.NewConstraintSet())
	anchorCall := bl.AddCall(bddgraph.CallRecord{Function: "hash_obj"}, nil, between, expr.NewConstraintSet())
	bdd := bl.BDD()
	bdd.SetRoot(anchorCall)

	checker := NewChecker(bdd, newOracle(), nil)
	v := checker.Check(Anchor{Node: anchorCall, Direction: true}, candidate, true)
	if v.Status != IOCheckFailed {
		t.Errorf("Check(referencing an ungenerated symbol) = %v, want IOCheckFailed", v.Status)
	}
}

func TestFindSiblingsMatchesEqualRoutes(t *testing.T) {
	bl := bddgraph.NewBuilder()
	sibling := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteFWD, DstPort: 2}, expr.NewConstraintSet())
	other := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteDrop}, expr.NewConstraintSet())
	branch := bl.AddBranch(expr.Const(1, 1), sibling, other, expr.NewConstraintSet())
	bdd := bl.BDD()
	bdd.SetRoot(branch)

	target := bdd.MustGet(sibling)
	siblings := FindSiblings(bdd, newOracle(), branch, target)
	found := false
	for _, s := range siblings {
		if s == sibling {
			found = true
		}
	}
	if !found {
		t.Errorf("FindSiblings did not find the matching route, got %v", siblings)
	}
}

func TestGetReorderOpsFindsValidCandidate(t *testing.T) {
	bdd, branch, _, _ := buildKeyedChain(expr.Const(5, 32), expr.Const(9, 32))
	ops := GetReorderOps(bdd, newOracle(), Anchor{Node: branch, Direction: true}, true)
	if len(ops) == 0 {
		t.Fatal("GetReorderOps found no legal candidate along a chain with a commuting call")
	}
	for _, c := range ops {
		if !c.Verdict.Status.OK() {
			t.Errorf("GetReorderOps returned a non-VALID candidate %v: %v", c.Node, c.Verdict.Status)
		}
	}
}

func TestReorderProducesRewrittenBDDs(t *testing.T) {
	bdd, branch, _, _ := buildKeyedChain(expr.Const(5, 32), expr.Const(9, 32))
	results := Reorder(bdd, newOracle(), branch, nil)
	if len(results) == 0 {
		t.Fatal("Reorder produced no candidate BDDs for a legal move")
	}
	for _, r := range results {
		if err := r.Assert(); err != nil {
			t.Errorf("a rewritten BDD failed integrity check: %v", err)
		}
	}
}

func TestRewritePlacesCandidateImmediatelyAfterAnchor(t *testing.T) {
	bdd, branch, _, candidate := buildKeyedChain(expr.Const(5, 32), expr.Const(9, 32))
	o := newOracle()
	checker := NewChecker(bdd, o, nil)
	anchor := Anchor{Node: branch, Direction: true}
	v := checker.Check(anchor, candidate, true)
	if v.Status != Valid {
		t.Fatalf("setup: expected a legal candidate, got %v", v.Status)
	}
	rewritten, err := Rewrite(bdd, o, anchor, candidate, v)
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if err := rewritten.Assert(); err != nil {
		t.Fatalf("rewritten BDD failed integrity check: %v", err)
	}
	branchNode := rewritten.MustGet(rewritten.MustGet(rewritten.Root()).Next)
	moved := rewritten.MustGet(branchNode.OnTrue)
	if moved.Kind != bddgraph.KindCall || moved.Call.Function != "map_put" {
		t.Errorf("expected map_put spliced directly after the anchor, got %v", moved.Call.Function)
	}
	if bdd.MustGet(branch).OnTrue == branchNode.OnTrue {
		t.Error("Rewrite should operate on a clone, leaving the source BDD's ids untouched")
	}
}

func TestRewriteRejectsNonValidVerdict(t *testing.T) {
	bdd, branch, _, candidate := buildKeyedChain(expr.Const(5, 32), expr.Const(5, 32))
	o := newOracle()
	_, err := Rewrite(bdd, o, Anchor{Node: branch, Direction: true}, candidate, Verdict{Status: RWCheckFailed})
	if err == nil {
		t.Error("Rewrite should reject a non-VALID verdict")
	}
}

func TestEstimateReorderRespectsCap(t *testing.T) {
	bdd, _, _, _ := buildKeyedChain(expr.Const(5, 32), expr.Const(9, 32))
	n := EstimateReorder(bdd, newOracle(), 1, nil)
	if n > 1 {
		t.Errorf("EstimateReorder(cap=1) = %d, want <= 1", n)
	}
}

func TestIgnoreChecksumModificationsDropsChecksumWrites(t *testing.T) {
	bdd, _, _, candidate := buildKeyedChain(expr.Const(5, 32), expr.Const(9, 32))
	checksumArr := expr.NewArray("ipv4_checksum", 1, 1, 8)
	checksumCall := bdd.MustGet(candidate)
	checksumCall.Call.Args["out"] = bddgraph.ArgSlot{Out: expr.Read(checksumArr, expr.Const(0, 1))}

	candidates := []Candidate{{Node: candidate, Verdict: Verdict{Status: Valid}}}
	filtered := IgnoreChecksumModifications(bdd, newOracle(), candidates)
	for _, c := range filtered {
		if c.Node == candidate {
			t.Error("IgnoreChecksumModifications should have dropped the single-byte checksum write")
		}
	}
}

func TestIgnoreChecksumModificationsKeepsUnrelatedWrites(t *testing.T) {
	bdd, _, _, candidate := buildKeyedChain(expr.Const(5, 32), expr.Const(9, 32))
	candidates := []Candidate{{Node: candidate, Verdict: Verdict{Status: Valid}}}
	filtered := IgnoreChecksumModifications(bdd, newOracle(), candidates)
	if len(filtered) != 1 {
		t.Errorf("IgnoreChecksumModifications dropped a non-checksum write, got %v", filtered)
	}
}
