package bddgraph

import (
	"testing"

	"github.com/synapse-nf/synbdd/internal/expr"
)

// buildLinear builds route <- call <- branch(true->route, false->route2),
// returning the builder's BDD with root set at the branch.
func buildLinear() (*BDD, NodeID, NodeID, NodeID) {
	bl := NewBuilder()
	route := bl.AddRoute(Route{Op: RouteFWD, DstPort: 1}, expr.NewConstraintSet())
	route2 := bl.AddRoute(Route{Op: RouteDrop}, expr.NewConstraintSet())
	call := bl.AddCall(CallRecord{Function: "map_get", Args: map[string]ArgSlot{}}, nil, route, expr.NewConstraintSet())
	branch := bl.AddBranch(expr.Const(1, 1), call, route2, expr.NewConstraintSet())
	bdd := bl.BDD()
	bdd.SetRoot(branch)
	return bdd, branch, call, route
}

func TestAssertPassesOnWellFormedTree(t *testing.T) {
	bdd, _, _, _ := buildLinear()
	if err := bdd.Assert(); err != nil {
		t.Fatalf("Assert on a well-formed tree failed: %v", err)
	}
}

func TestAssertCatchesDanglingReference(t *testing.T) {
	bdd, branch, _, _ := buildLinear()
	n := bdd.MustGet(branch)
	n.OnFalse = NodeID(9999)
	if err := bdd.Assert(); err == nil {
		t.Fatal("Assert should fail on a dangling child reference")
	}
}

func TestNewNodeIDNeverRepeats(t *testing.T) {
	bdd := New()
	seen := map[NodeID]bool{}
	for i := 0; i < 10; i++ {
		id := bdd.NewNodeID()
		if seen[id] {
			t.Fatalf("NewNodeID repeated id %d", id)
		}
		seen[id] = true
	}
}

func TestAdvanceNextIDOnlyMovesForward(t *testing.T) {
	bdd := New()
	bdd.AdvanceNextID(10)
	first := bdd.NewNodeID()
	if first != 11 {
		t.Fatalf("NewNodeID after AdvanceNextID(10) = %d, want 11", first)
	}
	bdd.AdvanceNextID(5) // must not move backwards
	second := bdd.NewNodeID()
	if second != 12 {
		t.Fatalf("NewNodeID after a no-op AdvanceNextID = %d, want 12", second)
	}
}

func TestVisitNodesPreOrderAndStop(t *testing.T) {
	bdd, branch, call, route := buildLinear()
	var visited []NodeID
	bdd.VisitNodes(branch, func(n *Node, cookie interface{}) (Action, interface{}) {
		visited = append(visited, n.ID)
		if n.ID == call {
			return Stop, cookie
		}
		return VisitChildren, cookie
	}, nil)
	if len(visited) == 0 || visited[0] != branch {
		t.Fatalf("expected pre-order traversal to start at the branch, got %v", visited)
	}
	for _, id := range visited {
		if id == route {
			t.Fatal("traversal should have stopped before reaching the route beyond call")
		}
	}
}

func TestVisitNodesSkipChildren(t *testing.T) {
	bdd, branch, call, route := buildLinear()
	var visited []NodeID
	bdd.VisitNodes(branch, func(n *Node, cookie interface{}) (Action, interface{}) {
		visited = append(visited, n.ID)
		if n.ID == call {
			return SkipChildren, cookie
		}
		return VisitChildren, cookie
	}, nil)
	for _, id := range visited {
		if id == route {
			t.Fatal("SkipChildren should have prevented descending into call's successor")
		}
	}
}

func TestCloneRecursiveReassignsIDs(t *testing.T) {
	bdd, branch, _, _ := buildLinear()
	clone, ids := bdd.Clone(branch, true)
	if clone.Root() == branch {
		t.Error("recursive clone should assign new ids, not reuse the source root id")
	}
	if _, ok := ids[branch]; !ok {
		t.Error("IDMap should contain an entry for the cloned root")
	}
	if err := clone.Assert(); err != nil {
		t.Fatalf("cloned BDD failed integrity check: %v", err)
	}
}

func TestCloneNonRecursivePreservesIDs(t *testing.T) {
	bdd, branch, _, _ := buildLinear()
	clone, _ := bdd.Clone(branch, false)
	if clone.Root() != branch {
		t.Errorf("non-recursive clone root = %d, want %d", clone.Root(), branch)
	}
}

func TestCloneIsIndependentOfSource(t *testing.T) {
	bdd, branch, call, _ := buildLinear()
	clone, ids := bdd.Clone(branch, true)
	clonedCall := ids[call]
	clone.MustGet(clonedCall).Call.Function = "mutated"
	if bdd.MustGet(call).Call.Function == "mutated" {
		t.Error("mutating the clone should not affect the source BDD")
	}
}

func TestHashStableAcrossCalls(t *testing.T) {
	bdd, branch, _, _ := buildLinear()
	h1 := bdd.Hash(branch, true)
	h2 := bdd.Hash(branch, true)
	if h1 != h2 {
		t.Errorf("Hash is not stable across repeated calls: %d vs %d", h1, h2)
	}
}

func TestHashDiffersOnDifferentGraphs(t *testing.T) {
	bdd1, branch1, _, _ := buildLinear()
	bdd2, branch2, _, _ := buildLinear()
	bdd2.MustGet(branch2).Condition = expr.Const(0, 1)
	if bdd1.Hash(branch1, true) == bdd2.Hash(branch2, true) {
		t.Error("Hash should differ when a node's condition differs")
	}
}

func TestGetGeneratedSymbolsWalksPrevChain(t *testing.T) {
	arr := expr.NewArray("t", 4, 2, 8)
	sym := expr.Symbol{BaseTag: "has_key", Array: arr, Read: expr.Read(arr, expr.Const(0, 2))}

	bl := NewBuilder()
	route := bl.AddRoute(Route{Op: RouteDrop}, expr.NewConstraintSet())
	call := bl.AddCall(CallRecord{Function: "map_get"}, []expr.Symbol{sym}, route, expr.NewConstraintSet())
	bdd := bl.BDD()
	bdd.SetRoot(call)

	available := bdd.AvailableSymbolNames(route)
	if !available[sym.Name()] {
		t.Errorf("AvailableSymbolNames(route) = %v, want it to include %q", available, sym.Name())
	}
}
