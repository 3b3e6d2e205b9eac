package serial

import (
	"bytes"
	"testing"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// buildSampleBDD constructs a small BDD exercising every node kind, a
// shared symbolic array, a multi-arg call with an in/out pair and extra
// vars, and a generated symbol — enough surface to catch a round-trip
// bug in any one section of the format.
func buildSampleBDD() *bddgraph.BDD {
	arr := expr.NewArray("map0_table", 1024, 32, 8)

	bl := bddgraph.NewBuilder()

	fwd := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteFWD, DstPort: 1}, expr.NewConstraintSet())
	drop := bl.AddRoute(bddgraph.Route{Op: bddgraph.RouteDrop}, expr.NewConstraintSet())

	cond := expr.Eq(expr.Read(arr, expr.Const(3, 32)), expr.Const(7, 8))
	branch := bl.AddBranch(cond, fwd, drop, expr.NewConstraintSet(expr.Ult(expr.Const(1, 8), expr.Const(2, 8))))

	call := bddgraph.CallRecord{
		Function: "map_get",
		Args: map[string]bddgraph.ArgSlot{
			"map": {Expr: expr.Const(42, 32)},
			"key": {
				Expr: expr.Read(arr, expr.Const(5, 32)),
				In:   expr.Const(0, 8),
				Out:  expr.Const(1, 8),
				Meta: "packet_chunks[0..4]",
			},
		},
		Extra: []bddgraph.ExtraVar{
			{Name: "chain_len", Before: expr.Const(0, 16), After: expr.Const(1, 16)},
		},
		Ret: expr.Const(1, 1),
	}
	generated := []expr.Symbol{
		{BaseTag: expr.TagMapHasThisKey, Array: arr, Read: expr.Read(arr, expr.Const(5, 32))},
	}
	callNode := bl.AddCall(call, generated, branch, expr.NewConstraintSet())

	bdd := bl.BDD()
	bdd.SetRoot(callNode)
	bdd.DeviceSymbol = expr.Const(0, 8)
	bdd.PacketLenSymbol = expr.Const(64, 16)
	bdd.TimeSymbol = expr.Const(1000, 64)
	bdd.InitPrelude = []bddgraph.CallRecord{
		{
			Function: "map_allocate",
			Args: map[string]bddgraph.ArgSlot{
				"capacity": {Expr: expr.Const(1024, 32)},
				"map_out":  {Expr: expr.Const(1, 32)},
			},
			Ret: expr.Const(1, 1),
		},
	}
	return bdd
}

func TestWriteReadRoundTrip(t *testing.T) {
	bdd := buildSampleBDD()

	var buf bytes.Buffer
	if err := Write(&buf, bdd); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v\ninput:\n%s", err, buf.String())
	}

	if got.Root() != bdd.Root() {
		t.Fatalf("root id mismatch: got %d, want %d", got.Root(), bdd.Root())
	}
	if got.NodeCount() != bdd.NodeCount() {
		t.Fatalf("node count mismatch: got %d, want %d", got.NodeCount(), bdd.NodeCount())
	}
	if len(got.InitPrelude) != len(bdd.InitPrelude) {
		t.Fatalf("init prelude length mismatch: got %d, want %d", len(got.InitPrelude), len(bdd.InitPrelude))
	}

	bdd.VisitNodes(bdd.Root(), func(wantNode *bddgraph.Node, cookie interface{}) (bddgraph.Action, interface{}) {
		gotNode, ok := got.GetNodeByID(wantNode.ID)
		if !ok {
			t.Fatalf("round-tripped BDD missing node %d", wantNode.ID)
			return bddgraph.Stop, nil
		}
		if gotNode.Kind != wantNode.Kind {
			t.Fatalf("node %d kind mismatch: got %v, want %v", wantNode.ID, gotNode.Kind, wantNode.Kind)
		}
		if gotNode.Prev != wantNode.Prev {
			t.Fatalf("node %d prev mismatch: got %d, want %d", wantNode.ID, gotNode.Prev, wantNode.Prev)
		}
		switch wantNode.Kind {
		case bddgraph.KindBranch:
			if gotNode.OnTrue != wantNode.OnTrue || gotNode.OnFalse != wantNode.OnFalse {
				t.Fatalf("node %d branch children mismatch: got (%d,%d), want (%d,%d)",
					wantNode.ID, gotNode.OnTrue, gotNode.OnFalse, wantNode.OnTrue, wantNode.OnFalse)
			}
			if writeExpr(gotNode.Condition, map[string]*expr.SymbolicArray{}) != writeExpr(wantNode.Condition, map[string]*expr.SymbolicArray{}) {
				t.Fatalf("node %d condition mismatch", wantNode.ID)
			}
		case bddgraph.KindCall:
			if gotNode.Next != wantNode.Next {
				t.Fatalf("node %d call next mismatch: got %d, want %d", wantNode.ID, gotNode.Next, wantNode.Next)
			}
			if gotNode.Call.Function != wantNode.Call.Function {
				t.Fatalf("node %d call function mismatch: got %q, want %q", wantNode.ID, gotNode.Call.Function, wantNode.Call.Function)
			}
			if len(gotNode.Call.Args) != len(wantNode.Call.Args) {
				t.Fatalf("node %d call arg count mismatch: got %d, want %d", wantNode.ID, len(gotNode.Call.Args), len(wantNode.Call.Args))
			}
			if len(gotNode.GeneratedSymbol) != len(wantNode.GeneratedSymbol) {
				t.Fatalf("node %d generated symbol count mismatch: got %d, want %d",
					wantNode.ID, len(gotNode.GeneratedSymbol), len(wantNode.GeneratedSymbol))
			}
		case bddgraph.KindRoute:
			if gotNode.Route != wantNode.Route {
				t.Fatalf("node %d route mismatch: got %+v, want %+v", wantNode.ID, gotNode.Route, wantNode.Route)
			}
		}
		if len(gotNode.Constraint.Exprs()) != len(wantNode.Constraint.Exprs()) {
			t.Fatalf("node %d constraint count mismatch: got %d, want %d",
				wantNode.ID, len(gotNode.Constraint.Exprs()), len(wantNode.Constraint.Exprs()))
		}
		return bddgraph.VisitChildren, cookie
	}, nil)

	if err := got.Assert(); err != nil {
		t.Fatalf("round-tripped BDD failed integrity check: %v", err)
	}
}

func TestWriteReadEmptyBDD(t *testing.T) {
	bdd := bddgraph.New()
	bdd.DeviceSymbol = expr.Const(0, 8)
	bdd.PacketLenSymbol = expr.Const(0, 16)
	bdd.TimeSymbol = expr.Const(0, 64)

	var buf bytes.Buffer
	if err := Write(&buf, bdd); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.NodeCount() != 0 {
		t.Fatalf("expected empty BDD, got %d nodes", got.NodeCount())
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := Read(bytes.NewBufferString("not a bdd file\n"))
	if err == nil {
		t.Fatal("expected an error for a missing magic header")
	}
}
