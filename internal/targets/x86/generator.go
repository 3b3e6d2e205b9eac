package x86

import (
	"fmt"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/placement"
	"github.com/synapse-nf/synbdd/internal/planner"
)

const targetName = "x86"

func ctxFor(ep *planner.EP) *Ctx {
	tc, ok := ep.Context().TargetCtxOf(targetName)
	if !ok {
		c := NewCtx()
		ep.Context().SetTargetCtx(c)
		return c
	}
	return tc.(*Ctx)
}

// approxCyclesFor is a small, illustrative per-family cost table
// grounded on original_source's x86/packet_parse_cpu.h naming of
// per-call cost dimensions (not its exact cycle counts, which are
// implementation-specific and out of spec.md §1's scope).
var approxCyclesFor = map[string]int{
	"map_get": 40, "map_put": 45, "map_erase": 40,
	"vector_borrow": 10, "vector_return": 10,
	"dchain_allocate_new_index": 30, "dchain_free_index": 20, "dchain_rejuvenate_index": 20,
	"sketch_touch_buckets": 60, "sketch_expire": 80, "sketch_refresh": 60, "sketch_fetch": 50, "sketch_compute_hashes": 70,
	"packet_borrow_next_chunk": 15, "packet_return_chunk": 10,
}

// PassthroughGenerator realises any library call not claimed by a
// higher-priority target generator as a plain CPU-side call (spec.md
// §4.5's Driver tries every generator registered for the current
// platform, so on x86 this candidate sits beside any more specific one
// for the same call, such as PacketParseCPU's). It is the only generator this package ships that handles
// arbitrary, unrecognised call names, since x86 has no placement
// restrictions the way Tofino's table budget does.
type PassthroughGenerator struct{}

func Passthrough() planner.ModuleGenerator { return PassthroughGenerator{} }

func (PassthroughGenerator) Target() string { return targetName }

func (PassthroughGenerator) Generate(ep *planner.EP, next bddgraph.NodeID) []planner.Candidate {
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok || n.Kind != bddgraph.KindCall {
		return nil
	}
	cycles := approxCyclesFor[n.Call.Function]
	if cycles == 0 {
		cycles = 20 // unknown call: a conservative flat default
	}
	if objArg := bddgraph.ObjectArgName(n.Call.Function); objArg != "" {
		if slot, ok := n.Call.Arg(objArg); ok && slot.Expr != nil {
			addr := placement.ObjectAddr(slot.Expr.String())
			decision := placement.Decision{Target: targetName, Kind: "host_" + objectKind(n.Call.Function)}
			if !ep.Context().CanPlace(addr, decision) {
				return nil
			}
			ep.Context().Place(addr, decision)
		}
	}

	ep.Context().SetTargetCtx(ctxFor(ep).AddCycles(cycles))

	m := &planner.EPNode{Module: planner.Module{
		TypeTag: "passthrough", TargetTag: targetName, NextTargetTag: targetName,
		Name:      fmt.Sprintf("%s(cpu)", n.Call.Function),
		BoundNode: next,
	}}
	return []planner.Candidate{{Module: m, NewLeaves: []planner.Leaf{planner.PendingLeaf(0, n.Next)}}}
}

func objectKind(fn string) string {
	switch {
	case len(fn) >= 3 && fn[:3] == "map":
		return "map"
	case len(fn) >= 6 && fn[:6] == "vector":
		return "vector"
	case len(fn) >= 6 && fn[:6] == "dchain":
		return "dchain"
	case len(fn) >= 6 && fn[:6] == "sketch":
		return "sketch"
	default:
		return "object"
	}
}

func (PassthroughGenerator) Speculate(ep *planner.EP, next bddgraph.NodeID) (float64, bool) {
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok || n.Kind != bddgraph.KindCall {
		return 0, false
	}
	cycles := approxCyclesFor[n.Call.Function]
	if cycles == 0 {
		cycles = 20
	}
	return ctxFor(ep).AddCycles(cycles).EstimateThroughputPPS(), true
}

// PacketParseCPUGenerator realises packet_borrow_next_chunk /
// packet_return_chunk as the host-side parse step of
// original_source's x86/packet_parse_cpu.h.
type PacketParseCPUGenerator struct{}

func PacketParseCPU() planner.ModuleGenerator { return PacketParseCPUGenerator{} }

func (PacketParseCPUGenerator) Target() string { return targetName }

func (PacketParseCPUGenerator) Generate(ep *planner.EP, next bddgraph.NodeID) []planner.Candidate {
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok || n.Kind != bddgraph.KindCall {
		return nil
	}
	if n.Call.Function != "packet_borrow_next_chunk" && n.Call.Function != "packet_return_chunk" {
		return nil
	}
	ep.Context().SetTargetCtx(ctxFor(ep).AddCycles(approxCyclesFor[n.Call.Function]))
	m := &planner.EPNode{Module: planner.Module{
		TypeTag: "packet_parse_cpu", TargetTag: targetName, NextTargetTag: targetName,
		Name:      fmt.Sprintf("PacketParseCPU(%s)", n.Call.Function),
		BoundNode: next,
	}}
	return []planner.Candidate{{Module: m, NewLeaves: []planner.Leaf{planner.PendingLeaf(0, n.Next)}}}
}

func (PacketParseCPUGenerator) Speculate(ep *planner.EP, next bddgraph.NodeID) (float64, bool) {
	return 0, false
}
