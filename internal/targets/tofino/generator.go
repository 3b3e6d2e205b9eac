package tofino

import (
	"fmt"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/placement"
	"github.com/synapse-nf/synbdd/internal/planner"
)

const targetName = "tofino"

// ctxFor returns this target's Ctx from ep's placement context, creating
// one on first use.
func ctxFor(ep *planner.EP) *Ctx {
	tc, ok := ep.Context().TargetCtxOf(targetName)
	if !ok {
		c := NewCtx()
		ep.Context().SetTargetCtx(c)
		return c
	}
	return tc.(*Ctx)
}

func objectAddr(call bddgraph.CallRecord, argName string) (placement.ObjectAddr, bool) {
	slot, ok := call.Arg(argName)
	if !ok || slot.Expr == nil {
		return "", false
	}
	return placement.ObjectAddr(slot.Expr.String()), true
}

// tableGenerator implements MapLookup/VectorAccess: any single-object
// library call whose family is listed in objectFns is realised as a
// match-action table (map_get/put/erase) or a register access
// (vector_borrow/return), per spec.md §1's "programmable switch ASIC"
// and SPEC_FULL.md's restored module slice.
type tableGenerator struct {
	typeTag     planner.TypeTag
	functions   map[string]bool
	argName     string
	decisionKnd string
	srambits    int
}

// MapLookup realises map_get/map_put/map_erase as Tofino match-action
// table accesses.
func MapLookup() planner.ModuleGenerator {
	return &tableGenerator{
		typeTag:     "table_lookup",
		functions:   map[string]bool{"map_get": true, "map_put": true, "map_erase": true},
		argName:     "map",
		decisionKnd: "simple_table",
		srambits:    64 * 1024,
	}
}

// VectorAccess realises vector_borrow/vector_return as register-backed
// table accesses.
func VectorAccess() planner.ModuleGenerator {
	return &tableGenerator{
		typeTag:     "vector_access",
		functions:   map[string]bool{"vector_borrow": true, "vector_return": true},
		argName:     "vector",
		decisionKnd: "register_array",
		srambits:    16 * 1024,
	}
}

func (g *tableGenerator) Target() string { return targetName }

func (g *tableGenerator) Generate(ep *planner.EP, next bddgraph.NodeID) []planner.Candidate {
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok || n.Kind != bddgraph.KindCall || !g.functions[n.Call.Function] {
		return nil
	}
	addr, ok := objectAddr(n.Call, g.argName)
	if !ok {
		return nil
	}
	decision := placement.Decision{Target: targetName, Kind: g.decisionKnd}
	if !ep.Context().CanPlace(addr, decision) {
		return nil // already placed elsewhere: not this generator's candidate to propose
	}

	tc := ctxFor(ep)
	newCtx, ok := tc.AddTable(g.srambits)
	if !ok {
		return nil // stage/SRAM budget exhausted
	}

	ep.Context().Place(addr, decision)
	ep.Context().SetTargetCtx(newCtx)

	m := &planner.EPNode{Module: planner.Module{
		TypeTag: g.typeTag, TargetTag: targetName, NextTargetTag: targetName,
		Name:      fmt.Sprintf("%s(%s)", n.Call.Function, addr),
		BoundNode: next,
	}}
	return []planner.Candidate{{Module: m, NewLeaves: []planner.Leaf{planner.PendingLeaf(0, n.Next)}}}
}

func (g *tableGenerator) Speculate(ep *planner.EP, next bddgraph.NodeID) (float64, bool) {
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok || n.Kind != bddgraph.KindCall || !g.functions[n.Call.Function] {
		return 0, false
	}
	if newCtx, ok := ctxFor(ep).AddTable(g.srambits); ok {
		return newCtx.EstimateThroughputPPS(), true
	}
	return 0, true
}

// ForwardGenerator realises a terminal Route's forward/drop/broadcast
// decision as an entry-port remap (spec.md §3.3 RouteOp); it never
// competes for stage/SRAM budget since port remaps are free on a
// match-action pipeline's last stage in this model.
type ForwardGenerator struct{}

func Forward() planner.ModuleGenerator { return ForwardGenerator{} }

func (ForwardGenerator) Target() string { return targetName }

func (ForwardGenerator) Generate(ep *planner.EP, next bddgraph.NodeID) []planner.Candidate {
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok || n.Kind != bddgraph.KindRoute {
		return nil
	}
	m := &planner.EPNode{Module: planner.Module{
		TypeTag: "forward", TargetTag: targetName, NextTargetTag: targetName,
		Name:      fmt.Sprintf("Forward(%s)", n.Route.Op),
		BoundNode: next,
	}}
	return []planner.Candidate{{Module: m, NewLeaves: []planner.Leaf{planner.TerminalLeaf(0)}}}
}

func (ForwardGenerator) Speculate(ep *planner.EP, next bddgraph.NodeID) (float64, bool) {
	return 0, false
}

// SendToControllerGenerator hands any remaining call off to the control
// CPU when no Tofino-side generator claims it, mirroring
// send_to_controller.h's role as the ASIC's fallback path (SPEC_FULL.md
// Targets). NextTargetTag is "x86" so EP.ProcessLeaf's cross-target
// rule pushes the resulting leaf to the back of the frontier (spec.md
// §4.5).
type SendToControllerGenerator struct{}

func SendToController() planner.ModuleGenerator { return SendToControllerGenerator{} }

func (SendToControllerGenerator) Target() string { return targetName }

func (SendToControllerGenerator) Generate(ep *planner.EP, next bddgraph.NodeID) []planner.Candidate {
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok || n.Kind != bddgraph.KindCall {
		return nil
	}
	m := &planner.EPNode{Module: planner.Module{
		TypeTag: "send_to_controller", TargetTag: targetName, NextTargetTag: "x86",
		Name:      fmt.Sprintf("SendToController(%s)", n.Call.Function),
		BoundNode: next,
	}}
	return []planner.Candidate{{Module: m, NewLeaves: []planner.Leaf{planner.PendingLeaf(0, n.Next)}}}
}

func (SendToControllerGenerator) Speculate(ep *planner.EP, next bddgraph.NodeID) (float64, bool) {
	return 0, false
}
