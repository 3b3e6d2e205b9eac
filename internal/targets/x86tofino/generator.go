// Package x86tofino implements the cross-target boundary modules of
// SPEC_FULL.md's Targets section: shared current-time, ignore, and
// forward-through-tofino handoffs that appear where control flow crosses
// between the switch ASIC and the host CPU, grounded on
// original_source's x86_tofino/{current_time,ignore,forward_through_tofino}.h.
// These exist specifically to exercise the cross-target leaf-ordering
// rule of spec.md §4.5 (a leaf whose next module changes target goes to
// the back of the frontier).
package x86tofino

import (
	"fmt"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/planner"
)

// CurrentTimeGenerator realises a read of the BDD's distinguished time
// symbol as a shared module runnable on either target; it always
// declares its successor on the *other* target from where it itself
// ran, so the Driver is forced to alternate — modelling the original's
// framing of current_time.h as a boundary module.
type CurrentTimeGenerator struct {
	From, To string
}

func CurrentTime(from, to string) planner.ModuleGenerator {
	return CurrentTimeGenerator{From: from, To: to}
}

func (g CurrentTimeGenerator) Target() string { return g.From }

func (g CurrentTimeGenerator) Generate(ep *planner.EP, next bddgraph.NodeID) []planner.Candidate {
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok || n.Kind != bddgraph.KindCall || n.Call.Function != "current_time" {
		return nil
	}
	m := &planner.EPNode{Module: planner.Module{
		TypeTag: "current_time", TargetTag: g.From, NextTargetTag: g.To,
		Name:      "CurrentTime",
		BoundNode: next,
	}}
	return []planner.Candidate{{Module: m, NewLeaves: []planner.Leaf{planner.PendingLeaf(0, n.Next)}}}
}

func (g CurrentTimeGenerator) Speculate(ep *planner.EP, next bddgraph.NodeID) (float64, bool) {
	return 0, false
}

// IgnoreGenerator drops a call whose result nothing downstream reads
// (original's ignore.h), staying on the same target.
type IgnoreGenerator struct {
	TargetName       string
	IgnoredNames map[string]bool
}

func Ignore(target string, ignoredNames ...string) planner.ModuleGenerator {
	set := map[string]bool{}
	for _, n := range ignoredNames {
		set[n] = true
	}
	return IgnoreGenerator{TargetName: target, IgnoredNames: set}
}

func (g IgnoreGenerator) Target() string { return g.TargetName }

func (g IgnoreGenerator) Generate(ep *planner.EP, next bddgraph.NodeID) []planner.Candidate {
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok || n.Kind != bddgraph.KindCall || !g.IgnoredNames[n.Call.Function] {
		return nil
	}
	m := &planner.EPNode{Module: planner.Module{
		TypeTag: "ignore", TargetTag: g.TargetName, NextTargetTag: g.TargetName,
		Name:      fmt.Sprintf("Ignore(%s)", n.Call.Function),
		BoundNode: next,
	}}
	return []planner.Candidate{{Module: m, NewLeaves: []planner.Leaf{planner.PendingLeaf(0, n.Next)}}}
}

func (g IgnoreGenerator) Speculate(ep *planner.EP, next bddgraph.NodeID) (float64, bool) {
	return 0, false
}

// ForwardThroughTofinoGenerator realises a Route reached while executing
// on the host CPU as a hand-back through the switch's forwarding plane
// (original's forward_through_tofino.h), transitioning the frontier back
// to "tofino".
type ForwardThroughTofinoGenerator struct{}

func ForwardThroughTofino() planner.ModuleGenerator { return ForwardThroughTofinoGenerator{} }

func (ForwardThroughTofinoGenerator) Target() string { return "x86" }

func (ForwardThroughTofinoGenerator) Generate(ep *planner.EP, next bddgraph.NodeID) []planner.Candidate {
	n, ok := ep.BDD().GetNodeByID(next)
	if !ok || n.Kind != bddgraph.KindRoute {
		return nil
	}
	m := &planner.EPNode{Module: planner.Module{
		TypeTag: "forward_through_tofino", TargetTag: "x86", NextTargetTag: "tofino",
		Name:      fmt.Sprintf("ForwardThroughTofino(%s)", n.Route.Op),
		BoundNode: next,
	}}
	return []planner.Candidate{{Module: m, NewLeaves: []planner.Leaf{planner.TerminalLeaf(0)}}}
}

func (ForwardThroughTofinoGenerator) Speculate(ep *planner.EP, next bddgraph.NodeID) (float64, bool) {
	return 0, false
}
