// Package planner implements the execution-plan search of spec.md
// §3.6/§4.5: a tree of EPNodes grown by target-specific module
// generators over a bddgraph.BDD, scored with speculation and searched
// best-first with a deterministic priority queue.
package planner

import "github.com/synapse-nf/synbdd/internal/bddgraph"

// TypeTag discriminates a module's operational kind (a match-action
// table lookup, a packet-parse call, a branch, ...). Each
// internal/targets package defines its own tags; planner only ever
// compares them by equality.
type TypeTag string

// Module carries the common fields of every target-specific module kind
// (spec.md §3.6: "single Module struct, sum type via a Kind field" per
// the Design Notes' inheritance-to-sum-type guidance). TypeTag and the
// two target tags play the role the Design Notes assign to a Kind
// field; there is deliberately no further per-kind payload field here
// because, unlike bddgraph.Node, a module's only state beyond its tags
// is which BDD node it realises.
type Module struct {
	TypeTag       TypeTag
	TargetTag     string // the target this module executes on
	NextTargetTag string // the target the *next* module (if any) executes on
	Name          string // human-readable, e.g. "MapLookup(map0)"
	BoundNode     bddgraph.NodeID
}

// BranchModule is a module kind that produces two EPNode children
// (then/else), per spec.md §3.6 ("Branch-like modules have two
// children"). Target packages build one with NewBranchModule rather than
// a plain Module.
type BranchModule struct {
	Module
	OnTrueNext  bddgraph.NodeID
	OnFalseNext bddgraph.NodeID
}

// NewBranchModule is a convenience constructor mirroring Module's field
// order.
func NewBranchModule(m Module, onTrue, onFalse bddgraph.NodeID) BranchModule {
	return BranchModule{Module: m, OnTrueNext: onTrue, OnFalseNext: onFalse}
}
