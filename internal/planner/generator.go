package planner

import "github.com/synapse-nf/synbdd/internal/bddgraph"

// Candidate is one (new_ep, new_module, new_leaves) triple returned by a
// ModuleGenerator (spec.md §4.5 "Module generator contract"). NewEP is
// nil when the generator extends the EP passed to Generate in place
// (the common case); a generator only returns a distinct NewEP when it
// must branch the search itself (e.g. two generators proposing
// incompatible reorderings of the same BDD node) rather than leaving the
// branching to the Driver's loop, which already tries every generator
// independently.
type Candidate struct {
	NewEP     *EP
	Module    *EPNode
	NewLeaves []Leaf

	// Split is non-nil when Module is a Branch module, carrying the two
	// constraint sets process_leaf must record for its then/else sides
	// (spec.md §4.5, see EP.ProcessLeaf/BranchSplit).
	Split *BranchSplit
}

// ModuleGenerator is a per-target factory proposing EP extensions for a
// given BDD node (spec.md §3.6 Glossary, §4.5). The Driver always calls
// Generate with a private clone of the EP it popped (see
// Driver.runLoop), so a generator is free to record its placement and
// resource-tally decisions directly on ep.Context(); those mutations
// never escape to a sibling candidate or to the EP the Driver popped.
// Generate returns fresh Candidates for the Driver to install via
// EP.ProcessLeaf.
type ModuleGenerator interface {
	// Target names the target this generator produces modules for.
	Target() string
	// Generate returns zero or more candidate extensions of ep at next.
	Generate(ep *EP, next bddgraph.NodeID) []Candidate
	// Speculate optionally returns the estimated throughput of a
	// hypothetical post-module context, for lookahead scoring without
	// materialising an EP (spec.md §4.5). A
	// generator with no meaningful speculation returns ok=false.
	Speculate(ep *EP, next bddgraph.NodeID) (speculatedEstimatePPS float64, ok bool)
}

// Target bundles a target's name with the generator set the Driver tries
// for it (generators may come from several internal/targets packages),
// per SPEC_FULL.md's "each target's generator set" framing.
type Target struct {
	Name       string
	Generators []ModuleGenerator
}
