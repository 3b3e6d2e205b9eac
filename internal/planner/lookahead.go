package planner

import "github.com/synapse-nf/synbdd/internal/bddgraph"

// maxSpeculationDepth bounds the greedy lookahead walk per leaf so a long
// call chain cannot make scoring one EP (Driver.speculate, run before
// each push onto the open set) an unbounded scan; the
// BDD is a DAG so the walk would terminate on its own, but the cap keeps
// the cost of scoring one EP proportional regardless of BDD size.
const maxSpeculationDepth = 64

// speculate implements spec.md §4.4's speculation_pps: from every active
// leaf, greedily advance via the module generator (within that leaf's
// current target) that maximises per-generator speculation, accumulating
// constraints along any Branch encountered, then report the throughput
// estimate of the resulting hypothetical context. It mutates neither ep
// nor any of its EPNodes: everything happens on a scratch clone whose
// context is discarded once the scalar is read back.
func (d *Driver) speculate(ep *EP) float64 {
	scratch := ep.Clone()
	for _, leaf := range ep.Leaves() {
		if !leaf.HasNext {
			continue
		}
		d.speculateWalk(scratch, ep.PlatformOf(leaf, d.InitialTarget), leaf.NextBDDNode)
	}
	scratch.Context().UpdateThroughputEstimates()
	return scratch.Context().EstimatePPS()
}

// speculateWalk advances scratch's context greedily from (platform, node)
// until no generator claims the current node, a leaf terminates, or
// maxSpeculationDepth is reached.
func (d *Driver) speculateWalk(scratch *EP, platform string, node bddgraph.NodeID) {
	var branchSeq uint64 // synthetic EPNodeIDs for Branch constraints recorded on the scratch context only
	for i := 0; i < maxSpeculationDepth; i++ {
		target, ok := d.targetByName(platform)
		if !ok {
			return
		}
		cands, ok := bestGenerator(scratch, target, node)
		if !ok {
			return // no generator claims this node: the lookahead stops here
		}
		cand := cands[0]
		if len(cand.NewLeaves) == 0 {
			return // terminal module with no further leaves
		}
		if cand.Split != nil && len(cand.NewLeaves) == 2 {
			branchSeq++
			scratch.Context().UpdateConstraintsPerNode(branchSeq, cand.Split.TrueConstraints)
			branchSeq++
			scratch.Context().UpdateConstraintsPerNode(branchSeq, cand.Split.FalseConstraints)
		}
		next := cand.NewLeaves[0]
		if !next.HasNext {
			return
		}
		platform, node = cand.Module.Module.NextTargetTag, next.NextBDDNode
	}
}

// bestGenerator picks, among target's generators, the one whose Speculate
// reports the highest hypothetical throughput for node, then commits that
// choice via a real Generate call. If the top-ranked generator's Generate
// turns out to produce nothing (e.g. a placement conflict Speculate did
// not itself check), or no generator offered a speculation score at all,
// it falls back to the fixed registration order (spec.md §5 "generators
// are invoked in a fixed order per target"), returning the first
// generator whose Generate actually proposes something.
func bestGenerator(scratch *EP, target Target, node bddgraph.NodeID) ([]Candidate, bool) {
	bestIdx := -1
	var bestPPS float64
	for i, gen := range target.Generators {
		if pps, ok := gen.Speculate(scratch, node); ok {
			if bestIdx == -1 || pps > bestPPS {
				bestIdx, bestPPS = i, pps
			}
		}
	}
	if bestIdx != -1 {
		if cands := target.Generators[bestIdx].Generate(scratch, node); len(cands) > 0 {
			return cands, true
		}
	}
	for _, gen := range target.Generators {
		if cands := gen.Generate(scratch, node); len(cands) > 0 {
			return cands, true
		}
	}
	return nil, false
}
