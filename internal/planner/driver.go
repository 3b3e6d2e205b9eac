package planner

import (
	"go.uber.org/zap"
)

// Driver runs the execution-plan search loop of spec.md §4.5 verbatim.
type Driver struct {
	Targets        []Target
	InitialTarget  string
	Log            *zap.SugaredLogger
	nextEPID       EPID
}

// NewDriver builds a Driver over the given targets, starting search on
// initialTarget.
func NewDriver(targets []Target, initialTarget string, log *zap.SugaredLogger) *Driver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Driver{Targets: targets, InitialTarget: initialTarget, Log: log}
}

func (d *Driver) allocEPID() EPID {
	d.nextEPID++
	return d.nextEPID
}

func (d *Driver) targetByName(name string) (Target, bool) {
	for _, t := range d.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}

// Run executes the driver loop and returns the first completed EP found
// (spec.md §4.5: "best ← ep" on the first EP with no remaining leaves).
// Search continues until the open set is exhausted or a terminal EP is
// found; callers that want an exhaustive search over all completions
// should use RunAll instead.
func (d *Driver) Run(initial *EP) *EP {
	var best *EP
	d.runLoop(initial, func(ep *EP) bool {
		best = ep
		return false // stop at first completion
	})
	return best
}

// RunAll exhaustively drains the open set, invoking onComplete for every
// EP the search reaches with no remaining leaves. onComplete returning
// false stops the search early.
func (d *Driver) RunAll(initial *EP, onComplete func(*EP) bool) {
	d.runLoop(initial, onComplete)
}

func (d *Driver) runLoop(initial *EP, onComplete func(*EP) bool) {
	open := newOpenQueue()
	initial = initial.WithID(d.allocEPID())
	open.push(initial)

	for open.Len() > 0 {
		ep := open.popBest()

		leaf, ok := ep.ActiveLeaf()
		if !ok {
			if !onComplete(ep) {
				return
			}
			continue
		}
		if !leaf.HasNext {
			// Terminal leaf: spec.md §4.5 "if leaf.next is None ... else:
			// continue (already handled by processing remaining leaves)".
			// Drop this leaf and requeue the same EP so its remaining
			// leaves (if any) get their turn; when none remain the next
			// pop reports ep.Done() above.
			ep.removeLeaf(leaf)
			open.push(ep)
			continue
		}

		platform := ep.CurrentPlatform(d.InitialTarget)
		target, ok := d.targetByName(platform)
		if !ok {
			d.Log.Warnw("planner: no generators registered for target", "target", platform)
			continue
		}

		for _, gen := range target.Generators {
			// Each generator gets its own clone of ep: tableGenerator and
			// the x86 generators call ep.Context().Place/SetTargetCtx
			// directly inside Generate (see ctxFor in
			// internal/targets/{tofino,x86}/generator.go), so invoking two
			// generators against the same shared ep would let the second
			// one's clone inherit the first's placement/resource-tally
			// mutations even though the two candidates are meant to be
			// independent branches of the search (spec.md §3.6, §5 "no
			// shared mutable state between EP candidates").
			candEP := ep.Clone()
			for _, cand := range gen.Generate(candEP, leaf.NextBDDNode) {
				next := cand.NewEP
				if next == nil {
					// Clone again per candidate: a generator proposing more
					// than one candidate from a single Generate call must
					// not have them share the mutations already applied to
					// candEP going forward from here.
					next = candEP.Clone()
				}
				next.ProcessLeaf(leaf, cand.Module, cand.NewLeaves, cand.Split)
				next.Context().UpdateThroughputEstimates()
				next.Context().SetSpeculationPPS(d.speculate(next))
				next = next.WithID(d.allocEPID())
				open.push(next)
			}
		}
	}
}
