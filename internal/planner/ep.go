package planner

import (
	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
	"github.com/synapse-nf/synbdd/internal/placement"
)

// EP is a target-annotated tree of modules realising a BDD on a
// hardware/software pipeline (spec.md §3.6/§9 Glossary). It owns its
// EPNodes and frontier; it holds only a read-only reference to its BDD
// (spec.md §4.5 "Ownership": "An EP holds a shared reference to its BDD
// (readonly) and owns its EPNodes").
type EP struct {
	id EPID

	bdd *bddgraph.BDD
	ctx *placement.Context

	nodes   map[EPNodeID]*EPNode
	nextID  EPNodeID
	root    EPNodeID // 0 until the first ep_node is grown
	leaves  []Leaf   // the ordered frontier; index 0 is the active leaf
}

// EPID identifies an EP for priority-queue tie-breaking (spec.md §5:
// "ties broken by EP id ascending"). Assigned by the Driver, monotone
// increasing in creation order.
type EPID uint64

// NewEP returns the initial, empty EP for bdd (spec.md §4.5's "initial
// EP"): one pending leaf with no ep_node yet and next_bdd_node set to
// bdd's root.
func NewEP(id EPID, bdd *bddgraph.BDD, ctx *placement.Context) *EP {
	return &EP{
		id:     id,
		bdd:    bdd,
		ctx:    ctx,
		nodes:  map[EPNodeID]*EPNode{},
		leaves: []Leaf{PendingLeaf(0, bdd.Root())},
	}
}

func (ep *EP) ID() EPID                { return ep.id }
func (ep *EP) BDD() *bddgraph.BDD      { return ep.bdd }
func (ep *EP) Context() *placement.Context { return ep.ctx }
func (ep *EP) Root() EPNodeID          { return ep.root }

// Leaves returns the current frontier, active leaf first.
func (ep *EP) Leaves() []Leaf { return ep.leaves }

// ActiveLeaf returns the frontier's first entry, or ok=false if the
// frontier (and hence this EP) is fully resolved.
func (ep *EP) ActiveLeaf() (Leaf, bool) {
	if len(ep.leaves) == 0 {
		return Leaf{}, false
	}
	return ep.leaves[0], true
}

// Done reports whether this EP has no more leaves to process (spec.md
// §4.5: "if ep has no more leaves: best ← ep").
func (ep *EP) Done() bool { return len(ep.leaves) == 0 }

// GetEPNode looks up an EPNode by id.
func (ep *EP) GetEPNode(id EPNodeID) (*EPNode, bool) {
	n, ok := ep.nodes[id]
	return n, ok
}

// CurrentPlatform returns the target the next module must execute on
// (spec.md §4.5 "Current platform"): the active leaf's own EPNode's
// module.NextTargetTag if the EP already has a root, else initialTarget.
func (ep *EP) CurrentPlatform(initialTarget string) string {
	if ep.root == 0 {
		return initialTarget
	}
	active, ok := ep.ActiveLeaf()
	if !ok {
		return initialTarget
	}
	return ep.PlatformOf(active, initialTarget)
}

// PlatformOf returns the target that will execute leaf's next BDD node:
// the NextTargetTag of the module that produced leaf, or initialTarget
// if leaf has no producing EPNode yet. Used by CurrentPlatform for the
// active leaf and by the driver's speculative lookahead for every other
// leaf on the frontier (spec.md §4.4 speculation_pps).
func (ep *EP) PlatformOf(leaf Leaf, initialTarget string) string {
	if leaf.EPNode == 0 {
		return initialTarget
	}
	n, ok := ep.nodes[leaf.EPNode]
	if !ok {
		return initialTarget
	}
	return n.Module.NextTargetTag
}

// BranchSplit carries the two constraint sets process_leaf must record
// when newNode is a Branch module (spec.md §4.5): the path predicate
// active on the true side and on the false side.
type BranchSplit struct {
	TrueConstraints  *expr.ConstraintSet
	FalseConstraints *expr.ConstraintSet
}

// ProcessLeaf implements spec.md §4.5's process_leaf: appends newNode as
// a child of the consumed leaf's EPNode (or installs it as root),
// removes the consumed leaf, and inserts newLeaves — to the front if
// they stay on the same target as newNode, to the back on a cross-target
// transition. If newLeaves has exactly two entries and split is
// non-nil, newNode is treated as the Branch module those two leaves
// forked from: each leaf is given a reserved EPNodeID up front (the id
// its own eventual EPNode will receive) so that the corresponding
// constraint set can be recorded against it immediately, per spec.md's
// "updates constraints_per_node for the two sides of any produced Branch
// module".
func (ep *EP) ProcessLeaf(consumed Leaf, newNode *EPNode, newLeaves []Leaf, split *BranchSplit) {
	if consumed.Reserved != 0 {
		newNode.ID = consumed.Reserved
	} else {
		newNode.ID = ep.allocID()
	}
	if consumed.EPNode == 0 && ep.root == 0 {
		ep.root = newNode.ID
	} else if parent, ok := ep.nodes[consumed.EPNode]; ok {
		newNode.Prev = parent.ID
		parent.Children = append(parent.Children, newNode.ID)
	}
	ep.nodes[newNode.ID] = newNode
	ep.removeLeaf(consumed)

	// Whether the leaves this module produces stay on the current target
	// is exactly what NextTargetTag already declares (spec.md §4.5
	// "Current platform": "the next target declared by the active leaf's
	// module"); a cross-target transition is when that differs from the
	// target the module itself ran on.
	staysOnTarget := newNode.Module.NextTargetTag == newNode.Module.TargetTag

	var front, back []Leaf
	for i, l := range newLeaves {
		l.EPNode = newNode.ID
		if split != nil && len(newLeaves) == 2 {
			l.Reserved = ep.allocID()
			cs := split.TrueConstraints
			if i == 1 {
				cs = split.FalseConstraints
			}
			ep.ctx.UpdateConstraintsPerNode(uint64(l.Reserved), cs)
		}
		if l.HasNext && staysOnTarget {
			front = append(front, l)
		} else {
			back = append(back, l)
		}
	}
	ep.leaves = append(append(front, ep.leaves...), back...)
}

func (ep *EP) removeLeaf(consumed Leaf) {
	for i, l := range ep.leaves {
		if l == consumed {
			ep.leaves = append(ep.leaves[:i], ep.leaves[i+1:]...)
			return
		}
	}
}

func (ep *EP) allocID() EPNodeID {
	ep.nextID++
	return ep.nextID
}

// AncestorOf returns id's parent EPNode id, for use with
// placement.Context.GetNodeConstraints.
func (ep *EP) AncestorOf(id uint64) (uint64, bool) {
	n, ok := ep.nodes[EPNodeID(id)]
	if !ok || n.Prev == 0 {
		return 0, false
	}
	return uint64(n.Prev), true
}
