package planner

import "github.com/synapse-nf/synbdd/internal/bddgraph"

// EPNodeID identifies a node within a single EP's tree, assigned by the
// owning EP (EP.nextID), distinct from bddgraph.NodeID (spec.md §3.6).
type EPNodeID uint64

// EPNode is (id, module, prev, children) per spec.md §3.6. EPNodes are
// created by module generators and, apart from the Children list that
// EP.ProcessLeaf extends as children are inserted, never mutated after
// insertion: cloning an EP produces a new tree (clone.go) rather than mutating
// shared nodes, mirroring bddgraph's own "mutate only via clone" rule
// for BDD nodes (Clone in bddgraph/clone.go).
type EPNode struct {
	ID       EPNodeID
	Module   Module
	Prev     EPNodeID // 0 means "this is the EP's root"
	Children []EPNodeID
}

// Leaf is an EP frontier entry: (ep_node, next_bdd_node) per spec.md
// §3.6. EPNode is 0 only before the root is grown; HasNext is false
// exactly when this leaf is terminal (no more BDD to process).
//
// Reserved holds an EPNodeID pre-allocated by the producing Branch
// module's ProcessLeaf call, so that the constraint set computed for
// this side of the branch (spec.md §4.5: "updates constraints_per_node
// for the two sides of any produced Branch module") can be keyed by the
// id this leaf's own eventual EPNode will receive, before that node
// exists. Zero means "no reservation, allocate normally."
type Leaf struct {
	EPNode      EPNodeID
	NextBDDNode bddgraph.NodeID
	HasNext     bool
	Reserved    EPNodeID
}

// TerminalLeaf returns a leaf with no next BDD node to process.
func TerminalLeaf(epNode EPNodeID) Leaf {
	return Leaf{EPNode: epNode}
}

// PendingLeaf returns a leaf whose frontier still has next to process.
func PendingLeaf(epNode EPNodeID, next bddgraph.NodeID) Leaf {
	return Leaf{EPNode: epNode, NextBDDNode: next, HasNext: true}
}
