package bddgraph

import (
	"github.com/pkg/errors"

	"github.com/synapse-nf/synbdd/internal/expr"
)

// BDD owns the node arena, the init-call prelude, and the three
// distinguished symbols (spec.md §3.3/§3.6). Like rudd's *BDD (bdd.go),
// it is the single owner of its nodes; every other component holds only
// ids or a read-only reference to the whole graph.
type BDD struct {
	nodes  map[NodeID]*Node
	nextID NodeID
	root   NodeID

	// InitPrelude is the linear list of allocator calls executed once at
	// startup (spec.md §3.3).
	InitPrelude []CallRecord

	// The three distinguished symbols (spec.md §3.3).
	DeviceSymbol    *expr.Expr
	PacketLenSymbol *expr.Expr
	TimeSymbol      *expr.Expr
}

// New returns an empty BDD. Use AddBranch/AddCall/AddRoute (builder.go) to
// populate it, mirroring the way an external loader (out of scope per
// spec.md §1) would construct one incrementally, the same shape as
// rudd's New followed by incremental makenode calls.
func New() *BDD {
	return &BDD{nodes: make(map[NodeID]*Node)}
}

// Root returns the id of the BDD's root node.
func (b *BDD) Root() NodeID { return b.root }

// SetRoot sets the root node id.
func (b *BDD) SetRoot(id NodeID) { b.root = id }

// GetNodeByID returns the node for id, or (nil, false) if absent
// (spec.md §4.2).
func (b *BDD) GetNodeByID(id NodeID) (*Node, bool) {
	n, ok := b.nodes[id]
	return n, ok
}

// MustGet panics if id is not present; reserved for call sites that have
// already validated id through the integrity pass (Assert).
func (b *BDD) MustGet(id NodeID) *Node {
	n, ok := b.nodes[id]
	if !ok {
		panic(errors.Errorf("bddgraph: no such node id %d", id))
	}
	return n
}

// NodeCount returns the number of live nodes in the arena.
func (b *BDD) NodeCount() int { return len(b.nodes) }

// NewNodeID allocates and returns a fresh, unused node id in b's arena.
// Exported for internal/reorder's rewrite step, which splices
// newly-constructed Branch nodes (guards) and imported subtrees directly
// into a cloned arena (spec.md §4.3.4).
func (b *BDD) NewNodeID() NodeID {
	b.nextID++
	return b.nextID
}

// PutNode installs n into the arena under n.ID, which must have come from
// NewNodeID (or already be present, for in-place edits). Reserved for
// reorder's rewrite step; ordinary construction should go through
// Builder.
func (b *BDD) PutNode(n *Node) {
	b.nodes[n.ID] = n
}

// AdvanceNextID ensures b's id allocator will never hand out an id <=
// id. Reserved for internal/serial's deserialiser, which installs nodes
// at ids read from a file (via PutNode) rather than through NewNodeID,
// and must bring the allocator up to date afterwards so later
// NewNodeID calls (e.g. a subsequent reorder pass) cannot collide.
func (b *BDD) AdvanceNextID(id NodeID) {
	if id > b.nextID {
		b.nextID = id
	}
}

// NextID returns the single successor id of n (Call.Next or Route.Next),
// false for a Branch (which has two successors, see Node.OnTrue/OnFalse).
func (n *Node) NextID() (NodeID, bool) {
	if n.Kind == KindBranch {
		return 0, false
	}
	return n.Next, true
}

// Assert runs the integrity pass of spec.md §8 invariant 1 / §3.3: every
// non-root node has exactly one prev, consistently linked, and all ids
// are unique within the reachable set. It returns the first violation
// found, wrapped with context, or nil.
func (b *BDD) Assert() error {
	seen := map[NodeID]bool{}
	var walk func(id NodeID, expectPrev NodeID) error
	walk = func(id NodeID, expectPrev NodeID) error {
		if id == 0 {
			return errors.New("bddgraph: dangling zero-id reference")
		}
		n, ok := b.nodes[id]
		if !ok {
			return errors.Errorf("bddgraph: reference to unknown node id %d", id)
		}
		if seen[id] {
			// Shared nodes are not allowed: the model requires a unique
			// prev per node (spec.md §3.3). A second visit under a
			// different expected-prev is the violation; visiting again
			// under the *same* prev (e.g. via two traversal entry points
			// that agree) is not an error condition this pass detects,
			// since BDDs considered here are trees by construction of
			// the rewrite (case a/b of §4.3.4 clone before splicing).
			if n.Prev != expectPrev {
				return errors.Errorf("bddgraph: node %d has conflicting prev (%d vs %d)", id, n.Prev, expectPrev)
			}
			return nil
		}
		seen[id] = true
		if id != b.root && n.Prev == 0 {
			return errors.Errorf("bddgraph: non-root node %d has no prev", id)
		}
		if n.Prev != expectPrev {
			return errors.Errorf("bddgraph: node %d prev=%d, expected %d", id, n.Prev, expectPrev)
		}
		switch n.Kind {
		case KindBranch:
			if n.OnTrue == 0 || n.OnFalse == 0 {
				return errors.Errorf("bddgraph: branch %d missing a child", id)
			}
			if err := walk(n.OnTrue, id); err != nil {
				return err
			}
			return walk(n.OnFalse, id)
		case KindCall:
			if n.Next != 0 {
				return walk(n.Next, id)
			}
			return nil
		case KindRoute:
			return nil
		}
		return errors.Errorf("bddgraph: node %d has unknown kind %v", id, n.Kind)
	}
	if b.root == 0 {
		if len(b.nodes) == 0 {
			return nil
		}
		return errors.New("bddgraph: non-empty BDD has no root")
	}
	expectPrev := b.MustGet(b.root).Prev
	return walk(b.root, expectPrev)
}
