package bddgraph

import "github.com/synapse-nf/synbdd/internal/expr"

// Builder is the incremental-construction API an external loader (out of
// scope per spec.md §1) would drive to turn merged call paths into a
// BDD. It is deliberately thin: canonicalisation (discriminating
// constraints between merged paths, spec.md §4.2) lives in the loader,
// not here.
type Builder struct {
	bdd *BDD
}

// NewBuilder wraps an empty BDD for incremental construction.
func NewBuilder() *Builder {
	return &Builder{bdd: New()}
}

// BDD returns the graph built so far.
func (bl *Builder) BDD() *BDD { return bl.bdd }

func (bl *Builder) alloc() NodeID {
	bl.bdd.nextID++
	return bl.bdd.nextID
}

// AddBranch inserts a Branch node with the given condition and children,
// wires up prev on both children, and returns the new node's id.
func (bl *Builder) AddBranch(cond *expr.Expr, onTrue, onFalse NodeID, constraint *expr.ConstraintSet) NodeID {
	id := bl.alloc()
	bl.bdd.nodes[id] = &Node{
		ID: id, Kind: KindBranch, Condition: cond,
		OnTrue: onTrue, OnFalse: onFalse, Constraint: constraint,
	}
	if onTrue != 0 {
		bl.bdd.MustGet(onTrue).Prev = id
	}
	if onFalse != 0 {
		bl.bdd.MustGet(onFalse).Prev = id
	}
	return id
}

// AddCall inserts a Call node.
func (bl *Builder) AddCall(call CallRecord, generated []expr.Symbol, next NodeID, constraint *expr.ConstraintSet) NodeID {
	id := bl.alloc()
	bl.bdd.nodes[id] = &Node{
		ID: id, Kind: KindCall, Call: call, GeneratedSymbol: generated,
		Next: next, Constraint: constraint,
	}
	if next != 0 {
		bl.bdd.MustGet(next).Prev = id
	}
	return id
}

// AddRoute inserts a terminal Route node.
func (bl *Builder) AddRoute(r Route, constraint *expr.ConstraintSet) NodeID {
	id := bl.alloc()
	bl.bdd.nodes[id] = &Node{ID: id, Kind: KindRoute, Route: r, Constraint: constraint}
	return id
}

// Reparent updates child's Prev to point at parent. Needed when a node
// built before its parent existed (e.g. while building bottom-up) is
// later attached.
func (bl *Builder) Reparent(child, parent NodeID) {
	bl.bdd.MustGet(child).Prev = parent
}
