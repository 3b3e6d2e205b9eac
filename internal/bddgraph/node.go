// Package bddgraph implements the BDD graph of spec.md §3.3/§4.2: an
// arena of Branch/Call/Route nodes addressed by id, with cloning,
// visiting, hashing, and the integrity pass described there.
//
// The arena-indexed-by-id representation follows the teacher repo
// (dalzilio-rudd) directly: rudd keeps every node in a single []bddNode
// slice and refers to other nodes purely by int index (nodes.go,
// hkernel.go); edges here are likewise ids, never pointers, so Clone only
// has to remap an id table rather than fix up pointers (Design Notes §9).
package bddgraph

import "github.com/synapse-nf/synbdd/internal/expr"

// NodeID identifies a node in a BDD's arena. The zero value NodeID(0) is
// never a valid node id (mirroring rudd's reservation of indices 0/1 for
// the boolean constants); use the ok-returning accessors to test for
// "no such node".
type NodeID uint64

// Kind discriminates the three node variants of spec.md §3.3.
type Kind int

const (
	KindBranch Kind = iota
	KindCall
	KindRoute
)

func (k Kind) String() string {
	switch k {
	case KindBranch:
		return "BRANCH"
	case KindCall:
		return "CALL"
	case KindRoute:
		return "ROUTE"
	default:
		return "UNKNOWN"
	}
}

// RouteOp names the terminal forwarding decision of a Route node
// (spec.md §3.3).
type RouteOp int

const (
	RouteFWD RouteOp = iota
	RouteDrop
	RouteBcast
)

func (op RouteOp) String() string {
	switch op {
	case RouteFWD:
		return "FWD"
	case RouteDrop:
		return "DROP"
	case RouteBcast:
		return "BCAST"
	default:
		return "UNKNOWN"
	}
}

// Route bundles a RouteOp with its destination port, meaningful only for
// RouteFWD.
type Route struct {
	Op      RouteOp
	DstPort int
}

// Node is the sum type of spec.md §3.3. Exactly one of the per-kind
// payload fields below is meaningful, selected by Kind — the Go
// equivalent of the source's Branch/Call/Route inheritance hierarchy
// (Design Notes §9: "source polymorphism maps to sum types").
type Node struct {
	ID         NodeID
	Kind       Kind
	Constraint *expr.ConstraintSet // conjunction of all constraints valid at this node

	Prev NodeID // non-owning back-link; 0 means "this is the root"

	// KindBranch
	Condition *expr.Expr
	OnTrue    NodeID
	OnFalse   NodeID

	// KindCall
	Call            CallRecord
	GeneratedSymbol []expr.Symbol // symbols this call locally generates
	Next            NodeID        // also used by KindRoute

	// KindRoute
	Route Route
}

// IsTerminal reports whether n has no successor to continue into (a
// Route with no configured Next — Routes in this model are always leaves
// of the BDD proper, Next exists only to let call-site code treat Route
// uniformly with Call when walking "next").
func (n *Node) IsTerminal() bool {
	return n.Kind == KindRoute
}

// ArgSlot is one argument of a call record (spec.md §3.2): up to three
// expressions describing the value, the memory before the call, and the
// memory after, plus optional provenance metadata and an optional
// function-pointer tag.
type ArgSlot struct {
	Expr     *expr.Expr // the argument value (often a pointer or scalar)
	In       *expr.Expr // memory pointed at before the call, nil if n/a
	Out      *expr.Expr // memory pointed at after the call, nil if n/a
	Meta     string     // describes where bytes came from, e.g. "packet_chunks[3..7]"
	FuncPtr  string     // function-pointer tag, empty if n/a
}

// ExtraVar is one of a call's extra-variable pairs (spec.md §3.2):
// a name plus its value before and after the call.
type ExtraVar struct {
	Name   string
	Before *expr.Expr
	After  *expr.Expr
}

// CallRecord captures one NF library invocation (spec.md §3.2).
type CallRecord struct {
	Function string
	Args     map[string]ArgSlot // keyed argument name -> slot
	Extra    []ExtraVar
	Ret      *expr.Expr // optional return expression, nil if void
}

// Arg is a convenience accessor returning (slot, ok).
func (c *CallRecord) Arg(name string) (ArgSlot, bool) {
	s, ok := c.Args[name]
	return s, ok
}
