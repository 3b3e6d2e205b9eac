package reorder

import (
	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// ioCheckPasses implements spec.md §4.3.1 check 3: every symbol
// referenced by x's condition (Branch) or argument expressions (Call)
// must already be available at anchor. Packet-chunk reads are available
// iff the specific byte index appears in some previously-borrowed
// chunk's expr.
func (c *Checker) ioCheckPasses(anchor bddgraph.NodeID, x *bddgraph.Node) bool {
	available := c.bdd.AvailableSymbolNames(anchor)
	borrowed := c.bdd.BorrowedChunks(anchor, c.o)

	check := func(e *expr.Expr) bool {
		if e == nil {
			return true
		}
		symbols, chunks := c.o.SymbolsOf(e)
		for name := range symbols {
			if name == expr.TagPacketChunks {
				continue // validated per concrete index below
			}
			if !available[name] {
				return false
			}
		}
		for _, ch := range chunks {
			if !borrowed[ch.Index] {
				return false
			}
		}
		return true
	}

	switch x.Kind {
	case bddgraph.KindBranch:
		return check(x.Condition)
	case bddgraph.KindCall:
		for _, slot := range x.Call.Args {
			if !check(slot.Expr) || !check(slot.In) {
				return false
			}
		}
		for _, ev := range x.Call.Extra {
			if !check(ev.Before) {
				return false
			}
		}
		return true
	case bddgraph.KindRoute:
		return true
	}
	return true
}
