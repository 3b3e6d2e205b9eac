package bddgraph

import "github.com/synapse-nf/synbdd/internal/expr"

// IDMap translates ids from a source BDD into the matching ids of a
// clone, returned by Clone so callers (chiefly the reorderer, which
// clones before rewriting) can follow references across the copy.
type IDMap map[NodeID]NodeID

// Clone deep-copies the subtree reachable from start into a brand new
// BDD. When recursive is true, ids are reassigned in pre-order, each node
// numbered before its children (not in a post-order sweep), so the
// clone's numbering is independent of the original's; when false, the original ids are preserved on the copy
// (only safe when the caller knows the clone will not coexist with the
// source BDD under shared id-space assumptions — reorder.rewrite always
// clones with recursive=true, see internal/reorder/rewrite.go).
//
// This mirrors rudd's own clone() / recursive re-numbering from the
// Design Notes ("cloning produces a new arena with an id translation
// map") generalized from rudd's single global table to a per-BDD arena.
func (b *BDD) Clone(start NodeID, recursive bool) (*BDD, IDMap) {
	out := New()
	out.InitPrelude = append([]CallRecord(nil), b.InitPrelude...)
	out.DeviceSymbol, out.PacketLenSymbol, out.TimeSymbol = b.DeviceSymbol, b.PacketLenSymbol, b.TimeSymbol
	ids := IDMap{}
	var walk func(id NodeID, prev NodeID) NodeID
	walk = func(id NodeID, prev NodeID) NodeID {
		if id == 0 {
			return 0
		}
		if newID, done := ids[id]; done {
			return newID
		}
		src := b.MustGet(id)
		var newID NodeID
		if recursive {
			out.nextID++
			newID = out.nextID
		} else {
			newID = id
			if id > out.nextID {
				out.nextID = id
			}
		}
		ids[id] = newID
		cp := &Node{
			ID: newID, Kind: src.Kind, Constraint: src.Constraint.Clone(),
			Prev: prev, Condition: src.Condition, Call: src.Call, Route: src.Route,
		}
		cp.GeneratedSymbol = append([]expr.Symbol(nil), src.GeneratedSymbol...)
		out.nodes[newID] = cp
		switch src.Kind {
		case KindBranch:
			cp.OnTrue = walk(src.OnTrue, newID)
			cp.OnFalse = walk(src.OnFalse, newID)
		case KindCall:
			cp.Next = walk(src.Next, newID)
		case KindRoute:
		}
		return newID
	}
	newRoot := walk(start, 0)
	out.SetRoot(newRoot)
	return out, ids
}
