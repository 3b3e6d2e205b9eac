package reorder

import (
	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// rwRule implements the per-family table of spec.md §4.3.3: given a
// between-node b and the candidate x (already known to have side
// effects), decide whether they commute, conflict outright, or commute
// conditionally on a guard expression. Returns (nil, Valid) for
// unconditional commute, (nil, RWCheckFailed) for an outright conflict,
// or (guard, Valid) when commuting requires guard to hold.
func rwRule(o *expr.Oracle, b, x *bddgraph.Node, cb, cx *expr.ConstraintSet) (*expr.Expr, Status) {
	if b.Kind != bddgraph.KindCall {
		// Route between-nodes cannot exist on a path to a reachable
		// candidate (Routes are terminal); only Call/Branch appear, and
		// Branch already aborted in the caller before rwRule is reached.
		return nil, Valid
	}
	fn := x.Call.Function
	switch {
	case isFamily(fn, "map_get", "map_put", "map_erase"):
		return keyedRule(o, b, x, "map", "key", cb, cx)
	case isFamily(fn, "vector_borrow", "vector_return"):
		return keyedRule(o, b, x, "vector", "index", cb, cx)
	case isFamily(fn, "dchain_allocate_new_index", "dchain_free_index", "dchain_rejuvenate_index", "dchain_is_index_allocated"):
		return disjointObjectRule(o, b, x, "dchain", cb, cx)
	case fn == "cht_find_preferred_available_backend":
		return nil, Valid // read-only; commutes unconditionally
	case isFamily(fn, "sketch_touch_buckets", "sketch_expire", "sketch_refresh", "sketch_fetch", "sketch_compute_hashes"):
		return disjointObjectRule(o, b, x, "sketch", cb, cx)
	default:
		// "All other X that have no side effects commute
		// unconditionally" — by construction rwRule is only invoked for
		// side-effecting X (see bddNeedsSideEffectCheck). An unknown
		// side-effecting family is treated as a conflict when b addresses
		// a data-structure object, and commutes with a b that addresses
		// none.
		if bObjectName(b) == "" {
			return nil, Valid
		}
		return nil, RWCheckFailed
	}
}

func isFamily(fn string, names ...string) bool {
	for _, n := range names {
		if fn == n {
			return true
		}
	}
	return false
}

func bObjectName(b *bddgraph.Node) string {
	return bddgraph.ObjectArgName(b.Call.Function)
}

// keyedRule handles the map/vector families: commute unconditionally on
// different objects, abort on same object + same key, emit a guard on
// same object + undecidable key, commute unconditionally on same object +
// provably different key.
func keyedRule(o *expr.Oracle, b, x *bddgraph.Node, objArg, keyArg string, cb, cx *expr.ConstraintSet) (*expr.Expr, Status) {
	if bddgraph.ObjectArgName(b.Call.Function) != objArg {
		// b does not touch the same object family at all -> commutes.
		return nil, Valid
	}
	bObj, bOK := b.Call.Arg(objArg)
	xObj, xOK := x.Call.Arg(objArg)
	if !bOK || !xOK {
		return nil, Valid
	}
	if !o.AlwaysEqual(bObj.Expr, xObj.Expr, cb, cx) {
		// Different objects (or at least not provably the same) commute;
		// per spec.md, only a *proven* same object forces key comparison.
		return nil, Valid
	}
	bKey, bHasKey := b.Call.Arg(keyArg)
	xKey, xHasKey := x.Call.Arg(keyArg)
	if !bHasKey || !xHasKey || bKey.In == nil || xKey.In == nil {
		return nil, RWCheckFailed
	}
	if o.AlwaysEqual(bKey.In, xKey.In, cb, cx) {
		return nil, RWCheckFailed
	}
	if o.AlwaysNotEqual(bKey.In, xKey.In, cb, cx) {
		return nil, Valid
	}
	return expr.BoolNot(expr.Eq(bKey.In, xKey.In)), Valid
}

// disjointObjectRule handles families (dchain, sketch) whose rule is
// simply "commutes iff different object, abort otherwise" — no guard is
// ever produced for these families (spec.md §4.3.3).
func disjointObjectRule(o *expr.Oracle, b, x *bddgraph.Node, objArg string, cb, cx *expr.ConstraintSet) (*expr.Expr, Status) {
	if bddgraph.ObjectArgName(b.Call.Function) != objArg {
		return nil, Valid
	}
	bObj, bOK := b.Call.Arg(objArg)
	xObj, xOK := x.Call.Arg(objArg)
	if !bOK || !xOK {
		return nil, RWCheckFailed
	}
	if o.AlwaysNotEqual(bObj.Expr, xObj.Expr, cb, cx) {
		return nil, Valid
	}
	// Same object, or undecidable: unlike map/vector there is no guarded
	// middle ground for this family (spec.md §4.3.3) — abort outright.
	return nil, RWCheckFailed
}
