package bddgraph

import "github.com/synapse-nf/synbdd/internal/expr"

// CallsEqual compares two call records for the purpose of sibling
// discovery (spec.md §4.3.2): same function name, same keyed arguments,
// same extra-variables, each expression compared via Oracle.AlwaysEqual
// under the two nodes' constraint sets rather than by structural
// equality, since semantically-identical calls on different paths rarely
// share syntactically-identical expressions.
func CallsEqual(o *expr.Oracle, a, b CallRecord, ca, cb *expr.ConstraintSet) bool {
	if a.Function != b.Function {
		return false
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for name, sa := range a.Args {
		sb, ok := b.Args[name]
		if !ok {
			return false
		}
		if !argSlotsEqual(o, sa, sb, ca, cb) {
			return false
		}
	}
	if len(a.Extra) != len(b.Extra) {
		return false
	}
	for i, ea := range a.Extra {
		eb := b.Extra[i]
		if ea.Name != eb.Name {
			return false
		}
		if !exprsEqualOrBothNil(o, ea.Before, eb.Before, ca, cb) {
			return false
		}
		if !exprsEqualOrBothNil(o, ea.After, eb.After, ca, cb) {
			return false
		}
	}
	return exprsEqualOrBothNil(o, a.Ret, b.Ret, ca, cb)
}

func argSlotsEqual(o *expr.Oracle, a, b ArgSlot, ca, cb *expr.ConstraintSet) bool {
	return exprsEqualOrBothNil(o, a.Expr, b.Expr, ca, cb) &&
		exprsEqualOrBothNil(o, a.In, b.In, ca, cb) &&
		exprsEqualOrBothNil(o, a.Out, b.Out, ca, cb)
}

func exprsEqualOrBothNil(o *expr.Oracle, a, b *expr.Expr, ca, cb *expr.ConstraintSet) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return o.AlwaysEqual(a, b, ca, cb)
}
