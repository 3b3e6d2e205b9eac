package expr

// RenameArrays rebuilds e with every Read of an array named in rename
// replaced by a Read of the corresponding replacement array, applied
// recursively. Expressions are immutable (expr.go), so renaming produces
// a new tree rather than mutating e in place; this is the substitution
// primitive the reorderer's symbol-freshening step (spec.md §4.3.4) is
// built on.
func RenameArrays(e *Expr, rename map[string]*SymbolicArray) *Expr {
	if e == nil || len(rename) == 0 {
		return e
	}
	switch e.kind {
	case KindConst:
		return e
	case KindRead:
		idx := RenameArrays(e.index, rename)
		if fresh, ok := rename[e.arr.Name]; ok {
			return Read(fresh, idx)
		}
		if idx == e.index {
			return e
		}
		return Read(e.arr, idx)
	case KindExtract:
		a := RenameArrays(e.a, rename)
		if a == e.a {
			return e
		}
		return Extract(a, e.offset, e.width)
	case KindConcat:
		hi, lo := RenameArrays(e.a, rename), RenameArrays(e.b, rename)
		if hi == e.a && lo == e.b {
			return e
		}
		return Concat(hi, lo)
	case KindNot, KindBoolNot:
		a := RenameArrays(e.a, rename)
		if a == e.a {
			return e
		}
		return &Expr{kind: e.kind, width: e.width, a: a}
	case KindIte:
		a, b, c := RenameArrays(e.a, rename), RenameArrays(e.b, rename), RenameArrays(e.c, rename)
		if a == e.a && b == e.b && c == e.c {
			return e
		}
		return &Expr{kind: e.kind, width: e.width, a: a, b: b, c: c}
	default:
		a, b := RenameArrays(e.a, rename), RenameArrays(e.b, rename)
		if a == e.a && b == e.b {
			return e
		}
		return &Expr{kind: e.kind, width: e.width, a: a, b: b}
	}
}
