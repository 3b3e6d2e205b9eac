// Package expr defines the immutable symbolic bit-vector expressions that
// make up path conditions, call arguments, and route predicates throughout
// the toolchain, plus the oracle that answers equivalence queries about
// them (see Oracle in oracle.go).
package expr

import "fmt"

// Kind discriminates the variants of Expr. Expressions are a closed sum
// type: every constructor below produces one Kind and every consumer
// switches on it exhaustively.
type Kind int

const (
	KindConst Kind = iota
	KindRead
	KindExtract
	KindConcat
	KindAdd
	KindSub
	KindMul
	KindUDiv
	KindURem
	KindAnd // bitwise
	KindOr  // bitwise
	KindXor
	KindNot // bitwise complement
	KindShl
	KindLShr
	KindEq
	KindUlt
	KindUle
	KindBoolAnd
	KindBoolOr
	KindBoolNot
	KindIte
)

// Expr is an immutable symbolic bit-vector term. Every expression has a
// fixed Width in bits. The zero value is not a valid Expr; always build one
// through the constructors in this file.
type Expr struct {
	kind  Kind
	width int

	// KindConst
	value uint64

	// KindRead: index into arr
	arr   *SymbolicArray
	index *Expr

	// KindExtract
	offset int

	// operands, used by every other kind (1, 2 or 3 of them depending on kind)
	a, b, c *Expr
}

// Width returns the bit-width of e.
func (e *Expr) Width() int { return e.width }

// Kind returns the discriminant of e.
func (e *Expr) Kind() Kind { return e.kind }

// Const builds a constant expression of the given width.
func Const(value uint64, width int) *Expr {
	if width < 64 {
		value &= (uint64(1) << uint(width)) - 1
	}
	return &Expr{kind: KindConst, width: width, value: value}
}

// Read builds an expression reading symbolic array arr at index idx. The
// result width is arr's value width.
func Read(arr *SymbolicArray, idx *Expr) *Expr {
	return &Expr{kind: KindRead, width: arr.ValueWidth, arr: arr, index: idx}
}

// Extract returns the width-bit slice of e starting at bit offset.
func Extract(e *Expr, offset, width int) *Expr {
	return &Expr{kind: KindExtract, width: width, offset: offset, a: e}
}

// Concat concatenates hi (most significant) with lo (least significant).
func Concat(hi, lo *Expr) *Expr {
	return &Expr{kind: KindConcat, width: hi.width + lo.width, a: hi, b: lo}
}

func binop(k Kind, a, b *Expr, width int) *Expr {
	return &Expr{kind: k, width: width, a: a, b: b}
}

func Add(a, b *Expr) *Expr  { return binop(KindAdd, a, b, a.width) }
func Sub(a, b *Expr) *Expr  { return binop(KindSub, a, b, a.width) }
func Mul(a, b *Expr) *Expr  { return binop(KindMul, a, b, a.width) }
func UDiv(a, b *Expr) *Expr { return binop(KindUDiv, a, b, a.width) }
func URem(a, b *Expr) *Expr { return binop(KindURem, a, b, a.width) }
func And(a, b *Expr) *Expr  { return binop(KindAnd, a, b, a.width) }
func Or(a, b *Expr) *Expr   { return binop(KindOr, a, b, a.width) }
func Xor(a, b *Expr) *Expr  { return binop(KindXor, a, b, a.width) }
func Shl(a, b *Expr) *Expr  { return binop(KindShl, a, b, a.width) }
func LShr(a, b *Expr) *Expr { return binop(KindLShr, a, b, a.width) }

func Not(a *Expr) *Expr { return &Expr{kind: KindNot, width: a.width, a: a} }

// Eq builds a 1-bit boolean expression testing bit-vector equality.
func Eq(a, b *Expr) *Expr { return &Expr{kind: KindEq, width: 1, a: a, b: b} }

// Ult, Ule are unsigned comparisons, also 1-bit booleans.
func Ult(a, b *Expr) *Expr { return &Expr{kind: KindUlt, width: 1, a: a, b: b} }
func Ule(a, b *Expr) *Expr { return &Expr{kind: KindUle, width: 1, a: a, b: b} }

// BoolAnd, BoolOr, BoolNot operate on 1-bit boolean expressions.
func BoolAnd(a, b *Expr) *Expr { return &Expr{kind: KindBoolAnd, width: 1, a: a, b: b} }
func BoolOr(a, b *Expr) *Expr  { return &Expr{kind: KindBoolOr, width: 1, a: a, b: b} }
func BoolNot(a *Expr) *Expr    { return &Expr{kind: KindBoolNot, width: 1, a: a} }

// Ite builds an if-then-else: cond must be a 1-bit boolean; t and f must
// share a width, which becomes the result's width.
func Ite(cond, t, f *Expr) *Expr {
	return &Expr{kind: KindIte, width: t.width, a: cond, b: t, c: f}
}

// AsConstant returns (value, true) if e is a constant expression, the
// dynamic-cast helper called for in the Design Notes (replacing a source
// dynamic_cast<ConstantExpr*>).
func (e *Expr) AsConstant() (uint64, bool) {
	if e.kind == KindConst {
		return e.value, true
	}
	return 0, false
}

// AsRead returns (array, index, true) if e is a read expression.
func (e *Expr) AsRead() (*SymbolicArray, *Expr, bool) {
	if e.kind == KindRead {
		return e.arr, e.index, true
	}
	return nil, nil, false
}

// AsConcat returns (hi, lo, true) if e is a concat expression.
func (e *Expr) AsConcat() (*Expr, *Expr, bool) {
	if e.kind == KindConcat {
		return e.a, e.b, true
	}
	return nil, nil, false
}

// AsExtract returns (operand, offset, true) if e is an extract
// expression. e.Width() gives the extracted width.
func (e *Expr) AsExtract() (*Expr, int, bool) {
	if e.kind == KindExtract {
		return e.a, e.offset, true
	}
	return nil, 0, false
}

// Children returns the operand sub-expressions of e, in a fixed order, for
// generic traversal (e.g. SymbolsOf).
func (e *Expr) Children() []*Expr {
	var out []*Expr
	if e.index != nil {
		out = append(out, e.index)
	}
	for _, x := range [...]*Expr{e.a, e.b, e.c} {
		if x != nil {
			out = append(out, x)
		}
	}
	return out
}

// String renders a debug form; it is not a stable serialisation (see
// package serial for that).
func (e *Expr) String() string {
	switch e.kind {
	case KindConst:
		return fmt.Sprintf("%d", e.value)
	case KindRead:
		return fmt.Sprintf("%s[%s]", e.arr.Name, e.index)
	case KindExtract:
		return fmt.Sprintf("extract(%s,%d,%d)", e.a, e.offset, e.width)
	case KindConcat:
		return fmt.Sprintf("concat(%s,%s)", e.a, e.b)
	case KindNot:
		return fmt.Sprintf("~%s", e.a)
	case KindBoolNot:
		return fmt.Sprintf("!%s", e.a)
	case KindIte:
		return fmt.Sprintf("ite(%s,%s,%s)", e.a, e.b, e.c)
	default:
		if e.c != nil {
			return fmt.Sprintf("(%s %v %s %s)", e.a, e.kind, e.b, e.c)
		}
		return fmt.Sprintf("(%s %v %s)", e.a, e.kind, e.b)
	}
}
