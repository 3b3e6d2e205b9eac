package expr

import "testing"

func newTestOracle() *Oracle {
	return New(NewSyntacticBackend(), nil)
}

func TestAlwaysTrueConstantFolds(t *testing.T) {
	o := newTestOracle()
	c := NewConstraintSet()
	if !o.AlwaysTrue(c, Eq(Const(3, 8), Const(3, 8))) {
		t.Error("Eq(3,3) should be provably true")
	}
	if o.AlwaysTrue(c, Eq(Const(3, 8), Const(4, 8))) {
		t.Error("Eq(3,4) should not be provably true")
	}
}

func TestAlwaysFalseConstantFolds(t *testing.T) {
	o := newTestOracle()
	c := NewConstraintSet()
	if !o.AlwaysFalse(c, Eq(Const(3, 8), Const(4, 8))) {
		t.Error("Eq(3,4) should be provably false")
	}
}

func TestAlwaysEqualStructurallyIdentical(t *testing.T) {
	o := newTestOracle()
	arr := NewArray("a", 4, 2, 8)
	idx := Const(1, 2)
	r1 := Read(arr, idx)
	r2 := Read(arr, Const(1, 2))
	c := NewConstraintSet()
	if !o.AlwaysEqual(r1, r2, c, c) {
		t.Error("two structurally identical reads should be always-equal")
	}
}

func TestAlwaysEqualUnderConstraint(t *testing.T) {
	o := newTestOracle()
	arr := NewArray("a", 4, 2, 8)
	idx := Const(1, 2)
	sym := Read(arr, idx)
	c := NewConstraintSet(Eq(sym, Const(7, 8)))
	if !o.AlwaysEqual(sym, Const(7, 8), c, NewConstraintSet()) {
		t.Error("sym == 7 should follow from the asserted constraint sym == 7")
	}
}

func TestAlwaysEqualUnprovedUnderNoConstraint(t *testing.T) {
	o := newTestOracle()
	arr := NewArray("a", 4, 2, 8)
	sym := Read(arr, Const(1, 2))
	c := NewConstraintSet()
	if o.AlwaysEqual(sym, Const(7, 8), c, c) {
		t.Error("an unconstrained symbol should not be provably equal to a constant")
	}
}

func TestValueOfRejectsNonConstant(t *testing.T) {
	o := newTestOracle()
	arr := NewArray("a", 4, 2, 8)
	sym := Read(arr, Const(1, 2))
	if _, err := o.ValueOf(sym); err == nil {
		t.Error("ValueOf on a non-constant expression should return an error")
	}
	v, err := o.ValueOf(Const(5, 8))
	if err != nil || v != 5 {
		t.Errorf("ValueOf(Const(5,8)) = (%d,%v), want (5,nil)", v, err)
	}
}

func TestSymbolsOfCollectsArrayNamesAndPacketChunks(t *testing.T) {
	o := newTestOracle()
	pktChunks := NewArray(TagPacketChunks, 16, 8, 8)
	other := NewArray("some_other_array", 4, 2, 8)
	e := Add(Read(pktChunks, Const(3, 8)), Read(other, Const(0, 2)))

	symbols, chunks := o.SymbolsOf(e)
	if !symbols[TagPacketChunks] || !symbols["some_other_array"] {
		t.Errorf("SymbolsOf missed a symbol, got %v", symbols)
	}
	if len(chunks) != 1 || chunks[0].Index != 3 {
		t.Errorf("SymbolsOf chunks = %v, want one entry at index 3", chunks)
	}
}

func TestSymbolsOfSkipsNonConstantChunkIndex(t *testing.T) {
	o := newTestOracle()
	pktChunks := NewArray(TagPacketChunks, 16, 8, 8)
	other := NewArray("idx_source", 4, 2, 8)
	symbolicIdx := Read(other, Const(0, 2))
	e := Read(pktChunks, symbolicIdx)

	_, chunks := o.SymbolsOf(e)
	if len(chunks) != 0 {
		t.Errorf("a symbolically-indexed chunk read should not be reported, got %v", chunks)
	}
}

func TestFreshArrayPicksLowestUnusedSuffix(t *testing.T) {
	o := newTestOracle()
	used := map[string]bool{"base_r0": true, "base_r1": true}
	arr := o.FreshArray("base", 16, 8, 4, used)
	if arr.Name != "base_r2" {
		t.Errorf("FreshArray name = %q, want base_r2", arr.Name)
	}
}

func TestAlwaysEqualIsMonotonicUnderAddedConstraints(t *testing.T) {
	o := newTestOracle()
	arr := NewArray("a", 4, 2, 8)
	sym := Read(arr, Const(1, 2))
	weak := NewConstraintSet()
	strong := NewConstraintSet(Eq(sym, Const(9, 8)))
	if o.AlwaysEqual(sym, Const(9, 8), weak, weak) {
		t.Error("should not be provable without the constraint")
	}
	if !o.AlwaysEqual(sym, Const(9, 8), strong, NewConstraintSet()) {
		t.Error("should become provable once the constraint is added (monotonicity)")
	}
}
