package expr

import "testing"

func TestConstTruncatesToWidth(t *testing.T) {
	e := Const(0x1FF, 8)
	v, ok := e.AsConstant()
	if !ok || v != 0xFF {
		t.Fatalf("Const(0x1FF,8) = (%d,%v), want (0xFF,true)", v, ok)
	}
}

func TestExtractRoundTripsOffsetAndWidth(t *testing.T) {
	base := Const(0xAB, 16)
	ex := Extract(base, 4, 4)
	operand, offset, ok := ex.AsExtract()
	if !ok {
		t.Fatal("AsExtract on an Extract expression returned ok=false")
	}
	if operand != base {
		t.Error("AsExtract returned a different operand than was built in")
	}
	if offset != 4 || ex.Width() != 4 {
		t.Errorf("offset=%d width=%d, want 4,4", offset, ex.Width())
	}
}

func TestConcatWidthIsSumOfOperands(t *testing.T) {
	hi := Const(1, 4)
	lo := Const(2, 12)
	c := Concat(hi, lo)
	if c.Width() != 16 {
		t.Errorf("Concat width = %d, want 16", c.Width())
	}
	gotHi, gotLo, ok := c.AsConcat()
	if !ok || gotHi != hi || gotLo != lo {
		t.Error("AsConcat did not recover the original operands")
	}
}

func TestAsConstantFalseForNonConstant(t *testing.T) {
	arr := NewArray("a", 4, 2, 8)
	r := Read(arr, Const(0, 2))
	if _, ok := r.AsConstant(); ok {
		t.Error("AsConstant should be false for a Read expression")
	}
	if _, ok := Add(Const(1, 8), Const(2, 8)).AsExtract(); ok {
		t.Error("AsExtract should be false for an Add expression")
	}
}

func TestChildrenOrderForBinaryAndTernary(t *testing.T) {
	a, b := Const(1, 8), Const(2, 8)
	add := Add(a, b)
	if kids := add.Children(); len(kids) != 2 || kids[0] != a || kids[1] != b {
		t.Errorf("Add children = %v, want [a,b]", kids)
	}
	cond, tv, fv := Const(1, 1), Const(3, 8), Const(4, 8)
	ite := Ite(cond, tv, fv)
	if kids := ite.Children(); len(kids) != 3 || kids[0] != cond || kids[1] != tv || kids[2] != fv {
		t.Errorf("Ite children = %v, want [cond,t,f]", kids)
	}
}

func TestReadChildrenIncludesIndex(t *testing.T) {
	arr := NewArray("a", 4, 2, 8)
	idx := Const(1, 2)
	r := Read(arr, idx)
	kids := r.Children()
	if len(kids) != 1 || kids[0] != idx {
		t.Errorf("Read children = %v, want [idx]", kids)
	}
}
