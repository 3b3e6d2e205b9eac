package expr

// Well-known base tags named in spec.md §3.1. These are not an exhaustive
// enumeration — a Symbol's BaseTag is any string the loader produced — but
// giving the documented ones names keeps call sites that switch on them
// (e.g. the packet-chunk check in the reorderer) from scattering string
// literals around.
const (
	TagMapHasThisKey = "map_has_this_key"
	TagOutOfSpace    = "out_of_space"
	TagPacketChunks  = "packet_chunks"
	TagNow           = "now"
	TagPktLen        = "pkt_len"
	TagSrcDevices    = "src_devices"
)

// Symbol names one symbolic value: a base tag, the array it was read from,
// and the read expression that names it (spec.md §3.1).
type Symbol struct {
	BaseTag string
	Array   *SymbolicArray
	Read    *Expr
}

// Name returns the array name, which is how symbols are compared for
// freshness (see Oracle.FreshArray).
func (s Symbol) Name() string {
	if s.Array == nil {
		return s.BaseTag
	}
	return s.Array.Name
}

// ConstraintSet is an ordered, implicitly-conjoined collection of boolean
// (1-bit) expressions (spec.md §3.1).
type ConstraintSet struct {
	exprs []*Expr
}

// NewConstraintSet builds a constraint set from zero or more conjuncts.
func NewConstraintSet(exprs ...*Expr) *ConstraintSet {
	cs := &ConstraintSet{}
	cs.exprs = append(cs.exprs, exprs...)
	return cs
}

// Add appends a conjunct and returns the receiver for chaining.
func (cs *ConstraintSet) Add(e *Expr) *ConstraintSet {
	cs.exprs = append(cs.exprs, e)
	return cs
}

// Exprs returns the ordered list of conjuncts. Callers must not mutate the
// returned slice.
func (cs *ConstraintSet) Exprs() []*Expr {
	if cs == nil {
		return nil
	}
	return cs.exprs
}

// Clone returns a constraint set with an independent backing slice.
func (cs *ConstraintSet) Clone() *ConstraintSet {
	if cs == nil {
		return NewConstraintSet()
	}
	out := make([]*Expr, len(cs.exprs))
	copy(out, cs.exprs)
	return &ConstraintSet{exprs: out}
}

// Conjunction folds the set into a single boolean expression, true() if
// empty.
func (cs *ConstraintSet) Conjunction() *Expr {
	if cs == nil || len(cs.exprs) == 0 {
		return Const(1, 1)
	}
	acc := cs.exprs[0]
	for _, e := range cs.exprs[1:] {
		acc = BoolAnd(acc, e)
	}
	return acc
}
