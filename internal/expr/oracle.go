package expr

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNotConstant is returned by ValueOf when the expression is not a
// constant (spec.md §4.1).
var ErrNotConstant = errors.New("expression is not constant")

// SolverBackend is the only interface the oracle is allowed to use to
// reach an SMT solver (spec.md §4.6). It is intentionally minimal: assert
// a formula, check satisfiability under everything asserted so far, and
// recover a model. No concrete third-party SMT binding exists anywhere in
// the retrieval pack (see DESIGN.md); two in-process implementations ship:
// syntacticBackend (backend_syntactic.go), built from constant folding and
// structural equality, and the BDD-based backend of NewBDDBackend (on
// internal/rudd), both aimed at the query shapes the reorderer and oracle
// actually issue.
type SolverBackend interface {
	// Assert adds e (interpreted as e != 0) to the backend's persistent
	// assumption set.
	Assert(e *Expr)
	// Check returns true iff the current assumption set is satisfiable.
	Check() bool
	// Model returns a satisfying assignment for every free symbol read by
	// the backend's current assumption set, valid only when the previous
	// Check() returned true.
	Model() map[string]uint64
	// Reset clears the assumption set accumulated by Assert.
	Reset()
}

// Oracle answers the three-valued equivalence and satisfiability queries
// of spec.md §4.1. It is the sole owner of a SolverBackend; every other
// component receives an *Oracle handle explicitly (Design Notes: "pass an
// Oracle handle explicitly", replacing a global solver_toolbox singleton).
//
// Oracle is stateless across queries except for the constraint-free cache
// below and its backend's assumption set. Neither is synchronised, so an
// Oracle is not safe for concurrent use: goroutines processing
// independent EPs each need their own Oracle.
type Oracle struct {
	backend SolverBackend
	log     *zap.SugaredLogger
	cache   *queryCache
}

// New builds an Oracle around backend. A nil logger disables diagnostic
// logging (mirrors rudd's _DEBUG/_LOGLEVEL-gated prints, generalized to a
// structured logger, see SPEC_FULL.md's ambient-stack section).
func New(backend SolverBackend, log *zap.SugaredLogger) *Oracle {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Oracle{backend: backend, log: log, cache: newQueryCache(4096)}
}

// ValueOf returns the integer value of a constant expression, or
// ErrNotConstant.
func (o *Oracle) ValueOf(e *Expr) (uint64, error) {
	if v, ok := e.AsConstant(); ok {
		return v, nil
	}
	return 0, errors.Wrapf(ErrNotConstant, "expr %s", e)
}

// PacketChunkRead names one concrete packet_chunks read discovered by
// SymbolsOf: the byte index and the expression that performed the read.
type PacketChunkRead struct {
	Index int
	Expr  *Expr
}

// SymbolsOf walks e and returns every symbol name referenced plus the
// subset of reads from the packet_chunks array, each with its concrete
// byte index (spec.md §4.1). A chunk read whose index is not itself
// constant is skipped: availability (§4.3.1 IO check) can only be decided
// for concretely-indexed chunk reads.
func (o *Oracle) SymbolsOf(e *Expr) (symbols map[string]bool, chunks []PacketChunkRead) {
	symbols = map[string]bool{}
	var walk func(*Expr)
	walk = func(x *Expr) {
		if x == nil {
			return
		}
		if arr, idx, ok := x.AsRead(); ok {
			symbols[arr.Name] = true
			if arr.Name == TagPacketChunks {
				if v, err := o.ValueOf(idx); err == nil {
					chunks = append(chunks, PacketChunkRead{Index: int(v), Expr: x})
				}
			}
		}
		for _, c := range x.Children() {
			walk(c)
		}
	}
	walk(e)
	return symbols, chunks
}

type queryKind int

const (
	queryAlwaysEqual queryKind = iota
	queryAlwaysNotEqual
	queryAlwaysTrue
	queryAlwaysFalse
)

// AlwaysEqual is true iff e1 == e2 is provable under the conjunction of c1
// and c2 (c2's symbols are not rewritten; a caller that needs them renamed
// applies RenameArrays first, per spec.md §4.1). Returns false
// both when disproved and when merely unproved — the oracle never
// distinguishes the two to its callers (§7: "solver indeterminate").
func (o *Oracle) AlwaysEqual(e1, e2 *Expr, c1, c2 *ConstraintSet) bool {
	return o.proveQuery(queryAlwaysEqual, e1, e2, c1, c2)
}

// AlwaysNotEqual is true iff e1 != e2 is provable.
func (o *Oracle) AlwaysNotEqual(e1, e2 *Expr, c1, c2 *ConstraintSet) bool {
	return o.proveQuery(queryAlwaysNotEqual, e1, e2, c1, c2)
}

// AlwaysTrue is true iff e is provably true under C.
func (o *Oracle) AlwaysTrue(c *ConstraintSet, e *Expr) bool {
	return o.proveQuery(queryAlwaysTrue, e, nil, c, nil)
}

// AlwaysFalse is true iff e is provably false under C.
func (o *Oracle) AlwaysFalse(c *ConstraintSet, e *Expr) bool {
	return o.proveQuery(queryAlwaysFalse, e, nil, c, nil)
}

func (o *Oracle) proveQuery(k queryKind, e1, e2 *Expr, c1, c2 *ConstraintSet) bool {
	key := cacheKey(k, e1, e2, c1, c2)
	if v, ok := o.cache.get(key); ok {
		return v
	}
	res := o.askBackend(k, e1, e2, c1, c2)
	o.cache.put(key, res)
	o.log.Debugw("oracle query", "kind", k, "result", res)
	return res
}

// askBackend asserts the constraints plus the negation of the goal and
// checks for unsatisfiability: the goal holds iff its negation is UNSAT.
// This is the standard refutation-based decision procedure; it is decided
// by the Oracle's SolverBackend (syntacticBackend or the BDD-based
// backend), since no external SMT solver is wired (§4.6).
func (o *Oracle) askBackend(k queryKind, e1, e2 *Expr, c1, c2 *ConstraintSet) bool {
	// Structurally identical expressions are equal regardless of the
	// backend's deductive power; this also lets always-equal/always-true
	// resolve for purely symbolic (unconstrained) expressions that happen
	// to be the same read, which the refutation procedure alone cannot
	// reach without a congruence closure.
	if k == queryAlwaysEqual && canonicalString(e1) == canonicalString(e2) {
		return true
	}
	o.backend.Reset()
	for _, c := range c1.Exprs() {
		o.backend.Assert(c)
	}
	for _, c := range c2.Exprs() {
		o.backend.Assert(c)
	}
	var goalNegation *Expr
	switch k {
	case queryAlwaysEqual:
		goalNegation = BoolNot(Eq(e1, e2))
	case queryAlwaysNotEqual:
		goalNegation = Eq(e1, e2)
	case queryAlwaysTrue:
		goalNegation = BoolNot(e1)
	case queryAlwaysFalse:
		goalNegation = e1
	default:
		panic(fmt.Sprintf("unknown query kind %d", k))
	}
	o.backend.Assert(goalNegation)
	return !o.backend.Check()
}

// FreshArray creates a distinct symbolic array whose name is base suffixed
// with the lowest unused "_r<N>" that does not collide with any symbol
// named in used (spec.md §4.1). The linear scan for the lowest free
// suffix mirrors rudd's primeGte-style "find the next usable slot" search
// (primes.go), generalized from table sizes to name suffixes.
func (o *Oracle) FreshArray(base string, size int, valueWidth int, indexWidth int, used map[string]bool) *SymbolicArray {
	n := 0
	for {
		name := fmt.Sprintf("%s_r%d", base, n)
		if !used[name] {
			return NewArray(name, size, indexWidth, valueWidth)
		}
		n++
	}
}

// Rewrite helpers named in spec.md §4.1 ("Builder functions are methods
// on Oracle").
func (o *Oracle) RNot(e *Expr) *Expr          { return BoolNot(e) }
func (o *Oracle) REq(a, b *Expr) *Expr        { return Eq(a, b) }
func (o *Oracle) RAnd(a, b *Expr) *Expr       { return BoolAnd(a, b) }
func (o *Oracle) RExtract(e *Expr, offset, width int) *Expr {
	return Extract(e, offset, width)
}
func (o *Oracle) RConcat(hi, lo *Expr) *Expr { return Concat(hi, lo) }
