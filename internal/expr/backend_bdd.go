package expr

import "github.com/synapse-nf/synbdd/internal/rudd"

// bddBackend is the second SolverBackend (see the doc comment on
// SolverBackend in oracle.go): where syntacticBackend decides Check() with
// a handful of hand-written contradiction rules, this one actually builds a
// Binary Decision Diagram of the asserted formula and asks the diagram's own
// False terminal.
//
// Every KindBool{And,Or,Not} node and every width-1 Ite is compiled into a
// real rudd.Apply/Not/Ite call; every other expression (a KindEq/KindUlt
// comparison, a bare Read, ...) is treated as an opaque atomic proposition
// and given its own BDD variable via Ithvar, the same "uninterpreted atom"
// idea syntacticBackend uses, but composed through the BDD's apply cache
// instead of a bespoke structural-negation check. Two occurrences of the
// same atom (by canonicalString) always share one variable, so Assert(x)
// and Assert(BoolNot(x)) land on the same id and the conjunction collapses
// to False exactly as syntacticBackend's negation rule intends.
//
// This makes the backend sound for the same reason syntacticBackend is
// (askBackend in oracle.go only ever needs a correct UNSAT answer): atoms
// that are actually related by bitvector arithmetic (e.g. Eq(x,3) and
// Ult(x,4)) are given independent variables, so the BDD can fail to prove a
// contradiction a smarter encoding would catch, but it can never invent one
// that is not there.
type bddBackend struct {
	bdd    rudd.BDD
	atoms  map[string]int
	nvars  int
	assert []*Expr
}

// NewBDDBackend builds a SolverBackend that decides satisfiability with a
// real BDD apply/ite composition rather than syntacticBackend's hand-rolled
// rules.
func NewBDDBackend() SolverBackend {
	return &bddBackend{atoms: map[string]int{}}
}

func (s *bddBackend) Assert(e *Expr) {
	s.assert = append(s.assert, e)
}

func (s *bddBackend) Reset() {
	s.bdd = nil
	s.atoms = map[string]int{}
	s.nvars = 0
	s.assert = s.assert[:0]
}

func (s *bddBackend) Check() bool {
	b, err := rudd.New(1)
	if err != nil {
		return true // fail open: never report UNSAT on an engine error
	}
	s.bdd = b
	s.atoms = map[string]int{}
	s.nvars = 0

	formula := s.bdd.True()
	for _, e := range s.assert {
		formula = s.bdd.Apply(formula, s.compile(e), rudd.OPand)
	}
	return *formula != *s.bdd.False()
}

func (s *bddBackend) Model() map[string]uint64 {
	// No model construction: every caller in this repository only ever
	// consults Check's boolean verdict (see syntacticBackend.Model).
	return map[string]uint64{}
}

// compile lowers e (interpreted as "e != 0") into a rudd.Node, folding
// constants, composing the boolean connectives via real Apply/Ite calls,
// and allocating a fresh BDD variable for every other distinct atom.
func (s *bddBackend) compile(e *Expr) rudd.Node {
	if v, ok := foldConst(e); ok {
		return s.bdd.From(v != 0)
	}
	switch e.kind {
	case KindBoolAnd:
		return s.bdd.Apply(s.compile(e.a), s.compile(e.b), rudd.OPand)
	case KindBoolOr:
		return s.bdd.Apply(s.compile(e.a), s.compile(e.b), rudd.OPor)
	case KindBoolNot:
		return s.bdd.Not(s.compile(e.a))
	case KindIte:
		if e.width == 1 {
			return s.bdd.Ite(s.compile(e.a), s.compile(e.b), s.compile(e.c))
		}
	}
	return s.atom(e)
}

// atom returns the BDD variable standing for e, allocating a fresh one the
// first time e's canonical form is seen.
func (s *bddBackend) atom(e *Expr) rudd.Node {
	key := canonicalString(e)
	i, ok := s.atoms[key]
	if !ok {
		i = s.nvars
		s.nvars++
		s.atoms[key] = i
		if i >= s.bdd.Varnum() {
			s.bdd.SetVarnum(i + 1)
		}
	}
	return s.bdd.Ithvar(i)
}
