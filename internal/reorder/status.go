// Package reorder implements the BDD safe reorderer of spec.md §4.3: the
// legality checks, sibling discovery, the per-family read/write rules,
// the clone-and-stitch rewrite, and the enumeration/estimation API.
//
// This is the spec's centerpiece and the only subject matter with no
// direct analogue in the teacher repo (rudd reorders BDD *variables*, not
// NF-trace nodes with side effects); every file here is grounded on
// rudd's general shape (arena-indexed graph, clone-before-mutate,
// options-style knobs) and generalized to the rules spec.md §4.3
// prescribes, with original_source/tools/bdd-reorderer/bdd-reorderer.cpp
// as the authority for edge cases spec.md leaves implicit.
package reorder

import (
	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// Status is the typed, expected outcome of a legality check (spec.md
// §4.3.1/§7): "Reorder-legality failures are expected, returned as a
// status enum... Callers treat non-VALID as 'skip this candidate', never
// as an error."
type Status int

const (
	Valid Status = iota
	UnreachableCandidate
	CandidateFollowsAnchor
	IOCheckFailed
	NotAllowed
	RWCheckFailed
	ImpossibleCondition
	ConflictingRouting
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "VALID"
	case UnreachableCandidate:
		return "UNREACHABLE_CANDIDATE"
	case CandidateFollowsAnchor:
		return "CANDIDATE_FOLLOWS_ANCHOR"
	case IOCheckFailed:
		return "IO_CHECK_FAILED"
	case NotAllowed:
		return "NOT_ALLOWED"
	case RWCheckFailed:
		return "RW_CHECK_FAILED"
	case ImpossibleCondition:
		return "IMPOSSIBLE_CONDITION"
	case ConflictingRouting:
		return "CONFLICTING_ROUTING"
	default:
		return "UNKNOWN_STATUS"
	}
}

// OK reports whether s is Valid.
func (s Status) OK() bool { return s == Valid }

// Anchor is a (node, direction) pair below which a reorder attempts to
// place a candidate (spec.md §4.3, GLOSSARY). Direction is meaningless
// (fixed true) for any non-Branch anchor.
type Anchor struct {
	Node      bddgraph.NodeID
	Direction bool
}

// Verdict is the full result of a legality check: the status, the
// accumulated guard (nil if none was needed), and the sibling set
// discovered once the candidate was found legal.
type Verdict struct {
	Status   Status
	Guard    *expr.Expr
	Siblings []bddgraph.NodeID
}
