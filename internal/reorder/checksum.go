package reorder

import (
	"strings"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// IgnoreChecksumModifications heuristically drops, from a slice of
// candidates, any single-byte modification whose only referenced symbol
// contains "checksum" (spec.md §9, "ignore_checksum_modifications").
//
// This is fragile by the source's own admission — a symbol name is not a
// reliable proxy for "this write recomputes a checksum and is therefore
// safe to drop from reordering consideration" — so it is off by default
// (internal/config.Config.IgnoreChecksumModifications) and callers that
// enable it should document why they rely on it, per the source's own
// caveat (spec.md §9).
func IgnoreChecksumModifications(bdd *bddgraph.BDD, o *expr.Oracle, candidates []Candidate) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		n, ok := bdd.GetNodeByID(c.Node)
		if !ok || n.Kind != bddgraph.KindCall {
			out = append(out, c)
			continue
		}
		if isSingleByteChecksumWrite(o, n) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func isSingleByteChecksumWrite(o *expr.Oracle, n *bddgraph.Node) bool {
	var symbols []string
	width := 0
	for _, slot := range n.Call.Args {
		if slot.Out == nil {
			continue
		}
		width = slot.Out.Width()
		syms, _ := o.SymbolsOf(slot.Out)
		for s := range syms {
			symbols = append(symbols, s)
		}
	}
	if width != 8 || len(symbols) != 1 {
		return false
	}
	return strings.Contains(strings.ToLower(symbols[0]), "checksum")
}
