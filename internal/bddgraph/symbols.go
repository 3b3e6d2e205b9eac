package bddgraph

import "github.com/synapse-nf/synbdd/internal/expr"

// GetGeneratedSymbols walks upto's prev chain, collecting every symbol
// generated by a Call node encountered along the way (spec.md §4.2). The
// three distinguished BDD-level symbols (device, packet_len, time) are not
// in the returned slice; AvailableSymbolNames adds them, since they are
// defined before any node runs.
func (b *BDD) GetGeneratedSymbols(upto NodeID) []expr.Symbol {
	var out []expr.Symbol
	id := upto
	for id != 0 {
		n, ok := b.nodes[id]
		if !ok {
			break
		}
		id = n.Prev
		if id == 0 {
			break
		}
		prev, ok := b.nodes[id]
		if !ok {
			break
		}
		if prev.Kind == KindCall {
			out = append(out, prev.GeneratedSymbol...)
		}
	}
	return out
}

// AvailableSymbolNames returns GetGeneratedSymbols as a name-keyed set,
// convenient for the reorderer's IO check (spec.md §4.3.1), plus the
// arrays read by the three distinguished BDD-level symbols.
func (b *BDD) AvailableSymbolNames(upto NodeID) map[string]bool {
	out := map[string]bool{}
	for _, s := range b.GetGeneratedSymbols(upto) {
		out[s.Name()] = true
	}
	var addReads func(e *expr.Expr)
	addReads = func(e *expr.Expr) {
		if e == nil {
			return
		}
		if arr, _, ok := e.AsRead(); ok {
			out[arr.Name] = true
		}
		for _, k := range e.Children() {
			addReads(k)
		}
	}
	addReads(b.DeviceSymbol)
	addReads(b.PacketLenSymbol)
	addReads(b.TimeSymbol)
	return out
}

// BorrowedChunks walks upto's prev chain collecting the concrete
// byte-index set of every packet_chunks read borrowed (via
// packet_borrow_next_chunk) on the path so far, used by the IO check's
// special handling of packet-chunk availability (spec.md §4.3.1).
func (b *BDD) BorrowedChunks(upto NodeID, oracle *expr.Oracle) map[int]bool {
	out := map[int]bool{}
	id := upto
	for id != 0 {
		n, ok := b.nodes[id]
		if !ok {
			break
		}
		id = n.Prev
		if id == 0 {
			break
		}
		prev, ok := b.nodes[id]
		if !ok {
			break
		}
		if prev.Kind != KindCall || prev.Call.Function != "packet_borrow_next_chunk" {
			continue
		}
		for _, slot := range prev.Call.Args {
			if slot.Expr == nil {
				continue
			}
			_, chunks := oracle.SymbolsOf(slot.Expr)
			for _, c := range chunks {
				out[c.Index] = true
			}
		}
	}
	return out
}
