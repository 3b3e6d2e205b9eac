package planner

import "container/heap"

// openQueue is the Driver's open set: a priority queue by
// speculation_pps, ties broken by EP id ascending for determinism
// (spec.md §5, §4.5). Grounded on the corpus's flux execute/plan
// packages (tonyabracadabra-flux/execute/executor.go imports
// "github.com/influxdata/flux/plan", the same "plan tree walked by an
// executor with a scored frontier" shape), generalized here into a
// small container/heap wrapper rather than pulling in flux's own
// scheduler, since only the scored-frontier idea is reused, not flux's
// dataflow execution model.
type openQueue struct {
	items []*EP
}

func newOpenQueue() *openQueue { return &openQueue{} }

func (q *openQueue) Len() int { return len(q.items) }

func (q *openQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	sa, sb := a.Context().SpeculationPPS(), b.Context().SpeculationPPS()
	if sa != sb {
		return sa > sb // best (highest) speculation_pps first
	}
	return a.ID() < b.ID() // deterministic tie-break
}

func (q *openQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *openQueue) Push(x interface{}) { q.items = append(q.items, x.(*EP)) }

func (q *openQueue) Pop() interface{} {
	n := len(q.items)
	it := q.items[n-1]
	q.items = q.items[:n-1]
	return it
}

func (q *openQueue) push(ep *EP) { heap.Push(q, ep) }

func (q *openQueue) popBest() *EP {
	return heap.Pop(q).(*EP)
}

var _ heap.Interface = (*openQueue)(nil)
