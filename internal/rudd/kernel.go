// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package rudd

import "fmt"

// _MAXVAR bounds the number of levels a BDD can declare, mirroring the
// original package's kernel.go sanity limit.
const _MAXVAR = 1 << 20

const _DEFAULTCACHESIZE = 4096

// node is one vertex of the unique table: a variable level plus the ids of
// its false (low) and true (high) branches. Ids below 2 are terminals and
// are never stored as low/high of themselves.
type node struct {
	level      int32
	low, high  int32
}

// uniqueKey is the (level, low, high) triplet the unique table is keyed on.
type uniqueKey struct {
	level      int32
	low, high  int32
}

type applyKey struct {
	left, right int32
	op          Operator
}

type iteKey struct {
	f, g, h int32
}

// engine is the sole BDD implementation: a Go-map-backed unique table, grounded
// on hudd.go's choice to back the table with "a standard Go runtime hashmap"
// rather than BuDDy's packed array (the buddy.go/bkernel.go build-tagged
// alternative is not carried forward, see DESIGN.md).
type engine struct {
	nodes  []node
	unique map[uniqueKey]int32

	varnum int32
	varset [][2]int32 // varset[i] = {Ithvar(i) id, NIthvar(i) id}

	applycache map[applyKey]int32
	notcache   map[int32]int32
	itecache   map[iteKey]int32

	err error
}

// New builds a BDD with varnum boolean variables, in the interval
// [0..varnum).
func New(varnum int, opts ...Option) (BDD, error) {
	if varnum < 0 || varnum > _MAXVAR {
		return nil, fmt.Errorf("rudd: bad number of variables (%d)", varnum)
	}
	cfg := makeconfigs(varnum)
	for _, o := range opts {
		o(cfg)
	}
	b := &engine{
		nodes:      make([]node, 2, cfg.nodesize),
		unique:     make(map[uniqueKey]int32, cfg.nodesize),
		applycache: make(map[applyKey]int32, cfg.cachesize),
		notcache:   make(map[int32]int32, cfg.cachesize),
		itecache:   make(map[iteKey]int32, cfg.cachesize),
	}
	// Constants always have the highest level, as in the original
	// varnum.go; they are re-leveled every time SetVarnum grows.
	b.nodes[0] = node{level: int32(varnum)}
	b.nodes[1] = node{level: int32(varnum)}
	if varnum > 0 {
		if err := b.SetVarnum(varnum); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// SetVarnum sets the number of BDD variables. It may be called more than
// once, but only to increase the number of variables (varnum.go).
func (b *engine) SetVarnum(num int) error {
	if num < 1 || num > _MAXVAR {
		b.seterror("rudd: bad number of variables (%d) in SetVarnum", num)
		return b.err
	}
	if int32(num) < b.varnum {
		b.seterror("rudd: cannot decrease the number of variables (from %d to %d)", b.varnum, num)
		return b.err
	}
	b.nodes[0].level = int32(num)
	b.nodes[1].level = int32(num)
	for ; b.varnum < int32(num); b.varnum++ {
		lo := b.mknode(b.varnum, 0, 1)
		hi := b.mknode(b.varnum, 1, 0)
		b.varset = append(b.varset, [2]int32{lo, hi})
	}
	return nil
}

// Varnum returns the number of declared variables.
func (b *engine) Varnum() int { return int(b.varnum) }

// mknode returns the id of the (level, low, high) node, allocating it in
// the unique table on first use. low == high collapses to that shared
// successor, exactly as the original makenode.
func (b *engine) mknode(level int32, low, high int32) int32 {
	if low == high {
		return low
	}
	key := uniqueKey{level, low, high}
	if id, ok := b.unique[key]; ok {
		return id
	}
	id := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{level: level, low: low, high: high})
	b.unique[key] = id
	return id
}

func (b *engine) retnode(id int32) Node {
	x := id
	return &x
}

func (b *engine) checkptr(n Node) error {
	if n == nil {
		return fmt.Errorf("rudd: nil node")
	}
	id := *n
	if id < 0 || int(id) >= len(b.nodes) {
		return fmt.Errorf("rudd: node id %d out of range", id)
	}
	return nil
}

func (b *engine) True() Node  { return b.retnode(1) }
func (b *engine) False() Node { return b.retnode(0) }

func (b *engine) From(v bool) Node {
	if v {
		return b.True()
	}
	return b.False()
}

func (b *engine) Ithvar(i int) Node {
	if i < 0 || i >= len(b.varset) {
		return b.seterror("rudd: variable %d out of range [0,%d)", i, len(b.varset))
	}
	return b.retnode(b.varset[i][0])
}

func (b *engine) NIthvar(i int) Node {
	if i < 0 || i >= len(b.varset) {
		return b.seterror("rudd: variable %d out of range [0,%d)", i, len(b.varset))
	}
	return b.retnode(b.varset[i][1])
}

func (b *engine) Stats() string {
	return fmt.Sprintf("rudd: %d variables, %d nodes, %d unique entries", b.varnum, len(b.nodes), len(b.unique))
}
