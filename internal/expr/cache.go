package expr

import (
	"fmt"
	"strings"
)

// queryCache is the oracle's constraint-free caching layer (spec.md
// §4.1: "stateless across queries except for a constraint-free caching
// layer"). Its shape — a capped table of slots with hit/miss counters — is
// modeled on rudd's data4ncache (cache.go in the teacher repo), which
// caches binary-operation results keyed by a hash of the operands. Unlike
// rudd's open-addressed integer table (safe there because node ids are
// canonicalized by the unique table before being hashed), queries here are
// keyed by a canonical string built from each expression's structural
// form, since two structurally distinct *Expr values may be semantically
// identical and we cannot canonicalize expressions the way rudd
// canonicalizes nodes without an SMT round trip.
type queryCache struct {
	capacity int
	table    map[string]bool
	hits     int
	misses   int
}

func newQueryCache(capacity int) *queryCache {
	return &queryCache{capacity: capacity, table: make(map[string]bool, capacity)}
}

func (c *queryCache) get(key string) (bool, bool) {
	v, ok := c.table[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

func (c *queryCache) put(key string, v bool) {
	if len(c.table) >= c.capacity {
		// Capped: drop every entry wholesale rather than
		// implement LRU bookkeeping the query cache doesn't need (queries
		// are cheap to recompute; this only avoids unbounded growth).
		c.table = make(map[string]bool, c.capacity)
	}
	c.table[key] = v
}

// Stats renders hit/miss counters, mirroring rudd's Stats()/cacheStat
// reporting.
func (c *queryCache) Stats() string {
	return fmt.Sprintf("hits=%d misses=%d entries=%d/%d", c.hits, c.misses, len(c.table), c.capacity)
}

func cacheKey(k queryKind, e1, e2 *Expr, c1, c2 *ConstraintSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|", k)
	writeCanonical(&b, e1)
	b.WriteByte('|')
	writeCanonical(&b, e2)
	b.WriteByte('|')
	for _, e := range c1.Exprs() {
		writeCanonical(&b, e)
		b.WriteByte(';')
	}
	b.WriteByte('|')
	for _, e := range c2.Exprs() {
		writeCanonical(&b, e)
		b.WriteByte(';')
	}
	return b.String()
}

// writeCanonical writes a structural, order-sensitive encoding of e. It is
// not a pretty-printer (see Expr.String for that); it only needs to be
// injective enough to use as a cache key.
func writeCanonical(b *strings.Builder, e *Expr) {
	if e == nil {
		b.WriteByte('_')
		return
	}
	fmt.Fprintf(b, "(%d:%d", e.kind, e.width)
	if v, ok := e.AsConstant(); ok {
		fmt.Fprintf(b, ":%d", v)
	}
	if arr, idx, ok := e.AsRead(); ok {
		fmt.Fprintf(b, ":%s:", arr.Name)
		writeCanonical(b, idx)
	}
	if e.kind == KindExtract {
		fmt.Fprintf(b, ":%d", e.offset)
	}
	for _, c := range e.Children() {
		b.WriteByte(',')
		writeCanonical(b, c)
	}
	b.WriteByte(')')
}
