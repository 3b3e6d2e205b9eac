// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package rudd

// configs stores the tunable parameters of a BDD at construction time.
type configs struct {
	varnum    int // number of BDD variables
	nodesize  int // initial capacity hint for the node table
	cachesize int // initial capacity hint for the apply/ite caches
}

func makeconfigs(varnum int) *configs {
	return &configs{
		varnum:    varnum,
		nodesize:  2*varnum + 2,
		cachesize: _DEFAULTCACHESIZE,
	}
}

// Option configures a BDD built with New.
type Option func(*configs)

// Nodesize sets a preferred initial capacity for the node table. By default
// the table starts just large enough to hold the two constants and the
// variables declared in New.
func Nodesize(size int) Option {
	return func(c *configs) {
		if size >= 2*c.varnum+2 {
			c.nodesize = size
		}
	}
}

// Cachesize sets a preferred initial capacity for the apply/ite memoization
// caches.
func Cachesize(size int) Option {
	return func(c *configs) {
		c.cachesize = size
	}
}
