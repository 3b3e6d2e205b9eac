package bddgraph

// The two per-call-name lookup tables of spec.md §3.2. Implemented, as
// the Design Notes prescribe, as "static constant maps keyed by
// function-name string" rather than any kind of registry or plugin
// system — the set of NF library calls is fixed and small.

// hasSideEffects is the side-effect table: function name -> whether
// calling it can observably mutate state.
var hasSideEffects = map[string]bool{
	"map_get":                       false,
	"vector_borrow":                 false,
	"dchain_is_index_allocated":     false,
	"sketch_fetch":                  false,
	"cht_find_preferred_available_backend": false,
	"hash_obj":                      false,
	"hash32":                        false,

	"map_put":                    true,
	"map_erase":                  true,
	"vector_return":              true,
	"dchain_allocate_new_index":  true,
	"dchain_free_index":          true,
	"dchain_rejuvenate_index":    true,
	"sketch_touch_buckets":       true,
	"sketch_expire":              true,
	"sketch_refresh":             true,
	"sketch_compute_hashes":      true,
	"packet_borrow_next_chunk":   true,
	"packet_return_chunk":        true,
	"packet_get_unread_length":   true,
	"expire_items":               true,
	"expire_items_single_map":    true,
}

// HasSideEffects reports whether calling fn can mutate state. Functions
// not present in the table are conservatively treated as side-effecting,
// since an unknown library call could do anything.
func HasSideEffects(fn string) bool {
	v, ok := hasSideEffects[fn]
	if !ok {
		return true
	}
	return v
}

// nonReorderable is the policy list of spec.md §3.2: functions that must
// never move regardless of what the RW/condition checks would otherwise
// allow.
var nonReorderable = map[string]bool{
	"packet_borrow_next_chunk": true,
	"packet_return_chunk":      true,
	"nf_set_rte_ipv4_udptcp_checksum": true,
	"nf_set_rte_ipv4_tcp_checksum":    true,
	"nf_set_rte_ipv4_checksum":        true,
}

// IsNonReorderable reports whether fn must not be moved at all (spec.md
// §4.3.1 check 4).
func IsNonReorderable(fn string) bool {
	return nonReorderable[fn]
}

// objectArgNames names, per function family, the argument slot that
// carries the data-structure object's address — used by the RW rules
// (spec.md §4.3.3) and by the independence test of testable property 3.
var objectArgNames = map[string]string{
	"map_get":   "map", "map_put": "map", "map_erase": "map",
	"vector_borrow": "vector", "vector_return": "vector",
	"dchain_allocate_new_index": "dchain", "dchain_free_index": "dchain",
	"dchain_rejuvenate_index": "dchain", "dchain_is_index_allocated": "dchain",
	"sketch_touch_buckets": "sketch", "sketch_expire": "sketch",
	"sketch_refresh": "sketch", "sketch_fetch": "sketch", "sketch_compute_hashes": "sketch",
}

// ObjectArgName returns the argument slot name carrying the object
// address for fn's family, or "" if fn does not address a placed object.
func ObjectArgName(fn string) string {
	return objectArgNames[fn]
}
