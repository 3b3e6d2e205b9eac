package placement

import (
	"strings"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

// allocatorCapacityArg maps the known NF-library allocator function
// families (map/vector/dchain/sketch/cht constructors, spec.md §3.5) to
// the argument name carrying their capacity, following the naming
// convention the rest of bddgraph already uses for per-family lookups
// (bddgraph.objectArgNames in calltables.go).
var allocatorCapacityArg = map[string]string{
	"map_allocate":    "capacity",
	"vector_allocate": "capacity",
	"dchain_allocate": "index_range",
	"sketch_allocate": "capacity",
	"cht_fill_cht":    "cht_height",
}

// allocatorObjectArg names the argument that carries the freshly
// allocated object's address-out slot, mirroring
// bddgraph.ObjectArgName's per-family table.
var allocatorObjectArg = map[string]string{
	"map_allocate":    "map_out",
	"vector_allocate": "vector_out",
	"dchain_allocate": "chain_out",
	"sketch_allocate": "sketch_out",
	"cht_fill_cht":    "cht_out",
}

// LoadObjectConfigs walks bdd's init-prelude and populates ctx with one
// ObjectConfig per allocator call recognised in allocatorCapacityArg
// (spec.md §3.5: "Initial per-object configurations parsed from the
// BDD's init-prelude"). Allocator calls this function does not recognise
// are silently skipped: the prelude may contain calls (e.g. a CHT's
// backend-count setup) that this toolchain does not model as objects.
func LoadObjectConfigs(bdd *bddgraph.BDD, ctx *Context) {
	for _, call := range bdd.InitPrelude {
		capArg, ok := allocatorCapacityArg[call.Function]
		if !ok {
			continue
		}
		objArg := allocatorObjectArg[call.Function]
		addr, ok := objectAddrOf(call, objArg)
		if !ok {
			continue
		}
		cfg := ObjectConfig{}
		if slot, ok := call.Arg(capArg); ok {
			if c, ok := slot.Expr.AsConstant(); ok {
				cfg.Capacity = int(c)
			}
		}
		if slot, ok := call.Arg("elem_size"); ok && slot.Expr != nil {
			if c, ok := slot.Expr.AsConstant(); ok {
				cfg.ElementBits = int(c) * 8
			}
		}
		ctx.SetObjectConfig(addr, cfg)
	}
}

// objectAddrOf extracts the address the allocator produced, from either
// the named out-slot's Out expression or, failing that, its Expr.
func objectAddrOf(call bddgraph.CallRecord, objArg string) (ObjectAddr, bool) {
	slot, ok := call.Arg(objArg)
	if !ok {
		return "", false
	}
	var e *expr.Expr
	switch {
	case slot.Out != nil:
		e = slot.Out
	case slot.Expr != nil:
		e = slot.Expr
	default:
		return "", false
	}
	return ObjectAddr(strings.TrimSpace(e.String())), true
}
