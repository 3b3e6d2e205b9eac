package placement

import (
	"testing"

	"github.com/synapse-nf/synbdd/internal/bddgraph"
	"github.com/synapse-nf/synbdd/internal/expr"
)

//********************************************************************************************

func TestLoadObjectConfigsMapAllocate(t *testing.T) {
	bdd := bddgraph.New()
	bdd.InitPrelude = []bddgraph.CallRecord{
		{
			Function: "map_allocate",
			Args: map[string]bddgraph.ArgSlot{
				"capacity": {Expr: expr.Const(1024, 32)},
				"map_out":  {Out: expr.Const(42, 64)},
			},
		},
	}

	ctx := NewContext()
	LoadObjectConfigs(bdd, ctx)

	cfg, ok := ctx.ObjectConfigOf(ObjectAddr("42"))
	if !ok {
		t.Fatalf("ObjectConfigOf(42): expected a config parsed from the init-prelude, actual none")
	}
	if cfg.Capacity != 1024 {
		t.Errorf("ObjectConfig.Capacity: expected 1024, actual %d", cfg.Capacity)
	}
}

func TestLoadObjectConfigsIgnoresUnknownAllocator(t *testing.T) {
	bdd := bddgraph.New()
	bdd.InitPrelude = []bddgraph.CallRecord{
		{Function: "cht_fill_backend_ips", Args: map[string]bddgraph.ArgSlot{}},
	}
	ctx := NewContext()
	LoadObjectConfigs(bdd, ctx) // must not panic on a call this package doesn't model
	if len(ctx.objectConfigs) != 0 {
		t.Errorf("LoadObjectConfigs with an unrecognised allocator: expected no configs, actual %d", len(ctx.objectConfigs))
	}
}
