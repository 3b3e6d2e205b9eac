// Package x86 implements the control-plane/host CPU target of spec.md
// §1: a CPU-cycles-per-packet resource tally plus a generic
// call-passthrough module generator for any library call not placed on
// Tofino, grounded on original_source's x86/packet_parse_cpu.h for the
// per-call cycle costs and host-side object memory accounting
// (SPEC_FULL.md "Targets").
package x86

// Ctx tracks per-packet CPU cycles spent and host-side bytes committed
// to map/vector/dchain/sketch backing storage.
type Ctx struct {
	CyclesPerPacket int
	HostBytesUsed   int
}

func NewCtx() *Ctx { return &Ctx{} }

func (c *Ctx) Name() string { return "x86" }

// EstimateThroughputPPS models a fixed per-core clock divided by the
// cycles this EP currently spends per packet (spec.md §1 "cost/capacity
// bookkeeping" only, not a validated microarchitectural model).
func (c *Ctx) EstimateThroughputPPS() float64 {
	if c.CyclesPerPacket <= 0 {
		return coreClockHz
	}
	return coreClockHz / float64(c.CyclesPerPacket)
}

const coreClockHz = 3_000_000_000 // a representative 3GHz host core

func (c *Ctx) Clone() *Ctx {
	clone := *c
	return &clone
}

// AddCycles and AddHostBytes record a module's incremental cost; x86 has
// no hard resource cap the way Tofino's stages/SRAM do (a host can always
// spill to more memory, just slower), so these never fail.
func (c *Ctx) AddCycles(n int) *Ctx {
	out := c.Clone()
	out.CyclesPerPacket += n
	return out
}

func (c *Ctx) AddHostBytes(n int) *Ctx {
	out := c.Clone()
	out.HostBytesUsed += n
	return out
}
