// Package tofino implements a representative slice of the programmable
// switch ASIC target of spec.md §1 (SPEC_FULL.md "Targets"): a resource
// tally tracking match-action stages, SRAM, and PHV bits, plus module
// generators for table lookups, register-backed vector access, simple
// forwarding, and a send-to-controller handoff.
//
// Grounded on original_source/tools/synapse/targets/{context,module}.cpp
// for the target/module split, and on the per-family bmv2/tofino module
// headers (data_structures.h, send_to_controller.h) for the resource
// dimensions and module kinds reproduced here. Table/register capacity
// numbers are illustrative constants, not lifted from any particular
// Tofino generation's datasheet — spec.md §1 explicitly scopes code
// emission and exact hardware modelling out.
package tofino

// Ctx tracks the resources spec.md's placement accounting needs per
// target (placement.TargetCtx): match-action stages consumed, SRAM bits,
// and PHV (packet header vector) bits committed to carrying state
// between stages.
type Ctx struct {
	StagesUsed   int
	StagesTotal  int
	SRAMBitsUsed int
	SRAMBitsCap  int
	PHVBitsUsed  int
	PHVBitsCap   int
}

// NewCtx returns an empty tally sized to a representative Tofino-class
// pipeline (12 stages, a few MB of SRAM, a few hundred PHV bytes — the
// illustrative constants noted in the package doc).
func NewCtx() *Ctx {
	return &Ctx{
		StagesTotal: 12,
		SRAMBitsCap: 8 * 1024 * 1024,
		PHVBitsCap:  512 * 8,
	}
}

func (c *Ctx) Name() string { return "tofino" }

// EstimateThroughputPPS models per-stage processing at a fixed clock,
// degraded by stage pressure: more stages used per packet means fewer
// packets per cycle, matching the original's "fewer stages free, lower
// throughput" intuition without claiming a validated hardware model
// (spec.md §1 "cost/capacity bookkeeping" only).
func (c *Ctx) EstimateThroughputPPS() float64 {
	if c.StagesUsed == 0 {
		return baseClockHz
	}
	free := float64(c.StagesTotal - c.StagesUsed)
	if free <= 0 {
		return 0
	}
	return baseClockHz * (free / float64(c.StagesTotal))
}

const baseClockHz = 1_000_000_000 // 1 packet/cycle at a 1GHz notional pipeline clock

// Clone returns an independent copy, for use by module generators that
// must speculatively tally a candidate module before committing it
// (spec.md §4.5 "Speculate").
func (c *Ctx) Clone() *Ctx {
	clone := *c
	return &clone
}

// AddTable reserves one stage and srambits of SRAM for a match-action
// table, returning ok=false if either budget would be exceeded.
func (c *Ctx) AddTable(srambits int) (*Ctx, bool) {
	out := c.Clone()
	out.StagesUsed++
	out.SRAMBitsUsed += srambits
	if out.StagesUsed > out.StagesTotal || out.SRAMBitsUsed > out.SRAMBitsCap {
		return c, false
	}
	return out, true
}

// AddRegister reserves PHV bits for a register-backed vector/counter
// access, returning ok=false if the PHV budget would be exceeded.
func (c *Ctx) AddRegister(phvbits int) (*Ctx, bool) {
	out := c.Clone()
	out.PHVBitsUsed += phvbits
	if out.PHVBitsUsed > out.PHVBitsCap {
		return c, false
	}
	return out, true
}
