// Package placement implements the per-EP placement context of spec.md
// §3.5/§4.4: object placement decisions, traffic fractions, per-node
// constraint memoisation, per-target resource tallies, and the two
// throughput estimates.
package placement

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/synapse-nf/synbdd/internal/expr"
)

// ObjectAddr identifies an NF data-structure object (a map, vector,
// dchain, sketch, or cht instance) by the address expression its calls
// pass around.
type ObjectAddr string

// Decision is the chosen target implementation kind for an object
// (spec.md §1/§3.5: "Tofino simple table", "host map", etc.). It is an
// opaque tag rather than a closed enum: each internal/targets package
// defines its own decision tags and this package only ever compares them
// by equality (idempotent Place/CanPlace).
type Decision struct {
	Target string // e.g. "tofino", "x86"
	Kind   string // e.g. "simple_table", "host_map", "host_vector"
}

func (d Decision) String() string { return d.Target + ":" + d.Kind }

// TargetCtx is the per-target resource tally interface implemented by
// each package under internal/targets (spec.md §3.5 "target_ctxs").
type TargetCtx interface {
	Name() string
	// EstimateThroughputPPS returns this target's estimated
	// packets-per-second capacity given its current resource tally
	// (spec.md §4.4).
	EstimateThroughputPPS() float64
}

// ObjectConfig captures an object's capacity/size configuration as
// parsed from the BDD's init-prelude (spec.md §3.5): map/vector/dchain/
// sketch/cht capacities and element sizes.
type ObjectConfig struct {
	Capacity    int
	ElementBits int
}

// ExpirationData is the optional expiration-policy info of spec.md §3.5.
type ExpirationData struct {
	ExpirationTimeNS int64
	FreedFlowsSymbol expr.Symbol
}

// Context is the per-EP placement state of spec.md §3.5. It is intended
// to be copy-on-write per EP successor (spec.md §3.6): Clone returns an
// independent copy sharing no mutable backing storage with the receiver.
type Context struct {
	placements        map[ObjectAddr]Decision
	trafficFractions  map[string]float64
	constraintsPerNode map[uint64]*expr.ConstraintSet // keyed by EPNode id
	targetCtxs        map[string]TargetCtx
	objectConfigs     map[ObjectAddr]ObjectConfig
	expiration        *ExpirationData

	estimatePPS     float64
	speculationPPS  float64
}

// NewContext builds an empty placement context.
func NewContext() *Context {
	return &Context{
		placements:         map[ObjectAddr]Decision{},
		trafficFractions:   map[string]float64{},
		constraintsPerNode: map[uint64]*expr.ConstraintSet{},
		targetCtxs:         map[string]TargetCtx{},
		objectConfigs:      map[ObjectAddr]ObjectConfig{},
	}
}

// Clone returns a context with independent maps but the same
// TargetCtx/ObjectConfig values (those are replaced wholesale, not
// mutated in place, by their owning target package — see
// internal/targets/*/ctx.go, each of whose Add* methods returns a new
// value).
func (c *Context) Clone() *Context {
	out := NewContext()
	for k, v := range c.placements {
		out.placements[k] = v
	}
	for k, v := range c.trafficFractions {
		out.trafficFractions[k] = v
	}
	for k, v := range c.constraintsPerNode {
		out.constraintsPerNode[k] = v
	}
	for k, v := range c.targetCtxs {
		out.targetCtxs[k] = v
	}
	for k, v := range c.objectConfigs {
		out.objectConfigs[k] = v
	}
	if c.expiration != nil {
		e := *c.expiration
		out.expiration = &e
	}
	out.estimatePPS = c.estimatePPS
	out.speculationPPS = c.speculationPPS
	return out
}

// Place records obj's placement decision. It is idempotent iff the prior
// decision agrees (spec.md §4.4); a conflicting call is a programmer bug
// per spec.md §7 ("the search is expected to have queried CanPlace
// first") and panics rather than returning an error.
func (c *Context) Place(obj ObjectAddr, d Decision) {
	if prior, ok := c.placements[obj]; ok {
		if prior != d {
			panic(errors.Errorf("placement: conflicting placement for %s: had %s, got %s", obj, prior, d))
		}
		return
	}
	c.placements[obj] = d
}

// CanPlace reports whether obj is unplaced or already placed identically
// to d (spec.md §4.4).
func (c *Context) CanPlace(obj ObjectAddr, d Decision) bool {
	prior, ok := c.placements[obj]
	return !ok || prior == d
}

// PlacementOf returns obj's decision, if any.
func (c *Context) PlacementOf(obj ObjectAddr) (Decision, bool) {
	d, ok := c.placements[obj]
	return d, ok
}

// AllPlaced reports whether every object in objs has a placement decision
// (used by the placement-coherence invariant, spec.md §8 invariant 5).
func (c *Context) AllPlaced(objs []ObjectAddr) bool {
	for _, o := range objs {
		if _, ok := c.placements[o]; !ok {
			return false
		}
	}
	return true
}

// UpdateTrafficFractions rebalances the traffic fraction moving from
// oldTarget to newTarget by delta, saturating each component at [0,1]
// (spec.md §4.4).
func (c *Context) UpdateTrafficFractions(oldTarget, newTarget string, delta float64) {
	if oldTarget != "" {
		v := c.trafficFractions[oldTarget] - delta
		c.trafficFractions[oldTarget] = clamp01(v)
	}
	if newTarget != "" {
		v := c.trafficFractions[newTarget] + delta
		c.trafficFractions[newTarget] = clamp01(v)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TrafficFraction returns the current traffic fraction routed to target.
func (c *Context) TrafficFraction(target string) float64 {
	return c.trafficFractions[target]
}

// UpdateConstraintsPerNode stores the path predicate active at epNodeID
// (spec.md §4.4). epNodeID is an opaque uint64 (internal/planner.EPNode
// ids) to avoid an import cycle between placement and planner.
func (c *Context) UpdateConstraintsPerNode(epNodeID uint64, cs *expr.ConstraintSet) {
	c.constraintsPerNode[epNodeID] = cs
}

// GetNodeConstraints returns the constraint set active at epNodeID,
// walking up via ancestors until a stored entry is found (spec.md §4.4).
// ancestorsOf is supplied by the caller (internal/planner) since Context
// has no notion of EPNode parentage; "ambiguous walks... are forbidden by
// construction" per spec.md because the search only forks at Branch
// modules and always stores both sides (see
// internal/planner.EP.ProcessLeaf), so the first ancestor chain reaching
// a stored entry is the only one that can exist.
func (c *Context) GetNodeConstraints(epNodeID uint64, ancestorsOf func(uint64) (uint64, bool)) *expr.ConstraintSet {
	id := epNodeID
	for {
		if cs, ok := c.constraintsPerNode[id]; ok {
			return cs
		}
		parent, ok := ancestorsOf(id)
		if !ok {
			return nil
		}
		id = parent
	}
}

// SetTargetCtx installs the resource tally for a target.
func (c *Context) SetTargetCtx(ctx TargetCtx) {
	c.targetCtxs[ctx.Name()] = ctx
}

// TargetCtxOf returns the resource tally for target, if any.
func (c *Context) TargetCtxOf(target string) (TargetCtx, bool) {
	t, ok := c.targetCtxs[target]
	return t, ok
}

// SetObjectConfig records obj's initial configuration, parsed from the
// BDD's init-prelude (spec.md §3.5).
func (c *Context) SetObjectConfig(obj ObjectAddr, cfg ObjectConfig) {
	c.objectConfigs[obj] = cfg
}

// ObjectConfigOf returns obj's configuration, if any.
func (c *Context) ObjectConfigOf(obj ObjectAddr) (ObjectConfig, bool) {
	cfg, ok := c.objectConfigs[obj]
	return cfg, ok
}

// SetExpirationData installs the optional expiration policy info.
func (c *Context) SetExpirationData(e ExpirationData) { c.expiration = &e }

// ExpirationDataOf returns the expiration policy info, if set.
func (c *Context) ExpirationDataOf() (ExpirationData, bool) {
	if c.expiration == nil {
		return ExpirationData{}, false
	}
	return *c.expiration, true
}

// EstimatePPS and SpeculationPPS return the two scalars computed by
// UpdateThroughputEstimates (spec.md §4.4).
func (c *Context) EstimatePPS() float64    { return c.estimatePPS }
func (c *Context) SpeculationPPS() float64 { return c.speculationPPS }

// UpdateThroughputEstimates recomputes estimate_pps as the traffic-
// fraction-weighted sum of each target's EstimateThroughputPPS (spec.md
// §4.4). speculation_pps is set separately by the planner's lookahead
// (internal/planner), which has the BDD/leaf context Context itself does
// not hold; UpdateThroughputEstimates only ever updates estimate_pps here
// and SetSpeculationPPS is the planner's write-back hook for the other
// half of the formula.
func (c *Context) UpdateThroughputEstimates() {
	var sum float64
	for target, ctx := range c.targetCtxs {
		sum += ctx.EstimateThroughputPPS() * c.trafficFractions[target]
	}
	c.estimatePPS = sum
}

// SetSpeculationPPS records the planner's lookahead result (spec.md
// §4.4).
func (c *Context) SetSpeculationPPS(v float64) { c.speculationPPS = v }

// TotalTrafficFraction sums every target's fraction, using *big.Rat-free
// float accumulation; callers that need an exact bound check (sums to
// <=1, spec.md §3.5) should prefer TotalTrafficFractionExact.
func (c *Context) TotalTrafficFraction() float64 {
	var sum float64
	for _, v := range c.trafficFractions {
		sum += v
	}
	return sum
}

// TotalTrafficFractionExact recomputes the traffic-fraction sum with
// arbitrary-precision rationals so that many small saturating updates
// cannot silently drift the "sums to <=1" invariant above 1 through float
// accumulation error. This mirrors the teacher's own choice, in
// Satcount (bdd.go), to use *big.Int rather than a float/int
// approximation whenever a count must not silently overflow or drift.
func (c *Context) TotalTrafficFractionExact() *big.Rat {
	sum := new(big.Rat)
	for _, v := range c.trafficFractions {
		r := new(big.Rat)
		r.SetFloat64(v)
		sum.Add(sum, r)
	}
	return sum
}
