package cost

import (
	"math"

	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// RUpstream computes R_upstream(v): the upstream resistance to ground
// seen at v, including v's own R. An unbuffered switch
// passes the parent's accumulated R_upstream through; a buffered switch
// isolates it, restarting the accumulation at the switch.
func RUpstream(buffered bool, parentRUpstream, switchR, nodeR float64) float64 {
	base := switchR + nodeR
	if buffered {
		return base
	}
	return parentRUpstream + base
}

// ElmoreSegment returns the half-segment Elmore delay contribution of
// traversing into v: the switch delay plus the resistance seen from the
// switch to the midpoint of v's own segment, times v's capacitance.
func ElmoreSegment(rUpstreamV, nodeRV, switchTdel, nodeCV float64) float64 {
	rdel := rUpstreamV - 0.5*nodeRV
	return switchTdel + rdel*nodeCV
}

// InternalCapCorrection adds the upstream delay correction for a switch's
// internal capacitance, applied on the successor node because the switch
// type is only known once the edge has been selected.
func InternalCapCorrection(rUpstreamV, nodeRU, switchCinternal float64) float64 {
	rdelAdjust := rUpstreamV - 0.5*nodeRU
	return rdelAdjust * switchCinternal
}

// PresCost computes the present-congestion multiplier for a node, given
// its current occupancy (before adding this connection), capacity, and
// the iteration's present_factor.
func PresCost(occ, capacity int, presentFactor float64) float64 {
	over := occ + 1 - capacity
	if over < 0 {
		over = 0
	}
	return 1 + float64(over)*presentFactor
}

// BaseCost returns the node's base congestion cost. Pass-transistor-like
// pin nodes (IPIN/OPIN) scale with sqrt(fanout) to discourage routing
// through high-fanout pins; channel and terminal nodes are left at 1.0.
func BaseCost(node *rrg.Node, fanout int) float64 {
	switch node.Type {
	case rrg.IPIN, rrg.OPIN:
		if fanout < 1 {
			fanout = 1
		}
		return math.Sqrt(float64(fanout))
	default:
		return 1.0
	}
}

// Congestion computes cong = base_cost * acc_cost * pres_cost, with the
// non-configurable-set and choking-spot special cases applied.
// nonConfigFollowOn must be true for every member of a non-configurable
// set after the first one reached during the same expansion: its cost
// was already paid when the set was entered.
func Congestion(baseCost, accCost, presCost float64, nonConfigFollowOn bool, chokingDiscountShift uint) float64 {
	if nonConfigFollowOn {
		return 0
	}
	c := baseCost * accCost * presCost
	if chokingDiscountShift > 0 {
		c /= float64(uint64(1) << chokingDiscountShift)
	}
	return c
}

// EdgeInput gathers everything Evaluate needs about one u->v expansion.
type EdgeInput struct {
	FromNode      *rrg.Node
	ToNode        *rrg.Node
	Switch        *rrg.Switch
	FromRUpstream float64
	FromBackward  float64
	// Bend is true if u and v are on perpendicular channel axes
	// (CHANX<->CHANY), triggering the bend-cost penalty.
	Bend bool
	// NonConfigFollowOn is true when v is a later member of a
	// non-configurable set already entered during this expansion.
	NonConfigFollowOn bool
	// ChokingIPIN is true when v is a chosen choking-spot IPIN under flat
	// routing, eligible for the discount.
	ChokingIPIN bool
	ToOcc       int
	ToAccCost   float64
	ToFanout    int
}

// Result is the outcome of one edge evaluation: everything the search
// needs to decide acceptance and to push a new heap entry.
type Result struct {
	RUpstream    float64
	TdelSegment  float64
	Congestion   float64
	BackwardCost float64
	TotalCost    float64
}

// Evaluate computes the full cost of traversing in.FromNode -> in.ToNode
// via in.Switch, combining congestion and delay per the connection's
// criticality, and adds the lookahead heuristic h to produce the A* heap
// key.
func Evaluate(in EdgeInput, params Params, h float64) Result {
	rUp := RUpstream(in.Switch.Buffered, in.FromRUpstream, in.Switch.R, in.ToNode.R)

	tdel := ElmoreSegment(rUp, in.ToNode.R, in.Switch.Tdel, in.ToNode.C)
	tdel += InternalCapCorrection(rUp, in.FromNode.R, in.Switch.Cinternal)

	presCost := PresCost(in.ToOcc, in.ToNode.Capacity, params.PresentFactor)
	baseCost := BaseCost(in.ToNode, in.ToFanout)
	chokeShift := uint(0)
	if in.ChokingIPIN {
		chokeShift = params.ChokingDiscountShift
	}
	cong := Congestion(baseCost, in.ToAccCost, presCost, in.NonConfigFollowOn, chokeShift)

	backward := in.FromBackward + (1-params.Criticality)*cong + params.Criticality*tdel
	if in.Bend {
		backward += params.BendCost
	}

	return Result{
		RUpstream:    rUp,
		TdelSegment:  tdel,
		Congestion:   cong,
		BackwardCost: backward,
		TotalCost:    backward + h,
	}
}

// AccCostDelta is the per-iteration historical-cost bump applied to an
// overused node:
// acc_cost += max(0, occ - capacity) * acc_factor.
func AccCostDelta(occ, capacity int, accFactor float64) float64 {
	over := occ - capacity
	if over < 0 {
		return 0
	}
	return float64(over) * accFactor
}

// ApplyHistoricalUpdate bumps e.AccCost in place for one overused node.
func ApplyHistoricalUpdate(e *scratch.Entry, capacity int, accFactor float64) {
	e.AccCost += AccCostDelta(e.Occ, capacity, accFactor)
}
