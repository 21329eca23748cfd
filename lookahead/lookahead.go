// Package lookahead defines the external oracle the connection router
// consults for its A* heuristic: an admissible (or, for correctness-only
// testing, merely non-negative) estimate of the remaining cost from a
// node to a target sink. Construction of the lookahead data structure
// itself is out of scope; this package only describes the
// query interface consumed by package connrouter and how to obtain a
// no-op oracle that degrades the search to Dijkstra.
package lookahead

import "github.com/katalvlaran/routecore/rrg"

// CostParams bundles the subset of cost.Params the lookahead needs to
// scale its estimate (criticality and astar_fac), without importing
// package cost and creating a cycle.
type CostParams struct {
	Criticality float64
	AstarFactor float64
}

// Estimate is the oracle's answer: a delay-like scalar plus, when asked,
// an accompanying congestion estimate.
type Estimate struct {
	Delay      float64
	Congestion float64
}

// Oracle is the interface package connrouter consumes. Implementations
// must be safe for concurrent use by multiple goroutines: the parallel
// connection router (package parrouter) queries the same Oracle from
// every worker.
//
// The core must remain correct under any non-negative Oracle and optimal
// under an admissible one — Oracle is treated
// strictly as a black box, never inspected or special-cased by its
// callers.
type Oracle interface {
	// ExpectedCost returns a delay-like scalar estimate of the remaining
	// cost from node to target, given the upstream resistance accrued so
	// far (which affects the Elmore delay estimate downstream).
	ExpectedCost(node, target rrg.NodeID, params CostParams, rUpstream float64) float64

	// ExpectedDelayAndCongestion returns both a delay and a congestion
	// estimate; used by the flat/choking-spot router path.
	ExpectedDelayAndCongestion(node, target rrg.NodeID, params CostParams, rUpstream float64) Estimate
}

// NoOp is an Oracle that always returns zero, degrading the connection
// router's A* search to plain Dijkstra. Used to test the search in
// isolation from any concrete lookahead implementation.
type NoOp struct{}

func (NoOp) ExpectedCost(rrg.NodeID, rrg.NodeID, CostParams, float64) float64 { return 0 }

func (NoOp) ExpectedDelayAndCongestion(rrg.NodeID, rrg.NodeID, CostParams, float64) Estimate {
	return Estimate{}
}

var _ Oracle = NoOp{}
