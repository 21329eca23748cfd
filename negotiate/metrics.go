package negotiate

import (
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
)

// Metrics is one snapshot's headline ranking criteria. Wirelength is
// filled in by the loop itself from the current route trees; the timing
// figures come from Summary, since static timing analysis is an
// external collaborator.
type Metrics struct {
	SetupWNS float64
	SetupTNS float64
	HoldWNS  float64
	HoldTNS  float64

	// Wirelength is the total number of live RR-node tree entries across
	// every net's route tree, used as this core's wirelength proxy:
	// summing routed segment lengths instead would require RRG segment
	// metadata outside this module's scope.
	Wirelength int64
}

// Summary is negotiate's view of the timing engine's headline slack
// figures for the routing as it currently stands. A caller with no real
// STA engine available may use ZeroSummary to rank purely on wirelength.
type Summary interface {
	Metrics() Metrics
}

// ZeroSummary always reports zero slack, so better's ranking degenerates to
// "smallest wirelength wins" — useful when no timing engine is wired in.
type ZeroSummary struct{}

func (ZeroSummary) Metrics() Metrics { return Metrics{} }

var _ Summary = ZeroSummary{}

// better reports whether cand beats incumbent: higher (less negative)
// slack wins at each tier in order (sWNS, sTNS, hWNS, hTNS), and only
// once every slack figure ties does a smaller wirelength win.
func better(cand, incumbent Metrics) bool {
	if cand.SetupWNS != incumbent.SetupWNS {
		return cand.SetupWNS > incumbent.SetupWNS
	}
	if cand.SetupTNS != incumbent.SetupTNS {
		return cand.SetupTNS > incumbent.SetupTNS
	}
	if cand.HoldWNS != incumbent.HoldWNS {
		return cand.HoldWNS > incumbent.HoldWNS
	}
	if cand.HoldTNS != incumbent.HoldTNS {
		return cand.HoldTNS > incumbent.HoldTNS
	}
	return cand.Wirelength < incumbent.Wirelength
}

// reconvergenceRatio computes the fractional improvement of cand's sWNS
// over baseline's, used by the reconvergence exit. A baseline of
// exactly zero slack (already timing-clean) reports no possible further
// improvement.
func reconvergenceRatio(cand, baseline Metrics) float64 {
	if baseline.SetupWNS == 0 {
		return 0
	}
	return (cand.SetupWNS - baseline.SetupWNS) / absFloat(baseline.SetupWNS)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// wirelength sums the live node count of every tree in trees.
func wirelength(trees map[rrg.NetID]*routetree.Tree) int64 {
	var total int64
	for _, t := range trees {
		total += int64(len(t.AllNodes(routetree.RootIndex)))
	}
	return total
}

// Snapshot is an independent, frozen copy of every net's route tree at
// the moment it was taken.
type Snapshot map[rrg.NetID]*routetree.Tree

// snapshot deep-clones every tree in trees.
func snapshot(trees map[rrg.NetID]*routetree.Tree) Snapshot {
	out := make(Snapshot, len(trees))
	for id, t := range trees {
		out[id] = t.Clone()
	}
	return out
}
