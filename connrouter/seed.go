package connrouter

import (
	"github.com/katalvlaran/routecore/cost"
	"github.com/katalvlaran/routecore/lookahead"
	"github.com/katalvlaran/routecore/rheap"
	"github.com/katalvlaran/routecore/routerstats"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// SeedHeap performs the pre-search setup: push every
// expandable tree node as a candidate start point, scored by
// criticality*Tdel plus the lookahead estimate to target, then call
// Build. For high-fanout nets it restricts seeding to the ±3-bin window
// around target's bin, falling back to the whole tree if that yields
// fewer than two channel nodes. Exported so package parrouter's parallel
// search can reuse the identical seeding rule.
func SeedHeap(g *rrg.Graph, table *scratch.Table, h rheap.Interface, tree *routetree.Tree, target rrg.NodeID, params cost.Params, oracle lookahead.Oracle, fanout, highFanoutThreshold int, stats *routerstats.Stats) {
	candidates := tree.AllNodes(routetree.RootIndex)

	if fanout >= highFanoutThreshold && highFanoutThreshold > 0 {
		targetBox := g.Node(target).BBox
		lookup := routetree.BuildSpatialLookup(g, tree, fanout)
		near := lookup.Near(targetBox.XLow, targetBox.YLow, 3)

		channelCount := 0
		for _, idx := range near {
			rr := g.Node(tree.Node(idx).RRNode)
			if rr.Type == rrg.CHANX || rr.Type == rrg.CHANY {
				channelCount++
			}
		}
		if channelCount >= 2 {
			candidates = near
		}
	}

	lookaheadParams := lookahead.CostParams{Criticality: params.Criticality, AstarFactor: params.AstarFactor}

	binHeap, isBinary := h.(*rheap.BinaryHeap)
	for _, idx := range candidates {
		node := tree.Node(idx)
		if !node.ReExpand {
			continue
		}
		backward := params.Criticality * node.Tdel
		hEst := params.AstarFactor * oracle.ExpectedCost(node.RRNode, target, lookaheadParams, node.RUpstream)
		total := backward + hEst

		e := table.Entry(node.RRNode)
		e.PathCost = total
		e.BackwardCost = backward
		e.PrevNode = rrg.NO_ID
		e.PrevEdge = rrg.NO_ID
		e.RUpstream = node.RUpstream
		table.MarkModified(node.RRNode)

		item := rheap.Item{Node: node.RRNode, Priority: total, BackwardCost: backward, PrevNode: rrg.NO_ID, PrevEdge: rrg.NO_ID, RUpstream: node.RUpstream}
		if isBinary {
			binHeap.PushBack(item)
		} else {
			h.Push(item)
		}
		if stats != nil {
			rrNode := g.Node(node.RRNode)
			stats.RecordHeapPush(rrNode.Type, false)
		}
	}
	h.Build()
}
