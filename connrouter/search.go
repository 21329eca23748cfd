package connrouter

import (
	"context"

	"go.uber.org/zap"

	"github.com/katalvlaran/routecore/cost"
	"github.com/katalvlaran/routecore/lookahead"
	"github.com/katalvlaran/routecore/rheap"
	"github.com/katalvlaran/routecore/routerlog"
	"github.com/katalvlaran/routecore/routerstats"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// Request bundles everything one connection search needs.
type Request struct {
	Tree           *routetree.Tree
	Target         rrg.NodeID
	TargetPinIndex int
	BBox           rrg.BoundingBox
	// FullDeviceBBox marks BBox as already spanning the whole device: on
	// failure, Search returns ErrUnrouteable instead of ErrRetryFullBBox.
	FullDeviceBBox bool
	Params         cost.Params
	Oracle         lookahead.Oracle
	// Fanout and HighFanoutThreshold gate the high-fanout spatial-seeding
	// path; HighFanoutThreshold <= 0 disables it.
	Fanout              int
	HighFanoutThreshold int
	// HoldRepairActive disables the bounding-box prune.
	HoldRepairActive bool
	// Debug, if true, drains the remaining heap after success so every
	// touched-but-unexpanded node's path_cost reflects the best estimate
	// seen, for visualization only.
	Debug bool
	Stats *routerstats.Stats

	// NetID, Iteration and Logger are carried purely for structured
	// logging; Logger nil disables it.
	NetID     rrg.NetID
	Iteration int
	Logger    *zap.SugaredLogger
}

// Result reports where the new path attached and which tree leaf it
// reached.
type Result struct {
	Attach routetree.NodeIndex
	Sink   routetree.NodeIndex
}

// Search runs one A* connection search and, on success, splices the
// winning path into req.Tree. table and h are scratch
// state owned by the caller: one scratch.Table and one rheap.Interface
// per net, reused across sinks (the search resets only its own
// modified-list entries on return).
func Search(ctx context.Context, g *rrg.Graph, table *scratch.Table, h rheap.Interface, req Request) (Result, error) {
	h.Empty()
	SeedHeap(g, table, h, req.Tree, req.Target, req.Params, req.Oracle, req.Fanout, req.HighFanoutThreshold, req.Stats)

	if h.IsEmpty() {
		table.ResetSearch()
		if req.Logger != nil {
			req.Logger.Debugw("connection search seeded empty heap", routerlog.Fields(int32(req.NetID), req.Iteration, 0)...)
		}
		return Result{}, searchFailure(req.FullDeviceBBox)
	}

	lookaheadParams := lookahead.CostParams{Criticality: req.Params.Criticality, AstarFactor: req.Params.AstarFactor}
	nonConfigEntered := map[int]bool{}

	var winner rrg.NodeID
	found := false

	popCount := 0
	for !h.IsEmpty() {
		popCount++
		if popCount%1024 == 0 {
			select {
			case <-ctx.Done():
				table.ResetSearch()
				return Result{}, ctx.Err()
			default:
			}
		}

		it, ok := h.PopMin()
		if !ok {
			break
		}
		if req.Stats != nil {
			req.Stats.RecordHeapPop(g.Node(it.Node).Type, false)
		}

		if it.Node == req.Target {
			winner = it.Node
			found = true
			break
		}

		e := table.Entry(it.Node)
		if it.Priority != e.PathCost {
			continue // post-heap prune: a better path was recorded since this entry was pushed
		}

		expand(g, table, h, it, req, lookaheadParams, nonConfigEntered)
	}

	if !found {
		table.ResetSearch()
		return Result{}, searchFailure(req.FullDeviceBBox)
	}

	attach, sink, err := req.Tree.UpdateFromHeap(g, table, winner, req.TargetPinIndex)
	if err != nil {
		table.ResetSearch()
		return Result{}, err
	}
	if req.Stats != nil {
		req.Stats.RecordRouteTreePush()
		req.Stats.RecordConnectionRouted()
	}

	if req.Debug {
		drainForDebug(g, table, h, req.Stats)
	}
	table.ResetSearch()

	if req.Logger != nil {
		req.Logger.Debugw("connection routed",
			append(routerlog.Fields(int32(req.NetID), req.Iteration, 0), "target_pin", req.TargetPinIndex)...)
	}

	return Result{Attach: attach, Sink: sink}, nil
}

func searchFailure(fullDevice bool) error {
	if fullDevice {
		return ErrUnrouteable
	}
	return ErrRetryFullBBox
}

// expand evaluates every outgoing edge of the just-popped node u and
// pushes any improving successor.
func expand(g *rrg.Graph, table *scratch.Table, h rheap.Interface, u rheap.Item, req Request, lookaheadParams lookahead.CostParams, nonConfigEntered map[int]bool) {
	fromNode := g.Node(u.Node)
	target := req.Target
	targetTile := g.Node(target).BBox

	for edgeIdx, edge := range fromNode.Edges {
		v := edge.To
		toNode := g.Node(v)

		if !req.HoldRepairActive && !req.BBox.Overlaps(toNode.BBox) {
			continue
		}
		if toNode.Type == rrg.IPIN && !targetTile.Overlaps(toNode.BBox) {
			continue
		}

		sw := g.Switch(edge.Switch)

		followOn := false
		if set, ok := g.NonConfigSetOf(v); ok {
			followOn = nonConfigEntered[set.ID]
			nonConfigEntered[set.ID] = true
		}

		in := cost.EdgeInput{
			FromNode:          fromNode,
			ToNode:            toNode,
			Switch:            sw,
			FromRUpstream:     u.RUpstream,
			FromBackward:      u.BackwardCost,
			Bend:              isBend(fromNode.Type, toNode.Type),
			NonConfigFollowOn: followOn,
			ToOcc:             table.Entry(v).Occ,
			ToAccCost:         table.Entry(v).AccCost,
			ToFanout:          g.Fanout(v),
		}

		rUp := cost.RUpstream(sw.Buffered, u.RUpstream, sw.R, toNode.R)
		hEst := req.Params.AstarFactor * req.Oracle.ExpectedCost(v, target, lookaheadParams, rUp)
		result := cost.Evaluate(in, req.Params, hEst)

		e := table.Entry(v)
		if !accepts(result.TotalCost, u.Node, rrg.EdgeID(edgeIdx), e) {
			continue
		}

		e.PathCost = result.TotalCost
		e.BackwardCost = result.BackwardCost
		e.PrevNode = u.Node
		e.PrevEdge = rrg.EdgeID(edgeIdx)
		e.RUpstream = result.RUpstream
		table.MarkModified(v)

		h.Push(rheap.Item{Node: v, Priority: result.TotalCost, BackwardCost: result.BackwardCost, PrevNode: u.Node, PrevEdge: rrg.EdgeID(edgeIdx), RUpstream: result.RUpstream})
		if req.Stats != nil {
			req.Stats.RecordHeapPush(toNode.Type, false)
		}
	}
}

// accepts delegates to rheap.Accepts.
func accepts(newTotal float64, newPrevNode rrg.NodeID, newPrevEdge rrg.EdgeID, cur *scratch.Entry) bool {
	return rheap.Accepts(newTotal, newPrevNode, newPrevEdge, cur.PathCost, cur.PrevNode, cur.PrevEdge)
}

func isBend(from, to rrg.NodeType) bool {
	return (from == rrg.CHANX && to == rrg.CHANY) || (from == rrg.CHANY && to == rrg.CHANX)
}

// drainForDebug pops every remaining heap entry and records its
// estimate on the scratch table, so debug tooling can visualize the
// best estimate seen for every touched-but-unexpanded node. It never
// mutates routing decisions.
func drainForDebug(g *rrg.Graph, table *scratch.Table, h rheap.Interface, stats *routerstats.Stats) {
	for {
		it, ok := h.PopMin()
		if !ok {
			break
		}
		e := table.Entry(it.Node)
		if it.Priority < e.PathCost {
			e.PathCost = it.Priority
			table.MarkModified(it.Node)
		}
		if stats != nil {
			stats.RecordHeapPop(g.Node(it.Node).Type, false)
		}
	}
}
