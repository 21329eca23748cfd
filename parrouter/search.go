package parrouter

import (
	"context"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"go.uber.org/zap"

	"github.com/katalvlaran/routecore/connrouter"
	"github.com/katalvlaran/routecore/cost"
	"github.com/katalvlaran/routecore/lookahead"
	"github.com/katalvlaran/routecore/rheap"
	"github.com/katalvlaran/routecore/routerlog"
	"github.com/katalvlaran/routecore/routerstats"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
)

// Request bundles everything one parallel connection search needs; it
// mirrors connrouter.Request field for field with the addition of
// Workers.
type Request struct {
	Tree           *routetree.Tree
	Target         rrg.NodeID
	TargetPinIndex int
	BBox           rrg.BoundingBox
	FullDeviceBBox bool
	Params         cost.Params
	Oracle         lookahead.Oracle

	Fanout              int
	HighFanoutThreshold int
	HoldRepairActive    bool
	Stats               *routerstats.Stats

	// NetID, Iteration and Logger are carried purely for structured
	// logging; Logger nil disables it.
	NetID     rrg.NetID
	Iteration int
	Logger    *zap.SugaredLogger

	// Workers is the size of the worker pool; values below 1 are treated
	// as 1 (a single goroutine still goes through the locked/concurrent
	// code paths, the baseline for determinism comparisons).
	Workers int

	// TargetPruneRescale and TargetPruneOffset derive the
	// non-over-estimating heuristic used for post-target pruning from the
	// ordering heuristic: h_under = h*TargetPruneRescale -
	// TargetPruneOffset. The ordering heuristic may over-estimate; the
	// prune must not, or a cheaper path still in flight could be
	// discarded. A zero Rescale is treated as 1 with no offset.
	TargetPruneRescale float64
	TargetPruneOffset  float64
}

// Result reports where the new path attached and which tree leaf it
// reached, identical in shape to connrouter.Result.
type Result struct {
	Attach routetree.NodeIndex
	Sink   routetree.NodeIndex
}

// Search runs one parallel A* connection search and, on
// success, splices the winning path into req.Tree. lt and h are the
// shared, thread-safe scratch state for the whole net (not just this
// sink); they are reset to their untouched state before returning.
func Search(ctx context.Context, g *rrg.Graph, lt *LockedTable, h *ConcurrentHeap, req Request) (Result, error) {
	workers := req.Workers
	if workers < 1 {
		workers = 1
	}

	h.Empty()
	connrouter.SeedHeap(g, lt.Table(), h, req.Tree, req.Target, req.Params, req.Oracle, req.Fanout, req.HighFanoutThreshold, req.Stats)

	if h.IsEmpty() {
		lt.ResetSearch()
		if req.Logger != nil {
			req.Logger.Debugw("parallel connection search seeded empty heap", routerlog.Fields(int32(req.NetID), req.Iteration, 0)...)
		}
		return Result{}, searchFailure(req.FullDeviceBBox)
	}

	s := &sharedSearch{g: g, lt: lt, h: h, req: req, nonConfigEntered: map[int]bool{}}
	s.pruneRescale, s.pruneOffset = req.TargetPruneRescale, req.TargetPruneOffset
	if s.pruneRescale == 0 {
		s.pruneRescale, s.pruneOffset = 1, 0
	}
	s.tStarBits.Store(math.Float64bits(math.Inf(1)))

	var idle atomic.Int32
	grp, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		grp.Go(func() error { return s.run(gctx, &idle, int32(workers)) })
	}

	if err := grp.Wait(); err != nil {
		lt.ResetSearch()
		return Result{}, err
	}

	if !s.found.Load() {
		lt.ResetSearch()
		return Result{}, searchFailure(req.FullDeviceBBox)
	}

	attach, sink, err := req.Tree.UpdateFromHeap(g, lt.Table(), req.Target, req.TargetPinIndex)
	if err != nil {
		lt.ResetSearch()
		return Result{}, err
	}
	if req.Stats != nil {
		req.Stats.RecordRouteTreePush()
		req.Stats.RecordConnectionRouted()
	}
	lt.ResetSearch()

	if req.Logger != nil {
		req.Logger.Debugw("parallel connection routed",
			append(routerlog.Fields(int32(req.NetID), req.Iteration, 0), "target_pin", req.TargetPinIndex, "workers", workers)...)
	}

	return Result{Attach: attach, Sink: sink}, nil
}

func searchFailure(fullDevice bool) error {
	if fullDevice {
		return ErrUnrouteable
	}
	return ErrRetryFullBBox
}

// sharedSearch is the state every worker of one Search call reads and
// writes concurrently: the race-free pieces (found, tStarBits) use
// atomics directly; nonConfigEntered is small and touched rarely enough
// that a plain mutex costs nothing worth avoiding.
type sharedSearch struct {
	g   *rrg.Graph
	lt  *LockedTable
	h   *ConcurrentHeap
	req Request

	found        atomic.Bool
	tStarBits    atomic.Uint64
	pruneRescale float64
	pruneOffset  float64

	nonConfigMu      sync.Mutex
	nonConfigEntered map[int]bool
}

func (s *sharedSearch) tStar() float64 { return math.Float64frombits(s.tStarBits.Load()) }

// lowerTStar lowers the post-target pruning bound to v if v is smaller
// than the current bound.
func (s *sharedSearch) lowerTStar(v float64) {
	for {
		cur := s.tStarBits.Load()
		if v >= math.Float64frombits(cur) {
			return
		}
		if s.tStarBits.CompareAndSwap(cur, math.Float64bits(v)) {
			return
		}
	}
}

// run is one worker's loop: pop, process, and detect pool-wide
// termination via the shared idle counter.
func (s *sharedSearch) run(ctx context.Context, idle *atomic.Int32, workers int32) error {
	for {
		it, ok, err := s.popOrWait(ctx, idle, workers)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		s.process(it)
	}
}

func (s *sharedSearch) popOrWait(ctx context.Context, idle *atomic.Int32, workers int32) (rheap.Item, bool, error) {
	if it, ok := s.h.PopMin(); ok {
		return it, true, nil
	}

	idle.Add(1)
	for {
		if err := ctx.Err(); err != nil {
			idle.Add(-1)
			return rheap.Item{}, false, err
		}
		if it, ok := s.h.PopMin(); ok {
			idle.Add(-1)
			return it, true, nil
		}
		if idle.Load() >= workers {
			return rheap.Item{}, false, nil
		}
		runtime.Gosched()
	}
}

func (s *sharedSearch) process(u rheap.Item) {
	if s.req.Stats != nil {
		s.req.Stats.RecordHeapPop(s.g.Node(u.Node).Type, false)
	}

	if u.Node == s.req.Target {
		s.lt.Lock(u.Node)
		cur := s.lt.Peek(u.Node).PathCost
		s.lt.Unlock(u.Node)
		if u.Priority == cur {
			s.found.Store(true)
			s.lowerTStar(u.Priority)
		}
		return
	}

	if s.found.Load() {
		hUnder := (u.Priority-u.BackwardCost)*s.pruneRescale - s.pruneOffset
		if u.BackwardCost+hUnder > s.tStar() {
			return // post-target pruning: cannot possibly beat the known best
		}
	}

	s.lt.Lock(u.Node)
	cur := s.lt.Peek(u.Node).PathCost
	s.lt.Unlock(u.Node)
	if u.Priority != cur {
		return // stale: a cheaper path to u.Node was recorded since it was pushed
	}

	s.expand(u)
}

// expand mirrors connrouter's expand, with the per-target-node
// read-modify-write protected by LockedTable's spin lock.
func (s *sharedSearch) expand(u rheap.Item) {
	g, req := s.g, s.req
	fromNode := g.Node(u.Node)
	target := req.Target
	targetTile := g.Node(target).BBox
	lookaheadParams := lookahead.CostParams{Criticality: req.Params.Criticality, AstarFactor: req.Params.AstarFactor}

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
			s.nonConfigMu.Lock()
			followOn = s.nonConfigEntered[set.ID]
			s.nonConfigEntered[set.ID] = true
			s.nonConfigMu.Unlock()
		}

		// Pre-lock filter: speculative unlocked read.
		speculative := s.lt.Peek(v)
		in := cost.EdgeInput{
			FromNode:          fromNode,
			ToNode:            toNode,
			Switch:            sw,
			FromRUpstream:     u.RUpstream,
			FromBackward:      u.BackwardCost,
			Bend:              isBend(fromNode.Type, toNode.Type),
			NonConfigFollowOn: followOn,
			ToOcc:             speculative.Occ,
			ToAccCost:         speculative.AccCost,
			ToFanout:          g.Fanout(v),
		}
		rUp := cost.RUpstream(sw.Buffered, u.RUpstream, sw.R, toNode.R)
		hEst := req.Params.AstarFactor * req.Oracle.ExpectedCost(v, target, lookaheadParams, rUp)
		result := cost.Evaluate(in, req.Params, hEst)

		if !rheap.Accepts(result.TotalCost, u.Node, rrg.EdgeID(edgeIdx), speculative.PathCost, speculative.PrevNode, speculative.PrevEdge) {
			continue
		}

		// Re-check inside the lock.
		s.lt.Lock(v)
		e := s.lt.Table().Entry(v)
		if !rheap.Accepts(result.TotalCost, u.Node, rrg.EdgeID(edgeIdx), e.PathCost, e.PrevNode, e.PrevEdge) {
			s.lt.Unlock(v)
			continue
		}
		e.PathCost = result.TotalCost
		e.BackwardCost = result.BackwardCost
		e.PrevNode = u.Node
		e.PrevEdge = rrg.EdgeID(edgeIdx)
		e.RUpstream = result.RUpstream
		e.Version++
		s.lt.Unlock(v)
		s.lt.MarkModified(v)

		// No lock held while pushing to the heap.
		s.h.Push(rheap.Item{Node: v, Priority: result.TotalCost, BackwardCost: result.BackwardCost, PrevNode: u.Node, PrevEdge: rrg.EdgeID(edgeIdx), RUpstream: result.RUpstream})
		if req.Stats != nil {
			req.Stats.RecordHeapPush(toNode.Type, false)
		}
	}
}

func isBend(from, to rrg.NodeType) bool {
	return (from == rrg.CHANX && to == rrg.CHANY) || (from == rrg.CHANY && to == rrg.CHANX)
}
