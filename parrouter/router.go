package parrouter

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/routecore/cost"
	"github.com/katalvlaran/routecore/lookahead"
	"github.com/katalvlaran/routecore/negotiate"
	"github.com/katalvlaran/routecore/netrouter"
	"github.com/katalvlaran/routecore/routerlog"
	"github.com/katalvlaran/routecore/routerstats"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
)

// Router is the parallel counterpart of negotiate.SerialRouter: same
// per-net sequencing (clock pre-route, criticality-ordered sinks, delay
// push-back) driven by package netrouter's helpers, but each sink's
// connection search runs on the shared worker pool instead of a single
// goroutine. Nets themselves are still routed one at a time, in netlist
// order; parallelism comes entirely from within each connection's
// search.
type Router struct {
	G           *rrg.Graph
	Netlist     *rrg.Netlist
	LT          *LockedTable
	Oracle      lookahead.Oracle
	Timing      netrouter.Timing
	Connections *netrouter.ConnectionsInfo
	Config      netrouter.Config
	NewHeap     func() *ConcurrentHeap
	Stats       *routerstats.Stats
	Logger      *zap.SugaredLogger
	DeviceBBox  rrg.BoundingBox
	BendCost    float64
	AstarFactor float64
	Workers     int
	ClockRoots  map[rrg.NetID]rrg.NodeID

	// TargetPruneRescale and TargetPruneOffset configure the post-target
	// pruning underestimate (see Request); the zero values keep the
	// ordering heuristic as-is.
	TargetPruneRescale float64
	TargetPruneOffset  float64

	trees        map[rrg.NetID]*routetree.Tree
	bboxes       map[rrg.NetID]rrg.BoundingBox
	overuseSlope float64
	conflicted   bool
}

// NewRouter returns a Router with every net's initial bounding box
// computed the same way negotiate.NewSerialRouter does.
func NewRouter(r Router) *Router {
	r.trees = make(map[rrg.NetID]*routetree.Tree, len(r.Netlist.Nets))
	r.bboxes = make(map[rrg.NetID]rrg.BoundingBox, len(r.Netlist.Nets))
	r.overuseSlope = math.NaN()
	for i := range r.Netlist.Nets {
		net := &r.Netlist.Nets[i]
		r.bboxes[net.ID] = netrouter.NetBoundingBox(r.G, net, r.Config.BBFactor)
	}
	return &r
}

func (r *Router) RouteIteration(ctx context.Context, iter int, presFac float64) (map[rrg.NetID]*routetree.Tree, error) {
	h := r.NewHeap()
	for i := range r.Netlist.Nets {
		net := &r.Netlist.Nets[i]
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if net.IsIgnored {
			continue
		}

		holdRipup := !r.Config.Budgets.IsFinished()
		setupConnections := r.Connections
		if r.conflicted {
			setupConnections = nil // conflicted mode: no more delay-driven forced reroute
		}
		tree := netrouter.SetupNet(r.G, r.LT.Table(), net, r.trees[net.ID], iter, r.Config, r.Timing, setupConnections, holdRipup)

		var clockRoot *rrg.NodeID
		if root, ok := r.ClockRoots[net.ID]; ok {
			clockRoot = &root
		}

		if err := r.routeNet(ctx, net, tree, clockRoot, h, presFac, iter); err != nil {
			return nil, err
		}
		r.trees[net.ID] = tree
	}
	return r.trees, nil
}

// routeNet mirrors netrouter.RouteNet's sequencing, substituting
// parrouter.Search for connrouter.Search at the per-sink level.
func (r *Router) routeNet(ctx context.Context, net *rrg.Net, tree *routetree.Tree, clockRoot *rrg.NodeID, h *ConcurrentHeap, presFac float64, iter int) error {
	if r.Logger != nil {
		r.Logger.Debugw("routing net", routerlog.Fields(int32(net.ID), iter, 0)...)
	}

	if clockRoot != nil {
		if err := r.routeClockPreRoute(ctx, net, tree, *clockRoot, h, presFac, iter); err != nil {
			return &netrouter.SearchError{Net: net.ID, Pin: netrouter.ClockRootPinIndex, Err: err}
		}
	}

	remaining := tree.GetRemainingSinks()
	order := netrouter.OrderSinksByCriticality(net.ID, r.Timing, remaining, r.Config)

	for _, pin := range order {
		if err := r.routeSink(ctx, net, tree, pin, h, presFac, iter); err != nil {
			return &netrouter.SearchError{Net: net.ID, Pin: pin, Err: err}
		}
	}

	if r.Stats != nil {
		r.Stats.RecordNetRouted()
	}
	if r.Logger != nil {
		r.Logger.Infow("net routed", routerlog.Fields(int32(net.ID), iter, 0)...)
	}
	r.updateDelays(net, tree)
	return nil
}

func (r *Router) routeSink(ctx context.Context, net *rrg.Net, tree *routetree.Tree, pin int, h *ConcurrentHeap, presFac float64, iter int) error {
	target := net.Sinks[pin-1]
	rawCrit := 0.0
	if r.Timing != nil {
		rawCrit = r.Timing.Criticality(net.ID, pin)
	}
	criticality := netrouter.ShapeCriticality(rawCrit, r.Config.MaxCriticality, r.Config.CriticalityExp)

	params := cost.NewParams(
		cost.WithCriticality(criticality),
		cost.WithAstarFactor(r.AstarFactor),
		cost.WithBendCost(r.BendCost),
		cost.WithPresentFactor(presFac),
	)

	slopeOK := r.Config.HighFanoutMaxSlope <= 0 ||
		math.IsNaN(r.overuseSlope) ||
		r.overuseSlope <= r.Config.HighFanoutMaxSlope
	useHighFanout := r.Config.HighFanoutThreshold > 0 &&
		net.Fanout() >= r.Config.HighFanoutThreshold &&
		criticality < r.Config.HighFanoutCriticalityCutoff &&
		!net.IsClock && !net.IsGlobal &&
		slopeOK

	threshold := 0
	if useHighFanout {
		threshold = r.Config.HighFanoutThreshold
	}

	sreq := Request{
		Tree:                tree,
		Target:              target,
		TargetPinIndex:      pin,
		BBox:                r.bboxes[net.ID],
		Params:              params,
		Oracle:              r.Oracle,
		Fanout:              net.Fanout(),
		HighFanoutThreshold: threshold,
		HoldRepairActive:    !r.Config.Budgets.IsFinished(),
		Stats:               r.Stats,
		Workers:             r.Workers,
		TargetPruneRescale:  r.TargetPruneRescale,
		TargetPruneOffset:   r.TargetPruneOffset,
		NetID:               net.ID,
		Iteration:           iter,
		Logger:              r.Logger,
	}

	_, err := Search(ctx, r.G, r.LT, h, sreq)
	if errors.Is(err, ErrRetryFullBBox) {
		sreq.BBox = r.DeviceBBox
		sreq.FullDeviceBBox = true
		_, err = Search(ctx, r.G, r.LT, h, sreq)
	}
	return err
}

func (r *Router) routeClockPreRoute(ctx context.Context, net *rrg.Net, tree *routetree.Tree, clockRoot rrg.NodeID, h *ConcurrentHeap, presFac float64, iter int) error {
	params := cost.NewParams(
		cost.WithCriticality(0),
		cost.WithAstarFactor(r.AstarFactor),
		cost.WithBendCost(r.BendCost),
		cost.WithPresentFactor(presFac),
	)
	sreq := Request{
		Tree:           tree,
		Target:         clockRoot,
		TargetPinIndex: netrouter.ClockRootPinIndex,
		BBox:           r.DeviceBBox,
		FullDeviceBBox: true,
		Params:         params,
		Oracle:         r.Oracle,
		Stats:          r.Stats,
		Workers:        r.Workers,
		NetID:          net.ID,
		Iteration:      iter,
		Logger:         r.Logger,
	}
	if _, err := Search(ctx, r.G, r.LT, h, sreq); err != nil {
		return err
	}
	tree.Freeze()
	return nil
}

func (r *Router) updateDelays(net *rrg.Net, tree *routetree.Tree) {
	for pin := 1; pin <= net.Fanout(); pin++ {
		leaf, ok := tree.FindBySinkIndex(pin)
		if !ok {
			continue
		}
		if r.Timing != nil {
			r.Timing.SetDelay(net.ID, pin, leaf.Tdel)
		}
		if r.Connections != nil {
			r.Connections.RecordDelay(net.ID, pin, leaf.Tdel)
		}
	}
}

// SetOveruseSlope records the predictor's current overuse slope for the
// high-fanout entry gate.
func (r *Router) SetOveruseSlope(slope float64) { r.overuseSlope = slope }

// SetConflictedMode toggles conflicted mode (forced reroute suppressed).
func (r *Router) SetConflictedMode(on bool) { r.conflicted = on }

// GrowTouchingBBoxes widens a net's bounding box the same way
// negotiate.SerialRouter.GrowTouchingBBoxes does.
func (r *Router) GrowTouchingBBoxes(threshold int) {
	for id, box := range r.bboxes {
		t, ok := r.trees[id]
		if !ok {
			continue
		}
		used := t.CurrentBoundingBox(r.G)
		grown := box
		if used.XLow-box.XLow <= threshold {
			grown.XLow--
		}
		if box.XHigh-used.XHigh <= threshold {
			grown.XHigh++
		}
		if used.YLow-box.YLow <= threshold {
			grown.YLow--
		}
		if box.YHigh-used.YHigh <= threshold {
			grown.YHigh++
		}
		r.bboxes[id] = clipToDevice(grown, r.DeviceBBox)
	}
}

// DoubleBBoxes doubles every net's bounding box about its center.
func (r *Router) DoubleBBoxes() {
	for id, box := range r.bboxes {
		r.bboxes[id] = clipToDevice(doubleBox(box), r.DeviceBBox)
	}
}

func doubleBox(box rrg.BoundingBox) rrg.BoundingBox {
	halfW := box.XHigh - box.XLow
	halfH := box.YHigh - box.YLow
	return rrg.BoundingBox{
		XLow:      box.XLow - halfW/2 - 1,
		YLow:      box.YLow - halfH/2 - 1,
		XHigh:     box.XHigh + halfW/2 + 1,
		YHigh:     box.YHigh + halfH/2 + 1,
		LayerLow:  box.LayerLow,
		LayerHigh: box.LayerHigh,
	}
}

func clipToDevice(box, device rrg.BoundingBox) rrg.BoundingBox {
	if box.XLow < device.XLow {
		box.XLow = device.XLow
	}
	if box.YLow < device.YLow {
		box.YLow = device.YLow
	}
	if box.XHigh > device.XHigh {
		box.XHigh = device.XHigh
	}
	if box.YHigh > device.YHigh {
		box.YHigh = device.YHigh
	}
	return box
}

var _ negotiate.Router = (*Router)(nil)
var _ negotiate.BBoxGrower = (*Router)(nil)
var _ negotiate.Tuner = (*Router)(nil)
