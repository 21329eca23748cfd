package netrouter

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/routecore/connrouter"
	"github.com/katalvlaran/routecore/cost"
	"github.com/katalvlaran/routecore/lookahead"
	"github.com/katalvlaran/routecore/rheap"
	"github.com/katalvlaran/routecore/routerlog"
	"github.com/katalvlaran/routecore/routerstats"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// ClockRootPinIndex is the reserved pin index used to splice the virtual
// clock-root pre-route into the tree; real sink
// pins are always >= 1, so 0 never collides.
const ClockRootPinIndex = 0

// Request bundles everything RouteNet needs for one net, for one
// negotiation iteration.
type Request struct {
	Net         *rrg.Net
	Tree        *routetree.Tree // already produced by SetupNet
	Table       *scratch.Table
	Heap        rheap.Interface
	Oracle      lookahead.Oracle
	Timing      Timing // may be nil: every connection is then routed at criticality 0
	Connections *ConnectionsInfo
	Config      Config

	PresentFactor float64
	BendCost      float64
	AstarFactor   float64

	// BBox is this net's search bounding box (see NetBoundingBox); it is
	// widened to DeviceBBox on a connrouter.ErrRetryFullBBox.
	BBox       rrg.BoundingBox
	DeviceBBox rrg.BoundingBox

	// OveruseSlope is the predictor's current overuse rate of change (RR
	// nodes per iteration), consulted by the high-fanout entry choice
	// when Config.HighFanoutMaxSlope is set. NaN means "no estimate yet"
	// and passes the gate.
	OveruseSlope float64

	// ClockRootNode, if non-nil, is the virtual clock network root to
	// pre-route this net's source to before routing any real sink.
	ClockRootNode *rrg.NodeID

	Stats *routerstats.Stats
	// Logger, if non-nil, receives a start and a finish line per net.
	// Iteration is the negotiation iteration this request belongs to,
	// carried through purely for the log fields.
	Logger    *zap.SugaredLogger
	Iteration int
}

// RouteNet runs one net through one negotiation iteration's routing
// flow: an optional clock pre-route, then every
// remaining sink in descending criticality order, then a push-back of
// the freshly routed per-sink delays.
func RouteNet(ctx context.Context, g *rrg.Graph, req Request) error {
	if req.Net.IsIgnored {
		return nil
	}

	if req.Logger != nil {
		req.Logger.Debugw("routing net", routerlog.Fields(int32(req.Net.ID), req.Iteration, 0)...)
	}

	if req.ClockRootNode != nil {
		if err := routeClockPreRoute(ctx, g, req, *req.ClockRootNode); err != nil {
			return &SearchError{Net: req.Net.ID, Pin: ClockRootPinIndex, Err: err}
		}
	}

	remaining := req.Tree.GetRemainingSinks()
	order := OrderSinksByCriticality(req.Net.ID, req.Timing, remaining, req.Config)

	for _, pin := range order {
		if err := routeSink(ctx, g, req, pin); err != nil {
			return &SearchError{Net: req.Net.ID, Pin: pin, Err: err}
		}
	}

	if req.Stats != nil {
		req.Stats.RecordNetRouted()
	}
	if req.Logger != nil {
		req.Logger.Infow("net routed", routerlog.Fields(int32(req.Net.ID), req.Iteration, 0)...)
	}
	updateDelays(req)
	return nil
}

func routeSink(ctx context.Context, g *rrg.Graph, req Request, pin int) error {
	target := req.Net.Sinks[pin-1]
	rawCrit := 0.0
	if req.Timing != nil {
		rawCrit = req.Timing.Criticality(req.Net.ID, pin)
	}
	criticality := ShapeCriticality(rawCrit, req.Config.MaxCriticality, req.Config.CriticalityExp)

	params := cost.NewParams(
		cost.WithCriticality(criticality),
		cost.WithAstarFactor(req.AstarFactor),
		cost.WithBendCost(req.BendCost),
		cost.WithPresentFactor(req.PresentFactor),
	)

	slopeOK := req.Config.HighFanoutMaxSlope <= 0 ||
		math.IsNaN(req.OveruseSlope) ||
		req.OveruseSlope <= req.Config.HighFanoutMaxSlope
	useHighFanout := req.Config.HighFanoutThreshold > 0 &&
		req.Net.Fanout() >= req.Config.HighFanoutThreshold &&
		criticality < req.Config.HighFanoutCriticalityCutoff &&
		!req.Net.IsClock && !req.Net.IsGlobal &&
		slopeOK

	threshold := 0
	if useHighFanout {
		threshold = req.Config.HighFanoutThreshold
	}

	debug := (req.Config.DebugNet >= 0 && req.Config.DebugNet == int(req.Net.ID)) ||
		(req.Config.DebugSinkRR >= 0 && req.Config.DebugSinkRR == int(target))
	if debug && req.Config.DebugIteration > 0 && req.Iteration < req.Config.DebugIteration {
		debug = false
	}

	sreq := connrouter.Request{
		Tree:                req.Tree,
		Target:              target,
		TargetPinIndex:      pin,
		BBox:                req.BBox,
		Params:              params,
		Oracle:              req.Oracle,
		Fanout:              req.Net.Fanout(),
		HighFanoutThreshold: threshold,
		HoldRepairActive:    !req.Config.Budgets.IsFinished(),
		Debug:               debug,
		Stats:               req.Stats,
		NetID:               req.Net.ID,
		Iteration:           req.Iteration,
		Logger:              req.Logger,
	}

	_, err := connrouter.Search(ctx, g, req.Table, req.Heap, sreq)
	if errors.Is(err, connrouter.ErrRetryFullBBox) {
		sreq.BBox = req.DeviceBBox
		sreq.FullDeviceBBox = true
		_, err = connrouter.Search(ctx, g, req.Table, req.Heap, sreq)
	}
	return err
}

// routeClockPreRoute routes the net's source to the virtual clock-root
// node at criticality 0 (delay irrelevant for this stage), then freezes
// the tree so the first-stage path is never re-expanded.
func routeClockPreRoute(ctx context.Context, g *rrg.Graph, req Request, clockRoot rrg.NodeID) error {
	params := cost.NewParams(
		cost.WithCriticality(0),
		cost.WithAstarFactor(req.AstarFactor),
		cost.WithBendCost(req.BendCost),
		cost.WithPresentFactor(req.PresentFactor),
	)
	sreq := connrouter.Request{
		Tree:           req.Tree,
		Target:         clockRoot,
		TargetPinIndex: ClockRootPinIndex,
		BBox:           req.DeviceBBox,
		FullDeviceBBox: true,
		Params:         params,
		Oracle:         req.Oracle,
		Stats:          req.Stats,
		NetID:          req.Net.ID,
		Iteration:      req.Iteration,
		Logger:         req.Logger,
	}
	if _, err := connrouter.Search(ctx, g, req.Table, req.Heap, sreq); err != nil {
		return err
	}
	req.Tree.Freeze()
	return nil
}

// updateDelays pushes every reached sink's Tdel back to Timing and
// records it with ConnectionsInfo.
func updateDelays(req Request) {
	for pin := 1; pin <= req.Net.Fanout(); pin++ {
		leaf, ok := req.Tree.FindBySinkIndex(pin)
		if !ok {
			continue
		}
		if req.Timing != nil {
			req.Timing.SetDelay(req.Net.ID, pin, leaf.Tdel)
		}
		if req.Connections != nil {
			req.Connections.RecordDelay(req.Net.ID, pin, leaf.Tdel)
		}
	}
}
