package negotiate

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/routecore/lookahead"
	"github.com/katalvlaran/routecore/netrouter"
	"github.com/katalvlaran/routecore/rheap"
	"github.com/katalvlaran/routecore/routerstats"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// Router is the per-iteration "route every pending net" step the
// negotiation loop drives; it is deliberately abstract so Run works
// unchanged whether nets are routed one at a time (SerialRouter, this
// file) or concurrently (package parrouter's Router).
type Router interface {
	// RouteIteration routes every non-ignored net for iteration iter at
	// the given present-congestion factor and returns the resulting
	// net->tree map (valid until the next call), or an error if any
	// connection proved unrouteable even at the full-device bounding box.
	RouteIteration(ctx context.Context, iter int, presFac float64) (map[rrg.NetID]*routetree.Tree, error)
}

// BBoxGrower is satisfied by a Router that supports dynamic
// bounding-box growth and conflicted-mode doubling; negotiate's Run
// type-asserts it optionally, so a Router that never grows boxes (e.g.
// one testing a fixed bbox) need not implement it.
type BBoxGrower interface {
	GrowTouchingBBoxes(threshold int)
	DoubleBBoxes()
}

// Tuner is satisfied by a Router that consumes the loop's per-iteration
// steering signals: the predictor's current overuse slope (gating the
// high-fanout entry choice on routability) and conflicted mode
// (suppressing delay-driven forced reroute). Like BBoxGrower, Run
// type-asserts it optionally.
type Tuner interface {
	SetOveruseSlope(slope float64)
	SetConflictedMode(on bool)
}

// SerialRouter is the single-threaded connection-router driver: one
// shared heap, one net routed at a time, in netlist order.
type SerialRouter struct {
	G           *rrg.Graph
	Netlist     *rrg.Netlist
	Table       *scratch.Table
	Oracle      lookahead.Oracle
	Timing      netrouter.Timing
	Connections *netrouter.ConnectionsInfo
	Config      netrouter.Config
	NewHeap     func() rheap.Interface
	Stats       *routerstats.Stats
	Logger      *zap.SugaredLogger
	DeviceBBox  rrg.BoundingBox
	BendCost    float64
	AstarFactor float64
	// ClockRoots maps a net id to its virtual clock-network root node,
	// for nets under two-stage clock pre-routing.
	ClockRoots map[rrg.NetID]rrg.NodeID

	trees        map[rrg.NetID]*routetree.Tree
	bboxes       map[rrg.NetID]rrg.BoundingBox
	overuseSlope float64
	conflicted   bool
}

// NewSerialRouter returns a SerialRouter with every net's initial
// bounding box computed from its source/sink extent plus
// r.Config.BBFactor.
func NewSerialRouter(r SerialRouter) *SerialRouter {
	r.trees = make(map[rrg.NetID]*routetree.Tree, len(r.Netlist.Nets))
	r.bboxes = make(map[rrg.NetID]rrg.BoundingBox, len(r.Netlist.Nets))
	r.overuseSlope = math.NaN()
	for i := range r.Netlist.Nets {
		net := &r.Netlist.Nets[i]
		r.bboxes[net.ID] = netrouter.NetBoundingBox(r.G, net, r.Config.BBFactor)
	}
	return &r
}

func (r *SerialRouter) RouteIteration(ctx context.Context, iter int, presFac float64) (map[rrg.NetID]*routetree.Tree, error) {
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
		tree := netrouter.SetupNet(r.G, r.Table, net, r.trees[net.ID], iter, r.Config, r.Timing, setupConnections, holdRipup)

		var clockRoot *rrg.NodeID
		if root, ok := r.ClockRoots[net.ID]; ok {
			clockRoot = &root
		}

		req := netrouter.Request{
			Net:           net,
			Tree:          tree,
			Table:         r.Table,
			Heap:          h,
			Oracle:        r.Oracle,
			Timing:        r.Timing,
			Connections:   r.Connections,
			Config:        r.Config,
			PresentFactor: presFac,
			BendCost:      r.BendCost,
			AstarFactor:   r.AstarFactor,
			BBox:          r.bboxes[net.ID],
			DeviceBBox:    r.DeviceBBox,
			OveruseSlope:  r.overuseSlope,
			ClockRootNode: clockRoot,
			Stats:         r.Stats,
			Logger:        r.Logger,
			Iteration:     iter,
		}
		if err := netrouter.RouteNet(ctx, r.G, req); err != nil {
			return nil, err
		}
		r.trees[net.ID] = tree
	}
	return r.trees, nil
}

// SetOveruseSlope records the predictor's current overuse slope; the
// per-sink high-fanout entry choice consults it via
// netrouter.Request.OveruseSlope.
func (r *SerialRouter) SetOveruseSlope(slope float64) { r.overuseSlope = slope }

// SetConflictedMode toggles conflicted mode: while on, nets are no
// longer ripped up purely to chase delay (forced reroute is suppressed).
func (r *SerialRouter) SetConflictedMode(on bool) { r.conflicted = on }

// GrowTouchingBBoxes widens, by one tile, any side of a net's bounding
// box its tree's current extent comes within threshold tiles of,
// clipped to the device extent.
func (r *SerialRouter) GrowTouchingBBoxes(threshold int) {
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

// DoubleBBoxes doubles every net's current bounding box about its center,
// clipped to the device extent.
func (r *SerialRouter) DoubleBBoxes() {
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

var _ Router = (*SerialRouter)(nil)
var _ BBoxGrower = (*SerialRouter)(nil)
var _ Tuner = (*SerialRouter)(nil)
