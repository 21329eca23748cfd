package netrouter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/routecore/lookahead"
	"github.com/katalvlaran/routecore/rheap"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// buildForkGraph builds a SOURCE(0) fanning out to two independent
// SINKs (2 and 4) via intermediate CHANX nodes (1 and 3).
func buildForkGraph() *rrg.Graph {
	sw := []rrg.Switch{{R: 10, Tdel: 1e-12, Buffered: true, Configurable: true}}
	nodes := []rrg.Node{
		{ID: 0, Type: rrg.SOURCE, Capacity: 1, R: 1, BBox: box(0, 0), Edges: []rrg.Edge{{To: 1, Switch: 0}, {To: 3, Switch: 0}}},
		{ID: 1, Type: rrg.CHANX, Capacity: 1, R: 10, BBox: box(1, 0), Edges: []rrg.Edge{{To: 2, Switch: 0}}},
		{ID: 2, Type: rrg.SINK, Capacity: 1, R: 1, BBox: box(2, 0)},
		{ID: 3, Type: rrg.CHANX, Capacity: 1, R: 10, BBox: box(1, 1), Edges: []rrg.Edge{{To: 4, Switch: 0}}},
		{ID: 4, Type: rrg.SINK, Capacity: 1, R: 1, BBox: box(2, 1)},
	}
	return rrg.NewGraph(nodes, sw, nil)
}

func box(x, y int) rrg.BoundingBox {
	return rrg.BoundingBox{XLow: x, YLow: y, XHigh: x, YHigh: y}
}

func fullBox() rrg.BoundingBox {
	return rrg.BoundingBox{XLow: -1000, YLow: -1000, XHigh: 1000, YHigh: 1000}
}

func TestRouteNetReachesBothSinks(t *testing.T) {
	g := buildForkGraph()
	net := &rrg.Net{ID: 1, Source: 0, Sinks: []rrg.NodeID{2, 4}}
	tree := routetree.NewForNet(net.ID, net.Source, net.Fanout())
	table := scratch.NewTable(5)

	req := Request{
		Net:        net,
		Tree:       tree,
		Table:      table,
		Heap:       rheap.NewBinaryHeap(),
		Oracle:     lookahead.NoOp{},
		Config:     NewConfig(WithBBFactor(2)),
		BBox:       fullBox(),
		DeviceBBox: fullBox(),
	}

	err := RouteNet(context.Background(), g, req)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{1, 2}, tree.GetReachedSinks())
}

type fakeTiming struct {
	crit  map[int]float64
	delay map[int]float64
}

func newFakeTiming() *fakeTiming {
	return &fakeTiming{crit: map[int]float64{}, delay: map[int]float64{}}
}
func (f *fakeTiming) Criticality(net rrg.NetID, pin int) float64 { return f.crit[pin] }
func (f *fakeTiming) SetDelay(net rrg.NetID, pin int, delay float64) {
	f.delay[pin] = delay
}

func TestOrderSinksByCriticalityDescending(t *testing.T) {
	timing := newFakeTiming()
	timing.crit[1] = 0.2
	timing.crit[2] = 0.9

	order := OrderSinksByCriticality(1, timing, []int{1, 2}, NewConfig())
	require.Equal(t, []int{2, 1}, order)
}

func TestRouteNetPushesDelaysToTiming(t *testing.T) {
	g := buildForkGraph()
	net := &rrg.Net{ID: 1, Source: 0, Sinks: []rrg.NodeID{2, 4}}
	tree := routetree.NewForNet(net.ID, net.Source, net.Fanout())
	table := scratch.NewTable(5)
	timing := newFakeTiming()
	connections := NewConnectionsInfo()

	req := Request{
		Net:         net,
		Tree:        tree,
		Table:       table,
		Heap:        rheap.NewBinaryHeap(),
		Oracle:      lookahead.NoOp{},
		Timing:      timing,
		Connections: connections,
		Config:      NewConfig(),
		BBox:        fullBox(),
		DeviceBBox:  fullBox(),
	}

	require.NoError(t, RouteNet(context.Background(), g, req))
	require.Contains(t, timing.delay, 1)
	require.Contains(t, timing.delay, 2)
	lb, ok := connections.LowerBound(net.ID, 1)
	require.True(t, ok)
	require.Equal(t, timing.delay[1], lb)
}

func TestSetupNetRipsUpOnFirstIteration(t *testing.T) {
	g := buildForkGraph()
	net := &rrg.Net{ID: 1, Source: 0, Sinks: []rrg.NodeID{2, 4}}
	table := scratch.NewTable(5)

	tree := SetupNet(g, table, net, nil, 1, NewConfig(), nil, nil, false)
	require.Equal(t, 0, len(tree.GetReachedSinks()))
}

func TestSetupNetReusesUncongestedTree(t *testing.T) {
	g := buildForkGraph()
	net := &rrg.Net{ID: 1, Source: 0, Sinks: []rrg.NodeID{2, 4}}
	table := scratch.NewTable(5)

	prev := routetree.NewForNet(net.ID, net.Source, net.Fanout())
	req := Request{
		Net: net, Tree: prev, Table: table, Heap: rheap.NewBinaryHeap(),
		Oracle: lookahead.NoOp{}, Config: NewConfig(), BBox: fullBox(), DeviceBBox: fullBox(),
	}
	require.NoError(t, RouteNet(context.Background(), g, req))
	require.NotEmpty(t, prev.GetReachedSinks())

	reused := SetupNet(g, table, net, prev, 2, NewConfig(WithIncrementalRerouteFanoutThreshold(0)), nil, nil, false)
	require.ElementsMatch(t, prev.GetReachedSinks(), reused.GetReachedSinks())
}

func TestNewConfigDebugGatingDisabledByDefault(t *testing.T) {
	cfg := NewConfig()
	require.Equal(t, -1, cfg.DebugNet)
	require.Equal(t, -1, cfg.DebugSinkRR)
	require.Equal(t, 0, cfg.DebugIteration)

	gated := NewConfig(WithDebugGating(3, 41, 2))
	require.Equal(t, 3, gated.DebugNet)
	require.Equal(t, 41, gated.DebugSinkRR)
	require.Equal(t, 2, gated.DebugIteration)
}
