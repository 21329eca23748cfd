package parrouter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/routecore/cost"
	"github.com/katalvlaran/routecore/lookahead"
	"github.com/katalvlaran/routecore/rheap"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

func box(x, y int) rrg.BoundingBox { return rrg.BoundingBox{XLow: x, YLow: y, XHigh: x, YHigh: y} }

func fullBox() rrg.BoundingBox { return rrg.BoundingBox{XLow: 0, YLow: 0, XHigh: 100, YHigh: 100} }

func defaultParams() cost.Params {
	return cost.NewParams(cost.WithCriticality(1), cost.WithAstarFactor(1))
}

// buildLinearNet mirrors connrouter's linear-chain fixture: a single
// legal path, all capacities 1.
func buildLinearNet() *rrg.Graph {
	sw := []rrg.Switch{{R: 10, Tdel: 1e-12, Buffered: true, Configurable: true}}
	nodes := []rrg.Node{
		{ID: 0, Type: rrg.SOURCE, Capacity: 1, BBox: box(0, 0), Edges: []rrg.Edge{{To: 1, Switch: 0}}},
		{ID: 1, Type: rrg.OPIN, Capacity: 1, R: 1, C: 1e-15, BBox: box(1, 0), Edges: []rrg.Edge{{To: 2, Switch: 0}}},
		{ID: 2, Type: rrg.CHANX, Capacity: 1, R: 50, C: 2e-15, BBox: box(2, 0), Edges: []rrg.Edge{{To: 3, Switch: 0}}},
		{ID: 3, Type: rrg.CHANX, Capacity: 1, R: 50, C: 2e-15, BBox: box(3, 0), Edges: []rrg.Edge{{To: 4, Switch: 0}}},
		{ID: 4, Type: rrg.CHANX, Capacity: 1, R: 50, C: 2e-15, BBox: box(4, 0), Edges: []rrg.Edge{{To: 5, Switch: 0}}},
		{ID: 5, Type: rrg.IPIN, Capacity: 1, R: 1, C: 1e-15, BBox: box(5, 0), Edges: []rrg.Edge{{To: 6, Switch: 0}}},
		{ID: 6, Type: rrg.SINK, Capacity: 1, R: 0, C: 1e-15, BBox: box(5, 0)},
	}
	return rrg.NewGraph(nodes, sw, nil)
}

func runLinearSearch(t *testing.T, workers int) *routetree.Tree {
	t.Helper()
	g := buildLinearNet()
	lt := NewLockedTable(scratch.NewTable(g.NumNodes()))
	h := NewConcurrentHeap(rheap.NewBinaryHeap())
	tree := routetree.NewForNet(0, 0, 1)

	req := Request{
		Tree: tree, Target: 6, TargetPinIndex: 1,
		BBox: fullBox(), FullDeviceBBox: true,
		Params: defaultParams(), Oracle: lookahead.NoOp{},
		Workers: workers,
	}
	_, err := Search(context.Background(), g, lt, h, req)
	require.NoError(t, err)
	return tree
}

func TestSearchFindsLinearPath(t *testing.T) {
	tree := runLinearSearch(t, 4)
	sinkNode, ok := tree.FindBySinkIndex(1)
	require.True(t, ok)
	require.Equal(t, rrg.NodeID(6), sinkNode.RRNode)
	require.ElementsMatch(t, []int{1}, tree.GetReachedSinks())
	require.Greater(t, sinkNode.Tdel, 0.0)
}

// buildFanGraph fans out from the SOURCE into several equal-cost
// disjoint paths through distinct CHANX nodes converging back on the same
// sink, so the deterministic tie-break rule (smaller PrevNode, then
// smaller PrevEdge, wins) has real competition among workers at the sink.
func buildFanGraph() *rrg.Graph {
	sw := make([]rrg.Switch, 8)
	for i := range sw {
		sw[i] = rrg.Switch{R: 10, Tdel: 1e-12, Buffered: true, Configurable: true}
	}
	edges := make([]rrg.Edge, 8)
	nodes := []rrg.Node{{ID: 0, Type: rrg.SOURCE, Capacity: 8, BBox: box(0, 0)}}
	for i := 0; i < 8; i++ {
		mid := rrg.NodeID(1 + i)
		edges[i] = rrg.Edge{To: mid, Switch: rrg.SwitchID(i)}
		nodes = append(nodes, rrg.Node{
			ID: mid, Type: rrg.CHANX, Capacity: 1, R: 10, C: 1e-15, BBox: box(1, 0),
			Edges: []rrg.Edge{{To: 9, Switch: 0}},
		})
	}
	nodes[0].Edges = edges
	nodes = append(nodes, rrg.Node{ID: 9, Type: rrg.SINK, Capacity: 1, R: 0, C: 1e-15, BBox: box(2, 0)})
	return rrg.NewGraph(nodes, sw, nil)
}

// TestSearchParallelDeterminism routes the same fan-out graph with
// workers in {1,2,4,8}; every run must select the exact same
// (rr node, parent) pair at every level.
func TestSearchParallelDeterminism(t *testing.T) {
	var want []rrg.NodeID
	for _, workers := range []int{1, 2, 4, 8} {
		g := buildFanGraph()
		lt := NewLockedTable(scratch.NewTable(g.NumNodes()))
		h := NewConcurrentHeap(rheap.NewBinaryHeap())
		tree := routetree.NewForNet(0, 0, 1)

		req := Request{
			Tree: tree, Target: 9, TargetPinIndex: 1,
			BBox: fullBox(), FullDeviceBBox: true,
			Params: defaultParams(), Oracle: lookahead.NoOp{},
			Workers: workers,
		}
		_, err := Search(context.Background(), g, lt, h, req)
		require.NoError(t, err)

		var chain []rrg.NodeID
		idx := tree.Root().Index
		for {
			children := tree.ChildIndices(idx)
			if len(children) == 0 {
				break
			}
			idx = children[0]
			chain = append(chain, tree.Node(idx).RRNode)
		}

		if want == nil {
			want = chain
		} else {
			require.Equal(t, want, chain, "workers=%d produced a different path", workers)
		}
	}
}

func TestSearchReturnsRetryWhenBBoxNotFull(t *testing.T) {
	g := buildLinearNet()
	lt := NewLockedTable(scratch.NewTable(g.NumNodes()))
	h := NewConcurrentHeap(rheap.NewBinaryHeap())
	tree := routetree.NewForNet(0, 0, 1)

	req := Request{
		Tree: tree, Target: 6, TargetPinIndex: 1,
		BBox:           box(0, 0),
		FullDeviceBBox: false,
		Params:         defaultParams(), Oracle: lookahead.NoOp{},
		Workers: 2,
	}
	_, err := Search(context.Background(), g, lt, h, req)
	require.ErrorIs(t, err, ErrRetryFullBBox)
}

func TestSearchUnrouteableOnFullDeviceFailure(t *testing.T) {
	g := buildLinearNet()
	lt := NewLockedTable(scratch.NewTable(g.NumNodes()))
	h := NewConcurrentHeap(rheap.NewBinaryHeap())
	tree := routetree.NewForNet(0, 0, 1)

	req := Request{
		Tree: tree, Target: 6, TargetPinIndex: 1,
		BBox:           box(0, 0),
		FullDeviceBBox: true,
		Params:         defaultParams(), Oracle: lookahead.NoOp{},
		Workers: 3,
	}
	_, err := Search(context.Background(), g, lt, h, req)
	require.ErrorIs(t, err, ErrUnrouteable)
}
