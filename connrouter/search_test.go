package connrouter

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

// buildLinearNet is the simplest routable net:
// SOURCE->OPIN->CHANX(x3)->IPIN->SINK, all capacity 1, a single legal
// path.
func buildLinearNet() *rrg.Graph {
	sw := []rrg.Switch{{R: 10, Tdel: 1e-12, Buffered: true, Configurable: true}}
	nodes := []rrg.Node{
		{ID: 0, Type: rrg.SOURCE, Capacity: 1, R: 0, C: 0, BBox: box(0, 0), Edges: []rrg.Edge{{To: 1, Switch: 0}}},
		{ID: 1, Type: rrg.OPIN, Capacity: 1, R: 1, C: 1e-15, BBox: box(1, 0), Edges: []rrg.Edge{{To: 2, Switch: 0}}},
		{ID: 2, Type: rrg.CHANX, Capacity: 1, R: 50, C: 2e-15, BBox: box(2, 0), Edges: []rrg.Edge{{To: 3, Switch: 0}}},
		{ID: 3, Type: rrg.CHANX, Capacity: 1, R: 50, C: 2e-15, BBox: box(3, 0), Edges: []rrg.Edge{{To: 4, Switch: 0}}},
		{ID: 4, Type: rrg.CHANX, Capacity: 1, R: 50, C: 2e-15, BBox: box(4, 0), Edges: []rrg.Edge{{To: 5, Switch: 0}}},
		{ID: 5, Type: rrg.IPIN, Capacity: 1, R: 1, C: 1e-15, BBox: box(5, 0), Edges: []rrg.Edge{{To: 6, Switch: 0}}},
		{ID: 6, Type: rrg.SINK, Capacity: 1, R: 0, C: 1e-15, BBox: box(5, 0)},
	}
	return rrg.NewGraph(nodes, sw, nil)
}

func defaultParams() cost.Params {
	return cost.NewParams(cost.WithCriticality(1), cost.WithAstarFactor(1))
}

func TestSearchFindsLinearPath(t *testing.T) {
	g := buildLinearNet()
	table := scratch.NewTable(g.NumNodes())
	heap := rheap.NewBinaryHeap()
	tree := routetree.NewForNet(0, 0, 1)

	req := Request{
		Tree:                tree,
		Target:              6,
		TargetPinIndex:      1,
		BBox:                fullBox(),
		FullDeviceBBox:      true,
		Params:              defaultParams(),
		Oracle:              lookahead.NoOp{},
		HighFanoutThreshold: 0,
	}

	res, err := Search(context.Background(), g, table, heap, req)
	require.NoError(t, err)
	require.NotZero(t, res.Sink)

	sinkNode, ok := tree.FindBySinkIndex(1)
	require.True(t, ok)
	require.Equal(t, rrg.NodeID(6), sinkNode.RRNode)
	require.ElementsMatch(t, []int{1}, tree.GetReachedSinks())
	require.Greater(t, sinkNode.Tdel, 0.0)
}

// TestSearchDeterministicTieBreak builds two equal-cost parallel edges
// between the same pair of nodes and checks the smaller-switch-id (and
// therefore smaller local edge-id) path always wins.
func TestSearchDeterministicTieBreak(t *testing.T) {
	sw := []rrg.Switch{
		{R: 10, Tdel: 1e-12, Buffered: true, Configurable: true},
		{R: 10, Tdel: 1e-12, Buffered: true, Configurable: true},
	}
	nodes := []rrg.Node{
		{ID: 0, Type: rrg.SOURCE, Capacity: 1, BBox: box(0, 0), Edges: []rrg.Edge{{To: 1, Switch: 0}}},
		{ID: 1, Type: rrg.CHANX, Capacity: 1, R: 10, C: 1e-15, BBox: box(1, 0), Edges: []rrg.Edge{
			{To: 2, Switch: 0}, // edge index 0 — must win the tie
			{To: 2, Switch: 1}, // edge index 1 — identical cost, must lose
		}},
		{ID: 2, Type: rrg.SINK, Capacity: 1, R: 0, C: 1e-15, BBox: box(2, 0)},
	}
	g := rrg.NewGraph(nodes, sw, nil)
	table := scratch.NewTable(g.NumNodes())
	heap := rheap.NewBinaryHeap()
	tree := routetree.NewForNet(0, 0, 1)

	req := Request{
		Tree: tree, Target: 2, TargetPinIndex: 1,
		BBox: fullBox(), FullDeviceBBox: true,
		Params: defaultParams(), Oracle: lookahead.NoOp{},
	}
	_, err := Search(context.Background(), g, table, heap, req)
	require.NoError(t, err)

	sinkNode, ok := tree.FindBySinkIndex(1)
	require.True(t, ok)
	_ = sinkNode
	// The SINK's tree parent must be node 1 and its entering switch id 0,
	// matching edge index 0 — the winning tie-break edge.
	parent := tree.Node(tree.Root().Index) // root itself, traverse children
	children := tree.ChildIndices(parent.Index)
	require.Len(t, children, 1)
	mid := tree.Node(children[0])
	require.Equal(t, rrg.NodeID(1), mid.RRNode)
	midChildren := tree.ChildIndices(mid.Index)
	require.Len(t, midChildren, 1)
	leaf := tree.Node(midChildren[0])
	require.Equal(t, rrg.SwitchID(0), leaf.ParentSwitch)
}

func TestSearchReturnsRetryWhenBBoxNotFull(t *testing.T) {
	g := buildLinearNet()
	table := scratch.NewTable(g.NumNodes())
	heap := rheap.NewBinaryHeap()
	tree := routetree.NewForNet(0, 0, 1)

	req := Request{
		Tree: tree, Target: 6, TargetPinIndex: 1,
		BBox:           box(0, 0), // excludes every downstream node
		FullDeviceBBox: false,
		Params:         defaultParams(), Oracle: lookahead.NoOp{},
	}
	_, err := Search(context.Background(), g, table, heap, req)
	require.ErrorIs(t, err, ErrRetryFullBBox)
}

func TestSearchUnrouteableOnFullDeviceFailure(t *testing.T) {
	g := buildLinearNet()
	table := scratch.NewTable(g.NumNodes())
	heap := rheap.NewBinaryHeap()
	tree := routetree.NewForNet(0, 0, 1)

	req := Request{
		Tree: tree, Target: 6, TargetPinIndex: 1,
		BBox:           box(0, 0),
		FullDeviceBBox: true,
		Params:         defaultParams(), Oracle: lookahead.NoOp{},
	}
	_, err := Search(context.Background(), g, table, heap, req)
	require.ErrorIs(t, err, ErrUnrouteable)
}

// TestHighFanoutSeedingRestrictsCandidates:
// for a net above the high-fanout threshold, SeedHeap must
// seed only the tree nodes within the ±3-bin window around the target,
// so it pushes strictly fewer start points than full-tree seeding does
// for the same sink.
func TestHighFanoutSeedingRestrictsCandidates(t *testing.T) {
	sw := []rrg.Switch{{R: 10, Tdel: 1e-12, Buffered: true, Configurable: true}}
	nodes := []rrg.Node{{ID: 0, Type: rrg.SOURCE, Capacity: 1, BBox: box(0, 0)}}
	for i := 1; i <= 30; i++ {
		nodes = append(nodes, rrg.Node{
			ID: rrg.NodeID(i), Type: rrg.CHANX, Capacity: 1, R: 10, C: 1e-15, BBox: box(i, 0),
		})
	}
	target := rrg.NodeID(31)
	nodes = append(nodes, rrg.Node{ID: target, Type: rrg.SINK, Capacity: 1, BBox: box(0, 1)})
	g := rrg.NewGraph(nodes, sw, nil)

	buildTree := func(table *scratch.Table) *routetree.Tree {
		tree := routetree.NewForNet(0, 0, 100)
		parent := routetree.RootIndex
		for i := 1; i <= 30; i++ {
			parent = tree.AttachChild(table, parent, rrg.NodeID(i), 0, routetree.NoPinIndex)
		}
		return tree
	}

	countSeeds := func(fanout, threshold int) int {
		table := scratch.NewTable(g.NumNodes())
		tree := buildTree(table)
		heap := rheap.NewBinaryHeap()
		SeedHeap(g, table, heap, tree, target, defaultParams(), lookahead.NoOp{}, fanout, threshold, nil)
		n := 0
		for {
			if _, ok := heap.PopMin(); !ok {
				break
			}
			n++
		}
		return n
	}

	all := countSeeds(100, 0)     // full-tree seeding
	nearby := countSeeds(100, 64) // high-fanout spatial seeding
	require.Equal(t, 31, all)
	require.Less(t, nearby, all)
	require.GreaterOrEqual(t, nearby, 2)
}
