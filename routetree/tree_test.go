package routetree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// buildChainGraph returns a simple SOURCE(0) -buffered-> CHANX(1)
// -unbuffered-> CHANX(2) -buffered-> SINK(3) graph, each node at a
// distinct grid cell, with one configurable switch (0) and one
// non-configurable switch (1).
func buildChainGraph() *rrg.Graph {
	sw := []rrg.Switch{
		{R: 10, Tdel: 1e-12, Buffered: true, Configurable: true},
		{R: 0, Tdel: 0, Buffered: false, Configurable: false},
	}
	nodes := []rrg.Node{
		{ID: 0, Type: rrg.SOURCE, Capacity: 1, R: 5, C: 1e-15, BBox: box(0, 0), Edges: []rrg.Edge{{To: 1, Switch: 0}}},
		{ID: 1, Type: rrg.CHANX, Capacity: 1, R: 50, C: 2e-15, BBox: box(1, 0), Edges: []rrg.Edge{{To: 2, Switch: 1}}},
		{ID: 2, Type: rrg.CHANX, Capacity: 1, R: 50, C: 2e-15, BBox: box(2, 0), Edges: []rrg.Edge{{To: 3, Switch: 0}}},
		{ID: 3, Type: rrg.SINK, Capacity: 1, R: 0, C: 1e-15, BBox: box(3, 0)},
	}
	return rrg.NewGraph(nodes, sw, nil)
}

func box(x, y int) rrg.BoundingBox {
	return rrg.BoundingBox{XLow: x, YLow: y, XHigh: x, YHigh: y}
}

func seedChainSearch(g *rrg.Graph, tab *scratch.Table) {
	tab.Entry(1).PrevNode = 0
	tab.Entry(1).PrevEdge = 0
	tab.MarkModified(1)
	tab.Entry(2).PrevNode = 1
	tab.Entry(2).PrevEdge = 0
	tab.MarkModified(2)
	tab.Entry(3).PrevNode = 2
	tab.Entry(3).PrevEdge = 0
	tab.MarkModified(3)
}

func TestUpdateFromHeapSplicesChainAndReloadsTiming(t *testing.T) {
	g := buildChainGraph()
	tab := scratch.NewTable(4)
	seedChainSearch(g, tab)

	tr := NewForNet(0, 0, 1)
	attach, sink, err := tr.UpdateFromHeap(g, tab, 3, 1)
	require.NoError(t, err)
	require.Equal(t, RootIndex, attach)

	got, ok := tr.FindBySinkIndex(1)
	require.True(t, ok)
	require.Equal(t, sink, got.Index)
	require.Equal(t, rrg.NodeID(3), got.RRNode)
	require.ElementsMatch(t, []int{1}, tr.GetReachedSinks())
	require.Empty(t, tr.GetRemainingSinks())

	// The switch from the root into node 1 is buffered, so it isolates
	// everything downstream: the root's C_downstream is just its own C.
	root := tr.Root()
	require.InDelta(t, 1e-15, root.CDownstream, 1e-20)

	require.True(t, tr.IsValid(g))
}

func TestUpdateFromHeapErrorsWithoutAttachmentPoint(t *testing.T) {
	g := buildChainGraph()
	tab := scratch.NewTable(4)
	// prev chain never reaches a tree node (tree only has node 0, but
	// node 1's PrevNode is left as NO_ID here).
	tab.Entry(3).PrevNode = 2
	tab.Entry(3).PrevEdge = 0
	tab.MarkModified(3)
	tab.Entry(2).PrevNode = rrg.NO_ID

	tr := NewForNet(0, 0, 1)
	_, _, err := tr.UpdateFromHeap(g, tab, 3, 1)
	require.ErrorIs(t, err, ErrNoAttachmentPoint)
}

// buildSharedSinkGraph is a trivial SOURCE(0) -sw0-> SINK(1) graph, used
// to exercise two net pins reaching the same physical SINK node.
func buildSharedSinkGraph() *rrg.Graph {
	sw := []rrg.Switch{{R: 10, Tdel: 1e-12, Buffered: true, Configurable: true}}
	nodes := []rrg.Node{
		{ID: 0, Type: rrg.SOURCE, Capacity: 1, R: 5, C: 1e-15, BBox: box(0, 0), Edges: []rrg.Edge{{To: 1, Switch: 0}}},
		{ID: 1, Type: rrg.SINK, Capacity: 2, R: 0, C: 1e-15, BBox: box(1, 0)},
	}
	return rrg.NewGraph(nodes, sw, nil)
}

func TestUpdateFromHeapGivesSharedSinkDistinctNodesPerPin(t *testing.T) {
	g := buildSharedSinkGraph()
	tab := scratch.NewTable(2)
	tr := NewForNet(0, 0, 2)

	tab.Entry(1).PrevNode = 0
	tab.Entry(1).PrevEdge = 0
	tab.MarkModified(1)
	_, sink1, err := tr.UpdateFromHeap(g, tab, 1, 1)
	require.NoError(t, err)

	// The second pin's search reconverges directly on node 1, which is
	// already a live tree node (found with zero hops): it must get its
	// own distinct arena slot, not overwrite pin 1's.
	_, sink2, err := tr.UpdateFromHeap(g, tab, 1, 2)
	require.NoError(t, err)

	require.NotEqual(t, sink1, sink2)
	require.NotEqual(t, RootIndex, sink1)
	require.NotEqual(t, RootIndex, sink2)

	got1, ok := tr.FindBySinkIndex(1)
	require.True(t, ok)
	require.Equal(t, sink1, got1.Index)
	require.Equal(t, rrg.NodeID(1), got1.RRNode)

	got2, ok := tr.FindBySinkIndex(2)
	require.True(t, ok)
	require.Equal(t, sink2, got2.Index)
	require.Equal(t, rrg.NodeID(1), got2.RRNode)

	require.ElementsMatch(t, []int{1, 2}, tr.GetReachedSinks())
	require.Equal(t, 2, tab.Entry(1).Occ, "each pin's attachment claims its own occupancy unit")
	require.ElementsMatch(t, []NodeIndex{sink1, sink2}, tr.ChildIndices(RootIndex))
}

func TestPruneRemovesCongestedSubtree(t *testing.T) {
	g := buildChainGraph()
	tab := scratch.NewTable(4)
	seedChainSearch(g, tab)

	tr := NewForNet(0, 0, 1)
	_, _, err := tr.UpdateFromHeap(g, tab, 3, 1)
	require.NoError(t, err)

	tab.Entry(1).Occ = 5 // over capacity 1

	// The congested node is this net's only child off the root, so
	// pruning it leaves the root itself childless and not a legal SINK:
	// the whole tree is gone and Prune reports that by returning false.
	survived := tr.Prune(g, tab, nil)
	require.False(t, survived)
	_, ok := tr.FindBySinkIndex(1)
	require.False(t, ok, "sink beyond the congested node must no longer be reached")
}

func TestPruneKeepsUncongestedChain(t *testing.T) {
	g := buildChainGraph()
	tab := scratch.NewTable(4)
	seedChainSearch(g, tab)

	tr := NewForNet(0, 0, 1)
	_, _, err := tr.UpdateFromHeap(g, tab, 3, 1)
	require.NoError(t, err)

	survived := tr.Prune(g, tab, nil)
	require.True(t, survived)
	_, ok := tr.FindBySinkIndex(1)
	require.True(t, ok)
	require.True(t, tr.IsUncongested(g, tab))
}

func TestPruneForcedReroute(t *testing.T) {
	g := buildChainGraph()
	tab := scratch.NewTable(4)
	seedChainSearch(g, tab)

	tr := NewForNet(0, 0, 1)
	_, _, err := tr.UpdateFromHeap(g, tab, 3, 1)
	require.NoError(t, err)

	tr.Prune(g, tab, map[int]bool{1: true})
	_, ok := tr.FindBySinkIndex(1)
	require.False(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	g := buildChainGraph()
	tab := scratch.NewTable(4)
	seedChainSearch(g, tab)

	tr := NewForNet(0, 0, 1)
	_, _, err := tr.UpdateFromHeap(g, tab, 3, 1)
	require.NoError(t, err)

	clone := tr.Clone()
	clone.Prune(g, tab, map[int]bool{1: true})

	_, okOrig := tr.FindBySinkIndex(1)
	require.True(t, okOrig, "pruning the clone must not affect the original")
	_, okClone := clone.FindBySinkIndex(1)
	require.False(t, okClone)
}

func TestSpatialLookupNearFindsSeededNodes(t *testing.T) {
	g := buildChainGraph()
	tab := scratch.NewTable(4)
	seedChainSearch(g, tab)

	tr := NewForNet(0, 0, 1)
	_, _, err := tr.UpdateFromHeap(g, tab, 3, 1)
	require.NoError(t, err)

	lookup := BuildSpatialLookup(g, tr, 2)
	near := lookup.Near(0, 0, 3)
	require.NotEmpty(t, near)
}
