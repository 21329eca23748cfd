package traceback

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// buildBranchedGraph builds a small two-sink RRG: 0 (SOURCE) fans out to
// 1 and 2, each leading to a SINK (3 and 4), all edges on switch 0.
func buildBranchedGraph() *rrg.Graph {
	nodes := []rrg.Node{
		{ID: 0, Type: rrg.SOURCE, Edges: []rrg.Edge{{To: 1, Switch: 0}, {To: 2, Switch: 0}}},
		{ID: 1, Type: rrg.CHANX, R: 10, Edges: []rrg.Edge{{To: 3, Switch: 0}}},
		{ID: 2, Type: rrg.CHANX, R: 10, Edges: []rrg.Edge{{To: 4, Switch: 0}}},
		{ID: 3, Type: rrg.SINK, R: 1},
		{ID: 4, Type: rrg.SINK, R: 1},
	}
	switches := []rrg.Switch{{R: 1, Tdel: 1e-12, Buffered: true, Configurable: true}}
	return rrg.NewGraph(nodes, switches, nil)
}

func buildBranchedTree(g *rrg.Graph, table *scratch.Table) *routetree.Tree {
	tree := routetree.NewForNet(rrg.NetID(1), 0, 2)
	c1 := tree.AttachChild(table, routetree.RootIndex, 1, 0, routetree.NoPinIndex)
	tree.AttachChild(table, c1, 3, 0, 1)
	c2 := tree.AttachChild(table, routetree.RootIndex, 2, 0, routetree.NoPinIndex)
	tree.AttachChild(table, c2, 4, 0, 2)
	tree.ReloadTiming(g)
	return tree
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := buildBranchedGraph()
	table := scratch.NewTable(g.NumNodes())
	tree := buildBranchedTree(g, table)

	elements := Encode(tree, g)
	require.NotEmpty(t, elements)

	decoded, err := Decode(g, scratch.NewTable(g.NumNodes()), rrg.NetID(1), 2, elements)
	require.NoError(t, err)

	require.ElementsMatch(t, tree.GetReachedSinks(), decoded.GetReachedSinks())
	require.Len(t, decoded.AllNodes(routetree.RootIndex), len(tree.AllNodes(routetree.RootIndex)))

	for _, pin := range tree.GetReachedSinks() {
		want, ok := tree.FindBySinkIndex(pin)
		require.True(t, ok)
		got, ok := decoded.FindBySinkIndex(pin)
		require.True(t, ok)
		require.Equal(t, want.RRNode, got.RRNode)
	}
}

func TestDecodeRejectsUnknownSwitchByDefault(t *testing.T) {
	g := buildBranchedGraph()
	elements := []Element{
		{Node: 0, SwitchToNext: 99, NetPinIndex: routetree.NoPinIndex},
		{Node: 1, SwitchToNext: rrg.NO_ID, NetPinIndex: 1},
	}
	_, err := Decode(g, scratch.NewTable(g.NumNodes()), rrg.NetID(1), 1, elements)
	require.ErrorIs(t, err, ErrUnknownSwitch)
}

func TestDecodeRemapsUnknownSwitchWhenEnabled(t *testing.T) {
	g := buildBranchedGraph()
	elements := []Element{
		{Node: 0, SwitchToNext: 99, NetPinIndex: routetree.NoPinIndex},
		{Node: 1, SwitchToNext: rrg.NO_ID, NetPinIndex: 1},
	}
	tree, err := Decode(g, scratch.NewTable(g.NumNodes()), rrg.NetID(1), 1, elements, WithRemapSwitchIDs(true))
	require.NoError(t, err)

	got, ok := tree.FindBySinkIndex(1)
	require.True(t, ok)
	require.Equal(t, rrg.NodeID(1), got.RRNode)
	require.Equal(t, rrg.SwitchID(0), got.ParentSwitch)
}

func TestDecodeRejectsEmptyElements(t *testing.T) {
	g := buildBranchedGraph()
	_, err := Decode(g, scratch.NewTable(g.NumNodes()), rrg.NetID(1), 1, nil)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestDecodeRejectsDanglingBranchPoint(t *testing.T) {
	g := buildBranchedGraph()
	elements := []Element{
		{Node: 0, SwitchToNext: 0, NetPinIndex: routetree.NoPinIndex},
		{Node: 1, SwitchToNext: rrg.NO_ID, NetPinIndex: routetree.NoPinIndex},
		// node 2 never appeared before this repeat, so it cannot be found
		// as an existing tree node to attach the next child under.
		{Node: 2, SwitchToNext: 0, NetPinIndex: routetree.NoPinIndex},
		{Node: 4, SwitchToNext: rrg.NO_ID, NetPinIndex: 1},
	}
	_, err := Decode(g, scratch.NewTable(g.NumNodes()), rrg.NetID(1), 1, elements)
	require.ErrorIs(t, err, ErrDanglingNode)
}
