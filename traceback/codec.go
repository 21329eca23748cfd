package traceback

import (
	"fmt"

	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// Element is one tuple of the flat traceback list, VPR's t_trace
// record. SwitchToNext is the switch used on the edge from Node to whichever
// Element immediately follows it in the slice; it is rrg.NO_ID when Node
// ends a branch (the next Element, if any, repeats some ancestor's rr
// node id to resume a different branch).
type Element struct {
	Node         rrg.NodeID
	SwitchToNext rrg.SwitchID
	NetPinIndex  int
}

type options struct {
	remapSwitchIDs bool
}

// Option configures Decode.
type Option func(*options)

// WithRemapSwitchIDs enables the switch-id remap fallback: instead of
// rejecting a switch id that no
// longer exists in the given RRG, Decode looks up whatever switch now
// connects the two rr nodes and substitutes it. Useful when replaying a
// traceback captured against an RRG with a coarser delay model (fewer
// switch types) onto one with a more detailed one.
func WithRemapSwitchIDs(remap bool) Option {
	return func(o *options) { o.remapSwitchIDs = remap }
}

// Encode walks tree depth-first and flattens it into the traceback
// format, repeating a branch point's own rr node before descending into
// each of its children after the first.
func Encode(t *routetree.Tree, g *rrg.Graph) []Element {
	var out []Element
	var walk func(idx routetree.NodeIndex)
	walk = func(idx routetree.NodeIndex) {
		node := t.Node(idx)
		children := t.ChildIndices(idx)
		if len(children) == 0 {
			out = append(out, Element{Node: node.RRNode, SwitchToNext: rrg.NO_ID, NetPinIndex: node.NetPinIndex})
			return
		}
		for _, c := range children {
			child := t.Node(c)
			out = append(out, Element{Node: node.RRNode, SwitchToNext: child.ParentSwitch, NetPinIndex: node.NetPinIndex})
			walk(c)
		}
	}
	walk(routetree.RootIndex)
	return out
}

// Decode reconstructs a route tree from a flat traceback.
// elements must be non-empty and begin with the
// net's root (its first entry's Node is used as the tree's root); net and
// numSinks bind the result the way routetree.NewForNet requires. table
// records the occupancy the reconstructed tree claims, the same scratch
// table live searches consult for congestion.
func Decode(g *rrg.Graph, table *scratch.Table, net rrg.NetID, numSinks int, elements []Element, opts ...Option) (*routetree.Tree, error) {
	if len(elements) == 0 {
		return nil, ErrEmpty
	}
	var cfg options
	for _, o := range opts {
		o(&cfg)
	}

	tree := routetree.NewForNet(net, elements[0].Node, numSinks)

	for i := 0; i < len(elements)-1; i++ {
		e := elements[i]
		if e.SwitchToNext == rrg.NO_ID {
			continue
		}
		next := elements[i+1]

		parent, ok := tree.FindByRRID(e.Node)
		if !ok {
			return nil, fmt.Errorf("%w: node %d", ErrDanglingNode, e.Node)
		}

		sw := e.SwitchToNext
		if int(sw) < 0 || int(sw) >= g.NumSwitches() {
			if !cfg.remapSwitchIDs {
				return nil, fmt.Errorf("%w: %d", ErrUnknownSwitch, sw)
			}
			sw = resolveSwitch(g, parent.RRNode, next.Node)
		}

		tree.AttachChild(table, parent.Index, next.Node, sw, next.NetPinIndex)
	}

	tree.ReloadTiming(g)
	return tree, nil
}

// resolveSwitch finds whatever switch currently connects from -> to in
// g, falling back to switch 0 if the edge itself no longer exists (the
// remap fallback can salvage a stale switch id, not a deleted edge).
func resolveSwitch(g *rrg.Graph, from, to rrg.NodeID) rrg.SwitchID {
	for _, e := range g.Node(from).Edges {
		if e.To == to {
			return e.Switch
		}
	}
	return 0
}
