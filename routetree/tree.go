package routetree

import (
	"sync"

	"github.com/katalvlaran/routecore/rrg"
)

// Tree is the route tree for a single net: a root SOURCE plus every
// branch the connection router has spliced in so far.
type Tree struct {
	// mu serializes the tree's mutating methods (UpdateFromHeap,
	// AttachChild, ReloadTiming, Prune, Freeze); they stay serialized
	// per-tree even under the parallel router.
	mu sync.Mutex

	netID    rrg.NetID
	hasNet   bool
	nodes    []record
	numSinks int

	// byRRNode indexes every live node by its RRG node id; a physical
	// SINK reached via more than one pin appears more than once, so
	// FindByRRID returns the most recently added match.
	byRRNode map[rrg.NodeID][]NodeIndex
	// bySinkIndex maps a 1-indexed net pin index to the arena slot of
	// the SINK leaf that reached it, once reached.
	bySinkIndex map[int]NodeIndex
}

// NewFromNode returns a Tree rooted at rootNode, with no associated
// net. Prune requires a net-bound tree (it needs to know total sink
// count and consult connection-level forced-reroute bookkeeping keyed
// by net), so trees built this way are for read-only traversal and
// tests only.
func NewFromNode(rootNode rrg.NodeID) *Tree {
	t := &Tree{
		nodes:       []record{{rrNode: rootNode, parent: noIndex, firstChild: noIndex, nextSibling: noIndex, netPinIndex: noIndex, reExpand: true, alive: true}},
		byRRNode:    map[rrg.NodeID][]NodeIndex{rootNode: {0}},
		bySinkIndex: map[int]NodeIndex{},
	}
	return t
}

// NewForNet returns a Tree rooted at rootNode and bound to net, with
// numSinks total sinks. Prune and the reached/remaining-sink iterators
// require this form.
func NewForNet(net rrg.NetID, rootNode rrg.NodeID, numSinks int) *Tree {
	t := NewFromNode(rootNode)
	t.netID = net
	t.hasNet = true
	t.numSinks = numSinks
	return t
}

// NetID returns the bound net id and whether one is bound.
func (t *Tree) NetID() (rrg.NetID, bool) { return t.netID, t.hasNet }

// NumSinks returns the net's total sink count.
func (t *Tree) NumSinks() int { return t.numSinks }

// Root returns the tree's root node view.
func (t *Tree) Root() Node { return t.view(0) }

// RootIndex is always 0: every Tree's arena slot 0 is its root.
const RootIndex NodeIndex = 0

// Node returns the view for idx.
func (t *Tree) Node(idx NodeIndex) Node { return t.view(idx) }

// Alive reports whether idx is still part of the tree (not pruned).
func (t *Tree) Alive(idx NodeIndex) bool { return t.nodes[idx].alive }

// ChildIndices returns the live children of idx, most recently attached
// first (appendChild prepends to the child list).
func (t *Tree) ChildIndices(idx NodeIndex) []NodeIndex {
	var out []NodeIndex
	for c := t.firstLiveChild(idx); c != noIndex; c = t.nextLiveSibling(c) {
		out = append(out, c)
	}
	return out
}

// AllNodes returns every live node in the subtree rooted at idx, in
// depth-first pre-order, including idx itself.
func (t *Tree) AllNodes(idx NodeIndex) []NodeIndex {
	var out []NodeIndex
	var walk func(NodeIndex)
	walk = func(i NodeIndex) {
		if !t.nodes[i].alive {
			return
		}
		out = append(out, i)
		for c := t.firstLiveChild(i); c != noIndex; c = t.nextLiveSibling(c) {
			walk(c)
		}
	}
	walk(idx)
	return out
}

// FindByRRID returns the most recently spliced live node for rr, if any.
func (t *Tree) FindByRRID(rr rrg.NodeID) (Node, bool) {
	idxs := t.byRRNode[rr]
	for i := len(idxs) - 1; i >= 0; i-- {
		if t.nodes[idxs[i]].alive {
			return t.view(idxs[i]), true
		}
	}
	return Node{}, false
}

// FindBySinkIndex returns the SINK leaf reached for the given 1-indexed
// net pin index.
func (t *Tree) FindBySinkIndex(pinIndex int) (Node, bool) {
	idx, ok := t.bySinkIndex[pinIndex]
	if !ok || !t.nodes[idx].alive {
		return Node{}, false
	}
	return t.view(idx), true
}

// GetReachedSinks returns the 1-indexed pin indices currently reached.
func (t *Tree) GetReachedSinks() []int {
	out := make([]int, 0, len(t.bySinkIndex))
	for pin, idx := range t.bySinkIndex {
		if t.nodes[idx].alive {
			out = append(out, pin)
		}
	}
	return out
}

// GetRemainingSinks returns the 1-indexed pin indices not yet reached,
// out of [1, NumSinks()].
func (t *Tree) GetRemainingSinks() []int {
	var out []int
	for pin := 1; pin <= t.numSinks; pin++ {
		if idx, ok := t.bySinkIndex[pin]; !ok || !t.nodes[idx].alive {
			out = append(out, pin)
		}
	}
	return out
}

// CurrentBoundingBox returns the union of the bounding boxes of every
// live node's RRG node.
func (t *Tree) CurrentBoundingBox(g *rrg.Graph) rrg.BoundingBox {
	first := true
	var box rrg.BoundingBox
	for i := range t.nodes {
		if !t.nodes[i].alive {
			continue
		}
		nb := g.Node(t.nodes[i].rrNode).BBox
		if first {
			box = nb
			first = false
			continue
		}
		box = box.Union(nb)
	}
	return box
}

// Clone returns a deep, independent copy of the tree, used by the
// incremental rip-up path of net setup: the copy is pruned first, and
// congestion is re-attributed based on which copy survives.
func (t *Tree) Clone() *Tree {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := &Tree{
		netID:       t.netID,
		hasNet:      t.hasNet,
		numSinks:    t.numSinks,
		nodes:       append([]record(nil), t.nodes...),
		byRRNode:    make(map[rrg.NodeID][]NodeIndex, len(t.byRRNode)),
		bySinkIndex: make(map[int]NodeIndex, len(t.bySinkIndex)),
	}
	for k, v := range t.byRRNode {
		c.byRRNode[k] = append([]NodeIndex(nil), v...)
	}
	for k, v := range t.bySinkIndex {
		c.bySinkIndex[k] = v
	}
	return c
}

// lock/unlock wrap the tree's mutation lock for the methods
// (UpdateFromHeap, AttachChild, ReloadTiming, Prune, Freeze) that must
// serialize against each other per-tree.
func (t *Tree) lock()   { t.mu.Lock() }
func (t *Tree) unlock() { t.mu.Unlock() }
