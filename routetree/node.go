package routetree

import "github.com/katalvlaran/routecore/rrg"

// noIndex marks the absence of a parent/child/sibling arena slot.
const noIndex = -1

// NoPinIndex marks a tree node that is not a reached SINK leaf for any
// net pin, exported for callers outside the package (package traceback)
// reconstructing nodes via AttachChild.
const NoPinIndex = noIndex

// NodeIndex is a stable reference to a node within one Tree's arena. It
// remains valid for the lifetime of the Tree (pruning invalidates only
// the indices of pruned nodes).
type NodeIndex int

// record is the arena-backed representation of one route-tree node.
// Children are an intrusive singly-linked list (firstChild /
// nextSibling), addressed by index instead of pointer.
type record struct {
	rrNode       rrg.NodeID
	parentSwitch rrg.SwitchID
	parent       NodeIndex
	firstChild   NodeIndex
	nextSibling  NodeIndex

	reExpand    bool
	netPinIndex int // 1-indexed sink pin; noIndex (-1) if not a (reached) sink leaf

	rUpstream   float64
	cDownstream float64
	tdel        float64

	// alive is false once a node has been pruned; its arena slot is
	// retained (not compacted) so sibling/parent indices elsewhere in the
	// arena stay valid, but it is skipped by every iterator.
	alive bool
}

// Node is a read-only view of one tree node, returned by accessors so
// callers outside the package never see arena internals.
type Node struct {
	Index        NodeIndex
	RRNode       rrg.NodeID
	ParentSwitch rrg.SwitchID
	ReExpand     bool
	NetPinIndex  int
	RUpstream    float64
	CDownstream  float64
	Tdel         float64
}

func (t *Tree) view(idx NodeIndex) Node {
	r := &t.nodes[idx]
	return Node{
		Index:        idx,
		RRNode:       r.rrNode,
		ParentSwitch: r.parentSwitch,
		ReExpand:     r.reExpand,
		NetPinIndex:  r.netPinIndex,
		RUpstream:    r.rUpstream,
		CDownstream:  r.cDownstream,
		Tdel:         r.tdel,
	}
}

// IsLeaf reports whether idx currently has no live children.
func (t *Tree) IsLeaf(idx NodeIndex) bool {
	return t.firstLiveChild(idx) == noIndex
}

func (t *Tree) firstLiveChild(idx NodeIndex) NodeIndex {
	c := t.nodes[idx].firstChild
	for c != noIndex && !t.nodes[c].alive {
		c = t.nodes[c].nextSibling
	}
	return c
}

func (t *Tree) nextLiveSibling(idx NodeIndex) NodeIndex {
	s := t.nodes[idx].nextSibling
	for s != noIndex && !t.nodes[s].alive {
		s = t.nodes[s].nextSibling
	}
	return s
}
