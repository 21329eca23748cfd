package routetree

import (
	"fmt"

	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// ErrNoAttachmentPoint is returned if the scratch table's prev_edge chain
// from sinkNode never reaches a node already present in the tree — an
// invariant violation, since every search seeds the heap from live tree
// nodes.
var ErrNoAttachmentPoint = fmt.Errorf("routetree: prev_edge chain from sink never reaches the tree")

// UpdateFromHeap splices the newly found path to sinkNode into the tree,
// reading parent pointers back out of table (the scratch table the
// connection router just searched over), and returns the attachment
// point and the new SINK leaf.
//
// This is the tree's search-driven mutation entrypoint and is safe to call from
// only one goroutine at a time per Tree (callers routing different nets
// concurrently use distinct Trees; the parallel router still routes one
// net, and therefore one Tree, on one goroutine at a time).
func (t *Tree) UpdateFromHeap(g *rrg.Graph, table *scratch.Table, sinkNode rrg.NodeID, pinIndex int) (attach NodeIndex, sink NodeIndex, err error) {
	t.lock()
	defer t.unlock()

	type step struct {
		node rrg.NodeID
		edge rrg.EdgeID
	}

	var chain []step
	cur := sinkNode
	var attachIdx NodeIndex
	found := false
	for {
		if v, ok := t.FindByRRID(cur); ok {
			attachIdx = v.Index
			found = true
			break
		}
		e := table.Entry(cur)
		if e.PrevNode == rrg.NO_ID {
			break
		}
		chain = append(chain, step{node: cur, edge: e.PrevEdge})
		cur = e.PrevNode
	}
	if !found {
		return 0, 0, ErrNoAttachmentPoint
	}

	// chain is sink-first; walk it in reverse (attach-adjacent first) so
	// parent links can be set immediately as each node is created.
	parent := attachIdx
	var lastNew NodeIndex
	haveNew := false
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		sw := t.switchForEdge(g, t.nodes[parent].rrNode, s.node, s.edge)
		lastNew = t.appendChild(table, parent, s.node, sw)
		parent = lastNew
		haveNew = true
	}

	if !haveNew && t.nodes[attachIdx].netPinIndex != noIndex {
		// The search reconverged directly onto sinkNode with no new
		// intermediate node, and that arena slot is already a reached
		// SINK leaf for a different pin: this is the same physical SINK
		// reached by a second pin, which needs
		// its own distinct tree node rather than overwriting the
		// existing leaf's pin mapping.
		rec := t.nodes[attachIdx]
		lastNew = t.appendChild(table, rec.parent, rec.rrNode, rec.parentSwitch)
	} else if !haveNew {
		lastNew = attachIdx
	}

	t.nodes[lastNew].netPinIndex = pinIndex
	t.nodes[lastNew].reExpand = false // SINK leaves are never search start points
	t.bySinkIndex[pinIndex] = lastNew

	t.propagateNonConfigClosure(g, table, lastNew)
	t.reloadTimingLocked(g, attachIdx)

	return attachIdx, lastNew, nil
}

// AttachChild splices a single (parent, rr, switch) edge into the tree
// directly, bypassing the scratch-table-driven chain walk UpdateFromHeap
// performs. Package traceback uses this to reconstruct a tree node by
// node from a persisted file, where the (parent, child, switch) triples
// are already known rather than recovered from a search. table is the
// same per-device scratch table later searches will read occupancy
// from; a reconstructed tree occupies its RR nodes exactly as one built
// by UpdateFromHeap would.
//
// If pinIndex is not routetree.NoPinIndex, the new node is recorded as
// the SINK leaf for that 1-indexed net pin. Timing is not recomputed;
// callers reconstructing a whole tree should call ReloadTiming once at
// the end rather than after every AttachChild.
func (t *Tree) AttachChild(table *scratch.Table, parent NodeIndex, rr rrg.NodeID, sw rrg.SwitchID, pinIndex int) NodeIndex {
	t.lock()
	defer t.unlock()

	idx := t.appendChild(table, parent, rr, sw)
	if pinIndex != NoPinIndex {
		t.nodes[idx].netPinIndex = pinIndex
		t.nodes[idx].reExpand = false
		t.bySinkIndex[pinIndex] = idx
	}
	return idx
}

// switchForEdge finds the SwitchID of the RRG edge from -> to that the
// search actually took, recovered from the RRG's own edge list so that
// rheap.Item need not carry a redundant switch id (edge selection is
// already implied by (from, to) on a simple graph, and recovering it
// here keeps rheap free of an RRG dependency).
func (t *Tree) switchForEdge(g *rrg.Graph, from, to rrg.NodeID, edge rrg.EdgeID) rrg.SwitchID {
	if edge >= 0 && int(edge) < len(g.Node(from).Edges) && g.Node(from).Edges[edge].To == to {
		return g.Node(from).Edges[edge].Switch
	}
	for _, e := range g.Node(from).Edges {
		if e.To == to {
			return e.Switch
		}
	}
	return 0
}

// appendChild allocates a new arena slot as a child of parent, prepending
// it to parent's child list (O(1); child ordering among siblings is not
// semantically meaningful for any operation in this package), and marks
// rr as occupied in table. Every arena slot is created here and nowhere
// else, so this is the single place a tree claims RRG capacity: an
// intermediate RR node already reached by an earlier search of the same
// net attaches to its existing slot via FindByRRID instead of reaching
// appendChild again, so a plain pass-through node is only ever counted
// once. The one exception is a SINK already reached by a different pin
// (UpdateFromHeap's dedicated branch for it): that case calls appendChild
// again so the two pins get distinct tree nodes, matching the "same
// physical SINK reached by multiple pins" special case.
func (t *Tree) appendChild(table *scratch.Table, parent NodeIndex, rr rrg.NodeID, sw rrg.SwitchID) NodeIndex {
	idx := NodeIndex(len(t.nodes))
	t.nodes = append(t.nodes, record{
		rrNode:       rr,
		parentSwitch: sw,
		parent:       parent,
		firstChild:   noIndex,
		nextSibling:  t.nodes[parent].firstChild,
		netPinIndex:  noIndex,
		reExpand:     true,
		alive:        true,
	})
	t.nodes[parent].firstChild = idx
	t.byRRNode[rr] = append(t.byRRNode[rr], idx)
	table.Entry(rr).Occ++
	return idx
}

// propagateNonConfigClosure adds every node reachable from 'from' via a
// chain of non-configurable (always-on) switches whose target is in the
// same non-configurable set: once one member of such a set is live, every
// member is live unconditionally.
func (t *Tree) propagateNonConfigClosure(g *rrg.Graph, table *scratch.Table, from NodeIndex) {
	set, ok := g.NonConfigSetOf(t.nodes[from].rrNode)
	if !ok {
		return
	}
	inSet := make(map[rrg.NodeID]bool, len(set.Nodes))
	for _, n := range set.Nodes {
		inSet[n] = true
	}

	queue := []NodeIndex{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curRR := t.nodes[cur].rrNode
		for _, e := range g.Node(curRR).Edges {
			sw := g.Switch(e.Switch)
			if sw.Configurable || !inSet[e.To] {
				continue
			}
			if _, already := t.FindByRRID(e.To); already {
				continue
			}
			child := t.appendChild(table, cur, e.To, e.Switch)
			queue = append(queue, child)
		}
	}
}
