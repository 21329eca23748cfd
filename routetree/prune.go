package routetree

import (
	"math"

	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// Prune removes congested and otherwise-invalid subtrees from the tree
// in place. forcedReroute, if non-nil, maps a 1-indexed net pin index to
// "this connection must be re-routed even though it is currently legal".
//
// Prune returns false if the entire tree (down to the root) was removed;
// callers must treat a false return as "this net's routing is gone" and
// start over.
func (t *Tree) Prune(g *rrg.Graph, table *scratch.Table, forcedReroute map[int]bool) bool {
	t.lock()
	defer t.unlock()

	usage := t.nonConfigUsageLocked(g)
	return t.pruneNode(g, table, forcedReroute, usage, RootIndex)
}

// pruneNode recurses into idx's children first, detaching any that prune
// away, then decides whether idx itself survives.
func (t *Tree) pruneNode(g *rrg.Graph, table *scratch.Table, forcedReroute map[int]bool, usage map[int]int, idx NodeIndex) bool {
	children := t.ChildIndices(idx)
	for _, c := range children {
		if !t.pruneNode(g, table, forcedReroute, usage, c) {
			t.detach(c)
		}
	}

	rec := &t.nodes[idx]
	rrNode := g.Node(rec.rrNode)
	isSink := rec.netPinIndex != noIndex

	congested := table.Entry(rec.rrNode).Occ > rrNode.Capacity
	forced := isSink && forcedReroute != nil && forcedReroute[rec.netPinIndex]
	noChildrenLeft := t.firstLiveChild(idx) == noIndex
	unusedNonConfig := false
	if set, ok := g.NonConfigSetOf(rec.rrNode); ok {
		unusedNonConfig = usage[set.ID] == 0 && !isSink
	}

	prune := false
	if congested && idx != RootIndex {
		prune = true
	}
	if forced {
		prune = true
	}
	if noChildrenLeft && !isSink {
		prune = true
	}
	if unusedNonConfig {
		prune = true
	}

	if prune {
		if isSink {
			delete(t.bySinkIndex, rec.netPinIndex)
		}
		return false
	}
	return true
}

// detach marks idx and its whole (already-pruned-clean) subtree dead and
// unlinks it from its parent's child list.
func (t *Tree) detach(idx NodeIndex) {
	parent := t.nodes[idx].parent
	if parent != noIndex {
		if t.nodes[parent].firstChild == idx {
			t.nodes[parent].firstChild = t.nodes[idx].nextSibling
		} else {
			prev := t.nodes[parent].firstChild
			for prev != noIndex && t.nodes[prev].nextSibling != idx {
				prev = t.nodes[prev].nextSibling
			}
			if prev != noIndex {
				t.nodes[prev].nextSibling = t.nodes[idx].nextSibling
			}
		}
	}
	for _, n := range t.AllNodes(idx) {
		t.nodes[n].alive = false
	}
}

// nonConfigUsageLocked counts, per non-configurable set id, how many live
// tree nodes in that set were entered via a configurable switch — i.e.
// true entry points rather than members dragged in by the closure.
func (t *Tree) nonConfigUsageLocked(g *rrg.Graph) map[int]int {
	usage := make(map[int]int)
	for i := range t.nodes {
		if !t.nodes[i].alive {
			continue
		}
		set, ok := g.NonConfigSetOf(t.nodes[i].rrNode)
		if !ok {
			continue
		}
		if i == 0 {
			continue // root has no entering switch
		}
		sw := g.Switch(t.nodes[i].parentSwitch)
		if sw.Configurable {
			usage[set.ID]++
		}
	}
	return usage
}

// GetNonConfigNodeSetUsage exposes the same counts Prune uses internally,
// for callers (e.g. netrouter) that want to report on set liveness.
func (t *Tree) GetNonConfigNodeSetUsage(g *rrg.Graph) map[int]int {
	t.lock()
	defer t.unlock()
	return t.nonConfigUsageLocked(g)
}

// Freeze removes every SINK leaf from the tree and marks every remaining
// node non-expandable, used after a clock net's virtual-root pre-route
// completes.
func (t *Tree) Freeze() {
	t.lock()
	defer t.unlock()
	for i := range t.nodes {
		if !t.nodes[i].alive {
			continue
		}
		if t.nodes[i].netPinIndex != noIndex && t.firstLiveChild(NodeIndex(i)) == noIndex {
			t.detach(NodeIndex(i))
			continue
		}
		t.nodes[i].reExpand = false
	}
}

// IsUncongested reports whether every live node in the tree is within
// capacity.
func (t *Tree) IsUncongested(g *rrg.Graph, table *scratch.Table) bool {
	t.lock()
	defer t.unlock()
	for i := range t.nodes {
		if !t.nodes[i].alive {
			continue
		}
		if table.Entry(t.nodes[i].rrNode).Occ > g.Node(t.nodes[i].rrNode).Capacity {
			return false
		}
	}
	return true
}

// IsValid sanity-checks the tree: no SINK has children, every non-root
// node is reachable from its recorded parent, and R_upstream/C_downstream/
// Tdel match a from-scratch recomputation within relative tolerance.
func (t *Tree) IsValid(g *rrg.Graph) bool {
	t.mu.Lock()
	clone := &Tree{
		netID: t.netID, hasNet: t.hasNet, numSinks: t.numSinks,
		nodes: append([]record(nil), t.nodes...),
	}
	t.mu.Unlock()

	clone.reloadTimingLocked(g, RootIndex)

	for i := range t.nodes {
		if !t.nodes[i].alive {
			continue
		}
		rec := &t.nodes[i]
		if rec.netPinIndex != noIndex && t.firstLiveChild(NodeIndex(i)) != noIndex {
			return false // SINK with children
		}
		if rec.parent != noIndex {
			if !t.nodes[rec.parent].alive {
				return false
			}
			found := false
			for c := t.firstLiveChild(rec.parent); c != noIndex; c = t.nextLiveSibling(c) {
				if int(c) == i {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		cr := &clone.nodes[i]
		if !relClose(rec.rUpstream, cr.rUpstream) || !relClose(rec.cDownstream, cr.cDownstream) || !relClose(rec.tdel, cr.tdel) {
			return false
		}
	}
	return true
}

func relClose(a, b float64) bool {
	if a == b {
		return true
	}
	denom := math.Max(math.Abs(a), math.Abs(b))
	if denom == 0 {
		return true
	}
	return math.Abs(a-b)/denom <= 1e-6
}
