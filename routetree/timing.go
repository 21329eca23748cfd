package routetree

import (
	"github.com/katalvlaran/routecore/cost"
	"github.com/katalvlaran/routecore/rrg"
)

// ReloadTiming recomputes R_upstream, C_downstream and Tdel for the whole
// tree from the root down.
func (t *Tree) ReloadTiming(g *rrg.Graph) {
	t.lock()
	defer t.unlock()
	t.reloadTimingLocked(g, RootIndex)
}

// ReloadTimingFrom recomputes timing incrementally starting at idx: it is
// the routine UpdateFromHeap calls after every splice.
func (t *Tree) ReloadTimingFrom(g *rrg.Graph, idx NodeIndex) {
	t.lock()
	defer t.unlock()
	t.reloadTimingLocked(g, idx)
}

// reloadTimingLocked is the incremental recompute behind ReloadTiming:
// recompute C_downstream bottom-up within subtree(from); propagate the
// resulting delta up through unbuffered ancestors only (a buffered
// switch isolates downstream capacitance, so an ancestor beyond one
// never sees the change); then recompute R_upstream/Tdel top-down for
// the subtree rooted at the highest node the delta reached.
func (t *Tree) reloadTimingLocked(g *rrg.Graph, from NodeIndex) {
	oldC := t.nodes[from].cDownstream
	newC := t.recomputeCDownstream(g, from)
	delta := newC - oldC

	top := from
	for t.nodes[top].parent != noIndex {
		parent := t.nodes[top].parent
		sw := g.Switch(t.nodes[top].parentSwitch)
		if sw.Buffered {
			break
		}
		t.nodes[parent].cDownstream += delta
		top = parent
	}

	var parentRUp, parentTdel float64
	if p := t.nodes[top].parent; p != noIndex {
		parentRUp = t.nodes[p].rUpstream
		parentTdel = t.nodes[p].tdel
	}
	t.recomputeRUpstreamTdel(g, top, parentRUp, parentTdel)
}

// recomputeCDownstream computes (and stores) C_downstream for every live
// node in subtree(idx), post-order.
func (t *Tree) recomputeCDownstream(g *rrg.Graph, idx NodeIndex) float64 {
	node := g.Node(t.nodes[idx].rrNode)
	sum := node.C
	for c := t.firstLiveChild(idx); c != noIndex; c = t.nextLiveSibling(c) {
		childC := t.recomputeCDownstream(g, c)
		sw := g.Switch(t.nodes[c].parentSwitch)
		contribution := sw.Cinternal
		if !sw.Buffered {
			contribution += childC
		}
		sum += contribution
	}
	t.nodes[idx].cDownstream = sum
	return sum
}

// recomputeRUpstreamTdel sets R_upstream and Tdel for every live node in
// subtree(idx), pre-order, following the half-segment Elmore convention
// used by the cost model.
func (t *Tree) recomputeRUpstreamTdel(g *rrg.Graph, idx NodeIndex, parentRUp, parentTdel float64) {
	r := &t.nodes[idx]
	node := g.Node(r.rrNode)

	var rUp, tdel float64
	if r.parent == noIndex {
		rUp = node.R
		tdel = 0
	} else {
		sw := g.Switch(r.parentSwitch)
		rUp = cost.RUpstream(sw.Buffered, parentRUp, sw.R, node.R)
		tdel = parentTdel + sw.Tdel + sw.R*r.cDownstream + 0.5*node.R*r.cDownstream
	}
	r.rUpstream = rUp
	r.tdel = tdel

	for c := t.firstLiveChild(idx); c != noIndex; c = t.nextLiveSibling(c) {
		t.recomputeRUpstreamTdel(g, c, rUp, tdel)
	}
}
