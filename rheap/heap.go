package rheap

import "github.com/katalvlaran/routecore/rrg"

// Item is one heap entry: a candidate path to Node with its estimated
// total cost and the data needed to splice it into a route tree if it
// turns out to be the winning path.
type Item struct {
	Node         rrg.NodeID
	Priority     float64 // total_cost = backward_cost + h
	BackwardCost float64
	PrevNode     rrg.NodeID
	PrevEdge     rrg.EdgeID
	RUpstream    float64
}

// Interface is the contract both heap variants satisfy.
// Implementations are not safe for concurrent use; package parrouter
// layers its own concurrent multi-queue on top for the parallel router.
type Interface interface {
	// Push adds an item. May temporarily violate heap ordering if the
	// caller intends to follow with Build (bulk-load pattern).
	Push(it Item)
	// PopMin extracts the minimum-priority item. ok is false iff the heap
	// is empty.
	PopMin() (it Item, ok bool)
	// Build restores the heap property after one or more Push calls made
	// without ordering (O(n) bottom-up heapify for the binary variant; a
	// no-op for the bucket variant, which has no ordering to restore).
	Build()
	// Empty discards all entries.
	Empty()
	// IsEmpty reports whether the heap holds no entries.
	IsEmpty() bool
	// IsValid sanity-checks internal invariants; used only by tests.
	IsValid() bool
}

// Accepts implements the deterministic tie-break shared by
// the serial connection router and the parallel one: a strictly lower
// total cost always wins; on an exact tie, the numerically smaller
// entering edge wins, ordered lexicographically by (PrevNode, PrevEdge)
// since EdgeID is only unique relative to its owning node. A node that
// is the search's own tree-attachment point (PrevNode == rrg.NO_ID,
// which is negative) always wins a tie against any edge-derived path.
// This guarantees identical outputs independent of thread count.
func Accepts(newTotal float64, newPrevNode rrg.NodeID, newPrevEdge rrg.EdgeID, curTotal float64, curPrevNode rrg.NodeID, curPrevEdge rrg.EdgeID) bool {
	if newTotal != curTotal {
		return newTotal < curTotal
	}
	if newPrevNode != curPrevNode {
		return newPrevNode < curPrevNode
	}
	return newPrevEdge < curPrevEdge
}
