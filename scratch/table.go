package scratch

import (
	"math"

	"github.com/katalvlaran/routecore/rrg"
)

// Entry is one row of node_route_inf.
type Entry struct {
	// Search-scoped fields: valid only during/after a single connection
	// search and reset via the modified list between sinks.
	PathCost     float64 // f = backward_cost + h, total estimate
	BackwardCost float64 // g, true cost so far
	PrevNode     rrg.NodeID
	PrevEdge     rrg.EdgeID
	RUpstream    float64
	TargetFlag   bool

	// Iteration-scoped fields: persist across negotiation iterations
	// until the outer loop explicitly updates them.
	Occ      int
	AccCost  float64
	PresCost float64

	// Version is bumped by ResetSearch and, under the per-node lock, by
	// the parallel router (package parrouter) whenever it rewrites a
	// search-scoped field. Nothing in this module reads it: parrouter
	// re-validates a speculative, lock-free read by repeating its
	// acceptance test inside the lock.
	Version uint64
}

// Table is the full per-node scratch table for one RRG. One Table is
// shared by every net routed serially; the parallel router wraps the same
// entries with a per-node spin lock (see parrouter.LockedTable).
type Table struct {
	entries []Entry

	// modified is the set of node ids touched since the last Reset call,
	// enabling O(modified) reset between per-sink searches instead of
	// O(|V|).
	modified   []rrg.NodeID
	inModified []bool
}

// NewTable allocates a scratch table sized for numNodes RRG nodes, with
// every entry initialized to the "untouched" state (PathCost = +Inf).
func NewTable(numNodes int) *Table {
	t := &Table{
		entries:    make([]Entry, numNodes),
		inModified: make([]bool, numNodes),
	}
	t.ResetAll()
	return t
}

// ResetAll clears every entry to its initial state. Used once before the
// first negotiation iteration and whenever the caller cannot rely on the
// modified-list invariant (e.g. after restoring a snapshot).
func (t *Table) ResetAll() {
	for i := range t.entries {
		// AccCost is a multiplicative factor in the congestion cost and
		// must start at 1, not 0; historical updates only ever add to it.
		t.entries[i] = Entry{PathCost: math.Inf(1), PrevNode: rrg.NO_ID, PrevEdge: rrg.NO_ID, AccCost: 1}
	}
	t.modified = t.modified[:0]
	for i := range t.inModified {
		t.inModified[i] = false
	}
}

// Entry returns a pointer to the scratch row for id. The pointer is only
// valid until the next ResetAll.
func (t *Table) Entry(id rrg.NodeID) *Entry { return &t.entries[id] }

// NumNodes returns the number of rows the table was sized for, used by
// package parrouter to size its per-node spin-lock array 1:1 with the
// scratch table.
func (t *Table) NumNodes() int { return len(t.entries) }

// MarkModified records that id's search-scoped fields were written during
// the current search, so ResetSearch can restore it cheaply. Safe to call
// more than once per node per search.
func (t *Table) MarkModified(id rrg.NodeID) {
	if t.inModified[id] {
		return
	}
	t.inModified[id] = true
	t.modified = append(t.modified, id)
}

// ResetSearch restores PathCost/BackwardCost/PrevNode/PrevEdge/RUpstream/
// TargetFlag to their untouched state for every node on the modified list,
// then clears the list. Occ/AccCost/PresCost are untouched, since those
// persist across searches within an iteration.
func (t *Table) ResetSearch() {
	for _, id := range t.modified {
		e := &t.entries[id]
		e.PathCost = math.Inf(1)
		e.BackwardCost = 0
		e.PrevNode = rrg.NO_ID
		e.PrevEdge = rrg.NO_ID
		e.RUpstream = 0
		e.TargetFlag = false
		e.Version++
		t.inModified[id] = false
	}
	t.modified = t.modified[:0]
}

// Modified returns the current modified-list contents; used by
// connrouter's debug-mode heap drain.
func (t *Table) Modified() []rrg.NodeID { return t.modified }

// IsOveruse reports whether the node's occupancy exceeds its capacity.
func IsOveruse(e *Entry, capacity int) bool { return e.Occ > capacity }
