package parrouter

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// LockedTable wraps a *scratch.Table with one spin lock per RR node,
// acquired only around the read-modify-write of a node's scratch entry
// and the decision to push. The locks are
// sized 1:1 with the table via scratch.Table.NumNodes and live alongside
// it rather than inside package scratch, since only the parallel router
// needs per-entry mutual exclusion — the serial router's Table is never
// touched by more than one goroutine at a time.
//
// A second, coarser mutex (listMu) separately serializes the one piece of
// *scratch.Table state a spin lock does not cover: the modified-node list
// backing ResetSearch. Every worker's MarkModified call takes this lock;
// it is held only for the duration of one slice append, never while a
// per-node spin lock is held, so it cannot participate in a deadlock.
type LockedTable struct {
	table *scratch.Table
	locks []atomic.Uint32

	listMu sync.Mutex
}

// NewLockedTable wraps table with a spin lock per node.
func NewLockedTable(table *scratch.Table) *LockedTable {
	return &LockedTable{
		table: table,
		locks: make([]atomic.Uint32, table.NumNodes()),
	}
}

// Table returns the underlying scratch table, for callers (e.g.
// routetree.UpdateFromHeap) that run after the parallel phase has
// finished and no longer need per-entry locking.
func (lt *LockedTable) Table() *scratch.Table { return lt.table }

// Peek returns a best-effort, lock-free snapshot of id's entry, for the
// speculative pre-lock prune filter. The result may be stale; callers must re-check
// under Lock before committing a decision.
func (lt *LockedTable) Peek(id rrg.NodeID) scratch.Entry {
	return *lt.table.Entry(id)
}

// Lock spins until it acquires id's node lock, via CAS on a packed
// 0/1 word rather than a sync.Mutex, per the design notes.
func (lt *LockedTable) Lock(id rrg.NodeID) {
	l := &lt.locks[id]
	for !l.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// Unlock releases id's node lock.
func (lt *LockedTable) Unlock(id rrg.NodeID) {
	lt.locks[id].Store(0)
}

// MarkModified records id on the shared modified list under listMu.
func (lt *LockedTable) MarkModified(id rrg.NodeID) {
	lt.listMu.Lock()
	lt.table.MarkModified(id)
	lt.listMu.Unlock()
}

// ResetSearch restores every modified entry to its untouched state.
// Callers must only invoke this once every worker has stopped touching
// the table (i.e. after the worker pool's errgroup.Wait returns).
func (lt *LockedTable) ResetSearch() { lt.table.ResetSearch() }
