package parrouter

import (
	"sync"

	"github.com/katalvlaran/routecore/rheap"
)

// ConcurrentHeap wraps an rheap.Interface with a single mutex, giving
// every worker goroutine safe Push/PopMin access. A single mutex is
// deliberately preferred over a sharded lock-free multi-queue:
// contention is low because the lock is held only across a single slice
// operation, and determinism only requires that concurrent pops observe
// a consistent total order, which one mutex trivially gives. A sharded
// multi-queue would need its own cross-shard tie-break to match
// rheap.Accepts exactly and is not worth the complexity at this scale.
type ConcurrentHeap struct {
	mu    sync.Mutex
	inner rheap.Interface
}

// NewConcurrentHeap wraps inner, which must not be touched by any other
// goroutine after this call.
func NewConcurrentHeap(inner rheap.Interface) *ConcurrentHeap {
	return &ConcurrentHeap{inner: inner}
}

func (h *ConcurrentHeap) Push(it rheap.Item) {
	h.mu.Lock()
	h.inner.Push(it)
	h.mu.Unlock()
}

func (h *ConcurrentHeap) PopMin() (rheap.Item, bool) {
	h.mu.Lock()
	it, ok := h.inner.PopMin()
	h.mu.Unlock()
	return it, ok
}

func (h *ConcurrentHeap) Build() {
	h.mu.Lock()
	h.inner.Build()
	h.mu.Unlock()
}

func (h *ConcurrentHeap) Empty() {
	h.mu.Lock()
	h.inner.Empty()
	h.mu.Unlock()
}

func (h *ConcurrentHeap) IsEmpty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inner.IsEmpty()
}

func (h *ConcurrentHeap) IsValid() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inner.IsValid()
}

var _ rheap.Interface = (*ConcurrentHeap)(nil)
