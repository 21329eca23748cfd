package rheap

// BinaryHeap is a 1-indexed d-ary (d=2) binary min-heap over Item:
// push performs a sift-up, pop performs a sift-down, and Build performs
// a bottom-up heapify so a caller may push a whole batch out of order
// (the connection router's pre-search tree seeding) and fix the heap
// once.
type BinaryHeap struct {
	// heap[0] is unused; real entries occupy heap[1:size+1], so that a
	// node at index i has children at 2i and 2i+1.
	heap []Item
}

// NewBinaryHeap returns an empty binary heap.
func NewBinaryHeap() *BinaryHeap {
	return &BinaryHeap{heap: make([]Item, 1, 64)}
}

func (h *BinaryHeap) size() int { return len(h.heap) - 1 }

// Push appends it and restores the heap property by sifting up. Safe to
// call even mid-Build-batch: if the caller plans to call Build anyway, the
// sift-up is wasted work but not incorrect.
func (h *BinaryHeap) Push(it Item) {
	h.heap = append(h.heap, it)
	h.siftUp(h.size(), it)
}

// PushBack appends it without restoring the heap property; callers must
// follow with Build before popping. Exists for the bulk pre-search seeding
// path where many items are added before the first pop.
func (h *BinaryHeap) PushBack(it Item) {
	h.heap = append(h.heap, it)
}

// Build performs a bottom-up heapify: O(n) sift-down from the last
// internal node to the root.
func (h *BinaryHeap) Build() {
	n := h.size()
	for i := n / 2; i >= 1; i-- {
		h.siftDownFrom(i)
	}
}

// PopMin extracts the minimum-priority item, refilling the hole from the
// tail and sifting down.
func (h *BinaryHeap) PopMin() (Item, bool) {
	n := h.size()
	if n == 0 {
		return Item{}, false
	}
	min := h.heap[1]
	last := h.heap[n]
	h.heap = h.heap[:n] // drop the tail slot; index n is now unused
	if n > 1 {
		h.heap[1] = last
		h.siftDownFrom(1)
	}
	return min, true
}

func (h *BinaryHeap) Empty() {
	h.heap = h.heap[:1]
}

func (h *BinaryHeap) IsEmpty() bool { return h.size() == 0 }

func (h *BinaryHeap) IsValid() bool {
	n := h.size()
	for i := 1; i <= n; i++ {
		l, r := 2*i, 2*i+1
		if l <= n && h.heap[l].Priority < h.heap[i].Priority {
			return false
		}
		if r <= n && h.heap[r].Priority < h.heap[i].Priority {
			return false
		}
	}
	return true
}

func (h *BinaryHeap) siftUp(leaf int, node Item) {
	i := leaf
	for i > 1 {
		parent := i / 2
		if h.heap[parent].Priority <= node.Priority {
			break
		}
		h.heap[i] = h.heap[parent]
		i = parent
	}
	h.heap[i] = node
}

func (h *BinaryHeap) siftDownFrom(hole int) {
	n := h.size()
	node := h.heap[hole]
	i := hole
	for {
		child := 2 * i
		if child > n {
			break
		}
		if child+1 <= n && h.heap[child+1].Priority < h.heap[child].Priority {
			child++
		}
		if h.heap[child].Priority >= node.Priority {
			break
		}
		h.heap[i] = h.heap[child]
		i = child
	}
	h.heap[i] = node
}

var _ Interface = (*BinaryHeap)(nil)
