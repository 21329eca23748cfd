package rheap

import "math/rand"

// DefaultConversionFactor scales a float cost into an integer bucket
// index; the default approximates one bucket per picosecond when cost is
// dominated by delay magnitudes.
const DefaultConversionFactor = 1e12

// BucketHeap is an approximate priority queue: items are grouped into
// buckets by floor(cost * conversionFactor), and PopMin returns a random
// item from the lowest non-empty bucket rather than the strict minimum.
// This deliberately breaks symmetric ties between parallel paths of
// equal cost and runs near-linear amortized, at the cost of exact
// ordering.
//
// BucketHeap is not safe for concurrent use.
type BucketHeap struct {
	buckets    [][]Item
	nextToScan int // lowest bucket index that might still hold items
	convFactor float64
	count      int
	rng        *rand.Rand
}

// NewBucketHeap returns an empty bucket heap. seed makes the random
// tie-break walk reproducible across runs with identical inputs.
func NewBucketHeap(seed int64) *BucketHeap {
	return &BucketHeap{
		convFactor: DefaultConversionFactor,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (h *BucketHeap) costToBucket(cost float64) int {
	idx := int(cost * h.convFactor)
	if idx < 0 {
		idx = 0
	}
	return idx
}

func (h *BucketHeap) ensureBucket(idx int) {
	if idx < len(h.buckets) {
		return
	}
	grown := make([][]Item, idx+1)
	copy(grown, h.buckets)
	h.buckets = grown
}

// Push appends it to its bucket. Ordering restoration (Build) is a no-op
// for this heap: there is no total order to restore, only bucket
// membership, which Push already maintains.
func (h *BucketHeap) Push(it Item) {
	idx := h.costToBucket(it.Priority)
	h.ensureBucket(idx)
	h.buckets[idx] = append(h.buckets[idx], it)
	if idx < h.nextToScan || h.count == 0 {
		h.nextToScan = idx
	}
	h.count++
}

func (h *BucketHeap) Build() {}

// PopMin scans forward from the last known-lowest bucket, then returns a
// uniformly random item (drawn from the seeded rng) from the first
// non-empty one found, rather than always taking its head.
func (h *BucketHeap) PopMin() (Item, bool) {
	if h.count == 0 {
		return Item{}, false
	}
	for h.nextToScan < len(h.buckets) && len(h.buckets[h.nextToScan]) == 0 {
		h.nextToScan++
	}
	if h.nextToScan >= len(h.buckets) {
		return Item{}, false
	}
	bucket := h.buckets[h.nextToScan]
	j := h.rng.Intn(len(bucket))
	it := bucket[j]
	last := len(bucket) - 1
	bucket[j] = bucket[last]
	h.buckets[h.nextToScan] = bucket[:last]
	h.count--
	return it, true
}

func (h *BucketHeap) Empty() {
	for i := range h.buckets {
		h.buckets[i] = nil
	}
	h.buckets = h.buckets[:0]
	h.nextToScan = 0
	h.count = 0
}

func (h *BucketHeap) IsEmpty() bool { return h.count == 0 }

// IsValid checks that every item in bucket i truly hashes to bucket i —
// the only invariant an approximate heap can promise.
func (h *BucketHeap) IsValid() bool {
	for idx, bucket := range h.buckets {
		for _, it := range bucket {
			if h.costToBucket(it.Priority) != idx {
				return false
			}
		}
	}
	return true
}

var _ Interface = (*BucketHeap)(nil)
