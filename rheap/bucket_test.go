package rheap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBucketHeapPopsFromLowestBucket(t *testing.T) {
	h := NewBucketHeap(1)
	h.Push(Item{Priority: 5e-12})
	h.Push(Item{Priority: 1e-12})
	h.Push(Item{Priority: 1.2e-12})
	h.Push(Item{Priority: 9e-12})
	require.True(t, h.IsValid())

	it, ok := h.PopMin()
	require.True(t, ok)
	// Both 1e-12 and 1.2e-12 land in bucket 1; either may come out first,
	// but it must not be from bucket 5 or 9.
	require.Less(t, it.Priority, 5e-12)
}

func TestBucketHeapEmpty(t *testing.T) {
	h := NewBucketHeap(1)
	require.True(t, h.IsEmpty())
	_, ok := h.PopMin()
	require.False(t, ok)

	h.Push(Item{Priority: 1e-12})
	require.False(t, h.IsEmpty())
	h.Empty()
	require.True(t, h.IsEmpty())
}

func TestBucketHeapStableWithinRun(t *testing.T) {
	// Determinism within a run given a fixed seed.
	mk := func() float64 {
		h := NewBucketHeap(7)
		h.Push(Item{Priority: 1e-12, PrevEdge: 1})
		h.Push(Item{Priority: 1e-12, PrevEdge: 2})
		it, _ := h.PopMin()
		return float64(it.PrevEdge)
	}
	first := mk()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, mk(), "same seed must reproduce the same pick")
	}
}
