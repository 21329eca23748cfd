package rheap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/routecore/rrg"
)

func TestBinaryHeapPopOrder(t *testing.T) {
	h := NewBinaryHeap()
	costs := []float64{5, 1, 4, 2, 9, 0, 7, 3, 8, 6}
	for i, c := range costs {
		h.Push(Item{Node: rrg.NodeID(i), Priority: c})
	}
	require.True(t, h.IsValid())

	var got []float64
	for !h.IsEmpty() {
		it, ok := h.PopMin()
		require.True(t, ok)
		got = append(got, it.Priority)
	}
	for i := 1; i < len(got); i++ {
		require.LessOrEqual(t, got[i-1], got[i], "heap must pop in non-decreasing order")
	}
}

func TestBinaryHeapBuildAfterPushBack(t *testing.T) {
	h := NewBinaryHeap()
	costs := []float64{9, 2, 7, 1, 5}
	for i, c := range costs {
		h.PushBack(Item{Node: rrg.NodeID(i), Priority: c})
	}
	h.Build()
	require.True(t, h.IsValid())

	min, ok := h.PopMin()
	require.True(t, ok)
	require.Equal(t, 1.0, min.Priority)
}

func TestBinaryHeapEmptyPop(t *testing.T) {
	h := NewBinaryHeap()
	_, ok := h.PopMin()
	require.False(t, ok)
	require.True(t, h.IsEmpty())
}

func TestBinaryHeapNeverReturnsGreaterThanFuturePush(t *testing.T) {
	// Heap law: pop_min never returns a value greater than a
	// value already present at push time with a lower priority.
	r := rand.New(rand.NewSource(42))
	h := NewBinaryHeap()
	n := 200
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = r.Float64() * 1000
		h.Push(Item{Priority: vals[i]})
	}
	minVal := vals[0]
	for _, v := range vals {
		if v < minVal {
			minVal = v
		}
	}
	top, ok := h.PopMin()
	require.True(t, ok)
	require.Equal(t, minVal, top.Priority)
}
