package scratch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/routecore/rrg"
)

func TestNewTableInitializesUntouchedState(t *testing.T) {
	table := NewTable(3)
	require.Equal(t, 3, table.NumNodes())
	for i := 0; i < 3; i++ {
		e := table.Entry(rrg.NodeID(i))
		require.True(t, math.IsInf(e.PathCost, 1))
		require.Equal(t, rrg.NodeID(rrg.NO_ID), e.PrevNode)
		require.Equal(t, 1.0, e.AccCost, "historical factor starts at 1, not 0")
	}
}

func TestMarkModifiedIsIdempotent(t *testing.T) {
	table := NewTable(2)
	table.MarkModified(0)
	table.MarkModified(0)
	table.MarkModified(1)
	require.Equal(t, []rrg.NodeID{0, 1}, table.Modified())
}

func TestResetSearchRestoresOnlyModifiedEntries(t *testing.T) {
	table := NewTable(2)
	table.Entry(0).PathCost = 5
	table.Entry(0).Occ = 2
	table.MarkModified(0)
	table.Entry(1).Occ = 7 // untouched by this search, never marked modified

	table.ResetSearch()

	e0 := table.Entry(0)
	require.True(t, math.IsInf(e0.PathCost, 1))
	require.Equal(t, 2, e0.Occ, "iteration-scoped Occ must survive a search reset")
	require.Empty(t, table.Modified())

	require.Equal(t, 7, table.Entry(1).Occ)
}

func TestIsOveruse(t *testing.T) {
	e := &Entry{Occ: 3}
	require.True(t, IsOveruse(e, 2))
	require.False(t, IsOveruse(e, 3))
}
