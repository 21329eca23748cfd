package rheap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/routecore/rrg"
)

func TestAcceptsLowerTotalAlwaysWins(t *testing.T) {
	require.True(t, Accepts(1.0, 5, 3, 2.0, 0, 0))
	require.False(t, Accepts(2.0, 0, 0, 1.0, 5, 3))
}

func TestAcceptsTieBreaksOnPrevNodeThenPrevEdge(t *testing.T) {
	// Equal totals: smaller PrevNode wins regardless of PrevEdge.
	require.True(t, Accepts(1.0, 2, 7, 1.0, 3, 0))
	require.False(t, Accepts(1.0, 3, 0, 1.0, 2, 7))

	// Same PrevNode: smaller PrevEdge wins.
	require.True(t, Accepts(1.0, 2, 0, 1.0, 2, 1))
	require.False(t, Accepts(1.0, 2, 1, 1.0, 2, 0))

	// Identical path: no churn.
	require.False(t, Accepts(1.0, 2, 1, 1.0, 2, 1))
}

func TestAcceptsSourceSeedWinsTies(t *testing.T) {
	// A tree-attachment seed (PrevNode == NO_ID) beats any edge-derived
	// path of equal cost.
	require.False(t, Accepts(1.0, 4, 0, 1.0, rrg.NO_ID, rrg.NO_ID))
	require.True(t, Accepts(1.0, rrg.NO_ID, rrg.NO_ID, 1.0, 4, 0))
}
