package rcv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/routecore/rrg"
)

func TestDisabledAlwaysFinished(t *testing.T) {
	var b Budgets = Disabled{}
	require.True(t, b.IsFinished())
	b.SetTargetDelay(rrg.NetID(1), 2, 1.5e-9) // must not panic, records nothing
	require.True(t, b.IsFinished())
}
