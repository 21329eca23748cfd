package lookahead

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/routecore/rrg"
)

func TestNoOpAlwaysZero(t *testing.T) {
	var o Oracle = NoOp{}
	require.Equal(t, 0.0, o.ExpectedCost(1, 2, CostParams{Criticality: 1, AstarFactor: 1}, 10))
	est := o.ExpectedDelayAndCongestion(1, 2, CostParams{}, 0)
	require.Equal(t, Estimate{}, est)
}

type constOracle struct{ v float64 }

func (c constOracle) ExpectedCost(rrg.NodeID, rrg.NodeID, CostParams, float64) float64 { return c.v }
func (c constOracle) ExpectedDelayAndCongestion(rrg.NodeID, rrg.NodeID, CostParams, float64) Estimate {
	return Estimate{Delay: c.v}
}

func TestProfilingCountsQueries(t *testing.T) {
	p := NewProfiling(constOracle{v: 2.5})
	for i := 0; i < 4; i++ {
		p.ExpectedCost(1, 2, CostParams{}, 0)
	}
	p.ExpectedDelayAndCongestion(1, 2, CostParams{}, 0)

	queries, mean := p.Stats()
	require.Equal(t, int64(5), queries)
	require.InDelta(t, 2.5, mean, 1e-9)
}
