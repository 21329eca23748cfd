package negotiate_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/routecore/negotiate"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// onePathRouter routes its single net over the same two nodes every
// iteration; with capacity available, the first iteration is already
// legal.
type onePathRouter struct {
	table *scratch.Table
}

func (r *onePathRouter) RouteIteration(ctx context.Context, iter int, presFac float64) (map[rrg.NetID]*routetree.Tree, error) {
	r.table.ResetAll()
	r.table.Entry(0).Occ = 1
	r.table.Entry(1).Occ = 1
	return map[rrg.NetID]*routetree.Tree{0: routetree.NewFromNode(0)}, nil
}

// Example drives the outer loop over a trivial always-legal router: it
// converges on the first iteration.
func Example() {
	g := rrg.NewGraph([]rrg.Node{{ID: 0, Capacity: 1}, {ID: 1, Capacity: 1}}, nil, nil)
	table := scratch.NewTable(g.NumNodes())
	router := &onePathRouter{table: table}

	cfg := negotiate.NewConfig(negotiate.WithMaxIterations(5))
	result, err := negotiate.Run(context.Background(), g, router, table, negotiate.ZeroSummary{}, cfg)

	fmt.Println(err == nil, result.Success)
	// Output: true true
}
