package negotiate

import (
	"context"
	"fmt"

	"github.com/katalvlaran/routecore/cost"
	"github.com/katalvlaran/routecore/predictor"
	"github.com/katalvlaran/routecore/routerlog"
	"github.com/katalvlaran/routecore/routerstats"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// Result is what Run reports back to the caller.
type Result struct {
	Success     bool
	Iterations  int
	Overuse     routerstats.OveruseInfo
	Metrics     Metrics
	Snapshot    Snapshot
	Aborted     bool
	AbortReason string
}

// Run drives the negotiated-congestion outer loop to convergence, abort,
// or iteration exhaustion. g and table
// are the shared RRG and scratch table every net search reads/writes;
// router performs one iteration's actual net-by-net (or concurrent)
// routing; summary supplies the timing figures used to rank converged
// snapshots.
func Run(ctx context.Context, g *rrg.Graph, router Router, table *scratch.Table, summary Summary, cfg Config) (Result, error) {
	pred := predictor.New(cfg.PredictorMinHistory, cfg.PredictorHistoryFactor)

	presFac := cfg.FirstIterPresFac
	var best Snapshot
	var bestMetrics Metrics
	haveBest := false
	var firstConverge Metrics
	haveFirstConverge := false
	grower, canGrow := router.(BBoxGrower)
	tuner, canTune := router.(Tuner)

	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{Iterations: iter - 1, Success: haveBest, Snapshot: best, Metrics: bestMetrics}, err
		}

		presFac = nextPresFac(iter, presFac, cfg)
		conflicted := iter >= int(cfg.ConflictedFraction*float64(cfg.MaxIterations))

		if canTune {
			tuner.SetOveruseSlope(pred.EstimateOveruseSlope())
			tuner.SetConflictedMode(conflicted)
		}

		trees, err := router.RouteIteration(ctx, iter, presFac)
		if err != nil {
			return Result{Iterations: iter}, fmt.Errorf("negotiate: iteration %d: %w", iter, err)
		}

		overuse := routerstats.ComputeOveruse(g, table)
		if cfg.Stats != nil {
			cfg.Stats.PublishOveruse(overuse)
		}
		if cfg.Logger != nil {
			fields := routerlog.Fields(-1, iter, overuse.OverusedNodes)
			cfg.Logger.Infow("negotiation iteration complete",
				append(fields, "pres_fac", presFac, "total_overuse", overuse.TotalOveruse, "worst_overuse", overuse.WorstOveruse)...)
		}

		if iter > 1 {
			applyHistoricalUpdate(g, table, cfg.AccFac)
		}

		if canGrow {
			if cfg.DynamicBBoxUpdate {
				grower.GrowTouchingBBoxes(cfg.BBoxGrowThreshold)
			}
			if conflicted && iter%5 == 0 {
				grower.DoubleBBoxes()
			}
		}

		pred.AddIterationOveruse(iter, overuse.OverusedNodes)

		if cfg.OnIteration != nil {
			cfg.OnIteration(iter, trees)
		}

		if iter == 1 && cfg.InitWirelengthAbortThreshold > 0 && cfg.DeviceWirelength > 0 {
			if float64(wirelength(trees)) > cfg.InitWirelengthAbortThreshold*float64(cfg.DeviceWirelength) {
				return Result{Iterations: iter, Overuse: overuse, Aborted: true,
					AbortReason: "iteration 1 wirelength exceeds init_wirelength_abort_threshold"}, nil
			}
		}

		if overuse.Feasible() && cfg.Budgets.IsFinished() {
			m := summary.Metrics()
			m.Wirelength = wirelength(trees)
			presFac = cfg.FirstIterPresFac

			if !haveBest || better(m, bestMetrics) {
				bestMetrics = m
				best = snapshot(trees)
				haveBest = true
			}
			if haveFirstConverge && reconvergenceRatio(m, firstConverge) < cfg.ReconvergenceRatio {
				return Result{Success: true, Iterations: iter, Overuse: overuse, Metrics: bestMetrics, Snapshot: best}, nil
			}
			if !haveFirstConverge {
				firstConverge = m
				haveFirstConverge = true
			}
		}

		if pred.ShouldAbort(cfg.PredictorMode, cfg.MaxIterations, overuse.OverusedNodes) {
			return Result{Iterations: iter, Overuse: overuse, Aborted: true, AbortReason: "routing failure predictor",
				Success: haveBest, Metrics: bestMetrics, Snapshot: best}, nil
		}
	}

	if haveBest {
		return Result{Success: true, Iterations: cfg.MaxIterations, Metrics: bestMetrics, Snapshot: best}, nil
	}
	return Result{Iterations: cfg.MaxIterations}, ErrMaxIterationsReached
}

// nextPresFac advances the present-congestion factor one iteration
// along the schedule.
func nextPresFac(iter int, prev float64, cfg Config) float64 {
	switch {
	case iter == 1:
		return cfg.FirstIterPresFac
	case iter == 2:
		return cfg.InitialPresFac
	default:
		next := prev * cfg.PresFacMult
		if next > cfg.MaxPresFac {
			return cfg.MaxPresFac
		}
		return next
	}
}

// applyHistoricalUpdate bumps acc_cost for every overused node in
// table.
func applyHistoricalUpdate(g *rrg.Graph, table *scratch.Table, accFac float64) {
	for i := 0; i < g.NumNodes(); i++ {
		id := rrg.NodeID(i)
		cost.ApplyHistoricalUpdate(table.Entry(id), g.Node(id).Capacity, accFac)
	}
}
