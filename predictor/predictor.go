package predictor

import (
	"math"
)

// Safe and Aggressive abort factors:
// abort once the estimated convergence iteration exceeds Safe (or
// Aggressive) times the configured iteration ceiling.
const (
	SafeFactor       = 3.0
	AggressiveFactor = 1.5

	// MinOveruseThreshold avoids aborting when solutions are nearly legal
	// but converging slowly: the predictor never recommends abort below
	// this absolute overuse count even if the projected iteration is late.
	MinOveruseThreshold = 100
)

// linearModel is y = slope*x + yIntercept, fit over (x, log(y)) pairs.
type linearModel struct {
	slope, yIntercept float64
}

func (m linearModel) xForY(y float64) float64 { return (y - m.yIntercept) / m.slope }
func (m linearModel) yForX(x float64) float64 { return m.slope*x + m.yIntercept }

// Predictor tracks (iteration, overused-node-count) history and fits a
// log-linear model to estimate when overuse will reach zero.
type Predictor struct {
	minHistory     int
	historyFactor  float64
	iterations     []int
	overusedCounts []int
}

// New returns a Predictor. minHistory is the minimum number of recorded
// iterations before a fit is attempted; historyFactor is the trailing
// fraction of history used for each fit (e.g. 0.5 = most recent half).
func New(minHistory int, historyFactor float64) *Predictor {
	return &Predictor{minHistory: minHistory, historyFactor: historyFactor}
}

// AddIterationOveruse records one iteration's overused RR node count.
func (p *Predictor) AddIterationOveruse(iteration, overusedCount int) {
	p.iterations = append(p.iterations, iteration)
	p.overusedCounts = append(p.overusedCounts, overusedCount)
}

// fitModel fits a line to the log of the overuse counts over the trailing
// historyFactor fraction of recorded iterations, mirroring fit_model's
// log-linear-regression-over-a-negative-exponential rationale.
func fitModel(iterations, overuse []int, historyFactor float64) (linearModel, bool) {
	n := len(overuse)
	start := n - int(math.Round(historyFactor*float64(n)))
	if start < 0 {
		start = 0
	}

	var xs, ys []float64
	for i := start; i < n; i++ {
		if overuse[i] <= 0 {
			continue // log(0) is undefined; skip already-legal iterations
		}
		xs = append(xs, float64(iterations[i]))
		ys = append(ys, math.Log(float64(overuse[i])))
	}
	if len(xs) < 2 {
		return linearModel{}, false
	}
	return simpleLinearRegression(xs, ys), true
}

func simpleLinearRegression(xs, ys []float64) linearModel {
	var xSum, ySum float64
	for i := range xs {
		xSum += xs[i]
		ySum += ys[i]
	}
	n := float64(len(xs))
	xAvg, yAvg := xSum/n, ySum/n

	var cov, varX float64
	for i := range xs {
		dx := xs[i] - xAvg
		cov += dx * (ys[i] - yAvg)
		varX += dx * dx
	}
	beta := cov / varX
	alpha := yAvg - beta*xAvg
	return linearModel{slope: beta, yIntercept: alpha}
}

// EstimateSuccessIteration returns the model's estimated iteration at
// which overused-node count reaches zero, or NaN if there is not yet
// enough history. A negative estimate (as overuse trending up usually
// produces) is returned as +Inf rather than a negative iteration number.
func (p *Predictor) EstimateSuccessIteration() float64 {
	if len(p.iterations) <= p.minHistory {
		return math.NaN()
	}
	model, ok := fitModel(p.iterations, p.overusedCounts, p.historyFactor)
	if !ok {
		return math.NaN()
	}
	success := model.xForY(0)
	if success < 0 {
		return math.Inf(1)
	}
	return success
}

// EstimateOveruseSlope estimates the current rate of change of overuse
// (in RR nodes per iteration) using a fixed 5-iteration trailing window,
// more responsive than EstimateSuccessIteration's longer history.
func (p *Predictor) EstimateOveruseSlope() float64 {
	const fixedHistorySize = 5.0
	n := len(p.iterations)
	if float64(n) < fixedHistorySize {
		return math.NaN()
	}
	historyFactor := fixedHistorySize / float64(n)
	model, ok := fitModel(p.iterations, p.overusedCounts, historyFactor)
	if !ok {
		return math.NaN()
	}
	last := float64(p.iterations[n-1])
	curr := math.Exp(model.yForX(last))
	next := math.Exp(model.yForX(last + 1))
	return next - curr
}

// ShouldAbort reports whether the negotiation loop should give up,
// given the configured iteration ceiling, abort mode, and current
// overuse count.
func (p *Predictor) ShouldAbort(mode Mode, maxIterations int, currentOveruse int) bool {
	if mode == ModeOff || currentOveruse < MinOveruseThreshold {
		return false
	}
	estimate := p.EstimateSuccessIteration()
	if math.IsNaN(estimate) {
		return false
	}
	factor := SafeFactor
	if mode == ModeAggressive {
		factor = AggressiveFactor
	}
	return estimate > factor*float64(maxIterations)
}

// Mode selects the abort predictor's aggressiveness.
type Mode int

const (
	ModeOff Mode = iota
	ModeSafe
	ModeAggressive
)
