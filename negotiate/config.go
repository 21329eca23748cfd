package negotiate

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/routecore/predictor"
	"github.com/katalvlaran/routecore/rcv"
	"github.com/katalvlaran/routecore/routerstats"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
)

// Config bundles every knob of the outer loop, built with functional
// options.
type Config struct {
	// MaxIterations is the iteration ceiling (--max_router_iterations).
	MaxIterations int

	// FirstIterPresFac, InitialPresFac, PresFacMult and MaxPresFac
	// implement the present-factor schedule: iteration 1 uses FirstIterPresFac (0 ignores
	// congestion entirely), iteration 2 uses InitialPresFac, and every
	// iteration after that multiplies the previous value by PresFacMult,
	// clipped to MaxPresFac.
	FirstIterPresFac float64
	InitialPresFac   float64
	PresFacMult      float64
	MaxPresFac       float64

	// AccFac is acc_fac, the historical-cost multiplier applied to every
	// overused node after iteration 1.
	AccFac float64

	// ConflictedFraction is the fraction of MaxIterations after which the
	// loop enters "conflicted" mode: it stops rerouting solely to chase
	// delay and doubles every net's bounding box every 5th iteration.
	ConflictedFraction float64

	// DynamicBBoxUpdate enables per-iteration bounding-box growth
	// (--route_bb_update=dynamic); a net's box grows by one tile on any
	// side its tree currently touches within BBoxGrowThreshold tiles of
	// the edge.
	DynamicBBoxUpdate bool
	BBoxGrowThreshold int

	// ReconvergenceRatio gates the reconvergence exit: once
	// a second convergence is reached, the loop stops if the new sWNS's
	// improvement ratio over the first convergence's sWNS falls below
	// this threshold, whether or not the new solution is the best so far.
	ReconvergenceRatio float64

	// PredictorMode, PredictorMinHistory and PredictorHistoryFactor
	// configure the abort predictor (--routing_failure_predictor).
	PredictorMode          predictor.Mode
	PredictorMinHistory    int
	PredictorHistoryFactor float64

	// InitWirelengthAbortThreshold and DeviceWirelength implement the
	// early exit taken when iteration 1 already consumes more than that
	// fraction of the device's available wirelength;
	// InitWirelengthAbortThreshold <= 0 disables the check.
	InitWirelengthAbortThreshold float64
	DeviceWirelength             int64

	// Budgets is the RCV hold-slack-repair collaborator; a convergence
	// only counts once it reports finished.
	Budgets rcv.Budgets

	// Logger, if non-nil, receives one structured line per iteration
	// (iteration, present factor, overuse snapshot). Nil disables
	// logging entirely.
	Logger *zap.SugaredLogger
	// Stats, if non-nil, has PublishOveruse called on it once per
	// iteration so the Prometheus overuse gauges stay current.
	Stats *routerstats.Stats

	// OnIteration, if non-nil, is invoked after every iteration's routing
	// with that iteration's route trees (--save_routing_per_iteration);
	// the trees are live and must not be retained past the callback.
	OnIteration func(iter int, trees map[rrg.NetID]*routetree.Tree)
}

// Option customizes a Config.
type Option func(*Config)

// WithMaxIterations sets the iteration ceiling. Panics if n is not
// positive.
func WithMaxIterations(n int) Option {
	if n <= 0 {
		panic("negotiate: WithMaxIterations must be positive")
	}
	return func(c *Config) { c.MaxIterations = n }
}

// WithPresFacSchedule sets the present-factor schedule knobs.
func WithPresFacSchedule(firstIter, initial, mult, max float64) Option {
	return func(c *Config) {
		c.FirstIterPresFac = firstIter
		c.InitialPresFac = initial
		c.PresFacMult = mult
		c.MaxPresFac = max
	}
}

// WithAccFac sets the historical-cost multiplier.
func WithAccFac(f float64) Option {
	return func(c *Config) { c.AccFac = f }
}

// WithConflictedMode sets the iteration fraction at which conflicted mode
// begins. Panics if fraction is outside [0, 1].
func WithConflictedMode(fraction float64) Option {
	if fraction < 0 || fraction > 1 {
		panic("negotiate: WithConflictedMode fraction out of [0,1]")
	}
	return func(c *Config) { c.ConflictedFraction = fraction }
}

// WithDynamicBBox enables dynamic bounding-box growth with the given
// touch threshold.
func WithDynamicBBox(threshold int) Option {
	return func(c *Config) {
		c.DynamicBBoxUpdate = true
		c.BBoxGrowThreshold = threshold
	}
}

// WithReconvergenceRatio sets the sWNS improvement ratio threshold below
// which a second convergence ends the loop.
func WithReconvergenceRatio(ratio float64) Option {
	return func(c *Config) { c.ReconvergenceRatio = ratio }
}

// WithPredictor sets the abort predictor's mode and history window.
func WithPredictor(mode predictor.Mode, minHistory int, historyFactor float64) Option {
	return func(c *Config) {
		c.PredictorMode = mode
		c.PredictorMinHistory = minHistory
		c.PredictorHistoryFactor = historyFactor
	}
}

// WithWirelengthAbort enables the iteration-1 wirelength abort heuristic.
func WithWirelengthAbort(threshold float64, deviceWirelength int64) Option {
	return func(c *Config) {
		c.InitWirelengthAbortThreshold = threshold
		c.DeviceWirelength = deviceWirelength
	}
}

// WithBudgets attaches the RCV hold-slack-repair collaborator. Panics on
// nil; use rcv.Disabled{} to opt out explicitly.
func WithBudgets(b rcv.Budgets) Option {
	if b == nil {
		panic("negotiate: WithBudgets(nil)")
	}
	return func(c *Config) { c.Budgets = b }
}

// WithLogger attaches a logger that receives one line per iteration.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithStats attaches the stats collector whose overuse gauges get
// refreshed once per iteration.
func WithStats(s *routerstats.Stats) Option {
	return func(c *Config) { c.Stats = s }
}

// WithIterationCallback attaches a callback invoked after every
// iteration with that iteration's route trees.
func WithIterationCallback(fn func(iter int, trees map[rrg.NetID]*routetree.Tree)) Option {
	return func(c *Config) { c.OnIteration = fn }
}

// NewConfig builds a Config from defaults plus the given options. The
// defaults mirror VPR's own out-of-the-box router settings.
func NewConfig(opts ...Option) Config {
	c := Config{
		MaxIterations:          50,
		FirstIterPresFac:       0,
		InitialPresFac:         0.5,
		PresFacMult:            1.3,
		MaxPresFac:             1000,
		AccFac:                 1.0,
		ConflictedFraction:     0.8,
		ReconvergenceRatio:     0.15,
		PredictorMode:          predictor.ModeSafe,
		PredictorMinHistory:    10,
		PredictorHistoryFactor: 0.5,
		Budgets:                rcv.Disabled{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
