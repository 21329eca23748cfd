package netrouter

import "github.com/katalvlaran/routecore/rcv"

// Config bundles the per-net-router knobs (bb_factor,
// high_fanout_threshold, max_criticality, criticality_exp, plus the
// forced-reroute tolerances).
type Config struct {
	// IncrementalRerouteFanoutThreshold: nets with fanout at or above
	// this are reused (pruned) across iterations rather than ripped up;
	// nets below it are always ripped up fresh.
	IncrementalRerouteFanoutThreshold int
	// BBFactor pads a net's source/sink bounding box by this many tiles
	// in every direction before the first search of each sink.
	BBFactor int
	// HighFanoutThreshold gates the high-fanout spatial-seeding path; 0
	// disables it.
	HighFanoutThreshold int
	// HighFanoutCriticalityCutoff: a sink is only routed via the
	// high-fanout path if its shaped criticality is below this.
	HighFanoutCriticalityCutoff float64
	// HighFanoutMaxSlope gates the high-fanout path on the predictor's
	// overuse slope: the restricted seeding
	// is only used while that slope (change in overused nodes per
	// iteration) is at most this value. <= 0 disables the gate.
	HighFanoutMaxSlope float64
	MaxCriticality     float64
	CriticalityExp     float64
	// CriticalityTolerance and DelayTolerance gate forced reroute: a
	// connection is forced when its
	// criticality exceeds CriticalityTolerance*MaxCriticality and its
	// measured delay exceeds (1+DelayTolerance) times its recorded
	// lower-bound delay.
	CriticalityTolerance float64
	DelayTolerance       float64
	Budgets              rcv.Budgets
	// DebugNet, DebugSinkRR and DebugIteration gate the connection
	// router's debug mode: a search runs with Debug on when its net matches
	// DebugNet or its target matches DebugSinkRR, and — if DebugIteration
	// is positive — the iteration is at least DebugIteration. -1 (the
	// default) disables each id match.
	DebugNet       int
	DebugSinkRR    int
	DebugIteration int
}

// Option customizes a Config.
type Option func(*Config)

// WithIncrementalRerouteFanoutThreshold sets the rip-up/reuse fanout
// cutoff. Panics if n is negative.
func WithIncrementalRerouteFanoutThreshold(n int) Option {
	if n < 0 {
		panic("netrouter: WithIncrementalRerouteFanoutThreshold negative")
	}
	return func(c *Config) { c.IncrementalRerouteFanoutThreshold = n }
}

// WithBBFactor sets the bounding-box padding. Panics if f is negative.
func WithBBFactor(f int) Option {
	if f < 0 {
		panic("netrouter: WithBBFactor negative")
	}
	return func(c *Config) { c.BBFactor = f }
}

// WithHighFanout sets the high-fanout spatial-seeding threshold and its
// criticality cutoff. threshold <= 0 disables the path entirely.
func WithHighFanout(threshold int, criticalityCutoff float64) Option {
	return func(c *Config) {
		c.HighFanoutThreshold = threshold
		c.HighFanoutCriticalityCutoff = criticalityCutoff
	}
}

// WithHighFanoutMaxSlope sets the predictor-slope gate for the
// high-fanout path; <= 0 disables it.
func WithHighFanoutMaxSlope(slope float64) Option {
	return func(c *Config) { c.HighFanoutMaxSlope = slope }
}

// WithDebugGating sets the diagnostic gating ids; pass -1 for net or
// sinkRR to disable that match, 0 for iteration to debug every matching
// iteration.
func WithDebugGating(net, sinkRR, iteration int) Option {
	return func(c *Config) {
		c.DebugNet = net
		c.DebugSinkRR = sinkRR
		c.DebugIteration = iteration
	}
}

// WithCriticalityShaping sets max_criticality and criticality_exp.
// Panics if maxCriticality is outside [0, 1] or exponent is negative.
func WithCriticalityShaping(maxCriticality, exponent float64) Option {
	if maxCriticality < 0 || maxCriticality > 1 {
		panic("netrouter: WithCriticalityShaping maxCriticality out of [0,1]")
	}
	if exponent < 0 {
		panic("netrouter: WithCriticalityShaping negative exponent")
	}
	return func(c *Config) {
		c.MaxCriticality = maxCriticality
		c.CriticalityExp = exponent
	}
}

// WithForceRerouteTolerance sets the forced-reroute criticality and
// delay tolerances.
func WithForceRerouteTolerance(criticalityTolerance, delayTolerance float64) Option {
	return func(c *Config) {
		c.CriticalityTolerance = criticalityTolerance
		c.DelayTolerance = delayTolerance
	}
}

// WithBudgets attaches the RCV hold-slack-repair collaborator. Panics on
// nil; use rcv.Disabled{} to opt out explicitly.
func WithBudgets(b rcv.Budgets) Option {
	if b == nil {
		panic("netrouter: WithBudgets(nil)")
	}
	return func(c *Config) { c.Budgets = b }
}

// NewConfig builds a Config from defaults plus the given options.
func NewConfig(opts ...Option) Config {
	c := Config{
		MaxCriticality:              1.0,
		CriticalityExp:              1.0,
		CriticalityTolerance:        0.9,
		DelayTolerance:              0.1,
		HighFanoutCriticalityCutoff: 1.0,
		Budgets:                     rcv.Disabled{},
		DebugNet:                    -1,
		DebugSinkRR:                 -1,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
