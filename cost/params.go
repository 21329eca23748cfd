package cost

// Params bundles the per-search cost-function knobs. It is built with
// functional options: constructors validate and panic on meaningless
// input, algorithms themselves never panic.
type Params struct {
	// Criticality is this connection's timing criticality in [0, 1];
	// 0 weights purely on congestion, 1 purely on delay.
	Criticality float64
	// AstarFactor scales the lookahead heuristic (astar_fac); 0 degrades
	// the search to pure Dijkstra over backward cost.
	AstarFactor float64
	// BendCost is added when a path turns from a CHANX to a CHANY node
	// or vice versa.
	BendCost float64
	// PresentFactor is pres_fac for the current iteration.
	PresentFactor float64
	// ChokingDiscountShift divides the congestion term by 2^k for chosen
	// IPINs when flat routing is enabled; 0 disables the discount.
	ChokingDiscountShift uint
}

// Option customizes a Params value.
type Option func(*Params)

// WithCriticality sets the per-connection criticality. Panics if c is
// outside [0, 1]: an out-of-range criticality is always a caller bug.
func WithCriticality(c float64) Option {
	if c < 0 || c > 1 {
		panic("cost: WithCriticality out of [0,1]")
	}
	return func(p *Params) { p.Criticality = c }
}

// WithAstarFactor sets astar_fac.
func WithAstarFactor(f float64) Option {
	if f < 0 {
		panic("cost: WithAstarFactor negative")
	}
	return func(p *Params) { p.AstarFactor = f }
}

// WithBendCost sets the CHANX/CHANY direction-change penalty.
func WithBendCost(b float64) Option {
	return func(p *Params) { p.BendCost = b }
}

// WithPresentFactor sets pres_fac for the current iteration.
func WithPresentFactor(f float64) Option {
	if f < 0 {
		panic("cost: WithPresentFactor negative")
	}
	return func(p *Params) { p.PresentFactor = f }
}

// WithChokingDiscount sets the choking-spot discount shift.
func WithChokingDiscount(shift uint) Option {
	return func(p *Params) { p.ChokingDiscountShift = shift }
}

// NewParams builds a Params from defaults plus the given options, applied
// in order (later options override earlier ones).
func NewParams(opts ...Option) Params {
	p := Params{AstarFactor: 1.0, Criticality: 1.0}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
