package netrouter

import (
	"math"
	"sort"

	"github.com/katalvlaran/routecore/rrg"
)

// Timing is the router's two-way seam to timing analysis: it pulls
// per-pin criticality and pushes back freshly routed per-sink delays.
// Static timing analysis itself is out of scope; callers supply
// whatever implementation wraps their STA engine.
type Timing interface {
	// Criticality returns net/pin's timing criticality in [0, 1].
	Criticality(net rrg.NetID, pin int) float64
	// SetDelay pushes the freshly routed delay for net/pin back to the
	// timing engine.
	SetDelay(net rrg.NetID, pin int, delay float64)
}

// ShapeCriticality clamps raw to [0, 1] and applies the configured
// exponent and ceiling: shaped = raw^exponent * maxCriticality.
func ShapeCriticality(raw, maxCriticality, exponent float64) float64 {
	if raw < 0 {
		raw = 0
	}
	if raw > 1 {
		raw = 1
	}
	return math.Pow(raw, exponent) * maxCriticality
}

// OrderSinksByCriticality returns pins sorted by descending shaped
// criticality, the order sinks are routed in. A nil timing orders arbitrarily (but
// deterministically, by pin index) since every connection is equally
// uncritical.
func OrderSinksByCriticality(net rrg.NetID, timing Timing, pins []int, cfg Config) []int {
	out := append([]int(nil), pins...)
	crit := func(pin int) float64 {
		if timing == nil {
			return 0
		}
		return ShapeCriticality(timing.Criticality(net, pin), cfg.MaxCriticality, cfg.CriticalityExp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := crit(out[i]), crit(out[j])
		if ci != cj {
			return ci > cj
		}
		return out[i] < out[j]
	})
	return out
}
