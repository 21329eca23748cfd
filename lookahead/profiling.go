package lookahead

import (
	"sync"

	"github.com/katalvlaran/routecore/rrg"
)

// Profiling wraps an Oracle and records query counts: a thin decorator
// the router can drop in without the core search ever knowing it's
// being measured.
type Profiling struct {
	inner Oracle

	mu          sync.Mutex
	queries     int64
	sumEstimate float64
}

// NewProfiling wraps inner with query counting.
func NewProfiling(inner Oracle) *Profiling {
	return &Profiling{inner: inner}
}

func (p *Profiling) ExpectedCost(node, target rrg.NodeID, params CostParams, rUpstream float64) float64 {
	v := p.inner.ExpectedCost(node, target, params, rUpstream)
	p.mu.Lock()
	p.queries++
	p.sumEstimate += v
	p.mu.Unlock()
	return v
}

func (p *Profiling) ExpectedDelayAndCongestion(node, target rrg.NodeID, params CostParams, rUpstream float64) Estimate {
	e := p.inner.ExpectedDelayAndCongestion(node, target, params, rUpstream)
	p.mu.Lock()
	p.queries++
	p.sumEstimate += e.Delay
	p.mu.Unlock()
	return e
}

// Stats reports the number of oracle queries made and their mean
// estimate, for post-run diagnostics.
func (p *Profiling) Stats() (queries int64, meanEstimate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.queries == 0 {
		return 0, 0
	}
	return p.queries, p.sumEstimate / float64(p.queries)
}

var _ Oracle = (*Profiling)(nil)
