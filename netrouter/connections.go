package netrouter

import (
	"sync"

	"github.com/katalvlaran/routecore/rrg"
)

type connKey struct {
	net rrg.NetID
	pin int
}

// ConnectionsInfo tracks each connection's best-ever-observed ("lower
// bound") delay across negotiation iterations. The bound
// only ever decreases: once a connection is seen routed faster, a later,
// slower routing of the same connection is judged against that faster
// delay, not forgiven for having ever been slow.
type ConnectionsInfo struct {
	mu         sync.Mutex
	lowerBound map[connKey]float64
}

// NewConnectionsInfo returns an empty ConnectionsInfo.
func NewConnectionsInfo() *ConnectionsInfo {
	return &ConnectionsInfo{lowerBound: make(map[connKey]float64)}
}

// RecordDelay updates (net, pin)'s lower-bound delay if delay improves on
// whatever was previously recorded, or sets it outright on first
// observation.
func (ci *ConnectionsInfo) RecordDelay(net rrg.NetID, pin int, delay float64) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	k := connKey{net, pin}
	if cur, ok := ci.lowerBound[k]; !ok || delay < cur {
		ci.lowerBound[k] = delay
	}
}

// LowerBound returns (net, pin)'s recorded lower-bound delay, and
// whether one has ever been recorded.
func (ci *ConnectionsInfo) LowerBound(net rrg.NetID, pin int) (float64, bool) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	d, ok := ci.lowerBound[connKey{net, pin}]
	return d, ok
}

// ShouldForceReroute reports whether (net, pin) must be re-routed even
// though it may currently be legal:
// criticality must clear cfg.CriticalityTolerance*maxCriticality, and the
// measured delay must exceed (1+cfg.DelayTolerance) times the recorded
// lower bound. A connection with no recorded lower bound yet (never
// routed) is never forced.
func (ci *ConnectionsInfo) ShouldForceReroute(net rrg.NetID, pin int, criticality, maxCriticality, measuredDelay float64, cfg Config) bool {
	if criticality < cfg.CriticalityTolerance*maxCriticality {
		return false
	}
	lb, ok := ci.LowerBound(net, pin)
	if !ok {
		return false
	}
	return measuredDelay > (1+cfg.DelayTolerance)*lb
}
