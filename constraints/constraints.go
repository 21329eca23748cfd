package constraints

import (
	"fmt"
	"regexp"
)

// RouteModel selects how a globally-constrained net is routed.
type RouteModel int

const (
	// Ideal marks the net as not routed at all: its connections are
	// assumed ideal for timing analysis purposes.
	Ideal RouteModel = iota
	// Routed sends the net through the general routing fabric as a
	// global net (cmd/router marks it IsGlobal) — the default when no
	// constraint applies.
	Routed
	// DedicatedNetwork routes the net through a named dedicated global
	// network via the two-stage clock-root flow.
	DedicatedNetwork
)

func (m RouteModel) String() string {
	switch m {
	case Ideal:
		return "ideal"
	case Routed:
		return "routed"
	case DedicatedNetwork:
		return "dedicated_network"
	default:
		return "unknown"
	}
}

// Scheme is the routing treatment assigned to a constrained net.
// NetworkName is only meaningful when RouteModel is DedicatedNetwork.
type Scheme struct {
	NetworkName string
	RouteModel  RouteModel
}

// DefaultScheme is what every net gets absent a matching constraint:
// routed through the general fabric, no dedicated network.
func DefaultScheme() Scheme {
	return Scheme{NetworkName: "INVALID", RouteModel: Routed}
}

type compiledConstraint struct {
	netName string
	scheme  Scheme
	re      *regexp.Regexp
}

// Constraints holds the full set of user-specified global route
// constraints, keyed by net name (possibly a regex pattern). Build it
// with sequential AddConstraint calls during setup; once built, every
// read method is safe for concurrent use. AddConstraint itself is not:
// construction is single-threaded.
type Constraints struct {
	exact    map[string]Scheme
	order    []string
	compiled []compiledConstraint
}

// New returns an empty Constraints set.
func New() *Constraints {
	return &Constraints{exact: make(map[string]Scheme)}
}

// AddConstraint registers a routing scheme for netName, which may be a
// literal net name or a regex pattern. Returns an error if netName is
// not a valid regex (every registered name is also compiled as a
// full-string pattern, since wildcard matching falls back to it).
func (c *Constraints) AddConstraint(netName string, scheme Scheme) error {
	re, err := regexp.Compile("^(?:" + netName + ")$")
	if err != nil {
		return fmt.Errorf("constraints: invalid pattern %q: %w", netName, err)
	}
	c.exact[netName] = scheme
	c.order = append(c.order, netName)
	c.compiled = append(c.compiled, compiledConstraint{netName: netName, scheme: scheme, re: re})
	return nil
}

// HasConstraint reports whether any registered constraint, exact or
// pattern, matches netName.
func (c *Constraints) HasConstraint(netName string) bool {
	if _, ok := c.exact[netName]; ok {
		return true
	}
	for _, cc := range c.compiled {
		if cc.re.MatchString(netName) {
			return true
		}
	}
	return false
}

// SchemeFor returns the routing scheme for netName: an exact match wins
// over a pattern match, and among patterns the first registered to
// match wins.
func (c *Constraints) SchemeFor(netName string) (Scheme, bool) {
	if s, ok := c.exact[netName]; ok {
		return s, true
	}
	for _, cc := range c.compiled {
		if cc.re.MatchString(netName) {
			return cc.scheme, true
		}
	}
	return Scheme{}, false
}

// RouteModelFor is a convenience wrapper returning just the route model,
// or Routed if no constraint matches.
func (c *Constraints) RouteModelFor(netName string) RouteModel {
	if s, ok := c.SchemeFor(netName); ok {
		return s.RouteModel
	}
	return Routed
}

// NetworkNameFor is a convenience wrapper returning the dedicated
// network name, or "INVALID" if no constraint matches or the matched
// scheme isn't DedicatedNetwork.
func (c *Constraints) NetworkNameFor(netName string) string {
	s, ok := c.SchemeFor(netName)
	if !ok || s.RouteModel != DedicatedNetwork {
		return "INVALID"
	}
	return s.NetworkName
}

// NumConstraints returns the number of registered constraints.
func (c *Constraints) NumConstraints() int { return len(c.order) }

// ConstraintByIndex returns the idx-th registered (net name, scheme)
// pair in registration order, used by constraint-file writers that
// iterate the whole set.
func (c *Constraints) ConstraintByIndex(idx int) (string, Scheme, error) {
	if idx < 0 || idx >= len(c.order) {
		return "", Scheme{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}
	name := c.order[idx]
	return name, c.exact[name], nil
}
