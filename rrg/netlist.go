package rrg

// NetID is a stable integer identity for a net in the netlist.
type NetID int32

// Net is the router's view of one netlist net: a source plus one or more
// sinks, expressed purely in terms of RRG node ids. Parsing the netlist
// and placement are out of scope; this is the interface the
// router consumes.
type Net struct {
	ID       NetID
	Source   NodeID
	Sinks    []NodeID
	IsGlobal bool
	// IsIgnored marks a net that is never routed (e.g. an `ideal` user
	// route constraint); the router skips it entirely.
	IsIgnored bool
	IsClock   bool
}

// Fanout returns the number of sinks (pins) on the net.
func (n *Net) Fanout() int { return len(n.Sinks) }

// Netlist is the ordered collection of nets the router must route.
type Netlist struct {
	Nets []Net
}

func (nl *Netlist) Net(id NetID) *Net { return &nl.Nets[id] }
