package rrg

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonNode and jsonSwitch mirror the RRG view an upstream graph builder
// exports, field for field; this file is the narrow deserialization
// boundary cmd/router uses to turn an externally-produced RRG/netlist
// dump into the immutable Graph/Netlist types the router consumes. RRG
// construction itself is never performed here.
type jsonNode struct {
	ID        NodeID   `json:"id"`
	Type      NodeType `json:"type"`
	XLow      int      `json:"xlow"`
	YLow      int      `json:"ylow"`
	XHigh     int      `json:"xhigh"`
	YHigh     int      `json:"yhigh"`
	Layer     int      `json:"layer"`
	Capacity  int      `json:"capacity"`
	Ptc       int      `json:"ptc"`
	R         float64  `json:"r"`
	C         float64  `json:"c"`
	CostIndex int      `json:"cost_index"`
	Edges     []struct {
		To     NodeID   `json:"to"`
		Switch SwitchID `json:"switch"`
	} `json:"edges"`
}

type jsonSwitch struct {
	R            float64 `json:"r"`
	Tdel         float64 `json:"tdel"`
	Cinternal    float64 `json:"cinternal"`
	Buffered     bool    `json:"buffered"`
	Configurable bool    `json:"configurable"`
}

type jsonNonConfigSet struct {
	ID    int      `json:"id"`
	Nodes []NodeID `json:"nodes"`
}

type jsonNet struct {
	ID        NetID    `json:"id"`
	Source    NodeID   `json:"source"`
	Sinks     []NodeID `json:"sinks"`
	IsGlobal  bool     `json:"is_global"`
	IsIgnored bool     `json:"is_ignored"`
	IsClock   bool     `json:"is_clock"`
}

// Document is the top-level shape DecodeJSON expects: a dense node
// table, a switch table, optional non-configurable sets, and the
// netlist to route.
type Document struct {
	Nodes         []jsonNode         `json:"nodes"`
	Switches      []jsonSwitch       `json:"switches"`
	NonConfigSets []jsonNonConfigSet `json:"non_config_sets"`
	Nets          []jsonNet          `json:"nets"`
	Device        BoundingBox        `json:"device_bbox"`
}

// DecodeJSON reads a Document from r and builds the immutable Graph plus
// its Netlist. Nodes must be dense and in ID order (Document.Nodes[i].ID
// == i); a gap or reorder is reported as an error rather than silently
// misassigned, since a shifted node table would corrupt every downstream
// search.
func DecodeJSON(r io.Reader) (*Graph, *Netlist, BoundingBox, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, BoundingBox{}, fmt.Errorf("rrg: decoding document: %w", err)
	}

	nodes := make([]Node, len(doc.Nodes))
	for i, jn := range doc.Nodes {
		if int(jn.ID) != i {
			return nil, nil, BoundingBox{}, fmt.Errorf("rrg: node table not dense: index %d has id %d", i, jn.ID)
		}
		edges := make([]Edge, len(jn.Edges))
		for j, je := range jn.Edges {
			edges[j] = Edge{To: je.To, Switch: je.Switch}
		}
		nodes[i] = Node{
			ID:        jn.ID,
			Type:      jn.Type,
			BBox:      BoundingBox{XLow: jn.XLow, YLow: jn.YLow, XHigh: jn.XHigh, YHigh: jn.YHigh, LayerLow: jn.Layer, LayerHigh: jn.Layer},
			Capacity:  jn.Capacity,
			Ptc:       jn.Ptc,
			R:         jn.R,
			C:         jn.C,
			CostIndex: jn.CostIndex,
			Edges:     edges,
		}
	}

	switches := make([]Switch, len(doc.Switches))
	for i, js := range doc.Switches {
		switches[i] = Switch{R: js.R, Tdel: js.Tdel, Cinternal: js.Cinternal, Buffered: js.Buffered, Configurable: js.Configurable}
	}

	sets := make([]NonConfigSet, len(doc.NonConfigSets))
	for i, js := range doc.NonConfigSets {
		sets[i] = NonConfigSet{ID: js.ID, Nodes: js.Nodes}
	}

	g := NewGraph(nodes, switches, sets)

	nets := make([]Net, len(doc.Nets))
	for i, jn := range doc.Nets {
		nets[i] = Net{
			ID:        jn.ID,
			Source:    jn.Source,
			Sinks:     jn.Sinks,
			IsGlobal:  jn.IsGlobal,
			IsIgnored: jn.IsIgnored,
			IsClock:   jn.IsClock,
		}
	}

	return g, &Netlist{Nets: nets}, doc.Device, nil
}
