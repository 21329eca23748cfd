// Package routecore is the core of an FPGA detailed router: a
// timing-driven, congestion-negotiating maze router that embeds many
// independent priority-queue searches inside an outer Pathfinder-style
// negotiation loop.
//
// Given a routing-resource graph (package rrg) and a netlist of nets, the
// core finds, for every sink, a path through the graph such that no node
// is used beyond its capacity and timing-critical sinks obtain low-delay
// paths. The work is organized leaves-first:
//
//	rheap        — binary and bucket priority queues
//	scratch      — per-node routing scratch table (node_route_inf)
//	lookahead    — the external remaining-cost oracle's query interface
//	cost         — per-edge congestion and Elmore-delay cost evaluation
//	routetree    — a net's partial routing tree: splice, prune, freeze
//	connrouter   — single-connection A* search
//	netrouter    — per-net orchestration: setup, sink ordering, clock pre-route
//	negotiate    — the Pathfinder negotiated-congestion outer loop
//	parrouter    — the deterministic parallel connection router
//	predictor    — the routing-failure abort predictor
//	traceback    — the legacy flat traceback codec
//	constraints  — user routing constraints (ideal / routed / dedicated_network)
//	routerstats  — per-iteration and total router statistics
//	routerconfig — the CLI/file/env configuration surface
//	routerlog    — structured logging
//	rcv          — the hold-slack-repair (RCV) pass-through hook
//
// The binary that wires all of the above together lives in cmd/router.
//
// RRG construction, architecture/netlist parsing, placement, static
// timing analysis, and the graphical UI are out of scope: this module
// treats them as external collaborators consumed through narrow
// interfaces (package rrg's Graph/Netlist views, package netrouter's
// Timing interface, package lookahead's Oracle).
package routecore
