// Package rrg defines the routing-resource graph (RRG): the read-only,
// directed graph of wires, pins, sources and sinks that the router
// searches. Construction of the RRG (from an architecture file and a
// placed netlist) happens outside this module; rrg only describes the
// shape the router consumes.
//
// The graph is immutable once built: no method on Graph mutates node or
// edge data. Per-node usage counters that change during routing live in
// the sibling scratch package, not here.
package rrg
