// Package netrouter drives one net through one negotiation iteration:
// tree setup (rip-up or incremental reuse), criticality-ordered per-sink
// routing via package connrouter, and the two-stage clock pre-route for
// globally clocked nets.
//
// Forced-reroute bookkeeping (the per-connection "lower-bound delay"
// that only ever improves) lives in
// ConnectionsInfo. Config follows the functional-options convention used
// throughout this module: constructors validate and panic on meaningless
// input, RouteNet itself never panics.
package netrouter
