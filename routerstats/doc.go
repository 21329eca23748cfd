// Package routerstats holds the router's per-iteration and cumulative
// counters (heap pushes/pops, connections and nets routed, overuse) and
// mirrors them as Prometheus metrics instead of leaving counters purely
// in-process.
package routerstats
