// Package connrouter implements the single-connection A* maze search:
// given a route tree, a target sink, and cost parameters, it finds a
// minimum-estimated-cost path from any live tree node to the sink and
// splices it in via package routetree.
//
// The main loop is a Dijkstra-shaped pop/expand cycle with two twists:
// stale heap entries are post-heap-pruned against the scratch table, and
// the heap key adds a lookahead estimate of the remaining cost to the
// target on top of the true cost accumulated so far.
package connrouter
