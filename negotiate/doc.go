// Package negotiate implements the negotiated-congestion outer loop:
// the Pathfinder-style iteration that
// repeatedly routes every net, raises present/historical penalties on
// overused RR nodes, grows bounding boxes, snapshots the best legal
// routing seen so far, and decides when to converge or give up.
//
// The loop itself is agnostic to how one iteration's nets get routed: it
// drives a Router, which SerialRouter satisfies for the single-threaded
// variant and package parrouter's Router satisfies
// for the concurrent one, the same way a max-flow
// algorithm iterates an augmenting-path search to a fixed point behind a
// small driver interface.
package negotiate
