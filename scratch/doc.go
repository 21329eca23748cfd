// Package scratch holds the per-node routing scratch table
// (node_route_inf): the mutable state a search reads and
// writes on top of the immutable rrg.Graph.
//
// Two lifecycles are layered over the same table:
//
//   - path_cost / backward_cost / prev_edge / R_upstream are set during a
//     single connection search and reset in O(modified) via the "modified
//     list" pattern (collect every touched node, restore only those).
//   - occ / acc_cost / pres_cost persist across negotiation iterations
//     until explicitly updated by the outer loop.
package scratch
