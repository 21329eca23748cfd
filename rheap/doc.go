// Package rheap implements the two heap variants the connection router
// drives its A* search with: a binary heap with exact
// ordering, and an approximate bucket heap that trades order for
// near-linear amortized cost and randomizes tie-breaking on purpose.
//
// Both satisfy Interface. Unlike a plain container/heap-based shortest-
// path search, entries here carry the full search tuple needed to
// reconstruct a path on pop, and pop is expected to return stale entries
// the caller must post-heap-prune against the scratch table.
package rheap
