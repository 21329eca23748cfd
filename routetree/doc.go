// Package routetree implements the per-net route tree: the partial
// routing of one net, rooted at its SOURCE, that the connection router
// extends one sink at a time and the negotiation loop prunes between
// iterations.
//
// Ownership is expressed as an arena: every tree node is a value in a
// single slice, and parent/child/sibling links are slice indices rather
// than pointers. This makes Clone (used by the incremental rip-up in net
// setup) a plain slice copy, and makes indices returned by
// UpdateFromHeap stable for the lifetime of the tree.
package routetree
