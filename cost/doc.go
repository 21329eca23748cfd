// Package cost implements the per-edge cost evaluation the connection
// router calls on every expansion: congestion cost from
// occupancy/capacity/present/historical factors, Elmore delay from the
// switch and node R/C, and the combined A* total used as the heap key.
package cost
