// Package parrouter implements the deterministic parallel
// connection router: a fixed worker pool shares one concurrent heap and
// one scratch table, each RR node's node_route_inf entry guarded by its
// own spin lock, and the serial router's exact tie-break rule (see
// rheap.Accepts) so the winning path for any connection is independent
// of how many workers raced to find it.
package parrouter
