package netrouter

import (
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// SetupNet prepares a net's tree for one negotiation iteration: decide
// whether to discard the previous iteration's tree or reuse it
// incrementally, and (on reuse) keep the scratch table's occupancy
// counts consistent across the rip-up/re-add.
//
// iteration is 1-indexed; prev is the tree from the end of the previous
// iteration, or nil on this net's very first routing. holdRepairDemandsRipup
// lets the RCV hold-slack-repair collaborator force a full rip-up this
// iteration regardless of fanout.
func SetupNet(g *rrg.Graph, table *scratch.Table, net *rrg.Net, prev *routetree.Tree, iteration int, cfg Config, timing Timing, connections *ConnectionsInfo, holdRepairDemandsRipup bool) *routetree.Tree {
	ripUp := iteration <= 1 || prev == nil ||
		net.Fanout() < cfg.IncrementalRerouteFanoutThreshold ||
		holdRepairDemandsRipup

	if ripUp {
		if prev != nil {
			adjustOcc(g, table, prev, -1)
		}
		return routetree.NewForNet(net.ID, net.Source, net.Fanout())
	}

	forced := buildForcedReroute(net, prev, timing, connections, cfg)

	clone := prev.Clone()
	adjustOcc(g, table, prev, -1)

	survived := clone.Prune(g, table, forced)
	if !survived {
		return routetree.NewForNet(net.ID, net.Source, net.Fanout())
	}

	adjustOcc(g, table, clone, +1)
	clone.ReloadTiming(g)
	return clone
}

// adjustOcc adds delta to the occupancy of every RRG node the tree
// currently occupies: subtract the old tree's congestion contribution
// before pruning, add the survivor's contribution back after.
func adjustOcc(g *rrg.Graph, table *scratch.Table, t *routetree.Tree, delta int) {
	for _, idx := range t.AllNodes(routetree.RootIndex) {
		node := t.Node(idx)
		table.Entry(node.RRNode).Occ += delta
	}
}

// buildForcedReroute evaluates every currently-reached sink of prev
// against ConnectionsInfo's lower-bound delays and returns the set that
// must be force-pruned even though they may be legal.
func buildForcedReroute(net *rrg.Net, prev *routetree.Tree, timing Timing, connections *ConnectionsInfo, cfg Config) map[int]bool {
	if prev == nil || timing == nil || connections == nil {
		return nil
	}
	forced := make(map[int]bool)
	for _, pin := range prev.GetReachedSinks() {
		leaf, ok := prev.FindBySinkIndex(pin)
		if !ok {
			continue
		}
		crit := ShapeCriticality(timing.Criticality(net.ID, pin), cfg.MaxCriticality, cfg.CriticalityExp)
		if connections.ShouldForceReroute(net.ID, pin, crit, cfg.MaxCriticality, leaf.Tdel, cfg) {
			forced[pin] = true
		}
	}
	return forced
}
