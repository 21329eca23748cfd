package routerstats

import (
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
)

// OveruseInfo summarizes legality for one negotiation iteration.
type OveruseInfo struct {
	TotalNodes    int
	OverusedNodes int
	TotalOveruse  int
	WorstOveruse  int
}

// ComputeOveruse scans table and reports overuse relative to g's per-node
// capacities. Feasible reports true iff OverusedNodes == 0.
func ComputeOveruse(g *rrg.Graph, table *scratch.Table) OveruseInfo {
	info := OveruseInfo{TotalNodes: g.NumNodes()}
	for i := 0; i < g.NumNodes(); i++ {
		id := rrg.NodeID(i)
		occ := table.Entry(id).Occ
		cap := g.Node(id).Capacity
		over := occ - cap
		if over <= 0 {
			continue
		}
		info.OverusedNodes++
		info.TotalOveruse += over
		if over > info.WorstOveruse {
			info.WorstOveruse = over
		}
	}
	return info
}

// Feasible reports whether the routing described by info has no overuse.
func (o OveruseInfo) Feasible() bool { return o.OverusedNodes == 0 }
