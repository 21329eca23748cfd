package routetree

import (
	"math"

	"github.com/katalvlaran/routecore/rrg"
)

// SpatialLookup is a 2-D grid of bins, each holding the tree node indices
// physically located in its cell, used to seed a high-fanout connection's
// search from only the nearby part of an existing tree instead of the
// whole thing.
//
// Bin size is chosen so that bin_area ≈ 4·bbox_area/fanout; this keeps
// the expected bin occupancy roughly constant regardless of net size, so
// the cell array can be sized up front rather than grown on demand.
type SpatialLookup struct {
	xLow, yLow int
	binW, binH int
	cols, rows int
	bins       [][]NodeIndex
}

// BuildSpatialLookup indexes every live node of t by bin.
func BuildSpatialLookup(g *rrg.Graph, t *Tree, fanout int) *SpatialLookup {
	box := t.CurrentBoundingBox(g)
	bboxArea := box.Area()
	if fanout < 1 {
		fanout = 1
	}
	binArea := float64(4*bboxArea) / float64(fanout)
	if binArea < 1 {
		binArea = 1
	}
	side := int(math.Max(1, math.Round(math.Sqrt(binArea))))

	width := box.XHigh - box.XLow + 1
	height := box.YHigh - box.YLow + 1
	cols := (width + side - 1) / side
	rows := (height + side - 1) / side
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	s := &SpatialLookup{
		xLow: box.XLow, yLow: box.YLow,
		binW: side, binH: side,
		cols: cols, rows: rows,
		bins: make([][]NodeIndex, cols*rows),
	}

	for i := range t.nodes {
		if !t.nodes[i].alive {
			continue
		}
		nb := g.Node(t.nodes[i].rrNode).BBox
		bi := s.binIndex(nb.XLow, nb.YLow)
		s.bins[bi] = append(s.bins[bi], NodeIndex(i))
	}
	return s
}

func (s *SpatialLookup) binIndex(x, y int) int {
	cx := clampInt((x-s.xLow)/s.binW, 0, s.cols-1)
	cy := clampInt((y-s.yLow)/s.binH, 0, s.rows-1)
	return cy*s.cols + cx
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Near returns every tree node index whose bin is within radius bins of
// (x, y)'s bin, inclusive — the ±3-bin window pre-search seeding uses
// for high-fanout nets.
func (s *SpatialLookup) Near(x, y, radius int) []NodeIndex {
	cx := clampInt((x-s.xLow)/s.binW, 0, s.cols-1)
	cy := clampInt((y-s.yLow)/s.binH, 0, s.rows-1)

	var out []NodeIndex
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			bx, by := cx+dx, cy+dy
			if bx < 0 || bx >= s.cols || by < 0 || by >= s.rows {
				continue
			}
			out = append(out, s.bins[by*s.cols+bx]...)
		}
	}
	return out
}
