package netrouter

import "github.com/katalvlaran/routecore/rrg"

// NetBoundingBox returns the union of net's source and sink bounding
// boxes, padded by bbFactor tiles in every planar direction.
func NetBoundingBox(g *rrg.Graph, net *rrg.Net, bbFactor int) rrg.BoundingBox {
	box := g.Node(net.Source).BBox
	for _, s := range net.Sinks {
		box = box.Union(g.Node(s).BBox)
	}
	return rrg.BoundingBox{
		XLow:      box.XLow - bbFactor,
		YLow:      box.YLow - bbFactor,
		XHigh:     box.XHigh + bbFactor,
		YHigh:     box.YHigh + bbFactor,
		LayerLow:  box.LayerLow,
		LayerHigh: box.LayerHigh,
	}
}
