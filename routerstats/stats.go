package routerstats

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/routecore/rrg"
)

// Stats accumulates router activity for one negotiation run. Every counter is an
// atomic.Int64 so the parallel connection router's workers (package
// parrouter) can update the same Stats from multiple goroutines without a
// shared lock on the hot path.
type Stats struct {
	// heapPushes/heapPops are indexed [nodeType][locality], locality 0 =
	// intra-cluster, 1 = inter-cluster.
	heapPushes [numNodeTypes][2]atomic.Int64
	heapPops   [numNodeTypes][2]atomic.Int64

	routeTreePushes   atomic.Int64
	connectionsRouted atomic.Int64
	netsRouted        atomic.Int64

	metrics *promMetrics // nil if not registered with Prometheus
}

const numNodeTypes = 6 // rrg.SOURCE..rrg.CHANY

func localityIndex(interCluster bool) int {
	if interCluster {
		return 1
	}
	return 0
}

// New returns an empty Stats, not wired to Prometheus.
func New() *Stats { return &Stats{} }

// RecordHeapPush increments the push counter for nodeType/locality.
func (s *Stats) RecordHeapPush(nodeType rrg.NodeType, interCluster bool) {
	l := localityIndex(interCluster)
	s.heapPushes[nodeType][l].Add(1)
	if s.metrics != nil {
		s.metrics.heapPushes.WithLabelValues(nodeType.String(), localityLabel(interCluster)).Inc()
	}
}

// RecordHeapPop increments the pop counter for nodeType/locality.
func (s *Stats) RecordHeapPop(nodeType rrg.NodeType, interCluster bool) {
	l := localityIndex(interCluster)
	s.heapPops[nodeType][l].Add(1)
	if s.metrics != nil {
		s.metrics.heapPops.WithLabelValues(nodeType.String(), localityLabel(interCluster)).Inc()
	}
}

// RecordRouteTreePush increments the route-tree splice counter.
func (s *Stats) RecordRouteTreePush() {
	s.routeTreePushes.Add(1)
	if s.metrics != nil {
		s.metrics.routeTreePushes.Inc()
	}
}

// RecordConnectionRouted increments the connections-routed counter.
func (s *Stats) RecordConnectionRouted() {
	s.connectionsRouted.Add(1)
	if s.metrics != nil {
		s.metrics.connectionsRouted.Inc()
	}
}

// RecordNetRouted increments the nets-routed counter.
func (s *Stats) RecordNetRouted() {
	s.netsRouted.Add(1)
	if s.metrics != nil {
		s.metrics.netsRouted.Inc()
	}
}

// HeapPushes returns the current push count for nodeType/locality.
func (s *Stats) HeapPushes(nodeType rrg.NodeType, interCluster bool) int64 {
	return s.heapPushes[nodeType][localityIndex(interCluster)].Load()
}

// HeapPops returns the current pop count for nodeType/locality.
func (s *Stats) HeapPops(nodeType rrg.NodeType, interCluster bool) int64 {
	return s.heapPops[nodeType][localityIndex(interCluster)].Load()
}

// RouteTreePushes returns the cumulative route-tree splice count.
func (s *Stats) RouteTreePushes() int64 { return s.routeTreePushes.Load() }

// ConnectionsRouted returns the cumulative successful-connection count.
func (s *Stats) ConnectionsRouted() int64 { return s.connectionsRouted.Load() }

// NetsRouted returns the cumulative successfully-routed net count.
func (s *Stats) NetsRouted() int64 { return s.netsRouted.Load() }

func localityLabel(interCluster bool) string {
	if interCluster {
		return "inter"
	}
	return "intra"
}

// promMetrics bundles the Prometheus collectors RegisterMetrics
// creates, one counter or gauge per router activity.
type promMetrics struct {
	heapPushes        *prometheus.CounterVec
	heapPops          *prometheus.CounterVec
	routeTreePushes   prometheus.Counter
	connectionsRouted prometheus.Counter
	netsRouted        prometheus.Counter
	overusedNodes     prometheus.Gauge
	totalOveruse      prometheus.Gauge
	worstOveruse      prometheus.Gauge
}

// RegisterMetrics creates and registers this Stats' Prometheus collectors
// with reg, and returns the Stats for chaining. Safe to call at most once
// per Stats; calling it a second time panics, matching
// prometheus.Registerer.MustRegister's own behavior on duplicate
// registration.
func (s *Stats) RegisterMetrics(reg prometheus.Registerer) *Stats {
	m := &promMetrics{
		heapPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vpr_route_heap_pushes_total",
			Help: "Total heap pushes during connection search, by RR node type and locality.",
		}, []string{"node_type", "locality"}),
		heapPops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vpr_route_heap_pops_total",
			Help: "Total heap pops during connection search, by RR node type and locality.",
		}, []string{"node_type", "locality"}),
		routeTreePushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vpr_route_tree_pushes_total",
			Help: "Total route-tree splices (update_from_heap calls).",
		}),
		connectionsRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vpr_route_connections_routed_total",
			Help: "Total connections successfully routed.",
		}),
		netsRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vpr_route_nets_routed_total",
			Help: "Total nets successfully routed.",
		}),
		overusedNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vpr_route_overused_nodes",
			Help: "Current count of RR nodes with occupancy above capacity.",
		}),
		totalOveruse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vpr_route_total_overuse",
			Help: "Sum of (occ - capacity) over every overused RR node.",
		}),
		worstOveruse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vpr_route_worst_overuse",
			Help: "Largest single-node (occ - capacity) currently observed.",
		}),
	}
	reg.MustRegister(m.heapPushes, m.heapPops, m.routeTreePushes,
		m.connectionsRouted, m.netsRouted, m.overusedNodes, m.totalOveruse, m.worstOveruse)
	s.metrics = m
	return s
}

// PublishOveruse updates the overuse gauges from a freshly computed
// OveruseInfo; a no-op if RegisterMetrics was never called.
func (s *Stats) PublishOveruse(o OveruseInfo) {
	if s.metrics == nil {
		return
	}
	s.metrics.overusedNodes.Set(float64(o.OverusedNodes))
	s.metrics.totalOveruse.Set(float64(o.TotalOveruse))
	s.metrics.worstOveruse.Set(float64(o.WorstOveruse))
}
