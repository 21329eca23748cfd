// Command router is the entry point that wires the core packages into a
// runnable detailed router: it loads an RRG/netlist document and a
// configuration (flags over env over a YAML file over defaults, per
// package routerconfig), builds the cost/heap/lookahead collaborators,
// drives package negotiate's outer loop with either the serial
// (package netrouter via negotiate.SerialRouter) or parallel
// (package parrouter) connection router, and writes the winning
// routing out as a traceback file (package traceback).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/routecore/constraints"
	"github.com/katalvlaran/routecore/lookahead"
	"github.com/katalvlaran/routecore/negotiate"
	"github.com/katalvlaran/routecore/netrouter"
	"github.com/katalvlaran/routecore/parrouter"
	"github.com/katalvlaran/routecore/predictor"
	"github.com/katalvlaran/routecore/rcv"
	"github.com/katalvlaran/routecore/rheap"
	"github.com/katalvlaran/routecore/routerconfig"
	"github.com/katalvlaran/routecore/routerlog"
	"github.com/katalvlaran/routecore/routerstats"
	"github.com/katalvlaran/routecore/routetree"
	"github.com/katalvlaran/routecore/rrg"
	"github.com/katalvlaran/routecore/scratch"
	"github.com/katalvlaran/routecore/traceback"
)

// cli is the Kong command struct declaring the router's flag surface.
// Zero-valued fields fall back to whatever routerconfig.Load already
// resolved from file/env/defaults; only flags the user actually set on
// the command line override it (see applyFlags).
type cli struct {
	RRGFile         string `name:"rrg" help:"Path to the RRG/netlist JSON document." required:""`
	ConfigFile      string `name:"config" help:"Path to a YAML configuration file."`
	TracebackOut    string `name:"traceback_out" help:"Path to write the winning routing traceback."`
	ConstraintsFile string `name:"constraints_file" help:"Path to a user route constraints file."`

	RouterAlgorithm string `name:"router_algorithm" enum:"serial,parallel" default:"serial"`
	RouterHeap      string `name:"router_heap" enum:"binary,bucket" default:"binary"`
	Workers         int    `name:"workers" default:"0" help:"Worker count for --router_algorithm=parallel; 0 keeps the config/file value."`
	MaxIterations   int    `name:"max_router_iterations" default:"0" help:"0 keeps the config/file value."`
}

func main() {
	var c cli
	kong.Parse(&c, kong.Description("FPGA detailed router core"))

	if err := run(c); err != nil {
		fmt.Fprintln(os.Stderr, "router:", err)
		os.Exit(1)
	}
}

func run(c cli) error {
	cfg, err := routerconfig.Load(c.ConfigFile)
	if err != nil {
		return err
	}
	applyFlags(&cfg, c)

	logger, err := routerlog.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("router: building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	f, err := os.Open(c.RRGFile)
	if err != nil {
		return fmt.Errorf("router: opening rrg file: %w", err)
	}
	g, netlist, deviceBBox, err := rrg.DecodeJSON(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	userConstraints := constraints.New()
	if c.ConstraintsFile != "" {
		if userConstraints, err = loadConstraints(c.ConstraintsFile); err != nil {
			return err
		}
	}
	applyConstraints(netlist, userConstraints)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table := scratch.NewTable(g.NumNodes())
	stats := routerstats.New().RegisterMetrics(prometheus.DefaultRegisterer)
	oracle := lookahead.Oracle(lookahead.NoOp{})

	netrouterCfg := netrouter.NewConfig(
		netrouter.WithBBFactor(cfg.BBFactor),
		netrouter.WithHighFanout(cfg.HighFanoutThreshold, 1.0),
		netrouter.WithHighFanoutMaxSlope(cfg.HighFanoutMaxSlope),
		netrouter.WithCriticalityShaping(cfg.MaxCriticality, cfg.CriticalityExp),
		netrouter.WithBudgets(budgetsFor(cfg.RoutingBudgetsAlgorithm)),
		netrouter.WithDebugGating(cfg.Debug.Net, cfg.Debug.SinkRR, cfg.Debug.Iteration),
	)

	negotiateCfg := negotiate.NewConfig(
		negotiate.WithMaxIterations(cfg.MaxRouterIterations),
		negotiate.WithPresFacSchedule(cfg.FirstIterPresFac, cfg.InitialPresFac, cfg.PresFacMult, 1000),
		negotiate.WithAccFac(cfg.AccFac),
		negotiate.WithPredictor(predictorModeFor(cfg.RoutingFailurePredictor), 10, 0.5),
		negotiate.WithBudgets(budgetsFor(cfg.RoutingBudgetsAlgorithm)),
		negotiate.WithLogger(logger),
		negotiate.WithStats(stats),
	)
	if cfg.RouteBBUpdate == routerconfig.BBoxDynamic {
		negotiateCfg.DynamicBBoxUpdate = true
		negotiateCfg.BBoxGrowThreshold = 1
	}
	if cfg.Debug.SaveRoutingPerIteration && c.TracebackOut != "" {
		negotiateCfg.OnIteration = func(iter int, trees map[rrg.NetID]*routetree.Tree) {
			path := fmt.Sprintf("%s.iter%d", c.TracebackOut, iter)
			if err := writeTraceback(path, g, trees); err != nil {
				logger.Warnw("saving per-iteration routing failed", "path", path, "error", err)
			}
		}
	}

	var router negotiate.Router
	switch cfg.RouterAlgorithm {
	case routerconfig.AlgorithmParallel:
		lt := parrouter.NewLockedTable(table)
		router = parrouter.NewRouter(parrouter.Router{
			G:           g,
			Netlist:     netlist,
			LT:          lt,
			Oracle:      oracle,
			Connections: netrouter.NewConnectionsInfo(),
			Config:      netrouterCfg,
			NewHeap:     func() *parrouter.ConcurrentHeap { return parrouter.NewConcurrentHeap(newHeap(cfg.RouterHeap)) },
			Stats:       stats,
			Logger:      logger,
			DeviceBBox:  deviceBBox,
			BendCost:    cfg.BendCost,
			AstarFactor: cfg.AstarFac,
			Workers:     workerCount(cfg),
		})
	default:
		router = negotiate.NewSerialRouter(negotiate.SerialRouter{
			G:           g,
			Netlist:     netlist,
			Table:       table,
			Oracle:      oracle,
			Connections: netrouter.NewConnectionsInfo(),
			Config:      netrouterCfg,
			NewHeap:     func() rheap.Interface { return newHeap(cfg.RouterHeap) },
			Stats:       stats,
			Logger:      logger,
			DeviceBBox:  deviceBBox,
			BendCost:    cfg.BendCost,
			AstarFactor: cfg.AstarFac,
		})
	}

	result, err := negotiate.Run(ctx, g, router, table, negotiate.ZeroSummary{}, negotiateCfg)
	if err != nil {
		logger.Errorw("routing failed", "error", err)
		return err
	}

	logger.Infow("routing finished",
		"success", result.Success,
		"iterations", result.Iterations,
		"aborted", result.Aborted,
		"abort_reason", result.AbortReason,
		"overused_nodes", result.Overuse.OverusedNodes,
	)

	if !result.Success {
		return fmt.Errorf("router: failed after %d iterations: %s", result.Iterations, result.AbortReason)
	}

	if c.TracebackOut != "" {
		if err := writeTraceback(c.TracebackOut, g, result.Snapshot); err != nil {
			return err
		}
	}
	return nil
}

func newHeap(variant routerconfig.HeapVariant) rheap.Interface {
	if variant == routerconfig.HeapBucket {
		return rheap.NewBucketHeap(1)
	}
	return rheap.NewBinaryHeap()
}

func workerCount(cfg routerconfig.Config) int {
	if cfg.Workers <= 0 {
		return 1
	}
	return cfg.Workers
}

func predictorModeFor(m routerconfig.PredictorMode) predictor.Mode {
	switch m {
	case routerconfig.PredictorSafe:
		return predictor.ModeSafe
	case routerconfig.PredictorAggressive:
		return predictor.ModeAggressive
	default:
		return predictor.ModeOff
	}
}

// budgetsFor always returns rcv.Disabled: a real
// --routing_budgets_algorithm=yoyo implementation needs a static timing
// analysis engine, an external collaborator this entry point does not
// wire in.
func budgetsFor(routerconfig.BudgetsAlgorithm) rcv.Budgets {
	return rcv.Disabled{}
}

// applyFlags layers command-line flags over the file/env/defaults
// config already loaded by routerconfig.Load; a flag is only applied
// when the user gave it a non-zero value, so an unset flag never
// clobbers a file/env setting.
func applyFlags(cfg *routerconfig.Config, c cli) {
	if c.RouterAlgorithm != "" {
		cfg.RouterAlgorithm = routerconfig.RouterAlgorithm(c.RouterAlgorithm)
	}
	if c.RouterHeap != "" {
		cfg.RouterHeap = routerconfig.HeapVariant(c.RouterHeap)
	}
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.MaxIterations > 0 {
		cfg.MaxRouterIterations = c.MaxIterations
	}
}

// loadConstraints reads a minimal whitespace-separated constraints file:
// one "<net-name-pattern> <ideal|routed|dedicated_network> [network]"
// line per registered scheme. The richer on-disk format (matching VPR's
// own user_route_constraints.xml) is left to a caller-supplied parser;
// this subset is enough to round-trip every scheme the router acts on.
func loadConstraints(path string) (*constraints.Constraints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("router: reading constraints file: %w", err)
	}
	c := constraints.New()
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		var model constraints.RouteModel
		switch fields[1] {
		case "ideal":
			model = constraints.Ideal
		case "dedicated_network":
			model = constraints.DedicatedNetwork
		default:
			model = constraints.Routed
		}
		scheme := constraints.Scheme{RouteModel: model, NetworkName: "INVALID"}
		if model == constraints.DedicatedNetwork && len(fields) >= 3 {
			scheme.NetworkName = fields[2]
		}
		if err := c.AddConstraint(fields[0], scheme); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// applyConstraints marks nets ignored or global per the loaded user
// route constraints. Nets under a dedicated_network
// constraint are left to the caller's clock pre-route wiring
// (negotiate.SerialRouter.ClockRoots / parrouter.Router.ClockRoots),
// which this minimal entry point does not populate since that requires
// an architecture-supplied clock network name-to-node mapping from
// outside this module.
func applyConstraints(netlist *rrg.Netlist, c *constraints.Constraints) {
	if c == nil || c.NumConstraints() == 0 {
		return
	}
	for i := range netlist.Nets {
		net := &netlist.Nets[i]
		scheme, ok := c.SchemeFor(fmt.Sprintf("%d", net.ID))
		if !ok {
			continue // unconstrained nets keep their netlist flags
		}
		switch scheme.RouteModel {
		case constraints.Ideal:
			net.IsIgnored = true
		case constraints.Routed:
			net.IsGlobal = true
		}
	}
}

func writeTraceback(path string, g *rrg.Graph, trees map[rrg.NetID]*routetree.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("router: creating traceback file: %w", err)
	}
	defer f.Close()

	ids := make([]rrg.NetID, 0, len(trees))
	for id := range trees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, netID := range ids {
		elements := traceback.Encode(trees[netID], g)
		if _, err := fmt.Fprintf(f, "net %d\n", netID); err != nil {
			return err
		}
		for _, e := range elements {
			if _, err := fmt.Fprintf(f, "%d %d %d\n", e.Node, e.SwitchToNext, e.NetPinIndex); err != nil {
				return err
			}
		}
	}
	return nil
}
