package routerconfig

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/katalvlaran/routecore/routerlog"
)

// RouterAlgorithm selects --router_algorithm.
type RouterAlgorithm string

const (
	AlgorithmSerial   RouterAlgorithm = "serial"
	AlgorithmParallel RouterAlgorithm = "parallel"
)

// HeapVariant selects --router_heap.
type HeapVariant string

const (
	HeapBinary HeapVariant = "binary"
	HeapBucket HeapVariant = "bucket"
)

// BBoxUpdateMode selects --route_bb_update.
type BBoxUpdateMode string

const (
	BBoxStatic  BBoxUpdateMode = "static"
	BBoxDynamic BBoxUpdateMode = "dynamic"
)

// PredictorMode mirrors predictor.Mode's three string settings for
// --routing_failure_predictor, kept as a distinct string type here so
// routerconfig has no import-time dependency on package predictor beyond
// this file.
type PredictorMode string

const (
	PredictorOff        PredictorMode = "off"
	PredictorSafe       PredictorMode = "safe"
	PredictorAggressive PredictorMode = "aggressive"
)

// BudgetsAlgorithm selects --routing_budgets_algorithm.
type BudgetsAlgorithm string

const (
	BudgetsDisable BudgetsAlgorithm = "disable"
	BudgetsYoyo    BudgetsAlgorithm = "yoyo"
)

// DebugConfig gathers the diagnostic gating flags.
type DebugConfig struct {
	Net                     int  `koanf:"net" yaml:"net"`
	SinkRR                  int  `koanf:"sink_rr" yaml:"sink_rr"`
	Iteration               int  `koanf:"iteration" yaml:"iteration"`
	SaveRoutingPerIteration bool `koanf:"save_routing_per_iteration" yaml:"save_routing_per_iteration"`
}

// Config is the router's full option surface, flattened into one
// struct. Every field has a loaded-from-YAML/env/flags value at the
// three layers routerconfig.Load and cmd/router's Kong struct share.
type Config struct {
	RouterAlgorithm RouterAlgorithm `koanf:"router_algorithm" yaml:"router_algorithm"`
	RouterHeap      HeapVariant     `koanf:"router_heap" yaml:"router_heap"`
	Workers         int             `koanf:"workers" yaml:"workers"`

	MaxRouterIterations int `koanf:"max_router_iterations" yaml:"max_router_iterations"`

	InitialPresFac   float64 `koanf:"initial_pres_fac" yaml:"initial_pres_fac"`
	FirstIterPresFac float64 `koanf:"first_iter_pres_fac" yaml:"first_iter_pres_fac"`
	PresFacMult      float64 `koanf:"pres_fac_mult" yaml:"pres_fac_mult"`
	AccFac           float64 `koanf:"acc_fac" yaml:"acc_fac"`

	AstarFac       float64 `koanf:"astar_fac" yaml:"astar_fac"`
	BendCost       float64 `koanf:"bend_cost" yaml:"bend_cost"`
	MaxCriticality float64 `koanf:"max_criticality" yaml:"max_criticality"`
	CriticalityExp float64 `koanf:"criticality_exp" yaml:"criticality_exp"`

	BBFactor      int            `koanf:"bb_factor" yaml:"bb_factor"`
	RouteBBUpdate BBoxUpdateMode `koanf:"route_bb_update" yaml:"route_bb_update"`

	HighFanoutThreshold int     `koanf:"high_fanout_threshold" yaml:"high_fanout_threshold"`
	HighFanoutMaxSlope  float64 `koanf:"high_fanout_max_slope" yaml:"high_fanout_max_slope"`

	RoutingFailurePredictor PredictorMode    `koanf:"routing_failure_predictor" yaml:"routing_failure_predictor"`
	RoutingBudgetsAlgorithm BudgetsAlgorithm `koanf:"routing_budgets_algorithm" yaml:"routing_budgets_algorithm"`

	Debug DebugConfig `koanf:"router_debug" yaml:"router_debug"`

	ConstraintsFile string `koanf:"constraints_file" yaml:"constraints_file"`
	TracebackFile   string `koanf:"traceback_file" yaml:"traceback_file"`

	Logger routerlog.Config `koanf:"logger" yaml:"logger"`
}

// Default returns the out-of-the-box settings (mirroring VPR's own
// defaults, the same values negotiate.NewConfig and netrouter.NewConfig
// fall back to).
func Default() Config {
	return Config{
		RouterAlgorithm:         AlgorithmSerial,
		RouterHeap:              HeapBinary,
		Workers:                 4,
		MaxRouterIterations:     50,
		InitialPresFac:          0.5,
		FirstIterPresFac:        0,
		PresFacMult:             1.3,
		AccFac:                  1.0,
		AstarFac:                1.2,
		BendCost:                0,
		MaxCriticality:          0.99,
		CriticalityExp:          1.0,
		BBFactor:                3,
		RouteBBUpdate:           BBoxStatic,
		HighFanoutThreshold:     64,
		HighFanoutMaxSlope:      0,
		RoutingFailurePredictor: PredictorSafe,
		RoutingBudgetsAlgorithm: BudgetsDisable,
		Debug:                   DebugConfig{Net: -1, SinkRR: -1},
		Logger:                  routerlog.DefaultConfig(),
	}
}

// Load builds a Config by layering environment variables (prefixed
// ROUTER_, with "__" as the nesting separator, e.g.
// ROUTER_LOGGER__LEVEL=debug) over a YAML file at path, over Default.
// An empty path skips the file layer entirely, so a caller that only
// wants defaults-plus-env can pass "".
func Load(path string) (Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("routerconfig: loading %s: %w", path, err)
		}
	}

	envProvider := env.Provider("ROUTER_", ".", func(s string) string {
		trimmed := strings.TrimPrefix(s, "ROUTER_")
		return strings.ReplaceAll(strings.ToLower(trimmed), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("routerconfig: loading environment overrides: %w", err)
	}

	// Unmarshal onto cfg (already holding Default's values) rather than a
	// fresh zero Config, so keys absent from both the file and the
	// environment keep their default rather than becoming zero-valued.
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("routerconfig: unmarshalling: %w", err)
	}
	return cfg, nil
}
