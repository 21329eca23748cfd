package routerlog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig configures log-file rotation, used only when Config.Mode is
// "file".
type FileConfig struct {
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Config bundles the knobs routerconfig loads from the `logger` section
// of the YAML config.
type Config struct {
	Level    string
	Encoding string // "json" or "console"
	Mode     string // "stdout" or "file"
	File     FileConfig
}

// DefaultConfig returns a sensible stdout/console logger at info level.
func DefaultConfig() Config {
	return Config{Level: "info", Encoding: "console", Mode: "stdout"}
}

// New builds a *zap.SugaredLogger from cfg. An invalid Level falls back
// to info rather than failing the whole run.
func New(cfg Config) (*zap.SugaredLogger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	var encoder zapcore.Encoder
	if cfg.Encoding == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	var ws zapcore.WriteSyncer
	switch cfg.Mode {
	case "file":
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSize,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAge,
			Compress:   cfg.File.Compress,
		})
	default:
		ws = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, ws, level)
	return zap.New(core, zap.AddCaller()).Sugar(), nil
}

// Fields is a small helper building the {net_id, iteration,
// overused_nodes} structured fields every router log line carries.
func Fields(net int32, iteration int, overusedNodes int) []any {
	return []any{"net_id", net, "iteration", iteration, "overused_nodes", overusedNodes}
}
