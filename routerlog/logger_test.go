package routerlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigBuildsLogger(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Infow("smoke test", Fields(1, 2, 3)...)
}

func TestNewFallsBackToInfoOnInvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "not-a-level"
	logger, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestFieldsShape(t *testing.T) {
	f := Fields(7, 3, 12)
	require.Equal(t, []any{"net_id", int32(7), "iteration", 3, "overused_nodes", 12}, f)
}
