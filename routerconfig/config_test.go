package routerconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesDocumentedSettings(t *testing.T) {
	cfg := Default()
	require.Equal(t, AlgorithmSerial, cfg.RouterAlgorithm)
	require.Equal(t, HeapBinary, cfg.RouterHeap)
	require.Equal(t, 50, cfg.MaxRouterIterations)
	require.Equal(t, BBoxStatic, cfg.RouteBBUpdate)
}

func TestLoadWithEmptyPathReturnsDefaultsPlusEnv(t *testing.T) {
	t.Setenv("ROUTER_MAX_ROUTER_ITERATIONS", "77")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 77, cfg.MaxRouterIterations)
	require.Equal(t, AlgorithmSerial, cfg.RouterAlgorithm, "unset keys keep Default's value")
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "router.yaml")
	require.NoError(t, os.WriteFile(path, []byte("router_algorithm: parallel\nbb_factor: 5\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, AlgorithmParallel, cfg.RouterAlgorithm)
	require.Equal(t, 5, cfg.BBFactor)
	require.Equal(t, 50, cfg.MaxRouterIterations, "fields absent from the file keep Default's value")
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
