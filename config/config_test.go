package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avengerx/ilspy/pathsafe"
	"github.com/avengerx/ilspy/platform"
	"github.com/avengerx/ilspy/project"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ilspy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
output:
  dir: ./out
  max_parallelism: 4
  flat_namespaces: true
  root_namespace: Sample.App
  naming: windows
paths:
  long_paths: "off"
  max_segment_length: 100
log:
  level: debug
  format: json
`)

	cfg, err := Load(path, LoadOptions{NoEnv: true})
	require.NoError(t, err)

	assert.Equal(t, "./out", cfg.Output.Dir)
	assert.Equal(t, 4, cfg.Output.MaxParallelism)
	assert.True(t, cfg.Output.FlatNamespaces)
	assert.Equal(t, "Sample.App", cfg.Output.RootNamespace)
	assert.Equal(t, NamingWindows, cfg.Output.Naming)
	assert.Equal(t, LongPathsOff, cfg.Paths.LongPaths)
	assert.Equal(t, 100, cfg.Paths.MaxSegmentLength)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, LogFormatJSON, cfg.Log.Format)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), LoadOptions{NoEnv: true})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "output:\n  max_parallelism: 4\n")

	t.Setenv("ILSPY_MAX_PARALLELISM", "8")
	t.Setenv("ILSPY_NAMING", "unix")
	t.Setenv("ILSPY_FLAT_NAMESPACES", "true")

	cfg, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Output.MaxParallelism, "environment wins over the file")
	assert.Equal(t, NamingUnix, cfg.Output.Naming)
	assert.True(t, cfg.Output.FlatNamespaces)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ILSPY_ROOT_NAMESPACE=FromDotenv\n"), 0o644))
	t.Setenv("ILSPY_ROOT_NAMESPACE", "") // godotenv never overwrites, clear first
	os.Unsetenv("ILSPY_ROOT_NAMESPACE")

	cfg, err := Load(filepath.Join(dir, "absent.yaml"), LoadOptions{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "FromDotenv", cfg.Output.RootNamespace)
}

func TestLoadRejectsBadEnvValues(t *testing.T) {
	t.Setenv("ILSPY_MAX_PARALLELISM", "lots")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ILSPY_MAX_PARALLELISM")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Output.Naming = "vms"
	cfg.Paths.LongPaths = "sometimes"
	cfg.Paths.MaxPathLength = -1

	err := cfg.Validate()
	require.Error(t, err)
	// All problems are reported at once.
	assert.Contains(t, err.Error(), "output.naming")
	assert.Contains(t, err.Error(), "paths.long_paths")
	assert.Contains(t, err.Error(), "paths.max_path_length")
}

func TestPlatformSettings(t *testing.T) {
	t.Run("off forces the conservative profile", func(t *testing.T) {
		cfg := Default()
		cfg.Paths.LongPaths = LongPathsOff
		assert.Equal(t, platform.Conservative(), cfg.PlatformSettings())
	})

	t.Run("on assumes long paths", func(t *testing.T) {
		cfg := Default()
		cfg.Paths.LongPaths = LongPathsOn
		s := cfg.PlatformSettings()
		assert.True(t, s.LongPathsEnabled)
		assert.Equal(t, platform.WindowsLongMaxPath, s.MaxPathLength)
	})

	t.Run("explicit limits override either profile", func(t *testing.T) {
		cfg := Default()
		cfg.Paths.LongPaths = LongPathsOff
		cfg.Paths.MaxPathLength = 1000
		cfg.Paths.MaxSegmentLength = 64
		s := cfg.PlatformSettings()
		assert.Equal(t, 1000, s.MaxPathLength)
		assert.Equal(t, 64, s.MaxSegmentLength)
	})
}

func TestProjectOptions(t *testing.T) {
	cfg := Default()
	cfg.Output.MaxParallelism = 3
	cfg.Output.FlatNamespaces = true
	cfg.Output.RootNamespace = "N1"
	cfg.Output.Naming = NamingUnix
	cfg.Paths.LongPaths = LongPathsOff

	var o project.Options
	for _, opt := range cfg.ProjectOptions() {
		opt(&o)
	}

	assert.Equal(t, 3, o.MaxParallelism)
	assert.True(t, o.FlatNamespaces)
	assert.Equal(t, "N1", o.RootNamespace)
	assert.Equal(t, pathsafe.UnixNaming(), o.Naming)
	assert.Equal(t, platform.Conservative(), o.Settings)
	assert.NotNil(t, o.Logger)
}
