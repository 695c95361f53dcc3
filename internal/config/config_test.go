package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Positive(t, cfg.Loader.Workers)
	assert.Equal(t, 256, cfg.Loader.QueueSize)
	assert.Equal(t, Duration(time.Second), cfg.Loader.IdleTimeout)
	assert.Equal(t, Duration(30*time.Second), cfg.Loader.FetchTimeout)
	assert.True(t, cfg.Loader.ComputeMissingNormals)
	assert.False(t, cfg.Loader.ConvertToLeftHanded)
	assert.True(t, cfg.Loader.AutoStartAnimations)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "gltf.yaml", `
loader:
  workers: 3
  fetch_timeout: 5s
  convert_to_left_handed: true
  disabled_extensions:
    - KHR_materials_unlit
logging:
  level: debug
  log_file: /tmp/gltf.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Loader.Workers)
	assert.Equal(t, Duration(5*time.Second), cfg.Loader.FetchTimeout)
	assert.True(t, cfg.Loader.ConvertToLeftHanded)
	assert.Equal(t, []string{"KHR_materials_unlit"}, cfg.Loader.DisabledExtensions)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/gltf.log", cfg.Logging.LogFile)

	// untouched keys keep their defaults
	assert.Equal(t, 256, cfg.Loader.QueueSize)
	assert.True(t, cfg.Loader.ComputeMissingNormals)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "gltf.toml", `
[loader]
queue_size = 16
idle_timeout = "250ms"
auto_start_animations = false

[logging]
level = "warn"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Loader.QueueSize)
	assert.Equal(t, Duration(250*time.Millisecond), cfg.Loader.IdleTimeout)
	assert.False(t, cfg.Loader.AutoStartAnimations)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := Load(writeFile(t, "gltf.ini", "workers=1"))
		assert.ErrorContains(t, err, "unsupported config format")
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := Load(writeFile(t, "gltf.yaml", "loader:\n  fetch_timeout: soon\n"))
		assert.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Load(writeFile(t, "gltf.yaml", "loader:\n  workers: -1\n"))
		assert.ErrorContains(t, err, "loader.workers")
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := Load(writeFile(t, "gltf.toml", "[logging]\nlevel = \"loud\"\n"))
		assert.ErrorContains(t, err, "logging.level")
	})
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFindsWorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gltfinspect.yaml"), []byte("loader:\n  workers: 7\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Loader.Workers)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Loader.Workers = 2
			cfg.Loader.FetchTimeout = Duration(90 * time.Second)
			cfg.Loader.DisabledExtensions = []string{"KHR_materials_pbrSpecularGlossiness"}
			cfg.Logging.Level = "error"

			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, cfg.SaveTo(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}

	assert.Error(t, Default().SaveTo(filepath.Join(t.TempDir(), "out.json")))
}

func TestSaveUsesConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	if ConfigDir() != filepath.Join(xdg, appName) {
		t.Skip("platform does not use XDG_CONFIG_HOME")
	}

	require.NoError(t, Default().Save())
	_, err := os.Stat(filepath.Join(xdg, appName, "config.yaml"))
	assert.NoError(t, err)
}

func TestLoaderOptions(t *testing.T) {
	cfg := Default()
	cfg.Loader.Workers = 1
	cfg.Loader.DisabledExtensions = []string{loader.ExtensionUnlit}

	l := loader.NewFileLoader(cfg.LoaderOptions(zaptest.NewLogger(t))...)
	t.Cleanup(l.Dispose)

	reg := l.ExtensionRegistry()
	assert.False(t, reg.Supports(loader.ExtensionUnlit))
	assert.True(t, reg.Supports(loader.ExtensionSpecularGlossiness))
}
