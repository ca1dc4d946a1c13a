package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "screenshots", cfg.Recorder.BaseDir)
	assert.True(t, cfg.Recorder.SavePlans)
	assert.True(t, cfg.Recorder.FullPage)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 60*time.Second, cfg.Browser.NavigationTimeout)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "agentlens.yaml")
	content := []byte(`
logger:
  level: debug
  format: json
recorder:
  base_dir: /tmp/run-artifacts
  save_plans: false
browser:
  headless: false
  navigation_timeout: 15s
`)
	require.NoError(t, os.WriteFile(cfgPath, content, 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "/tmp/run-artifacts", cfg.Recorder.BaseDir)
	assert.False(t, cfg.Recorder.SavePlans)
	// Unset keys keep their defaults.
	assert.True(t, cfg.Recorder.FullPage)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 15*time.Second, cfg.Browser.NavigationTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AGENTLENS_RECORDER_BASE_DIR", "/tmp/from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env", cfg.Recorder.BaseDir)
}

func TestLoadBadFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "agentlens.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(":\tnot yaml"), 0o644))

	_, err := Load(cfgPath)
	assert.Error(t, err)
}
