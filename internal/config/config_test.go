package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkubaj/fastfetch/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fastfetch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
processing_timeout: 250ms
display_detect_name: false
allow_slow_operations: true
probes:
  x11: false
format: "{{ .WM.PrettyName }}"
wm_rules:
  - when: 'name == "river"'
    pretty: River
state_file: /tmp/ff-state.json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.ProcessingTimeout)
	assert.False(t, cfg.DisplayDetectName)
	assert.True(t, cfg.AllowSlowOperations)
	assert.True(t, cfg.Probes.Wayland, "unset keys keep their default")
	assert.False(t, cfg.Probes.X11)
	assert.Equal(t, "{{ .WM.PrettyName }}", cfg.Format)
	assert.Equal(t, "/tmp/ff-state.json", cfg.StateFile)

	rules, err := cfg.Rules()
	require.NoError(t, err)
	pretty, ok := rules.MatchWM("river")
	assert.True(t, ok)
	assert.Equal(t, "River", pretty)
}

func TestLoadConfig_NegativeTimeout(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "processing_timeout: -1s\n"))
	require.NoError(t, err)
	assert.Negative(t, int64(cfg.ProcessingTimeout))
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := map[string]string{
		"Invalid YAML":     "probes: [",
		"Invalid duration": "processing_timeout: soon\n",
		"Invalid rule":     "de_rules:\n  - when: 'name =='\n    pretty: X\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestDefaultPaths(t *testing.T) {
	env := core.MapEnv{"HOME": "/home/ada"}
	assert.Equal(t, "/home/ada/.config/fastfetch/fastfetch.yaml", DefaultPath(env))
	assert.Equal(t, "/home/ada/.local/state/fastfetch/state.json", DefaultStatePath(env))

	env = core.MapEnv{"HOME": "/home/ada", "XDG_CONFIG_HOME": "/cfg", "XDG_STATE_HOME": "/st"}
	assert.Equal(t, "/cfg/fastfetch/fastfetch.yaml", DefaultPath(env))
	assert.Equal(t, "/st/fastfetch/state.json", DefaultStatePath(env))
}
