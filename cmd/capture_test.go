package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		_ = captureCmd.Flags().Set("stderr", "false")
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCaptureCommand_PrintsOutputVerbatim(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "missing.yaml")

	out := runRoot(t, "capture", "--config", cfg, "--", "/bin/sh", "-c", `printf 'plasmashell 6.1.5\n'`)
	assert.Equal(t, "plasmashell 6.1.5\n", out)

	out = runRoot(t, "capture", "--config", cfg, "--", "/bin/sh", "-c", `printf 'no newline'`)
	assert.Equal(t, "no newline", out)
}

func TestCaptureCommand_Stderr(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "missing.yaml")

	out := runRoot(t, "capture", "--config", cfg, "--stderr", "--timeout", "2s", "--", "/bin/sh", "-c", `echo out; echo err >&2`)
	assert.Equal(t, "err\n", out)
}
