package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkubaj/fastfetch/internal/adapters/ui"
	"github.com/pkubaj/fastfetch/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleIdentity() identity.Record {
	return identity.Record{
		WM: identity.WindowManager{ProcessName: "kwin_wayland", PrettyName: "KWin", ProtocolName: identity.ProtocolWayland},
		DE: identity.DesktopEnvironment{ProcessName: "plasmashell", PrettyName: "KDE Plasma", Version: "6.1.5"},
		Displays: []identity.DisplayInfo{
			{Width: 2560, Height: 1600, RefreshRate: 165, Scale: 2, ScaledWidth: 1280, ScaledHeight: 800, Name: "eDP-1", Type: identity.DisplayTypeBuiltin},
			{Width: 1920, Height: 1080, RefreshRate: 59.94, Scale: 1, ScaledWidth: 1920, ScaledHeight: 1080},
		},
	}
}

func TestIdentityRows(t *testing.T) {
	rows := identityRows(sampleIdentity())

	assert.Equal(t, [][]string{
		{"Field", "Value"},
		{"Protocol", "Wayland"},
		{"WM", "KWin"},
		{"DE", "KDE Plasma 6.1.5"},
		{"Display (eDP-1)", "2560x1600 (as 1280x800) @ 165 Hz [Built-in]"},
		{"Display 2", "1920x1080 @ 59.94 Hz"},
	}, rows)
}

func TestIdentityRows_SkipsUnknown(t *testing.T) {
	rows := identityRows(identity.Record{WM: identity.WindowManager{ProtocolName: identity.ProtocolTTY}})
	assert.Equal(t, [][]string{{"Field", "Value"}, {"Protocol", "TTY"}}, rows)
}

func TestRender(t *testing.T) {
	rec := sampleIdentity()

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(ui.NewPtermUI().WithWriter(&buf), rec, "yaml", ""))

		var back identity.Record
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, rec, back)
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(ui.NewPtermUI().WithWriter(&buf), rec, "json", ""))

		var back identity.Record
		require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, rec, back)
	})

	t.Run("Template wins over output", func(t *testing.T) {
		var buf bytes.Buffer
		format := `{{ .WM.PrettyName }} on {{ .WM.ProtocolName | lower }} ({{ len .Displays }} displays)`
		require.NoError(t, render(ui.NewPtermUI().WithWriter(&buf), rec, "json", format))
		assert.Equal(t, "KWin on wayland (2 displays)\n", buf.String())
	})

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(ui.NewPtermUI().WithWriter(&buf), rec, "table", ""))
		assert.Contains(t, buf.String(), "KDE Plasma 6.1.5")
		assert.Contains(t, buf.String(), "eDP-1")
	})

	t.Run("Unknown output", func(t *testing.T) {
		err := render(ui.NewPtermUI().WithWriter(&bytes.Buffer{}), rec, "xml", "")
		assert.ErrorContains(t, err, "unknown output format")
	})
}
