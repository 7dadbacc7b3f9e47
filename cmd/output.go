package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkubaj/fastfetch/internal/core"
	"github.com/pkubaj/fastfetch/internal/identity"
	"gopkg.in/yaml.v3"
)

func render(ui core.UI, rec identity.Record, output, format string) error {
	if format != "" {
		out, err := core.ExecuteTemplate(format, rec)
		if err != nil {
			return err
		}
		ui.Println(strings.TrimRight(out, "\n"))
		return nil
	}

	switch output {
	case "", "table":
		if rec.WM.ProtocolName == "" && rec.WM.PrettyName == "" && rec.DE.PrettyName == "" && len(rec.Displays) == 0 {
			ui.Info("Nothing detected")
			return nil
		}
		return ui.Table(identityRows(rec))
	case "yaml":
		out, err := marshalYAML(rec)
		if err != nil {
			return err
		}
		ui.Printf("%s", out)
	case "json":
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		ui.Println(string(out))
	default:
		return fmt.Errorf("unknown output format %q (want table, yaml or json)", output)
	}
	return nil
}

func marshalYAML(rec identity.Record) (string, error) {
	out, err := yaml.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("yaml encode: %w", err)
	}
	return string(out), nil
}

func displayLabel(i int, d identity.DisplayInfo) string {
	label := "Display " + strconv.Itoa(i+1)
	if d.Name != "" {
		label = "Display (" + d.Name + ")"
	}
	return label
}

// displayValue formats a display the way fastfetch prints it:
// 2560x1440 (as 1280x720) @ 60 Hz [Built-in]
func displayValue(d identity.DisplayInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dx%d", d.Width, d.Height)
	if d.Scale > 1 {
		fmt.Fprintf(&b, " (as %dx%d)", d.ScaledWidth, d.ScaledHeight)
	}
	if d.RefreshRate > 0 {
		fmt.Fprintf(&b, " @ %s Hz", strconv.FormatFloat(d.RefreshRate, 'f', -1, 64))
	}
	switch d.Type {
	case identity.DisplayTypeBuiltin:
		b.WriteString(" [Built-in]")
	case identity.DisplayTypeExternal:
		b.WriteString(" [External]")
	}
	return b.String()
}
