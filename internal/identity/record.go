// Package identity holds the display-server identity of the running session
// and the policy that reconciles it from probes, environment and processes.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Canonical protocol names.
const (
	ProtocolWayland = "Wayland"
	ProtocolX11     = "X11"
	ProtocolTTY     = "TTY"
)

// ErrIncompleteDisplay is returned for a handshake that did not report a
// usable size. Callers drop such outputs without surfacing the error.
var ErrIncompleteDisplay = errors.New("display has no usable size")

// DisplayType classifies a physical output.
type DisplayType int

const (
	DisplayTypeUnknown DisplayType = iota
	DisplayTypeBuiltin
	DisplayTypeExternal
)

func (t DisplayType) String() string {
	switch t {
	case DisplayTypeBuiltin:
		return "builtin"
	case DisplayTypeExternal:
		return "external"
	default:
		return "unknown"
	}
}

func (t DisplayType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *DisplayType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "builtin":
		*t = DisplayTypeBuiltin
	case "external":
		*t = DisplayTypeExternal
	case "unknown", "":
		*t = DisplayTypeUnknown
	default:
		return fmt.Errorf("unknown display type %q", text)
	}
	return nil
}

// DisplayInfo is one physical output as seen by a protocol probe.
// Width and Height are post-rotation pixels.
type DisplayInfo struct {
	Width        int         `yaml:"width" json:"width"`
	Height       int         `yaml:"height" json:"height"`
	RefreshRate  float64     `yaml:"refresh_rate" json:"refresh_rate"`
	Scale        int         `yaml:"scale" json:"scale"`
	ScaledWidth  int         `yaml:"scaled_width" json:"scaled_width"`
	ScaledHeight int         `yaml:"scaled_height" json:"scaled_height"`
	Name         string      `yaml:"name,omitempty" json:"name,omitempty"`
	Type         DisplayType `yaml:"type" json:"type"`
}

// NewDisplayInfo validates the physical size and derives the scaled one.
// A scale below 1 is treated as 1.
func NewDisplayInfo(width, height int, refreshRate float64, scale int, name string, typ DisplayType) (DisplayInfo, error) {
	if width <= 0 || height <= 0 {
		return DisplayInfo{}, fmt.Errorf("%dx%d: %w", width, height, ErrIncompleteDisplay)
	}
	if scale < 1 {
		scale = 1
	}
	return DisplayInfo{
		Width:        width,
		Height:       height,
		RefreshRate:  refreshRate,
		Scale:        scale,
		ScaledWidth:  width / scale,
		ScaledHeight: height / scale,
		Name:         name,
		Type:         typ,
	}, nil
}

type WindowManager struct {
	ProcessName  string `yaml:"process_name,omitempty" json:"process_name,omitempty"`
	PrettyName   string `yaml:"pretty_name,omitempty" json:"pretty_name,omitempty"`
	ProtocolName string `yaml:"protocol,omitempty" json:"protocol,omitempty"`
}

type DesktopEnvironment struct {
	ProcessName string `yaml:"process_name,omitempty" json:"process_name,omitempty"`
	PrettyName  string `yaml:"pretty_name,omitempty" json:"pretty_name,omitempty"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`
}

// Record is the identity of a graphical session. Empty fields mean unknown.
type Record struct {
	WM       WindowManager      `yaml:"wm" json:"wm"`
	DE       DesktopEnvironment `yaml:"de" json:"de"`
	Displays []DisplayInfo      `yaml:"displays" json:"displays"`
}
