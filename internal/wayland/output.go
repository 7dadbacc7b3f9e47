package wayland

import (
	"strings"

	"github.com/pkubaj/fastfetch/internal/identity"
)

// Highest wl_output version whose events are understood.
const maxOutputVersion = 4

// wl_output events
const (
	outputGeometry    = 0
	outputMode        = 1
	outputDone        = 2
	outputScale       = 3
	outputName        = 4
	outputDescription = 5
)

const outputRelease = 0 // since version 3

const modeCurrent = 0x1

// wl_output.transform values that rotate by a quarter turn.
const (
	transform90         = 1
	transform270        = 3
	transformFlipped90  = 5
	transformFlipped270 = 7
)

// OutputInfo is what one wl_output reported during its handshake.
type OutputInfo struct {
	Width       int32
	Height      int32
	RefreshMHz  int32
	Scale       int32
	Transform   int32
	Make        string
	Model       string
	Name        string
	Description string
}

func (o *OutputInfo) handle(opcode uint16, d *decoder) error {
	switch opcode {
	case outputGeometry:
		d.i32() // x
		d.i32() // y
		d.i32() // physical width, mm
		d.i32() // physical height, mm
		d.i32() // subpixel
		o.Make = d.str()
		o.Model = d.str()
		o.Transform = d.i32()
	case outputMode:
		flags := d.u32()
		w, h, refresh := d.i32(), d.i32(), d.i32()
		if flags&modeCurrent == 0 {
			return nil
		}
		o.Width, o.Height, o.RefreshMHz = w, h, refresh
	case outputScale:
		o.Scale = d.i32()
	case outputName:
		o.Name = d.str()
	case outputDescription:
		o.Description = d.str()
	case outputDone:
	}
	return nil
}

// rotated reports whether the transform turns the output by 90 or 270 degrees.
func (o OutputInfo) rotated() bool {
	switch o.Transform {
	case transform90, transform270, transformFlipped90, transformFlipped270:
		return true
	}
	return false
}

// DisplayName joins make and model with a dash, skipping "unknown" parts.
func (o OutputInfo) DisplayName() string {
	var parts []string
	if o.Make != "" && o.Make != "unknown" {
		parts = append(parts, o.Make)
	}
	if o.Model != "" && o.Model != "unknown" {
		parts = append(parts, o.Model)
	}
	return strings.Join(parts, "-")
}

// Display converts the handshake result. It fails with
// identity.ErrIncompleteDisplay when no current mode was reported.
func (o OutputInfo) Display(detectName bool) (identity.DisplayInfo, error) {
	w, h := int(o.Width), int(o.Height)
	if o.rotated() {
		w, h = h, w
	}
	name := ""
	if detectName {
		name = o.DisplayName()
	}
	return identity.NewDisplayInfo(w, h, float64(o.RefreshMHz)/1000, int(o.Scale), name, ClassifyOutput(o.Name))
}

// ClassifyOutput tells builtin panels from external connectors by name.
func ClassifyOutput(name string) identity.DisplayType {
	switch {
	case strings.HasPrefix(name, "eDP-"):
		return identity.DisplayTypeBuiltin
	case strings.HasPrefix(name, "HDMI-"), strings.HasPrefix(name, "DP-"):
		return identity.DisplayTypeExternal
	}
	return identity.DisplayTypeUnknown
}
