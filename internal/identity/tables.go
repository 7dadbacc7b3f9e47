package identity

import (
	"strings"

	"github.com/pkubaj/fastfetch/internal/core"
)

// DesktopKind identifies a desktop environment with a known version source.
type DesktopKind int

const (
	DesktopUnknown DesktopKind = iota
	DesktopKDE
	DesktopBudgie
	DesktopGNOME
	DesktopCinnamon
	DesktopMATE
	DesktopXfce
	DesktopLXQt
	DesktopCustom // matched by a user rule
)

func (k DesktopKind) String() string {
	switch k {
	case DesktopKDE:
		return "kde"
	case DesktopBudgie:
		return "budgie"
	case DesktopGNOME:
		return "gnome"
	case DesktopCinnamon:
		return "cinnamon"
	case DesktopMATE:
		return "mate"
	case DesktopXfce:
		return "xfce"
	case DesktopLXQt:
		return "lxqt"
	case DesktopCustom:
		return "custom"
	default:
		return "unknown"
	}
}

type wmEntry struct {
	names  []string
	pretty string
}

var wmTable = []wmEntry{
	{[]string{"kwin_wayland", "kwin_wayland_wrapper", "kwin_x11", "kwin_x11_wrapper", "kwin"}, "KWin"},
	{[]string{"gnome-shell", "gnome shell", "gnome-session-binary", "Mutter"}, "Mutter"},
	{[]string{"cinnamon-session", "Muffin", "Mutter (Muffin)"}, "Muffin"},
	{[]string{"sway"}, "Sway"},
	{[]string{"weston"}, "Weston"},
	{[]string{"wayfire"}, "Wayfire"},
	{[]string{"openbox"}, "Openbox"},
	{[]string{"xfwm4"}, "Xfwm4"},
	{[]string{"Marco", "Metacity (Marco)", "Metacity (Macro)"}, "Marco"},
	{[]string{"xmonad"}, "XMonad"},
	{[]string{"WSLg"}, "WSLg"},
	{[]string{"dwm"}, "dwm"},
	{[]string{"bspwm"}, "bspwm"},
	{[]string{"tinywm"}, "tinywm"},
	{[]string{"qtile"}, "Qtile"},
	{[]string{"herbstluftwm"}, "herbstluftwm"},
	{[]string{"icewm"}, "IceWM"},
}

// ClassifyWM maps a window manager process name to its pretty name.
// Matching is exact and case-insensitive.
func ClassifyWM(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, e := range wmTable {
		for _, n := range e.names {
			if strings.EqualFold(name, n) {
				return e.pretty, true
			}
		}
	}
	return "", false
}

// DesktopMatch is the result of classifying a desktop environment name.
type DesktopMatch struct {
	Kind        DesktopKind
	ProcessName string
	PrettyName  string
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ClassifyDE maps a name fragment to a desktop environment. Fragments are
// tried in a fixed order and matched as case-insensitive substrings.
func ClassifyDE(name string, env core.Env) (DesktopMatch, bool) {
	switch {
	case name == "":
		return DesktopMatch{}, false
	case containsFold(name, "plasma") || strings.EqualFold(name, "KDE"):
		return DesktopMatch{DesktopKDE, "plasmashell", "KDE Plasma"}, true
	case containsFold(name, "budgie"):
		return DesktopMatch{DesktopBudgie, "budgie-desktop", "Budgie"}, true
	case containsFold(name, "gnome") && !containsFold(name, "polkit-gnome") && !containsFold(name, "gnome-keyring"):
		pretty := "GNOME"
		if env != nil && core.Getenv(env, "GNOME_SHELL_SESSION_MODE") == "classic" {
			pretty = "GNOME Classic"
		}
		return DesktopMatch{DesktopGNOME, "gnome-shell", pretty}, true
	case containsFold(name, "cinnamon"):
		return DesktopMatch{DesktopCinnamon, "cinnamon", "Cinnamon"}, true
	case containsFold(name, "xfce"):
		return DesktopMatch{DesktopXfce, "xfce4-session", "Xfce4"}, true
	case containsFold(name, "mate"):
		return DesktopMatch{DesktopMATE, "mate-session", "MATE"}, true
	case containsFold(name, "lxqt"):
		return DesktopMatch{DesktopLXQt, "lxqt-session", "LXQt"}, true
	}
	return DesktopMatch{}, false
}
