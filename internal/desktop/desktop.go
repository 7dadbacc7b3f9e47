// Package desktop finds version information for desktop environments from
// the files they install and, when allowed, from their own binaries.
package desktop

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkubaj/fastfetch/internal/capture"
	"github.com/pkubaj/fastfetch/internal/core"
	"github.com/pkubaj/fastfetch/internal/identity"
)

// Detector implements identity.VersionDetector.
type Detector struct {
	Env core.Env
	// AllowSlow permits running desktop binaries when no data file has
	// the version.
	AllowSlow bool
	// Timeout for each command run, as understood by capture.Request.
	Timeout time.Duration
	Runner  capture.Runner // nil uses capture.CommandRunner
	Logger  core.Logger
}

var _ identity.VersionDetector = (*Detector)(nil)

func (d *Detector) env() core.Env {
	if d.Env == nil {
		return core.OSEnv{}
	}
	return d.Env
}

func (d *Detector) home() string {
	return core.Getenv(d.env(), "HOME")
}

// DataDirs returns XDG_DATA_HOME followed by XDG_DATA_DIRS, with defaults.
func (d *Detector) DataDirs() []string {
	env := d.env()
	var dirs []string
	if h := core.Getenv(env, "XDG_DATA_HOME"); h != "" {
		dirs = append(dirs, h)
	} else if home := d.home(); home != "" {
		dirs = append(dirs, filepath.Join(home, ".local", "share"))
	}
	sys := core.SplitList(core.Getenv(env, "XDG_DATA_DIRS"))
	if len(sys) == 0 {
		sys = []string{"/usr/local/share", "/usr/share"}
	}
	return append(dirs, sys...)
}

// ConfigDirs returns XDG_CONFIG_HOME followed by XDG_CONFIG_DIRS, with defaults.
func (d *Detector) ConfigDirs() []string {
	env := d.env()
	var dirs []string
	if h := core.Getenv(env, "XDG_CONFIG_HOME"); h != "" {
		dirs = append(dirs, h)
	} else if home := d.home(); home != "" {
		dirs = append(dirs, filepath.Join(home, ".config"))
	}
	sys := core.SplitList(core.Getenv(env, "XDG_CONFIG_DIRS"))
	if len(sys) == 0 {
		sys = []string{"/etc/xdg"}
	}
	return append(dirs, sys...)
}

func findIn(dirs []string, rel, key string) string {
	for _, dir := range dirs {
		if v, ok := ParsePropFile(filepath.Join(dir, rel), key); ok {
			return v
		}
	}
	return ""
}

func (d *Detector) dataValue(rel, key string) string {
	return findIn(d.DataDirs(), rel, key)
}

func (d *Detector) configValue(rel, key string) string {
	return findIn(d.ConfigDirs(), rel, key)
}

// output runs argv and returns its trimmed standard output, or "" on failure.
func (d *Detector) output(ctx context.Context, argv ...string) string {
	runner := d.Runner
	if runner == nil {
		runner = capture.CommandRunner
	}
	out, err := runner.Capture(ctx, capture.StdoutRequest(d.Timeout, argv...))
	if err != nil {
		core.OrNop(d.Logger).Debug("Version command failed", "command", argv[0], "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}

func lastWord(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		return s[i+1:]
	}
	return s
}

func afterFirstSpace(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return strings.TrimSpace(s)
}

// DetectDesktop returns the version of the desktop and the WM it names.
func (d *Detector) DetectDesktop(ctx context.Context, kind identity.DesktopKind) identity.DesktopDetails {
	var out identity.DesktopDetails
	switch kind {
	case identity.DesktopKDE:
		out = d.kde(ctx)
	case identity.DesktopGNOME:
		out.Version = d.gnome(ctx)
	case identity.DesktopCinnamon:
		out.Version = d.dataValue("applications/cinnamon.desktop", "X-GNOME-Bugzilla-Version =")
	case identity.DesktopMATE:
		out.Version = d.mate(ctx)
	case identity.DesktopXfce:
		out.Version = d.xfce(ctx)
	case identity.DesktopLXQt:
		out = d.lxqt(ctx)
	case identity.DesktopBudgie:
		out.Version = d.dataValue("budgie/budgie-version.xml", "<str>")
	}
	core.OrNop(d.Logger).Debug("Desktop details", "desktop", kind.String(), "version", out.Version, "wm", out.WindowManager)
	return out
}

var plasmaSessions = []string{
	"xsessions/plasmax11.desktop",
	"xsessions/plasma.desktop",
	"xsessions/plasma5.desktop",
	"wayland-sessions/plasma.desktop",
	"wayland-sessions/plasmawayland.desktop",
	"wayland-sessions/plasmawayland5.desktop",
}

func (d *Detector) kde(ctx context.Context) identity.DesktopDetails {
	var out identity.DesktopDetails
	for _, rel := range plasmaSessions {
		if out.Version = d.dataValue(rel, "X-KDE-PluginInfo-Version ="); out.Version != "" {
			break
		}
	}
	if out.Version == "" && d.AllowSlow {
		// plasmashell 5.27.5
		if v := d.output(ctx, "plasmashell", "--version"); v != "" {
			out.Version = lastWord(v)
		}
	}
	out.WindowManager = core.Getenv(d.env(), "KDEWM")
	return out
}

func (d *Detector) gnome(ctx context.Context) string {
	if v := d.dataValue("gnome-shell/org.gnome.Extensions", "version :"); v != "" {
		return v
	}
	// GNOME Shell 44.1
	if v := d.output(ctx, "gnome-shell", "--version"); v != "" {
		return lastWord(v)
	}
	return ""
}

func (d *Detector) mate(ctx context.Context) string {
	const file = "mate-about/mate-version.xml"
	v := Semver(
		d.dataValue(file, "<platform>"),
		d.dataValue(file, "<minor>"),
		d.dataValue(file, "<micro>"),
	)
	if v == "" && d.AllowSlow {
		// mate-session 1.26.0
		v = afterFirstSpace(d.output(ctx, "mate-session", "--version"))
	}
	return v
}

func (d *Detector) xfce(ctx context.Context) string {
	v := d.dataValue("gtk-doc/html/libxfce4ui/index.html", `<div><p class="releaseinfo">Version`)
	if v == "" && d.AllowSlow {
		// xfce4-session 4.18.1 (Xfce 4.18)
		out := d.output(ctx, "xfce4-session", "--version")
		if i := strings.IndexByte(out, '('); i >= 0 {
			out = out[:i]
		}
		v = afterFirstSpace(out)
	}
	return v
}

func (d *Detector) lxqt(ctx context.Context) identity.DesktopDetails {
	var out identity.DesktopDetails
	out.Version = d.dataValue("gconfig/lxqt.pc", "Version:")
	if out.Version == "" {
		out.Version = d.dataValue("cmake/lxqt/lxqt-config.cmake", "set ( LXQT_VERSION")
	}
	if out.Version == "" {
		out.Version = d.dataValue("cmake/lxqt/lxqt-config-version.cmake", "set ( PACKAGE_VERSION")
	}
	if out.Version == "" && d.AllowSlow {
		if v, ok := ParsePropLines(d.output(ctx, "lxqt-session", "-v"), "liblxqt"); ok {
			out.Version = v
		}
	}
	out.WindowManager = d.configValue("lxqt/session.conf", "window_manager =")
	return out
}
