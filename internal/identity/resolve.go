package identity

import (
	"context"
	"os"
	"strings"

	"github.com/pkubaj/fastfetch/internal/core"
)

// DefaultWSLgPath is the mount point whose presence marks a WSLg session.
const DefaultWSLgPath = "/mnt/wslg"

// desktopEnvVars are consulted in order for the session's desktop name.
var desktopEnvVars = []string{
	"XDG_CURRENT_DESKTOP",
	"XDG_SESSION_DESKTOP",
	"CURRENT_DESKTOP",
	"SESSION_DESKTOP",
	"DESKTOP_SESSION",
}

// ProcessScanner walks the process names of the current user's processes.
// Scan stops as soon as fn returns false.
type ProcessScanner interface {
	Scan(fn func(name string) bool) error
}

// DesktopDetails is what a version detector found for a desktop.
type DesktopDetails struct {
	Version string
	// WindowManager is a WM named by the desktop's own configuration
	// (KDEWM, LXQt session.conf). Empty when the desktop does not say.
	WindowManager string
}

// VersionDetector looks up version data of a classified desktop environment.
type VersionDetector interface {
	DetectDesktop(ctx context.Context, kind DesktopKind) DesktopDetails
}

// Resolver reconciles the scalar fields of a Record once all probes finished.
type Resolver struct {
	Env       core.Env
	Processes ProcessScanner  // optional
	Desktops  VersionDetector // optional
	Rules     *Rules          // optional
	WSLgPath  string
	Logger    core.Logger
}

type resolution struct {
	r           *Resolver
	ctx         context.Context
	wm          WindowManager
	de          DesktopEnvironment
	wmFromProbe bool
}

// Resolve fills the window manager, desktop environment and protocol of the
// record held by agg. Fields that are already set are kept, so resolving a
// resolved record is a no-op.
func (r *Resolver) Resolve(ctx context.Context, agg *Aggregator) {
	log := core.OrNop(r.Logger)
	env := r.Env
	if env == nil {
		env = core.OSEnv{}
	}

	rc := *r
	rc.Env = env
	snap := agg.Snapshot()
	s := &resolution{r: &rc, ctx: ctx, wm: snap.WM, de: snap.DE, wmFromProbe: snap.WM.ProcessName != ""}
	defer func() {
		agg.Update(func(rec *Record) {
			rec.WM = s.wm
			rec.DE = s.de
		})
	}()

	if s.wm.ProtocolName == "" {
		s.wm.ProtocolName = ProtocolFromEnv(env)
	}
	if strings.EqualFold(s.wm.ProtocolName, ProtocolTTY) {
		log.Debug("Non-graphical session, skipping WM/DE detection")
		return
	}

	name := DesktopNameFromEnv(env, rc.wslgPath())
	log.Debug("Desktop name from environment", "name", name)

	if s.wm.ProcessName != "" {
		if s.wm.PrettyName == "" {
			if pretty, ok := r.classifyWM(s.wm.ProcessName); ok {
				s.wm.PrettyName = pretty
			} else {
				s.wm.PrettyName = s.wm.ProcessName
			}
		}
	} else {
		s.applyWM(name)
	}

	if s.de.PrettyName == "" {
		s.applyDE(name)
	}

	if s.wm.PrettyName == "" || s.de.PrettyName == "" {
		s.scan()
	}

	s.disambiguate(name)
	log.Debug("Identity resolved", "wm", s.wm.PrettyName, "de", s.de.PrettyName, "protocol", s.wm.ProtocolName)
}

func (r *Resolver) wslgPath() string {
	if r.WSLgPath != "" {
		return r.WSLgPath
	}
	return DefaultWSLgPath
}

func (r *Resolver) classifyWM(name string) (string, bool) {
	if pretty, ok := r.Rules.MatchWM(name); ok {
		return pretty, true
	}
	return ClassifyWM(name)
}

func (r *Resolver) classifyDE(name string) (DesktopMatch, bool) {
	if pretty, ok := r.Rules.MatchDE(name); ok {
		return DesktopMatch{Kind: DesktopCustom, ProcessName: name, PrettyName: pretty}, true
	}
	return ClassifyDE(name, r.Env)
}

// applyWM sets the WM when name is a known window manager.
func (s *resolution) applyWM(name string) {
	if name == "" {
		return
	}
	if pretty, ok := s.r.classifyWM(name); ok {
		s.wm.PrettyName = pretty
		s.wm.ProcessName = name
	}
}

// applyDE sets the DE when name is a known desktop and runs its version detector.
func (s *resolution) applyDE(name string) {
	m, ok := s.r.classifyDE(name)
	if !ok {
		return
	}
	s.de.ProcessName = m.ProcessName
	s.de.PrettyName = m.PrettyName
	if s.r.Desktops == nil || m.Kind == DesktopCustom {
		return
	}
	details := s.r.Desktops.DetectDesktop(s.ctx, m.Kind)
	s.de.Version = details.Version
	s.applyBetterWM(details.WindowManager)
}

// applyBetterWM takes a WM named by the desktop itself. A WM reported by the
// display server connection is kept.
func (s *resolution) applyBetterWM(name string) {
	if name == "" || s.wmFromProbe {
		return
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	s.wm.ProcessName = name
	if pretty, ok := s.r.classifyWM(name); ok {
		s.wm.PrettyName = pretty
	} else {
		s.wm.PrettyName = name
	}
}

func (s *resolution) scan() {
	if s.r.Processes == nil {
		return
	}
	err := s.r.Processes.Scan(func(name string) bool {
		if s.de.PrettyName == "" {
			s.applyDE(name)
		}
		if s.wm.PrettyName == "" {
			s.applyWM(name)
		}
		return s.wm.PrettyName == "" || s.de.PrettyName == ""
	})
	if err != nil {
		core.OrNop(s.r.Logger).Debug("Process scan failed", "error", err)
	}
}

// disambiguate assigns the environment name to whichever side is still
// unset, unless it already names the other side.
func (s *resolution) disambiguate(name string) {
	wmSet, deSet := s.wm.PrettyName != "", s.de.PrettyName != ""
	switch {
	case (wmSet && deSet) || name == "":
		return
	case !wmSet && !deSet:
		s.wm.ProcessName = name
		s.wm.PrettyName = name
	case !wmSet && !strings.EqualFold(s.de.ProcessName, name) && !strings.EqualFold(s.de.PrettyName, name):
		s.wm.ProcessName = name
		s.wm.PrettyName = name
	case !deSet && !strings.EqualFold(s.wm.ProcessName, name) && !strings.EqualFold(s.wm.PrettyName, name):
		s.de.ProcessName = name
		s.de.PrettyName = name
	}
}

// ProtocolFromEnv derives the session protocol from XDG_SESSION_TYPE,
// DISPLAY and TERM. It returns "" when none of them says anything.
func ProtocolFromEnv(env core.Env) string {
	if t := core.Getenv(env, "XDG_SESSION_TYPE"); t != "" {
		switch strings.ToLower(t) {
		case "wayland":
			return ProtocolWayland
		case "x11":
			return ProtocolX11
		case "tty":
			return ProtocolTTY
		default:
			return t
		}
	}
	if core.Getenv(env, "DISPLAY") != "" {
		return ProtocolX11
	}
	if strings.EqualFold(core.Getenv(env, "TERM"), "linux") {
		return ProtocolTTY
	}
	return ""
}

// DesktopNameFromEnv returns the best guess of the desktop name, or "".
func DesktopNameFromEnv(env core.Env, wslgPath string) string {
	for _, key := range desktopEnvVars {
		if v := core.Getenv(env, key); v != "" {
			return v
		}
	}
	switch {
	case core.IsSet(env, "KDE_FULL_SESSION"), core.IsSet(env, "KDE_SESSION_UID"), core.IsSet(env, "KDE_SESSION_VERSION"):
		return "KDE"
	case core.IsSet(env, "GNOME_DESKTOP_SESSION_ID"):
		return "Gnome"
	case core.IsSet(env, "MATE_DESKTOP_SESSION_ID"):
		return "Mate"
	case core.IsSet(env, "TDE_FULL_SESSION"):
		return "Trinity"
	}
	if core.IsSet(env, "WAYLAND_DISPLAY") && wslgPath != "" {
		if fi, err := os.Stat(wslgPath); err == nil && fi.IsDir() {
			return "WSLg"
		}
	}
	return ""
}
