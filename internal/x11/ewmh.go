package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkubaj/fastfetch/internal/core"
	"github.com/pkubaj/fastfetch/internal/procscan"
)

func atom(X *xgb.Conn, name string) (xproto.Atom, bool) {
	reply, err := xproto.InternAtom(X, true, uint16(len(name)), name).Reply()
	if err != nil || reply.Atom == xproto.AtomNone {
		return 0, false
	}
	return reply.Atom, true
}

func property(X *xgb.Conn, w xproto.Window, name string, typ xproto.Atom) ([]byte, bool) {
	a, ok := atom(X, name)
	if !ok {
		return nil, false
	}
	reply, err := xproto.GetProperty(X, false, w, a, typ, 0, 1024).Reply()
	if err != nil || reply.ValueLen == 0 {
		return nil, false
	}
	return reply.Value, true
}

// windowManager follows _NET_SUPPORTING_WM_CHECK and names the WM by its
// process (_NET_WM_PID) or, failing that, by _NET_WM_NAME.
func windowManager(X *xgb.Conn, root xproto.Window, procRoot string, lg core.Logger) string {
	v, ok := property(X, root, "_NET_SUPPORTING_WM_CHECK", xproto.AtomWindow)
	if !ok || len(v) < 4 {
		return ""
	}
	check := xproto.Window(xgb.Get32(v))

	if v, ok := property(X, check, "_NET_WM_PID", xproto.AtomCardinal); ok && len(v) >= 4 {
		pid := int(xgb.Get32(v))
		name, err := procscan.ProcessName(procRoot, pid)
		if err == nil {
			return name
		}
		lg.Debug("WM process not readable", "pid", pid, "error", err)
	}

	utf8, ok := atom(X, "UTF8_STRING")
	if !ok {
		utf8 = xproto.AtomString
	}
	if v, ok := property(X, check, "_NET_WM_NAME", utf8); ok {
		return string(v)
	}
	return ""
}
