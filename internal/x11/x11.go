// Package x11 reads outputs and the window manager of an X server through
// the RandR extension and EWMH properties.
package x11

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/pkubaj/fastfetch/internal/core"
	"github.com/pkubaj/fastfetch/internal/identity"
)

// ErrNotAvailable is returned when no X server can be used.
var ErrNotAvailable = errors.New("x11 display not available")

func init() {
	// xgb reports connection problems on its own logger; the probe returns them.
	xgb.Logger = log.New(io.Discard, "", 0)
}

// RandR rotation bits and mode flags.
const (
	rotate90  = 2
	rotate270 = 8

	modeInterlace  = 1 << 4
	modeDoubleScan = 1 << 5
)

// Sink receives what the probe learns.
type Sink interface {
	AppendDisplay(d identity.DisplayInfo)
	SetWMProcessName(name string)
	ConfirmProtocol(name string)
}

type Options struct {
	DetectName bool
	// Timeout bounds the whole probe. Zero or negative leaves only ctx.
	Timeout  time.Duration
	ProcRoot string
	Logger   core.Logger
}

type result struct {
	displays []identity.DisplayInfo
	wm       string
}

// Probe connects to display (the DISPLAY value), records one display per
// output driven by a CRTC and names the window manager. Connecting and
// querying are both bounded by ctx and Options.Timeout; an established
// connection is closed when the probe gives up.
func Probe(ctx context.Context, display string, sink Sink, opts Options) error {
	lg := core.OrNop(opts.Logger).With("probe", "x11")
	if display == "" {
		return ErrNotAvailable
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	type outcome struct {
		res result
		err error
	}
	done := make(chan outcome, 1)
	var held connHolder
	go func() {
		X, err := xgb.NewConnDisplay(display)
		if err != nil {
			lg.Debug("Connection failed", "display", display, "error", err)
			done <- outcome{err: fmt.Errorf("%w: %v", ErrNotAvailable, err)}
			return
		}
		if !held.set(X) {
			return
		}
		defer X.Close()
		res, err := query(X, opts, lg)
		done <- outcome{res, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		held.abandon()
		lg.Debug("X server did not answer in time", "display", display)
		return fmt.Errorf("x11 probe: %w", ctx.Err())
	}
	if out.err != nil {
		return out.err
	}

	if out.res.wm != "" {
		sink.SetWMProcessName(out.res.wm)
	}
	for _, d := range out.res.displays {
		sink.AppendDisplay(d)
	}
	sink.ConfirmProtocol(identity.ProtocolX11)
	return nil
}

// connHolder passes the connection from the dialing goroutine to Probe so an
// abandoned probe can close it. A connection completed after abandon is
// closed right away.
type connHolder struct {
	mu        sync.Mutex
	X         *xgb.Conn
	abandoned bool
}

func (h *connHolder) set(X *xgb.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.abandoned {
		X.Close()
		return false
	}
	h.X = X
	return true
}

func (h *connHolder) abandon() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.abandoned = true
	if h.X != nil {
		h.X.Close()
	}
}

func query(X *xgb.Conn, opts Options, lg core.Logger) (result, error) {
	var res result
	if err := randr.Init(X); err != nil {
		return res, fmt.Errorf("%w: randr: %v", ErrNotAvailable, err)
	}
	root := xproto.Setup(X).DefaultScreen(X).Root

	res.wm = windowManager(X, root, opts.ProcRoot, lg)

	resources, err := randr.GetScreenResourcesCurrent(X, root).Reply()
	if err != nil {
		return res, fmt.Errorf("randr screen resources: %w", err)
	}
	modes := make(map[randr.Mode]randr.ModeInfo, len(resources.Modes))
	for _, m := range resources.Modes {
		modes[randr.Mode(m.Id)] = m
	}

	for _, output := range resources.Outputs {
		info, err := randr.GetOutputInfo(X, output, resources.ConfigTimestamp).Reply()
		if err != nil || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(X, info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			lg.Debug("CRTC query failed", "output", string(info.Name), "error", err)
			continue
		}
		mode, ok := modes[crtc.Mode]
		if !ok {
			continue
		}
		d, err := outputDisplay(string(info.Name), mode, crtc.Rotation, opts.DetectName)
		if err != nil {
			lg.Debug("Output dropped", "output", string(info.Name), "reason", err)
			continue
		}
		res.displays = append(res.displays, d)
	}
	return res, nil
}

// RefreshRate derives the vertical refresh in Hz from a mode line.
func RefreshRate(m randr.ModeInfo) float64 {
	vtotal := float64(m.Vtotal)
	if m.ModeFlags&modeDoubleScan != 0 {
		vtotal *= 2
	}
	if m.ModeFlags&modeInterlace != 0 {
		vtotal /= 2
	}
	if m.Htotal == 0 || vtotal == 0 {
		return 0
	}
	return float64(m.DotClock) / (float64(m.Htotal) * vtotal)
}

func outputDisplay(name string, mode randr.ModeInfo, rotation uint16, detectName bool) (identity.DisplayInfo, error) {
	w, h := int(mode.Width), int(mode.Height)
	if rotation&(rotate90|rotate270) != 0 {
		w, h = h, w
	}
	label := ""
	if detectName {
		label = name
	}
	return identity.NewDisplayInfo(w, h, RefreshRate(mode), 1, label, ClassifyOutput(name))
}

// ClassifyOutput tells builtin panels from external connectors by the
// RandR output name.
func ClassifyOutput(name string) identity.DisplayType {
	for _, p := range []string{"eDP", "LVDS", "DSI"} {
		if strings.HasPrefix(name, p) {
			return identity.DisplayTypeBuiltin
		}
	}
	for _, p := range []string{"HDMI", "DisplayPort", "DP", "DVI", "VGA"} {
		if strings.HasPrefix(name, p) {
			return identity.DisplayTypeExternal
		}
	}
	return identity.DisplayTypeUnknown
}
