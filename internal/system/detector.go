// Package system detects the display-server identity of the running session.
package system

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkubaj/fastfetch/internal/core"
	"github.com/pkubaj/fastfetch/internal/desktop"
	"github.com/pkubaj/fastfetch/internal/identity"
	"github.com/pkubaj/fastfetch/internal/procscan"
	"github.com/pkubaj/fastfetch/internal/wayland"
	"github.com/pkubaj/fastfetch/internal/x11"
)

type Options struct {
	Env core.Env
	// Timeout bounds each external command and each compositor round-trip.
	Timeout       time.Duration
	DetectName    bool
	AllowSlow     bool
	Wayland       bool
	X11           bool
	Rules         *identity.Rules
	ProcRoot      string // defaults to /proc
	UID           int
	WSLgPath      string
	VersionLookup identity.VersionDetector // defaults to a desktop.Detector
	Logger        core.Logger

	waylandProbe func(context.Context, wayland.Endpoint, wayland.Sink, wayland.Options) error
	x11Probe     func(context.Context, string, x11.Sink, x11.Options) error
}

// DefaultOptions enables every probe for the current user.
func DefaultOptions() Options {
	return Options{
		Env:        core.OSEnv{},
		Timeout:    time.Second,
		DetectName: true,
		Wayland:    true,
		X11:        true,
		UID:        os.Getuid(),
	}
}

// Result is a resolved identity plus everything that went wrong on the way.
// Diagnostics never prevent a result; empty fields mean unknown.
type Result struct {
	Identity    identity.Record
	Diagnostics error
}

type diagnostics struct {
	mu  sync.Mutex
	err *multierror.Error
}

func (d *diagnostics) add(err error) {
	if err == nil {
		return
	}
	d.mu.Lock()
	d.err = multierror.Append(d.err, err)
	d.mu.Unlock()
}

// Detect runs the display server probes and the process table scan
// concurrently, then resolves window manager and desktop environment.
func Detect(ctx context.Context, opts Options) Result {
	log := core.OrNop(opts.Logger)
	if opts.Env == nil {
		opts.Env = core.OSEnv{}
	}
	if opts.waylandProbe == nil {
		opts.waylandProbe = wayland.Probe
	}
	if opts.x11Probe == nil {
		opts.x11Probe = x11.Probe
	}

	agg := identity.NewAggregator()
	var diag diagnostics
	var procs procscan.Snapshot
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		diag.add(probeDisplayServer(ctx, agg, opts, log))
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		snap, err := (&procscan.Scanner{Root: opts.ProcRoot, UID: opts.UID}).Snapshot()
		if err != nil {
			diag.add(err)
			return
		}
		log.Trace("Process table read", "processes", len(snap), "took", time.Since(start))
		procs = snap
	}()
	wg.Wait()

	versions := opts.VersionLookup
	if versions == nil {
		versions = &desktop.Detector{
			Env:       opts.Env,
			AllowSlow: opts.AllowSlow,
			Timeout:   opts.Timeout,
			Logger:    opts.Logger,
		}
	}
	resolver := &identity.Resolver{
		Env:       opts.Env,
		Processes: procs,
		Desktops:  versions,
		Rules:     opts.Rules,
		WSLgPath:  opts.WSLgPath,
		Logger:    opts.Logger,
	}
	resolver.Resolve(ctx, agg)

	res := Result{Identity: agg.Snapshot()}
	if diag.err != nil {
		res.Diagnostics = diag.err.ErrorOrNil()
	}
	return res
}

// probeDisplayServer tries Wayland first and falls back to X11 when no
// output was found.
func probeDisplayServer(ctx context.Context, agg *identity.Aggregator, opts Options, log core.Logger) error {
	var errs *multierror.Error

	if opts.Wayland {
		if ep, ok := wayland.ResolveEndpoint(opts.Env); ok {
			err := opts.waylandProbe(ctx, ep, agg, wayland.Options{
				DetectName: opts.DetectName,
				Timeout:    opts.Timeout,
				ProcRoot:   opts.ProcRoot,
				Logger:     opts.Logger,
			})
			if err != nil {
				log.Debug("Wayland probe failed", "endpoint", ep.String(), "error", err)
				errs = multierror.Append(errs, err)
				if WaylandSessionLikely(opts.Env) {
					agg.GuessProtocol(identity.ProtocolWayland)
				}
			}
		}
	}

	if opts.X11 && agg.DisplayCount() == 0 {
		err := opts.x11Probe(ctx, core.Getenv(opts.Env, "DISPLAY"), agg, x11.Options{
			DetectName: opts.DetectName,
			Timeout:    opts.Timeout,
			ProcRoot:   opts.ProcRoot,
			Logger:     opts.Logger,
		})
		if err != nil && !(errors.Is(err, x11.ErrNotAvailable) && core.Getenv(opts.Env, "DISPLAY") == "") {
			log.Debug("X11 probe failed", "error", err)
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// WaylandSessionLikely reports whether the environment describes a Wayland
// session even though the compositor could not be probed.
func WaylandSessionLikely(env core.Env) bool {
	if core.Getenv(env, "XDG_RUNTIME_DIR") == "" {
		return false
	}
	if st, ok := env.Lookup("XDG_SESSION_TYPE"); ok {
		return strings.EqualFold(st, "wayland")
	}
	return core.IsSet(env, "WAYLAND_DISPLAY") || core.IsSet(env, "WAYLAND_SOCKET")
}
