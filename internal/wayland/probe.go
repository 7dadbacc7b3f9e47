// Package wayland probes a Wayland compositor for its outputs and the
// process that owns the socket. It speaks the wire protocol directly and
// does not need libwayland-client.
package wayland

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkubaj/fastfetch/internal/core"
	"github.com/pkubaj/fastfetch/internal/identity"
	"github.com/pkubaj/fastfetch/internal/procscan"
)

// ErrNotAvailable is returned when no compositor can be reached.
var ErrNotAvailable = errors.New("wayland compositor not available")

const (
	registryGlobal       = 0
	registryGlobalRemove = 1
	registryBind         = 0
)

const (
	outputInterface          = "wl_output"
	fractionalScaleInterface = "wp_fractional_scale_manager_v1"
	fractionalScaleDestroy   = 0
)

// Sink receives what the probe learns.
type Sink interface {
	AppendDisplay(d identity.DisplayInfo)
	SetWMProcessName(name string)
	ConfirmProtocol(name string)
}

type Options struct {
	// DetectName fills DisplayInfo.Name from the output's make and model.
	DetectName bool
	// Timeout bounds every round-trip. Zero or negative leaves only ctx.
	Timeout time.Duration
	// ProcRoot is the procfs mount used to name the compositor process.
	ProcRoot string
	Logger   core.Logger
}

type global struct {
	name    uint32
	iface   string
	version uint32
}

// Probe connects to the compositor at ep, appends one display per output
// with a current mode and confirms the Wayland protocol on success.
func Probe(ctx context.Context, ep Endpoint, sink Sink, opts Options) error {
	log := core.OrNop(opts.Logger).With("probe", "wayland")

	sock, err := dial(ep)
	if err != nil {
		log.Debug("Connection failed", "endpoint", ep.String(), "error", err)
		return fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	c := newConn(sock, opts.Timeout)
	defer c.Close()

	if pid, err := peerPID(sock); err != nil {
		log.Debug("Peer credentials unavailable", "error", err)
	} else if name, err := procscan.ProcessName(opts.ProcRoot, pid); err != nil {
		log.Debug("Compositor process not readable", "pid", pid, "error", err)
	} else {
		log.Debug("Compositor process", "pid", pid, "name", name)
		sink.SetWMProcessName(name)
	}

	registry := c.newID()
	var globals []global
	c.handlers[registry] = func(opcode uint16, d *decoder) error {
		if opcode == registryGlobal {
			g := global{name: d.u32(), iface: d.str(), version: d.u32()}
			if d.err == nil {
				globals = append(globals, g)
			}
		}
		return nil
	}
	if err := c.roundtrip(ctx, newMessage(displayID, displayGetRegistry).u32(registry)); err != nil {
		return fmt.Errorf("wayland registry: %w", err)
	}
	log.Trace("Registry received", "globals", len(globals))

	for _, g := range globals {
		switch g.iface {
		case outputInterface:
			info, err := handshakeOutput(ctx, c, registry, g)
			if err != nil {
				return fmt.Errorf("wayland output %d: %w", g.name, err)
			}
			d, err := info.Display(opts.DetectName)
			if err != nil {
				log.Debug("Output dropped", "global", g.name, "name", info.Name, "reason", err)
				continue
			}
			sink.AppendDisplay(d)
		case fractionalScaleInterface:
			if err := bindFractionalScale(ctx, c, registry, g); err != nil {
				log.Debug("Fractional scale manager unusable", "error", err)
			} else {
				log.Debug("Fractional scaling supported", "version", g.version)
			}
		}
	}

	if err := c.roundtrip(ctx); err != nil {
		return fmt.Errorf("wayland final roundtrip: %w", err)
	}
	delete(c.handlers, registry)

	sink.ConfirmProtocol(identity.ProtocolWayland)
	return nil
}

func bindRequest(registry uint32, g global, version, id uint32) *encoder {
	return newMessage(registry, registryBind).u32(g.name).str(g.iface).u32(version).u32(id)
}

// handshakeOutput binds one output, collects its events over a single
// round-trip and releases it again.
func handshakeOutput(ctx context.Context, c *conn, registry uint32, g global) (OutputInfo, error) {
	version := g.version
	if version > maxOutputVersion {
		version = maxOutputVersion
	}
	id := c.newID()
	info := OutputInfo{Scale: 1}
	c.handlers[id] = info.handle
	defer delete(c.handlers, id)

	if err := c.roundtrip(ctx, bindRequest(registry, g, version, id)); err != nil {
		return OutputInfo{}, err
	}
	if version >= 3 {
		if err := c.send(newMessage(id, outputRelease)); err != nil {
			return OutputInfo{}, err
		}
	}
	return info, nil
}

func bindFractionalScale(ctx context.Context, c *conn, registry uint32, g global) error {
	id := c.newID()
	return c.roundtrip(ctx,
		bindRequest(registry, g, 1, id),
		newMessage(id, fractionalScaleDestroy),
	)
}
