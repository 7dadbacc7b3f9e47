package wayland

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkubaj/fastfetch/internal/core"
)

var errNotSocket = errors.New("not a socket")

// DefaultDisplay is the socket name used when WAYLAND_DISPLAY is unset.
const DefaultDisplay = "wayland-0"

// Endpoint is a resolved compositor socket: either a path or an inherited fd.
type Endpoint struct {
	Path string
	FD   int // valid when Path is empty
}

func (e Endpoint) String() string {
	if e.Path != "" {
		return e.Path
	}
	return "fd:" + strconv.Itoa(e.FD)
}

// ResolveEndpoint locates the compositor socket from the environment.
// It reports false when the session cannot have a reachable compositor.
func ResolveEndpoint(env core.Env) (Endpoint, bool) {
	runtimeDir := core.Getenv(env, "XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return Endpoint{}, false
	}
	if s, ok := env.Lookup("WAYLAND_SOCKET"); ok && s != "" {
		fd, err := strconv.Atoi(s)
		if err != nil || fd <= 2 {
			return Endpoint{}, false
		}
		return Endpoint{FD: fd}, true
	}
	display := core.Getenv(env, "WAYLAND_DISPLAY")
	if display == "" {
		display = DefaultDisplay
	}
	if filepath.IsAbs(display) {
		return Endpoint{Path: display}, true
	}
	return Endpoint{Path: filepath.Join(runtimeDir, display)}, true
}

func dial(ep Endpoint) (*net.UnixConn, error) {
	if ep.Path != "" {
		c, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: ep.Path, Net: "unix"})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	// The fd only becomes ours once it is known to be a socket; anything
	// else stays open for whoever owns it.
	if err := checkSocket(ep.FD); err != nil {
		return nil, fmt.Errorf("WAYLAND_SOCKET fd %d: %w", ep.FD, err)
	}
	f := os.NewFile(uintptr(ep.FD), "wayland-socket")
	if f == nil {
		return nil, fmt.Errorf("invalid fd %d", ep.FD)
	}
	defer f.Close()
	fc, err := net.FileConn(f)
	if err != nil {
		return nil, err
	}
	uc, ok := fc.(*net.UnixConn)
	if !ok {
		fc.Close()
		return nil, errors.New("WAYLAND_SOCKET is not a unix socket")
	}
	return uc, nil
}
