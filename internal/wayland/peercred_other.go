//go:build !linux

package wayland

import (
	"errors"
	"net"
)

func peerPID(*net.UnixConn) (int, error) {
	return 0, errors.New("peer credentials not supported on this platform")
}

func checkSocket(int) error {
	return errors.New("inherited sockets not supported on this platform")
}
