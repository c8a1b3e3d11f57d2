//go:build !linux

package server

import (
	"fmt"
	"net"
)

// listen falls back to net.Listen; the backlog is left to the OS.
func listen(port, _ int) (net.Listener, error) {
	ln, err := net.Listen("tcp4", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind port %d: %w", port, err)
	}
	return ln, nil
}
