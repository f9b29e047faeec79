package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// udpReadBufferSize matches the firmware datagram cap.
const udpReadBufferSize = 1024

// UDPTransport implements Transport over an IPv4 broadcast socket.
//
// A fresh socket is opened per cycle so the reply window and the socket
// lifetime coincide; there is no listener to babysit between cycles.
type UDPTransport struct{}

// NewUDPTransport creates the production discovery transport.
func NewUDPTransport() *UDPTransport {
	return &UDPTransport{}
}

// Collect implements Transport.
//
// The send failure path (network unreachable, permission) is returned
// to the caller and aborts the cycle; read timeouts simply end the
// collection window.
func (t *UDPTransport) Collect(ctx context.Context, broadcastAddr string, payload []byte, window time.Duration, handle func(src string, datagram []byte)) error {
	lc := net.ListenConfig{}
	conn, err := lc.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return fmt.Errorf("opening discovery socket: %w", err)
	}
	defer conn.Close()

	dst, err := net.ResolveUDPAddr("udp4", broadcastAddr)
	if err != nil {
		return fmt.Errorf("resolving broadcast address %q: %w", broadcastAddr, err)
	}

	if _, err := conn.WriteTo(payload, dst); err != nil {
		return fmt.Errorf("broadcast send: %w", err)
	}

	deadline := time.Now().Add(window)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("setting collection deadline: %w", err)
	}

	buf := make([]byte, udpReadBufferSize)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			if isDeadline(err) {
				return nil // window elapsed, clean end of collection
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("collecting replies: %w", err)
		}

		host, _, splitErr := net.SplitHostPort(src.String())
		if splitErr != nil {
			host = src.String()
		}

		datagram := make([]byte, n)
		copy(datagram, buf[:n])
		handle(host, datagram)
	}
}

func isDeadline(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
