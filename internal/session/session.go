package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// Defaults for device communication.
const (
	// DefaultPort is the UDP control port WiZ devices listen on.
	DefaultPort = 38899

	// defaultTimeout bounds a single request/response attempt.
	defaultTimeout = 1500 * time.Millisecond

	// maxDatagramSize is the read buffer size; device replies are well
	// under 1 KiB but the firmware caps datagrams at this size.
	maxDatagramSize = 1024

	// attemptCount is the total attempts per call: the original send
	// plus exactly one retry to absorb a single dropped packet.
	attemptCount = 2
)

// Logger defines the logging interface used by the Session.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Dialer abstracts socket creation so tests can substitute an in-memory
// transport. The production implementation dials UDP.
type Dialer interface {
	Dial(ctx context.Context, addr string) (net.Conn, error)
}

type udpDialer struct{}

func (udpDialer) Dial(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "udp", addr)
}

// Config contains session tuning options. Zero values select defaults.
type Config struct {
	// Timeout bounds each request/response attempt.
	Timeout time.Duration

	// Port is the device control port.
	Port int
}

// Session is the per-device command client.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Calls targeting the same IP are serialized; distinct IPs proceed
//     concurrently.
type Session struct {
	dialer  Dialer
	timeout time.Duration
	port    int
	logger  Logger

	seq atomic.Uint32

	locksMu sync.Mutex
	ipLocks map[string]*sync.Mutex
}

// New creates a Session with the given configuration.
func New(cfg Config) *Session {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	port := cfg.Port
	if port <= 0 {
		port = DefaultPort
	}
	return &Session{
		dialer:  udpDialer{},
		timeout: timeout,
		port:    port,
		logger:  noopLogger{},
		ipLocks: make(map[string]*sync.Mutex),
	}
}

// SetLogger sets the logger for the session.
func (s *Session) SetLogger(logger Logger) {
	s.logger = logger
}

// SetDialer replaces the transport. Used by tests and by callers that
// tunnel device traffic through something other than plain UDP.
func (s *Session) SetDialer(d Dialer) {
	s.dialer = d
}

// GetState queries the device pilot and returns it as a typed snapshot.
func (s *Session) GetState(ctx context.Context, ip string) (protocol.StateSnapshot, error) {
	resp, err := s.exchange(ctx, ip, protocol.MethodGetPilot, nil)
	if err != nil {
		return protocol.StateSnapshot{}, err
	}
	if err := resp.Err(); err != nil {
		return protocol.StateSnapshot{}, err
	}

	var pilot protocol.PilotState
	if err := resp.DecodeResult(&pilot); err != nil {
		return protocol.StateSnapshot{}, err
	}
	return protocol.SnapshotFromPilot(pilot), nil
}

// SetState applies a partial state mutation to the device.
//
// The patch is validated before any network traffic; an out-of-range
// value never reaches the wire. ErrCommandRejected is returned when the
// device acknowledges but refuses the pilot.
func (s *Session) SetState(ctx context.Context, ip string, patch protocol.StatePatch) error {
	if patch.IsEmpty() {
		return ErrEmptyPatch
	}
	pilot, err := patch.Pilot()
	if err != nil {
		return err
	}

	resp, err := s.exchange(ctx, ip, protocol.MethodSetPilot, pilot)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	var ack protocol.SetPilotResult
	if err := resp.DecodeResult(&ack); err != nil {
		return err
	}
	if !ack.Success {
		return ErrCommandRejected
	}
	return nil
}

// GetSystemConfig queries the device hardware identity (MAC, module
// name, firmware). Discovery uses this to derive capabilities.
func (s *Session) GetSystemConfig(ctx context.Context, ip string) (protocol.SystemConfig, error) {
	resp, err := s.exchange(ctx, ip, protocol.MethodGetSystemConfig, nil)
	if err != nil {
		return protocol.SystemConfig{}, err
	}
	if err := resp.Err(); err != nil {
		return protocol.SystemConfig{}, err
	}

	var cfg protocol.SystemConfig
	if err := resp.DecodeResult(&cfg); err != nil {
		return protocol.SystemConfig{}, err
	}
	return cfg, nil
}

// SendRaw sends an arbitrary method call and returns the decoded
// response envelope. The escape hatch for methods without a typed
// wrapper; the correlation and retry rules still apply.
func (s *Session) SendRaw(ctx context.Context, ip, method string, params any) (*protocol.Response, error) {
	return s.exchange(ctx, ip, method, params)
}

// exchange performs one serialized request/response call to a device.
func (s *Session) exchange(ctx context.Context, ip, method string, params any) (*protocol.Response, error) {
	lock := s.lockFor(ip)
	lock.Lock()
	defer lock.Unlock()

	id := s.seq.Add(1)
	payload, err := protocol.Encode(method, id, params)
	if err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(ip, strconv.Itoa(s.port))

	var lastErr error
	for attempt := 1; attempt <= attemptCount; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := s.attempt(ctx, addr, method, id, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isTimeout(err) {
			// Dial failures (no route, refused) are not worth a
			// retry; the retry exists for dropped packets only.
			break
		}
		if attempt < attemptCount {
			s.logger.Debug("device timed out, retrying once", "ip", ip, "method", method)
		}
	}

	return nil, fmt.Errorf("%w: %s %s: %w", ErrDeviceUnreachable, method, ip, lastErr)
}

// attempt sends the payload once and reads datagrams until the
// correlated reply arrives or the deadline expires. Uncorrelated and
// malformed datagrams are discarded without consuming the attempt.
func (s *Session) attempt(ctx context.Context, addr, method string, id uint32, payload []byte) (*protocol.Response, error) {
	conn, err := s.dialer.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if _, err := conn.Write(payload); err != nil {
		return nil, err
	}

	buf := make([]byte, maxDatagramSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return nil, err
		}

		resp, err := protocol.Decode(buf[:n])
		if err != nil {
			s.logger.Warn("discarding malformed reply", "addr", addr, "error", err)
			continue
		}
		if resp.Method != method || resp.ID != id {
			s.logger.Debug("discarding uncorrelated reply",
				"addr", addr,
				"got_method", resp.Method,
				"got_id", resp.ID,
				"want_id", id,
			)
			continue
		}
		return resp, nil
	}
}

// lockFor returns the serialization lock for an IP, creating it on
// first use. Locks are never removed; the set of IPs on one subnet is
// small and bounded.
func (s *Session) lockFor(ip string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.ipLocks[ip]
	if !ok {
		lock = &sync.Mutex{}
		s.ipLocks[ip] = lock
	}
	return lock
}

// isTimeout reports whether err is a deadline expiry.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
