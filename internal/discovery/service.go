package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// Defaults for discovery tuning. The window and staleness threshold are
// deployment choices, not protocol constants; these values were picked
// for a typical home subnet and can be overridden via Config.
const (
	// DefaultWindow bounds the collection phase.
	DefaultWindow = 3 * time.Second

	// DefaultStaleAfter is how long a device may go unseen before its
	// record is evicted during a merge.
	DefaultStaleAfter = time.Hour

	// Registration identity presented by a controller that only wants
	// an answer, not push updates. These placeholder values follow the
	// app's discovery probe.
	registrationPhoneIP  = "1.2.3.4"
	registrationPhoneMac = "AAAAAAAAAAAA"
)

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Transport broadcasts the registration datagram and feeds replies back
// to the service. The production implementation is a UDP socket; tests
// substitute a scripted one.
type Transport interface {
	// Collect sends payload to the broadcast address, then invokes
	// handle for every reply datagram received until the window
	// elapses. It returns an error only when the broadcast send itself
	// fails; an empty window is a clean return.
	Collect(ctx context.Context, broadcastAddr string, payload []byte, window time.Duration, handle func(src string, datagram []byte)) error
}

// Prober queries a freshly discovered device for identity and state.
// *session.Session satisfies this.
type Prober interface {
	GetSystemConfig(ctx context.Context, ip string) (protocol.SystemConfig, error)
	GetState(ctx context.Context, ip string) (protocol.StateSnapshot, error)
}

// Config contains discovery settings.
type Config struct {
	// BroadcastAddress is the subnet broadcast address, host part only
	// (e.g. "192.168.1.255").
	BroadcastAddress string

	// Port is the device control port the broadcast targets.
	Port int

	// Window bounds the collection phase. Zero selects DefaultWindow.
	Window time.Duration

	// StaleAfter is the eviction threshold for unseen records.
	// Zero selects DefaultStaleAfter.
	StaleAfter time.Duration
}

// Service runs discovery cycles against a Directory.
//
// Thread Safety:
//   - Discover may be called from multiple goroutines; overlapping
//     calls beyond the first fail fast with ErrDiscoveryBusy.
type Service struct {
	cfg       Config
	dir       *Directory
	transport Transport
	prober    Prober
	logger    Logger

	// busy serializes cycles. TryLock failure maps to ErrDiscoveryBusy.
	busy sync.Mutex

	now func() time.Time
}

// NewService creates a discovery service bound to a directory.
func NewService(cfg Config, dir *Directory, transport Transport, prober Prober) *Service {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	return &Service{
		cfg:       cfg,
		dir:       dir,
		transport: transport,
		prober:    prober,
		logger:    noopLogger{},
		now:       time.Now,
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// Directory returns the directory this service maintains.
func (s *Service) Directory() *Directory {
	return s.dir
}

// Discover runs one broadcast-collect-merge cycle and returns the full
// directory contents afterwards.
//
// Zero replies is a valid outcome and not an error; only a failed
// broadcast send aborts the cycle with ErrDiscoveryFailed, leaving the
// previous directory untouched. A cycle already in flight rejects the
// call with ErrDiscoveryBusy.
func (s *Service) Discover(ctx context.Context) ([]DeviceRecord, error) {
	if !s.busy.TryLock() {
		return nil, ErrDiscoveryBusy
	}
	defer s.busy.Unlock()

	payload, err := protocol.Encode(protocol.MethodRegistration, 0, protocol.RegistrationParams{
		PhoneIP:  registrationPhoneIP,
		PhoneMac: registrationPhoneMac,
		Register: false,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscoveryFailed, err)
	}

	// BROADCASTING + COLLECTING: gather identifier -> source IP.
	replies := make(map[string]string)
	broadcastAddr := fmt.Sprintf("%s:%d", s.cfg.BroadcastAddress, s.cfg.Port)
	err = s.transport.Collect(ctx, broadcastAddr, payload, s.cfg.Window, func(src string, datagram []byte) {
		id, ok := s.parseReply(src, datagram)
		if !ok {
			return
		}
		replies[id] = src
	})
	if err != nil {
		return nil, fmt.Errorf("%w: broadcast: %w", ErrDiscoveryFailed, err)
	}

	// MERGED: build the next directory from the previous one plus this
	// cycle's replies, then swap it in atomically.
	now := s.now().UTC()
	next := s.dir.snapshot()

	for id, ip := range replies {
		rec, known := next[id]
		if !known {
			rec = &DeviceRecord{ID: id}
			next[id] = rec
			s.logger.Info("device discovered", "id", id, "ip", ip)
		} else if rec.IP != ip {
			// DHCP gave the device a new lease. Identity follows the
			// identifier, so the record is updated in place.
			s.logger.Info("device moved", "id", id, "old_ip", rec.IP, "new_ip", ip)
		}
		rec.IP = ip
		rec.LastSeen = now

		s.enrich(ctx, rec)
	}

	for id, rec := range next {
		if _, seen := replies[id]; seen {
			continue
		}
		if now.Sub(rec.LastSeen) > s.cfg.StaleAfter {
			s.logger.Info("evicting stale device", "id", id, "last_seen", rec.LastSeen)
			delete(next, id)
		}
	}

	s.dir.Swap(next)
	s.logger.Info("discovery cycle complete", "replies", len(replies), "directory", s.dir.Count())

	return s.dir.List(), nil
}

// parseReply validates one collection-phase datagram and extracts the
// device identifier. Malformed datagrams are logged and skipped so one
// bad device cannot block discovery of the rest.
func (s *Service) parseReply(src string, datagram []byte) (string, bool) {
	resp, err := protocol.Decode(datagram)
	if err != nil {
		s.logger.Warn("skipping malformed discovery reply", "src", src, "error", err)
		return "", false
	}
	if resp.Method != protocol.MethodRegistration {
		s.logger.Debug("skipping non-registration datagram", "src", src, "method", resp.Method)
		return "", false
	}

	var reg protocol.RegistrationResult
	if err := resp.DecodeResult(&reg); err != nil {
		s.logger.Warn("skipping malformed registration result", "src", src, "error", err)
		return "", false
	}
	if reg.Mac == "" {
		s.logger.Warn("skipping registration reply without mac", "src", src)
		return "", false
	}

	return strings.ToLower(reg.Mac), true
}

// enrich fills model, firmware and last-known-good state via the
// prober. Best effort: a device that answered registration but times
// out on the follow-up queries keeps whatever the record already held.
func (s *Service) enrich(ctx context.Context, rec *DeviceRecord) {
	if s.prober == nil {
		return
	}

	if cfg, err := s.prober.GetSystemConfig(ctx, rec.IP); err != nil {
		s.logger.Warn("system config probe failed", "id", rec.ID, "ip", rec.IP, "error", err)
	} else {
		rec.Model = cfg.ModuleName
		rec.FirmwareVersion = cfg.FwVersion
		rec.Capabilities = CapabilitiesFor(ClassifyModule(cfg.ModuleName))
	}

	if state, err := s.prober.GetState(ctx, rec.IP); err != nil {
		s.logger.Warn("state probe failed", "id", rec.ID, "ip", rec.IP, "error", err)
	} else {
		snap := state.Clone()
		rec.LastState = &snap
	}
}
