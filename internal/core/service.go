package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/wiz-local-core/internal/discovery"
	"github.com/nerrad567/wiz-local-core/internal/history"
	"github.com/nerrad567/wiz-local-core/internal/home"
	"github.com/nerrad567/wiz-local-core/internal/infrastructure/config"
	"github.com/nerrad567/wiz-local-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/wiz-local-core/internal/preview"
	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// prunePeriod is how often the history retention policy is applied while
// Run is active.
const prunePeriod = time.Hour

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DeviceClient is the device-facing subset of the session layer the
// service needs. *session.Session satisfies this.
type DeviceClient interface {
	GetState(ctx context.Context, ip string) (protocol.StateSnapshot, error)
	SetState(ctx context.Context, ip string, patch protocol.StatePatch) error
}

// MessageBus is the broker-facing surface the service publishes on.
// *mqtt.Client satisfies this. Retained publishes go through
// PublishRetained so the broker-side default QoS applies to state
// documents.
type MessageBus interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Telemetry is the metrics sink. *influxdb.Client satisfies this.
type Telemetry interface {
	WriteLightState(deviceID, room string, power bool, brightness int)
	WriteSignalStrength(deviceID string, rssi int)
	WriteDiscoveryCycle(devicesFound, evicted int, duration time.Duration)
}

// Options collects the dependencies for a Service. Config, Discovery
// and Devices are required; History, Bus and Telemetry are optional
// side channels and may be nil.
type Options struct {
	Config    *config.Config
	Discovery *discovery.Service
	Devices   DeviceClient
	Structure *home.Structure
	History   history.Repository
	Bus       MessageBus
	Telemetry Telemetry
	Logger    Logger
}

// Service is the host facade over discovery, control, reconciliation
// and preview.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Service struct {
	cfg       *config.Config
	log       Logger
	discovery *discovery.Service
	devices   DeviceClient
	preview   *preview.Controller
	history   history.Repository
	bus       MessageBus
	telemetry Telemetry

	structMu  sync.RWMutex
	structure *home.Structure

	qos byte
}

// New assembles a Service from its dependencies and, when a message bus
// is present, subscribes to the device command topics.
func New(opts Options) (*Service, error) {
	if opts.Config == nil {
		return nil, errors.New("core: config is required")
	}
	if opts.Discovery == nil {
		return nil, errors.New("core: discovery service is required")
	}
	if opts.Devices == nil {
		return nil, errors.New("core: device client is required")
	}

	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}

	s := &Service{
		cfg:       opts.Config,
		log:       log,
		discovery: opts.Discovery,
		devices:   opts.Devices,
		history:   opts.History,
		bus:       opts.Bus,
		telemetry: opts.Telemetry,
		structure: opts.Structure,
		qos:       byte(opts.Config.MQTT.QoS),
	}

	s.preview = preview.NewController(opts.Discovery.Directory(), opts.Devices)
	s.preview.SetLogger(log)
	s.preview.SetRestoreHook(s.onRestore)

	if s.bus != nil {
		topic := mqtt.Topics{}.AllDeviceSets()
		if err := s.bus.Subscribe(topic, s.qos, s.handleSetMessage); err != nil {
			return nil, fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		log.Info("command ingress subscribed", "topic", topic)
	}

	return s, nil
}

// Devices returns the current directory contents, sorted by identifier.
func (s *Service) Devices() []discovery.DeviceRecord {
	return s.discovery.Directory().List()
}

// Device returns a copy of one directory record.
// Returns discovery.ErrUnknownDevice for absent identifiers.
func (s *Service) Device(id string) (*discovery.DeviceRecord, error) {
	return s.discovery.Directory().Get(id)
}

// Discover runs one discovery cycle and feeds the results to the side
// channels: per-device history entries, retained MQTT state, telemetry
// and a cycle summary.
func (s *Service) Discover(ctx context.Context) ([]discovery.DeviceRecord, error) {
	before := s.knownIDs()
	start := time.Now()

	records, err := s.discovery.Discover(ctx)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	evicted := 0
	after := make(map[string]bool, len(records))
	for _, rec := range records {
		after[rec.ID] = true
	}
	for id := range before {
		if !after[id] {
			evicted++
		}
	}

	for i := range records {
		rec := &records[i]
		if rec.LastState == nil {
			continue
		}
		s.recordState(ctx, rec.ID, *rec.LastState, history.SourceDiscovery)
	}

	if s.telemetry != nil {
		s.telemetry.WriteDiscoveryCycle(len(records), evicted, elapsed)
	}
	s.publishDiscoverySummary(len(records), evicted, elapsed)
	s.publishStructureView()

	return records, nil
}

// ReconciledDevices merges the loaded structure document with the live
// directory. With no structure loaded every live device surfaces as
// discovered-unnamed.
func (s *Service) ReconciledDevices() []home.ReconciledDevice {
	return home.Reconcile(s.structureSnapshot(), s.Devices())
}

// ReloadStructure re-reads the structure document from the configured
// path. The previous document stays active when loading fails.
func (s *Service) ReloadStructure() error {
	path := s.cfg.Structure.Path
	if path == "" {
		return ErrNoStructure
	}

	structure, err := home.Load(path)
	if err != nil {
		return err
	}

	s.structMu.Lock()
	s.structure = structure
	s.structMu.Unlock()

	s.log.Info("structure document loaded",
		"path", path,
		"home", structure.Name,
		"rooms", len(structure.Rooms),
	)
	s.publishStructureView()
	return nil
}

// Run drives the periodic work: discovery cycles on the configured
// interval and history pruning once per hour. It blocks until the
// context is cancelled.
//
// A non-positive interval disables the periodic trigger; discovery then
// runs once at startup and afterwards only on explicit Discover calls.
func (s *Service) Run(ctx context.Context) {
	discoverTick, stopDiscover := s.discoverTicker()
	defer stopDiscover()
	pruneTick := time.NewTicker(prunePeriod)
	defer pruneTick.Stop()

	s.runDiscovery(ctx)
	s.pruneHistory(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-discoverTick:
			s.runDiscovery(ctx)
		case <-pruneTick.C:
			s.pruneHistory(ctx)
		}
	}
}

// discoverTicker returns the periodic discovery channel. A nil channel
// (interval disabled) blocks forever in the Run select.
func (s *Service) discoverTicker() (<-chan time.Time, func()) {
	interval := s.cfg.DiscoveryInterval()
	if interval <= 0 {
		return nil, func() {}
	}
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

func (s *Service) runDiscovery(ctx context.Context) {
	if _, err := s.Discover(ctx); err != nil {
		switch {
		case ctx.Err() != nil:
		case errors.Is(err, discovery.ErrDiscoveryBusy):
			s.log.Debug("periodic discovery skipped, cycle in progress")
		default:
			s.log.Warn("periodic discovery failed", "error", err)
		}
	}
}

func (s *Service) pruneHistory(ctx context.Context) {
	if s.history == nil {
		return
	}
	retention := s.cfg.HistoryRetention()
	if retention <= 0 {
		return
	}

	pruned, err := s.history.Prune(ctx, retention)
	if err != nil {
		s.log.Warn("history prune failed", "error", err)
		return
	}
	if pruned > 0 {
		s.log.Info("history pruned", "rows", pruned, "retention", retention)
	}
}

// knownIDs returns the set of identifiers currently in the directory.
func (s *Service) knownIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, rec := range s.Devices() {
		ids[rec.ID] = true
	}
	return ids
}

func (s *Service) structureSnapshot() *home.Structure {
	s.structMu.RLock()
	defer s.structMu.RUnlock()
	return s.structure
}

// placement returns the room and name a device carries in the current
// reconciled view, or empty strings for unplaced devices.
func (s *Service) placement(deviceID string) (room, name string) {
	for _, rd := range s.ReconciledDevices() {
		if rd.ID == deviceID {
			return rd.Room, rd.Name
		}
	}
	return "", ""
}

// recordState fans one confirmed snapshot out to every side channel.
// Failures are logged; the caller never sees them.
func (s *Service) recordState(ctx context.Context, deviceID string, state protocol.StateSnapshot, source string) {
	if s.history != nil {
		if err := s.history.Record(ctx, deviceID, state, source); err != nil {
			s.log.Warn("history write failed", "device", deviceID, "source", source, "error", err)
		}
	}

	room, _ := s.placement(deviceID)
	if s.telemetry != nil {
		s.telemetry.WriteLightState(deviceID, room, state.Power, state.Brightness)
		if state.RSSI != 0 {
			s.telemetry.WriteSignalStrength(deviceID, state.RSSI)
		}
	}

	s.publishDeviceState(deviceID)
}
