package preview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/wiz-local-core/internal/discovery"
	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// defaultRestoreTimeout bounds the device call made when an expiry timer
// fires. Expiry restores run on background goroutines with no caller
// context to inherit.
const defaultRestoreTimeout = 5 * time.Second

// Status is a preview session's lifecycle state.
type Status string

// Session statuses.
const (
	StatusActive        Status = "active"
	StatusCancelled     Status = "cancelled"
	StatusExpired       Status = "expired"
	StatusRestoreFailed Status = "restore_failed"
	StatusSuperseded    Status = "superseded"
)

// Logger defines the logging interface used by the Controller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Resolver maps a device identifier to its directory record.
// *discovery.Directory satisfies this.
type Resolver interface {
	Get(id string) (*discovery.DeviceRecord, error)
}

// DeviceClient is the device-facing subset of the session layer the
// controller needs. *session.Session satisfies this.
type DeviceClient interface {
	GetState(ctx context.Context, ip string) (protocol.StateSnapshot, error)
	SetState(ctx context.Context, ip string, patch protocol.StatePatch) error
}

// RestoreHook is invoked after every restore attempt, timer-driven or
// cancel-driven, with the terminal status of the session.
type RestoreHook func(deviceID string, restored protocol.StateSnapshot, status Status)

// Session is a caller-visible view of one preview.
type Session struct {
	DeviceID  string
	Requested protocol.StatePatch
	Restore   protocol.StateSnapshot
	StartedAt time.Time
	Duration  time.Duration
	Status    Status
}

// sessionRecord is the controller's mutable bookkeeping for one active
// preview. All fields except timer are written only under Controller.mu.
type sessionRecord struct {
	session Session
	ip      string
	timer   *time.Timer
}

// Controller enforces the at-most-one-preview-per-device invariant and
// owns every pending restore timer.
type Controller struct {
	resolver Resolver
	client   DeviceClient
	logger   Logger

	restoreTimeout time.Duration
	restoreHook    RestoreHook
	now            func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionRecord
}

// NewController creates a preview controller on top of a resolver and a
// device client.
func NewController(resolver Resolver, client DeviceClient) *Controller {
	return &Controller{
		resolver:       resolver,
		client:         client,
		logger:         noopLogger{},
		restoreTimeout: defaultRestoreTimeout,
		now:            time.Now,
		sessions:       make(map[string]*sessionRecord),
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// SetRestoreHook registers a callback fired after every restore attempt.
// Must be called before the first preview starts.
func (c *Controller) SetRestoreHook(hook RestoreHook) {
	c.restoreHook = hook
}

// StartPreview applies a temporary state override to a device and
// schedules a restore of its prior state after the duration elapses.
//
// The restore point is captured from the live device before anything is
// mutated; an unreachable device fails the call with no side effects. An
// active preview on the same device is superseded: its timer stops and
// no restore runs for it, since the fresh capture is authoritative.
//
// A failed apply of the requested state does not abort the session: the
// restore is scheduled regardless, so the device ends up back in its
// captured state either way. The failure is reported as ErrApplyFailed
// alongside the live session.
func (c *Controller) StartPreview(ctx context.Context, deviceID string, requested protocol.StatePatch, duration time.Duration) (Session, error) {
	if duration <= 0 {
		return Session{}, fmt.Errorf("%w: %s", ErrInvalidDuration, duration)
	}
	if requested.IsEmpty() {
		return Session{}, ErrEmptyPreview
	}
	if _, err := requested.Pilot(); err != nil {
		return Session{}, err
	}

	rec, err := c.resolver.Get(deviceID)
	if err != nil {
		return Session{}, err
	}

	restore, err := c.client.GetState(ctx, rec.IP)
	if err != nil {
		return Session{}, fmt.Errorf("capturing restore point for %s: %w", deviceID, err)
	}

	sr := &sessionRecord{
		session: Session{
			DeviceID:  deviceID,
			Requested: requested,
			Restore:   restore.Clone(),
			StartedAt: c.now(),
			Duration:  duration,
			Status:    StatusActive,
		},
		ip: rec.IP,
	}

	c.mu.Lock()
	if prev, ok := c.sessions[deviceID]; ok {
		prev.timer.Stop()
		prev.session.Status = StatusSuperseded
		c.logger.Info("preview superseded", "device", deviceID)
	}
	sr.timer = time.AfterFunc(duration, func() { c.expire(deviceID, sr) })
	c.sessions[deviceID] = sr
	// Snapshot before releasing the lock: a short-duration timer may
	// fire and mutate sr.session.Status concurrently.
	out := sr.session
	c.mu.Unlock()

	if err := c.client.SetState(ctx, rec.IP, requested); err != nil {
		c.logger.Warn("preview apply failed, restore still scheduled",
			"device", deviceID, "error", err)
		return out, fmt.Errorf("%w: %s: %w", ErrApplyFailed, deviceID, err)
	}
	c.logger.Info("preview started", "device", deviceID, "duration", duration)

	return out, nil
}

// CancelPreview stops a pending restore timer and applies the restore
// snapshot synchronously.
//
// Cancelling a device with no active session, or one whose timer has
// already fired, is a no-op: it returns false with no error.
func (c *Controller) CancelPreview(ctx context.Context, deviceID string) (bool, error) {
	c.mu.Lock()
	sr, ok := c.sessions[deviceID]
	if !ok {
		c.mu.Unlock()
		return false, nil
	}
	if !sr.timer.Stop() {
		// The timer fired already; the expiry path owns the restore.
		c.mu.Unlock()
		return false, nil
	}
	delete(c.sessions, deviceID)
	c.mu.Unlock()

	err := c.client.SetState(ctx, sr.ip, sr.session.Restore.Patch())
	status := StatusCancelled
	if err != nil {
		status = StatusRestoreFailed
	}

	c.mu.Lock()
	sr.session.Status = status
	c.mu.Unlock()
	c.notify(sr, status)

	if err != nil {
		c.logger.Warn("cancel restore failed", "device", deviceID, "error", err)
		return true, fmt.Errorf("%w: %s: %w", ErrRestoreFailed, deviceID, err)
	}
	c.logger.Info("preview cancelled", "device", deviceID)
	return true, nil
}

// Active returns the session for a device, if one is active.
func (c *Controller) Active(deviceID string) (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sr, ok := c.sessions[deviceID]
	if !ok {
		return Session{}, false
	}
	return sr.session, true
}

// ActiveCount returns the number of previews currently running.
func (c *Controller) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// expire runs on the timer goroutine when a preview's duration elapses.
func (c *Controller) expire(deviceID string, sr *sessionRecord) {
	c.mu.Lock()
	if c.sessions[deviceID] != sr {
		// Superseded between the timer firing and this goroutine
		// taking the lock. The newer session owns the device now.
		c.mu.Unlock()
		return
	}
	delete(c.sessions, deviceID)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.restoreTimeout)
	defer cancel()

	err := c.client.SetState(ctx, sr.ip, sr.session.Restore.Patch())
	status := StatusExpired
	if err != nil {
		// Reported and terminated; the controller does not keep
		// retrying against a device that has gone away.
		status = StatusRestoreFailed
		c.logger.Warn("expiry restore failed", "device", deviceID, "error", err)
	} else {
		c.logger.Info("preview expired, state restored", "device", deviceID)
	}

	c.mu.Lock()
	sr.session.Status = status
	c.mu.Unlock()
	c.notify(sr, status)
}

func (c *Controller) notify(sr *sessionRecord, status Status) {
	if c.restoreHook == nil {
		return
	}
	c.restoreHook(sr.session.DeviceID, sr.session.Restore, status)
}
