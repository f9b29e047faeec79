package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/wiz-local-core/internal/history"
	"github.com/nerrad567/wiz-local-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/wiz-local-core/internal/preview"
	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// Command is the JSON body accepted on the device set topics and by
// host callers that speak JSON. Nil fields leave the device aspect
// untouched. A positive PreviewSeconds turns the command into a
// time-boxed preview instead of a permanent change.
type Command struct {
	Power           *bool         `json:"power,omitempty"`
	Brightness      *int          `json:"brightness,omitempty"`
	Color           *protocol.RGB `json:"color,omitempty"`
	ColorTempKelvin *int          `json:"color_temp_kelvin,omitempty"`
	SceneID         *int          `json:"scene_id,omitempty"`
	SceneSpeed      *int          `json:"scene_speed,omitempty"`
	PreviewSeconds  int           `json:"preview_seconds,omitempty"`
}

// Patch converts the command into the session-layer state patch.
func (c Command) Patch() protocol.StatePatch {
	return protocol.StatePatch{
		Power:           c.Power,
		Brightness:      c.Brightness,
		Color:           c.Color,
		ColorTempKelvin: c.ColorTempKelvin,
		SceneID:         c.SceneID,
		SceneSpeed:      c.SceneSpeed,
	}
}

// ControlDevice applies a state patch to a device and confirms it with
// a read-back. The confirmed snapshot becomes the directory's
// last-known-good state and is fanned out to the side channels.
//
// The patch is validated before any network traffic. A device that
// accepts the patch but cannot be read back afterwards returns the
// read error; the mutation has been applied at that point.
func (s *Service) ControlDevice(ctx context.Context, deviceID string, patch protocol.StatePatch) (protocol.StateSnapshot, error) {
	rec, err := s.discovery.Directory().Get(deviceID)
	if err != nil {
		return protocol.StateSnapshot{}, err
	}

	if err := s.devices.SetState(ctx, rec.IP, patch); err != nil {
		return protocol.StateSnapshot{}, fmt.Errorf("controlling %s: %w", deviceID, err)
	}

	confirmed, err := s.devices.GetState(ctx, rec.IP)
	if err != nil {
		return protocol.StateSnapshot{}, fmt.Errorf("confirming %s: %w", deviceID, err)
	}

	s.discovery.Directory().RecordState(deviceID, confirmed, time.Now().UTC())
	s.recordState(ctx, deviceID, confirmed, history.SourceControl)
	s.log.Info("device controlled", "device", deviceID, "power", confirmed.Power, "brightness", confirmed.Brightness)

	return confirmed, nil
}

// StartPreview applies a temporary state override with a scheduled
// restore. Durations above the configured maximum are rejected with
// ErrPreviewTooLong before the controller is involved.
func (s *Service) StartPreview(ctx context.Context, deviceID string, requested protocol.StatePatch, duration time.Duration) (preview.Session, error) {
	if limit := s.cfg.PreviewMaxDuration(); limit > 0 && duration > limit {
		return preview.Session{}, fmt.Errorf("%w: %s > %s", ErrPreviewTooLong, duration, limit)
	}

	session, err := s.preview.StartPreview(ctx, deviceID, requested, duration)
	if err != nil {
		// On ErrApplyFailed the session is live and its restore is
		// scheduled; the caller sees both. No side-channel records are
		// written for a state that never landed.
		return session, err
	}

	previewed := applyPatch(session.Restore, requested)
	s.recordState(ctx, deviceID, previewed, history.SourcePreview)
	s.publishPreviewEvent(deviceID, session.Status, session.Duration)

	return session, nil
}

// CancelPreview restores a previewed device ahead of its timer. A
// device with no active preview returns (false, nil).
func (s *Service) CancelPreview(ctx context.Context, deviceID string) (bool, error) {
	return s.preview.CancelPreview(ctx, deviceID)
}

// ActivePreview returns the preview session for a device, if any.
func (s *Service) ActivePreview(deviceID string) (preview.Session, bool) {
	return s.preview.Active(deviceID)
}

// onRestore is the preview controller's restore hook. A successful
// restore is a state change like any other: the directory, history,
// telemetry and retained MQTT state all pick it up.
func (s *Service) onRestore(deviceID string, restored protocol.StateSnapshot, status preview.Status) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if status == preview.StatusCancelled || status == preview.StatusExpired {
		s.discovery.Directory().RecordState(deviceID, restored, time.Now().UTC())
		s.recordState(ctx, deviceID, restored, history.SourceRestore)
	}
	s.publishPreviewEvent(deviceID, status, 0)
}

// handleSetMessage is the MQTT command ingress. One malformed or
// failing command is logged (via the bus handler wrapper) and never
// affects other devices.
func (s *Service) handleSetMessage(topic string, payload []byte) error {
	deviceID := mqtt.DeviceIDFromSetTopic(topic)
	if deviceID == "" {
		return fmt.Errorf("unrecognised command topic %q", topic)
	}

	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("parsing command for %s: %w", deviceID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*s.cfg.ControlTimeout()+time.Second)
	defer cancel()

	if cmd.PreviewSeconds > 0 {
		_, err := s.StartPreview(ctx, deviceID, cmd.Patch(), time.Duration(cmd.PreviewSeconds)*time.Second)
		return err
	}

	_, err := s.ControlDevice(ctx, deviceID, cmd.Patch())
	return err
}

// applyPatch projects a patch onto a snapshot, producing the state the
// device is expected to hold after the patch lands.
func applyPatch(base protocol.StateSnapshot, p protocol.StatePatch) protocol.StateSnapshot {
	out := base.Clone()
	if p.Power != nil {
		out.Power = *p.Power
	}
	if p.Brightness != nil {
		out.Brightness = *p.Brightness
	}
	if p.Color != nil {
		c := *p.Color
		out.Color = &c
	}
	if p.ColorTempKelvin != nil {
		k := *p.ColorTempKelvin
		out.ColorTempKelvin = &k
	}
	if p.SceneID != nil {
		id := *p.SceneID
		out.SceneID = &id
	}
	if p.SceneSpeed != nil {
		out.SceneSpeed = *p.SceneSpeed
	}
	return out
}
