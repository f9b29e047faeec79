package core

import (
	"encoding/json"
	"time"

	"github.com/nerrad567/wiz-local-core/internal/home"
	"github.com/nerrad567/wiz-local-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/wiz-local-core/internal/preview"
	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// deviceStateMessage is the retained per-device state document.
type deviceStateMessage struct {
	ID        string                  `json:"id"`
	IP        string                  `json:"ip"`
	Model     string                  `json:"model,omitempty"`
	Room      string                  `json:"room,omitempty"`
	Name      string                  `json:"name,omitempty"`
	State     *protocol.StateSnapshot `json:"state,omitempty"`
	LastSeen  time.Time               `json:"last_seen"`
	Timestamp time.Time               `json:"timestamp"`
}

// discoveryMessage summarises one completed cycle.
type discoveryMessage struct {
	DevicesFound int       `json:"devices_found"`
	Evicted      int       `json:"evicted"`
	DurationMS   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// previewMessage reports a preview lifecycle transition.
type previewMessage struct {
	DeviceID        string    `json:"device_id"`
	Status          string    `json:"status"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// structureMessage is the retained reconciled home view.
type structureMessage struct {
	Home      string                  `json:"home,omitempty"`
	Devices   []home.ReconciledDevice `json:"devices"`
	Timestamp time.Time               `json:"timestamp"`
}

// publish marshals and sends one message, logging failures. All MQTT
// traffic is best effort by contract.
func (s *Service) publish(topic string, msg any, retained bool) {
	if s.bus == nil {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshalling mqtt message", "topic", topic, "error", err)
		return
	}

	if retained {
		err = s.bus.PublishRetained(topic, payload)
	} else {
		err = s.bus.Publish(topic, payload, s.qos, false)
	}
	if err != nil {
		s.log.Warn("mqtt publish failed", "topic", topic, "error", err)
	}
}

// publishDeviceState publishes the retained canonical state for one
// device from its current directory record.
func (s *Service) publishDeviceState(deviceID string) {
	if s.bus == nil {
		return
	}

	rec, err := s.discovery.Directory().Get(deviceID)
	if err != nil {
		return
	}
	room, name := s.placement(deviceID)

	s.publish(mqtt.Topics{}.DeviceState(deviceID), deviceStateMessage{
		ID:        rec.ID,
		IP:        rec.IP,
		Model:     rec.Model,
		Room:      room,
		Name:      name,
		State:     rec.LastState,
		LastSeen:  rec.LastSeen,
		Timestamp: time.Now().UTC(),
	}, true)
}

func (s *Service) publishDiscoverySummary(found, evicted int, elapsed time.Duration) {
	s.publish(mqtt.Topics{}.Discovery(), discoveryMessage{
		DevicesFound: found,
		Evicted:      evicted,
		DurationMS:   elapsed.Milliseconds(),
		Timestamp:    time.Now().UTC(),
	}, false)
}

func (s *Service) publishStructureView() {
	if s.bus == nil {
		return
	}

	msg := structureMessage{
		Devices:   s.ReconciledDevices(),
		Timestamp: time.Now().UTC(),
	}
	if structure := s.structureSnapshot(); structure != nil {
		msg.Home = structure.Name
	}
	s.publish(mqtt.Topics{}.Structure(), msg, true)
}

func (s *Service) publishPreviewEvent(deviceID string, status preview.Status, duration time.Duration) {
	s.publish(mqtt.Topics{}.DevicePreview(deviceID), previewMessage{
		DeviceID:        deviceID,
		Status:          string(status),
		DurationSeconds: int(duration / time.Second),
		Timestamp:       time.Now().UTC(),
	}, false)
}
