package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the wizlocal MQTT namespace.
//
// The core is the only publisher on state topics; consumers (dashboards,
// automations) publish on the set topics to request device changes.
const (
	// TopicPrefix is the base for all wizlocal topics.
	TopicPrefix = "wizlocal"

	// TopicPrefixCore is the base for core-published topics.
	TopicPrefixCore = "wizlocal/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "wizlocal/system"
)

// Topics provides builders for wizlocal MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DeviceState("a1b2c3d4e5f6")
//	// Returns: "wizlocal/core/device/a1b2c3d4e5f6/state"
type Topics struct{}

// DeviceState returns the canonical device state topic.
// Published retained by the core after every confirmed state change
// (discovery refresh, control command, preview, restore).
//
// Example: wizlocal/core/device/a1b2c3d4e5f6/state
func (Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefixCore, deviceID)
}

// DeviceSet returns the command ingress topic for a device.
// External publishers send a state patch JSON here; the core applies it
// and republishes the confirmed state on DeviceState.
//
// Example: wizlocal/core/device/a1b2c3d4e5f6/set
func (Topics) DeviceSet(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/set", TopicPrefixCore, deviceID)
}

// DevicePreview returns the preview lifecycle topic for a device.
// The core publishes preview start, cancel, expiry and restore outcomes here.
//
// Example: wizlocal/core/device/a1b2c3d4e5f6/preview
func (Topics) DevicePreview(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/preview", TopicPrefixCore, deviceID)
}

// Discovery returns the topic for discovery cycle summaries.
//
// Example: wizlocal/core/discovery
func (Topics) Discovery() string {
	return fmt.Sprintf("%s/discovery", TopicPrefixCore)
}

// Structure returns the topic for the reconciled home view.
// Published retained after every discovery cycle so new subscribers see
// the current room layout without waiting for the next cycle.
//
// Example: wizlocal/core/structure
func (Topics) Structure() string {
	return fmt.Sprintf("%s/structure", TopicPrefixCore)
}

// SystemStatus returns the system status topic.
// Used for online/offline announcements and the LWT message.
//
// Example: wizlocal/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDeviceSets returns the wildcard pattern matching every device
// command topic. The core's one subscription: control requests over
// MQTT arrive here.
//
// Pattern: wizlocal/core/device/+/set
func (Topics) AllDeviceSets() string {
	return fmt.Sprintf("%s/device/+/set", TopicPrefixCore)
}

// DeviceIDFromSetTopic extracts the device ID from a set topic.
// Returns an empty string when the topic does not match the set scheme.
func DeviceIDFromSetTopic(topic string) string {
	rest, ok := strings.CutPrefix(topic, TopicPrefixCore+"/device/")
	if !ok {
		return ""
	}
	deviceID, ok := strings.CutSuffix(rest, "/set")
	if !ok || deviceID == "" || strings.Contains(deviceID, "/") {
		return ""
	}
	return deviceID
}
