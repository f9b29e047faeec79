package discovery

import (
	"time"

	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// DeviceRecord is one entry in the device directory.
//
// Records are owned exclusively by the discovery service: they are
// created or refreshed on receipt of a registration reply, their
// last-known-good state is updated after a successful control call, and
// they are evicted when unseen beyond the staleness threshold. The ID
// is derived from the hardware MAC and is stable across discovery
// cycles and DHCP lease changes; the IP is merely the current address.
type DeviceRecord struct {
	// ID is the lowercase hardware MAC reported by the device.
	ID string `json:"id"`

	// IP is the current IPv4 address. Updated in place when a known
	// device answers from a new address.
	IP string `json:"ip"`

	// Model is the firmware module name (e.g. "ESP01_SHRGB1C_31").
	Model string `json:"model,omitempty"`

	// FirmwareVersion as reported by getSystemConfig.
	FirmwareVersion string `json:"firmware_version,omitempty"`

	// Capabilities derived from the module name.
	Capabilities CapabilitySet `json:"capabilities"`

	// LastSeen is when the device last answered a registration or
	// control call (UTC).
	LastSeen time.Time `json:"last_seen"`

	// LastState is the last-known-good state snapshot, or nil if the
	// device has never been queried successfully.
	LastState *protocol.StateSnapshot `json:"last_state,omitempty"`
}

// DeepCopy returns an independent copy of the record.
func (r *DeviceRecord) DeepCopy() *DeviceRecord {
	if r == nil {
		return nil
	}
	cpy := *r
	cpy.Capabilities = r.Capabilities.clone()
	if r.LastState != nil {
		state := r.LastState.Clone()
		cpy.LastState = &state
	}
	return &cpy
}

// CapabilitySet describes what a device can do, derived from its
// hardware class.
type CapabilitySet struct {
	// Color is true for RGB hardware.
	Color bool `json:"color"`

	// ColorTemp is true when the white spectrum is tunable.
	ColorTemp bool `json:"color_temp"`

	// Effects is true when the device runs scene effects at all.
	Effects bool `json:"effects"`

	// SceneIDs is the effect catalogue for this hardware class.
	SceneIDs []int `json:"scene_ids,omitempty"`
}

func (c CapabilitySet) clone() CapabilitySet {
	cpy := c
	if c.SceneIDs != nil {
		cpy.SceneIDs = make([]int, len(c.SceneIDs))
		copy(cpy.SceneIDs, c.SceneIDs)
	}
	return cpy
}
