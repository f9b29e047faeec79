package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteLightState writes a device state observation to InfluxDB.
//
// This is the primary method for recording lighting telemetry. One point
// per confirmed state change or discovery refresh.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Lowercase MAC identifier (e.g., "a1b2c3d4e5f6")
//   - room: Room name from the home structure ("" when unassigned)
//   - power: Whether the light is on
//   - brightness: Brightness percentage 0-100
//
// Example:
//
//	client.WriteLightState("a1b2c3d4e5f6", "living_room", true, 80)
func (c *Client) WriteLightState(deviceID, room string, power bool, brightness int) {
	if !c.IsConnected() {
		return
	}

	powerValue := 0
	if power {
		powerValue = 1
	}

	tags := map[string]string{
		"device_id": deviceID,
	}
	if room != "" {
		tags["room"] = room
	}

	point := write.NewPoint(
		"light_state",
		tags,
		map[string]interface{}{
			"power":      powerValue,
			"brightness": brightness,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSignalStrength writes a device RSSI reading.
//
// RSSI arrives with every pilot response, so this gives a per-device
// Wi-Fi quality series for free.
//
// Parameters:
//   - deviceID: Lowercase MAC identifier
//   - rssi: Signal strength in dBm (negative, closer to 0 is better)
func (c *Client) WriteSignalStrength(deviceID string, rssi int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"signal_strength",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"rssi": rssi,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDiscoveryCycle writes summary metrics for one discovery cycle.
//
// Parameters:
//   - devicesFound: Devices that answered the broadcast
//   - evicted: Stale entries removed this cycle
//   - duration: Wall-clock time of the full cycle
func (c *Client) WriteDiscoveryCycle(devicesFound, evicted int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"discovery_cycle",
		nil,
		map[string]interface{}{
			"devices_found": devicesFound,
			"evicted":       evicted,
			"duration_ms":   duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
