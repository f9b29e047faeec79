// Package core wires the device-facing layers into one host facade.
//
// The Service owns the five host entry points:
//   - Discover: run a discovery cycle on demand
//   - ReconciledDevices: the room-aware view of the directory
//   - ControlDevice: apply a state patch and confirm it
//   - StartPreview / CancelPreview: time-boxed effect previews
//
// Around the control path it drives the ambient side channels: every
// confirmed state snapshot is appended to the sqlite history, published
// retained over MQTT, and written to InfluxDB when telemetry is
// configured. Side channels are strictly best effort; a broker or sink
// failure is logged and never fails the control call that triggered it.
//
//	                    ┌────────────┐
//	 MQTT set topics ──▶│            │──▶ session ──▶ WiZ devices (UDP)
//	 host callers    ──▶│  Service   │
//	                    │            │──▶ history (sqlite)
//	                    └────────────┘──▶ MQTT retained state
//	                                  └─▶ InfluxDB telemetry
package core
