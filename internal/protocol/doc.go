// Package protocol implements the WiZ JSON-over-UDP wire format.
//
// Every exchange with a device is a single datagram carrying a JSON
// envelope: requests are {"method": ..., "id": ..., "params": {...}},
// responses carry either a "result" object or an "error" object with a
// numeric code and message. The package is pure transformation - it
// performs no I/O and holds no state, so it can be unit tested in
// isolation and reused by both the per-device session and the
// discovery broadcaster.
//
// # Key Types
//
//   - Request / Response: the wire envelope
//   - PilotParams / PilotState: the device "pilot" (light state) payloads
//   - StateSnapshot / StatePatch: the typed state model used above the wire
//
// The pilot field names (state, dimming, r, g, b, temp, sceneId, speed)
// follow the device firmware vocabulary and must not be renamed.
package protocol
