package influxdb

import "errors"

// Sentinel errors for telemetry operations. Check with errors.Is.
//
// Most write failures never surface here: the write API is batched and
// asynchronous, so they arrive through the SetOnError callback instead.
var (
	// ErrNotConnected indicates the client has been closed or never
	// connected.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial ping failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates telemetry is switched off in config; the
	// caller should run without a telemetry sink rather than treat this
	// as a fault.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
