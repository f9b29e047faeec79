package session

import "errors"

// Domain errors for the session package.
var (
	// ErrDeviceUnreachable is returned when a device does not answer
	// within the timeout after the automatic retry, or cannot be dialled.
	ErrDeviceUnreachable = errors.New("session: device unreachable")

	// ErrCommandRejected is returned when the device acknowledges a
	// setPilot but reports success=false.
	ErrCommandRejected = errors.New("session: command rejected by device")

	// ErrEmptyPatch is returned when SetState is called with a patch
	// that mutates nothing.
	ErrEmptyPatch = errors.New("session: empty state patch")
)
