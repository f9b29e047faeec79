package discovery

import "errors"

// Domain errors for the discovery package.
var (
	// ErrDiscoveryFailed is returned when the broadcast send fails and
	// the cycle is aborted. The previous directory remains valid.
	ErrDiscoveryFailed = errors.New("discovery: cycle failed")

	// ErrDiscoveryBusy is returned when a cycle is triggered while
	// another is still broadcasting or collecting.
	ErrDiscoveryBusy = errors.New("discovery: cycle already in progress")

	// ErrUnknownDevice is returned when an identifier is not present in
	// the directory.
	ErrUnknownDevice = errors.New("discovery: unknown device")
)
