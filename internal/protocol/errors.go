package protocol

import (
	"errors"
	"fmt"
)

// Domain errors for the protocol package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, protocol.ErrMalformedPayload) {
//	    // skip the datagram
//	}
var (
	// ErrMalformedPayload is returned when a datagram is not valid JSON or
	// lacks the required method/result/error envelope shape.
	ErrMalformedPayload = errors.New("protocol: malformed payload")

	// ErrInvalidMethod is returned when encoding a request with an empty method.
	ErrInvalidMethod = errors.New("protocol: method is required")
)

// DeviceError is an error reported by the device itself inside a response
// envelope. The code values come from the device firmware (for example
// -32601 "Method not found").
type DeviceError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("protocol: device error %d: %s", e.Code, e.Message)
}
