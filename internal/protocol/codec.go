package protocol

import (
	"encoding/json"
	"fmt"
)

// Method names understood by WiZ devices.
//
// Registration doubles as the discovery probe: broadcast on the local
// subnet, every device answers with its MAC address. The remaining
// methods are unicast control/query calls.
const (
	MethodRegistration    = "registration"
	MethodGetPilot        = "getPilot"
	MethodSetPilot        = "setPilot"
	MethodGetSystemConfig = "getSystemConfig"
)

// Request is the JSON envelope sent to a device.
//
// ID is a per-session sequence number used to correlate the response;
// devices echo it back. A zero ID is omitted from the wire (the
// registration broadcast is uncorrelated).
type Request struct {
	Method string `json:"method"`
	ID     uint32 `json:"id,omitempty"`
	Params any    `json:"params,omitempty"`
}

// Response is the JSON envelope received from a device.
//
// Exactly one of Result or Error is present in a well-formed response.
// Result is kept raw so callers can decode it into the payload type
// appropriate for the method (PilotState, SystemConfig, ...).
type Response struct {
	Method string          `json:"method"`
	ID     uint32          `json:"id,omitempty"`
	Env    string          `json:"env,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
}

// ResponseError is the error object carried in a failure response.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Encode builds the request datagram for a method call.
//
// Returns ErrInvalidMethod for an empty method name. Params may be nil
// for parameterless queries such as getPilot.
func Encode(method string, id uint32, params any) ([]byte, error) {
	if method == "" {
		return nil, ErrInvalidMethod
	}

	data, err := json.Marshal(Request{Method: method, ID: id, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}
	return data, nil
}

// Decode parses a response datagram.
//
// Returns ErrMalformedPayload when the datagram is not valid JSON, has
// no method name, or carries neither a result nor an error object.
// A response that carries both is also rejected - the envelope is
// ambiguous and trusting either half would be a guess.
func Decode(datagram []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(datagram, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if resp.Method == "" {
		return nil, fmt.Errorf("%w: missing method", ErrMalformedPayload)
	}
	hasResult := len(resp.Result) > 0 && string(resp.Result) != "null"
	hasError := resp.Error != nil
	if hasResult == hasError {
		return nil, fmt.Errorf("%w: envelope must carry exactly one of result or error", ErrMalformedPayload)
	}

	return &resp, nil
}

// Err returns the device-reported error as a *DeviceError, or nil for a
// success response.
func (r *Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return &DeviceError{Code: r.Error.Code, Message: r.Error.Message}
}

// DecodeResult unmarshals the result object into v.
//
// It is the caller's job to pass the payload type matching the method
// that produced the response.
func (r *Response) DecodeResult(v any) error {
	if len(r.Result) == 0 {
		return fmt.Errorf("%w: empty result", ErrMalformedPayload)
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("%w: decoding %s result: %w", ErrMalformedPayload, r.Method, err)
	}
	return nil
}
