package protocol

import (
	"errors"
	"testing"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	on := true
	dim := 60
	datagram, err := Encode(MethodSetPilot, 7, PilotParams{State: &on, Dimming: &dim})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// Devices echo the method and id around their result object. Simulate
	// the acknowledgement a bulb would send for this request.
	reply := []byte(`{"method":"setPilot","id":7,"env":"pro","result":{"success":true}}`)
	resp, err := Decode(reply)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if resp.Method != MethodSetPilot {
		t.Errorf("Method = %q, want %q", resp.Method, MethodSetPilot)
	}
	if resp.ID != 7 {
		t.Errorf("ID = %d, want 7", resp.ID)
	}
	if resp.Err() != nil {
		t.Errorf("Err() = %v, want nil", resp.Err())
	}

	var ack SetPilotResult
	if err := resp.DecodeResult(&ack); err != nil {
		t.Fatalf("DecodeResult() error = %v", err)
	}
	if !ack.Success {
		t.Error("ack.Success = false, want true")
	}

	// The request datagram itself must decode as a request envelope.
	if len(datagram) == 0 {
		t.Fatal("Encode() produced empty datagram")
	}
}

func TestEncode_EmptyMethod(t *testing.T) {
	if _, err := Encode("", 1, nil); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("Encode() error = %v, want ErrInvalidMethod", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		datagram string
	}{
		{"not json", `{{{nope`},
		{"empty", ``},
		{"missing method", `{"result":{"success":true}}`},
		{"neither result nor error", `{"method":"getPilot"}`},
		{"both result and error", `{"method":"getPilot","result":{},"error":{"code":1,"message":"x"}}`},
		{"null result only", `{"method":"getPilot","result":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.datagram))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformedPayload", tt.datagram, err)
			}
		})
	}
}

func TestDecode_DeviceError(t *testing.T) {
	reply := []byte(`{"method":"setPilot","id":3,"error":{"code":-32601,"message":"Method not found"}}`)
	resp, err := Decode(reply)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	devErr := resp.Err()
	if devErr == nil {
		t.Fatal("Err() = nil, want device error")
	}

	var de *DeviceError
	if !errors.As(devErr, &de) {
		t.Fatalf("Err() type = %T, want *DeviceError", devErr)
	}
	if de.Code != -32601 {
		t.Errorf("Code = %d, want -32601", de.Code)
	}
}

func TestDecode_RegistrationReply(t *testing.T) {
	reply := []byte(`{"method":"registration","env":"pro","result":{"mac":"a8bb5006033d","success":true}}`)
	resp, err := Decode(reply)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var reg RegistrationResult
	if err := resp.DecodeResult(&reg); err != nil {
		t.Fatalf("DecodeResult() error = %v", err)
	}
	if reg.Mac != "a8bb5006033d" {
		t.Errorf("Mac = %q, want %q", reg.Mac, "a8bb5006033d")
	}
}
