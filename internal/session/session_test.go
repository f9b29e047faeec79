package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/wiz-local-core/internal/protocol"
)

// fakeDialer hands out one end of an in-memory pipe and runs a device
// script against the other end. Each Dial is one attempt, so the dial
// count observes the retry behaviour.
type fakeDialer struct {
	mu    sync.Mutex
	dials int
	// script is invoked per attempt with the attempt number (1-based)
	// and the device side of the pipe.
	script func(attempt int, conn net.Conn)
}

func (d *fakeDialer) Dial(_ context.Context, _ string) (net.Conn, error) {
	d.mu.Lock()
	d.dials++
	attempt := d.dials
	d.mu.Unlock()

	client, device := net.Pipe()
	go func() {
		defer device.Close()
		d.script(attempt, device)
	}()
	return client, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// readRequest reads and decodes one request envelope from the device
// side of the pipe.
func readRequest(t *testing.T, conn net.Conn) protocol.Request {
	t.Helper()

	buf := make([]byte, 2048)
	conn.SetReadDeadline(time.Now().Add(time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Errorf("device read failed: %v", err)
		return protocol.Request{}
	}

	var req protocol.Request
	if err := json.Unmarshal(buf[:n], &req); err != nil {
		t.Errorf("device could not decode request: %v", err)
	}
	return req
}

func reply(conn net.Conn, format string, args ...any) {
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	fmt.Fprintf(conn, format, args...)
}

func newTestSession(d Dialer) *Session {
	s := New(Config{Timeout: 100 * time.Millisecond})
	s.SetDialer(d)
	return s
}

func TestGetState(t *testing.T) {
	dialer := &fakeDialer{script: func(_ int, conn net.Conn) {
		req := readRequest(t, conn)
		if req.Method != protocol.MethodGetPilot {
			t.Errorf("method = %q, want getPilot", req.Method)
		}
		reply(conn, `{"method":"getPilot","id":%d,"result":{"mac":"a8bb5006033d","rssi":-60,"state":true,"dimming":42,"temp":2700,"sceneId":0,"speed":100}}`, req.ID)
	}}

	s := newTestSession(dialer)
	snap, err := s.GetState(context.Background(), "192.168.1.10")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	if !snap.Power || snap.Brightness != 42 {
		t.Errorf("snapshot = %+v, want power on at 42%%", snap)
	}
	if snap.ColorTempKelvin == nil || *snap.ColorTempKelvin != 2700 {
		t.Errorf("ColorTempKelvin = %v, want 2700", snap.ColorTempKelvin)
	}
	if dialer.dialCount() != 1 {
		t.Errorf("dials = %d, want 1", dialer.dialCount())
	}
}

func TestExchange_DiscardsUncorrelatedReplies(t *testing.T) {
	dialer := &fakeDialer{script: func(_ int, conn net.Conn) {
		req := readRequest(t, conn)
		// A stale reply with the wrong sequence number, then a push
		// notification with a different method, then the real answer.
		reply(conn, `{"method":"getPilot","id":%d,"result":{"mac":"ff","state":false,"dimming":10}}`, req.ID+100)
		reply(conn, `{"method":"syncPilot","result":{"mac":"ff"}}`)
		reply(conn, `{"method":"getPilot","id":%d,"result":{"mac":"a8","state":true,"dimming":70}}`, req.ID)
	}}

	s := newTestSession(dialer)
	snap, err := s.GetState(context.Background(), "192.168.1.10")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if snap.Brightness != 70 {
		t.Errorf("Brightness = %d, want 70 (from the correlated reply)", snap.Brightness)
	}
}

func TestExchange_RetryOnceThenUnreachable(t *testing.T) {
	dialer := &fakeDialer{script: func(_ int, conn net.Conn) {
		// Swallow the request, never answer.
		readRequest(t, conn)
		time.Sleep(300 * time.Millisecond)
	}}

	s := newTestSession(dialer)
	_, err := s.GetState(context.Background(), "192.168.1.10")
	if !errors.Is(err, ErrDeviceUnreachable) {
		t.Fatalf("GetState() error = %v, want ErrDeviceUnreachable", err)
	}
	if dialer.dialCount() != 2 {
		t.Errorf("dials = %d, want exactly 2 (one send plus one retry)", dialer.dialCount())
	}
}

func TestExchange_SecondAttemptSucceeds(t *testing.T) {
	dialer := &fakeDialer{script: func(attempt int, conn net.Conn) {
		req := readRequest(t, conn)
		if attempt == 1 {
			// Simulate a dropped reply: stay silent past the timeout.
			time.Sleep(250 * time.Millisecond)
			return
		}
		reply(conn, `{"method":"getPilot","id":%d,"result":{"mac":"a8","state":true,"dimming":55}}`, req.ID)
	}}

	s := newTestSession(dialer)
	snap, err := s.GetState(context.Background(), "192.168.1.10")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if snap.Brightness != 55 {
		t.Errorf("Brightness = %d, want 55", snap.Brightness)
	}
	if dialer.dialCount() != 2 {
		t.Errorf("dials = %d, want 2", dialer.dialCount())
	}
}

func TestSetState(t *testing.T) {
	dialer := &fakeDialer{script: func(_ int, conn net.Conn) {
		req := readRequest(t, conn)
		if req.Method != protocol.MethodSetPilot {
			t.Errorf("method = %q, want setPilot", req.Method)
		}
		reply(conn, `{"method":"setPilot","id":%d,"result":{"success":true}}`, req.ID)
	}}

	s := newTestSession(dialer)
	on := true
	brightness := 80
	err := s.SetState(context.Background(), "192.168.1.10", protocol.StatePatch{Power: &on, Brightness: &brightness})
	if err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
}

func TestSetState_ValidationBeforeNetwork(t *testing.T) {
	dialer := &fakeDialer{script: func(_ int, conn net.Conn) {
		t.Error("no datagram should be sent for an invalid patch")
	}}
	s := newTestSession(dialer)

	if err := s.SetState(context.Background(), "192.168.1.10", protocol.StatePatch{}); !errors.Is(err, ErrEmptyPatch) {
		t.Errorf("empty patch error = %v, want ErrEmptyPatch", err)
	}

	bad := 250
	err := s.SetState(context.Background(), "192.168.1.10", protocol.StatePatch{Brightness: &bad})
	if !errors.Is(err, protocol.ErrInvalidState) {
		t.Errorf("invalid patch error = %v, want protocol.ErrInvalidState", err)
	}

	if dialer.dialCount() != 0 {
		t.Errorf("dials = %d, want 0", dialer.dialCount())
	}
}

func TestSetState_Rejected(t *testing.T) {
	dialer := &fakeDialer{script: func(_ int, conn net.Conn) {
		req := readRequest(t, conn)
		reply(conn, `{"method":"setPilot","id":%d,"result":{"success":false}}`, req.ID)
	}}

	s := newTestSession(dialer)
	on := true
	err := s.SetState(context.Background(), "192.168.1.10", protocol.StatePatch{Power: &on})
	if !errors.Is(err, ErrCommandRejected) {
		t.Errorf("SetState() error = %v, want ErrCommandRejected", err)
	}
}

func TestSendRaw_DeviceError(t *testing.T) {
	dialer := &fakeDialer{script: func(_ int, conn net.Conn) {
		req := readRequest(t, conn)
		reply(conn, `{"method":"frobnicate","id":%d,"error":{"code":-32601,"message":"Method not found"}}`, req.ID)
	}}

	s := newTestSession(dialer)
	resp, err := s.SendRaw(context.Background(), "192.168.1.10", "frobnicate", nil)
	if err != nil {
		t.Fatalf("SendRaw() error = %v", err)
	}

	var devErr *protocol.DeviceError
	if !errors.As(resp.Err(), &devErr) {
		t.Fatalf("Err() = %v, want *protocol.DeviceError", resp.Err())
	}
}

func TestLockFor_SameIPSameLock(t *testing.T) {
	s := New(Config{})
	if s.lockFor("10.0.0.1") != s.lockFor("10.0.0.1") {
		t.Error("lockFor should return the same lock for the same IP")
	}
	if s.lockFor("10.0.0.1") == s.lockFor("10.0.0.2") {
		t.Error("lockFor should return distinct locks for distinct IPs")
	}
}
