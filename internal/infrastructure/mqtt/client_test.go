package mqtt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/wiz-local-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "wizlocal-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// disconnectedClient returns a client that was never connected.
// Validation paths and connection-state guards can be exercised without
// a running broker.
func disconnectedClient() *Client {
	return &Client{
		cfg:           testConfig(),
		subscriptions: make(map[string]subscription),
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v, want nil", err)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "core"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("got %d brokers, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://127.0.0.1:1883" {
		t.Errorf("broker URL = %q, want tcp://127.0.0.1:1883", got)
	}
	if opts.ClientID != "wizlocal-test" {
		t.Errorf("ClientID = %q, want wizlocal-test", opts.ClientID)
	}
	if opts.Username != "core" {
		t.Errorf("Username = %q, want core", opts.Username)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect = false, want true")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("broker scheme = %q, want ssl", got)
	}
	if opts.TLSConfig == nil {
		t.Error("TLSConfig is nil with TLS enabled")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "wizlocal-test")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false after configureLWT")
	}
	if opts.WillTopic != "wizlocal/system/status" {
		t.Errorf("WillTopic = %q, want wizlocal/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}
	payload := string(opts.WillPayload)
	for _, want := range []string{`"status":"offline"`, `"client_id":"wizlocal-test"`, "unexpected_disconnect"} {
		if !strings.Contains(payload, want) {
			t.Errorf("will payload %q missing %q", payload, want)
		}
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("wizlocal-test")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload %q missing status", online)
	}

	offline := buildOfflinePayload("wizlocal-test")
	if !strings.Contains(offline, "graceful_shutdown") {
		t.Errorf("offline payload %q missing reason", offline)
	}
}

func TestPublishValidation(t *testing.T) {
	client := disconnectedClient()

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "wizlocal/core/discovery", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "wizlocal/core/discovery", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "wizlocal/core/discovery", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := disconnectedClient()
	handler := func(topic string, payload []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Subscribe("wizlocal/#", 3, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe() qos 3 error = %v, want ErrInvalidQoS", err)
	}
	if err := client.Subscribe("wizlocal/#", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() nil handler error = %v, want ErrSubscribeFailed", err)
	}
	if err := client.Subscribe("wizlocal/#", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() disconnected error = %v, want ErrNotConnected", err)
	}

	// Failed subscriptions must not be tracked.
	client.subMu.RLock()
	tracked := len(client.subscriptions)
	client.subMu.RUnlock()
	if tracked != 0 {
		t.Errorf("tracked subscriptions = %d, want 0", tracked)
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := disconnectedClient()

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := disconnectedClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

func TestSetLogger(t *testing.T) {
	client := disconnectedClient()

	logger := &mockLogger{}
	client.SetLogger(logger)
	if client.getLogger() == nil {
		t.Error("getLogger() = nil after SetLogger()")
	}

	client.SetLogger(nil)
	if client.getLogger() != nil {
		t.Error("getLogger() != nil after SetLogger(nil)")
	}
}

func TestCallbacks(t *testing.T) {
	client := disconnectedClient()

	var connects, disconnects int
	client.SetOnConnect(func() { connects++ })
	client.SetOnDisconnect(func(err error) { disconnects++ })

	client.handleDisconnect(errors.New("broker gone"))
	if disconnects != 1 {
		t.Errorf("disconnect callbacks = %d, want 1", disconnects)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after handleDisconnect")
	}
}

// mockLogger implements Logger for testing.
type mockLogger struct {
	errors []string
	warns  []string
	mu     sync.Mutex
}

func (l *mockLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}
