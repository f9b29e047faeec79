package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-home"
discovery:
  broadcast_address: "192.168.1.255"
  port: 38899
  window_seconds: 2
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-home" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-home")
	}

	if cfg.Discovery.BroadcastAddress != "192.168.1.255" {
		t.Errorf("Discovery.BroadcastAddress = %q, want %q", cfg.Discovery.BroadcastAddress, "192.168.1.255")
	}

	if cfg.DiscoveryWindow().Seconds() != 2 {
		t.Errorf("DiscoveryWindow() = %v, want 2s", cfg.DiscoveryWindow())
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
database:
  path: "/tmp/test.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Site: SiteConfig{ID: "home-001"},
			Discovery: DiscoveryConfig{
				BroadcastAddress: "192.168.1.255",
				Port:             38899,
				WindowSeconds:    3,
			},
			Control:  ControlConfig{TimeoutMillis: 1500},
			Database: DatabaseConfig{Path: "/data/wizlocal.db"},
			MQTT:     MQTTConfig{QoS: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing site ID",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing broadcast address",
			mutate:  func(c *Config) { c.Discovery.BroadcastAddress = "" },
			wantErr: true,
		},
		{
			name:    "invalid discovery port",
			mutate:  func(c *Config) { c.Discovery.Port = 0 },
			wantErr: true,
		},
		{
			name:    "zero collection window",
			mutate:  func(c *Config) { c.Discovery.WindowSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "control timeout too small",
			mutate:  func(c *Config) { c.Control.TimeoutMillis = 50 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name: "invalid QoS when mqtt enabled",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Host = "localhost"
				c.MQTT.QoS = 3
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled without token",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_DurationHelpers(t *testing.T) {
	cfg := &Config{
		Discovery: DiscoveryConfig{
			WindowSeconds:     3,
			StaleAfterMinutes: 60,
			IntervalMinutes:   15,
		},
		Control:  ControlConfig{TimeoutMillis: 1500},
		Preview:  PreviewConfig{MaxDurationSeconds: 300},
		Database: DatabaseConfig{HistoryRetentionDays: 30},
	}

	if got := cfg.DiscoveryWindow().Seconds(); got != 3 {
		t.Errorf("DiscoveryWindow() = %v, want 3s", got)
	}
	if got := cfg.DiscoveryStaleAfter().Minutes(); got != 60 {
		t.Errorf("DiscoveryStaleAfter() = %v, want 60m", got)
	}
	if got := cfg.DiscoveryInterval().Minutes(); got != 15 {
		t.Errorf("DiscoveryInterval() = %v, want 15m", got)
	}
	if got := cfg.ControlTimeout().Milliseconds(); got != 1500 {
		t.Errorf("ControlTimeout() = %v, want 1500ms", got)
	}
	if got := cfg.PreviewMaxDuration().Seconds(); got != 300 {
		t.Errorf("PreviewMaxDuration() = %v, want 300s", got)
	}
	if got := cfg.HistoryRetention().Hours(); got != 720 {
		t.Errorf("HistoryRetention() = %v, want 720h", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("WIZLOCAL_DISCOVERY_BROADCAST", "10.0.0.255")
	t.Setenv("WIZLOCAL_STRUCTURE_PATH", "/custom/home.json")
	t.Setenv("WIZLOCAL_DATABASE_PATH", "/custom/path.db")
	t.Setenv("WIZLOCAL_MQTT_HOST", "mqtt.example.com")
	t.Setenv("WIZLOCAL_MQTT_USERNAME", "testuser")
	t.Setenv("WIZLOCAL_MQTT_PASSWORD", "testpass")
	t.Setenv("WIZLOCAL_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("WIZLOCAL_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	if cfg.Discovery.BroadcastAddress != "10.0.0.255" {
		t.Errorf("Discovery.BroadcastAddress = %q, want %q", cfg.Discovery.BroadcastAddress, "10.0.0.255")
	}

	if cfg.Structure.Path != "/custom/home.json" {
		t.Errorf("Structure.Path = %q, want %q", cfg.Structure.Path, "/custom/home.json")
	}

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.Discovery.Port != 38899 {
		t.Errorf("defaultConfig Discovery.Port = %d, want 38899", cfg.Discovery.Port)
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
}

func TestMQTTBrokerURL(t *testing.T) {
	cfg := MQTTConfig{Broker: MQTTBrokerConfig{Host: "broker.local", Port: 1883}}
	if got := cfg.BrokerURL(); got != "tcp://broker.local:1883" {
		t.Errorf("BrokerURL() = %q, want tcp://broker.local:1883", got)
	}

	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883
	if got := cfg.BrokerURL(); got != "ssl://broker.local:8883" {
		t.Errorf("BrokerURL() = %q, want ssl://broker.local:8883", got)
	}
}
