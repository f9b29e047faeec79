package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the WiZ local core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Control   ControlConfig   `yaml:"control"`
	Preview   PreviewConfig   `yaml:"preview"`
	Structure StructureConfig `yaml:"structure"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SiteConfig contains deployment-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DiscoveryConfig contains device discovery settings.
type DiscoveryConfig struct {
	// BroadcastAddress is the subnet broadcast address the registration
	// datagram is sent to (host part only, e.g. "192.168.1.255").
	BroadcastAddress string `yaml:"broadcast_address"`

	// Port is the device control port. WiZ firmware listens on 38899.
	Port int `yaml:"port"`

	// WindowSeconds bounds the reply collection phase.
	WindowSeconds int `yaml:"window_seconds"`

	// StaleAfterMinutes is how long a device may go unseen before its
	// record is evicted.
	StaleAfterMinutes int `yaml:"stale_after_minutes"`

	// IntervalMinutes is the periodic re-discovery interval.
	// Zero disables the periodic trigger.
	IntervalMinutes int `yaml:"interval_minutes"`
}

// ControlConfig contains device session settings.
type ControlConfig struct {
	// TimeoutMillis is the per-attempt reply timeout.
	TimeoutMillis int `yaml:"timeout_millis"`
}

// PreviewConfig contains effect preview settings.
type PreviewConfig struct {
	// MaxDurationSeconds caps how long a preview may run.
	// Zero means no cap.
	MaxDurationSeconds int `yaml:"max_duration_seconds"`
}

// StructureConfig locates the home-structure document.
type StructureConfig struct {
	// Path to the structure JSON file. Empty disables reconciliation
	// metadata; devices surface as discovered-unnamed.
	Path string `yaml:"path"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// HistoryRetentionDays bounds the state history table.
	// Zero disables pruning.
	HistoryRetentionDays int `yaml:"history_retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: WIZLOCAL_SECTION_KEY
// For example: WIZLOCAL_DATABASE_PATH, WIZLOCAL_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "home-001",
			Name:     "WiZ Local",
			Timezone: "UTC",
		},
		Discovery: DiscoveryConfig{
			BroadcastAddress:  "255.255.255.255",
			Port:              38899,
			WindowSeconds:     3,
			StaleAfterMinutes: 60,
			IntervalMinutes:   15,
		},
		Control: ControlConfig{
			TimeoutMillis: 1500,
		},
		Preview: PreviewConfig{
			MaxDurationSeconds: 300,
		},
		Structure: StructureConfig{
			Path: "./data/home_structure.json",
		},
		Database: DatabaseConfig{
			Path:                 "./data/wizlocal.db",
			WALMode:              true,
			BusyTimeout:          5,
			HistoryRetentionDays: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "wizlocal-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: WIZLOCAL_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Discovery
	if v := os.Getenv("WIZLOCAL_DISCOVERY_BROADCAST"); v != "" {
		cfg.Discovery.BroadcastAddress = v
	}

	// Structure
	if v := os.Getenv("WIZLOCAL_STRUCTURE_PATH"); v != "" {
		cfg.Structure.Path = v
	}

	// Database
	if v := os.Getenv("WIZLOCAL_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("WIZLOCAL_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("WIZLOCAL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("WIZLOCAL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("WIZLOCAL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("WIZLOCAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Discovery.BroadcastAddress == "" {
		errs = append(errs, "discovery.broadcast_address is required")
	}
	if c.Discovery.Port < 1 || c.Discovery.Port > 65535 {
		errs = append(errs, "discovery.port must be between 1 and 65535")
	}
	if c.Discovery.WindowSeconds < 1 {
		errs = append(errs, "discovery.window_seconds must be at least 1")
	}

	if c.Control.TimeoutMillis < 100 {
		errs = append(errs, "control.timeout_millis must be at least 100")
	}

	if c.Preview.MaxDurationSeconds < 0 {
		errs = append(errs, "preview.max_duration_seconds must not be negative")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set WIZLOCAL_INFLUXDB_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DiscoveryWindow returns the reply collection window as a Duration.
func (c *Config) DiscoveryWindow() time.Duration {
	return time.Duration(c.Discovery.WindowSeconds) * time.Second
}

// DiscoveryStaleAfter returns the record eviction threshold as a Duration.
func (c *Config) DiscoveryStaleAfter() time.Duration {
	return time.Duration(c.Discovery.StaleAfterMinutes) * time.Minute
}

// DiscoveryInterval returns the periodic re-discovery interval as a
// Duration. Zero means periodic discovery is disabled.
func (c *Config) DiscoveryInterval() time.Duration {
	return time.Duration(c.Discovery.IntervalMinutes) * time.Minute
}

// ControlTimeout returns the per-attempt device reply timeout.
func (c *Config) ControlTimeout() time.Duration {
	return time.Duration(c.Control.TimeoutMillis) * time.Millisecond
}

// PreviewMaxDuration returns the preview duration cap, zero for none.
func (c *Config) PreviewMaxDuration() time.Duration {
	return time.Duration(c.Preview.MaxDurationSeconds) * time.Second
}

// HistoryRetention returns the state history retention period, zero for
// no pruning.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.Database.HistoryRetentionDays) * 24 * time.Hour
}

// BrokerURL assembles the MQTT broker URL from host, port and TLS flag.
func (c *MQTTConfig) BrokerURL() string {
	scheme := "tcp"
	if c.Broker.TLS {
		scheme = "ssl"
	}
	return scheme + "://" + c.Broker.Host + ":" + strconv.Itoa(c.Broker.Port)
}
