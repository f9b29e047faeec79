// WiZ Local Core - local-first control plane for WiZ smart lighting.
//
// The core discovers WiZ devices on the local subnet over their native
// UDP protocol, reconciles them with an externally authored home
// structure document, accepts control commands (directly or over MQTT)
// and records every confirmed state change. No cloud dependency: the
// devices and the core speak only on the LAN.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/wiz-local-core/migrations"

	"github.com/nerrad567/wiz-local-core/internal/core"
	"github.com/nerrad567/wiz-local-core/internal/discovery"
	"github.com/nerrad567/wiz-local-core/internal/history"
	"github.com/nerrad567/wiz-local-core/internal/home"
	"github.com/nerrad567/wiz-local-core/internal/infrastructure/config"
	"github.com/nerrad567/wiz-local-core/internal/infrastructure/database"
	"github.com/nerrad567/wiz-local-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/wiz-local-core/internal/infrastructure/logging"
	"github.com/nerrad567/wiz-local-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/wiz-local-core/internal/session"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting WiZ local core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database and apply migrations
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	// Device session layer
	sess := session.New(session.Config{
		Timeout: cfg.ControlTimeout(),
		Port:    cfg.Discovery.Port,
	})
	sess.SetLogger(log)

	// Discovery service over the UDP broadcast transport
	disc := discovery.NewService(discovery.Config{
		BroadcastAddress: cfg.Discovery.BroadcastAddress,
		Port:             cfg.Discovery.Port,
		Window:           cfg.DiscoveryWindow(),
		StaleAfter:       cfg.DiscoveryStaleAfter(),
	}, discovery.NewDirectory(), discovery.NewUDPTransport(), sess)
	disc.SetLogger(log)

	// Home structure document (optional)
	var structure *home.Structure
	if cfg.Structure.Path != "" {
		structure, err = home.Load(cfg.Structure.Path)
		if err != nil {
			return fmt.Errorf("loading structure document: %w", err)
		}
		log.Info("structure document loaded",
			"path", cfg.Structure.Path,
			"home", structure.Name,
			"rooms", len(structure.Rooms),
		)
	} else {
		log.Info("no structure document configured")
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT connected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", cfg.MQTT.BrokerURL(),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Assemble the core service. Interface-typed nils must stay nil
	// when the concrete client is absent.
	opts := core.Options{
		Config:    cfg,
		Discovery: disc,
		Devices:   sess,
		Structure: structure,
		History:   history.NewSQLiteRepository(db.DB),
		Logger:    log,
	}
	if mqttClient != nil {
		opts.Bus = mqttClient
	}
	if influxClient != nil {
		opts.Telemetry = influxClient
	}

	svc, err := core.New(opts)
	if err != nil {
		return fmt.Errorf("assembling core service: %w", err)
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, starting discovery loop",
		"interval", cfg.DiscoveryInterval(),
	)

	// Blocks until the shutdown signal cancels the context
	svc.Run(ctx)

	log.Info("shutdown signal received, cleaning up")
	log.Info("WiZ local core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses WIZLOCAL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("WIZLOCAL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
