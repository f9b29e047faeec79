// Package mqtt provides MQTT client connectivity for the WiZ local core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The core publishes canonical device state and discovery results to
// the broker so dashboards and automations can consume them without
// speaking the device protocol, and accepts control commands on the
// set topics.
//
//	WiZ bulbs (UDP) ↔ wizlocal core ↔ MQTT Broker ↔ consumers
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Publish canonical device state (retained)
//	topic := mqtt.Topics{}.DeviceState("a1b2c3d4e5f6")
//	client.PublishRetained(topic, stateJSON)
//
//	// Accept control commands
//	client.Subscribe(mqtt.Topics{}.AllDeviceSets(), 1,
//	    func(topic string, payload []byte) error {
//	        return handleCommand(topic, payload)
//	    })
package mqtt
