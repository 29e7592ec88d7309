// Package mqtt provides the MQTT client Rundown Core uses to reach audio
// actuators and hardware control surfaces.
//
// The client wraps paho.mqtt.golang with:
//   - Auto-reconnect with exponential backoff
//   - Subscription restoration after reconnect
//   - A Last Will on rundown/system/status
//   - Panic recovery in message handlers
//
// Outbound audio commands are QoS 1 and never retained. Control surfaces
// publish button presses on rundown/control/{surface}; see Topics for the
// full layout.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return fmt.Errorf("mqtt: %w", err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllControl(), 1, handler)
package mqtt
