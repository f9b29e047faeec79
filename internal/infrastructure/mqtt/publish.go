package mqtt

import (
	"fmt"
)

// maxPayloadSize caps outbound payloads at 1 MiB, in line with common
// broker limits. The core's largest payload is the structure view,
// which stays orders of magnitude under this.
const maxPayloadSize = 1 << 20

// Publish sends a payload to a topic at the given QoS.
//
// Retained messages are stored by the broker and handed to new
// subscribers immediately; the core retains state topics (device state,
// structure view) and never retains events. The call blocks until the
// broker acknowledges or the publish timeout expires.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishRetained publishes a retained message at the configured
// default QoS. This is the path every canonical state topic goes
// through.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}
