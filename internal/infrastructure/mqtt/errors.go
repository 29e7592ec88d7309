package mqtt

import "errors"

// Errors returned by the broker client. Publish and Subscribe check their
// arguments before the connection, so ErrInvalidTopic and ErrInvalidQoS are
// reported even while the broker is down.
var (
	// ErrNotConnected is returned while the broker is unreachable. Audio
	// commands are dropped by the dispatcher, never queued here.
	ErrNotConnected = errors.New("mqtt: broker not connected")

	// ErrConnectionFailed is returned when Connect cannot reach the broker.
	ErrConnectionFailed = errors.New("mqtt: cannot reach broker")

	ErrPublishFailed     = errors.New("mqtt: publish failed")
	ErrSubscribeFailed   = errors.New("mqtt: subscribe failed")
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS is returned for a QoS above 2.
	ErrInvalidQoS = errors.New("mqtt: qos must be 0, 1 or 2")

	// ErrInvalidTopic is returned for an empty topic.
	ErrInvalidTopic = errors.New("mqtt: empty topic")
)
