package influxdb

import "errors"

// Errors returned by the telemetry client. Telemetry is optional, so callers
// log these and carry on playing out.
var (
	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	ErrDisabled = errors.New("influxdb: telemetry disabled")

	// ErrUnreachable is returned when the server does not answer a ping.
	ErrUnreachable = errors.New("influxdb: server unreachable")

	// ErrNotConnected is returned by HealthCheck once the client is closed.
	ErrNotConnected = errors.New("influxdb: client closed")
)
