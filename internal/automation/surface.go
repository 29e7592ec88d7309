package automation

import (
	"context"
	"time"

	"github.com/nerrad567/rundown-core/internal/metrics"
)

// Transports a control action can arrive on, as labelled in metrics.
const (
	TransportMQTT      = "mqtt"
	TransportWebSocket = "websocket"
	TransportHTTP      = "http"
)

// controlTimeout bounds how long a surface message waits for the runner.
const controlTimeout = 2 * time.Second

// SurfaceHandler returns an MQTT message handler that applies control
// surface messages to the runner. Malformed messages are counted and
// returned as errors; the MQTT client logs them.
func SurfaceHandler(ctx context.Context, r *Runner, logger Logger) func(topic string, payload []byte) error {
	if logger == nil {
		logger = noopLogger{}
	}
	return func(topic string, payload []byte) error {
		b, err := ParseControlMessage(payload)
		if err != nil {
			metrics.IncControlAction("invalid", TransportMQTT, false)
			return err
		}

		cctx, cancel := context.WithTimeout(ctx, controlTimeout)
		defer cancel()

		err = r.Control(cctx, b)
		metrics.IncControlAction(b.Type, TransportMQTT, err == nil)
		if err != nil {
			return err
		}
		logger.Debug("control action applied", "topic", topic, "button", b.Type)
		return nil
	}
}
