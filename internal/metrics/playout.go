// Package metrics exposes the Prometheus metrics of the rundown service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlayoutEvents counts playout transitions by event type.
	PlayoutEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rundown_playout_events_total",
		Help: "Playout transitions by event type (live, manual_on, overlay_in, ...)",
	}, []string{"event"})

	// AudioCommands counts outbound actuator commands by type and delivery result.
	AudioCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rundown_audio_commands_total",
		Help: "Outbound audio commands by command type and delivery result",
	}, []string{"type", "result"})

	// ControlActions counts inbound control actions by button type, transport and result.
	ControlActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rundown_control_actions_total",
		Help: "Inbound control actions by button type, transport and result",
	}, []string{"button", "transport", "result"})

	// TickDuration tracks how long one engine tick takes to process.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rundown_tick_duration_seconds",
		Help:    "Time spent processing one engine tick",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
	})

	// ActiveTracks is the number of active audio tracks by source type.
	ActiveTracks = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rundown_active_audio_tracks",
		Help: "Active audio tracks by source type (mic, media)",
	}, []string{"source"})

	// SessionUp is 1 while a rundown is loaded and a session exists.
	SessionUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rundown_session_up",
		Help: "1 when a playout session is running, 0 when the rundown could not be loaded",
	})

	// RundownReloads counts rundown reload attempts by result.
	RundownReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rundown_reloads_total",
		Help: "Rundown reload attempts by result",
	}, []string{"result"})

	// DroppedBatches counts outbound batches dropped because the dispatcher queue was full.
	DroppedBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rundown_dispatch_dropped_total",
		Help: "Outbound batches dropped because the dispatch queue was full",
	})
)

// IncPlayoutEvent records a playout transition.
func IncPlayoutEvent(event string) {
	PlayoutEvents.WithLabelValues(event).Inc()
}

// IncAudioCommand records an outbound command delivery.
func IncAudioCommand(commandType string, success bool) {
	AudioCommands.WithLabelValues(commandType, result(success)).Inc()
}

// IncControlAction records an inbound control action.
func IncControlAction(button, transport string, success bool) {
	ControlActions.WithLabelValues(button, transport, result(success)).Inc()
}

// ObserveTick records the processing time of one tick.
func ObserveTick(d time.Duration) {
	TickDuration.Observe(d.Seconds())
}

// SetActiveTracks records the number of active mics and media tracks.
func SetActiveTracks(mics, media int) {
	ActiveTracks.WithLabelValues("mic").Set(float64(mics))
	ActiveTracks.WithLabelValues("media").Set(float64(media))
}

// SetSessionUp records whether a session exists.
func SetSessionUp(up bool) {
	if up {
		SessionUp.Set(1)
		return
	}
	SessionUp.Set(0)
}

// IncRundownReload records a reload attempt.
func IncRundownReload(success bool) {
	RundownReloads.WithLabelValues(result(success)).Inc()
}

// IncDroppedBatch records a dropped dispatch batch.
func IncDroppedBatch() {
	DroppedBatches.Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
