package automation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/rundown-core/internal/metrics"
)

// WebSocket channels the dispatcher broadcasts on.
const (
	ChannelAudioCommand = "audio.command"
	ChannelState        = "rundown.state"
	ChannelEvent        = "rundown.event"
)

// DefaultCommandTopicPrefix is the MQTT topic prefix for audio commands.
const DefaultCommandTopicPrefix = "rundown/command/audio"

const defaultQueueSize = 256

// recordTimeout bounds one as-run write so a slow disk cannot stall delivery.
const recordTimeout = 5 * time.Second

// MQTTClient is the interface for publishing commands to audio actuators.
type MQTTClient interface {
	// Publish sends a message to the specified MQTT topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// WSHub is the interface for broadcasting WebSocket events.
type WSHub interface {
	// Broadcast sends an event to all clients subscribed to the given channel.
	Broadcast(channel string, payload any)
}

// Recorder persists playout events to the as-run log.
type Recorder interface {
	Record(ctx context.Context, sessionID, showID string, ev Event) error
}

// Telemetry writes playout data to a time-series store.
type Telemetry interface {
	WritePlayoutEvent(sessionID, showID string, ev Event)
	WriteActiveAudio(sessionID string, audio ActiveAudio, at time.Time)
}

// DispatcherConfig configures a Dispatcher. Every collaborator is optional.
type DispatcherConfig struct {
	MQTT      MQTTClient
	Hub       WSHub
	Recorder  Recorder
	Telemetry Telemetry

	// CommandTopic maps an item id to the MQTT topic for its command.
	// Defaults to DefaultCommandTopicPrefix + "/" + itemID.
	CommandTopic func(itemID string) string
	// StateTopic, when set, receives the latest snapshot as a retained
	// message after every batch that carried events.
	StateTopic string
	QoS        byte
	QueueSize  int
	Logger     Logger
}

// Dispatcher delivers what the Runner produced: audio commands to MQTT and
// the hub, events to the as-run log and telemetry, and snapshots to the hub.
// Delivery is fire-and-forget. Transitions never wait on it.
type Dispatcher struct {
	cfg    DispatcherConfig
	queue  chan Batch
	logger Logger
}

// NewDispatcher creates a dispatcher. Call Run to start delivering.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.CommandTopic == nil {
		cfg.CommandTopic = func(itemID string) string {
			return DefaultCommandTopicPrefix + "/" + itemID
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}
	return &Dispatcher{
		cfg:    cfg,
		queue:  make(chan Batch, cfg.QueueSize),
		logger: cfg.Logger,
	}
}

// Deliver implements Sink. A full queue drops the batch.
func (d *Dispatcher) Deliver(b Batch) {
	select {
	case d.queue <- b:
	default:
		metrics.IncDroppedBatch()
		d.logger.Warn("dispatch queue full, dropping batch",
			"session_id", b.SessionID,
			"commands", len(b.Commands),
			"events", len(b.Events),
		)
	}
}

// Run delivers batches until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case b := <-d.queue:
			d.handle(ctx, b)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, b Batch) {
	for _, cmd := range b.Commands {
		d.sendCommand(cmd)
	}

	for _, ev := range b.Events {
		metrics.IncPlayoutEvent(string(ev.Type))
		if d.cfg.Recorder != nil {
			rctx, cancel := context.WithTimeout(ctx, recordTimeout)
			if err := d.cfg.Recorder.Record(rctx, b.SessionID, b.ShowID, ev); err != nil {
				d.logger.Error("failed to record as-run event", "type", ev.Type, "item_id", ev.ItemID, "error", err)
			}
			cancel()
		}
		if d.cfg.Telemetry != nil {
			d.cfg.Telemetry.WritePlayoutEvent(b.SessionID, b.ShowID, ev)
		}
		if d.cfg.Hub != nil {
			d.cfg.Hub.Broadcast(ChannelEvent, ev)
		}
	}

	if b.Snapshot != nil {
		if d.cfg.Hub != nil {
			d.cfg.Hub.Broadcast(ChannelState, b.Snapshot)
		}
		if len(b.Events) > 0 {
			d.publishState(b.Snapshot)
			if d.cfg.Telemetry != nil {
				d.cfg.Telemetry.WriteActiveAudio(b.SessionID, b.Snapshot.Audio, b.Snapshot.At)
			}
		}
	}
}

func (d *Dispatcher) publishState(snap *Snapshot) {
	if d.cfg.MQTT == nil || d.cfg.StateTopic == "" {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		d.logger.Error("marshalling snapshot", "error", err)
		return
	}
	if err := d.cfg.MQTT.Publish(d.cfg.StateTopic, payload, d.cfg.QoS, true); err != nil {
		d.logger.Warn("publishing state", "topic", d.cfg.StateTopic, "error", err)
	}
}

func (d *Dispatcher) sendCommand(cmd Command) {
	if d.cfg.Hub != nil {
		d.cfg.Hub.Broadcast(ChannelAudioCommand, cmd)
	}
	if d.cfg.MQTT == nil {
		return
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		metrics.IncAudioCommand(string(cmd.Type), false)
		d.logger.Error("marshalling command", "type", cmd.Type, "error", err)
		return
	}

	topic := d.cfg.CommandTopic(cmd.ItemID)
	if err := d.cfg.MQTT.Publish(topic, payload, d.cfg.QoS, false); err != nil {
		metrics.IncAudioCommand(string(cmd.Type), false)
		d.logger.Error("publishing command", "topic", topic, "type", cmd.Type, "error", err)
		return
	}
	metrics.IncAudioCommand(string(cmd.Type), true)
	d.logger.Debug("audio command published", "topic", topic, "type", cmd.Type, "item_id", cmd.ItemID)
}
