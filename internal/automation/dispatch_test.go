package automation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// ─── Mock Dependencies ──────────────────────────────────────────────────────

type mockMQTT struct {
	mu       sync.Mutex
	messages []mqttMessage
	err      error
}

type mqttMessage struct {
	topic   string
	payload  []byte
	qos      byte
	retained bool
}

func (m *mockMQTT) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, mqttMessage{topic: topic, payload: payload, qos: qos, retained: retained})
	return nil
}

func (m *mockMQTT) getMessages() []mqttMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mqttMessage(nil), m.messages...)
}

type broadcast struct {
	channel string
	payload any
}

type mockWSHub struct {
	mu         sync.Mutex
	broadcasts []broadcast
}

func (h *mockWSHub) Broadcast(channel string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts = append(h.broadcasts, broadcast{channel: channel, payload: payload})
}

func (h *mockWSHub) getBroadcasts() []broadcast {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]broadcast(nil), h.broadcasts...)
}

type mockRecorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *mockRecorder) Record(_ context.Context, _, _ string, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *mockRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type mockTelemetry struct {
	mu     sync.Mutex
	events int
	audio  int
}

func (m *mockTelemetry) WritePlayoutEvent(string, string, Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events++
}

func (m *mockTelemetry) WriteActiveAudio(string, ActiveAudio, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audio++
}

func (m *mockTelemetry) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events, m.audio
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func runDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx) //nolint:errcheck // Run only returns nil
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestDispatcherDeliversBatch(t *testing.T) {
	verifyNoLeaks(t)

	mqtt := &mockMQTT{}
	hub := &mockWSHub{}
	rec := &mockRecorder{}
	tel := &mockTelemetry{}
	d := NewDispatcher(DispatcherConfig{MQTT: mqtt, Hub: hub, Recorder: rec, Telemetry: tel, QoS: 1})
	runDispatcher(t, d)

	cmd := Command{ID: "c1", Type: CommandControlMic, ItemID: "guest", Action: MicUnmute, SourceID: "guest-mic", Volume: floatPtr(70)}
	snap := &Snapshot{SessionID: "s1", At: t0}
	d.Deliver(Batch{
		SessionID: "s1",
		ShowID:    "show",
		Commands:  []Command{cmd},
		Events:    []Event{{Type: EventManualOn, ItemID: "guest", At: t0}},
		Snapshot:  snap,
	})

	// Active audio telemetry is the last write of a batch.
	waitFor(t, "telemetry", func() bool { _, audio := tel.counts(); return audio == 1 })

	msgs := mqtt.getMessages()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	if msgs[0].topic != "rundown/command/audio/guest" || msgs[0].qos != 1 {
		t.Errorf("topic/qos = %s/%d", msgs[0].topic, msgs[0].qos)
	}
	var wire map[string]any
	if err := json.Unmarshal(msgs[0].payload, &wire); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if wire["type"] != "CONTROL_MIC" || wire["itemId"] != "guest" || wire["sourceId"] != "guest-mic" || wire["volume"] != 70.0 {
		t.Errorf("payload = %v", wire)
	}

	got := hub.getBroadcasts()
	wantChannels := []string{ChannelAudioCommand, ChannelEvent, ChannelState}
	for i, ch := range wantChannels {
		if got[i].channel != ch {
			t.Errorf("broadcast[%d] channel = %q, want %q", i, got[i].channel, ch)
		}
	}

	if rec.count() != 1 {
		t.Errorf("recorded %d events, want 1", rec.count())
	}
	if events, audio := tel.counts(); events != 1 || audio != 1 {
		t.Errorf("telemetry events/audio = %d/%d, want 1/1", events, audio)
	}
}

func TestDispatcherPublishesRetainedState(t *testing.T) {
	verifyNoLeaks(t)

	mqtt := &mockMQTT{}
	tel := &mockTelemetry{}
	d := NewDispatcher(DispatcherConfig{MQTT: mqtt, Telemetry: tel, StateTopic: "rundown/state"})
	runDispatcher(t, d)

	// A snapshot without events is not published.
	d.Deliver(Batch{SessionID: "s1", Snapshot: &Snapshot{SessionID: "s1", Revision: 1, At: t0}})
	d.Deliver(Batch{
		SessionID: "s1",
		Events:    []Event{{Type: EventLive, ItemID: "a", At: t0}},
		Snapshot:  &Snapshot{SessionID: "s1", Revision: 2, At: t0},
	})

	waitFor(t, "telemetry", func() bool { _, audio := tel.counts(); return audio == 1 })

	msgs := mqtt.getMessages()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	if msgs[0].topic != "rundown/state" || !msgs[0].retained {
		t.Errorf("topic/retained = %s/%v", msgs[0].topic, msgs[0].retained)
	}
	var snap Snapshot
	if err := json.Unmarshal(msgs[0].payload, &snap); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if snap.Revision != 2 {
		t.Errorf("Revision = %d, want 2", snap.Revision)
	}
}

func TestDispatcherCustomTopic(t *testing.T) {
	verifyNoLeaks(t)

	mqtt := &mockMQTT{}
	d := NewDispatcher(DispatcherConfig{
		MQTT:         mqtt,
		CommandTopic: func(itemID string) string { return "studio-a/audio/" + itemID },
	})
	runDispatcher(t, d)

	d.Deliver(Batch{Commands: []Command{{Type: CommandStopAudio, ItemID: "bed", MediaID: "bed"}}})
	waitFor(t, "publish", func() bool { return len(mqtt.getMessages()) == 1 })

	if topic := mqtt.getMessages()[0].topic; topic != "studio-a/audio/bed" {
		t.Errorf("topic = %q, want studio-a/audio/bed", topic)
	}
}

func TestDispatcherFailuresDoNotStopDelivery(t *testing.T) {
	verifyNoLeaks(t)

	mqtt := &mockMQTT{err: errors.New("broker down")}
	hub := &mockWSHub{}
	rec := &mockRecorder{err: errors.New("disk full")}
	d := NewDispatcher(DispatcherConfig{MQTT: mqtt, Hub: hub, Recorder: rec})
	runDispatcher(t, d)

	for i := 0; i < 2; i++ {
		d.Deliver(Batch{
			Commands: []Command{{Type: CommandPlayAudio, ItemID: "sting"}},
			Events:   []Event{{Type: EventManualOn, ItemID: "sting"}},
		})
	}
	waitFor(t, "both batches", func() bool { return len(hub.getBroadcasts()) == 4 })

	if n := rec.count(); n != 2 {
		t.Errorf("record attempts = %d, want 2", n)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{QueueSize: 1})

	// Not running: the first batch fills the queue.
	d.Deliver(Batch{SessionID: "first"})

	done := make(chan struct{})
	go func() {
		d.Deliver(Batch{SessionID: "second"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Deliver() blocked on a full queue")
	}

	if len(d.queue) != 1 {
		t.Fatalf("queue length = %d, want 1", len(d.queue))
	}
	if b := <-d.queue; b.SessionID != "first" {
		t.Errorf("queued batch = %q, want first", b.SessionID)
	}
}
