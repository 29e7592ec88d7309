package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/rundown-core/internal/automation"
)

// Measurement names.
const (
	measurementPlayoutEvent = "playout_event"
	measurementActiveTrack  = "active_audio_track"
	measurementActiveAudio  = "active_audio"
)

// Track kinds used as the "kind" tag of active track points.
const (
	trackKindMic   = "mic"
	trackKindMedia = "media"
)

var _ automation.Telemetry = (*Client)(nil)

// WritePlayoutEvent records one playout event. The write is non-blocking;
// points are batched and sent asynchronously.
//
// Example:
//
//	client.WritePlayoutEvent(sessionID, "evening-news", automation.Event{
//	    Type: automation.EventLive, ItemID: "intro", At: now,
//	})
func (c *Client) WritePlayoutEvent(sessionID, showID string, ev automation.Event) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(playoutEventPoint(c.station, sessionID, showID, ev))
}

// WriteActiveAudio records the active audio state: one summary point plus
// one point per live track.
func (c *Client) WriteActiveAudio(sessionID string, audio automation.ActiveAudio, at time.Time) {
	if !c.IsConnected() {
		return
	}
	for _, p := range activeAudioPoints(c.station, sessionID, audio, at) {
		c.writeAPI.WritePoint(p)
	}
}

func playoutEventPoint(station, sessionID, showID string, ev automation.Event) *write.Point {
	fields := map[string]interface{}{
		"item_id": ev.ItemID,
		"count":   1,
	}
	if ev.Title != "" {
		fields["title"] = ev.Title
	}
	if ev.Detail != "" {
		fields["detail"] = ev.Detail
	}

	return write.NewPoint(
		measurementPlayoutEvent,
		map[string]string{
			"station":    station,
			"session_id": sessionID,
			"show_id":    showID,
			"event":      string(ev.Type),
		},
		fields,
		ev.At,
	)
}

func activeAudioPoints(station, sessionID string, audio automation.ActiveAudio, at time.Time) []*write.Point {
	points := make([]*write.Point, 0, audio.Len()+1)
	points = append(points, write.NewPoint(
		measurementActiveAudio,
		map[string]string{
			"station":    station,
			"session_id": sessionID,
		},
		map[string]interface{}{
			"mics":  len(audio.Mics),
			"media": len(audio.Media),
		},
		at,
	))

	add := func(kind string, tracks []automation.Track) {
		for _, t := range tracks {
			points = append(points, write.NewPoint(
				measurementActiveTrack,
				map[string]string{
					"station":    station,
					"session_id": sessionID,
					"kind":       kind,
					"track_id":   t.TrackID,
				},
				map[string]interface{}{
					"source_id": t.ID,
					"volume":    t.Volume,
				},
				at,
			))
		}
	}
	add(trackKindMic, audio.Mics)
	add(trackKindMedia, audio.Media)
	return points
}
