// Package influxdb writes Rundown Core playout telemetry to InfluxDB v2.
//
// Two measurements are written:
//   - playout_event: one point per LIVE, manual, overlay and session event,
//     tagged by station, session, show and event type
//   - active_audio / active_audio_track: the derived audio state after each
//     change, one summary point and one point per live track
//
// Writes use the non-blocking batched write API. A failed write is reported
// through the SetOnError callback and never reaches the playout loop.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Station.ID)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off
//	}
//	defer client.Close()
//
// The client implements automation.Telemetry and is handed to the
// dispatcher.
package influxdb
