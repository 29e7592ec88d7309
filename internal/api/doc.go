// Package api implements the operator HTTP API and WebSocket hub of
// Rundown Core.
//
// This package provides:
//   - REST endpoints for the session snapshot, control actions, active
//     audio, overlays, stored rundowns and the as-run log
//   - A WebSocket hub that broadcasts state, events and audio commands and
//     accepts CONTROL_ACTION messages from control surfaces
//   - Prometheus metrics at /metrics
//   - Middleware stack (request ID, logging, recovery, CORS, rate limit)
//
// # Architecture
//
// Every control action, whether it arrives over HTTP, WebSocket or MQTT,
// is funnelled into the single automation.Runner, which serialises it with
// the timer ticks. The hub is handed to the dispatcher as its WSHub, so the
// engine's output reaches browsers without the API polling anything.
//
// # Graceful Degradation
//
// The server starts without a loaded rundown. Session endpoints then answer
// 503 "cannot start session" until a reload or PUT succeeds.
package api
