// Package automation provides the playout engine for the rundown service.
//
// An Engine is one control session over a rundown. It decides what should
// be LIVE, what is staged in PREVIEW, when timed items advance themselves,
// which overlays are showing and which audio sources are active.
//
// Architecture:
//
//	┌─────────────────────────────────────────────────────────┐
//	│                  Runner (runner.go)                      │
//	│  one goroutine: 100ms ticks + operator requests          │
//	│  ┌───────────────────────────────────────────────────┐  │
//	│  │               Engine (engine.go)                   │  │
//	│  │  ┌────────────┐  ┌───────────┐  ┌──────────────┐  │  │
//	│  │  │  Machine   │  │   Timer   │  │ OverlayEngine│  │  │
//	│  │  │(machine.go)│  │(timer.go) │  │ (overlay.go) │  │  │
//	│  │  └────────────┘  └───────────┘  └──────────────┘  │  │
//	│  │        Resolve (audio.go): pure replay             │  │
//	│  └───────────────────────────────────────────────────┘  │
//	│        │ commands, events, snapshots                     │
//	│        ▼                                                 │
//	│  Dispatcher (dispatch.go) → MQTT, WebSocket, as-run      │
//	└─────────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Machine: LIVE/PREVIEW pointers, stopped/paused flags, armed slots and
//     the live manual item set
//   - Timer: the auto-advance countdown for the LIVE item
//   - OverlayEngine: waiting/live/absent states for overlays
//   - Resolve: replays audio cues up to LIVE to derive active tracks
//   - Engine: ties the above together; takes explicit time on every call
//   - Runner: serialises ticks and operator events onto one queue
//   - Dispatcher: fire-and-forget delivery of commands and events
//
// # Time
//
// Nothing in Engine reads the wall clock. Tick(now) is called by the Runner
// every 100ms with time.Now, and by tests with hand-built times.
//
// # Thread Safety
//
// Engine, Machine, Timer and OverlayEngine are not safe for concurrent use;
// the Runner owns them. Resolve is pure. Runner and Dispatcher methods are
// safe for concurrent use.
//
// # Usage
//
//	runner := automation.NewRunner(automation.RunnerConfig{
//	    Source: rundown.FileSource{Path: "show.yaml"},
//	    Sink:   dispatcher,
//	    Logger: log,
//	})
//	go runner.Run(ctx)
//
//	err := runner.Control(ctx, automation.Button{Type: automation.ButtonNext})
package automation
