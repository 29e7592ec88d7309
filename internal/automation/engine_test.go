package automation

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/nerrad567/rundown-core/internal/rundown"
)

func TestEngineScenarioA(t *testing.T) {
	e := newTestEngine(t, showOf(
		manualItem("graphic", rundown.KindGraphic),
		withAudio(autoItem("host-cue", rundown.KindAudioCue, 0), micCue("host-cue", "host-mic", 80)),
		autoItem("video", rundown.KindVideo, 30),
	))

	e.Advance(at(0))
	if st := e.State(); st.LiveID != "graphic" || st.PreviewID != "host-cue" {
		t.Fatalf("live/preview = %q/%q, want graphic/host-cue", st.LiveID, st.PreviewID)
	}
	if e.Timer().Active() {
		t.Error("manual graphic started a timer")
	}

	e.Advance(at(secs(1)))
	if st := e.State(); st.LiveID != "host-cue" {
		t.Fatalf("LiveID = %q, want host-cue", st.LiveID)
	}

	// The follow-on transition waits for the next tick.
	e.Tick(at(secs(1.1)))
	st := e.State()
	if st.LiveID != "video" || st.PreviewID != "" {
		t.Fatalf("after tick live/preview = %q/%q, want video/none", st.LiveID, st.PreviewID)
	}

	audio := e.ActiveAudio()
	if len(audio.Mics) != 1 || audio.Mics[0].ID != "host-mic" || audio.Mics[0].Volume != 80 {
		t.Errorf("mics = %+v, want host-mic at 80", audio.Mics)
	}
	if e.Timer().ItemID() != "video" || e.Timer().RemainingSeconds(at(secs(1.1))) != 30 {
		t.Errorf("timer = %q %ds, want video 30s", e.Timer().ItemID(), e.Timer().RemainingSeconds(at(secs(1.1))))
	}

	_, evs := e.Flush()
	want := []EventType{EventLive, EventLive, EventLive}
	if diff := cmp.Diff(want, eventTypes(evs)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineScenarioD(t *testing.T) {
	e := newTestEngine(t, showOf(
		manualItem("a", rundown.KindGraphic),
		manualItem("b", rundown.KindGraphic),
		manualBlock("block", manualAudio("jingle", mediaCue("jingle-track", "jingle", 90))),
	))

	e.Advance(at(0))
	e.ToggleManualItem("jingle", at(secs(1)))
	e.Advance(at(secs(2)))

	st := e.State()
	if st.LiveID != "b" {
		t.Errorf("LiveID = %q, want b", st.LiveID)
	}
	if diff := cmp.Diff([]string{"jingle"}, st.LiveManualItemIDs); diff != "" {
		t.Errorf("live manual mismatch (-want +got):\n%s", diff)
	}

	e.ToggleManualItem("jingle", at(secs(3)))
	if got := e.State().LiveManualItemIDs; len(got) != 0 {
		t.Errorf("LiveManualItemIDs = %v after toggle off", got)
	}
}

func TestEnginePauseResumeTiming(t *testing.T) {
	e := newTestEngine(t, showOf(
		autoItem("ten", rundown.KindVideo, 10),
		manualItem("after", rundown.KindGraphic),
	))

	e.Advance(at(0))
	tick := func(from, to time.Duration) {
		for d := from; d <= to; d += DefaultTickInterval {
			e.Tick(at(d))
			if e.State().LiveID != "ten" {
				t.Fatalf("advanced early at +%v", d)
			}
		}
	}

	tick(0, secs(3))
	e.Pause(at(secs(3)))
	tick(secs(3), secs(103))
	e.Resume(at(secs(103)))
	tick(secs(103), secs(109.9))

	e.Tick(at(secs(110)))
	if e.State().LiveID != "after" {
		t.Errorf("LiveID = %q at +7s running time, want after", e.State().LiveID)
	}
}

func TestEngineAdvanceWhilePausedStartsFrozenTimer(t *testing.T) {
	e := newTestEngine(t, showOf(
		manualItem("a", rundown.KindGraphic),
		autoItem("b", rundown.KindVideo, 5),
		manualItem("c", rundown.KindGraphic),
	))
	e.Advance(at(0))
	e.Pause(at(0))
	e.Advance(at(secs(1)))

	e.Tick(at(secs(60)))
	if e.State().LiveID != "b" {
		t.Fatal("paused session auto-advanced")
	}
	e.Resume(at(secs(60)))
	e.Tick(at(secs(65)))
	if e.State().LiveID != "c" {
		t.Errorf("LiveID = %q, want c after 5s of running time", e.State().LiveID)
	}
}

func TestEngineManualAudioCommands(t *testing.T) {
	mic := micCue("guest", "guest-mic", 70)
	mic.FadeInSeconds = 1.5
	mic.FadeOutSeconds = 2

	show := showOf(
		withAudio(manualItem("bed", rundown.KindAudioCue), mediaCue("bed-track", "bed", 50)),
		withAudio(manualItem("host", rundown.KindAudioCue), micCue("host", "host-mic", 80)),
		manualBlock("pads",
			manualAudio("guest", mic),
			manualAudio("sting", mediaCue("sting-track", "sting", 100)),
			manualAudio("bed-duck", existingCue("bed-track", rundown.ActionFadeTo, 20)),
			manualAudio("bed-kill", existingCue("bed-track", rundown.ActionStop, 0)),
			manualAudio("host-fade", existingCue(rundown.DefaultTrackID("host"), rundown.ActionFadeOut, 0)),
			manualAudio("ghost", existingCue("ghost", rundown.ActionStop, 0)),
			manualOverlay("bug"),
		),
	)

	ignore := cmpopts.IgnoreFields(Command{}, "ID", "IssuedAt")
	tests := []struct {
		name   string
		toggle []string
		want   []Command
	}{
		{
			name:   "mic on",
			toggle: []string{"guest"},
			want: []Command{{
				Type: CommandControlMic, ItemID: "guest", Action: MicUnmute,
				SourceID: "guest-mic", SourceName: "guest-mic", Volume: floatPtr(70), FadeDuration: floatPtr(1.5),
			}},
		},
		{
			name:   "mic on then off",
			toggle: []string{"guest", "guest"},
			want: []Command{
				{
					Type: CommandControlMic, ItemID: "guest", Action: MicUnmute,
					SourceID: "guest-mic", SourceName: "guest-mic", Volume: floatPtr(70), FadeDuration: floatPtr(1.5),
				},
				{
					Type: CommandControlMic, ItemID: "guest", Action: MicMute,
					SourceID: "guest-mic", SourceName: "guest-mic", FadeOut: boolPtr(true), FadeDuration: floatPtr(2),
				},
			},
		},
		{
			name:   "media on then off",
			toggle: []string{"sting", "sting"},
			want: []Command{
				{Type: CommandPlayAudio, ItemID: "sting", MediaID: "sting", MediaPath: "/media/sting.wav", Volume: floatPtr(100)},
				{Type: CommandStopAudio, ItemID: "sting", MediaID: "sting", FadeOut: boolPtr(false)},
			},
		},
		{
			name:   "existing media fade",
			toggle: []string{"bed-duck", "bed-duck"},
			want: []Command{
				{Type: CommandPlayAudio, ItemID: "bed-duck", MediaID: "bed", MediaPath: "/media/bed.wav", Volume: floatPtr(20)},
			},
		},
		{
			name:   "existing media stop",
			toggle: []string{"bed-kill"},
			want: []Command{
				{Type: CommandStopAudio, ItemID: "bed-kill", MediaID: "bed", FadeOut: boolPtr(false)},
			},
		},
		{
			name:   "existing mic fade out",
			toggle: []string{"host-fade"},
			want: []Command{{
				Type: CommandControlMic, ItemID: "host-fade", Action: MicMute,
				SourceID: "host-mic", SourceName: "host-mic", FadeOut: boolPtr(true), FadeDuration: floatPtr(2),
			}},
		},
		{
			name:   "existing cue off is silent",
			toggle: []string{"bed-kill", "bed-kill"},
			want: []Command{
				{Type: CommandStopAudio, ItemID: "bed-kill", MediaID: "bed", FadeOut: boolPtr(false)},
			},
		},
		{
			name:   "unknown track",
			toggle: []string{"ghost"},
			want:   nil,
		},
		{
			name:   "unknown track on then off",
			toggle: []string{"ghost", "ghost"},
			want:   nil,
		},
		{
			name:   "overlay has no audio",
			toggle: []string{"bug"},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, show)
			e.Advance(at(0))
			e.Advance(at(0)) // host live: bed and host-mic active
			e.Flush()

			for i, id := range tt.toggle {
				e.ToggleManualItem(id, at(secs(float64(i+1))))
			}
			cmds, _ := e.Flush()
			if diff := cmp.Diff(tt.want, cmds, ignore); diff != "" {
				t.Errorf("commands mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngineArmedManualEmitsCommand(t *testing.T) {
	e := newTestEngine(t, showOf(
		autoItem("a", rundown.KindVideo, 10),
		manualItem("b", rundown.KindGraphic),
		manualBlock("pads", manualAudio("sting", mediaCue("sting-track", "sting", 100))),
	))
	e.Advance(at(0))
	e.ArmManualButton("sting")
	e.Advance(at(secs(1)))

	if e.Timer().Active() {
		t.Error("timer still running after manual promotion")
	}
	cmds, evs := e.Flush()
	if len(cmds) != 1 || cmds[0].Type != CommandPlayAudio {
		t.Errorf("commands = %+v, want one PLAY_AUDIO", cmds)
	}
	if diff := cmp.Diff([]EventType{EventLive, EventManualOn}, eventTypes(evs)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineStop(t *testing.T) {
	e := newTestEngine(t, showOf(
		autoItem("a", rundown.KindVideo, 10),
		overlayItem("ov", 0, 0, rundown.PolicyLeaveInGlobal),
		manualItem("b", rundown.KindGraphic),
		manualBlock("pads",
			manualAudio("phone", micCue("phone", "phone-mic", 60)),
			manualOverlay("bug"),
		),
	))
	e.Advance(at(0))
	e.ToggleManualItem("phone", at(secs(1)))
	e.ToggleManualItem("bug", at(secs(1)))
	e.Flush()

	e.Stop(at(secs(2)))

	st := e.State()
	if !st.Stopped || st.LiveID != "" || len(st.LiveManualItemIDs) != 0 {
		t.Errorf("state = %+v, want stopped and reset", st)
	}
	if e.Timer().Active() {
		t.Error("timer survived stop")
	}
	if got := e.Overlays().States(at(secs(2))); len(got) != 0 {
		t.Errorf("overlays after stop = %+v", got)
	}

	cmds, evs := e.Flush()
	if len(cmds) != 1 || cmds[0].Type != CommandControlMic || cmds[0].Action != MicMute {
		t.Errorf("commands = %+v, want one mute", cmds)
	}
	want := []EventType{EventManualOff, EventOverlayOut, EventManualOff, EventOverlayOut, EventStopped}
	if diff := cmp.Diff(want, eventTypes(evs)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	// No timer fires after stop.
	e.Tick(at(secs(60)))
	if e.State().LiveID != "" {
		t.Error("cancelled timer advanced a stopped session")
	}

	e.Stop(at(secs(61)))
	if e.State().Stopped {
		t.Error("second Stop() did not clear the stopped flag")
	}
}

func TestEngineOverlaysFollowLive(t *testing.T) {
	e := newTestEngine(t, showOf(
		manualItem("a", rundown.KindVideo),
		overlayItem("lt", 1, 2, rundown.PolicyAutoOut),
		manualItem("b", rundown.KindVideo),
	))
	e.Advance(at(0))
	for d := time.Duration(0); d <= secs(4); d += DefaultTickInterval {
		e.Tick(at(d))
	}

	_, evs := e.Flush()
	want := []EventType{EventLive, EventOverlayIn, EventOverlayOut}
	if diff := cmp.Diff(want, eventTypes(evs)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineToggleOverlay(t *testing.T) {
	top := overlayItem("top", 0, 0, rundown.PolicyAutoOut)
	top.Overlay.Kind = rundown.OverlayManual

	e := newTestEngine(t, showOf(
		manualItem("a", rundown.KindVideo),
		overlayItem("held", 0, 0, rundown.PolicyLeaveInGlobal),
		top,
		manualBlock("pads", manualOverlay("bug")),
	))
	e.Advance(at(0))
	if e.Overlays().Phase("held") != PhaseLive {
		t.Fatal("held overlay not live at in point 0")
	}

	e.ToggleOverlay("bug", at(secs(1)))
	if e.Overlays().Phase("bug") != PhaseLive || !e.State().IsManualLive("bug") {
		t.Error("bug overlay not live after toggle")
	}

	e.ToggleOverlay("top", at(secs(1)))
	if e.Overlays().Phase("top") != PhaseLive {
		t.Error("top-level manual overlay not live after toggle")
	}
	e.ToggleOverlay("top", at(secs(2)))
	if e.Overlays().Phase("top") != PhaseAbsent {
		t.Error("top-level manual overlay still live after second toggle")
	}

	// Toggling a live automatic overlay takes it out.
	e.ToggleOverlay("held", at(secs(3)))
	if e.Overlays().Phase("held") != PhaseAbsent {
		t.Error("held overlay survived toggle")
	}

	e.RemoveOverlay("bug", at(secs(4)))
	if e.Overlays().Phase("bug") != PhaseAbsent || e.State().IsManualLive("bug") {
		t.Error("bug overlay survived remove")
	}
}

func TestEngineSetRundown(t *testing.T) {
	e := newTestEngine(t, showOf(
		manualItem("a", rundown.KindGraphic),
		autoItem("b", rundown.KindVideo, 10),
		manualItem("c", rundown.KindGraphic),
		manualBlock("pads", manualAudio("phone", micCue("phone", "phone-mic", 60))),
	))
	e.Advance(at(0))
	e.Advance(at(0))
	e.ToggleManualItem("phone", at(0))
	e.Flush()

	t.Run("preview recomputed", func(t *testing.T) {
		e.SetRundown(showOf(
			manualItem("a", rundown.KindGraphic),
			autoItem("b", rundown.KindVideo, 10),
			manualItem("x", rundown.KindGraphic),
			manualItem("c", rundown.KindGraphic),
			manualBlock("pads", manualAudio("phone", micCue("phone", "phone-mic", 60))),
		), at(secs(1)))

		st := e.State()
		if st.LiveID != "b" || st.PreviewID != "x" {
			t.Errorf("live/preview = %q/%q, want b/x", st.LiveID, st.PreviewID)
		}
		if !e.Timer().Active() {
			t.Error("timer cancelled although LIVE item still exists")
		}
		if !st.IsManualLive("phone") {
			t.Error("manual item dropped although still present")
		}
	})

	t.Run("removed items dropped", func(t *testing.T) {
		e.Flush()
		e.SetRundown(showOf(
			manualItem("a", rundown.KindGraphic),
			manualItem("c", rundown.KindGraphic),
		), at(secs(2)))

		st := e.State()
		if st.LiveID != "b" {
			t.Errorf("LiveID = %q, removed LIVE item should stay reported", st.LiveID)
		}
		if st.PreviewID != "" {
			t.Errorf("PreviewID = %q, want none", st.PreviewID)
		}
		if e.Timer().Active() {
			t.Error("timer of removed item still running")
		}
		if len(st.LiveManualItemIDs) != 0 {
			t.Errorf("LiveManualItemIDs = %v, want none", st.LiveManualItemIDs)
		}

		cmds, evs := e.Flush()
		if len(cmds) != 1 || cmds[0].Action != MicMute {
			t.Errorf("commands = %+v, want one mute for the dropped mic", cmds)
		}
		if diff := cmp.Diff([]EventType{EventManualOff, EventRundownChanged}, eventTypes(evs)); diff != "" {
			t.Errorf("events mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestEngineRegularAudioSurvives(t *testing.T) {
	show := func(items ...rundown.Item) *rundown.Show {
		base := []rundown.Item{
			withAudio(manualItem("host", rundown.KindAudioCue), micCue("host", "host-mic", 80)),
		}
		return showOf(append(base, items...)...)
	}
	pads := manualBlock("pads", manualAudio("sting", mediaCue("sting-track", "sting", 100)))

	t.Run("live removed by edit", func(t *testing.T) {
		e := newTestEngine(t, show(
			manualItem("v1", rundown.KindVideo),
			manualItem("v2", rundown.KindVideo),
		))
		e.Advance(at(0))
		e.Advance(at(0)) // v1 live

		e.SetRundown(show(manualItem("v2", rundown.KindVideo)), at(secs(1)))
		if e.State().LiveID != "v1" {
			t.Fatalf("LiveID = %q, want stale v1", e.State().LiveID)
		}
		audio := e.ActiveAudio()
		if len(audio.Mics) != 1 || audio.Mics[0].ID != "host-mic" || audio.Mics[0].Volume != 80 {
			t.Errorf("mics = %+v, want host-mic at 80", audio.Mics)
		}
		if snap := e.Snapshot(at(secs(1))); len(snap.Audio.Mics) != 1 {
			t.Errorf("snapshot mics = %+v, want host-mic", snap.Audio.Mics)
		}
	})

	t.Run("manual promotion", func(t *testing.T) {
		e := newTestEngine(t, show(manualItem("v", rundown.KindVideo), pads))
		e.Advance(at(0))
		e.Advance(at(0)) // v live
		e.ArmManualButton("sting")
		e.Advance(at(secs(1)))

		if e.State().LiveID != "" {
			t.Fatalf("LiveID = %q, want empty after manual promotion", e.State().LiveID)
		}
		audio := e.ActiveAudio()
		if len(audio.Mics) != 1 || audio.Mics[0].ID != "host-mic" {
			t.Errorf("mics = %+v, want host-mic kept", audio.Mics)
		}
		if len(audio.Media) != 1 || audio.Media[0].ID != "sting" {
			t.Errorf("media = %+v, want sting", audio.Media)
		}
	})

	t.Run("stop clears", func(t *testing.T) {
		e := newTestEngine(t, show(manualItem("v", rundown.KindVideo)))
		e.Advance(at(0))
		e.Stop(at(secs(1)))
		if got := e.ActiveAudio(); got.Len() != 0 {
			t.Errorf("audio after stop = %+v, want none", got)
		}
	})
}

func TestEngineAdvanceClearsRemovedLastItem(t *testing.T) {
	e := newTestEngine(t, showOf(
		manualItem("a", rundown.KindGraphic),
		autoItem("b", rundown.KindVideo, 10),
	))
	e.Advance(at(0))
	e.Advance(at(0)) // b live with a timer

	e.SetRundown(showOf(manualItem("a", rundown.KindGraphic)), at(secs(1)))
	e.Flush()
	rev := e.Revision()

	e.Advance(at(secs(2)))
	st := e.State()
	if st.LiveID != "" || st.PreviewID != "" {
		t.Errorf("live/preview = %q/%q, want both empty", st.LiveID, st.PreviewID)
	}
	if e.Timer().Active() {
		t.Error("timer running with no LIVE item")
	}
	if snap := e.Snapshot(at(secs(2))); snap.Live != nil {
		t.Errorf("snapshot Live = %+v, want nil", snap.Live)
	}
	if e.Revision() == rev {
		t.Error("revision unchanged after clearing LIVE")
	}
}

func TestEngineSnapshot(t *testing.T) {
	e := newTestEngine(t, showOf(
		autoItem("open", rundown.KindVideo, 12),
		overlayItem("lt", 2, 5, rundown.PolicyAutoOut),
		manualItem("next", rundown.KindGraphic),
	))
	e.Advance(at(0))
	e.ArmTransition("mix")

	snap := e.Snapshot(at(secs(2.5)))
	if snap.SessionID != "test-session" || snap.ShowID != "show" {
		t.Errorf("identity = %q/%q", snap.SessionID, snap.ShowID)
	}
	if snap.Live == nil || snap.Live.ID != "open" || snap.Live.SegmentID != "seg-1" {
		t.Errorf("Live = %+v, want open in seg-1", snap.Live)
	}
	if snap.Preview == nil || snap.Preview.ID != "next" {
		t.Errorf("Preview = %+v, want next", snap.Preview)
	}
	if snap.ArmedTransition != "mix" {
		t.Errorf("ArmedTransition = %q, want mix", snap.ArmedTransition)
	}
	if snap.Timer == nil || snap.Timer.RemainingSeconds != 10 || snap.Timer.DurationSeconds != 12 {
		t.Errorf("Timer = %+v, want 10s of 12s", snap.Timer)
	}
	if snap.SessionElapsedSeconds != 2.5 {
		t.Errorf("SessionElapsedSeconds = %v, want 2.5", snap.SessionElapsedSeconds)
	}
	if snap.LiveManualItemIDs == nil || snap.Overlays == nil {
		t.Error("snapshot collections must be non-nil")
	}

	e.Stop(at(secs(3)))
	snap = e.Snapshot(at(secs(3)))
	if !snap.Stopped || snap.Live != nil || snap.Timer != nil || snap.SessionElapsedSeconds != 0 {
		t.Errorf("stopped snapshot = %+v", snap)
	}
}

func TestEngineRevision(t *testing.T) {
	e := newTestEngine(t, showOf(autoItem("a", rundown.KindVideo, 5), manualItem("b", rundown.KindGraphic)))
	e.Advance(at(0))
	e.Tick(at(0))
	rev := e.Revision()

	// Same displayed second: no new revision.
	e.Tick(at(secs(0.5)))
	if e.Revision() != rev {
		t.Errorf("Revision() moved within the same displayed second")
	}
	e.Tick(at(secs(1)))
	if e.Revision() == rev {
		t.Errorf("Revision() did not move when the countdown changed")
	}
}

func TestEngineApply(t *testing.T) {
	e := newTestEngine(t, showOf(
		autoItem("a", rundown.KindVideo, 10),
		manualItem("b", rundown.KindGraphic),
		manualBlock("pads", manualAudio("sting", mediaCue("sting-track", "sting", 100)), manualOverlay("bug")),
	))

	steps := []struct {
		button Button
		check  func(t *testing.T, st State)
	}{
		{Button{Type: ButtonNext}, func(t *testing.T, st State) {
			if st.LiveID != "a" {
				t.Errorf("LiveID = %q, want a", st.LiveID)
			}
		}},
		{Button{Type: ButtonTransition, Data: ButtonData{Name: "wipe"}}, func(t *testing.T, st State) {
			if st.ArmedTransition != "wipe" {
				t.Errorf("ArmedTransition = %q, want wipe", st.ArmedTransition)
			}
		}},
		{Button{Type: ButtonTransition}, func(t *testing.T, st State) {
			if st.ArmedTransition != "" {
				t.Errorf("ArmedTransition = %q, want cleared", st.ArmedTransition)
			}
		}},
		{Button{Type: ButtonManual, Data: ButtonData{ID: "sting", Arm: true}}, func(t *testing.T, st State) {
			if st.ArmedManualButtonID != "sting" {
				t.Errorf("ArmedManualButtonID = %q, want sting", st.ArmedManualButtonID)
			}
		}},
		{Button{Type: ButtonManual, Data: ButtonData{Arm: true}}, func(t *testing.T, st State) {
			if st.ArmedManualButtonID != "" {
				t.Errorf("ArmedManualButtonID = %q, want cleared", st.ArmedManualButtonID)
			}
		}},
		{Button{Type: ButtonManual, Data: ButtonData{ID: "sting"}}, func(t *testing.T, st State) {
			if !st.IsManualLive("sting") {
				t.Error("sting not live after manual toggle")
			}
		}},
		{Button{Type: ButtonOverlay, Data: ButtonData{ID: "bug"}}, func(t *testing.T, st State) {
			if !st.IsManualLive("bug") {
				t.Error("bug not live after overlay toggle")
			}
		}},
		{Button{Type: ButtonOverlay, Data: ButtonData{ID: "bug", Action: "remove"}}, func(t *testing.T, st State) {
			if st.IsManualLive("bug") {
				t.Error("bug still live after overlay remove")
			}
		}},
		{Button{Type: "PAUSE"}, func(t *testing.T, st State) {
			if !st.Paused {
				t.Error("session not paused")
			}
		}},
		{Button{Type: ButtonPause}, func(t *testing.T, st State) {
			if st.Paused {
				t.Error("second pause did not resume")
			}
		}},
		{Button{Type: ButtonStop}, func(t *testing.T, st State) {
			if !st.Stopped {
				t.Error("session not stopped")
			}
		}},
	}

	for i, step := range steps {
		if err := e.Apply(step.button, at(secs(float64(i)))); err != nil {
			t.Fatalf("Apply(%+v) error = %v", step.button, err)
		}
		step.check(t, e.State())
	}

	if err := e.Apply(Button{Type: "rewind"}, at(0)); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("Apply(rewind) error = %v, want ErrUnknownControl", err)
	}
	if err := e.Apply(Button{Type: ButtonOverlay, Data: ButtonData{ID: "bug", Action: "flash"}}, at(0)); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("Apply(overlay flash) error = %v, want ErrUnknownControl", err)
	}
}

func TestParseControlMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Button
		wantErr bool
	}{
		{
			name:  "envelope",
			input: `{"type":"CONTROL_ACTION","button":{"type":"next"}}`,
			want:  Button{Type: "next"},
		},
		{
			name:  "envelope with data",
			input: `{"type":"CONTROL_ACTION","button":{"type":"manual","data":{"id":"sting","arm":true}}}`,
			want:  Button{Type: "manual", Data: ButtonData{ID: "sting", Arm: true}},
		},
		{
			name:  "bare button",
			input: `{"type":"transition","data":{"name":"mix"}}`,
			want:  Button{Type: "transition", Data: ButtonData{Name: "mix"}},
		},
		{name: "not json", input: `next`, wantErr: true},
		{name: "empty object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseControlMessage([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidControl) {
					t.Fatalf("error = %v, want ErrInvalidControl", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseControlMessage() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("button mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngineDispose(t *testing.T) {
	e := newTestEngine(t, showOf(autoItem("a", rundown.KindVideo, 1), manualItem("b", rundown.KindGraphic)))
	e.Advance(at(0))
	e.Dispose()
	e.Dispose()

	if e.Timer().Active() {
		t.Error("timer survived Dispose()")
	}
	e.Tick(at(secs(5)))
	e.Advance(at(secs(5)))
	if e.State().LiveID != "a" {
		t.Errorf("LiveID = %q, disposed engine must not move", e.State().LiveID)
	}
}

func TestNewWithoutRundown(t *testing.T) {
	if _, err := New(nil, Options{}); !errors.Is(err, ErrSessionUnavailable) {
		t.Errorf("New(nil) error = %v, want ErrSessionUnavailable", err)
	}
}

func boolPtr(v bool) *bool {
	return &v
}
