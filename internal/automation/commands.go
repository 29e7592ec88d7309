package automation

import (
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/rundown-core/internal/rundown"
)

// CommandType names an outbound actuator command.
type CommandType string

const (
	CommandPlayAudio  CommandType = "PLAY_AUDIO"
	CommandStopAudio  CommandType = "STOP_AUDIO"
	CommandControlMic CommandType = "CONTROL_MIC"
)

// MicAction is the CONTROL_MIC action.
type MicAction string

const (
	MicUnmute MicAction = "unmute"
	MicMute   MicAction = "mute"
)

// Command is an outbound actuator command. Field names follow the wire
// contract consumed by the audio actuators.
type Command struct {
	ID     string      `json:"id"`
	Type   CommandType `json:"type"`
	ItemID string      `json:"itemId"`

	MediaPath string `json:"mediaPath,omitempty"`
	MediaID   string `json:"mediaId,omitempty"`

	SourceID   string    `json:"sourceId,omitempty"`
	SourceName string    `json:"sourceName,omitempty"`
	Action     MicAction `json:"action,omitempty"`

	Volume       *float64 `json:"volume,omitempty"`
	FadeOut      *bool    `json:"fadeOut,omitempty"`
	FadeDuration *float64 `json:"fadeDuration,omitempty"`

	IssuedAt time.Time `json:"issuedAt"`
}

// GenerateID creates a new UUID for a session, command or log entry.
func GenerateID() string {
	return uuid.New().String()
}

// manualAudioCommand builds the single command for a manual audio cue
// toggling on or off. before is the active audio prior to the toggle, used
// to resolve the track an existing-mode cue refers to. It returns false when
// the toggle has nothing to actuate.
func manualAudioCommand(mi *rundown.ManualItem, on bool, before ActiveAudio, now time.Time) (Command, bool) {
	cue := mi.Audio
	if mi.Kind != rundown.KindAudioCue || cue == nil || !cue.Valid {
		return Command{}, false
	}

	cmd := Command{ID: GenerateID(), ItemID: mi.ID, IssuedAt: now}

	switch cue.Mode {
	case rundown.AudioNew:
		mic := cue.SourceType == rundown.SourceMic
		switch {
		case mic && on:
			cmd.Type = CommandControlMic
			cmd.Action = MicUnmute
			cmd.SourceID = cue.SourceID
			cmd.SourceName = cue.SourceName
			cmd.Volume = floatPtr(cue.Volume)
			if cue.FadeInSeconds > 0 {
				cmd.FadeDuration = floatPtr(cue.FadeInSeconds)
			}
		case mic:
			cmd.Type = CommandControlMic
			cmd.Action = MicMute
			cmd.SourceID = cue.SourceID
			cmd.SourceName = cue.SourceName
			setFadeOut(&cmd, cue.FadeOutSeconds > 0, cue.FadeOutSeconds)
		case on:
			cmd.Type = CommandPlayAudio
			cmd.MediaID = cue.SourceID
			cmd.MediaPath = cue.MediaPath
			cmd.Volume = floatPtr(cue.Volume)
		default:
			cmd.Type = CommandStopAudio
			cmd.MediaID = cue.SourceID
			setFadeOut(&cmd, cue.FadeOutSeconds > 0, cue.FadeOutSeconds)
		}
		return cmd, true

	case rundown.AudioExisting:
		if !on {
			return Command{}, false
		}
		track, mic, ok := before.Find(cue.TrackID)
		if !ok {
			return Command{}, false
		}

		removing := cue.Action == rundown.ActionStop || cue.Action == rundown.ActionFadeOut
		fading := cue.Action == rundown.ActionFadeOut || cue.Action == rundown.ActionFadeTo
		switch {
		case mic:
			cmd.Type = CommandControlMic
			cmd.SourceID = track.ID
			cmd.SourceName = track.Name
			if removing {
				cmd.Action = MicMute
				setFadeOut(&cmd, fading, cue.FadeDurationSeconds)
			} else {
				cmd.Action = MicUnmute
				cmd.Volume = floatPtr(cue.TargetVolume)
				if fading {
					cmd.FadeDuration = floatPtr(cue.FadeDurationSeconds)
				}
			}
		case removing:
			cmd.Type = CommandStopAudio
			cmd.MediaID = track.ID
			setFadeOut(&cmd, fading, cue.FadeDurationSeconds)
		default:
			cmd.Type = CommandPlayAudio
			cmd.MediaID = track.ID
			cmd.MediaPath = track.MediaPath
			cmd.Volume = floatPtr(cue.TargetVolume)
		}
		return cmd, true
	}
	return Command{}, false
}

func setFadeOut(cmd *Command, fade bool, seconds float64) {
	cmd.FadeOut = &fade
	if fade {
		cmd.FadeDuration = floatPtr(seconds)
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
