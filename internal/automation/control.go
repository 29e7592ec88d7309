package automation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MessageControlAction is the envelope type of a control-surface message.
const MessageControlAction = "CONTROL_ACTION"

// Control button types.
const (
	ButtonStop       = "stop"
	ButtonPause      = "pause"
	ButtonNext       = "next"
	ButtonTransition = "transition"
	ButtonManual     = "manual"
	ButtonOverlay    = "overlay"
)

// ControlMessage is a control-surface message:
//
//	{"type": "CONTROL_ACTION", "button": {"type": "next"}}
type ControlMessage struct {
	Type   string `json:"type"`
	Button Button `json:"button"`
}

// Button is a control-surface action.
type Button struct {
	Type string     `json:"type"`
	Data ButtonData `json:"data"`
}

// ButtonData carries the arguments of a Button. Which fields are read
// depends on the button type.
type ButtonData struct {
	// Name is the transition to arm; empty clears it.
	Name string `json:"name,omitempty"`
	// ID is the manual item or overlay the button addresses.
	ID string `json:"id,omitempty"`
	// Arm arms a manual item for the next advance instead of toggling it.
	Arm bool `json:"arm,omitempty"`
	// Action is "toggle" or "remove" for overlay buttons.
	Action string `json:"action,omitempty"`
}

// ParseControlMessage decodes a control-surface message. A bare Button is
// also accepted.
func ParseControlMessage(data []byte) (Button, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Button{}, fmt.Errorf("%w: %w", ErrInvalidControl, err)
	}

	switch {
	case msg.Type == MessageControlAction:
		return msg.Button, nil
	case msg.Button.Type == "" && msg.Type != "":
		var b Button
		if err := json.Unmarshal(data, &b); err != nil {
			return Button{}, fmt.Errorf("%w: %w", ErrInvalidControl, err)
		}
		return b, nil
	default:
		return Button{}, fmt.Errorf("%w: unexpected message type %q", ErrInvalidControl, msg.Type)
	}
}

// Apply maps a control button onto the engine operations.
func (e *Engine) Apply(b Button, now time.Time) error {
	switch strings.ToLower(strings.TrimSpace(b.Type)) {
	case ButtonStop:
		e.Stop(now)
	case ButtonPause:
		e.TogglePause(now)
	case ButtonNext:
		e.Advance(now)
	case ButtonTransition:
		if b.Data.Name == "" {
			e.ClearArmedTransition()
		} else {
			e.ArmTransition(b.Data.Name)
		}
	case ButtonManual:
		switch {
		case b.Data.Arm && b.Data.ID == "":
			e.ClearArmedManualButton()
		case b.Data.Arm:
			e.ArmManualButton(b.Data.ID)
		default:
			e.ToggleManualItem(b.Data.ID, now)
		}
	case ButtonOverlay:
		switch b.Data.Action {
		case "", "toggle":
			e.ToggleOverlay(b.Data.ID, now)
		case "remove":
			e.RemoveOverlay(b.Data.ID, now)
		default:
			return fmt.Errorf("%w: overlay action %q", ErrUnknownControl, b.Data.Action)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownControl, b.Type)
	}
	return nil
}
