package mqtt

import "strings"

// Topics builds the MQTT topic strings used by Rundown Core.
//
// Topic layout:
//
//	rundown/command/audio/{itemId}   audio commands (prefix set by playout config)
//	rundown/control/{surface}        control-surface button presses
//	rundown/state                    latest session snapshot, retained
//	rundown/system/status            online/offline with LWT, retained
type Topics struct{}

const (
	topicRoot    = "rundown"
	controlRoot  = topicRoot + "/control/"
	statusTopic  = topicRoot + "/system/status"
	stateTopic   = topicRoot + "/state"
	singleWild   = "+"
	multiWild    = "#"
	topicDivider = "/"
)

// Control returns the topic a named control surface publishes on.
func (Topics) Control(surface string) string {
	return controlRoot + surface
}

// AllControl returns a wildcard matching every control surface.
func (Topics) AllControl() string {
	return controlRoot + singleWild
}

// State returns the retained session snapshot topic.
func (Topics) State() string {
	return stateTopic
}

// SystemStatus returns the service status topic used for the LWT.
func (Topics) SystemStatus() string {
	return statusTopic
}

// All returns a wildcard matching every Rundown Core topic.
func (Topics) All() string {
	return topicRoot + topicDivider + multiWild
}

// SurfaceFromTopic extracts the surface name from a control topic. It
// returns "" for any other topic.
func SurfaceFromTopic(topic string) string {
	surface, ok := strings.CutPrefix(topic, controlRoot)
	if !ok || surface == "" || strings.Contains(surface, topicDivider) {
		return ""
	}
	return surface
}
