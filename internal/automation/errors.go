package automation

import "errors"

// Domain errors for the automation package.
//
// The engine's playout operations never fail; these errors only come from
// the boundary (session loading, control parsing, the runner lifecycle):
//
//	if errors.Is(err, automation.ErrSessionUnavailable) {
//	    // report "cannot start session"
//	}
var (
	// ErrSessionUnavailable is returned when no rundown has been loaded, so
	// there is no session to operate on.
	ErrSessionUnavailable = errors.New("playout: cannot start session")

	// ErrUnknownControl is returned for a control message whose type is not recognised.
	ErrUnknownControl = errors.New("playout: unknown control action")

	// ErrInvalidControl is returned for a control message that cannot be decoded.
	ErrInvalidControl = errors.New("playout: invalid control message")

	// ErrRunnerClosed is returned when a request reaches a runner that has stopped.
	ErrRunnerClosed = errors.New("playout: runner closed")
)
