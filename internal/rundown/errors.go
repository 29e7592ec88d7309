package rundown

import "errors"

// Domain errors for the rundown package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, rundown.ErrShowNotFound) {
//	    // handle not found case
//	}
var (
	// ErrShowNotFound is returned when a show ID does not exist in the store.
	ErrShowNotFound = errors.New("rundown: show not found")

	// ErrInvalidShow is returned when a document fails validation.
	ErrInvalidShow = errors.New("rundown: invalid show")

	// ErrEmptyRundown is returned when a show has no navigable items.
	ErrEmptyRundown = errors.New("rundown: no navigable items")

	// ErrUnsupportedFormat is returned when a rundown file extension is not recognised.
	ErrUnsupportedFormat = errors.New("rundown: unsupported file format")
)
