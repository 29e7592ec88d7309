package automation

import (
	"math"
	"time"

	"github.com/nerrad567/rundown-core/internal/rundown"
)

// DefaultTickInterval is the cadence the Runner drives Tick at.
const DefaultTickInterval = 100 * time.Millisecond

// Timer is the auto-advance countdown for the LIVE item. At most one is
// active. It never calls back: Tick reports expiry and the Engine advances.
//
// Expiry is judged on the exact deadline; RemainingSeconds is the rounded-up
// value for display only.
type Timer struct {
	itemID string
	active bool

	// pending fires on the next Tick, for zero-duration and instant items.
	pending bool

	deadline  time.Time
	duration  time.Duration
	remaining time.Duration // frozen while paused
	paused    bool
}

// Start replaces any running countdown with one for item. Manual items do
// not start a timer. Zero-duration items and kinds that execute instantly
// fire on the following Tick rather than now. A timer started while the
// session is paused begins frozen.
func (t *Timer) Start(item *rundown.Item, now time.Time, paused bool) {
	t.Cancel()
	if item == nil || !item.IsAuto() {
		return
	}

	t.itemID = item.ID
	t.active = true
	t.paused = paused

	if item.AutomationDurationSeconds <= 0 || item.Kind.ExecutesInstantly() {
		t.pending = true
		return
	}

	t.duration = time.Duration(item.AutomationDurationSeconds * float64(time.Second))
	t.remaining = t.duration
	if !paused {
		t.deadline = now.Add(t.duration)
	}
}

// Cancel stops the countdown. A cancelled timer never fires.
func (t *Timer) Cancel() {
	*t = Timer{}
}

// Pause freezes the remaining time.
func (t *Timer) Pause(now time.Time) {
	if !t.active || t.paused {
		return
	}
	t.paused = true
	if t.pending {
		return
	}
	t.remaining = t.deadline.Sub(now)
	if t.remaining < 0 {
		t.remaining = 0
	}
}

// Resume restarts the countdown with a deadline of now plus the frozen
// remaining time.
func (t *Timer) Resume(now time.Time) {
	if !t.active || !t.paused {
		return
	}
	t.paused = false
	if t.pending {
		return
	}
	t.deadline = now.Add(t.remaining)
}

// Tick reports whether the timer expired at now. It fires exactly once and
// then clears itself.
func (t *Timer) Tick(now time.Time) bool {
	if !t.active || t.paused {
		return false
	}
	if t.pending || !now.Before(t.deadline) {
		t.Cancel()
		return true
	}
	return false
}

// Active reports whether a countdown is running or frozen.
func (t *Timer) Active() bool { return t.active }

// Paused reports whether the countdown is frozen.
func (t *Timer) Paused() bool { return t.active && t.paused }

// ItemID returns the item the timer belongs to, or "".
func (t *Timer) ItemID() string { return t.itemID }

// Remaining returns the exact time left.
func (t *Timer) Remaining(now time.Time) time.Duration {
	switch {
	case !t.active, t.pending:
		return 0
	case t.paused:
		return t.remaining
	}
	if d := t.deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// RemainingSeconds returns the time left rounded up to whole seconds.
func (t *Timer) RemainingSeconds(now time.Time) int {
	return int(math.Ceil(t.Remaining(now).Seconds()))
}

// Duration returns the full countdown length of the current item.
func (t *Timer) Duration() time.Duration { return t.duration }
