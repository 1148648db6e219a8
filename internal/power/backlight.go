package power

import "time"

// Backlight is the display-power state machine. It owns two pieces of
// state, the on/off flag and an optional wake deadline, and is advanced
// exactly once per scheduler tick. A zero wakeDeadline means no wake timer
// is running.
type Backlight struct {
	on           bool
	wakeDeadline time.Time
	wake         time.Duration
}

// NewBacklight returns a machine that boots as if the panel had just been
// touched: lit, with a full wake window measured from bootTime. Booting
// inside quiet hours therefore shows the display once before it goes dark.
func NewBacklight(bootTime time.Time, wake time.Duration) *Backlight {
	return &Backlight{
		on:           true,
		wakeDeadline: bootTime.Add(wake),
		wake:         wake,
	}
}

// On reports the current state without advancing the machine.
func (b *Backlight) On() bool { return b.on }

// Step advances the machine one tick and reports whether the backlight
// should be lit. Transitions, in priority order:
//
//  1. A touch during quiet hours turns the display on and restarts the
//     wake timer, extending any window already running.
//  2. During quiet hours a lit display goes dark once the wake timer has
//     expired, or immediately when none is running.
//  3. Outside quiet hours the display is always on and any stale wake
//     timer is discarded so it cannot leak into the next quiet period.
//
// Anything else leaves the state untouched.
func (b *Backlight) Step(now time.Time, quiet, touched bool) bool {
	switch {
	case touched && quiet:
		b.on = true
		b.wakeDeadline = now.Add(b.wake)
	case quiet && b.on:
		if b.wakeDeadline.IsZero() || !now.Before(b.wakeDeadline) {
			b.on = false
			b.wakeDeadline = time.Time{}
		}
	case !quiet:
		b.on = true
		b.wakeDeadline = time.Time{}
	}
	return b.on
}
