// Package power decides when the panel backlight is lit: a configured
// quiet-hours window turns the display off overnight, and a touch during
// quiet hours wakes it for a bounded interval.
package power

// Quiet checks whether hour is in the [start, end) quiet window on a 24h clock.
// If start == end, the window is empty (always false).
// If start < end, it's a normal same-day window.
// If start > end, it wraps across midnight.
func Quiet(hour, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return hour >= start && hour < end
	}
	// wrap
	return hour >= start || hour < end
}
