// Package clock derives panel-local wall time from UTC and a fixed offset.
// Offset correctness across DST changes is a configuration responsibility,
// not this package's.
package clock

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// Local converts a UTC wall-clock (hour, minute) to local time by applying
// offsetHours (signed, possibly fractional). The result wraps around
// midnight in both directions.
func Local(utcHour, utcMinute int, offsetHours float64) (hour, minute int) {
	m := utcHour*60 + utcMinute + int(offsetHours*60)
	m %= minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return m / 60, m % 60
}

// FromTime is Local applied to a time.Time's UTC clock reading.
func FromTime(utc time.Time, offsetHours float64) (hour, minute int) {
	t := utc.UTC()
	return Local(t.Hour(), t.Minute(), offsetHours)
}

// HHMM formats a clock reading as "HH:MM" for display.
func HHMM(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// Source produces the loop's notion of the current UTC instant.
type Source interface {
	NowUTC() time.Time
}

// SystemSource reads the operating system clock.
type SystemSource struct{}

func (SystemSource) NowUTC() time.Time { return time.Now().UTC() }

// OffsetSource applies a fixed correction, typically the offset measured
// against an NTP server at startup, on top of the system clock.
type OffsetSource struct {
	Offset time.Duration
}

func (s OffsetSource) NowUTC() time.Time { return time.Now().Add(s.Offset).UTC() }
