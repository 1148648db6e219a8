// Package sched owns the refresh cadence: when to re-fetch sensor data and
// when a redraw is worthwhile.
package sched

import (
	"time"

	"github.com/granholm/presto-ha-nordpool/internal/model"
)

// Fetcher retrieves the latest sensor state. Implementations bound their
// own I/O timeouts; a failed attempt is simply retried on the next eligible
// tick.
type Fetcher interface {
	Fetch() (*model.SensorState, error)
}

// Refresher re-fetches sensor data on a fixed interval and keeps the last
// successful result as a fallback. A failed fetch leaves both the cache and
// the fetch timestamp untouched, so stale data keeps rendering and the next
// tick retries.
type Refresher struct {
	fetcher  Fetcher
	interval time.Duration

	lastFetch time.Time
	cached    *model.SensorState
}

func NewRefresher(fetcher Fetcher, interval time.Duration) *Refresher {
	return &Refresher{fetcher: fetcher, interval: interval}
}

// Tick attempts a fetch when the interval has elapsed since the last
// success. The zero lastFetch time makes the very first tick fetch
// immediately. The returned error is the fetcher's own; the caller decides
// the cooldown before the next tick.
func (r *Refresher) Tick(now time.Time) error {
	if !r.lastFetch.IsZero() && now.Sub(r.lastFetch) < r.interval {
		return nil
	}
	state, err := r.fetcher.Fetch()
	if err != nil {
		return err
	}
	r.cached = state
	r.lastFetch = now
	return nil
}

// State returns the most recent successful fetch, or nil before the first
// success.
func (r *Refresher) State() *model.SensorState { return r.cached }

// ShouldRedraw reports whether a redraw is worthwhile this tick: only when
// the backlight is lit and there is data to draw. Both "no data yet" and
// "display off" suppress drawing without being errors.
func (r *Refresher) ShouldRedraw(backlightOn bool) bool {
	return backlightOn && r.cached != nil
}
