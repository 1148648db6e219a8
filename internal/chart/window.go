// Package chart turns a raw price series into the fixed-size view the
// renderer draws: a window of past and future slots anchored on the
// current quarter hour, plus a tier classification for coloring.
package chart

import (
	"github.com/granholm/presto-ha-nordpool/internal/model"
)

// SlotMinutes is the duration of one price slot.
const SlotMinutes = 15

// Window is the slice of the series handed to the renderer. Slots aliases
// the input series and must be treated as read-only. NowOffset indexes the
// current slot within Slots; when it falls outside [0, len(Slots)) no
// now-marker is drawn.
type Window struct {
	Slots     model.PriceSeries
	NowOffset int
}

// HasNow reports whether NowOffset points at a slot in the window.
func (w Window) HasNow() bool {
	return w.NowOffset >= 0 && w.NowOffset < len(w.Slots)
}

// Build locates the slot covering (nowHour, nowMinute) and extracts up to
// pastCount slots before it and futureCount slots from it onward.
//
// The current minute is bucketed down to its quarter hour and the series is
// scanned in order for the first slot starting at exactly that time. When no
// slot matches (empty or stale series) the index falls back to 0 and the
// window shows the start of the series; with a non-empty series this places
// the marker on slot 0 even though it is not "now". Callers that need to
// distinguish the degraded case must compare timestamps themselves.
func Build(series model.PriceSeries, nowHour, nowMinute, pastCount, futureCount int) Window {
	quarter := (nowMinute / SlotMinutes) * SlotMinutes

	found := 0
	for i, slot := range series {
		h, m, err := slot.Clock()
		if err != nil {
			continue
		}
		if h == nowHour && m == quarter {
			found = i
			break
		}
	}

	start := found - pastCount
	if start < 0 {
		start = 0
	}
	end := found + futureCount
	if end > len(series) {
		end = len(series)
	}

	return Window{
		Slots:     series[start:end],
		NowOffset: found - start,
	}
}
