package model

import (
	"fmt"
	"strconv"
)

// PriceSlot is one fixed-duration (15-minute) Nordpool interval.
// Slots arrive from Home Assistant already localized; Start keeps the raw
// timestamp string and only the HH:MM portion is ever interpreted.
type PriceSlot struct {
	// Start is an ISO-8601-like timestamp, e.g. "2026-02-16T18:30:00+02:00".
	Start string `json:"start"`
	// Value is the slot price in the sensor's currency/energy unit (c/kWh).
	Value float64 `json:"value"`
}

// clockIndex is the byte offset of "HH:MM" inside Start.
const clockIndex = 11

// Clock returns the slot's start as (hour, minute) by reading the fixed
// HH:MM substring. Sources with a different timestamp layout must normalize
// before their slots reach this package.
func (s PriceSlot) Clock() (hour, minute int, err error) {
	raw := s.Start
	if len(raw) < clockIndex+5 {
		return 0, 0, fmt.Errorf("slot start %q too short for HH:MM at offset %d", raw, clockIndex)
	}
	if raw[clockIndex+2] != ':' {
		return 0, 0, fmt.Errorf("slot start %q missing ':' separator", raw)
	}
	hour, err = strconv.Atoi(raw[clockIndex : clockIndex+2])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in slot start %q", raw)
	}
	minute, err = strconv.Atoi(raw[clockIndex+3 : clockIndex+5])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute in slot start %q", raw)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("slot start %q outside 24h clock", raw)
	}
	return hour, minute, nil
}

// PriceSeries is a chronological sequence of slots. Order is an input
// invariant owned by the producer; nothing here reorders.
type PriceSeries []PriceSlot

// SensorState is the validated snapshot of the Nordpool sensor: the headline
// numbers plus today's (and, when published, tomorrow's) slot series.
type SensorState struct {
	EntityID string `json:"entity_id"`

	// CurrentPrice, Average, Min and Max are in c/kWh, as reported by the
	// sensor for the current day.
	CurrentPrice float64 `json:"current_price"`
	Average      float64 `json:"average"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`

	RawToday    PriceSeries `json:"raw_today"`
	RawTomorrow PriceSeries `json:"raw_tomorrow,omitempty"`
}

// AllSlots returns today's and tomorrow's slots as one flat series,
// concatenated in publication order.
func (s *SensorState) AllSlots() PriceSeries {
	if len(s.RawTomorrow) == 0 {
		return s.RawToday
	}
	all := make(PriceSeries, 0, len(s.RawToday)+len(s.RawTomorrow))
	all = append(all, s.RawToday...)
	all = append(all, s.RawTomorrow...)
	return all
}
