package hasim

import (
	"math"
	"time"

	"github.com/granholm/presto-ha-nordpool/internal/model"
)

// Generator produces deterministic quarter-hour price days shaped like a
// typical Nordpool curve: an overnight trough and morning and evening
// peaks. The same date always yields the same series, which keeps repeated
// fetches stable within a day.
type Generator struct{}

// Day returns 96 slots covering the given date. Timestamps carry date's
// zone, so the HH:MM substring reads as local panel time.
func (Generator) Day(date time.Time) model.PriceSeries {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	series := make(model.PriceSeries, 0, 96)
	for i := 0; i < 96; i++ {
		t := midnight.Add(time.Duration(i) * 15 * time.Minute)
		series = append(series, model.PriceSlot{
			Start: t.Format(time.RFC3339),
			Value: priceAt(t),
		})
	}
	return series
}

// priceAt models the daily shape: a cheap night, a morning ramp peaking
// around 08:30 and a taller evening peak around 19:00, scaled by a
// per-date factor so consecutive days differ.
func priceAt(t time.Time) float64 {
	hf := float64(t.Hour()) + float64(t.Minute())/60

	price := 4.5 +
		9*gauss(hf, 8.5, 1.8) +
		11*gauss(hf, 19, 2.2) -
		1.5*math.Cos(hf*math.Pi/12)

	dayFactor := 0.85 + 0.3*math.Abs(math.Sin(float64(t.YearDay())))
	return math.Round(price*dayFactor*100) / 100
}

func gauss(x, mu, sigma float64) float64 {
	d := x - mu
	return math.Exp(-(d * d) / (2 * sigma * sigma))
}

// Stats sweeps a series for its average, minimum and maximum values. A nil
// or empty series yields zeros.
func Stats(series model.PriceSeries) (avg, min, max float64) {
	if len(series) == 0 {
		return 0, 0, 0
	}
	min, max = series[0].Value, series[0].Value
	sum := 0.0
	for _, s := range series {
		sum += s.Value
		if s.Value < min {
			min = s.Value
		}
		if s.Value > max {
			max = s.Value
		}
	}
	return math.Round(sum/float64(len(series))*100) / 100, min, max
}

// currentValue finds the price of the slot covering (hour, minute), using
// the same quarter-hour bucketing the dashboard applies. Falls back to the
// first slot when the series does not cover now.
func currentValue(series model.PriceSeries, hour, minute int) float64 {
	if len(series) == 0 {
		return 0
	}
	quarter := (minute / 15) * 15
	for _, s := range series {
		h, m, err := s.Clock()
		if err != nil {
			continue
		}
		if h == hour && m == quarter {
			return s.Value
		}
	}
	return series[0].Value
}
