// Package render draws dashboard frames in immediate mode: every call
// rebuilds the whole 480x480 image from the view it is handed, so the
// renderer itself carries no state between redraws.
package render

import (
	"fmt"

	"github.com/granholm/presto-ha-nordpool/internal/chart"
)

// Layout. The header panel holds the clock, headline price and stats row;
// the rest of the screen is the bar chart.
const (
	panelH = 115
	chartX = 30
	chartY = panelH + 15
	chartW = Width - chartX - 10
	chartH = Height - chartY - 20

	numGrid = 5
	barGap  = 2
)

// View is everything one redraw needs. The renderer derives nothing itself;
// the tick loop computes the window and clock string and hands them over.
type View struct {
	Clock        string
	CurrentPrice float64
	Average      float64
	Min          float64
	Max          float64
	Window       chart.Window

	// Tier thresholds for color-coding bars and the headline price.
	LowMax float64
	MidMax float64
}

// Dashboard draws the full dashboard frame: header panel with clock, price
// and stats, then the windowed bar chart with grid, now-marker, hour labels
// and axes.
func Dashboard(f *Frame, v View) {
	vals := make([]float64, len(v.Window.Slots))
	for i, s := range v.Window.Slots {
		vals[i] = s.Value
	}

	chartMax := 20.0
	if len(vals) > 0 {
		m := vals[0]
		for _, val := range vals[1:] {
			if val > m {
				m = val
			}
		}
		chartMax = m * 1.1
	}
	chartMin := 0.0

	valY := func(val float64) int {
		ratio := 0.5
		if chartMax != chartMin {
			ratio = (val - chartMin) / (chartMax - chartMin)
		}
		return chartY + chartH - int(ratio*float64(chartH))
	}

	barW := 1.0
	if len(vals) > 0 {
		barW = float64(chartW)/float64(len(vals)) - barGap
	}
	baseY := chartY + chartH

	f.Clear(ColorBG)
	f.FillRect(0, 0, Width, panelH, ColorPanel)

	// Header: clock, headline price, unit, stats row.
	f.TextCentred(v.Clock, Width/2, 8, 3, ColorCyan)

	priceStr := fmt.Sprintf("%.2f", v.CurrentPrice)
	f.TextCentred(priceStr, Width/2-25, 40, 5, TierColor(chart.Classify(v.CurrentPrice, v.LowMax, v.MidMax)))
	f.Text("c/kWh", Width/2+70, 65, 1, ColorAxis)

	f.Text(fmt.Sprintf("avg %.1f", v.Average), 12, 88, 2, ColorAxis)
	f.Text(fmt.Sprintf("min %.1f", v.Min), 150, 88, 2, ColorLow)
	f.Text(fmt.Sprintf("max %.1f", v.Max), 300, 88, 2, ColorHigh)

	// Grid lines with right-aligned value labels.
	for i := 0; i <= numGrid; i++ {
		gy := chartY + i*chartH/numGrid
		gv := chartMax - float64(i)*(chartMax-chartMin)/numGrid
		f.HLine(chartX, chartX+chartW, gy, ColorGrid)
		lbl := fmt.Sprintf("%.0f", gv)
		f.Text(lbl, chartX-len(lbl)*glyphAdvance-4, gy-4, 1, ColorAxis)
	}

	// Bars, color-coded by tier.
	for i, val := range vals {
		bx := chartX + int(float64(i)*(barW+barGap))
		by := valY(val)
		f.FillRect(bx, by, int(barW), baseY-by, TierColor(chart.Classify(val, v.LowMax, v.MidMax)))
	}

	// Now-marker: a triple-width vertical line through the current slot.
	if v.Window.HasNow() {
		nowX := chartX + int(float64(v.Window.NowOffset)*(barW+barGap)+barW/2)
		for dx := -1; dx <= 1; dx++ {
			f.VLine(nowX+dx, chartY, baseY, ColorNow)
		}
	}

	// Hour labels under the slots that start an hour.
	for i, s := range v.Window.Slots {
		h, m, err := s.Clock()
		if err != nil || m != 0 {
			continue
		}
		lx := chartX + int(float64(i)*(barW+barGap))
		f.Text(fmt.Sprintf("%02d", h), lx, baseY+4, 1, ColorAxis)
	}

	// Axes last so bars never cover them.
	f.VLine(chartX, chartY, baseY, ColorAxis)
	f.HLine(chartX, chartX+chartW, baseY, ColorAxis)
}

// errorWrap is the column at which error text wraps.
const errorWrap = 38

// Error replaces the frame with an error screen. The message is chunked to
// fixed-width lines, counting runes so multi-byte text never splits
// mid-character; it is also used for boot progress messages.
func Error(f *Frame, msg string) {
	f.Clear(ColorBG)
	f.Text("Error:", 20, 20, 2, ColorHigh)
	runes := []rune(msg)
	line := 0
	for start := 0; start < len(runes); start += errorWrap {
		end := start + errorWrap
		if end > len(runes) {
			end = len(runes)
		}
		f.Text(string(runes[start:end]), 20, 60+line*20, 1, ColorWhite)
		line++
	}
}
