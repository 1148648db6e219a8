package render

import (
	"image/color"

	"github.com/granholm/presto-ha-nordpool/internal/chart"
)

// Palette, dark blue background with a lighter header panel.
var (
	ColorBG    = color.RGBA{10, 12, 28, 255}
	ColorPanel = color.RGBA{20, 24, 48, 255}
	ColorGrid  = color.RGBA{40, 44, 80, 255}
	ColorAxis  = color.RGBA{160, 170, 200, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorCyan  = color.RGBA{80, 220, 255, 255}
	ColorNow   = color.RGBA{60, 140, 255, 255}

	ColorLow  = color.RGBA{60, 220, 100, 255}
	ColorMid  = color.RGBA{255, 200, 40, 255}
	ColorHigh = color.RGBA{255, 80, 60, 255}
)

// TierColor maps a price tier to its bar and text color.
func TierColor(t chart.Tier) color.RGBA {
	switch t {
	case chart.TierLow:
		return ColorLow
	case chart.TierMid:
		return ColorMid
	default:
		return ColorHigh
	}
}
