// Package device abstracts the panel hardware the tick loop drives. The pi
// subpackage talks to a real display over SPI and I2C; the sim subpackage
// shows the same frames in a desktop window.
package device

import "image"

// Display receives complete frames. Push blocks until the frame has been
// handed to the panel.
type Display interface {
	Push(img *image.RGBA) error
}

// Touch samples the panel's touch state. It is polled every tick even while
// the display is dark, so a touch can wake it.
type Touch interface {
	Pressed() (bool, error)
}

// Backlight switches the panel light. Implementations must tolerate
// repeated calls with the same value.
type Backlight interface {
	Set(on bool) error
}

// Panel is the full hardware surface of one dashboard device.
type Panel interface {
	Display
	Touch
	Backlight
}
