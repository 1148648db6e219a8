// Package pi drives the physical panel: an RGB565 LCD on SPI, an FT6236
// capacitive touch controller on I2C, and a GPIO-switched backlight.
package pi

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/granholm/presto-ha-nordpool/internal/config"
)

// Device owns the panel peripherals. It satisfies device.Panel.
type Device struct {
	lcd   *lcd
	touch *ft6236
	bl    gpio.PinOut

	port spi.PortCloser
	bus  i2c.BusCloser
}

// Open initializes the host drivers and brings up the display, touch
// controller and backlight pin named in cfg.
func Open(cfg config.PanelConfig) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	port, err := spireg.Open(cfg.SPIDev)
	if err != nil {
		return nil, fmt.Errorf("open SPI %s: %w", cfg.SPIDev, err)
	}
	conn, err := port.Connect(40*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect SPI %s: %w", cfg.SPIDev, err)
	}

	dc := gpioreg.ByName(cfg.DCPin)
	if dc == nil {
		port.Close()
		return nil, fmt.Errorf("unknown DC pin %q", cfg.DCPin)
	}
	rst := gpioreg.ByName(cfg.ResetPin)
	if rst == nil {
		port.Close()
		return nil, fmt.Errorf("unknown reset pin %q", cfg.ResetPin)
	}
	bl := gpioreg.ByName(cfg.BacklightPin)
	if bl == nil {
		port.Close()
		return nil, fmt.Errorf("unknown backlight pin %q", cfg.BacklightPin)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("open I2C %s: %w", cfg.I2CBus, err)
	}

	d := &Device{
		lcd:   newLCD(conn, dc, rst),
		touch: newFT6236(bus, cfg.TouchAddr),
		bl:    bl,
		port:  port,
		bus:   bus,
	}
	if err := d.lcd.start(); err != nil {
		d.Close()
		return nil, fmt.Errorf("display init: %w", err)
	}
	return d, nil
}

func (d *Device) Push(img *image.RGBA) error {
	return d.lcd.push(img)
}

func (d *Device) Pressed() (bool, error) {
	return d.touch.pressed()
}

func (d *Device) Set(on bool) error {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	return d.bl.Out(level)
}

func (d *Device) Close() error {
	var first error
	if d.bus != nil {
		if err := d.bus.Close(); err != nil {
			first = err
		}
	}
	if d.port != nil {
		if err := d.port.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
