package pi

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"

	"github.com/granholm/presto-ha-nordpool/internal/render"
)

// txChunk is the largest single SPI write. Kernel SPI drivers commonly cap
// transfers at 4096 bytes.
const txChunk = 4096

// lcd is an ILI9488-class 480x480 controller in 16bpp mode. Commands go out
// with DC low, parameters and pixel data with DC high.
type lcd struct {
	conn spi.Conn
	dc   gpio.PinOut
	rst  gpio.PinOut

	txBuf []byte
}

func newLCD(conn spi.Conn, dc, rst gpio.PinOut) *lcd {
	return &lcd{
		conn:  conn,
		dc:    dc,
		rst:   rst,
		txBuf: make([]byte, render.Width*render.Height*2),
	}
}

func (d *lcd) start() error {
	if err := d.reset(); err != nil {
		return err
	}
	return d.init()
}

func (d *lcd) reset() error {
	if err := d.rst.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(64 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(140 * time.Millisecond)
	return nil
}

func (d *lcd) init() error {
	// Power control.
	if err := d.cmd(0xC0, 0x17, 0x15); err != nil { // PWCTRL1
		return err
	}
	if err := d.cmd(0xC1, 0x41); err != nil { // PWCTRL2
		return err
	}

	// VCOM control.
	if err := d.cmd(0xC5, 0x00, 0x12, 0x80, 0x40); err != nil { // VMCTRL
		return err
	}

	// Pixel format: 16bpp.
	if err := d.cmd(0x3A, 0x55); err != nil { // COLMOD
		return err
	}

	// Frame rate / display function.
	if err := d.cmd(0xB1, 0xA0, 0x11); err != nil { // FRMCTRL1
		return err
	}
	if err := d.cmd(0xB6, 0x02, 0x22); err != nil { // DISCTRL
		return err
	}

	// Inversion on; this panel shows correct colors inverted.
	if err := d.cmd(0x21); err != nil { // INVON
		return err
	}

	// Memory access control: top-to-bottom, BGR panel order.
	if err := d.cmd(0x36, 0x48); err != nil { // MADCTL MX|BGR
		return err
	}

	if err := d.cmd(0x11); err != nil { // SLPOUT
		return err
	}
	time.Sleep(120 * time.Millisecond)
	return d.cmd(0x29) // DISPON
}

func (d *lcd) cmd(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("cmd 0x%02X: %w", cmd, err)
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	if len(data) > 0 {
		if err := d.conn.Tx(data, nil); err != nil {
			return fmt.Errorf("cmd 0x%02X data: %w", cmd, err)
		}
	}
	return nil
}

func (d *lcd) setWindow(x0, y0, x1, y1 uint16) error {
	if err := d.cmd(0x2A,
		byte(x0>>8), byte(x0),
		byte(x1>>8), byte(x1),
	); err != nil {
		return err
	}
	if err := d.cmd(0x2B,
		byte(y0>>8), byte(y0),
		byte(y1>>8), byte(y1),
	); err != nil {
		return err
	}
	return d.cmd(0x2C)
}

// push converts a full RGBA frame to big-endian RGB565 and streams it to
// the panel in chunked writes.
func (d *lcd) push(img *image.RGBA) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != render.Width || h != render.Height {
		return fmt.Errorf("frame is %dx%d, panel is %dx%d", w, h, render.Width, render.Height)
	}

	buf := d.txBuf
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y) : img.PixOffset(b.Min.X, y)+w*4]
		for x := 0; x < w*4; x += 4 {
			px := uint16(row[x]&0xF8)<<8 | uint16(row[x+1]&0xFC)<<3 | uint16(row[x+2])>>3
			buf[i] = byte(px >> 8)
			buf[i+1] = byte(px)
			i += 2
		}
	}

	if err := d.setWindow(0, 0, uint16(w-1), uint16(h-1)); err != nil {
		return err
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for off := 0; off < len(buf); off += txChunk {
		end := off + txChunk
		if end > len(buf) {
			end = len(buf)
		}
		if err := d.conn.Tx(buf[off:end], nil); err != nil {
			return fmt.Errorf("pixel data at %d: %w", off, err)
		}
	}
	return nil
}
