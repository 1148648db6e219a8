package render

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Panel dimensions in pixels.
const (
	Width  = 480
	Height = 480
)

// Face7x13 metrics. Text cells are glyphAdvance*scale wide per character
// and glyphHeight*scale tall.
const (
	glyphAdvance = 7
	glyphHeight  = 13
	glyphAscent  = 11
)

// Frame is one full-screen RGBA image plus the small set of drawing
// primitives the dashboard needs. All coordinates are clipped to the frame,
// so callers never have to bounds-check.
type Frame struct {
	img *image.RGBA
}

func NewFrame() *Frame {
	return &Frame{img: image.NewRGBA(image.Rect(0, 0, Width, Height))}
}

// Image exposes the backing pixels for display drivers and encoders.
func (f *Frame) Image() *image.RGBA { return f.img }

func (f *Frame) Clear(c color.RGBA) {
	f.FillRect(0, 0, Width, Height, c)
}

func (f *Frame) FillRect(x, y, w, h int, c color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	draw.Draw(f.img, image.Rect(x, y, x+w, y+h), image.NewUniform(c), image.Point{}, draw.Src)
}

// HLine draws a horizontal line covering both endpoints.
func (f *Frame) HLine(x0, x1, y int, c color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	f.FillRect(x0, y, x1-x0+1, 1, c)
}

// VLine draws a vertical line covering both endpoints.
func (f *Frame) VLine(x, y0, y1 int, c color.RGBA) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	f.FillRect(x, y0, 1, y1-y0+1, c)
}

// Text draws s with its top-left corner at (x, y). Glyphs are rendered at
// their native size and scaled up with nearest-neighbor so larger sizes keep
// the crisp bitmap look.
func (f *Frame) Text(s string, x, y, scale int, c color.RGBA) {
	if s == "" || scale < 1 {
		return
	}
	w := glyphAdvance * len(s)
	src := image.NewRGBA(image.Rect(0, 0, w, glyphHeight))
	d := font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(0, glyphAscent),
	}
	d.DrawString(s)

	if scale == 1 {
		draw.Draw(f.img, image.Rect(x, y, x+w, y+glyphHeight), src, image.Point{}, draw.Over)
		return
	}
	dr := image.Rect(x, y, x+w*scale, y+glyphHeight*scale)
	xdraw.NearestNeighbor.Scale(f.img, dr, src, src.Bounds(), xdraw.Over, nil)
}

// TextCentred draws s horizontally centered on cx.
func (f *Frame) TextCentred(s string, cx, y, scale int, c color.RGBA) {
	f.Text(s, cx-len(s)*glyphAdvance*scale/2, y, scale, c)
}
