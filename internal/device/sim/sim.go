// Package sim shows dashboard frames in a desktop window so the loop can be
// developed without panel hardware. The left mouse button stands in for a
// touch; a dark backlight renders as a black window.
package sim

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/granholm/presto-ha-nordpool/internal/render"
)

// Panel satisfies device.Panel and ebiten.Game. The tick loop runs on its
// own goroutine and hands frames over; the game loop owns the window and
// samples the mouse.
type Panel struct {
	mu    sync.Mutex
	frame *image.RGBA
	dirty bool

	lit     atomic.Bool
	touched atomic.Bool

	img *ebiten.Image
	ctx context.Context
}

func New() *Panel {
	p := &Panel{
		frame: image.NewRGBA(image.Rect(0, 0, render.Width, render.Height)),
	}
	p.lit.Store(true)
	return p
}

func (p *Panel) Push(img *image.RGBA) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	copy(p.frame.Pix, img.Pix)
	p.dirty = true
	return nil
}

func (p *Panel) Pressed() (bool, error) {
	return p.touched.Load(), nil
}

func (p *Panel) Set(on bool) error {
	p.lit.Store(on)
	return nil
}

// Run opens the window and blocks until it closes or ctx is canceled. Must
// be called from the main goroutine.
func (p *Panel) Run(ctx context.Context) error {
	p.ctx = ctx
	ebiten.SetWindowTitle("presto dashboard (sim)")
	ebiten.SetWindowSize(render.Width, render.Height)
	ebiten.SetTPS(30)
	return ebiten.RunGame(p)
}

func (p *Panel) Update() error {
	if p.ctx != nil && p.ctx.Err() != nil {
		return ebiten.Termination
	}
	p.touched.Store(ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	return nil
}

func (p *Panel) Draw(screen *ebiten.Image) {
	if !p.lit.Load() {
		screen.Fill(color.Black)
		return
	}
	if p.img == nil {
		p.img = ebiten.NewImage(render.Width, render.Height)
	}
	p.mu.Lock()
	if p.dirty {
		p.img.WritePixels(p.frame.Pix)
		p.dirty = false
	}
	p.mu.Unlock()
	screen.DrawImage(p.img, nil)
}

func (p *Panel) Layout(outsideWidth, outsideHeight int) (int, int) {
	return render.Width, render.Height
}
