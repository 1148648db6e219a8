// Package app wires the clock, refresh scheduler, power state machine and
// renderer into the single loop that drives a panel. All mutable state
// lives here and is touched by exactly one goroutine.
package app

import (
	"context"
	"log"
	"time"

	"github.com/granholm/presto-ha-nordpool/internal/chart"
	"github.com/granholm/presto-ha-nordpool/internal/clock"
	"github.com/granholm/presto-ha-nordpool/internal/config"
	"github.com/granholm/presto-ha-nordpool/internal/device"
	"github.com/granholm/presto-ha-nordpool/internal/power"
	"github.com/granholm/presto-ha-nordpool/internal/render"
	"github.com/granholm/presto-ha-nordpool/internal/sched"
)

// Loop owns the dashboard's run state. Collaborators are injected so the
// same loop drives real hardware, the desktop sim, and tests.
type Loop struct {
	cfg     *config.Config
	panel   device.Panel
	clock   clock.Source
	refresh *sched.Refresher
	light   *power.Backlight
	frame   *render.Frame

	lit   bool
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a loop whose backlight boots as freshly woken, so starting up
// during quiet hours still shows the display for one wake window.
func New(cfg *config.Config, panel device.Panel, src clock.Source, fetcher sched.Fetcher) *Loop {
	return &Loop{
		cfg:     cfg,
		panel:   panel,
		clock:   src,
		refresh: sched.NewRefresher(fetcher, cfg.Refresh.Interval()),
		light:   power.NewBacklight(src.NowUTC(), cfg.Power.WakeDuration()),
		frame:   render.NewFrame(),
		lit:     true,
		sleep:   sleepCtx,
	}
}

// Run executes ticks until ctx is canceled; nothing else ends the loop.
// After a failed fetch it waits out a short cooldown instead of the usual
// minute boundary, so a sustained outage is retried gently.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.panel.Set(true); err != nil {
		log.Printf("[Loop] backlight init: %v", err)
	}
	for {
		cooldown := l.tick()

		d := l.untilNextMinute()
		if cooldown {
			d = l.cfg.Refresh.Cooldown()
		}
		if err := l.sleep(ctx, d); err != nil {
			return err
		}
	}
}

// tick runs one scheduler iteration: sample touch, evaluate quiet hours,
// advance the backlight machine, refresh data when due, redraw. It reports
// whether the next sleep should be the failure cooldown.
func (l *Loop) tick() (cooldown bool) {
	nowUTC := l.clock.NowUTC()
	hour, minute := clock.FromTime(nowUTC, l.cfg.Clock.UTCOffsetHours)
	quiet := power.Quiet(hour, l.cfg.Power.QuietStartHour, l.cfg.Power.QuietEndHour)

	// Touch is sampled every tick, even with the display dark, so a touch
	// can wake it.
	touched, err := l.panel.Pressed()
	if err != nil {
		log.Printf("[Loop] touch poll: %v", err)
		touched = false
	}

	on := l.light.Step(nowUTC, quiet, touched)
	if on != l.lit {
		log.Printf("[Loop] backlight on=%v (quiet=%v, touched=%v)", on, quiet, touched)
		if err := l.panel.Set(on); err != nil {
			log.Printf("[Loop] backlight set: %v", err)
		}
		l.lit = on
	}

	if err := l.refresh.Tick(nowUTC); err != nil {
		log.Printf("[Loop] fetch failed: %v", err)
		if on {
			l.showError(err.Error())
		}
		return true
	}

	if l.refresh.ShouldRedraw(on) {
		l.redraw(hour, minute)
	}
	return false
}

func (l *Loop) redraw(hour, minute int) {
	st := l.refresh.State()
	window := chart.Build(st.AllSlots(), hour, minute, l.cfg.Chart.PastSlots, l.cfg.Chart.FutureSlots)

	render.Dashboard(l.frame, render.View{
		Clock:        clock.HHMM(hour, minute),
		CurrentPrice: st.CurrentPrice,
		Average:      st.Average,
		Min:          st.Min,
		Max:          st.Max,
		Window:       window,
		LowMax:       l.cfg.Chart.LowMax,
		MidMax:       l.cfg.Chart.MidMax,
	})
	if err := l.panel.Push(l.frame.Image()); err != nil {
		log.Printf("[Loop] push frame: %v", err)
	}
}

func (l *Loop) showError(msg string) {
	render.Error(l.frame, msg)
	if err := l.panel.Push(l.frame.Image()); err != nil {
		log.Printf("[Loop] push error screen: %v", err)
	}
}

// untilNextMinute keeps the displayed clock accurate without busy-polling.
func (l *Loop) untilNextMinute() time.Duration {
	sec := l.clock.NowUTC().Second()
	return time.Duration(60-sec) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ShowStatus pushes a full-screen status message. Boot code uses it for
// progress and warnings before the loop takes over.
func ShowStatus(d device.Display, msg string) error {
	f := render.NewFrame()
	render.Error(f, msg)
	return d.Push(f.Image())
}
